package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zachkp/devtier/adaptive"
	"github.com/Zachkp/devtier/capability"
)

// ErrNotFound is returned when no report has the requested id.
var ErrNotFound = errors.New("store: report not found")

// Report is one classified visit. Only the hashed client address is kept.
type Report struct {
	ID        string              `json:"id"`
	HashedIP  string              `json:"hashed_ip"`
	UserAgent string              `json:"user_agent"`
	Vendor    capability.Vendor   `json:"vendor"`
	Renderer  string              `json:"renderer"`
	Platform  capability.Platform `json:"platform"`
	GPULowEnd bool                `json:"gpu_low_end"`
	CPULowEnd bool                `json:"cpu_low_end"`
	Throttled bool                `json:"throttled"`
	Degraded  bool                `json:"degraded"`
	Mobile    bool                `json:"mobile"`
	Snapshot  adaptive.Snapshot   `json:"snapshot"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// NewReport fills the indexed columns from snap.
func NewReport(id, hashedIP, userAgent string, snap adaptive.Snapshot, now time.Time) Report {
	r := Report{
		ID:        id,
		HashedIP:  hashedIP,
		UserAgent: userAgent,
		CreatedAt: now,
	}
	r.setSnapshot(snap, now)
	return r
}

func (r *Report) setSnapshot(snap adaptive.Snapshot, now time.Time) {
	r.Vendor = snap.GPU.Vendor
	r.Renderer = snap.GPU.Renderer
	r.Platform = snap.CPU.Platform
	r.GPULowEnd = snap.GPU.IsLowEnd
	r.CPULowEnd = snap.CPU.IsLowEnd
	r.Throttled = snap.CPU.Throttled
	r.Degraded = snap.Degraded
	r.Mobile = snap.GPU.IsMobile || snap.CPU.Platform == capability.PlatformMobile
	r.Snapshot = snap
	r.UpdatedAt = now
}

// ReportSummary is the admin listing view of a report.
type ReportSummary struct {
	ID        string            `json:"id"`
	HashedIP  string            `json:"hashed_ip"`
	Vendor    capability.Vendor `json:"vendor"`
	Renderer  string            `json:"renderer"`
	LowEnd    bool              `json:"low_end"`
	Degraded  bool              `json:"degraded"`
	CreatedAt time.Time         `json:"created_at"`
}

type TierStats struct {
	TotalReports    int64            `json:"total_reports"`
	UniqueVisitors  int64            `json:"unique_visitors"`
	ReportsToday    int64            `json:"reports_today"`
	ReportsThisWeek int64            `json:"reports_this_week"`
	ByVendor        map[string]int64 `json:"by_vendor"`
	LowEnd          int64            `json:"low_end"`
	LowEndShare     float64          `json:"low_end_share"`
	Throttled       int64            `json:"throttled"`
	Degraded        int64            `json:"degraded"`
	Mobile          int64            `json:"mobile"`
	RecentReports   []ReportSummary  `json:"recent_reports"`
}

// Store keeps reports in sqlite. Timestamps are written in UTC at second
// precision so they compare correctly as text.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		hashed_ip TEXT NOT NULL,
		user_agent TEXT,
		vendor TEXT NOT NULL,
		renderer TEXT,
		platform TEXT NOT NULL,
		gpu_low_end INTEGER NOT NULL DEFAULT 0,
		cpu_low_end INTEGER NOT NULL DEFAULT 0,
		throttled INTEGER NOT NULL DEFAULT 0,
		degraded INTEGER NOT NULL DEFAULT 0,
		mobile INTEGER NOT NULL DEFAULT 0,
		snapshot TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS reports_created_at ON reports (created_at);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("store: create reports table: %w", err)
	}
	return nil
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func (s *Store) Insert(ctx context.Context, r Report) error {
	snap, err := json.Marshal(r.Snapshot)
	if err != nil {
		return fmt.Errorf("store: encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (id, hashed_ip, user_agent, vendor, renderer, platform,
			gpu_low_end, cpu_low_end, throttled, degraded, mobile, snapshot, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.HashedIP, r.UserAgent, string(r.Vendor), r.Renderer, string(r.Platform),
		r.GPULowEnd, r.CPULowEnd, r.Throttled, r.Degraded, r.Mobile, string(snap),
		r.CreatedAt.UTC().Truncate(time.Second), r.UpdatedAt.UTC().Truncate(time.Second))
	if err != nil {
		return fmt.Errorf("store: insert report %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (Report, error) {
	var (
		r                  Report
		vendor, plat, snap string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, hashed_ip, user_agent, vendor, renderer, platform,
			gpu_low_end, cpu_low_end, throttled, degraded, mobile, snapshot, created_at, updated_at
		FROM reports WHERE id = ?
	`, id).Scan(&r.ID, &r.HashedIP, &r.UserAgent, &vendor, &r.Renderer, &plat,
		&r.GPULowEnd, &r.CPULowEnd, &r.Throttled, &r.Degraded, &r.Mobile, &snap, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, fmt.Errorf("store: get report %s: %w", id, err)
	}
	r.Vendor = capability.Vendor(vendor)
	r.Platform = capability.Platform(plat)
	if err := json.Unmarshal([]byte(snap), &r.Snapshot); err != nil {
		return Report{}, fmt.Errorf("store: decode snapshot %s: %w", id, err)
	}
	return r, nil
}

// UpdateSnapshot replaces the stored snapshot of report id.
func (s *Store) UpdateSnapshot(ctx context.Context, id string, snap adaptive.Snapshot) (Report, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return Report{}, err
	}
	r.setSnapshot(snap, s.timestamp())

	encoded, err := json.Marshal(snap)
	if err != nil {
		return Report{}, fmt.Errorf("store: encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE reports SET gpu_low_end = ?, cpu_low_end = ?, throttled = ?, degraded = ?, mobile = ?,
			snapshot = ?, updated_at = ?
		WHERE id = ?
	`, r.GPULowEnd, r.CPULowEnd, r.Throttled, r.Degraded, r.Mobile, string(encoded), r.UpdatedAt, id)
	if err != nil {
		return Report{}, fmt.Errorf("store: update report %s: %w", id, err)
	}
	return r, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("store: delete report %s: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Purge removes reports created more than retention ago.
func (s *Store) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.timestamp().Add(-retention)
	result, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("store: purge: %w", err)
	}
	return result.RowsAffected()
}

func (s *Store) Stats(ctx context.Context) (*TierStats, error) {
	stats := &TierStats{ByVendor: make(map[string]int64)}
	now := s.timestamp()
	today := now.Truncate(24 * time.Hour)

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT hashed_ip),
			COALESCE(SUM(CASE WHEN gpu_low_end OR cpu_low_end OR degraded THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(throttled), 0), COALESCE(SUM(degraded), 0), COALESCE(SUM(mobile), 0)
		FROM reports
	`).Scan(&stats.TotalReports, &stats.UniqueVisitors, &stats.LowEnd,
		&stats.Throttled, &stats.Degraded, &stats.Mobile)
	if err != nil {
		return nil, fmt.Errorf("store: totals: %w", err)
	}
	if stats.TotalReports > 0 {
		stats.LowEndShare = float64(stats.LowEnd) / float64(stats.TotalReports)
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports WHERE created_at >= ?", today).
		Scan(&stats.ReportsToday)
	if err != nil {
		return nil, fmt.Errorf("store: reports today: %w", err)
	}
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports WHERE created_at >= ?", now.Add(-7*24*time.Hour)).
		Scan(&stats.ReportsThisWeek)
	if err != nil {
		return nil, fmt.Errorf("store: reports this week: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT vendor, COUNT(*) FROM reports GROUP BY vendor")
	if err != nil {
		return nil, fmt.Errorf("store: vendor counts: %w", err)
	}
	for rows.Next() {
		var (
			vendor string
			n      int64
		)
		if err := rows.Scan(&vendor, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: vendor counts: %w", err)
		}
		stats.ByVendor[vendor] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: vendor counts: %w", err)
	}

	recent, err := s.Recent(ctx, 50)
	if err != nil {
		return nil, err
	}
	stats.RecentReports = recent
	return stats, nil
}

// Recent lists the newest reports first.
func (s *Store) Recent(ctx context.Context, limit int) ([]ReportSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, vendor, renderer, gpu_low_end OR cpu_low_end OR degraded, degraded, created_at
		FROM reports
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent reports: %w", err)
	}
	defer rows.Close()

	var out []ReportSummary
	for rows.Next() {
		var (
			r      ReportSummary
			vendor string
		)
		if err := rows.Scan(&r.ID, &r.HashedIP, &vendor, &r.Renderer, &r.LowEnd, &r.Degraded, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: recent reports: %w", err)
		}
		r.Vendor = capability.Vendor(vendor)
		out = append(out, r)
	}
	return out, rows.Err()
}
