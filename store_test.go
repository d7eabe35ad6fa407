package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/devtier/adaptive"
	"github.com/Zachkp/devtier/capability"
)

func openTestStore(t *testing.T, now *time.Time) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	s.now = func() time.Time { return *now }
	return s
}

func sampleSnapshot() adaptive.Snapshot {
	gpu := capability.ClassifyGPU(capability.GraphicsInfo{
		DebugInfo: true, Renderer: "AMD Radeon RX 7800 XT", MaxTextureSize: 16384, MaxVertexAttribs: 16,
	}, desktopUA)
	return adaptive.NewSession().Init(gpu, capability.ClassifyCPU(8, desktopUA, true, false))
}

func TestStore_RoundTrip(t *testing.T) {
	now := time.Date(2026, 5, 10, 9, 30, 15, 0, time.UTC)
	s := openTestStore(t, &now)
	ctx := context.Background()

	snap := sampleSnapshot()
	rec := NewReport(uuid.NewString(), "abc123", desktopUA, snap, s.timestamp())
	require.NoError(t, s.Insert(ctx, rec))

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, capability.VendorAMD, got.Vendor)
	assert.Equal(t, capability.PlatformDesktop, got.Platform)
	assert.False(t, got.GPULowEnd)
	assert.Equal(t, snap.Bundles, got.Snapshot.Bundles)
	assert.True(t, now.Equal(got.CreatedAt))

	now = now.Add(time.Hour)
	degraded, err := adaptive.Restore(got.Snapshot).ContextLost()
	require.NoError(t, err)
	updated, err := s.UpdateSnapshot(ctx, rec.ID, degraded)
	require.NoError(t, err)
	assert.True(t, updated.Degraded)
	assert.True(t, updated.GPULowEnd)

	got, err = s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.Degraded)
	assert.True(t, now.Equal(got.UpdatedAt))
}

func TestStore_NotFound(t *testing.T) {
	now := time.Now()
	s := openTestStore(t, &now)

	_, err := s.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateSnapshot(context.Background(), uuid.NewString(), sampleSnapshot())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(context.Background(), uuid.NewString()), ErrNotFound)
}

func TestStore_Purge(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := openTestStore(t, &now)
	ctx := context.Background()

	old := NewReport(uuid.NewString(), "a", desktopUA, sampleSnapshot(), now)
	require.NoError(t, s.Insert(ctx, old))

	now = now.Add(40 * 24 * time.Hour)
	fresh := NewReport(uuid.NewString(), "b", desktopUA, sampleSnapshot(), now)
	require.NoError(t, s.Insert(ctx, fresh))

	n, err := s.Purge(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = s.Get(ctx, old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestStore_Stats(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	s := openTestStore(t, &now)
	ctx := context.Background()

	lastMonth := NewReport(uuid.NewString(), "a", desktopUA, sampleSnapshot(), now.Add(-20*24*time.Hour))
	require.NoError(t, s.Insert(ctx, lastMonth))
	today := NewReport(uuid.NewString(), "a", desktopUA, sampleSnapshot(), now)
	require.NoError(t, s.Insert(ctx, today))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalReports)
	assert.EqualValues(t, 1, stats.UniqueVisitors)
	assert.EqualValues(t, 1, stats.ReportsToday)
	assert.EqualValues(t, 1, stats.ReportsThisWeek)
	assert.EqualValues(t, 2, stats.ByVendor["amd"])
	assert.Zero(t, stats.LowEnd)
	require.Len(t, stats.RecentReports, 2)
	assert.Equal(t, today.ID, stats.RecentReports[0].ID)
}
