// Package adaptive holds the capability profile of one page session and the
// parameter bundles derived from it.
//
// A Session is initialized once with the detected profiles. Until then
// Snapshot reports not-ready and consumers render nothing. A lost rendering
// context downgrades the session to the conservative tier; a restored
// context does not undo that until the page reloads.
package adaptive

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Zachkp/devtier/capability"
	"github.com/Zachkp/devtier/tuning"
)

// ErrNotInitialized is returned by operations that need a detected profile.
var ErrNotInitialized = errors.New("adaptive: session not initialized")

// ContextLostNotice is the notification published after a context loss.
const ContextLostNotice = "Graphics context lost, switching to power-saving mode"

// Snapshot is an immutable view of the session state.
type Snapshot struct {
	GPU          capability.GPUProfile `json:"gpu"`
	CPU          capability.CPUProfile `json:"cpu"`
	Bundles      tuning.Bundles        `json:"bundles"`
	Degraded     bool                  `json:"degraded"`
	Notification string                `json:"notification"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the session logger. The default is capability.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session is safe for concurrent use.
type Session struct {
	mu        sync.RWMutex
	snap      Snapshot
	ready     bool
	listeners []func(Snapshot)

	now    func() time.Time
	logger *slog.Logger
}

func NewSession(opts ...Option) *Session {
	s := &Session{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = capability.Logger()
	}
	return s
}

// Restore rebuilds a session from a stored snapshot, keeping its degraded
// state.
func Restore(snap Snapshot, opts ...Option) *Session {
	s := NewSession(opts...)
	s.snap = snap
	s.ready = true
	return s
}

// Init computes the bundles for the detected profiles. Only the first call
// has an effect; later calls return the existing snapshot.
func (s *Session) Init(gpu capability.GPUProfile, cpu capability.CPUProfile) Snapshot {
	s.mu.Lock()
	if s.ready {
		snap := s.snap
		s.mu.Unlock()
		return snap
	}
	s.snap = Snapshot{
		GPU:          gpu,
		CPU:          cpu,
		Bundles:      tuning.Resolve(gpu, cpu),
		Notification: gpu.Summary(),
		UpdatedAt:    s.now(),
	}
	s.ready = true
	snap := s.snap
	listeners := s.listeners
	s.mu.Unlock()

	s.logger.Info("adaptive: session initialized",
		slog.String("vendor", string(gpu.Vendor)),
		slog.Bool("gpu_low_end", gpu.IsLowEnd),
		slog.Bool("cpu_low_end", cpu.IsLowEnd),
		slog.Int("workers", snap.Bundles.Render.WorkerCount),
	)
	notify(listeners, snap)
	return snap
}

// Detect runs both detectors against env and initializes the session.
func (s *Session) Detect(env capability.Environment, cfg capability.ThrottleConfig) Snapshot {
	return s.Init(capability.DetectGPU(env), capability.DetectCPU(env, cfg))
}

// Snapshot returns the current state. ok is false until Init has run.
func (s *Session) Snapshot() (snap Snapshot, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.ready
}

// ContextLost recomputes the bundles from low-end clones of both profiles.
// Repeated losses are idempotent.
func (s *Session) ContextLost() (Snapshot, error) {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return Snapshot{}, ErrNotInitialized
	}
	gpu := s.snap.GPU.Degrade()
	cpu := s.snap.CPU.Degrade()
	s.snap = Snapshot{
		GPU:          gpu,
		CPU:          cpu,
		Bundles:      tuning.Resolve(gpu, cpu),
		Degraded:     true,
		Notification: ContextLostNotice,
		UpdatedAt:    s.now(),
	}
	snap := s.snap
	listeners := s.listeners
	s.mu.Unlock()

	s.logger.Warn("adaptive: rendering context lost, degraded to low-end",
		slog.String("vendor", string(gpu.Vendor)))
	notify(listeners, snap)
	return snap, nil
}

// ContextRestored is a no-op on the tier: the session stays conservative
// until a reload.
func (s *Session) ContextRestored() (Snapshot, error) {
	snap, ok := s.Snapshot()
	if !ok {
		return Snapshot{}, ErrNotInitialized
	}
	s.logger.Info("adaptive: rendering context restored, keeping current tier",
		slog.Bool("degraded", snap.Degraded))
	return snap, nil
}

// OnChange registers fn to run after each published snapshot. If the
// session is already initialized fn runs immediately with the current one.
func (s *Session) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	snap, ready := s.snap, s.ready
	s.mu.Unlock()
	if ready {
		fn(snap)
	}
}

func notify(listeners []func(Snapshot), snap Snapshot) {
	for _, fn := range listeners {
		fn(snap)
	}
}
