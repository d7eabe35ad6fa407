package capability

import (
	"errors"
	"time"
)

// ErrNoGraphicsContext is returned by Environment.GraphicsContext when no
// 3D context can be created.
var ErrNoGraphicsContext = errors.New("capability: no graphics context available")

// ErrNoTimer is returned by Environment.ThrottleSamples when the host has no
// usable high-resolution timer.
var ErrNoTimer = errors.New("capability: high-resolution timer unavailable")

// GraphicsInfo is what a throwaway graphics context reported.
type GraphicsInfo struct {
	// DebugInfo is false when the unmasked renderer extension was missing.
	// Vendor and Renderer are then empty.
	DebugInfo        bool
	Vendor           string
	Renderer         string
	MaxTextureSize   int
	MaxVertexAttribs int
}

// Environment is the set of raw probes the detectors read. Implementations
// may panic (syscall/js does on JavaScript exceptions); the detectors recover.
type Environment interface {
	// GraphicsContext creates, reads and releases a throwaway 3D context.
	GraphicsContext() (GraphicsInfo, error)

	// HardwareConcurrency returns the logical core count, if known.
	HardwareConcurrency() (int, bool)

	UserAgent() string

	// WebAssemblyValidate reports whether WebAssembly.validate exists.
	WebAssemblyValidate() bool

	// ThrottleSamples runs one discarded warm-up and cfg.Repetitions timed
	// loops of the benchmark and returns the timed durations.
	ThrottleSamples(cfg ThrottleConfig) ([]time.Duration, error)
}

// ThrottleConfig tunes the throttle microbenchmark. The defaults were not
// calibrated; treat them as a heuristic.
type ThrottleConfig struct {
	Iterations  int     `yaml:"iterations" json:"iterations"`
	Repetitions int     `yaml:"repetitions" json:"repetitions"`
	Ratio       float64 `yaml:"ratio" json:"ratio"`
}

// DefaultThrottleConfig returns 10^6 iterations, 3 repetitions and a 1.5
// slowest/fastest threshold.
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		Iterations:  1_000_000,
		Repetitions: 3,
		Ratio:       1.5,
	}
}

// withDefaults fills zero fields from DefaultThrottleConfig.
func (c ThrottleConfig) withDefaults() ThrottleConfig {
	d := DefaultThrottleConfig()
	if c.Iterations <= 0 {
		c.Iterations = d.Iterations
	}
	if c.Repetitions <= 0 {
		c.Repetitions = d.Repetitions
	}
	if c.Ratio <= 0 {
		c.Ratio = d.Ratio
	}
	return c
}
