package capability

import (
	"time"
)

// ProbeReport is the raw probe data a page collects and posts to the server.
// Field names follow the browser APIs they come from.
type ProbeReport struct {
	UserAgent           string          `json:"userAgent"`
	HardwareConcurrency int             `json:"hardwareConcurrency"`
	WebAssembly         bool            `json:"webAssembly"`
	Graphics            *GraphicsReport `json:"graphics,omitempty"`
	// BenchmarkMs holds the timed repetitions of the throttle loop, warm-up
	// excluded, in milliseconds.
	BenchmarkMs []float64 `json:"benchmarkMs,omitempty"`
}

// GraphicsReport is the browser-side view of a throwaway WebGL context.
type GraphicsReport struct {
	DebugInfo        bool   `json:"debugInfo"`
	Vendor           string `json:"vendor,omitempty"`
	Renderer         string `json:"renderer,omitempty"`
	MaxTextureSize   int    `json:"maxTextureSize"`
	MaxVertexAttribs int    `json:"maxVertexAttribs"`
}

// ReportEnvironment replays a ProbeReport as an Environment.
type ReportEnvironment struct {
	Report ProbeReport
}

var _ Environment = ReportEnvironment{}

// NewReportEnvironment wraps r.
func NewReportEnvironment(r ProbeReport) ReportEnvironment {
	return ReportEnvironment{Report: r}
}

func (e ReportEnvironment) GraphicsContext() (GraphicsInfo, error) {
	g := e.Report.Graphics
	if g == nil {
		return GraphicsInfo{}, ErrNoGraphicsContext
	}
	return GraphicsInfo{
		DebugInfo:        g.DebugInfo,
		Vendor:           g.Vendor,
		Renderer:         g.Renderer,
		MaxTextureSize:   g.MaxTextureSize,
		MaxVertexAttribs: g.MaxVertexAttribs,
	}, nil
}

func (e ReportEnvironment) HardwareConcurrency() (int, bool) {
	n := e.Report.HardwareConcurrency
	return n, n > 0
}

func (e ReportEnvironment) UserAgent() string { return e.Report.UserAgent }

func (e ReportEnvironment) WebAssemblyValidate() bool { return e.Report.WebAssembly }

// ThrottleSamples returns the samples measured by the browser. The loop was
// already run client-side so cfg is not consulted.
func (e ReportEnvironment) ThrottleSamples(ThrottleConfig) ([]time.Duration, error) {
	if len(e.Report.BenchmarkMs) == 0 {
		return nil, ErrNoTimer
	}
	samples := make([]time.Duration, 0, len(e.Report.BenchmarkMs))
	for _, ms := range e.Report.BenchmarkMs {
		samples = append(samples, time.Duration(ms*float64(time.Millisecond)))
	}
	return samples, nil
}
