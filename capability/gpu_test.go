package capability_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Zachkp/devtier/capability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	androidUA = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Mobile Safari/537.36"
	iphoneUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
)

// fakeEnv is a scripted Environment.
type fakeEnv struct {
	info     capability.GraphicsInfo
	gfxErr   error
	cores    int
	ua       string
	wasm     bool
	samples  []time.Duration
	benchErr error
	panicOn  string
}

func (f *fakeEnv) GraphicsContext() (capability.GraphicsInfo, error) {
	if f.panicOn == "graphics" {
		panic("getContext threw")
	}
	return f.info, f.gfxErr
}

func (f *fakeEnv) HardwareConcurrency() (int, bool) { return f.cores, f.cores > 0 }
func (f *fakeEnv) UserAgent() string                { return f.ua }
func (f *fakeEnv) WebAssemblyValidate() bool        { return f.wasm }

func (f *fakeEnv) ThrottleSamples(capability.ThrottleConfig) ([]time.Duration, error) {
	if f.panicOn == "bench" {
		panic("performance.now is not a function")
	}
	return f.samples, f.benchErr
}

func gfx(vendor, renderer string) capability.GraphicsInfo {
	return capability.GraphicsInfo{
		DebugInfo:        true,
		Vendor:           vendor,
		Renderer:         renderer,
		MaxTextureSize:   16384,
		MaxVertexAttribs: 16,
	}
}

func TestDetectGPU_VendorMatching(t *testing.T) {
	tests := []struct {
		name       string
		vendor     string
		renderer   string
		want       capability.Vendor
		integrated bool
		silicon    bool
		lowEnd     bool
	}{
		{"radeon", "ATI Technologies Inc.", "AMD Radeon RX 7900 XTX", capability.VendorAMD, false, false, false},
		{"geforce", "NVIDIA Corporation", "NVIDIA GeForce RTX 4090/PCIe/SSE2", capability.VendorNVIDIA, false, false, false},
		{"angle nvidia", "Google Inc. (NVIDIA)", "ANGLE (NVIDIA, NVIDIA GeForce GTX 1080 Direct3D11 vs_5_0 ps_5_0)", capability.VendorNVIDIA, false, false, false},
		{"intel uhd", "Intel Inc.", "Intel(R) UHD Graphics 630", capability.VendorIntel, true, false, true},
		{"iris", "", "Mesa Iris Xe", capability.VendorIntel, true, false, true},
		{"apple silicon", "Apple Inc.", "Apple M2 Pro", capability.VendorApple, false, true, false},
		{"apple gpu", "Apple Inc.", "Apple GPU", capability.VendorApple, false, true, false},
		{"unrecognized", "Moore Threads", "MTT S80", capability.VendorUnknown, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := capability.DetectGPU(&fakeEnv{info: gfx(tt.vendor, tt.renderer), ua: desktopUA})
			assert.Equal(t, tt.want, p.Vendor)
			assert.Equal(t, tt.integrated, p.IsIntegrated)
			assert.Equal(t, tt.silicon, p.IsAppleSilicon)
			assert.Equal(t, tt.lowEnd, p.IsLowEnd)
			assert.False(t, p.IsMobile)
			assert.Equal(t, tt.renderer, p.Renderer)
		})
	}
}

func TestDetectGPU_FirstMatchWins(t *testing.T) {
	// Both keywords are present; the earlier table entry wins.
	p := capability.DetectGPU(&fakeEnv{info: gfx("", "AMD Radeon Graphics (intel-compat)"), ua: desktopUA})
	assert.Equal(t, capability.VendorAMD, p.Vendor)
	assert.False(t, p.IsIntegrated)
}

func TestDetectGPU_MaliRenderer(t *testing.T) {
	p := capability.DetectGPU(&fakeEnv{info: gfx("ARM", "Mali-G72"), ua: desktopUA})

	assert.True(t, p.IsMobile)
	assert.True(t, p.IsLowEnd)
	assert.Equal(t, capability.VendorMobile, p.Vendor)
	assert.False(t, p.RecommendedSettings.Antialias)
	assert.Equal(t, capability.PowerLowPower, p.RecommendedSettings.PowerPreference)
}

func TestDetectGPU_MobileUserAgent(t *testing.T) {
	p := capability.DetectGPU(&fakeEnv{info: gfx("Apple Inc.", "Apple GPU"), ua: iphoneUA})

	assert.Equal(t, capability.VendorApple, p.Vendor)
	assert.True(t, p.IsMobile)
	assert.True(t, p.IsLowEnd)
	assert.False(t, p.RecommendedSettings.Antialias)
	assert.Equal(t, capability.PowerLowPower, p.RecommendedSettings.PowerPreference)
}

func TestDetectGPU_LowEndSignals(t *testing.T) {
	tests := []struct {
		name string
		info capability.GraphicsInfo
	}{
		{"software renderer", gfx("Google Inc.", "Google SwiftShader")},
		{"masked webgl", gfx("WebKit", "WebKit WebGL")},
		{"small textures", capability.GraphicsInfo{DebugInfo: true, Renderer: "NVIDIA GeForce GT 710", MaxTextureSize: 4096, MaxVertexAttribs: 16}},
		{"few attribs", capability.GraphicsInfo{DebugInfo: true, Renderer: "NVIDIA GeForce GT 710", MaxTextureSize: 16384, MaxVertexAttribs: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := capability.DetectGPU(&fakeEnv{info: tt.info, ua: desktopUA})
			assert.True(t, p.IsLowEnd)
			assert.False(t, p.RecommendedSettings.Antialias)
		})
	}
}

func TestDetectGPU_NoDebugInfo(t *testing.T) {
	env := &fakeEnv{
		info: capability.GraphicsInfo{Renderer: "ignored", MaxTextureSize: 16384, MaxVertexAttribs: 16},
		ua:   desktopUA,
	}
	p := capability.DetectGPU(env)
	assert.Equal(t, capability.VendorUnknown, p.Vendor)
	assert.Empty(t, p.Renderer)
	assert.True(t, p.IsLowEnd)
	assert.False(t, p.RecommendedSettings.Antialias)
}

func TestDetectGPU_NoContextFallsBack(t *testing.T) {
	p := capability.DetectGPU(&fakeEnv{gfxErr: capability.ErrNoGraphicsContext, ua: desktopUA})

	assert.Equal(t, capability.VendorUnknown, p.Vendor)
	assert.True(t, p.IsLowEnd)
	assert.Equal(t, capability.FallbackGPUProfile(), p)
}

func TestDetectGPU_ArbitraryErrorFallsBack(t *testing.T) {
	p := capability.DetectGPU(&fakeEnv{gfxErr: errors.New("driver blocklisted")})
	assert.Equal(t, capability.FallbackGPUProfile(), p)
}

func TestDetectGPU_PanicIsRecovered(t *testing.T) {
	var p capability.GPUProfile
	require.NotPanics(t, func() {
		p = capability.DetectGPU(&fakeEnv{panicOn: "graphics"})
	})
	assert.Equal(t, capability.VendorUnknown, p.Vendor)
	assert.True(t, p.IsLowEnd)
}

func TestRecommendedSettings_VendorPolicies(t *testing.T) {
	amd := capability.DetectGPU(&fakeEnv{info: gfx("", "AMD Radeon Pro W6800"), ua: desktopUA})
	assert.True(t, amd.RecommendedSettings.PreserveDrawingBuffer)
	assert.True(t, amd.RecommendedSettings.Antialias)
	assert.Equal(t, capability.PowerHighPerformance, amd.RecommendedSettings.PowerPreference)

	intel := capability.DetectGPU(&fakeEnv{info: gfx("", "Intel(R) Iris(R) Xe Graphics"), ua: desktopUA})
	assert.True(t, intel.RecommendedSettings.PreserveDrawingBuffer)
	assert.False(t, intel.RecommendedSettings.Antialias)

	nvidia := capability.DetectGPU(&fakeEnv{info: gfx("", "NVIDIA GeForce RTX 3070"), ua: desktopUA})
	assert.False(t, nvidia.RecommendedSettings.PreserveDrawingBuffer)
	assert.Equal(t, capability.PrecisionHigh, nvidia.RecommendedSettings.Precision)

	apple := capability.DetectGPU(&fakeEnv{info: gfx("Apple Inc.", "Apple M1"), ua: desktopUA})
	assert.Equal(t, capability.PowerHighPerformance, apple.RecommendedSettings.PowerPreference)
}

func TestRecommendedSettings_EveryVendorIsCovered(t *testing.T) {
	for _, v := range capability.Vendors() {
		for _, lowEnd := range []bool{false, true} {
			p := capability.GPUProfile{Vendor: v, IsLowEnd: lowEnd}.Degrade()
			s := p.RecommendedSettings
			assert.NotEmpty(t, s.PowerPreference, "vendor %s", v)
			assert.NotEmpty(t, s.Precision, "vendor %s", v)
			assert.False(t, s.Antialias, "vendor %s low-end must not antialias", v)
		}
	}
}

func TestGPUProfile_DegradeDoesNotMutate(t *testing.T) {
	orig := capability.DetectGPU(&fakeEnv{info: gfx("", "NVIDIA GeForce RTX 4080"), ua: desktopUA})
	require.False(t, orig.IsLowEnd)

	degraded := orig.Degrade()

	assert.True(t, degraded.IsLowEnd)
	assert.Equal(t, capability.VendorNVIDIA, degraded.Vendor)
	assert.False(t, degraded.RecommendedSettings.Antialias)
	assert.False(t, orig.IsLowEnd)
	assert.True(t, orig.RecommendedSettings.Antialias)
}

func TestGPUProfile_Summary(t *testing.T) {
	nvidia := capability.DetectGPU(&fakeEnv{info: gfx("", "NVIDIA GeForce RTX 4080"), ua: desktopUA})
	assert.Equal(t, "NVIDIA GPU detected, using high-performance mode", nvidia.Summary())

	intel := capability.DetectGPU(&fakeEnv{info: gfx("", "Intel(R) UHD Graphics 620"), ua: desktopUA})
	assert.Equal(t, "Intel integrated GPU detected, using power-saving mode", intel.Summary())

	assert.Equal(t, "Unrecognized GPU, using power-saving mode", capability.FallbackGPUProfile().Summary())
}

func TestMinPrecision(t *testing.T) {
	assert.Equal(t, capability.PrecisionMedium, capability.MinPrecision(capability.PrecisionHigh, capability.PrecisionMedium))
	assert.Equal(t, capability.PrecisionLow, capability.MinPrecision(capability.PrecisionLow, capability.PrecisionHigh))
	assert.Equal(t, capability.PrecisionHigh, capability.MinPrecision(capability.PrecisionHigh, capability.PrecisionHigh))
}
