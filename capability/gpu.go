package capability

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Limits below these mark a device as low-end.
const (
	MinTextureSize   = 8192
	MinVertexAttribs = 16
)

var mobileUserAgent = regexp.MustCompile(`(?i)android|webos|iphone|ipad|ipod|blackberry|iemobile|opera mini|mobile`)

// vendorKeywords is matched in order; the first hit wins.
var vendorKeywords = []struct {
	vendor   Vendor
	keywords []string
}{
	{VendorAMD, []string{"radeon", "amd"}},
	{VendorNVIDIA, []string{"geforce", "nvidia"}},
	{VendorIntel, []string{"intel", "iris"}},
	{VendorApple, []string{"apple"}},
}

var (
	mobileGPUFamilies = []string{"adreno", "mali", "powervr"}
	appleSiliconHints = []string{"apple gpu", "apple m"}
	softwareRenderers = []string{"webgl", "swiftshader", "llvmpipe"}
)

// vendorSettings maps each vendor to its context creation policy. The mobile
// override and the low-end clamp are applied afterwards.
var vendorSettings = map[Vendor]func(p GPUProfile) RecommendedSettings{
	VendorAMD: func(GPUProfile) RecommendedSettings {
		// Keeping the drawing buffer helps AMD drivers recover a lost context.
		return RecommendedSettings{
			Antialias:             true,
			PowerPreference:       PowerHighPerformance,
			PreserveDrawingBuffer: true,
			Depth:                 true,
			Precision:             PrecisionHigh,
		}
	},
	VendorNVIDIA: func(GPUProfile) RecommendedSettings {
		return RecommendedSettings{
			Antialias:       true,
			PowerPreference: PowerHighPerformance,
			Depth:           true,
			Stencil:         true,
			Precision:       PrecisionHigh,
		}
	},
	VendorIntel: func(GPUProfile) RecommendedSettings {
		// Intel contexts are unstable without a preserved buffer.
		return RecommendedSettings{
			PowerPreference:       PowerDefault,
			PreserveDrawingBuffer: true,
			Depth:                 true,
			Precision:             PrecisionMedium,
		}
	},
	VendorApple: func(p GPUProfile) RecommendedSettings {
		s := RecommendedSettings{
			Antialias:       true,
			PowerPreference: PowerDefault,
			Depth:           true,
			Precision:       PrecisionHigh,
		}
		if p.IsAppleSilicon {
			s.PowerPreference = PowerHighPerformance
		}
		return s
	},
	VendorMobile: func(GPUProfile) RecommendedSettings {
		return RecommendedSettings{
			PowerPreference: PowerLowPower,
			Depth:           true,
			Precision:       PrecisionMedium,
		}
	},
	VendorUnknown: func(GPUProfile) RecommendedSettings {
		return RecommendedSettings{
			PowerPreference: PowerDefault,
			Depth:           true,
			Precision:       PrecisionMedium,
		}
	},
}

// DetectGPU classifies the graphics device of env. It never fails: a missing
// context or a panicking probe yields FallbackGPUProfile.
func DetectGPU(env Environment) (profile GPUProfile) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("capability: gpu probe panicked", slog.Any("panic", r))
			profile = FallbackGPUProfile()
		}
	}()

	info, err := env.GraphicsContext()
	if err != nil {
		Logger().Warn("capability: gpu detection failed", slog.String("error", err.Error()))
		return FallbackGPUProfile()
	}

	profile = ClassifyGPU(info, env.UserAgent())
	Logger().Debug("capability: gpu classified",
		slog.String("vendor", string(profile.Vendor)),
		slog.String("renderer", profile.Renderer),
		slog.Bool("mobile", profile.IsMobile),
		slog.Bool("low_end", profile.IsLowEnd),
	)
	return profile
}

// ClassifyGPU derives a profile from what a graphics context reported.
func ClassifyGPU(info GraphicsInfo, userAgent string) GPUProfile {
	p := GPUProfile{Vendor: VendorUnknown}
	if info.DebugInfo {
		p.Renderer = info.Renderer
	}
	haystack := strings.ToLower(p.Renderer)
	if info.DebugInfo && info.Vendor != "" {
		haystack += " " + strings.ToLower(info.Vendor)
	}
	renderer := strings.ToLower(p.Renderer)

	p.Vendor = matchVendor(haystack)
	switch p.Vendor {
	case VendorIntel:
		p.IsIntegrated = true
	case VendorApple:
		p.IsAppleSilicon = containsAny(renderer, appleSiliconHints)
	}

	mobileGPU := containsAny(renderer, mobileGPUFamilies)
	p.IsMobile = mobileUserAgent.MatchString(userAgent) || mobileGPU
	if p.Vendor == VendorUnknown && mobileGPU {
		p.Vendor = VendorMobile
	}

	p.IsLowEnd = !info.DebugInfo ||
		p.IsMobile ||
		p.IsIntegrated ||
		containsAny(renderer, softwareRenderers) ||
		info.MaxTextureSize < MinTextureSize ||
		info.MaxVertexAttribs < MinVertexAttribs

	p.RecommendedSettings = recommendSettings(p)
	return p
}

// FallbackGPUProfile is substituted whenever detection fails.
func FallbackGPUProfile() GPUProfile {
	p := GPUProfile{Vendor: VendorUnknown, IsLowEnd: true}
	p.RecommendedSettings = recommendSettings(p)
	return p
}

// Degrade returns a copy of p forced to low-end, as used after the rendering
// context was lost. The vendor is kept.
func (p GPUProfile) Degrade() GPUProfile {
	d := p
	d.IsLowEnd = true
	d.RecommendedSettings = recommendSettings(d)
	return d
}

// Summary is a one-line description of the detected device.
func (p GPUProfile) Summary() string {
	tier := "high-performance mode"
	if p.IsLowEnd {
		tier = "power-saving mode"
	}
	var device string
	switch {
	case p.Vendor == VendorUnknown:
		return "Unrecognized GPU, using " + tier
	case p.Vendor == VendorMobile:
		device = "Mobile GPU"
	case p.IsAppleSilicon:
		device = "Apple Silicon GPU"
	case p.IsMobile:
		device = vendorDisplayName(p.Vendor) + " mobile GPU"
	case p.IsIntegrated:
		device = vendorDisplayName(p.Vendor) + " integrated GPU"
	default:
		device = vendorDisplayName(p.Vendor) + " GPU"
	}
	return fmt.Sprintf("%s detected, using %s", device, tier)
}

func recommendSettings(p GPUProfile) RecommendedSettings {
	build, ok := vendorSettings[p.Vendor]
	if !ok {
		build = vendorSettings[VendorUnknown]
	}
	s := build(p)

	if p.IsMobile {
		s.Antialias = false
		s.PowerPreference = PowerLowPower
		s.Precision = MinPrecision(s.Precision, PrecisionMedium)
	}
	if p.IsLowEnd {
		s.Antialias = false
		s.FailIfMajorPerformanceCaveat = false
		s.Precision = MinPrecision(s.Precision, PrecisionMedium)
	}
	return s
}

func matchVendor(haystack string) Vendor {
	for _, entry := range vendorKeywords {
		if containsAny(haystack, entry.keywords) {
			return entry.vendor
		}
	}
	return VendorUnknown
}

func vendorDisplayName(v Vendor) string {
	switch v {
	case VendorAMD:
		return "AMD"
	case VendorNVIDIA:
		return "NVIDIA"
	case VendorIntel:
		return "Intel"
	case VendorApple:
		return "Apple"
	case VendorMobile:
		return "Mobile"
	default:
		return "Unknown"
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

var precisionRank = map[Precision]int{
	PrecisionLow:    0,
	PrecisionMedium: 1,
	PrecisionHigh:   2,
}

// MinPrecision returns the lower of two precisions. Unrecognized values rank
// below lowp.
func MinPrecision(a, b Precision) Precision {
	ra, okA := precisionRank[a]
	rb, okB := precisionRank[b]
	if !okA {
		return a
	}
	if !okB {
		return b
	}
	if ra <= rb {
		return a
	}
	return b
}
