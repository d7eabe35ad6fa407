package capability

import (
	"log/slog"
	"slices"
	"strings"
	"time"
)

// DefaultLogicalCores is assumed when the host does not report a count.
const DefaultLogicalCores = 2

// Core count thresholds per platform. Unknown platforms use the desktop row.
var coreThresholds = map[Platform]struct{ lowEnd, highEnd int }{
	PlatformMobile:  {lowEnd: 4, highEnd: 8},
	PlatformDesktop: {lowEnd: 2, highEnd: 8},
	PlatformUnknown: {lowEnd: 2, highEnd: 8},
}

var (
	armHints = []string{"arm", "aarch64", "iphone", "ipad"}
	x86Hints = []string{"x86", "x64", "win64", "wow64", "amd64", "i686", "intel"}
)

// DetectCPU classifies the processor of env. It never fails: fields that
// could not be probed keep their defaults and Throttled stays false.
func DetectCPU(env Environment, cfg ThrottleConfig) (profile CPUProfile) {
	profile = CPUProfile{
		Cores:            1,
		LogicalCores:     DefaultLogicalCores,
		Architecture:     ArchUnknown,
		Platform:         PlatformUnknown,
		ConcurrencyLevel: 1,
	}
	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("capability: cpu probe panicked", slog.Any("panic", r))
			profile.Throttled = false
		}
	}()

	if n, ok := env.HardwareConcurrency(); ok && n > 0 {
		profile.LogicalCores = n
	}
	profile.Cores = max(1, profile.LogicalCores/2)

	ua := env.UserAgent()
	profile.Platform = classifyPlatform(ua)
	profile.Architecture = classifyArchitecture(ua)
	profile.SupportsSIMD = env.WebAssemblyValidate()

	// Classification is assigned before the benchmark runs so that a failing
	// timer leaves a usable profile behind.
	limits := coreThresholds[profile.Platform]
	profile.IsLowEnd = profile.LogicalCores <= limits.lowEnd
	profile.IsHighEnd = profile.LogicalCores >= limits.highEnd
	profile.ConcurrencyLevel = ConcurrencyLevel(profile)

	cfg = cfg.withDefaults()
	samples, err := env.ThrottleSamples(cfg)
	if err != nil {
		Logger().Warn("capability: throttle benchmark failed", slog.String("error", err.Error()))
		return profile
	}
	profile.Throttled = EvaluateThrottle(samples, cfg.Ratio)
	profile.ConcurrencyLevel = ConcurrencyLevel(profile)

	Logger().Debug("capability: cpu classified",
		slog.Int("logical_cores", profile.LogicalCores),
		slog.String("platform", string(profile.Platform)),
		slog.String("arch", string(profile.Architecture)),
		slog.Bool("throttled", profile.Throttled),
		slog.Int("concurrency", profile.ConcurrencyLevel),
	)
	return profile
}

// ClassifyCPU builds a profile from already-known facts without running the
// benchmark.
func ClassifyCPU(logicalCores int, userAgent string, simd, throttled bool) CPUProfile {
	if logicalCores <= 0 {
		logicalCores = DefaultLogicalCores
	}
	p := CPUProfile{
		Cores:        max(1, logicalCores/2),
		LogicalCores: logicalCores,
		Architecture: classifyArchitecture(userAgent),
		Platform:     classifyPlatform(userAgent),
		SupportsSIMD: simd,
		Throttled:    throttled,
	}
	limits := coreThresholds[p.Platform]
	p.IsLowEnd = p.LogicalCores <= limits.lowEnd
	p.IsHighEnd = p.LogicalCores >= limits.highEnd
	p.ConcurrencyLevel = ConcurrencyLevel(p)
	return p
}

// ConcurrencyLevel is the recommended worker count for p.
func ConcurrencyLevel(p CPUProfile) int {
	switch {
	case p.IsLowEnd || p.Throttled:
		return 1
	case p.IsHighEnd:
		return max(2, p.LogicalCores*3/4)
	default:
		return max(1, p.LogicalCores/2)
	}
}

// EvaluateThrottle reports whether the slowest sample exceeds the fastest by
// more than ratio. Fewer than two samples, or a zero fastest sample, never
// count as throttled.
func EvaluateThrottle(samples []time.Duration, ratio float64) bool {
	if len(samples) < 2 {
		return false
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	fastest, slowest := sorted[0], sorted[len(sorted)-1]
	if fastest <= 0 {
		return false
	}
	return float64(slowest)/float64(fastest) > ratio
}

// Degrade returns a copy of p forced to the most conservative tier.
func (p CPUProfile) Degrade() CPUProfile {
	d := p
	d.IsLowEnd = true
	d.IsHighEnd = false
	d.ConcurrencyLevel = 1
	return d
}

func classifyPlatform(ua string) Platform {
	switch {
	case ua == "":
		return PlatformUnknown
	case mobileUserAgent.MatchString(ua):
		return PlatformMobile
	default:
		return PlatformDesktop
	}
}

func classifyArchitecture(ua string) Architecture {
	lower := strings.ToLower(ua)
	switch {
	case containsAny(lower, armHints):
		return ArchARM
	case containsAny(lower, x86Hints):
		return ArchX86
	default:
		return ArchUnknown
	}
}
