package capability

// Vendor identifies the GPU family inferred from the renderer strings.
type Vendor string

const (
	VendorAMD     Vendor = "amd"
	VendorNVIDIA  Vendor = "nvidia"
	VendorIntel   Vendor = "intel"
	VendorApple   Vendor = "apple"
	VendorMobile  Vendor = "mobile"
	VendorUnknown Vendor = "unknown"
)

// Vendors returns every Vendor value in a stable order.
func Vendors() []Vendor {
	return []Vendor{VendorAMD, VendorNVIDIA, VendorIntel, VendorApple, VendorMobile, VendorUnknown}
}

// Platform is the coarse device class derived from the user agent.
type Platform string

const (
	PlatformMobile  Platform = "mobile"
	PlatformDesktop Platform = "desktop"
	PlatformUnknown Platform = "unknown"
)

// Platforms returns every Platform value in a stable order.
func Platforms() []Platform {
	return []Platform{PlatformMobile, PlatformDesktop, PlatformUnknown}
}

// Architecture is the CPU instruction set family named by the user agent.
type Architecture string

const (
	ArchX86     Architecture = "x86"
	ArchARM     Architecture = "arm"
	ArchUnknown Architecture = "unknown"
)

// PowerPreference values accepted by WebGL context creation.
const (
	PowerDefault         = "default"
	PowerHighPerformance = "high-performance"
	PowerLowPower        = "low-power"
)

// Precision is a shader float precision qualifier.
type Precision string

const (
	PrecisionHigh   Precision = "highp"
	PrecisionMedium Precision = "mediump"
	PrecisionLow    Precision = "lowp"
)

// RecommendedSettings are the graphics context creation flags to request.
type RecommendedSettings struct {
	Antialias                    bool      `json:"antialias"`
	PowerPreference              string    `json:"powerPreference"`
	PreserveDrawingBuffer        bool      `json:"preserveDrawingBuffer"`
	FailIfMajorPerformanceCaveat bool      `json:"failIfMajorPerformanceCaveat"`
	Alpha                        bool      `json:"alpha"`
	Depth                        bool      `json:"depth"`
	Stencil                      bool      `json:"stencil"`
	Precision                    Precision `json:"precision"`
}

// GPUProfile is the classification of the graphics device. It is a value:
// downgrades produce a new profile via Degrade.
type GPUProfile struct {
	Vendor              Vendor              `json:"vendor"`
	Renderer            string              `json:"renderer"`
	IsIntegrated        bool                `json:"isIntegrated"`
	IsMobile            bool                `json:"isMobile"`
	IsAppleSilicon      bool                `json:"isAppleSilicon"`
	IsLowEnd            bool                `json:"isLowEnd"`
	RecommendedSettings RecommendedSettings `json:"recommendedSettings"`
}

// CPUProfile is the classification of the processor.
type CPUProfile struct {
	Cores            int          `json:"cores"`
	LogicalCores     int          `json:"logicalCores"`
	Architecture     Architecture `json:"architecture"`
	IsLowEnd         bool         `json:"isLowEnd"`
	IsHighEnd        bool         `json:"isHighEnd"`
	Platform         Platform     `json:"platform"`
	ConcurrencyLevel int          `json:"concurrencyLevel"`
	SupportsSIMD     bool         `json:"supportsSIMD"`
	Throttled        bool         `json:"throttled"`
}
