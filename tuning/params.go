// Package tuning maps capability profiles to rendering parameter bundles.
//
// Every resolver is a pure, total function of its profile. Values are built
// in a fixed order:
//
//  1. a baseline chosen by IsLowEnd (and Throttled for CPU profiles)
//  2. the high-end boost (CPU only, IsHighEnd && !Throttled)
//  3. the vendor or platform table, which can only tighten
//  4. the mobile override
//  5. the low-end clamp, which always has the last word
//
// Tables are keyed by the closed enums in package capability; the tests walk
// every enum value.
package tuning

import (
	"github.com/Zachkp/devtier/capability"
)

// ShadowType is the shadow map filtering mode.
type ShadowType string

const (
	ShadowBasic   ShadowType = "basic"
	ShadowPCF     ShadowType = "pcf"
	ShadowPCFSoft ShadowType = "pcfsoft"
)

var shadowRank = map[ShadowType]int{ShadowBasic: 0, ShadowPCF: 1, ShadowPCFSoft: 2}

func minShadow(a, b ShadowType) ShadowType {
	if shadowRank[b] < shadowRank[a] {
		return b
	}
	return a
}

// RenderParams are the renderer settings derived from a GPU profile.
type RenderParams struct {
	IsLowEnd         bool                 `json:"isLowEnd"`
	Precision        capability.Precision `json:"precision"`
	Antialias        bool                 `json:"antialias"`
	PowerPreference  string               `json:"powerPreference"`
	PixelRatio       float64              `json:"pixelRatio"`
	MaxLights        int                  `json:"maxLights"`
	ShadowMapEnabled bool                 `json:"shadowMapEnabled"`
	ShadowMapSize    int                  `json:"shadowMapSize"`
	ShadowType       ShadowType           `json:"shadowType"`
	TextureSize      int                  `json:"textureSize"`
	Anisotropy       int                  `json:"anisotropy"`
	GeometrySegments int                  `json:"geometrySegments"`
	MaxDrawCalls     int                  `json:"maxDrawCalls"`
	MaxFPS           int                  `json:"maxFps"`
	UseInstancing    bool                 `json:"useInstancing"`
	GeometryBatching bool                 `json:"geometryBatching"`
	UseLOD           bool                 `json:"useLod"`
	PostProcessing   bool                 `json:"postProcessing"`
}

func baselineRenderParams(lowEnd bool) RenderParams {
	if lowEnd {
		return RenderParams{
			IsLowEnd:         true,
			Precision:        capability.PrecisionMedium,
			PixelRatio:       1,
			MaxLights:        2,
			ShadowMapSize:    512,
			ShadowType:       ShadowBasic,
			TextureSize:      1024,
			Anisotropy:       1,
			GeometrySegments: 16,
			MaxDrawCalls:     200,
			MaxFPS:           30,
			UseInstancing:    true,
			GeometryBatching: true,
			UseLOD:           true,
		}
	}
	return RenderParams{
		Precision:        capability.PrecisionHigh,
		Antialias:        true,
		PixelRatio:       2,
		MaxLights:        8,
		ShadowMapEnabled: true,
		ShadowMapSize:    2048,
		ShadowType:       ShadowPCFSoft,
		TextureSize:      4096,
		Anisotropy:       8,
		GeometrySegments: 64,
		MaxDrawCalls:     1000,
		MaxFPS:           60,
		UseInstancing:    true,
		GeometryBatching: true,
		UseLOD:           true,
		PostProcessing:   true,
	}
}

// renderCaps are upper bounds. Zero means unbounded.
type renderCaps struct {
	PixelRatio       float64
	MaxLights        int
	ShadowMapSize    int
	ShadowType       ShadowType
	TextureSize      int
	Anisotropy       int
	GeometrySegments int
	MaxDrawCalls     int
	MaxFPS           int
	NoShadows        bool
	NoPost           bool
	NoAntialias      bool
	Precision        capability.Precision
	PowerPreference  string
}

var vendorRenderCaps = map[capability.Vendor]renderCaps{
	capability.VendorAMD:    {MaxDrawCalls: 800},
	capability.VendorNVIDIA: {},
	capability.VendorIntel: {
		PixelRatio:    1.5,
		MaxLights:     4,
		ShadowMapSize: 1024,
		ShadowType:    ShadowPCF,
		Anisotropy:    4,
		NoPost:        true,
	},
	capability.VendorApple: {Anisotropy: 8},
	capability.VendorMobile: {
		PixelRatio:       1.5,
		MaxLights:        2,
		ShadowMapSize:    512,
		TextureSize:      2048,
		Anisotropy:       2,
		GeometrySegments: 32,
		MaxDrawCalls:     300,
		NoPost:           true,
	},
	capability.VendorUnknown: {
		MaxLights:     4,
		ShadowMapSize: 1024,
		TextureSize:   2048,
		Anisotropy:    4,
		MaxDrawCalls:  500,
	},
}

var mobileRenderCaps = renderCaps{
	PixelRatio:       1.5,
	MaxLights:        2,
	ShadowMapSize:    512,
	ShadowType:       ShadowBasic,
	TextureSize:      2048,
	GeometrySegments: 32,
	MaxDrawCalls:     300,
	NoShadows:        true,
	NoPost:           true,
	NoAntialias:      true,
	Precision:        capability.PrecisionMedium,
	PowerPreference:  capability.PowerLowPower,
}

var lowEndRenderCaps = renderCaps{
	PixelRatio:       1,
	MaxLights:        2,
	ShadowMapSize:    512,
	ShadowType:       ShadowBasic,
	TextureSize:      1024,
	Anisotropy:       1,
	GeometrySegments: 16,
	MaxDrawCalls:     200,
	MaxFPS:           30,
	NoShadows:        true,
	NoPost:           true,
	NoAntialias:      true,
	Precision:        capability.PrecisionMedium,
}

func (c renderCaps) apply(p RenderParams) RenderParams {
	p.PixelRatio = capFloat(p.PixelRatio, c.PixelRatio)
	p.MaxLights = capInt(p.MaxLights, c.MaxLights)
	p.ShadowMapSize = capInt(p.ShadowMapSize, c.ShadowMapSize)
	p.TextureSize = capInt(p.TextureSize, c.TextureSize)
	p.Anisotropy = capInt(p.Anisotropy, c.Anisotropy)
	p.GeometrySegments = capInt(p.GeometrySegments, c.GeometrySegments)
	p.MaxDrawCalls = capInt(p.MaxDrawCalls, c.MaxDrawCalls)
	p.MaxFPS = capInt(p.MaxFPS, c.MaxFPS)
	if c.ShadowType != "" {
		p.ShadowType = minShadow(p.ShadowType, c.ShadowType)
	}
	if c.Precision != "" {
		p.Precision = capability.MinPrecision(p.Precision, c.Precision)
	}
	if c.PowerPreference != "" {
		p.PowerPreference = c.PowerPreference
	}
	if c.NoShadows {
		p.ShadowMapEnabled = false
	}
	if c.NoPost {
		p.PostProcessing = false
	}
	if c.NoAntialias {
		p.Antialias = false
	}
	return p
}

// GPURenderParams derives renderer settings from a GPU profile.
func GPURenderParams(gpu capability.GPUProfile) RenderParams {
	p := baselineRenderParams(gpu.IsLowEnd)

	settings := gpu.RecommendedSettings
	p.Antialias = p.Antialias && settings.Antialias
	p.PowerPreference = settings.PowerPreference
	if p.PowerPreference == "" {
		p.PowerPreference = capability.PowerDefault
	}
	if settings.Precision != "" {
		p.Precision = capability.MinPrecision(p.Precision, settings.Precision)
	}

	p = vendorRenderCaps[gpu.Vendor].apply(p)
	if gpu.IsMobile {
		p = mobileRenderCaps.apply(p)
	}
	if gpu.IsLowEnd {
		p = lowEndRenderCaps.apply(p)
		p.IsLowEnd = true
	}
	return p
}

// CPUParams are the simulation and scene-management settings derived from
// a CPU profile.
type CPUParams struct {
	IsLowEnd             bool    `json:"isLowEnd"`
	Throttled            bool    `json:"throttled"`
	WorkerCount          int     `json:"workerCount"`
	UseWorkers           bool    `json:"useWorkers"`
	MaxPhysicsIterations int     `json:"maxPhysicsIterations"`
	CullingInterval      int     `json:"cullingInterval"` // frames between culling passes
	MaxBones             int     `json:"maxBones"`
	MaxAnimations        int     `json:"maxAnimations"`
	ParticleSystems      int     `json:"particleSystems"`
	MaxActiveObjects     int     `json:"maxActiveObjects"`
	GeometrySegments     int     `json:"geometrySegments"`
	MaxDrawCalls         int     `json:"maxDrawCalls"`
	TargetFrameTimeMs    float64 `json:"targetFrameTimeMs"`
	UseInstancing        bool    `json:"useInstancing"`
	GeometryBatching     bool    `json:"geometryBatching"`
	UseLOD               bool    `json:"useLod"`
}

// MaxFPS is the frame rate implied by the frame-time budget.
func (p CPUParams) MaxFPS() int {
	if p.TargetFrameTimeMs <= 0 {
		return 0
	}
	return int(1000/p.TargetFrameTimeMs + 0.5)
}

const (
	frameTime30  = 1000.0 / 30
	frameTime60  = 1000.0 / 60
	frameTime120 = 1000.0 / 120
)

func baselineCPUParams(conservative bool) CPUParams {
	if conservative {
		return CPUParams{
			WorkerCount:          1,
			MaxPhysicsIterations: 2,
			CullingInterval:      6,
			MaxBones:             24,
			MaxAnimations:        2,
			ParticleSystems:      1,
			MaxActiveObjects:     100,
			GeometrySegments:     16,
			MaxDrawCalls:         200,
			TargetFrameTimeMs:    frameTime30,
			UseInstancing:        true,
			GeometryBatching:     true,
			UseLOD:               true,
		}
	}
	return CPUParams{
		WorkerCount:          2,
		MaxPhysicsIterations: 8,
		CullingInterval:      2,
		MaxBones:             64,
		MaxAnimations:        8,
		ParticleSystems:      4,
		MaxActiveObjects:     500,
		GeometrySegments:     48,
		MaxDrawCalls:         800,
		TargetFrameTimeMs:    frameTime60,
		UseInstancing:        true,
		GeometryBatching:     true,
		UseLOD:               true,
	}
}

func highEndCPUBoost(p CPUParams) CPUParams {
	p.MaxPhysicsIterations = 16
	p.CullingInterval = 1
	p.MaxBones = 128
	p.MaxAnimations = 16
	p.ParticleSystems = 8
	p.MaxActiveObjects = 1500
	p.GeometrySegments = 64
	p.MaxDrawCalls = 1200
	p.TargetFrameTimeMs = frameTime120
	return p
}

// cpuCaps are upper bounds, except CullingInterval and TargetFrameTimeMs
// which are lower bounds (a longer interval or budget is more conservative).
type cpuCaps struct {
	WorkerCount          int
	MaxPhysicsIterations int
	CullingInterval      int
	MaxBones             int
	MaxAnimations        int
	ParticleSystems      int
	MaxActiveObjects     int
	GeometrySegments     int
	MaxDrawCalls         int
	TargetFrameTimeMs    float64
}

// platformCPUCaps holds the per-platform limits. The mobile row is the
// mobile override.
var platformCPUCaps = map[capability.Platform]cpuCaps{
	capability.PlatformDesktop: {},
	capability.PlatformUnknown: {
		MaxPhysicsIterations: 8,
		MaxActiveObjects:     500,
		MaxDrawCalls:         600,
	},
	capability.PlatformMobile: {
		WorkerCount:          2,
		MaxPhysicsIterations: 4,
		CullingInterval:      3,
		MaxBones:             32,
		MaxAnimations:        4,
		ParticleSystems:      2,
		MaxActiveObjects:     250,
		GeometrySegments:     32,
		MaxDrawCalls:         300,
		TargetFrameTimeMs:    frameTime60,
	},
}

var conservativeCPUCaps = cpuCaps{
	WorkerCount:          1,
	MaxPhysicsIterations: 2,
	CullingInterval:      6,
	MaxBones:             24,
	MaxAnimations:        2,
	ParticleSystems:      1,
	MaxActiveObjects:     100,
	GeometrySegments:     16,
	MaxDrawCalls:         200,
	TargetFrameTimeMs:    frameTime30,
}

func (c cpuCaps) apply(p CPUParams) CPUParams {
	p.WorkerCount = capInt(p.WorkerCount, c.WorkerCount)
	p.MaxPhysicsIterations = capInt(p.MaxPhysicsIterations, c.MaxPhysicsIterations)
	p.CullingInterval = max(p.CullingInterval, c.CullingInterval)
	p.MaxBones = capInt(p.MaxBones, c.MaxBones)
	p.MaxAnimations = capInt(p.MaxAnimations, c.MaxAnimations)
	p.ParticleSystems = capInt(p.ParticleSystems, c.ParticleSystems)
	p.MaxActiveObjects = capInt(p.MaxActiveObjects, c.MaxActiveObjects)
	p.GeometrySegments = capInt(p.GeometrySegments, c.GeometrySegments)
	p.MaxDrawCalls = capInt(p.MaxDrawCalls, c.MaxDrawCalls)
	p.TargetFrameTimeMs = max(p.TargetFrameTimeMs, c.TargetFrameTimeMs)
	return p
}

// CPURenderParams derives simulation settings from a CPU profile.
func CPURenderParams(cpu capability.CPUProfile) CPUParams {
	conservative := cpu.IsLowEnd || cpu.Throttled
	p := baselineCPUParams(conservative)
	p.Throttled = cpu.Throttled
	p.WorkerCount = max(1, cpu.ConcurrencyLevel)

	if cpu.IsHighEnd && !cpu.Throttled {
		p = highEndCPUBoost(p)
	}
	p = platformCPUCaps[cpu.Platform].apply(p)
	if conservative {
		p = conservativeCPUCaps.apply(p)
	}
	p.IsLowEnd = cpu.IsLowEnd
	p.UseWorkers = p.WorkerCount > 1
	return p
}

func capInt(v, limit int) int {
	if limit > 0 && v > limit {
		return limit
	}
	return v
}

func capFloat(v, limit float64) float64 {
	if limit > 0 && v > limit {
		return limit
	}
	return v
}
