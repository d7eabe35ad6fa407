package tuning

import (
	"github.com/Zachkp/devtier/capability"
)

// MergedParams reconciles CPU and GPU render recommendations. Shared numeric
// limits take the lower value and feature flags require both sides. Anything
// about the graphics pipeline itself comes from the GPU side alone.
type MergedParams struct {
	IsLowEnd         bool                 `json:"isLowEnd"`
	Precision        capability.Precision `json:"precision"`
	TextureSize      int                  `json:"textureSize"`
	Antialias        bool                 `json:"antialias"`
	PowerPreference  string               `json:"powerPreference"`
	PixelRatio       float64              `json:"pixelRatio"`
	GeometrySegments int                  `json:"geometrySegments"`
	MaxDrawCalls     int                  `json:"maxDrawCalls"`
	MaxFPS           int                  `json:"maxFps"`
	UseInstancing    bool                 `json:"useInstancing"`
	GeometryBatching bool                 `json:"geometryBatching"`
	UseLOD           bool                 `json:"useLod"`
	WorkerCount      int                  `json:"workerCount"`

	CPUOptimized CPUParams    `json:"cpuOptimized"`
	GPUOptimized RenderParams `json:"gpuOptimized"`
}

// MergeParams combines the two bundles. The inputs are stored unchanged in
// CPUOptimized and GPUOptimized.
func MergeParams(cpu CPUParams, gpu RenderParams) MergedParams {
	fps := gpu.MaxFPS
	if cpuFPS := cpu.MaxFPS(); cpuFPS > 0 {
		fps = min(fps, cpuFPS)
	}
	return MergedParams{
		IsLowEnd:         cpu.IsLowEnd || gpu.IsLowEnd,
		Precision:        gpu.Precision,
		TextureSize:      gpu.TextureSize,
		Antialias:        gpu.Antialias,
		PowerPreference:  gpu.PowerPreference,
		PixelRatio:       gpu.PixelRatio,
		GeometrySegments: min(cpu.GeometrySegments, gpu.GeometrySegments),
		MaxDrawCalls:     min(cpu.MaxDrawCalls, gpu.MaxDrawCalls),
		MaxFPS:           fps,
		UseInstancing:    cpu.UseInstancing && gpu.UseInstancing,
		GeometryBatching: cpu.GeometryBatching && gpu.GeometryBatching,
		UseLOD:           cpu.UseLOD && gpu.UseLOD,
		WorkerCount:      cpu.WorkerCount,
		CPUOptimized:     cpu,
		GPUOptimized:     gpu,
	}
}

// MergedDetail is the field-wise conservative combination of two
// DetailLevels, with the inputs kept for diagnostics.
type MergedDetail struct {
	DetailLevels

	CPUOptimized DetailLevels `json:"cpuOptimized"`
	GPUOptimized DetailLevels `json:"gpuOptimized"`
}

// MergeDetailLevels takes the minimum of every limit and the AND of every
// flag.
func MergeDetailLevels(cpu, gpu DetailLevels) MergedDetail {
	return MergedDetail{
		DetailLevels: DetailLevels{
			IsLowEnd:         cpu.IsLowEnd || gpu.IsLowEnd,
			SphereSegments:   min(cpu.SphereSegments, gpu.SphereSegments),
			CylinderSegments: min(cpu.CylinderSegments, gpu.CylinderSegments),
			TorusSegments:    min(cpu.TorusSegments, gpu.TorusSegments),
			CurveSegments:    min(cpu.CurveSegments, gpu.CurveSegments),
			Subdivision:      min(cpu.Subdivision, gpu.Subdivision),
			ParticleCount:    min(cpu.ParticleCount, gpu.ParticleCount),
			MaxInstances:     min(cpu.MaxInstances, gpu.MaxInstances),
			DrawDistance:     min(cpu.DrawDistance, gpu.DrawDistance),
			UseLOD:           cpu.UseLOD && gpu.UseLOD,
		},
		CPUOptimized: cpu,
		GPUOptimized: gpu,
	}
}

// Bundles is the full set of resolved parameters for one device.
type Bundles struct {
	Render MergedParams `json:"render"`
	Detail MergedDetail `json:"detail"`
}

// Resolve runs every resolver and both merges.
func Resolve(gpu capability.GPUProfile, cpu capability.CPUProfile) Bundles {
	return Bundles{
		Render: MergeParams(CPURenderParams(cpu), GPURenderParams(gpu)),
		Detail: MergeDetailLevels(CPUDetailLevels(cpu), GPUDetailLevels(gpu)),
	}
}
