package tuning_test

import (
	"testing"

	"github.com/Zachkp/devtier/capability"
	"github.com/Zachkp/devtier/tuning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/124.0 Safari/537.36"
	androidUA = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 Chrome/124.0 Mobile Safari/537.36"
)

func gpuProfile(vendor capability.Vendor, renderer string, lowEnd, mobile bool) capability.GPUProfile {
	info := capability.GraphicsInfo{
		DebugInfo:        true,
		Renderer:         renderer,
		MaxTextureSize:   16384,
		MaxVertexAttribs: 16,
	}
	p := capability.ClassifyGPU(info, desktopUA)
	p.Vendor = vendor
	p.IsMobile = mobile
	if lowEnd {
		return p.Degrade()
	}
	p.IsLowEnd = false
	return p
}

func assertRenderNotLooser(t *testing.T, low, high tuning.RenderParams, label string) {
	t.Helper()
	assert.LessOrEqual(t, low.MaxLights, high.MaxLights, label)
	assert.LessOrEqual(t, low.ShadowMapSize, high.ShadowMapSize, label)
	assert.LessOrEqual(t, low.TextureSize, high.TextureSize, label)
	assert.LessOrEqual(t, low.Anisotropy, high.Anisotropy, label)
	assert.LessOrEqual(t, low.GeometrySegments, high.GeometrySegments, label)
	assert.LessOrEqual(t, low.MaxDrawCalls, high.MaxDrawCalls, label)
	assert.LessOrEqual(t, low.MaxFPS, high.MaxFPS, label)
	assert.LessOrEqual(t, low.PixelRatio, high.PixelRatio, label)
}

func assertDetailNotLooser(t *testing.T, low, high tuning.DetailLevels, label string) {
	t.Helper()
	assert.LessOrEqual(t, low.SphereSegments, high.SphereSegments, label)
	assert.LessOrEqual(t, low.CylinderSegments, high.CylinderSegments, label)
	assert.LessOrEqual(t, low.TorusSegments, high.TorusSegments, label)
	assert.LessOrEqual(t, low.CurveSegments, high.CurveSegments, label)
	assert.LessOrEqual(t, low.Subdivision, high.Subdivision, label)
	assert.LessOrEqual(t, low.ParticleCount, high.ParticleCount, label)
	assert.LessOrEqual(t, low.MaxInstances, high.MaxInstances, label)
	assert.LessOrEqual(t, low.DrawDistance, high.DrawDistance, label)
}

func TestGPU_LowEndIsNeverLooser(t *testing.T) {
	for _, v := range capability.Vendors() {
		for _, mobile := range []bool{false, true} {
			label := string(v)
			if mobile {
				label += "/mobile"
			}
			high := gpuProfile(v, "", false, mobile)
			low := gpuProfile(v, "", true, mobile)

			assertRenderNotLooser(t, tuning.GPURenderParams(low), tuning.GPURenderParams(high), label)
			assertDetailNotLooser(t, tuning.GPUDetailLevels(low), tuning.GPUDetailLevels(high), label)

			lowParams := tuning.GPURenderParams(low)
			assert.True(t, lowParams.IsLowEnd, label)
			assert.False(t, lowParams.Antialias, label)
			assert.False(t, lowParams.ShadowMapEnabled, label)
			assert.False(t, lowParams.PostProcessing, label)
			assert.Equal(t, capability.PrecisionMedium, lowParams.Precision, label)
		}
	}
}

func TestGPURenderParams_HighEndNVIDIA(t *testing.T) {
	p := tuning.GPURenderParams(gpuProfile(capability.VendorNVIDIA, "NVIDIA GeForce RTX 4090", false, false))

	assert.False(t, p.IsLowEnd)
	assert.Equal(t, capability.PrecisionHigh, p.Precision)
	assert.True(t, p.Antialias)
	assert.Equal(t, 8, p.MaxLights)
	assert.Equal(t, 2048, p.ShadowMapSize)
	assert.Equal(t, tuning.ShadowPCFSoft, p.ShadowType)
	assert.Equal(t, 4096, p.TextureSize)
	assert.True(t, p.PostProcessing)
	assert.Equal(t, capability.PowerHighPerformance, p.PowerPreference)
}

func TestGPURenderParams_VendorTightens(t *testing.T) {
	amd := tuning.GPURenderParams(gpuProfile(capability.VendorAMD, "AMD Radeon RX 6800", false, false))
	assert.Equal(t, 800, amd.MaxDrawCalls)

	unknown := tuning.GPURenderParams(gpuProfile(capability.VendorUnknown, "", false, false))
	assert.Equal(t, 4, unknown.MaxLights)
	assert.Equal(t, 2048, unknown.TextureSize)
}

func TestGPURenderParams_MobileOverrideWins(t *testing.T) {
	// Apple desktop policy would request high-performance; the mobile
	// override comes after the vendor table.
	p := gpuProfile(capability.VendorApple, "Apple GPU", false, true)
	params := tuning.GPURenderParams(p)

	assert.False(t, params.Antialias)
	assert.Equal(t, capability.PowerLowPower, params.PowerPreference)
	assert.False(t, params.ShadowMapEnabled)
	assert.Equal(t, 2, params.MaxLights)
	assert.Equal(t, 2048, params.TextureSize)
	assert.LessOrEqual(t, params.PixelRatio, 1.5)
}

func TestGPURenderParams_ZeroProfile(t *testing.T) {
	p := tuning.GPURenderParams(capability.GPUProfile{})
	assert.Equal(t, capability.PowerDefault, p.PowerPreference)
	assert.NotZero(t, p.MaxDrawCalls)
}

func TestGPUDetailLevels_Intel(t *testing.T) {
	d := tuning.GPUDetailLevels(capability.ClassifyGPU(capability.GraphicsInfo{
		DebugInfo: true, Renderer: "Intel(R) UHD Graphics 620", MaxTextureSize: 16384, MaxVertexAttribs: 16,
	}, desktopUA))

	assert.True(t, d.IsLowEnd)
	assert.Equal(t, 16, d.SphereSegments)
	assert.Equal(t, 500, d.ParticleCount)
}

func TestCPU_LowEndIsNeverLooser(t *testing.T) {
	uas := map[capability.Platform]string{
		capability.PlatformDesktop: desktopUA,
		capability.PlatformMobile:  androidUA,
		capability.PlatformUnknown: "",
	}
	for platform, ua := range uas {
		for _, cores := range []int{4, 8, 16} {
			high := capability.ClassifyCPU(cores, ua, true, false)
			require.Equal(t, platform, high.Platform)
			low := high.Degrade()
			throttled := capability.ClassifyCPU(cores, ua, true, true)

			for _, conservative := range []capability.CPUProfile{low, throttled} {
				lp, hp := tuning.CPURenderParams(conservative), tuning.CPURenderParams(high)
				label := string(platform)
				assert.LessOrEqual(t, lp.WorkerCount, hp.WorkerCount, label)
				assert.LessOrEqual(t, lp.MaxPhysicsIterations, hp.MaxPhysicsIterations, label)
				assert.GreaterOrEqual(t, lp.CullingInterval, hp.CullingInterval, label)
				assert.LessOrEqual(t, lp.MaxBones, hp.MaxBones, label)
				assert.LessOrEqual(t, lp.MaxAnimations, hp.MaxAnimations, label)
				assert.LessOrEqual(t, lp.ParticleSystems, hp.ParticleSystems, label)
				assert.LessOrEqual(t, lp.MaxActiveObjects, hp.MaxActiveObjects, label)
				assert.LessOrEqual(t, lp.GeometrySegments, hp.GeometrySegments, label)
				assert.LessOrEqual(t, lp.MaxDrawCalls, hp.MaxDrawCalls, label)
				assert.GreaterOrEqual(t, lp.TargetFrameTimeMs, hp.TargetFrameTimeMs, label)
				assert.Equal(t, 1, lp.WorkerCount, label)
				assert.False(t, lp.UseWorkers, label)

				assertDetailNotLooser(t, tuning.CPUDetailLevels(conservative), tuning.CPUDetailLevels(high), label)
			}
		}
	}
}

func TestCPURenderParams_HighEndBoost(t *testing.T) {
	cpu := capability.ClassifyCPU(16, desktopUA, true, false)
	p := tuning.CPURenderParams(cpu)

	assert.Equal(t, 12, p.WorkerCount)
	assert.True(t, p.UseWorkers)
	assert.Equal(t, 16, p.MaxPhysicsIterations)
	assert.Equal(t, 1, p.CullingInterval)
	assert.Equal(t, 128, p.MaxBones)
	assert.Equal(t, 16, p.MaxAnimations)
	assert.Equal(t, 8, p.ParticleSystems)
	assert.Equal(t, 1500, p.MaxActiveObjects)
	assert.Equal(t, 120, p.MaxFPS())

	d := tuning.CPUDetailLevels(cpu)
	assert.Equal(t, 3, d.Subdivision)
}

func TestCPURenderParams_ThrottledSkipsBoost(t *testing.T) {
	cpu := capability.ClassifyCPU(16, desktopUA, true, true)
	p := tuning.CPURenderParams(cpu)

	assert.True(t, p.Throttled)
	assert.False(t, p.IsLowEnd)
	assert.Equal(t, 1, p.WorkerCount)
	assert.Equal(t, 2, p.MaxPhysicsIterations)
	assert.Equal(t, 30, p.MaxFPS())
	assert.Equal(t, 1, tuning.CPUDetailLevels(cpu).Subdivision)
}

func TestCPURenderParams_MobileHighEndIsCapped(t *testing.T) {
	cpu := capability.ClassifyCPU(8, androidUA, true, false)
	require.True(t, cpu.IsHighEnd)
	p := tuning.CPURenderParams(cpu)

	assert.Equal(t, 2, p.WorkerCount)
	assert.Equal(t, 4, p.MaxPhysicsIterations)
	assert.Equal(t, 3, p.CullingInterval)
	assert.Equal(t, 60, p.MaxFPS())
	assert.Equal(t, 1, tuning.CPUDetailLevels(cpu).Subdivision)
}

func TestCPURenderParams_MidRange(t *testing.T) {
	p := tuning.CPURenderParams(capability.ClassifyCPU(6, desktopUA, true, false))
	assert.Equal(t, 3, p.WorkerCount)
	assert.Equal(t, 8, p.MaxPhysicsIterations)
	assert.Equal(t, 60, p.MaxFPS())
}

func TestResolversAreDeterministic(t *testing.T) {
	gpu := gpuProfile(capability.VendorIntel, "Intel Iris Xe", false, false)
	cpu := capability.ClassifyCPU(8, desktopUA, true, false)

	assert.Equal(t, tuning.Resolve(gpu, cpu), tuning.Resolve(gpu, cpu))
}
