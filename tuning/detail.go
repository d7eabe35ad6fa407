package tuning

import (
	"github.com/Zachkp/devtier/capability"
)

// DetailLevels are geometry and scene density limits. GPU and CPU resolvers
// produce the same shape so the two can be merged field by field.
type DetailLevels struct {
	IsLowEnd         bool    `json:"isLowEnd"`
	SphereSegments   int     `json:"sphereSegments"`
	CylinderSegments int     `json:"cylinderSegments"`
	TorusSegments    int     `json:"torusSegments"`
	CurveSegments    int     `json:"curveSegments"`
	Subdivision      int     `json:"subdivision"`
	ParticleCount    int     `json:"particleCount"`
	MaxInstances     int     `json:"maxInstances"`
	DrawDistance     float64 `json:"drawDistance"`
	UseLOD           bool    `json:"useLod"`
}

var (
	lowDetail = DetailLevels{
		IsLowEnd:         true,
		SphereSegments:   16,
		CylinderSegments: 12,
		TorusSegments:    24,
		CurveSegments:    24,
		Subdivision:      1,
		ParticleCount:    500,
		MaxInstances:     200,
		DrawDistance:     250,
		UseLOD:           true,
	}
	standardDetail = DetailLevels{
		SphereSegments:   48,
		CylinderSegments: 32,
		TorusSegments:    64,
		CurveSegments:    64,
		Subdivision:      2,
		ParticleCount:    3000,
		MaxInstances:     1000,
		DrawDistance:     800,
		UseLOD:           true,
	}
	richDetail = DetailLevels{
		SphereSegments:   64,
		CylinderSegments: 48,
		TorusSegments:    128,
		CurveSegments:    96,
		Subdivision:      3,
		ParticleCount:    8000,
		MaxInstances:     3000,
		DrawDistance:     1200,
		UseLOD:           true,
	}
)

// detailCaps are upper bounds. Zero means unbounded.
type detailCaps struct {
	SphereSegments   int
	CylinderSegments int
	TorusSegments    int
	CurveSegments    int
	Subdivision      int
	ParticleCount    int
	MaxInstances     int
	DrawDistance     float64
}

func capsOf(d DetailLevels) detailCaps {
	return detailCaps{
		SphereSegments:   d.SphereSegments,
		CylinderSegments: d.CylinderSegments,
		TorusSegments:    d.TorusSegments,
		CurveSegments:    d.CurveSegments,
		Subdivision:      d.Subdivision,
		ParticleCount:    d.ParticleCount,
		MaxInstances:     d.MaxInstances,
		DrawDistance:     d.DrawDistance,
	}
}

func (c detailCaps) apply(d DetailLevels) DetailLevels {
	d.SphereSegments = capInt(d.SphereSegments, c.SphereSegments)
	d.CylinderSegments = capInt(d.CylinderSegments, c.CylinderSegments)
	d.TorusSegments = capInt(d.TorusSegments, c.TorusSegments)
	d.CurveSegments = capInt(d.CurveSegments, c.CurveSegments)
	d.Subdivision = capInt(d.Subdivision, c.Subdivision)
	d.ParticleCount = capInt(d.ParticleCount, c.ParticleCount)
	d.MaxInstances = capInt(d.MaxInstances, c.MaxInstances)
	d.DrawDistance = capFloat(d.DrawDistance, c.DrawDistance)
	return d
}

var vendorDetailCaps = map[capability.Vendor]detailCaps{
	capability.VendorAMD:    {},
	capability.VendorNVIDIA: {},
	capability.VendorIntel: {
		SphereSegments: 32,
		TorusSegments:  48,
		ParticleCount:  2000,
		MaxInstances:   600,
	},
	capability.VendorApple: {ParticleCount: 5000},
	capability.VendorMobile: {
		SphereSegments:   24,
		CylinderSegments: 16,
		TorusSegments:    32,
		CurveSegments:    32,
		Subdivision:      1,
		ParticleCount:    1000,
		MaxInstances:     400,
		DrawDistance:     400,
	},
	capability.VendorUnknown: {
		SphereSegments: 32,
		TorusSegments:  48,
		ParticleCount:  2000,
		MaxInstances:   800,
	},
}

var mobileDetailCaps = detailCaps{
	SphereSegments:   24,
	CylinderSegments: 16,
	TorusSegments:    32,
	CurveSegments:    32,
	Subdivision:      1,
	ParticleCount:    1000,
	MaxInstances:     400,
	DrawDistance:     400,
}

// GPUDetailLevels derives geometry detail from a GPU profile.
func GPUDetailLevels(gpu capability.GPUProfile) DetailLevels {
	d := standardDetail
	if gpu.IsLowEnd {
		d = lowDetail
	}
	d = vendorDetailCaps[gpu.Vendor].apply(d)
	if gpu.IsMobile {
		d = mobileDetailCaps.apply(d)
	}
	if gpu.IsLowEnd {
		d = capsOf(lowDetail).apply(d)
		d.IsLowEnd = true
	}
	return d
}

var platformDetailCaps = map[capability.Platform]detailCaps{
	capability.PlatformDesktop: {},
	capability.PlatformUnknown: {ParticleCount: 3000, MaxInstances: 1000},
	capability.PlatformMobile:  mobileDetailCaps,
}

// CPUDetailLevels derives geometry detail from a CPU profile. Subdivision
// and particle counts cost CPU time on every rebuild, so throttled hosts get
// the low tier even with many cores.
func CPUDetailLevels(cpu capability.CPUProfile) DetailLevels {
	conservative := cpu.IsLowEnd || cpu.Throttled
	d := standardDetail
	if conservative {
		d = lowDetail
	}
	if cpu.IsHighEnd && !cpu.Throttled {
		d = richDetail
	}
	d = platformDetailCaps[cpu.Platform].apply(d)
	if conservative {
		d = capsOf(lowDetail).apply(d)
	}
	d.IsLowEnd = cpu.IsLowEnd
	return d
}
