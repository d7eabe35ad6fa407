//go:build !js || !wasm

package capability

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/klauspost/cpuid/v2"
)

// CPUBrand is the processor brand string of the host, for diagnostics.
func CPUBrand() string {
	return cpuid.CPU.BrandName
}

// NativeEnvironment probes the machine the process runs on. GPUs are found
// through the Linux DRM sysfs tree; other systems report no graphics context.
type NativeEnvironment struct {
	// sysRoot is "/sys" in production and a synthetic tree in tests.
	sysRoot string
	goos    string
	goarch  string
	clock   Clock
}

var _ Environment = (*NativeEnvironment)(nil)

// NewNativeEnvironment returns an environment reading the real /sys tree.
func NewNativeEnvironment() *NativeEnvironment {
	return &NativeEnvironment{
		sysRoot: "/sys",
		goos:    runtime.GOOS,
		goarch:  runtime.GOARCH,
		clock:   MonotonicClock(),
	}
}

// NewNativeEnvironmentFrom reads sysfs from sysRoot and reports the given
// GOOS/GOARCH. Intended for tests.
func NewNativeEnvironmentFrom(sysRoot, goos, goarch string) *NativeEnvironment {
	return &NativeEnvironment{sysRoot: sysRoot, goos: goos, goarch: goarch, clock: MonotonicClock()}
}

// GraphicsContext reports the first DRM card with a PCI identity.
func (e *NativeEnvironment) GraphicsContext() (GraphicsInfo, error) {
	drmBase := filepath.Join(e.sysRoot, "class/drm")
	entries, err := os.ReadDir(drmBase)
	if err != nil {
		return GraphicsInfo{}, ErrNoGraphicsContext
	}
	for _, entry := range entries {
		if !isCardDevice(entry.Name()) {
			continue
		}
		devicePath := filepath.Join(drmBase, entry.Name(), "device")
		vendorID, deviceID := readPCIID(devicePath)
		if vendorID == "" {
			continue
		}
		driver := readDriverName(devicePath)
		return nativeGraphicsInfo(vendorID, deviceID, driver), nil
	}
	return GraphicsInfo{}, ErrNoGraphicsContext
}

func (e *NativeEnvironment) HardwareConcurrency() (int, bool) {
	n := runtime.NumCPU()
	if n <= 0 {
		n = cpuid.CPU.LogicalCores
	}
	return n, n > 0
}

// UserAgent synthesizes a user agent naming the OS and architecture so the
// shared user-agent rules classify native hosts too.
func (e *NativeEnvironment) UserAgent() string {
	osName := e.goos
	switch e.goos {
	case "android":
		osName = "Android; Mobile"
	case "ios":
		osName = "iPhone"
	}
	return fmt.Sprintf("devtier/native (%s; %s)", osName, e.goarch)
}

// WebAssemblyValidate reports vector instruction support on the host, the
// native counterpart of WebAssembly SIMD.
func (e *NativeEnvironment) WebAssemblyValidate() bool {
	return cpuid.CPU.Supports(cpuid.SSE2) || cpuid.CPU.Supports(cpuid.ASIMD)
}

func (e *NativeEnvironment) ThrottleSamples(cfg ThrottleConfig) ([]time.Duration, error) {
	return Benchmark(cfg, e.clock)
}

// nativeGraphicsInfo stands in for WebGL limits with values typical of the
// driver class: real hardware gets desktop limits, virtual adapters are
// reported as software renderers.
func nativeGraphicsInfo(vendorID, deviceID, driver string) GraphicsInfo {
	vendor := pciVendorName(vendorID)
	renderer := fmt.Sprintf("%s %s (%s)", vendor, deviceID, driver)
	if isVirtualDriver(driver) {
		renderer = fmt.Sprintf("llvmpipe %s (%s)", deviceID, driver)
	}
	return GraphicsInfo{
		DebugInfo:        true,
		Vendor:           vendor,
		Renderer:         renderer,
		MaxTextureSize:   16384,
		MaxVertexAttribs: 16,
	}
}

func isVirtualDriver(driver string) bool {
	switch driver {
	case "virtio-pci", "virtio_gpu", "qxl", "bochs-drm", "vboxvideo", "vmwgfx", "simpledrm", "cirrus":
		return true
	}
	return false
}

// isCardDevice matches card0, card1, ... but not connectors (card0-DP-1)
// or render nodes.
func isCardDevice(name string) bool {
	suffix, ok := strings.CutPrefix(name, "card")
	if !ok || suffix == "" {
		return false
	}
	for _, c := range suffix {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// readPCIID parses PCI_ID=VVVV:DDDD from the device uevent file.
func readPCIID(devicePath string) (vendorID, deviceID string) {
	data, err := os.ReadFile(filepath.Join(devicePath, "uevent"))
	if err != nil {
		return "", ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		value, ok := strings.CutPrefix(line, "PCI_ID=")
		if !ok {
			continue
		}
		ids := strings.SplitN(strings.TrimSpace(value), ":", 2)
		if len(ids) == 2 {
			return strings.ToLower(ids[0]), "0x" + strings.ToLower(ids[1])
		}
	}
	return "", ""
}

func readDriverName(devicePath string) string {
	link, err := os.Readlink(filepath.Join(devicePath, "driver"))
	if err != nil {
		return ""
	}
	return filepath.Base(link)
}

func pciVendorName(vendorID string) string {
	switch vendorID {
	case "1002":
		return "AMD Radeon"
	case "10de":
		return "NVIDIA GeForce"
	case "8086":
		return "Intel"
	case "106b":
		return "Apple"
	default:
		return "0x" + vendorID
	}
}
