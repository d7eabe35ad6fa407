//go:build js && wasm

package capability

import (
	"syscall/js"
	"time"
)

// BrowserEnvironment probes the page the WebAssembly module runs in.
type BrowserEnvironment struct {
	global js.Value
}

var _ Environment = (*BrowserEnvironment)(nil)

func NewBrowserEnvironment() *BrowserEnvironment {
	return &BrowserEnvironment{global: js.Global()}
}

// GraphicsContext creates a detached canvas, reads the renderer strings and
// limits, and releases the context with WEBGL_lose_context.
func (e *BrowserEnvironment) GraphicsContext() (GraphicsInfo, error) {
	document := e.global.Get("document")
	if !document.Truthy() {
		return GraphicsInfo{}, ErrNoGraphicsContext
	}
	canvas := document.Call("createElement", "canvas")

	var gl js.Value
	for _, kind := range []string{"webgl2", "webgl", "experimental-webgl"} {
		gl = canvas.Call("getContext", kind)
		if gl.Truthy() {
			break
		}
	}
	if !gl.Truthy() {
		return GraphicsInfo{}, ErrNoGraphicsContext
	}

	info := GraphicsInfo{
		MaxTextureSize:   gl.Call("getParameter", gl.Get("MAX_TEXTURE_SIZE")).Int(),
		MaxVertexAttribs: gl.Call("getParameter", gl.Get("MAX_VERTEX_ATTRIBS")).Int(),
	}
	if ext := gl.Call("getExtension", "WEBGL_debug_renderer_info"); ext.Truthy() {
		info.DebugInfo = true
		info.Vendor = jsString(gl.Call("getParameter", ext.Get("UNMASKED_VENDOR_WEBGL")))
		info.Renderer = jsString(gl.Call("getParameter", ext.Get("UNMASKED_RENDERER_WEBGL")))
	}

	if lose := gl.Call("getExtension", "WEBGL_lose_context"); lose.Truthy() {
		lose.Call("loseContext")
	}
	return info, nil
}

func (e *BrowserEnvironment) HardwareConcurrency() (int, bool) {
	navigator := e.global.Get("navigator")
	if !navigator.Truthy() {
		return 0, false
	}
	n := navigator.Get("hardwareConcurrency")
	if n.Type() != js.TypeNumber {
		return 0, false
	}
	return n.Int(), true
}

func (e *BrowserEnvironment) UserAgent() string {
	navigator := e.global.Get("navigator")
	if !navigator.Truthy() {
		return ""
	}
	return jsString(navigator.Get("userAgent"))
}

// WebAssemblyValidate only checks that the validate function exists. A real
// SIMD test would need a module using SIMD opcodes.
func (e *BrowserEnvironment) WebAssemblyValidate() bool {
	wasm := e.global.Get("WebAssembly")
	return wasm.Truthy() && wasm.Get("validate").Type() == js.TypeFunction
}

// ThrottleSamples times the workload with performance.now so the numbers
// match what page scripts would measure.
func (e *BrowserEnvironment) ThrottleSamples(cfg ThrottleConfig) ([]time.Duration, error) {
	performance := e.global.Get("performance")
	if !performance.Truthy() || performance.Get("now").Type() != js.TypeFunction {
		return nil, ErrNoTimer
	}
	clock := func() (time.Duration, error) {
		ms := performance.Call("now").Float()
		return time.Duration(ms * float64(time.Millisecond)), nil
	}
	return Benchmark(cfg, clock)
}

func jsString(v js.Value) string {
	if v.Type() != js.TypeString {
		return ""
	}
	return v.String()
}
