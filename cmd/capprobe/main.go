//go:build js && wasm

// capprobe is the in-page WebAssembly probe. It installs the compatibility
// shims, classifies the device, and publishes the resolved bundles on
// window.__devtier before any 3D or PDF library evaluates.
//
// A "devtier:tier" CustomEvent carries every new snapshot. A WebGL context
// loss anywhere on the page downgrades the tier until reload.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"syscall/js"
	"time"

	"github.com/Zachkp/devtier/adaptive"
	"github.com/Zachkp/devtier/capability"
	"github.com/Zachkp/devtier/shim"
)

const (
	globalName = "__devtier"
	eventName  = "devtier:tier"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	capability.SetLogger(logger)
	shim.SetLogger(logger)

	if _, err := shim.Install(shim.NewJSGlobals()); err != nil {
		logger.Error("capprobe: shims not installed", slog.String("err", err.Error()))
	}

	window := js.Global()
	session := adaptive.NewSession(adaptive.WithLogger(logger))
	first, resolve, _ := shim.WithResolvers[adaptive.Snapshot]()

	// Libraries read window.__devtier as the go-ahead, so it stays unset
	// while the shims they depend on are missing.
	session.OnChange(func(snap adaptive.Snapshot) {
		if err := shim.Require(); err != nil {
			logger.Error("capprobe: tier not published", slog.String("err", err.Error()))
		} else {
			publish(window, snap)
		}
		resolve(snap)
	})

	// Capture phase, since context events do not bubble.
	opts := map[string]any{"capture": true}
	window.Call("addEventListener", "webglcontextlost", js.FuncOf(func(js.Value, []js.Value) any {
		if _, err := session.ContextLost(); err != nil {
			logger.Warn("capprobe: context lost before detection", slog.String("err", err.Error()))
		}
		return nil
	}), opts)
	window.Call("addEventListener", "webglcontextrestored", js.FuncOf(func(js.Value, []js.Value) any {
		_, _ = session.ContextRestored()
		return nil
	}), opts)

	window.Set("devtierSnapshot", js.FuncOf(func(js.Value, []js.Value) any {
		snap, ok := session.Snapshot()
		if !ok {
			return js.Null()
		}
		return toJS(window, snap)
	}))

	session.Detect(capability.NewBrowserEnvironment(), capability.DefaultThrottleConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	snap, err := first.Wait(ctx)
	cancel()
	if err != nil {
		logger.Error("capprobe: no snapshot published", slog.String("err", err.Error()))
	} else {
		logger.Info("capprobe: ready", slog.String("notification", snap.Notification))
	}

	select {}
}

func toJS(window js.Value, snap adaptive.Snapshot) js.Value {
	data, err := json.Marshal(snap)
	if err != nil {
		return js.Null()
	}
	return window.Get("JSON").Call("parse", string(data))
}

func publish(window js.Value, snap adaptive.Snapshot) {
	detail := toJS(window, snap)
	window.Set(globalName, detail)

	event := window.Get("CustomEvent").New(eventName, map[string]any{"detail": detail})
	window.Call("dispatchEvent", event)
}
