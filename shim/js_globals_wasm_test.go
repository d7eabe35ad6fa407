//go:build js && wasm

package shim_test

import (
	"syscall/js"
	"testing"

	"github.com/Zachkp/devtier/shim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defineMatrix(t *testing.T) js.Value {
	t.Helper()
	g := shim.NewJSGlobals()
	require.NoError(t, g.Define("devtierTest.DOMMatrix", shim.MatrixConstructor{}))
	t.Cleanup(func() { js.Global().Delete("devtierTest") })
	return js.Global().Get("devtierTest").Get("DOMMatrix")
}

func TestJSGlobals_MatrixMethodsOnPrototype(t *testing.T) {
	ctor := defineMatrix(t)

	a := ctor.New(js.ValueOf([]any{1, 0, 0, 1, 0, 0}))
	b := ctor.New(js.ValueOf([]any{2, 0, 0, 2, 0, 0}))

	for _, name := range []string{"multiply", "translate", "scale", "transformPoint"} {
		assert.False(t, a.Call("hasOwnProperty", name).Bool(), name)
		assert.True(t, a.Get(name).Equal(b.Get(name)), name)
	}
	assert.True(t, a.Get("isIdentity").Bool())
	assert.False(t, b.Get("isIdentity").Bool())
}

func TestJSGlobals_MatrixTransforms(t *testing.T) {
	ctor := defineMatrix(t)
	m := ctor.New(js.ValueOf([]any{2, 0, 0, 2, 0, 0}))

	moved := m.Call("translate", 3, 4)
	assert.Equal(t, 6.0, moved.Get("e").Float())
	assert.Equal(t, 8.0, moved.Get("f").Float())
	// The receiver keeps its own values.
	assert.Equal(t, 0.0, m.Get("e").Float())

	p := moved.Call("transformPoint", map[string]any{"x": 1, "y": 1})
	assert.Equal(t, 8.0, p.Get("x").Float())
	assert.Equal(t, 10.0, p.Get("y").Float())

	scaled := m.Call("scale", 3)
	assert.Equal(t, 6.0, scaled.Get("a").Float())
	assert.Equal(t, 6.0, scaled.Get("d").Float())

	product := m.Call("multiply", moved)
	assert.Equal(t, 4.0, product.Get("a").Float())
	assert.Equal(t, 12.0, product.Get("e").Float())
}
