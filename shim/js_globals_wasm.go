//go:build js && wasm

package shim

import (
	"fmt"
	"log/slog"
	"strings"
	"syscall/js"
)

// JSGlobals defines shims on the page's global object.
type JSGlobals struct {
	root js.Value
}

var _ Globals = JSGlobals{}

func NewJSGlobals() JSGlobals {
	return JSGlobals{root: js.Global()}
}

func (g JSGlobals) Lookup(path string) bool {
	v := g.root
	for _, seg := range strings.Split(path, ".") {
		v = v.Get(seg)
		if v.IsUndefined() || v.IsNull() {
			return false
		}
	}
	return true
}

func (g JSGlobals) Define(path string, v Value) error {
	if err := validPath(path); err != nil {
		return err
	}
	segs := strings.Split(path, ".")
	parent := g.root
	for _, seg := range segs[:len(segs)-1] {
		next := parent.Get(seg)
		if next.IsUndefined() || next.IsNull() {
			next = js.Global().Get("Object").New()
			parent.Set(seg, next)
		}
		parent = next
	}

	jv, err := toJS(v)
	if err != nil {
		return err
	}
	parent.Set(segs[len(segs)-1], jv)
	return nil
}

func toJS(v Value) (js.Value, error) {
	switch v := v.(type) {
	case PromiseFactory:
		return promiseWithResolvers().Value, nil
	case ObjectValue:
		obj := js.Global().Get("Object").New()
		for k, field := range v.Fields {
			if field == nil {
				obj.Set(k, js.Null())
				continue
			}
			obj.Set(k, js.ValueOf(field))
		}
		return obj, nil
	case MatrixConstructor:
		return matrixConstructor(), nil
	default:
		return js.Undefined(), fmt.Errorf("shim: unsupported value kind %q", v.Kind())
	}
}

func promiseWithResolvers() js.Func {
	return js.FuncOf(func(js.Value, []js.Value) any {
		var resolve, reject js.Value
		executor := js.FuncOf(func(_ js.Value, args []js.Value) any {
			resolve, reject = args[0], args[1]
			return nil
		})
		defer executor.Release()
		promise := js.Global().Get("Promise").New(executor)
		return map[string]any{"promise": promise, "resolve": resolve, "reject": reject}
	})
}

// matrixConstructor returns a function usable with `new`, exposing the
// a..f fields and the transform methods PDF rendering relies on. The
// methods live on the prototype so instances allocate no callbacks.
func matrixConstructor() js.Value {
	var ctor js.Func
	newMatrix := func(m Matrix) js.Value {
		vals := m.Values()
		arr := make([]any, len(vals))
		for i, x := range vals {
			arr[i] = x
		}
		return ctor.Value.New(js.ValueOf(arr))
	}

	ctor = js.FuncOf(func(this js.Value, args []js.Value) any {
		m := Identity()
		if len(args) > 0 && args[0].Type() == js.TypeObject && args[0].Length() > 0 {
			init := args[0]
			values := make([]float64, init.Length())
			for i := range values {
				values[i] = init.Index(i).Float()
			}
			parsed, err := NewMatrix(values...)
			if err != nil {
				logger().Warn("shim: DOMMatrix init ignored", slog.String("err", err.Error()))
			} else {
				m = parsed
			}
		}

		for name, x := range map[string]float64{"a": m.A, "b": m.B, "c": m.C, "d": m.D, "e": m.E, "f": m.F} {
			this.Set(name, x)
		}
		this.Set("isIdentity", m.IsIdentity())
		return nil
	})

	proto := ctor.Value.Get("prototype")
	proto.Set("multiply", js.FuncOf(func(this js.Value, args []js.Value) any {
		m := fromJS(this)
		if len(args) == 0 {
			return newMatrix(m)
		}
		return newMatrix(m.Multiply(fromJS(args[0])))
	}))
	proto.Set("translate", js.FuncOf(func(this js.Value, args []js.Value) any {
		return newMatrix(fromJS(this).Translate(argFloat(args, 0, 0), argFloat(args, 1, 0)))
	}))
	proto.Set("scale", js.FuncOf(func(this js.Value, args []js.Value) any {
		sx := argFloat(args, 0, 1)
		return newMatrix(fromJS(this).Scale(sx, argFloat(args, 1, sx)))
	}))
	proto.Set("transformPoint", js.FuncOf(func(this js.Value, args []js.Value) any {
		var x, y float64
		if len(args) > 0 && args[0].Truthy() {
			x, y = args[0].Get("x").Float(), args[0].Get("y").Float()
		}
		tx, ty := fromJS(this).Apply(x, y)
		return map[string]any{"x": tx, "y": ty}
	}))
	return ctor.Value
}

func fromJS(v js.Value) Matrix {
	return Matrix{
		A: v.Get("a").Float(), B: v.Get("b").Float(), C: v.Get("c").Float(),
		D: v.Get("d").Float(), E: v.Get("e").Float(), F: v.Get("f").Float(),
	}
}

func argFloat(args []js.Value, i int, def float64) float64 {
	if i >= len(args) || args[i].IsUndefined() {
		return def
	}
	return args[i].Float()
}
