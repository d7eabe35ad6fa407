// Package shim installs the global stand-ins that the page's 3D and PDF
// libraries expect to find before they evaluate.
//
// Installation is an explicit call, not an import side effect. [Install]
// applies every shim at most once per process, and each one only when its
// path is absent, so running it over a runtime that already provides a
// global leaves that global untouched. [Reset] clears the process state so
// tests can install again.
package shim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrNotInstalled is returned by [Require] before [Install] has succeeded.
var ErrNotInstalled = errors.New("shim: compatibility shims not installed")

// Globals is the global object a shim is defined on. Paths are dotted
// property chains starting at the global scope.
type Globals interface {
	Lookup(path string) bool
	Define(path string, v Value) error
}

// Value is a stand-in that can be placed on a Globals.
type Value interface {
	Kind() string
}

// PromiseFactory stands in for Promise.withResolvers: calling it returns a
// pending promise along with its resolve and reject functions.
type PromiseFactory struct{}

func (PromiseFactory) Kind() string { return "function" }

// ObjectValue is a plain object with the given fields. A nil field value is
// defined as null.
type ObjectValue struct {
	Fields map[string]any
}

func (ObjectValue) Kind() string { return "object" }

// MatrixConstructor stands in for DOMMatrix, backed by [Matrix].
type MatrixConstructor struct{}

func (MatrixConstructor) Kind() string { return "constructor" }

// Shim is one global stand-in.
type Shim struct {
	Name  string
	Path  string
	Value Value
}

const reactInternals = "React.__SECRET_INTERNALS_DO_NOT_USE_OR_YOU_WILL_BE_FIRED"

// Shims returns the stand-ins in installation order.
func Shims() []Shim {
	return []Shim{
		{Name: "promise-with-resolvers", Path: "Promise.withResolvers", Value: PromiseFactory{}},
		{Name: "react-current-owner", Path: reactInternals + ".ReactCurrentOwner", Value: ObjectValue{
			Fields: map[string]any{"current": nil},
		}},
		{Name: "react-current-batch-config", Path: reactInternals + ".ReactCurrentBatchConfig", Value: ObjectValue{
			Fields: map[string]any{"transition": nil},
		}},
		{Name: "dom-matrix", Path: "DOMMatrix", Value: MatrixConstructor{}},
	}
}

// Result reports which shims were defined and which were skipped because
// the runtime already had them.
type Result struct {
	Installed []string `json:"installed"`
	Skipped   []string `json:"skipped"`
}

var (
	mu        sync.Mutex
	installed bool
	last      Result
)

// Install defines every missing shim on g. Once it has succeeded, later
// calls return the first result without touching g.
func Install(g Globals) (Result, error) {
	mu.Lock()
	defer mu.Unlock()

	if installed {
		return last, nil
	}

	var res Result
	for _, s := range Shims() {
		if g.Lookup(s.Path) {
			res.Skipped = append(res.Skipped, s.Name)
			logger().Debug("shim: already present", slog.String("path", s.Path))
			continue
		}
		if err := g.Define(s.Path, s.Value); err != nil {
			return res, fmt.Errorf("shim: define %s: %w", s.Path, err)
		}
		res.Installed = append(res.Installed, s.Name)
	}

	installed = true
	last = res
	logger().Info("shim: compatibility shims installed",
		slog.Int("installed", len(res.Installed)),
		slog.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}

func Installed() bool {
	mu.Lock()
	defer mu.Unlock()
	return installed
}

// Require fails with ErrNotInstalled until Install has succeeded. Callers
// use it before initializing a library that depends on the shims.
func Require() error {
	if !Installed() {
		return ErrNotInstalled
	}
	return nil
}

// Reset forgets a previous installation. Globals already defined stay
// defined.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	installed = false
	last = Result{}
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used by Install. Pass nil to silence it.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

func logger() *slog.Logger {
	return loggerPtr.Load()
}
