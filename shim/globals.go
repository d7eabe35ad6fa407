package shim

import (
	"errors"
	"strings"
	"sync"
)

// ErrInvalidPath is returned for an empty path or one with an empty segment.
var ErrInvalidPath = errors.New("shim: invalid global path")

// MapGlobals is an in-memory Globals. A path is present when it was defined
// or when it is the parent of a defined path.
type MapGlobals struct {
	mu     sync.RWMutex
	values map[string]Value
}

var _ Globals = (*MapGlobals)(nil)

func NewMapGlobals() *MapGlobals {
	return &MapGlobals{values: make(map[string]Value)}
}

func (m *MapGlobals) Lookup(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.values[path]; ok {
		return true
	}
	prefix := path + "."
	for p := range m.values {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func (m *MapGlobals) Define(path string, v Value) error {
	if err := validPath(path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	m.values[path] = v
	return nil
}

// Get returns the value defined at path.
func (m *MapGlobals) Get(path string) (Value, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[path]
	return v, ok
}

func validPath(path string) error {
	if path == "" {
		return ErrInvalidPath
	}
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return ErrInvalidPath
		}
	}
	return nil
}
