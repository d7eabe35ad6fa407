package shim

import (
	"context"
	"sync"
)

// Deferred is a value that is settled once, from outside the code waiting
// on it.
type Deferred[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

// WithResolvers returns a pending Deferred together with the functions that
// settle it. Only the first settlement counts.
func WithResolvers[T any]() (d *Deferred[T], resolve func(T), reject func(error)) {
	d = &Deferred[T]{done: make(chan struct{})}
	resolve = func(v T) {
		d.once.Do(func() {
			d.val = v
			close(d.done)
		})
	}
	reject = func(err error) {
		d.once.Do(func() {
			d.err = err
			close(d.done)
		})
	}
	return d, resolve, reject
}

// Done is closed once the Deferred is settled.
func (d *Deferred[T]) Done() <-chan struct{} {
	return d.done
}

// Wait blocks until the Deferred is settled or ctx is done.
func (d *Deferred[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-d.done:
		return d.val, d.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
