package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/arloliu/tiledec/raster"
)

// Future is the completion handle of a submitted request. It resolves exactly
// once, with either an output or an error.
type Future struct {
	id   uuid.UUID
	done chan struct{}
	once sync.Once
	out  *raster.Output
	err  error
}

func newFuture() *Future {
	return &Future{
		id:   uuid.New(),
		done: make(chan struct{}),
	}
}

// ID identifies the request in logs.
func (f *Future) ID() uuid.UUID {
	return f.id
}

// Done is closed once the future has resolved.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future resolves or ctx is done.
//
// Giving up on ctx does not cancel the request: it still runs to completion
// and its output is dropped.
func (f *Future) Wait(ctx context.Context) (*raster.Output, error) {
	select {
	case <-f.done:
		return f.out, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the outcome without blocking. ok is false while the request
// is still pending.
func (f *Future) Result() (out *raster.Output, ok bool, err error) {
	select {
	case <-f.done:
		return f.out, true, f.err
	default:
		return nil, false, nil
	}
}

// resolve settles the future. Later calls are ignored; it reports whether
// this call won.
func (f *Future) resolve(out *raster.Output, err error) bool {
	won := false
	f.once.Do(func() {
		f.out, f.err = out, err
		close(f.done)
		won = true
	})

	return won
}

func (f *Future) reject(err error) bool {
	return f.resolve(nil, err)
}
