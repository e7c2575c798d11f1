// Package future holds single-shot results produced off the calling goroutine.
package future

import (
	"context"
	"sync"
	"time"
)

// Future is a single-shot result that completes exactly once.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

// New runs fn in a goroutine and completes the Future when fn returns.
func New[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		v, err := fn()
		f.complete(v, err)
	}()
	return f
}

// AwaitContext blocks until completion or until ctx is done, whichever comes
// first. The work itself keeps running when ctx wins.
func (f *Future[T]) AwaitContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AwaitTimeout waits up to d. ok is false on timeout.
func (f *Future[T]) AwaitTimeout(d time.Duration) (v T, err error, ok bool) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-f.done:
		return f.value, f.err, true
	case <-timer.C:
		return v, nil, false
	}
}

func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.value, f.err = v, err
		close(f.done)
	})
}
