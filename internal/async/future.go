// Package async is the concurrency toolkit the providers are built on:
// single-resolution futures for composing network calls, a batch join for
// fan-out writes, and a cursor-pagination walker. Nothing here retries or
// cancels outstanding work; cancellation is plumbed through the transport
// call's own context.
package async

import "context"

// Future is the single-resolution result of work running on another
// goroutine. It settles exactly once; Await may be called any number of
// times, from any goroutine, and always observes the same outcome.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go runs fn on its own goroutine and returns the future of its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn()
	}()
	return f
}

// Await blocks until the future settles or ctx is done, whichever comes
// first. A ctx error abandons the wait but does not stop the underlying
// work.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then chains fn onto f. The returned future settles with fn's result once
// f resolves successfully, or with f's error without running fn at all.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	return Go(func() (U, error) {
		<-f.done
		if f.err != nil {
			var zero U
			return zero, f.err
		}
		return fn(f.value)
	})
}
