/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package async runs operations in the background and delivers their outcome exactly once.
package async

import (
	"context"
	"fmt"
	"sync"
)

// Result is the pending outcome of an operation started with Go.
type Result[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// Go starts fn in its own goroutine. A panic in fn resolves the result with an error.
// The operation receives ctx unchanged; no deadline is added.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Result[T] {
	r := &Result[T]{done: make(chan struct{})}

	go func() {
		defer func() {
			if p := recover(); p != nil {
				var zero T

				r.resolve(zero, fmt.Errorf("async operation panicked: %v", p))
			}
		}()

		v, err := fn(ctx)
		r.resolve(v, err)
	}()

	return r
}

// Resolved returns a result which is already complete.
func Resolved[T any](v T, err error) *Result[T] {
	r := &Result[T]{done: make(chan struct{})}
	r.resolve(v, err)

	return r
}

func (r *Result[T]) resolve(v T, err error) {
	r.once.Do(func() {
		r.value = v
		r.err = err
		close(r.done)
	})
}

// Done is closed once the result is available.
func (r *Result[T]) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the result is available or ctx ends. Ending ctx only stops the wait,
// the operation keeps running.
func (r *Result[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-r.done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}
}
