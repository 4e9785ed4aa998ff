/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package handle maps opaque integer handles to in-memory objects.
package handle

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
)

// ErrNotFound is returned when a handle is not present in the registry.
var ErrNotFound = errors.New("handle not found")

// Handle is an opaque identifier of a registry entry. The zero Handle is never issued.
type Handle uint32

func (h Handle) String() string {
	return strconv.FormatUint(uint64(h), 10)
}

// Registry is a table of handles safe for concurrent use. Handles are issued in increasing order, so a
// released handle is not issued again until the 32 bit counter wraps. After a wrap, values of released
// handles come back; a handle that is still live is never issued twice.
type Registry[T any] struct {
	mu      sync.RWMutex
	domain  string
	next    uint32
	objects map[Handle]T
}

// NewRegistry returns an empty registry. The domain names the kind of objects it holds
// and is reported in lookup failures.
func NewRegistry[T any](domain string) *Registry[T] {
	return &Registry[T]{
		domain:  domain,
		objects: make(map[Handle]T),
	}
}

// Domain returns the registry domain.
func (r *Registry[T]) Domain() string {
	return r.domain
}

// Add stores obj and returns its new handle.
func (r *Registry[T]) Add(obj T) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		r.next++

		h := Handle(r.next)
		if h == 0 {
			continue
		}

		if _, taken := r.objects[h]; taken {
			continue
		}

		r.objects[h] = obj

		return h
	}
}

// Get returns the object stored under h.
func (r *Registry[T]) Get(h Handle) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	obj, ok := r.objects[h]
	if !ok {
		var zero T

		return zero, fmt.Errorf("%s %d: %w", r.domain, h, ErrNotFound)
	}

	return obj, nil
}

// Remove deletes h and returns the object it referenced.
func (r *Registry[T]) Remove(h Handle) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	obj, ok := r.objects[h]
	if !ok {
		var zero T

		return zero, fmt.Errorf("%s %d: %w", r.domain, h, ErrNotFound)
	}

	delete(r.objects, h)

	return obj, nil
}

// Find returns the first handle, in ascending order, whose object satisfies match.
func (r *Registry[T]) Find(match func(T) bool) (Handle, T, bool) {
	for _, h := range r.Handles() {
		obj, err := r.Get(h)
		if err != nil {
			continue
		}

		if match(obj) {
			return h, obj, true
		}
	}

	var zero T

	return 0, zero, false
}

// Len returns the number of live handles.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.objects)
}

// Handles returns the live handles in ascending order.
func (r *Registry[T]) Handles() []Handle {
	r.mu.RLock()

	handles := make([]Handle, 0, len(r.objects))
	for h := range r.objects {
		handles = append(handles, h)
	}

	r.mu.RUnlock()

	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	return handles
}
