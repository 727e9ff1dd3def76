// Package lazy provides a single-slot, load-once cache.
package lazy

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

const flightKey = "slot"

// LoadFunc produces the value held by a Slot.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Slot holds at most one value. The first successful load is kept until Invalidate;
// failed loads are not cached. Concurrent first loads share a single call, and the
// value becomes visible to readers only once fully built.
type Slot[T any] struct {
	val   atomic.Pointer[T]
	group singleflight.Group
}

// Get returns the cached value or runs load. Waiters stop on ctx cancellation; the
// shared load itself runs detached from any single caller's cancellation.
func (s *Slot[T]) Get(ctx context.Context, load LoadFunc[T]) (T, error) {
	if p := s.val.Load(); p != nil {
		return *p, nil
	}

	ch := s.group.DoChan(flightKey, func() (any, error) {
		if p := s.val.Load(); p != nil {
			return p, nil
		}
		v, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		p := &v
		if !s.val.CompareAndSwap(nil, p) {
			p = s.val.Load()
		}
		return p, nil
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			var zero T
			return zero, r.Err
		}
		return *(r.Val.(*T)), nil
	}
}

// Peek returns the cached value without loading.
func (s *Slot[T]) Peek() (T, bool) {
	if p := s.val.Load(); p != nil {
		return *p, true
	}
	var zero T
	return zero, false
}

// Invalidate empties the slot. A load already in flight may still publish its result.
func (s *Slot[T]) Invalidate() {
	s.val.Store(nil)
	s.group.Forget(flightKey)
}
