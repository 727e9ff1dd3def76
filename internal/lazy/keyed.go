package lazy

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

type keyedEntry[T any] struct {
	key string
	val T
}

// KeyedSlot holds one value tagged with the key it was built for. A Get with a
// different key builds and publishes a replacement; the previous value is dropped.
// Concurrent loads for the same key share a single call.
type KeyedSlot[T any] struct {
	cur   atomic.Pointer[keyedEntry[T]]
	group singleflight.Group
}

// Get returns the value for key, loading it when the slot is empty or holds another key.
func (s *KeyedSlot[T]) Get(ctx context.Context, key string, load LoadFunc[T]) (T, error) {
	if e := s.cur.Load(); e != nil && e.key == key {
		return e.val, nil
	}

	ch := s.group.DoChan(key, func() (any, error) {
		if e := s.cur.Load(); e != nil && e.key == key {
			return e, nil
		}
		v, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		e := &keyedEntry[T]{key: key, val: v}
		s.cur.Store(e)
		return e, nil
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
		return r.Val.(*keyedEntry[T]).val, nil
	}
}

// Key reports the key of the held value.
func (s *KeyedSlot[T]) Key() (string, bool) {
	if e := s.cur.Load(); e != nil {
		return e.key, true
	}
	return "", false
}

// Invalidate empties the slot.
func (s *KeyedSlot[T]) Invalidate() {
	if e := s.cur.Swap(nil); e != nil {
		s.group.Forget(e.key)
	}
}
