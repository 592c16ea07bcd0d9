// Package observable provides a current-value holder whose changes can be
// observed by any number of subscribers.
package observable

import (
	"context"
	"sync"
)

// Observable is the read side of a Value.
type Observable[T any] interface {
	// Get returns the current value.
	Get() T
	// Subscribe returns a channel that first yields the current value and then
	// every later value in order. The channel is closed when ctx is done.
	Subscribe(ctx context.Context) <-chan T
}

// Value holds a current value and publishes every change to its subscribers.
// A slow subscriber never blocks Set and never misses a value.
type Value[T any] struct {
	mu          sync.Mutex
	current     T
	subscribers map[*subscriber[T]]struct{}
}

var _ Observable[int] = (*Value[int])(nil)

// NewValue creates a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		current:     initial,
		subscribers: make(map[*subscriber[T]]struct{}),
	}
}

func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Set replaces the current value and publishes it.
func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = value
	v.publishLocked(value)
}

func (v *Value[T]) publishLocked(value T) {
	for s := range v.subscribers {
		s.push(value)
	}
}

func (v *Value[T]) Subscribe(ctx context.Context) <-chan T {
	s := &subscriber[T]{signal: make(chan struct{}, 1)}

	v.mu.Lock()
	s.push(v.current)
	v.subscribers[s] = struct{}{}
	v.mu.Unlock()

	out := make(chan T)
	go func() {
		defer close(out)
		defer v.unsubscribe(s)
		for {
			batch, ok := s.wait(ctx)
			if !ok {
				return
			}
			for _, item := range batch {
				select {
				case out <- item:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (v *Value[T]) unsubscribe(s *subscriber[T]) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.subscribers, s)
}

// subscriber buffers values between the publisher and the consuming goroutine.
type subscriber[T any] struct {
	mu     sync.Mutex
	queue  []T
	signal chan struct{}
}

func (s *subscriber[T]) push(value T) {
	s.mu.Lock()
	s.queue = append(s.queue, value)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *subscriber[T]) wait(ctx context.Context) ([]T, bool) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			batch := s.queue
			s.queue = nil
			s.mu.Unlock()
			return batch, true
		}
		s.mu.Unlock()

		select {
		case <-s.signal:
		case <-ctx.Done():
			return nil, false
		}
	}
}

// Map returns a Value that follows src through fn until ctx is done.
func Map[T, U any](ctx context.Context, src Observable[T], fn func(T) U) *Value[U] {
	updates := src.Subscribe(ctx)
	initial, ok := <-updates
	if !ok {
		return NewValue(fn(src.Get()))
	}

	dst := NewValue(fn(initial))
	go func() {
		for value := range updates {
			dst.Set(fn(value))
		}
	}()
	return dst
}
