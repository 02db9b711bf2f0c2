// Package eventbus is an in-process, typed publish/subscribe bus.
//
// Subscribers receive a *Subscription handle and must Close it when they stop
// caring; a closed subscription never sees another event.
package eventbus

import (
	"context"
	"slices"
	"sync"
)

type Handler[T any] func(ctx context.Context, evt T)

type Bus[T any] struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]Handler[T]
}

func New[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[uint64]Handler[T])}
}

type Subscription struct {
	once   sync.Once
	cancel func()
}

// Close detaches the handler. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

func (b *Bus[T]) Subscribe(h Handler[T]) *Subscription {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = h
	b.mu.Unlock()

	return &Subscription{cancel: func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}}
}

// Publish calls every open handler synchronously, in subscription order.
func (b *Bus[T]) Publish(ctx context.Context, evt T) {
	b.mu.RLock()
	ids := make([]uint64, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	handlers := make(map[uint64]Handler[T], len(b.subs))
	for id, h := range b.subs {
		handlers[id] = h
	}
	b.mu.RUnlock()

	slices.Sort(ids)
	for _, id := range ids {
		handlers[id](ctx, evt)
	}
}

func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
