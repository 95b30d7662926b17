package pubsub

import (
	"context"
	"sync"
)

// Signal is a broker that fires ReadyEvent at most once. Later payloads go out
// as ChangedEvent through Update, so subscribers can tell the first load from
// reloads.
type Signal[T any] struct {
	broker *Broker[T]
	once   sync.Once
	mu     sync.RWMutex
	fired  bool
	last   T
}

// NewSignal creates an unfired signal.
func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{broker: NewBrokerWithBuffer[T](4)}
}

// Fire publishes payload as ReadyEvent. It returns false, and publishes
// nothing, if the signal already fired.
func (s *Signal[T]) Fire(payload T) bool {
	fired := false
	s.once.Do(func() {
		s.mu.Lock()
		s.fired = true
		s.last = payload
		s.mu.Unlock()
		s.broker.Publish(ReadyEvent, payload)
		fired = true
	})
	return fired
}

// Update publishes payload as ChangedEvent. Updates before Fire are dropped.
func (s *Signal[T]) Update(payload T) bool {
	s.mu.Lock()
	if !s.fired {
		s.mu.Unlock()
		return false
	}
	s.last = payload
	s.mu.Unlock()
	s.broker.Publish(ChangedEvent, payload)
	return true
}

// Fired reports whether Fire has run, along with the latest payload.
func (s *Signal[T]) Fired() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.fired
}

// Subscribe returns a channel of signal events.
func (s *Signal[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	return s.broker.Subscribe(ctx)
}

// Broker exposes the underlying broker for listeners.
func (s *Signal[T]) Broker() *Broker[T] {
	return s.broker
}

// Close releases subscribers.
func (s *Signal[T]) Close() {
	s.broker.Close()
}
