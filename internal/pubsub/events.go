// Package pubsub provides a generic publish/subscribe event system used to
// move registry, watcher and log events into the Bubble Tea update loop.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// ReadyEvent announces the first load of something (the story registry).
	ReadyEvent EventType = "ready"
	// ChangedEvent announces that something already announced was replaced.
	ChangedEvent EventType = "changed"
	// AppendedEvent carries a new item, such as a log line.
	AppendedEvent EventType = "appended"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
