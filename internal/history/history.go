// Package history records lifecycle events of the managed service to an
// external audit store.
package history

import (
	"context"
	"time"
)

// EventType defines the kind of lifecycle event.
type EventType string

const (
	EventStart          EventType = "start"
	EventStop           EventType = "stop"
	EventStaleRecovered EventType = "stale_recovered"
)

// Event represents one lifecycle transition of the managed service.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Name       string    `json:"name"`
	PID        int       `json:"pid"`
	Err        string    `json:"error,omitempty"`
}

// Sink is a destination for history events.
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}

// Config selects and configures a sink.
type Config struct {
	Type string `mapstructure:"type"` // "sqlite" or "postgres"; empty disables history
	DSN  string `mapstructure:"dsn"`
}
