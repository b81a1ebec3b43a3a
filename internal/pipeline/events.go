package pipeline

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docpipe/internal/eventstore"
)

// Event types emitted over a build's lifetime.
const (
	EventBuildStarted   = "build.started"
	EventStageCompleted = "stage.completed"
	EventBuildCompleted = "build.completed"
	EventBuildFailed    = "build.failed"
)

// Event describes one observable step of a build.
type Event struct {
	BuildID   string            `json:"build_id"`
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// EventSink receives build events. Publishing failures must not fail the
// build; sinks are observability, not control flow.
type EventSink interface {
	Publish(ctx context.Context, event Event) error
}

// NoopSink discards all events.
type NoopSink struct{}

func (NoopSink) Publish(context.Context, Event) error { return nil }

// MultiSink fans an event out to several sinks, returning the first error.
type MultiSink []EventSink

func (m MultiSink) Publish(ctx context.Context, event Event) error {
	var firstErr error
	for _, s := range m {
		if err := s.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// StoreSink persists events in a SQLite event store.
type StoreSink struct {
	Store *eventstore.SQLiteStore
}

func (s StoreSink) Publish(ctx context.Context, event Event) error {
	return s.Store.Append(ctx, event.BuildID, event.Type, event.Fields)
}
