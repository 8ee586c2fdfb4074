package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, buildID, eventType string, payload []byte, metadata map[string]string) error

	// GetByBuildID retrieves all events for a specific build.
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}

// Recorder appends typed events, deriving payloads from the event value.
type Recorder struct {
	store Store
}

// NewRecorder wraps store. A nil store makes every Record call a no-op.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record appends e.
func (r *Recorder) Record(ctx context.Context, e Event) error {
	if r == nil || r.store == nil {
		return nil
	}
	return r.store.Append(ctx, e.BuildID(), e.Type(), e.Payload(), e.Metadata())
}
