// Package notify announces successful publishes on a NATS subject.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/jarbuilder/internal/logfields"
)

// PublishedEvent is the message body sent after a publish.
type PublishedEvent struct {
	BuildID    string    `json:"build_id"`
	Coordinate string    `json:"coordinate"`
	Repository string    `json:"repository"`
	Artifacts  []string  `json:"artifacts"`
	GitCommit  string    `json:"git_commit,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Notifier delivers publish notifications.
type Notifier interface {
	NotifyPublished(ctx context.Context, event *PublishedEvent) error
	Close() error
}

// NoopNotifier discards notifications.
type NoopNotifier struct{}

func (NoopNotifier) NotifyPublished(context.Context, *PublishedEvent) error { return nil }
func (NoopNotifier) Close() error                                           { return nil }

// conn is the subset of *nats.Conn used by NATSNotifier.
type conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSNotifier publishes events as JSON on a core NATS subject.
type NATSNotifier struct {
	conn    conn
	subject string
}

// NewNATSNotifier connects to url.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	nc, err := nats.Connect(url, nats.Name("jarbuilder"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("NATS notifier connected", logfields.URL(url), "subject", subject)
	return &NATSNotifier{conn: nc, subject: subject}, nil
}

// NotifyPublished publishes event and waits for the server to acknowledge
// the flush, bounded by ctx or five seconds.
func (n *NATSNotifier) NotifyPublished(ctx context.Context, event *PublishedEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := n.conn.FlushWithContext(flushCtx); err != nil {
		return fmt.Errorf("failed to flush NATS connection: %w", err)
	}

	slog.Debug("Published notification",
		logfields.Coordinate(event.Coordinate),
		logfields.Repository(event.Repository),
		"subject", n.subject)
	return nil
}

// Close closes the NATS connection.
func (n *NATSNotifier) Close() error {
	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}
