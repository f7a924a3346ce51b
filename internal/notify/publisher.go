// Package notify publishes marketplace lifecycle events to RabbitMQ. The
// events feed the notification pipeline; publishing is always best-effort at
// the call sites, so a broker outage never fails the primary operation.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Event kinds emitted on request and job lifecycle edges.
const (
	EventRequestCreated   = "request.created"
	EventInviteCreated    = "invite.created"
	EventRequestRevived   = "request.revived"
	EventRequestAccepted  = "request.accepted"
	EventRequestDenied    = "request.denied"
	EventRequestWithdrawn = "request.withdrawn"
	EventJobStatusChanged = "job.status_changed"
	EventJobCancelled     = "job.cancelled"
)

// Event is the wire payload published to the marketplace exchange.
type Event struct {
	Kind         string    `json:"kind"`
	PostID       string    `json:"post_id,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	JobID        string    `json:"job_id,omitempty"`
	ActorID      string    `json:"actor_id,omitempty"`
	TargetUserID string    `json:"target_user_id,omitempty"`
	Detail       string    `json:"detail,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Broker is the subset of the RabbitMQ client used for publishing.
type Broker interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// Publisher serializes events and hands them to the broker.
type Publisher struct {
	broker Broker
	logger *slog.Logger
}

// NewPublisher creates a new Publisher instance
func NewPublisher(broker Broker, logger *slog.Logger) *Publisher {
	return &Publisher{broker: broker, logger: logger}
}

// Publish sends a single event. The caller decides whether a failure matters;
// lifecycle call sites log and continue.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.broker.PublishWithRetry(ctx, body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Kind, err)
	}

	p.logger.Debug("Event published",
		slog.String("kind", event.Kind),
		slog.String("target_user_id", event.TargetUserID),
	)

	return nil
}
