// Package notifier consumes marketplace events from RabbitMQ and turns them
// into notification rows for the target user's inbox.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tradematch/tradematch-be/internal/domain"
	"github.com/tradematch/tradematch-be/internal/notify"
)

// Broker is the subset of the RabbitMQ client used for consuming.
type Broker interface {
	Qos(prefetchCount int) error
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
}

// Store persists delivered notifications.
type Store interface {
	InsertNotification(ctx context.Context, n *domain.Notification) error
}

// Sweeper advances time-driven job transitions; the worker runs it on a timer
// so jobs move even when nobody is listing them.
type Sweeper interface {
	SweepOverdue(ctx context.Context)
}

// Config holds notifier worker configuration
type Config struct {
	Logger        *slog.Logger
	Broker        Broker
	Store         Store
	Sweeper       Sweeper
	Concurrency   int
	PrefetchCount int
	HandleTimeout time.Duration
	SweepInterval time.Duration
}

// Worker consumes events and writes notifications concurrently.
type Worker struct {
	logger        *slog.Logger
	broker        Broker
	store         Store
	sweeper       Sweeper
	concurrency   int
	prefetchCount int
	handleTimeout time.Duration
	sweepInterval time.Duration
	workerID      string
	wg            sync.WaitGroup
}

// NewWorker creates a new notifier Worker instance
func NewWorker(cfg *Config) *Worker {
	return &Worker{
		logger:        cfg.Logger,
		broker:        cfg.Broker,
		store:         cfg.Store,
		sweeper:       cfg.Sweeper,
		concurrency:   cfg.Concurrency,
		prefetchCount: cfg.PrefetchCount,
		handleTimeout: cfg.HandleTimeout,
		sweepInterval: cfg.SweepInterval,
		workerID:      "notifier-" + uuid.New().String()[:8],
	}
}

// Start consumes the queue until the context is canceled. It blocks; cancel
// the context to stop, then Start returns once every in-flight delivery is
// acked or nacked.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting notifier worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("handle_timeout", w.handleTimeout),
	)

	if err := w.broker.Qos(w.prefetchCount); err != nil {
		return fmt.Errorf("failed to configure consumer QoS: %w", err)
	}

	deliveries, err := w.broker.Consume(w.workerID)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.consumeLoop(ctx, i, deliveries)
	}

	if w.sweeper != nil && w.sweepInterval > 0 {
		w.wg.Add(1)
		go w.sweepLoop(ctx)
	}

	<-ctx.Done()
	w.logger.Info("Notifier worker context canceled, stopping...")
	w.wg.Wait()
	w.logger.Info("Notifier worker stopped")

	return nil
}

// consumeLoop is the processing loop for one worker goroutine. The delivery
// channel is shared; the broker balances messages across loops.
func (w *Worker) consumeLoop(ctx context.Context, workerNum int, deliveries <-chan amqp.Delivery) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Info("Notifier goroutine started", slog.String("worker_name", workerName))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Notifier goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed",
					slog.String("worker_name", workerName),
				)
				return
			}

			w.handleDelivery(ctx, workerName, delivery)
		}
	}
}

// handleDelivery processes one event. Malformed payloads are nacked without
// requeue; transient store failures are nacked with requeue for redelivery.
func (w *Worker) handleDelivery(ctx context.Context, workerName string, delivery amqp.Delivery) {
	var event notify.Event
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		w.logger.Error("Failed to parse event JSON",
			slog.String("worker_name", workerName),
			slog.String("error", err.Error()),
			slog.String("body", string(delivery.Body)),
		)
		w.nack(delivery, false)
		return
	}

	if event.Kind == "" {
		w.logger.Error("Event missing kind",
			slog.String("worker_name", workerName),
			slog.String("body", string(delivery.Body)),
		)
		w.nack(delivery, false)
		return
	}

	// Events without a target are audit-only; there is nobody to notify.
	if event.TargetUserID == "" {
		w.ack(delivery)
		return
	}

	handleCtx, cancel := context.WithTimeout(ctx, w.handleTimeout)
	defer cancel()

	createdAt := event.OccurredAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	notification := &domain.Notification{
		ID:        uuid.New().String(),
		UserID:    event.TargetUserID,
		Kind:      event.Kind,
		PostID:    event.PostID,
		RequestID: event.RequestID,
		JobID:     event.JobID,
		Detail:    event.Detail,
		CreatedAt: createdAt,
	}

	if err := w.store.InsertNotification(handleCtx, notification); err != nil {
		w.logger.Error("Failed to store notification",
			slog.String("worker_name", workerName),
			slog.String("kind", event.Kind),
			slog.String("user_id", event.TargetUserID),
			slog.String("error", err.Error()),
		)
		w.nack(delivery, true)
		return
	}

	w.logger.Info("Notification stored",
		slog.String("worker_name", workerName),
		slog.String("kind", event.Kind),
		slog.String("user_id", event.TargetUserID),
	)
	w.ack(delivery)
}

// sweepLoop periodically advances overdue jobs so time-driven transitions do
// not depend on API traffic.
func (w *Worker) sweepLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	w.logger.Info("Job sweep loop started", slog.Duration("interval", w.sweepInterval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Job sweep loop stopped")
			return
		case <-ticker.C:
			w.sweeper.SweepOverdue(ctx)
		}
	}
}

func (w *Worker) ack(delivery amqp.Delivery) {
	if err := delivery.Ack(false); err != nil {
		w.logger.Error("Failed to ACK message", slog.String("error", err.Error()))
	}
}

func (w *Worker) nack(delivery amqp.Delivery, requeue bool) {
	if err := delivery.Nack(false, requeue); err != nil {
		w.logger.Error("Failed to NACK message", slog.String("error", err.Error()))
	}
}
