package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tradematch/tradematch-be/internal/domain"
	"github.com/tradematch/tradematch-be/internal/notify"
)

// Store is the persistence surface consumed by the assignment manager. The
// cancel methods are idempotent "cancel anything still open" set-updates so
// cascades survive partial failure and retries.
type Store interface {
	GetJob(ctx context.Context, jobID string) (*domain.Job, error)
	// InsertJobIfAbsent inserts the job unless a row for (post, worker)
	// already exists, and returns the stored row plus a created flag.
	InsertJobIfAbsent(ctx context.Context, job *domain.Job) (*domain.Job, bool, error)
	SetJobStatus(ctx context.Context, jobID string, status domain.JobStatus, startDate, endDate *time.Time) error
	// AdvanceOverdueJobs moves accepted jobs past their start date to
	// in_progress and in_progress jobs past their end date to completed.
	AdvanceOverdueJobs(ctx context.Context, now time.Time) (int64, error)
	ListJobsForUser(ctx context.Context, userID string) ([]domain.Job, error)
	CancelOpenRequestsForWorker(ctx context.Context, postID, workerID string) error
	CancelOpenRequestsForPost(ctx context.Context, postID string) error
	CancelOpenJobsForPost(ctx context.Context, postID string) error
}

// Events is the best-effort event sink; a nil publisher disables it.
type Events interface {
	Publish(ctx context.Context, event notify.Event) error
}

// Service drives job creation and lifecycle transitions.
type Service struct {
	store  Store
	events Events
	logger *slog.Logger
}

// NewService creates a new assignment Service instance
func NewService(store Store, events Events, logger *slog.Logger) *Service {
	return &Service{store: store, events: events, logger: logger}
}

// AcceptAndAssign creates the Job for (post, worker) or returns the existing
// one. Insert-only fields (contractor, role, dates, accepted status) apply on
// first insert only; re-invocation is a read.
func (s *Service) AcceptAndAssign(ctx context.Context, post *domain.Post, contractorID, workerID, workerRole string) (*domain.Job, bool, error) {
	now := time.Now()
	candidate := &domain.Job{
		ID:           uuid.New().String(),
		PostID:       post.ID,
		ContractorID: contractorID,
		WorkerID:     workerID,
		WorkerRole:   workerRole,
		StartDate:    post.StartDate,
		EndDate:      post.EndDate,
		Status:       domain.JobAccepted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	job, created, err := s.store.InsertJobIfAbsent(ctx, candidate)
	if err != nil {
		return nil, false, fmt.Errorf("failed to assign job: %w", err)
	}

	if !created {
		s.logger.Debug("Job already assigned, returning existing record",
			slog.String("post_id", post.ID),
			slog.String("worker_id", workerID),
			slog.String("job_id", job.ID),
		)
	}

	return job, !created, nil
}

// SweepOverdue advances all due jobs, not just one caller's. Concurrent
// sweeps re-apply the same conditional updates and are no-ops for rows
// already moved.
func (s *Service) SweepOverdue(ctx context.Context) {
	advanced, err := s.store.AdvanceOverdueJobs(ctx, time.Now())
	if err != nil {
		s.logger.Warn("Overdue job sweep failed", slog.Any("error", err))
		return
	}
	if advanced > 0 {
		s.logger.Info("Advanced overdue jobs", slog.Int64("count", advanced))
	}
}

// ListForUser sweeps time-driven transitions and then returns the user's jobs
// on either side of the marketplace.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Job, error) {
	s.SweepOverdue(ctx)
	return s.store.ListJobsForUser(ctx, userID)
}

// UpdateStatus applies a contractor-driven transition. Moving to in_progress
// stamps the start date, completing stamps the end date, and cancelling
// force-cancels any still-open request for the same (post, worker).
func (s *Service) UpdateStatus(ctx context.Context, jobID, actorID string, target domain.JobStatus) (*domain.Job, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if actorID == "" {
		return nil, domain.ErrUnauthorized
	}
	if actorID != job.ContractorID {
		return nil, fmt.Errorf("only the contractor may change job status: %w", domain.ErrForbidden)
	}

	if !IsTransitionAllowed(job.Status, target) {
		return nil, fmt.Errorf("transition %s->%s not allowed: %w", job.Status, target, domain.ErrInvalidTransition)
	}

	now := time.Now()
	var startDate, endDate *time.Time
	switch target {
	case domain.JobInProgress:
		startDate = &now
	case domain.JobCompleted:
		endDate = &now
	}

	if err := s.store.SetJobStatus(ctx, job.ID, target, startDate, endDate); err != nil {
		return nil, err
	}

	previous := job.Status
	job.Status = target
	job.UpdatedAt = now
	if startDate != nil {
		job.StartDate = *startDate
	}
	if endDate != nil {
		job.EndDate = *endDate
	}

	if target == domain.JobCancelled {
		// The cascade is an idempotent set-update; a failure here is
		// retriable and must not undo the status change.
		if err := s.store.CancelOpenRequestsForWorker(ctx, job.PostID, job.WorkerID); err != nil {
			s.logger.Warn("Failed to cascade cancellation to open requests",
				slog.String("post_id", job.PostID),
				slog.String("worker_id", job.WorkerID),
				slog.Any("error", err),
			)
		}
	}

	s.publish(ctx, notify.Event{
		Kind:         eventKind(target),
		PostID:       job.PostID,
		JobID:        job.ID,
		ActorID:      actorID,
		TargetUserID: job.WorkerID,
		Detail:       fmt.Sprintf("%s->%s", previous, target),
	})

	return job, nil
}

// CancelForPost cancels everything still open under a post: requests first,
// then jobs. Both steps are idempotent, so the multi-step cascade tolerates
// partial failure and retries.
func (s *Service) CancelForPost(ctx context.Context, postID string) error {
	if err := s.store.CancelOpenRequestsForPost(ctx, postID); err != nil {
		return fmt.Errorf("failed to cancel open requests for post %s: %w", postID, err)
	}
	if err := s.store.CancelOpenJobsForPost(ctx, postID); err != nil {
		return fmt.Errorf("failed to cancel open jobs for post %s: %w", postID, err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event notify.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("Event publish failed",
			slog.String("kind", event.Kind),
			slog.Any("error", err),
		)
	}
}

func eventKind(target domain.JobStatus) string {
	if target == domain.JobCancelled {
		return notify.EventJobCancelled
	}
	return notify.EventJobStatusChanged
}
