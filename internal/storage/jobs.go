package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tradematch/tradematch-be/internal/domain"
)

const jobColumns = `
	job_id, post_id, contractor_id, worker_id, worker_role,
	start_date, end_date, status, created_at, updated_at
`

// GetJob retrieves a job by its ID.
func (s *Storage) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE job_id = $1
	`

	var job domain.Job
	if err := s.db.GetContext(ctx, &job, query, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", jobID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// GetJobByPair retrieves the job for a (post, worker) pair.
func (s *Storage) GetJobByPair(ctx context.Context, postID, workerID string) (*domain.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE post_id = $1 AND worker_id = $2
	`

	var job domain.Job
	if err := s.db.GetContext(ctx, &job, query, postID, workerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job by pair: %w", err)
	}

	return &job, nil
}

// InsertJobIfAbsent inserts the job unless the (post, worker) slot is already
// taken, then returns the stored row. ON CONFLICT DO NOTHING keeps concurrent
// accepts race-safe; the created flag comes from the affected-row count.
func (s *Storage) InsertJobIfAbsent(ctx context.Context, job *domain.Job) (*domain.Job, bool, error) {
	query := `
		INSERT INTO jobs (
			job_id, post_id, contractor_id, worker_id, worker_role,
			start_date, end_date, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10
		)
		ON CONFLICT (post_id, worker_id) DO NOTHING
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.PostID,
		job.ContractorID,
		job.WorkerID,
		job.WorkerRole,
		job.StartDate,
		job.EndDate,
		job.Status,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert job: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	stored, err := s.GetJobByPair(ctx, job.PostID, job.WorkerID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read job after upsert: %w", err)
	}

	return stored, inserted == 1, nil
}

// SetJobStatus updates the status and stamps start/end dates when provided.
func (s *Storage) SetJobStatus(ctx context.Context, jobID string, status domain.JobStatus, startDate, endDate *time.Time) error {
	query := `
		UPDATE jobs
		SET status = $1,
		    start_date = COALESCE($2, start_date),
		    end_date = COALESCE($3, end_date),
		    updated_at = NOW()
		WHERE job_id = $4
	`

	_, err := s.db.ExecContext(ctx, query, status, startDate, endDate, jobID)
	if err != nil {
		return fmt.Errorf("failed to set job status: %w", err)
	}

	return nil
}

// AdvanceOverdueJobs applies the time-driven transitions to every due row.
// Both updates are conditional on the current status, so concurrent sweeps
// are no-ops for rows already moved.
func (s *Storage) AdvanceOverdueJobs(ctx context.Context, now time.Time) (int64, error) {
	started, err := s.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND start_date <= $3
	`, domain.JobInProgress, domain.JobAccepted, now)
	if err != nil {
		return 0, fmt.Errorf("failed to advance accepted jobs: %w", err)
	}

	completed, err := s.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND end_date <= $3
	`, domain.JobCompleted, domain.JobInProgress, now)
	if err != nil {
		return 0, fmt.Errorf("failed to complete in-progress jobs: %w", err)
	}

	startedRows, err := started.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	completedRows, err := completed.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	total := startedRows + completedRows
	if total > 0 {
		s.logger.Debug("Overdue jobs advanced",
			slog.Int64("started", startedRows),
			slog.Int64("completed", completedRows),
		)
	}

	return total, nil
}

// ListJobsForUser lists jobs where the user is either the contractor or the
// worker, newest activity first.
func (s *Storage) ListJobsForUser(ctx context.Context, userID string) ([]domain.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE worker_id = $1 OR contractor_id = $1
		ORDER BY updated_at DESC
	`

	var jobs []domain.Job
	if err := s.db.SelectContext(ctx, &jobs, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// CancelOpenJobsForPost force-cancels every non-terminal job under a post,
// the second step of the post-deletion cascade.
func (s *Storage) CancelOpenJobsForPost(ctx context.Context, postID string) error {
	query := `
		UPDATE jobs
		SET status = $1, updated_at = NOW()
		WHERE post_id = $2 AND status IN ($3, $4)
	`

	_, err := s.db.ExecContext(ctx, query,
		domain.JobCancelled, postID,
		domain.JobAccepted, domain.JobInProgress,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel open jobs for post: %w", err)
	}

	return nil
}
