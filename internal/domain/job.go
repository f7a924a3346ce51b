package domain

import (
	"fmt"
	"time"
)

// JobStatus values mirror the status CHECK constraint on the jobs table.
type JobStatus string

const (
	JobAccepted   JobStatus = "accepted"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

// ParseJobStatus converts a raw string to a JobStatus, returning an error for
// unknown values.
func ParseJobStatus(s string) (JobStatus, error) {
	st := JobStatus(s)
	switch st {
	case JobAccepted, JobInProgress, JobCompleted, JobCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// Job is a confirmed work assignment, created when a request is accepted. At
// most one row exists per (post, worker) pair; re-accepting returns the
// existing row.
type Job struct {
	ID           string    `db:"job_id" json:"job_id"`
	PostID       string    `db:"post_id" json:"post_id"`
	ContractorID string    `db:"contractor_id" json:"contractor_id"`
	WorkerID     string    `db:"worker_id" json:"worker_id"`
	WorkerRole   string    `db:"worker_role" json:"worker_role"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
	Status       JobStatus `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
