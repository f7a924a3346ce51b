package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tradematch/tradematch-be/internal/domain"
	"github.com/tradematch/tradematch-be/internal/requests"
)

const requestColumns = `
	r.request_id, r.origin, r.post_id, r.contractor_id, r.subcontractor_id,
	r.status, r.message, r.match_score, r.matched_fields, r.responded_at,
	r.created_at, r.updated_at
`

// GetRequest retrieves a request by its ID.
func (s *Storage) GetRequest(ctx context.Context, requestID string) (*domain.JobRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM job_requests r
		WHERE r.request_id = $1
	`

	var req domain.JobRequest
	if err := s.db.GetContext(ctx, &req, query, requestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("request %s: %w", requestID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	return &req, nil
}

// FindRequestByPair retrieves the single request occupying the
// (post, subcontractor) slot.
func (s *Storage) FindRequestByPair(ctx context.Context, postID, subcontractorID string) (*domain.JobRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM job_requests r
		WHERE r.post_id = $1 AND r.subcontractor_id = $2
	`

	var req domain.JobRequest
	if err := s.db.GetContext(ctx, &req, query, postID, subcontractorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find request by pair: %w", err)
	}

	return &req, nil
}

// InsertRequest creates a new request row. The unique constraint on
// (post_id, subcontractor_id) turns a concurrent duplicate insert into
// domain.ErrAlreadyExists for the caller to recover from.
func (s *Storage) InsertRequest(ctx context.Context, req *domain.JobRequest) error {
	query := `
		INSERT INTO job_requests (
			request_id, origin, post_id, contractor_id, subcontractor_id,
			status, message, match_score, matched_fields,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		req.ID,
		req.Origin,
		req.PostID,
		req.ContractorID,
		req.SubcontractorID,
		req.Status,
		req.Message,
		req.MatchScore,
		req.MatchedFields,
		req.CreatedAt,
		req.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("request slot for post %s taken: %w", req.PostID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to insert request: %w", err)
	}

	return nil
}

// ReviveRequest rewrites a terminal record back to pending with fresh
// message, origin and match data, clearing responded_at.
func (s *Storage) ReviveRequest(ctx context.Context, req *domain.JobRequest) error {
	query := `
		UPDATE job_requests
		SET status = $1,
		    origin = $2,
		    message = $3,
		    match_score = $4,
		    matched_fields = $5,
		    responded_at = NULL,
		    updated_at = NOW()
		WHERE request_id = $6
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		req.Status,
		req.Origin,
		req.Message,
		req.MatchScore,
		req.MatchedFields,
		req.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to revive request: %w", err)
	}

	return nil
}

// SetRequestStatus stamps a terminal status and the response timestamp.
func (s *Storage) SetRequestStatus(ctx context.Context, requestID string, status domain.RequestStatus, respondedAt time.Time) error {
	query := `
		UPDATE job_requests
		SET status = $1,
		    responded_at = $2,
		    updated_at = NOW()
		WHERE request_id = $3
	`

	_, err := s.db.ExecContext(ctx, query, status, respondedAt, requestID)
	if err != nil {
		return fmt.Errorf("failed to set request status: %w", err)
	}

	return nil
}

// CountPendingForContractor counts the contractor's pending requests. The
// join drops requests orphaned by post deletion.
func (s *Storage) CountPendingForContractor(ctx context.Context, contractorID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM job_requests r
		JOIN posts p ON p.post_id = r.post_id
		WHERE r.contractor_id = $1 AND r.status = $2
	`

	var count int
	if err := s.db.GetContext(ctx, &count, query, contractorID, domain.RequestPending); err != nil {
		return 0, fmt.Errorf("failed to count pending requests: %w", err)
	}

	return count, nil
}

// ListRequests lists one party's requests with optional status filter and
// keyset pagination. The posts join excludes orphaned requests.
func (s *Storage) ListRequests(ctx context.Context, filter requests.ListFilter) ([]domain.JobRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM job_requests r
		JOIN posts p ON p.post_id = r.post_id
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	// Filters
	if filter.SubcontractorID != "" {
		query += fmt.Sprintf(" AND r.subcontractor_id = $%d", argIdx)
		args = append(args, filter.SubcontractorID)
		argIdx++
	}

	if filter.ContractorID != "" {
		query += fmt.Sprintf(" AND r.contractor_id = $%d", argIdx)
		args = append(args, filter.ContractorID)
		argIdx++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND r.status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (r.created_at, r.request_id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.RequestID)
		argIdx += 2
	}

	// Order by created_at DESC, request_id DESC for consistent pagination
	query += " ORDER BY r.created_at DESC, r.request_id DESC"

	if filter.PageSize > 0 {
		// Fetch one extra to determine if there are more results
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.PageSize+1)
	}

	var reqs []domain.JobRequest
	if err := s.db.SelectContext(ctx, &reqs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	return reqs, nil
}

// RequestStatusesForSubcontractor maps post IDs to the subcontractor's
// request status, used to annotate post recommendations.
func (s *Storage) RequestStatusesForSubcontractor(ctx context.Context, subcontractorID string) (map[string]domain.RequestStatus, error) {
	query := `
		SELECT post_id, status
		FROM job_requests
		WHERE subcontractor_id = $1
	`

	rows, err := s.db.QueryContext(ctx, query, subcontractorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request statuses: %w", err)
	}
	defer rows.Close()

	statuses := make(map[string]domain.RequestStatus)
	for rows.Next() {
		var postID string
		var status domain.RequestStatus
		if err := rows.Scan(&postID, &status); err != nil {
			return nil, fmt.Errorf("failed to scan request status: %w", err)
		}
		statuses[postID] = status
	}

	return statuses, rows.Err()
}

// CancelOpenRequestsForWorker force-cancels any still-open request for the
// (post, worker) pair. Idempotent by construction.
func (s *Storage) CancelOpenRequestsForWorker(ctx context.Context, postID, workerID string) error {
	query := `
		UPDATE job_requests
		SET status = $1, updated_at = NOW()
		WHERE post_id = $2 AND subcontractor_id = $3 AND status IN ($4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		domain.RequestCancelled, postID, workerID,
		domain.RequestPending, domain.RequestAccepted,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel open requests for worker: %w", err)
	}

	return nil
}

// CancelOpenRequestsForPost force-cancels every non-terminal request under a
// post, the first step of the post-deletion cascade.
func (s *Storage) CancelOpenRequestsForPost(ctx context.Context, postID string) error {
	query := `
		UPDATE job_requests
		SET status = $1, updated_at = NOW()
		WHERE post_id = $2 AND status IN ($3, $4)
	`

	_, err := s.db.ExecContext(ctx, query,
		domain.RequestCancelled, postID,
		domain.RequestPending, domain.RequestAccepted,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel open requests for post: %w", err)
	}

	return nil
}
