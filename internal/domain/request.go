package domain

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Origin identifies which party opened a job request.
type Origin string

const (
	// OriginSub means the subcontractor applied to the post
	OriginSub Origin = "sub"
	// OriginContractor means the contractor invited the subcontractor
	OriginContractor Origin = "contractor"
)

// RequestStatus values mirror the status CHECK constraint on the job_requests
// table.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestDenied    RequestStatus = "denied"
	RequestCancelled RequestStatus = "cancelled"
	RequestWithdrawn RequestStatus = "withdrawn"
	RequestExpired   RequestStatus = "expired"
)

// ParseRequestStatus converts a raw string to a RequestStatus, returning an
// error for unknown values.
func ParseRequestStatus(s string) (RequestStatus, error) {
	st := RequestStatus(s)
	switch st {
	case RequestPending, RequestAccepted, RequestDenied, RequestCancelled, RequestWithdrawn, RequestExpired:
		return st, nil
	}
	return "", fmt.Errorf("unknown request status %q", s)
}

// Terminal reports whether the status admits no further party-driven
// transitions. Every status except pending is terminal; terminal-non-accepted
// records can still be revived in place by a fresh request or invite.
func (s RequestStatus) Terminal() bool {
	return s != RequestPending
}

// JobRequest is a proposed pairing between a post and a subcontractor. At most
// one row exists per (post, subcontractor) pair; re-requesting revives the
// existing row instead of inserting a duplicate.
type JobRequest struct {
	ID              string         `db:"request_id" json:"request_id"`
	Origin          Origin         `db:"origin" json:"origin"`
	PostID          string         `db:"post_id" json:"post_id"`
	ContractorID    string         `db:"contractor_id" json:"contractor_id"`
	SubcontractorID string         `db:"subcontractor_id" json:"subcontractor_id"`
	Status          RequestStatus  `db:"status" json:"status"`
	Message         string         `db:"message" json:"message"`
	MatchScore      *float64       `db:"match_score" json:"match_score,omitempty"`
	MatchedFields   pq.StringArray `db:"matched_fields" json:"matched_fields"`
	RespondedAt     *time.Time     `db:"responded_at" json:"responded_at,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}
