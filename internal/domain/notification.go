package domain

import "time"

// Notification is a per-user inbox entry materialized from a marketplace
// event by the worker service.
type Notification struct {
	ID        string     `db:"notification_id" json:"notification_id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Kind      string     `db:"kind" json:"kind"`
	PostID    string     `db:"post_id" json:"post_id,omitempty"`
	RequestID string     `db:"request_id" json:"request_id,omitempty"`
	JobID     string     `db:"job_id" json:"job_id,omitempty"`
	Detail    string     `db:"detail" json:"detail,omitempty"`
	ReadAt    *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
