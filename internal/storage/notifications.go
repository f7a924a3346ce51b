package storage

import (
	"context"
	"fmt"

	"github.com/tradematch/tradematch-be/internal/domain"
)

// InsertNotification persists a notification row for delivery to the user's
// inbox.
func (s *Storage) InsertNotification(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (
			notification_id, user_id, kind, post_id, request_id, job_id,
			detail, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		n.ID,
		n.UserID,
		n.Kind,
		n.PostID,
		n.RequestID,
		n.JobID,
		n.Detail,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}
