package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tradematch/tradematch-be/internal/domain"
)

const postColumns = `
	post_id, title, content, location, salary, requirements,
	publisher_id, embedding, accepted_by, start_date, end_date,
	created_at, updated_at
`

// GetPost retrieves a post by its ID.
func (s *Storage) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE post_id = $1
	`

	var post domain.Post
	if err := s.db.GetContext(ctx, &post, query, postID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %s: %w", postID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

// InsertPost creates a new post row.
func (s *Storage) InsertPost(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (
			post_id, title, content, location, salary, requirements,
			publisher_id, embedding, accepted_by, start_date, end_date,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		post.ID,
		post.Title,
		post.Content,
		post.Location,
		post.Salary,
		post.Requirements,
		post.PublisherID,
		post.Embedding,
		post.AcceptedBy,
		post.StartDate,
		post.EndDate,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

// DeletePost removes the post row. Requests and jobs under it are cancelled
// beforehand by the cascade; their rows keep the dangling reference and are
// excluded from reads by joins.
func (s *Storage) DeletePost(ctx context.Context, postID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE post_id = $1`, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("post %s: %w", postID, domain.ErrNotFound)
	}

	return nil
}

// AddAcceptedWorker appends the worker to the post's accepted set unless
// already present.
func (s *Storage) AddAcceptedWorker(ctx context.Context, postID, workerID string) error {
	query := `
		UPDATE posts
		SET accepted_by = array_append(accepted_by, $2),
		    updated_at = NOW()
		WHERE post_id = $1 AND NOT ($2 = ANY(accepted_by))
	`

	_, err := s.db.ExecContext(ctx, query, postID, workerID)
	if err != nil {
		return fmt.Errorf("failed to add accepted worker: %w", err)
	}

	return nil
}

// PostsWithEmbedding lists every post carrying an embedding, optionally
// excluding one publisher's own posts.
func (s *Storage) PostsWithEmbedding(ctx context.Context, excludeOwnerID string) ([]domain.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE cardinality(embedding) > 0
	`
	args := []interface{}{}

	if excludeOwnerID != "" {
		query += " AND publisher_id <> $1"
		args = append(args, excludeOwnerID)
	}

	query += " ORDER BY created_at DESC"

	var posts []domain.Post
	if err := s.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list embedded posts: %w", err)
	}

	return posts, nil
}
