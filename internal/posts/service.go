// Package posts owns post creation and deletion, including the best-effort
// embedding at creation time and the cancellation cascade on deletion.
package posts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tradematch/tradematch-be/internal/domain"
)

// Store is the persistence surface for posts.
type Store interface {
	GetPost(ctx context.Context, postID string) (*domain.Post, error)
	InsertPost(ctx context.Context, post *domain.Post) error
	DeletePost(ctx context.Context, postID string) error
}

// Canceller cancels everything still open under a post before it is removed.
type Canceller interface {
	CancelForPost(ctx context.Context, postID string) error
}

// Embedder is the best-effort embedding dependency.
type Embedder interface {
	EmbedOrEmpty(ctx context.Context, text string) []float64
}

// CreateInput carries the publisher-supplied post fields.
type CreateInput struct {
	Title        string
	Content      string
	Location     string
	Salary       float64
	Requirements string
	PublisherID  string
	StartDate    time.Time
	EndDate      time.Time
}

// Service drives post lifecycle operations.
type Service struct {
	store     Store
	canceller Canceller
	embedder  Embedder
	logger    *slog.Logger
}

// NewService creates a new post Service instance
func NewService(store Store, canceller Canceller, embedder Embedder, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		canceller: canceller,
		embedder:  embedder,
		logger:    logger,
	}
}

// Get returns a post by ID.
func (s *Service) Get(ctx context.Context, postID string) (*domain.Post, error) {
	return s.store.GetPost(ctx, postID)
}

// Create persists a new post. Embedding is best-effort: a gateway failure
// leaves the vector empty, which excludes the post from similarity queries
// until it is re-embedded.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Post, error) {
	now := time.Now()
	post := &domain.Post{
		ID:           uuid.New().String(),
		Title:        input.Title,
		Content:      input.Content,
		Location:     input.Location,
		Salary:       input.Salary,
		Requirements: input.Requirements,
		PublisherID:  input.PublisherID,
		AcceptedBy:   []string{},
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	post.Embedding = s.embedder.EmbedOrEmpty(ctx, embeddingText(post))
	// The array columns are NOT NULL; a nil slice would encode as SQL NULL.
	if post.Embedding == nil {
		post.Embedding = []float64{}
	}

	if err := s.store.InsertPost(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("Post created",
		slog.String("post_id", post.ID),
		slog.String("publisher_id", post.PublisherID),
		slog.Bool("embedded", post.HasEmbedding()),
	)

	return post, nil
}

// Delete removes a publisher's post after cancelling every open request and
// job under it. The cascade steps are idempotent set-updates, so a failed
// attempt can simply be retried.
func (s *Service) Delete(ctx context.Context, postID, actorID string) error {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	if actorID == "" {
		return domain.ErrUnauthorized
	}
	if post.PublisherID != actorID {
		return fmt.Errorf("only the publisher may delete a post: %w", domain.ErrForbidden)
	}

	if err := s.canceller.CancelForPost(ctx, postID); err != nil {
		return err
	}

	if err := s.store.DeletePost(ctx, postID); err != nil {
		return err
	}

	s.logger.Info("Post deleted",
		slog.String("post_id", postID),
		slog.String("publisher_id", actorID),
	)

	return nil
}

func embeddingText(post *domain.Post) string {
	return strings.TrimSpace(post.Title + "\n" + post.Content + "\n" + post.Requirements + "\n" + post.Location)
}
