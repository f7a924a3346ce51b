// Package profiles owns contractor-profile updates and the open-for-work
// flag, whose embedding requirement is the one mandatory embedding path in
// the system.
package profiles

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/tradematch/tradematch-be/internal/domain"
)

// Store is the persistence surface for profiles.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*domain.ContractorProfile, error)
	UpsertProfile(ctx context.Context, profile *domain.ContractorProfile) error
	SetOpenForWork(ctx context.Context, userID string, open bool) error
	SetProfileEmbedding(ctx context.Context, userID string, embedding []float64) error
}

// Embedder exposes both embedding modes: required and best-effort.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedOrEmpty(ctx context.Context, text string) []float64
}

// UpsertInput carries the user-supplied profile fields.
type UpsertInput struct {
	UserID        string
	PrimaryTrade  string
	Skills        []string
	Services      []string
	CoverageAreas []string
}

// Service drives profile updates.
type Service struct {
	store    Store
	embedder Embedder
	logger   *slog.Logger
}

// NewService creates a new profile Service instance
func NewService(store Store, embedder Embedder, logger *slog.Logger) *Service {
	return &Service{store: store, embedder: embedder, logger: logger}
}

// Get returns a profile by user ID.
func (s *Service) Get(ctx context.Context, userID string) (*domain.ContractorProfile, error) {
	return s.store.GetProfile(ctx, userID)
}

// Upsert saves the profile and refreshes its embedding best-effort; a gateway
// failure leaves the previous (or empty) vector in place.
func (s *Service) Upsert(ctx context.Context, input UpsertInput) (*domain.ContractorProfile, error) {
	now := time.Now()
	profile := &domain.ContractorProfile{
		UserID:        input.UserID,
		PrimaryTrade:  input.PrimaryTrade,
		Skills:        orEmpty(input.Skills),
		Services:      orEmpty(input.Services),
		CoverageAreas: orEmpty(input.CoverageAreas),
		UpdatedAt:     now,
	}
	profile.ProfileEmbedding = s.embedder.EmbedOrEmpty(ctx, profileText(profile))
	// The array columns are NOT NULL; a nil slice would encode as SQL NULL.
	if profile.ProfileEmbedding == nil {
		profile.ProfileEmbedding = []float64{}
	}

	if err := s.store.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// SetOpenForWork toggles the open-for-work flag. Enabling requires an
// embedding: the flag is persisted first, and an embedding failure is
// returned alongside the updated profile so the caller can report "enabled,
// no embedding yet" and let the user retry.
func (s *Service) SetOpenForWork(ctx context.Context, userID string, open bool) (*domain.ContractorProfile, error) {
	if err := s.store.SetOpenForWork(ctx, userID, open); err != nil {
		return nil, err
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.OpenForWork = open

	if !open {
		return profile, nil
	}

	embedding, err := s.embedder.Embed(ctx, profileText(profile))
	if err != nil {
		s.logger.Warn("Open-for-work enabled without embedding",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return profile, err
	}

	if err := s.store.SetProfileEmbedding(ctx, userID, embedding); err != nil {
		return profile, err
	}
	profile.ProfileEmbedding = embedding

	return profile, nil
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func profileText(profile *domain.ContractorProfile) string {
	parts := []string{profile.PrimaryTrade}
	parts = append(parts, profile.Skills...)
	parts = append(parts, profile.Services...)
	parts = append(parts, profile.CoverageAreas...)

	nonEmpty := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}
