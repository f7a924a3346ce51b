// Package recommend ranks posts for a subcontractor profile and open-for-work
// profiles for a post using embedding similarity plus secondary signals.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/tradematch/tradematch-be/internal/domain"
	"github.com/tradematch/tradematch-be/internal/matching"
)

// DefaultTopK is the ranking cutoff when the caller does not pass one.
const DefaultTopK = 20

// Blend weights for profile-for-post ranking.
const (
	weightEmbedding = 0.85
	weightCoverage  = 0.10
	weightTrade     = 0.05
)

// Store is the read surface consumed by the engine. Only records with a
// non-empty embedding are returned by the listing methods.
type Store interface {
	PostsWithEmbedding(ctx context.Context, excludeOwnerID string) ([]domain.Post, error)
	OpenProfilesWithEmbedding(ctx context.Context) ([]domain.ContractorProfile, error)
	// RequestStatusesForSubcontractor maps post IDs to the subcontractor's
	// outstanding request status for those posts.
	RequestStatusesForSubcontractor(ctx context.Context, subcontractorID string) (map[string]domain.RequestStatus, error)
}

// RankedPost is a post scored against a profile, annotated with the caller's
// own outstanding request status when one exists.
type RankedPost struct {
	Post          domain.Post          `json:"post"`
	Score         float64              `json:"score"`
	RequestStatus domain.RequestStatus `json:"request_status,omitempty"`
}

// RankedProfile is an open-for-work profile scored against a post.
type RankedProfile struct {
	Profile domain.ContractorProfile `json:"profile"`
	Score   float64                  `json:"score"`
}

// Engine computes similarity rankings. topK is the configured cutoff applied
// when a caller does not pass one.
type Engine struct {
	store  Store
	topK   int
	logger *slog.Logger
}

// NewEngine creates a new recommendation Engine instance. A non-positive topK
// falls back to DefaultTopK.
func NewEngine(store Store, topK int, logger *slog.Logger) *Engine {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Engine{store: store, topK: topK, logger: logger}
}

// RankPostsForProfile scores every embedded post against the profile's
// embedding, drops non-comparable pairs, and returns the topK best matches.
func (e *Engine) RankPostsForProfile(ctx context.Context, profile *domain.ContractorProfile, excludeOwnerID string, topK int) ([]RankedPost, error) {
	posts, err := e.store.PostsWithEmbedding(ctx, excludeOwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate posts: %w", err)
	}

	statuses, err := e.store.RequestStatusesForSubcontractor(ctx, profile.UserID)
	if err != nil {
		// Annotation only; ranking proceeds without it.
		e.logger.Warn("Request status annotation unavailable",
			slog.String("user_id", profile.UserID),
			slog.Any("error", err),
		)
		statuses = nil
	}

	ranked := make([]RankedPost, 0, len(posts))
	for _, post := range posts {
		score := matching.Cosine(profile.ProfileEmbedding, post.Embedding)
		if score < 0 {
			continue
		}
		ranked = append(ranked, RankedPost{
			Post:          post,
			Score:         score,
			RequestStatus: statuses[post.ID],
		})
	}

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return truncatePosts(ranked, e.cutoff(topK)), nil
}

// RankProfilesForPost blends embedding similarity with coverage-area and
// trade-keyword signals over the open-for-work pool. The post must carry an
// embedding.
func (e *Engine) RankProfilesForPost(ctx context.Context, post *domain.Post, topK int) ([]RankedProfile, error) {
	if !post.HasEmbedding() {
		return nil, fmt.Errorf("post %s has no embedding: %w", post.ID, domain.ErrNotFound)
	}

	profiles, err := e.store.OpenProfilesWithEmbedding(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load open profiles: %w", err)
	}

	ranked := make([]RankedProfile, 0, len(profiles))
	for _, profile := range profiles {
		similarity := matching.Cosine(profile.ProfileEmbedding, post.Embedding)
		if similarity < 0 {
			continue
		}

		score := weightEmbedding * similarity
		if matching.CoverageAreaMatch(profile.CoverageAreas, post.Location) {
			score += weightCoverage
		}
		if matching.TradeKeywordMatch(profile.PrimaryTrade, post) {
			score += weightTrade
		}
		if score < 0 {
			continue
		}

		ranked = append(ranked, RankedProfile{Profile: profile, Score: score})
	}

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return truncateProfiles(ranked, e.cutoff(topK)), nil
}

// cutoff resolves the per-call topK against the configured default.
func (e *Engine) cutoff(topK int) int {
	if topK <= 0 {
		return e.topK
	}
	return topK
}

func truncatePosts(ranked []RankedPost, topK int) []RankedPost {
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

func truncateProfiles(ranked []RankedProfile, topK int) []RankedProfile {
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}
