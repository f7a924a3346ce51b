package recommend

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradematch/tradematch-be/internal/domain"
)

type fakeStore struct {
	posts       []domain.Post
	profiles    []domain.ContractorProfile
	statuses    map[string]domain.RequestStatus
	statusesErr error
}

func (f *fakeStore) PostsWithEmbedding(_ context.Context, excludeOwnerID string) ([]domain.Post, error) {
	var out []domain.Post
	for _, post := range f.posts {
		if excludeOwnerID != "" && post.PublisherID == excludeOwnerID {
			continue
		}
		out = append(out, post)
	}
	return out, nil
}

func (f *fakeStore) OpenProfilesWithEmbedding(_ context.Context) ([]domain.ContractorProfile, error) {
	return f.profiles, nil
}

func (f *fakeStore) RequestStatusesForSubcontractor(_ context.Context, _ string) (map[string]domain.RequestStatus, error) {
	if f.statusesErr != nil {
		return nil, f.statusesErr
	}
	return f.statuses, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRankPostsForProfile(t *testing.T) {
	profile := &domain.ContractorProfile{
		UserID:           "sub-1",
		ProfileEmbedding: []float64{1, 0},
	}

	store := &fakeStore{
		posts: []domain.Post{
			{ID: "post-far", Embedding: []float64{0, 1}},
			{ID: "post-near", Embedding: []float64{1, 0}},
			{ID: "post-mid", Embedding: []float64{1, 1}},
			{ID: "post-no-embedding", Embedding: nil},
		},
		statuses: map[string]domain.RequestStatus{
			"post-near": domain.RequestPending,
		},
	}
	engine := NewEngine(store, 0, discardLogger())

	ranked, err := engine.RankPostsForProfile(context.Background(), profile, "", 0)
	require.NoError(t, err)

	// The post without an embedding is not comparable and is dropped.
	require.Len(t, ranked, 3)
	assert.Equal(t, "post-near", ranked[0].Post.ID)
	assert.Equal(t, "post-mid", ranked[1].Post.ID)
	assert.Equal(t, "post-far", ranked[2].Post.ID)
	assert.InDelta(t, 1.0, ranked[0].Score, 1e-9)

	// The caller's outstanding request annotates its post.
	assert.Equal(t, domain.RequestPending, ranked[0].RequestStatus)
	assert.Empty(t, ranked[1].RequestStatus)
}

func TestRankPostsForProfile_TopK(t *testing.T) {
	profile := &domain.ContractorProfile{
		UserID:           "sub-1",
		ProfileEmbedding: []float64{1, 0},
	}
	store := &fakeStore{
		posts: []domain.Post{
			{ID: "a", Embedding: []float64{1, 0}},
			{ID: "b", Embedding: []float64{1, 1}},
			{ID: "c", Embedding: []float64{1, 2}},
		},
	}
	engine := NewEngine(store, 0, discardLogger())

	ranked, err := engine.RankPostsForProfile(context.Background(), profile, "", 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].Post.ID)
}

func TestRankPostsForProfile_ConfiguredTopK(t *testing.T) {
	profile := &domain.ContractorProfile{
		UserID:           "sub-1",
		ProfileEmbedding: []float64{1, 0},
	}
	store := &fakeStore{
		posts: []domain.Post{
			{ID: "a", Embedding: []float64{1, 0}},
			{ID: "b", Embedding: []float64{1, 1}},
			{ID: "c", Embedding: []float64{1, 2}},
		},
	}
	engine := NewEngine(store, 2, discardLogger())

	// The configured cutoff applies when the caller passes none.
	ranked, err := engine.RankPostsForProfile(context.Background(), profile, "", 0)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	// An explicit per-call topK still wins.
	ranked, err = engine.RankPostsForProfile(context.Background(), profile, "", 1)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
}

func TestRankPostsForProfile_StatusAnnotationBestEffort(t *testing.T) {
	profile := &domain.ContractorProfile{
		UserID:           "sub-1",
		ProfileEmbedding: []float64{1, 0},
	}
	store := &fakeStore{
		posts:       []domain.Post{{ID: "a", Embedding: []float64{1, 0}}},
		statusesErr: assert.AnError,
	}
	engine := NewEngine(store, 0, discardLogger())

	// A status lookup failure costs only the annotation.
	ranked, err := engine.RankPostsForProfile(context.Background(), profile, "", 0)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Empty(t, ranked[0].RequestStatus)
}

func TestRankPostsForProfile_ExcludesOwner(t *testing.T) {
	profile := &domain.ContractorProfile{
		UserID:           "owner",
		ProfileEmbedding: []float64{1, 0},
	}
	store := &fakeStore{
		posts: []domain.Post{
			{ID: "own", PublisherID: "owner", Embedding: []float64{1, 0}},
			{ID: "other", PublisherID: "someone", Embedding: []float64{1, 0}},
		},
	}
	engine := NewEngine(store, 0, discardLogger())

	ranked, err := engine.RankPostsForProfile(context.Background(), profile, "owner", 0)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "other", ranked[0].Post.ID)
}

func TestRankProfilesForPost(t *testing.T) {
	post := &domain.Post{
		ID:        "post-1",
		Location:  "Rotterdam",
		Title:     "Emergency plumbing repair",
		Embedding: []float64{1, 0},
	}

	store := &fakeStore{
		profiles: []domain.ContractorProfile{
			{
				// Perfect embedding but no secondary signals: 0.85.
				UserID:           "embedding-only",
				ProfileEmbedding: []float64{1, 0},
			},
			{
				// Slightly worse embedding, both secondary signals:
				// 0.85*0.8 + 0.10 + 0.05 = 0.83.
				UserID:           "well-rounded",
				PrimaryTrade:     "plumbing",
				CoverageAreas:    []string{"Rotterdam"},
				ProfileEmbedding: []float64{0.8, 0.6},
			},
			{
				UserID:           "not-comparable",
				ProfileEmbedding: nil,
			},
		},
	}
	engine := NewEngine(store, 0, discardLogger())

	ranked, err := engine.RankProfilesForPost(context.Background(), post, 0)
	require.NoError(t, err)

	require.Len(t, ranked, 2)
	assert.Equal(t, "embedding-only", ranked[0].Profile.UserID)
	assert.InDelta(t, 0.85, ranked[0].Score, 1e-9)
	assert.Equal(t, "well-rounded", ranked[1].Profile.UserID)
	assert.InDelta(t, 0.83, ranked[1].Score, 1e-9)
}

func TestRankProfilesForPost_RequiresEmbedding(t *testing.T) {
	engine := NewEngine(&fakeStore{}, 0, discardLogger())

	_, err := engine.RankProfilesForPost(context.Background(), &domain.Post{ID: "p"}, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
