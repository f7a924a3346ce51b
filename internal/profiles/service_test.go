package profiles

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
	profiles map[string]*domain.ContractorProfile
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: make(map[string]*domain.ContractorProfile)}
}

func (f *fakeStore) GetProfile(_ context.Context, userID string) (*domain.ContractorProfile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *profile
	return &copied, nil
}

func (f *fakeStore) UpsertProfile(_ context.Context, profile *domain.ContractorProfile) error {
	existing, ok := f.profiles[profile.UserID]
	copied := *profile
	if ok {
		copied.OpenForWork = existing.OpenForWork
	}
	f.profiles[profile.UserID] = &copied
	return nil
}

func (f *fakeStore) SetOpenForWork(_ context.Context, userID string, open bool) error {
	profile, ok := f.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	profile.OpenForWork = open
	return nil
}

func (f *fakeStore) SetProfileEmbedding(_ context.Context, userID string, embedding []float64) error {
	profile, ok := f.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	profile.ProfileEmbedding = embedding
	return nil
}

type fakeEmbedder struct {
	vector []float64
	err    error
	texts  []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) EmbedOrEmpty(ctx context.Context, text string) []float64 {
	vector, err := f.Embed(ctx, text)
	if err != nil {
		return nil
	}
	return vector
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUpsert(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{vector: []float64{0.3, 0.4}}
	svc := NewService(store, embedder, discardLogger())

	profile, err := svc.Upsert(context.Background(), UpsertInput{
		UserID:        "sub-1",
		PrimaryTrade:  "electrician",
		Skills:        []string{"wiring", "fuse boxes"},
		CoverageAreas: []string{"Utrecht"},
	})
	require.NoError(t, err)

	assert.True(t, profile.HasEmbedding())
	require.Len(t, embedder.texts, 1)
	assert.Equal(t, "electrician, wiring, fuse boxes, Utrecht", embedder.texts[0])
}

func TestUpsert_EmbeddingFailureStoresEmptyArrays(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{err: assert.AnError}
	svc := NewService(store, embedder, discardLogger())

	// No list fields and a failed embedding must still produce a storable
	// row: the array columns are NOT NULL, so nil slices are not allowed.
	profile, err := svc.Upsert(context.Background(), UpsertInput{
		UserID:       "sub-1",
		PrimaryTrade: "electrician",
	})
	require.NoError(t, err)
	assert.False(t, profile.HasEmbedding())

	stored := store.profiles["sub-1"]
	require.NotNil(t, stored.ProfileEmbedding)
	assert.Empty(t, stored.ProfileEmbedding)
	require.NotNil(t, stored.Skills)
	require.NotNil(t, stored.Services)
	require.NotNil(t, stored.CoverageAreas)
}

func TestSetOpenForWork_Enable(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{vector: []float64{0.3, 0.4}}
	svc := NewService(store, embedder, discardLogger())

	_, err := svc.Upsert(context.Background(), UpsertInput{UserID: "sub-1", PrimaryTrade: "electrician"})
	require.NoError(t, err)

	profile, err := svc.SetOpenForWork(context.Background(), "sub-1", true)
	require.NoError(t, err)
	assert.True(t, profile.OpenForWork)
	assert.True(t, profile.HasEmbedding())
}

func TestSetOpenForWork_EnableWithoutEmbedding(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{err: assert.AnError}
	svc := NewService(store, embedder, discardLogger())

	store.profiles["sub-1"] = &domain.ContractorProfile{UserID: "sub-1", PrimaryTrade: "electrician"}

	// The flag is persisted first; the embedding failure surfaces alongside
	// the updated profile so the caller can report a partial success.
	profile, err := svc.SetOpenForWork(context.Background(), "sub-1", true)
	require.Error(t, err)
	require.NotNil(t, profile)
	assert.True(t, profile.OpenForWork)
	assert.True(t, store.profiles["sub-1"].OpenForWork)
}

func TestSetOpenForWork_DisableSkipsEmbedding(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{err: assert.AnError}
	svc := NewService(store, embedder, discardLogger())

	store.profiles["sub-1"] = &domain.ContractorProfile{UserID: "sub-1", OpenForWork: true}

	profile, err := svc.SetOpenForWork(context.Background(), "sub-1", false)
	require.NoError(t, err)
	assert.False(t, profile.OpenForWork)
	assert.Empty(t, embedder.texts)
}

func TestSetOpenForWork_UnknownUser(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeEmbedder{}, discardLogger())

	_, err := svc.SetOpenForWork(context.Background(), "nobody", true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
