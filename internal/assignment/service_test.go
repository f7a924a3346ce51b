package assignment

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradematch/tradematch-be/internal/domain"
	"github.com/tradematch/tradematch-be/internal/notify"
)

type pairKey struct {
	postID   string
	workerID string
}

// fakeStore is an in-memory assignment Store.
type fakeStore struct {
	jobs  map[string]*domain.Job
	pairs map[pairKey]string

	sweeps            int
	cancelledWorkers  []pairKey
	cancelledReqPosts []string
	cancelledJobPosts []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:  make(map[string]*domain.Job),
		pairs: make(map[pairKey]string),
	}
}

func (f *fakeStore) GetJob(_ context.Context, jobID string) (*domain.Job, error) {
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (f *fakeStore) InsertJobIfAbsent(_ context.Context, job *domain.Job) (*domain.Job, bool, error) {
	key := pairKey{postID: job.PostID, workerID: job.WorkerID}
	if existingID, ok := f.pairs[key]; ok {
		copied := *f.jobs[existingID]
		return &copied, false, nil
	}
	copied := *job
	f.jobs[job.ID] = &copied
	f.pairs[key] = job.ID
	result := copied
	return &result, true, nil
}

func (f *fakeStore) SetJobStatus(_ context.Context, jobID string, status domain.JobStatus, startDate, endDate *time.Time) error {
	job, ok := f.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	job.Status = status
	if startDate != nil {
		job.StartDate = *startDate
	}
	if endDate != nil {
		job.EndDate = *endDate
	}
	return nil
}

func (f *fakeStore) AdvanceOverdueJobs(_ context.Context, now time.Time) (int64, error) {
	f.sweeps++
	var advanced int64
	for _, job := range f.jobs {
		switch {
		case job.Status == domain.JobAccepted && job.StartDate.Before(now):
			job.Status = domain.JobInProgress
			advanced++
		case job.Status == domain.JobInProgress && job.EndDate.Before(now):
			job.Status = domain.JobCompleted
			advanced++
		}
	}
	return advanced, nil
}

func (f *fakeStore) ListJobsForUser(_ context.Context, userID string) ([]domain.Job, error) {
	var out []domain.Job
	for _, job := range f.jobs {
		if job.WorkerID == userID || job.ContractorID == userID {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (f *fakeStore) CancelOpenRequestsForWorker(_ context.Context, postID, workerID string) error {
	f.cancelledWorkers = append(f.cancelledWorkers, pairKey{postID: postID, workerID: workerID})
	return nil
}

func (f *fakeStore) CancelOpenRequestsForPost(_ context.Context, postID string) error {
	f.cancelledReqPosts = append(f.cancelledReqPosts, postID)
	return nil
}

func (f *fakeStore) CancelOpenJobsForPost(_ context.Context, postID string) error {
	f.cancelledJobPosts = append(f.cancelledJobPosts, postID)
	return nil
}

type fakeEvents struct {
	events []notify.Event
}

func (f *fakeEvents) Publish(_ context.Context, event notify.Event) error {
	f.events = append(f.events, event)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const (
	contractorID = "c0000000-0000-4000-8000-000000000001"
	workerID     = "c0000000-0000-4000-8000-000000000002"
)

func testPost() *domain.Post {
	return &domain.Post{
		ID:          "p0000000-0000-4000-8000-000000000001",
		PublisherID: contractorID,
		StartDate:   time.Now().Add(24 * time.Hour),
		EndDate:     time.Now().Add(14 * 24 * time.Hour),
	}
}

func TestAcceptAndAssign_Idempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeEvents{}, discardLogger())
	post := testPost()

	first, alreadyAssigned, err := svc.AcceptAndAssign(context.Background(), post, contractorID, workerID, "plumber")
	require.NoError(t, err)
	assert.False(t, alreadyAssigned)

	assert.Equal(t, domain.JobAccepted, first.Status)
	assert.Equal(t, "plumber", first.WorkerRole)
	assert.Equal(t, post.StartDate, first.StartDate)

	second, alreadyAssigned, err := svc.AcceptAndAssign(context.Background(), post, contractorID, workerID, "plumber")
	require.NoError(t, err)
	assert.True(t, alreadyAssigned)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.jobs, 1)
}

func TestUpdateStatus_Authorization(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeEvents{}, discardLogger())
	job, _, err := svc.AcceptAndAssign(context.Background(), testPost(), contractorID, workerID, "plumber")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), job.ID, "", domain.JobInProgress)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// The worker cannot drive contractor transitions.
	_, err = svc.UpdateStatus(context.Background(), job.ID, workerID, domain.JobInProgress)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	store := newFakeStore()
	events := &fakeEvents{}
	svc := NewService(store, events, discardLogger())
	job, _, err := svc.AcceptAndAssign(context.Background(), testPost(), contractorID, workerID, "plumber")
	require.NoError(t, err)

	before := time.Now()
	updated, err := svc.UpdateStatus(context.Background(), job.ID, contractorID, domain.JobInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.JobInProgress, updated.Status)
	// Moving to in_progress stamps the actual start.
	assert.False(t, updated.StartDate.Before(before))

	updated, err = svc.UpdateStatus(context.Background(), job.ID, contractorID, domain.JobCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, updated.Status)
	assert.False(t, updated.EndDate.Before(before))

	// Completed is terminal.
	_, err = svc.UpdateStatus(context.Background(), job.ID, contractorID, domain.JobCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.Len(t, events.events, 2)
	assert.Equal(t, notify.EventJobStatusChanged, events.events[0].Kind)
	assert.Equal(t, "accepted->in_progress", events.events[0].Detail)
}

func TestUpdateStatus_SkippingInProgressRejected(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeEvents{}, discardLogger())
	job, _, err := svc.AcceptAndAssign(context.Background(), testPost(), contractorID, workerID, "plumber")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), job.ID, contractorID, domain.JobCompleted)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestUpdateStatus_CancelCascades(t *testing.T) {
	store := newFakeStore()
	events := &fakeEvents{}
	svc := NewService(store, events, discardLogger())
	post := testPost()
	job, _, err := svc.AcceptAndAssign(context.Background(), post, contractorID, workerID, "plumber")
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), job.ID, contractorID, domain.JobCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCancelled, updated.Status)

	// Cancelling force-cancels the open request for the same pair.
	require.Len(t, store.cancelledWorkers, 1)
	assert.Equal(t, pairKey{postID: post.ID, workerID: workerID}, store.cancelledWorkers[0])

	require.Len(t, events.events, 1)
	assert.Equal(t, notify.EventJobCancelled, events.events[0].Kind)
}

func TestListForUser_SweepsFirst(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeEvents{}, discardLogger())

	// A job whose start date has already passed.
	post := testPost()
	post.StartDate = time.Now().Add(-time.Hour)
	job, _, err := svc.AcceptAndAssign(context.Background(), post, contractorID, workerID, "plumber")
	require.NoError(t, err)

	jobs, err := svc.ListForUser(context.Background(), workerID)
	require.NoError(t, err)
	assert.Equal(t, 1, store.sweeps)
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)
	assert.Equal(t, domain.JobInProgress, jobs[0].Status)
}

func TestCancelForPost(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeEvents{}, discardLogger())
	post := testPost()

	err := svc.CancelForPost(context.Background(), post.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{post.ID}, store.cancelledReqPosts)
	assert.Equal(t, []string{post.ID}, store.cancelledJobPosts)
}
