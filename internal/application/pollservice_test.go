package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/ghrepo/internal/application"
	"github.com/ericfisherdev/ghrepo/internal/domain/model"
)

// startPoller runs svc in the background and returns a stop function that
// cancels it and waits for Start to return.
func startPoller(t *testing.T, svc *application.PollService) (context.Context, func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()

	stop := func() {
		cancel()
		<-done
	}
	t.Cleanup(stop)

	return ctx, stop
}

func TestPollService_InitialPollSavesTracked(t *testing.T) {
	client := &mockRepoClient{repo: testRepository("octocat", "Hello-World")}
	store := &mockSnapshotStore{}
	repos := application.NewRepositoryService(client, store)
	svc := application.NewPollService(repos, []model.RepoRef{octocat}, time.Hour)

	ctx, stop := startPoller(t, svc)

	// RefreshRepo is served by the loop after the initial poll finishes.
	_, err := svc.RefreshRepo(ctx, octocat)
	require.NoError(t, err)
	stop()

	assert.Equal(t, 2, store.count())
}

func TestPollService_SchedulesByActivity(t *testing.T) {
	repo := testRepository("octocat", "Hello-World")
	repo.Detail = &model.Detail{Pushed: time.Now().Add(-10 * time.Minute)}
	client := &mockRepoClient{repo: repo}
	repos := application.NewRepositoryService(client, &mockSnapshotStore{})
	svc := application.NewPollService(repos, []model.RepoRef{octocat}, time.Hour)

	ctx, _ := startPoller(t, svc)
	_, err := svc.RefreshRepo(ctx, octocat)
	require.NoError(t, err)

	schedules := svc.Schedules()
	require.Len(t, schedules, 1)
	assert.Equal(t, "octocat/Hello-World", schedules[0].Repo)
	assert.Equal(t, application.TierHot, schedules[0].Tier)
	assert.False(t, schedules[0].LastPolled.IsZero())
	assert.WithinDuration(t, time.Now().Add(2*time.Minute), schedules[0].NextPollAt, 5*time.Second)
}

func TestPollService_RefreshRepoError(t *testing.T) {
	boom := errors.New("boom")
	client := &mockRepoClient{
		repo: testRepository("octocat", "Hello-World"),
		errs: map[string]error{"repository": boom},
	}
	store := &mockSnapshotStore{}
	repos := application.NewRepositoryService(client, store)
	svc := application.NewPollService(repos, []model.RepoRef{octocat}, time.Hour)

	ctx, _ := startPoller(t, svc)

	snap, err := svc.RefreshRepo(ctx, octocat)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, snap)
	assert.Zero(t, store.count())

	schedules := svc.Schedules()
	require.Len(t, schedules, 1)
	assert.Equal(t, application.TierStale, schedules[0].Tier)
	assert.True(t, schedules[0].LastPolled.IsZero())
}

func TestPollService_RefreshUntracked(t *testing.T) {
	client := &mockRepoClient{repo: testRepository("alice", "dotfiles")}
	store := &mockSnapshotStore{}
	repos := application.NewRepositoryService(client, store)
	svc := application.NewPollService(repos, nil, time.Hour)

	ctx, _ := startPoller(t, svc)

	snap, err := svc.RefreshRepo(ctx, model.RepoRef{Owner: "alice", Name: "dotfiles"})
	require.NoError(t, err)
	assert.Equal(t, "alice/dotfiles", snap.FullName())
	assert.Equal(t, 1, store.count())
	assert.Empty(t, svc.Schedules(), "untracked repositories are never scheduled")
}

func TestPollService_RefreshSharesScheduleAcrossCase(t *testing.T) {
	repo := testRepository("octocat", "Hello-World")
	repo.Detail = &model.Detail{Pushed: time.Now().Add(-10 * time.Minute)}
	client := &mockRepoClient{repo: repo}
	repos := application.NewRepositoryService(client, &mockSnapshotStore{})
	svc := application.NewPollService(repos, []model.RepoRef{octocat}, time.Hour)

	ctx, _ := startPoller(t, svc)

	snap, err := svc.RefreshRepo(ctx, model.RepoRef{Owner: "OCTOCAT", Name: "hello-world"})
	require.NoError(t, err)
	assert.Equal(t, "octocat/Hello-World", snap.FullName())

	schedules := svc.Schedules()
	require.Len(t, schedules, 1)
	assert.Equal(t, "octocat/Hello-World", schedules[0].Repo)
	assert.Equal(t, application.TierHot, schedules[0].Tier)
}

func TestPollService_RefreshAll(t *testing.T) {
	client := &mockRepoClient{repo: testRepository("octocat", "Hello-World")}
	store := &mockSnapshotStore{}
	repos := application.NewRepositoryService(client, store)
	tracked := []model.RepoRef{octocat, {Owner: "octocat", Name: "linguist"}}
	svc := application.NewPollService(repos, tracked, time.Hour)

	ctx, _ := startPoller(t, svc)

	require.NoError(t, svc.RefreshAll(ctx))
	// Initial poll plus the manual cycle, two repositories each.
	assert.Equal(t, 4, store.count())
	assert.Len(t, svc.Schedules(), 2)
}

func TestPollService_RefreshCanceled(t *testing.T) {
	repos := application.NewRepositoryService(&mockRepoClient{}, &mockSnapshotStore{})
	svc := application.NewPollService(repos, nil, time.Hour)

	// Nothing is running Start, so the request can never be accepted.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RefreshRepo(ctx, octocat)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollService_TickPollsDueRepos(t *testing.T) {
	client := &mockRepoClient{repo: testRepository("octocat", "Hello-World")}
	store := &mockSnapshotStore{}
	repos := application.NewRepositoryService(client, store)
	svc := application.NewPollService(repos, []model.RepoRef{octocat}, 20*time.Millisecond)

	ctx, stop := startPoller(t, svc)
	_, err := svc.RefreshRepo(ctx, octocat)
	require.NoError(t, err)
	before := store.count()

	// The repository is stale, so it is not due again for 30 minutes.
	time.Sleep(100 * time.Millisecond)
	stop()

	assert.Equal(t, before, store.count())
}
