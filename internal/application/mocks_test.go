package application_test

import (
	"context"
	"sync"

	"github.com/ericfisherdev/ghrepo/internal/domain/model"
	"github.com/ericfisherdev/ghrepo/internal/domain/port/driven"
)

// --- Mock implementations ---

// mockRepoClient serves canned data and records every call. Calls arrive
// concurrently from errgroup, so the record is mutex-protected.
type mockRepoClient struct {
	mu    sync.Mutex
	calls []string

	repo       *model.Repository
	users      []model.User
	languages  model.Languages
	branches   []model.Branch
	labels     []model.Label
	milestones []model.Milestone
	issues     []model.Issue
	comments   []model.IssueComment

	// errs maps a method name to the error it should return.
	errs map[string]error
	// block makes the named method wait for ctx cancellation.
	block string
}

func (m *mockRepoClient) record(ctx context.Context, name string) error {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()

	if m.block == name {
		<-ctx.Done()
		return ctx.Err()
	}
	return m.errs[name]
}

func (m *mockRepoClient) called() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockRepoClient) GetRepository(ctx context.Context, _ model.RepoRef) (*model.Repository, error) {
	if err := m.record(ctx, "repository"); err != nil {
		return nil, err
	}
	return m.repo, nil
}

func (m *mockRepoClient) Collaborators(ctx context.Context, _ model.RepoRef) ([]model.User, error) {
	if err := m.record(ctx, "collaborators"); err != nil {
		return nil, err
	}
	return m.users, nil
}

func (m *mockRepoClient) Branches(ctx context.Context, _ model.RepoRef) ([]model.Branch, error) {
	if err := m.record(ctx, "branches"); err != nil {
		return nil, err
	}
	return m.branches, nil
}

func (m *mockRepoClient) Commits(ctx context.Context, _ model.RepoRef) ([]model.Commit, error) {
	return nil, m.record(ctx, "commits")
}

func (m *mockRepoClient) Languages(ctx context.Context, _ model.RepoRef) (model.Languages, error) {
	if err := m.record(ctx, "languages"); err != nil {
		return nil, err
	}
	return m.languages, nil
}

func (m *mockRepoClient) Issues(ctx context.Context, _ model.RepoRef) ([]model.Issue, error) {
	if err := m.record(ctx, "issues"); err != nil {
		return nil, err
	}
	return m.issues, nil
}

func (m *mockRepoClient) Comments(ctx context.Context, _ model.RepoRef) ([]model.IssueComment, error) {
	if err := m.record(ctx, "comments"); err != nil {
		return nil, err
	}
	return m.comments, nil
}

func (m *mockRepoClient) CommentsOn(ctx context.Context, _ model.RepoRef, _ int) ([]model.IssueComment, error) {
	if err := m.record(ctx, "comments_on"); err != nil {
		return nil, err
	}
	return m.comments, nil
}

func (m *mockRepoClient) Labels(ctx context.Context, _ model.RepoRef) ([]model.Label, error) {
	if err := m.record(ctx, "labels"); err != nil {
		return nil, err
	}
	return m.labels, nil
}

func (m *mockRepoClient) Milestones(ctx context.Context, _ model.RepoRef) ([]model.Milestone, error) {
	if err := m.record(ctx, "milestones"); err != nil {
		return nil, err
	}
	return m.milestones, nil
}

type mockSnapshotStore struct {
	mu    sync.Mutex
	saved []model.Snapshot
	err   error
}

func (m *mockSnapshotStore) Save(_ context.Context, snap model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, snap)
	return nil
}

func (m *mockSnapshotStore) Get(_ context.Context, fullName string) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].FullName() == fullName {
			snap := m.saved[i]
			return &snap, nil
		}
	}
	return nil, nil
}

func (m *mockSnapshotStore) List(_ context.Context) ([]model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Snapshot(nil), m.saved...), nil
}

func (m *mockSnapshotStore) Delete(_ context.Context, _ string) error {
	return driven.ErrSnapshotNotFound
}

func (m *mockSnapshotStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func testRepository(owner, name string) *model.Repository {
	return &model.Repository{
		Basic: model.Basic{
			ID:       1296269,
			Name:     name,
			FullName: owner + "/" + name,
			Owner:    model.Owner{ID: 1, Login: owner},
		},
	}
}
