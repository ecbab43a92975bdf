// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/ghrepo/internal/domain/model"
	"github.com/ericfisherdev/ghrepo/internal/domain/port/driven"
)

// ErrUnknownResource is returned by Resource for a name not in Resources.
var ErrUnknownResource = errors.New("unknown resource")

// Resources lists the sub-resource names Resource accepts.
var Resources = []string{
	"collaborators",
	"branches",
	"commits",
	"languages",
	"issues",
	"comments",
	"labels",
	"milestones",
}

// Overview is a repository together with the sub-resources shown on its
// summary page.
type Overview struct {
	Repository *model.Repository `json:"repository"`
	Languages  model.Languages   `json:"languages"`
	Branches   []model.Branch    `json:"branches"`
	Labels     []model.Label     `json:"labels"`
	Milestones []model.Milestone `json:"milestones"`
}

// RepositoryService reads repositories from GitHub and keeps snapshots of them.
type RepositoryService struct {
	client driven.RepoClient
	store  driven.SnapshotStore
}

// NewRepositoryService creates a new RepositoryService with the required dependencies.
func NewRepositoryService(client driven.RepoClient, store driven.SnapshotStore) *RepositoryService {
	return &RepositoryService{
		client: client,
		store:  store,
	}
}

// Repository fetches the full repository.
func (s *RepositoryService) Repository(ctx context.Context, ref model.RepoRef) (*model.Repository, error) {
	return s.client.GetRepository(ctx, ref)
}

// Overview fetches the repository and its languages, branches, labels and
// milestones concurrently. The first failure cancels the remaining requests
// and is returned.
func (s *RepositoryService) Overview(ctx context.Context, ref model.RepoRef) (*Overview, error) {
	var ov Overview

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ov.Repository, err = s.client.GetRepository(gctx, ref)
		return err
	})
	g.Go(func() (err error) {
		ov.Languages, err = s.client.Languages(gctx, ref)
		return err
	})
	g.Go(func() (err error) {
		ov.Branches, err = s.client.Branches(gctx, ref)
		return err
	})
	g.Go(func() (err error) {
		ov.Labels, err = s.client.Labels(gctx, ref)
		return err
	})
	g.Go(func() (err error) {
		ov.Milestones, err = s.client.Milestones(gctx, ref)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("overview %s: %w", ref, err)
	}

	return &ov, nil
}

// Resource fetches one named sub-resource. name must be one of Resources.
func (s *RepositoryService) Resource(ctx context.Context, ref model.RepoRef, name string) (any, error) {
	switch name {
	case "collaborators":
		return s.client.Collaborators(ctx, ref)
	case "branches":
		return s.client.Branches(ctx, ref)
	case "commits":
		return s.client.Commits(ctx, ref)
	case "languages":
		return s.client.Languages(ctx, ref)
	case "issues":
		return s.client.Issues(ctx, ref)
	case "comments":
		return s.client.Comments(ctx, ref)
	case "labels":
		return s.client.Labels(ctx, ref)
	case "milestones":
		return s.client.Milestones(ctx, ref)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}
}

// CollaboratorsAtLeast fetches the collaborators and keeps those whose highest
// permission grants at least want. Collaborators listed without a permission set
// are dropped.
func (s *RepositoryService) CollaboratorsAtLeast(ctx context.Context, ref model.RepoRef, want model.Permission) ([]model.User, error) {
	users, err := s.client.Collaborators(ctx, ref)
	if err != nil {
		return nil, err
	}

	kept := make([]model.User, 0, len(users))
	for _, u := range users {
		if p, ok := u.Permission(); ok && p.AtLeast(want) {
			kept = append(kept, u)
		}
	}
	return kept, nil
}

// CommentsOn fetches the comments of a single issue.
func (s *RepositoryService) CommentsOn(ctx context.Context, ref model.RepoRef, issueNumber int) ([]model.IssueComment, error) {
	return s.client.CommentsOn(ctx, ref, issueNumber)
}

// Refresh fetches the repository and its languages and saves them as the
// repository's current snapshot.
func (s *RepositoryService) Refresh(ctx context.Context, ref model.RepoRef) (*model.Snapshot, error) {
	var (
		repo  *model.Repository
		langs model.Languages
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		repo, err = s.client.GetRepository(gctx, ref)
		return err
	})
	g.Go(func() (err error) {
		langs, err = s.client.Languages(gctx, ref)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("refresh %s: %w", ref, err)
	}

	snap := model.Snapshot{
		Repository: *repo,
		Languages:  langs,
		FetchedAt:  time.Now().UTC(),
	}
	if err := s.store.Save(ctx, snap); err != nil {
		return nil, err
	}

	slog.Debug("snapshot saved",
		"repo", snap.FullName(),
		"languages", len(langs),
	)

	return &snap, nil
}

// Snapshots returns every stored snapshot.
func (s *RepositoryService) Snapshots(ctx context.Context) ([]model.Snapshot, error) {
	return s.store.List(ctx)
}

// Snapshot returns the stored snapshot for fullName, or nil if there is none.
func (s *RepositoryService) Snapshot(ctx context.Context, fullName string) (*model.Snapshot, error) {
	return s.store.Get(ctx, fullName)
}

// DeleteSnapshot removes the stored snapshot for fullName. It returns
// driven.ErrSnapshotNotFound when there is none.
func (s *RepositoryService) DeleteSnapshot(ctx context.Context, fullName string) error {
	return s.store.Delete(ctx, fullName)
}
