package driven

import (
	"context"

	"github.com/ericfisherdev/ghrepo/internal/domain/model"
)

// RepoClient defines the driven port for reading a repository and its
// sub-resources from GitHub. Every method issues exactly one GET and one
// decode; failures are a *TransportError or a *model.DecodeError.
type RepoClient interface {
	GetRepository(ctx context.Context, ref model.RepoRef) (*model.Repository, error)

	Collaborators(ctx context.Context, ref model.RepoRef) ([]model.User, error)
	Branches(ctx context.Context, ref model.RepoRef) ([]model.Branch, error)
	Commits(ctx context.Context, ref model.RepoRef) ([]model.Commit, error)
	Languages(ctx context.Context, ref model.RepoRef) (model.Languages, error)
	Issues(ctx context.Context, ref model.RepoRef) ([]model.Issue, error)
	// Comments lists issue comments across the whole repository.
	Comments(ctx context.Context, ref model.RepoRef) ([]model.IssueComment, error)
	// CommentsOn lists the comments of a single issue or pull request.
	CommentsOn(ctx context.Context, ref model.RepoRef, issueNumber int) ([]model.IssueComment, error)
	Labels(ctx context.Context, ref model.RepoRef) ([]model.Label, error)
	Milestones(ctx context.Context, ref model.RepoRef) ([]model.Milestone, error)
}
