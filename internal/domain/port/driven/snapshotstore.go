package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/ghrepo/internal/domain/model"
)

// ErrSnapshotNotFound indicates the requested snapshot does not exist.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotStore defines the driven port for repository snapshot persistence.
// Save replaces any existing snapshot of the same repository id.
// Get returns nil, nil when no snapshot exists.
// Delete returns ErrSnapshotNotFound if the snapshot does not exist.
type SnapshotStore interface {
	Save(ctx context.Context, snap model.Snapshot) error
	Get(ctx context.Context, fullName string) (*model.Snapshot, error)
	List(ctx context.Context) ([]model.Snapshot, error)
	Delete(ctx context.Context, fullName string) error
}
