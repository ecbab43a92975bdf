package model

import "time"

// Snapshot is a stored copy of a repository and its language breakdown as of
// FetchedAt.
type Snapshot struct {
	Repository Repository
	Languages  Languages
	FetchedAt  time.Time
}

// FullName returns the snapshot repository's "owner/name".
func (s Snapshot) FullName() string {
	return s.Repository.Basic.FullName
}
