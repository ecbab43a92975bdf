package application

import (
	"time"

	"github.com/ericfisherdev/ghrepo/internal/domain/model"
)

// ActivityTier classifies a repository by how recently it was pushed to or
// updated. Busier repositories are refreshed more often.
type ActivityTier int

const (
	TierHot ActivityTier = iota
	TierActive
	TierWarm
	TierStale
)

// activityBands lists the tiers from busiest to quietest. A repository falls
// into the first band whose window contains its last activity.
var activityBands = []struct {
	tier     ActivityTier
	name     string
	within   time.Duration
	interval time.Duration
}{
	{TierHot, "hot", time.Hour, 2 * time.Minute},
	{TierActive, "active", 24 * time.Hour, 5 * time.Minute},
	{TierWarm, "warm", 7 * 24 * time.Hour, 15 * time.Minute},
	{TierStale, "stale", 0, 30 * time.Minute},
}

// defaultInterval is used for a tier outside activityBands.
const defaultInterval = 5 * time.Minute

func (t ActivityTier) String() string {
	for _, b := range activityBands {
		if b.tier == t {
			return b.name
		}
	}
	return "unknown"
}

// MarshalText lets the tier appear by name in JSON.
func (t ActivityTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// tierInterval returns how long a repository in tier waits between refreshes.
func tierInterval(tier ActivityTier) time.Duration {
	for _, b := range activityBands {
		if b.tier == tier {
			return b.interval
		}
	}
	return defaultInterval
}

// classifyActivity places last into a tier relative to now. A zero time,
// meaning no activity is known, is stale.
func classifyActivity(last, now time.Time) ActivityTier {
	if last.IsZero() {
		return TierStale
	}

	elapsed := now.Sub(last)
	for _, b := range activityBands {
		if b.within > 0 && elapsed < b.within {
			return b.tier
		}
	}
	return TierStale
}

// repoSchedule is the refresh state of one tracked repository.
type repoSchedule struct {
	tier       ActivityTier
	nextPollAt time.Time
	lastPolled time.Time
}

// ScheduleInfo is the exported view of a repoSchedule.
type ScheduleInfo struct {
	Repo       string       `json:"repo"`
	Tier       ActivityTier `json:"tier"`
	NextPollAt time.Time    `json:"next_poll_at"`
	LastPolled time.Time    `json:"last_polled,omitzero"`
}

// lastActivity returns the later of the repository's pushed and updated
// times, or zero when it was decoded without Detail.
func lastActivity(repo model.Repository) time.Time {
	if repo.Detail == nil {
		return time.Time{}
	}
	if repo.Detail.Updated.After(repo.Detail.Pushed) {
		return repo.Detail.Updated
	}
	return repo.Detail.Pushed
}
