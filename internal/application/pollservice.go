package application

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/ghrepo/internal/domain/model"
)

// refreshRequest represents a manual refresh trigger. A zero ref refreshes
// every tracked repository.
type refreshRequest struct {
	ref  model.RepoRef
	done chan refreshResult
}

type refreshResult struct {
	snap *model.Snapshot
	err  error
}

// PollService keeps a snapshot of every tracked repository current. Each
// repository is refreshed on its own schedule, derived from how recently it
// saw a push; interval is only the cadence at which schedules are checked.
//
// Schedules exist only for tracked repositories and are keyed by
// scheduleKey, so a ref differing only in case shares its schedule.
type PollService struct {
	repos     *RepositoryService
	tracked   []model.RepoRef
	trackedBy map[string]model.RepoRef
	interval  time.Duration
	refreshCh chan refreshRequest

	mu        sync.RWMutex
	schedules map[string]*repoSchedule
}

// NewPollService creates a new PollService with all required dependencies.
func NewPollService(repos *RepositoryService, tracked []model.RepoRef, interval time.Duration) *PollService {
	trackedBy := make(map[string]model.RepoRef, len(tracked))
	for _, ref := range tracked {
		trackedBy[scheduleKey(ref)] = ref
	}

	return &PollService{
		repos:     repos,
		tracked:   tracked,
		trackedBy: trackedBy,
		interval:  interval,
		refreshCh: make(chan refreshRequest),
		schedules: make(map[string]*repoSchedule, len(tracked)),
	}
}

// scheduleKey identifies a repository regardless of how its name is cased.
func scheduleKey(ref model.RepoRef) string {
	return strings.ToLower(ref.String())
}

// Start begins the polling loop. It refreshes every tracked repository
// immediately, then checks for due repositories on the configured interval.
// It also listens for manual refresh requests. Start blocks until the context
// is canceled.
func (s *PollService) Start(ctx context.Context) {
	s.pollAll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("poll service stopped")
			return
		case <-ticker.C:
			s.pollDue(ctx)
		case req := <-s.refreshCh:
			req.done <- s.handleRefresh(ctx, req)
		}
	}
}

// RefreshRepo triggers a manual refresh for a specific repository, bypassing
// its schedule, and returns the snapshot it stored. The repository does not
// need to be tracked; an untracked one is refreshed but never scheduled. It
// blocks until the refresh completes or the context is canceled.
func (s *PollService) RefreshRepo(ctx context.Context, ref model.RepoRef) (*model.Snapshot, error) {
	res := s.request(ctx, ref)
	return res.snap, res.err
}

// RefreshAll triggers a refresh of every tracked repository and blocks until
// the cycle completes or the context is canceled.
func (s *PollService) RefreshAll(ctx context.Context) error {
	return s.request(ctx, model.RepoRef{}).err
}

func (s *PollService) request(ctx context.Context, ref model.RepoRef) refreshResult {
	done := make(chan refreshResult, 1)
	req := refreshRequest{
		ref:  ref,
		done: done,
	}

	select {
	case s.refreshCh <- req:
	case <-ctx.Done():
		return refreshResult{err: ctx.Err()}
	}

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return refreshResult{err: ctx.Err()}
	}
}

// Schedules returns the refresh schedule of every repository polled so far,
// ordered by repository.
func (s *PollService) Schedules() []ScheduleInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]ScheduleInfo, 0, len(s.schedules))
	for key, sched := range s.schedules {
		infos = append(infos, ScheduleInfo{
			Repo:       s.trackedBy[key].String(),
			Tier:       sched.tier,
			NextPollAt: sched.nextPollAt,
			LastPolled: sched.lastPolled,
		})
	}
	slices.SortFunc(infos, func(a, b ScheduleInfo) int {
		return strings.Compare(a.Repo, b.Repo)
	})

	return infos
}

// pollAll refreshes every tracked repository regardless of schedule.
func (s *PollService) pollAll(ctx context.Context) {
	s.poll(ctx, s.tracked)
}

// pollDue refreshes the tracked repositories whose next poll time has passed.
func (s *PollService) pollDue(ctx context.Context) {
	now := time.Now()

	s.mu.RLock()
	var due []model.RepoRef
	for _, ref := range s.tracked {
		sched, ok := s.schedules[scheduleKey(ref)]
		if !ok || !now.Before(sched.nextPollAt) {
			due = append(due, ref)
		}
	}
	s.mu.RUnlock()

	if len(due) == 0 {
		return
	}
	s.poll(ctx, due)
}

func (s *PollService) poll(ctx context.Context, refs []model.RepoRef) {
	start := time.Now()

	var pollErrors int
	for _, ref := range refs {
		if ctx.Err() != nil {
			return
		}

		if _, err := s.pollRepo(ctx, ref); err != nil {
			slog.Error("repo poll failed", "repo", ref.String(), "error", err)
			pollErrors++
		}
	}

	slog.Info("poll cycle complete",
		"repos", len(refs),
		"errors", pollErrors,
		"duration", time.Since(start).Round(time.Millisecond),
	)
}

// pollRepo refreshes one repository's snapshot and, when it is tracked,
// reschedules it. A failed refresh keeps the previous tier so a broken
// repository is not retried on every tick.
func (s *PollService) pollRepo(ctx context.Context, ref model.RepoRef) (*model.Snapshot, error) {
	snap, err := s.repos.Refresh(ctx, ref)

	key := scheduleKey(ref)
	if _, ok := s.trackedBy[key]; !ok {
		return snap, err
	}

	now := time.Now()

	s.mu.Lock()
	sched, ok := s.schedules[key]
	if !ok {
		sched = &repoSchedule{tier: TierStale}
		s.schedules[key] = sched
	}
	if err == nil {
		sched.tier = classifyActivity(lastActivity(snap.Repository), now)
		sched.lastPolled = now
	}
	sched.nextPollAt = now.Add(tierInterval(sched.tier))
	tier := sched.tier
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}

	slog.Info("repo polled",
		"repo", ref.String(),
		"tier", tier.String(),
		"next_poll_in", tierInterval(tier),
	)

	return snap, nil
}

// handleRefresh dispatches a manual refresh request.
func (s *PollService) handleRefresh(ctx context.Context, req refreshRequest) refreshResult {
	if !req.ref.IsZero() {
		snap, err := s.pollRepo(ctx, req.ref)
		return refreshResult{snap: snap, err: err}
	}
	s.pollAll(ctx)
	return refreshResult{}
}
