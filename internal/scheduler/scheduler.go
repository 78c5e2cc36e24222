// Package scheduler owns the dual-cadence refresh loop: a full static GTFS
// rebuild once a day at local midnight, and realtime trip-update patches
// pulled at a per-hour quota.
package scheduler

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/antigravity/skane-transit/internal/config"
	"github.com/antigravity/skane-transit/internal/feed"
	"github.com/antigravity/skane-transit/internal/feedclient"
	"github.com/antigravity/skane-transit/internal/timetable"
)

// snapshot is the currently-served static index, paired with the service
// date it was built for (needed to rebase realtime epoch timestamps onto
// seconds-of-day).
type snapshot struct {
	idx         *timetable.Index
	serviceDate time.Time
}

// Scheduler holds the live routing snapshot and refreshes it on two
// independent cadences.
type Scheduler struct {
	cfg    *config.Config
	client *feedclient.Client
	loc    *time.Location

	mu  sync.RWMutex
	cur *snapshot

	ready atomic.Bool
}

// New builds a Scheduler. loc is the timezone static service dates and
// realtime timestamps are interpreted in.
func New(cfg *config.Config, client *feedclient.Client, loc *time.Location) *Scheduler {
	return &Scheduler{cfg: cfg, client: client, loc: loc}
}

// WithIndex runs fn with the currently-served index held for the duration of
// the call, under the same exclusion a realtime patch batch or a static swap
// takes. This is the "one search sees one consistent snapshot" guarantee:
// callers must not retain idx past fn's return. Reports false if no static
// refresh has completed yet.
func (s *Scheduler) WithIndex(fn func(idx *timetable.Index)) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return false
	}
	fn(s.cur.idx)
	return true
}

// Ready reports whether the first static refresh has completed.
func (s *Scheduler) Ready() bool {
	return s.ready.Load()
}

// Bootstrap performs the initial static refresh. The service has nothing to
// serve until this succeeds, so callers should treat a failure here as
// fatal rather than starting Run.
func (s *Scheduler) Bootstrap(ctx context.Context) error {
	if err := s.refreshStatic(ctx); err != nil {
		return errors.Wrap(err, "initial static refresh")
	}
	return nil
}

// Run drives both refresh loops until ctx is cancelled. Call Bootstrap
// first; Run does not perform an initial refresh itself.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); s.staticLoop(ctx) }()
	go func() { defer wg.Done(); s.realtimeLoop(ctx) }()
	wg.Wait()
}

// refreshStatic downloads, extracts, loads, and rebuilds the static index in
// one shot, then atomically swaps it in.
func (s *Scheduler) refreshStatic(ctx context.Context) error {
	zipBytes, err := s.client.DownloadStatic(ctx)
	if err != nil {
		return errors.Wrap(err, "download static feed")
	}
	if err := feedclient.ExtractStatic(zipBytes, s.cfg.DataDir); err != nil {
		return errors.Wrap(err, "extract static feed")
	}

	tables, err := feed.LoadDir(s.cfg.DataDir)
	if err != nil {
		return errors.Wrap(err, "load static feed")
	}

	serviceDate := time.Now().In(s.loc)
	idx, err := timetable.Build(tables, serviceDate, timetable.BuildParams{
		WalkSpeedKmh:    s.cfg.WalkSpeedKmh,
		MaxWalkRadiusKm: s.cfg.MaxWalkRadiusKm,
	})
	if err != nil {
		return errors.Wrap(err, "build timetable index")
	}

	s.mu.Lock()
	s.cur = &snapshot{idx: idx, serviceDate: serviceDate}
	s.mu.Unlock()
	s.ready.Store(true)

	log.Printf("scheduler: static refresh complete, %d stops, %d trips", len(idx.Stops), len(idx.Trips))
	return nil
}

// staticLoop rebuilds the static index once every 24h at local midnight. A
// failed refresh is logged and retried at the next midnight; the previously
// loaded index keeps serving in the meantime.
func (s *Scheduler) staticLoop(ctx context.Context) {
	for {
		next := nextMidnight(time.Now().In(s.loc))
		timer := time.NewTimer(time.Until(next))
		select {
		case <-timer.C:
			if err := s.refreshStatic(ctx); err != nil {
				log.Printf("scheduler: static refresh failed, keeping previous index: %v", err)
			}
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// realtimeLoop pulls TripUpdates at the cadence configured per hour of day
// in RequestsTable, re-deriving the day's call schedule at each local
// midnight.
func (s *Scheduler) realtimeLoop(ctx context.Context) {
	for {
		dayStart := time.Now().In(s.loc)
		calls := scheduledCallTimes(s.cfg.RequestsTable, dayStart)

		for _, t := range calls {
			wait := time.Until(t)
			if wait <= 0 {
				continue
			}
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
				s.pullRealtime(ctx)
			case <-ctx.Done():
				timer.Stop()
				return
			}
		}

		// Sleep until the next local midnight before recomputing the day's
		// schedule, in case every call for today has already fired.
		next := nextMidnight(dayStart)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// pullRealtime fetches TripUpdates and patches them into the current index.
// Failures are logged and otherwise ignored: a missed pull just leaves the
// schedule momentarily unpatched.
func (s *Scheduler) pullRealtime(ctx context.Context) {
	s.mu.RLock()
	cur := s.cur
	s.mu.RUnlock()
	if cur == nil {
		return
	}

	msg, err := s.client.FetchTripUpdates(ctx)
	if err != nil {
		log.Printf("scheduler: realtime pull failed: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-read the served snapshot now that we hold the write lock: a static
	// refresh can have swapped s.cur while the fetch above was in flight
	// (plausible right at local midnight, when both cadences fire). Patching
	// against the stale cur read under RLock would silently mutate the
	// discarded index and leave the one now being served unpatched.
	fresh := s.cur
	if fresh == nil {
		return
	}
	if fresh != cur {
		log.Printf("scheduler: static index swapped during realtime fetch, re-basing trip updates onto the new snapshot")
	}

	updates := feedclient.TripUpdatesToPatch(msg, fresh.serviceDate, s.loc)
	if len(updates) == 0 {
		return
	}
	timetable.Patch(fresh.idx, updates)
	log.Printf("scheduler: applied %d trip updates", len(updates))
}

func nextMidnight(from time.Time) time.Time {
	y, m, d := from.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, from.Location())
	return midnight.AddDate(0, 0, 1)
}

// scheduledCallTimes expands an hour->calls-per-hour table into evenly
// spaced absolute timestamps across the day starting at from's local
// midnight, e.g. 4 calls in an hour land at :00, :15, :30, :45.
func scheduledCallTimes(table [24]int, from time.Time) []time.Time {
	y, m, d := from.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, from.Location())

	var out []time.Time
	for hour := 0; hour < 24; hour++ {
		count := table[hour]
		if count <= 0 {
			continue
		}
		step := time.Hour / time.Duration(count)
		base := midnight.Add(time.Duration(hour) * time.Hour)
		for i := 0; i < count; i++ {
			out = append(out, base.Add(time.Duration(i)*step))
		}
	}
	return out
}
