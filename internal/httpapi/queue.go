package httpapi

import (
	"context"
	"time"

	"github.com/antigravity/skane-transit/internal/geo"
	"github.com/antigravity/skane-transit/internal/journey"
	"github.com/antigravity/skane-transit/internal/raptor"
	"github.com/antigravity/skane-transit/internal/scheduler"
	"github.com/antigravity/skane-transit/internal/search"
	"github.com/antigravity/skane-transit/internal/timetable"
)

// SearchRequest is one point-to-point routing query.
type SearchRequest struct {
	Origin        geo.Point
	Destination   geo.Point
	DepartureTime *int // seconds-of-day; nil means "now"
}

type searchJob struct {
	req    SearchRequest
	result chan searchResult
}

type searchResult struct {
	journeys []journey.Journey
}

// Queue serializes search requests onto a single worker goroutine so RAPTOR
// runs never contend with each other or with a concurrent index mutation.
type Queue struct {
	sched  *scheduler.Scheduler
	params search.Params
	rounds int
	jobs   chan searchJob
}

// NewQueue builds a Queue with the given buffer depth for pending requests.
func NewQueue(sched *scheduler.Scheduler, params search.Params, maxRaptorRounds, bufferSize int) *Queue {
	return &Queue{
		sched:  sched,
		params: params,
		rounds: maxRaptorRounds,
		jobs:   make(chan searchJob, bufferSize),
	}
}

// Run drains the job channel on the calling goroutine until ctx is
// cancelled. Intended to be started as `go queue.Run(ctx)`.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case job := <-q.jobs:
			job.result <- searchResult{journeys: q.execute(job.req)}
		case <-ctx.Done():
			return
		}
	}
}

// Submit enqueues a request and blocks until the worker has processed it or
// ctx is cancelled.
func (q *Queue) Submit(ctx context.Context, req SearchRequest) ([]journey.Journey, error) {
	job := searchJob{req: req, result: make(chan searchResult, 1)}
	select {
	case q.jobs <- job:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-job.result:
		return res.journeys, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// execute runs one search under the scheduler's exclusion, so a realtime
// patch batch or a static rebuild swap cannot interleave with RAPTOR reads
// partway through this search.
func (q *Queue) execute(req SearchRequest) []journey.Journey {
	var out []journey.Journey
	ok := q.sched.WithIndex(func(idx *timetable.Index) {
		out = q.search(idx, req)
	})
	if !ok {
		return nil
	}
	return out
}

func (q *Queue) search(idx *timetable.Index, req SearchRequest) []journey.Journey {
	startingStops := search.PruneOneSeedPerRoute(idx, search.WalkReachableStops(idx, req.Origin, q.params))
	endingStops := search.WalkReachableStops(idx, req.Destination, q.params)
	if len(startingStops) == 0 || len(endingStops) == 0 {
		return nil
	}

	departureTime := nowSecondsOfDay()
	if req.DepartureTime != nil {
		departureTime = *req.DepartureTime
	}

	seeds := search.SeedDepartureTimes(idx, startingStops, departureTime, q.params)
	if len(seeds) == 0 {
		return nil
	}

	startMap := search.StartingStopMap(startingStops)
	results := make([]*raptor.Result, 0, len(seeds))
	for _, seed := range seeds {
		results = append(results, raptor.Run(idx, startMap, seed, raptor.Params{MaxRounds: q.rounds}))
	}

	return journey.BuildAll(idx, results, startingStops, endingStops)
}

// nowSecondsOfDay returns the current local time as seconds-of-day, used
// when a search request omits an explicit departure_time.
func nowSecondsOfDay() int {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return int(now.Sub(midnight).Seconds())
}
