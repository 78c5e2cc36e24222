package httpapi_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/skane-transit/internal/feed"
	"github.com/antigravity/skane-transit/internal/geo"
	"github.com/antigravity/skane-transit/internal/httpapi"
	"github.com/antigravity/skane-transit/internal/scheduler"
	"github.com/antigravity/skane-transit/internal/search"
	"github.com/antigravity/skane-transit/internal/timetable"
)

// TestQueueKeepsAllSameRouteEndingStops builds a single route A -> C1 -> C2
// where C1 (the earlier stop) sits far from the destination point and C2
// (the later stop) sits close to it. One-seed-per-route pruning on the
// destination side, keeping only the closest-walk candidate, would discard
// C1 and leave only the journey through C2 — strictly worse than the one
// through C1 despite its longer walk, because C1 is reached much earlier by
// the same trip. This only surfaces when both candidates share a route.
func TestQueueKeepsAllSameRouteEndingStops(t *testing.T) {
	tables := &feed.Tables{
		Stops: []feed.Stop{
			{ID: "A", Lat: 0, Lon: 0, Name: "A"},
			{ID: "C1", Lat: 0, Lon: 0.0018740, Name: "C1"}, // ~300s walk from (0,0)
			{ID: "C2", Lat: 0, Lon: 0.0000625, Name: "C2"}, // ~10s walk from (0,0)
		},
		Routes: []feed.Route{{ID: "R1"}},
		Trips:  []feed.Trip{{ID: "T1", RouteID: "R1", ServiceID: "WEEKDAY"}},
		CalendarDates: []feed.CalendarDate{
			{ServiceID: "WEEKDAY", Date: 20260801, ExceptionType: 1},
		},
		StopTimes: []feed.StopTime{
			{TripID: "T1", StopID: "A", StopSequence: 1, ArrivalTime: "08:00:00", DepartureTime: "08:00:00"},
			{TripID: "T1", StopID: "C1", StopSequence: 2, ArrivalTime: "08:05:00", DepartureTime: "08:05:00"},
			{TripID: "T1", StopID: "C2", StopSequence: 3, ArrivalTime: "08:20:00", DepartureTime: "08:20:00"},
		},
	}
	serviceDate := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	idx, err := timetable.Build(tables, serviceDate, timetable.BuildParams{WalkSpeedKmh: 5, MaxWalkRadiusKm: 0})
	require.NoError(t, err)

	sched := scheduler.NewWithIndexForTest(idx, serviceDate, time.UTC)
	queue := httpapi.NewQueue(sched, search.Params{WalkSpeedKmh: 5, MaxWalkRadiusKm: 1}, 3, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go queue.Run(ctx)

	dep := 8 * 3600
	journeys, err := queue.Submit(ctx, httpapi.SearchRequest{
		Origin:        geo.Point{Lat: 0, Lon: 0},
		Destination:   geo.Point{Lat: 0, Lon: 0},
		DepartureTime: &dep,
	})
	require.NoError(t, err)
	require.NotEmpty(t, journeys)

	// Arriving via C1 (08:05 + ~300s walk) beats arriving via C2 (08:20 +
	// ~10s walk) by a wide margin. If the destination side were pruned down
	// to the closest-walk stop only, the surviving journey would arrive
	// close to 08:20:10 instead.
	assert.Less(t, journeys[0].ArrivalTime, 8*3600+15*60)
}
