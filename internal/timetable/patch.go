package timetable

import (
	"log"
	"sort"
)

// StopTimeUpdate is one stop-level delay observation decoded from a
// GTFS-realtime TripUpdate, already converted from epoch seconds to
// seconds-of-day by the caller (internal/feedclient).
type StopTimeUpdate struct {
	StopID       string
	StopSequence int // 1-based, matches the position assigned at build time
	NewArrival   int
	NewDeparture int
}

// TripUpdate groups the stop-level updates for one trip.
type TripUpdate struct {
	TripID  string
	Updates []StopTimeUpdate
}

// Patch applies a batch of realtime trip updates to idx in place, mutating
// the four cells the data model calls out: the trip's own arrival/departure
// arrays, the owning route-position departure/trip lists, and the stop's
// departure list. An unknown trip id or an out-of-range stop sequence is
// logged and skipped; it never aborts the batch. After all mutations, any
// (route, position) or stop departure list left out of ascending order is
// re-sorted (trip list reordered identically) to preserve the RAPTOR
// binary-search invariant.
func Patch(idx *Index, updates []TripUpdate) {
	touchedRoutePos := make(map[RoutePosKey]bool)
	touchedStops := make(map[string]bool)

	for _, tu := range updates {
		trip, ok := idx.Trips[tu.TripID]
		if !ok {
			log.Printf("timetable: patch: unknown trip_id %q, skipping", tu.TripID)
			continue
		}
		for _, u := range tu.Updates {
			idx2 := u.StopSequence - 1
			if idx2 < 0 || idx2 >= len(trip.ArrivalTimes) {
				log.Printf("timetable: patch: trip %q stop_sequence %d out of range, skipping", tu.TripID, u.StopSequence)
				continue
			}

			trip.ArrivalTimes[idx2] = u.NewArrival
			trip.DepartureTimes[idx2] = u.NewDeparture

			posKey := RoutePosKey{trip.RID, u.StopSequence}
			if trips := idx.RoutePosTrips[posKey]; trips != nil {
				if i := indexOf(trips, tu.TripID); i >= 0 {
					idx.RoutePosDepartures[posKey][i] = u.NewDeparture
					touchedRoutePos[posKey] = true
				}
			}

			if dl := idx.StopDepartures[u.StopID]; dl != nil {
				if i := indexOf(dl.TripIDs, tu.TripID); i >= 0 {
					dl.DepTimes[i] = u.NewDeparture
					touchedStops[u.StopID] = true
				}
			}

			idx.TripStopDeparture[TripStopKey{tu.TripID, u.StopID}] = u.NewDeparture
		}
	}

	for key := range touchedRoutePos {
		deps := idx.RoutePosDepartures[key]
		trips := idx.RoutePosTrips[key]
		if !sort.IntsAreSorted(deps) {
			resortParallel(deps, trips)
			log.Printf("timetable: patch: re-sorted route_pos_departures for rid=%d pos=%d after out-of-order delay", key.RID, key.Position)
		}
	}
	for stopID := range touchedStops {
		dl := idx.StopDepartures[stopID]
		if !sort.IntsAreSorted(dl.DepTimes) {
			resortParallel(dl.DepTimes, dl.TripIDs)
			log.Printf("timetable: patch: re-sorted stop_departures for stop=%s after out-of-order delay", stopID)
		}
	}
}

func indexOf(ids []string, target string) int {
	for i, id := range ids {
		if id == target {
			return i
		}
	}
	return -1
}

// resortParallel stable-sorts deps ascending, permuting trips identically.
func resortParallel(deps []int, trips []string) {
	order := make([]int, len(deps))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return deps[order[i]] < deps[order[j]]
	})
	newDeps := make([]int, len(deps))
	newTrips := make([]string, len(trips))
	for newPos, oldPos := range order {
		newDeps[newPos] = deps[oldPos]
		newTrips[newPos] = trips[oldPos]
	}
	copy(deps, newDeps)
	copy(trips, newTrips)
}
