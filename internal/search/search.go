// Package search builds the inputs RAPTOR needs from a raw origin,
// destination, and optional departure time: walk-reachable endpoints,
// one-seed-per-route pruning, and the coalesced seed departure set.
package search

import (
	"sort"

	"github.com/antigravity/skane-transit/internal/geo"
	"github.com/antigravity/skane-transit/internal/timetable"
)

// Params are the search-front tunables; WalkSpeedKmh/MaxWalkRadiusKm must
// match the values the timetable was built with so walk-time estimates are
// consistent with the foot-transit graph.
type Params struct {
	WalkSpeedKmh       float64
	MaxWalkRadiusKm    float64
	SeedHorizonSeconds int // default 3600
	CoalesceSeconds    int // default 600
}

// WalkStop is a stop reachable on foot from a query endpoint, with the
// estimated walk duration.
type WalkStop struct {
	StopID      string
	WalkSeconds int
}

// WalkReachableStops returns every stop within MaxWalkRadiusKm of origin,
// sorted ascending by estimated walk time (the same x2-penalized formula the
// timetable builder uses for foot transits).
func WalkReachableStops(idx *timetable.Index, origin geo.Point, params Params) []WalkStop {
	stopIDs := make([]string, 0, len(idx.Stops))
	points := make([]geo.Point, 0, len(idx.Stops))
	for id, s := range idx.Stops {
		stopIDs = append(stopIDs, id)
		points = append(points, geo.Point{Lat: s.Lat, Lon: s.Lon})
	}
	distances := geo.Haversine(origin, points)

	out := make([]WalkStop, 0, len(stopIDs))
	for i, dist := range distances {
		if dist >= params.MaxWalkRadiusKm {
			continue
		}
		walkSeconds := int(dist / params.WalkSpeedKmh * 3600 * 2)
		out = append(out, WalkStop{StopID: stopIDs[i], WalkSeconds: walkSeconds})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WalkSeconds < out[j].WalkSeconds })
	return out
}

// PruneOneSeedPerRoute keeps, for every route served by at least one
// candidate stop, only the candidate with the smallest walk time. A stop
// served by no route (isolated from the transit network) is dropped
// entirely. Input must already be sorted ascending by WalkSeconds.
func PruneOneSeedPerRoute(idx *timetable.Index, stops []WalkStop) []WalkStop {
	bestForRoute := make(map[timetable.RID]string)
	for _, ws := range stops {
		for rid := range idx.StopToRoutes[ws.StopID] {
			if _, ok := bestForRoute[rid]; !ok {
				bestForRoute[rid] = ws.StopID
			}
		}
	}
	keep := make(map[string]bool)
	for _, stopID := range bestForRoute {
		keep[stopID] = true
	}

	out := make([]WalkStop, 0, len(keep))
	for _, ws := range stops {
		if keep[ws.StopID] {
			out = append(out, ws)
		}
	}
	return out
}

// SeedDepartureTimes computes the coalesced set of effective start times
// (seed departures) RAPTOR should run for, given the pruned starting stops
// and a requested departure_time (seconds-of-day).
func SeedDepartureTimes(idx *timetable.Index, startingStops []WalkStop, departureTime int, params Params) []int {
	horizon := params.SeedHorizonSeconds
	if horizon == 0 {
		horizon = 3600
	}
	coalesce := params.CoalesceSeconds
	if coalesce == 0 {
		coalesce = 600
	}

	effectiveStart := make(map[string]int) // trip_id -> start time
	tripOrder := make([]string, 0)
	for _, ws := range startingStops {
		dl := idx.StopDepartures[ws.StopID]
		if dl == nil {
			continue
		}
		threshold := departureTime + ws.WalkSeconds
		offset := sort.SearchInts(dl.DepTimes, threshold)
		for i := offset; i < len(dl.DepTimes); i++ {
			dep := dl.DepTimes[i]
			if dep > threshold+horizon {
				break
			}
			tripID := dl.TripIDs[i]
			if _, seen := effectiveStart[tripID]; seen {
				continue
			}
			effectiveStart[tripID] = dep - ws.WalkSeconds
			tripOrder = append(tripOrder, tripID)
		}
	}

	if len(effectiveStart) == 0 {
		return nil
	}

	all := make([]int, 0, len(effectiveStart))
	for _, tripID := range tripOrder {
		all = append(all, effectiveStart[tripID])
	}
	sort.Ints(all)

	seeds := []int{all[0]}
	for _, t := range all {
		if t-seeds[len(seeds)-1] > coalesce {
			seeds = append(seeds, t)
		}
	}
	return seeds
}

// StartingStopMap converts a pruned WalkStop slice into the map RAPTOR
// expects (stop_id -> walk seconds).
func StartingStopMap(stops []WalkStop) map[string]int {
	m := make(map[string]int, len(stops))
	for _, ws := range stops {
		m[ws.StopID] = ws.WalkSeconds
	}
	return m
}
