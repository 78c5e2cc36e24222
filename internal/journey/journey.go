// Package journey reconstructs ranked, deduplicated journeys from a set of
// RAPTOR results.
package journey

import (
	"sort"

	"github.com/antigravity/skane-transit/internal/raptor"
	"github.com/antigravity/skane-transit/internal/search"
	"github.com/antigravity/skane-transit/internal/timetable"
)

// Leg is one walk or ride segment of a journey.
type Leg struct {
	FromStopName     string
	FromPlatformCode string
	ToStopName       string
	ToPlatformCode   string
	DepartureTime    int
	ArrivalTime      int
	RouteName        string // "walking" for walk legs
}

// Journey is a complete origin-to-destination itinerary.
type Journey struct {
	Legs          []Leg
	NTransfers    int
	DepartureTime int
	ArrivalTime   int
	TotalDuration int
}

const walkingRouteName = "walking"

// BuildAll reconstructs every reachable journey across all seed results and
// every walk-reachable ending stop, then deduplicates by departure time.
func BuildAll(idx *timetable.Index, results []*raptor.Result, startingStops, endingStops []search.WalkStop) []Journey {
	startWalk := search.StartingStopMap(startingStops)

	var journeys []Journey
	for _, result := range results {
		for _, end := range endingStops {
			journeys = append(journeys, reconstructForEnd(idx, result, startWalk, end)...)
		}
	}
	return dedupe(journeys)
}

func reconstructForEnd(idx *timetable.Index, result *raptor.Result, startWalk map[string]int, end search.WalkStop) []Journey {
	var out []Journey
	for k, round := range result.Rounds {
		if k == 0 {
			continue
		}
		if _, ok := round[end.StopID]; !ok {
			continue
		}
		j, ok := reconstructOne(idx, result, k, end, startWalk)
		if ok {
			out = append(out, j)
		}
	}
	return out
}

func reconstructOne(idx *timetable.Index, result *raptor.Result, startK int, end search.WalkStop, startWalk map[string]int) (Journey, bool) {
	type step struct {
		fromStop string
		toStop   string
		arrival  int
		departure int
		routeName string
	}

	var steps []step
	runningK := startK
	toStop := end.StopID

	for runningK > 0 {
		label, ok := result.Rounds[runningK][toStop]
		if !ok {
			return Journey{}, false
		}
		fromStop := label.FromStop

		var routeName string
		var depTime int
		if label.Kind == raptor.KindWalked {
			routeName = walkingRouteName
			// The walking relaxation that produced this label read its
			// source stop's arrival from the SAME round (walks never
			// chain or advance k), so the source label lives here too.
			walkSeconds := label.Arrival - result.Rounds[runningK][fromStop].Arrival
			if toStop == end.StopID {
				depTime = label.Arrival - end.WalkSeconds
			} else {
				depTime = label.Arrival - walkSeconds
			}
		} else {
			routeName = idx.RouteNames[idx.TripToRID[label.TripID]]
			depTime = idx.TripStopDeparture[timetable.TripStopKey{TripID: label.TripID, Stop: fromStop}]
		}

		steps = append(steps, step{
			fromStop: fromStop, toStop: toStop,
			arrival: label.Arrival, departure: depTime, routeName: routeName,
		})

		toStop = fromStop
		if label.Kind != raptor.KindWalked {
			runningK--
		}
	}

	if len(steps) == 0 {
		return Journey{}, false
	}

	// steps were built walking backward from the destination; reverse them.
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}

	legs := make([]Leg, 0, len(steps)+2)
	originWalk := startWalk[steps[0].fromStop]
	legs = append(legs, Leg{
		FromStopName:   "origin",
		ToStopName:     stopName(idx, steps[0].fromStop),
		ToPlatformCode: platformCode(idx, steps[0].fromStop),
		DepartureTime:  steps[0].departure - originWalk,
		ArrivalTime:    steps[0].departure,
		RouteName:      walkingRouteName,
	})

	for _, s := range steps {
		legs = append(legs, Leg{
			FromStopName:     stopName(idx, s.fromStop),
			FromPlatformCode: platformCode(idx, s.fromStop),
			ToStopName:       stopName(idx, s.toStop),
			ToPlatformCode:   platformCode(idx, s.toStop),
			DepartureTime:    s.departure,
			ArrivalTime:      s.arrival,
			RouteName:        s.routeName,
		})
	}

	last := legs[len(legs)-1]
	legs = append(legs, Leg{
		FromStopName:     last.ToStopName,
		FromPlatformCode: last.ToPlatformCode,
		ToStopName:       "destination",
		DepartureTime:    last.ArrivalTime,
		ArrivalTime:      last.ArrivalTime + end.WalkSeconds,
		RouteName:        walkingRouteName,
	})

	return Journey{
		Legs:          legs,
		NTransfers:    startK - 1,
		DepartureTime: legs[0].DepartureTime,
		ArrivalTime:   legs[len(legs)-1].ArrivalTime,
		TotalDuration: legs[len(legs)-1].ArrivalTime - legs[0].DepartureTime,
	}, true
}

func stopName(idx *timetable.Index, stopID string) string {
	return idx.Stops[stopID].Name
}

func platformCode(idx *timetable.Index, stopID string) string {
	return idx.Stops[stopID].PlatformCode
}

// dedupe keeps at most one journey per distinct departure time (the one
// with the smallest arrival time), sorted ascending by departure time.
func dedupe(journeys []Journey) []Journey {
	best := make(map[int]Journey)
	for _, j := range journeys {
		existing, ok := best[j.DepartureTime]
		if !ok || j.ArrivalTime < existing.ArrivalTime {
			best[j.DepartureTime] = j
		}
	}
	out := make([]Journey, 0, len(best))
	for _, j := range best {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartureTime < out[j].DepartureTime })
	return out
}
