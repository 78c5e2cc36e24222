// Package raptor implements the round-based earliest-arrival label
// computation (RAPTOR) over a timetable.Index, for one seed departure and
// one set of walk-reachable starting stops.
package raptor

import (
	"sort"

	"github.com/antigravity/skane-transit/internal/timetable"
)

// LabelKind distinguishes how a stop was reached in a given round.
type LabelKind int

const (
	// KindSeed marks a round-0 label: the stop was reached directly from
	// the query origin by walking.
	KindSeed LabelKind = iota
	// KindBoarded marks a label reached by riding a trip.
	KindBoarded
	// KindWalked marks a label reached by a footpath relaxation.
	KindWalked
)

// Label is one round's best-known way of reaching a stop.
type Label struct {
	Arrival  int
	Kind     LabelKind
	FromStop string
	// TripID is valid only when Kind == KindBoarded.
	TripID string
}

// Params are the RAPTOR round budget.
type Params struct {
	MaxRounds int
}

// Result is the full per-round label table and the star-label (best arrival
// across all rounds) produced by one RAPTOR run.
type Result struct {
	Best   map[string]int
	Rounds []map[string]Label // Rounds[k][stop_id]
}

// Run executes RAPTOR for one seed departureTime from startingStops (stop_id
// -> walk seconds from the query origin), against idx.
func Run(idx *timetable.Index, startingStops map[string]int, departureTime int, params Params) *Result {
	result := &Result{
		Best:   make(map[string]int),
		Rounds: make([]map[string]Label, params.MaxRounds+1),
	}
	for k := range result.Rounds {
		result.Rounds[k] = make(map[string]Label)
	}

	marked := make(map[string]bool, len(startingStops))
	for stopID, walk := range startingStops {
		arrival := departureTime + walk
		result.Best[stopID] = arrival
		result.Rounds[0][stopID] = Label{Arrival: arrival, Kind: KindSeed}
		marked[stopID] = true
	}

	for k := 1; k <= params.MaxRounds; k++ {
		prevRound := result.Rounds[k-1]
		curRound := result.Rounds[k]

		// Route collection: for each marked stop, note the earliest stop
		// position among its routes.
		q := make(map[timetable.RID]int)
		for p := range marked {
			for rid := range idx.StopToRoutes[p] {
				pos := idx.RouteStopSeq[timetable.RouteStopKey{RID: rid, Stop: p}]
				if cur, ok := q[rid]; !ok || pos < cur {
					q[rid] = pos
				}
			}
		}

		tripMarked := make(map[string]bool)
		for rid, startPos := range q {
			stops := idx.RouteToStops[rid]
			var heldTrip *timetable.TripData
			var boardingStop string

			for pos := startPos; pos <= len(stops); pos++ {
				stopID := stops[pos-1]

				if heldTrip != nil {
					newArrival := heldTrip.ArrivalTimes[pos-1]
					if best, ok := result.Best[stopID]; !ok || newArrival < best {
						result.Best[stopID] = newArrival
						curRound[stopID] = Label{Arrival: newArrival, Kind: KindBoarded, FromStop: boardingStop, TripID: heldTrip.ID}
						tripMarked[stopID] = true
					}
				}

				prevLabel, hasPrev := prevRound[stopID]
				if hasPrev && (heldTrip == nil || prevLabel.Arrival <= heldTrip.DepartureTimes[pos-1]) {
					key := timetable.RoutePosKey{RID: rid, Position: pos}
					deps := idx.RoutePosDepartures[key]
					trips := idx.RoutePosTrips[key]
					i := sort.SearchInts(deps, prevLabel.Arrival)
					if i < len(trips) {
						newTripID := trips[i]
						heldTrip = idx.Trips[newTripID]
						boardingStop = stopID
					} else {
						heldTrip = nil
					}
				}
			}
		}

		footMarked := make(map[string]bool)
		for p := range tripMarked {
			label := curRound[p]
			for pi, walk := range idx.Transits[p] {
				newArrival := label.Arrival + walk
				if best, ok := result.Best[pi]; !ok || newArrival < best {
					result.Best[pi] = newArrival
					curRound[pi] = Label{Arrival: newArrival, Kind: KindWalked, FromStop: p}
					footMarked[pi] = true
				}
			}
		}

		marked = make(map[string]bool, len(tripMarked)+len(footMarked))
		for p := range tripMarked {
			marked[p] = true
		}
		for p := range footMarked {
			marked[p] = true
		}
		if len(marked) == 0 {
			break
		}
	}

	return result
}
