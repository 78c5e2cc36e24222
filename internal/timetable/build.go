package timetable

import (
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/antigravity/skane-transit/internal/feed"
	"github.com/antigravity/skane-transit/internal/geo"
)

type serviceDateKey struct {
	serviceID string
	date      int
}

type survivor struct {
	tripID   string
	stopID   string
	arrival  int
	depart   int
	rawOrder int
}

// Build derives a fresh Index from tables as of serviceDate (any time on the
// day being served; only its calendar date is used). It implements, in order: the
// active-trips filter, route derivation (dense RID assignment over canonical
// stop sequences), route naming, mapping materialization, and foot-transit
// discovery.
func Build(tables *feed.Tables, serviceDate time.Time, params BuildParams) (*Index, error) {
	tripByID := make(map[string]feed.Trip, len(tables.Trips))
	for _, t := range tables.Trips {
		tripByID[t.ID] = t
	}

	active := make(map[serviceDateKey]bool, len(tables.CalendarDates))
	for _, cd := range tables.CalendarDates {
		active[serviceDateKey{cd.ServiceID, cd.Date}] = true
	}

	today := dateInt(serviceDate)
	tomorrow := dateInt(serviceDate.AddDate(0, 0, 1))

	survivors := make([]survivor, 0, len(tables.StopTimes))
	for i, st := range tables.StopTimes {
		trip, ok := tripByID[st.TripID]
		if !ok {
			continue
		}
		arr, err := geo.StringToSeconds(st.ArrivalTime)
		if err != nil {
			return nil, errors.Wrapf(err, "stop_time row %d", i+1)
		}
		dep, err := geo.StringToSeconds(st.DepartureTime)
		if err != nil {
			return nil, errors.Wrapf(err, "stop_time row %d", i+1)
		}
		date := today
		if dep >= 86400 {
			date = tomorrow
		}
		if !active[serviceDateKey{trip.ServiceID, date}] {
			continue
		}
		survivors = append(survivors, survivor{
			tripID: st.TripID, stopID: st.StopID,
			arrival: arr, depart: dep, rawOrder: i,
		})
	}

	// A single global sort by departure time doubles as the per-trip
	// stop-sequence order (times increase monotonically along a trip, per
	// invariant 2) and as the per-(route,position) ascending order needed
	// for route_pos_departures/route_pos_trips, because trips sharing a
	// RID never overtake each other.
	sort.SliceStable(survivors, func(i, j int) bool {
		if survivors[i].depart != survivors[j].depart {
			return survivors[i].depart < survivors[j].depart
		}
		return survivors[i].rawOrder < survivors[j].rawOrder
	})

	tripOrder := make([]string, 0)
	tripSeen := make(map[string]bool)
	tripSeq := make(map[string][]survivor)
	for _, s := range survivors {
		if !tripSeen[s.tripID] {
			tripSeen[s.tripID] = true
			tripOrder = append(tripOrder, s.tripID)
		}
		tripSeq[s.tripID] = append(tripSeq[s.tripID], s)
	}

	idx := &Index{
		Stops:              make(map[string]StopInfo, len(tables.Stops)),
		Trips:              make(map[string]*TripData, len(tripOrder)),
		StopToRoutes:       make(map[string]map[RID]struct{}),
		RouteToStops:       make(map[RID][]string),
		RouteStopSeq:       make(map[RouteStopKey]int),
		RoutePosDepartures: make(map[RoutePosKey][]int),
		RoutePosTrips:      make(map[RoutePosKey][]string),
		TripToRID:          make(map[string]RID),
		StopDepartures:     make(map[string]*StopDepartureList),
		TripStopDeparture:  make(map[TripStopKey]int),
		RouteNames:         make(map[RID]string),
		Transits:           make(map[string]map[string]int),
		BuiltAt:            time.Now(),
	}

	usedStops := make(map[string]bool)
	keyToRID := make(map[string]RID)
	var nextRID RID
	for _, tripID := range tripOrder {
		seq := tripSeq[tripID]
		stopIDs := make([]string, len(seq))
		arrivals := make([]int, len(seq))
		departures := make([]int, len(seq))
		var key strings.Builder
		for i, s := range seq {
			stopIDs[i] = s.stopID
			arrivals[i] = s.arrival
			departures[i] = s.depart
			usedStops[s.stopID] = true
			key.WriteString(s.stopID)
			key.WriteByte('>')
		}
		canonical := key.String()
		rid, ok := keyToRID[canonical]
		if !ok {
			rid = nextRID
			nextRID++
			keyToRID[canonical] = rid
			idx.RouteToStops[rid] = stopIDs
			for pos, stopID := range stopIDs {
				if _, exists := idx.RouteStopSeq[RouteStopKey{rid, stopID}]; !exists {
					idx.RouteStopSeq[RouteStopKey{rid, stopID}] = pos + 1
				}
			}
		}

		trip := tripByID[tripID]
		idx.Trips[tripID] = &TripData{
			ID: tripID, RouteID: trip.RouteID, ServiceID: trip.ServiceID,
			RID: rid, StopIDs: stopIDs, ArrivalTimes: arrivals, DepartureTimes: departures,
		}
		idx.TripToRID[tripID] = rid

		if _, ok := idx.RouteNames[rid]; !ok {
			idx.RouteNames[rid] = routeName(tables, trip.RouteID)
		}

		for pos, stopID := range stopIDs {
			key := RoutePosKey{rid, pos + 1}
			idx.RoutePosDepartures[key] = append(idx.RoutePosDepartures[key], departures[pos])
			idx.RoutePosTrips[key] = append(idx.RoutePosTrips[key], tripID)

			if idx.StopToRoutes[stopID] == nil {
				idx.StopToRoutes[stopID] = make(map[RID]struct{})
			}
			idx.StopToRoutes[stopID][rid] = struct{}{}

			dl := idx.StopDepartures[stopID]
			if dl == nil {
				dl = &StopDepartureList{}
				idx.StopDepartures[stopID] = dl
			}
			dl.DepTimes = append(dl.DepTimes, departures[pos])
			dl.TripIDs = append(dl.TripIDs, tripID)

			idx.TripStopDeparture[TripStopKey{tripID, stopID}] = departures[pos]
		}
	}

	for _, s := range tables.Stops {
		if !usedStops[s.ID] {
			continue
		}
		idx.Stops[s.ID] = StopInfo{Lat: s.Lat, Lon: s.Lon, Name: s.Name, PlatformCode: s.PlatformCode}
	}

	if err := buildTransits(idx, params); err != nil {
		return nil, err
	}
	applyScheduledTransfers(idx, tables.Transfers)

	return idx, nil
}

func routeName(tables *feed.Tables, routeID string) string {
	for _, r := range tables.Routes {
		if r.ID == routeID {
			return strings.TrimSpace(r.Desc + " " + r.ShortName)
		}
	}
	return ""
}

func buildTransits(idx *Index, params BuildParams) error {
	stopIDs := make([]string, 0, len(idx.Stops))
	points := make([]geo.Point, 0, len(idx.Stops))
	for id, s := range idx.Stops {
		stopIDs = append(stopIDs, id)
		points = append(points, geo.Point{Lat: s.Lat, Lon: s.Lon})
	}
	sort.Strings(stopIDs)
	// Rebuild points in the same sorted order as stopIDs for a deterministic matrix.
	ordered := make([]geo.Point, len(stopIDs))
	for i, id := range stopIDs {
		s := idx.Stops[id]
		ordered[i] = geo.Point{Lat: s.Lat, Lon: s.Lon}
	}
	matrix := geo.PairwiseDistanceMatrix(ordered)

	for i, a := range stopIDs {
		for j, b := range stopIDs {
			if i == j {
				continue
			}
			dist := matrix[i][j]
			if dist >= params.MaxWalkRadiusKm {
				continue
			}
			seconds := int(dist / params.WalkSpeedKmh * 3600 * 2)
			if idx.Transits[a] == nil {
				idx.Transits[a] = make(map[string]int)
			}
			idx.Transits[a][b] = seconds
		}
	}
	return nil
}

func applyScheduledTransfers(idx *Index, transfers []feed.Transfer) {
	for _, t := range transfers {
		if t.FromStopID == "" || t.ToStopID == "" || t.FromStopID == t.ToStopID {
			continue
		}
		if _, ok := idx.Stops[t.FromStopID]; !ok {
			continue
		}
		if _, ok := idx.Stops[t.ToStopID]; !ok {
			continue
		}
		seconds := 0
		if t.MinTransferTime != nil {
			seconds = *t.MinTransferTime
		}
		if idx.Transits[t.FromStopID] == nil {
			idx.Transits[t.FromStopID] = make(map[string]int)
		}
		idx.Transits[t.FromStopID][t.ToStopID] = seconds
	}
}

func dateInt(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}
