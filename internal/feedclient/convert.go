package feedclient

import (
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"

	"github.com/antigravity/skane-transit/internal/timetable"
)

// TripUpdatesToPatch converts a decoded TripUpdates feed into the timetable
// package's patch format, rebasing each GTFS-realtime absolute timestamp
// (Unix epoch seconds) onto seconds-of-day relative to serviceDate's local
// midnight. A StopTimeUpdate missing both an arrival and a departure time is
// skipped; one missing only the arrival reuses the departure and vice versa,
// matching how the reference feed fills in terminal stops.
func TripUpdatesToPatch(feed *gtfs.FeedMessage, serviceDate time.Time, loc *time.Location) []timetable.TripUpdate {
	midnight := time.Date(serviceDate.Year(), serviceDate.Month(), serviceDate.Day(), 0, 0, 0, 0, loc)

	var out []timetable.TripUpdate
	for _, entity := range feed.GetEntity() {
		tu := entity.GetTripUpdate()
		if tu == nil || tu.GetTrip().GetTripId() == "" {
			continue
		}

		var updates []timetable.StopTimeUpdate
		for _, stu := range tu.GetStopTimeUpdate() {
			if stu.GetStopSequence() == 0 {
				continue
			}

			var arrival, departure *int64
			if a := stu.GetArrival(); a != nil && a.Time != nil {
				arrival = a.Time
			}
			if d := stu.GetDeparture(); d != nil && d.Time != nil {
				departure = d.Time
			}
			if arrival == nil && departure == nil {
				continue
			}
			if arrival == nil {
				arrival = departure
			}
			if departure == nil {
				departure = arrival
			}

			updates = append(updates, timetable.StopTimeUpdate{
				StopID:       stu.GetStopId(),
				StopSequence: int(stu.GetStopSequence()),
				NewArrival:   epochToSecondsOfDay(*arrival, midnight),
				NewDeparture: epochToSecondsOfDay(*departure, midnight),
			})
		}
		if len(updates) == 0 {
			continue
		}

		out = append(out, timetable.TripUpdate{
			TripID:  tu.GetTrip().GetTripId(),
			Updates: updates,
		})
	}
	return out
}

// epochToSecondsOfDay converts a Unix epoch timestamp into seconds-of-day
// relative to midnight, allowing values past 86400 for the following
// calendar day (the same continuous, rollover-free convention stop_times
// uses).
func epochToSecondsOfDay(epoch int64, midnight time.Time) int {
	return int(time.Unix(epoch, 0).In(midnight.Location()).Sub(midnight).Seconds())
}
