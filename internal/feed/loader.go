package feed

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// LoadDir reads the six required GTFS tables from dir (as extracted from the
// static feed ZIP) and decodes them into Tables. A malformed row in any table
// aborts the whole load; callers are expected to retain the previous Tables
// on error, per the static-refresh failure policy.
func LoadDir(dir string) (*Tables, error) {
	stopsF, err := os.Open(filepath.Join(dir, "stops.txt"))
	if err != nil {
		return nil, errors.Wrap(err, "opening stops.txt")
	}
	defer stopsF.Close()
	stops, err := ParseStops(stopsF)
	if err != nil {
		return nil, err
	}

	tripsF, err := os.Open(filepath.Join(dir, "trips.txt"))
	if err != nil {
		return nil, errors.Wrap(err, "opening trips.txt")
	}
	defer tripsF.Close()
	trips, err := ParseTrips(tripsF)
	if err != nil {
		return nil, err
	}

	routesF, err := os.Open(filepath.Join(dir, "routes.txt"))
	if err != nil {
		return nil, errors.Wrap(err, "opening routes.txt")
	}
	defer routesF.Close()
	routes, err := ParseRoutes(routesF)
	if err != nil {
		return nil, err
	}

	transfersF, err := os.Open(filepath.Join(dir, "transfers.txt"))
	if err != nil {
		return nil, errors.Wrap(err, "opening transfers.txt")
	}
	defer transfersF.Close()
	transfers, err := ParseTransfers(transfersF)
	if err != nil {
		return nil, err
	}

	stopTimesF, err := os.Open(filepath.Join(dir, "stop_times.txt"))
	if err != nil {
		return nil, errors.Wrap(err, "opening stop_times.txt")
	}
	defer stopTimesF.Close()
	stopTimes, err := ParseStopTimes(stopTimesF)
	if err != nil {
		return nil, err
	}

	calendarDatesF, err := os.Open(filepath.Join(dir, "calendar_dates.txt"))
	if err != nil {
		return nil, errors.Wrap(err, "opening calendar_dates.txt")
	}
	defer calendarDatesF.Close()
	calendarDates, err := ParseCalendarDates(calendarDatesF)
	if err != nil {
		return nil, err
	}

	return &Tables{
		Stops:         stops,
		Trips:         trips,
		Routes:        routes,
		Transfers:     transfers,
		StopTimes:     stopTimes,
		CalendarDates: calendarDates,
	}, nil
}
