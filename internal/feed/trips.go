package feed

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

type tripCSV struct {
	ID        string `csv:"trip_id"`
	RouteID   string `csv:"route_id"`
	ServiceID string `csv:"service_id"`
}

// ParseTrips decodes trips.txt.
func ParseTrips(data io.Reader) ([]Trip, error) {
	rows := []*tripCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling trips csv")
	}

	trips := make([]Trip, 0, len(rows))
	for i, r := range rows {
		if r.ID == "" {
			return nil, errors.Errorf("empty trip_id (row %d)", i+1)
		}
		trips = append(trips, Trip{ID: r.ID, RouteID: r.RouteID, ServiceID: r.ServiceID})
	}
	return trips, nil
}
