package feed

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

type stopCSV struct {
	ID           string  `csv:"stop_id"`
	Lat          float64 `csv:"stop_lat"`
	Lon          float64 `csv:"stop_lon"`
	Name         string  `csv:"stop_name"`
	PlatformCode string  `csv:"platform_code"`
}

// ParseStops decodes stops.txt.
func ParseStops(data io.Reader) ([]Stop, error) {
	rows := []*stopCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling stops csv")
	}

	stops := make([]Stop, 0, len(rows))
	seen := map[string]bool{}
	for i, r := range rows {
		if r.ID == "" {
			return nil, errors.Errorf("empty stop_id (row %d)", i+1)
		}
		if seen[r.ID] {
			return nil, errors.Errorf("duplicate stop_id %q (row %d)", r.ID, i+1)
		}
		seen[r.ID] = true
		stops = append(stops, Stop{
			ID:           r.ID,
			Lat:          r.Lat,
			Lon:          r.Lon,
			Name:         r.Name,
			PlatformCode: r.PlatformCode,
		})
	}
	return stops, nil
}
