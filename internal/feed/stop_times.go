package feed

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

type stopTimeCSV struct {
	TripID        string `csv:"trip_id"`
	StopID        string `csv:"stop_id"`
	StopSequence  int    `csv:"stop_sequence"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
}

// ParseStopTimes decodes stop_times.txt.
func ParseStopTimes(data io.Reader) ([]StopTime, error) {
	rows := []*stopTimeCSV{}
	i := -1
	err := gocsv.UnmarshalToCallbackWithError(data, func(r *stopTimeCSV) error {
		i++
		if r.TripID == "" {
			return errors.Errorf("missing trip_id (row %d)", i+1)
		}
		if r.StopID == "" {
			return errors.Errorf("missing stop_id (row %d)", i+1)
		}
		rows = append(rows, r)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "unmarshaling stop_times csv")
	}

	stopTimes := make([]StopTime, 0, len(rows))
	for _, r := range rows {
		stopTimes = append(stopTimes, StopTime{
			TripID:        r.TripID,
			StopID:        r.StopID,
			StopSequence:  r.StopSequence,
			ArrivalTime:   r.ArrivalTime,
			DepartureTime: r.DepartureTime,
		})
	}
	return stopTimes, nil
}
