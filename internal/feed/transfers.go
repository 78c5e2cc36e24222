package feed

import (
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

type transferCSV struct {
	FromStopID      string `csv:"from_stop_id"`
	ToStopID        string `csv:"to_stop_id"`
	MinTransferTime string `csv:"min_transfer_time"`
}

// ParseTransfers decodes transfers.txt. A blank min_transfer_time yields a
// nil MinTransferTime; the timetable builder defaults that to zero.
func ParseTransfers(data io.Reader) ([]Transfer, error) {
	rows := []*transferCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling transfers csv")
	}

	transfers := make([]Transfer, 0, len(rows))
	for i, r := range rows {
		t := Transfer{FromStopID: r.FromStopID, ToStopID: r.ToStopID}
		if trimmed := strings.TrimSpace(r.MinTransferTime); trimmed != "" {
			v, err := strconv.Atoi(trimmed)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing min_transfer_time (row %d)", i+1)
			}
			t.MinTransferTime = &v
		}
		transfers = append(transfers, t)
	}
	return transfers, nil
}
