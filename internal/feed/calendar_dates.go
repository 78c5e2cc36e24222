package feed

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

type calendarDateCSV struct {
	ServiceID     string `csv:"service_id"`
	Date          int    `csv:"date"`
	ExceptionType int    `csv:"exception_type"`
}

// ParseCalendarDates decodes calendar_dates.txt. Date is the GTFS YYYYMMDD
// integer.
func ParseCalendarDates(data io.Reader) ([]CalendarDate, error) {
	rows := []*calendarDateCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling calendar_dates csv")
	}

	dates := make([]CalendarDate, 0, len(rows))
	for i, r := range rows {
		if r.ExceptionType != 1 && r.ExceptionType != 2 {
			return nil, errors.Errorf("illegal exception_type %d (row %d)", r.ExceptionType, i+1)
		}
		dates = append(dates, CalendarDate{ServiceID: r.ServiceID, Date: r.Date, ExceptionType: r.ExceptionType})
	}
	return dates, nil
}
