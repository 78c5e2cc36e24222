package feed

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

type routeCSV struct {
	ID        string `csv:"route_id"`
	Desc      string `csv:"route_desc"`
	ShortName string `csv:"route_short_name"`
}

// ParseRoutes decodes routes.txt.
func ParseRoutes(data io.Reader) ([]Route, error) {
	rows := []*routeCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling routes csv")
	}

	routes := make([]Route, 0, len(rows))
	for i, r := range rows {
		if r.ID == "" {
			return nil, errors.Errorf("empty route_id (row %d)", i+1)
		}
		routes = append(routes, Route{ID: r.ID, Desc: r.Desc, ShortName: r.ShortName})
	}
	return routes, nil
}
