package feed_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/skane-transit/internal/feed"
)

func TestParseStopsOK(t *testing.T) {
	data := "stop_id,stop_lat,stop_lon,stop_name,platform_code\n" +
		"A,55.6050,13.0038,Malmo C,4\n" +
		"B,55.7047,13.1910,Lund C,\n"
	stops, err := feed.ParseStops(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, stops, 2)
	assert.Equal(t, "A", stops[0].ID)
	assert.Equal(t, "Malmo C", stops[0].Name)
	assert.Equal(t, "4", stops[0].PlatformCode)
	assert.Equal(t, "", stops[1].PlatformCode)
}

func TestParseStopsRejectsEmptyID(t *testing.T) {
	data := "stop_id,stop_lat,stop_lon,stop_name,platform_code\n,55.6,13.0,Nowhere,\n"
	_, err := feed.ParseStops(strings.NewReader(data))
	require.Error(t, err)
}

func TestParseStopsRejectsDuplicateID(t *testing.T) {
	data := "stop_id,stop_lat,stop_lon,stop_name,platform_code\n" +
		"A,55.6,13.0,Malmo C,\nA,55.7,13.1,Lund C,\n"
	_, err := feed.ParseStops(strings.NewReader(data))
	require.Error(t, err)
}

func TestParseTripsOK(t *testing.T) {
	data := "trip_id,route_id,service_id\nT1,R1,WEEKDAY\n"
	trips, err := feed.ParseTrips(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "R1", trips[0].RouteID)
}

func TestParseRoutesOK(t *testing.T) {
	data := "route_id,route_desc,route_short_name\nR1,Tram,1\n"
	routes, err := feed.ParseRoutes(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "Tram", routes[0].Desc)
}

func TestParseTransfersNullableMinTime(t *testing.T) {
	data := "from_stop_id,to_stop_id,min_transfer_time\nA,B,120\nB,C,\n"
	transfers, err := feed.ParseTransfers(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, transfers, 2)
	require.NotNil(t, transfers[0].MinTransferTime)
	assert.Equal(t, 120, *transfers[0].MinTransferTime)
	assert.Nil(t, transfers[1].MinTransferTime)
}

func TestParseStopTimesOK(t *testing.T) {
	data := "trip_id,stop_id,stop_sequence,arrival_time,departure_time\n" +
		"T1,A,1,08:00:00,08:00:00\nT1,B,2,08:10:00,08:10:00\n"
	rows, err := feed.ParseStopTimes(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[1].StopSequence)
}

func TestParseStopTimesRejectsMissingStopID(t *testing.T) {
	data := "trip_id,stop_id,stop_sequence,arrival_time,departure_time\nT1,,1,08:00:00,08:00:00\n"
	_, err := feed.ParseStopTimes(strings.NewReader(data))
	require.Error(t, err)
}

func TestParseCalendarDatesRejectsBadExceptionType(t *testing.T) {
	data := "service_id,date,exception_type\nWEEKDAY,20260801,3\n"
	_, err := feed.ParseCalendarDates(strings.NewReader(data))
	require.Error(t, err)
}

func TestParseCalendarDatesOK(t *testing.T) {
	data := "service_id,date,exception_type\nWEEKDAY,20260801,1\n"
	rows, err := feed.ParseCalendarDates(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 20260801, rows[0].Date)
}

func TestLoadDirAssemblesAllTables(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"stops.txt":          "stop_id,stop_lat,stop_lon,stop_name,platform_code\nA,55.6,13.0,Malmo C,\n",
		"trips.txt":          "trip_id,route_id,service_id\nT1,R1,WEEKDAY\n",
		"routes.txt":         "route_id,route_desc,route_short_name\nR1,Tram,1\n",
		"transfers.txt":      "from_stop_id,to_stop_id,min_transfer_time\n",
		"stop_times.txt":     "trip_id,stop_id,stop_sequence,arrival_time,departure_time\nT1,A,1,08:00:00,08:00:00\n",
		"calendar_dates.txt": "service_id,date,exception_type\nWEEKDAY,20260801,1\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	tables, err := feed.LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, tables.Stops, 1)
	assert.Len(t, tables.Trips, 1)
	assert.Len(t, tables.Routes, 1)
	assert.Len(t, tables.StopTimes, 1)
	assert.Len(t, tables.CalendarDates, 1)
}

func TestLoadDirMissingFileErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := feed.LoadDir(dir)
	require.Error(t, err)
}
