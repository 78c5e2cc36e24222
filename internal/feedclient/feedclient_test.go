package feedclient_test

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"

	"github.com/antigravity/skane-transit/internal/feedclient"
)

func TestClientFetchTripUpdates(t *testing.T) {
	header := &gtfs.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")}
	tripID := "T1"
	stopID := "A"
	seq := uint32(1)
	arrival := int64(1000)
	msg := &gtfs.FeedMessage{
		Header: header,
		Entity: []*gtfs.FeedEntity{
			{
				Id: proto.String("e1"),
				TripUpdate: &gtfs.TripUpdate{
					Trip: &gtfs.TripDescriptor{TripId: &tripID},
					StopTimeUpdate: []*gtfs.TripUpdate_StopTimeUpdate{
						{
							StopId:       &stopID,
							StopSequence: &seq,
							Arrival:      &gtfs.TripUpdate_StopTimeEvent{Time: &arrival},
						},
					},
				},
			},
		},
	}
	body, err := proto.Marshal(msg)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	c := feedclient.New("skane", "statickey", "rtkey")
	feedclient.SetTripUpdatesURLForTest(c, srv.URL)

	feed, err := c.FetchTripUpdates(context.Background())
	require.NoError(t, err)
	require.Len(t, feed.GetEntity(), 1)
	assert.Equal(t, "T1", feed.GetEntity()[0].GetTripUpdate().GetTrip().GetTripId())
}

func TestClientNonOKStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := feedclient.New("skane", "statickey", "rtkey")
	feedclient.SetTripUpdatesURLForTest(c, srv.URL)

	_, err := c.FetchTripUpdates(context.Background())
	assert.Error(t, err)
}

func TestExtractStaticWritesFiles(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("stops.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("stop_id,stop_name\nA,Stop A\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	dir := t.TempDir()
	require.NoError(t, feedclient.ExtractStatic(buf.Bytes(), dir))

	content, err := os.ReadFile(filepath.Join(dir, "stops.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Stop A")
}

func TestTripUpdatesToPatchConvertsEpochToSecondsOfDay(t *testing.T) {
	loc := time.UTC
	serviceDate := time.Date(2026, 8, 1, 0, 0, 0, 0, loc)
	midnightEpoch := serviceDate.Unix()

	tripID := "T1"
	stopID := "A"
	seq := uint32(1)
	arrival := midnightEpoch + 3600 // 01:00:00 -> 3600s
	msg := &gtfs.FeedMessage{
		Entity: []*gtfs.FeedEntity{
			{
				Id: proto.String("e1"),
				TripUpdate: &gtfs.TripUpdate{
					Trip: &gtfs.TripDescriptor{TripId: &tripID},
					StopTimeUpdate: []*gtfs.TripUpdate_StopTimeUpdate{
						{
							StopId:       &stopID,
							StopSequence: &seq,
							Arrival:      &gtfs.TripUpdate_StopTimeEvent{Time: &arrival},
						},
					},
				},
			},
		},
	}

	updates := feedclient.TripUpdatesToPatch(msg, serviceDate, loc)
	require.Len(t, updates, 1)
	require.Len(t, updates[0].Updates, 1)
	assert.Equal(t, 3600, updates[0].Updates[0].NewArrival)
	assert.Equal(t, 3600, updates[0].Updates[0].NewDeparture)
}
