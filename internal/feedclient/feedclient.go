// Package feedclient fetches the static GTFS zip and GTFS-realtime feeds
// from the upstream Trafiklab-style endpoints.
package feedclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
)

// Client fetches feeds for one operator from the upstream open-data service.
type Client struct {
	httpClient *http.Client

	staticURL           string
	serviceAlertsURL    string
	tripUpdatesURL      string
	vehiclePositionsURL string
}

// New builds a Client for the given operator and API keys.
func New(operator, staticKey, realtimeKey string) *Client {
	base := "https://opendata.samtrafiken.se"
	return &Client{
		httpClient:          &http.Client{Timeout: 30 * time.Second},
		staticURL:           fmt.Sprintf("%s/gtfs/%s/%s.zip?key=%s", base, operator, operator, staticKey),
		serviceAlertsURL:    fmt.Sprintf("%s/gtfs-rt/%s/ServiceAlerts.pb?key=%s", base, operator, realtimeKey),
		tripUpdatesURL:      fmt.Sprintf("%s/gtfs-rt/%s/TripUpdates.pb?key=%s", base, operator, realtimeKey),
		vehiclePositionsURL: fmt.Sprintf("%s/gtfs-rt/%s/VehiclePositions.pb?key=%s", base, operator, realtimeKey),
	}
}

// DownloadStatic fetches the raw static GTFS zip bytes.
func (c *Client) DownloadStatic(ctx context.Context) ([]byte, error) {
	return c.get(ctx, c.staticURL)
}

// FetchTripUpdates fetches and decodes the TripUpdates GTFS-realtime feed.
func (c *Client) FetchTripUpdates(ctx context.Context) (*gtfs.FeedMessage, error) {
	return c.fetchFeed(ctx, c.tripUpdatesURL)
}

// FetchServiceAlerts fetches and decodes the ServiceAlerts GTFS-realtime feed.
func (c *Client) FetchServiceAlerts(ctx context.Context) (*gtfs.FeedMessage, error) {
	return c.fetchFeed(ctx, c.serviceAlertsURL)
}

// FetchVehiclePositions fetches and decodes the VehiclePositions GTFS-realtime
// feed.
func (c *Client) FetchVehiclePositions(ctx context.Context) (*gtfs.FeedMessage, error) {
	return c.fetchFeed(ctx, c.vehiclePositionsURL)
}

func (c *Client) fetchFeed(ctx context.Context, url string) (*gtfs.FeedMessage, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	feed := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, feed); err != nil {
		return nil, errors.Wrap(err, "unmarshal gtfs-realtime feed")
	}
	return feed, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch feed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("feed %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}
	return body, nil
}
