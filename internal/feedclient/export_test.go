package feedclient

// SetTripUpdatesURLForTest overrides the TripUpdates endpoint so tests can
// point the client at an httptest server instead of the real upstream.
func SetTripUpdatesURLForTest(c *Client, url string) {
	c.tripUpdatesURL = url
}
