package geoapi

import (
	"context"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"homesafe_backend/platform/logger"
)

type stubConfig struct{}

func (stubConfig) GetElevationBaseURL() string     { return "https://elevation.test" }
func (stubConfig) GetPlacesBaseURL() string        { return "https://places.test" }
func (stubConfig) GetPlacesAPIKey() string         { return "test-key" }
func (stubConfig) GetGeoAPITimeout() time.Duration { return 2 * time.Second }

func newElevationTestClient(t *testing.T) *ElevationClient {
	t.Helper()
	c := NewElevationClient(stubConfig{}, logger.New("development"))
	httpmock.ActivateNonDefault(c.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func newPlacesTestClient(t *testing.T) *PlacesClient {
	t.Helper()
	c := NewPlacesClient(stubConfig{}, logger.New("development"))
	httpmock.ActivateNonDefault(c.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestElevationLookup(t *testing.T) {
	c := newElevationTestClient(t)
	httpmock.RegisterResponder("GET", `=~^https://elevation\.test/v1/elevation`,
		httpmock.NewStringResponder(200, `{"elevation":[7.25]}`))

	got, err := c.Elevation(context.Background(), 10.776, 106.7)
	if err != nil {
		t.Fatalf("Elevation: %v", err)
	}
	if got == nil || *got != 7.25 {
		t.Fatalf("elevation = %v, want 7.25", got)
	}
}

func TestElevationNoData(t *testing.T) {
	c := newElevationTestClient(t)
	httpmock.RegisterResponder("GET", `=~^https://elevation\.test/v1/elevation`,
		httpmock.NewStringResponder(200, `{"elevation":[]}`))

	got, err := c.Elevation(context.Background(), 10.776, 106.7)
	if err != nil {
		t.Fatalf("Elevation: %v", err)
	}
	if got != nil {
		t.Fatalf("elevation = %v, want nil", *got)
	}
}

func TestElevationUpstreamFailure(t *testing.T) {
	c := newElevationTestClient(t)
	httpmock.RegisterResponder("GET", `=~^https://elevation\.test/v1/elevation`,
		httpmock.NewStringResponder(503, `service unavailable`))

	if _, err := c.Elevation(context.Background(), 10.776, 106.7); err == nil {
		t.Fatal("want error on upstream 503")
	}
}

func TestNearestRailway(t *testing.T) {
	c := newPlacesTestClient(t)
	httpmock.RegisterResponder("GET", `=~^https://places\.test/maps/api/place/nearbysearch/json`,
		httpmock.NewStringResponder(200, `{
			"status": "OK",
			"results": [
				{"geometry": {"location": {"lat": 10.777, "lng": 106.701}}},
				{"geometry": {"location": {"lat": 10.790, "lng": 106.710}}}
			]
		}`))

	lat, lng, ok, err := c.NearestRailway(context.Background(), 10.776, 106.7, 300)
	if err != nil {
		t.Fatalf("NearestRailway: %v", err)
	}
	if !ok {
		t.Fatal("want a station hit")
	}
	if lat != 10.777 || lng != 106.701 {
		t.Fatalf("station = (%v, %v), want the first ranked result", lat, lng)
	}
}

func TestNearestRailwayZeroResults(t *testing.T) {
	c := newPlacesTestClient(t)
	httpmock.RegisterResponder("GET", `=~^https://places\.test/maps/api/place/nearbysearch/json`,
		httpmock.NewStringResponder(200, `{"status": "ZERO_RESULTS", "results": []}`))

	_, _, ok, err := c.NearestRailway(context.Background(), 10.776, 106.7, 300)
	if err != nil {
		t.Fatalf("NearestRailway: %v", err)
	}
	if ok {
		t.Fatal("want no station hit")
	}
}

func TestNearestRailwayAPIStatusError(t *testing.T) {
	c := newPlacesTestClient(t)
	httpmock.RegisterResponder("GET", `=~^https://places\.test/maps/api/place/nearbysearch/json`,
		httpmock.NewStringResponder(200, `{"status": "REQUEST_DENIED", "results": []}`))

	if _, _, _, err := c.NearestRailway(context.Background(), 10.776, 106.7, 300); err == nil {
		t.Fatal("want error for non-OK API status")
	}
}
