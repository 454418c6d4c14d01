package geoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"homesafe_backend/platform/config"
	"homesafe_backend/platform/logger"
)

// PlacesClient queries the Google Places Nearby Search API for transit
// infrastructure around a coordinate.
type PlacesClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        *logger.Logger
}

func NewPlacesClient(cfg config.GeoAPIConfig, log *logger.Logger) *PlacesClient {
	return &PlacesClient{
		httpClient: &http.Client{Timeout: clientTimeout(cfg)},
		baseURL:    cfg.GetPlacesBaseURL(),
		apiKey:     cfg.GetPlacesAPIKey(),
		log:        log,
	}
}

type nearbySearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// NearestRailway returns the location of the closest railway station within
// radiusMeters. ok is false when nothing is in range. Results are
// rank-by-distance, so the first hit is the nearest.
func (c *PlacesClient) NearestRailway(ctx context.Context, lat, lng, radiusMeters float64) (float64, float64, bool, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", lat, lng))
	params.Set("radius", strconv.FormatFloat(radiusMeters, 'f', 0, 64))
	params.Set("type", "train_station")
	params.Set("key", c.apiKey)
	reqURL := fmt.Sprintf("%s/maps/api/place/nearbysearch/json?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, 0, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, false, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, false, fmt.Errorf("places lookup: status %d", resp.StatusCode)
	}

	var body nearbySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, 0, false, fmt.Errorf("decode response: %w", err)
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return 0, 0, false, nil
	default:
		return 0, 0, false, fmt.Errorf("places lookup: status %s", body.Status)
	}
	if len(body.Results) == 0 {
		return 0, 0, false, nil
	}

	loc := body.Results[0].Geometry.Location
	c.log.Debug("railway station found", "lat", loc.Lat, "lng", loc.Lng)
	return loc.Lat, loc.Lng, true, nil
}
