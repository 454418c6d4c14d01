// Package geoapi provides the outbound HTTP clients for terrain elevation and
// nearby-places lookups used by the environment score.
package geoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"homesafe_backend/platform/config"
	"homesafe_backend/platform/logger"
)

// ElevationClient resolves terrain elevation through the Open-Meteo API.
type ElevationClient struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

func NewElevationClient(cfg config.GeoAPIConfig, log *logger.Logger) *ElevationClient {
	return &ElevationClient{
		httpClient: &http.Client{Timeout: clientTimeout(cfg)},
		baseURL:    cfg.GetElevationBaseURL(),
		log:        log,
	}
}

func clientTimeout(cfg config.GeoAPIConfig) time.Duration {
	if t := cfg.GetGeoAPITimeout(); t > 0 {
		return t
	}
	return defaultTimeout
}

type elevationResponse struct {
	Elevation []float64 `json:"elevation"`
}

// Elevation returns the terrain elevation in meters for the coordinate, or
// nil when the provider has no data for the point.
func (c *ElevationClient) Elevation(ctx context.Context, lat, lng float64) (*float64, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("longitude", strconv.FormatFloat(lng, 'f', 6, 64))
	reqURL := fmt.Sprintf("%s/v1/elevation?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevation lookup: status %d", resp.StatusCode)
	}

	var body elevationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(body.Elevation) == 0 {
		c.log.Debug("elevation provider returned no data", "lat", lat, "lng", lng)
		return nil, nil
	}
	return &body.Elevation[0], nil
}

// defaultTimeout guards against a zero-valued config in tests.
const defaultTimeout = 5 * time.Second
