// Package client provides the HTTP client for the rental core API, the
// system of record for properties.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"homesafe_backend/platform/apperr"
	"homesafe_backend/platform/config"
	"homesafe_backend/platform/logger"
)

// Room is the upstream representation of a rentable property.
type Room struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	AddressDetails *string  `json:"addressDetails"`
	Ward           *string  `json:"ward"`
	District       *string  `json:"district"`
	City           *string  `json:"city"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
}

// Client is the HTTP client for the rental core API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

// New creates a new rental core API client.
func New(cfg config.CoreSyncConfig, log *logger.Logger) *Client {
	timeout := cfg.GetCoreTimeout()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.GetCoreBaseURL(),
		log:        log,
	}
}

// FetchRoom fetches a room by id. A 404 maps to a typed not-found error so
// callers can block dependent writes on it.
func (c *Client) FetchRoom(ctx context.Context, id int64) (*Room, error) {
	reqURL := fmt.Sprintf("%s/api/rooms/%d", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("core api request failed", "error", err, "url", reqURL)
		return nil, apperr.Wrap(apperr.KindUpstream, "core api request", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, apperr.NotFound("property not found in system of record")
	default:
		c.log.Error("core api unexpected status", "status", resp.StatusCode, "url", reqURL)
		return nil, apperr.New(apperr.KindUpstream, fmt.Sprintf("core api status %d", resp.StatusCode))
	}

	room, err := decodeRoom(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "decode core api response", err)
	}
	if room.ID == 0 {
		return nil, apperr.NotFound("system of record returned an invalid room")
	}
	return room, nil
}

// decodeRoom tolerates both a bare room object and a {"data": {...}} envelope
// as some core deployments wrap their responses.
func decodeRoom(r io.Reader) (*Room, error) {
	var raw struct {
		Data json.RawMessage `json:"data"`
		Room
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	if len(raw.Data) > 0 {
		var room Room
		if err := json.Unmarshal(raw.Data, &room); err != nil {
			return nil, err
		}
		return &room, nil
	}
	return &raw.Room, nil
}
