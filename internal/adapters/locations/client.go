// Package locations is the HTTP client for the real-time device-location
// provider.
package locations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fieldline/dispatch/internal/domain/model"
)

const defaultRequestTimeout = 15 * time.Second

// Client fetches the latest position of every tracked GPS device.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientOptions holds configuration for NewClient.
type ClientOptions struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a locations Client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("location provider base URL is required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &Client{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		httpClient: opts.HTTPClient,
	}, nil
}

type deviceReport struct {
	DeviceID  string    `json:"deviceId"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

type devicesResponse struct {
	Devices []deviceReport `json:"devices"`
}

// CurrentLocations returns the latest report per device id.
func (c *Client) CurrentLocations(ctx context.Context) (map[string]model.DeviceLocation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/devices/locations", nil)
	if err != nil {
		return nil, fmt.Errorf("build location request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call location provider: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("location provider returned HTTP %d: %s", resp.StatusCode, snippet)
	}

	var payload devicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode location response: %w", err)
	}

	out := make(map[string]model.DeviceLocation, len(payload.Devices))
	for _, d := range payload.Devices {
		if d.DeviceID == "" {
			continue
		}
		out[d.DeviceID] = model.DeviceLocation{
			DeviceID:  d.DeviceID,
			Location:  model.Coordinates{Lat: d.Lat, Lng: d.Lng},
			Timestamp: d.Timestamp,
		}
	}
	return out, nil
}
