// Package routing is the HTTP client for the external distance-matrix
// provider, answering one origin-destination travel time per call.
package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fieldline/dispatch/internal/core"
	"github.com/fieldline/dispatch/internal/domain/model"
)

const defaultRequestTimeout = 10 * time.Second

// Client computes driving time between two coordinates. A departure instant
// requests traffic-aware prediction for that time; without one the provider
// answers with typical conditions.
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

// NewClient creates a routing Client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("distance matrix base URL is required")
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

type routeResponse struct {
	DurationSeconds int64  `json:"durationSeconds"`
	DistanceMeters  *int64 `json:"distanceMeters"`
	Status          string `json:"status"`
	Message         string `json:"message,omitempty"`
}

// TravelTime returns the driving estimate for one origin-destination pair.
func (c *Client) TravelTime(
	ctx context.Context,
	origin, destination model.Coordinates,
	departure *time.Time,
) (core.TravelEstimate, error) {
	query := url.Values{}
	query.Set("originLat", formatCoord(origin.Lat))
	query.Set("originLng", formatCoord(origin.Lng))
	query.Set("destLat", formatCoord(destination.Lat))
	query.Set("destLng", formatCoord(destination.Lng))
	if departure != nil {
		query.Set("departureTime", departure.UTC().Format(time.RFC3339))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/route?"+query.Encode(), nil)
	if err != nil {
		return core.TravelEstimate{}, fmt.Errorf("build route request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.TravelEstimate{}, fmt.Errorf("call distance matrix: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return core.TravelEstimate{}, fmt.Errorf("distance matrix returned HTTP %d: %s", resp.StatusCode, snippet)
	}

	var out routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return core.TravelEstimate{}, fmt.Errorf("decode route response: %w", err)
	}
	if out.Status != "" && out.Status != "ok" {
		return core.TravelEstimate{}, fmt.Errorf("distance matrix error: %s", out.Message)
	}
	if out.DurationSeconds < 0 {
		return core.TravelEstimate{}, fmt.Errorf("distance matrix returned negative duration %d", out.DurationSeconds)
	}

	return core.TravelEstimate{
		DurationSeconds: out.DurationSeconds,
		DistanceMeters:  out.DistanceMeters,
	}, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
