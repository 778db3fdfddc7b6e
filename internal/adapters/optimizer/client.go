// Package optimizer is the HTTP client for the external route-optimization
// service.
package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/fieldline/dispatch/internal/domain/optimize"
)

const defaultRequestTimeout = 3 * time.Minute

// Client calls the optimizer's solve endpoint with a bearer identity token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	bypassAuth bool
	logger     *slog.Logger
}

// ClientOptions holds configuration for NewClient.
type ClientOptions struct {
	// BaseURL is the optimizer service root, e.g. "https://optimizer.internal".
	BaseURL string
	// Tokens supplies bearer identity tokens for the service. Required unless
	// BypassAuth is set (local development against an unauthenticated solver).
	Tokens     oauth2.TokenSource
	BypassAuth bool
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient creates an optimizer Client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("optimizer base URL is required")
	}
	if opts.Tokens == nil && !opts.BypassAuth {
		return nil, errors.New("optimizer token source is required unless auth is bypassed")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		tokens:     opts.Tokens,
		bypassAuth: opts.BypassAuth,
		logger:     opts.Logger,
	}, nil
}

// StaticTokens wraps a fixed service token as a TokenSource.
func StaticTokens(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
}

// Solve posts the payload and decodes the solver's reply. A non-2xx response
// or an undecodable body is an error; a decodable reply with status "error" is
// returned as-is for the results processor to classify.
func (c *Client) Solve(ctx context.Context, payload *optimize.Payload) (*optimize.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode optimizer payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/solve", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build optimizer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if !c.bypassAuth {
		token, tokenErr := c.tokens.Token()
		if tokenErr != nil {
			return nil, fmt.Errorf("fetch optimizer token: %w", tokenErr)
		}
		token.SetAuthHeader(req)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call optimizer: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("optimizer returned HTTP %d: %s", resp.StatusCode, snippet)
	}

	var out optimize.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode optimizer response: %w", err)
	}

	c.logger.DebugContext(ctx, "optimizer solve complete",
		"status", out.Status,
		"routes", len(out.Routes),
		"unassigned", len(out.UnassignedItemIDs),
		"duration_ms", time.Since(started).Milliseconds())
	return &out, nil
}
