// Package search provides recency-windowed external web search for the
// analysis agents.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Window is a trailing recency constraint on a search.
type Window int

// Supported trailing windows. The trending pipeline uses LastDay or
// LastTwoDays; the weekly report uses LastWeek.
const (
	LastDay Window = iota
	LastTwoDays
	LastWeek
)

// Days returns the window length in days as the API expects it.
func (w Window) Days() int {
	switch w {
	case LastDay:
		return 1
	case LastTwoDays:
		return 2
	case LastWeek:
		return 7
	default:
		return 7
	}
}

func (w Window) String() string {
	switch w {
	case LastDay:
		return "last 24 hours"
	case LastTwoDays:
		return "last 48 hours"
	case LastWeek:
		return "last 7 days"
	default:
		return "last 7 days"
	}
}

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"content"`
}

// DefaultEndpoint is the Tavily search API endpoint.
const DefaultEndpoint = "https://api.tavily.com/search"

const maxResults = 5

// Client queries the Tavily search API with an explicit recency window.
type Client struct {
	logger   *slog.Logger
	do       func(context.Context, *http.Request) (*http.Response, error)
	apiKey   string
	endpoint string
}

// NewClient creates a search client. The do function performs the HTTP
// round trip, so callers inject caching and retries the same way as for the
// Farcaster client.
func NewClient(logger *slog.Logger, apiKey string, do func(context.Context, *http.Request) (*http.Response, error)) *Client {
	return &Client{
		logger:   logger,
		do:       do,
		apiKey:   apiKey,
		endpoint: DefaultEndpoint,
	}
}

// SetEndpoint overrides the API endpoint, primarily for tests.
func (c *Client) SetEndpoint(endpoint string) {
	c.endpoint = endpoint
}

// Search issues a news search for query constrained to the trailing window
// and returns up to five hits.
func (c *Client) Search(ctx context.Context, query string, window Window) ([]Result, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, fmt.Errorf("search API key is missing")
	}

	body := map[string]any{
		"api_key": c.apiKey,
		"query":   query,
		"topic":   "news",
		"days":    window.Days(),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("search API returned status %d (failed to read response)", resp.StatusCode)
		}
		return nil, fmt.Errorf("search API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var response struct {
		Results []Result `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	results := response.Results
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	c.logger.Debug("search completed", "query", query, "window", window.String(), "results", len(results))
	return results, nil
}

// Digest flattens results into a compact text block for prompt assembly.
func Digest(results []Result) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s (%s)\n   %s\n", i+1, r.Title, r.URL, r.Snippet)
	}
	return b.String()
}
