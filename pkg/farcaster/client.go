// Package farcaster provides a client for hub-style Farcaster APIs: cursor
// paginated cast and follower collection, profile lookup, bulk hydration,
// and the trending feed.
package farcaster

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
)

// DefaultHubBase is the default hub gateway for v1 protocol endpoints.
const DefaultHubBase = "https://hub-api.neynar.com"

// DefaultAPIBase is the default base for v2 aggregate endpoints (bulk user
// hydration, trending feed).
const DefaultAPIBase = "https://api.neynar.com"

// Client provides methods for interacting with the Farcaster APIs.
type Client struct {
	logger  *slog.Logger
	do      func(context.Context, *http.Request) (*http.Response, error)
	apiKey  string
	hubBase string
	apiBase string
}

// NewClient creates a Farcaster API client. The do function performs the
// actual HTTP round trip and is where callers inject caching and retries.
func NewClient(logger *slog.Logger, apiKey string, do func(context.Context, *http.Request) (*http.Response, error)) *Client {
	return &Client{
		logger:  logger,
		do:      do,
		apiKey:  apiKey,
		hubBase: DefaultHubBase,
		apiBase: DefaultAPIBase,
	}
}

// SetBaseURLs overrides the hub and API bases, primarily for tests.
func (c *Client) SetBaseURLs(hubBase, apiBase string) {
	c.hubBase = hubBase
	c.apiBase = apiBase
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}

var validFID = regexp.MustCompile(`^\d+$`)

// IsValidFID reports whether s is a well-formed numeric-string FID.
func IsValidFID(s string) bool {
	return validFID.MatchString(s)
}
