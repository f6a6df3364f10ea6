// Package httpcache provides an in-memory response cache with optional disk
// persistence, plus an HTTP client wrapper that consults it for GET and
// keyed POST requests.
package httpcache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
)

// Entry is a cached response body with its expiry.
type Entry struct {
	ExpiresAt time.Time `json:"expires_at"`
	Data      []byte    `json:"data"`
}

// Cache wraps an otter cache keyed by hashed request identity. When dir is
// non-empty the contents are persisted to disk periodically and on Close.
type Cache struct {
	cache      *otter.Cache[string, Entry]
	logger     *slog.Logger
	saveCancel context.CancelFunc
	dir        string
	saveWg     sync.WaitGroup
	ttl        time.Duration
	mu         sync.Mutex
}

const persistFile = "farsight-cache.gob"

// New creates a cache with the given TTL. An empty dir selects memory-only
// operation with no persistence goroutine.
func New(ctx context.Context, dir string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	cache := otter.Must(&otter.Options[string, Entry]{
		MaximumSize:      50_000,
		InitialCapacity:  1_000,
		ExpiryCalculator: otter.ExpiryWriting[string, Entry](ttl),
	})

	c := &Cache{
		cache:  cache,
		dir:    dir,
		ttl:    ttl,
		logger: logger,
	}

	if dir == "" {
		logger.Debug("cache running memory-only")
		return c, nil
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	if err := c.loadFromDisk(); err != nil {
		logger.Warn("failed to load cache from disk", "error", err)
	}
	logger.Info("cache initialized", "dir", dir, "entries", c.cache.EstimatedSize())

	c.startPeriodicSave(ctx)
	return c, nil
}

func cacheKey(url string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached body for a GET of url.
func (c *Cache) Get(url string) ([]byte, bool) {
	return c.lookup(cacheKey(url, nil), url)
}

// Set stores the body for a GET of url.
func (c *Cache) Set(url string, data []byte) error {
	c.store(cacheKey(url, nil), url, data)
	return nil
}

// APICall returns the cached body for a POST of requestBody to url.
func (c *Cache) APICall(url string, requestBody []byte) ([]byte, bool) {
	return c.lookup(cacheKey(url, requestBody), url)
}

// SetAPICall stores the body for a POST of requestBody to url.
func (c *Cache) SetAPICall(url string, requestBody, data []byte) error {
	c.store(cacheKey(url, requestBody), url, data)
	return nil
}

func (c *Cache) lookup(key, url string) ([]byte, bool) {
	entry, found := c.cache.GetIfPresent(key)
	if !found {
		c.logger.Debug("cache miss", "url", url)
		return nil, false
	}
	// otter expires on write TTL already, but guard against clock edge cases
	if time.Now().After(entry.ExpiresAt) {
		c.cache.Invalidate(key)
		return nil, false
	}
	return entry.Data, true
}

func (c *Cache) store(key, url string, data []byte) {
	c.cache.Set(key, Entry{Data: data, ExpiresAt: time.Now().Add(c.ttl)})
	c.logger.Debug("cache set", "url", url, "size", len(data))
}

func (c *Cache) loadFromDisk() error {
	path := filepath.Join(c.dir, persistFile)

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening cache file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			c.logger.Debug("failed to close cache file", "error", closeErr)
		}
	}()

	var entries map[string]Entry
	if err := gob.NewDecoder(file).Decode(&entries); err != nil {
		return fmt.Errorf("decoding cache file: %w", err)
	}

	now := time.Now()
	loaded := 0
	for key, entry := range entries {
		if now.Before(entry.ExpiresAt) {
			c.cache.Set(key, entry)
			loaded++
		}
	}
	c.logger.Info("loaded cache from disk", "path", path, "valid_entries", loaded, "expired_entries", len(entries)-loaded)
	return nil
}

func (c *Cache) saveToDisk() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := filepath.Join(c.dir, persistFile)
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	defer func() {
		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			c.logger.Debug("failed to remove temp file", "error", removeErr)
		}
	}()

	entries := make(map[string]Entry)
	now := time.Now()
	c.cache.All()(func(key string, entry Entry) bool {
		if now.Before(entry.ExpiresAt) {
			entries[key] = entry
		}
		return true
	})

	if err := gob.NewEncoder(file).Encode(entries); err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing cache file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing cache file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("replacing cache file: %w", err)
	}

	c.logger.Debug("cache saved to disk", "entries", len(entries), "path", path)
	return nil
}

func (c *Cache) startPeriodicSave(ctx context.Context) {
	saveCtx, cancel := context.WithCancel(ctx)
	c.saveCancel = cancel

	c.saveWg.Add(1)
	go func() {
		defer c.saveWg.Done()

		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-saveCtx.Done():
				return
			case <-ticker.C:
				if err := c.saveToDisk(); err != nil {
					c.logger.Error("periodic cache save failed", "error", err)
				}
			}
		}
	}()
}

// Close stops the persistence goroutine and writes a final snapshot.
func (c *Cache) Close() error {
	if c.saveCancel != nil {
		c.saveCancel()
	}
	c.saveWg.Wait()

	if c.dir == "" {
		return nil
	}
	if err := c.saveToDisk(); err != nil {
		c.logger.Error("final cache save failed", "error", err)
		return err
	}
	return nil
}

// Doer is the subset of http.Client used by the cached wrapper.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps an HTTP client with response caching. GET responses are keyed
// by URL; POST responses by URL plus request body, so repeated identical
// queries (bulk hydrations, LLM calls routed over HTTP) are served locally.
type Client struct {
	cache  *Cache
	doer   Doer
	logger *slog.Logger
}

// NewClient creates a caching HTTP client. A nil cache disables caching.
func NewClient(cache *Cache, doer Doer, logger *slog.Logger) *Client {
	return &Client{cache: cache, doer: doer, logger: logger}
}

// Do performs req, serving from and filling the cache where possible. Only
// 200 responses are cached.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.cache == nil {
		return c.doer.Do(req.WithContext(ctx))
	}

	url := req.URL.String()

	switch req.Method {
	case http.MethodGet:
		if data, found := c.cache.Get(url); found {
			return cannedResponse(req, data), nil
		}
		resp, err := c.doer.Do(req.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		return c.fill(resp, func(body []byte) error { return c.cache.Set(url, body) })

	case http.MethodPost:
		var requestBody []byte
		if req.Body != nil {
			var err error
			requestBody, err = io.ReadAll(req.Body)
			if err != nil {
				return nil, fmt.Errorf("reading request body: %w", err)
			}
			req.Body = io.NopCloser(bytes.NewReader(requestBody))
		}
		if data, found := c.cache.APICall(url, requestBody); found {
			return cannedResponse(req, data), nil
		}
		resp, err := c.doer.Do(req.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		return c.fill(resp, func(body []byte) error { return c.cache.SetAPICall(url, requestBody, body) })

	default:
		return c.doer.Do(req.WithContext(ctx))
	}
}

func (c *Client) fill(resp *http.Response, save func([]byte) error) (*http.Response, error) {
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	body, err := io.ReadAll(resp.Body)
	if closeErr := resp.Body.Close(); closeErr != nil {
		c.logger.Debug("failed to close response body", "error", closeErr)
	}
	if err != nil {
		return nil, err
	}
	if err := save(body); err != nil {
		c.logger.Debug("cache set failed", "error", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

func cannedResponse(req *http.Request, data []byte) *http.Response {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(data)),
		Header:     make(http.Header),
		Request:    req,
	}
	resp.Header.Set("X-From-Cache", "true")
	return resp
}
