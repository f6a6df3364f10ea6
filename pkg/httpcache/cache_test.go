package httpcache

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCacheRoundTrip(t *testing.T) {
	cache, err := New(context.Background(), "", time.Hour, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, found := cache.Get("https://example.com/a"); found {
		t.Fatal("unexpected hit on empty cache")
	}

	if err := cache.Set("https://example.com/a", []byte("payload")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, found := cache.Get("https://example.com/a")
	if !found || string(data) != "payload" {
		t.Errorf("Get = %q, %v", data, found)
	}
}

func TestCacheKeysPostByBody(t *testing.T) {
	cache, err := New(context.Background(), "", time.Hour, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	url := "https://example.com/search"
	if err := cache.SetAPICall(url, []byte("query-one"), []byte("result-one")); err != nil {
		t.Fatalf("SetAPICall: %v", err)
	}

	if _, found := cache.APICall(url, []byte("query-two")); found {
		t.Error("different request body must not share a cache entry")
	}
	data, found := cache.APICall(url, []byte("query-one"))
	if !found || string(data) != "result-one" {
		t.Errorf("APICall = %q, %v", data, found)
	}
}

func TestCachePersistsAcrossRestarts(t *testing.T) {
	dir := t.TempDir()

	cache, err := New(context.Background(), dir, time.Hour, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := cache.Set("https://example.com/a", []byte("persisted")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reloaded, err := New(context.Background(), dir, time.Hour, testLogger())
	if err != nil {
		t.Fatalf("New after restart: %v", err)
	}
	defer func() {
		if err := reloaded.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	}()

	data, found := reloaded.Get("https://example.com/a")
	if !found || string(data) != "persisted" {
		t.Errorf("entry did not survive restart: %q, %v", data, found)
	}
}

// countingDoer serves canned responses and counts upstream calls.
type countingDoer struct {
	status int
	body   string
	calls  int
}

func (d *countingDoer) Do(_ *http.Request) (*http.Response, error) {
	d.calls++
	status := d.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(d.body))),
		Header:     make(http.Header),
	}, nil
}

func TestClientServesGetFromCache(t *testing.T) {
	cache, err := New(context.Background(), "", time.Hour, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	doer := &countingDoer{body: "fresh"}
	client := NewClient(cache, doer, testLogger())

	req, _ := http.NewRequest(http.MethodGet, "https://example.com/data", http.NoBody)

	resp, err := client.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("first Do: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "fresh" {
		t.Errorf("first body = %q", body)
	}

	resp, err = client.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("second Do: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "fresh" {
		t.Errorf("second body = %q", body)
	}
	if resp.Header.Get("X-From-Cache") != "true" {
		t.Error("second response missing the cache marker")
	}
	if doer.calls != 1 {
		t.Errorf("upstream called %d times, want 1", doer.calls)
	}
}

func TestClientDoesNotCacheErrors(t *testing.T) {
	cache, err := New(context.Background(), "", time.Hour, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	doer := &countingDoer{status: http.StatusBadGateway, body: "boom"}
	client := NewClient(cache, doer, testLogger())

	req, _ := http.NewRequest(http.MethodGet, "https://example.com/flaky", http.NoBody)

	for range 2 {
		resp, err := client.Do(context.Background(), req)
		if err != nil {
			t.Fatalf("Do: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusBadGateway {
			t.Errorf("status = %d", resp.StatusCode)
		}
	}
	if doer.calls != 2 {
		t.Errorf("upstream called %d times, want 2 (errors must not be cached)", doer.calls)
	}
}

func TestNilCachePassesThrough(t *testing.T) {
	doer := &countingDoer{body: "direct"}
	client := NewClient(nil, doer, testLogger())

	req, _ := http.NewRequest(http.MethodGet, "https://example.com/data", http.NoBody)
	for range 2 {
		resp, err := client.Do(context.Background(), req)
		if err != nil {
			t.Fatalf("Do: %v", err)
		}
		_ = resp.Body.Close()
	}
	if doer.calls != 2 {
		t.Errorf("upstream called %d times, want 2", doer.calls)
	}
}
