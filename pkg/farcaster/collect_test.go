package farcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(serverURL string) *Client {
	c := NewClient(testLogger(), "test-key", func(ctx context.Context, req *http.Request) (*http.Response, error) {
		return http.DefaultClient.Do(req.WithContext(ctx))
	})
	c.SetBaseURLs(serverURL, serverURL)
	return c
}

// castPageHandler serves total cast-add messages across cursor pages of the
// requested pageSize, emitting a continuation token until the last page.
func castPageHandler(t *testing.T, total int, calls *int) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		*calls++

		pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
		offset := 0
		if token := r.URL.Query().Get("pageToken"); token != "" {
			offset, _ = strconv.Atoi(token)
		}

		page := messagePage{}
		for i := offset; i < offset+pageSize && i < total; i++ {
			page.Messages = append(page.Messages, Message{
				Hash: fmt.Sprintf("0x%04d", i),
				Data: MessageData{
					Type:        MessageTypeCastAdd,
					FID:         42,
					Timestamp:   int64(i * 3600),
					CastAddBody: &CastAddBody{Text: fmt.Sprintf("cast %d", i)},
				},
			})
		}
		if offset+pageSize < total {
			page.NextPageToken = strconv.Itoa(offset + pageSize)
		}

		if err := json.NewEncoder(w).Encode(page); err != nil {
			t.Errorf("encoding page: %v", err)
		}
	}
}

func TestCollectCastsRespectsMaxItems(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(castPageHandler(t, 1000, &calls))
	defer srv.Close()

	client := newTestClient(srv.URL)
	casts, err := client.CollectCasts(context.Background(), 42, 250, 100)
	if err != nil {
		t.Fatalf("CollectCasts: %v", err)
	}

	if len(casts) != 250 {
		t.Errorf("collected %d casts, want exactly 250", len(casts))
	}
	// ceil(250/100)+1 = 4 is the contract's upper bound.
	if calls > 4 {
		t.Errorf("made %d network calls, want at most 4", calls)
	}
	// Page order must be preserved.
	if casts[0].Text != "cast 0" || casts[249].Text != "cast 249" {
		t.Errorf("page order not preserved: first=%q last=%q", casts[0].Text, casts[249].Text)
	}
}

func TestCollectCastsStopsWhenSourceRunsOut(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(castPageHandler(t, 37, &calls))
	defer srv.Close()

	client := newTestClient(srv.URL)
	casts, err := client.CollectCasts(context.Background(), 42, 500, 20)
	if err != nil {
		t.Fatalf("CollectCasts: %v", err)
	}
	if len(casts) != 37 {
		t.Errorf("collected %d casts, want all 37", len(casts))
	}
}

func TestCollectCastsFiltersNonAddMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		page := messagePage{
			Messages: []Message{
				{Hash: "0xaa", Data: MessageData{Type: MessageTypeCastAdd, FID: 42, CastAddBody: &CastAddBody{Text: "keep"}}},
				{Hash: "0xbb", Data: MessageData{Type: "MESSAGE_TYPE_CAST_REMOVE", FID: 42}},
				{Hash: "0xcc", Data: MessageData{Type: MessageTypeCastAdd, FID: 42, CastAddBody: &CastAddBody{Text: "keep too"}}},
			},
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	casts, err := client.CollectCasts(context.Background(), 42, 10, 10)
	if err != nil {
		t.Fatalf("CollectCasts: %v", err)
	}
	if len(casts) != 2 {
		t.Fatalf("collected %d casts, want 2 (remove messages filtered)", len(casts))
	}
	if casts[0].Text != "keep" || casts[1].Text != "keep too" {
		t.Errorf("unexpected casts: %+v", casts)
	}
}

func TestCollectCastsReturnsPartialResultOnPageError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
			return
		}
		page := messagePage{NextPageToken: "next"}
		for i := 0; i < 10; i++ {
			page.Messages = append(page.Messages, Message{
				Hash: fmt.Sprintf("0x%02d", i),
				Data: MessageData{Type: MessageTypeCastAdd, FID: 42, CastAddBody: &CastAddBody{Text: "x"}},
			})
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	casts, err := client.CollectCasts(context.Background(), 42, 100, 10)
	if err == nil {
		t.Fatal("expected an error from the failing second page")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error should carry the upstream status, got: %v", err)
	}
	if len(casts) != 10 {
		t.Errorf("collected %d casts, want the 10 from the successful first page", len(casts))
	}
}

func TestCollectCastsValidatesArguments(t *testing.T) {
	client := newTestClient("http://unused.invalid")

	if _, err := client.CollectCasts(context.Background(), 42, 0, 10); err == nil {
		t.Error("expected error for maxItems=0")
	}
	if _, err := client.CollectCasts(context.Background(), 42, 10, 0); err == nil {
		t.Error("expected error for pageSize=0")
	}
}

func TestCollectFollowerFIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("link_type"); got != "follow" {
			t.Errorf("link_type = %q, want follow", got)
		}
		page := messagePage{
			Messages: []Message{
				{Data: MessageData{Type: MessageTypeLinkAdd, FID: 7, LinkBody: &LinkBody{Type: "follow", TargetFID: 42}}},
				{Data: MessageData{Type: MessageTypeLinkAdd, FID: 9, LinkBody: &LinkBody{Type: "follow", TargetFID: 42}}},
				{Data: MessageData{Type: MessageTypeLinkAdd, FID: 7, LinkBody: &LinkBody{Type: "follow", TargetFID: 42}}},
			},
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	fids, err := client.CollectFollowerFIDs(context.Background(), 42, 100, 50)
	if err != nil {
		t.Fatalf("CollectFollowerFIDs: %v", err)
	}
	// Duplicates are intentionally preserved here; dedupe happens once,
	// upstream of hydration.
	if len(fids) != 3 {
		t.Errorf("collected %d fids, want 3", len(fids))
	}
}

func TestFetchRepliesTargetsParent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("hash"); got != "0xparent" {
			t.Errorf("hash = %q, want 0xparent", got)
		}
		page := messagePage{
			Messages: []Message{
				{Hash: "0xr1", Data: MessageData{Type: MessageTypeCastAdd, FID: 5, CastAddBody: &CastAddBody{Text: "nice"}}},
			},
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	replies, err := client.FetchReplies(context.Background(), CastID{FID: 42, Hash: "0xparent"}, 50, 25)
	if err != nil {
		t.Fatalf("FetchReplies: %v", err)
	}
	if len(replies) != 1 || replies[0].Text != "nice" {
		t.Errorf("unexpected replies: %+v", replies)
	}
}

func TestIsValidFID(t *testing.T) {
	valid := []string{"1", "42", "123456789"}
	invalid := []string{"", "abc", "12a", "-1", "1.5", " 42"}

	for _, s := range valid {
		if !IsValidFID(s) {
			t.Errorf("IsValidFID(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidFID(s) {
			t.Errorf("IsValidFID(%q) = true, want false", s)
		}
	}
}
