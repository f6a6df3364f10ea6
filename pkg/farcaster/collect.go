package farcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

type messagePage struct {
	Messages      []Message `json:"messages"`
	NextPageToken string    `json:"nextPageToken"`
}

// collectMessages walks a cursor-paginated hub endpoint, keeping messages of
// wantType until maxItems have accumulated or the source runs out of pages.
//
// The accumulated result is truncated to exactly maxItems even when a
// continuation token remains. A page request failure stops the walk and
// returns whatever was accumulated alongside the error; there is no
// partial-page retry here (retries happen one layer down, in the injected
// do function). The page budget caps network calls at
// ceil(maxItems/pageSize)+1.
func (c *Client) collectMessages(ctx context.Context, baseURL, wantType string, maxItems, pageSize int) ([]Message, error) {
	if maxItems <= 0 {
		return nil, fmt.Errorf("maxItems must be positive, got %d", maxItems)
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("pageSize must be positive, got %d", pageSize)
	}

	maxPages := (maxItems+pageSize-1)/pageSize + 1

	var collected []Message
	pageToken := ""

	for page := 0; page < maxPages; page++ {
		pageURL := fmt.Sprintf("%s&pageSize=%d", baseURL, pageSize)
		if pageToken != "" {
			pageURL += "&pageToken=" + url.QueryEscape(pageToken)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
		if err != nil {
			return collected, fmt.Errorf("creating request: %w", err)
		}
		c.authorize(req)

		resp, err := c.do(ctx, req)
		if err != nil {
			return collected, fmt.Errorf("fetching page %d: %w", page+1, err)
		}

		result, err := decodePage(resp)
		if err != nil {
			return collected, fmt.Errorf("page %d: %w", page+1, err)
		}

		for _, msg := range result.Messages {
			if msg.Data.Type != wantType {
				continue
			}
			collected = append(collected, msg)
		}

		if len(collected) >= maxItems {
			collected = collected[:maxItems]
			break
		}
		if result.NextPageToken == "" {
			break
		}
		pageToken = result.NextPageToken
	}

	c.logger.Debug("collected hub messages", "url", baseURL, "type", wantType, "count", len(collected))
	return collected, nil
}

func decodePage(resp *http.Response) (*messagePage, error) {
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("hub returned status %d (failed to read response)", resp.StatusCode)
		}
		return nil, fmt.Errorf("hub returned status %d: %s", resp.StatusCode, string(body))
	}

	var result messagePage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &result, nil
}

// CollectCasts fetches up to maxItems of the user's casts in page order,
// keeping only cast-add messages.
func (c *Client) CollectCasts(ctx context.Context, fid uint64, maxItems, pageSize int) ([]Cast, error) {
	baseURL := fmt.Sprintf("%s/v1/castsByFid?fid=%d&reverse=true", c.hubBase, fid)
	messages, err := c.collectMessages(ctx, baseURL, MessageTypeCastAdd, maxItems, pageSize)

	casts := make([]Cast, 0, len(messages))
	for _, msg := range messages {
		cast := Cast{
			Hash:      msg.Hash,
			FID:       msg.Data.FID,
			Timestamp: msg.Data.Timestamp,
		}
		if msg.Data.CastAddBody != nil {
			cast.Text = msg.Data.CastAddBody.Text
		}
		casts = append(casts, cast)
	}

	if err != nil {
		return casts, fmt.Errorf("collecting casts for fid %d: %w", fid, err)
	}
	return casts, nil
}

// CollectFollowerFIDs fetches up to maxItems follower FIDs of the target
// user. The result may contain duplicates when pages overlap; callers dedupe
// once before hydration.
func (c *Client) CollectFollowerFIDs(ctx context.Context, targetFID uint64, maxItems, pageSize int) ([]uint64, error) {
	baseURL := fmt.Sprintf("%s/v1/linksByTargetFid?target_fid=%d&link_type=follow", c.hubBase, targetFID)
	messages, err := c.collectMessages(ctx, baseURL, MessageTypeLinkAdd, maxItems, pageSize)

	fids := make([]uint64, 0, len(messages))
	for _, msg := range messages {
		fids = append(fids, msg.Data.FID)
	}

	if err != nil {
		return fids, fmt.Errorf("collecting followers for fid %d: %w", targetFID, err)
	}
	return fids, nil
}

// FetchReplies fetches direct replies to a cast, up to maxItems.
func (c *Client) FetchReplies(ctx context.Context, parent CastID, maxItems, pageSize int) ([]Cast, error) {
	baseURL := fmt.Sprintf("%s/v1/castsByParent?fid=%d&hash=%s", c.hubBase, parent.FID, url.QueryEscape(parent.Hash))
	messages, err := c.collectMessages(ctx, baseURL, MessageTypeCastAdd, maxItems, pageSize)

	replies := make([]Cast, 0, len(messages))
	for _, msg := range messages {
		reply := Cast{
			Hash:      msg.Hash,
			FID:       msg.Data.FID,
			Timestamp: msg.Data.Timestamp,
		}
		if msg.Data.CastAddBody != nil {
			reply.Text = msg.Data.CastAddBody.Text
		}
		replies = append(replies, reply)
	}

	if err != nil {
		return replies, fmt.Errorf("fetching replies to %s: %w", parent.Hash, err)
	}
	return replies, nil
}
