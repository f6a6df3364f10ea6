package farcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// FetchTrending returns the current trending feed, best first.
func (c *Client) FetchTrending(ctx context.Context, limit int) ([]TrendingCast, error) {
	apiURL := fmt.Sprintf("%s/v2/farcaster/feed/trending?limit=%d", c.apiBase, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req)

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetching trending feed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("API returned status %d (failed to read response)", resp.StatusCode)
		}
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Casts []struct {
			Hash   string `json:"hash"`
			Text   string `json:"text"`
			Author struct {
				FID      uint64 `json:"fid"`
				Username string `json:"username"`
			} `json:"author"`
			Replies struct {
				Count int `json:"count"`
			} `json:"replies"`
		} `json:"casts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	casts := make([]TrendingCast, 0, len(result.Casts))
	for _, cast := range result.Casts {
		casts = append(casts, TrendingCast{
			Hash:           cast.Hash,
			Text:           cast.Text,
			AuthorFID:      cast.Author.FID,
			AuthorUsername: cast.Author.Username,
			ReplyCount:     cast.Replies.Count,
		})
	}

	c.logger.Debug("fetched trending feed", "count", len(casts))
	return casts, nil
}
