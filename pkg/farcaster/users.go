package farcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// FetchProfile assembles a user's profile from their userDataByFid records.
func (c *Client) FetchProfile(ctx context.Context, fid uint64) (*Profile, error) {
	apiURL := fmt.Sprintf("%s/v1/userDataByFid?fid=%d", c.hubBase, fid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req)

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetching profile for fid %d: %w", fid, err)
	}
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

	var result struct {
		Messages []Message `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	profile := &Profile{FID: fid}
	for _, msg := range result.Messages {
		if msg.Data.UserDataBody == nil {
			continue
		}
		switch msg.Data.UserDataBody.Type {
		case UserDataTypeUsername:
			profile.Username = msg.Data.UserDataBody.Value
		case UserDataTypeDisplay:
			profile.DisplayName = msg.Data.UserDataBody.Value
		case UserDataTypeBio:
			profile.Bio = msg.Data.UserDataBody.Value
		case UserDataTypeURL:
			profile.Website = msg.Data.UserDataBody.Value
		}
	}

	c.logger.Debug("fetched profile", "fid", fid, "username", profile.Username)
	return profile, nil
}

// bulkChunkSize is the maximum number of FIDs the bulk endpoint accepts per
// request.
const bulkChunkSize = 100

// HydrateUsers resolves FIDs into account summaries via the bulk endpoint,
// chunking the input. The input is expected to be deduplicated already;
// hydration preserves the API's response order within each chunk. A chunk
// request failure stops hydration and returns what resolved so far.
func (c *Client) HydrateUsers(ctx context.Context, fids []uint64) ([]User, error) {
	var users []User

	for start := 0; start < len(fids); start += bulkChunkSize {
		end := start + bulkChunkSize
		if end > len(fids) {
			end = len(fids)
		}

		chunk := make([]string, 0, end-start)
		for _, fid := range fids[start:end] {
			chunk = append(chunk, strconv.FormatUint(fid, 10))
		}

		apiURL := fmt.Sprintf("%s/v2/farcaster/user/bulk?fids=%s", c.apiBase, strings.Join(chunk, ","))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
		if err != nil {
			return users, fmt.Errorf("creating request: %w", err)
		}
		c.authorize(req)

		resp, err := c.do(ctx, req)
		if err != nil {
			return users, fmt.Errorf("hydrating users (chunk at %d): %w", start, err)
		}

		chunkUsers, err := decodeUsers(resp)
		if err != nil {
			return users, fmt.Errorf("hydrating users (chunk at %d): %w", start, err)
		}
		users = append(users, chunkUsers...)
	}

	c.logger.Debug("hydrated users", "requested", len(fids), "resolved", len(users))
	return users, nil
}

func decodeUsers(resp *http.Response) ([]User, error) {
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
		Users []struct {
			FID           uint64 `json:"fid"`
			Username      string `json:"username"`
			DisplayName   string `json:"display_name"`
			FollowerCount int    `json:"follower_count"`
			Profile       struct {
				Bio struct {
					Text string `json:"text"`
				} `json:"bio"`
			} `json:"profile"`
		} `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	users := make([]User, 0, len(result.Users))
	for _, u := range result.Users {
		users = append(users, User{
			FID:           u.FID,
			Username:      u.Username,
			DisplayName:   u.DisplayName,
			FollowerCount: u.FollowerCount,
			Bio:           u.Profile.Bio.Text,
		})
	}
	return users, nil
}
