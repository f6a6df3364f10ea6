package agent

import (
	"context"
	"sort"
	"time"

	"github.com/yanlabs/farsight/pkg/dedupe"
)

const (
	maxFollowers     = 500
	followerPageSize = 100
	leaderboardSize  = 7
)

// TopFans ranks a user's followers by their own reach. Follower FIDs are
// deduplicated exactly once, before chunked hydration.
func (a *Analyzer) TopFans(ctx context.Context, fid string) (*TopFansReport, error) {
	n, err := parseFID(fid)
	if err != nil {
		return nil, err
	}

	report := &TopFansReport{
		FID:         fid,
		GeneratedAt: time.Now().UTC(),
		Fans:        []Fan{},
		Errors:      []string{},
	}

	fids, err := a.graph.CollectFollowerFIDs(ctx, n, maxFollowers, followerPageSize)
	if err != nil {
		a.recordUpstream(&report.Errors, "collect followers", err)
	}
	fids = dedupe.Unique(fids)

	if len(fids) == 0 {
		a.recordInsufficient(&report.Errors, "no followers found")
		report.Narrative = "No followers were found for this account yet, so there is no leaderboard to show."
		return report, nil
	}

	users, err := a.graph.HydrateUsers(ctx, fids)
	if err != nil {
		a.recordUpstream(&report.Errors, "hydrate followers", err)
	}
	if len(users) == 0 {
		a.recordInsufficient(&report.Errors, "no follower profiles resolved")
		report.Narrative = "Follower profiles could not be resolved, so there is no leaderboard to show."
		return report, nil
	}

	sort.SliceStable(users, func(i, j int) bool {
		return users[i].FollowerCount > users[j].FollowerCount
	})
	if len(users) > leaderboardSize {
		users = users[:leaderboardSize]
	}

	for _, user := range users {
		report.Fans = append(report.Fans, Fan{
			FID:           user.FID,
			Username:      user.Username,
			DisplayName:   user.DisplayName,
			FollowerCount: user.FollowerCount,
		})
	}

	narrative := a.generate(ctx, "fan leaderboard", topFansPrompt(fid, report.Fans), 400)
	report.Narrative = narrative.text

	a.logger.Info("top fans analysis complete", "fid", fid, "followers", len(fids), "ranked", len(report.Fans))
	return report, nil
}
