package agent

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanlabs/farsight/pkg/dedupe"
	"github.com/yanlabs/farsight/pkg/farcaster"
	"github.com/yanlabs/farsight/pkg/search"
)

const reportFanCount = 5

// WeeklyReport combines the follower leaderboard with the week's top
// trending conversation. The follower and trending fetches are independent
// and run concurrently; the trending catalyst then runs through the fallback
// pipeline with a 7-day recency window.
func (a *Analyzer) WeeklyReport(ctx context.Context, fid string) (*WeeklyReport, error) {
	n, err := parseFID(fid)
	if err != nil {
		return nil, err
	}

	report := &WeeklyReport{
		FID:          fid,
		GeneratedAt:  time.Now().UTC(),
		NewFollowers: []Fan{},
		Errors:       []string{},
	}

	var (
		wg          sync.WaitGroup
		fids        []uint64
		fidsErr     error
		trending    []farcaster.TrendingCast
		trendingErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		fids, fidsErr = a.graph.CollectFollowerFIDs(ctx, n, maxFollowers, followerPageSize)
	}()
	go func() {
		defer wg.Done()
		trending, trendingErr = a.graph.FetchTrending(ctx, trendingFeedSize)
	}()
	wg.Wait()

	if fidsErr != nil {
		a.recordUpstream(&report.Errors, "collect followers", fidsErr)
	}
	if trendingErr != nil {
		a.recordUpstream(&report.Errors, "fetch trending feed", trendingErr)
	}

	fids = dedupe.Unique(fids)
	if len(fids) > 0 {
		users, err := a.graph.HydrateUsers(ctx, fids)
		if err != nil {
			a.recordUpstream(&report.Errors, "hydrate followers", err)
		}
		sort.SliceStable(users, func(i, j int) bool {
			return users[i].FollowerCount > users[j].FollowerCount
		})
		if len(users) > reportFanCount {
			users = users[:reportFanCount]
		}
		for _, user := range users {
			report.NewFollowers = append(report.NewFollowers, Fan{
				FID:           user.FID,
				Username:      user.Username,
				DisplayName:   user.DisplayName,
				FollowerCount: user.FollowerCount,
			})
		}
	} else {
		a.recordInsufficient(&report.Errors, "no followers found")
	}

	topic := ""
	searchDigest := ""
	if len(trending) > 0 {
		catalyst := trending[0]
		report.Catalyst = catalystFrom(catalyst)

		_, local := a.localContext(ctx, catalyst, search.LastWeek, &report.Errors)
		topicOut := a.extractTopic(ctx, local, "", catalyst.Text)
		searchOut := a.searchContext(ctx, topicOut, search.LastWeek, &report.Errors)
		topic = topicOut.text
		searchDigest = searchOut.text
	} else {
		a.recordInsufficient(&report.Errors, "no trending casts available")
		searchDigest = "No trending conversation was available this week."
	}

	if len(report.NewFollowers) == 0 && report.Catalyst == nil {
		report.Narrative = "There is not enough activity this week to build a report; check back after some new follows or casts."
		return report, nil
	}

	prompt := weeklyReportPrompt(fid, report.NewFollowers, report.Catalyst, topic, searchDigest)
	narrative := a.generate(ctx, "weekly report", prompt, 700)
	report.Narrative = narrative.text

	a.logger.Info("weekly report complete",
		"fid", fid,
		"new_followers", len(report.NewFollowers),
		"has_catalyst", report.Catalyst != nil)
	return report, nil
}
