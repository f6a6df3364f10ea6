package agent

import (
	"context"
	"time"

	"github.com/yanlabs/farsight/pkg/search"
)

const trendingFeedSize = 10

// Trending analyzes the current top trending conversation: the top-ranked
// cast becomes the catalyst and runs through the fallback pipeline with a
// 48-hour recency window.
func (a *Analyzer) Trending(ctx context.Context) (*TrendingReport, error) {
	report := &TrendingReport{
		GeneratedAt: time.Now().UTC(),
		Errors:      []string{},
	}

	casts, err := a.graph.FetchTrending(ctx, trendingFeedSize)
	if err != nil {
		a.recordUpstream(&report.Errors, "fetch trending feed", err)
	}
	if len(casts) == 0 {
		a.recordInsufficient(&report.Errors, "no trending casts available")
		report.Narrative = "Nothing is trending right now; check back in a little while."
		return report, nil
	}

	catalyst := casts[0]
	report.Catalyst = catalystFrom(catalyst)

	topic, narrative := a.enrich(ctx, catalyst, "", search.LastTwoDays, &report.Errors)
	report.Topic = topic
	report.Narrative = narrative

	a.logger.Info("trending analysis complete", "catalyst", catalyst.Hash, "topic", topic)
	return report, nil
}
