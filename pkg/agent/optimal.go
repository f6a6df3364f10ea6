package agent

import (
	"context"
	"time"

	"github.com/yanlabs/farsight/pkg/farcaster"
	"github.com/yanlabs/farsight/pkg/timeslot"
)

const (
	maxCasts     = 300
	castPageSize = 100
)

const noDataNarrative = "No casting activity was found for this account yet, so there is no peak to report. " +
	"Once a few casts are published, run this analysis again."

// OptimalTime analyzes when a user's casts land and reports the peak UTC
// hour and weekday buckets, ties included. The returned error is non-nil
// only for invalid input; upstream failures are recorded in the report's
// errors list.
func (a *Analyzer) OptimalTime(ctx context.Context, fid string) (*OptimalTimeReport, error) {
	n, err := parseFID(fid)
	if err != nil {
		return nil, err
	}

	report := &OptimalTimeReport{
		FID:         fid,
		GeneratedAt: time.Now().UTC(),
		Errors:      []string{},
	}

	casts, err := a.graph.CollectCasts(ctx, n, maxCasts, castPageSize)
	if err != nil {
		a.recordUpstream(&report.Errors, "collect casts", err)
	}
	report.CastCount = len(casts)

	times := make([]time.Time, 0, len(casts))
	for _, cast := range casts {
		times = append(times, cast.Time())
	}
	hours, days := timeslot.Bucketize(times)
	report.HourTally = hours
	report.DayTally = days

	if len(casts) == 0 {
		a.recordInsufficient(&report.Errors, "no casts to analyze")
		report.Narrative = noDataNarrative
		return report, nil
	}

	report.PeakHours, report.PeakHourCount = timeslot.FindPeaks(hours)
	report.PeakDays, report.PeakDayCount = timeslot.FindPeaks(days)

	prompt := optimalTimePrompt(fid, report.CastCount, report.PeakHours, report.PeakHourCount, report.PeakDays, report.PeakDayCount)
	narrative := a.generate(ctx, "timing summary", prompt, 400)
	report.Narrative = narrative.text

	a.logger.Info("optimal time analysis complete",
		"fid", fid,
		"casts", report.CastCount,
		"peak_hours", report.PeakHours,
		"peak_days", report.PeakDays)
	return report, nil
}

// castTexts extracts up to limit cast texts for prompt context.
func castTexts(casts []farcaster.Cast, limit int) []string {
	texts := make([]string, 0, limit)
	for _, cast := range casts {
		if cast.Text == "" {
			continue
		}
		texts = append(texts, cast.Text)
		if len(texts) >= limit {
			break
		}
	}
	return texts
}
