package agent

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/yanlabs/farsight/pkg/farcaster"
	"github.com/yanlabs/farsight/pkg/search"
)

var ideaLinePattern = regexp.MustCompile(`^\s*\d+[.)]\s*`)

// CastIdeas suggests casts for a user: their profile and recent casts drive
// topic extraction, a 48-hour search supplies fresh context, and the model
// returns a numbered list that is parsed into individual ideas.
func (a *Analyzer) CastIdeas(ctx context.Context, fid string) (*CastIdeasReport, error) {
	n, err := parseFID(fid)
	if err != nil {
		return nil, err
	}

	report := &CastIdeasReport{
		FID:         fid,
		GeneratedAt: time.Now().UTC(),
		Ideas:       []string{},
		Errors:      []string{},
	}

	var (
		wg         sync.WaitGroup
		profile    *farcaster.Profile
		profileErr error
		casts      []farcaster.Cast
		castsErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		profile, profileErr = a.graph.FetchProfile(ctx, n)
	}()
	go func() {
		defer wg.Done()
		casts, castsErr = a.graph.CollectCasts(ctx, n, maxCasts, castPageSize)
	}()
	wg.Wait()

	if profileErr != nil {
		a.recordUpstream(&report.Errors, "fetch profile", profileErr)
		profile = &farcaster.Profile{FID: n}
	}
	if castsErr != nil {
		a.recordUpstream(&report.Errors, "collect casts", castsErr)
	}

	texts := castTexts(casts, personaCastSample)
	if len(texts) == 0 && profile.Bio == "" {
		a.recordInsufficient(&report.Errors, "no casts or bio to derive a topic from")
		return report, nil
	}

	castBlock := strings.Join(texts, "\n")
	topicOut := a.extractTopic(ctx, stageSuccess(castBlock), profile.Bio, castBlock)
	report.Topic = topicOut.text

	searchOut := a.searchContext(ctx, topicOut, search.LastTwoDays, &report.Errors)

	ideas := a.generate(ctx, "cast ideas", castIdeasPrompt(fid, report.Topic, searchOut.text), 500)
	if ideas.status == stageFailed {
		report.Errors = append(report.Errors, ideas.text)
		return report, nil
	}
	report.Ideas = parseIdeaList(ideas.text)

	a.logger.Info("cast ideas complete", "fid", fid, "topic", report.Topic, "ideas", len(report.Ideas))
	return report, nil
}

// parseIdeaList splits a numbered-list completion into individual ideas,
// stripping the numbering. Non-list lines are dropped.
func parseIdeaList(text string) []string {
	ideas := []string{}
	for _, line := range strings.Split(text, "\n") {
		if !ideaLinePattern.MatchString(line) {
			continue
		}
		idea := strings.TrimSpace(ideaLinePattern.ReplaceAllString(line, ""))
		if idea != "" {
			ideas = append(ideas, idea)
		}
	}
	return ideas
}
