package agent

import (
	"context"
	"sync"
	"time"

	"github.com/yanlabs/farsight/pkg/farcaster"
)

const personaCastSample = 25

// Persona summarizes who a user is from their profile and recent casts. The
// profile and cast fetches have no data dependency, so they run
// concurrently; the orchestration waits for both before proceeding.
func (a *Analyzer) Persona(ctx context.Context, fid string) (*PersonaReport, error) {
	n, err := parseFID(fid)
	if err != nil {
		return nil, err
	}

	report := &PersonaReport{
		FID:         fid,
		GeneratedAt: time.Now().UTC(),
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
	report.Username = profile.Username

	texts := castTexts(casts, personaCastSample)
	if len(texts) == 0 && profile.Bio == "" {
		a.recordInsufficient(&report.Errors, "no casts or bio to analyze")
		report.Narrative = "There is not enough public activity on this account to sketch a persona yet."
		return report, nil
	}

	websiteContext := ""
	if profile.Website != "" {
		websiteContext = a.websiteMarkdown(ctx, profile.Website, &report.Errors)
	}

	prompt := personaPrompt(fid, profile.Username, profile.Bio, websiteContext, texts)
	narrative := a.generate(ctx, "persona summary", prompt, 500)
	report.Narrative = narrative.text

	a.logger.Info("persona analysis complete", "fid", fid, "username", profile.Username, "casts", len(texts))
	return report, nil
}
