package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/yanlabs/farsight/pkg/farcaster"
	"github.com/yanlabs/farsight/pkg/search"
)

// The fallback analysis pipeline has exactly two states, decided by a single
// guard on the catalyst's direct replies:
//
//	localSufficient — at least one reply exists; summarize the replies.
//	localSparse     — no replies; fall back to an external search scoped to
//	                  the cast text.
//
// Both states terminate in one context string which then feeds a fixed
// two-stage enrichment chain: topic extraction, then a recency-windowed
// context search, concatenated into the final synthesis prompt. Stage
// failures become literal explanatory strings in the report; the status is
// threaded as an enum so no stage inspects another's text to branch.
type pipelineState int

const (
	localSufficient pipelineState = iota
	localSparse
)

const (
	maxReplies      = 50
	replyPageSize   = 25
	maxReplyExcerpt = 20
)

// localContext resolves the pipeline's first state: the reply summary for
// localSufficient, or the fallback search digest for localSparse.
func (a *Analyzer) localContext(ctx context.Context, catalyst farcaster.TrendingCast, window search.Window, errs *[]string) (pipelineState, stageOutput) {
	replies, err := a.graph.FetchReplies(ctx, farcaster.CastID{FID: catalyst.AuthorFID, Hash: catalyst.Hash}, maxReplies, replyPageSize)
	if err != nil {
		a.recordUpstream(errs, "fetch replies", err)
		replies = nil
	}

	if len(replies) == 0 {
		a.logger.Debug("no local replies, falling back to external search", "cast", catalyst.Hash)
		results, err := a.searcher.Search(ctx, excerpt(catalyst.Text), window)
		if err != nil {
			a.recordUpstream(errs, "fallback search", err)
			return localSparse, stageFailure(fmt.Sprintf("No replies were found and the fallback search failed: %v", err))
		}
		if len(results) == 0 {
			return localSparse, stageFailure("No replies were found and the fallback search returned nothing.")
		}
		return localSparse, stageSuccess(search.Digest(results))
	}

	texts := make([]string, 0, len(replies))
	for i, reply := range replies {
		if i >= maxReplyExcerpt {
			break
		}
		texts = append(texts, reply.Text)
	}
	summary := a.generate(ctx, "reply summary", replySummaryPrompt(catalyst.Text, texts), 300)
	return localSufficient, summary
}

// extractTopic derives a short interest phrase from the terminal context and
// any profile text. On failure the catalyst text itself becomes the topic so
// the chain can continue explicitly degraded.
func (a *Analyzer) extractTopic(ctx context.Context, contextText stageOutput, profileText, fallback string) stageOutput {
	if contextText.status == stageFailed {
		return stageFailure(excerpt(fallback))
	}
	topic := a.generate(ctx, "topic extraction", topicPrompt(contextText.text, profileText), 40)
	if topic.status == stageFailed {
		return stageFailure(excerpt(fallback))
	}
	return stageSuccess(strings.TrimSpace(topic.text))
}

// searchContext runs the recency-windowed context search for the extracted
// topic.
func (a *Analyzer) searchContext(ctx context.Context, topic stageOutput, window search.Window, errs *[]string) stageOutput {
	results, err := a.searcher.Search(ctx, topic.text, window)
	if err != nil {
		a.recordUpstream(errs, "context search", err)
		return stageFailure(fmt.Sprintf("The context search for the %s could not be completed: %v", window.String(), err))
	}
	if len(results) == 0 {
		return stageFailure(fmt.Sprintf("The context search found nothing in the %s.", window.String()))
	}
	return stageSuccess(search.Digest(results))
}

// enrich runs the full pipeline for a catalyst cast and synthesizes the
// final narrative.
func (a *Analyzer) enrich(ctx context.Context, catalyst farcaster.TrendingCast, profileText string, window search.Window, errs *[]string) (topic, narrative string) {
	_, local := a.localContext(ctx, catalyst, window, errs)
	topicOut := a.extractTopic(ctx, local, profileText, catalyst.Text)
	searchOut := a.searchContext(ctx, topicOut, window, errs)

	prompt := trendingPrompt(catalystFrom(catalyst), topicOut.text, local.text, searchOut.text, window.String())
	synthesis := a.generate(ctx, "synthesis", prompt, 600)
	return topicOut.text, synthesis.text
}

// excerpt returns the first few words of text for use as a search query.
func excerpt(text string) string {
	words := strings.Fields(text)
	if len(words) > 12 {
		words = words[:12]
	}
	return strings.Join(words, " ")
}
