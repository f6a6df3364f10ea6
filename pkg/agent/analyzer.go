// Package agent implements the Farcaster audience-analysis operations:
// optimal casting times, top fans, trending conversations, persona
// summaries, weekly reports, and cast ideas.
package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/yanlabs/farsight/pkg/farcaster"
	"github.com/yanlabs/farsight/pkg/gemini"
	"github.com/yanlabs/farsight/pkg/httpcache"
	"github.com/yanlabs/farsight/pkg/search"
)

// socialGraph is the slice of the Farcaster client the operations consume.
type socialGraph interface {
	CollectCasts(ctx context.Context, fid uint64, maxItems, pageSize int) ([]farcaster.Cast, error)
	CollectFollowerFIDs(ctx context.Context, targetFID uint64, maxItems, pageSize int) ([]uint64, error)
	FetchReplies(ctx context.Context, parent farcaster.CastID, maxItems, pageSize int) ([]farcaster.Cast, error)
	FetchProfile(ctx context.Context, fid uint64) (*farcaster.Profile, error)
	HydrateUsers(ctx context.Context, fids []uint64) ([]farcaster.User, error)
	FetchTrending(ctx context.Context, limit int) ([]farcaster.TrendingCast, error)
}

// generator produces natural-language completions.
type generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int32) (string, error)
}

// searcher issues recency-windowed external searches.
type searcher interface {
	Search(ctx context.Context, query string, window search.Window) ([]search.Result, error)
}

// Analyzer orchestrates the analysis operations. Each request builds its own
// accumulators and report; the Analyzer itself holds only configuration and
// shared clients.
type Analyzer struct {
	logger     *slog.Logger
	httpClient *http.Client
	cache      *httpcache.Cache
	do         func(context.Context, *http.Request) (*http.Response, error)
	graph      socialGraph
	llm        generator
	searcher   searcher
}

// geminiAdapter binds the gemini client to the Analyzer's cache and logger.
type geminiAdapter struct {
	client *gemini.Client
	cache  *httpcache.Cache
	logger *slog.Logger
}

func (g *geminiAdapter) Generate(ctx context.Context, prompt string, maxTokens int32) (string, error) {
	var cache gemini.CacheInterface
	if g.cache != nil {
		cache = g.cache
	}
	return g.client.Generate(ctx, prompt, maxTokens, cache, g.logger)
}

// New creates an Analyzer with the default logger.
func New(ctx context.Context, opts ...Option) *Analyzer {
	return NewWithLogger(ctx, slog.Default(), opts...)
}

// NewWithLogger creates an Analyzer.
func NewWithLogger(ctx context.Context, logger *slog.Logger, opts ...Option) *Analyzer {
	holder := &OptionHolder{}
	for _, opt := range opts {
		opt(holder)
	}

	a := &Analyzer{
		logger:     logger,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	if !holder.noCache {
		dir := holder.cacheDir
		if dir == "" {
			if userCacheDir, err := os.UserCacheDir(); err == nil {
				dir = filepath.Join(userCacheDir, "farsight")
			}
		}
		cache, err := httpcache.New(ctx, dir, 6*time.Hour, logger)
		if err != nil {
			logger.Debug("cache initialization failed", "error", err)
		} else {
			a.cache = cache
		}
	}

	cached := httpcache.NewClient(a.cache, retryDoer{a}, logger)
	a.do = cached.Do

	a.graph = farcaster.NewClient(logger, holder.farcasterAPIKey, a.do)
	a.searcher = search.NewClient(logger, holder.searchAPIKey, a.do)
	a.llm = &geminiAdapter{
		client: gemini.NewClient(holder.geminiAPIKey, holder.geminiModel),
		cache:  a.cache,
		logger: logger,
	}

	return a
}

// Close flushes and stops the response cache.
func (a *Analyzer) Close() error {
	if a.cache != nil {
		return a.cache.Close()
	}
	return nil
}

// retryDoer adapts the Analyzer's retrying round trip to httpcache.Doer.
type retryDoer struct {
	a *Analyzer
}

func (r retryDoer) Do(req *http.Request) (*http.Response, error) {
	return r.a.retryableHTTPDo(req.Context(), req)
}

// retryableHTTPDo performs an HTTP request with exponential backoff and
// jitter. Rate limits and server errors are retried; other statuses are
// returned to the caller as-is.
func (a *Analyzer) retryableHTTPDo(ctx context.Context, req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var lastErr error

	err := retry.Do(
		func() error {
			var err error
			resp, err = a.httpClient.Do(req.WithContext(ctx))
			if err != nil {
				lastErr = err
				return err
			}

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				body, _ := io.ReadAll(resp.Body)
				_ = resp.Body.Close()
				lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
				a.logger.Debug("retryable HTTP error",
					"status", resp.StatusCode,
					"url", req.URL.String())
				return lastErr
			}

			return nil
		},
		retry.Context(ctx),
		retry.Attempts(4),
		retry.Delay(time.Second),
		retry.MaxDelay(30*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			a.logger.Debug("retrying HTTP request",
				"attempt", n+1,
				"url", req.URL.String(),
				"error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("request failed after retries: %w", lastErr)
	}

	return resp, nil
}

// record converts a recovered error into its report string.
func record(errs *[]string, err error) {
	*errs = append(*errs, err.Error())
}

// recordUpstream wraps err as an UpstreamError and records it.
func (a *Analyzer) recordUpstream(errs *[]string, op string, err error) {
	upErr := &UpstreamError{Op: op, Err: err}
	a.logger.Warn("upstream call failed", "op", op, "error", err)
	record(errs, upErr)
}

// recordInsufficient records an InsufficientDataError for what.
func (a *Analyzer) recordInsufficient(errs *[]string, what string) {
	insErr := &InsufficientDataError{What: what}
	a.logger.Info("insufficient data", "what", what)
	record(errs, insErr)
}

// generate runs the LLM with a stage-tagged outcome: on failure the output
// text is the literal explanatory string that lands in the report.
func (a *Analyzer) generate(ctx context.Context, stage, prompt string, maxTokens int32) stageOutput {
	text, err := a.llm.Generate(ctx, prompt, maxTokens)
	if err != nil {
		a.logger.Warn("generation failed", "stage", stage, "error", err)
		return stageFailure(fmt.Sprintf("The %s step could not be completed: %v", stage, err))
	}
	return stageSuccess(text)
}

func parseFID(fid string) (uint64, error) {
	if !farcaster.IsValidFID(fid) {
		return 0, fmt.Errorf("invalid FID %q: must match ^\\d+$", fid)
	}
	n, err := strconv.ParseUint(fid, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid FID %q: %w", fid, err)
	}
	return n, nil
}
