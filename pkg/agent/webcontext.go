package agent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
)

const maxWebsiteContext = 2000

// websiteMarkdown fetches a profile's linked website and converts it to
// markdown for prompt context. Failures are recorded and return an empty
// string; a broken personal site never fails the analysis.
func (a *Analyzer) websiteMarkdown(ctx context.Context, url string, errs *[]string) string {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		a.recordUpstream(errs, "fetch website", err)
		return ""
	}

	resp, err := a.do(ctx, req)
	if err != nil {
		a.recordUpstream(errs, "fetch website", err)
		return ""
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			a.logger.Debug("failed to close website response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		a.recordUpstream(errs, "fetch website", fmt.Errorf("HTTP %d from %s", resp.StatusCode, url))
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		a.recordUpstream(errs, "read website", err)
		return ""
	}

	markdown, err := md.ConvertString(string(body))
	if err != nil {
		a.recordUpstream(errs, "convert website", err)
		return ""
	}

	markdown = strings.TrimSpace(markdown)
	if len(markdown) > maxWebsiteContext {
		markdown = markdown[:maxWebsiteContext]
	}
	a.logger.Debug("website context fetched", "url", url, "chars", len(markdown))
	return markdown
}
