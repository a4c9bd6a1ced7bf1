package enrich

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultLogoTimeout = 3 * time.Second

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// LogoFetcher resolves a company logo URL. It is strictly best-effort: any
// failure returns an empty string, never an error, and the configured timeout
// caps how long enrichment waits for it.
type LogoFetcher struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

func NewLogoFetcher(timeout time.Duration, baseURL string) *LogoFetcher {
	if timeout <= 0 {
		timeout = defaultLogoTimeout
	}
	if baseURL == "" {
		baseURL = "https://logo.clearbit.com"
	}
	return &LogoFetcher{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		timeout: timeout,
	}
}

// Fetch probes the logo service for the company's domain guess. A 200 means
// the URL is servable and gets stored; anything else means no logo.
func (f *LogoFetcher) Fetch(ctx context.Context, company string) string {
	domain := guessDomain(company)
	if domain == "" {
		return ""
	}
	logoURL := fmt.Sprintf("%s/%s", f.baseURL, domain)

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, logoURL, nil)
	if err != nil {
		return ""
	}
	resp, err := f.client.Do(req)
	if err != nil {
		zap.L().Debug("enrich: logo probe failed",
			zap.String("company", company),
			zap.Error(err),
		)
		return ""
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return ""
	}
	return logoURL
}

// guessDomain turns "Acme Corp" into "acmecorp.com". Crude, but a wrong guess
// just 404s and costs nothing.
func guessDomain(company string) string {
	slug := nonAlnumRe.ReplaceAllString(strings.ToLower(company), "")
	if slug == "" {
		return ""
	}
	return slug + ".com"
}
