// Package parser turns raw job-alert emails into job candidates. Each alert
// source gets its own parser; a registry dispatches on sender and subject, and
// an LLM-backed parser catches everything the source-specific ones don't.
package parser

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/jobpilot/internal/model"
)

// Parser extracts job candidates from one alert email. Parse never returns an
// error: malformed listings are logged and skipped so one bad entry cannot
// sink the rest of the email.
type Parser interface {
	Tag() string
	Matches(e model.Email) bool
	Parse(ctx context.Context, e model.Email) []model.JobCandidate
}

// Registry dispatches each email to the first parser that claims it,
// in registration order.
type Registry struct {
	parsers  []Parser
	fallback Parser
}

// NewRegistry builds a registry with the given parsers. The fallback runs when
// no parser matches; it may be nil, in which case unmatched emails yield no
// candidates.
func NewRegistry(fallback Parser, parsers ...Parser) *Registry {
	return &Registry{parsers: parsers, fallback: fallback}
}

// Parse routes the email to its parser and returns the extracted candidates
// plus the tag of the parser that handled it.
func (r *Registry) Parse(ctx context.Context, e model.Email) ([]model.JobCandidate, string) {
	for _, p := range r.parsers {
		if p.Matches(e) {
			return p.Parse(ctx, e), p.Tag()
		}
	}
	if r.fallback == nil {
		zap.L().Warn("parser: no parser matched email",
			zap.String("message_ref", e.MessageRef),
			zap.String("from", e.From),
		)
		return nil, ""
	}
	return r.fallback.Parse(ctx, e), r.fallback.Tag()
}

var (
	anchorRe = regexp.MustCompile(`(?is)<a[^>]+href="([^"]+)"[^>]*>(.*?)</a>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// stripTags flattens an HTML fragment to plain text.
func stripTags(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'", "&nbsp;", " ").Replace(s)
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// titleSeparators is ordered: the first separator found in the text wins.
var titleSeparators = []string{" at ", " - ", " – ", "|"}

// splitTitleCompany splits an alert line like "Senior Engineer at Acme" or
// "Senior Engineer - Acme" into its parts. When no separator is present the
// whole text becomes the title and the company stays empty for the caller to
// fill from context.
func splitTitleCompany(text string) (title, company string) {
	for _, sep := range titleSeparators {
		if i := strings.Index(text, sep); i > 0 {
			return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+len(sep):])
		}
	}
	// Last resort: "Title, Company" split on the first comma. Any later
	// commas belong to the company.
	if i := strings.Index(text, ","); i > 0 {
		return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+1:])
	}
	return strings.TrimSpace(text), ""
}

// senderMatches reports whether the From header's address ends in the given
// domain. Handles "Display Name <alerts@linkedin.com>" forms.
func senderMatches(from, domain string) bool {
	addr := from
	if i := strings.LastIndex(from, "<"); i >= 0 {
		addr = strings.TrimRight(from[i+1:], ">")
	}
	addr = strings.ToLower(strings.TrimSpace(addr))
	if i := strings.LastIndex(addr, "@"); i >= 0 {
		addr = addr[i+1:]
	}
	return addr == domain || strings.HasSuffix(addr, "."+domain)
}

// keepCandidate validates a parsed listing. Missing both title and company
// means the entry carries nothing to dedupe or score on.
func keepCandidate(tag string, e model.Email, c model.JobCandidate) bool {
	if c.Title == "" && c.Company == "" {
		zap.L().Warn("parser: skipping malformed listing",
			zap.String("parser", tag),
			zap.String("message_ref", e.MessageRef),
			zap.String("url", c.URL),
		)
		return false
	}
	return true
}
