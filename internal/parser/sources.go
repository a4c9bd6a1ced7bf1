package parser

import (
	"context"
	"strings"

	"github.com/sells-group/jobpilot/internal/model"
)

// htmlAlertParser extracts listings from a known alert sender's HTML. A job
// link is any anchor whose href contains one of the source's link markers; the
// anchor text carries title, company, and sometimes location separated by
// middle dots or the usual title separators.
type htmlAlertParser struct {
	tag         string
	domain      string
	linkMarkers []string
}

// NewLinkedIn parses LinkedIn job alert digests.
func NewLinkedIn() Parser {
	return &htmlAlertParser{
		tag:         "linkedin",
		domain:      "linkedin.com",
		linkMarkers: []string{"/jobs/view/", "/comm/jobs/view/"},
	}
}

// NewIndeed parses Indeed job alert digests.
func NewIndeed() Parser {
	return &htmlAlertParser{
		tag:         "indeed",
		domain:      "indeed.com",
		linkMarkers: []string{"/rc/clk", "/viewjob", "/pagead/clk"},
	}
}

// NewGlassdoor parses Glassdoor job alert digests.
func NewGlassdoor() Parser {
	return &htmlAlertParser{
		tag:         "glassdoor",
		domain:      "glassdoor.com",
		linkMarkers: []string{"/job-listing/", "/partner/jobListing"},
	}
}

func (p *htmlAlertParser) Tag() string { return p.tag }

func (p *htmlAlertParser) Matches(e model.Email) bool {
	if e.Source != "" {
		return strings.EqualFold(e.Source, p.tag)
	}
	return senderMatches(e.From, p.domain)
}

// boilerplate anchor texts that are navigation, not listings.
var boilerplateAnchors = map[string]bool{
	"view job":          true,
	"view jobs":         true,
	"see all jobs":      true,
	"apply now":         true,
	"easy apply":        true,
	"unsubscribe":       true,
	"manage alerts":     true,
	"see more jobs":     true,
	"view all jobs":     true,
	"update your alert": true,
}

func (p *htmlAlertParser) Parse(_ context.Context, e model.Email) []model.JobCandidate {
	var out []model.JobCandidate
	seen := make(map[string]bool)

	for _, m := range anchorRe.FindAllStringSubmatch(e.HTML, -1) {
		href, inner := m[1], m[2]
		if !p.isJobLink(href) || seen[href] {
			continue
		}
		text := stripTags(inner)
		if text == "" || boilerplateAnchors[strings.ToLower(text)] {
			continue
		}
		seen[href] = true

		c := candidateFromText(text)
		c.URL = href
		c.Source = p.tag
		c.EmailDate = e.Date
		if keepCandidate(p.tag, e, c) {
			out = append(out, c)
		}
	}

	// Plain-text digests have no anchors worth matching; scan lines instead.
	if len(out) == 0 && e.Text != "" {
		out = p.parsePlainText(e)
	}
	return out
}

func (p *htmlAlertParser) isJobLink(href string) bool {
	for _, m := range p.linkMarkers {
		if strings.Contains(href, m) {
			return true
		}
	}
	return false
}

func (p *htmlAlertParser) parsePlainText(e model.Email) []model.JobCandidate {
	var out []model.JobCandidate
	for _, line := range strings.Split(e.Text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "http") {
			continue
		}
		title, company := splitTitleCompany(line)
		if title == "" || company == "" {
			continue
		}
		out = append(out, model.JobCandidate{
			Title:     title,
			Company:   company,
			Source:    p.tag,
			EmailDate: e.Date,
		})
	}
	return out
}

// candidateFromText parses an anchor text like
// "Senior Backend Engineer · Acme · Remote" or "Senior Backend Engineer at Acme".
func candidateFromText(text string) model.JobCandidate {
	if strings.Contains(text, "·") {
		parts := strings.Split(text, "·")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		c := model.JobCandidate{Title: parts[0]}
		if len(parts) > 1 {
			c.Company = parts[1]
		}
		if len(parts) > 2 {
			c.Location = parts[2]
		}
		return c
	}
	title, company := splitTitleCompany(text)
	return model.JobCandidate{Title: title, Company: company}
}
