package followup

import (
	"regexp"
	"strings"

	"github.com/sells-group/jobpilot/internal/model"
)

// legalSuffixes lists common legal entity suffixes to strip during company
// name normalization.
var legalSuffixes = []string{
	" LLC", " L.L.C.", " L.L.C",
	" INC", " INC.", " INCORPORATED",
	" CORP", " CORP.", " CORPORATION",
	" LTD", " LTD.", " LIMITED",
	" CO", " CO.",
	" PLC", " P.L.C.",
	" GMBH",
	" AB",
	" SAS",
}

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// NormalizeCompany standardizes a company name for matching: uppercase, legal
// suffixes stripped, punctuation removed, whitespace collapsed.
func NormalizeCompany(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	name = strings.ToUpper(name)

	for _, suffix := range legalSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}

	name = strings.NewReplacer(
		",", "",
		".", "",
		"'", "",
		"\"", "",
		"&", "AND",
		"-", " ",
	).Replace(name)

	name = multiSpaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// senderDomain extracts the bare domain from a From header, with common mail
// infrastructure prefixes removed so "careers.acme.com" matches "acme.com".
func senderDomain(from string) string {
	addr := from
	if i := strings.LastIndex(from, "<"); i >= 0 {
		addr = strings.TrimRight(from[i+1:], ">")
	}
	addr = strings.ToLower(strings.TrimSpace(addr))
	i := strings.LastIndex(addr, "@")
	if i < 0 {
		return ""
	}
	domain := addr[i+1:]
	for _, prefix := range []string{"mail.", "careers.", "jobs.", "talent.", "hire.", "recruiting.", "email."} {
		domain = strings.TrimPrefix(domain, prefix)
	}
	return domain
}

// atsDomains are applicant-tracking services that send on behalf of many
// companies; their domain says nothing about which job the email concerns.
var atsDomains = map[string]bool{
	"greenhouse.io":       true,
	"greenhouse-mail.io":  true,
	"lever.co":            true,
	"hire.lever.co":       true,
	"ashbyhq.com":         true,
	"myworkday.com":       true,
	"workablemail.com":    true,
	"smartrecruiters.com": true,
	"icims.com":           true,
	"bamboohr.com":        true,
}

// matchJob resolves which tracked job a follow-up concerns. Matching is
// conservative: exactly one hit links the email, zero or several leaves it
// unlinked for manual review. Two applications at the same company both hit,
// so their follow-ups stay unlinked rather than guessing between them.
// Candidates must fall inside the lookback window already applied by the
// caller.
func matchJob(email model.Email, jobs []model.Job) (jobID string, ambiguous bool) {
	text := strings.ToUpper(email.Subject + " " + email.Body())
	domain := senderDomain(email.From)
	if atsDomains[domain] {
		domain = ""
	}

	var hits []string
	for _, j := range jobs {
		norm := NormalizeCompany(j.Company)
		if norm == "" {
			continue
		}
		if companyMentioned(norm, text) || domainMatches(norm, domain) {
			hits = append(hits, j.JobID)
		}
	}

	switch len(hits) {
	case 1:
		return hits[0], false
	case 0:
		return "", false
	default:
		return "", true
	}
}

// companyMentioned checks for the normalized company name on a word boundary
// inside the normalized email text.
func companyMentioned(norm, upperText string) bool {
	idx := 0
	for {
		i := strings.Index(upperText[idx:], norm)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(norm)
		beforeOK := start == 0 || !isWordChar(upperText[start-1])
		afterOK := end == len(upperText) || !isWordChar(upperText[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

// domainMatches compares "ACME CORP" → "acmecorp" against "acmecorp.com".
func domainMatches(norm, domain string) bool {
	if domain == "" {
		return false
	}
	slug := strings.ToLower(strings.ReplaceAll(norm, " ", ""))
	if slug == "" {
		return false
	}
	host := domain
	if i := strings.Index(host, "."); i > 0 {
		host = host[:i]
	}
	return host == slug
}
