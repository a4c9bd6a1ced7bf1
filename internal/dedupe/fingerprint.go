// Package dedupe derives stable job fingerprints from canonicalized source
// data so that repeated scans of the same mailbox are idempotent.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/jobpilot/internal/model"
)

// trackingParams are query parameters stripped before fingerprinting. Job
// boards decorate the same posting URL differently per email, so anything
// carrying referral or campaign state must go.
var trackingParams = map[string]bool{
	"trk":             true,
	"trkemail":        true,
	"tracking":        true,
	"trackingid":      true,
	"ref":             true,
	"refid":           true,
	"referer":         true,
	"gclid":           true,
	"fbclid":          true,
	"mcid":            true,
	"midtoken":        true,
	"ottok":           true,
	"eblanguage":      true,
	"from":            true,
	"alid":            true,
	"originalreferer": true,
}

// CanonicalURL strips tracking query parameters and normalizes the URL so
// that links differing only by campaign decoration compare equal. Returns ""
// for unparseable or empty input.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme == "" {
		u.Scheme = "https"
	}

	q := u.Query()
	for key := range q {
		lower := strings.ToLower(key)
		if trackingParams[lower] || strings.HasPrefix(lower, "utm_") {
			q.Del(key)
		}
	}

	// Rebuild the query with sorted keys for a deterministic string.
	if len(q) == 0 {
		u.RawQuery = ""
	} else {
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			for _, v := range q[k] {
				if b.Len() > 0 {
					b.WriteByte('&')
				}
				b.WriteString(url.QueryEscape(k))
				b.WriteByte('=')
				b.WriteString(url.QueryEscape(v))
			}
		}
		u.RawQuery = b.String()
	}

	u.Path = strings.TrimRight(u.Path, "/")
	return u.String()
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeText lowercases and collapses a string to space-separated
// alphanumeric tokens for fingerprinting.
func normalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnumRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Fingerprint computes the deterministic job_id for a candidate: the hash of
// its canonical URL, falling back to normalized title+company when no usable
// URL exists.
func Fingerprint(c model.JobCandidate) string {
	if canonical := CanonicalURL(c.URL); canonical != "" {
		return hashID(canonical)
	}
	return hashID(normalizeText(c.Title) + "|" + normalizeText(c.Company))
}

func hashID(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}
