package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/jobpilot/internal/model"
)

func TestCanonicalURL_StripsTrackingParams(t *testing.T) {
	a := CanonicalURL("https://www.linkedin.com/jobs/view/123?refId=abc&trackingId=xyz&utm_source=email")
	b := CanonicalURL("https://www.linkedin.com/jobs/view/123")
	assert.Equal(t, b, a)
}

func TestCanonicalURL_KeepsMeaningfulParams(t *testing.T) {
	u := CanonicalURL("https://boards.example.com/jobs?id=42&utm_campaign=daily")
	assert.Equal(t, "https://boards.example.com/jobs?id=42", u)
}

func TestCanonicalURL_HostCaseAndTrailingSlash(t *testing.T) {
	a := CanonicalURL("https://Example.COM/jobs/view/9/")
	b := CanonicalURL("https://example.com/jobs/view/9")
	assert.Equal(t, b, a)
}

func TestCanonicalURL_Invalid(t *testing.T) {
	assert.Equal(t, "", CanonicalURL(""))
	assert.Equal(t, "", CanonicalURL("not a url"))
}

func TestFingerprint_SameURLDifferentTracking(t *testing.T) {
	a := Fingerprint(model.JobCandidate{URL: "https://jobs.acme.com/p/1?utm_medium=email&ref=alert"})
	b := Fingerprint(model.JobCandidate{URL: "https://jobs.acme.com/p/1"})
	assert.Equal(t, b, a)
}

func TestFingerprint_FallbackTitleCompany(t *testing.T) {
	a := Fingerprint(model.JobCandidate{Title: "Senior Backend Engineer", Company: "Acme, Inc."})
	b := Fingerprint(model.JobCandidate{Title: "  senior   backend engineer ", Company: "ACME Inc"})
	assert.Equal(t, b, a)

	c := Fingerprint(model.JobCandidate{Title: "Senior Backend Engineer", Company: "Other Corp"})
	assert.NotEqual(t, a, c)
}

func TestFingerprint_Deterministic(t *testing.T) {
	cand := model.JobCandidate{URL: "https://jobs.acme.com/p/7"}
	assert.Equal(t, Fingerprint(cand), Fingerprint(cand))
	assert.Len(t, Fingerprint(cand), 16)
}
