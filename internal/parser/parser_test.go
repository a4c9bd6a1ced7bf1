package parser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/jobpilot/internal/model"
)

var alertDate = time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

const linkedinHTML = `
<html><body>
<p>New jobs for you</p>
<a href="https://www.linkedin.com/jobs/view/1234?trk=alert">Senior Backend Engineer · Acme · Remote</a>
<a href="https://www.linkedin.com/jobs/view/5678?trk=alert">Platform Engineer at Initech</a>
<a href="https://www.linkedin.com/jobs/view/1234?trk=alert">Senior Backend Engineer · Acme · Remote</a>
<a href="https://www.linkedin.com/comm/jobs/view/9999">View job</a>
<a href="https://www.linkedin.com/settings">Unsubscribe</a>
</body></html>`

func linkedinEmail() model.Email {
	return model.Email{
		MessageRef: "<alert-1@linkedin.com>",
		From:       "LinkedIn Job Alerts <jobalerts-noreply@linkedin.com>",
		Subject:    "30+ new jobs for backend engineer",
		Date:       alertDate,
		HTML:       linkedinHTML,
	}
}

func TestLinkedIn_Matches(t *testing.T) {
	p := NewLinkedIn()
	assert.True(t, p.Matches(linkedinEmail()))
	assert.False(t, p.Matches(model.Email{From: "noreply@indeed.com"}))
	// Explicit source hint wins over sender.
	assert.True(t, p.Matches(model.Email{Source: "linkedin", From: "fwd@gmail.com"}))
}

func TestLinkedIn_Parse(t *testing.T) {
	got := NewLinkedIn().Parse(context.Background(), linkedinEmail())

	require.Len(t, got, 2) // duplicate URL and boilerplate anchors dropped
	assert.Equal(t, "Senior Backend Engineer", got[0].Title)
	assert.Equal(t, "Acme", got[0].Company)
	assert.Equal(t, "Remote", got[0].Location)
	assert.Equal(t, "linkedin", got[0].Source)
	assert.Equal(t, alertDate, got[0].EmailDate)

	assert.Equal(t, "Platform Engineer", got[1].Title)
	assert.Equal(t, "Initech", got[1].Company)
}

func TestLinkedIn_ParsePlainTextFallback(t *testing.T) {
	e := model.Email{
		From: "jobalerts-noreply@linkedin.com",
		Date: alertDate,
		Text: "New jobs for you\n\nStaff Engineer at Hooli\nhttps://www.linkedin.com/jobs/view/1\n\nSRE - Pied Piper\n",
	}
	got := NewLinkedIn().Parse(context.Background(), e)

	require.Len(t, got, 2)
	assert.Equal(t, "Staff Engineer", got[0].Title)
	assert.Equal(t, "Hooli", got[0].Company)
	assert.Equal(t, "SRE", got[1].Title)
	assert.Equal(t, "Pied Piper", got[1].Company)
}

func TestIndeed_Parse(t *testing.T) {
	e := model.Email{
		From: "Indeed <alert@indeed.com>",
		Date: alertDate,
		HTML: `<a href="https://www.indeed.com/rc/clk?jk=abc">Backend Developer - Globex</a>
		       <a href="https://www.indeed.com/cmp/globex">Globex company page</a>`,
	}
	p := NewIndeed()
	require.True(t, p.Matches(e))

	got := p.Parse(context.Background(), e)
	require.Len(t, got, 1)
	assert.Equal(t, "Backend Developer", got[0].Title)
	assert.Equal(t, "Globex", got[0].Company)
	assert.Equal(t, "indeed", got[0].Source)
}

func TestGlassdoor_Parse(t *testing.T) {
	e := model.Email{
		From: "noreply@glassdoor.com",
		Date: alertDate,
		HTML: `<a href="https://www.glassdoor.com/job-listing/123">Data Engineer · Umbrella · Boston, MA</a>`,
	}
	got := NewGlassdoor().Parse(context.Background(), e)

	require.Len(t, got, 1)
	assert.Equal(t, "Data Engineer", got[0].Title)
	assert.Equal(t, "Umbrella", got[0].Company)
	assert.Equal(t, "Boston, MA", got[0].Location)
}

func TestSplitTitleCompany(t *testing.T) {
	tests := []struct {
		in      string
		title   string
		company string
	}{
		{"Senior Engineer at Acme", "Senior Engineer", "Acme"},
		{"Senior Engineer - Acme", "Senior Engineer", "Acme"},
		{"Senior Engineer | Acme", "Senior Engineer", "Acme"},
		{"Senior Engineer, Acme", "Senior Engineer", "Acme"},
		// Only the first comma splits; the rest stay with the company.
		{"Senior Engineer, Acme, Inc.", "Senior Engineer", "Acme, Inc."},
		// " at " outranks the dash when both appear.
		{"Engineer at Acme - Remote Corp", "Engineer", "Acme - Remote Corp"},
		{"Just a title", "Just a title", ""},
	}
	for _, tt := range tests {
		title, company := splitTitleCompany(tt.in)
		assert.Equal(t, tt.title, title, tt.in)
		assert.Equal(t, tt.company, company, tt.in)
	}
}

// --- Registry ---

type fakeExtractor struct {
	candidates []model.JobCandidate
	err        error
	calls      int
}

func (f *fakeExtractor) ExtractJobs(_ context.Context, _ string) ([]model.JobCandidate, error) {
	f.calls++
	return f.candidates, f.err
}

func TestRegistry_DispatchOrder(t *testing.T) {
	ext := &fakeExtractor{}
	reg := NewRegistry(NewLLMParser(ext), NewLinkedIn(), NewIndeed(), NewGlassdoor())

	got, tag := reg.Parse(context.Background(), linkedinEmail())
	assert.Equal(t, "linkedin", tag)
	assert.Len(t, got, 2)
	assert.Zero(t, ext.calls)
}

func TestRegistry_FallsBackToLLM(t *testing.T) {
	ext := &fakeExtractor{candidates: []model.JobCandidate{
		{Title: "Compiler Engineer", Company: "Cyberdyne"},
		{Title: "", Company: ""}, // malformed, must be dropped
	}}
	reg := NewRegistry(NewLLMParser(ext), NewLinkedIn(), NewIndeed(), NewGlassdoor())

	e := model.Email{
		MessageRef: "<alert-2@jobs.workable.com>",
		From:       "alerts@jobs.workable.com",
		Date:       alertDate,
		HTML:       "<p>some unknown digest format</p>",
	}
	got, tag := reg.Parse(context.Background(), e)

	assert.Equal(t, "llm", tag)
	require.Len(t, got, 1)
	assert.Equal(t, "Cyberdyne", got[0].Company)
	assert.Equal(t, "unknown", got[0].Source)
	assert.Equal(t, alertDate, got[0].EmailDate)
	assert.Equal(t, 1, ext.calls)
}

func TestLLMParser_ExtractionFailureYieldsNothing(t *testing.T) {
	ext := &fakeExtractor{err: errors.New("rate limited")}
	p := NewLLMParser(ext)

	got := p.Parse(context.Background(), model.Email{MessageRef: "<x>"})
	assert.Empty(t, got)
}

func TestRegistry_NoFallback(t *testing.T) {
	reg := NewRegistry(nil, NewLinkedIn())

	got, tag := reg.Parse(context.Background(), model.Email{From: "alerts@unknown.dev"})
	assert.Empty(t, got)
	assert.Empty(t, tag)
}
