package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/jobpilot/internal/config"
	"github.com/sells-group/jobpilot/internal/model"
)

func testFilter() *Filter {
	return New(config.FilterConfig{
		PrimaryLocations:   []string{"Boston", "Cambridge"},
		SecondaryLocations: []string{"New York"},
		AllowRemote:        true,
		ExcludedKeywords:   []string{"clearance", "staffing"},
		MinExperienceYears: 3,
		MaxExperienceYears: 10,
	})
}

func TestCheck_Location(t *testing.T) {
	f := testFilter()

	tests := []struct {
		name     string
		location string
		keep     bool
	}{
		{"primary", "Boston, MA", true},
		{"secondary", "New York, NY", true},
		{"remote allowed", "Remote", true},
		{"remote phrasing", "Work from home (US)", true},
		{"unknown passes", "", true},
		{"outside areas", "Austin, TX", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := f.Check(model.JobCandidate{Title: "Engineer", Location: tt.location})
			assert.Equal(t, tt.keep, r.Keep)
			if !tt.keep {
				assert.NotEmpty(t, r.Reason)
			}
		})
	}
}

func TestCheck_RemoteExcluded(t *testing.T) {
	f := New(config.FilterConfig{AllowRemote: false, PrimaryLocations: []string{"Boston"}})

	r := f.Check(model.JobCandidate{Title: "Engineer", Location: "Remote"})
	assert.False(t, r.Keep)
	assert.Contains(t, r.Reason, "remote")
}

func TestCheck_ExcludedKeywords(t *testing.T) {
	f := testFilter()

	r := f.Check(model.JobCandidate{Title: "Engineer (TS/SCI Clearance required)", Location: "Boston"})
	assert.False(t, r.Keep)
	assert.Contains(t, r.Reason, "clearance")

	r = f.Check(model.JobCandidate{Title: "Backend Engineer", Location: "Boston"})
	assert.True(t, r.Keep)
}

func TestCheck_NoConfigKeepsEverything(t *testing.T) {
	f := New(config.FilterConfig{AllowRemote: true})

	r := f.Check(model.JobCandidate{Title: "Anything", Location: "Anywhere on Earth"})
	assert.True(t, r.Keep)
}

func TestCheckDescription_ExperienceBand(t *testing.T) {
	f := testFilter()

	tests := []struct {
		name string
		desc string
		keep bool
	}{
		{"in band", "We need 5+ years of Go experience", true},
		{"range screens on floor", "3-5 years experience required", true},
		{"above max", "15+ years of leadership experience", false},
		{"below min", "1 year of experience is enough", false},
		{"no requirement stated", "Join our fast-growing team", true},
		{"lowest figure wins", "10 years in industry, 4+ years with Go", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := f.CheckDescription(tt.desc)
			assert.Equal(t, tt.keep, r.Keep, r.Reason)
		})
	}
}

func TestVerdict_FirstRejectionWins(t *testing.T) {
	f := testFilter()

	r := f.Verdict(model.Job{
		Title:           "Staffing Coordinator",
		Location:        "Austin, TX",
		FullDescription: "20 years required",
	})
	assert.False(t, r.Keep)
	assert.Contains(t, r.Reason, "staffing")
}
