// Package filter applies the cheap local screens that run before any model
// call: location preferences, excluded title keywords, and experience-range
// checks against the job description.
package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/jobpilot/internal/config"
	"github.com/sells-group/jobpilot/internal/model"
)

// Result is one screen's verdict. Reason is only set on rejection.
type Result struct {
	Keep   bool
	Reason string
}

func keep() Result { return Result{Keep: true} }

func reject(format string, a ...any) Result {
	return Result{Reason: fmt.Sprintf(format, a...)}
}

// Filter holds the configured preferences. Zero-value config keeps everything.
type Filter struct {
	cfg config.FilterConfig
}

func New(cfg config.FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Check screens a candidate on location and title keywords. Unknown locations
// pass: rejecting on missing data would silently drop real listings, and the
// scoring stage sees the full description later anyway.
func (f *Filter) Check(c model.JobCandidate) Result {
	if r := f.checkKeywords(c.Title); !r.Keep {
		return r
	}
	return f.checkLocation(c.Location)
}

func (f *Filter) checkKeywords(title string) Result {
	lower := strings.ToLower(title)
	for _, kw := range f.cfg.ExcludedKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return reject("title contains excluded keyword %q", kw)
		}
	}
	return keep()
}

var remoteRe = regexp.MustCompile(`(?i)\b(remote|anywhere|work from home|wfh)\b`)

func (f *Filter) checkLocation(location string) Result {
	if location == "" {
		return keep()
	}
	if remoteRe.MatchString(location) {
		if f.cfg.AllowRemote {
			return keep()
		}
		return reject("remote roles excluded")
	}
	if len(f.cfg.PrimaryLocations) == 0 && len(f.cfg.SecondaryLocations) == 0 {
		return keep()
	}
	if matchesAny(location, f.cfg.PrimaryLocations) || matchesAny(location, f.cfg.SecondaryLocations) {
		return keep()
	}
	return reject("location %q outside configured areas", location)
}

func matchesAny(location string, areas []string) bool {
	lower := strings.ToLower(location)
	for _, a := range areas {
		if a != "" && strings.Contains(lower, strings.ToLower(a)) {
			return true
		}
	}
	return false
}

// experienceRe matches requirements like "5+ years", "3-5 years", "7 yrs".
var experienceRe = regexp.MustCompile(`(?i)(\d{1,2})\s*(?:\+|\s*-\s*(\d{1,2}))?\s*(?:years?|yrs?)`)

// CheckDescription screens the enriched description for an experience
// requirement outside the configured band. A description that states no
// requirement passes.
func (f *Filter) CheckDescription(desc string) Result {
	if f.cfg.MinExperienceYears == 0 && f.cfg.MaxExperienceYears == 0 {
		return keep()
	}

	years, ok := requiredYears(desc)
	if !ok {
		return keep()
	}
	if f.cfg.MaxExperienceYears > 0 && years > f.cfg.MaxExperienceYears {
		return reject("requires %d years experience, above maximum %d", years, f.cfg.MaxExperienceYears)
	}
	if f.cfg.MinExperienceYears > 0 && years < f.cfg.MinExperienceYears {
		return reject("requires %d years experience, below minimum %d", years, f.cfg.MinExperienceYears)
	}
	return keep()
}

// requiredYears returns the lowest years figure mentioned: "3-5 years" and
// "5+ years" both screen on their floor, which is what the posting actually
// requires.
func requiredYears(desc string) (int, bool) {
	matches := experienceRe.FindAllStringSubmatch(desc, -1)
	if len(matches) == 0 {
		return 0, false
	}
	minYears := -1
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if minYears < 0 || n < minYears {
			minYears = n
		}
	}
	if minYears < 0 {
		return 0, false
	}
	return minYears, true
}

// Verdict merges the local screens for a stored job: title keywords, location,
// then description. First rejection wins.
func (f *Filter) Verdict(job model.Job) Result {
	if r := f.checkKeywords(job.Title); !r.Keep {
		return r
	}
	if r := f.checkLocation(job.Location); !r.Keep {
		return r
	}
	return f.CheckDescription(job.FullDescription)
}
