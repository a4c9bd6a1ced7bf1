package enrich

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/jobpilot/internal/model"
)

// hoursPerYear converts hourly rates to annual figures (40h × 52 weeks).
const hoursPerYear = 2080

// amountPat matches one salary figure: "140k", "140,000", "140000".
const amountPat = `(\d{2,3}k|\d{2,3},\d{3}|\d{5,6})`

var (
	// "$140,000 - $160,000", "$140k-$160k", "140000 to 160000"
	salaryRangeRe = regexp.MustCompile(`(?i)\$?\s*` + amountPat + `\s*(?:-|–|to)\s*\$?\s*` + amountPat + `\b`)
	// "$150,000", "$150k" as a lone annual figure.
	salarySingleRe = regexp.MustCompile(`(?i)\$\s*` + amountPat + `\b`)
	// "$75/hr", "$55 per hour", "$48.50/hour"
	salaryHourlyRe = regexp.MustCompile(`(?i)\$\s*(\d{2,3}(?:\.\d{1,2})?)\s*(?:/|per\s+)(?:hr|hour)`)
)

// ExtractSalary pulls a compensation figure out of a job description and
// normalizes it to an annual range. The description is authoritative; estimate
// is the model's answer from the web search, used only when the description
// says nothing.
func ExtractSalary(description, estimate string) (string, model.SalaryConfidence) {
	if s, ok := salaryFromText(description); ok {
		return s.normalized, s.confidence
	}
	if estimate != "" {
		if s, ok := salaryFromText(estimate); ok {
			return s.normalized, model.SalaryLow
		}
		return strings.TrimSpace(estimate), model.SalaryLow
	}
	return "", model.SalaryNone
}

type salaryMatch struct {
	normalized string
	confidence model.SalaryConfidence
}

func salaryFromText(text string) (salaryMatch, bool) {
	if m := salaryRangeRe.FindStringSubmatch(text); m != nil {
		lo, hi := parseAmount(m[1]), parseAmount(m[2])
		if plausibleAnnual(lo) && plausibleAnnual(hi) && lo <= hi {
			return salaryMatch{
				normalized: fmt.Sprintf("%s-%s", formatAmount(lo), formatAmount(hi)),
				confidence: model.SalaryHigh,
			}, true
		}
	}
	if m := salaryHourlyRe.FindStringSubmatch(text); m != nil {
		rate, err := strconv.ParseFloat(m[1], 64)
		if err == nil && rate >= 15 && rate <= 500 {
			annual := int(rate * hoursPerYear)
			return salaryMatch{
				normalized: formatAmount(annual),
				confidence: model.SalaryMedium,
			}, true
		}
	}
	if m := salarySingleRe.FindStringSubmatch(text); m != nil {
		n := parseAmount(m[1])
		if plausibleAnnual(n) {
			return salaryMatch{
				normalized: formatAmount(n),
				confidence: model.SalaryMedium,
			}, true
		}
	}
	return salaryMatch{}, false
}

// parseAmount handles "140,000" and "140k" forms.
func parseAmount(s string) int {
	s = strings.ToLower(strings.ReplaceAll(s, ",", ""))
	if strings.HasSuffix(s, "k") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "k"))
		if err != nil {
			return 0
		}
		return n * 1000
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// plausibleAnnual rejects figures that are clearly not yearly salaries:
// "401k", "3-5 years", zip codes in addresses.
func plausibleAnnual(n int) bool {
	return n >= 30_000 && n <= 900_000
}

func formatAmount(n int) string {
	s := strconv.Itoa(n)
	var b strings.Builder
	b.WriteByte('$')
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}
