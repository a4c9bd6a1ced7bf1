package followup

import (
	"context"
	"regexp"

	"github.com/sells-group/jobpilot/internal/model"
	"github.com/sells-group/jobpilot/internal/provider"
)

// Classifier is the provider surface the scanner needs for emails the keyword
// tier can't place.
type Classifier interface {
	ClassifyEmail(ctx context.Context, subject, sender, body string) (*provider.EmailClassification, error)
}

// keywordConfidence is what the regex tier reports. It only fires on
// unambiguous phrasings, so it outranks typical model confidence.
const keywordConfidence = 0.95

// keywordRules is the cheap first tier. Order matters: rejection phrasings are
// checked before interview ones because rejection emails routinely mention
// "the interview process".
var keywordRules = []struct {
	class model.Classification
	re    *regexp.Regexp
}{
	{model.ClassRejection, regexp.MustCompile(`(?i)\b(not (be )?moving forward|decided (to move forward|to proceed) with other|pursue other candidates|position has been filled|no longer under consideration|unfortunately[^.]{0,60}(not|other candidates))\b`)},
	{model.ClassOffer, regexp.MustCompile(`(?i)\b(pleased to (offer|extend)|offer letter|formal offer|extend (you )?an offer)\b`)},
	{model.ClassInterview, regexp.MustCompile(`(?i)\b(schedule (a|your) (call|interview|chat)|interview invitation|phone screen|technical interview|would love to (talk|chat|speak)|book a time)\b`)},
	{model.ClassAssessment, regexp.MustCompile(`(?i)\b(coding (challenge|assessment|exercise)|take.home (assignment|test|exercise)|hackerrank|codesignal|online assessment)\b`)},
	{model.ClassConfirmation, regexp.MustCompile(`(?i)\b(application (was |has been )?(received|submitted)|thank you for applying|we('ve| have) received your application)\b`)},
}

// classify runs the two-tier classifier: high-precision keyword patterns
// first, the model only for whatever they can't place. A model failure
// degrades to ClassOther rather than blocking the scan.
func (s *Scanner) classify(ctx context.Context, e model.Email) (model.Classification, float64, error) {
	text := e.Subject + "\n" + e.Body()
	for _, rule := range keywordRules {
		if rule.re.MatchString(text) {
			return rule.class, keywordConfidence, nil
		}
	}

	c, err := s.classifier.ClassifyEmail(ctx, e.Subject, e.From, e.Body())
	if err != nil {
		return model.ClassOther, 0, err
	}
	return c.Classification, c.Confidence, nil
}
