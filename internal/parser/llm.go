package parser

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/jobpilot/internal/model"
)

// Extractor is the one provider operation the fallback parser needs.
type Extractor interface {
	ExtractJobs(ctx context.Context, html string) ([]model.JobCandidate, error)
}

// LLMParser handles alert sources without a dedicated parser by asking the
// model to pull listings out of the raw body. It matches everything, so it
// belongs at the registry's fallback slot, never in the ordered list.
type LLMParser struct {
	extractor Extractor
}

func NewLLMParser(extractor Extractor) *LLMParser {
	return &LLMParser{extractor: extractor}
}

func (p *LLMParser) Tag() string                { return "llm" }
func (p *LLMParser) Matches(_ model.Email) bool { return true }

func (p *LLMParser) Parse(ctx context.Context, e model.Email) []model.JobCandidate {
	candidates, err := p.extractor.ExtractJobs(ctx, e.Body())
	if err != nil {
		zap.L().Warn("parser: llm extraction failed",
			zap.String("message_ref", e.MessageRef),
			zap.Error(err),
		)
		return nil
	}

	out := candidates[:0]
	for _, c := range candidates {
		if c.Source == "" {
			c.Source = e.Source
		}
		if c.Source == "" {
			c.Source = "unknown"
		}
		c.EmailDate = e.Date
		if keepCandidate(p.Tag(), e, c) {
			out = append(out, c)
		}
	}
	return out
}
