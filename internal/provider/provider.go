// Package provider abstracts the language-model backend behind a single
// contract. Adapters normalize each backend's idiosyncratic output into the
// same result shapes; nothing outside this package branches on backend
// identity.
package provider

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobpilot/internal/config"
	"github.com/sells-group/jobpilot/internal/model"
)

// FilterVerdict is the result of the cheap pre-enrichment screen.
type FilterVerdict struct {
	Keep          bool   `json:"keep"`
	BaselineScore int    `json:"baseline_score"`
	Reason        string `json:"reason"`
}

// Analysis is the full post-enrichment qualification analysis.
type Analysis struct {
	Score          int      `json:"score"`
	Strengths      []string `json:"strengths"`
	Gaps           []string `json:"gaps"`
	Recommendation string   `json:"recommendation"`
	ResumeToUse    string   `json:"resume_to_use"`
}

// JobPosting is the outcome of a web lookup for the full job description.
type JobPosting struct {
	FullDescription string `json:"full_description"`
	SalaryEstimate  string `json:"salary_estimate"`
	SourceURL       string `json:"source_url"`
}

// EmailClassification labels a correspondence message.
type EmailClassification struct {
	Classification model.Classification `json:"classification"`
	Confidence     float64              `json:"confidence"`
}

// Provider is the language-model backend contract consumed by every pipeline
// stage that needs AI judgment.
type Provider interface {
	FilterAndScore(ctx context.Context, job model.Job, resume string, prefs config.FilterConfig) (*FilterVerdict, error)
	AnalyzeJob(ctx context.Context, job model.Job, resume string) (*Analysis, error)
	GenerateCoverLetter(ctx context.Context, job model.Job, resume string, analysis *Analysis) (string, error)
	GenerateInterviewAnswer(ctx context.Context, question string, job model.Job, resume string, analysis *Analysis) (string, error)
	SearchJobDescription(ctx context.Context, company, title string) (*JobPosting, error)
	ClassifyEmail(ctx context.Context, subject, sender, body string) (*EmailClassification, error)
	ExtractJobs(ctx context.Context, html string) ([]model.JobCandidate, error)
}

// GenerateRequest is the minimal text-generation request an adapter must
// support.
type GenerateRequest struct {
	System    string
	Prompt    string
	MaxTokens int
	// CacheSystem hints that the system block is large and reused across
	// calls (e.g. resume text) and worth provider-side caching.
	CacheSystem bool
}

// Generator is the transport each backend adapter implements. Adapters
// translate their SDK's failures into typed *Error values.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// New constructs the LLM for the configured backend.
func New(ctx context.Context, cfg config.ProviderConfig) (*LLM, error) {
	var gen Generator
	switch cfg.Backend {
	case "anthropic", "":
		gen = NewAnthropicGenerator(cfg)
	case "gemini":
		g, err := NewGeminiGenerator(ctx, cfg)
		if err != nil {
			return nil, err
		}
		gen = g
	default:
		return nil, eris.Errorf("provider: unknown backend %q", cfg.Backend)
	}
	return NewLLM(gen, cfg), nil
}

// LLM implements Provider on top of any Generator: it owns the prompts and
// the defensive response parsing, so every backend yields identical shapes.
type LLM struct {
	gen       Generator
	maxTokens int
	cfg       config.ProviderConfig
}

var _ Provider = (*LLM)(nil)

// NewLLM wraps a Generator in the Provider contract.
func NewLLM(gen Generator, cfg config.ProviderConfig) *LLM {
	return &LLM{gen: gen, maxTokens: cfg.MaxTokens, cfg: cfg}
}

func (l *LLM) generate(ctx context.Context, req GenerateRequest) (string, error) {
	if req.MaxTokens == 0 {
		req.MaxTokens = l.maxTokens
	}
	if t := l.cfg.Timeout(); t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	return l.gen.Generate(ctx, req)
}

func (l *LLM) FilterAndScore(ctx context.Context, job model.Job, resume string, prefs config.FilterConfig) (*FilterVerdict, error) {
	text, err := l.generate(ctx, GenerateRequest{
		System:      filterSystemPrompt,
		Prompt:      filterPrompt(job, resume, prefs),
		CacheSystem: true,
	})
	if err != nil {
		return nil, err
	}

	var v FilterVerdict
	if err := decodeJSON(text, &v); err != nil {
		return nil, err
	}
	v.BaselineScore = clampScore(v.BaselineScore)
	return &v, nil
}

func (l *LLM) AnalyzeJob(ctx context.Context, job model.Job, resume string) (*Analysis, error) {
	text, err := l.generate(ctx, GenerateRequest{
		System:      analyzeSystemPrompt,
		Prompt:      analyzePrompt(job, resume),
		CacheSystem: true,
	})
	if err != nil {
		return nil, err
	}

	var a Analysis
	if err := decodeJSON(text, &a); err != nil {
		return nil, err
	}
	a.Score = clampScore(a.Score)
	return &a, nil
}

func (l *LLM) GenerateCoverLetter(ctx context.Context, job model.Job, resume string, analysis *Analysis) (string, error) {
	text, err := l.generate(ctx, GenerateRequest{
		System: coverLetterSystemPrompt,
		Prompt: coverLetterPrompt(job, resume, analysis),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (l *LLM) GenerateInterviewAnswer(ctx context.Context, question string, job model.Job, resume string, analysis *Analysis) (string, error) {
	text, err := l.generate(ctx, GenerateRequest{
		System: interviewSystemPrompt,
		Prompt: interviewPrompt(question, job, resume, analysis),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (l *LLM) SearchJobDescription(ctx context.Context, company, title string) (*JobPosting, error) {
	text, err := l.generate(ctx, GenerateRequest{
		System: searchSystemPrompt,
		Prompt: searchPrompt(company, title),
	})
	if err != nil {
		return nil, err
	}

	var p JobPosting
	if err := decodeJSON(text, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (l *LLM) ClassifyEmail(ctx context.Context, subject, sender, body string) (*EmailClassification, error) {
	text, err := l.generate(ctx, GenerateRequest{
		System:    classifySystemPrompt,
		Prompt:    classifyPrompt(subject, sender, body),
		MaxTokens: 256,
	})
	if err != nil {
		return nil, err
	}

	var c EmailClassification
	if err := decodeJSON(text, &c); err != nil {
		return nil, err
	}
	if !validClassification(c.Classification) {
		zap.L().Warn("provider: unknown classification label, treating as other",
			zap.String("label", string(c.Classification)),
		)
		c.Classification = model.ClassOther
	}
	return &c, nil
}

func (l *LLM) ExtractJobs(ctx context.Context, html string) ([]model.JobCandidate, error) {
	text, err := l.generate(ctx, GenerateRequest{
		System: extractSystemPrompt,
		Prompt: extractPrompt(html),
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		Jobs []model.JobCandidate `json:"jobs"`
	}
	if err := decodeJSON(text, &out); err != nil {
		return nil, err
	}
	return out.Jobs, nil
}

func validClassification(c model.Classification) bool {
	switch c {
	case model.ClassConfirmation, model.ClassInterview, model.ClassOffer,
		model.ClassRejection, model.ClassAssessment, model.ClassOther:
		return true
	}
	return false
}

func clampScore(s int) int {
	if s < 1 {
		return 1
	}
	if s > 100 {
		return 100
	}
	return s
}
