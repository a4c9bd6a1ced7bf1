package model

import "time"

// EnrichmentStatus tracks a job's progress through the pipeline. It is
// monotonic: pending → enriched → scored, and never regresses.
type EnrichmentStatus string

const (
	EnrichmentPending  EnrichmentStatus = "pending"
	EnrichmentEnriched EnrichmentStatus = "enriched"
	EnrichmentScored   EnrichmentStatus = "scored"
)

// Status is the user-facing application status, distinct from EnrichmentStatus.
type Status string

const (
	StatusNew          Status = "new"
	StatusInterested   Status = "interested"
	StatusApplied      Status = "applied"
	StatusInterviewing Status = "interviewing"
	StatusOffer        Status = "offer"
	StatusRejected     Status = "rejected"
	StatusPassed       Status = "passed"
	StatusGhosted      Status = "ghosted"
)

// SalaryConfidence tags how the salary estimate was obtained.
type SalaryConfidence string

const (
	SalaryHigh   SalaryConfidence = "high"
	SalaryMedium SalaryConfidence = "medium"
	SalaryLow    SalaryConfidence = "low"
	SalaryNone   SalaryConfidence = "none"
)

// Job is a structured, deduplicated job record. JobID is a stable fingerprint
// derived from the canonicalized URL (or normalized title+company when no URL
// exists), so reparsing the same source material never produces a duplicate.
type Job struct {
	JobID                string           `json:"job_id"`
	Title                string           `json:"title"`
	Company              string           `json:"company"`
	Location             string           `json:"location"`
	URL                  string           `json:"url,omitempty"`
	Source               string           `json:"source"`
	EmailDate            time.Time        `json:"email_date"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
	EnrichmentStatus     EnrichmentStatus `json:"enrichment_status"`
	Status               Status           `json:"status"`
	Score                *int             `json:"score,omitempty"` // 1-100
	SalaryEstimate       string           `json:"salary_estimate,omitempty"`
	SalaryConfidence     SalaryConfidence `json:"salary_confidence,omitempty"`
	IsAggregator         bool             `json:"is_aggregator"`
	FullDescription      string           `json:"full_description,omitempty"`
	Notes                string           `json:"notes,omitempty"`
	CoverLetter          string           `json:"cover_letter,omitempty"`
	ResumeRecommendation string           `json:"resume_recommendation,omitempty"`
	LogoURL              string           `json:"logo_url,omitempty"`
	LastError            string           `json:"last_error,omitempty"`
}

// JobCandidate is a parser's raw output before deduplication, filtering, and
// storage assign it a fingerprint.
type JobCandidate struct {
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Location  string    `json:"location"`
	URL       string    `json:"url,omitempty"`
	Source    string    `json:"source"`
	EmailDate time.Time `json:"email_date"`
}
