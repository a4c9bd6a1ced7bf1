// Package store persists jobs, follow-up correspondence, and resume variants
// behind a driver-agnostic interface.
package store

import (
	"context"
	"time"

	"github.com/sells-group/jobpilot/internal/model"
)

// JobFilter specifies criteria for listing jobs.
type JobFilter struct {
	EnrichmentStatus model.EnrichmentStatus `json:"enrichment_status,omitempty"`
	Status           model.Status           `json:"status,omitempty"`
	Company          string                 `json:"company,omitempty"`
	Limit            int                    `json:"limit,omitempty"`
}

// EnrichmentUpdate carries the fields the enrichment pipeline persists.
type EnrichmentUpdate struct {
	FullDescription  string
	SalaryEstimate   string
	SalaryConfidence model.SalaryConfidence
	IsAggregator     bool
	LogoURL          string
}

// ScoreUpdate carries the fields the scoring stage persists.
type ScoreUpdate struct {
	Score                int
	Notes                string
	ResumeRecommendation string
}

// Store defines the persistence interface for the intake→enrich→score→track
// pipeline. Guarded updates return false when the expected prior
// enrichment_status did not match, which is how concurrent runs skip jobs
// already mid-transition.
type Store interface {
	// Jobs
	InsertJob(ctx context.Context, job model.Job) (bool, error) // false = duplicate, untouched
	GetJob(ctx context.Context, jobID string) (*model.Job, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error)
	UpdateEnrichment(ctx context.Context, jobID string, upd EnrichmentUpdate, from, to model.EnrichmentStatus) (bool, error)
	ApplyScore(ctx context.Context, jobID string, upd ScoreUpdate, from, to model.EnrichmentStatus) (bool, error)
	UpdateStatus(ctx context.Context, jobID string, status model.Status) error
	UpdateCoverLetter(ctx context.Context, jobID string, letter string) error
	RecordJobError(ctx context.Context, jobID string, msg string) error

	// Follow-ups
	InsertFollowup(ctx context.Context, f model.FollowupEmail) (bool, error) // false = message_ref already seen
	ListFollowups(ctx context.Context, jobID string) ([]model.FollowupEmail, error)
	LastActivity(ctx context.Context, jobID string) (*time.Time, error)

	// Resume variants
	ListResumeVariants(ctx context.Context) ([]model.ResumeVariant, error)
	UpsertResumeVariant(ctx context.Context, v model.ResumeVariant) error
	IncrementResumeUsage(ctx context.Context, name string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
