// Package followup links incoming correspondence back to tracked jobs,
// classifies it, and drives application status from what the thread says.
package followup

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobpilot/internal/config"
	"github.com/sells-group/jobpilot/internal/lifecycle"
	"github.com/sells-group/jobpilot/internal/model"
	"github.com/sells-group/jobpilot/internal/provider"
	"github.com/sells-group/jobpilot/internal/resilience"
	"github.com/sells-group/jobpilot/internal/store"
)

const (
	defaultGhostThresholdDays = 14
	defaultLookbackDays       = 90
)

// ScanResult summarizes one follow-up scan.
type ScanResult struct {
	Processed     int
	Linked        int
	Unlinked      int
	StatusChanges int
	Skipped       int
}

// GhostResult summarizes one ghost check.
type GhostResult struct {
	Checked int
	Ghosted int
}

// Scanner processes follow-up emails against the tracked job set.
type Scanner struct {
	store      store.Store
	classifier Classifier
	cfg        config.FollowupConfig
	retry      resilience.RetryConfig
	now        func() time.Time
}

func New(st store.Store, classifier Classifier, cfg config.FollowupConfig) *Scanner {
	if cfg.GhostThresholdDays <= 0 {
		cfg.GhostThresholdDays = defaultGhostThresholdDays
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = defaultLookbackDays
	}
	return &Scanner{
		store:      st,
		classifier: classifier,
		cfg:        cfg,
		retry:      resilience.DefaultRetryConfig(),
		now:        time.Now,
	}
}

// Scan classifies and links each email, records it, and applies any status
// side effect. Emails are processed one at a time in order: correspondence
// volume is tiny next to alert volume, and ordering keeps same-thread emails
// deterministic.
func (s *Scanner) Scan(ctx context.Context, emails []model.Email) (ScanResult, error) {
	jobs, err := s.candidateJobs(ctx)
	if err != nil {
		return ScanResult{}, err
	}

	var res ScanResult
	for _, e := range emails {
		outcome, err := s.processEmail(ctx, e, jobs)
		if err != nil {
			return res, err
		}
		res.Processed++
		switch outcome {
		case outcomeSkipped:
			res.Processed--
			res.Skipped++
		case outcomeLinked:
			res.Linked++
		case outcomeLinkedAdvanced:
			res.Linked++
			res.StatusChanges++
		case outcomeUnlinked:
			res.Unlinked++
		}
	}

	zap.L().Info("followup: scan complete",
		zap.Int("processed", res.Processed),
		zap.Int("linked", res.Linked),
		zap.Int("unlinked", res.Unlinked),
		zap.Int("status_changes", res.StatusChanges),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeLinked
	outcomeLinkedAdvanced
	outcomeUnlinked
)

func (s *Scanner) processEmail(ctx context.Context, e model.Email, jobs []model.Job) (outcome, error) {
	log := zap.L().With(zap.String("message_ref", e.MessageRef))

	class, confidence, err := s.classifyWithRetry(ctx, e)
	needsReview := false
	if err != nil {
		// Classification failure never blocks the scan; the email is recorded
		// as unreviewed correspondence instead.
		log.Warn("followup: classification failed", zap.Error(err))
		class, confidence = model.ClassOther, 0
		needsReview = true
	}

	jobID, ambiguous := matchJob(e, jobs)
	if ambiguous {
		log.Warn("followup: email matches several jobs, leaving unlinked")
		needsReview = true
	}

	f := model.FollowupEmail{
		ID:             uuid.New().String(),
		MessageRef:     e.MessageRef,
		Subject:        e.Subject,
		SenderEmail:    e.From,
		EmailDate:      e.Date,
		Classification: class,
		Confidence:     confidence,
		Snippet:        snippet(e),
		NeedsReview:    needsReview,
	}
	if jobID != "" {
		f.JobID = &jobID

		conflict, err := s.sameDayConflict(ctx, jobID, e.Date, class)
		if err != nil {
			return 0, err
		}
		// Latest email wins the status, but conflicting same-day signals are
		// flagged for a human look.
		f.NeedsReview = f.NeedsReview || conflict
	}

	inserted, err := s.store.InsertFollowup(ctx, f)
	if err != nil {
		return 0, eris.Wrapf(err, "followup: record %s", e.MessageRef)
	}
	if !inserted {
		return outcomeSkipped, nil
	}

	if jobID == "" {
		return outcomeUnlinked, nil
	}

	advanced, err := s.applyStatus(ctx, jobID, class)
	if err != nil {
		return 0, err
	}
	if advanced {
		return outcomeLinkedAdvanced, nil
	}
	return outcomeLinked, nil
}

func (s *Scanner) classifyWithRetry(ctx context.Context, e model.Email) (model.Classification, float64, error) {
	retryCfg := s.retry
	retryCfg.OnRetry = resilience.RetryLogger("provider", "classify_email")

	type result struct {
		class      model.Classification
		confidence float64
	}
	r, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (result, error) {
		class, confidence, err := s.classify(ctx, e)
		return result{class, confidence}, err
	})
	return r.class, r.confidence, err
}

// applyStatus moves the job's application status when the classification
// implies one and the transition is legal for automation.
func (s *Scanner) applyStatus(ctx context.Context, jobID string, class model.Classification) (bool, error) {
	next, ok := lifecycle.StatusForClassification(class)
	if !ok {
		return false, nil
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return false, eris.Wrapf(err, "followup: load job %s", jobID)
	}
	if !lifecycle.CanAutoAdvance(job.Status, next) {
		zap.L().Debug("followup: status change not allowed",
			zap.String("job_id", jobID),
			zap.String("from", string(job.Status)),
			zap.String("to", string(next)),
		)
		return false, nil
	}

	if err := s.store.UpdateStatus(ctx, jobID, next); err != nil {
		return false, eris.Wrapf(err, "followup: update status %s", jobID)
	}
	zap.L().Info("followup: status advanced",
		zap.String("job_id", jobID),
		zap.String("from", string(job.Status)),
		zap.String("to", string(next)),
	)
	return true, nil
}

// sameDayConflict reports whether the job already has a followup on the same
// calendar day whose classification drives toward a different status.
func (s *Scanner) sameDayConflict(ctx context.Context, jobID string, date time.Time, class model.Classification) (bool, error) {
	next, ok := lifecycle.StatusForClassification(class)
	if !ok {
		return false, nil
	}

	existing, err := s.store.ListFollowups(ctx, jobID)
	if err != nil {
		return false, eris.Wrapf(err, "followup: list for %s", jobID)
	}

	y, m, d := date.UTC().Date()
	for _, f := range existing {
		fy, fm, fd := f.EmailDate.UTC().Date()
		if fy != y || fm != m || fd != d {
			continue
		}
		prior, ok := lifecycle.StatusForClassification(f.Classification)
		if ok && prior != next {
			return true, nil
		}
	}
	return false, nil
}

// candidateJobs loads the jobs a follow-up could legally concern: non-terminal
// status, received within the lookback window.
func (s *Scanner) candidateJobs(ctx context.Context) ([]model.Job, error) {
	jobs, err := s.store.ListJobs(ctx, store.JobFilter{Limit: 1000})
	if err != nil {
		return nil, eris.Wrap(err, "followup: list jobs")
	}

	cutoff := s.now().AddDate(0, 0, -s.cfg.LookbackDays)
	out := jobs[:0]
	for _, j := range jobs {
		if lifecycle.IsTerminal(j.Status) || j.EmailDate.Before(cutoff) {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

// GhostCheck marks applied jobs with no correspondence for the configured
// threshold as ghosted. A later real signal moves them right back out.
func (s *Scanner) GhostCheck(ctx context.Context) (GhostResult, error) {
	jobs, err := s.store.ListJobs(ctx, store.JobFilter{Status: model.StatusApplied})
	if err != nil {
		return GhostResult{}, eris.Wrap(err, "followup: list applied jobs")
	}

	cutoff := s.now().AddDate(0, 0, -s.cfg.GhostThresholdDays)
	var res GhostResult
	for _, j := range jobs {
		res.Checked++

		last, err := s.store.LastActivity(ctx, j.JobID)
		if err != nil {
			return res, eris.Wrapf(err, "followup: last activity %s", j.JobID)
		}
		// No correspondence at all: measure silence from the last time
		// anything touched the job.
		ref := j.UpdatedAt
		if last != nil {
			ref = *last
		}
		if !ref.Before(cutoff) {
			continue
		}

		if err := s.store.UpdateStatus(ctx, j.JobID, model.StatusGhosted); err != nil {
			return res, eris.Wrapf(err, "followup: ghost %s", j.JobID)
		}
		res.Ghosted++
		zap.L().Info("followup: job ghosted",
			zap.String("job_id", j.JobID),
			zap.String("company", j.Company),
			zap.Time("last_activity", ref),
		)
	}
	return res, nil
}

// snippet keeps the first bit of the body for display in review queues.
func snippet(e model.Email) string {
	body := e.Text
	if body == "" {
		body = e.HTML
	}
	const maxLen = 200
	if len(body) > maxLen {
		body = body[:maxLen]
	}
	return body
}

var _ Classifier = (*provider.LLM)(nil)
