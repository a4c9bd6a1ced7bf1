// Package scoring analyzes enriched jobs against the configured resume
// variants and persists a 1-100 fit score with notes and a resume
// recommendation.
package scoring

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/jobpilot/internal/lifecycle"
	"github.com/sells-group/jobpilot/internal/model"
	"github.com/sells-group/jobpilot/internal/provider"
	"github.com/sells-group/jobpilot/internal/resilience"
	"github.com/sells-group/jobpilot/internal/store"
)

// Analyzer is the provider surface scoring needs.
type Analyzer interface {
	AnalyzeJob(ctx context.Context, job model.Job, resume string) (*provider.Analysis, error)
}

// BatchResult summarizes one scoring run.
type BatchResult struct {
	Processed int64
	Succeeded int64
	Failed    int64
	Skipped   int64
}

// Scorer drives the enriched → scored transition.
type Scorer struct {
	store       store.Store
	analyzer    Analyzer
	retry       resilience.RetryConfig
	concurrency int
}

func New(st store.Store, analyzer Analyzer, concurrency int) *Scorer {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Scorer{
		store:       st,
		analyzer:    analyzer,
		retry:       resilience.DefaultRetryConfig(),
		concurrency: concurrency,
	}
}

// Run scores every enriched job. With rescore, already-scored jobs are scored
// again in place; only the score fields change, the application status and
// enrichment data stay put.
func (s *Scorer) Run(ctx context.Context, rescore bool) (BatchResult, error) {
	status := model.EnrichmentEnriched
	if rescore {
		status = model.EnrichmentScored
	}
	jobs, err := s.store.ListJobs(ctx, store.JobFilter{EnrichmentStatus: status})
	if err != nil {
		return BatchResult{}, eris.Wrap(err, "scoring: list jobs")
	}
	if len(jobs) == 0 {
		zap.L().Info("scoring: nothing to do")
		return BatchResult{}, nil
	}

	resume, err := s.combinedResume(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	zap.L().Info("scoring: starting batch",
		zap.Int("jobs", len(jobs)),
		zap.Int("concurrency", s.concurrency),
		zap.Bool("rescore", rescore),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	var succeeded, failed, skipped atomic.Int64

	for _, job := range jobs {
		g.Go(func() error {
			log := zap.L().With(zap.String("job_id", job.JobID), zap.String("company", job.Company))

			applied, err := s.ScoreJob(gctx, job, resume)
			switch {
			case err != nil:
				failed.Add(1)
				log.Error("scoring: job failed", zap.Error(err))
				if rErr := s.store.RecordJobError(gctx, job.JobID, err.Error()); rErr != nil {
					log.Warn("scoring: could not record job error", zap.Error(rErr))
				}
				return nil
			case !applied:
				skipped.Add(1)
				return nil
			default:
				succeeded.Add(1)
				return nil
			}
		})
	}

	if err := g.Wait(); err != nil {
		return BatchResult{}, eris.Wrap(err, "scoring: batch")
	}

	res := BatchResult{
		Processed: int64(len(jobs)),
		Succeeded: succeeded.Load(),
		Failed:    failed.Load(),
		Skipped:   skipped.Load(),
	}
	zap.L().Info("scoring: batch complete",
		zap.Int64("succeeded", res.Succeeded),
		zap.Int64("failed", res.Failed),
		zap.Int64("skipped", res.Skipped),
	)
	return res, nil
}

// ScoreJob analyzes one job and persists the result in a single guarded
// update from the job's current enrichment status. Returns false when another
// run transitioned the job first.
func (s *Scorer) ScoreJob(ctx context.Context, job model.Job, resume string) (bool, error) {
	// Either a legal forward step or an in-place rescore of an already scored
	// job. Pending jobs have no description to analyze yet.
	if job.EnrichmentStatus != model.EnrichmentScored &&
		!lifecycle.CanAdvanceEnrichment(job.EnrichmentStatus, model.EnrichmentScored) {
		return false, nil
	}

	retryCfg := s.retry
	retryCfg.OnRetry = resilience.RetryLogger("provider", "analyze_job")
	analysis, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*provider.Analysis, error) {
		return s.analyzer.AnalyzeJob(ctx, job, resume)
	})
	if err != nil {
		return false, eris.Wrapf(err, "scoring: analyze %s", job.JobID)
	}

	upd := store.ScoreUpdate{
		Score:                analysis.Score,
		Notes:                formatNotes(analysis),
		ResumeRecommendation: analysis.ResumeToUse,
	}
	applied, err := s.store.ApplyScore(ctx, job.JobID, upd, job.EnrichmentStatus, model.EnrichmentScored)
	if err != nil {
		return false, eris.Wrapf(err, "scoring: persist %s", job.JobID)
	}
	if !applied {
		return false, nil
	}

	if analysis.ResumeToUse != "" {
		if err := s.store.IncrementResumeUsage(ctx, analysis.ResumeToUse); err != nil {
			zap.L().Warn("scoring: could not bump resume usage",
				zap.String("resume", analysis.ResumeToUse),
				zap.Error(err),
			)
		}
	}
	return true, nil
}

// combinedResume concatenates every stored variant into the analysis context,
// so the model can pick the best fit by name.
func (s *Scorer) combinedResume(ctx context.Context) (string, error) {
	variants, err := s.store.ListResumeVariants(ctx)
	if err != nil {
		return "", eris.Wrap(err, "scoring: list resume variants")
	}
	if len(variants) == 0 {
		return "", eris.New("scoring: no resume variants configured")
	}

	var b strings.Builder
	for _, v := range variants {
		fmt.Fprintf(&b, "## Resume variant: %s", v.Name)
		if len(v.FocusAreas) > 0 {
			fmt.Fprintf(&b, " (focus: %s)", strings.Join(v.FocusAreas, ", "))
		}
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(v.Content))
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String()), nil
}

// formatNotes flattens the analysis into the notes column.
func formatNotes(a *provider.Analysis) string {
	var parts []string
	if len(a.Strengths) > 0 {
		parts = append(parts, "Strengths: "+strings.Join(a.Strengths, "; "))
	}
	if len(a.Gaps) > 0 {
		parts = append(parts, "Gaps: "+strings.Join(a.Gaps, "; "))
	}
	if a.Recommendation != "" {
		parts = append(parts, "Recommendation: "+a.Recommendation)
	}
	return strings.Join(parts, "\n")
}
