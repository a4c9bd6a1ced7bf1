// Package enrich fills in pending jobs: it searches the web for the full
// posting, extracts a normalized salary, flags aggregator listings, and grabs
// a company logo when one is servable.
package enrich

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/jobpilot/internal/config"
	"github.com/sells-group/jobpilot/internal/filter"
	"github.com/sells-group/jobpilot/internal/lifecycle"
	"github.com/sells-group/jobpilot/internal/model"
	"github.com/sells-group/jobpilot/internal/provider"
	"github.com/sells-group/jobpilot/internal/resilience"
	"github.com/sells-group/jobpilot/internal/store"
)

// Searcher is the one provider operation enrichment needs.
type Searcher interface {
	SearchJobDescription(ctx context.Context, company, title string) (*provider.JobPosting, error)
}

// BatchResult summarizes one enrichment run.
type BatchResult struct {
	Processed int64
	Succeeded int64
	Failed    int64
	Skipped   int64
}

// Enricher drives the pending → enriched transition.
type Enricher struct {
	store       store.Store
	searcher    Searcher
	logos       *LogoFetcher
	screen      *filter.Filter
	limiter     *rate.Limiter
	retry       resilience.RetryConfig
	concurrency int
}

func New(st store.Store, searcher Searcher, cfg *config.Config) *Enricher {
	rpm := cfg.Provider.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}
	concurrency := cfg.Batch.MaxConcurrentJobs
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Enricher{
		store:       st,
		searcher:    searcher,
		logos:       NewLogoFetcher(time.Duration(cfg.Enrich.LogoTimeoutSecs)*time.Second, cfg.Enrich.LogoBaseURL),
		screen:      filter.New(cfg.Filter),
		limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		retry:       resilience.DefaultRetryConfig(),
		concurrency: concurrency,
	}
}

// Run enriches every pending job. With force, already-enriched jobs are
// re-enriched too; scored jobs are never touched, since refreshing the
// description under a computed score would make the score a lie.
func (e *Enricher) Run(ctx context.Context, force bool) (BatchResult, error) {
	jobs, err := e.store.ListJobs(ctx, store.JobFilter{EnrichmentStatus: model.EnrichmentPending})
	if err != nil {
		return BatchResult{}, eris.Wrap(err, "enrich: list pending jobs")
	}
	if force {
		enriched, err := e.store.ListJobs(ctx, store.JobFilter{EnrichmentStatus: model.EnrichmentEnriched})
		if err != nil {
			return BatchResult{}, eris.Wrap(err, "enrich: list enriched jobs")
		}
		jobs = append(jobs, enriched...)
	}
	if len(jobs) == 0 {
		zap.L().Info("enrich: nothing to do")
		return BatchResult{}, nil
	}

	zap.L().Info("enrich: starting batch",
		zap.Int("jobs", len(jobs)),
		zap.Int("concurrency", e.concurrency),
		zap.Bool("force", force),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	var succeeded, failed, skipped atomic.Int64

	for _, job := range jobs {
		g.Go(func() error {
			log := zap.L().With(zap.String("job_id", job.JobID), zap.String("company", job.Company))

			applied, err := e.EnrichJob(gctx, job)
			switch {
			case err != nil:
				failed.Add(1)
				log.Error("enrich: job failed", zap.Error(err))
				if rErr := e.store.RecordJobError(gctx, job.JobID, err.Error()); rErr != nil {
					log.Warn("enrich: could not record job error", zap.Error(rErr))
				}
				return nil // individual failures never abort the batch
			case !applied:
				skipped.Add(1)
				return nil
			default:
				succeeded.Add(1)
				log.Info("enrich: job complete")
				return nil
			}
		})
	}

	if err := g.Wait(); err != nil {
		return BatchResult{}, eris.Wrap(err, "enrich: batch")
	}

	res := BatchResult{
		Processed: int64(len(jobs)),
		Succeeded: succeeded.Load(),
		Failed:    failed.Load(),
		Skipped:   skipped.Load(),
	}
	zap.L().Info("enrich: batch complete",
		zap.Int64("succeeded", res.Succeeded),
		zap.Int64("failed", res.Failed),
		zap.Int64("skipped", res.Skipped),
	)
	return res, nil
}

// EnrichJob runs the full enrichment for one job and persists the result in a
// single guarded update. It returns false when another run got there first.
// Nothing is written until every piece is in hand, so a crash mid-call leaves
// the job cleanly pending.
func (e *Enricher) EnrichJob(ctx context.Context, job model.Job) (bool, error) {
	// Either a legal forward step or a forced in-place refresh of an already
	// enriched job. Scored jobs never regress.
	if job.EnrichmentStatus != model.EnrichmentEnriched &&
		!lifecycle.CanAdvanceEnrichment(job.EnrichmentStatus, model.EnrichmentEnriched) {
		return false, nil
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return false, eris.Wrap(err, "enrich: rate limit wait")
	}

	retryCfg := e.retry
	retryCfg.OnRetry = resilience.RetryLogger("provider", "search_job_description")
	posting, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*provider.JobPosting, error) {
		return e.searcher.SearchJobDescription(ctx, job.Company, job.Title)
	})
	if err != nil {
		return false, eris.Wrapf(err, "enrich: search description for %s", job.JobID)
	}

	salary, confidence := ExtractSalary(posting.FullDescription, posting.SalaryEstimate)

	upd := store.EnrichmentUpdate{
		FullDescription:  posting.FullDescription,
		SalaryEstimate:   salary,
		SalaryConfidence: confidence,
		IsAggregator:     IsAggregator(job.Company, posting.SourceURL),
		LogoURL:          e.logos.Fetch(ctx, job.Company),
	}

	applied, err := e.store.UpdateEnrichment(ctx, job.JobID, upd, job.EnrichmentStatus, model.EnrichmentEnriched)
	if err != nil {
		return false, eris.Wrapf(err, "enrich: persist %s", job.JobID)
	}
	if applied {
		e.screenDescription(ctx, job, posting.FullDescription)
	}
	return applied, nil
}

// screenDescription re-runs the local screens now that the full description is
// in hand. Intake only saw the alert line; a fetched posting can reveal an
// experience requirement outside the configured band. Only untouched jobs are
// moved: once the user has acted on a job, the screen stays out of the way.
func (e *Enricher) screenDescription(ctx context.Context, job model.Job, desc string) {
	if e.screen == nil || job.Status != model.StatusNew {
		return
	}
	job.FullDescription = desc
	r := e.screen.Verdict(job)
	if r.Keep {
		return
	}
	if err := e.store.UpdateStatus(ctx, job.JobID, model.StatusPassed); err != nil {
		zap.L().Warn("enrich: could not pass screened-out job",
			zap.String("job_id", job.JobID),
			zap.Error(err),
		)
		return
	}
	zap.L().Info("enrich: job screened out",
		zap.String("job_id", job.JobID),
		zap.String("company", job.Company),
		zap.String("reason", r.Reason),
	)
}

// aggregatorNames are staffing firms and job boards that repost other
// companies' openings. Matching is on normalized company name.
var aggregatorNames = map[string]bool{
	"jobot":         true,
	"cybercoders":   true,
	"dice":          true,
	"ziprecruiter":  true,
	"lensa":         true,
	"jobsviadice":   true,
	"hays":          true,
	"roberthalf":    true,
	"insightglobal": true,
	"teksystems":    true,
	"randstad":      true,
	"adecco":        true,
}

var aggregatorHosts = []string{
	"lensa.com", "ziprecruiter.com", "dice.com", "jobot.com", "talent.com", "adzuna.com",
}

// IsAggregator flags listings that come from staffing firms or repost boards
// rather than the hiring company itself.
func IsAggregator(company, sourceURL string) bool {
	norm := nonAlnumRe.ReplaceAllString(strings.ToLower(company), "")
	if aggregatorNames[norm] {
		return true
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(company)), "via ") {
		return true
	}
	lowerURL := strings.ToLower(sourceURL)
	for _, h := range aggregatorHosts {
		if strings.Contains(lowerURL, h) {
			return true
		}
	}
	return false
}
