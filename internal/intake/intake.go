// Package intake runs the scan operation: raw emails in, pending jobs out.
package intake

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobpilot/internal/config"
	"github.com/sells-group/jobpilot/internal/dedupe"
	"github.com/sells-group/jobpilot/internal/filter"
	"github.com/sells-group/jobpilot/internal/model"
	"github.com/sells-group/jobpilot/internal/parser"
	"github.com/sells-group/jobpilot/internal/provider"
	"github.com/sells-group/jobpilot/internal/store"
)

// Screener is the optional LLM screen applied after the local filters.
type Screener interface {
	FilterAndScore(ctx context.Context, job model.Job, resume string, prefs config.FilterConfig) (*provider.FilterVerdict, error)
}

// ScanResult summarizes one intake run.
type ScanResult struct {
	Emails     int
	Candidates int
	Inserted   int
	Duplicates int
	Filtered   int
	Screened   int
}

// Pipeline wires parsing, dedup, filtering, and storage for the scan
// operation. Screener may be nil to run on local filters alone.
type Pipeline struct {
	store    store.Store
	registry *parser.Registry
	filter   *filter.Filter
	screener Screener
	prefs    config.FilterConfig
}

func New(st store.Store, registry *parser.Registry, f *filter.Filter, screener Screener, prefs config.FilterConfig) *Pipeline {
	return &Pipeline{
		store:    st,
		registry: registry,
		filter:   f,
		screener: screener,
		prefs:    prefs,
	}
}

// Scan parses every email, fingerprints and filters the candidates, and
// inserts the keepers as pending jobs. Running the same emails twice changes
// nothing: the fingerprint is deterministic and inserts are no-ops on
// duplicates.
func (p *Pipeline) Scan(ctx context.Context, emails []model.Email) (ScanResult, error) {
	resume, err := p.combinedResume(ctx)
	if err != nil {
		return ScanResult{}, err
	}

	res := ScanResult{Emails: len(emails)}
	for _, e := range emails {
		candidates, tag := p.registry.Parse(ctx, e)
		res.Candidates += len(candidates)

		log := zap.L().With(
			zap.String("message_ref", e.MessageRef),
			zap.String("parser", tag),
		)

		for _, c := range candidates {
			if r := p.filter.Check(c); !r.Keep {
				res.Filtered++
				log.Debug("intake: candidate filtered",
					zap.String("title", c.Title),
					zap.String("reason", r.Reason),
				)
				continue
			}

			job := jobFromCandidate(c)

			if p.screener != nil && resume != "" {
				verdict, err := p.screener.FilterAndScore(ctx, job, resume, p.prefs)
				switch {
				case err != nil:
					// A screen outage must not drop real listings; keep the
					// candidate and let scoring sort it out later.
					log.Warn("intake: llm screen failed, keeping candidate",
						zap.String("job_id", job.JobID),
						zap.Error(err),
					)
				case !verdict.Keep:
					res.Screened++
					log.Debug("intake: candidate screened out",
						zap.String("title", c.Title),
						zap.String("reason", verdict.Reason),
					)
					continue
				default:
					job.Notes = baselineNote(verdict)
				}
			}

			inserted, err := p.store.InsertJob(ctx, job)
			if err != nil {
				return res, eris.Wrapf(err, "intake: insert %s", job.JobID)
			}
			if inserted {
				res.Inserted++
			} else {
				res.Duplicates++
			}
		}
	}

	zap.L().Info("intake: scan complete",
		zap.Int("emails", res.Emails),
		zap.Int("candidates", res.Candidates),
		zap.Int("inserted", res.Inserted),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("filtered", res.Filtered),
		zap.Int("screened", res.Screened),
	)
	return res, nil
}

func jobFromCandidate(c model.JobCandidate) model.Job {
	return model.Job{
		JobID:            dedupe.Fingerprint(c),
		Title:            c.Title,
		Company:          c.Company,
		Location:         c.Location,
		URL:              c.URL,
		Source:           c.Source,
		EmailDate:        c.EmailDate,
		EnrichmentStatus: model.EnrichmentPending,
		Status:           model.StatusNew,
	}
}

// baselineNote records the screen verdict until scoring overwrites Notes with
// the real analysis.
func baselineNote(v *provider.FilterVerdict) string {
	if v.Reason == "" {
		return fmt.Sprintf("Baseline screen: %d/100", v.BaselineScore)
	}
	return fmt.Sprintf("Baseline screen: %d/100 (%s)", v.BaselineScore, v.Reason)
}

// combinedResume loads every variant for the LLM screen. No variants is fine:
// the screen just doesn't run.
func (p *Pipeline) combinedResume(ctx context.Context) (string, error) {
	if p.screener == nil {
		return "", nil
	}
	variants, err := p.store.ListResumeVariants(ctx)
	if err != nil {
		return "", eris.Wrap(err, "intake: list resume variants")
	}
	if len(variants) == 0 {
		zap.L().Warn("intake: no resume variants, skipping llm screen")
		return "", nil
	}

	var b strings.Builder
	for _, v := range variants {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", v.Name, strings.TrimSpace(v.Content))
	}
	return strings.TrimSpace(b.String()), nil
}
