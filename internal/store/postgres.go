package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/jobpilot/internal/db"
	"github.com/sells-group/jobpilot/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	job_id                TEXT PRIMARY KEY,
	title                 TEXT NOT NULL,
	company               TEXT NOT NULL,
	location              TEXT NOT NULL DEFAULT '',
	url                   TEXT NOT NULL DEFAULT '',
	source                TEXT NOT NULL DEFAULT '',
	email_date            TIMESTAMPTZ NOT NULL,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	enrichment_status     TEXT NOT NULL DEFAULT 'pending',
	status                TEXT NOT NULL DEFAULT 'new',
	score                 INTEGER,
	salary_estimate       TEXT NOT NULL DEFAULT '',
	salary_confidence     TEXT NOT NULL DEFAULT 'none',
	is_aggregator         BOOLEAN NOT NULL DEFAULT FALSE,
	full_description      TEXT NOT NULL DEFAULT '',
	notes                 TEXT NOT NULL DEFAULT '',
	cover_letter          TEXT NOT NULL DEFAULT '',
	resume_recommendation TEXT NOT NULL DEFAULT '',
	logo_url              TEXT NOT NULL DEFAULT '',
	last_error            TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS followups (
	id             TEXT PRIMARY KEY,
	job_id         TEXT REFERENCES jobs(job_id),
	message_ref    TEXT NOT NULL UNIQUE,
	subject        TEXT NOT NULL DEFAULT '',
	sender_email   TEXT NOT NULL DEFAULT '',
	email_date     TIMESTAMPTZ NOT NULL,
	classification TEXT NOT NULL,
	confidence     DOUBLE PRECISION NOT NULL DEFAULT 0,
	snippet        TEXT NOT NULL DEFAULT '',
	needs_review   BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS resume_variants (
	resume_id   TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	focus_areas JSONB NOT NULL DEFAULT '[]',
	content     TEXT NOT NULL,
	usage_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_jobs_enrichment_status ON jobs(enrichment_status);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs(company);
CREATE INDEX IF NOT EXISTS idx_followups_job_id ON followups(job_id);
CREATE INDEX IF NOT EXISTS idx_followups_email_date ON followups(email_date);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) InsertJob(ctx context.Context, job model.Job) (bool, error) {
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	if job.EnrichmentStatus == "" {
		job.EnrichmentStatus = model.EnrichmentPending
	}
	if job.Status == "" {
		job.Status = model.StatusNew
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (job_id, title, company, location, url, source, email_date, created_at, updated_at, enrichment_status, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (job_id) DO NOTHING`,
		job.JobID, job.Title, job.Company, job.Location, job.URL, job.Source,
		job.EmailDate.UTC(), job.CreatedAt, now, string(job.EnrichmentStatus), string(job.Status),
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: insert job %s", job.JobID)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE job_id = $1`, jobID)
	j, err := scanPgJob(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get job %s", jobID)
	}
	return j, nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE 1=1`
	var args []any

	if filter.EnrichmentStatus != "" {
		args = append(args, string(filter.EnrichmentStatus))
		query += ` AND enrichment_status = $` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.Company != "" {
		args = append(args, filter.Company)
		query += ` AND company = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY email_date DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list jobs")
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		j, err := scanPgJob(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan job")
		}
		jobs = append(jobs, *j)
	}
	return jobs, eris.Wrap(rows.Err(), "postgres: list jobs iterate")
}

func (s *PostgresStore) UpdateEnrichment(ctx context.Context, jobID string, upd EnrichmentUpdate, from, to model.EnrichmentStatus) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET full_description = $1, salary_estimate = $2, salary_confidence = $3,
		 is_aggregator = $4, logo_url = $5, enrichment_status = $6, last_error = '', updated_at = $7
		 WHERE job_id = $8 AND enrichment_status = $9`,
		upd.FullDescription, upd.SalaryEstimate, string(upd.SalaryConfidence),
		upd.IsAggregator, upd.LogoURL, string(to), time.Now().UTC(),
		jobID, string(from),
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: update enrichment %s", jobID)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) ApplyScore(ctx context.Context, jobID string, upd ScoreUpdate, from, to model.EnrichmentStatus) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET score = $1, notes = $2, resume_recommendation = $3,
		 enrichment_status = $4, last_error = '', updated_at = $5
		 WHERE job_id = $6 AND enrichment_status = $7`,
		upd.Score, upd.Notes, upd.ResumeRecommendation,
		string(to), time.Now().UTC(),
		jobID, string(from),
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: apply score %s", jobID)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, jobID string, status model.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, updated_at = $2 WHERE job_id = $3`,
		string(status), time.Now().UTC(), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update status %s", jobID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("job not found: %s", jobID)
	}
	return nil
}

func (s *PostgresStore) UpdateCoverLetter(ctx context.Context, jobID string, letter string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET cover_letter = $1, updated_at = $2 WHERE job_id = $3`,
		letter, time.Now().UTC(), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update cover letter %s", jobID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("job not found: %s", jobID)
	}
	return nil
}

func (s *PostgresStore) RecordJobError(ctx context.Context, jobID string, msg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET last_error = $1, updated_at = $2 WHERE job_id = $3`,
		msg, time.Now().UTC(), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: record job error %s", jobID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("job not found: %s", jobID)
	}
	return nil
}

func (s *PostgresStore) InsertFollowup(ctx context.Context, f model.FollowupEmail) (bool, error) {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO followups (id, job_id, message_ref, subject, sender_email, email_date, classification, confidence, snippet, needs_review)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (message_ref) DO NOTHING`,
		f.ID, f.JobID, f.MessageRef, f.Subject, f.SenderEmail, f.EmailDate.UTC(),
		string(f.Classification), f.Confidence, f.Snippet, f.NeedsReview,
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: insert followup %s", f.MessageRef)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) ListFollowups(ctx context.Context, jobID string) ([]model.FollowupEmail, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, job_id, message_ref, subject, sender_email, email_date, classification, confidence, snippet, needs_review
		 FROM followups WHERE job_id = $1 ORDER BY email_date ASC`, jobID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list followups")
	}
	defer rows.Close()

	var out []model.FollowupEmail
	for rows.Next() {
		var f model.FollowupEmail
		if err := rows.Scan(&f.ID, &f.JobID, &f.MessageRef, &f.Subject, &f.SenderEmail,
			&f.EmailDate, &f.Classification, &f.Confidence, &f.Snippet, &f.NeedsReview); err != nil {
			return nil, eris.Wrap(err, "postgres: scan followup")
		}
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list followups iterate")
}

func (s *PostgresStore) LastActivity(ctx context.Context, jobID string) (*time.Time, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT MAX(email_date) FROM followups WHERE job_id = $1`, jobID)

	var ts *time.Time
	if err := row.Scan(&ts); err != nil {
		return nil, eris.Wrapf(err, "postgres: last activity %s", jobID)
	}
	return ts, nil
}

func (s *PostgresStore) ListResumeVariants(ctx context.Context) ([]model.ResumeVariant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT resume_id, name, focus_areas, content, usage_count FROM resume_variants ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list resume variants")
	}
	defer rows.Close()

	var out []model.ResumeVariant
	for rows.Next() {
		var v model.ResumeVariant
		var focusJSON []byte
		if err := rows.Scan(&v.ResumeID, &v.Name, &focusJSON, &v.Content, &v.UsageCount); err != nil {
			return nil, eris.Wrap(err, "postgres: scan resume variant")
		}
		if err := json.Unmarshal(focusJSON, &v.FocusAreas); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal focus areas")
		}
		out = append(out, v)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list resume variants iterate")
}

func (s *PostgresStore) UpsertResumeVariant(ctx context.Context, v model.ResumeVariant) error {
	if v.ResumeID == "" {
		v.ResumeID = uuid.New().String()
	}
	focusJSON, err := json.Marshal(v.FocusAreas)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal focus areas")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO resume_variants (resume_id, name, focus_areas, content, usage_count)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (name) DO UPDATE SET focus_areas = EXCLUDED.focus_areas, content = EXCLUDED.content`,
		v.ResumeID, v.Name, focusJSON, v.Content, v.UsageCount,
	)
	return eris.Wrapf(err, "postgres: upsert resume variant %s", v.Name)
}

func (s *PostgresStore) IncrementResumeUsage(ctx context.Context, name string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE resume_variants SET usage_count = usage_count + 1 WHERE name = $1`, name)
	return eris.Wrapf(err, "postgres: increment resume usage %s", name)
}

// scanPgJob scans a job row from pgx.
func scanPgJob(row pgx.Row) (*model.Job, error) {
	var j model.Job
	var score *int

	err := row.Scan(
		&j.JobID, &j.Title, &j.Company, &j.Location, &j.URL, &j.Source,
		&j.EmailDate, &j.CreatedAt, &j.UpdatedAt,
		&j.EnrichmentStatus, &j.Status, &score, &j.SalaryEstimate, &j.SalaryConfidence,
		&j.IsAggregator, &j.FullDescription, &j.Notes, &j.CoverLetter,
		&j.ResumeRecommendation, &j.LogoURL, &j.LastError,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.New("job not found")
	}
	if err != nil {
		return nil, err
	}

	j.Score = score
	return &j, nil
}

