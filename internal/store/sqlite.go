package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/jobpilot/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	job_id                TEXT PRIMARY KEY,
	title                 TEXT NOT NULL,
	company               TEXT NOT NULL,
	location              TEXT NOT NULL DEFAULT '',
	url                   TEXT NOT NULL DEFAULT '',
	source                TEXT NOT NULL DEFAULT '',
	email_date            DATETIME NOT NULL,
	created_at            DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at            DATETIME NOT NULL DEFAULT (datetime('now')),
	enrichment_status     TEXT NOT NULL DEFAULT 'pending',
	status                TEXT NOT NULL DEFAULT 'new',
	score                 INTEGER,
	salary_estimate       TEXT NOT NULL DEFAULT '',
	salary_confidence     TEXT NOT NULL DEFAULT 'none',
	is_aggregator         INTEGER NOT NULL DEFAULT 0,
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
	email_date     DATETIME NOT NULL,
	classification TEXT NOT NULL,
	confidence     REAL NOT NULL DEFAULT 0,
	snippet        TEXT NOT NULL DEFAULT '',
	needs_review   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS resume_variants (
	resume_id   TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	focus_areas TEXT NOT NULL DEFAULT '[]',
	content     TEXT NOT NULL,
	usage_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_jobs_enrichment_status ON jobs(enrichment_status);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs(company);
CREATE INDEX IF NOT EXISTS idx_followups_job_id ON followups(job_id);
CREATE INDEX IF NOT EXISTS idx_followups_email_date ON followups(email_date);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const jobColumns = `job_id, title, company, location, url, source, email_date, created_at, updated_at,
	enrichment_status, status, score, salary_estimate, salary_confidence, is_aggregator,
	full_description, notes, cover_letter, resume_recommendation, logo_url, last_error`

func (s *SQLiteStore) InsertJob(ctx context.Context, job model.Job) (bool, error) {
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

	// ON CONFLICT DO NOTHING keeps repeated mailbox scans idempotent: the
	// parser's output never overwrites an existing job.
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (job_id, title, company, location, url, source, email_date, created_at, updated_at, enrichment_status, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(job_id) DO NOTHING`,
		job.JobID, job.Title, job.Company, job.Location, job.URL, job.Source,
		job.EmailDate.UTC(), job.CreatedAt, now, string(job.EnrichmentStatus), string(job.Status),
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: insert job %s", job.JobID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

func (s *SQLiteStore) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE job_id = ?`, jobID)
	return scanJob(row)
}

func (s *SQLiteStore) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE 1=1`
	var args []any

	if filter.EnrichmentStatus != "" {
		query += ` AND enrichment_status = ?`
		args = append(args, string(filter.EnrichmentStatus))
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Company != "" {
		query += ` AND company = ?`
		args = append(args, filter.Company)
	}
	query += ` ORDER BY email_date DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list jobs")
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, eris.Wrap(rows.Err(), "sqlite: list jobs iterate")
}

func (s *SQLiteStore) UpdateEnrichment(ctx context.Context, jobID string, upd EnrichmentUpdate, from, to model.EnrichmentStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET full_description = ?, salary_estimate = ?, salary_confidence = ?,
		 is_aggregator = ?, logo_url = ?, enrichment_status = ?, last_error = '', updated_at = ?
		 WHERE job_id = ? AND enrichment_status = ?`,
		upd.FullDescription, upd.SalaryEstimate, string(upd.SalaryConfidence),
		boolToInt(upd.IsAggregator), upd.LogoURL, string(to), time.Now().UTC(),
		jobID, string(from),
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: update enrichment %s", jobID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

func (s *SQLiteStore) ApplyScore(ctx context.Context, jobID string, upd ScoreUpdate, from, to model.EnrichmentStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET score = ?, notes = ?, resume_recommendation = ?,
		 enrichment_status = ?, last_error = '', updated_at = ?
		 WHERE job_id = ? AND enrichment_status = ?`,
		upd.Score, upd.Notes, upd.ResumeRecommendation,
		string(to), time.Now().UTC(),
		jobID, string(from),
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: apply score %s", jobID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, jobID string, status model.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, updated_at = ? WHERE job_id = ?`,
		string(status), time.Now().UTC(), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update status %s", jobID)
	}
	return checkRowsAffected(res, "job", jobID)
}

func (s *SQLiteStore) UpdateCoverLetter(ctx context.Context, jobID string, letter string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET cover_letter = ?, updated_at = ? WHERE job_id = ?`,
		letter, time.Now().UTC(), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update cover letter %s", jobID)
	}
	return checkRowsAffected(res, "job", jobID)
}

func (s *SQLiteStore) RecordJobError(ctx context.Context, jobID string, msg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET last_error = ?, updated_at = ? WHERE job_id = ?`,
		msg, time.Now().UTC(), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: record job error %s", jobID)
	}
	return checkRowsAffected(res, "job", jobID)
}

func (s *SQLiteStore) InsertFollowup(ctx context.Context, f model.FollowupEmail) (bool, error) {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}

	var jobID any
	if f.JobID != nil {
		jobID = *f.JobID
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO followups (id, job_id, message_ref, subject, sender_email, email_date, classification, confidence, snippet, needs_review)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(message_ref) DO NOTHING`,
		f.ID, jobID, f.MessageRef, f.Subject, f.SenderEmail, f.EmailDate.UTC(),
		string(f.Classification), f.Confidence, f.Snippet, boolToInt(f.NeedsReview),
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: insert followup %s", f.MessageRef)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

func (s *SQLiteStore) ListFollowups(ctx context.Context, jobID string) ([]model.FollowupEmail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_id, message_ref, subject, sender_email, email_date, classification, confidence, snippet, needs_review
		 FROM followups WHERE job_id = ? ORDER BY email_date ASC`, jobID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list followups")
	}
	defer rows.Close()

	var out []model.FollowupEmail
	for rows.Next() {
		f, err := scanFollowup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list followups iterate")
}

func (s *SQLiteStore) LastActivity(ctx context.Context, jobID string) (*time.Time, error) {
	// MAX(email_date) loses the column's DATETIME decltype, so the driver
	// returns a raw string; select the column directly to keep time.Time.
	row := s.db.QueryRowContext(ctx,
		`SELECT email_date FROM followups WHERE job_id = ? ORDER BY email_date DESC LIMIT 1`, jobID)

	var ts time.Time
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: last activity %s", jobID)
	}
	t := ts.UTC()
	return &t, nil
}

func (s *SQLiteStore) ListResumeVariants(ctx context.Context) ([]model.ResumeVariant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT resume_id, name, focus_areas, content, usage_count FROM resume_variants ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list resume variants")
	}
	defer rows.Close()

	var out []model.ResumeVariant
	for rows.Next() {
		var v model.ResumeVariant
		var focusJSON string
		if err := rows.Scan(&v.ResumeID, &v.Name, &focusJSON, &v.Content, &v.UsageCount); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan resume variant")
		}
		if err := json.Unmarshal([]byte(focusJSON), &v.FocusAreas); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal focus areas")
		}
		out = append(out, v)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list resume variants iterate")
}

func (s *SQLiteStore) UpsertResumeVariant(ctx context.Context, v model.ResumeVariant) error {
	if v.ResumeID == "" {
		v.ResumeID = uuid.New().String()
	}
	focusJSON, err := json.Marshal(v.FocusAreas)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal focus areas")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO resume_variants (resume_id, name, focus_areas, content, usage_count)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET focus_areas = excluded.focus_areas, content = excluded.content`,
		v.ResumeID, v.Name, string(focusJSON), v.Content, v.UsageCount,
	)
	return eris.Wrapf(err, "sqlite: upsert resume variant %s", v.Name)
}

func (s *SQLiteStore) IncrementResumeUsage(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE resume_variants SET usage_count = usage_count + 1 WHERE name = ?`, name)
	return eris.Wrapf(err, "sqlite: increment resume usage %s", name)
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type scannable interface {
	Scan(dest ...any) error
}

func scanJob(row scannable) (*model.Job, error) {
	var j model.Job
	var score sql.NullInt64
	var isAggregator int

	err := row.Scan(
		&j.JobID, &j.Title, &j.Company, &j.Location, &j.URL, &j.Source,
		&j.EmailDate, &j.CreatedAt, &j.UpdatedAt,
		&j.EnrichmentStatus, &j.Status, &score, &j.SalaryEstimate, &j.SalaryConfidence,
		&isAggregator, &j.FullDescription, &j.Notes, &j.CoverLetter,
		&j.ResumeRecommendation, &j.LogoURL, &j.LastError,
	)
	if err == sql.ErrNoRows {
		return nil, eris.New("job not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan job")
	}

	if score.Valid {
		v := int(score.Int64)
		j.Score = &v
	}
	j.IsAggregator = isAggregator != 0
	return &j, nil
}

func scanFollowup(row scannable) (*model.FollowupEmail, error) {
	var f model.FollowupEmail
	var jobID sql.NullString
	var needsReview int

	err := row.Scan(
		&f.ID, &jobID, &f.MessageRef, &f.Subject, &f.SenderEmail, &f.EmailDate,
		&f.Classification, &f.Confidence, &f.Snippet, &needsReview,
	)
	if err != nil {
		return nil, eris.Wrap(err, "scan followup")
	}

	if jobID.Valid {
		f.JobID = &jobID.String
	}
	f.NeedsReview = needsReview != 0
	return &f, nil
}
