package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/jobpilot/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testJob(id string) model.Job {
	return model.Job{
		JobID:     id,
		Title:     "Senior Backend Engineer",
		Company:   "Acme",
		Location:  "Remote",
		URL:       "https://acme.com/jobs/1",
		Source:    "linkedin",
		EmailDate: time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC),
	}
}

// --- Jobs ---

func TestSQLite_InsertJob_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	inserted, err := st.InsertJob(ctx, testJob("job-1"))
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same fingerprint again: no-op, original row untouched.
	dup := testJob("job-1")
	dup.Title = "Different Title"
	inserted, err = st.InsertJob(ctx, dup)
	require.NoError(t, err)
	assert.False(t, inserted)

	j, err := st.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Senior Backend Engineer", j.Title)
}

func TestSQLite_InsertJob_Defaults(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.InsertJob(ctx, testJob("job-1"))
	require.NoError(t, err)

	j, err := st.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.EnrichmentPending, j.EnrichmentStatus)
	assert.Equal(t, model.StatusNew, j.Status)
	assert.Nil(t, j.Score)
	assert.Equal(t, model.SalaryNone, j.SalaryConfidence)
}

func TestSQLite_GetJob_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetJob(context.Background(), "nonexistent")
	require.Error(t, err)
}

func TestSQLite_ListJobs_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a := testJob("job-a")
	b := testJob("job-b")
	b.Company = "Initech"
	c := testJob("job-c")
	for _, j := range []model.Job{a, b, c} {
		_, err := st.InsertJob(ctx, j)
		require.NoError(t, err)
	}
	ok, err := st.UpdateEnrichment(ctx, "job-c", EnrichmentUpdate{FullDescription: "d"},
		model.EnrichmentPending, model.EnrichmentEnriched)
	require.NoError(t, err)
	require.True(t, ok)

	pending, err := st.ListJobs(ctx, JobFilter{EnrichmentStatus: model.EnrichmentPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	acme, err := st.ListJobs(ctx, JobFilter{Company: "Acme"})
	require.NoError(t, err)
	assert.Len(t, acme, 2)

	limited, err := st.ListJobs(ctx, JobFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLite_UpdateEnrichment_Guarded(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.InsertJob(ctx, testJob("job-1"))
	require.NoError(t, err)

	upd := EnrichmentUpdate{
		FullDescription:  "We are hiring...",
		SalaryEstimate:   "$140k-$160k",
		SalaryConfidence: model.SalaryHigh,
		LogoURL:          "https://acme.com/logo.png",
	}
	ok, err := st.UpdateEnrichment(ctx, "job-1", upd, model.EnrichmentPending, model.EnrichmentEnriched)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second attempt from the same prior state loses the race.
	ok, err = st.UpdateEnrichment(ctx, "job-1", upd, model.EnrichmentPending, model.EnrichmentEnriched)
	require.NoError(t, err)
	assert.False(t, ok)

	j, err := st.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.EnrichmentEnriched, j.EnrichmentStatus)
	assert.Equal(t, "$140k-$160k", j.SalaryEstimate)
	assert.Equal(t, model.SalaryHigh, j.SalaryConfidence)
}

func TestSQLite_ApplyScore_RequiresEnriched(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.InsertJob(ctx, testJob("job-1"))
	require.NoError(t, err)

	upd := ScoreUpdate{Score: 78, Notes: "strong match", ResumeRecommendation: "backend"}

	// Still pending: scoring must not apply.
	ok, err := st.ApplyScore(ctx, "job-1", upd, model.EnrichmentEnriched, model.EnrichmentScored)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = st.UpdateEnrichment(ctx, "job-1", EnrichmentUpdate{FullDescription: "d"},
		model.EnrichmentPending, model.EnrichmentEnriched)
	require.NoError(t, err)

	ok, err = st.ApplyScore(ctx, "job-1", upd, model.EnrichmentEnriched, model.EnrichmentScored)
	require.NoError(t, err)
	assert.True(t, ok)

	j, err := st.GetJob(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, j.Score)
	assert.Equal(t, 78, *j.Score)
	assert.Equal(t, model.EnrichmentScored, j.EnrichmentStatus)
}

func TestSQLite_ApplyScore_Rescore(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.InsertJob(ctx, testJob("job-1"))
	require.NoError(t, err)
	_, err = st.UpdateEnrichment(ctx, "job-1", EnrichmentUpdate{FullDescription: "d"},
		model.EnrichmentPending, model.EnrichmentEnriched)
	require.NoError(t, err)
	_, err = st.ApplyScore(ctx, "job-1", ScoreUpdate{Score: 60}, model.EnrichmentEnriched, model.EnrichmentScored)
	require.NoError(t, err)

	// Rescore: scored -> scored.
	ok, err := st.ApplyScore(ctx, "job-1", ScoreUpdate{Score: 82, Notes: "revised"},
		model.EnrichmentScored, model.EnrichmentScored)
	require.NoError(t, err)
	assert.True(t, ok)

	j, err := st.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 82, *j.Score)
	assert.Equal(t, "revised", j.Notes)
}

func TestSQLite_UpdateStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.InsertJob(ctx, testJob("job-1"))
	require.NoError(t, err)

	require.NoError(t, st.UpdateStatus(ctx, "job-1", model.StatusApplied))

	j, err := st.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApplied, j.Status)

	err = st.UpdateStatus(ctx, "missing", model.StatusApplied)
	require.Error(t, err)
}

func TestSQLite_RecordJobError_ClearedByEnrichment(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.InsertJob(ctx, testJob("job-1"))
	require.NoError(t, err)

	require.NoError(t, st.RecordJobError(ctx, "job-1", "provider: rate_limited"))

	j, err := st.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "provider: rate_limited", j.LastError)

	_, err = st.UpdateEnrichment(ctx, "job-1", EnrichmentUpdate{FullDescription: "d"},
		model.EnrichmentPending, model.EnrichmentEnriched)
	require.NoError(t, err)

	j, err = st.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Empty(t, j.LastError)
}

func TestSQLite_UpdateCoverLetter(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.InsertJob(ctx, testJob("job-1"))
	require.NoError(t, err)

	require.NoError(t, st.UpdateCoverLetter(ctx, "job-1", "Dear Hiring Manager,"))

	j, err := st.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Dear Hiring Manager,", j.CoverLetter)
}

// --- Follow-ups ---

func TestSQLite_InsertFollowup_DedupOnMessageRef(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.InsertJob(ctx, testJob("job-1"))
	require.NoError(t, err)

	jobID := "job-1"
	f := model.FollowupEmail{
		JobID:          &jobID,
		MessageRef:     "<msg-1@acme.com>",
		Subject:        "Interview next steps",
		SenderEmail:    "recruiter@acme.com",
		EmailDate:      time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC),
		Classification: model.ClassInterview,
		Confidence:     0.92,
	}

	inserted, err := st.InsertFollowup(ctx, f)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = st.InsertFollowup(ctx, f)
	require.NoError(t, err)
	assert.False(t, inserted)

	fs, err := st.ListFollowups(ctx, "job-1")
	require.NoError(t, err)
	require.Len(t, fs, 1)
	assert.Equal(t, model.ClassInterview, fs[0].Classification)
	require.NotNil(t, fs[0].JobID)
	assert.Equal(t, "job-1", *fs[0].JobID)
}

func TestSQLite_InsertFollowup_UnmatchedJob(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	f := model.FollowupEmail{
		MessageRef:     "<orphan@x.com>",
		Subject:        "Thanks for applying",
		SenderEmail:    "noreply@x.com",
		EmailDate:      time.Now().UTC(),
		Classification: model.ClassOther,
	}
	inserted, err := st.InsertFollowup(ctx, f)
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestSQLite_LastActivity(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.InsertJob(ctx, testJob("job-1"))
	require.NoError(t, err)

	ts, err := st.LastActivity(ctx, "job-1")
	require.NoError(t, err)
	assert.Nil(t, ts)

	jobID := "job-1"
	earlier := time.Date(2026, 8, 11, 9, 0, 0, 0, time.UTC)
	later := time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)
	for i, d := range []time.Time{later, earlier} {
		_, err := st.InsertFollowup(ctx, model.FollowupEmail{
			JobID:          &jobID,
			MessageRef:     "<msg-" + string(rune('a'+i)) + "@acme.com>",
			EmailDate:      d,
			Classification: model.ClassOther,
		})
		require.NoError(t, err)
	}

	ts, err = st.LastActivity(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, ts)
	assert.True(t, ts.Equal(later))
}

// --- Resume variants ---

func TestSQLite_ResumeVariants_UpsertAndUsage(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	v := model.ResumeVariant{
		Name:       "backend",
		FocusAreas: []string{"go", "distributed systems"},
		Content:    "resume body",
	}
	require.NoError(t, st.UpsertResumeVariant(ctx, v))

	// Upsert on the same name updates content, keeps usage count.
	require.NoError(t, st.IncrementResumeUsage(ctx, "backend"))
	v.Content = "resume body v2"
	require.NoError(t, st.UpsertResumeVariant(ctx, v))

	vs, err := st.ListResumeVariants(ctx)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "resume body v2", vs[0].Content)
	assert.Equal(t, []string{"go", "distributed systems"}, vs[0].FocusAreas)
	assert.Equal(t, 1, vs[0].UsageCount)
	assert.NotEmpty(t, vs[0].ResumeID)
}
