package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/jobpilot/internal/model"
)

func TestCanAdvanceEnrichment_ForwardOnly(t *testing.T) {
	assert.True(t, CanAdvanceEnrichment(model.EnrichmentPending, model.EnrichmentEnriched))
	assert.True(t, CanAdvanceEnrichment(model.EnrichmentEnriched, model.EnrichmentScored))

	// No skipping, no regression.
	assert.False(t, CanAdvanceEnrichment(model.EnrichmentPending, model.EnrichmentScored))
	assert.False(t, CanAdvanceEnrichment(model.EnrichmentEnriched, model.EnrichmentPending))
	assert.False(t, CanAdvanceEnrichment(model.EnrichmentScored, model.EnrichmentEnriched))
	assert.False(t, CanAdvanceEnrichment(model.EnrichmentScored, model.EnrichmentScored))
}

func TestCanAdvanceEnrichment_UnknownStatus(t *testing.T) {
	assert.False(t, CanAdvanceEnrichment("bogus", model.EnrichmentEnriched))
	assert.False(t, CanAdvanceEnrichment(model.EnrichmentPending, "bogus"))
}

func TestCanAutoAdvance_ForwardPath(t *testing.T) {
	for _, cur := range []model.Status{model.StatusNew, model.StatusInterested, model.StatusApplied} {
		assert.True(t, CanAutoAdvance(cur, model.StatusInterviewing), "from %s", cur)
	}
	assert.True(t, CanAutoAdvance(model.StatusInterviewing, model.StatusOffer))
}

func TestCanAutoAdvance_ConfirmationPath(t *testing.T) {
	assert.True(t, CanAutoAdvance(model.StatusNew, model.StatusApplied))
	assert.True(t, CanAutoAdvance(model.StatusInterested, model.StatusApplied))
	// A stray confirmation must not pull a ghosted job sideways.
	assert.False(t, CanAutoAdvance(model.StatusGhosted, model.StatusApplied))
}

func TestCanAutoAdvance_TerminalNeverOverwritten(t *testing.T) {
	for _, cur := range []model.Status{model.StatusRejected, model.StatusOffer, model.StatusPassed} {
		assert.False(t, CanAutoAdvance(cur, model.StatusInterviewing), "from %s", cur)
		assert.False(t, CanAutoAdvance(cur, model.StatusRejected), "from %s", cur)
	}
}

func TestCanAutoAdvance_RejectionFromAnyNonTerminal(t *testing.T) {
	for _, cur := range []model.Status{
		model.StatusNew, model.StatusInterested, model.StatusApplied,
		model.StatusInterviewing, model.StatusGhosted,
	} {
		assert.True(t, CanAutoAdvance(cur, model.StatusRejected), "from %s", cur)
	}
}

func TestCanAutoAdvance_GhostedIsReEnterable(t *testing.T) {
	// A late interview invite moves a ghosted job forward.
	assert.True(t, CanAutoAdvance(model.StatusGhosted, model.StatusInterviewing))
	assert.True(t, CanAutoAdvance(model.StatusGhosted, model.StatusOffer))
}

func TestCanAutoAdvance_NoBackwardMoves(t *testing.T) {
	assert.False(t, CanAutoAdvance(model.StatusInterviewing, model.StatusApplied))
	assert.False(t, CanAutoAdvance(model.StatusInterviewing, model.StatusInterviewing))
}

func TestStatusForClassification(t *testing.T) {
	tests := []struct {
		class  model.Classification
		status model.Status
		ok     bool
	}{
		{model.ClassConfirmation, model.StatusApplied, true},
		{model.ClassInterview, model.StatusInterviewing, true},
		{model.ClassOffer, model.StatusOffer, true},
		{model.ClassRejection, model.StatusRejected, true},
		{model.ClassAssessment, "", false},
		{model.ClassOther, "", false},
	}
	for _, tc := range tests {
		got, ok := StatusForClassification(tc.class)
		assert.Equal(t, tc.ok, ok, "classification %s", tc.class)
		assert.Equal(t, tc.status, got, "classification %s", tc.class)
	}
}
