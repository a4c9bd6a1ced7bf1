// Package lifecycle defines the legal transitions for both job status fields:
// the pipeline's enrichment_status and the user-facing application status.
package lifecycle

import "github.com/sells-group/jobpilot/internal/model"

// enrichmentRank orders the monotonic enrichment pipeline states.
var enrichmentRank = map[model.EnrichmentStatus]int{
	model.EnrichmentPending:  0,
	model.EnrichmentEnriched: 1,
	model.EnrichmentScored:   2,
}

// CanAdvanceEnrichment reports whether enrichment_status may move from cur to
// next. Only single forward steps are legal; regression never is.
func CanAdvanceEnrichment(cur, next model.EnrichmentStatus) bool {
	cr, ok := enrichmentRank[cur]
	if !ok {
		return false
	}
	nr, ok := enrichmentRank[next]
	if !ok {
		return false
	}
	return nr == cr+1
}

// statusRank places every application status on the canonical partial order
// used by automated classification: new → interested → {applied, ghosted} →
// interviewing → offer. Ghosted is soft-terminal: it shares applied's rank so
// an interview signal can supersede it but a stray confirmation cannot.
var statusRank = map[model.Status]int{
	model.StatusNew:          0,
	model.StatusInterested:   1,
	model.StatusApplied:      2,
	model.StatusGhosted:      2,
	model.StatusInterviewing: 3,
	model.StatusOffer:        4,
}

// IsTerminal reports whether automated classification must never move a job
// out of this status. Ghosted is deliberately excluded.
func IsTerminal(s model.Status) bool {
	switch s {
	case model.StatusRejected, model.StatusOffer, model.StatusPassed:
		return true
	}
	return false
}

// CanAutoAdvance reports whether an automated classification may move a job
// from cur to next. User actions bypass this check entirely.
func CanAutoAdvance(cur, next model.Status) bool {
	if cur == next {
		return false
	}
	if IsTerminal(cur) {
		return false
	}

	// Rejection closes out any non-terminal job.
	if next == model.StatusRejected {
		return true
	}

	cr, curKnown := statusRank[cur]
	nr, nextKnown := statusRank[next]
	if !curKnown || !nextKnown {
		return false
	}
	return nr > cr
}

// StatusForClassification maps a correspondence classification to the status
// it drives toward. The second return is false when the classification has no
// status side effect (assessment, other).
func StatusForClassification(c model.Classification) (model.Status, bool) {
	switch c {
	case model.ClassConfirmation:
		return model.StatusApplied, true
	case model.ClassInterview:
		return model.StatusInterviewing, true
	case model.ClassOffer:
		return model.StatusOffer, true
	case model.ClassRejection:
		return model.StatusRejected, true
	}
	return "", false
}
