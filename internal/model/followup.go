package model

import "time"

// Classification labels a piece of post-application correspondence.
type Classification string

const (
	ClassConfirmation Classification = "confirmation"
	ClassInterview    Classification = "interview"
	ClassOffer        Classification = "offer"
	ClassRejection    Classification = "rejection"
	ClassAssessment   Classification = "assessment"
	ClassOther        Classification = "other"
)

// FollowupEmail records one classified correspondence message. JobID is nil
// when the fuzzy company match was ambiguous; stored unlinked rather than
// guessed.
type FollowupEmail struct {
	ID             string         `json:"id"`
	JobID          *string        `json:"job_id,omitempty"`
	MessageRef     string         `json:"message_ref"`
	Subject        string         `json:"subject"`
	SenderEmail    string         `json:"sender_email"`
	EmailDate      time.Time      `json:"email_date"`
	Classification Classification `json:"classification"`
	Confidence     float64        `json:"confidence"`
	Snippet        string         `json:"snippet,omitempty"`
	NeedsReview    bool           `json:"needs_review"`
}
