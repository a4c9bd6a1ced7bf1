package model

import "time"

// Email is one raw message handed to the core by a mailbox-access
// collaborator. The core never fetches or authenticates mail itself.
type Email struct {
	MessageRef string    `json:"message_ref"`
	Source     string    `json:"source,omitempty"` // sending service hint, e.g. "linkedin"
	From       string    `json:"from"`
	Subject    string    `json:"subject"`
	Date       time.Time `json:"date"`
	HTML       string    `json:"html,omitempty"`
	Text       string    `json:"text,omitempty"`
}

// Body returns the best available message body, preferring HTML.
func (e Email) Body() string {
	if e.HTML != "" {
		return e.HTML
	}
	return e.Text
}
