package model

// ResumeVariant is one tailored resume the scoring stage can recommend.
type ResumeVariant struct {
	ResumeID   string   `json:"resume_id"`
	Name       string   `json:"name"`
	FocusAreas []string `json:"focus_areas,omitempty"`
	Content    string   `json:"content"`
	UsageCount int      `json:"usage_count"`
}
