package provider

import (
	"fmt"
	"strings"

	"github.com/sells-group/jobpilot/internal/config"
	"github.com/sells-group/jobpilot/internal/model"
)

const filterSystemPrompt = `You screen job postings against a candidate's resume and preferences.
Respond with a single JSON object:
{"keep": bool, "baseline_score": int (1-100), "reason": string}
No markdown, no commentary.`

const analyzeSystemPrompt = `You are a career advisor assessing how well a candidate fits a job posting.
Respond with a single JSON object:
{"score": int (1-100), "strengths": [string], "gaps": [string], "recommendation": string, "resume_to_use": string}
No markdown, no commentary.`

const coverLetterSystemPrompt = `You write concise, specific cover letters. Three short paragraphs,
no filler phrases, grounded only in facts from the resume and analysis provided. Plain text output.`

const interviewSystemPrompt = `You help a candidate prepare interview answers. Answer in first person,
concrete and grounded in the resume. Plain text output.`

const searchSystemPrompt = `You look up publicly known information about a job posting.
Respond with a single JSON object:
{"full_description": string, "salary_estimate": string, "source_url": string}
Use empty strings for anything you cannot determine. No markdown, no commentary.`

const classifySystemPrompt = `You classify job-application correspondence.
Respond with a single JSON object:
{"classification": one of "confirmation", "interview", "offer", "rejection", "assessment", "other", "confidence": float 0-1}
No markdown, no commentary.`

const extractSystemPrompt = `You extract job postings from job-alert email HTML.
Respond with a single JSON object:
{"jobs": [{"title": string, "company": string, "location": string, "url": string}]}
Return an empty list when the email contains no job postings. No markdown, no commentary.`

func jobSummary(job model.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\nCompany: %s\nLocation: %s\n", job.Title, job.Company, job.Location)
	if job.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", job.URL)
	}
	if job.FullDescription != "" {
		fmt.Fprintf(&b, "Description:\n%s\n", job.FullDescription)
	}
	return b.String()
}

func filterPrompt(job model.Job, resume string, prefs config.FilterConfig) string {
	var b strings.Builder
	b.WriteString("Job posting:\n")
	b.WriteString(jobSummary(job))
	fmt.Fprintf(&b, "\nCandidate preferences:\nPrimary locations: %s\nSecondary locations: %s\nRemote acceptable: %t\nExcluded title keywords: %s\n",
		strings.Join(prefs.PrimaryLocations, ", "),
		strings.Join(prefs.SecondaryLocations, ", "),
		prefs.AllowRemote,
		strings.Join(prefs.ExcludedKeywords, ", "),
	)
	b.WriteString("\nResume:\n")
	b.WriteString(resume)
	return b.String()
}

func analyzePrompt(job model.Job, resume string) string {
	var b strings.Builder
	b.WriteString("Job posting:\n")
	b.WriteString(jobSummary(job))
	b.WriteString("\nResume variants (names and contents):\n")
	b.WriteString(resume)
	b.WriteString("\nSet resume_to_use to the name of the best-fitting variant.")
	return b.String()
}

func coverLetterPrompt(job model.Job, resume string, analysis *Analysis) string {
	var b strings.Builder
	b.WriteString("Write a cover letter for this job.\n\nJob posting:\n")
	b.WriteString(jobSummary(job))
	b.WriteString("\nResume:\n")
	b.WriteString(resume)
	if analysis != nil {
		fmt.Fprintf(&b, "\nFit analysis: strengths %s; gaps %s.\n",
			strings.Join(analysis.Strengths, "; "),
			strings.Join(analysis.Gaps, "; "),
		)
	}
	return b.String()
}

func interviewPrompt(question string, job model.Job, resume string, analysis *Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Interview question: %s\n\nJob posting:\n", question)
	b.WriteString(jobSummary(job))
	b.WriteString("\nResume:\n")
	b.WriteString(resume)
	if analysis != nil && analysis.Recommendation != "" {
		fmt.Fprintf(&b, "\nFit analysis recommendation: %s\n", analysis.Recommendation)
	}
	return b.String()
}

func searchPrompt(company, title string) string {
	return fmt.Sprintf("Find the full job description and salary information for the position %q at %q.", title, company)
}

func classifyPrompt(subject, sender, body string) string {
	// Bodies can be enormous; the classifier only needs the opening.
	if len(body) > 4000 {
		body = body[:4000]
	}
	return fmt.Sprintf("Subject: %s\nFrom: %s\n\n%s", subject, sender, body)
}

func extractPrompt(html string) string {
	if len(html) > 30000 {
		html = html[:30000]
	}
	return "Extract all job postings from this email:\n\n" + html
}
