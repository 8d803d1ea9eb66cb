// Package resume runs the question-driven resume builder and renders the
// collected answers as Markdown.
package resume

import (
	"strings"

	"careerbot/internal/domain"
)

const startMessage = "Great! I'll help you build your resume. Let's start with some basic information. "

// Question is one step of the builder; Field keys the stored answer.
type Question struct {
	Field  string
	Prompt string
}

var Questions = []Question{
	{"name", "What is your full name?"},
	{"email", "What is your email address?"},
	{"phone", "What is your phone number?"},
	{"location", "What is your location (City, State/Country)?"},
	{"summary", "Please write a brief professional summary (2-3 sentences about your background and career goals)."},
	{"education", "Please share your education details (Degree, Institution, Year)."},
	{"experience", "Please describe your work experience (include positions, companies, dates, and key responsibilities)."},
	{"skills", "What are your key skills? (comma-separated list)"},
}

var triggerWords = []string{"resume", "build", "cv", "create"}

// WantsResume reports whether input asks to start the builder.
func WantsResume(input string) bool {
	q := strings.ToLower(input)
	for _, w := range triggerWords {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}

// Start resets p to the first question and returns the message asking it.
func Start(p *domain.ResumeProgress) string {
	*p = domain.ResumeProgress{Active: true, Answers: make(map[string]string, len(Questions))}
	return startMessage + Questions[0].Prompt
}

// Answer records the answer to the current question. It returns the next
// prompt, or done once every question has been answered.
func Answer(p *domain.ResumeProgress, answer string) (next string, done bool) {
	if !p.Active || p.Step >= len(Questions) {
		return "", true
	}
	if p.Answers == nil {
		p.Answers = make(map[string]string, len(Questions))
	}
	p.Answers[Questions[p.Step].Field] = strings.TrimSpace(answer)
	p.Step++
	if p.Step < len(Questions) {
		return "Thanks! " + Questions[p.Step].Prompt, false
	}
	p.Active = false
	return "", true
}
