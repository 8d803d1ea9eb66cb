package assistant

import "strings"

// Phrases that show interest in a listing or an application step.
var interestPhrases = []string{
	"interested in", "tell me more about", "more about the", "like to know more",
	"want to apply", "how to apply", "would like", "about this job", "about that job",
	"about the position", "job description", "sounds interesting", "prepare for",
	"apply for", "good fit", "skills needed",
}

var careerTopics = [][]string{
	// career development
	{"career", "profession", "promotion", "transition", "pivot", "advancement", "industry", "sector"},
	// job search
	{"job", "work", "employ", "position", "role", "opening", "vacancy", "hiring", "application",
		"apply", "workplace", "company", "startup", "remote", "hybrid", "office", "opportunit"},
	// compensation
	{"salary", "compensation", "wage", "income", "bonus", "raise", "equity", "negotiat", "benefit"},
	// resume and background
	{"resume", "curriculum vitae", "portfolio", "experience", "qualification", "credential",
		"education", "degree", "certificat", "skill", "expertise"},
	// interviews
	{"interview", "recruiter", "hiring manager", "human resources", "behavioral", "screening",
		"assessment", "case study"},
	// networking and mentorship
	{"mentor", "coach", "advice", "guidance", "networking", "referral", "linkedin", "conference", "workshop"},
	// workplace
	{"colleague", "coworker", "supervisor", "manager", "boss", "team", "leadership", "culture",
		"work-life", "burnout", "productivity", "performance review"},
	// learning
	{"learn", "course", "bootcamp", "training", "upskill", "reskill", "study"},
	// roles
	{"developer", "engineer", "designer", "director", "analyst", "specialist", "consultant",
		"coordinator", "intern", "founder"},
	// technology
	{"coding", "programming", "software", "javascript", "python", "java", "react", "sql",
		"database", "cloud", "frontend", "backend", "fullstack", "data"},
}

var careerPhrases = []string{
	"how to get a", "how to become", "what should i do", "i need help with my",
	"looking for advice", "need guidance", "struggling with", "tips for", "best practices",
	"how do i prepare", "i want to work", "i'm applying", "i want to be", "help me with",
	"recommend", "suggest", "thoughts on",
}

// IsCareerQuestion reports whether query is about careers, jobs or
// professional development.
func IsCareerQuestion(query string) bool {
	q := strings.ToLower(query)
	if containsAny(q, interestPhrases) || containsAny(q, careerPhrases) {
		return true
	}
	for _, words := range careerTopics {
		if containsAny(q, words) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
