// Package tracker binds free-text follow-ups to one job of the candidate set
// most recently shown in a conversation.
package tracker

import (
	"log"
	"strings"

	"careerbot/internal/domain"
)

// Reason records which rule selected a job.
type Reason int

const (
	ReasonMatched Reason = iota
	ReasonAffirmed
	ReasonDefaulted
)

func (r Reason) String() string {
	switch r {
	case ReasonMatched:
		return "matched"
	case ReasonAffirmed:
		return "affirmed"
	case ReasonDefaulted:
		return "defaulted"
	default:
		return "unknown"
	}
}

// Resolution is the job a follow-up refers to.
type Resolution struct {
	Job    domain.JobRecord
	Index  int
	Reason Reason
}

var exactAffirmatives = map[string]struct{}{
	"yes": {}, "sure": {}, "okay": {}, "ok": {}, "please": {}, "definitely": {}, "absolutely": {},
}

var affirmativePhrases = []string{"yes", "want", "like to", "interested", "tell me more"}

// Resolve picks one job of set for query. Named jobs win, then affirmatives
// select the first job, and anything else defaults to the first job as well.
// It fails only when set is nil or empty.
func Resolve(query string, set *domain.CandidateSet) (Resolution, bool) {
	if set == nil || len(set.Jobs) == 0 {
		return Resolution{}, false
	}
	for i, job := range set.Jobs {
		if Matches(query, job) {
			return Resolution{Job: job, Index: i, Reason: ReasonMatched}, true
		}
	}
	if IsAffirmative(query) {
		return Resolution{Job: set.Jobs[0], Reason: ReasonAffirmed}, true
	}
	return Resolution{Job: set.Jobs[0], Reason: ReasonDefaulted}, true
}

// ResolveFollowup resolves query against the conversation's active candidate
// set.
func ResolveFollowup(query string, conv *domain.Conversation) (Resolution, bool) {
	if conv == nil {
		return Resolution{}, false
	}
	res, ok := Resolve(query, conv.ActiveCandidates())
	if ok {
		log.Printf("[INFO] follow-up %q resolved to %s at %s (%s)", query, res.Job.Title, res.Job.Company, res.Reason)
	}
	return res, ok
}

// Matches reports whether query names job: title and company both present,
// "title at company", the title with a company word, or a title word with
// the company.
func Matches(query string, job domain.JobRecord) bool {
	q := strings.ToLower(query)
	title := strings.ToLower(strings.TrimSpace(job.Title))
	company := strings.ToLower(strings.TrimSpace(job.Company))
	if title == "" || company == "" {
		return false
	}
	hasTitle := strings.Contains(q, title)
	hasCompany := strings.Contains(q, company)
	switch {
	case hasTitle && hasCompany:
		return true
	case hasTitle && containsAnyToken(q, company):
		return true
	case hasCompany && containsAnyToken(q, title):
		return true
	}
	return strings.Contains(q, title+" at "+company)
}

// IsAffirmative reports whether query is a bare affirmative or contains an
// affirmative phrase.
func IsAffirmative(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if _, ok := exactAffirmatives[q]; ok {
		return true
	}
	for _, p := range affirmativePhrases {
		if strings.Contains(q, p) {
			return true
		}
	}
	return false
}

func containsAnyToken(q, phrase string) bool {
	for _, tok := range strings.Fields(phrase) {
		if strings.Contains(q, tok) {
			return true
		}
	}
	return false
}
