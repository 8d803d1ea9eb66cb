// Package assistant routes a user turn to the handler for the conversation's
// mode and records the reply, together with any job candidates it showed.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"careerbot/internal/domain"
	"careerbot/internal/formatter"
	"careerbot/internal/llm"
	"careerbot/internal/recommend"
	"careerbot/internal/resume"
	"careerbot/internal/service"
	"careerbot/internal/tracker"
)

var ErrEmptyInput = errors.New("empty message")

// Searcher is the slice of the search service the assistant uses.
type Searcher interface {
	SearchJobRecords(ctx context.Context, query string, topK int) ([]domain.JobRecord, error)
	ContextChunks(ctx context.Context, query string, topK int) ([]string, error)
	Database() *recommend.Database
}

type Config struct {
	ListingTopK       int
	ContextTopK       int
	RecommendCount    int
	KeywordMaxResults int
}

func DefaultConfig() Config {
	return Config{
		ListingTopK:       service.DefaultListingTopK,
		ContextTopK:       service.DefaultContextTopK,
		RecommendCount:    recommend.DefaultRecommendCount,
		KeywordMaxResults: recommend.DefaultMaxResults,
	}
}

var welcomes = map[domain.Mode]string{
	domain.ModeGeneral:    "Hello! I'm your career companion. How can I help you today?",
	domain.ModeJobs:       "I'll help you find your ideal career opportunity! I've selected some job listings that match your profile. What specific roles or industries interest you?",
	domain.ModeResume:     "Welcome to the Resume Builder! I can help you create a professional resume by asking you a series of questions. Just say 'build resume' or 'create resume' to get started.",
	domain.ModeInterview:  "Let's prepare for your interviews! What type of questions do you need help with?",
	domain.ModeMentorship: "Connecting you with mentors in your field. What area are you interested in?",
}

// Assistant answers user turns. It holds no per-conversation state; every
// call receives the conversation it works on.
type Assistant struct {
	search    Searcher
	completer domain.Completer
	formatter *formatter.Formatter
	resume    *resume.Builder
	cfg       Config
}

// New wires an Assistant. completer may be nil, in which case every model
// answer is replaced by its fallback text.
func New(search Searcher, completer domain.Completer, f *formatter.Formatter, rb *resume.Builder, cfg Config) *Assistant {
	def := DefaultConfig()
	if cfg.ListingTopK <= 0 {
		cfg.ListingTopK = def.ListingTopK
	}
	if cfg.ContextTopK <= 0 {
		cfg.ContextTopK = def.ContextTopK
	}
	if cfg.RecommendCount <= 0 {
		cfg.RecommendCount = def.RecommendCount
	}
	if cfg.KeywordMaxResults <= 0 {
		cfg.KeywordMaxResults = def.KeywordMaxResults
	}
	if f == nil {
		f = formatter.New(nil, nil)
	}
	if rb == nil {
		rb = resume.NewBuilder(completer, "")
	}
	return &Assistant{search: search, completer: completer, formatter: f, resume: rb, cfg: cfg}
}

// ParseMode validates a mode name.
func ParseMode(s string) (domain.Mode, bool) {
	m := domain.Mode(strings.ToLower(strings.TrimSpace(s)))
	_, ok := welcomes[m]
	return m, ok
}

// Welcome returns the greeting for mode.
func Welcome(mode domain.Mode) string {
	if w, ok := welcomes[mode]; ok {
		return w
	}
	return welcomes[domain.ModeGeneral]
}

// SwitchMode moves conv to mode and appends the mode's greeting. Entering
// jobs mode also shows recommendations.
func (a *Assistant) SwitchMode(conv *domain.Conversation, mode domain.Mode) domain.Turn {
	conv.Mode = mode
	conv.Resume = domain.ResumeProgress{}
	if mode != domain.ModeJobs {
		return conv.Append(domain.RoleAssistant, Welcome(mode), nil)
	}
	jobs := recommend.RecommendedJobs(conv.UserMessages(), a.search.Database(), a.cfg.RecommendCount)
	if len(jobs) == 0 {
		return conv.Append(domain.RoleAssistant, Welcome(mode), nil)
	}
	content := Welcome(mode) + "\n\n" + recommend.FormatJobListings(jobs)
	return conv.Append(domain.RoleAssistant, content, &domain.CandidateSet{Jobs: jobs})
}

// Handle appends input as a user turn, answers it and appends the reply.
// Service failures degrade to fallback text; only an empty input or a
// cancelled context is an error.
func (a *Assistant) Handle(ctx context.Context, conv *domain.Conversation, input string) (domain.Turn, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return domain.Turn{}, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return domain.Turn{}, err
	}
	conv.Append(domain.RoleUser, input, nil)

	var (
		content string
		set     *domain.CandidateSet
	)
	switch conv.Mode {
	case domain.ModeJobs:
		content, set = a.handleJobs(ctx, conv, input)
	case domain.ModeResume:
		content = a.handleResume(ctx, conv, input)
	case domain.ModeInterview:
		content = llm.CompleteOr(ctx, a.completer, topicPrompt(conv, "Interview", input), interviewFallback)
	case domain.ModeMentorship:
		content = llm.CompleteOr(ctx, a.completer, topicPrompt(conv, "Mentorship", input), mentorshipFallback)
	default:
		content = a.handleGeneral(ctx, conv, input)
	}
	if err := ctx.Err(); err != nil {
		conv.Turns = conv.Turns[:len(conv.Turns)-1]
		return domain.Turn{}, err
	}
	return conv.Append(domain.RoleAssistant, content, set), nil
}

var searchPhrases = []string{
	"looking for", "interested in", "searching for", "search for", "find", "seeking",
	"hunting", "need a job", "want a job", "job in", "show me",
}

var recommendPhrases = []string{"recommend", "show me jobs", "show me some jobs", "any jobs", "suggest"}

func (a *Assistant) handleJobs(ctx context.Context, conv *domain.Conversation, input string) (string, *domain.CandidateSet) {
	lower := strings.ToLower(input)
	active := conv.ActiveCandidates()

	if containsAny(lower, recommendPhrases) {
		return a.recommendations(conv)
	}
	if containsAny(lower, searchPhrases) && !namesCandidate(input, active) {
		return a.searchJobs(ctx, conv, input)
	}
	if res, ok := tracker.ResolveFollowup(input, conv); ok {
		content := a.formatter.FormatJobDetail(input, res.Job)
		if extra := a.elaborate(ctx, input, res.Job); extra != "" {
			content += "\n\n---\n\n" + extra
		}
		return content, active
	}
	return a.recommendations(conv)
}

func namesCandidate(input string, set *domain.CandidateSet) bool {
	if set == nil {
		return false
	}
	for _, j := range set.Jobs {
		if tracker.Matches(input, j) {
			return true
		}
	}
	return false
}

// searchJobs tries semantic search, then keyword search on the phrase the
// user asked for, then category recommendations.
func (a *Assistant) searchJobs(ctx context.Context, conv *domain.Conversation, input string) (string, *domain.CandidateSet) {
	jobs, err := a.search.SearchJobRecords(ctx, input, a.cfg.ListingTopK)
	if err != nil {
		log.Printf("[WARN] semantic search failed, using keyword search: %v", err)
	}
	db := a.search.Database()
	if len(jobs) == 0 {
		jobs = recommend.SearchJobs(keywordQuery(input), db, a.cfg.KeywordMaxResults)
	}
	if len(jobs) == 0 {
		jobs = recommend.RecommendedJobs(conv.UserMessages(), db, a.cfg.RecommendCount)
	}
	if len(jobs) == 0 {
		return recommend.FormatJobListings(nil), nil
	}
	content := fmt.Sprintf("Based on your interest in %s, here are some jobs that might be a good fit:\n\n", input) +
		recommend.FormatJobListings(jobs)
	return content, &domain.CandidateSet{Jobs: jobs, Query: input, Preference: input}
}

func (a *Assistant) recommendations(conv *domain.Conversation) (string, *domain.CandidateSet) {
	jobs := recommend.RecommendedJobs(conv.UserMessages(), a.search.Database(), a.cfg.RecommendCount)
	if len(jobs) == 0 {
		return recommend.FormatJobListings(nil), nil
	}
	return recommend.FormatJobListings(jobs), &domain.CandidateSet{Jobs: jobs}
}

func (a *Assistant) elaborate(ctx context.Context, input string, job domain.JobRecord) string {
	if a.completer == nil {
		return ""
	}
	out, err := llm.Complete(ctx, a.completer, jobPrompt(input, job))
	if err != nil {
		log.Printf("[WARN] job elaboration skipped: %v", err)
		return ""
	}
	return out
}

var queryFillers = []string{"a ", "an ", "some ", "for ", "the "}

var querySuffixes = []string{" jobs", " job", " roles", " role", " positions", " position"}

// keywordQuery extracts what follows the first search phrase, so "I'm
// looking for a data analyst job" searches for "data analyst".
func keywordQuery(input string) string {
	q := strings.ToLower(input)
	for _, p := range searchPhrases {
		if i := strings.Index(q, p); i >= 0 {
			q = q[i+len(p):]
			break
		}
	}
	q = strings.Trim(q, " .,!?")
	for changed := true; changed; {
		changed = false
		for _, f := range queryFillers {
			if strings.HasPrefix(q, f) {
				q, changed = strings.TrimPrefix(q, f), true
			}
		}
	}
	for _, s := range querySuffixes {
		if strings.HasSuffix(q, s) {
			q = strings.TrimSuffix(q, s)
			break
		}
	}
	return strings.TrimSpace(q)
}

func (a *Assistant) handleGeneral(ctx context.Context, conv *domain.Conversation, input string) string {
	if conv.ActiveCandidates() == nil && !IsCareerQuestion(input) {
		return offTopicMessage
	}
	chunks, err := a.search.ContextChunks(ctx, input, a.cfg.ContextTopK)
	if err != nil {
		log.Printf("[WARN] context retrieval failed: %v", err)
	}
	return llm.CompleteOr(ctx, a.completer, ragPrompt(conv, input, chunks), contextFallback(chunks))
}

func (a *Assistant) handleResume(ctx context.Context, conv *domain.Conversation, input string) string {
	if !conv.Resume.Active {
		if resume.WantsResume(input) {
			return resume.Start(&conv.Resume)
		}
		return llm.CompleteOr(ctx, a.completer, topicPrompt(conv, "Resume", input), resumeFallback)
	}
	next, done := resume.Answer(&conv.Resume, input)
	if !done {
		return next
	}
	path, err := a.resume.Write(ctx, resume.InfoFromAnswers(conv.Resume.Answers))
	if err != nil {
		log.Printf("[ERROR] resume generation: %v", err)
		return fmt.Sprintf("I encountered an error while generating your resume: %s. Please try again.",
			llm.Truncate(err.Error(), 120))
	}
	return fmt.Sprintf("Great! I've created your resume based on the information you provided. "+
		"It is saved at %s.\n\nIs there anything else you'd like me to help you with?", path)
}
