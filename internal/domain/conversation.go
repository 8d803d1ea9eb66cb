package domain

import (
	"maps"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Mode selects how the assistant routes a turn.
type Mode string

const (
	ModeGeneral    Mode = "general"
	ModeJobs       Mode = "jobs"
	ModeResume     Mode = "resume"
	ModeInterview  Mode = "interview"
	ModeMentorship Mode = "mentorship"
)

// CandidateSet is the ordered list of jobs most recently shown to the user,
// with the query that produced it and the user's stated preference.
type CandidateSet struct {
	Jobs       []JobRecord `json:"jobs"`
	Query      string      `json:"query"`
	Preference string      `json:"preference,omitempty"`
}

// Turn is one message in a conversation. Assistant turns that displayed jobs
// carry the CandidateSet they displayed.
type Turn struct {
	Role       Role          `json:"role"`
	Content    string        `json:"content"`
	Candidates *CandidateSet `json:"candidates,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// ResumeProgress tracks the question-driven resume builder.
type ResumeProgress struct {
	Active  bool              `json:"active"`
	Step    int               `json:"step"`
	Answers map[string]string `json:"answers,omitempty"`
}

// Conversation is the per-user chat state. It is owned by a single caller
// and passed explicitly to every operation that needs it.
type Conversation struct {
	ID     string
	UserID string
	Mode   Mode
	Resume ResumeProgress
	Turns  []Turn
}

// Append adds a turn stamped with the current time and returns it.
func (c *Conversation) Append(role Role, content string, set *CandidateSet) Turn {
	t := Turn{Role: role, Content: content, Candidates: set, CreatedAt: time.Now().UTC()}
	c.Turns = append(c.Turns, t)
	return t
}

// ActiveCandidates returns the CandidateSet of the newest assistant turn that
// carries one. A trailing user turn (the one being answered) is skipped.
// Older sets are never consulted once a newer one is found.
func (c *Conversation) ActiveCandidates() *CandidateSet {
	end := len(c.Turns) - 1
	if end >= 0 && c.Turns[end].Role == RoleUser {
		end--
	}
	for i := end; i >= 0; i-- {
		t := c.Turns[i]
		if t.Role == RoleAssistant && t.Candidates != nil {
			return t.Candidates
		}
	}
	return nil
}

// UserMessages returns the content of every user turn in order.
func (c *Conversation) UserMessages() []string {
	var out []string
	for _, t := range c.Turns {
		if t.Role == RoleUser {
			out = append(out, t.Content)
		}
	}
	return out
}

// Clone returns a copy that can be modified without touching c. Candidate
// sets are shared since they are never mutated.
func (c *Conversation) Clone() *Conversation {
	out := *c
	out.Turns = append([]Turn(nil), c.Turns...)
	out.Resume.Answers = maps.Clone(c.Resume.Answers)
	return &out
}

// Reset drops the history and resume progress but keeps identity and mode.
func (c *Conversation) Reset() {
	c.Turns = nil
	c.Resume = ResumeProgress{}
}
