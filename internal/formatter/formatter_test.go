package formatter

import (
	"errors"
	"strings"
	"testing"

	"careerbot/internal/domain"
)

func acmeJob() domain.JobRecord {
	return domain.JobRecord{
		ID: "1", Title: "Backend Developer", Company: "Acme", Location: "Remote",
		JobType: "Full-time", Skills: []string{"Go", "Python", "SQL", "Docker"},
		ApplyLink: "https://acme.example/apply",
	}
}

func TestKeywordClassifier(t *testing.T) {
	cases := []struct {
		query string
		want  Intent
	}{
		{"yes", IntentApplication},
		{"I want", IntentApplication},
		{"how do I apply?", IntentApplication},
		{"what does it pay", IntentSalary},
		{"what are the requirements", IntentSkills},
		{"tell me about the company culture", IntentCompany},
		{"how should I prepare for the interview", IntentInterview},
		{"tell me about backend developer at acme", IntentGeneral},
	}
	var c KeywordClassifier
	for _, tc := range cases {
		if got := c.Classify(tc.query); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.query, got, tc.want)
		}
	}
}

func TestFormatJobDetail_EveryBranchEndsWithQuestion(t *testing.T) {
	for _, q := range []string{"yes", "salary?", "skills needed", "company culture", "interview prep", "tell me more about it"} {
		out := FormatJobDetail(q, acmeJob())
		if !strings.HasSuffix(out, "?") {
			t.Errorf("detail for %q should end with a question:\n%s", q, out)
		}
		if !strings.Contains(out, "Acme") {
			t.Errorf("detail for %q should name the company:\n%s", q, out)
		}
		if strings.Contains(out, "\n\n\n") {
			t.Errorf("detail for %q has stray blank lines:\n%s", q, out)
		}
	}
}

func TestFormatJobDetail_GeneralOverview(t *testing.T) {
	job := acmeJob()
	job.Description = "We build payment APIs in Go. Lunch is catered on Fridays. " +
		"The APIs serve payment partners worldwide. Parking is available."
	out := FormatJobDetail("tell me about backend developer at acme", job)
	if !strings.HasPrefix(out, "### Backend Developer at Acme") {
		t.Errorf("unexpected title:\n%s", out)
	}
	for _, want := range []string{
		"**Skills:** Go, Python, SQL, Docker",
		"We build payment APIs in Go. The APIs serve payment partners worldwide.",
		"[Apply Now](https://acme.example/apply)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("overview missing %q:\n%s", want, out)
		}
	}
}

func TestFormatJobDetail_ApplicationTips(t *testing.T) {
	out := FormatJobDetail("yes", acmeJob())
	if !strings.HasPrefix(out, "### Application Tips for Backend Developer at Acme") {
		t.Errorf("unexpected title:\n%s", out)
	}
	if !strings.Contains(out, "Highlight your experience with Go, Python, SQL.") {
		t.Errorf("expected top three skills:\n%s", out)
	}

	job := acmeJob()
	job.Skills = nil
	job.ApplyLink = domain.PlaceholderLink
	out = FormatJobDetail("yes", job)
	if !strings.Contains(out, "relevant technologies and frameworks") {
		t.Errorf("expected generic skills text:\n%s", out)
	}
	if strings.Contains(out, "Apply Now") {
		t.Errorf("placeholder link must not render:\n%s", out)
	}
}

type fixedClassifier Intent

func (f fixedClassifier) Classify(string) Intent { return Intent(f) }

type failingSummarizer struct{}

func (failingSummarizer) Summarize(string, int) (string, error) { return "", errors.New("boom") }

func TestFormatter_InjectedCollaborators(t *testing.T) {
	f := New(fixedClassifier(IntentInterview), failingSummarizer{})
	job := acmeJob()
	job.Description = "Some text. More text. Even more."
	out := f.FormatJobDetail("anything", job)
	if !strings.HasPrefix(out, "### Interview Preparation for Backend Developer at Acme") {
		t.Errorf("classifier not used:\n%s", out)
	}
	if f.Classify("x") != IntentInterview {
		t.Error("Classify should delegate to the classifier")
	}
}
