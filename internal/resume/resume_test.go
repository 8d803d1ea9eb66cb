package resume

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"careerbot/internal/domain"
)

func TestBuilderFlow(t *testing.T) {
	var p domain.ResumeProgress
	msg := Start(&p)
	if !strings.HasSuffix(msg, Questions[0].Prompt) || !p.Active {
		t.Fatalf("unexpected start: %q %+v", msg, p)
	}
	answers := []string{"Ada Lovelace", "ada@example.com", "555-0100", "London, UK",
		"Analyst.", "BSc Maths", "Engine notes", "math, writing"}
	for i, a := range answers {
		next, done := Answer(&p, a)
		last := i == len(answers)-1
		if done != last {
			t.Fatalf("answer %d: done=%v", i, done)
		}
		if !last && next != "Thanks! "+Questions[i+1].Prompt {
			t.Errorf("answer %d: unexpected next %q", i, next)
		}
	}
	if p.Active || p.Answers["email"] != "ada@example.com" {
		t.Errorf("unexpected final progress: %+v", p)
	}
	info := InfoFromAnswers(p.Answers)
	if len(info.Skills) != 2 || info.Skills[1] != "writing" {
		t.Errorf("unexpected skills: %v", info.Skills)
	}
}

func TestWantsResume(t *testing.T) {
	if !WantsResume("Can you build my CV?") {
		t.Error("expected trigger")
	}
	if WantsResume("what should I wear to an interview") {
		t.Error("unexpected trigger")
	}
}

type stubCompleter struct {
	out string
	err error
}

func (s stubCompleter) Complete(context.Context, string) (string, error) { return s.out, s.err }

func TestBuilder_Write(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder(stubCompleter{out: "Polished summary."}, dir)
	info := Info{Name: "Ada Lovelace", Email: "ada@example.com", Location: "London", Summary: "raw", Skills: []string{"Math"}}
	path, err := b.Write(context.Background(), info)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if filepath.Base(path) != "resume_Ada_Lovelace.md" {
		t.Errorf("unexpected file name %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	doc := string(data)
	for _, want := range []string{"# Ada Lovelace", "ada@example.com | London", "Polished summary.", "- Math"} {
		if !strings.Contains(doc, want) {
			t.Errorf("resume missing %q:\n%s", want, doc)
		}
	}
}

func TestBuilder_RenderKeepsSummaryOnFailure(t *testing.T) {
	b := NewBuilder(stubCompleter{err: errors.New("quota")}, t.TempDir())
	doc, err := b.Render(context.Background(), Info{Name: "X", Summary: "My own words."})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(doc, "My own words.") {
		t.Errorf("summary should be kept:\n%s", doc)
	}
}
