package resume

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"careerbot/internal/corpus"
	"careerbot/internal/domain"
	"careerbot/internal/llm"
)

// Info is the structured content of a resume.
type Info struct {
	Name       string
	Email      string
	Phone      string
	Location   string
	Summary    string
	Education  string
	Experience string
	Skills     []string
}

// InfoFromAnswers maps builder answers onto Info.
func InfoFromAnswers(answers map[string]string) Info {
	return Info{
		Name:       answers["name"],
		Email:      answers["email"],
		Phone:      answers["phone"],
		Location:   answers["location"],
		Summary:    answers["summary"],
		Education:  answers["education"],
		Experience: answers["experience"],
		Skills:     corpus.SplitSkills(answers["skills"]),
	}
}

func (i Info) Contact() string {
	var parts []string
	for _, p := range []string{i.Email, i.Phone, i.Location} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " | ")
}

var markdown = template.Must(template.New("resume").Parse(`# {{.Name}}

{{.Contact}}

## Professional Summary

{{.Summary}}

## Experience

{{.Experience}}

## Education

{{.Education}}

## Skills
{{range .Skills}}
- {{.}}{{end}}
`))

const polishPrompt = `Rewrite this professional summary for a resume in two or three sentences. ` +
	`Keep every fact, add none, and answer with the summary only.

Summary: %s`

// Builder renders resumes and writes them to a directory.
type Builder struct {
	completer domain.Completer
	outputDir string
}

// NewBuilder returns a Builder. A nil completer keeps summaries as written.
func NewBuilder(completer domain.Completer, outputDir string) *Builder {
	if outputDir == "" {
		outputDir = "resumes"
	}
	return &Builder{completer: completer, outputDir: outputDir}
}

// Render returns the resume as Markdown.
func (b *Builder) Render(ctx context.Context, info Info) (string, error) {
	if b.completer != nil && info.Summary != "" {
		polished, err := llm.Complete(ctx, b.completer, fmt.Sprintf(polishPrompt, info.Summary))
		if err != nil {
			log.Printf("[WARN] resume summary not polished: %v", err)
		} else {
			info.Summary = polished
		}
	}
	var sb strings.Builder
	if err := markdown.Execute(&sb, info); err != nil {
		return "", fmt.Errorf("render resume: %w", err)
	}
	return sb.String(), nil
}

// Write renders info and stores it under the output directory, returning
// the file path.
func (b *Builder) Write(ctx context.Context, info Info) (string, error) {
	doc, err := b.Render(ctx, info)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(b.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create resume dir: %w", err)
	}
	path := filepath.Join(b.outputDir, fileName(info.Name))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(doc), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	log.Printf("[INFO] resume written to %s", path)
	return path, nil
}

func fileName(name string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == ' ':
			sb.WriteRune('_')
		case r == '-' || r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9'):
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "resume.md"
	}
	return "resume_" + sb.String() + ".md"
}
