// Package formatter renders the detail view of a single job, picking a
// template by the intent of the follow-up that selected it.
package formatter

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"text/template"

	"careerbot/internal/domain"
	"careerbot/internal/recommend"
	"careerbot/internal/summarizer"
)

const summarySentences = 2

var blankLines = regexp.MustCompile(`\n{3,}`)

var templates = template.Must(template.New(IntentGeneral.String()).Parse(generalTemplate))

func init() {
	for intent, text := range map[Intent]string{
		IntentApplication: applicationTemplate,
		IntentSalary:      salaryTemplate,
		IntentSkills:      skillsTemplate,
		IntentCompany:     companyTemplate,
		IntentInterview:   interviewTemplate,
	} {
		template.Must(templates.New(intent.String()).Parse(text))
	}
}

type detailData struct {
	domain.JobRecord
	SkillList string
	TopSkills string
	Summary   string
}

// Formatter renders job detail views.
type Formatter struct {
	classifier IntentClassifier
	summarizer domain.Summarizer
}

// New returns a Formatter. Nil arguments select KeywordClassifier and the
// frequency summarizer.
func New(classifier IntentClassifier, s domain.Summarizer) *Formatter {
	if classifier == nil {
		classifier = KeywordClassifier{}
	}
	if s == nil {
		s = summarizer.NewFrequencySummarizer()
	}
	return &Formatter{classifier: classifier, summarizer: s}
}

var defaultFormatter = New(nil, nil)

// FormatJobDetail renders job with the default classifier and summarizer.
func FormatJobDetail(query string, job domain.JobRecord) string {
	return defaultFormatter.FormatJobDetail(query, job)
}

// Classify exposes the formatter's intent decision.
func (f *Formatter) Classify(query string) Intent {
	return f.classifier.Classify(query)
}

// FormatJobDetail renders the template for the intent of query.
func (f *Formatter) FormatJobDetail(query string, job domain.JobRecord) string {
	intent := f.classifier.Classify(query)
	data := detailData{
		JobRecord: job,
		SkillList: recommend.SkillsText(job),
		TopSkills: topSkills(job.Skills, 3),
		Summary:   f.summary(job.Description),
	}
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, intent.String(), data); err != nil {
		log.Printf("[ERROR] render %s detail: %v", intent, err)
		return fmt.Sprintf("### %s at %s\n\nWould you like more details about this position?", job.Title, job.Company)
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(b.String(), "\n\n"))
}

// FormatListings renders a job list.
func (f *Formatter) FormatListings(jobs []domain.JobRecord) string {
	return recommend.FormatJobListings(jobs)
}

func (f *Formatter) summary(description string) string {
	if strings.TrimSpace(description) == "" {
		return ""
	}
	s, err := f.summarizer.Summarize(description, summarySentences)
	if err != nil {
		log.Printf("[WARN] summarize description: %v", err)
		return ""
	}
	return s
}

func topSkills(skills []string, n int) string {
	if len(skills) == 0 {
		return "relevant technologies and frameworks"
	}
	return strings.Join(skills[:min(n, len(skills))], ", ")
}
