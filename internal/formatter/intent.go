package formatter

import "strings"

// Intent is the kind of detail a follow-up asks for.
type Intent int

const (
	IntentGeneral Intent = iota
	IntentApplication
	IntentSalary
	IntentSkills
	IntentCompany
	IntentInterview
)

func (i Intent) String() string {
	switch i {
	case IntentApplication:
		return "application"
	case IntentSalary:
		return "salary"
	case IntentSkills:
		return "skills"
	case IntentCompany:
		return "company"
	case IntentInterview:
		return "interview"
	default:
		return "general"
	}
}

// IntentClassifier maps a follow-up query to an Intent.
type IntentClassifier interface {
	Classify(query string) Intent
}

// Bare replies to "would you like application tips?".
var applicationReplies = map[string]struct{}{
	"yes": {}, "sure": {}, "okay": {}, "ok": {}, "please": {}, "definitely": {},
	"absolutely": {}, "would like": {}, "i want": {},
}

type keywordRule struct {
	intent   Intent
	keywords []string
}

var keywordRules = []keywordRule{
	{IntentApplication, []string{"apply", "application", "resume", "cover letter", "tips"}},
	{IntentSalary, []string{"salary", "compensation", "pay", "wage", "benefits", "package"}},
	{IntentSkills, []string{"skill", "requirement", "qualification", "experience", "tech stack"}},
	{IntentCompany, []string{"company", "culture", "team", "work environment"}},
	{IntentInterview, []string{"interview", "prepare", "hiring process"}},
}

// KeywordClassifier classifies by substring matching; the first rule with a
// hit wins.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(query string) Intent {
	q := strings.ToLower(strings.TrimSpace(query))
	if _, ok := applicationReplies[q]; ok {
		return IntentApplication
	}
	for _, r := range keywordRules {
		for _, kw := range r.keywords {
			if strings.Contains(q, kw) {
				return r.intent
			}
		}
	}
	return IntentGeneral
}
