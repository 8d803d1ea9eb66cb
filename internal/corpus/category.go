package corpus

import (
	"strings"

	"careerbot/internal/domain"
)

// Load-time category keywords, checked in domain.Categories order.
var categoryKeywords = map[domain.Category][]string{
	domain.CategoryTech: {
		"python", "java", "developer", "engineer", "data", "machine learning",
		"ai", "backend", "frontend", "software", "coding", "programming",
	},
	domain.CategoryMarketing: {
		"marketing", "digital", "content", "seo", "social media",
		"brand", "communications", "advertising",
	},
	domain.CategoryFinance: {
		"finance", "accounting", "banking", "financial", "analyst",
		"investment", "economics", "budget", "trading", "audit",
	},
	domain.CategoryHR: {
		"hr", "human resources", "recruiting", "talent", "hiring",
		"people operations", "training", "personnel",
	},
}

// Categorize assigns the first category whose keywords appear in the title
// or skills. Records matching nothing are CategoryOther.
func Categorize(title string, skills []string) domain.Category {
	text := strings.ToLower(title + " " + strings.Join(skills, " "))
	for _, c := range domain.Categories {
		for _, kw := range categoryKeywords[c] {
			if strings.Contains(text, kw) {
				return c
			}
		}
	}
	return domain.CategoryOther
}
