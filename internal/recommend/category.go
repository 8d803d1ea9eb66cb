package recommend

import (
	"strings"

	"careerbot/internal/domain"
)

// Conversation-time keywords. They are broader than the load-time lists
// because users describe interests, not job titles.
var interestKeywords = map[domain.Category][]string{
	domain.CategoryTech: {
		"software", "developer", "coding", "programming", "engineer", "tech", "data",
		"python", "java", "web", "app", "devops", "cloud", "machine learning",
	},
	domain.CategoryMarketing: {
		"marketing", "brand", "content", "social media", "digital", "campaign",
		"advertising", "communications",
	},
	domain.CategoryFinance: {
		"finance", "accounting", "investment", "banking", "financial", "analyst",
		"economics", "budget", "trading", "audit",
	},
	domain.CategoryHR: {
		"human resources", "recruiting", "talent", "hiring", "people operations",
		"training", "personnel", "employees", "recruitment",
	},
}

// Scores counts, per category, how many keywords occur in the lower-cased
// concatenation of messages.
func Scores(messages []string) map[domain.Category]int {
	text := strings.ToLower(strings.Join(messages, " "))
	scores := make(map[domain.Category]int, len(domain.Categories))
	for _, c := range domain.Categories {
		for _, kw := range interestKeywords[c] {
			if strings.Contains(text, kw) {
				scores[c]++
			}
		}
	}
	return scores
}

// ExtractCategory returns the category with the highest score. Ties go to
// the earlier category in domain.Categories; no hits at all means tech.
func ExtractCategory(messages []string) domain.Category {
	scores := Scores(messages)
	best, bestScore := domain.CategoryTech, 0
	for _, c := range domain.Categories {
		if scores[c] > bestScore {
			best, bestScore = c, scores[c]
		}
	}
	return best
}
