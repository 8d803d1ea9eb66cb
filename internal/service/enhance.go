package service

import "strings"

// CanonicalDetailQuery replaces bare affirmatives, which carry no search terms.
const CanonicalDetailQuery = "show detailed job information"

var affirmativeQueries = map[string]struct{}{
	"yes": {}, "yes please": {}, "yeah": {}, "yep": {}, "ok": {}, "okay": {},
	"sure": {}, "please": {}, "go ahead": {}, "sounds good": {},
}

var roleNames = []string{
	"developer", "engineer", "manager", "designer", "analyst",
	"scientist", "consultant", "specialist", "director",
}

// Longer names precede names they contain (javascript before java).
var skillNames = []string{
	"machine learning", "data science", "javascript", "typescript", "kubernetes",
	"python", "golang", "java", "react", "node", "docker", "aws", "sql",
	"excel", "tableau", "figma", "seo", "photoshop", "salesforce",
}

// EnhanceQuery rewrites a raw utterance into a retrieval-friendly query. The
// first matching rule wins:
//
//  1. a bare affirmative becomes CanonicalDetailQuery
//  2. a mention of an industry or sector is wrapped as an industry query
//  3. a role name becomes a query for openings in that role
//  4. a known skill becomes a query for jobs requiring it
//  5. anything else gets a generic jobs suffix
func EnhanceQuery(query string) string {
	q := strings.TrimSpace(query)
	lower := strings.ToLower(q)

	if _, ok := affirmativeQueries[lower]; ok {
		return CanonicalDetailQuery
	}
	if strings.Contains(lower, "industry") || strings.Contains(lower, "sector") {
		return "jobs in " + q + " industry sector"
	}
	for _, role := range roleNames {
		if strings.Contains(lower, role) {
			return "job openings for " + role + " positions"
		}
	}
	for _, skill := range skillNames {
		if strings.Contains(lower, skill) {
			return "jobs requiring " + skill + " skills"
		}
	}
	if q == "" {
		return "jobs and career opportunities"
	}
	return q + " jobs and career opportunities"
}
