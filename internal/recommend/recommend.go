package recommend

import (
	"log"
	"strings"

	"careerbot/internal/domain"
)

const (
	DefaultRecommendCount = 3
	DefaultMaxResults     = 5
)

// RecommendedJobs returns up to n jobs from the category that best matches
// the user's messages. A short category is backfilled from the other
// categories in database order; backfill is stable, not ranked.
func RecommendedJobs(messages []string, db *Database, n int) []domain.JobRecord {
	if db == nil || n <= 0 {
		return nil
	}
	category := ExtractCategory(messages)
	log.Printf("[INFO] extracted job category: %s", category)

	jobs := db.Category(category)
	if len(jobs) >= n {
		return jobs[:n]
	}
	for _, c := range db.order {
		if c == category {
			continue
		}
		for _, j := range db.byCategory[c] {
			if len(jobs) == n {
				return jobs
			}
			jobs = append(jobs, j)
		}
	}
	return jobs
}

// SearchJobs returns up to maxResults jobs whose title, company, location
// and skills contain query, in corpus order. A blank query matches nothing.
func SearchJobs(query string, db *Database, maxResults int) []domain.JobRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || db == nil || maxResults <= 0 {
		return nil
	}
	var matches []domain.JobRecord
	for _, j := range db.all {
		if strings.Contains(searchableText(j), q) {
			matches = append(matches, j)
			if len(matches) == maxResults {
				break
			}
		}
	}
	return matches
}

func searchableText(j domain.JobRecord) string {
	return strings.ToLower(j.Title + " " + j.Company + " " + j.Location + " " + strings.Join(j.Skills, " "))
}
