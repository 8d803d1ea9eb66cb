// Package corpus loads job listings from a CSV file into typed records.
package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"careerbot/internal/domain"
)

var (
	ErrNoTitleColumn = errors.New("corpus: no job title column")
	ErrEmpty         = errors.New("corpus: no job rows")
)

// column aliases after header normalisation (lower case, spaces to underscores)
var columnAliases = map[string][]string{
	"id":          {"job_id", "id"},
	"title":       {"job_title", "title"},
	"company":     {"company", "company_name"},
	"location":    {"location"},
	"job_type":    {"job_type", "type"},
	"skills":      {"skills", "skills_required"},
	"apply_link":  {"apply_link", "link", "url"},
	"description": {"description"},
}

// LoadFile reads a job corpus from a CSV file.
func LoadFile(path string) ([]domain.JobRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	jobs, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	log.Printf("[INFO] loaded %d jobs from %s", len(jobs), path)
	return jobs, nil
}

// Load parses CSV rows into job records, applying defaults for missing
// optional fields and deriving each record's category.
func Load(r io.Reader) ([]domain.JobRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	cols := resolveColumns(header)
	if _, ok := cols["title"]; !ok {
		return nil, ErrNoTitleColumn
	}

	var jobs []domain.JobRecord
	seen := make(map[string]struct{})
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row+1, err)
		}
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		pos := len(jobs)
		id := field("id")
		if id == "" {
			id = strconv.Itoa(pos)
		}
		if _, dup := seen[id]; dup {
			fresh := fmt.Sprintf("%s-%d", id, pos)
			for n := pos + 1; ; n++ {
				if _, taken := seen[fresh]; !taken {
					break
				}
				fresh = fmt.Sprintf("%s-%d", id, n)
			}
			log.Printf("[WARN] duplicate job id %q at row %d, using %q", id, row+1, fresh)
			id = fresh
		}
		seen[id] = struct{}{}

		job := domain.JobRecord{
			ID:          id,
			Title:       field("title"),
			Company:     field("company"),
			Location:    orDefault(field("location"), domain.DefaultLocation),
			JobType:     orDefault(field("job_type"), domain.DefaultJobType),
			Skills:      SplitSkills(field("skills")),
			ApplyLink:   orDefault(field("apply_link"), domain.PlaceholderLink),
			Description: field("description"),
		}
		job.Category = Categorize(job.Title, job.Skills)
		jobs = append(jobs, job)
	}
	if len(jobs) == 0 {
		return nil, ErrEmpty
	}
	return jobs, nil
}

// SplitSkills splits a comma-separated skills cell, dropping blanks.
func SplitSkills(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func resolveColumns(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		h = strings.ToLower(strings.TrimSpace(h))
		h = strings.ReplaceAll(h, " ", "_")
		if _, ok := index[h]; !ok {
			index[h] = i
		}
	}
	cols := make(map[string]int, len(columnAliases))
	for name, aliases := range columnAliases {
		for _, a := range aliases {
			if i, ok := index[a]; ok {
				cols[name] = i
				break
			}
		}
	}
	return cols
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
