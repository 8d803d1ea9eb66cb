package domain

// Category is the coarse job family a record belongs to.
type Category string

const (
	CategoryTech      Category = "tech"
	CategoryMarketing Category = "marketing"
	CategoryFinance   Category = "finance"
	CategoryHR        Category = "hr"
	CategoryOther     Category = "other"
)

// Categories lists the scored categories in priority order. Ties anywhere in
// the codebase resolve to the earlier entry.
var Categories = []Category{CategoryTech, CategoryMarketing, CategoryFinance, CategoryHR}

// Sentinel values for optional fields missing from the corpus.
const (
	DefaultLocation = "Location not specified"
	DefaultJobType  = "Full-time"
	PlaceholderLink = "#"
)

// JobRecord is one listing from the corpus. Records are never mutated after load.
type JobRecord struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	JobType     string   `json:"job_type"`
	Skills      []string `json:"skills"`
	ApplyLink   string   `json:"apply_link"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category"`
}

// HasApplyLink reports whether the record carries a real application URL.
func (j JobRecord) HasApplyLink() bool {
	return j.ApplyLink != "" && j.ApplyLink != PlaceholderLink
}

// TextChunk is the embedded text of one job. Position is the row of its
// vector in the index and always equals the job's position in the corpus.
type TextChunk struct {
	Position int    `json:"position"`
	JobID    string `json:"job_id"`
	Text     string `json:"text"`
}
