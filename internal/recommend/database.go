package recommend

import (
	"slices"

	"careerbot/internal/domain"
)

// Database groups the corpus by category. Categories keep the order in
// which they first appear in the corpus, followed by any scored category
// with no jobs. It is immutable after construction.
type Database struct {
	order      []domain.Category
	byCategory map[domain.Category][]domain.JobRecord
	all        []domain.JobRecord
}

func NewDatabase(jobs []domain.JobRecord) *Database {
	db := &Database{
		byCategory: make(map[domain.Category][]domain.JobRecord),
		all:        slices.Clone(jobs),
	}
	for _, j := range jobs {
		if _, ok := db.byCategory[j.Category]; !ok {
			db.order = append(db.order, j.Category)
		}
		db.byCategory[j.Category] = append(db.byCategory[j.Category], j)
	}
	for _, c := range domain.Categories {
		if _, ok := db.byCategory[c]; !ok {
			db.order = append(db.order, c)
			db.byCategory[c] = nil
		}
	}
	return db
}

// Categories returns the category iteration order.
func (db *Database) Categories() []domain.Category {
	return slices.Clone(db.order)
}

// Category returns a copy of the jobs in c, in corpus order.
func (db *Database) Category(c domain.Category) []domain.JobRecord {
	return slices.Clone(db.byCategory[c])
}

// All returns every job in category order.
func (db *Database) All() []domain.JobRecord {
	out := make([]domain.JobRecord, 0, len(db.all))
	for _, c := range db.order {
		out = append(out, db.byCategory[c]...)
	}
	return out
}

func (db *Database) Len() int { return len(db.all) }
