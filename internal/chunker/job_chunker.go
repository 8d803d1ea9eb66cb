package chunker

import (
	"errors"
	"fmt"
	"strings"

	"careerbot/internal/domain"
)

// JobChunker renders one chunk per job, keeping chunk position equal to the
// job's corpus position.
type JobChunker struct{}

func NewJobChunker() *JobChunker { return &JobChunker{} }

func (c *JobChunker) Chunk(jobs []domain.JobRecord) ([]domain.TextChunk, error) {
	if len(jobs) == 0 {
		return nil, errors.New("no jobs to chunk")
	}
	chunks := make([]domain.TextChunk, len(jobs))
	for i, job := range jobs {
		chunks[i] = domain.TextChunk{
			Position: i,
			JobID:    job.ID,
			Text:     Text(job),
		}
	}
	return chunks, nil
}

// Text is the embedded representation of a job.
func Text(job domain.JobRecord) string {
	return fmt.Sprintf("Job: %s at %s in %s. Skills: %s",
		job.Title, job.Company, job.Location, strings.Join(job.Skills, ", "))
}
