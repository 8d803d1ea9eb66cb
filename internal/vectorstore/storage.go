package vectorstore

import (
	"context"
	"errors"

	"careerbot/internal/domain"
)

var (
	ErrInvalidK          = errors.New("vectorstore: k must be at least 1")
	ErrInvalidDimension  = errors.New("vectorstore: invalid dimension")
	ErrDimensionMismatch = errors.New("vectorstore: vector dimension mismatch")
)

// Storage is an append-only vector index addressed by insertion position.
// Search returns at most k neighbours ordered by ascending distance, ties
// broken by ascending position; k larger than Len is clamped.
type Storage interface {
	Init(ctx context.Context, dimension int) error
	Add(ctx context.Context, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error)
	Len() int
	Drop(ctx context.Context) error
}

// Factory creates an empty storage for a new index build.
type Factory func(ctx context.Context) (Storage, error)
