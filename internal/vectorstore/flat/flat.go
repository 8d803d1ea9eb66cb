// Package flat is an exact in-memory L2 index over a row-major float32 matrix.
package flat

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"careerbot/internal/domain"
	"careerbot/internal/vectorstore"
)

// Storage compares the query against every stored vector. There is no
// approximation, deletion or update: indexes are rebuilt wholesale.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	data      []float32
	n         int
}

func New() *Storage { return &Storage{} }

func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return vectorstore.ErrInvalidDimension
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.data = nil
	s.n = 0
	return nil
}

// Add appends vectors; the first added vector gets position Len().
func (s *Storage) Add(_ context.Context, vectors [][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		return vectorstore.ErrInvalidDimension
	}
	for _, v := range vectors {
		if len(v) != s.dimension {
			return vectorstore.ErrDimensionMismatch
		}
	}
	s.data = slices.Grow(s.data, len(vectors)*s.dimension)
	for _, v := range vectors {
		s.data = append(s.data, v...)
	}
	s.n += len(vectors)
	return nil
}

// Search returns the k nearest rows by squared Euclidean distance.
func (s *Storage) Search(_ context.Context, vector []float32, k int) ([]domain.Neighbor, error) {
	if k < 1 {
		return nil, vectorstore.ErrInvalidK
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.n == 0 {
		return nil, nil
	}
	if len(vector) != s.dimension {
		return nil, vectorstore.ErrDimensionMismatch
	}
	hits := make([]domain.Neighbor, s.n)
	for i := 0; i < s.n; i++ {
		row := s.data[i*s.dimension : (i+1)*s.dimension]
		hits[i] = domain.Neighbor{Position: i, Distance: squaredL2(row, vector)}
	}
	slices.SortFunc(hits, func(a, b domain.Neighbor) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})
	if k > s.n {
		k = s.n
	}
	return hits[:k:k], nil
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.n
}

func (s *Storage) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// Vectors returns a copy of every stored row in position order.
func (s *Storage) Vectors() [][]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]float32, s.n)
	for i := range out {
		out[i] = slices.Clone(s.data[i*s.dimension : (i+1)*s.dimension])
	}
	return out
}

func (s *Storage) Drop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	s.n = 0
	return nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
