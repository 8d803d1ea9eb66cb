package qdrant

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"careerbot/internal/domain"
	"careerbot/internal/vectorstore"
)

// Storage is a minimal REST client to Qdrant. Every Storage owns a freshly
// named collection, so building a new index never touches the one serving
// queries. Point ids are chunk positions.
type Storage struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client

	mu sync.RWMutex
	n  int
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	base := cfg.Collection
	if base == "" {
		base = "careerbot-jobs"
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]),
		client:     &http.Client{Timeout: timeout},
	}
}

// Collection returns the name of the collection this storage writes to.
func (s *Storage) Collection() string { return s.collection }

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return vectorstore.ErrInvalidDimension
	}
	s.dimension = dimension
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Euclid",
		},
	}
	return s.do(ctx, http.MethodPut, s.collectionURL(""), body, nil)
}

func (s *Storage) Add(ctx context.Context, vectors [][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	points := make([]map[string]any, len(vectors))
	for i, v := range vectors {
		if len(v) != s.dimension {
			return vectorstore.ErrDimensionMismatch
		}
		points[i] = map[string]any{"id": s.n + i, "vector": v}
	}
	if err := s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), map[string]any{"points": points}, nil); err != nil {
		return err
	}
	s.n += len(vectors)
	return nil
}

func (s *Storage) Search(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error) {
	if k < 1 {
		return nil, vectorstore.ErrInvalidK
	}
	if n := s.Len(); k > n {
		k = n
	}
	if k == 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": false,
	}
	var resp struct {
		Result []struct {
			ID    int     `json:"id"`
			Score float32 `json:"score"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, err
	}
	hits := make([]domain.Neighbor, 0, len(resp.Result))
	for _, r := range resp.Result {
		// Euclid scores are distances; square them to match the flat index
		hits = append(hits, domain.Neighbor{Position: r.ID, Distance: r.Score * r.Score})
	}
	slices.SortStableFunc(hits, func(a, b domain.Neighbor) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})
	return hits, nil
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.n
}

// Drop deletes the collection.
func (s *Storage) Drop(ctx context.Context) error {
	return s.do(ctx, http.MethodDelete, s.collectionURL(""), nil, nil)
}

func (s *Storage) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

func (s *Storage) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
