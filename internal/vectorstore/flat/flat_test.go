package flat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"careerbot/internal/domain"
	"careerbot/internal/vectorstore"
)

func newIndex(t *testing.T, vectors [][]float32) *Storage {
	t.Helper()
	s := New()
	if err := s.Init(context.Background(), len(vectors[0])); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if err := s.Add(context.Background(), vectors); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	return s
}

func TestStorage_SearchOrdersByDistanceThenPosition(t *testing.T) {
	s := newIndex(t, [][]float32{
		{1, 0}, // 0: distance 1 from origin
		{0, 2}, // 1: distance 4
		{0, 1}, // 2: distance 1, ties with 0
		{0, 0}, // 3: distance 0
	})
	hits, err := s.Search(context.Background(), []float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	want := []int{3, 0, 2}
	if len(hits) != len(want) {
		t.Fatalf("expected %d hits, got %d", len(want), len(hits))
	}
	for i, p := range want {
		if hits[i].Position != p {
			t.Errorf("hit %d: expected position %d, got %d", i, p, hits[i].Position)
		}
	}
	if hits[1].Distance != 1 {
		t.Errorf("expected squared distance 1, got %f", hits[1].Distance)
	}
}

func TestStorage_KBounds(t *testing.T) {
	s := newIndex(t, [][]float32{{1}, {2}})
	if _, err := s.Search(context.Background(), []float32{0}, 0); !errors.Is(err, vectorstore.ErrInvalidK) {
		t.Errorf("k=0: expected ErrInvalidK, got %v", err)
	}
	hits, err := s.Search(context.Background(), []float32{0}, 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("k should clamp to N=2, got %d", len(hits))
	}
}

func TestStorage_Deterministic(t *testing.T) {
	s := newIndex(t, [][]float32{{0.5, 0.5}, {0.5, 0.5}, {0.1, 0.9}, {0.5, 0.5}})
	first, _ := s.Search(context.Background(), []float32{0.4, 0.6}, 4)
	for i := 0; i < 20; i++ {
		again, _ := s.Search(context.Background(), []float32{0.4, 0.6}, 4)
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d differs at %d: %+v vs %+v", i, j, first[j], again[j])
			}
		}
	}
}

func TestStorage_DimensionChecks(t *testing.T) {
	s := New()
	if err := s.Init(context.Background(), 0); !errors.Is(err, vectorstore.ErrInvalidDimension) {
		t.Errorf("expected ErrInvalidDimension, got %v", err)
	}
	s = newIndex(t, [][]float32{{1, 2}})
	if err := s.Add(context.Background(), [][]float32{{1}}); !errors.Is(err, vectorstore.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on add, got %v", err)
	}
	if _, err := s.Search(context.Background(), []float32{1}, 1); !errors.Is(err, vectorstore.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on search, got %v", err)
	}
}

func testChunks(n int) []domain.TextChunk {
	chunks := make([]domain.TextChunk, n)
	for i := range chunks {
		chunks[i] = domain.TextChunk{Position: i, JobID: string(rune('a' + i)), Text: "chunk"}
	}
	return chunks
}

func TestSaveLoad_PairedArtifacts(t *testing.T) {
	dir := t.TempDir()
	s := newIndex(t, [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	if err := Save(dir, s, testChunks(3)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, chunks, err := Load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Len() != 3 || loaded.Dimension() != 3 || len(chunks) != 3 {
		t.Fatalf("unexpected load: len=%d dim=%d chunks=%d", loaded.Len(), loaded.Dimension(), len(chunks))
	}
	hits, _ := loaded.Search(context.Background(), []float32{0, 1, 0}, 1)
	if hits[0].Position != 1 {
		t.Errorf("expected nearest position 1, got %d", hits[0].Position)
	}
	if chunks[2].JobID != "c" {
		t.Errorf("chunk order lost: %+v", chunks)
	}
}

func TestSave_RejectsMisalignedChunks(t *testing.T) {
	s := newIndex(t, [][]float32{{1}, {2}})
	if err := Save(t.TempDir(), s, testChunks(1)); err == nil {
		t.Error("expected error for count mismatch")
	}
}

func TestLoad_Missing(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nothing"))
	if !errors.Is(err, ErrArtifactsMissing) {
		t.Errorf("expected ErrArtifactsMissing, got %v", err)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	dir := t.TempDir()
	s := newIndex(t, [][]float32{{1, 0}, {0, 1}})
	if err := Save(dir, s, testChunks(2)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	indexPath := filepath.Join(dir, IndexFile)
	data, _ := os.ReadFile(indexPath)
	if err := os.WriteFile(indexPath, data[:len(data)-3], 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(dir); !errors.Is(err, ErrArtifactsCorrupt) {
		t.Errorf("truncated index: expected ErrArtifactsCorrupt, got %v", err)
	}
}

func TestLoad_MismatchedBuilds(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	s := newIndex(t, [][]float32{{1, 0}, {0, 1}})
	if err := Save(dirA, s, testChunks(2)); err != nil {
		t.Fatal(err)
	}
	if err := Save(dirB, s, testChunks(2)); err != nil {
		t.Fatal(err)
	}
	// pair A's index with B's chunks
	data, _ := os.ReadFile(filepath.Join(dirB, ChunksFile))
	if err := os.WriteFile(filepath.Join(dirA, ChunksFile), data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(dirA); !errors.Is(err, ErrArtifactsCorrupt) {
		t.Errorf("expected ErrArtifactsCorrupt for mixed builds, got %v", err)
	}
}
