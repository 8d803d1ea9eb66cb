package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"careerbot/internal/chunker"
	"careerbot/internal/domain"
	"careerbot/internal/embedding/tfidf"
	"careerbot/internal/vectorstore"
	"careerbot/internal/vectorstore/flat"
)

func testJobs() []domain.JobRecord {
	return []domain.JobRecord{
		{ID: "1", Title: "Backend Developer", Company: "Acme", Location: "Remote", Skills: []string{"Go", "Python"}, Category: domain.CategoryTech},
		{ID: "2", Title: "Frontend Developer", Company: "Pixel", Location: "Berlin", Skills: []string{"React", "JavaScript"}, Category: domain.CategoryTech},
		{ID: "3", Title: "Marketing Lead", Company: "Brandify", Location: "Paris", Skills: []string{"SEO", "Content"}, Category: domain.CategoryMarketing},
		{ID: "4", Title: "Financial Analyst", Company: "Ledger", Location: "London", Skills: []string{"Excel", "Modeling"}, Category: domain.CategoryFinance},
		{ID: "5", Title: "Recruiter", Company: "PeopleCo", Location: "Austin", Skills: []string{"Sourcing", "Interviewing"}, Category: domain.CategoryHR},
	}
}

type countingEmbedder struct {
	domain.Embedder
	calls *atomic.Int32
}

func (e countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(1)
	return e.Embedder.Embed(ctx, texts)
}

func countingFactory(calls *atomic.Int32) domain.EmbedderFactory {
	return func() (domain.Embedder, error) {
		return countingEmbedder{Embedder: tfidf.NewEmbedder(), calls: calls}, nil
	}
}

func tfidfFactory() (domain.Embedder, error) { return tfidf.NewEmbedder(), nil }

func openService(t *testing.T, opts Options) *SearchService {
	t.Helper()
	svc := NewSearchService(chunker.NewJobChunker(), tfidfFactory, opts)
	if err := svc.Open(context.Background(), testJobs()); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	return svc
}

func TestSemanticSearch_RanksMatchingRole(t *testing.T) {
	svc := openService(t, Options{})
	ids, err := svc.SemanticSearch(context.Background(), "python developer", 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !slices.Equal(ids, []string{"1", "2"}) {
		t.Errorf("expected developer jobs [1 2], got %v", ids)
	}
}

func TestSemanticSearch_KBounds(t *testing.T) {
	svc := openService(t, Options{})
	ctx := context.Background()
	if _, err := svc.SemanticSearch(ctx, "developer", 0); !errors.Is(err, vectorstore.ErrInvalidK) {
		t.Errorf("expected ErrInvalidK, got %v", err)
	}
	ids, err := svc.SemanticSearch(ctx, "developer", 50)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(ids) != 5 {
		t.Errorf("k should clamp to corpus size, got %d ids", len(ids))
	}
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestSemanticSearch_UnknownVocabularyFallsBackToOverlap(t *testing.T) {
	svc := openService(t, Options{})
	ids, err := svc.SemanticSearch(context.Background(), "zzz qqq", 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(ids) != 3 {
		t.Errorf("expected 3 ids from lexical ranking, got %v", ids)
	}
}

func TestSemanticSearch_UnavailableReturnsNothing(t *testing.T) {
	svc := NewSearchService(chunker.NewJobChunker(), tfidfFactory, Options{})
	ids, err := svc.SemanticSearch(context.Background(), "developer", 3)
	if err != nil || ids != nil {
		t.Errorf("expected no ids and no error, got %v, %v", ids, err)
	}
	if svc.Available() {
		t.Error("service without a snapshot should not be available")
	}
}

func TestOpen_EmbedderFailureKeepsCorpus(t *testing.T) {
	broken := func() (domain.Embedder, error) { return nil, errors.New("embedder down") }
	svc := NewSearchService(chunker.NewJobChunker(), broken, Options{})
	if err := svc.Open(context.Background(), testJobs()); err == nil {
		t.Fatal("expected open to report the build failure")
	}
	if svc.Available() {
		t.Error("index should be unavailable")
	}
	if len(svc.Corpus()) != 5 {
		t.Errorf("corpus should still be served, got %d jobs", len(svc.Corpus()))
	}
	if got := svc.Database().Category(domain.CategoryTech); len(got) != 2 {
		t.Errorf("expected 2 tech jobs in database, got %d", len(got))
	}
	ids, err := svc.SemanticSearch(context.Background(), "developer", 3)
	if err != nil || len(ids) != 0 {
		t.Errorf("expected empty result, got %v, %v", ids, err)
	}
}

func TestOpen_ReusesPersistedIndex(t *testing.T) {
	dir := t.TempDir()
	openService(t, Options{IndexDir: dir})
	for _, name := range []string{"index.bin", "chunks.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to be written: %v", name, err)
		}
	}

	var calls atomic.Int32
	svc := NewSearchService(chunker.NewJobChunker(), countingFactory(&calls), Options{IndexDir: dir})
	if err := svc.Open(context.Background(), testJobs()); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("persisted index should not be re-embedded, got %d embed calls", calls.Load())
	}
	ids, err := svc.SemanticSearch(context.Background(), "python developer", 1)
	if err != nil || !slices.Equal(ids, []string{"1"}) {
		t.Errorf("expected [1] from loaded index, got %v, %v", ids, err)
	}
}

func TestOpen_RebuildsWhenCorpusChanged(t *testing.T) {
	dir := t.TempDir()
	openService(t, Options{IndexDir: dir})

	var calls atomic.Int32
	svc := NewSearchService(chunker.NewJobChunker(), countingFactory(&calls), Options{IndexDir: dir})
	if err := svc.Open(context.Background(), testJobs()[:3]); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if calls.Load() == 0 {
		t.Error("changed corpus should trigger a rebuild")
	}
	if len(svc.Corpus()) != 3 {
		t.Errorf("expected 3 jobs, got %d", len(svc.Corpus()))
	}
}

func TestRebuild_FailureKeepsPreviousSnapshot(t *testing.T) {
	var fail atomic.Bool
	factory := func() (domain.Embedder, error) {
		if fail.Load() {
			return nil, errors.New("embedder down")
		}
		return tfidf.NewEmbedder(), nil
	}
	svc := NewSearchService(chunker.NewJobChunker(), factory, Options{})
	ctx := context.Background()
	if err := svc.Open(ctx, testJobs()); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	fail.Store(true)
	if err := svc.Rebuild(ctx, testJobs()[:2]); err == nil {
		t.Fatal("expected rebuild error")
	}
	if !svc.Available() || len(svc.Corpus()) != 5 {
		t.Errorf("previous snapshot should keep serving, corpus=%d", len(svc.Corpus()))
	}
}

func TestRebuild_ConcurrentQueriesSeeOneSnapshot(t *testing.T) {
	svc := openService(t, Options{})
	ctx := context.Background()
	valid := map[string]bool{"1": true, "2": true, "3": true, "4": true, "5": true, "a": true, "b": true, "c": true}
	other := []domain.JobRecord{
		{ID: "a", Title: "Data Scientist", Company: "Numbers", Skills: []string{"Python"}},
		{ID: "b", Title: "Product Designer", Company: "Shapes", Skills: []string{"Figma"}},
		{ID: "c", Title: "HR Manager", Company: "Staffers", Skills: []string{"Recruitment"}},
	}

	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				jobs, err := svc.SearchJobRecords(ctx, "developer", 3)
				if err != nil {
					t.Errorf("search failed: %v", err)
					return
				}
				if len(jobs) != 3 {
					t.Errorf("expected 3 jobs, got %d", len(jobs))
				}
				for _, j := range jobs {
					if !valid[j.ID] {
						t.Errorf("unexpected id %q", j.ID)
					}
				}
			}
		}()
	}
	for i := 0; i < 10; i++ {
		corpus := testJobs()
		if i%2 == 0 {
			corpus = other
		}
		if err := svc.Rebuild(ctx, corpus); err != nil {
			t.Fatalf("rebuild failed: %v", err)
		}
	}
	wg.Wait()
}

func TestJobs_KeepsOrderAndSkipsUnknown(t *testing.T) {
	svc := openService(t, Options{})
	got := svc.Jobs([]string{"4", "missing", "1"})
	if len(got) != 2 || got[0].ID != "4" || got[1].ID != "1" {
		t.Errorf("unexpected jobs: %+v", got)
	}
}

func TestContextChunks_ReturnsChunkText(t *testing.T) {
	svc := openService(t, Options{})
	texts, err := svc.ContextChunks(context.Background(), "Financial Analyst Excel", 1)
	if err != nil {
		t.Fatalf("context chunks failed: %v", err)
	}
	if len(texts) != 1 || texts[0] != chunker.Text(testJobs()[3]) {
		t.Errorf("unexpected context: %v", texts)
	}
}

// droppingStorage records Drop and, when gate is set, holds Search until
// gate is closed.
type droppingStorage struct {
	*flat.Storage
	dropped atomic.Bool
	entered chan struct{}
	gate    chan struct{}
}

func (d *droppingStorage) Drop(ctx context.Context) error {
	d.dropped.Store(true)
	return d.Storage.Drop(ctx)
}

func (d *droppingStorage) Search(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error) {
	if d.gate != nil {
		d.entered <- struct{}{}
		<-d.gate
	}
	if d.dropped.Load() {
		return nil, errors.New("collection not found")
	}
	return d.Storage.Search(ctx, vector, k)
}

func TestBackend_ServesQueriesAndDropsOldCollections(t *testing.T) {
	var created []*droppingStorage
	var mu sync.Mutex
	backend := func(context.Context) (vectorstore.Storage, error) {
		mu.Lock()
		defer mu.Unlock()
		s := &droppingStorage{Storage: flat.New()}
		created = append(created, s)
		return s, nil
	}
	svc := openService(t, Options{Backend: backend})
	ctx := context.Background()

	ids, err := svc.SemanticSearch(ctx, "python developer", 1)
	if err != nil || !slices.Equal(ids, []string{"1"}) {
		t.Fatalf("expected [1] via backend, got %v, %v", ids, err)
	}
	if err := svc.Rebuild(ctx, testJobs()); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if len(created) != 2 || !created[0].dropped.Load() || created[1].dropped.Load() {
		t.Fatalf("expected first backend dropped and second live, created=%d", len(created))
	}
	if err := svc.Close(ctx); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !created[1].dropped.Load() {
		t.Error("close should drop the live backend")
	}
}

func TestRebuild_KeepsRemoteIndexUntilRunningQueryFinishes(t *testing.T) {
	var created []*droppingStorage
	var mu sync.Mutex
	entered := make(chan struct{}, 1)
	gate := make(chan struct{})
	backend := func(context.Context) (vectorstore.Storage, error) {
		mu.Lock()
		defer mu.Unlock()
		s := &droppingStorage{Storage: flat.New()}
		if len(created) == 0 {
			s.entered, s.gate = entered, gate
		}
		created = append(created, s)
		return s, nil
	}
	svc := openService(t, Options{Backend: backend})
	ctx := context.Background()

	type result struct {
		ids []string
		err error
	}
	done := make(chan result, 1)
	go func() {
		ids, err := svc.SemanticSearch(ctx, "python developer", 1)
		done <- result{ids, err}
	}()
	<-entered

	if err := svc.Rebuild(ctx, testJobs()); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	mu.Lock()
	old := created[0]
	mu.Unlock()
	if old.dropped.Load() {
		t.Fatal("previous backend dropped while a query was still using it")
	}

	close(gate)
	r := <-done
	if r.err != nil || !slices.Equal(r.ids, []string{"1"}) {
		t.Fatalf("running query should finish on its snapshot, got %v, %v", r.ids, r.err)
	}
	if !old.dropped.Load() {
		t.Error("previous backend should be dropped once the query released it")
	}

	ids, err := svc.SemanticSearch(ctx, "python developer", 1)
	if err != nil || !slices.Equal(ids, []string{"1"}) {
		t.Errorf("new backend should serve queries, got %v, %v", ids, err)
	}
}
