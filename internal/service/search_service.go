package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"careerbot/internal/domain"
	"careerbot/internal/recommend"
	"careerbot/internal/vectorstore"
	"careerbot/internal/vectorstore/flat"
)

const (
	DefaultContextTopK = 3
	DefaultListingTopK = 10

	defaultBatchSize = 32
	defaultWorkers   = 4
	dropTimeout      = 15 * time.Second
)

var ErrNoCorpus = errors.New("no jobs to index")

// Options configures index builds.
type Options struct {
	// IndexDir holds the persisted index pair; empty disables persistence.
	IndexDir  string
	BatchSize int
	Workers   int
	// Backend creates the storage that serves queries. Nil serves the flat
	// index directly.
	Backend vectorstore.Factory
}

// snapshot is one immutable generation of corpus and index. index is nil
// when only the corpus could be loaded. A retired remote index is dropped
// once its last reader releases it.
type snapshot struct {
	jobs     []domain.JobRecord
	byID     map[string]int
	db       *recommend.Database
	chunks   []domain.TextChunk
	embedder domain.Embedder
	index    vectorstore.Storage
	remote   bool

	readers  atomic.Int64
	retired  atomic.Bool
	dropOnce sync.Once
	dropErr  error
}

func (snap *snapshot) release() {
	if snap.readers.Add(-1) == 0 && snap.retired.Load() {
		ctx, cancel := context.WithTimeout(context.Background(), dropTimeout)
		defer cancel()
		if err := snap.drop(ctx); err != nil {
			log.Printf("[WARN] dropping previous index: %v", err)
		}
	}
}

// retire marks snap as replaced and drops its remote index unless a query
// still holds it.
func (snap *snapshot) retire(ctx context.Context) error {
	snap.retired.Store(true)
	if snap.readers.Load() == 0 {
		return snap.drop(ctx)
	}
	return nil
}

func (snap *snapshot) drop(ctx context.Context) error {
	if !snap.remote {
		return nil
	}
	snap.dropOnce.Do(func() { snap.dropErr = snap.index.Drop(ctx) })
	return snap.dropErr
}

// SearchService owns the job corpus and its vector index. Refreshes build a
// complete new snapshot and swap it in atomically; queries always run
// against a single snapshot.
type SearchService struct {
	chunker     domain.Chunker
	newEmbedder domain.EmbedderFactory
	opts        Options

	current atomic.Pointer[snapshot]
	buildMu sync.Mutex
}

func NewSearchService(chunker domain.Chunker, newEmbedder domain.EmbedderFactory, opts Options) *SearchService {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	return &SearchService{chunker: chunker, newEmbedder: newEmbedder, opts: opts}
}

// Open serves jobs using the persisted index when it matches the corpus and
// rebuilds it otherwise. When no index can be produced the corpus is still
// served for keyword search and the error is returned.
func (s *SearchService) Open(ctx context.Context, jobs []domain.JobRecord) error {
	if s.opts.IndexDir != "" {
		snap, err := s.load(ctx, jobs)
		if err == nil {
			s.install(ctx, snap)
			log.Printf("[INFO] loaded index with %d chunks from %s", len(snap.chunks), s.opts.IndexDir)
			return nil
		}
		log.Printf("[INFO] rebuilding index: %v", err)
	}
	return s.Rebuild(ctx, jobs)
}

// Rebuild embeds jobs into a new index, persists it and swaps it in. On
// failure the previous snapshot keeps serving.
func (s *SearchService) Rebuild(ctx context.Context, jobs []domain.JobRecord) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	snap, err := s.build(ctx, jobs)
	if err != nil {
		if s.current.Load() == nil && len(jobs) > 0 {
			s.install(ctx, corpusOnly(jobs))
		}
		return fmt.Errorf("build index: %w", err)
	}
	s.install(ctx, snap)
	log.Printf("[INFO] index rebuilt: %d jobs, backend remote=%v", len(jobs), snap.remote)
	return nil
}

// Available reports whether semantic search is backed by an index.
func (s *SearchService) Available() bool {
	snap := s.current.Load()
	return snap != nil && snap.index != nil
}

// Corpus returns the jobs of the current snapshot.
func (s *SearchService) Corpus() []domain.JobRecord {
	if snap := s.current.Load(); snap != nil {
		return snap.jobs
	}
	return nil
}

// Database returns the category view of the current corpus.
func (s *SearchService) Database() *recommend.Database {
	if snap := s.current.Load(); snap != nil {
		return snap.db
	}
	return recommend.NewDatabase(nil)
}

// SemanticSearch returns the ids of the jobs nearest to the enhanced query,
// best first and without duplicates. It returns no ids when no index is
// available.
func (s *SearchService) SemanticSearch(ctx context.Context, query string, topK int) ([]string, error) {
	snap, positions, err := s.search(ctx, query, topK)
	if err != nil || snap == nil {
		return nil, err
	}
	defer snap.release()
	return uniqueIDs(snap, positions), nil
}

// SearchJobRecords is SemanticSearch resolved to records from the same
// snapshot, so a concurrent refresh cannot orphan the ids.
func (s *SearchService) SearchJobRecords(ctx context.Context, query string, topK int) ([]domain.JobRecord, error) {
	snap, positions, err := s.search(ctx, query, topK)
	if err != nil || snap == nil {
		return nil, err
	}
	defer snap.release()
	ids := uniqueIDs(snap, positions)
	jobs := make([]domain.JobRecord, 0, len(ids))
	for _, id := range ids {
		jobs = append(jobs, snap.jobs[snap.byID[id]])
	}
	return jobs, nil
}

// Jobs maps ids to records of the current snapshot, keeping the given order
// and skipping unknown ids.
func (s *SearchService) Jobs(ids []string) []domain.JobRecord {
	snap := s.current.Load()
	if snap == nil {
		return nil
	}
	jobs := make([]domain.JobRecord, 0, len(ids))
	for _, id := range ids {
		if i, ok := snap.byID[id]; ok {
			jobs = append(jobs, snap.jobs[i])
		}
	}
	return jobs
}

// ContextChunks returns the chunk texts nearest to the raw query, for use as
// model context.
func (s *SearchService) ContextChunks(ctx context.Context, query string, topK int) ([]string, error) {
	if topK < 1 {
		return nil, vectorstore.ErrInvalidK
	}
	snap := s.acquire()
	if snap == nil {
		return nil, nil
	}
	defer snap.release()
	if snap.index == nil {
		return nil, nil
	}
	positions, err := nearest(ctx, snap, query, topK)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(positions))
	for _, p := range positions {
		texts = append(texts, snap.chunks[p].Text)
	}
	return texts, nil
}

// Close releases a remote index. A query still running keeps it until it
// finishes.
func (s *SearchService) Close(ctx context.Context) error {
	if snap := s.current.Swap(nil); snap != nil {
		return snap.retire(ctx)
	}
	return nil
}

// acquire pins the current snapshot so an install cannot drop its remote
// index mid-query. Callers release it when done.
func (s *SearchService) acquire() *snapshot {
	for {
		snap := s.current.Load()
		if snap == nil {
			return nil
		}
		snap.readers.Add(1)
		if !snap.retired.Load() {
			return snap
		}
		snap.release()
	}
}

// search returns a pinned snapshot with the nearest chunk positions, or a
// nil snapshot when no index is available.
func (s *SearchService) search(ctx context.Context, query string, topK int) (*snapshot, []int, error) {
	if topK < 1 {
		return nil, nil, vectorstore.ErrInvalidK
	}
	snap := s.acquire()
	if snap == nil || snap.index == nil {
		if snap != nil {
			snap.release()
		}
		log.Printf("[WARN] semantic search unavailable for %q", query)
		return nil, nil, nil
	}
	positions, err := nearest(ctx, snap, EnhanceQuery(query), topK)
	if err != nil {
		snap.release()
		return nil, nil, err
	}
	return snap, positions, nil
}

func nearest(ctx context.Context, snap *snapshot, text string, k int) ([]int, error) {
	vecs, err := snap.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vecs))
	}
	if isZero(vecs[0]) {
		return lexicalNearest(snap.chunks, text, k), nil
	}
	hits, err := snap.index.Search(ctx, vecs[0], k)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}
	positions := make([]int, 0, len(hits))
	for _, h := range hits {
		if h.Position >= 0 && h.Position < len(snap.chunks) {
			positions = append(positions, h.Position)
		}
	}
	return positions, nil
}

func uniqueIDs(snap *snapshot, positions []int) []string {
	ids := make([]string, 0, len(positions))
	seen := make(map[string]struct{}, len(positions))
	for _, p := range positions {
		id := snap.chunks[p].JobID
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func (s *SearchService) build(ctx context.Context, jobs []domain.JobRecord) (*snapshot, error) {
	if len(jobs) == 0 {
		return nil, ErrNoCorpus
	}
	chunks, err := s.chunker.Chunk(jobs)
	if err != nil {
		return nil, err
	}
	emb, err := s.newEmbedder()
	if err != nil {
		return nil, err
	}
	texts := chunkTexts(chunks)
	if err := emb.Prepare(texts); err != nil {
		return nil, fmt.Errorf("prepare %s embedder: %w", emb.Name(), err)
	}
	vectors, err := s.embedAll(ctx, emb, texts)
	if err != nil {
		return nil, err
	}

	idx := flat.New()
	if err := idx.Init(ctx, len(vectors[0])); err != nil {
		return nil, err
	}
	if err := idx.Add(ctx, vectors); err != nil {
		return nil, err
	}
	if s.opts.IndexDir != "" {
		if err := flat.Save(s.opts.IndexDir, idx, chunks); err != nil {
			log.Printf("[WARN] index not persisted: %v", err)
		}
	}
	return s.snapshot(ctx, jobs, chunks, emb, idx)
}

func (s *SearchService) load(ctx context.Context, jobs []domain.JobRecord) (*snapshot, error) {
	idx, chunks, err := flat.Load(s.opts.IndexDir)
	if err != nil {
		return nil, err
	}
	want, err := s.chunker.Chunk(jobs)
	if err != nil {
		return nil, err
	}
	if len(want) != len(chunks) {
		return nil, fmt.Errorf("index has %d chunks, corpus has %d jobs", len(chunks), len(want))
	}
	for i := range want {
		if want[i] != chunks[i] {
			return nil, fmt.Errorf("index chunk %d does not match corpus", i)
		}
	}
	emb, err := s.newEmbedder()
	if err != nil {
		return nil, err
	}
	if err := emb.Prepare(chunkTexts(chunks)); err != nil {
		return nil, err
	}
	if d := emb.Dimension(); d != 0 && d != idx.Dimension() {
		return nil, fmt.Errorf("index dimension %d, %s embedder dimension %d", idx.Dimension(), emb.Name(), d)
	}
	return s.snapshot(ctx, jobs, chunks, emb, idx)
}

func (s *SearchService) snapshot(ctx context.Context, jobs []domain.JobRecord, chunks []domain.TextChunk, emb domain.Embedder, idx *flat.Storage) (*snapshot, error) {
	snap := corpusOnly(jobs)
	snap.chunks = chunks
	snap.embedder = emb
	snap.index = idx
	if s.opts.Backend == nil {
		return snap, nil
	}
	remote, err := s.opts.Backend(ctx)
	if err != nil {
		return nil, err
	}
	if err := remote.Init(ctx, idx.Dimension()); err != nil {
		return nil, err
	}
	if err := remote.Add(ctx, idx.Vectors()); err != nil {
		_ = remote.Drop(ctx)
		return nil, err
	}
	snap.index = remote
	snap.remote = true
	return snap, nil
}

func (s *SearchService) embedAll(ctx context.Context, emb domain.Embedder, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for start := 0; start < len(texts); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(texts))
		g.Go(func() error {
			vecs, err := emb.Embed(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
			}
			if len(vecs) != end-start {
				return fmt.Errorf("embed chunks %d-%d: got %d vectors", start, end-1, len(vecs))
			}
			copy(out[start:end], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SearchService) install(ctx context.Context, snap *snapshot) {
	if old := s.current.Swap(snap); old != nil {
		if err := old.retire(ctx); err != nil {
			log.Printf("[WARN] dropping previous index: %v", err)
		}
	}
}

func corpusOnly(jobs []domain.JobRecord) *snapshot {
	byID := make(map[string]int, len(jobs))
	for i, j := range jobs {
		byID[j.ID] = i
	}
	return &snapshot{jobs: jobs, byID: byID, db: recommend.NewDatabase(jobs)}
}

func chunkTexts(chunks []domain.TextChunk) []string {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	return texts
}
