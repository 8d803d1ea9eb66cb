package domain

import "context"

// Neighbor is one hit from a vector index: the chunk position and its
// squared Euclidean distance to the query vector.
type Neighbor struct {
	Position int
	Distance float32
}

// Embedder converts free text into dense vectors of a fixed dimension.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedderFactory returns a fresh embedder. Every index build gets its own
// instance so a rebuild never disturbs the embedder serving live queries.
type EmbedderFactory func() (Embedder, error)

// Chunker flattens job records into the positional chunks that get embedded.
type Chunker interface {
	Chunk(jobs []JobRecord) ([]TextChunk, error)
}

// Completer is a generative text-completion service.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
