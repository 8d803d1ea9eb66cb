// Package gemini embeds text with the Gemini embeddings API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const defaultModel = "text-embedding-004"

// Config configures the Gemini embedder.
type Config struct {
	APIKey            string
	Model             string
	BaseURL           string
	Dimensions        int
	RequestsPerSecond float64
}

// Embedder implements domain.Embedder on top of the genai client.
type Embedder struct {
	client     *genai.Client
	model      string
	dimensions int32
	limiter    *rate.Limiter
	dimension  atomic.Int64
}

// New creates a Gemini embedder. BaseURL is only set in tests.
func New(ctx context.Context, cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini embedder: missing API key")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Embedder{
		client:     client,
		model:      cfg.Model,
		dimensions: int32(cfg.Dimensions),
		limiter:    rate.NewLimiter(limit, 1),
	}, nil
}

func (e *Embedder) Name() string { return "gemini" }

func (e *Embedder) Prepare(corpus []string) error { return nil }

func (e *Embedder) Dimension() int { return int(e.dimension.Load()) }

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}
	var cfg *genai.EmbedContentConfig
	if e.dimensions > 0 {
		cfg = &genai.EmbedContentConfig{OutputDimensionality: &e.dimensions}
	}
	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini embed: expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	out := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("gemini embed: empty embedding at %d", i)
		}
		out[i] = emb.Values
	}
	e.dimension.CompareAndSwap(0, int64(len(out[0])))
	return out, nil
}
