package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"careerbot/internal/assistant"
	"careerbot/internal/chunker"
	"careerbot/internal/config"
	"careerbot/internal/corpus"
	"careerbot/internal/domain"
	"careerbot/internal/embedding/gemini"
	"careerbot/internal/embedding/openai"
	"careerbot/internal/embedding/tfidf"
	"careerbot/internal/formatter"
	llmgemini "careerbot/internal/llm/gemini"
	"careerbot/internal/llm/ollama"
	"careerbot/internal/resume"
	"careerbot/internal/secrets"
	"careerbot/internal/service"
	"careerbot/internal/summarizer"
	"careerbot/internal/vectorstore"
	"careerbot/internal/vectorstore/qdrant"
)

// keychain account names used by `careerbot key set`
const (
	openaiAccount = "openai"
	geminiAccount = "gemini"
	qdrantAccount = "qdrant"
)

type app struct {
	cfg       *config.AppConfig
	search    *service.SearchService
	assistant *assistant.Assistant
}

// newApp assembles the search service and assistant. The index is not
// opened yet.
func newApp(ctx context.Context, cfg *config.AppConfig) (*app, error) {
	newEmbedder, err := embedderFactory(ctx, cfg.Embedder)
	if err != nil {
		return nil, err
	}
	backend, err := backendFactory(cfg.VectorStore)
	if err != nil {
		return nil, err
	}
	svc := service.NewSearchService(chunker.NewJobChunker(), newEmbedder, service.Options{
		IndexDir:  cfg.Data.IndexDir,
		BatchSize: cfg.Embedder.BatchSize,
		Workers:   cfg.Embedder.Workers,
		Backend:   backend,
	})
	a := &app{cfg: cfg, search: svc}

	completer := newCompleter(ctx, cfg.Completer)
	f := formatter.New(formatter.KeywordClassifier{}, summarizer.NewFrequencySummarizer())
	rb := resume.NewBuilder(completer, cfg.Resume.OutputDir)
	a.assistant = assistant.New(svc, completer, f, rb, assistant.Config{
		ListingTopK:       cfg.Search.ListingTopK,
		ContextTopK:       cfg.Search.ContextTopK,
		RecommendCount:    cfg.Search.RecommendCount,
		KeywordMaxResults: cfg.Search.KeywordMaxResults,
	})
	return a, nil
}

// open serves the persisted index or builds one. A missing corpus or a
// failed build is logged; the assistant keeps answering with what is
// available.
func (a *app) open(ctx context.Context) {
	jobs, err := corpus.LoadFile(a.cfg.Data.Corpus)
	if err == nil {
		err = a.search.Open(ctx, jobs)
	}
	if err != nil {
		log.Printf("[WARN] job search degraded: %v", err)
	}
}

// refresh reloads the corpus file and rebuilds the index.
func (a *app) refresh(ctx context.Context) error {
	jobs, err := corpus.LoadFile(a.cfg.Data.Corpus)
	if err != nil {
		return err
	}
	return a.search.Rebuild(ctx, jobs)
}

func embedderFactory(ctx context.Context, cfg config.EmbedderConfig) (domain.EmbedderFactory, error) {
	switch cfg.Type {
	case "tfidf", "":
		return func() (domain.Embedder, error) { return tfidf.NewEmbedder(), nil }, nil
	case "openai":
		o := cfg.OpenAI
		if o == nil {
			return nil, errors.New("openai embedder config missing")
		}
		key, err := secrets.APIKey(o.APIKeyEnv, openaiAccount)
		if err != nil {
			return nil, fmt.Errorf("openai embedder: %w", err)
		}
		return func() (domain.Embedder, error) {
			return openai.NewClient(openai.Config{
				BaseURL:           o.BaseURL,
				APIKey:            key,
				Model:             o.Model,
				Timeout:           time.Duration(o.TimeoutSecs) * time.Second,
				MaxRetries:        o.MaxRetries,
				RequestsPerSecond: cfg.RequestsPerSecond,
			})
		}, nil
	case "gemini":
		g := cfg.Gemini
		if g == nil {
			return nil, errors.New("gemini embedder config missing")
		}
		key, err := secrets.APIKey(g.APIKeyEnv, geminiAccount)
		if err != nil {
			return nil, fmt.Errorf("gemini embedder: %w", err)
		}
		return func() (domain.Embedder, error) {
			return gemini.New(ctx, gemini.Config{
				APIKey:            key,
				Model:             g.Model,
				Dimensions:        g.Dimensions,
				RequestsPerSecond: cfg.RequestsPerSecond,
			})
		}, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}

// backendFactory returns nil for the flat store, which serves queries from
// the persisted index directly.
func backendFactory(cfg config.VectorStoreConfig) (vectorstore.Factory, error) {
	switch cfg.Type {
	case "flat", "":
		return nil, nil
	case "qdrant":
		q := cfg.Qdrant
		if q == nil {
			return nil, errors.New("qdrant config missing")
		}
		// local Qdrant usually runs without a key
		key, _ := secrets.APIKey(q.APIKeyEnv, qdrantAccount)
		qcfg := qdrant.Config{
			URL:        q.URL,
			APIKey:     key,
			Collection: q.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		}
		return func(context.Context) (vectorstore.Storage, error) {
			return qdrant.NewStorage(qcfg), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.Type)
	}
}

// newCompleter returns nil when no model is configured or it cannot be
// reached; the assistant then answers with fallback text.
func newCompleter(ctx context.Context, cfg config.CompleterConfig) domain.Completer {
	switch cfg.Type {
	case "gemini":
		key, err := secrets.APIKey(cfg.Gemini.APIKeyEnv, geminiAccount)
		if err != nil {
			log.Printf("[WARN] gemini completer disabled: %v", err)
			return nil
		}
		c, err := llmgemini.New(ctx, llmgemini.Config{APIKey: key, Model: cfg.Gemini.Model})
		if err != nil {
			log.Printf("[WARN] gemini completer disabled: %v", err)
			return nil
		}
		return c
	case "ollama":
		return ollama.New(ollama.Config{
			BaseURL: cfg.Ollama.BaseURL,
			Model:   cfg.Ollama.Model,
			Timeout: time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
		})
	default:
		return nil
	}
}
