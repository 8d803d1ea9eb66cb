package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Client is an OpenAI-compatible embeddings client. It also understands the
// single-vector response shape returned by Ollama's compatibility endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	dimension  atomic.Int64
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL           string
	APIKey            string
	Model             string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai embedder: missing API key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: cfg.MaxRetries,
	}, nil
}

func (c *Client) Name() string { return "openai" }

// Prepare is a no-op; the dimension is learned from the first response.
func (c *Client) Prepare(corpus []string) error { return nil }

func (c *Client) Dimension() int { return int(c.dimension.Load()) }

type embedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// Embed returns one vector per text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(embedRequest{Input: texts, Model: c.model})
	if err != nil {
		return nil, err
	}
	url := c.baseURL + "/embeddings"

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, retryDelay(attempt-1)); err != nil {
				return nil, err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		vecs, wait, err := c.post(ctx, url, data, len(texts))
		if err == nil {
			if len(vecs) > 0 {
				c.dimension.CompareAndSwap(0, int64(len(vecs[0])))
			}
			return vecs, nil
		}
		lastErr = err
		if wait < 0 {
			return nil, err
		}
		if wait > 0 {
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("openai embeddings failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// post performs one request. wait < 0 marks a permanent failure, wait > 0 is
// a server-requested delay before the next attempt.
func (c *Client) post(ctx context.Context, url string, body []byte, n int) ([][]float32, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, -1, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, -1, ctx.Err()
		}
		return nil, 0, err
	}
	payload, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		var wait time.Duration
		if secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil {
			wait = time.Duration(secs) * time.Second
		}
		return nil, wait, fmt.Errorf("openai embeddings: %s", resp.Status)
	}
	if resp.StatusCode >= 300 {
		return nil, -1, fmt.Errorf("openai embeddings: %s", resp.Status)
	}
	if err != nil {
		return nil, 0, err
	}
	vecs, err := decode(payload, n)
	if err != nil {
		return nil, 0, err
	}
	return vecs, 0, nil
}

func decode(payload []byte, n int) ([][]float32, error) {
	var openaiOut struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &openaiOut); err == nil && len(openaiOut.Data) > 0 {
		sort.SliceStable(openaiOut.Data, func(i, j int) bool { return openaiOut.Data[i].Index < openaiOut.Data[j].Index })
		if len(openaiOut.Data) != n {
			return nil, fmt.Errorf("expected %d embeddings, got %d", n, len(openaiOut.Data))
		}
		out := make([][]float32, n)
		for i, d := range openaiOut.Data {
			out[i] = d.Embedding
		}
		return out, nil
	}
	// Ollama-native shape: { "embedding": [...] }, single input only
	var ollamaOut struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &ollamaOut); err == nil && len(ollamaOut.Embedding) > 0 && n == 1 {
		return [][]float32{ollamaOut.Embedding}, nil
	}
	return nil, errors.New("no embedding returned")
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func retryDelay(attempt int) time.Duration {
	// exponential backoff capped at 5s; 200ms<<5 already exceeds the cap
	attempt = min(max(attempt, 0), 5)
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
