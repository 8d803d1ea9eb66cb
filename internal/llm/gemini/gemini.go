// Package gemini implements domain.Completer with the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Completer sends single-turn prompts to a Gemini model.
type Completer struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, cfg Config) (*Completer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini completer: missing API key")
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
	return &Completer{client: client, model: cfg.Model}, nil
}

func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}
