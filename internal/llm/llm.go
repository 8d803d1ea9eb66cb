// Package llm wraps completion calls with the fallback behaviour callers
// rely on: a failed model call never reaches the user as a raw error.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"careerbot/internal/domain"
)

const diagnosticRunes = 120

var ErrNoCompleter = errors.New("no completion service configured")

// Complete calls c, reporting ErrNoCompleter when c is nil. Blank answers
// count as failures.
func Complete(ctx context.Context, c domain.Completer, prompt string) (string, error) {
	if c == nil {
		return "", ErrNoCompleter
	}
	out, err := c.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("empty completion")
	}
	return out, nil
}

// CompleteOr returns the completion, or fallback when it fails. Failures
// other than a missing completer are logged and appended to the fallback as
// a short diagnostic.
func CompleteOr(ctx context.Context, c domain.Completer, prompt, fallback string) string {
	out, err := Complete(ctx, c, prompt)
	if err == nil {
		return out
	}
	if errors.Is(err, ErrNoCompleter) {
		return fallback
	}
	log.Printf("[WARN] completion failed, using fallback: %v", err)
	return fmt.Sprintf("%s\n\n_(model unavailable: %s)_", fallback, Truncate(err.Error(), diagnosticRunes))
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
