// Package eval runs held-out prompts through a fitted model and lays the
// generated metadata next to the ground truth. It does no scoring;
// correctness judgment stays with the operator.
package eval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirjasto-labs/metacorpus/internal/dataset"
	"github.com/kirjasto-labs/metacorpus/internal/provider"
)

// Row is one side-by-side comparison.
type Row struct {
	Identifier  string
	Generated   string
	GroundTruth string
}

// Evaluator drives completions for sampled test triples.
type Evaluator struct {
	Completer   provider.Completer
	Serializer  dataset.Serializer
	Model       string
	MaxTokens   int
	Sample      int // 0 means all
	MaxAttempts int // per-prompt completion attempts
	Backoff     time.Duration
	Logger      *slog.Logger
}

// Run renders each sampled test prompt, requests a deterministic completion
// with the configured stop sequence, and pairs it with the ground-truth
// metadata text. Transient completion failures are retried with backoff.
func (e *Evaluator) Run(ctx context.Context, triples []dataset.Triple) ([]Row, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if e.Sample > 0 && e.Sample < len(triples) {
		triples = triples[:e.Sample]
	}

	rows := make([]Row, 0, len(triples))
	for _, t := range triples {
		generated, err := e.complete(ctx, e.Serializer.Prompt(t.Text), logger)
		if err != nil {
			return nil, fmt.Errorf("complete %s: %w", t.Identifier, err)
		}
		rows = append(rows, Row{
			Identifier:  t.Identifier,
			Generated:   generated,
			GroundTruth: e.Serializer.MetadataText(t.Fields),
		})
		logger.Info("eval.item.ok", "identifier", t.Identifier, "generated_len", len(generated))
	}
	return rows, nil
}

func (e *Evaluator) complete(ctx context.Context, prompt string, logger *slog.Logger) (string, error) {
	attempts := e.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := e.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}

	req := provider.CompletionRequest{
		Model:         e.Model,
		Prompt:        prompt,
		MaxTokens:     e.MaxTokens,
		Deterministic: true,
		Stop:          []string{e.Serializer.CompletionStop},
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := e.Completer.Complete(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !provider.Transient(err) {
			// Retrying a malformed request burns attempts for nothing.
			return "", err
		}
		logger.Warn("eval.complete.retry", "attempt", attempt, "error", err)
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return "", fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
