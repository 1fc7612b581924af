package eval

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirjasto-labs/metacorpus/internal/catalog"
	"github.com/kirjasto-labs/metacorpus/internal/dataset"
	"github.com/kirjasto-labs/metacorpus/internal/provider"
)

var ser = dataset.Serializer{PromptSuffix: "\n\n###\n\n", CompletionStop: " END"}

func testTriples() []dataset.Triple {
	return []dataset.Triple{
		{
			Identifier: "https://example.edu/handle/10024/1",
			Text:       "first document text",
			Fields:     []catalog.FieldValue{{Field: "title", Value: "First"}},
		},
		{
			Identifier: "https://example.edu/handle/10024/2",
			Text:       "second document text",
			Fields:     []catalog.FieldValue{{Field: "title", Value: "Second"}},
		},
	}
}

func TestEvaluatorRun(t *testing.T) {
	ctx := context.Background()

	t.Run("pairs each generated completion with ground truth", func(t *testing.T) {
		stub := provider.NewStub()
		stub.CompleteFn = func(req provider.CompletionRequest) (string, error) {
			assert.True(t, req.Deterministic)
			assert.Equal(t, []string{" END"}, req.Stop)
			return " title: Generated", nil
		}
		ev := &Evaluator{Completer: stub, Serializer: ser, Model: "ft:x", MaxTokens: 350}

		rows, err := ev.Run(ctx, testTriples())

		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, " title: Generated", rows[0].Generated)
		assert.Equal(t, "title: First", rows[0].GroundTruth)
		assert.Equal(t, "title: Second", rows[1].GroundTruth)
	})

	t.Run("sample limits the evaluated triples", func(t *testing.T) {
		ev := &Evaluator{Completer: provider.NewStub(), Serializer: ser, Model: "ft:x", Sample: 1}

		rows, err := ev.Run(ctx, testTriples())

		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("retries a transient failure", func(t *testing.T) {
		stub := provider.NewStub()
		calls := 0
		stub.CompleteFn = func(provider.CompletionRequest) (string, error) {
			calls++
			if calls == 1 {
				return "", fmt.Errorf("temporarily overloaded")
			}
			return " title: OK", nil
		}
		ev := &Evaluator{
			Completer:  stub,
			Serializer: ser,
			Model:      "ft:x",
			Sample:     1,
			Backoff:    time.Millisecond,
		}

		rows, err := ev.Run(ctx, testTriples())

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, " title: OK", rows[0].Generated)
	})

	t.Run("rejected request fails without retrying", func(t *testing.T) {
		stub := provider.NewStub()
		calls := 0
		stub.CompleteFn = func(provider.CompletionRequest) (string, error) {
			calls++
			return "", &provider.StatusError{Code: 400, Body: "prompt too long"}
		}
		ev := &Evaluator{
			Completer:   stub,
			Serializer:  ser,
			Model:       "ft:x",
			Sample:      1,
			MaxAttempts: 3,
			Backoff:     time.Millisecond,
		}

		_, err := ev.Run(ctx, testTriples())

		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.Contains(t, err.Error(), "prompt too long")
	})

	t.Run("persistent failure surfaces after all attempts", func(t *testing.T) {
		stub := provider.NewStub()
		calls := 0
		stub.CompleteFn = func(provider.CompletionRequest) (string, error) {
			calls++
			return "", fmt.Errorf("quota exceeded")
		}
		ev := &Evaluator{
			Completer:   stub,
			Serializer:  ser,
			Model:       "ft:x",
			Sample:      1,
			MaxAttempts: 3,
			Backoff:     time.Millisecond,
		}

		_, err := ev.Run(ctx, testTriples())

		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.Contains(t, err.Error(), "quota exceeded")
	})
}

func TestMatchingLines(t *testing.T) {
	gen := " title: X\ncreator: Doe, J.\npublisher: Wrong"
	truth := "title: X\ncreator: Doe, J.\npublisher: Right"

	assert.Equal(t, 2, matchingLines(gen, truth))
	assert.Equal(t, 0, matchingLines("", truth))
}
