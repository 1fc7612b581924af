package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirjasto-labs/metacorpus/internal/catalog"
)

var ser = Serializer{PromptSuffix: "\n\n###\n\n", CompletionStop: " END"}

func TestMetadataText(t *testing.T) {
	t.Run("renders fields in order with year truncation upstream", func(t *testing.T) {
		fields := []catalog.FieldValue{
			{Field: "title", Value: "X"},
			{Field: "date/issued", Value: "2020"},
		}
		assert.Equal(t, "title: X\ndate/issued: 2020", ser.MetadataText(fields))
	})

	t.Run("empty metadata renders empty", func(t *testing.T) {
		assert.Equal(t, "", ser.MetadataText(nil))
	})
}

func TestBuildExample(t *testing.T) {
	t.Run("prompt ends with suffix, completion bracketed by space and stop", func(t *testing.T) {
		ex := ser.BuildExample("some page text", "title: X")

		assert.True(t, strings.HasSuffix(ex.Prompt, ser.PromptSuffix))
		assert.Equal(t, "some page text"+ser.PromptSuffix, ex.Prompt)
		assert.True(t, strings.HasPrefix(ex.Completion, " "))
		assert.True(t, strings.HasSuffix(ex.Completion, ser.CompletionStop))
		assert.Equal(t, " title: X END", ex.Completion)
	})

	t.Run("empty excerpt is a legal degenerate example", func(t *testing.T) {
		ex := ser.BuildExample("", "title: X")

		assert.Equal(t, ser.PromptSuffix, ex.Prompt)
		assert.Equal(t, " title: X END", ex.Completion)
	})
}

func TestParseCompletion(t *testing.T) {
	t.Run("round-trips serialized metadata", func(t *testing.T) {
		fields := []catalog.FieldValue{
			{Field: "title", Value: "Maps: A History"},
			{Field: "creator", Value: "Doe, J."},
			{Field: "creator", Value: "Roe, R."},
			{Field: "date/issued", Value: "1999"},
		}
		ex := ser.BuildExample("text", ser.MetadataText(fields))

		assert.Equal(t, fields, ser.ParseCompletion(ex.Completion))
	})

	t.Run("value colons survive parsing", func(t *testing.T) {
		got := ser.ParseCompletion(" title: X: Y: Z END")
		require.Len(t, got, 1)
		assert.Equal(t, catalog.FieldValue{Field: "title", Value: "X: Y: Z"}, got[0])
	})

	t.Run("truncates at the first stop occurrence", func(t *testing.T) {
		got := ser.ParseCompletion(" title: X END\ngarbage: after END")
		assert.Equal(t, []catalog.FieldValue{{Field: "title", Value: "X"}}, got)
	})

	t.Run("blank completion parses to nothing", func(t *testing.T) {
		assert.Nil(t, ser.ParseCompletion("  END"))
		assert.Nil(t, ser.ParseCompletion(""))
	})
}

func TestExamples(t *testing.T) {
	triples := []Triple{
		{Identifier: "a", Text: "first", Fields: []catalog.FieldValue{{Field: "title", Value: "A"}}},
		{Identifier: "b", Text: "second", Fields: []catalog.FieldValue{{Field: "title", Value: "B"}}},
	}
	examples := ser.Examples(triples)

	require.Len(t, examples, 2)
	assert.Equal(t, "first"+ser.PromptSuffix, examples[0].Prompt)
	assert.Equal(t, " title: B END", examples[1].Completion)
}
