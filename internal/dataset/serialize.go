package dataset

import (
	"strings"

	"github.com/kirjasto-labs/metacorpus/internal/catalog"
)

// Serializer renders metadata and assembles training examples. The suffix
// and stop sequence come from configuration; both are chosen to be extremely
// unlikely inside natural document text.
type Serializer struct {
	PromptSuffix   string
	CompletionStop string
}

// MetadataText renders fields as "field: value" lines. Order is significant:
// it defines the completion the model is trained to reproduce.
func (s Serializer) MetadataText(fields []catalog.FieldValue) string {
	lines := make([]string, len(fields))
	for i, fv := range fields {
		lines[i] = fv.Field + ": " + fv.Value
	}
	return strings.Join(lines, "\n")
}

// Prompt appends the fixed suffix to an excerpt text.
func (s Serializer) Prompt(excerptText string) string {
	return excerptText + s.PromptSuffix
}

// BuildExample assembles one training example. The completion carries a
// single leading space and ends with the stop sequence so the model learns a
// clean boundary and generation can be truncated deterministically.
func (s Serializer) BuildExample(excerptText, metadataText string) Example {
	return Example{
		Prompt:     s.Prompt(excerptText),
		Completion: " " + metadataText + s.CompletionStop,
	}
}

// Examples renders a train split into training examples, preserving order.
func (s Serializer) Examples(triples []Triple) []Example {
	out := make([]Example, len(triples))
	for i, t := range triples {
		out[i] = s.BuildExample(t.Text, s.MetadataText(t.Fields))
	}
	return out
}

// ParseCompletion is the inverse of MetadataText for evaluation: strip the
// stop sequence and surrounding whitespace, then split each line on the first
// ": " only, since values may themselves contain colons.
func (s Serializer) ParseCompletion(raw string) []catalog.FieldValue {
	text := raw
	if i := strings.Index(text, s.CompletionStop); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var fields []catalog.FieldValue
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		field, value, found := strings.Cut(line, ": ")
		if !found {
			fields = append(fields, catalog.FieldValue{Field: line})
			continue
		}
		fields = append(fields, catalog.FieldValue{Field: field, Value: value})
	}
	return fields
}
