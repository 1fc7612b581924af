// Package dataset turns normalized catalog records into a partitioned
// fine-tuning corpus: prompt/completion training examples for the train
// split, held-back triples for evaluation.
package dataset

import "github.com/kirjasto-labs/metacorpus/internal/catalog"

// Triple is one fully processed document: its identifier, the bounded
// excerpt text, and the normalized metadata. Train and test splits both
// accumulate triples; only the train split is rendered to JSONL.
type Triple struct {
	Identifier string               `json:"identifier"`
	Text       string               `json:"text"`
	Fields     []catalog.FieldValue `json:"fields"`
}

// Example is one JSONL training record.
type Example struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// Summary is the end-of-run report.
type Summary struct {
	Train   int
	Test    int
	Skipped int
}

// Result holds the outcome of one builder pass.
type Result struct {
	Train   []Triple
	Test    []Triple
	Summary Summary
}
