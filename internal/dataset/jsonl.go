package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteExamples emits one JSON object per line, in processing order.
func WriteExamples(w io.Writer, examples []Example) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i := range examples {
		if err := enc.Encode(&examples[i]); err != nil {
			return fmt.Errorf("encode example %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// WriteExamplesFile writes the training corpus JSONL to path.
func WriteExamplesFile(path string, examples []Example) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteExamples(f, examples); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTriplesFile persists a split as a JSON sidecar so evaluation can run
// in a later process.
func WriteTriplesFile(path string, triples []Triple) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(triples); err != nil {
		f.Close()
		return fmt.Errorf("encode triples: %w", err)
	}
	return f.Close()
}

// ReadTriplesFile loads a split sidecar written by WriteTriplesFile.
func ReadTriplesFile(path string) ([]Triple, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var triples []Triple
	if err := json.Unmarshal(raw, &triples); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return triples, nil
}
