package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/kirjasto-labs/metacorpus/internal/catalog"
	"github.com/kirjasto-labs/metacorpus/internal/excerpt"
	"github.com/kirjasto-labs/metacorpus/internal/pagetext"
)

// Fetcher retrieves a document's raw content and returns a local path.
// Results are cached by identifier so repeated runs do not re-fetch.
type Fetcher interface {
	Get(ctx context.Context, identifier, url string) (string, error)
}

// Opener turns a fetched document into per-page text.
type Opener interface {
	Pages(ctx context.Context, path string) (pagetext.Source, error)
}

// Builder orchestrates one corpus pass: normalize metadata, fetch, extract,
// partition, accumulate. It owns the train/test accumulators; nothing is
// shared across runs.
type Builder struct {
	Reader      *catalog.RecordReader
	Fetcher     Fetcher
	Opener      Opener
	Partitioner *Partitioner
	Extract     excerpt.Options
	Concurrency int  // fetch prefetch pool size; 1 means fully sequential
	FetchStrict bool // retrieval failure aborts the run instead of skipping
	Logger      *slog.Logger
}

type fetched struct {
	path string
	err  error
}

// Build processes items in catalog order. Every successfully processed
// document lands in exactly one of train/test. Items without an identifier
// or location are skipped with a diagnostic; the batch continues.
func (b *Builder) Build(ctx context.Context, items []catalog.Item) (Result, error) {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rid := uuid.New().String()
	logger.Info("builder.start", "run_id", rid, "items", len(items))

	var res Result

	// Metadata pass first: the skip diagnostics of malformed items should
	// not cost a fetch.
	records := make([]catalog.Record, 0, len(items))
	for _, item := range items {
		rec, err := b.Reader.Read(item)
		if err != nil {
			logger.Warn("builder.item.skip", "run_id", rid, "identifier", item.Identifier, "error", err)
			res.Summary.Skipped++
			continue
		}
		records = append(records, rec)
	}

	blobs := b.prefetch(ctx, records)

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		fr := blobs[i]
		if fr.path == "" && fr.err == nil {
			fr.path, fr.err = b.Fetcher.Get(ctx, rec.Identifier, rec.Location)
		}
		if fr.err != nil {
			if b.FetchStrict {
				return Result{}, fmt.Errorf("fetch %s: %w", rec.Identifier, fr.err)
			}
			logger.Warn("builder.fetch.skip", "run_id", rid, "identifier", rec.Identifier, "error", fr.err)
			res.Summary.Skipped++
			continue
		}

		src, err := b.Opener.Pages(ctx, fr.path)
		if err != nil {
			if b.FetchStrict {
				return Result{}, fmt.Errorf("open %s: %w", rec.Identifier, err)
			}
			logger.Warn("builder.open.skip", "run_id", rid, "identifier", rec.Identifier, "error", err)
			res.Summary.Skipped++
			continue
		}

		ex, err := excerpt.Extract(src, b.Extract, logger)
		if err != nil {
			return Result{}, fmt.Errorf("extract %s: %w", rec.Identifier, err)
		}

		isTest, err := b.Partitioner.IsTest(rec.Identifier)
		if err != nil {
			return Result{}, err
		}

		triple := Triple{Identifier: rec.Identifier, Text: ex.Text(), Fields: rec.Fields}
		if isTest {
			res.Test = append(res.Test, triple)
		} else {
			res.Train = append(res.Train, triple)
		}
		logger.Debug("builder.item.ok",
			"run_id", rid,
			"identifier", rec.Identifier,
			"partition", partitionName(isTest),
			"pages", len(ex.Pages),
			"words", ex.WordCount,
		)
	}

	res.Summary.Train = len(res.Train)
	res.Summary.Test = len(res.Test)
	logger.Info("builder.done",
		"run_id", rid,
		"train", res.Summary.Train,
		"test", res.Summary.Test,
		"skipped", res.Summary.Skipped,
	)
	return res, nil
}

// prefetch retrieves blobs with a bounded worker pool when Concurrency > 1.
// Results land in an index-addressed slice; routing back into the sequential
// pass keeps catalog order and per-document atomicity.
func (b *Builder) prefetch(ctx context.Context, records []catalog.Record) []fetched {
	out := make([]fetched, len(records))
	if b.Concurrency <= 1 {
		return out
	}

	sem := make(chan struct{}, b.Concurrency)
	var wg sync.WaitGroup
	for i, rec := range records {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, rec catalog.Record) {
			defer wg.Done()
			defer func() { <-sem }()
			path, err := b.Fetcher.Get(ctx, rec.Identifier, rec.Location)
			out[i] = fetched{path: path, err: err}
		}(i, rec)
	}
	wg.Wait()
	return out
}

func partitionName(isTest bool) string {
	if isTest {
		return "test"
	}
	return "train"
}
