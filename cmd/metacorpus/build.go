package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirjasto-labs/metacorpus/internal/catalog"
	"github.com/kirjasto-labs/metacorpus/internal/common"
	"github.com/kirjasto-labs/metacorpus/internal/dataset"
	"github.com/kirjasto-labs/metacorpus/internal/excerpt"
	"github.com/kirjasto-labs/metacorpus/internal/fetch"
	"github.com/kirjasto-labs/metacorpus/internal/pagetext"
)

func newBuildCmd(logger *slog.Logger) *cobra.Command {
	var (
		catalogGlob string
		outPath     string
		testOutPath string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the train/test corpus from catalog exports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := common.LoadConfig()
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()

			paths, err := filepath.Glob(catalogGlob)
			if err != nil {
				return fmt.Errorf("bad catalog glob: %w", err)
			}
			if len(paths) == 0 {
				return fmt.Errorf("no catalog files match %q", catalogGlob)
			}
			sort.Strings(paths)

			var items []catalog.Item
			for _, p := range paths {
				exp, err := catalog.ParseExport(p)
				if err != nil {
					return err
				}
				logger.Info("build.catalog.loaded", "path", p, "items", len(exp.Items))
				items = append(items, exp.Items...)
			}

			var testIDs []string
			if cfg.Dataset.TestIDFile != "" {
				if testIDs, err = dataset.LoadTestIDs(cfg.Dataset.TestIDFile); err != nil {
					return err
				}
			}

			store, err := fetch.Open(ctx, cfg.Fetch.CacheDBURL, logger)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.HealthCheck(ctx, 3*time.Second); err != nil {
				return fmt.Errorf("cache index health: %w", err)
			}

			builder := &dataset.Builder{
				Reader:      catalog.NewRecordReader(cfg.Dataset.FieldList, logger),
				Fetcher:     fetch.NewFetcher(store, cfg.Fetch.CacheDir, cfg.Fetch.Timeout, logger),
				Opener:      pagetext.NewExtractor(cfg.Pdftotext, logger),
				Partitioner: dataset.NewPartitioner(testIDs, cfg.Dataset.PartitionStrict, logger),
				Extract: excerpt.Options{
					MaxPages:  cfg.Extract.MaxPages,
					Margin:    cfg.Extract.Margin,
					TextMin:   cfg.Extract.TextMin,
					TextLimit: cfg.Extract.TextLimit,
				},
				Concurrency: cfg.Fetch.Concurrency,
				FetchStrict: cfg.Fetch.Strict,
				Logger:      logger,
			}

			res, err := builder.Build(ctx, items)
			if err != nil {
				return err
			}

			ser := dataset.Serializer{
				PromptSuffix:   cfg.Dataset.PromptSuffix,
				CompletionStop: cfg.Dataset.CompletionStop,
			}
			if err := dataset.WriteExamplesFile(outPath, ser.Examples(res.Train)); err != nil {
				return err
			}
			if err := dataset.WriteTriplesFile(testOutPath, res.Test); err != nil {
				return err
			}

			fmt.Printf("train: %d  test: %d  skipped: %d\n", res.Summary.Train, res.Summary.Test, res.Summary.Skipped)
			fmt.Printf("wrote %s and %s\n", outPath, testOutPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogGlob, "catalog", "", "glob of catalog export files (required)")
	cmd.Flags().StringVar(&outPath, "out", "train.jsonl", "training corpus JSONL output")
	cmd.Flags().StringVar(&testOutPath, "test-out", "test.json", "held-out split sidecar output")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}
