package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirjasto-labs/metacorpus/internal/common"
	"github.com/kirjasto-labs/metacorpus/internal/dataset"
	"github.com/kirjasto-labs/metacorpus/internal/eval"
)

func newEvalCmd(logger *slog.Logger) *cobra.Command {
	var (
		model      string
		testPath   string
		sample     int
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run held-out prompts through a fitted model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := common.LoadConfig()
			if err := cfg.ValidateProvider(); err != nil {
				return err
			}
			if sample == 0 {
				sample = cfg.Eval.Sample
			}

			triples, err := dataset.ReadTriplesFile(testPath)
			if err != nil {
				return err
			}

			ev := &eval.Evaluator{
				Completer: newProviderClient(cfg, logger),
				Serializer: dataset.Serializer{
					PromptSuffix:   cfg.Dataset.PromptSuffix,
					CompletionStop: cfg.Dataset.CompletionStop,
				},
				Model:     model,
				MaxTokens: cfg.Eval.MaxTokens,
				Sample:    sample,
				Logger:    logger,
			}
			rows, err := ev.Run(cmd.Context(), triples)
			if err != nil {
				return err
			}

			for _, r := range rows {
				fmt.Printf("== %s\n", r.Identifier)
				fmt.Printf("-- generated\n%s\n", strings.TrimSpace(r.Generated))
				fmt.Printf("-- ground truth\n%s\n\n", r.GroundTruth)
			}

			if reportPath != "" {
				if err := eval.WriteReport(reportPath, rows); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", reportPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "fitted model id (required)")
	cmd.Flags().StringVar(&testPath, "test", "test.json", "held-out split sidecar")
	cmd.Flags().IntVar(&sample, "sample", 0, "evaluate only the first N test documents")
	cmd.Flags().StringVar(&reportPath, "report", "", "write XLSX comparison report to this path")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}
