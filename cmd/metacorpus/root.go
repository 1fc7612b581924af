package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "metacorpus",
		Short: "Build and evaluate a bibliographic metadata fine-tuning corpus",
		Long: `metacorpus turns institutional-repository catalog exports into a
prompt/completion fine-tuning corpus, submits the training job, and evaluates
the fitted model against the held-out split.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newBuildCmd(logger),
		newTrainCmd(logger),
		newFollowCmd(logger),
		newEvalCmd(logger),
		newCacheCmd(logger),
	)
	return root
}
