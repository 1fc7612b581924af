package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kirjasto-labs/metacorpus/internal/common"
)

func newFollowCmd(logger *slog.Logger) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "follow",
		Short: "Re-attach to a previously submitted fine-tuning job",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := common.LoadConfig()
			if err := cfg.ValidateProvider(); err != nil {
				return err
			}

			client := newProviderClient(cfg, logger)
			job, err := client.Follow(cmd.Context(), jobID, printEvent)
			if err != nil {
				return err
			}
			return reportJob(job)
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "job id to follow (required)")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}
