package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kirjasto-labs/metacorpus/internal/common"
	"github.com/kirjasto-labs/metacorpus/internal/provider"
	"github.com/kirjasto-labs/metacorpus/internal/provider/openai"
)

func newTrainCmd(logger *slog.Logger) *cobra.Command {
	var (
		filePath  string
		baseModel string
		detach    bool
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Submit a fine-tuning job for a training corpus",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := common.LoadConfig()
			if err := cfg.ValidateProvider(); err != nil {
				return err
			}
			if baseModel == "" {
				baseModel = cfg.Provider.BaseModel
			}

			client := newProviderClient(cfg, logger)
			jobID, err := client.Submit(cmd.Context(), filePath, baseModel)
			if err != nil {
				return err
			}
			fmt.Printf("job: %s\n", jobID)
			if detach {
				return nil
			}

			job, err := client.Follow(cmd.Context(), jobID, printEvent)
			if err != nil {
				return err
			}
			return reportJob(job)
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "train.jsonl", "training corpus JSONL")
	cmd.Flags().StringVar(&baseModel, "base-model", "", "base model to fine-tune (default from BASE_MODEL)")
	cmd.Flags().BoolVar(&detach, "detach", false, "submit and exit without following events")
	return cmd
}

func newProviderClient(cfg *common.Config, logger *slog.Logger) *openai.Client {
	return openai.NewClient(openai.Config{
		APIKey:       cfg.Provider.APIKey,
		BaseURL:      cfg.Provider.BaseURL,
		Timeout:      cfg.Provider.Timeout,
		PollInterval: cfg.Provider.PollInterval,
	}, logger)
}

func printEvent(e provider.Event) {
	fmt.Printf("%s  [%s] %s\n", e.At.Format("2006-01-02 15:04:05"), e.Status, e.Message)
}

func reportJob(job provider.Job) error {
	if job.Status != provider.StatusSucceeded {
		return fmt.Errorf("job %s ended with status %s", job.ID, job.Status)
	}
	fmt.Printf("fitted model: %s\n", job.FittedModel)
	return nil
}
