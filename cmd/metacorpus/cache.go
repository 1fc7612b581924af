package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kirjasto-labs/metacorpus/internal/common"
	"github.com/kirjasto-labs/metacorpus/internal/fetch"
)

func newCacheCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the document cache",
	}

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Check every indexed document still has its blob on disk",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := common.LoadConfig()
			store, err := fetch.Open(cmd.Context(), cfg.Fetch.CacheDBURL, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			total, missing := 0, 0
			err = store.Walk(cmd.Context(), func(identifier, blobPath string) error {
				total++
				if _, statErr := os.Stat(blobPath); statErr != nil {
					missing++
					fmt.Printf("missing: %s (%s)\n", identifier, blobPath)
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Printf("indexed: %d  missing blobs: %d\n", total, missing)
			return nil
		},
	}

	cmd.AddCommand(verify)
	return cmd
}
