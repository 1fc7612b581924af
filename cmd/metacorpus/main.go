package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/kirjasto-labs/metacorpus/internal/common"
)

func main() {
	// Best-effort: a missing .env just means plain environment config.
	_ = godotenv.Load()

	logger := common.NewLogger()
	slog.SetDefault(logger)

	if err := newRootCmd(logger).Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
