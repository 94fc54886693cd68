package main

import (
	"log/slog"
	"os"

	"issuescout/internal/cli"
	"issuescout/internal/logging"
)

func main() {
	logger := logging.New(os.Stderr, slog.LevelInfo)
	if err := cli.Execute(os.Args[1:], logger); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
