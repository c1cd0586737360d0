package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/signet-one/signet"
)

const programName = "signet"

var globalFlags = struct {
	debug bool
}{}

func setupLogger() {
	level := slog.LevelInfo
	if globalFlags.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	)
	slog.SetDefault(logger)
}

func unixNow() uint64 {
	return uint64(time.Now().Unix())
}

// parseID parses a base58 account id flag value.
func parseID(s string) (signet.AccountID, error) {
	return signet.AccountIDFromString(s)
}

func parseIDs(ss []string) ([]signet.AccountID, error) {
	ids := make([]signet.AccountID, len(ss))
	for i, s := range ss {
		id, err := parseID(s)
		if err != nil {
			return nil, fmt.Errorf("account %q: %w", s, err)
		}
		ids[i] = id
	}
	return ids, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "Run threshold-governance transactions against a local ledger",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogger()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(
		&globalFlags.debug, "debug", "D", false, "debug logging",
	)

	rootCmd.AddCommand(multisigCommand())
	rootCmd.AddCommand(treasuryCommand())
	rootCmd.AddCommand(registryCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
