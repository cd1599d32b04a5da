package cmd

import (
	"fmt"
	"os"

	"cardvault/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cardvault",
	Short: "CardVault collection core",
	Long: `CardVault is the collection-management core of a trading-card application.
It ingests the bulk card catalog into an embedded store and reconciles the
user's ledger of owned cards against it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Use the application's standard logger for error reporting.
		// Console format with "debug" level gives ISO8601 timestamps
		// (DevConfig) instead of Epoch (ProdConfig).
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
