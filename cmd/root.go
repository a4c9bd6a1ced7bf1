package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/jobpilot/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "jobpilot",
	Short: "Job alert intake, enrichment, and application tracking",
	Long:  "Parses job-alert emails into tracked jobs, enriches them with full descriptions and salary data, scores them against resume variants, and follows application threads through to offers.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
