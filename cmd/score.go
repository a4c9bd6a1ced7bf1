package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/jobpilot/internal/scoring"
)

var scoreRescore bool

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score enriched jobs against the configured resume variants",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		scorer := scoring.New(env.Store, env.Provider, cfg.Batch.MaxConcurrentJobs)
		res, err := scorer.Run(ctx, scoreRescore)
		if err != nil {
			return err
		}

		fmt.Printf("score: %d processed, %d succeeded, %d failed, %d skipped\n",
			res.Processed, res.Succeeded, res.Failed, res.Skipped)
		return nil
	},
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreRescore, "rescore", false, "re-score jobs that are already scored")
	rootCmd.AddCommand(scoreCmd)
}
