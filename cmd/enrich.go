package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/jobpilot/internal/enrich"
)

var enrichForce bool

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fetch full descriptions and salary data for pending jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := enrich.New(env.Store, env.Provider, cfg).Run(ctx, enrichForce)
		if err != nil {
			return err
		}

		fmt.Printf("enrich: %d processed, %d succeeded, %d failed, %d skipped\n",
			res.Processed, res.Succeeded, res.Failed, res.Skipped)
		return nil
	},
}

func init() {
	enrichCmd.Flags().BoolVar(&enrichForce, "force", false, "re-enrich jobs that are already enriched")
	rootCmd.AddCommand(enrichCmd)
}
