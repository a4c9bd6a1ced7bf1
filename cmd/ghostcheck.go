package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/jobpilot/internal/followup"
)

var ghostcheckCmd = &cobra.Command{
	Use:   "ghostcheck",
	Short: "Mark applied jobs with no correspondence as ghosted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		scanner := followup.New(env.Store, env.Provider, cfg.Followup)
		res, err := scanner.GhostCheck(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("ghostcheck: %d checked, %d ghosted\n", res.Checked, res.Ghosted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ghostcheckCmd)
}
