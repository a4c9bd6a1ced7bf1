package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/jobpilot/internal/followup"
	"github.com/sells-group/jobpilot/internal/mailbox"
)

var followupSinceDays int

var followupCmd = &cobra.Command{
	Use:   "followup",
	Short: "Classify correspondence and advance application status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		since := time.Now().AddDate(0, 0, -followupSinceDays)
		emails, err := mailbox.NewDirSource(cfg.Mailbox.Dir).Fetch(ctx, since)
		if err != nil {
			return err
		}

		scanner := followup.New(env.Store, env.Provider, cfg.Followup)
		res, err := scanner.Scan(ctx, emails)
		if err != nil {
			return err
		}

		fmt.Printf("followup: %d processed, %d linked, %d unlinked, %d status changes, %d skipped\n",
			res.Processed, res.Linked, res.Unlinked, res.StatusChanges, res.Skipped)
		return nil
	},
}

func init() {
	followupCmd.Flags().IntVar(&followupSinceDays, "since-days", 7, "only process emails received in the last N days")
	rootCmd.AddCommand(followupCmd)
}
