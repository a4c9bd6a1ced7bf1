package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/jobpilot/internal/filter"
	"github.com/sells-group/jobpilot/internal/intake"
	"github.com/sells-group/jobpilot/internal/mailbox"
	"github.com/sells-group/jobpilot/internal/parser"
)

var (
	scanSinceDays int
	scanNoScreen  bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Parse exported alert emails into pending jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		since := time.Now().AddDate(0, 0, -scanSinceDays)
		emails, err := mailbox.NewDirSource(cfg.Mailbox.Dir).Fetch(ctx, since)
		if err != nil {
			return err
		}

		registry := parser.NewRegistry(
			parser.NewLLMParser(env.Provider),
			parser.NewLinkedIn(),
			parser.NewIndeed(),
			parser.NewGlassdoor(),
		)

		var screener intake.Screener
		if !scanNoScreen {
			screener = env.Provider
		}

		pipeline := intake.New(env.Store, registry, filter.New(cfg.Filter), screener, cfg.Filter)
		res, err := pipeline.Scan(ctx, emails)
		if err != nil {
			return eris.Wrap(err, "scan")
		}

		fmt.Printf("scan: %d emails, %d candidates, %d inserted, %d duplicates, %d filtered, %d screened\n",
			res.Emails, res.Candidates, res.Inserted, res.Duplicates, res.Filtered, res.Screened)
		return nil
	},
}

func init() {
	scanCmd.Flags().IntVar(&scanSinceDays, "since-days", 7, "only process emails received in the last N days")
	scanCmd.Flags().BoolVar(&scanNoScreen, "no-screen", false, "skip the LLM screen, local filters only")
	rootCmd.AddCommand(scanCmd)
}
