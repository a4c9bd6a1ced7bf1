package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/jobpilot/internal/model"
	"github.com/sells-group/jobpilot/internal/store"
)

var (
	jobsStatus     string
	jobsEnrichment string
	jobsCompany    string
	jobsLimit      int
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List tracked jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		jobs, err := st.ListJobs(ctx, store.JobFilter{
			Status:           model.Status(jobsStatus),
			EnrichmentStatus: model.EnrichmentStatus(jobsEnrichment),
			Company:          jobsCompany,
			Limit:            jobsLimit,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "JOB ID\tTITLE\tCOMPANY\tSTATUS\tPIPELINE\tSCORE\tSALARY")
		for _, j := range jobs {
			score := "-"
			if j.Score != nil {
				score = fmt.Sprintf("%d", *j.Score)
			}
			salary := j.SalaryEstimate
			if salary == "" {
				salary = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				j.JobID, j.Title, j.Company, j.Status, j.EnrichmentStatus, score, salary)
		}
		return w.Flush()
	},
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show one job with its correspondence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		job, err := st.GetJob(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s at %s (%s)\n", job.Title, job.Company, job.Location)
		fmt.Printf("  status: %s, pipeline: %s\n", job.Status, job.EnrichmentStatus)
		if job.Score != nil {
			fmt.Printf("  score: %d (%s)\n", *job.Score, job.ResumeRecommendation)
		}
		if job.SalaryEstimate != "" {
			fmt.Printf("  salary: %s (%s confidence)\n", job.SalaryEstimate, job.SalaryConfidence)
		}
		if job.IsAggregator {
			fmt.Println("  aggregator listing")
		}
		if job.URL != "" {
			fmt.Printf("  url: %s\n", job.URL)
		}
		if job.Notes != "" {
			fmt.Printf("\n%s\n", job.Notes)
		}

		followups, err := st.ListFollowups(ctx, job.JobID)
		if err != nil {
			return err
		}
		if len(followups) > 0 {
			fmt.Println("\ncorrespondence:")
			for _, f := range followups {
				review := ""
				if f.NeedsReview {
					review = " [needs review]"
				}
				fmt.Printf("  %s  %-12s %s%s\n",
					f.EmailDate.Format("2006-01-02"), f.Classification, f.Subject, review)
			}
		}
		return nil
	},
}

var jobsStatusCmd = &cobra.Command{
	Use:   "status <job-id> <status>",
	Short: "Set a job's application status directly",
	Long:  "Sets the application status without lifecycle checks. Automated classification respects the transition rules; you don't have to.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		next := model.Status(args[1])
		if !validStatus(next) {
			return eris.Errorf("unknown status %q", args[1])
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.UpdateStatus(ctx, args[0], next); err != nil {
			return err
		}
		fmt.Printf("%s -> %s\n", args[0], next)
		return nil
	},
}

func validStatus(s model.Status) bool {
	switch s {
	case model.StatusNew, model.StatusInterested, model.StatusApplied,
		model.StatusInterviewing, model.StatusOffer, model.StatusRejected,
		model.StatusPassed, model.StatusGhosted:
		return true
	}
	return false
}

func init() {
	jobsCmd.Flags().StringVar(&jobsStatus, "status", "", "filter by application status")
	jobsCmd.Flags().StringVar(&jobsEnrichment, "pipeline", "", "filter by enrichment status")
	jobsCmd.Flags().StringVar(&jobsCompany, "company", "", "filter by company")
	jobsCmd.Flags().IntVar(&jobsLimit, "limit", 50, "max rows")
	jobsCmd.AddCommand(jobsShowCmd)
	jobsCmd.AddCommand(jobsStatusCmd)
	rootCmd.AddCommand(jobsCmd)
}
