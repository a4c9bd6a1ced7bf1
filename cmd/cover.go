package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/jobpilot/internal/model"
)

var coverCmd = &cobra.Command{
	Use:   "cover <job-id>",
	Short: "Generate and store a cover letter for a scored job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		job, err := env.Store.GetJob(ctx, args[0])
		if err != nil {
			return err
		}
		if job.EnrichmentStatus != model.EnrichmentScored {
			return eris.Errorf("job %s is %s, score it first", job.JobID, job.EnrichmentStatus)
		}

		resume, err := resumeForJob(ctx, env, job)
		if err != nil {
			return err
		}

		letter, err := env.Provider.GenerateCoverLetter(ctx, *job, resume, nil)
		if err != nil {
			return err
		}
		if err := env.Store.UpdateCoverLetter(ctx, job.JobID, letter); err != nil {
			return err
		}

		fmt.Println(letter)
		return nil
	},
}

// resumeForJob picks the recommended variant when scoring named one,
// otherwise concatenates everything.
func resumeForJob(ctx context.Context, env *pipelineEnv, job *model.Job) (string, error) {
	variants, err := env.Store.ListResumeVariants(ctx)
	if err != nil {
		return "", err
	}
	if len(variants) == 0 {
		return "", eris.New("no resume variants configured, add one with 'jobpilot resume add'")
	}

	if job.ResumeRecommendation != "" {
		for _, v := range variants {
			if v.Name == job.ResumeRecommendation {
				return v.Content, nil
			}
		}
	}

	combined := ""
	for _, v := range variants {
		combined += v.Content + "\n\n"
	}
	return combined, nil
}

func init() {
	rootCmd.AddCommand(coverCmd)
}
