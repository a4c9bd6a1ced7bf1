package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var answerCmd = &cobra.Command{
	Use:   "answer <job-id> <question...>",
	Short: "Draft an interview answer grounded in a job and your resume",
	Args:  cobra.MinimumNArgs(2),
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
		resume, err := resumeForJob(ctx, env, job)
		if err != nil {
			return err
		}

		question := strings.Join(args[1:], " ")
		answer, err := env.Provider.GenerateInterviewAnswer(ctx, question, *job, resume, nil)
		if err != nil {
			return err
		}

		fmt.Println(answer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(answerCmd)
}
