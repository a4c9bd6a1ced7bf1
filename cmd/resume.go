package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/jobpilot/internal/model"
)

var resumeFocus []string

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Manage resume variants",
}

var resumeAddCmd = &cobra.Command{
	Use:   "add <name> <file>",
	Short: "Add or update a resume variant from a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		content, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		err = st.UpsertResumeVariant(ctx, model.ResumeVariant{
			Name:       args[0],
			FocusAreas: resumeFocus,
			Content:    string(content),
		})
		if err != nil {
			return err
		}
		fmt.Printf("resume variant %q saved\n", args[0])
		return nil
	},
}

var resumeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List resume variants",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		variants, err := st.ListResumeVariants(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tFOCUS\tUSED")
		for _, v := range variants {
			fmt.Fprintf(w, "%s\t%s\t%d\n", v.Name, strings.Join(v.FocusAreas, ", "), v.UsageCount)
		}
		return w.Flush()
	},
}

func init() {
	resumeAddCmd.Flags().StringSliceVar(&resumeFocus, "focus", nil, "focus areas, e.g. --focus go,distributed-systems")
	resumeCmd.AddCommand(resumeAddCmd)
	resumeCmd.AddCommand(resumeListCmd)
	rootCmd.AddCommand(resumeCmd)
}
