package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newGetCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show stored reports and solutions",
	}
	cmd.AddCommand(newGetReportCmd(g), newGetSolutionCmd(g))
	return cmd
}

func newGetReportCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "report <report-id>",
		Short: "Show a processed report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			rep, err := c.GetReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), rep)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Report:  %s (%s, %s)\n", rep.ID, rep.Type, rep.Status)
			fmt.Fprintf(out, "Text:    %s\n", rep.OriginalText)
			if rep.EnglishText != "" {
				fmt.Fprintf(out, "English: %s\n", rep.EnglishText)
			}
			return nil
		},
	}
}

func newGetSolutionCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "solution <solution-id>",
		Short: "Show a solution attached to a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			sol, err := c.GetSolution(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), sol)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Solution: %s for report %s (%s, %s)\n",
				sol.ID, sol.ReportID, sol.Origin, sol.CreatedAt.Format(time.RFC3339))
			fmt.Fprintln(out, sol.Text)
			return nil
		},
	}
}
