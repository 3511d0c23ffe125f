package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(g *globalFlags) *cobra.Command {
	var answer string

	cmd := &cobra.Command{
		Use:   "validate <report-id>",
		Short: "Record a reviewer-approved answer for a report",
		Long: "Marks the report validated so later questions with a similar\n" +
			"meaning reuse this answer instead of generating one.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			if err := c.ValidateAnswer(cmd.Context(), args[0], answer); err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), map[string]any{"report_id": args[0], "validated": true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report %s validated\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&answer, "answer", "", "Validated answer text (required)")
	_ = cmd.MarkFlagRequired("answer")

	return cmd
}
