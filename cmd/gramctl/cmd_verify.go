package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newVerifyCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <text>...",
		Short: "Check whether a knowledge tip is accurate and fit to share",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			v, err := c.VerifyKnowledge(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), v)
			}
			verdict := "unsafe"
			if v.IsSafe {
				verdict = "safe"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Verdict: %s (%s)\n", verdict, v.Reason)
			return nil
		},
	}
}
