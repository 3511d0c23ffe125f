package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

func newHealthCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server component health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			hs, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			if g.json {
				if err := printJSON(cmd.OutOrStdout(), hs); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Status: %s\n", hs.Status)
				for _, name := range slices.Sorted(maps.Keys(hs.Checks)) {
					fmt.Fprintf(out, "  %-10s %s\n", name, hs.Checks[name])
				}
			}
			if hs.Status != "ok" {
				return fmt.Errorf("server is %s", hs.Status)
			}
			return nil
		},
	}
}
