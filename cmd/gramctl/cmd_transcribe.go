package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTranscribeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <audio-url>",
		Short: "Transcribe a recorded voice note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			t, err := c.TranscribeAudio(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), t)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Language:   %s\n", t.Language)
			fmt.Fprintf(out, "Transcript: %s\n", t.Transcript)
			return nil
		},
	}
}
