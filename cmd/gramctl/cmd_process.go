package main

import (
	"fmt"

	"github.com/spf13/cobra"

	gramgyan "github.com/gramgyan/gramgyan/pkg/sdk"
)

func newProcessCmd(g *globalFlags) *cobra.Command {
	var rep gramgyan.Report

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run a report through the pipeline",
		Long: "Normalizes the report text to English, embeds it and, for questions,\n" +
			"reuses a validated answer or generates a new one.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			res, err := c.ProcessReport(cmd.Context(), rep)
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report %s processed\nEnglish: %s\n", rep.ID, res.EnglishText)
			if res.SolutionID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Solution: %s\n", res.SolutionID)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&rep.ID, "id", "", "Report ID (required)")
	f.StringVar(&rep.Type, "type", gramgyan.TypeQuestion, "Report type: Question or Knowledge")
	f.StringVar(&rep.OriginalText, "text", "", "Original text in the farmer's language")
	f.StringVar(&rep.TranslatedText, "translated", "", "Client-side English translation, if any")
	f.StringVar(&rep.AudioURL, "audio-url", "", "Source recording URL, if the text was transcribed")
	_ = cmd.MarkFlagRequired("id")
	cmd.MarkFlagsOneRequired("text", "translated")

	return cmd
}
