package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gramgyan/gramgyan/internal/version"
	gramgyan "github.com/gramgyan/gramgyan/pkg/sdk"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	server  string
	apiKey  string
	timeout time.Duration
	json    bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "gramctl",
		Short: "Command-line client for the GramGyan report API",
		Long: "gramctl submits farmer reports, transcribes audio and records\n" +
			"validated answers against a running gramgyan server.",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&g.server, "server", envOr("GRAMGYAN_URL", "http://localhost:8080"), "Server base URL (env GRAMGYAN_URL)")
	f.StringVar(&g.apiKey, "api-key", os.Getenv("GRAMGYAN_API_KEY"), "Bearer API key (env GRAMGYAN_API_KEY)")
	f.DurationVar(&g.timeout, "timeout", 2*time.Minute, "Per-request timeout")
	f.BoolVar(&g.json, "json", false, "Print raw JSON results")

	root.AddCommand(newProcessCmd(g))
	root.AddCommand(newTranscribeCmd(g))
	root.AddCommand(newValidateCmd(g))
	root.AddCommand(newVerifyCmd(g))
	root.AddCommand(newGetCmd(g))
	root.AddCommand(newHealthCmd(g))
	return root
}

func (g *globalFlags) client() (*gramgyan.Client, error) {
	return gramgyan.New(
		gramgyan.WithBaseURL(g.server),
		gramgyan.WithAPIKey(g.apiKey),
		gramgyan.WithTimeout(g.timeout),
	)
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
