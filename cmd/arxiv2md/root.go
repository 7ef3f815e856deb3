package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/RBozydar/arxiv2md/internal/config"
	"github.com/RBozydar/arxiv2md/internal/fetch"
	"github.com/RBozydar/arxiv2md/internal/ingest"
)

var rootCmd = &cobra.Command{
	Use:           "arxiv2md",
	Short:         "Convert arXiv papers to Markdown",
	Long:          "arxiv2md fetches arXiv papers (HTML first, LaTeX or PDF as fallback) and converts them to clean Markdown.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// buildPipeline wires the fetch client and ingestion engine from config.
func buildPipeline(cfg config.Config) *ingest.Pipeline {
	client := fetch.NewClient(
		fetch.WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout}),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithRetries(cfg.FetchMaxRetries, cfg.FetchBackoff),
		fetch.WithRateLimit(cfg.RateLimit),
	)
	return ingest.New(client, cfg)
}
