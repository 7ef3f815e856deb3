package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/RBozydar/arxiv2md/internal/arxiv"
	"github.com/RBozydar/arxiv2md/internal/config"
	"github.com/RBozydar/arxiv2md/internal/ingest"
	"github.com/RBozydar/arxiv2md/internal/sections"
)

// batchJob is one entry in a batch YAML file.
type batchJob struct {
	Input           string   `yaml:"input"`
	Output          string   `yaml:"output"`
	RemoveRefs      bool     `yaml:"remove_refs"`
	RemoveTOC       bool     `yaml:"remove_toc"`
	RemoveCitations bool     `yaml:"remove_citations"`
	Mode            string   `yaml:"mode"`
	Sections        []string `yaml:"sections"`
	ForceLatex      bool     `yaml:"force_latex"`
	NoFallback      bool     `yaml:"no_fallback"`
}

type batchFile struct {
	Jobs []batchJob `yaml:"jobs"`
}

var batchCmd = &cobra.Command{
	Use:   "batch <jobs.yaml>",
	Short: "Convert multiple papers described in a YAML file",
	Long: `Convert multiple papers in one run. The YAML file lists jobs:

jobs:
  - input: "2501.11120"
    output: out/paper.md
    remove_refs: true
  - input: "https://arxiv.org/abs/cs/9901001"
    output: out/old-paper.md
    mode: include
    sections: ["Introduction", "Conclusion"]`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read jobs file: %w", err)
	}

	var batch batchFile
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return fmt.Errorf("parse jobs file: %w", err)
	}
	if len(batch.Jobs) == 0 {
		return fmt.Errorf("no jobs in %s", args[0])
	}

	cfg := config.Load()
	pipeline := buildPipeline(cfg)

	failed := 0
	for i, job := range batch.Jobs {
		if err := runBatchJob(cmd, pipeline, job); err != nil {
			slog.Error("job failed", "index", i, "input", job.Input, "error", err)
			failed++
			continue
		}
		slog.Info("job done", "index", i, "input", job.Input, "output", job.Output)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(batch.Jobs))
	}
	return nil
}

func runBatchJob(cmd *cobra.Command, pipeline *ingest.Pipeline, job batchJob) error {
	if job.Input == "" {
		return fmt.Errorf("job has no input")
	}
	query, err := arxiv.ParseInput(job.Input)
	if err != nil {
		return err
	}

	mode := sections.FilterMode(job.Mode)
	if mode != sections.ModeInclude {
		mode = sections.ModeExclude
	}

	result, _, err := pipeline.Ingest(cmd.Context(), query, ingest.Options{
		RemoveRefs:            job.RemoveRefs,
		RemoveTOC:             job.RemoveTOC,
		RemoveInlineCitations: job.RemoveCitations,
		SectionFilterMode:     mode,
		Sections:              job.Sections,
		ForceLatex:            job.ForceLatex,
		DisableFallback:       job.NoFallback,
	})
	if err != nil {
		return err
	}

	if job.Output == "" {
		fmt.Fprintln(cmd.OutOrStdout(), result.Content)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(job.Output), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return os.WriteFile(job.Output, []byte(result.Content), 0o644)
}
