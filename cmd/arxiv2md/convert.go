package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"

	"github.com/RBozydar/arxiv2md/internal/arxiv"
	"github.com/RBozydar/arxiv2md/internal/config"
	"github.com/RBozydar/arxiv2md/internal/ingest"
	"github.com/RBozydar/arxiv2md/internal/sections"
)

var convertFlags struct {
	removeRefs      bool
	removeTOC       bool
	removeCitations bool
	mode            string
	sections        []string
	forceLatex      bool
	noFallback      bool
	summaryOnly     bool
	treeOnly        bool
	html            bool
	output          string
}

var convertCmd = &cobra.Command{
	Use:   "convert <arxiv-id-or-url>",
	Short: "Convert a single paper to Markdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.BoolVar(&convertFlags.removeRefs, "remove-refs", false, "drop references/bibliography sections")
	f.BoolVar(&convertFlags.removeTOC, "remove-toc", false, "omit the table of contents")
	f.BoolVar(&convertFlags.removeCitations, "remove-citations", false, "strip inline citation links entirely")
	f.StringVar(&convertFlags.mode, "mode", "exclude", "section filter mode: include or exclude")
	f.StringArrayVar(&convertFlags.sections, "section", nil, "section title to include/exclude (repeatable)")
	f.BoolVar(&convertFlags.forceLatex, "force-latex", false, "skip HTML and convert the LaTeX source")
	f.BoolVar(&convertFlags.noFallback, "no-fallback", false, "fail instead of falling back to LaTeX/PDF")
	f.BoolVar(&convertFlags.summaryOnly, "summary-only", false, "print only the paper summary")
	f.BoolVar(&convertFlags.treeOnly, "tree-only", false, "print only the section tree")
	f.BoolVar(&convertFlags.html, "html", false, "render the Markdown output to HTML")
	f.StringVarP(&convertFlags.output, "output", "o", "", "write output to a file instead of stdout")
}

func runConvert(cmd *cobra.Command, args []string) error {
	query, err := arxiv.ParseInput(args[0])
	if err != nil {
		return err
	}

	mode := sections.FilterMode(convertFlags.mode)
	if mode != sections.ModeInclude && mode != sections.ModeExclude {
		return fmt.Errorf("invalid --mode %q: must be include or exclude", convertFlags.mode)
	}

	cfg := config.Load()
	pipeline := buildPipeline(cfg)

	result, _, err := pipeline.Ingest(cmd.Context(), query, ingest.Options{
		RemoveRefs:            convertFlags.removeRefs,
		RemoveTOC:             convertFlags.removeTOC,
		RemoveInlineCitations: convertFlags.removeCitations,
		SectionFilterMode:     mode,
		Sections:              convertFlags.sections,
		ForceLatex:            convertFlags.forceLatex,
		DisableFallback:       convertFlags.noFallback,
	})
	if err != nil {
		return err
	}

	out, err := renderOutput(result)
	if err != nil {
		return err
	}

	if convertFlags.output != "" {
		return os.WriteFile(convertFlags.output, []byte(out), 0o644)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func renderOutput(result *ingest.Result) (string, error) {
	switch {
	case convertFlags.summaryOnly:
		return result.Summary, nil
	case convertFlags.treeOnly:
		return result.SectionsTree, nil
	case convertFlags.html:
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(result.Content), &buf); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
		return buf.String(), nil
	default:
		return result.Content, nil
	}
}
