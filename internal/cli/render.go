package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/numflow/numflow/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple formats)
	formats  []string // output formats: "dot", "svg", "png", "json"
	detailed bool     // include values and results in node labels
	fold     bool     // render the constant-folded graph
	dce      bool     // render with dead nodes removed
	noCache  bool     // disable caching
}

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a dataflow graph to DOT, SVG, or PNG",
		Long: `Render a dataflow graph to DOT, SVG, or PNG.

Sources are drawn in blue, sinks in yellow, and failed nodes outlined in
red. With --detailed, node labels include stored values, precisions, and
evaluated results.

Rendered artifacts are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include values and results in node labels")
	cmd.Flags().BoolVar(&opts.fold, "fold", false, "render the constant-folded graph")
	cmd.Flags().BoolVar(&opts.dce, "eliminate-dead", false, "render with dead nodes removed")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runRender loads the graph and renders the requested formats.
func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	g, err := loadGraph(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}

	spinner := newSpinnerWithContext(ctx, "Rendering graph...")
	spinner.Start()

	result, err := runner.Execute(ctx, g, pipeline.Options{
		FoldConstants: opts.fold,
		EliminateDead: opts.dce,
		Formats:       opts.formats,
		Detailed:      opts.detailed,
		Logger:        c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	printSuccess("Rendered %s", input)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.FailedCount, result.CacheInfo.RenderHit)

	return writeArtifacts(result.Artifacts, opts.formats, input, opts.output)
}

// writeArtifacts writes rendered outputs to disk.
// With a single format, output names the file directly. With multiple
// formats, output (or the input path) is used as a base path and the format
// is appended as the extension.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) error {
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}

	for _, format := range formats {
		path := base
		if len(formats) > 1 || output == "" {
			path = base + "." + format
		}
		if err := os.WriteFile(path, artifacts[format], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
