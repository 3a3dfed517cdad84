package cli

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plangraph/pkg/errors"
	pgio "github.com/matzehuels/plangraph/pkg/io"
	"github.com/matzehuels/plangraph/pkg/pipeline"
)

// graphOpts holds the flags of the graph command.
type graphOpts struct {
	graph   graphFlags
	render  pipeline.RenderOptions
	output  string
	noCache bool
	refresh bool
}

func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{render: pipeline.RenderOptions{Format: pipeline.FormatSVG, Scale: 2}}

	cmd := &cobra.Command{
		Use:   "graph [problem]",
		Short: "Render the planning graph of a problem",
		Long: `Render the planning graph as a layered diagram (dot, svg, png, pdf)
or as a JSON document listing every level's literals, actions and mutexes.

PNG and PDF output require librsvg (rsvg-convert) on the PATH.`,
		Example: `  plangraph graph examples/problems/have_cake.toml --mutexes
  plangraph graph problem.yaml -f json -o graph.json
  plangraph graph problem.yaml -f dot --hide-noops | dot -Tsvg > graph.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.render.Format); err != nil {
				return err
			}
			return c.runGraph(cmd, args[0], &opts)
		},
	}

	opts.graph.register(cmd)
	cmd.Flags().StringVarP(&opts.render.Format, "format", "f", opts.render.Format, "output format: dot, svg, png, pdf, json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <problem>.<format>, - for stdout)")
	cmd.Flags().BoolVar(&opts.render.ShowMutexes, "mutexes", false, "draw mutex pairs")
	cmd.Flags().BoolVar(&opts.render.HideNoOps, "hide-noops", false, "leave persistence actions out")
	cmd.Flags().IntVar(&opts.render.MaxLevel, "max-level", 0, "draw literal layers up to this level only")
	cmd.Flags().Float64Var(&opts.render.Scale, "scale", opts.render.Scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable artifact caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when a cached artifact exists")
	cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return slices.Sorted(maps.Keys(pipeline.ValidFormats)), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, path string, opts *graphOpts) error {
	ctx := cmd.Context()
	prog := newProgress(loggerFromContext(ctx))

	p, err := pgio.ImportProblem(path)
	if err != nil {
		return err
	}
	popts, err := c.options(cmd, &opts.graph, p)
	if err != nil {
		return err
	}
	popts.Refresh = opts.refresh

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	data, cached, err := runner.Render(ctx, p, popts, opts.render)
	if err != nil {
		return err
	}

	out := opts.output
	if out == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if out == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		out = base + "." + opts.render.Format
	}
	if err := errors.ValidatePath(out); err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", out)
	}

	status := "rendered"
	if cached {
		status = "cached"
	}
	prog.done(fmt.Sprintf("Wrote %s graph (%s)", opts.render.Format, status))
	printFile(out)
	if opts.render.Format == pipeline.FormatDOT {
		printNextStep("Render with Graphviz", "dot -Tsvg "+out)
	}
	return nil
}
