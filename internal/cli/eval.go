package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plangraph/pkg/errors"
	pgio "github.com/matzehuels/plangraph/pkg/io"
	"github.com/matzehuels/plangraph/pkg/observability"
	"github.com/matzehuels/plangraph/pkg/observability/promhooks"
	"github.com/matzehuels/plangraph/pkg/pipeline"
	"github.com/matzehuels/plangraph/pkg/plangraph"
	"github.com/matzehuels/plangraph/pkg/planning"
)

// graphFlags are the planning graph flags shared by eval, graph and explore.
type graphFlags struct {
	parallel      bool
	ignoreMutexes bool
	maxLevels     int
	workers       int
	state         string
}

func (f *graphFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.parallel, "parallel", false, "allow several actions per level (default: serialized)")
	cmd.Flags().BoolVar(&f.ignoreMutexes, "ignore-mutexes", false, "skip mutex computation")
	cmd.Flags().IntVar(&f.maxLevels, "max-levels", 0, "stop expanding after this many levels (0 = until leveled)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "goroutines for the mutex pass (0 = sequential)")
	cmd.Flags().StringVar(&f.state, "state", "", "comma-separated true fluents to start from (default: the problem's initial state)")
}

// options merges config defaults with the flags the user actually set.
func (c *CLI) options(cmd *cobra.Command, f *graphFlags, p *planning.Problem) (pipeline.Options, error) {
	opts := c.Config.pipelineOptions()
	flags := cmd.Flags()
	if flags.Changed("parallel") {
		opts.Parallel = f.parallel
	}
	if flags.Changed("ignore-mutexes") {
		opts.IgnoreMutexes = f.ignoreMutexes
	}
	if flags.Changed("max-levels") {
		opts.MaxLevels = f.maxLevels
	}
	if flags.Changed("workers") {
		opts.Workers = f.workers
	}
	if f.state != "" {
		state, err := parseState(p, f.state)
		if err != nil {
			return opts, err
		}
		opts.State = state
	}
	opts.Logger = loggerFromContext(cmd.Context())
	return opts, nil
}

// parseState turns "A,B" into a truth assignment over p's fluents.
func parseState(p *planning.Problem, s string) ([]bool, error) {
	index := make(map[string]int, len(p.Fluents))
	for i, f := range p.Fluents {
		index[f] = i
	}
	state := make([]bool, len(p.Fluents))
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		i, ok := index[name]
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownFluent, "state fluent %q is not declared", name)
		}
		state[i] = true
	}
	return state, nil
}

// evalOpts holds the flags of the eval command.
type evalOpts struct {
	graph       graphFlags
	heuristics  []string
	noCache     bool
	refresh     bool
	jsonOut     bool
	metricsFile string
}

func (c *CLI) evalCommand() *cobra.Command {
	var opts evalOpts

	cmd := &cobra.Command{
		Use:   "eval [problem]",
		Short: "Compute planning graph heuristics for a problem",
		Long: `Build the planning graph of a STRIPS problem and report its heuristics.

levelsum  sum of the first levels at which each goal literal appears
maxlevel  largest of those levels
setlevel  first level where all goal literals appear pairwise non-mutex

An unreachable goal is reported as ∞.`,
		Example: `  plangraph eval examples/problems/have_cake.toml
  plangraph eval problem.yaml --heuristic setlevel --parallel
  plangraph eval problem.json --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEval(cmd, args[0], &opts)
		},
	}

	opts.graph.register(cmd)
	cmd.Flags().StringSliceVarP(&opts.heuristics, "heuristic", "H", nil, "heuristics to compute (default: all)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable result caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when a cached result exists")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
	cmd.RegisterFlagCompletionFunc("heuristic", completeHeuristics)

	return cmd
}

func (c *CLI) runEval(cmd *cobra.Command, path string, opts *evalOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	p, err := pgio.ImportProblem(path)
	if err != nil {
		return err
	}
	popts, err := c.options(cmd, &opts.graph, p)
	if err != nil {
		return err
	}
	if len(opts.heuristics) > 0 {
		popts.Heuristics = opts.heuristics
	}
	popts.Refresh = opts.refresh
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	var metrics *promhooks.Metrics
	if opts.metricsFile != "" {
		metrics = promhooks.New()
		observability.SetGraphHooks(metrics)
		observability.SetCacheHooks(metrics)
		defer observability.Reset()
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	logger.Debug("evaluating", "problem", p.Name, "fluents", len(p.Fluents), "actions", len(p.Actions))
	res, err := evaluate(ctx, runner, p, popts, !opts.jsonOut)
	if err != nil {
		return err
	}

	if metrics != nil {
		if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write metrics")
		}
		logger.Debug("wrote metrics", "path", opts.metricsFile)
	}

	if opts.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printResult(p, popts, res)
	return nil
}

// evaluate runs the evaluation behind a spinner when interactive is set.
func evaluate(ctx context.Context, r *pipeline.Runner, p *planning.Problem, opts pipeline.Options, interactive bool) (*pipeline.Result, error) {
	if !interactive {
		return r.Evaluate(ctx, p, opts)
	}
	spin := newSpinnerWithContext(ctx, os.Stderr, fmt.Sprintf("Building planning graph for %s...", p.Name))
	spin.Start()
	res, err := r.Evaluate(ctx, p, opts)
	spin.Stop()
	return res, err
}

func printResult(p *planning.Problem, opts pipeline.Options, res *pipeline.Result) {
	fmt.Println(StyleTitle.Render(p.Name))
	writeHeuristicTable(os.Stdout, opts.Heuristics, res)
	printStats(res)

	costs := make([]string, len(res.LevelCost))
	for i, v := range res.LevelCost {
		costs[i] = StyleNumber.Render(fmt.Sprint(v))
	}
	printDetail("level cost: [%s]", strings.Join(costs, " "))

	if !res.Solvable() {
		printWarning("goal is unreachable from this state")
		if res.Leveled {
			printDetail("the graph leveled off at level %d", res.Levels)
		} else {
			printDetail("expansion stopped at level %d; raise --max-levels to search further", res.Levels)
		}
	}
}

func completeHeuristics(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, h := range plangraph.Heuristics() {
		names = append(names, string(h))
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
