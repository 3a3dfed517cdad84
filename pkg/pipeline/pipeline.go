// Package pipeline evaluates planning problems end to end: build the
// planning graph, compute the requested heuristics, and cache the result.
//
// The CLI and the HTTP API both go through a [Runner], so caching, logging
// and metrics behave the same for every entry point.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Evaluate(ctx, problem, pipeline.Options{
//	    Heuristics: []string{"setlevel"},
//	})
//	fmt.Println(res.Values["setlevel"])
//
// Rendering goes through the same runner and caches artifacts per format:
//
//	svg, err := runner.Render(ctx, problem, opts, pipeline.RenderOptions{Format: pipeline.FormatSVG})
package pipeline

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plangraph/pkg/cache"
	"github.com/matzehuels/plangraph/pkg/errors"
	"github.com/matzehuels/plangraph/pkg/plangraph"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultTTL is how long evaluation results and artifacts stay cached.
	DefaultTTL = 7 * 24 * time.Hour

	// MaxWorkers bounds Options.Workers.
	MaxWorkers = 64
)

// Format constants for rendered output.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported render formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidateFormat checks a single render format. Formats are case-sensitive.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want dot, svg, png, pdf or json)", format)
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// Options configures one evaluation. It is the JSON body of API requests.
type Options struct {
	// State is the truth assignment to evaluate from, ordered like the
	// problem's fluents. Nil means the problem's initial state.
	State []bool `json:"state,omitempty"`

	// Heuristics to compute. Empty means all of them.
	Heuristics []string `json:"heuristics,omitempty"`

	// Parallel allows several domain actions per level (default false =
	// serialized, the setting for sequential planning).
	Parallel bool `json:"parallel,omitempty"`

	IgnoreMutexes bool `json:"ignore_mutexes,omitempty"`
	MaxLevels     int  `json:"max_levels,omitempty"`
	Workers       int  `json:"workers,omitempty"`

	// Refresh bypasses cached results (the new result is still stored).
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults normalizes heuristic names and fills defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.MaxLevels < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_levels must not be negative")
	}
	if o.Workers < 0 || o.Workers > MaxWorkers {
		return errors.New(errors.ErrCodeInvalidInput, "workers must be between 0 and %d", MaxWorkers)
	}
	if len(o.Heuristics) == 0 {
		for _, h := range plangraph.Heuristics() {
			o.Heuristics = append(o.Heuristics, string(h))
		}
		return nil
	}
	names := make([]string, 0, len(o.Heuristics))
	for _, s := range o.Heuristics {
		h, err := plangraph.ParseHeuristic(s)
		if err != nil {
			return err
		}
		if !slices.Contains(names, string(h)) {
			names = append(names, string(h))
		}
	}
	o.Heuristics = names
	return nil
}

// GraphOptions converts to planning graph options.
func (o Options) GraphOptions() plangraph.Options {
	return plangraph.Options{
		Serialize:     !o.Parallel,
		IgnoreMutexes: o.IgnoreMutexes,
		MaxLevels:     o.MaxLevels,
		Workers:       o.Workers,
		Logger:        o.Logger,
	}
}

// HeuristicKeyOpts returns the options that affect cached heuristic values.
func (o Options) HeuristicKeyOpts() cache.HeuristicKeyOpts {
	return cache.HeuristicKeyOpts{
		Serialize:     !o.Parallel,
		IgnoreMutexes: o.IgnoreMutexes,
		MaxLevels:     o.MaxLevels,
		Heuristics:    o.Heuristics,
	}
}

// =============================================================================
// Result
// =============================================================================

// Result is the outcome of one evaluation.
type Result struct {
	// ID identifies this evaluation; a cached result gets a fresh ID.
	ID      string `json:"id"`
	Problem string `json:"problem"`

	// Values maps heuristic name to value. plangraph.Unsolvable marks an
	// unreachable goal.
	Values map[string]int `json:"values"`

	// LevelCost is the level of each goal literal in reach order; it is
	// shorter than the goal when some literal is unreachable.
	LevelCost []int `json:"level_cost"`
	Levels    int   `json:"levels"`
	Leveled   bool  `json:"leveled"`
	Stats     Stats `json:"stats"`
	Cached    bool  `json:"cached"`
}

// Solvable reports whether every computed heuristic reached the goal.
func (r *Result) Solvable() bool {
	for _, v := range r.Values {
		if v == plangraph.Unsolvable {
			return false
		}
	}
	return true
}

// Stats describes the graph the result was computed on.
type Stats struct {
	Fluents        int           `json:"fluents"`
	Actions        int           `json:"actions"`
	LiteralMutexes int           `json:"literal_mutexes"`
	ActionMutexes  int           `json:"action_mutexes"`
	Duration       time.Duration `json:"duration_ns"`
}
