package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/plangraph/pkg/cache"
	"github.com/matzehuels/plangraph/pkg/errors"
	pgio "github.com/matzehuels/plangraph/pkg/io"
	"github.com/matzehuels/plangraph/pkg/observability"
	"github.com/matzehuels/plangraph/pkg/plangraph"
	"github.com/matzehuels/plangraph/pkg/planning"
)

// Cache key types reported to observability hooks.
const (
	keyTypeHeuristic = "heuristic"
	keyTypeArtifact  = "artifact"
)

// Runner evaluates problems with caching.
//
// A Runner holds no per-evaluation state; one instance may serve concurrent
// evaluations.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer uses
// [cache.DefaultKeyer] and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    DefaultTTL,
	}
}

// Evaluate computes the requested heuristics for p.
func (r *Runner) Evaluate(ctx context.Context, p *planning.Problem, opts Options) (*Result, error) {
	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "problem must not be nil")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	state := r.state(p, opts)

	hash, err := ProblemHash(p)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.HeuristicKey(hash, state, opts.HeuristicKeyOpts())

	if !opts.Refresh {
		if res, ok := r.cached(ctx, key); ok {
			res.ID = uuid.NewString()
			res.Cached = true
			r.Logger.Debug("evaluation cache hit", "problem", p.Name, "id", res.ID)
			return res, nil
		}
	}

	res, err := r.evaluate(ctx, p, state, opts)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeHeuristic, len(data))
		}
	}
	return res, nil
}

func (r *Runner) evaluate(ctx context.Context, p *planning.Problem, state []bool, opts Options) (*Result, error) {
	hooks := observability.Graph()
	start := time.Now()
	hooks.OnBuildStart(ctx, p.Name, len(p.Fluents), len(p.Actions))

	g, err := plangraph.New(p, state, opts.GraphOptions())
	if err != nil {
		hooks.OnBuildComplete(ctx, p.Name, 0, false, time.Since(start), err)
		return nil, err
	}

	res := &Result{
		ID:      uuid.NewString(),
		Problem: p.Name,
		Values:  make(map[string]int, len(opts.Heuristics)),
	}
	for _, name := range opts.Heuristics {
		if err := ctx.Err(); err != nil {
			hooks.OnBuildComplete(ctx, p.Name, g.Levels(), g.IsLeveled(), time.Since(start), err)
			return nil, err
		}
		hStart := time.Now()
		v, err := g.Evaluate(plangraph.Heuristic(name))
		if err != nil {
			return nil, err
		}
		hooks.OnHeuristic(ctx, name, v, time.Since(hStart))
		res.Values[name] = v
	}
	res.LevelCost = g.LevelCost()
	res.Levels = g.Levels()
	res.Leveled = g.IsLeveled()
	res.Stats = graphStats(p, g)
	res.Stats.Duration = time.Since(start)

	hooks.OnBuildComplete(ctx, p.Name, res.Levels, res.Leveled, res.Stats.Duration, nil)
	r.Logger.Info("evaluated problem",
		"problem", p.Name,
		"id", res.ID,
		"values", res.Values,
		"levels", res.Levels,
		"leveled", res.Leveled,
		"duration", res.Stats.Duration)
	return res, nil
}

// Build constructs the planning graph for p and expands it until it levels
// off or reaches opts.MaxLevels.
func (r *Runner) Build(ctx context.Context, p *planning.Problem, opts Options) (*plangraph.Graph, error) {
	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "problem must not be nil")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	start := time.Now()
	observability.Graph().OnBuildStart(ctx, p.Name, len(p.Fluents), len(p.Actions))
	g, err := plangraph.New(p, r.state(p, opts), opts.GraphOptions())
	if err != nil {
		observability.Graph().OnBuildComplete(ctx, p.Name, 0, false, time.Since(start), err)
		return nil, err
	}
	limit := -1
	if opts.MaxLevels > 0 {
		limit = opts.MaxLevels
	}
	for !g.IsLeveled() && limit != 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g.Extend()
		limit--
	}
	observability.Graph().OnBuildComplete(ctx, p.Name, g.Levels(), g.IsLeveled(), time.Since(start), nil)
	return g, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cached(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeHeuristic)
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		observability.Cache().OnCacheMiss(ctx, keyTypeHeuristic)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeHeuristic)
	return &res, true
}

func (r *Runner) state(p *planning.Problem, opts Options) []bool {
	if opts.State != nil {
		return opts.State
	}
	return p.Initial
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// ProblemHash returns the hash of p's canonical JSON encoding.
func ProblemHash(p *planning.Problem) (string, error) {
	var buf bytes.Buffer
	if err := pgio.WriteProblem(p, &buf); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}

func graphStats(p *planning.Problem, g *plangraph.Graph) Stats {
	s := Stats{Fluents: len(p.Fluents), Actions: len(p.Actions)}
	if l := g.LiteralLayer(g.Levels()); l != nil {
		s.LiteralMutexes = l.MutexCount()
	}
	if a := g.ActionLayer(g.Levels()); a != nil {
		s.ActionMutexes = a.MutexCount()
	}
	return s
}
