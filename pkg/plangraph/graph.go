package plangraph

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plangraph/pkg/errors"
	"github.com/matzehuels/plangraph/pkg/planning"
)

// Options configures graph construction.
type Options struct {
	// Serialize makes every pair of non-persistence actions in a layer mutex,
	// so that at most one domain action is taken per level. Use it when the
	// graph estimates a heuristic for sequential planning.
	Serialize bool

	// IgnoreMutexes skips mutex computation entirely. The graph then only
	// bounds reachability and set-level degenerates to max-level.
	IgnoreMutexes bool

	// MaxLevels caps how many levels the heuristics may expand.
	// Zero means no cap.
	MaxLevels int

	// Workers is the number of goroutines used for the mutex pass of a
	// layer. Values below 2 run the pass sequentially.
	Workers int

	// Logger receives a debug record per extension. Nil uses log.Default().
	Logger *log.Logger
}

// DefaultOptions returns the options used for heuristic estimation:
// serialized actions, mutexes on, no level cap, sequential mutex pass.
func DefaultOptions() Options {
	return Options{Serialize: true}
}

// Graph is a planning graph rooted at one state of a problem.
//
// The zero value is not usable; create graphs with [New].
type Graph struct {
	opts          Options
	logger        *log.Logger
	goal          []planning.Literal
	catalogue     []*ActionNode
	literalLayers []*LiteralLayer
	actionLayers  []*ActionLayer
	leveled       bool
}

// New builds the root literal layer of a planning graph for problem p in the
// given state. state is ordered like p.Fluents.
//
// The action catalogue holds a persistence action for both polarities of
// every fluent, followed by the domain actions in problem order.
//
// New returns a coded error if p fails [planning.Problem.Validate] or if
// state does not match the state map.
func New(p *planning.Problem, state []bool, opts Options) (*Graph, error) {
	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "problem must not be nil")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	literals, err := p.StateLiterals(state)
	if err != nil {
		return nil, err
	}

	catalogue := make([]*ActionNode, 0, 2*len(p.Fluents)+len(p.Actions))
	for _, f := range p.Fluents {
		catalogue = append(catalogue, noOps(f)...)
	}
	for _, a := range p.Actions {
		catalogue = append(catalogue, newActionNode(a))
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	root := newLiteralLayer(nil)
	for _, l := range literals {
		root.add(l)
	}
	if !opts.IgnoreMutexes {
		root.updateMutexes(opts.Workers)
	}

	return &Graph{
		opts:          opts,
		logger:        logger,
		goal:          planning.Dedup(p.Goal),
		catalogue:     catalogue,
		literalLayers: []*LiteralLayer{root},
	}, nil
}

// Options returns the options the graph was built with.
func (g *Graph) Options() Options { return g.opts }

// Goal returns the goal literals without duplicates, in problem order.
func (g *Graph) Goal() []planning.Literal { return slices.Clone(g.goal) }

// Catalogue returns every action node the graph may admit.
func (g *Graph) Catalogue() []*ActionNode { return slices.Clone(g.catalogue) }

// Levels returns the index of the last literal layer built so far.
func (g *Graph) Levels() int { return len(g.literalLayers) - 1 }

// IsLeveled reports whether the graph has stopped growing.
func (g *Graph) IsLeveled() bool { return g.leveled }

// LiteralLayer returns literal layer i, or nil if it has not been built.
func (g *Graph) LiteralLayer(i int) *LiteralLayer {
	if i < 0 || i >= len(g.literalLayers) {
		return nil
	}
	return g.literalLayers[i]
}

// ActionLayer returns the action layer between literal layers i-1 and i,
// or nil if it has not been built. Valid indices start at 1.
func (g *Graph) ActionLayer(i int) *ActionLayer {
	if i < 1 || i > len(g.actionLayers) {
		return nil
	}
	return g.actionLayers[i-1]
}

// LiteralLayers returns the literal layers built so far.
func (g *Graph) LiteralLayers() []*LiteralLayer { return slices.Clone(g.literalLayers) }

// ActionLayers returns the action layers built so far; element i sits
// between literal layers i and i+1.
func (g *Graph) ActionLayers() []*ActionLayer { return slices.Clone(g.actionLayers) }

// Fill extends the graph until it is leveled or maxLevels levels have been
// added. A negative maxLevels never interrupts the loop.
func (g *Graph) Fill(maxLevels int) *Graph {
	for !g.leveled && maxLevels != 0 {
		g.Extend()
		maxLevels--
	}
	return g
}

// Extend appends one action layer and one literal layer.
//
// The new action layer carries every action of the previous one and admits
// each catalogue action whose preconditions all hold in the trailing literal
// layer. The new literal layer holds the effects of every action in the new
// action layer. Mutexes of both layers are computed before Extend returns.
// Extend is a no-op once the graph is leveled.
func (g *Graph) Extend() {
	if g.leveled {
		return
	}
	start := time.Now()

	parent := g.literalLayers[len(g.literalLayers)-1]
	actions := newActionLayer(parent, g.opts.Serialize)
	literals := newLiteralLayer(actions)

	if n := len(g.actionLayers); n > 0 {
		for _, a := range g.actionLayers[n-1].nodes {
			actions.add(a)
		}
	}
	for _, a := range g.catalogue {
		if !actions.Contains(a) && parent.ContainsAll(a.Preconditions) {
			actions.add(a)
		}
	}

	for _, a := range actions.nodes {
		for _, p := range a.Preconditions {
			parent.addChildren(p, a)
		}
		actions.addParents(a, a.Preconditions...)
		actions.addChildren(a, a.Effects...)
		for _, e := range a.Effects {
			literals.add(e)
			literals.addParents(e, a)
		}
	}

	if !g.opts.IgnoreMutexes {
		actions.updateMutexes(g.opts.Workers)
		literals.updateMutexes(g.opts.Workers)
	}

	g.actionLayers = append(g.actionLayers, actions)
	g.literalLayers = append(g.literalLayers, literals)
	g.leveled = literals.sameNodes(parent.Layer) && literals.sameMutexes(parent.Layer)

	g.logger.Debug("extended planning graph",
		"level", g.Levels(),
		"actions", actions.Len(),
		"literals", literals.Len(),
		"action_mutexes", actions.MutexCount(),
		"literal_mutexes", literals.MutexCount(),
		"leveled", g.leveled,
		"duration", time.Since(start))
}

// layerAt returns literal layer level, extending the graph as needed.
// It reports false when the graph leveled off or hit MaxLevels first.
func (g *Graph) layerAt(level int) (*LiteralLayer, bool) {
	for len(g.literalLayers) <= level {
		if g.leveled || g.capped() {
			return nil, false
		}
		g.Extend()
	}
	return g.literalLayers[level], true
}

func (g *Graph) capped() bool {
	return g.opts.MaxLevels > 0 && len(g.actionLayers) >= g.opts.MaxLevels
}
