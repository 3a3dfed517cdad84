package plangraph

import (
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/plangraph/pkg/errors"
	"github.com/matzehuels/plangraph/pkg/planning"
)

// Unsolvable is returned by the heuristics when the goal cannot be reached:
// the graph leveled off (or hit [Options.MaxLevels]) before the heuristic's
// condition held. It is larger than any real level.
const Unsolvable = math.MaxInt32

// Heuristic names a level-based estimator.
type Heuristic string

const (
	LevelSum Heuristic = "levelsum"
	MaxLevel Heuristic = "maxlevel"
	SetLevel Heuristic = "setlevel"
)

// Heuristics returns every supported heuristic in a stable order.
func Heuristics() []Heuristic {
	return []Heuristic{LevelSum, MaxLevel, SetLevel}
}

// ParseHeuristic resolves a heuristic name, case-insensitively. The aliases
// "h_levelsum", "h_maxlevel" and "h_setlevel" are accepted.
func ParseHeuristic(s string) (Heuristic, error) {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "h_")
	h := Heuristic(name)
	if !slices.Contains(Heuristics(), h) {
		return "", errors.New(errors.ErrCodeInvalidHeuristic, "unknown heuristic %q", s)
	}
	return h, nil
}

// Evaluate computes heuristic h.
func (g *Graph) Evaluate(h Heuristic) (int, error) {
	switch h {
	case LevelSum:
		return g.HLevelSum(), nil
	case MaxLevel:
		return g.HMaxLevel(), nil
	case SetLevel:
		return g.HSetLevel(), nil
	}
	return 0, errors.New(errors.ErrCodeInvalidHeuristic, "unknown heuristic %q", h)
}

// LevelCost returns the level at which each goal literal first appears.
//
// Levels are listed in the order goals are reached; goals reached at the same
// level keep goal order. The graph is extended one level at a time until
// every goal has been seen. If it levels off first, the partial sequence is
// returned and has fewer entries than the goal.
func (g *Graph) LevelCost() []int {
	costs := make([]int, 0, len(g.goal))
	pending := slices.Clone(g.goal)
	for level := 0; len(pending) > 0; level++ {
		layer, ok := g.layerAt(level)
		if !ok {
			break
		}
		pending = slices.DeleteFunc(pending, func(goal planning.Literal) bool {
			if !layer.Contains(goal) {
				return false
			}
			costs = append(costs, level)
			return true
		})
	}
	return costs
}

// HLevelSum returns the sum of the level costs of all goal literals, or
// [Unsolvable] if some goal never appears.
func (g *Graph) HLevelSum() int {
	costs := g.LevelCost()
	if len(costs) < len(g.goal) {
		return Unsolvable
	}
	sum := 0
	for _, c := range costs {
		sum += c
	}
	return sum
}

// HMaxLevel returns the largest level cost of any goal literal, or
// [Unsolvable] if some goal never appears. An empty goal costs 0.
func (g *Graph) HMaxLevel() int {
	costs := g.LevelCost()
	if len(costs) < len(g.goal) {
		return Unsolvable
	}
	if len(costs) == 0 {
		return 0
	}
	return slices.Max(costs)
}

// HSetLevel returns the first level at which every goal literal is present
// and no two distinct goal literals are mutex, or [Unsolvable] if the graph
// levels off first.
func (g *Graph) HSetLevel() int {
	for level := 0; ; level++ {
		layer, ok := g.layerAt(level)
		if !ok {
			return Unsolvable
		}
		if layer.ContainsAll(g.goal) && !g.goalMutex(layer) {
			return level
		}
	}
}

// goalMutex reports whether some pair of distinct goal literals is mutex in
// layer.
func (g *Graph) goalMutex(layer *LiteralLayer) bool {
	for i, a := range g.goal {
		for _, b := range g.goal[i+1:] {
			if layer.IsMutex(a, b) {
				return true
			}
		}
	}
	return false
}
