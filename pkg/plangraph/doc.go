// Package plangraph builds planning graphs and extracts level-based
// heuristics from them.
//
// # Overview
//
// A planning graph is a leveled, bipartite structure that alternates literal
// layers and action layers. Literal layer 0 holds the initial state. Action
// layer i holds every action whose preconditions all appear in literal layer
// i-1, and literal layer i holds every effect of those actions. Persistence
// ("no-op") actions carry each literal forward unchanged, so layers only
// grow from one level to the next.
//
// Each layer also records a mutual-exclusion ("mutex") relation between its
// own nodes. Two actions are mutex when they have inconsistent effects, when
// one interferes with the other's preconditions, or when their preconditions
// compete (are mutex in the previous literal layer). Two literals are mutex
// when they negate each other or when every pair of actions achieving them is
// mutex. Mutexes only dissolve as the graph grows.
//
// # Basic Usage
//
// Build a graph from a validated [planning.Problem] and a state, then ask
// for a heuristic value:
//
//	g, err := plangraph.New(problem, problem.Initial, plangraph.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	h := g.HLevelSum()
//
// Heuristics extend the graph lazily, one level at a time, and stop as soon
// as their answer is known. [Graph.Fill] extends eagerly up to a bound, which
// is useful for inspection and rendering.
//
// # Heuristics
//
//   - [Graph.LevelCost]: the level at which each goal literal first appears
//   - [Graph.HLevelSum]: the sum of the level costs
//   - [Graph.HMaxLevel]: the largest level cost
//   - [Graph.HSetLevel]: the first level where all goals appear pairwise non-mutex
//
// When some goal can never be reached the heuristics return [Unsolvable]
// instead of looping; [Graph.LevelCost] returns the partial sequence.
//
// # Leveling
//
// The graph is leveled once a new literal layer repeats the previous one,
// both in membership and in mutex pairs. From then on [Graph.Extend] is a
// no-op. Leveling always happens on a finite problem, so the heuristics
// terminate without a bound; [Options.MaxLevels] caps the work anyway.
//
// # Concurrency
//
// A Graph is not safe for concurrent use. With [Options.Workers] greater than
// one, the all-pairs mutex pass of each new layer fans out over a bounded
// worker group; layers are immutable once that pass completes.
package plangraph
