// Package planning defines the ground STRIPS vocabulary consumed by the
// planning graph: literals, actions and problems.
//
// # Literals
//
// A [Literal] is a fluent or its negation. Literals are small comparable
// values, so they can be used directly as map keys and compared with ==.
// [Literal.Not] is an involution:
//
//	l := planning.Pos("Have(Cake)")
//	l.Not()       // ~Have(Cake)
//	l.Not().Not() // Have(Cake)
//
// [Parse] reads the textual form produced by [Literal.String]; a leading "~"
// marks a negated literal.
//
// # Problems
//
// A [Problem] lists the fluents of the domain in a fixed order (the state
// map), an initial truth assignment in the same order, the ground actions and
// the goal. [Problem.Validate] checks that every literal refers to a known
// fluent, so that graph construction can fail fast on malformed input.
//
// PDDL parsing and action schema grounding are out of scope; problems arrive
// already ground, typically from [github.com/matzehuels/plangraph/pkg/io].
package planning
