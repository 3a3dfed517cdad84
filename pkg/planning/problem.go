package planning

import (
	"slices"

	"github.com/matzehuels/plangraph/pkg/errors"
)

// Action is a ground STRIPS action. Preconditions and effects are literal
// sets; a negative effect deletes the fluent.
type Action struct {
	Name          string
	Preconditions []Literal
	Effects       []Literal
}

// Problem is a ground planning problem.
//
// Fluents is the state map: Initial[i] is the truth value of Fluents[i] in
// the initial state.
type Problem struct {
	Name    string
	Fluents []string
	Initial []bool
	Actions []Action
	Goal    []Literal
}

// Validate checks the problem for contract violations: duplicate or invalid
// fluent names, an initial state that does not match the state map, and
// literals naming fluents outside the state map.
func (p *Problem) Validate() error {
	known := make(map[string]struct{}, len(p.Fluents))
	for _, f := range p.Fluents {
		if err := errors.ValidateFluentName(f); err != nil {
			return err
		}
		if _, dup := known[f]; dup {
			return errors.New(errors.ErrCodeInvalidProblem, "duplicate fluent %q", f)
		}
		known[f] = struct{}{}
	}
	if len(p.Initial) != len(p.Fluents) {
		return errors.New(errors.ErrCodeInvalidProblem,
			"initial state has %d values for %d fluents", len(p.Initial), len(p.Fluents))
	}
	for _, a := range p.Actions {
		if err := errors.ValidateActionName(a.Name); err != nil {
			return err
		}
		if err := checkKnown(known, a.Preconditions, "precondition of "+a.Name); err != nil {
			return err
		}
		if err := checkKnown(known, a.Effects, "effect of "+a.Name); err != nil {
			return err
		}
	}
	return checkKnown(known, p.Goal, "goal")
}

func checkKnown(known map[string]struct{}, lits []Literal, where string) error {
	for _, l := range lits {
		if _, ok := known[l.Fluent]; !ok {
			return errors.New(errors.ErrCodeUnknownFluent, "%s: unknown fluent %q", where, l.Fluent)
		}
	}
	return nil
}

// StateLiterals converts a truth assignment over the state map into literals,
// one per fluent, in state-map order.
func (p *Problem) StateLiterals(state []bool) ([]Literal, error) {
	if len(state) != len(p.Fluents) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"state has %d values for %d fluents", len(state), len(p.Fluents))
	}
	out := make([]Literal, len(state))
	for i, f := range p.Fluents {
		out[i] = Literal{Fluent: f, Negated: !state[i]}
	}
	return out, nil
}

// Satisfies reports whether every literal of goal holds in state.
func (p *Problem) Satisfies(state []bool, goal []Literal) bool {
	lits, err := p.StateLiterals(state)
	if err != nil {
		return false
	}
	for _, g := range goal {
		if !slices.Contains(lits, g) {
			return false
		}
	}
	return true
}

// Dedup returns lits without repeated literals, keeping first occurrences.
func Dedup(lits []Literal) []Literal {
	seen := make(map[Literal]struct{}, len(lits))
	out := make([]Literal, 0, len(lits))
	for _, l := range lits {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
