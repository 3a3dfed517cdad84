package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/plangraph/pkg/errors"
	"github.com/matzehuels/plangraph/pkg/plangraph"
	"github.com/matzehuels/plangraph/pkg/planning"
)

type graphDoc struct {
	Problem string     `json:"problem,omitempty"`
	Goal    []string   `json:"goal"`
	Leveled bool       `json:"leveled"`
	Levels  []levelDoc `json:"levels"`
}

type levelDoc struct {
	Level          int          `json:"level"`
	Actions        []nodeDoc    `json:"actions,omitempty"`
	ActionMutexes  [][2]string  `json:"action_mutexes,omitempty"`
	Literals       []literalDoc `json:"literals"`
	LiteralMutexes [][2]string  `json:"literal_mutexes,omitempty"`
}

type nodeDoc struct {
	Name          string   `json:"name"`
	NoOp          bool     `json:"noop,omitempty"`
	Preconditions []string `json:"preconditions,omitempty"`
	Effects       []string `json:"effects"`
}

type literalDoc struct {
	Literal   string   `json:"literal"`
	Achievers []string `json:"achievers,omitempty"`
}

// WriteGraphJSON encodes the layers built so far. Level 0 carries only
// literals; every later level also lists the action layer that produced it.
// name labels the document and may be empty.
func WriteGraphJSON(g *plangraph.Graph, name string, w io.Writer) error {
	out := graphDoc{
		Problem: name,
		Goal:    literalStrings(g.Goal()),
		Leveled: g.IsLeveled(),
	}
	for i, lits := range g.LiteralLayers() {
		lvl := levelDoc{Level: i}
		if actions := g.ActionLayer(i); actions != nil {
			for _, a := range actions.Nodes() {
				lvl.Actions = append(lvl.Actions, nodeDoc{
					Name:          a.Name,
					NoOp:          a.NoOp,
					Preconditions: literalStrings(a.Preconditions),
					Effects:       literalStrings(a.Effects),
				})
			}
			for _, p := range actions.MutexPairs() {
				lvl.ActionMutexes = append(lvl.ActionMutexes, [2]string{p[0].Name, p[1].Name})
			}
		}
		for _, l := range lits.Nodes() {
			doc := literalDoc{Literal: l.String()}
			for _, a := range lits.Parents(l) {
				doc.Achievers = append(doc.Achievers, a.Name)
			}
			lvl.Literals = append(lvl.Literals, doc)
		}
		for _, p := range lits.MutexPairs() {
			lvl.LiteralMutexes = append(lvl.LiteralMutexes, [2]string{p[0].String(), p[1].String()})
		}
		out.Levels = append(out.Levels, lvl)
	}
	return encode(w, out)
}

// WriteProblem encodes p as JSON in the form [ReadProblem] accepts.
// Output is deterministic for a given problem, so it can be hashed.
func WriteProblem(p *planning.Problem, w io.Writer) error {
	doc := problemDoc{
		Name:    p.Name,
		Fluents: p.Fluents,
		Initial: []string{},
		Goal:    literalStrings(p.Goal),
	}
	for i, f := range p.Fluents {
		if i < len(p.Initial) && p.Initial[i] {
			doc.Initial = append(doc.Initial, f)
		}
	}
	for _, a := range p.Actions {
		doc.Actions = append(doc.Actions, actionDoc{
			Name:          a.Name,
			Preconditions: literalStrings(a.Preconditions),
			Effects:       literalStrings(a.Effects),
		})
	}
	return encode(w, doc)
}

// ExportGraphJSON writes the graph document to the file at path.
func ExportGraphJSON(g *plangraph.Graph, name, path string) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := WriteGraphJSON(g, name, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode")
	}
	return nil
}

func literalStrings(ls []planning.Literal) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.String()
	}
	return out
}
