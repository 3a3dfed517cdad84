package io

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/plangraph/pkg/errors"
	"github.com/matzehuels/plangraph/pkg/planning"
)

// Format is a problem file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported problem file %q (want .toml, .yaml or .json)", path)
}

// problemDoc is the on-disk shape shared by all three encodings.
type problemDoc struct {
	Name    string      `json:"name,omitempty" toml:"name" yaml:"name,omitempty"`
	Fluents []string    `json:"fluents,omitempty" toml:"fluents" yaml:"fluents,omitempty"`
	Initial []string    `json:"initial" toml:"initial" yaml:"initial"`
	Goal    []string    `json:"goal" toml:"goal" yaml:"goal"`
	Actions []actionDoc `json:"actions" toml:"actions" yaml:"actions"`
}

type actionDoc struct {
	Name          string   `json:"name" toml:"name" yaml:"name"`
	Preconditions []string `json:"preconditions,omitempty" toml:"preconditions" yaml:"preconditions,omitempty"`
	Effects       []string `json:"effects" toml:"effects" yaml:"effects"`
}

// ReadProblem decodes a problem from r.
//
// The document lists the fluents that hold initially under "initial"; every
// other fluent starts false. "fluents" fixes the state map order; when it is
// omitted the order is the order in which fluents are first mentioned by
// initial, actions and goal. Literals use the "~" prefix for negation.
//
// The decoded problem is validated before it is returned. ReadProblem does
// not close r.
func ReadProblem(r io.Reader, format Format) (*planning.Problem, error) {
	var doc problemDoc
	var err error
	switch format {
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&doc)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s problem", format)
	}
	return doc.problem()
}

// ParseProblem decodes a problem held in memory.
func ParseProblem(data []byte, format Format) (*planning.Problem, error) {
	return ReadProblem(bytes.NewReader(data), format)
}

// ImportProblem reads the problem file at path, choosing the decoder by
// extension. A problem without a name is named after the file.
func ImportProblem(path string) (*planning.Problem, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	p, err := ReadProblem(f, format)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

func (d *problemDoc) problem() (*planning.Problem, error) {
	p := &planning.Problem{Name: d.Name}

	initial, err := planning.ParseAll(d.Initial)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLiteral, err, "initial")
	}
	goal, err := planning.ParseAll(d.Goal)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLiteral, err, "goal")
	}
	p.Goal = goal

	for _, a := range d.Actions {
		pre, err := planning.ParseAll(a.Preconditions)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLiteral, err, "preconditions of %s", a.Name)
		}
		eff, err := planning.ParseAll(a.Effects)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLiteral, err, "effects of %s", a.Name)
		}
		p.Actions = append(p.Actions, planning.Action{Name: a.Name, Preconditions: pre, Effects: eff})
	}

	if len(d.Fluents) > 0 {
		p.Fluents = d.Fluents
	} else {
		p.Fluents = mentioned(initial, p.Actions, goal)
	}

	index := make(map[string]int, len(p.Fluents))
	for i, f := range p.Fluents {
		index[f] = i
	}
	p.Initial = make([]bool, len(p.Fluents))
	for _, l := range initial {
		i, ok := index[l.Fluent]
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownFluent, "initial: unknown fluent %q", l.Fluent)
		}
		if l.Negated {
			return nil, errors.New(errors.ErrCodeInvalidLiteral, "initial: list fluents that hold, got %q", l)
		}
		p.Initial[i] = true
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func mentioned(initial []planning.Literal, actions []planning.Action, goal []planning.Literal) []string {
	var out []string
	seen := make(map[string]struct{})
	visit := func(ls []planning.Literal) {
		for _, l := range ls {
			if _, ok := seen[l.Fluent]; !ok {
				seen[l.Fluent] = struct{}{}
				out = append(out, l.Fluent)
			}
		}
	}
	visit(initial)
	for _, a := range actions {
		visit(a.Preconditions)
		visit(a.Effects)
	}
	visit(goal)
	return out
}
