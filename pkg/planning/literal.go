package planning

import (
	"errors"
	"strings"
)

// ErrEmptyLiteral is returned by [Parse] when the input has no fluent name.
var ErrEmptyLiteral = errors.New("literal must name a fluent")

// negationPrefix marks a negated literal in textual form.
const negationPrefix = "~"

// Literal is a ground fluent or its negation.
//
// The zero value is not a valid literal; use [Pos], [Neg] or [Parse].
type Literal struct {
	Fluent  string
	Negated bool
}

// Pos returns the positive literal for fluent.
func Pos(fluent string) Literal { return Literal{Fluent: fluent} }

// Neg returns the negative literal for fluent.
func Neg(fluent string) Literal { return Literal{Fluent: fluent, Negated: true} }

// Not returns the logical negation of l. Not(Not(l)) == l.
func (l Literal) Not() Literal {
	return Literal{Fluent: l.Fluent, Negated: !l.Negated}
}

// Complements reports whether l and o are negations of each other.
func (l Literal) Complements(o Literal) bool { return l == o.Not() }

// String renders the literal as "Fluent" or "~Fluent".
func (l Literal) String() string {
	if l.Negated {
		return negationPrefix + l.Fluent
	}
	return l.Fluent
}

// MarshalText implements encoding.TextMarshaler.
func (l Literal) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler using [Parse].
func (l *Literal) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Parse reads a literal in the form produced by [Literal.String].
// Surrounding whitespace is ignored. Repeated "~" prefixes cancel out.
func Parse(s string) (Literal, error) {
	s = strings.TrimSpace(s)
	negated := false
	for strings.HasPrefix(s, negationPrefix) {
		negated = !negated
		s = strings.TrimSpace(strings.TrimPrefix(s, negationPrefix))
	}
	if s == "" {
		return Literal{}, ErrEmptyLiteral
	}
	return Literal{Fluent: s, Negated: negated}, nil
}

// ParseAll parses every string in ss, stopping at the first error.
func ParseAll(ss []string) ([]Literal, error) {
	out := make([]Literal, 0, len(ss))
	for _, s := range ss {
		l, err := Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
