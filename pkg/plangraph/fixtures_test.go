package plangraph

import (
	"testing"

	"github.com/matzehuels/plangraph/pkg/planning"
)

var (
	pos = planning.Pos
	neg = planning.Neg
)

func lits(ls ...planning.Literal) []planning.Literal { return ls }

// singleStep: A holds, act1 turns B on.
func singleStep() *planning.Problem {
	return &planning.Problem{
		Name:    "single-step",
		Fluents: []string{"A", "B"},
		Initial: []bool{true, false},
		Actions: []planning.Action{
			{Name: "act1", Preconditions: lits(pos("A")), Effects: lits(pos("B"))},
		},
		Goal: lits(pos("B")),
	}
}

// chain: B is reachable at level 1, C only after B.
func chain() *planning.Problem {
	return &planning.Problem{
		Name:    "chain",
		Fluents: []string{"A", "B", "C"},
		Initial: []bool{true, false, false},
		Actions: []planning.Action{
			{Name: "act1", Preconditions: lits(pos("A")), Effects: lits(pos("B"))},
			{Name: "act2", Preconditions: lits(pos("B")), Effects: lits(pos("C"))},
		},
		Goal: lits(pos("B"), pos("C")),
	}
}

// interfering: MakeX destroys MakeY's precondition, so X and Y first appear
// together as a mutex pair and only become compatible one level later.
func interfering() *planning.Problem {
	return &planning.Problem{
		Name:    "interfering",
		Fluents: []string{"X", "Y"},
		Initial: []bool{false, false},
		Actions: []planning.Action{
			{Name: "MakeX", Effects: lits(pos("X"))},
			{Name: "MakeY", Preconditions: lits(neg("X")), Effects: lits(pos("Y"))},
		},
		Goal: lits(pos("X"), pos("Y")),
	}
}

// unreachable: nothing ever produces A, so B is unreachable.
func unreachable() *planning.Problem {
	return &planning.Problem{
		Name:    "unreachable",
		Fluents: []string{"A", "B"},
		Initial: []bool{false, false},
		Actions: []planning.Action{
			{Name: "act", Preconditions: lits(pos("A")), Effects: lits(pos("B"))},
		},
		Goal: lits(pos("B")),
	}
}

func haveCake() *planning.Problem {
	have, eaten := "Have(Cake)", "Eaten(Cake)"
	return &planning.Problem{
		Name:    "have-cake",
		Fluents: []string{have, eaten},
		Initial: []bool{true, false},
		Actions: []planning.Action{
			{Name: "Eat(Cake)", Preconditions: lits(pos(have)), Effects: lits(neg(have), pos(eaten))},
			{Name: "Bake(Cake)", Preconditions: lits(neg(have)), Effects: lits(pos(have))},
		},
		Goal: lits(pos(have), pos(eaten)),
	}
}

// airCargo: one cargo, one plane, two airports.
func airCargo() *planning.Problem {
	const (
		cSFO = "At(C1, SFO)"
		cJFK = "At(C1, JFK)"
		pSFO = "At(P1, SFO)"
		pJFK = "At(P1, JFK)"
		in   = "In(C1, P1)"
	)
	return &planning.Problem{
		Name:    "air-cargo",
		Fluents: []string{cSFO, cJFK, pSFO, pJFK, in},
		Initial: []bool{true, false, true, false, false},
		Actions: []planning.Action{
			{Name: "Load(C1, P1, SFO)", Preconditions: lits(pos(cSFO), pos(pSFO)), Effects: lits(pos(in), neg(cSFO))},
			{Name: "Load(C1, P1, JFK)", Preconditions: lits(pos(cJFK), pos(pJFK)), Effects: lits(pos(in), neg(cJFK))},
			{Name: "Unload(C1, P1, SFO)", Preconditions: lits(pos(in), pos(pSFO)), Effects: lits(pos(cSFO), neg(in))},
			{Name: "Unload(C1, P1, JFK)", Preconditions: lits(pos(in), pos(pJFK)), Effects: lits(pos(cJFK), neg(in))},
			{Name: "Fly(P1, SFO, JFK)", Preconditions: lits(pos(pSFO)), Effects: lits(pos(pJFK), neg(pSFO))},
			{Name: "Fly(P1, JFK, SFO)", Preconditions: lits(pos(pJFK)), Effects: lits(pos(pSFO), neg(pJFK))},
		},
		Goal: lits(pos(cJFK)),
	}
}

func mustGraph(t *testing.T, p *planning.Problem, opts Options) *Graph {
	t.Helper()
	g, err := New(p, p.Initial, opts)
	if err != nil {
		t.Fatalf("New(%s): %v", p.Name, err)
	}
	return g
}

func nodeNames(nodes []*ActionNode) []string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}
	return names
}

func findAction(t *testing.T, l *ActionLayer, name string) *ActionNode {
	t.Helper()
	for _, n := range l.Nodes() {
		if n.Name == name {
			return n
		}
	}
	t.Fatalf("action %q not in layer", name)
	return nil
}
