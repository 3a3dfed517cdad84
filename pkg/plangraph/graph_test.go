package plangraph

import (
	"slices"
	"testing"

	"github.com/matzehuels/plangraph/pkg/errors"
	"github.com/matzehuels/plangraph/pkg/planning"
)

func TestNew_RootLayer(t *testing.T) {
	g := mustGraph(t, singleStep(), DefaultOptions())

	root := g.LiteralLayer(0)
	want := lits(pos("A"), neg("B"))
	if got := root.Nodes(); !slices.Equal(got, want) {
		t.Errorf("root literals = %v, want %v", got, want)
	}
	if root.Parent() != nil {
		t.Error("root layer should have no parent")
	}
	if root.MutexCount() != 0 {
		t.Errorf("root mutexes = %d, want 0", root.MutexCount())
	}
	if g.Levels() != 0 || len(g.ActionLayers()) != 0 {
		t.Errorf("new graph should have no action layers, got %d", len(g.ActionLayers()))
	}
}

func TestNew_Catalogue(t *testing.T) {
	g := mustGraph(t, singleStep(), DefaultOptions())

	want := []string{"NoOp(A)", "NoOp(~A)", "NoOp(B)", "NoOp(~B)", "act1"}
	if got := nodeNames(g.Catalogue()); !slices.Equal(got, want) {
		t.Errorf("catalogue = %v, want %v", got, want)
	}
	for _, n := range g.Catalogue()[:4] {
		if !n.NoOp || len(n.Preconditions) != 1 || n.Preconditions[0] != n.Effects[0] {
			t.Errorf("%s is not a persistence action", n.Name)
		}
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name     string
		problem  *planning.Problem
		state    []bool
		wantCode errors.Code
	}{
		{"nil problem", nil, nil, errors.ErrCodeInvalidInput},
		{"state length", singleStep(), []bool{true}, errors.ErrCodeInvalidInput},
		{"unknown goal fluent", func() *planning.Problem {
			p := singleStep()
			p.Goal = lits(pos("Z"))
			return p
		}(), []bool{true, false}, errors.ErrCodeUnknownFluent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.problem, tt.state, DefaultOptions())
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("New() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestNew_ExplicitState(t *testing.T) {
	p := singleStep()
	g, err := New(p, []bool{false, true}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if got := g.LevelCost(); !slices.Equal(got, []int{0}) {
		t.Errorf("LevelCost from goal state = %v, want [0]", got)
	}
}

func TestExtend_AdmitsAndWires(t *testing.T) {
	g := mustGraph(t, singleStep(), DefaultOptions())
	g.Extend()

	actions := g.ActionLayer(1)
	if actions.Parent() != g.LiteralLayer(0) {
		t.Error("action layer 1 should point at literal layer 0")
	}
	if g.LiteralLayer(1).Parent() != actions {
		t.Error("literal layer 1 should point at action layer 1")
	}

	wantActions := []string{"NoOp(A)", "NoOp(~B)", "act1"}
	if got := nodeNames(actions.Nodes()); !slices.Equal(got, wantActions) {
		t.Errorf("action layer 1 = %v, want %v", got, wantActions)
	}
	wantLits := lits(pos("A"), neg("B"), pos("B"))
	if got := g.LiteralLayer(1).Nodes(); !slices.Equal(got, wantLits) {
		t.Errorf("literal layer 1 = %v, want %v", got, wantLits)
	}

	act1 := findAction(t, actions, "act1")
	if got := actions.Parents(act1); !slices.Equal(got, lits(pos("A"))) {
		t.Errorf("parents(act1) = %v", got)
	}
	if got := actions.Children(act1); !slices.Equal(got, lits(pos("B"))) {
		t.Errorf("children(act1) = %v", got)
	}
	if got := g.LiteralLayer(0).Children(pos("A")); !slices.Contains(got, act1) {
		t.Errorf("children(A) in layer 0 = %v, want act1 included", nodeNames(got))
	}
	if got := g.LiteralLayer(1).Parents(pos("B")); !slices.Equal(got, []*ActionNode{act1}) {
		t.Errorf("parents(B) in layer 1 = %v", nodeNames(got))
	}
}

func TestExtend_CarriesActions(t *testing.T) {
	g := mustGraph(t, chain(), DefaultOptions())
	g.Fill(2)

	first := nodeNames(g.ActionLayer(1).Nodes())
	second := nodeNames(g.ActionLayer(2).Nodes())
	if !slices.Equal(second[:len(first)], first) {
		t.Errorf("layer 2 should start with layer 1's actions: %v vs %v", second, first)
	}
	for _, name := range []string{"NoOp(B)", "act2"} {
		if slices.Contains(first, name) {
			t.Errorf("%s admitted too early", name)
		}
		if !slices.Contains(second, name) {
			t.Errorf("%s missing from layer 2", name)
		}
	}
}

func TestExtend_Leveling(t *testing.T) {
	g := mustGraph(t, singleStep(), DefaultOptions())
	g.Extend()
	if g.IsLeveled() {
		t.Fatal("graph should not level after the first extension")
	}
	g.Extend()
	if !g.IsLeveled() {
		t.Fatal("graph should level once the literal layer repeats")
	}
	if g.Levels() != 2 {
		t.Errorf("Levels() = %d, want 2", g.Levels())
	}
}

func TestExtend_IdempotentWhenLeveled(t *testing.T) {
	g := mustGraph(t, airCargo(), DefaultOptions())
	g.Fill(-1)
	if !g.IsLeveled() {
		t.Fatal("Fill(-1) should level the graph")
	}
	literals, actions := g.LiteralLayers(), g.ActionLayers()

	g.Extend()
	g.Fill(5)

	if !slices.Equal(g.LiteralLayers(), literals) || !slices.Equal(g.ActionLayers(), actions) {
		t.Error("extending a leveled graph changed its layers")
	}
}

func TestExtend_MutexDissolvesBeforeLeveling(t *testing.T) {
	g := mustGraph(t, interfering(), Options{})
	g.Extend()
	g.Extend()

	l1, l2 := g.LiteralLayer(1), g.LiteralLayer(2)
	if !l1.sameNodes(l2.Layer) {
		t.Fatal("fixture expects identical membership at levels 1 and 2")
	}
	if g.IsLeveled() {
		t.Error("graph must not level while mutexes are still dissolving")
	}
	g.Extend()
	if !g.IsLeveled() {
		t.Error("graph should level once membership and mutexes repeat")
	}
}

func TestFill(t *testing.T) {
	g := mustGraph(t, chain(), DefaultOptions())
	g.Fill(1)
	if g.Levels() != 1 {
		t.Errorf("Fill(1): Levels() = %d, want 1", g.Levels())
	}
	g.Fill(0)
	if g.Levels() != 1 {
		t.Errorf("Fill(0) should not extend, Levels() = %d", g.Levels())
	}
	g.Fill(-1)
	if !g.IsLeveled() {
		t.Error("Fill(-1) should run until leveled")
	}
}

func TestIgnoreMutexes(t *testing.T) {
	g := mustGraph(t, haveCake(), Options{IgnoreMutexes: true})
	g.Fill(-1)
	for i, l := range g.LiteralLayers() {
		if l.MutexCount() != 0 {
			t.Errorf("literal layer %d has %d mutexes", i, l.MutexCount())
		}
	}
	for i, l := range g.ActionLayers() {
		if l.MutexCount() != 0 {
			t.Errorf("action layer %d has %d mutexes", i+1, l.MutexCount())
		}
	}
}

func TestLayerAccessorsOutOfRange(t *testing.T) {
	g := mustGraph(t, singleStep(), DefaultOptions())
	if g.LiteralLayer(-1) != nil || g.LiteralLayer(1) != nil {
		t.Error("LiteralLayer out of range should be nil")
	}
	if g.ActionLayer(0) != nil || g.ActionLayer(1) != nil {
		t.Error("ActionLayer out of range should be nil")
	}
}

func TestWorkersMatchSequential(t *testing.T) {
	seq := mustGraph(t, airCargo(), DefaultOptions()).Fill(-1)
	opts := DefaultOptions()
	opts.Workers = 4
	par := mustGraph(t, airCargo(), opts).Fill(-1)

	if seq.Levels() != par.Levels() {
		t.Fatalf("levels differ: %d vs %d", seq.Levels(), par.Levels())
	}
	for i := range seq.Levels() + 1 {
		if !slices.Equal(seq.LiteralLayer(i).MutexPairs(), par.LiteralLayer(i).MutexPairs()) {
			t.Errorf("literal layer %d mutexes differ", i)
		}
	}
	for i := 1; i <= seq.Levels(); i++ {
		a, b := actionPairNames(seq.ActionLayer(i)), actionPairNames(par.ActionLayer(i))
		if !slices.Equal(a, b) {
			t.Errorf("action layer %d mutexes differ", i)
		}
	}
}

func actionPairNames(l *ActionLayer) []string {
	var out []string
	for _, p := range l.MutexPairs() {
		out = append(out, p[0].Name+"|"+p[1].Name)
	}
	return out
}
