package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plangraph/pkg/cache"
	"github.com/matzehuels/plangraph/pkg/errors"
	"github.com/matzehuels/plangraph/pkg/plangraph"
	"github.com/matzehuels/plangraph/pkg/planning"
)

func cakeProblem() *planning.Problem {
	have, eaten := planning.Pos("Have(Cake)"), planning.Pos("Eaten(Cake)")
	return &planning.Problem{
		Name:    "have-cake",
		Fluents: []string{"Have(Cake)", "Eaten(Cake)"},
		Initial: []bool{true, false},
		Actions: []planning.Action{
			{Name: "Eat(Cake)", Preconditions: []planning.Literal{have}, Effects: []planning.Literal{have.Not(), eaten}},
			{Name: "Bake(Cake)", Preconditions: []planning.Literal{have.Not()}, Effects: []planning.Literal{have}},
		},
		Goal: []planning.Literal{have, eaten},
	}
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(&strings.Builder{}, log.Options{})
}

func fileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, quietLogger())
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if strings.Join(o.Heuristics, ",") != "levelsum,maxlevel,setlevel" {
		t.Errorf("default heuristics = %v", o.Heuristics)
	}

	o = Options{Heuristics: []string{"h_setlevel", "SetLevel", "levelsum"}}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if strings.Join(o.Heuristics, ",") != "setlevel,levelsum" {
		t.Errorf("normalized heuristics = %v", o.Heuristics)
	}

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"bad heuristic", Options{Heuristics: []string{"ff"}}, errors.ErrCodeInvalidHeuristic},
		{"negative levels", Options{MaxLevels: -1}, errors.ErrCodeInvalidInput},
		{"too many workers", Options{Workers: MaxWorkers + 1}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestGraphOptions(t *testing.T) {
	o := Options{Parallel: true, MaxLevels: 4, Workers: 2}
	g := o.GraphOptions()
	if g.Serialize || g.MaxLevels != 4 || g.Workers != 2 {
		t.Errorf("GraphOptions() = %+v", g)
	}
	if !(Options{}).GraphOptions().Serialize {
		t.Error("serialized by default")
	}
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()
	r := fileRunner(t)
	defer r.Close()

	res, err := r.Evaluate(ctx, cakeProblem(), Options{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	want := map[string]int{"levelsum": 1, "maxlevel": 1, "setlevel": 2}
	for h, v := range want {
		if res.Values[h] != v {
			t.Errorf("%s = %d, want %d", h, res.Values[h], v)
		}
	}
	if res.Cached || res.ID == "" || res.Problem != "have-cake" {
		t.Errorf("result = %+v", res)
	}
	if !res.Solvable() {
		t.Error("have-cake should be solvable")
	}

	again, err := r.Evaluate(ctx, cakeProblem(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !again.Cached {
		t.Error("second evaluation should come from the cache")
	}
	if again.ID == res.ID {
		t.Error("cached result should get a fresh ID")
	}
	if again.Values["setlevel"] != 2 {
		t.Errorf("cached setlevel = %d", again.Values["setlevel"])
	}

	refreshed, err := r.Evaluate(ctx, cakeProblem(), Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.Cached {
		t.Error("Refresh should bypass the cache")
	}
}

func TestEvaluate_OptionsChangeKey(t *testing.T) {
	ctx := context.Background()
	r := fileRunner(t)

	if _, err := r.Evaluate(ctx, cakeProblem(), Options{}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Evaluate(ctx, cakeProblem(), Options{IgnoreMutexes: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Cached {
		t.Error("different graph options must not share a cache entry")
	}
	if res.Values["setlevel"] != 1 {
		t.Errorf("setlevel without mutexes = %d, want 1", res.Values["setlevel"])
	}
}

func TestEvaluate_StateAndErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, quietLogger())

	res, err := r.Evaluate(ctx, cakeProblem(), Options{State: []bool{true, true}, Heuristics: []string{"maxlevel"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Values["maxlevel"] != 0 || len(res.Values) != 1 {
		t.Errorf("Values = %v, want only maxlevel 0", res.Values)
	}

	if _, err := r.Evaluate(ctx, cakeProblem(), Options{State: []bool{true}}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("short state error = %v", err)
	}
	if _, err := r.Evaluate(ctx, nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("nil problem error = %v", err)
	}
}

func TestEvaluate_Unsolvable(t *testing.T) {
	p := cakeProblem()
	p.Actions = p.Actions[1:]
	r := NewRunner(nil, nil, quietLogger())

	res, err := r.Evaluate(context.Background(), p, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Solvable() || res.Values["levelsum"] != plangraph.Unsolvable {
		t.Errorf("Values = %v", res.Values)
	}
	if len(res.LevelCost) != 1 || !res.Leveled {
		t.Errorf("LevelCost = %v, Leveled = %v", res.LevelCost, res.Leveled)
	}
}

func TestEvaluate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRunner(nil, nil, quietLogger())
	if _, err := r.Evaluate(ctx, cakeProblem(), Options{}); err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestBuild(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	g, err := r.Build(context.Background(), cakeProblem(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !g.IsLeveled() {
		t.Error("Build should expand until leveled")
	}

	g, err = r.Build(context.Background(), cakeProblem(), Options{MaxLevels: 1})
	if err != nil {
		t.Fatal(err)
	}
	if g.Levels() != 1 {
		t.Errorf("Levels() = %d, want 1", g.Levels())
	}
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	r := fileRunner(t)

	dot, cached, err := r.Render(ctx, cakeProblem(), Options{}, RenderOptions{Format: FormatDOT, HideNoOps: true})
	if err != nil {
		t.Fatal(err)
	}
	if cached || !strings.HasPrefix(string(dot), "digraph G {") {
		t.Errorf("first render: cached %v, output %.40q", cached, dot)
	}

	_, cached, err = r.Render(ctx, cakeProblem(), Options{}, RenderOptions{Format: FormatDOT, HideNoOps: true})
	if err != nil {
		t.Fatal(err)
	}
	if !cached {
		t.Error("second render should hit the cache")
	}

	data, _, err := r.Render(ctx, cakeProblem(), Options{}, RenderOptions{Format: FormatJSON})
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Errorf("json render is not JSON: %v", err)
	}

	if _, _, err := r.Render(ctx, cakeProblem(), Options{}, RenderOptions{Format: "gif"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("gif error = %v", err)
	}
}

func TestProblemHash(t *testing.T) {
	h1, err := ProblemHash(cakeProblem())
	if err != nil {
		t.Fatal(err)
	}
	p := cakeProblem()
	p.Goal = p.Goal[:1]
	h2, _ := ProblemHash(p)
	if h1 == h2 {
		t.Error("different goals should hash differently")
	}
	if h3, _ := ProblemHash(cakeProblem()); h3 != h1 {
		t.Error("ProblemHash should be deterministic")
	}
}
