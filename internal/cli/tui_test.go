package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/plangraph/pkg/plangraph"
	"github.com/matzehuels/plangraph/pkg/planning"
)

func cakeModel(t *testing.T) LevelModel {
	t.Helper()
	have, eaten := planning.Pos("Have(Cake)"), planning.Pos("Eaten(Cake)")
	p := &planning.Problem{
		Name:    "have-cake",
		Fluents: []string{"Have(Cake)", "Eaten(Cake)"},
		Initial: []bool{true, false},
		Actions: []planning.Action{
			{Name: "Eat(Cake)", Preconditions: []planning.Literal{have}, Effects: []planning.Literal{have.Not(), eaten}},
			{Name: "Bake(Cake)", Preconditions: []planning.Literal{have.Not()}, Effects: []planning.Literal{have}},
		},
		Goal: []planning.Literal{have, eaten},
	}
	g, err := plangraph.New(p, p.Initial, plangraph.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return NewLevelModel(p.Name, g.Fill(-1))
}

func press(m LevelModel, keys ...string) LevelModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(LevelModel)
	}
	return m
}

func TestLevelModel_Navigation(t *testing.T) {
	m := cakeModel(t)
	last := m.Graph.Levels()

	tests := []struct {
		name      string
		keys      []string
		wantLevel int
		wantMode  layerView
	}{
		{"start", nil, 0, viewLiterals},
		{"no actions at level 0", []string{"tab"}, 0, viewLiterals},
		{"next level", []string{"right"}, 1, viewLiterals},
		{"actions view", []string{"l", "tab"}, 1, viewActions},
		{"back to level 0 resets view", []string{"l", "tab", "h"}, 0, viewLiterals},
		{"clamped at last level", []string{"l", "l", "l", "l", "l", "l"}, last, viewLiterals},
		{"clamped at 0", []string{"left", "left"}, 0, viewLiterals},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := press(m, tt.keys...)
			if got.Level != tt.wantLevel || got.Mode != tt.wantMode {
				t.Errorf("level=%d mode=%d, want level=%d mode=%d", got.Level, got.Mode, tt.wantLevel, tt.wantMode)
			}
		})
	}
}

func TestLevelModel_Rows(t *testing.T) {
	m := press(cakeModel(t), "l")

	rows := m.rows()
	var eaten []string
	for _, r := range rows {
		if r[0] == "Eaten(Cake)" {
			eaten = r
		}
	}
	if eaten == nil {
		t.Fatalf("level 1 literals missing Eaten(Cake): %v", rows)
	}
	if eaten[1] != "1" {
		t.Errorf("Eaten(Cake) achievers = %s, want 1 (Eat)", eaten[1])
	}
	if !strings.Contains(eaten[2], "Have(Cake)") {
		t.Errorf("Eaten(Cake) should be mutex with Have(Cake) at level 1, got %q", eaten[2])
	}

	actions := press(m, "tab").rows()
	for _, r := range actions {
		if strings.HasPrefix(r[0], "NoOp") {
			t.Errorf("no-ops should be hidden by default: %v", r)
		}
	}
	withNoOps := press(m, "tab", "n").rows()
	if len(withNoOps) <= len(actions) {
		t.Errorf("n should reveal no-ops: %d <= %d rows", len(withNoOps), len(actions))
	}
}

func TestLevelModel_Scroll(t *testing.T) {
	m := press(cakeModel(t), "l")
	m.Height = 1

	m = press(m, "j")
	if m.Cursor != 1 || m.Offset != 1 {
		t.Errorf("after down: cursor=%d offset=%d", m.Cursor, m.Offset)
	}
	m = press(m, "j", "j", "j", "j")
	if m.Cursor != len(m.rows())-1 {
		t.Errorf("cursor = %d, should stop at last row %d", m.Cursor, len(m.rows())-1)
	}
	m = press(m, "k", "k", "k", "k", "k", "k")
	if m.Cursor != 0 || m.Offset != 0 {
		t.Errorf("after up: cursor=%d offset=%d", m.Cursor, m.Offset)
	}
}

func TestLevelModel_View(t *testing.T) {
	m := cakeModel(t)
	view := m.View()
	for _, want := range []string{"have-cake", "level 0/", "setlevel", "Have(Cake)"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q should quit")
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"a", "b"}, "a, b"},
		{[]string{"a", "b", "c", "d", "e"}, "a, b, c +2"},
	}
	for _, tt := range tests {
		if got := summarize(tt.in); got != tt.want {
			t.Errorf("summarize(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
