package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/plangraph/pkg/plangraph"
	"github.com/matzehuels/plangraph/pkg/planning"
)

var (
	listDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	listGoalStyle = lipgloss.NewStyle().Foreground(colorGreen)
)

// maxMutexNames caps the partners listed per row before "+N" is shown.
const maxMutexNames = 3

// layerView selects which half of a level the browser shows.
type layerView int

const (
	viewLiterals layerView = iota
	viewActions
)

// =============================================================================
// LevelModel - Interactive planning graph browser
// =============================================================================

// LevelModel is the bubbletea model behind "plangraph explore". It shows one
// level at a time: either the literal layer or the action layer that
// produced it.
type LevelModel struct {
	Name   string
	Graph  *plangraph.Graph
	Level  int
	Mode   layerView
	Cursor int
	Offset int
	Height int
	NoOps  bool

	values map[plangraph.Heuristic]int
	goal   map[planning.Literal]bool
}

// NewLevelModel creates a browser over an already built graph.
func NewLevelModel(name string, g *plangraph.Graph) LevelModel {
	m := LevelModel{
		Name:   name,
		Graph:  g,
		Height: 15,
		values: make(map[plangraph.Heuristic]int),
		goal:   make(map[planning.Literal]bool),
	}
	for _, h := range plangraph.Heuristics() {
		if v, err := g.Evaluate(h); err == nil {
			m.values[h] = v
		}
	}
	for _, l := range g.Goal() {
		m.goal[l] = true
	}
	return m
}

func (m LevelModel) Init() tea.Cmd {
	return nil
}

func (m LevelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if m.Level > 0 {
				m.Level--
				m = m.resetCursor()
			}
		case "right", "l":
			if m.Level < m.Graph.Levels() {
				m.Level++
				m = m.resetCursor()
			}
		case "tab":
			if m.Mode == viewLiterals && m.Level > 0 {
				m.Mode = viewActions
			} else {
				m.Mode = viewLiterals
			}
			m = m.resetCursor()
		case "n":
			m.NoOps = !m.NoOps
			m = m.resetCursor()
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.rows())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 9
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m LevelModel) resetCursor() LevelModel {
	if m.Level == 0 {
		m.Mode = viewLiterals
	}
	m.Cursor, m.Offset = 0, 0
	return m
}

// rows returns the table rows of the current view.
func (m LevelModel) rows() [][]string {
	if m.Mode == viewActions {
		return m.actionRows()
	}
	return m.literalRows()
}

func (m LevelModel) literalRows() [][]string {
	layer := m.Graph.LiteralLayer(m.Level)
	if layer == nil {
		return nil
	}
	nodes := layer.Nodes()
	var rows [][]string
	for _, l := range nodes {
		var partners []string
		for _, o := range nodes {
			if o != l && layer.IsMutex(l, o) {
				partners = append(partners, o.String())
			}
		}
		achievers := 0
		for _, a := range layer.Parents(l) {
			if m.NoOps || !a.NoOp {
				achievers++
			}
		}
		rows = append(rows, []string{l.String(), fmt.Sprint(achievers), summarize(partners)})
	}
	return rows
}

func (m LevelModel) actionRows() [][]string {
	layer := m.Graph.ActionLayer(m.Level)
	if layer == nil {
		return nil
	}
	nodes := layer.Nodes()
	var rows [][]string
	for _, a := range nodes {
		if a.NoOp && !m.NoOps {
			continue
		}
		var partners []string
		for _, o := range nodes {
			if o != a && !o.NoOp && layer.IsMutex(a, o) {
				partners = append(partners, o.Name)
			}
		}
		rows = append(rows, []string{a.Name, joinLiterals(a.Preconditions), joinLiterals(a.Effects), summarize(partners)})
	}
	return rows
}

func (m LevelModel) View() string {
	var b strings.Builder

	leveled := ""
	if m.Graph.IsLeveled() {
		leveled = " · leveled"
	}
	kind := "literals"
	if m.Mode == viewActions {
		kind = "actions"
	}
	b.WriteString(StyleTitle.Render(m.Name))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  level %d/%d · %s%s", m.Level, m.Graph.Levels(), kind, leveled)))
	b.WriteString("\n")
	b.WriteString(m.heuristicLine())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ level  tab literals/actions  ↑/↓ scroll  n no-ops  q quit"))
	b.WriteString("\n\n")

	rows := m.rows()
	end := m.Offset + m.Height
	if end > len(rows) {
		end = len(rows)
	}
	visible := rows[m.Offset:end]

	headers := []string{"Literal", "Achievers", "Mutex with"}
	if m.Mode == viewActions {
		headers = []string{"Action", "Preconditions", "Effects", "Mutex with"}
	}
	mutexCol := len(headers) - 1

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(visible...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			base := lipgloss.NewStyle()
			if m.Offset+row == m.Cursor {
				base = base.Bold(true)
			}
			switch {
			case col == mutexCol:
				return base.Inherit(styleMutex)
			case col == 0 && m.Mode == viewLiterals && m.isGoal(visible[row][0]):
				return base.Inherit(listGoalStyle)
			case col == 0:
				return base.Foreground(colorWhite)
			}
			return base.Foreground(colorGray)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(rows)), len(rows))))
	return b.String()
}

func (m LevelModel) heuristicLine() string {
	var parts []string
	for _, h := range plangraph.Heuristics() {
		v, ok := m.values[h]
		if !ok {
			continue
		}
		parts = append(parts, StyleDim.Render(string(h)+" ")+StyleNumber.Render(formatValue(v)))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

func (m LevelModel) isGoal(s string) bool {
	l, err := planning.Parse(s)
	return err == nil && m.goal[l]
}

// summarize lists up to maxMutexNames names and counts the rest.
func summarize(names []string) string {
	if len(names) <= maxMutexNames {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s +%d", strings.Join(names[:maxMutexNames], ", "), len(names)-maxMutexNames)
}

func joinLiterals(ls []planning.Literal) string {
	s := make([]string, len(ls))
	for i, l := range ls {
		s[i] = l.String()
	}
	return strings.Join(s, ", ")
}
