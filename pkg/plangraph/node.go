package plangraph

import "github.com/matzehuels/plangraph/pkg/planning"

// ActionNode is an action as it appears in the planning graph: a domain
// action or a synthesized persistence action that carries one literal into
// the next layer.
//
// Nodes are created once when the graph is built, so pointer identity is node
// identity for the lifetime of the graph.
type ActionNode struct {
	Name          string
	Preconditions []planning.Literal
	Effects       []planning.Literal
	NoOp          bool
}

// String returns the action name.
func (n *ActionNode) String() string { return n.Name }

func newActionNode(a planning.Action) *ActionNode {
	return &ActionNode{
		Name:          a.Name,
		Preconditions: planning.Dedup(a.Preconditions),
		Effects:       planning.Dedup(a.Effects),
	}
}

// noOps returns the persistence actions for both polarities of fluent.
func noOps(fluent string) []*ActionNode {
	pos := planning.Pos(fluent)
	return []*ActionNode{noOp(pos), noOp(pos.Not())}
}

func noOp(l planning.Literal) *ActionNode {
	return &ActionNode{
		Name:          "NoOp(" + l.String() + ")",
		Preconditions: []planning.Literal{l},
		Effects:       []planning.Literal{l},
		NoOp:          true,
	}
}
