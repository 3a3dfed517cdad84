package plangraph

import "github.com/matzehuels/plangraph/pkg/planning"

// LiteralLayer is a layer of literals. Parents of a literal are the actions
// of the preceding action layer that achieve it; children are the actions of
// the following action layer that require it.
type LiteralLayer struct {
	*Layer[planning.Literal, *ActionNode]
	parent *ActionLayer
}

func newLiteralLayer(parent *ActionLayer) *LiteralLayer {
	return &LiteralLayer{
		Layer:  newLayer[planning.Literal, *ActionNode](),
		parent: parent,
	}
}

// Parent returns the action layer this literal layer was built from, or nil
// for the root layer.
func (l *LiteralLayer) Parent() *ActionLayer { return l.parent }

func (l *LiteralLayer) updateMutexes(workers int) {
	l.Layer.updateMutexes(l.isMutex, workers)
}

func (l *LiteralLayer) isMutex(a, b planning.Literal) bool {
	return l.negation(a, b) || l.inconsistentSupport(a, b)
}

// negation holds when a and b are the two polarities of one fluent.
func (l *LiteralLayer) negation(a, b planning.Literal) bool {
	return a.Complements(b)
}

// inconsistentSupport holds when every action achieving a is mutex with
// every action achieving b in the parent action layer.
//
// With no achievers on either side the condition holds vacuously. The root
// layer has no parent action layer; its literals are the initial state and
// hold together.
func (l *LiteralLayer) inconsistentSupport(a, b planning.Literal) bool {
	if l.parent == nil {
		return false
	}
	for _, x := range l.Parents(a) {
		for _, y := range l.Parents(b) {
			if !l.parent.IsMutex(x, y) {
				return false
			}
		}
	}
	return true
}
