package plangraph

import "github.com/matzehuels/plangraph/pkg/planning"

// ActionLayer is a layer of action nodes. Parents of an action are its
// preconditions in the preceding literal layer; children are its effects in
// the following literal layer.
type ActionLayer struct {
	*Layer[*ActionNode, planning.Literal]
	parent    *LiteralLayer
	serialize bool
}

func newActionLayer(parent *LiteralLayer, serialize bool) *ActionLayer {
	return &ActionLayer{
		Layer:     newLayer[*ActionNode, planning.Literal](),
		parent:    parent,
		serialize: serialize,
	}
}

// Parent returns the literal layer this action layer was built from.
func (l *ActionLayer) Parent() *LiteralLayer { return l.parent }

func (l *ActionLayer) updateMutexes(workers int) {
	l.Layer.updateMutexes(l.isMutex, workers)
}

func (l *ActionLayer) isMutex(a, b *ActionNode) bool {
	return l.serialized(a, b) ||
		l.inconsistentEffects(a, b) ||
		l.interference(a, b) ||
		l.competingNeeds(a, b)
}

// serialized holds for two domain actions when the graph forbids more than
// one non-persistence action per layer.
func (l *ActionLayer) serialized(a, b *ActionNode) bool {
	return l.serialize && !a.NoOp && !b.NoOp
}

// inconsistentEffects holds when an effect of one action negates an effect of
// the other.
func (l *ActionLayer) inconsistentEffects(a, b *ActionNode) bool {
	return anyComplement(l.Children(a), l.Children(b))
}

// interference holds when an effect of either action negates a precondition
// of the other.
func (l *ActionLayer) interference(a, b *ActionNode) bool {
	return anyComplement(l.Children(a), l.Parents(b)) ||
		anyComplement(l.Children(b), l.Parents(a))
}

// competingNeeds holds when some precondition of a is mutex with some
// precondition of b in the parent literal layer.
func (l *ActionLayer) competingNeeds(a, b *ActionNode) bool {
	for _, pa := range l.Parents(a) {
		for _, pb := range l.Parents(b) {
			if l.parent.IsMutex(pa, pb) {
				return true
			}
		}
	}
	return false
}

func anyComplement(xs, ys []planning.Literal) bool {
	for _, x := range xs {
		for _, y := range ys {
			if x.Complements(y) {
				return true
			}
		}
	}
	return false
}
