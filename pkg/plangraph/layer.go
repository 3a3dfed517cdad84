package plangraph

import (
	"slices"

	"golang.org/x/sync/errgroup"
)

// Layer is an insertion-ordered set of nodes of one kind (N) with edges to
// nodes of the adjacent kind (A) and a symmetric mutex relation over pairs of
// its own nodes.
//
// Parents point into the preceding layer and children into the following
// one. Literal layers use actions as the adjacent kind and vice versa.
type Layer[N, A comparable] struct {
	nodes    []N
	pos      map[N]int
	parents  map[N][]A
	children map[N][]A
	mutex    map[N]map[N]struct{}
	pairs    int
}

func newLayer[N, A comparable]() *Layer[N, A] {
	return &Layer[N, A]{
		pos:      make(map[N]int),
		parents:  make(map[N][]A),
		children: make(map[N][]A),
		mutex:    make(map[N]map[N]struct{}),
	}
}

// add appends n unless it is already present and reports whether it was new.
func (l *Layer[N, A]) add(n N) bool {
	if _, ok := l.pos[n]; ok {
		return false
	}
	l.pos[n] = len(l.nodes)
	l.nodes = append(l.nodes, n)
	return true
}

// Len returns the number of nodes in the layer.
func (l *Layer[N, A]) Len() int { return len(l.nodes) }

// Nodes returns the layer's nodes in insertion order.
// The returned slice is a copy.
func (l *Layer[N, A]) Nodes() []N { return slices.Clone(l.nodes) }

// Contains reports whether n is in the layer.
func (l *Layer[N, A]) Contains(n N) bool {
	_, ok := l.pos[n]
	return ok
}

// ContainsAll reports whether every node of ns is in the layer.
func (l *Layer[N, A]) ContainsAll(ns []N) bool {
	for _, n := range ns {
		if !l.Contains(n) {
			return false
		}
	}
	return true
}

// Parents returns the nodes of the preceding layer connected to n.
// The returned slice should not be modified.
func (l *Layer[N, A]) Parents(n N) []A { return l.parents[n] }

// Children returns the nodes of the following layer connected to n.
// The returned slice should not be modified.
func (l *Layer[N, A]) Children(n N) []A { return l.children[n] }

func (l *Layer[N, A]) addParents(n N, ps ...A) {
	l.parents[n] = appendUnique(l.parents[n], ps...)
}

func (l *Layer[N, A]) addChildren(n N, cs ...A) {
	l.children[n] = appendUnique(l.children[n], cs...)
}

// IsMutex reports whether a and b are mutually exclusive in this layer.
// A node is never mutex with itself.
func (l *Layer[N, A]) IsMutex(a, b N) bool {
	if a == b {
		return false
	}
	_, ok := l.mutex[a][b]
	return ok
}

func (l *Layer[N, A]) setMutex(a, b N) {
	if a == b || l.IsMutex(a, b) {
		return
	}
	for _, p := range [2][2]N{{a, b}, {b, a}} {
		m, ok := l.mutex[p[0]]
		if !ok {
			m = make(map[N]struct{})
			l.mutex[p[0]] = m
		}
		m[p[1]] = struct{}{}
	}
	l.pairs++
}

// MutexCount returns the number of unordered mutex pairs.
func (l *Layer[N, A]) MutexCount() int { return l.pairs }

// MutexPairs returns every unordered mutex pair once, ordered by the
// insertion position of its nodes.
func (l *Layer[N, A]) MutexPairs() [][2]N {
	out := make([][2]N, 0, l.pairs)
	for i, a := range l.nodes {
		for _, b := range l.nodes[i+1:] {
			if l.IsMutex(a, b) {
				out = append(out, [2]N{a, b})
			}
		}
	}
	return out
}

// updateMutexes marks every pair of distinct nodes for which test holds.
//
// test must only read layer state. With workers > 1 the rows of the pair
// matrix are evaluated concurrently and merged once all of them finish.
func (l *Layer[N, A]) updateMutexes(test func(a, b N) bool, workers int) {
	n := len(l.nodes)
	if n < 2 {
		return
	}
	if workers <= 1 {
		for i := 0; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				if test(l.nodes[i], l.nodes[j]) {
					l.setMutex(l.nodes[i], l.nodes[j])
				}
			}
		}
		return
	}

	found := make([][]int, n)
	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n-1; i++ {
		g.Go(func() error {
			for j := i + 1; j < n; j++ {
				if test(l.nodes[i], l.nodes[j]) {
					found[i] = append(found[i], j)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, js := range found {
		for _, j := range js {
			l.setMutex(l.nodes[i], l.nodes[j])
		}
	}
}

// sameNodes reports whether l and o hold the same node set.
func (l *Layer[N, A]) sameNodes(o *Layer[N, A]) bool {
	if len(l.nodes) != len(o.nodes) {
		return false
	}
	return o.ContainsAll(l.nodes)
}

// sameMutexes reports whether l and o have the same mutex pairs.
func (l *Layer[N, A]) sameMutexes(o *Layer[N, A]) bool {
	if l.pairs != o.pairs {
		return false
	}
	for a, bs := range l.mutex {
		for b := range bs {
			if !o.IsMutex(a, b) {
				return false
			}
		}
	}
	return true
}

func appendUnique[T comparable](s []T, items ...T) []T {
	for _, it := range items {
		if !slices.Contains(s, it) {
			s = append(s, it)
		}
	}
	return s
}
