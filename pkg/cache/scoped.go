package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each tenant of a shared
// cache its own namespace:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "team:planning:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer uses
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HeuristicKey generates a prefixed heuristic key.
func (k *ScopedKeyer) HeuristicKey(problemHash string, state []bool, opts HeuristicKeyOpts) string {
	return k.prefix + k.inner.HeuristicKey(problemHash, state, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(problemHash string, state []bool, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(problemHash, state, opts)
}
