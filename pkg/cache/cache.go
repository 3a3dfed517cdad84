// Package cache stores evaluation results and rendered artifacts.
//
// [Cache] is a small byte-oriented key/value interface with three backends:
// [FileCache] for the CLI, [RedisCache] for servers sharing one cache, and
// [NullCache] when caching is disabled. Keys come from a [Keyer] so that
// every backend sees the same key for the same problem, state and options.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. A ttl of zero never expires.
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// HeuristicKeyOpts holds the graph options that change heuristic values.
type HeuristicKeyOpts struct {
	Serialize     bool     `json:"serialize"`
	IgnoreMutexes bool     `json:"ignore_mutexes"`
	MaxLevels     int      `json:"max_levels"`
	Heuristics    []string `json:"heuristics"`
}

// ArtifactKeyOpts identifies one rendering of a planning graph.
type ArtifactKeyOpts struct {
	Format      string `json:"format"`
	ShowMutexes bool   `json:"show_mutexes"`
	HideNoOps   bool   `json:"hide_noops"`
	MaxLevel    int    `json:"max_level"`
	Serialize   bool   `json:"serialize"`
}

// Keyer derives cache keys. problemHash is the [Hash] of the problem's
// canonical encoding.
type Keyer interface {
	HeuristicKey(problemHash string, state []bool, opts HeuristicKeyOpts) string
	ArtifactKey(problemHash string, state []bool, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes every key component into a fixed-length key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HeuristicKey returns "heuristic:<sha256>".
func (DefaultKeyer) HeuristicKey(problemHash string, state []bool, opts HeuristicKeyOpts) string {
	return hashKey("heuristic", problemHash, state, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(problemHash string, state []bool, opts ArtifactKeyOpts) string {
	return hashKey("artifact", problemHash, state, opts)
}
