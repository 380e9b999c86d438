// Package governor enforces the node-count and depth ceilings of one
// generation run. The scheduler reserves budget before creating nodes and
// truncates candidate lists to the granted prefix, so growth stays bounded
// and deterministic.
package governor

import "sync"

// Governor tracks the running node total for a scene against a hard ceiling.
// Safe for concurrent use, though in practice only the scheduler's single
// mutation point consumes budget.
type Governor struct {
	mu sync.Mutex

	maxNodes int
	maxDepth int
	used     int
	dropped  int
}

// New creates a governor. maxNodes == 0 means unlimited nodes; maxDepth is
// the highest level at which containers may still be expanded (children reach
// maxDepth but are never expanded there).
func New(maxNodes, maxDepth int) *Governor {
	return &Governor{maxNodes: maxNodes, maxDepth: maxDepth}
}

// Track records n pre-existing nodes against the budget without truncation
// semantics, for nodes created outside Reserve (pre-populated scenes).
func (g *Governor) Track(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.used += n
}

// Reserve grants up to n node creations without exceeding the ceiling and
// returns the granted count (0..n). The shortfall is recorded as dropped;
// callers keep the front of their candidate list, so truncation is a
// deterministic prefix.
func (g *Governor) Reserve(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if n <= 0 {
		return 0
	}
	granted := n
	if g.maxNodes > 0 {
		remaining := g.maxNodes - g.used
		if remaining <= 0 {
			granted = 0
		} else if remaining < n {
			granted = remaining
		}
	}
	g.used += granted
	g.dropped += n - granted
	return granted
}

// Exhausted reports soft budget exhaustion: no further nodes may be created.
// In-flight expansions still finish validation, they just append nothing.
func (g *Governor) Exhausted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.maxNodes > 0 && g.used >= g.maxNodes
}

// DepthAllowed reports whether a container at the given level may be expanded.
func (g *Governor) DepthAllowed(level int) bool {
	return level < g.maxDepth
}

// MaxDepth returns the configured depth ceiling.
func (g *Governor) MaxDepth() int { return g.maxDepth }

// Used returns the nodes created so far.
func (g *Governor) Used() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.used
}

// Remaining returns how many nodes may still be created, or -1 if unlimited.
func (g *Governor) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.maxNodes == 0 {
		return -1
	}
	r := g.maxNodes - g.used
	if r < 0 {
		r = 0
	}
	return r
}

// Dropped returns how many candidate nodes the ceiling cut so far.
func (g *Governor) Dropped() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dropped
}
