// Package reach implements breadth-first reachability over any graph whose
// nodes are comparable values. Movement and automation use it to answer
// "can this unit get there" and to recover the path it would take.
package reach

import "math"

// NeighborFunc returns the nodes adjacent to n.
//
// Postcondition: the returned order must be stable for a given n; search
// results are only reproducible when it is.
type NeighborFunc[N comparable] func(n N) []N

// Predicate reports whether a discovered neighbor may be entered.
//
// It must be a pure function of the node (and of static map or ruleset
// state), never of search progress.
type Predicate[N comparable] func(n N) bool

// BFS is one reachability session rooted at a starting node.
//
// Invariant: Start is always in the visited set and maps to itself.
// Invariant: every node in the frontier is also in the visited set.
type BFS[N comparable] struct {
	// Start is the node the search grows from.
	Start N
	// MaxSize caps the number of visited nodes; once reached the frontier is
	// drained and the search ends.
	MaxSize int

	neighbors NeighborFunc[N]
	predicate Predicate[N]
	frontier  []N
	visited   map[N]N
}

// New creates a session rooted at start.
//
// Precondition: neighbors and predicate must not be nil.
// Postcondition: the session has visited exactly {start} and has a frontier of [start].
func New[N comparable](start N, neighbors NeighborFunc[N], predicate Predicate[N]) *BFS[N] {
	if neighbors == nil {
		panic("reach.New: neighbors must not be nil")
	}
	if predicate == nil {
		panic("reach.New: predicate must not be nil")
	}
	return &BFS[N]{
		Start:     start,
		MaxSize:   math.MaxInt,
		neighbors: neighbors,
		predicate: predicate,
		frontier:  append(make([]N, 0, 37), start),
		visited:   map[N]N{start: start},
	}
}

// NextStep expands the earliest discovered frontier node, recording every
// unvisited neighbor accepted by the predicate.
//
// Postcondition: returns (expanded, true), or (zero, false) when the frontier
// is empty or MaxSize has been reached; in the latter case the frontier is
// drained so HasEnded reports true.
func (b *BFS[N]) NextStep() (N, bool) {
	var zero N
	if len(b.visited) >= b.MaxSize {
		b.frontier = b.frontier[:0]
		return zero, false
	}
	if len(b.frontier) == 0 {
		return zero, false
	}

	current := b.frontier[0]
	b.frontier = b.frontier[1:]

	for _, n := range b.neighbors(current) {
		if _, seen := b.visited[n]; seen {
			continue
		}
		if !b.predicate(n) {
			continue
		}
		b.visited[n] = current
		b.frontier = append(b.frontier, n)
	}
	return current, true
}

// StepUntilDestination expands nodes until dest has been reached or the
// search has ended.
func (b *BFS[N]) StepUntilDestination(dest N) *BFS[N] {
	for !b.HasReached(dest) && !b.HasEnded() {
		b.NextStep()
	}
	return b
}

// StepToEnd expands nodes until the frontier is empty.
func (b *BFS[N]) StepToEnd() {
	for !b.HasEnded() {
		b.NextStep()
	}
}

// PathTo walks the parent chain from dest back to Start.
//
// Postcondition: returns nil if dest was never reached; otherwise the first
// element is dest, the last is Start, and consecutive elements are adjacent.
func (b *BFS[N]) PathTo(dest N) []N {
	var path []N
	current := dest
	for {
		parent, ok := b.visited[current]
		if !ok {
			return path
		}
		path = append(path, current)
		if current == b.Start {
			return path
		}
		current = parent
	}
}

// HasReached reports whether n has been discovered.
func (b *BFS[N]) HasReached(n N) bool {
	_, ok := b.visited[n]
	return ok
}

// HasEnded reports whether there is nothing left to expand.
func (b *BFS[N]) HasEnded() bool {
	return len(b.frontier) == 0
}

// Size returns the number of discovered nodes, Start included.
func (b *BFS[N]) Size() int {
	return len(b.visited)
}

// Reached returns every discovered node in no particular order.
func (b *BFS[N]) Reached() []N {
	out := make([]N, 0, len(b.visited))
	for n := range b.visited {
		out = append(out, n)
	}
	return out
}
