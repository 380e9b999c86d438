package scene

// Order selects the traversal strategy of a Walker.
type Order int

const (
	// DepthFirst visits a node before its children, children in order.
	DepthFirst Order = iota
	// BreadthFirst visits all nodes of one depth before the next.
	BreadthFirst
)

// Walker is a lazy, finite cursor over (node, depth) pairs. It keeps an
// explicit frontier instead of recursing, so arbitrarily deep trees cannot
// exhaust the call stack. A Walker is single-use; call Scene.Walk again to
// restart.
type Walker struct {
	order    Order
	frontier []Node
}

// Walk returns a new cursor over the forest in the given order.
func (s *Scene) Walk(order Order) *Walker {
	frontier := make([]Node, len(s.roots))
	if order == DepthFirst {
		// Stack: push roots reversed so the first root pops first.
		for i, n := range s.roots {
			frontier[len(s.roots)-1-i] = n
		}
	} else {
		copy(frontier, s.roots)
	}
	return &Walker{order: order, frontier: frontier}
}

// Next returns the next node and its depth, or ok=false when exhausted.
func (w *Walker) Next() (Node, int, bool) {
	if len(w.frontier) == 0 {
		return nil, 0, false
	}

	var n Node
	if w.order == DepthFirst {
		n = w.frontier[len(w.frontier)-1]
		w.frontier = w.frontier[:len(w.frontier)-1]
		if c, ok := n.(*Container); ok {
			for i := len(c.children) - 1; i >= 0; i-- {
				w.frontier = append(w.frontier, c.children[i])
			}
		}
	} else {
		n = w.frontier[0]
		w.frontier = w.frontier[1:]
		if c, ok := n.(*Container); ok {
			w.frontier = append(w.frontier, c.children...)
		}
	}
	return n, n.Level(), true
}
