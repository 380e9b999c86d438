package scene

// Context carries the narrative background a scene is generated from. All
// fields are opaque free text passed through to the content service.
type Context struct {
	Script      string `json:"script"`
	Requirement string `json:"requirement"`
	Era         string `json:"era,omitempty"`
	Location    string `json:"location,omitempty"`
	Atmosphere  string `json:"atmosphere,omitempty"`
	Style       string `json:"style,omitempty"`
}

// RemovePolicy selects what happens to a removed container's children.
type RemovePolicy int

const (
	// PromoteChildren re-parents the removed node's children to its parent,
	// splicing them in at the removed node's position.
	PromoteChildren RemovePolicy = iota
	// RemoveSubtree discards the whole subtree rooted at the removed node.
	RemoveSubtree
)

// Counters accumulates run-scoped bookkeeping the engine records as it works.
// Plain commutative counters so aggregation is order independent.
type Counters struct {
	NodesDropped        int `json:"nodes_dropped"`         // cut by the cost governor
	DepthLimited        int `json:"depth_limited"`         // containers skipped at the depth ceiling
	ExpansionErrors     int `json:"expansion_errors"`      // containers whose expansion failed
	ContainersExpanded  int `json:"containers_expanded"`   // expansion attempts applied
	ServiceCalls        int `json:"service_calls"`         // total content service requests
	NodesPruned         int `json:"nodes_pruned"`          // removed by the round controller
	ValidationWarnings  int `json:"validation_warnings"`   // coerced or dropped candidates
	RoundsUsed          int `json:"rounds_used"`           // analyze/expand rounds consumed
	CandidatesGenerated int `json:"candidates_generated"`  // validated candidates before truncation
}

// Stats is the derived statistics snapshot of a scene.
type Stats struct {
	TotalItems      int `json:"total_items"`
	TotalContainers int `json:"total_containers"`
	MaxDepthReached int `json:"max_depth_reached"`
	Counters
}

// Scene is the full generated forest plus its narrative context and run
// counters. Not safe for concurrent mutation; the engine serializes writers.
type Scene struct {
	id      string
	name    string
	context Context

	roots []Node
	index map[string]Node

	counters Counters
}

// New creates an empty scene around the given narrative context.
func New(name string, ctx Context) *Scene {
	return &Scene{
		id:      NewID(),
		name:    name,
		context: ctx,
		index:   map[string]Node{},
	}
}

// ID returns the scene identifier.
func (s *Scene) ID() string { return s.id }

// Name returns the scene name.
func (s *Scene) Name() string { return s.name }

// Context returns the narrative context.
func (s *Scene) Context() Context { return s.context }

// Roots returns a copy of the ordered root node list.
func (s *Scene) Roots() []Node {
	out := make([]Node, len(s.roots))
	copy(out, s.roots)
	return out
}

// Lookup resolves a node by id against the maintained index.
func (s *Scene) Lookup(id string) (Node, bool) {
	n, ok := s.index[id]
	return n, ok
}

// NodeCount returns the number of nodes currently in the forest.
func (s *Scene) NodeCount() int { return len(s.index) }

// AddRoot appends a detached node as a new root (level 0).
func (s *Scene) AddRoot(n Node) {
	b := n.base()
	b.parent = nil
	b.level = 0
	s.roots = append(s.roots, n)
	s.indexSubtree(n)
}

// AppendChild attaches a detached node as the last child of parent, setting
// its level and back-reference and registering its subtree in the index.
func (s *Scene) AppendChild(parent *Container, child Node) {
	b := child.base()
	b.parent = parent
	b.level = parent.level + 1
	parent.children = append(parent.children, child)
	s.indexSubtree(child)
}

// MarkExpanded flips the container's expanded flag. The transition happens at
// most once; repeated calls are no-ops.
func (s *Scene) MarkExpanded(c *Container) {
	if !c.expanded {
		c.expanded = true
		s.counters.ContainersExpanded++
	}
}

// Remove detaches the node with the given id. With PromoteChildren the
// removed container's children are spliced into its place; with RemoveSubtree
// the whole subtree is discarded. Unknown ids are ignored and reported false.
func (s *Scene) Remove(id string, policy RemovePolicy) bool {
	n, ok := s.index[id]
	if !ok {
		return false
	}

	var replacement []Node
	if c, isContainer := n.(*Container); isContainer && policy == PromoteChildren {
		replacement = c.children
		c.children = nil
	}

	parent := n.Parent()
	if parent == nil {
		s.roots = splice(s.roots, n, replacement)
	} else {
		parent.children = splice(parent.children, n, replacement)
	}

	delete(s.index, n.ID())
	for _, child := range replacement {
		reattach(child, parent)
	}
	if policy == RemoveSubtree {
		if c, isContainer := n.(*Container); isContainer {
			s.unindexSubtree(c.children)
		}
	}
	s.counters.NodesPruned++
	return true
}

// UnexpandedContainers returns every container without an expansion attempt,
// in walk order.
func (s *Scene) UnexpandedContainers() []*Container {
	var out []*Container
	for w := s.Walk(DepthFirst); ; {
		n, _, ok := w.Next()
		if !ok {
			break
		}
		if c, isContainer := n.(*Container); isContainer && !c.expanded {
			out = append(out, c)
		}
	}
	return out
}

// Counters returns a pointer to the scene's run counters for the engine to
// record into. Not synchronized; only the mutation owner writes.
func (s *Scene) Counters() *Counters { return &s.counters }

// Stats walks the forest and returns the derived statistics combined with the
// accumulated counters.
func (s *Scene) Stats() Stats {
	st := Stats{Counters: s.counters}
	for w := s.Walk(DepthFirst); ; {
		n, depth, ok := w.Next()
		if !ok {
			break
		}
		if depth > st.MaxDepthReached {
			st.MaxDepthReached = depth
		}
		switch n.Type() {
		case NodeTypeItem:
			st.TotalItems++
		case NodeTypeContainer:
			st.TotalContainers++
		}
	}
	return st
}

func (s *Scene) indexSubtree(n Node) {
	s.index[n.ID()] = n
	if c, ok := n.(*Container); ok {
		for _, child := range c.children {
			s.indexSubtree(child)
		}
	}
}

func (s *Scene) unindexSubtree(nodes []Node) {
	for _, n := range nodes {
		delete(s.index, n.ID())
		if c, ok := n.(*Container); ok {
			s.unindexSubtree(c.children)
		}
	}
}

// reattach fixes parent pointers and renumbers levels for a promoted subtree.
func reattach(n Node, parent *Container) {
	b := n.base()
	b.parent = parent
	if parent == nil {
		b.level = 0
	} else {
		b.level = parent.level + 1
	}
	if c, ok := n.(*Container); ok {
		for _, child := range c.children {
			reattach(child, c)
		}
	}
}

// splice replaces the first occurrence of target in nodes with replacement,
// preserving order.
func splice(nodes []Node, target Node, replacement []Node) []Node {
	for i, n := range nodes {
		if n == target {
			out := make([]Node, 0, len(nodes)-1+len(replacement))
			out = append(out, nodes[:i]...)
			out = append(out, replacement...)
			out = append(out, nodes[i+1:]...)
			return out
		}
	}
	return nodes
}
