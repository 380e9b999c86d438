package scene

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NodeType discriminates the two node variants.
type NodeType string

const (
	// NodeTypeItem marks a terminal, non-expandable element.
	NodeTypeItem NodeType = "item"
	// NodeTypeContainer marks an element that may hold children.
	NodeTypeContainer NodeType = "container"
)

// ContainerType classifies what kind of thing a container is.
type ContainerType string

const (
	// ContainerPhysical covers furniture, rooms, boxes and the like.
	ContainerPhysical ContainerType = "physical"
	// ContainerCharacter covers people, who can carry and wear things.
	ContainerCharacter ContainerType = "character"
	// ContainerAbstract covers ideas, plans and systems.
	ContainerAbstract ContainerType = "abstract"
)

// ValidContainerType reports whether t is one of the known container types.
func ValidContainerType(t ContainerType) bool {
	switch t {
	case ContainerPhysical, ContainerCharacter, ContainerAbstract:
		return true
	}
	return false
}

// Node is the common read surface of items and containers. Structural fields
// (level, parent) are maintained by the Scene; constructors leave them zero.
type Node interface {
	ID() string
	Name() string
	Description() string
	Level() int
	Type() NodeType
	Parent() *Container
	Position() string
	CreatedAt() time.Time

	base() *baseNode
}

type baseNode struct {
	id          string
	name        string
	description string
	position    string
	level       int
	parent      *Container
	createdAt   time.Time
}

func newBaseNode(name, description string) baseNode {
	return baseNode{
		id:          NewID(),
		name:        name,
		description: description,
		createdAt:   time.Now(),
	}
}

// NewID returns a short opaque node identifier.
func NewID() string { return uuid.NewString()[:8] }

func (b *baseNode) ID() string           { return b.id }
func (b *baseNode) Name() string         { return b.name }
func (b *baseNode) Description() string  { return b.description }
func (b *baseNode) Level() int           { return b.level }
func (b *baseNode) Parent() *Container   { return b.parent }
func (b *baseNode) Position() string     { return b.position }
func (b *baseNode) CreatedAt() time.Time { return b.createdAt }

func (b *baseNode) base() *baseNode { return b }

// FullPath returns the ancestor names joined root-first with "/", ending in
// the node's own name.
func FullPath(n Node) string {
	names := AncestorNames(n)
	names = append(names, n.Name())
	return strings.Join(names, "/")
}

// AncestorNames returns the names of the node's ancestors, root first. The
// node itself is excluded.
func AncestorNames(n Node) []string {
	var names []string
	for p := n.Parent(); p != nil; p = p.Parent() {
		names = append(names, p.Name())
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names
}

// ItemAttrs carries the descriptive attributes of an item.
type ItemAttrs struct {
	Material  string `json:"material,omitempty"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
	Condition string `json:"condition,omitempty"`
}

// Item is a terminal node.
type Item struct {
	baseNode
	attrs ItemAttrs
}

// ItemOption customizes item construction.
type ItemOption func(*Item)

// WithItemAttrs sets the descriptive attributes of the item.
func WithItemAttrs(attrs ItemAttrs) ItemOption {
	return func(i *Item) { i.attrs = attrs }
}

// WithItemPosition sets the free-text position of the item.
func WithItemPosition(pos string) ItemOption {
	return func(i *Item) { i.position = pos }
}

// NewItem creates a detached item node. Level and parent are assigned when
// the node is attached to a scene.
func NewItem(name, description string, opts ...ItemOption) *Item {
	it := &Item{baseNode: newBaseNode(name, description)}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// Type implements Node.
func (i *Item) Type() NodeType { return NodeTypeItem }

// Attrs returns the item's descriptive attributes.
func (i *Item) Attrs() ItemAttrs { return i.attrs }

// Container is a node that owns an ordered list of children and may be
// expanded exactly once by the scheduler.
type Container struct {
	baseNode
	containerType ContainerType
	theme         string
	children      []Node
	expanded      bool
}

// ContainerOption customizes container construction.
type ContainerOption func(*Container)

// WithTheme sets the short theme string guiding the container's expansion.
func WithTheme(theme string) ContainerOption {
	return func(c *Container) { c.theme = theme }
}

// WithContainerPosition sets the free-text position of the container.
func WithContainerPosition(pos string) ContainerOption {
	return func(c *Container) { c.position = pos }
}

// NewContainer creates a detached, unexpanded container node.
func NewContainer(name, description string, containerType ContainerType, opts ...ContainerOption) *Container {
	c := &Container{
		baseNode:      newBaseNode(name, description),
		containerType: containerType,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.theme == "" {
		c.theme = "contents of " + name
	}
	return c
}

// Type implements Node.
func (c *Container) Type() NodeType { return NodeTypeContainer }

// ContainerType returns the container classification.
func (c *Container) ContainerType() ContainerType { return c.containerType }

// Theme returns the short string guiding this container's expansion prompt.
func (c *Container) Theme() string { return c.theme }

// Expanded reports whether an expansion attempt (successful or not) has been
// made for this container.
func (c *Container) Expanded() bool { return c.expanded }

// Children returns a copy of the ordered child list.
func (c *Container) Children() []Node {
	out := make([]Node, len(c.children))
	copy(out, c.children)
	return out
}

// ChildCount returns the number of direct children.
func (c *Container) ChildCount() int { return len(c.children) }
