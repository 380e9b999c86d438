package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestScene() (*Scene, *Container, *Container, *Item) {
	sc := New("test", Context{Script: "a room", Requirement: "furnish it"})
	desk := NewContainer("desk", "a wooden desk", ContainerPhysical)
	sc.AddRoot(desk)

	drawer := NewContainer("drawer", "the top drawer", ContainerPhysical)
	sc.AppendChild(desk, drawer)

	key := NewItem("key", "a brass key")
	sc.AppendChild(drawer, key)
	return sc, desk, drawer, key
}

func TestAppendChild_MaintainsLevelsAndIndex(t *testing.T) {
	sc, desk, drawer, key := buildTestScene()

	assert.Equal(t, 0, desk.Level())
	assert.Equal(t, 1, drawer.Level())
	assert.Equal(t, 2, key.Level())
	assert.Nil(t, desk.Parent())
	assert.Same(t, desk, drawer.Parent())
	assert.Same(t, drawer, key.Parent())

	for _, n := range []Node{desk, drawer, key} {
		got, ok := sc.Lookup(n.ID())
		require.True(t, ok)
		assert.Same(t, n, got)
		if n.Parent() != nil {
			assert.Equal(t, n.Parent().Level()+1, n.Level())
		}
	}
	assert.Equal(t, 3, sc.NodeCount())
}

func TestAppendChild_PreservesInsertionOrder(t *testing.T) {
	sc := New("order", Context{})
	box := NewContainer("box", "", ContainerPhysical)
	sc.AddRoot(box)

	names := []string{"first", "second", "third"}
	for _, name := range names {
		sc.AppendChild(box, NewItem(name, ""))
	}

	children := box.Children()
	require.Len(t, children, 3)
	for i, name := range names {
		assert.Equal(t, name, children[i].Name())
	}
}

func TestWalk_DepthFirst(t *testing.T) {
	sc, _, _, _ := buildTestScene()
	sc.AddRoot(NewItem("lamp", "a desk lamp"))

	var names []string
	var depths []int
	for w := sc.Walk(DepthFirst); ; {
		n, depth, ok := w.Next()
		if !ok {
			break
		}
		names = append(names, n.Name())
		depths = append(depths, depth)
	}

	assert.Equal(t, []string{"desk", "drawer", "key", "lamp"}, names)
	assert.Equal(t, []int{0, 1, 2, 0}, depths)
}

func TestWalk_BreadthFirst(t *testing.T) {
	sc, desk, _, _ := buildTestScene()
	sc.AppendChild(desk, NewItem("pen", ""))

	var names []string
	for w := sc.Walk(BreadthFirst); ; {
		n, _, ok := w.Next()
		if !ok {
			break
		}
		names = append(names, n.Name())
	}

	assert.Equal(t, []string{"desk", "drawer", "pen", "key"}, names)
}

func TestWalk_Restartable(t *testing.T) {
	sc, _, _, _ := buildTestScene()

	count := func() int {
		n := 0
		for w := sc.Walk(DepthFirst); ; {
			if _, _, ok := w.Next(); !ok {
				return n
			}
			n++
		}
	}
	assert.Equal(t, 3, count())
	assert.Equal(t, 3, count())
}

func TestRemove_PromoteChildren(t *testing.T) {
	sc, desk, drawer, key := buildTestScene()
	sc.AppendChild(desk, NewItem("pen", ""))

	require.True(t, sc.Remove(drawer.ID(), PromoteChildren))

	// The key takes the drawer's position, one level up.
	children := desk.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "key", children[0].Name())
	assert.Equal(t, "pen", children[1].Name())
	assert.Equal(t, 1, key.Level())
	assert.Same(t, desk, key.Parent())

	_, ok := sc.Lookup(drawer.ID())
	assert.False(t, ok)
	_, ok = sc.Lookup(key.ID())
	assert.True(t, ok)
}

func TestRemove_Subtree(t *testing.T) {
	sc, desk, drawer, key := buildTestScene()

	require.True(t, sc.Remove(drawer.ID(), RemoveSubtree))

	assert.Empty(t, desk.Children())
	_, ok := sc.Lookup(drawer.ID())
	assert.False(t, ok)
	_, ok = sc.Lookup(key.ID())
	assert.False(t, ok)
	assert.Equal(t, 1, sc.NodeCount())
}

func TestRemove_UnknownIDIsNoOp(t *testing.T) {
	sc, _, _, _ := buildTestScene()
	assert.False(t, sc.Remove("nope", PromoteChildren))
	assert.Equal(t, 3, sc.NodeCount())
}

func TestRemove_Root(t *testing.T) {
	sc, desk, drawer, _ := buildTestScene()

	require.True(t, sc.Remove(desk.ID(), PromoteChildren))

	roots := sc.Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, "drawer", roots[0].Name())
	assert.Equal(t, 0, drawer.Level())
	assert.Nil(t, drawer.Parent())
	// Grandchild levels renumbered too.
	assert.Equal(t, 1, drawer.Children()[0].Level())
}

func TestMarkExpanded_TransitionsOnce(t *testing.T) {
	sc, desk, drawer, _ := buildTestScene()

	assert.Len(t, sc.UnexpandedContainers(), 2)

	sc.MarkExpanded(desk)
	sc.MarkExpanded(desk)
	assert.True(t, desk.Expanded())
	assert.Equal(t, 1, sc.Counters().ContainersExpanded)

	remaining := sc.UnexpandedContainers()
	require.Len(t, remaining, 1)
	assert.Same(t, drawer, remaining[0])
}

func TestStats(t *testing.T) {
	sc, _, _, _ := buildTestScene()
	sc.AddRoot(NewItem("lamp", ""))
	sc.Counters().NodesDropped = 2

	st := sc.Stats()
	assert.Equal(t, 2, st.TotalItems)
	assert.Equal(t, 2, st.TotalContainers)
	assert.Equal(t, 2, st.MaxDepthReached)
	assert.Equal(t, 2, st.NodesDropped)
}

func TestFullPath(t *testing.T) {
	_, _, _, key := buildTestScene()
	assert.Equal(t, "desk/drawer/key", FullPath(key))
	assert.Equal(t, []string{"desk", "drawer"}, AncestorNames(key))
}

func TestNewContainer_DefaultTheme(t *testing.T) {
	c := NewContainer("satchel", "", ContainerPhysical)
	assert.Equal(t, "contents of satchel", c.Theme())

	themed := NewContainer("satchel", "", ContainerPhysical, WithTheme("travel gear"))
	assert.Equal(t, "travel gear", themed.Theme())
}

func TestValidContainerType(t *testing.T) {
	assert.True(t, ValidContainerType(ContainerPhysical))
	assert.True(t, ValidContainerType(ContainerCharacter))
	assert.True(t, ValidContainerType(ContainerAbstract))
	assert.False(t, ValidContainerType(ContainerType("magical")))
	assert.False(t, ValidContainerType(ContainerType("")))
}
