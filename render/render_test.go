package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/hupe1980/scenegen/scene"
)

func buildRenderScene() *scene.Scene {
	sc := scene.New("ancient study", scene.Context{
		Script:      "a scholar's study at night",
		Requirement: "fill the room",
		Era:         "song dynasty",
	})

	desk := scene.NewContainer("desk", "a worn writing desk", scene.ContainerPhysical)
	sc.AddRoot(desk)
	sc.AppendChild(desk, scene.NewItem("brush", "a writing brush",
		scene.WithItemAttrs(scene.ItemAttrs{Material: "bamboo", Condition: "worn"}),
		scene.WithItemPosition("on the desk")))
	sc.AppendChild(desk, scene.NewItem("inkstone", ""))
	sc.MarkExpanded(desk)

	sc.AddRoot(scene.NewItem("rug", "a faded rug"))
	return sc
}

func TestJSON(t *testing.T) {
	sc := buildRenderScene()

	data, err := JSON(sc)
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(data))

	doc := gjson.ParseBytes(data)
	assert.Equal(t, "ancient study", doc.Get("scene_name").String())
	assert.Equal(t, sc.ID(), doc.Get("scene_id").String())
	assert.Equal(t, "song dynasty", doc.Get("context.era").String())

	roots := doc.Get("root_nodes")
	require.Equal(t, int64(2), roots.Get("#").Int())
	desk := roots.Get("0")
	assert.Equal(t, "desk", desk.Get("name").String())
	assert.Equal(t, "container", desk.Get("node_type").String())
	assert.Equal(t, "physical", desk.Get("container_type").String())
	assert.Equal(t, int64(2), desk.Get("children.#").Int())

	brush := desk.Get("children.0")
	assert.Equal(t, int64(1), brush.Get("level").Int())
	assert.Equal(t, "bamboo", brush.Get("attributes.material").String())
	assert.Equal(t, "on the desk", brush.Get("position").String())

	// Attribute-less items omit the attributes object entirely.
	assert.False(t, desk.Get("children.1.attributes").Exists())
	assert.False(t, roots.Get("1.container_type").Exists())

	stats := doc.Get("statistics")
	assert.Equal(t, int64(3), stats.Get("total_items").Int())
	assert.Equal(t, int64(1), stats.Get("total_containers").Int())
	assert.Equal(t, int64(1), stats.Get("max_depth_reached").Int())
}

func TestMarkdown(t *testing.T) {
	md := Markdown(buildRenderScene())

	assert.Contains(t, md, "# Scene: ancient study")
	assert.Contains(t, md, "- **Era**: song dynasty")
	assert.Contains(t, md, "- **desk** [container/physical]")
	assert.Contains(t, md, "  - **brush** [item]")
	assert.Contains(t, md, "- Items: 3")
	assert.Contains(t, md, "- Containers: 1")

	// Structure precedes statistics.
	assert.Less(t, strings.Index(md, "## Structure"), strings.Index(md, "## Statistics"))
}

func TestMarkdown_OmitsEmptyEra(t *testing.T) {
	sc := scene.New("bare", scene.Context{Script: "s", Requirement: "r"})
	assert.NotContains(t, Markdown(sc), "**Era**")
}

func TestTree(t *testing.T) {
	var b strings.Builder
	Tree(&b, buildRenderScene())
	out := b.String()

	assert.Contains(t, out, "Scene: ancient study")
	assert.Contains(t, out, "- desk [container/physical]")
	assert.Contains(t, out, "  - brush [item]")
	assert.Contains(t, out, "items=3 containers=1 max_depth=1")
}
