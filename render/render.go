// Package render serializes a finished scene for persistence and display:
// the JSON document schema, a Markdown outline and a text tree. It only reads
// the scene; it is outside the generation core.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/scenegen/scene"
)

type nodeJSON struct {
	Name          string           `json:"name"`
	NodeType      scene.NodeType   `json:"node_type"`
	ContainerType string           `json:"container_type,omitempty"`
	Description   string           `json:"description"`
	Level         int              `json:"level"`
	Position      string           `json:"position,omitempty"`
	Attributes    *scene.ItemAttrs `json:"attributes,omitempty"`
	Children      []nodeJSON       `json:"children,omitempty"`
}

type statsJSON struct {
	TotalItems      int `json:"total_items"`
	TotalContainers int `json:"total_containers"`
	MaxDepthReached int `json:"max_depth_reached"`
}

type sceneJSON struct {
	SceneID    string        `json:"scene_id"`
	SceneName  string        `json:"scene_name"`
	Context    scene.Context `json:"context"`
	RootNodes  []nodeJSON    `json:"root_nodes"`
	Statistics statsJSON     `json:"statistics"`
}

// JSON renders the persisted scene document.
func JSON(sc *scene.Scene) ([]byte, error) {
	st := sc.Stats()
	doc := sceneJSON{
		SceneID:   sc.ID(),
		SceneName: sc.Name(),
		Context:   sc.Context(),
		Statistics: statsJSON{
			TotalItems:      st.TotalItems,
			TotalContainers: st.TotalContainers,
			MaxDepthReached: st.MaxDepthReached,
		},
	}
	for _, n := range sc.Roots() {
		doc.RootNodes = append(doc.RootNodes, buildNodeJSON(n))
	}
	return json.MarshalIndent(doc, "", "  ")
}

func buildNodeJSON(n scene.Node) nodeJSON {
	out := nodeJSON{
		Name:        n.Name(),
		NodeType:    n.Type(),
		Description: n.Description(),
		Level:       n.Level(),
		Position:    n.Position(),
	}
	switch v := n.(type) {
	case *scene.Item:
		if attrs := v.Attrs(); attrs != (scene.ItemAttrs{}) {
			out.Attributes = &attrs
		}
	case *scene.Container:
		out.ContainerType = string(v.ContainerType())
		for _, child := range v.Children() {
			out.Children = append(out.Children, buildNodeJSON(child))
		}
	}
	return out
}

// Markdown renders the scene as a nested Markdown outline.
func Markdown(sc *scene.Scene) string {
	st := sc.Stats()
	ctx := sc.Context()

	var b strings.Builder
	fmt.Fprintf(&b, "# Scene: %s\n\n", sc.Name())
	b.WriteString("## Context\n\n")
	fmt.Fprintf(&b, "- **Script**: %s\n", ctx.Script)
	fmt.Fprintf(&b, "- **Requirement**: %s\n", ctx.Requirement)
	if ctx.Era != "" {
		fmt.Fprintf(&b, "- **Era**: %s\n", ctx.Era)
	}
	b.WriteString("\n## Structure\n\n")
	for _, n := range sc.Roots() {
		writeMarkdownNode(&b, n, 0)
	}
	b.WriteString("\n## Statistics\n\n")
	fmt.Fprintf(&b, "- Items: %d\n", st.TotalItems)
	fmt.Fprintf(&b, "- Containers: %d\n", st.TotalContainers)
	fmt.Fprintf(&b, "- Max depth: %d\n", st.MaxDepthReached)
	return b.String()
}

func writeMarkdownNode(b *strings.Builder, n scene.Node, indent int) {
	pad := strings.Repeat("  ", indent)
	switch v := n.(type) {
	case *scene.Item:
		fmt.Fprintf(b, "%s- **%s** [item]\n", pad, n.Name())
		if n.Description() != "" {
			fmt.Fprintf(b, "%s  - %s\n", pad, n.Description())
		}
	case *scene.Container:
		fmt.Fprintf(b, "%s- **%s** [container/%s]\n", pad, n.Name(), v.ContainerType())
		if n.Description() != "" {
			fmt.Fprintf(b, "%s  - %s\n", pad, n.Description())
		}
		for _, child := range v.Children() {
			writeMarkdownNode(b, child, indent+1)
		}
	}
}

// Tree writes a human-readable tree of the scene to w.
func Tree(w io.Writer, sc *scene.Scene) {
	st := sc.Stats()
	fmt.Fprintf(w, "Scene: %s\n", sc.Name())
	for _, n := range sc.Roots() {
		writeTreeNode(w, n, "")
	}
	fmt.Fprintf(w, "\nitems=%d containers=%d max_depth=%d dropped=%d errors=%d\n",
		st.TotalItems, st.TotalContainers, st.MaxDepthReached, st.NodesDropped, st.ExpansionErrors)
}

func writeTreeNode(w io.Writer, n scene.Node, prefix string) {
	label := string(n.Type())
	var children []scene.Node
	if c, ok := n.(*scene.Container); ok {
		label = fmt.Sprintf("container/%s", c.ContainerType())
		children = c.Children()
	}
	fmt.Fprintf(w, "%s- %s [%s]\n", prefix, n.Name(), label)
	for _, child := range children {
		writeTreeNode(w, child, prefix+"  ")
	}
}
