// Package testutil provides small builders for raw content service payloads
// used across the engine's tests.
package testutil

import (
	"encoding/json"
	"fmt"
)

// NodeSpec describes one candidate node in a canned expansion response.
type NodeSpec struct {
	Name          string `json:"name"`
	NodeType      string `json:"node_type"`
	ContainerType string `json:"container_type,omitempty"`
	Description   string `json:"description,omitempty"`
	Position      string `json:"position,omitempty"`
}

// Item builds an item node spec.
func Item(name string) NodeSpec {
	return NodeSpec{Name: name, NodeType: "item"}
}

// Container builds a container node spec.
func Container(name, containerType string) NodeSpec {
	return NodeSpec{Name: name, NodeType: "container", ContainerType: containerType}
}

// NodesResponse builds a well-formed raw expansion payload.
func NodesResponse(specs ...NodeSpec) string {
	if specs == nil {
		specs = []NodeSpec{}
	}
	data, err := json.Marshal(map[string]any{"nodes": specs})
	if err != nil {
		panic(err)
	}
	return string(data)
}

// FencedNodesResponse wraps a nodes payload in markdown fences with chatter,
// the way chat models often answer.
func FencedNodesResponse(specs ...NodeSpec) string {
	return fmt.Sprintf("Here is the scene:\n```json\n%s\n```\nLet me know if you need more.", NodesResponse(specs...))
}

// AnalyzeResponse builds a well-formed raw analyze payload.
func AnalyzeResponse(score int, redundant, toExpand []string) string {
	if redundant == nil {
		redundant = []string{}
	}
	if toExpand == nil {
		toExpand = []string{}
	}
	data, err := json.Marshal(map[string]any{
		"completeness_score":   score,
		"redundant_node_ids":   redundant,
		"containers_to_expand": toExpand,
	})
	if err != nil {
		panic(err)
	}
	return string(data)
}
