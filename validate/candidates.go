package validate

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/scenegen/scene"
)

// Candidate is one validated node descriptor proposed by the content service.
type Candidate struct {
	Name          string
	Description   string
	NodeType      scene.NodeType
	ContainerType scene.ContainerType // containers only
	Theme         string              // containers only
	Position      string
	Attrs         scene.ItemAttrs
	ShouldExpand  bool
}

// Warning records a candidate that was coerced or dropped during validation.
// Warnings are informational; they never fail a batch.
type Warning struct {
	Index  int    // position in the raw node list
	Name   string // candidate name if present
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("candidate %d (%q): %s", w.Index, w.Name, w.Reason)
}

// Result carries the accepted candidates of one response, in response order,
// plus any validation warnings.
type Result struct {
	Candidates []Candidate
	Warnings   []Warning
}

// Candidates parses a raw expansion response into validated candidates.
// The recovery ladder (extract) is applied first; a *ParseError is returned
// only when no structured content can be recovered at all.
func Candidates(raw string) (Result, error) {
	doc, err := extract(raw)
	if err != nil {
		return Result{}, err
	}

	nodes := gjson.Get(doc, "nodes")
	if !nodes.Exists() {
		// Tolerate a bare array of node objects.
		if root := gjson.Parse(doc); root.IsArray() {
			nodes = root
		} else {
			return Result{}, newParseError(raw)
		}
	}
	if !nodes.IsArray() {
		return Result{}, newParseError(raw)
	}

	var res Result
	idx := -1
	nodes.ForEach(func(_, node gjson.Result) bool {
		idx++
		cand, warn, ok := validateCandidate(idx, node)
		res.Warnings = append(res.Warnings, warn...)
		if ok {
			res.Candidates = append(res.Candidates, cand)
		}
		return true
	})
	return res, nil
}

// validateCandidate checks one node object. A fatal field problem drops the
// candidate; a recoverable one coerces a default. Both produce warnings.
func validateCandidate(idx int, node gjson.Result) (Candidate, []Warning, bool) {
	var warns []Warning

	name := node.Get("name").String()
	if name == "" {
		warns = append(warns, Warning{Index: idx, Reason: "missing name, dropped"})
		return Candidate{}, warns, false
	}

	cand := Candidate{
		Name:        name,
		Description: node.Get("description").String(),
		Position:    node.Get("position").String(),
		Attrs: scene.ItemAttrs{
			Material:  node.Get("attributes.material").String(),
			Color:     node.Get("attributes.color").String(),
			Size:      node.Get("attributes.size").String(),
			Condition: node.Get("attributes.condition").String(),
		},
	}

	switch nt := scene.NodeType(node.Get("node_type").String()); nt {
	case scene.NodeTypeItem:
		cand.NodeType = scene.NodeTypeItem
	case scene.NodeTypeContainer:
		cand.NodeType = scene.NodeTypeContainer
		ct := scene.ContainerType(node.Get("container_type").String())
		if !scene.ValidContainerType(ct) {
			warns = append(warns, Warning{Index: idx, Name: name,
				Reason: fmt.Sprintf("container_type %q unknown, defaulting to physical", ct)})
			ct = scene.ContainerPhysical
		}
		cand.ContainerType = ct
		cand.Theme = node.Get("theme").String()
		se := node.Get("should_expand")
		cand.ShouldExpand = !se.Exists() || se.Bool()
	default:
		warns = append(warns, Warning{Index: idx, Name: name,
			Reason: fmt.Sprintf("node_type %q unknown, dropped", nt)})
		return Candidate{}, warns, false
	}

	return cand, warns, true
}
