package service

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/hupe1980/scenegen/scene"
)

// SystemPrompt instructs the model how to classify and emit scene nodes.
// Adapters send it as the system message for both Expand and Analyze.
const SystemPrompt = `You are a professional scene designer. Given a script and
a scene requirement you propose the items and containers that make up the scene.

Node kinds:
1. "item": a terminal element that holds nothing else (an apple, a cup, a key).
2. "container": an element that may hold other nodes.
   - "physical": furniture, rooms, boxes, shelves.
   - "character": a person, who can carry items and wear clothing.
   - "abstract": an idea, plan, system or concept.

Rules:
- Anything that could plausibly hold other elements is a container.
- Characters are containers by default.
- Small objects are items.
- Respect the era, location and atmosphere of the scene.

Respond with JSON only, no surrounding prose:
{
  "nodes": [
    {
      "name": "...",
      "node_type": "item or container",
      "container_type": "physical/character/abstract (containers only)",
      "description": "...",
      "position": "...",
      "attributes": {"material": "...", "color": "...", "size": "...", "condition": "..."},
      "should_expand": true
    }
  ]
}`

var promptTmpl = template.Must(template.New("prompts").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`
{{define "context" -}}
[Script] {{.Script}}
[Requirement] {{.Requirement}}
{{- if .Era}}
[Era] {{.Era}}{{end}}
{{- if .Location}}
[Location] {{.Location}}{{end}}
{{- if .Atmosphere}}
[Atmosphere] {{.Atmosphere}}{{end}}
{{- if .Style}}
[Style] {{.Style}}{{end}}
{{- end}}

{{define "initial" -}}
Propose the main elements of the following scene.

{{template "context" .Scene}}

Generate the principal items and containers of the scene. Mark containers that
deserve further expansion with "should_expand". Output JSON only.
{{- end}}

{{define "expand" -}}
Expand the contents of the following container.

## Container
- Name: {{.ContainerName}}
- Kind: {{.ContainerType}}
- Description: {{.Description}}
- Depth: {{.Level}}
- Theme: {{.Theme}}
{{- if .Ancestors}}
- Path: {{join .Ancestors " > "}}{{end}}
{{- if .Siblings}}
- Already present (do not repeat): {{join .Siblings ", "}}{{end}}

## Scene
{{template "context" .Scene}}

## Guidance
1. Stay consistent with the container kind, theme and scene era.
2. At depth 4 or deeper prefer items over further containers.
3. If the container's contents do not matter to the scene, return an empty
   node list.

Output JSON only.
{{- end}}

{{define "analyze" -}}
Review the scene below and judge how complete it is (round {{.Round}}).

## Scene
{{template "context" .Scene}}

## Current structure (id: name [kind])
{{.Snapshot}}

Respond with JSON only:
{
  "completeness_score": 0-100,
  "redundant_node_ids": ["ids of nodes that duplicate or add nothing"],
  "containers_to_expand": ["ids of containers most worth expanding next"],
  "suggestions": ["short free-text notes"]
}
{{- end}}
`))

func renderPrompt(name string, data any) string {
	var buf bytes.Buffer
	if err := promptTmpl.ExecuteTemplate(&buf, name, data); err != nil {
		// Templates are package constants; a failure here is a programming error.
		panic(err)
	}
	return strings.TrimSpace(buf.String())
}

// ExpandPrompt renders the user message for an expansion request. Initial
// requests (empty container name) use the root generation wording.
func ExpandPrompt(req ExpandRequest) string {
	if req.Initial() {
		return renderPrompt("initial", req)
	}
	return renderPrompt("expand", req)
}

// AnalyzePrompt renders the user message for an analyze request.
func AnalyzePrompt(req AnalyzeRequest) string {
	return renderPrompt("analyze", req)
}

// ContextLines renders the narrative context block on its own, for logging
// and snapshot headers.
func ContextLines(ctx scene.Context) string {
	return renderPrompt("context", ctx)
}
