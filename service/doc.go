// Package service defines the boundary to the external content generation
// backend. The engine consumes exactly two request shapes: Expand, which
// proposes child nodes for a container (or the initial root set), and
// Analyze, which scores the completeness of the current forest and suggests
// pruning and further expansion.
//
// Adapters return raw structured text; parsing and repair happen in the
// validate package so the engine never assumes a well-formed response.
// Concrete backends live in the openai and anthropic subpackages.
package service
