// Package logging provides a tiny abstraction over slog so the generation
// engine can depend on a minimal interface (Logger) while callers plug in any
// structured logger. It also offers a richer SceneGenLogger with contextual
// helpers (scene, run, component) and domain specific helpers for service
// calls, container expansions and rounds.
package logging
