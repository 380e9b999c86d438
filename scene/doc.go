// Package scene defines the hierarchical scene data model: a forest of item
// and container nodes plus the structural primitives (append, remove, walk,
// lookup-by-id) the generation engine mutates it through.
//
// The package performs no locking of its own; the expansion scheduler and the
// round controller serialize all mutation through a single owner.
package scene
