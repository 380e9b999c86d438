// Package expand implements the expansion scheduler: it dispatches container
// expansions against the content service under a bounded concurrency limit,
// validates the responses and applies the surviving candidates to the scene
// tree.
//
// Workers only build requests, call the service and validate; every tree and
// budget mutation happens on the single collector goroutine inside ExpandAll,
// so the scene never sees concurrent writers. A failed container ends with
// zero children and an error record; it never aborts its siblings or the
// overall call.
package expand
