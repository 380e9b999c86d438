// Package rounds drives the multi-round generation loop: analyze the forest,
// score its completeness, prune redundant nodes, select the containers most
// worth expanding and hand them to the expansion scheduler. Round boundaries
// are hard barriers; a new analysis never overlaps in-flight expansions.
//
// The loop terminates within the configured round cap for any service
// behavior, including malformed responses: a failed analysis degrades the
// round instead of aborting the run.
package rounds
