package rounds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/scenegen/expand"
	"github.com/hupe1980/scenegen/governor"
	"github.com/hupe1980/scenegen/logging"
	"github.com/hupe1980/scenegen/scene"
	"github.com/hupe1980/scenegen/service"
	"github.com/hupe1980/scenegen/validate"
)

// State enumerates the controller's state machine.
type State int

const (
	// StateInit runs the initial root generation (round 0).
	StateInit State = iota
	// StateAnalyze requests a round report for the current forest.
	StateAnalyze
	// StateScore compares the completeness score to the threshold.
	StateScore
	// StatePrune removes redundant nodes named by the report.
	StatePrune
	// StateSelect picks the containers to expand this round.
	StateSelect
	// StateExpand dispatches the selected containers to the scheduler.
	StateExpand
	// StateDone is terminal.
	StateDone
)

// StopReason explains why the loop reached StateDone.
type StopReason string

const (
	// StopThresholdMet means the completeness score reached the threshold.
	StopThresholdMet StopReason = "threshold_met"
	// StopNothingToExpand means no eligible container remained.
	StopNothingToExpand StopReason = "nothing_to_expand"
	// StopMaxRounds means the round cap was consumed.
	StopMaxRounds StopReason = "max_rounds"
	// StopBudgetExhausted means the cost governor ran out of node budget.
	StopBudgetExhausted StopReason = "budget_exhausted"
	// StopStagnant means consecutive rounds created too few new nodes.
	StopStagnant StopReason = "stagnant"
	// StopCancelled means the caller's context ended the run.
	StopCancelled StopReason = "cancelled"
)

// Options configures a Controller.
type Options struct {
	// MaxRounds caps the analyze/expand iterations after round 0.
	MaxRounds int
	// CompletenessThreshold is the 0-100 score at which generation stops.
	CompletenessThreshold int
	// MinNewNodesPerRound is the progress floor: a round creating fewer new
	// nodes counts as stagnant, and two consecutive stagnant rounds stop the
	// loop early.
	MinNewNodesPerRound int
	// PrunePolicy selects single-node removal (children promoted) or whole
	// subtree removal for redundant containers.
	PrunePolicy scene.RemovePolicy
	// AnalyzeTimeout bounds each analyze call.
	AnalyzeTimeout time.Duration
	// Logger receives per-round diagnostics.
	Logger logging.Logger
}

// Controller owns the round loop for one generation run.
type Controller struct {
	svc   service.Service
	sched *expand.Scheduler
	gov   *governor.Governor
	opts  Options
}

// NewController wires a controller to a service, scheduler and governor.
func NewController(svc service.Service, sched *expand.Scheduler, gov *governor.Governor, optFns ...func(o *Options)) *Controller {
	opts := Options{
		MaxRounds:             5,
		CompletenessThreshold: 90,
		MinNewNodesPerRound:   3,
		PrunePolicy:           scene.PromoteChildren,
		AnalyzeTimeout:        60 * time.Second,
		Logger:                logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Controller{svc: svc, sched: sched, gov: gov, opts: opts}
}

// Summary aggregates what the loop did.
type Summary struct {
	// Rounds counts the analyze/expand iterations after the initial
	// generation. A run whose second analysis meets the threshold reports 2,
	// even though the expansion work of that round never happened.
	Rounds       int
	FinalScore   int
	NodesCreated int
	NodesPruned  int
	ServiceCalls int
	Errors       int
	StoppedBy    StopReason
}

// Run executes the full loop: INIT then up to MaxRounds iterations of
// ANALYZE, SCORE, PRUNE, SELECT, EXPAND. It always returns a summary; no
// single round's failure aborts the run.
func (c *Controller) Run(ctx context.Context, sc *scene.Scene) Summary {
	var sum Summary

	// Nodes the caller placed in the scene before the run count against the
	// budget; they never went through Reserve.
	c.gov.Track(sc.NodeCount())

	// INIT: round 0 produces the root node set from the narrative context.
	initReport := c.sched.ExpandRoots(ctx, sc)
	sum.NodesCreated += initReport.Created
	sum.ServiceCalls += initReport.Calls
	sum.Errors += len(initReport.Errors)

	depthSkipped := map[string]bool{}
	stagnantRounds := 0

	for round := 1; round <= c.opts.MaxRounds; round++ {
		if ctx.Err() != nil {
			sum.StoppedBy = StopCancelled
			return sum
		}
		if c.gov.Exhausted() {
			sum.StoppedBy = StopBudgetExhausted
			return sum
		}

		sum.Rounds = round
		sc.Counters().RoundsUsed = round

		// ANALYZE. A malformed or failed report degrades the round: no
		// pruning, select everything still eligible.
		report, analyzeErr := c.analyze(ctx, sc, round)
		sum.ServiceCalls++
		if analyzeErr != nil {
			sum.Errors++
			c.opts.Logger.Warn("analysis failed, degrading round", "round", round, "err", analyzeErr)
		}

		// SCORE.
		sum.FinalScore = report.CompletenessScore
		if analyzeErr == nil && report.CompletenessScore >= c.opts.CompletenessThreshold {
			sum.StoppedBy = StopThresholdMet
			c.opts.Logger.Info("completeness threshold met", "round", round, "score", report.CompletenessScore)
			return sum
		}

		// PRUNE. Unknown or already-removed ids are ignored.
		pruned := 0
		for _, id := range report.RedundantNodeIDs {
			if sc.Remove(id, c.opts.PrunePolicy) {
				pruned++
			}
		}
		sum.NodesPruned += pruned

		// SELECT: intersect the report's suggestions with containers that are
		// still unexpanded and below the depth ceiling.
		selected := c.selectContainers(sc, report, analyzeErr != nil, depthSkipped)
		if len(selected) == 0 {
			sum.StoppedBy = StopNothingToExpand
			return sum
		}

		// EXPAND: hard barrier, returns only when every worker has finished.
		r := c.sched.ExpandAll(ctx, sc, selected)
		sum.NodesCreated += r.Created
		sum.ServiceCalls += r.Calls
		sum.Errors += len(r.Errors)
		for _, o := range r.Outcomes {
			if o.DepthLimited {
				depthSkipped[o.ContainerID] = true
			}
		}

		c.opts.Logger.Info("round completed",
			"round", round,
			"score", report.CompletenessScore,
			"created", r.Created,
			"pruned", pruned)

		if r.Created < c.opts.MinNewNodesPerRound {
			stagnantRounds++
			if stagnantRounds >= 2 {
				sum.StoppedBy = StopStagnant
				return sum
			}
		} else {
			stagnantRounds = 0
		}
	}

	sum.StoppedBy = StopMaxRounds
	return sum
}

// analyze snapshots the forest and requests a round report.
func (c *Controller) analyze(ctx context.Context, sc *scene.Scene, round int) (validate.RoundReport, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.opts.AnalyzeTimeout)
	defer cancel()

	raw, err := c.svc.Analyze(callCtx, service.AnalyzeRequest{
		Scene:    sc.Context(),
		Snapshot: Snapshot(sc),
		Round:    round,
	})
	if err != nil {
		return validate.RoundReport{}, err
	}
	return validate.Report(raw)
}

// selectContainers implements SELECT. In a degraded round (failed analysis)
// every eligible container is selected so the run keeps making progress.
func (c *Controller) selectContainers(sc *scene.Scene, report validate.RoundReport, degraded bool, depthSkipped map[string]bool) []*scene.Container {
	eligible := func(cont *scene.Container) bool {
		if cont.Expanded() || depthSkipped[cont.ID()] {
			return false
		}
		if !c.gov.DepthAllowed(cont.Level()) {
			if !depthSkipped[cont.ID()] {
				depthSkipped[cont.ID()] = true
				sc.Counters().DepthLimited++
			}
			return false
		}
		return true
	}

	if degraded {
		var out []*scene.Container
		for _, cont := range sc.UnexpandedContainers() {
			if eligible(cont) {
				out = append(out, cont)
			}
		}
		return out
	}

	var out []*scene.Container
	for _, id := range report.ContainersToExpand {
		n, ok := sc.Lookup(id)
		if !ok {
			continue
		}
		cont, isContainer := n.(*scene.Container)
		if isContainer && eligible(cont) {
			out = append(out, cont)
		}
	}
	return out
}

// Snapshot renders the compact forest outline fed to Analyze: one node per
// line, indented by depth, with id, name and kind.
func Snapshot(sc *scene.Scene) string {
	var b strings.Builder
	for w := sc.Walk(scene.DepthFirst); ; {
		n, depth, ok := w.Next()
		if !ok {
			break
		}
		b.WriteString(strings.Repeat("  ", depth))
		kind := string(n.Type())
		if cont, isContainer := n.(*scene.Container); isContainer {
			kind = fmt.Sprintf("%s/%s", n.Type(), cont.ContainerType())
			if !cont.Expanded() {
				kind += ", unexpanded"
			}
		}
		fmt.Fprintf(&b, "%s: %s [%s]\n", n.ID(), n.Name(), kind)
	}
	return b.String()
}
