// Package scenegen provides a high-level façade over the generation engine:
// the scene tree model, the content service adapters, the bounded-concurrency
// expansion scheduler, the cost governor and the round controller. Most
// applications interact with this package by:
//  1. Creating a Generator via New() around a service implementation
//  2. Calling Generate (recursive mode) or GenerateWithRounds (round mode)
//  3. Serializing the returned scene with the render package
//
// All defaults are safe for local use; production callers typically supply a
// structured logger and tune the concurrency and budget ceilings.
package scenegen

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/scenegen/expand"
	"github.com/hupe1980/scenegen/governor"
	"github.com/hupe1980/scenegen/logging"
	"github.com/hupe1980/scenegen/rounds"
	"github.com/hupe1980/scenegen/scene"
	"github.com/hupe1980/scenegen/service"
)

// ConfigurationError reports invalid generator parameters. It is the only
// fatal error surface: it is raised before any generation work starts.
type ConfigurationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// Options configures a Generator.
type Options struct {
	// MaxDepth is the deepest level at which containers are still expanded.
	MaxDepth int
	// MaxTotalNodes is the cost governor's node ceiling (0 = unlimited).
	MaxTotalNodes int
	// Concurrency bounds in-flight service calls during expansion.
	Concurrency int
	// MaxRetries bounds retries of a retryable service failure per container.
	MaxRetries int
	// CallTimeout bounds each individual service call.
	CallTimeout time.Duration
	// MaxNodesPerContainer truncates each expansion's candidate list.
	MaxNodesPerContainer int

	// MaxRounds, CompletenessThreshold and MinNewNodesPerRound apply to
	// GenerateWithRounds only.
	MaxRounds             int
	CompletenessThreshold int
	MinNewNodesPerRound   int
	// PrunePolicy selects how redundant nodes are removed in round mode.
	PrunePolicy scene.RemovePolicy

	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// Generator produces scenes from narrative contexts. It is safe to reuse for
// multiple runs; every run gets its own governor, scheduler and controller so
// no statistics leak between generations.
type Generator struct {
	svc  service.Service
	opts Options
}

// New validates options and creates a Generator. The returned error, if any,
// is a *ConfigurationError.
func New(svc service.Service, optFns ...func(o *Options)) (*Generator, error) {
	opts := Options{
		MaxDepth:              5,
		MaxTotalNodes:         200,
		Concurrency:           30,
		MaxRetries:            2,
		CallTimeout:           60 * time.Second,
		MaxNodesPerContainer:  20,
		MaxRounds:             5,
		CompletenessThreshold: 90,
		MinNewNodesPerRound:   3,
		PrunePolicy:           scene.PromoteChildren,
		Logger:                logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if svc == nil {
		return nil, &ConfigurationError{Field: "service", Reason: "must not be nil"}
	}
	if opts.Concurrency <= 0 {
		return nil, &ConfigurationError{Field: "Concurrency", Reason: "must be positive"}
	}
	if opts.MaxDepth < 0 {
		return nil, &ConfigurationError{Field: "MaxDepth", Reason: "must not be negative"}
	}
	if opts.MaxTotalNodes < 0 {
		return nil, &ConfigurationError{Field: "MaxTotalNodes", Reason: "must not be negative"}
	}
	if opts.MaxRetries < 0 {
		return nil, &ConfigurationError{Field: "MaxRetries", Reason: "must not be negative"}
	}
	if opts.MaxRounds <= 0 {
		return nil, &ConfigurationError{Field: "MaxRounds", Reason: "must be positive"}
	}
	if opts.CompletenessThreshold < 0 || opts.CompletenessThreshold > 100 {
		return nil, &ConfigurationError{Field: "CompletenessThreshold", Reason: "must be within 0..100"}
	}
	if opts.CallTimeout <= 0 {
		return nil, &ConfigurationError{Field: "CallTimeout", Reason: "must be positive"}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Generator{svc: svc, opts: opts}, nil
}

// newRun builds the per-run machinery: a fresh governor and scheduler.
func (g *Generator) newRun() (*governor.Governor, *expand.Scheduler) {
	gov := governor.New(g.opts.MaxTotalNodes, g.opts.MaxDepth)
	sched := expand.NewScheduler(g.svc, gov, func(o *expand.Options) {
		o.Concurrency = g.opts.Concurrency
		o.MaxRetries = g.opts.MaxRetries
		o.CallTimeout = g.opts.CallTimeout
		o.MaxNodesPerContainer = g.opts.MaxNodesPerContainer
		o.Logger = g.opts.Logger
	})
	return gov, sched
}

// Generate produces a scene in recursive mode: the initial root set is
// generated, then every unexpanded container is expanded wave by wave until
// none below the depth ceiling remain or the node budget runs out.
//
// Generation always returns a scene, possibly smaller or shallower than
// requested; per-container failures surface in the scene's statistics, not as
// an error. The returned error is non-nil only when ctx ended the run early,
// and even then the scene holds everything generated so far.
func (g *Generator) Generate(ctx context.Context, sceneName string, narrative scene.Context) (*scene.Scene, error) {
	sc := scene.New(sceneName, narrative)
	_, sched := g.newRun()

	report := sched.ExpandRoots(ctx, sc)
	g.opts.Logger.Info("initial generation completed", "roots", report.Created, "errors", len(report.Errors))

	if g.opts.MaxDepth > 0 {
		sched.ExpandScene(ctx, sc)
	}
	return sc, ctx.Err()
}

// GenerateWithRounds produces a scene in round mode: after the initial
// generation the round controller repeatedly analyzes, scores, prunes and
// expands until the completeness threshold, the round cap or the node budget
// is reached. The summary reports what the loop did.
func (g *Generator) GenerateWithRounds(ctx context.Context, sceneName string, narrative scene.Context) (*scene.Scene, rounds.Summary, error) {
	sc := scene.New(sceneName, narrative)
	gov, sched := g.newRun()

	ctrl := rounds.NewController(g.svc, sched, gov, func(o *rounds.Options) {
		o.MaxRounds = g.opts.MaxRounds
		o.CompletenessThreshold = g.opts.CompletenessThreshold
		o.MinNewNodesPerRound = g.opts.MinNewNodesPerRound
		o.PrunePolicy = g.opts.PrunePolicy
		o.AnalyzeTimeout = g.opts.CallTimeout
		o.Logger = g.opts.Logger
	})

	sum := ctrl.Run(ctx, sc)
	g.opts.Logger.Info("round generation completed",
		"rounds", sum.Rounds,
		"score", sum.FinalScore,
		"created", sum.NodesCreated,
		"stopped_by", string(sum.StoppedBy))
	return sc, sum, ctx.Err()
}
