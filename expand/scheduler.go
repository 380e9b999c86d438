package expand

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/hupe1980/scenegen/governor"
	"github.com/hupe1980/scenegen/logging"
	"github.com/hupe1980/scenegen/scene"
	"github.com/hupe1980/scenegen/service"
	"github.com/hupe1980/scenegen/validate"
)

// Options configures a Scheduler.
type Options struct {
	// Concurrency bounds the number of in-flight service calls per ExpandAll.
	Concurrency int
	// MaxRetries is the number of retries after the first failed attempt of a
	// retryable service error.
	MaxRetries int
	// CallTimeout bounds each individual service call.
	CallTimeout time.Duration
	// RetryInitialInterval seeds the exponential backoff between retries.
	RetryInitialInterval time.Duration
	// MaxNodesPerContainer truncates each container's candidate list before
	// the governor is consulted.
	MaxNodesPerContainer int
	// Logger receives per-expansion diagnostics.
	Logger logging.Logger
}

// Scheduler expands containers against the content service under bounded
// concurrency, consulting the governor before creating any node.
type Scheduler struct {
	svc  service.Service
	gov  *governor.Governor
	opts Options
}

// NewScheduler creates a scheduler around a service and a governor.
func NewScheduler(svc service.Service, gov *governor.Governor, optFns ...func(o *Options)) *Scheduler {
	opts := Options{
		Concurrency:          30,
		MaxRetries:           2,
		CallTimeout:          60 * time.Second,
		RetryInitialInterval: 500 * time.Millisecond,
		MaxNodesPerContainer: 20,
		Logger:               logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Scheduler{svc: svc, gov: gov, opts: opts}
}

// Outcome describes how one container's expansion ended.
type Outcome struct {
	ContainerID   string
	ContainerName string
	Created       int
	Attempts      int
	DepthLimited  bool
	Warnings      []validate.Warning
	Err           error
}

// Report aggregates the outcomes of one ExpandAll (or ExpandRoots) call.
type Report struct {
	Outcomes     []Outcome
	Created      int
	Calls        int
	DepthLimited int
	Errors       []error
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Created += o.Created
	r.Calls += o.Attempts
	if o.DepthLimited {
		r.DepthLimited++
	}
	if o.Err != nil {
		r.Errors = append(r.Errors, o.Err)
	}
}

// merge folds another report into r.
func (r *Report) merge(other Report) {
	r.Outcomes = append(r.Outcomes, other.Outcomes...)
	r.Created += other.Created
	r.Calls += other.Calls
	r.DepthLimited += other.DepthLimited
	r.Errors = append(r.Errors, other.Errors...)
}

// workerResult is what a worker hands back to the collector. Candidates are
// computed locally; the collector alone touches the tree.
type workerResult struct {
	container *scene.Container
	res       validate.Result
	attempts  int
	err       error
}

// ExpandAll expands the given containers concurrently and applies the results
// to sc. Already-expanded containers are skipped (idempotence); containers at
// the depth ceiling are skipped and counted depth-limited, their expanded
// flag untouched. The call always completes: per-container failures end with
// zero children and an error record.
func (s *Scheduler) ExpandAll(ctx context.Context, sc *scene.Scene, containers []*scene.Container) Report {
	var report Report

	// Partition before dispatch; requests are built here, while no worker is
	// running, so workers never read the tree.
	type job struct {
		container *scene.Container
		req       service.ExpandRequest
	}
	var jobs []job
	for _, c := range containers {
		if c.Expanded() {
			continue
		}
		if !s.gov.DepthAllowed(c.Level()) {
			report.add(Outcome{ContainerID: c.ID(), ContainerName: c.Name(), DepthLimited: true})
			sc.Counters().DepthLimited++
			continue
		}
		jobs = append(jobs, job{container: c, req: s.buildRequest(sc, c)})
	}
	if len(jobs) == 0 {
		return report
	}

	sem := make(chan struct{}, s.opts.Concurrency)
	results := make(chan workerResult)
	for _, j := range jobs {
		go func(j job) {
			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()
			raw, attempts, err := s.callExpand(ctx, j.req)
			wr := workerResult{container: j.container, attempts: attempts, err: err}
			if err == nil {
				wr.res, wr.err = validate.Candidates(raw)
			}
			s.opts.Logger.Debug("expansion call finished",
				"container", j.container.Name(),
				"duration", time.Since(start),
				"attempts", attempts,
				"err", wr.err)
			results <- wr
		}(j)
	}

	// Single mutation point: only this loop appends children, flips expanded
	// flags and consumes governor budget.
	for range jobs {
		wr := <-results
		report.add(s.apply(sc, wr))
	}
	return report
}

// ExpandRoots performs the initial generation of the scene's root node set
// from the narrative context. It issues a single Expand request.
func (s *Scheduler) ExpandRoots(ctx context.Context, sc *scene.Scene) Report {
	var report Report

	req := service.ExpandRequest{Scene: sc.Context()}
	raw, attempts, err := s.callExpand(ctx, req)
	wr := workerResult{attempts: attempts, err: err}
	if err == nil {
		wr.res, wr.err = validate.Candidates(raw)
	}
	report.add(s.apply(sc, wr))
	return report
}

// ExpandScene recursively expands every unexpanded container wave by wave
// until none below the depth ceiling remain. Containers at the ceiling are
// reported depth-limited exactly once.
func (s *Scheduler) ExpandScene(ctx context.Context, sc *scene.Scene) Report {
	var report Report
	skipped := map[string]bool{}

	// Iteration guard against a service that keeps proposing containers.
	const maxWaves = 20
	for wave := 0; wave < maxWaves; wave++ {
		if ctx.Err() != nil || s.gov.Exhausted() {
			break
		}

		var pending []*scene.Container
		for _, c := range sc.UnexpandedContainers() {
			if !skipped[c.ID()] {
				pending = append(pending, c)
			}
		}
		if len(pending) == 0 {
			break
		}

		r := s.ExpandAll(ctx, sc, pending)
		report.merge(r)

		progress := false
		for _, o := range r.Outcomes {
			if o.DepthLimited {
				skipped[o.ContainerID] = true
			} else {
				progress = true
			}
		}
		if !progress {
			break
		}
	}
	return report
}

// buildRequest assembles the expansion context of one container: narrative
// context, theme, ancestor names for naming consistency and known sibling
// names to reduce duplicates.
func (s *Scheduler) buildRequest(sc *scene.Scene, c *scene.Container) service.ExpandRequest {
	var siblings []string
	for _, child := range c.Children() {
		siblings = append(siblings, child.Name())
	}
	return service.ExpandRequest{
		Scene:         sc.Context(),
		ContainerName: c.Name(),
		ContainerType: c.ContainerType(),
		Description:   c.Description(),
		Theme:         c.Theme(),
		Level:         c.Level(),
		Ancestors:     scene.AncestorNames(c),
		Siblings:      siblings,
	}
}

// callExpand runs one Expand request with per-call timeout and bounded
// exponential backoff on retryable failures. It returns the raw response and
// the number of attempts made.
func (s *Scheduler) callExpand(ctx context.Context, req service.ExpandRequest) (string, int, error) {
	attempts := 0
	operation := func() (string, error) {
		attempts++
		callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
		defer cancel()
		raw, err := s.svc.Expand(callCtx, req)
		if err != nil {
			if !service.IsRetryable(err) {
				return "", backoff.Permanent(err)
			}
			return "", err
		}
		return raw, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.opts.RetryInitialInterval
	raw, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(s.opts.MaxRetries+1)))
	return raw, attempts, err
}

// apply maps one worker result onto the tree. The source container (if any)
// ends expanded regardless of success, partial success or failure; that is
// what prevents infinite re-attempts.
func (s *Scheduler) apply(sc *scene.Scene, wr workerResult) Outcome {
	out := Outcome{Warnings: wr.res.Warnings, Attempts: wr.attempts, Err: wr.err}
	if wr.container != nil {
		out.ContainerID = wr.container.ID()
		out.ContainerName = wr.container.Name()
		defer sc.MarkExpanded(wr.container)
	}

	counters := sc.Counters()
	counters.ServiceCalls += wr.attempts
	counters.ValidationWarnings += len(wr.res.Warnings)
	if wr.err != nil {
		counters.ExpansionErrors++
		s.opts.Logger.Warn("container expansion failed",
			"container", out.ContainerName, "err", wr.err)
		return out
	}

	accepted := wr.res.Candidates
	counters.CandidatesGenerated += len(accepted)
	if len(accepted) > s.opts.MaxNodesPerContainer {
		accepted = accepted[:s.opts.MaxNodesPerContainer]
	}

	granted := s.gov.Reserve(len(accepted))
	counters.NodesDropped += len(accepted) - granted
	accepted = accepted[:granted]

	for _, cand := range accepted {
		node := s.materialize(wr.container, cand)
		if wr.container == nil {
			sc.AddRoot(node)
		} else {
			sc.AppendChild(wr.container, node)
		}
		out.Created++
	}
	return out
}

// materialize turns a validated candidate into a detached tree node.
func (s *Scheduler) materialize(parent *scene.Container, cand validate.Candidate) scene.Node {
	if cand.NodeType == scene.NodeTypeItem {
		return scene.NewItem(cand.Name, cand.Description,
			scene.WithItemAttrs(cand.Attrs),
			scene.WithItemPosition(cand.Position))
	}

	theme := cand.Theme
	if theme == "" && parent != nil {
		theme = parent.Theme() + " > " + cand.Name
	}
	opts := []scene.ContainerOption{scene.WithContainerPosition(cand.Position)}
	if theme != "" {
		opts = append(opts, scene.WithTheme(theme))
	}
	return scene.NewContainer(cand.Name, cand.Description, cand.ContainerType, opts...)
}
