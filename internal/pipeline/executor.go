// Package pipeline implements the plan pipeline: the stage contract, the
// fan-out coordinator, and the graph executor that walks stages in
// dependency order, merges their partial updates, and bounds the veto/retry
// loop.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/calebmb/pathfinder/internal/events"
	"github.com/calebmb/pathfinder/pkg/models"
)

// Phase names the executor's pipeline states. They double as node names in
// the stage graph.
type Phase string

const (
	PhaseIntent    Phase = "INTENT"
	PhaseDiscovery Phase = "DISCOVERY"
	PhaseScoring   Phase = "PARALLEL_SCORING"
	PhaseReview    Phase = "REVIEW"
	PhaseSynthesis Phase = "SYNTHESIS"
)

// ErrMalformedState indicates the initial plan state cannot be executed.
var ErrMalformedState = errors.New("malformed initial plan state")

// ErrKeyOwnership indicates a stage returned a key it does not own.
var ErrKeyOwnership = errors.New("stage returned a key it does not own")

// RequiredConfig contains the stages an Executor cannot run without.
type RequiredConfig struct {
	// Intent extracts structured intent from the raw request.
	Intent Stage
	// Discovery produces candidate venues.
	Discovery Stage
	// Scorers are the independent scoring stages run through the fan-out
	// coordinator. Each scorer's Name is its scorer_outputs namespace.
	Scorers []Stage
	// Review is the adversarial review stage; it may set the veto.
	Review Stage
	// Synthesis produces the ranked results.
	Synthesis Stage
}

// Executor owns the stage graph for one pipeline shape and runs plan
// requests through it. An Executor is safe to reuse across requests; all
// per-request state lives in the State it is handed.
type Executor struct {
	intent    Stage
	discovery Stage
	scorers   []Stage
	review    Stage
	synthesis Stage

	graph *StageGraph
	order []string

	sink        *events.Sink
	logger      *DebugLogger
	maxRetries  int
	concurrency int

	// ownership maps stage name to the state keys it may write.
	ownership map[string]map[Key]bool
}

// New creates an Executor from the required stages and options.
// Returns an error if a required stage is missing or the stage graph is
// not well-formed.
func New(req RequiredConfig, opts ...Option) (*Executor, error) {
	if req.Intent == nil || req.Discovery == nil || req.Review == nil || req.Synthesis == nil {
		return nil, fmt.Errorf("intent, discovery, review and synthesis stages are all required")
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	e := &Executor{
		intent:      req.Intent,
		discovery:   req.Discovery,
		scorers:     req.Scorers,
		review:      req.Review,
		synthesis:   req.Synthesis,
		sink:        options.sink,
		logger:      options.logger,
		maxRetries:  options.maxRetries,
		concurrency: options.concurrency,
	}

	if err := e.buildGraph(); err != nil {
		return nil, err
	}
	e.buildOwnership()

	return e, nil
}

// buildGraph wires the fixed pipeline shape into a stage graph and derives
// the dependency-order walk from it.
func (e *Executor) buildGraph() error {
	g := NewStageGraph()
	phases := []Phase{PhaseIntent, PhaseDiscovery, PhaseScoring, PhaseReview, PhaseSynthesis}
	for _, p := range phases {
		g.AddNode(string(p))
	}
	for i := 1; i < len(phases); i++ {
		if err := g.AddEdge(string(phases[i]), string(phases[i-1])); err != nil {
			return fmt.Errorf("build stage graph: %w", err)
		}
	}

	order, err := g.TopologicalSort()
	if err != nil {
		return fmt.Errorf("sort stage graph: %w", err)
	}

	e.graph = g
	e.order = order
	return nil
}

// buildOwnership records which state keys each stage may write.
func (e *Executor) buildOwnership() {
	own := map[string]map[Key]bool{
		e.intent.Name():    keySet(KeyParsedIntent, KeyComplexityTier, KeyActiveAgents, KeyAgentWeights),
		e.discovery.Name(): keySet(KeyCandidateVenues),
		e.review.Name():    keySet(KeyRiskFlags, KeyVeto, KeyVetoReason),
		e.synthesis.Name(): keySet(KeyRankedResults),
	}
	for _, sc := range e.scorers {
		own[sc.Name()] = keySet(KeyScorerOutputs, KeyIsochrones)
	}
	e.ownership = own
}

func keySet(keys ...Key) map[Key]bool {
	set := make(map[Key]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// Sink returns the executor's event sink, for attaching a live feed.
func (e *Executor) Sink() *events.Sink {
	return e.sink
}

// Run executes the pipeline synchronously and returns the terminal state.
// Stage-local failures are absorbed inside stages; only a malformed initial
// state, a key-ownership violation, or an unexpected stage error surfaces.
func (e *Executor) Run(ctx context.Context, initial *State) (*State, error) {
	if initial == nil || initial.RawRequest == "" {
		return nil, fmt.Errorf("%w: missing raw request", ErrMalformedState)
	}

	st := initial
	e.logger.Log("[executor] starting run, %d scorers, max retries %d", len(e.scorers), e.maxRetries)

	i := 0
	for i < len(e.order) {
		phase := Phase(e.order[i])

		switch phase {
		case PhaseIntent:
			if err := e.runStage(ctx, st, e.intent); err != nil {
				return nil, err
			}
			i++

		case PhaseDiscovery:
			if err := e.runStage(ctx, st, e.discovery); err != nil {
				return nil, err
			}
			if len(st.CandidateVenues) == 0 {
				// Nothing to score or rank.
				e.sink.Emit(events.NodeGraph, "no candidates found, returning empty result")
				e.logger.Log("[executor] discovery returned zero candidates, short-circuiting")
				st.RankedResults = []models.RankedVenue{}
				return st, nil
			}
			i++

		case PhaseScoring:
			if err := e.runScorers(ctx, st); err != nil {
				return nil, err
			}
			i++

		case PhaseReview:
			if err := e.runStage(ctx, st, e.review); err != nil {
				return nil, err
			}
			if st.Veto {
				if st.RetryCount < e.maxRetries {
					st.RetryCount++
					st.resetForRetry()
					e.sink.Emitf(events.NodeGraph, "veto raised (%s), retrying discovery (attempt %d of %d)",
						st.VetoReason, st.RetryCount, e.maxRetries)
					e.logger.Log("[executor] veto retry %d", st.RetryCount)
					i = e.indexOf(PhaseDiscovery)
					continue
				}
				// Retry budget spent: best available beats nothing.
				st.Degraded = true
				e.sink.Emitf(events.NodeGraph, "retry budget exhausted, proceeding degraded: %s", st.VetoReason)
				e.logger.Log("[executor] veto with exhausted retries, marking degraded")
			}
			i++

		case PhaseSynthesis:
			if err := e.runStage(ctx, st, e.synthesis); err != nil {
				return nil, err
			}
			i++

		default:
			return nil, fmt.Errorf("unknown pipeline phase %q", phase)
		}
	}

	e.sink.Emitf(events.NodeGraph, "pipeline complete, %d venues ranked", len(st.RankedResults))
	return st, nil
}

// RunStreaming executes the pipeline while a live feed forwards sink events
// to the observer. The observer receives every emitted event in arrival
// order followed by exactly one terminal result or error.
func (e *Executor) RunStreaming(ctx context.Context, initial *State, obs events.Observer) error {
	feed := events.NewFeed(e.sink, obs)
	done := make(chan struct{})
	feedFinished := make(chan struct{})

	var (
		terminal *State
		runErr   error
	)

	go func() {
		// The outcome closure only runs after done is closed, which
		// happens after terminal and runErr are written.
		feed.Stream(done, func() (*models.PlanResult, error) {
			if runErr != nil {
				return nil, runErr
			}
			return terminal.Result(), nil
		})
		close(feedFinished)
	}()

	terminal, runErr = e.Run(ctx, initial)
	close(done)
	<-feedFinished

	return runErr
}

// indexOf returns the walk index of a phase. The phase is known to exist;
// construction validated the graph.
func (e *Executor) indexOf(p Phase) int {
	for i, name := range e.order {
		if name == string(p) {
			return i
		}
	}
	return 0
}

// runStage invokes one stage against a snapshot of the state and merges its
// validated delta.
func (e *Executor) runStage(ctx context.Context, st *State, stage Stage) error {
	name := stage.Name()
	e.logger.Log("[executor] running stage %s", name)

	delta, err := stage.Run(ctx, st.Clone())
	if err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}

	if err := e.checkOwnership(name, delta); err != nil {
		return err
	}

	st.apply(delta)
	return nil
}

// runScorers fans the scorer stages out through the fan-out coordinator and
// merges every settled delta. A failed scorer degrades to an absent
// namespace with a warning event; it never aborts the run.
func (e *Executor) runScorers(ctx context.Context, st *State) error {
	scorers := e.activeScorers(st)
	if len(scorers) == 0 {
		return nil
	}

	e.sink.Emitf(events.NodeGraph, "fanning out %d scorers over %d venues",
		len(scorers), len(st.CandidateVenues))

	tasks := make([]func(context.Context) (Delta, error), len(scorers))
	for i, sc := range scorers {
		sc := sc
		tasks[i] = func(ctx context.Context) (Delta, error) {
			return sc.Run(ctx, st.Clone())
		}
	}

	results := RunConcurrent(ctx, tasks, e.concurrency)

	for i, res := range results {
		sc := scorers[i]
		if res.Failed() {
			// Absence of the namespace, not a zero score, signals failure.
			e.sink.Emitf(sc.Name(), "warning: scorer failed, contribution omitted: %v", res.Err)
			e.logger.Log("[executor] scorer %s failed: %v", sc.Name(), res.Err)
			continue
		}

		delta := res.Value
		if err := e.checkOwnership(sc.Name(), delta); err != nil {
			return err
		}
		e.pruneForeignVenues(st, sc.Name(), &delta)
		st.apply(delta)
	}

	return nil
}

// activeScorers filters the configured scorers down to the set the intent
// stage activated. An empty activation set means every scorer runs; a
// deactivated scorer leaves its namespace absent, which synthesis skips.
func (e *Executor) activeScorers(st *State) []Stage {
	if len(st.ActiveAgents) == 0 {
		return e.scorers
	}

	active := make(map[string]bool, len(st.ActiveAgents))
	for _, name := range st.ActiveAgents {
		active[name] = true
	}

	scorers := make([]Stage, 0, len(e.scorers))
	for _, sc := range e.scorers {
		if !active[sc.Name()] {
			e.sink.Emitf(events.NodeGraph, "scorer %s not activated for this request", sc.Name())
			e.logger.Log("[executor] scorer %s not activated", sc.Name())
			continue
		}
		scorers = append(scorers, sc)
	}
	return scorers
}

// checkOwnership rejects a delta carrying keys outside the stage's owned
// set, and a scorer delta writing another scorer's namespace.
func (e *Executor) checkOwnership(stageName string, delta Delta) error {
	owned := e.ownership[stageName]
	for _, key := range delta.Keys() {
		if !owned[key] {
			return fmt.Errorf("%w: stage %s wrote %s", ErrKeyOwnership, stageName, key)
		}
	}
	if delta.ScorerOutput != nil && delta.ScorerOutput.Name != stageName {
		return fmt.Errorf("%w: scorer %s wrote namespace %s", ErrKeyOwnership, stageName, delta.ScorerOutput.Name)
	}
	return nil
}

// pruneForeignVenues drops scorer entries for venue ids that are not in the
// current candidate set, keeping scorer namespaces consistent with
// candidate_venues.
func (e *Executor) pruneForeignVenues(st *State, scorer string, delta *Delta) {
	known := make(map[string]bool, len(st.CandidateVenues))
	for _, v := range st.CandidateVenues {
		known[v.ID] = true
	}

	if delta.ScorerOutput != nil {
		for id := range delta.ScorerOutput.Scores {
			if !known[id] {
				e.sink.Emitf(scorer, "warning: dropping score for unknown venue %s", id)
				delete(delta.ScorerOutput.Scores, id)
			}
		}
	}
	for id := range delta.Isochrones {
		if !known[id] {
			delete(delta.Isochrones, id)
		}
	}
}
