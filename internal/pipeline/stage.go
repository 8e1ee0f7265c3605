package pipeline

import "context"

// Stage is one unit of pipeline work: it reads the accumulated plan state
// and returns a partial update. Stages are stateless between invocations,
// never mutate the state they are handed, and must return a well-formed
// empty delta (not an error) when their upstream input is empty. External
// failures inside a stage degrade that stage's contribution; an error return
// is reserved for conditions the executor must treat as fatal.
type Stage interface {
	// Name returns the stage's node name, used for events and ownership.
	Name() string
	// Run produces the stage's partial update against a snapshot of the
	// plan state.
	Run(ctx context.Context, st *State) (Delta, error)
}

// StageFunc adapts a function to the Stage interface.
type StageFunc struct {
	name string
	fn   func(ctx context.Context, st *State) (Delta, error)
}

// NewStageFunc creates a Stage from a name and a function.
func NewStageFunc(name string, fn func(ctx context.Context, st *State) (Delta, error)) StageFunc {
	return StageFunc{name: name, fn: fn}
}

// Name returns the stage name.
func (s StageFunc) Name() string { return s.name }

// Run invokes the wrapped function.
func (s StageFunc) Run(ctx context.Context, st *State) (Delta, error) {
	return s.fn(ctx, st)
}
