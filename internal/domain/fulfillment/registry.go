package fulfillment

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownStep is returned when a configured step name has no registered
// implementation. It is a configuration error, not a data error.
var ErrUnknownStep = errors.New("unknown pipeline step")

// Step is a single named transformation over the run context. A returned
// error is a hard failure that aborts the run; a soft failure is recorded
// on the context via Fail.
type Step func(ctx context.Context, run *Context) error

// Registry maps step names to their implementations. It is populated once at
// startup and read-only afterwards.
type Registry struct {
	steps map[string]Step
}

func NewRegistry() *Registry {
	return &Registry{steps: make(map[string]Step)}
}

// Register binds a step implementation to a name. Re-registering a name
// replaces the previous binding.
func (r *Registry) Register(name string, step Step) {
	r.steps[name] = step
}

// Resolve returns the step registered under the name or ErrUnknownStep.
func (r *Registry) Resolve(name string) (Step, error) {
	step, ok := r.steps[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStep, name)
	}
	return step, nil
}
