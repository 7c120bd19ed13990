package api

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// Workflow is a named registry of steps: one orchestration graph.
//
// Steps arrive either through WithSteps at construction (typically the
// bound methods of the type that owns the workflow) or through AddStep,
// which NewStep calls for free functions registered with InWorkflow.
// A Workflow is safe for concurrent use.
type Workflow struct {
	name     string
	observer Observer

	mu    sync.RWMutex
	steps map[string]*Step
	order []string
}

// WorkflowOption configures NewWorkflow.
type WorkflowOption func(*workflowOptions)

type workflowOptions struct {
	observer Observer
	steps    []*Step
}

// WithObserver sets the Observer notified about registrations.
func WithObserver(obs Observer) WorkflowOption {
	return func(o *workflowOptions) {
		o.observer = obs
	}
}

// WithSteps adds steps to the workflow at construction.
func WithSteps(steps ...*Step) WorkflowOption {
	return func(o *workflowOptions) {
		o.steps = append(o.steps, steps...)
	}
}

// NewWorkflow creates a workflow with the given name.
func NewWorkflow(name string, opts ...WorkflowOption) (*Workflow, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationErrorf("", "workflow name is required")
	}

	var o workflowOptions
	for _, opt := range opts {
		opt(&o)
	}
	obs := o.observer
	if obs == nil {
		obs = NoopObserver{}
	}

	w := &Workflow{
		name:     name,
		observer: obs,
		steps:    make(map[string]*Step),
	}
	for _, s := range o.steps {
		if err := w.AddStep(s); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// MustWorkflow is like NewWorkflow but panics on error.
func MustWorkflow(name string, opts ...WorkflowOption) *Workflow {
	w, err := NewWorkflow(name, opts...)
	if err != nil {
		panic(err)
	}
	return w
}

// Name returns the workflow name.
func (w *Workflow) Name() string {
	return w.name
}

// AddStep inserts step into the registry. A step with the same name is
// replaced as a whole.
func (w *Workflow) AddStep(step *Step) error {
	if step == nil {
		return validationErrorf("", "cannot add a nil step to workflow %s", w.name)
	}

	w.mu.Lock()
	prev, replaced := w.steps[step.name]
	w.steps[step.name] = step
	if !replaced {
		w.order = append(w.order, step.name)
	}
	w.mu.Unlock()

	if replaced {
		w.observer.OnStepReplaced(w, prev, step)
	} else {
		w.observer.OnStepRegistered(w, step)
	}
	return nil
}

// Step looks up a step by name.
func (w *Workflow) Step(name string) (*Step, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	s, ok := w.steps[name]
	return s, ok
}

// Steps returns the registered steps in registration order.
func (w *Workflow) Steps() []*Step {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]*Step, 0, len(w.order))
	for _, name := range w.order {
		out = append(out, w.steps[name])
	}
	return out
}

// Len returns the number of registered steps.
func (w *Workflow) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.steps)
}

// Consumers returns the steps that accept events of type t, in
// registration order.
func (w *Workflow) Consumers(t EventType) []*Step {
	var out []*Step
	for _, s := range w.Steps() {
		if s.config.Accepts(t) {
			out = append(out, s)
		}
	}
	return out
}

// Routes builds the routing table: every accepted event type mapped to
// the steps that consume it.
func (w *Workflow) Routes() map[EventType][]*Step {
	routes := make(map[EventType][]*Step)
	for _, s := range w.Steps() {
		for _, t := range s.config.acceptedEvents {
			routes[t] = append(routes[t], s)
		}
	}
	return routes
}

// Validate checks that the steps form a runnable graph:
//   - some step accepts StartEvent
//   - some step emits StopEvent
//   - every emitted event has a consumer
//   - every consumed event other than StartEvent has a producer
//
// All problems are reported, joined.
func (w *Workflow) Validate() error {
	err := w.validate()
	w.observer.OnWorkflowValidated(w, err)
	return err
}

func (w *Workflow) validate() error {
	steps := w.Steps()
	if len(steps) == 0 {
		return validationErrorf("", "workflow %s has no steps", w.name)
	}

	consumed := make(map[EventType]bool)
	produced := make(map[EventType]bool)
	for _, s := range steps {
		for _, t := range s.config.acceptedEvents {
			consumed[t] = true
		}
		for _, t := range s.config.returnTypes {
			if !t.IsNone() {
				produced[t] = true
			}
		}
	}

	var errs []error
	if !consumed[startEventType] {
		errs = append(errs, validationErrorf("", "at least one step of workflow %s must accept StartEvent", w.name))
	}
	if !produced[stopEventType] {
		errs = append(errs, validationErrorf("", "at least one step of workflow %s must emit StopEvent", w.name))
	}

	var unproduced, unconsumed []string
	for t := range consumed {
		if t != startEventType && !produced[t] {
			unproduced = append(unproduced, t.Name())
		}
	}
	for t := range produced {
		if t != stopEventType && !consumed[t] {
			unconsumed = append(unconsumed, t.Name())
		}
	}
	if len(unproduced) > 0 {
		sort.Strings(unproduced)
		errs = append(errs, validationErrorf("", "events consumed but never produced: %s", strings.Join(unproduced, ", ")))
	}
	if len(unconsumed) > 0 {
		sort.Strings(unconsumed)
		errs = append(errs, validationErrorf("", "events produced but never consumed: %s", strings.Join(unconsumed, ", ")))
	}

	return errors.Join(errs...)
}
