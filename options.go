package stepflow

import "github.com/petrijr/stepflow/pkg/api"

// InWorkflow names the workflow a free-function step registers with.
func InWorkflow(wf *Workflow) StepOption {
	return api.InWorkflow(wf)
}

// PassContext makes the step receive the shared *RunContext.
func PassContext(enabled bool) StepOption {
	return api.PassContext(enabled)
}

// NumWorkers caps concurrent invocations of the step. Must be at least 1.
func NumWorkers(n int) StepOption {
	return api.NumWorkers(n)
}

// Named overrides the step name derived from the function.
func Named(name string) StepOption {
	return api.Named(name)
}

// EventParam records the name of the step's event parameter.
func EventParam(name string) StepOption {
	return api.EventParam(name)
}

// Accepts lists the members of an interface-typed event parameter.
func Accepts(types ...EventType) StepOption {
	return api.Accepts(types...)
}

// Emits lists the members of an interface-typed event return.
func Emits(types ...EventType) StepOption {
	return api.Emits(types...)
}

// WithObserver sets the Observer notified of registrations and validations.
func WithObserver(obs Observer) WorkflowOption {
	return api.WithObserver(obs)
}

// WithSteps adds method steps to a new workflow in the given order.
func WithSteps(steps ...*Step) WorkflowOption {
	return api.WithSteps(steps...)
}
