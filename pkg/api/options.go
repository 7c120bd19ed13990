package api

// StepOption configures NewStep.
type StepOption func(*stepOptions)

type stepOptions struct {
	workflow    *Workflow
	name        string
	eventName   string
	passContext bool
	numWorkers  int
	accepts     []EventType
	emits       []EventType
}

func defaultStepOptions() stepOptions {
	return stepOptions{numWorkers: 1}
}

// InWorkflow registers the step with wf once it validates. It is required
// for free functions; bound methods may omit it and be collected with
// WithSteps instead.
func InWorkflow(wf *Workflow) StepOption {
	return func(o *stepOptions) {
		o.workflow = wf
	}
}

// PassContext asks the dispatcher to inject the run's *RunContext.
// The function must declare a *RunContext parameter exactly when enabled.
func PassContext(enabled bool) StepOption {
	return func(o *stepOptions) {
		o.passContext = enabled
	}
}

// NumWorkers sets how many invocations of the step the dispatcher may run
// at once. n must be greater than zero; the default is 1.
func NumWorkers(n int) StepOption {
	return func(o *stepOptions) {
		o.numWorkers = n
	}
}

// Named overrides the step name, which defaults to the function's name.
func Named(name string) StepOption {
	return func(o *stepOptions) {
		o.name = name
	}
}

// EventParam names the event parameter (DefaultEventName if unset).
func EventParam(name string) StepOption {
	return func(o *stepOptions) {
		o.eventName = name
	}
}

// Accepts lists the concrete events an interface-typed event parameter
// receives. For a concrete parameter it may only repeat that type.
// A later Accepts replaces an earlier one.
func Accepts(types ...EventType) StepOption {
	return func(o *stepOptions) {
		o.accepts = append([]EventType(nil), types...)
	}
}

// Emits lists, in order, the events a step may return. Include NoEvent
// when the step may finish without emitting. A later Emits replaces an
// earlier one.
func Emits(types ...EventType) StepOption {
	return func(o *stepOptions) {
		o.emits = append([]EventType(nil), types...)
	}
}
