// Package api contains the step contract model used by stepflow: events,
// step signature validation, step descriptors and workflow registries.
//
// Most users interact with the higher-level stepflow package, which
// re-exports selected types and helpers from this package. The api package
// is intended for dispatcher implementations and for contributors.
//
// # Events
//
// Events are plain structs that embed BaseEvent. Each Go type is one event
// type; EventType is its comparable identity and NoEvent marks "returns no
// event". StartEvent and StopEvent begin and end every run.
//
// # Steps
//
// A step is an ordinary function or bound method whose signature names
// the event it consumes and the event it may emit:
//
//	func (f *Checkout) charge(ctx context.Context, ev OrderPlaced) (PaymentTaken, error)
//
// NewStep validates the signature once, at definition time, and returns a
// *Step carrying an immutable StepConfig: accepted events, event parameter
// name, return types, whether a *RunContext is injected, and the worker
// count. Malformed steps never reach a dispatcher; every failure is a
// *WorkflowValidationError identified by ErrWorkflowValidation.
//
// Interface-typed event parameters and results act as unions. Their
// members are declared with Accepts and Emits.
//
// # Workflows
//
// A Workflow maps step names to steps. Bound methods are collected with
// WithSteps; free functions register themselves through InWorkflow. The
// dispatcher consumes Routes (event type to consuming steps), each step's
// StepConfig, and Step.Call. Validate checks the event graph is closed.
//
// # Observability
//
// Observer receives registration callbacks. LoggingObserver (log/slog) and
// BasicMetrics are provided and can be combined with NewCompositeObserver.
package api
