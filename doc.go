// Package stepflow declares the steps of event-driven workflows and checks
// their contracts before anything runs.
//
// A step is an ordinary Go function or bound method that consumes one event
// and produces another. stepflow inspects its signature once, at definition
// time, and records what a dispatcher needs to route events to it. A step
// that could never be dispatched correctly is rejected immediately instead
// of failing later in production.
//
// # Core Concepts
//
//  1. Event
//  2. Step
//  3. Workflow
//  4. FlowBuilder
//  5. Catalog
//
// # Event
//
// Events are plain structs that embed BaseEvent:
//
//	type OrderPlaced struct {
//	    stepflow.BaseEvent
//	    OrderID string
//	}
//
// Every workflow starts with a StartEvent and finishes when some step returns
// a StopEvent. Several event types can be grouped behind an interface; the
// members are then declared with Accepts or Emits.
//
// # Step
//
// NewStep validates a function and attaches its StepConfig:
//
//	step, err := stepflow.NewStep(c.charge,
//	    stepflow.PassContext(true),
//	    stepflow.NumWorkers(4),
//	)
//
// A step takes exactly one event parameter, optionally a context.Context and,
// when PassContext(true) is set, a *RunContext. It returns error or
// (Event, error). NumWorkers bounds how many invocations a dispatcher may run
// at once.
//
// Bound methods are collected into their workflow with WithSteps. Free
// functions must name their workflow with InWorkflow; without it the step is
// rejected.
//
// All registration failures wrap ErrWorkflowValidation.
//
// # Workflow
//
// A Workflow maps step names to steps. Routes returns the event type to
// consumer table a dispatcher builds, and Validate checks that the event
// graph is closed: something accepts StartEvent, something emits StopEvent,
// and no event is produced without a consumer or consumed without a producer.
//
// # FlowBuilder
//
// FlowBuilder is the fluent way to define a workflow:
//
//	wf, err := stepflow.New("checkout").
//	    Step(c.reserve).
//	    Step(c.charge, stepflow.PassContext(true)).
//	    Step(ship).
//	    Build()
//
// # Catalog
//
// PublishCatalog saves a snapshot of a workflow's step contracts to a
// CatalogStore (in memory or SQLite). The stepctl command reads these
// snapshots so the graph can be inspected without loading Go code.
//
// For examples, see the /examples directory.
package stepflow
