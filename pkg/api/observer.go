package api

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Observer receives callbacks about step registration for logging and metrics.
//
// Registration happens at definition time, so implementations may be
// simple; they must not call back into the Workflow's mutating methods.
type Observer interface {
	// OnStepRegistered is called when a step is added under a new name.
	OnStepRegistered(wf *Workflow, step *Step)

	// OnStepReplaced is called when a step replaces one with the same name.
	OnStepReplaced(wf *Workflow, previous, step *Step)

	// OnStepRejected is called when NewStep fails for a step that named wf
	// with InWorkflow.
	OnStepRejected(wf *Workflow, stepName string, err error)

	// OnWorkflowValidated is called after Workflow.Validate with its result.
	OnWorkflowValidated(wf *Workflow, err error)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnStepRegistered(wf *Workflow, step *Step)               {}
func (NoopObserver) OnStepReplaced(wf *Workflow, previous, step *Step)       {}
func (NoopObserver) OnStepRejected(wf *Workflow, stepName string, err error) {}
func (NoopObserver) OnWorkflowValidated(wf *Workflow, err error)             {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnStepRegistered(wf *Workflow, step *Step) {
	for _, o := range c.observers {
		o.OnStepRegistered(wf, step)
	}
}

func (c *CompositeObserver) OnStepReplaced(wf *Workflow, previous, step *Step) {
	for _, o := range c.observers {
		o.OnStepReplaced(wf, previous, step)
	}
}

func (c *CompositeObserver) OnStepRejected(wf *Workflow, stepName string, err error) {
	for _, o := range c.observers {
		o.OnStepRejected(wf, stepName, err)
	}
}

func (c *CompositeObserver) OnWorkflowValidated(wf *Workflow, err error) {
	for _, o := range c.observers {
		o.OnWorkflowValidated(wf, err)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs registration events
// using the provided slog.Logger. If logger is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnStepRegistered(wf *Workflow, step *Step) {
	o.Logger.Debug("step_registered",
		slog.String("workflow", wf.Name()),
		slog.Group("step", stepAttrs(step)...),
	)
}

func (o *LoggingObserver) OnStepReplaced(wf *Workflow, previous, step *Step) {
	o.Logger.Info("step_replaced",
		slog.String("workflow", wf.Name()),
		slog.Int("previous_num_workers", previous.config.numWorkers),
		slog.Group("step", stepAttrs(step)...),
	)
}

func (o *LoggingObserver) OnStepRejected(wf *Workflow, stepName string, err error) {
	o.Logger.Error("step_rejected",
		slog.String("workflow", wf.Name()),
		slog.String("step", stepName),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnWorkflowValidated(wf *Workflow, err error) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(context.Background(), level, "workflow_validated",
		slog.String("workflow", wf.Name()),
		slog.Int("steps", wf.Len()),
		slog.Any("error", err),
	)
}

func stepAttrs(step *Step) []any {
	return []any{
		slog.String("name", step.name),
		slog.String("event_name", step.config.eventName),
		slog.Any("accepted_events", EventTypeNames(step.config.acceptedEvents)),
		slog.Any("return_types", EventTypeNames(step.config.returnTypes)),
		slog.Bool("pass_context", step.config.passContext),
		slog.Int("num_workers", step.config.numWorkers),
	}
}

// BasicMetrics collects simple registration counters.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	stepsRegistered     atomic.Int64
	stepsReplaced       atomic.Int64
	stepsRejected       atomic.Int64
	validationsPassed   atomic.Int64
	validationsFailed   atomic.Int64
	declaredWorkerSlots atomic.Int64
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	StepsRegistered int64
	StepsReplaced   int64
	StepsRejected   int64

	ValidationsPassed int64
	ValidationsFailed int64

	// DeclaredWorkerSlots is the sum of NumWorkers over the live steps
	// seen by this observer.
	DeclaredWorkerSlots int64
}

func (m *BasicMetrics) OnStepRegistered(wf *Workflow, step *Step) {
	m.stepsRegistered.Add(1)
	m.declaredWorkerSlots.Add(int64(step.config.numWorkers))
}

func (m *BasicMetrics) OnStepReplaced(wf *Workflow, previous, step *Step) {
	m.stepsReplaced.Add(1)
	m.declaredWorkerSlots.Add(int64(step.config.numWorkers - previous.config.numWorkers))
}

func (m *BasicMetrics) OnStepRejected(wf *Workflow, stepName string, err error) {
	m.stepsRejected.Add(1)
}

func (m *BasicMetrics) OnWorkflowValidated(wf *Workflow, err error) {
	if err != nil {
		m.validationsFailed.Add(1)
		return
	}
	m.validationsPassed.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	return BasicMetricsSnapshot{
		StepsRegistered:     m.stepsRegistered.Load(),
		StepsReplaced:       m.stepsReplaced.Load(),
		StepsRejected:       m.stepsRejected.Load(),
		ValidationsPassed:   m.validationsPassed.Load(),
		ValidationsFailed:   m.validationsFailed.Load(),
		DeclaredWorkerSlots: m.declaredWorkerSlots.Load(),
	}
}
