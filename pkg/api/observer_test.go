package api

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
)

//
// Helpers
//

// recordingObserver is a simple Observer implementation used to verify fan-out behavior.
type recordingObserver struct {
	mu sync.Mutex

	registered []string
	replaced   []string
	rejected   []string

	validated      int
	lastValidation error
	lastRejection  error
}

func (o *recordingObserver) OnStepRegistered(wf *Workflow, step *Step) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.registered = append(o.registered, step.Name())
}

func (o *recordingObserver) OnStepReplaced(wf *Workflow, previous, step *Step) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.replaced = append(o.replaced, step.Name())
}

func (o *recordingObserver) OnStepRejected(wf *Workflow, stepName string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected = append(o.rejected, stepName)
	o.lastRejection = err
}

func (o *recordingObserver) OnWorkflowValidated(wf *Workflow, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.validated++
	o.lastValidation = err
}

// recordingHandler is a minimal slog.Handler that just records log records.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

func (h *recordingHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	// Not needed for tests; just return itself.
	return h
}

func (h *recordingHandler) WithGroup(name string) slog.Handler {
	return h
}

func attrsToMap(r slog.Record) map[string]slog.Value {
	m := make(map[string]slog.Value)
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value
		return true
	})
	return m
}

//
// NoopObserver
//

func TestNoopObserver_DoesNotPanic(t *testing.T) {
	wf := MustWorkflow("noop")
	step := MustStep((&checkout{}).audit)
	var o Observer = NoopObserver{}

	// These calls should simply not panic.
	o.OnStepRegistered(wf, step)
	o.OnStepReplaced(wf, step, step)
	o.OnStepRejected(wf, "audit", errors.New("boom"))
	o.OnWorkflowValidated(wf, nil)
}

//
// CompositeObserver
//

func TestNewCompositeObserver_EmptyReturnsNoop(t *testing.T) {
	o := NewCompositeObserver()
	if _, ok := o.(NoopObserver); !ok {
		t.Fatalf("expected NewCompositeObserver() to return NoopObserver, got %T", o)
	}
}

func TestNewCompositeObserver_SingleReturnsThatObserver(t *testing.T) {
	single := &recordingObserver{}
	o := NewCompositeObserver(single, nil) // include a nil to ensure it is filtered

	if got, ok := o.(*recordingObserver); !ok || got != single {
		t.Fatalf("expected the single non-nil observer to be returned, got %T (%p)", o, o)
	}
}

func TestCompositeObserver_ForwardsAllEvents(t *testing.T) {
	o1 := &recordingObserver{}
	o2 := &recordingObserver{}
	co, ok := NewCompositeObserver(o1, o2).(*CompositeObserver)
	if !ok {
		t.Fatalf("expected *CompositeObserver")
	}

	wf := MustWorkflow("fanout", WithObserver(co))
	first := MustStep(shipOrder, InWorkflow(wf))
	MustStep(shipOrder, InWorkflow(wf), NumWorkers(2))
	if _, err := first.With(NumWorkers(0)); err == nil {
		t.Fatalf("expected rejection for num_workers=0")
	}
	verr := wf.Validate()

	for i, o := range []*recordingObserver{o1, o2} {
		if len(o.registered) != 1 || len(o.replaced) != 1 || len(o.rejected) != 1 || o.validated != 1 {
			t.Fatalf("observer %d did not receive all calls: %+v", i+1, o)
		}
		if !errors.Is(o.lastRejection, ErrWorkflowValidation) {
			t.Fatalf("observer %d rejection error mismatch: %v", i+1, o.lastRejection)
		}
		if o.lastValidation != verr {
			t.Fatalf("observer %d validation error mismatch", i+1)
		}
	}
}

//
// LoggingObserver
//

func TestNewLoggingObserver_NilLoggerUsesDefault(t *testing.T) {
	o := NewLoggingObserver(nil)
	lo, ok := o.(*LoggingObserver)
	if !ok {
		t.Fatalf("expected *LoggingObserver, got %T", o)
	}
	if lo.Logger == nil {
		t.Fatalf("expected non-nil Logger when created with nil")
	}
}

func TestLoggingObserver_OnStepRegistered_EmitsDebugLog(t *testing.T) {
	h := &recordingHandler{}
	wf := MustWorkflow("logged", WithObserver(NewLoggingObserver(slog.New(h))))

	MustStep(shipOrder, InWorkflow(wf), NumWorkers(3))

	if len(h.records) != 1 {
		t.Fatalf("expected 1 log record, got %d", len(h.records))
	}

	rec := h.records[0]
	if rec.Level != slog.LevelDebug {
		t.Fatalf("expected LevelDebug, got %v", rec.Level)
	}
	if rec.Message != "step_registered" {
		t.Fatalf("expected message step_registered, got %q", rec.Message)
	}

	attrs := attrsToMap(rec)
	if attrs["workflow"].String() != "logged" {
		t.Fatalf("expected workflow=logged, got %v", attrs["workflow"])
	}
	group := make(map[string]slog.Value)
	for _, a := range attrs["step"].Group() {
		group[a.Key] = a.Value
	}
	if group["name"].String() != "shipOrder" {
		t.Fatalf("expected step name shipOrder, got %v", group["name"])
	}
	if group["num_workers"].Int64() != 3 {
		t.Fatalf("expected num_workers=3, got %v", group["num_workers"])
	}
}

func TestLoggingObserver_RejectionAndValidationLevels(t *testing.T) {
	h := &recordingHandler{}
	wf := MustWorkflow("levels", WithObserver(NewLoggingObserver(slog.New(h))))

	if _, err := NewStep(shipOrder, InWorkflow(wf), NumWorkers(0)); err == nil {
		t.Fatalf("expected rejection")
	}
	_ = wf.Validate()

	if len(h.records) != 2 {
		t.Fatalf("expected 2 log records, got %d", len(h.records))
	}

	rejected, validated := h.records[0], h.records[1]
	if rejected.Level != slog.LevelError || rejected.Message != "step_rejected" {
		t.Fatalf("unexpected rejection record: %v %q", rejected.Level, rejected.Message)
	}
	if attrsToMap(rejected)["step"].String() != "shipOrder" {
		t.Fatalf("expected step=shipOrder on rejection record")
	}
	if validated.Level != slog.LevelError || validated.Message != "workflow_validated" {
		t.Fatalf("unexpected validation record: %v %q", validated.Level, validated.Message)
	}
}

//
// BasicMetrics
//

func TestBasicMetrics_CountersAndSnapshot(t *testing.T) {
	m := &BasicMetrics{}
	wf := MustWorkflow("metrics", WithObserver(m))

	MustStep(shipOrder, InWorkflow(wf), NumWorkers(2))
	MustStep(deliver, InWorkflow(wf), NumWorkers(3))
	MustStep(shipOrder, InWorkflow(wf), NumWorkers(5)) // replaces 2 with 5
	_, _ = NewStep(deliver, InWorkflow(wf), NumWorkers(0))
	_ = wf.Validate() // no StartEvent consumer: fails

	snap := m.Snapshot()

	if snap.StepsRegistered != 2 {
		t.Fatalf("StepsRegistered=%d, want 2", snap.StepsRegistered)
	}
	if snap.StepsReplaced != 1 {
		t.Fatalf("StepsReplaced=%d, want 1", snap.StepsReplaced)
	}
	if snap.StepsRejected != 1 {
		t.Fatalf("StepsRejected=%d, want 1", snap.StepsRejected)
	}
	if snap.DeclaredWorkerSlots != 8 {
		t.Fatalf("DeclaredWorkerSlots=%d, want 8", snap.DeclaredWorkerSlots)
	}
	if snap.ValidationsFailed != 1 || snap.ValidationsPassed != 0 {
		t.Fatalf("validations passed=%d failed=%d, want 0/1", snap.ValidationsPassed, snap.ValidationsFailed)
	}
}

func TestBasicMetrics_SnapshotZero(t *testing.T) {
	var m BasicMetrics
	if snap := m.Snapshot(); snap != (BasicMetricsSnapshot{}) {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}
}
