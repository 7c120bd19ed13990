package api

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// StepConfig is the immutable descriptor attached to a registered step.
// A dispatcher reads it to build routing tables and size worker pools.
type StepConfig struct {
	acceptedEvents []EventType
	eventName      string
	eventIndex     int
	returnTypes    []EventType
	passContext    bool
	numWorkers     int
}

// AcceptedEvents returns the event types the step consumes. Never empty.
func (c *StepConfig) AcceptedEvents() []EventType {
	return append([]EventType(nil), c.acceptedEvents...)
}

// EventName returns the name of the step's event parameter.
func (c *StepConfig) EventName() string { return c.eventName }

// EventIndex returns the position of the event parameter in the function signature.
func (c *StepConfig) EventIndex() int { return c.eventIndex }

// ReturnTypes returns the event types the step may emit, in declared order.
// NoEvent appears when the step may finish without emitting.
func (c *StepConfig) ReturnTypes() []EventType {
	return append([]EventType(nil), c.returnTypes...)
}

// PassContext reports whether the dispatcher must inject a *RunContext.
func (c *StepConfig) PassContext() bool { return c.passContext }

// NumWorkers is the maximum number of concurrent invocations the
// dispatcher may schedule for this step.
func (c *StepConfig) NumWorkers() int { return c.numWorkers }

// Accepts reports whether the step consumes events of type t.
func (c *StepConfig) Accepts(t EventType) bool {
	for _, a := range c.acceptedEvents {
		if a == t {
			return true
		}
	}
	return false
}

// Emits reports whether t is among the step's return types.
func (c *StepConfig) Emits(t EventType) bool {
	for _, r := range c.returnTypes {
		if r == t {
			return true
		}
	}
	return false
}

// Step is a function together with its StepConfig.
//
// The wrapped function is never altered: Func returns it as given, and
// calling it directly behaves exactly as before registration.
type Step struct {
	name   string
	fn     any
	fv     reflect.Value
	sig    StepSignature
	config *StepConfig
	method bool
	opts   []StepOption
}

// NewStep validates fn and returns it as a Step.
//
// fn is either a bound method value (wf.handle), which a workflow collects
// through WithSteps, or a free function, which must name its workflow with
// InWorkflow and is registered there on success. The ownership check, the
// worker count and the signature are all checked; a single failure is
// returned as is, several are joined. On failure nothing is registered.
func NewStep(fn any, opts ...StepOption) (*Step, error) {
	o := defaultStepOptions()
	for _, opt := range opts {
		opt(&o)
	}

	fv := reflect.ValueOf(fn)
	isFunc := fn != nil && fv.Kind() == reflect.Func && !fv.IsNil()

	name := o.name
	if name == "" && isFunc {
		name = defaultStepName(fv)
	}
	method := isFunc && isBoundMethod(fv)

	var errs []error
	if isFunc && !method && o.workflow == nil {
		errs = append(errs, validationErrorf(name,
			"to register %s please pass a workflow with InWorkflow()", name))
	}
	if o.numWorkers <= 0 {
		errs = append(errs, validationErrorf(name,
			"num_workers must be an integer greater than 0, got %d", o.numWorkers))
	}

	sig, err := ValidateStepSignature(fn, SignatureHints{
		Name:      name,
		EventName: o.eventName,
		Accepts:   o.accepts,
		Emits:     o.emits,
	})
	switch {
	case err != nil:
		errs = append(errs, err)
	case o.passContext && !sig.WantsRunContext():
		errs = append(errs, validationErrorf(name, "pass_context is set but the step has no *RunContext parameter"))
	case !o.passContext && sig.WantsRunContext():
		errs = append(errs, validationErrorf(name, "step declares a *RunContext parameter but pass_context is not set"))
	}

	if len(errs) > 0 {
		err := errs[0]
		if len(errs) > 1 {
			err = errors.Join(errs...)
		}
		if o.workflow != nil {
			o.workflow.observer.OnStepRejected(o.workflow, name, err)
		}
		return nil, err
	}

	step := &Step{
		name:   name,
		fn:     fn,
		fv:     fv,
		sig:    sig,
		method: method,
		opts:   append([]StepOption(nil), opts...),
		config: &StepConfig{
			acceptedEvents: sig.AcceptedEvents,
			eventName:      sig.EventName,
			eventIndex:     sig.EventIndex,
			returnTypes:    sig.ReturnTypes,
			passContext:    o.passContext,
			numWorkers:     o.numWorkers,
		},
	}

	if o.workflow != nil {
		if err := o.workflow.AddStep(step); err != nil {
			return nil, err
		}
	}
	return step, nil
}

// MustStep is like NewStep but panics on error.
// Useful for package-level step declarations.
func MustStep(fn any, opts ...StepOption) *Step {
	s, err := NewStep(fn, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// StepConfigOf returns the descriptor attached to v. Anything other than
// a non-nil *Step is not a step.
func StepConfigOf(v any) (*StepConfig, bool) {
	s, ok := v.(*Step)
	if !ok || s == nil {
		return nil, false
	}
	return s.config, true
}

// Name returns the step name.
func (s *Step) Name() string { return s.name }

// Func returns the original function.
func (s *Step) Func() any { return s.fn }

// Config returns the step descriptor.
func (s *Step) Config() *StepConfig { return s.config }

// IsMethod reports whether the step wraps a bound method value.
func (s *Step) IsMethod() bool { return s.method }

// With re-registers the same function with opts applied on top of the
// options it was created with. The receiver is left untouched; if the
// step names a workflow, the new step replaces it there.
func (s *Step) With(opts ...StepOption) (*Step, error) {
	all := make([]StepOption, 0, len(s.opts)+len(opts)+1)
	all = append(all, s.opts...)
	all = append(all, Named(s.name))
	all = append(all, opts...)
	return NewStep(s.fn, all...)
}

// Call invokes the step with ev, supplying ctx and rc to the parameters
// that declare them. It returns the emitted event, or nil when the step
// emits nothing.
func (s *Step) Call(ctx context.Context, rc *RunContext, ev Event) (Event, error) {
	if et := EventTypeOf(ev); !s.config.Accepts(et) {
		return nil, fmt.Errorf("%w: step %s accepts %v, got %s",
			ErrEventNotAccepted, s.name, EventTypeNames(s.config.acceptedEvents), et)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ft := s.fv.Type()
	args := make([]reflect.Value, ft.NumIn())
	for i := range args {
		switch i {
		case s.sig.EventIndex:
			args[i] = reflect.ValueOf(ev)
		case s.sig.ContextIndex:
			args[i] = reflect.ValueOf(ctx)
		case s.sig.RunContextIndex:
			args[i] = reflect.ValueOf(rc)
		}
	}

	out := s.fv.Call(args)

	var err error
	if errV := out[len(out)-1]; !errV.IsNil() {
		err = errV.Interface().(error)
	}
	if len(out) == 1 {
		return nil, err
	}

	evV := out[0]
	switch evV.Kind() {
	case reflect.Interface, reflect.Pointer:
		if evV.IsNil() {
			return nil, err
		}
	}
	return evV.Interface().(Event), err
}

func (s *Step) String() string {
	return fmt.Sprintf("%s(%s %v) -> %v [workers=%d pass_context=%t]",
		s.name, s.config.eventName, EventTypeNames(s.config.acceptedEvents),
		EventTypeNames(s.config.returnTypes), s.config.numWorkers, s.config.passContext)
}

func fullFuncName(fv reflect.Value) string {
	if f := runtime.FuncForPC(fv.Pointer()); f != nil {
		return f.Name()
	}
	return ""
}

// isBoundMethod reports whether fv is a method value such as wf.handle.
// The compiler names their wrappers with a "-fm" suffix.
func isBoundMethod(fv reflect.Value) bool {
	return strings.HasSuffix(fullFuncName(fv), "-fm")
}

// shortFuncName strips the import path and package from a function name:
// "example.com/orders.handleOrder" becomes "handleOrder" and
// "example.com/orders.(*Flow).check-fm" becomes "(*Flow).check".
func shortFuncName(fv reflect.Value) string {
	return trimFuncName(strings.TrimSuffix(fullFuncName(fv), "-fm"))
}

// trimFuncName drops the package from a runtime function name. The
// runtime escapes dots in the last import path element ("gopkg.in/yaml%2ev3.Foo"),
// so the first dot after the last slash ends the package name.
func trimFuncName(n string) string {
	if i := strings.LastIndex(n, "/"); i >= 0 {
		n = n[i+1:]
	}
	if i := strings.Index(n, "."); i >= 0 {
		n = n[i+1:]
	}
	return n
}

// defaultStepName is the method name for bound methods and the short
// function name otherwise.
func defaultStepName(fv reflect.Value) string {
	n := shortFuncName(fv)
	if isBoundMethod(fv) {
		if i := strings.LastIndex(n, "."); i >= 0 {
			n = n[i+1:]
		}
	}
	return n
}
