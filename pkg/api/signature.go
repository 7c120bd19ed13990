package api

import (
	"reflect"
)

// DefaultEventName is the event parameter name recorded when none is given.
const DefaultEventName = "ev"

// SignatureHints carries what reflection cannot recover from a Go
// function type: parameter names and the members of interface-typed
// (union) events.
type SignatureHints struct {
	// Name labels diagnostics. Defaults to the function's own name.
	Name string

	// EventName is the name of the event parameter. Defaults to DefaultEventName.
	EventName string

	// Accepts lists the members of an interface-typed event parameter.
	Accepts []EventType

	// Emits lists the events a step may return, in declared order.
	// It may contain NoEvent.
	Emits []EventType
}

// StepSignature is the event contract derived from a step function.
type StepSignature struct {
	EventName      string
	AcceptedEvents []EventType
	ReturnTypes    []EventType

	// EventIndex is the position of the event parameter.
	EventIndex int
	// ContextIndex is the position of the context.Context parameter, or -1.
	ContextIndex int
	// RunContextIndex is the position of the *RunContext parameter, or -1.
	RunContextIndex int
}

// WantsRunContext reports whether the function declares a *RunContext parameter.
func (s StepSignature) WantsRunContext() bool {
	return s.RunContextIndex >= 0
}

// ValidateStepSignature inspects fn and returns its event contract.
//
// Accepted shapes, with parameters in any order:
//
//	func([ctx context.Context,] [rc *RunContext,] ev E) error
//	func([ctx context.Context,] [rc *RunContext,] ev E) (R, error)
//
// E and R are event types. If either is an interface, its members must be
// listed in hints.Accepts / hints.Emits. Every failure is a
// *WorkflowValidationError.
func ValidateStepSignature(fn any, hints SignatureHints) (StepSignature, error) {
	name := hints.Name
	if fn == nil {
		return StepSignature{}, validationErrorf(name, "step must be a function, got nil")
	}

	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return StepSignature{}, validationErrorf(name, "step must be a function, got %T", fn)
	}
	if fv.IsNil() {
		return StepSignature{}, validationErrorf(name, "step function is nil")
	}
	if name == "" {
		name = shortFuncName(fv)
	}
	if ft.IsVariadic() {
		return StepSignature{}, validationErrorf(name, "variadic step functions are not supported")
	}

	sig := StepSignature{
		EventName:       hints.EventName,
		EventIndex:      -1,
		ContextIndex:    -1,
		RunContextIndex: -1,
	}
	if sig.EventName == "" {
		sig.EventName = DefaultEventName
	}

	var unknown *WorkflowValidationError
	for i := 0; i < ft.NumIn(); i++ {
		pt := ft.In(i)
		switch {
		case pt == runContextType:
			if sig.RunContextIndex >= 0 {
				return StepSignature{}, validationErrorf(name, "step signature has more than one *RunContext parameter")
			}
			sig.RunContextIndex = i
		case pt == contextInterface:
			if sig.ContextIndex >= 0 {
				return StepSignature{}, validationErrorf(name, "step signature has more than one context.Context parameter")
			}
			sig.ContextIndex = i
		case pt.Implements(eventInterface):
			if sig.EventIndex >= 0 {
				return StepSignature{}, validationErrorf(name,
					"step signature must contain exactly one parameter of type Event but it contains more (parameters %d and %d)",
					sig.EventIndex, i)
			}
			sig.EventIndex = i
		default:
			if unknown == nil {
				unknown = validationErrorf(name,
					"parameter %d has type %s, which is not an Event, context.Context or *RunContext", i, pt)
			}
		}
	}

	if sig.EventIndex < 0 {
		return StepSignature{}, validationErrorf(name, "step signature must have at least one parameter of type Event")
	}
	if unknown != nil {
		return StepSignature{}, unknown
	}

	accepted, err := acceptedEvents(name, ft.In(sig.EventIndex), hints.Accepts)
	if err != nil {
		return StepSignature{}, err
	}
	sig.AcceptedEvents = accepted

	returns, err := returnEvents(name, ft, hints.Emits)
	if err != nil {
		return StepSignature{}, err
	}
	sig.ReturnTypes = returns

	return sig, nil
}

func acceptedEvents(name string, pt reflect.Type, declared []EventType) ([]EventType, error) {
	if pt.Kind() != reflect.Interface {
		if len(declared) == 0 {
			return []EventType{{rt: pt}}, nil
		}
		var out []EventType
		for _, t := range declared {
			if t.rt != pt {
				return nil, validationErrorf(name, "accepted event %s does not match parameter type %s", t, pt)
			}
			out = appendUnique(out, t)
		}
		return out, nil
	}

	if len(declared) == 0 {
		return nil, validationErrorf(name, "event parameter has interface type %s; declare its members with Accepts()", pt)
	}
	var out []EventType
	for _, t := range declared {
		switch {
		case t.IsNone():
			return nil, validationErrorf(name, "NoEvent cannot be an accepted event")
		case t.isInterface():
			return nil, validationErrorf(name, "accepted event %s must be a concrete type", t)
		case !t.rt.AssignableTo(pt):
			return nil, validationErrorf(name, "accepted event %s does not implement %s", t, pt)
		}
		out = appendUnique(out, t)
	}
	return out, nil
}

func returnEvents(name string, ft reflect.Type, declared []EventType) ([]EventType, error) {
	n := ft.NumOut()
	if n == 0 || n > 2 {
		return nil, validationErrorf(name, "step must return error or (Event, error), got %d results", n)
	}
	if last := ft.Out(n - 1); last != errorInterface {
		return nil, validationErrorf(name, "last return value must be error, got %s", last)
	}

	if n == 1 {
		if len(declared) > 0 {
			return nil, validationErrorf(name, "Emits() declared but step returns no event")
		}
		return []EventType{NoEvent}, nil
	}

	rt := ft.Out(0)
	if !rt.Implements(eventInterface) {
		return nil, validationErrorf(name, "return type %s is not an Event", rt)
	}

	if rt.Kind() != reflect.Interface {
		if len(declared) == 0 {
			return []EventType{{rt: rt}}, nil
		}
		var out []EventType
		hasR := false
		for _, t := range declared {
			switch {
			case t.IsNone():
				if rt.Kind() != reflect.Pointer {
					return nil, validationErrorf(name, "return type %s is never nil; NoEvent cannot be emitted", rt)
				}
			case t.rt != rt:
				return nil, validationErrorf(name, "emitted event %s does not match return type %s", t, rt)
			default:
				hasR = true
			}
			out = appendUnique(out, t)
		}
		if !hasR {
			return nil, validationErrorf(name, "Emits() must include the return type %s", rt)
		}
		return out, nil
	}

	if len(declared) == 0 {
		return nil, validationErrorf(name, "return type %s is an interface; declare emitted events with Emits()", rt)
	}
	var out []EventType
	for _, t := range declared {
		switch {
		case t.IsNone():
		case t.isInterface():
			return nil, validationErrorf(name, "emitted event %s must be a concrete type", t)
		case !t.rt.AssignableTo(rt):
			return nil, validationErrorf(name, "emitted event %s does not implement %s", t, rt)
		}
		out = appendUnique(out, t)
	}
	return out, nil
}
