package api

import (
	"context"
	"reflect"
)

// Event is implemented by every message that flows between steps.
//
// The interface is sealed: user events embed BaseEvent.
//
//	type OrderPlaced struct {
//	    api.BaseEvent
//	    OrderID string
//	}
type Event interface {
	isEvent()
}

// BaseEvent marks a struct as an Event when embedded.
type BaseEvent struct{}

func (BaseEvent) isEvent() {}

// StartEvent is delivered to the first step(s) of a run and carries the run input.
type StartEvent struct {
	BaseEvent
	Input any
}

// StopEvent ends a run; Result becomes the run output.
type StopEvent struct {
	BaseEvent
	Result any
}

var (
	eventInterface   = reflect.TypeOf((*Event)(nil)).Elem()
	errorInterface   = reflect.TypeOf((*error)(nil)).Elem()
	contextInterface = reflect.TypeOf((*context.Context)(nil)).Elem()
	runContextType   = reflect.TypeOf((*RunContext)(nil))

	startEventType = TypeOf[StartEvent]()
	stopEventType  = TypeOf[StopEvent]()
)

// EventType is a comparable identity for an event type. It can be used as
// a map key. The zero value is NoEvent.
type EventType struct {
	rt reflect.Type
}

// NoEvent marks a step that may complete without emitting an event.
var NoEvent = EventType{}

// TypeOf returns the EventType of E.
func TypeOf[E Event]() EventType {
	return EventType{rt: reflect.TypeOf((*E)(nil)).Elem()}
}

// EventTypeOf returns the dynamic EventType of ev. A nil event yields NoEvent.
func EventTypeOf(ev Event) EventType {
	if ev == nil {
		return NoEvent
	}
	return EventType{rt: reflect.TypeOf(ev)}
}

// StartEventType is the EventType of StartEvent.
func StartEventType() EventType { return startEventType }

// StopEventType is the EventType of StopEvent.
func StopEventType() EventType { return stopEventType }

// IsNone reports whether t is the NoEvent marker.
func (t EventType) IsNone() bool {
	return t.rt == nil
}

// Type returns the underlying reflect.Type, or nil for NoEvent.
func (t EventType) Type() reflect.Type {
	return t.rt
}

// Name returns the qualified Go type name, e.g. "orders.OrderPlaced" or
// "*orders.OrderPlaced". NoEvent is named "none".
func (t EventType) Name() string {
	if t.rt == nil {
		return "none"
	}
	return t.rt.String()
}

func (t EventType) String() string {
	return t.Name()
}

// isInterface reports whether t names an interface rather than a concrete event.
func (t EventType) isInterface() bool {
	return t.rt != nil && t.rt.Kind() == reflect.Interface
}

// EventTypeNames renders a list of event types for diagnostics and catalogs.
func EventTypeNames(types []EventType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, t.Name())
	}
	return out
}

// appendUnique appends t to list unless it is already present.
func appendUnique(list []EventType, t EventType) []EventType {
	for _, existing := range list {
		if existing == t {
			return list
		}
	}
	return append(list, t)
}
