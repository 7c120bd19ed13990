package api

import (
	"context"
	"errors"
)

type orderPlaced struct {
	BaseEvent
	ID string
}

type paymentTaken struct {
	BaseEvent
	ID     string
	Amount int
}

type paymentFailed struct {
	BaseEvent
	Reason string
}

type orderShipped struct {
	BaseEvent
	ID string
}

// paymentEvent is a union of paymentTaken and paymentFailed.
type paymentEvent interface {
	Event
	isPayment()
}

func (paymentTaken) isPayment()  {}
func (paymentFailed) isPayment() {}

// checkout owns its steps as methods.
type checkout struct {
	charged int
}

func (c *checkout) start(ev StartEvent) (orderPlaced, error) {
	id, _ := ev.Input.(string)
	return orderPlaced{ID: id}, nil
}

func (c *checkout) charge(ctx context.Context, rc *RunContext, ev orderPlaced) (paymentEvent, error) {
	if ev.ID == "" {
		return paymentFailed{Reason: "missing id"}, nil
	}
	c.charged++
	rc.Set("last_order", ev.ID)
	return paymentTaken{ID: ev.ID, Amount: 42}, nil
}

func (c *checkout) finish(ev paymentEvent) (StopEvent, error) {
	return StopEvent{Result: ev}, nil
}

func (c *checkout) audit(ev orderPlaced) error {
	if ev.ID == "boom" {
		return errors.New("audit failed")
	}
	return nil
}

func (c *checkout) maybeShip(ev paymentEvent) (*orderShipped, error) {
	if p, ok := ev.(paymentTaken); ok {
		return &orderShipped{ID: p.ID}, nil
	}
	return nil, nil
}

// untyped has no event parameter at all.
func (c *checkout) untyped(ctx context.Context, n int) error {
	return nil
}

func shipOrder(ev orderPlaced) (orderShipped, error) {
	return orderShipped{ID: ev.ID}, nil
}

func deliver(ctx context.Context, ev orderShipped) (StopEvent, error) {
	return StopEvent{Result: "delivered " + ev.ID}, nil
}

func paymentTypes() []EventType {
	return []EventType{TypeOf[paymentTaken](), TypeOf[paymentFailed]()}
}
