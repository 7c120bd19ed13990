package stepflow

import (
	"context"
	"fmt"
)

type parcelPacked struct {
	BaseEvent
	Parcel string
}

type parcelLabelled struct {
	BaseEvent
	Parcel string
	Label  string
}

type warehouse struct {
	prefix string
}

func (w *warehouse) pack(ev StartEvent) (parcelPacked, error) {
	return parcelPacked{Parcel: fmt.Sprint(ev.Input)}, nil
}

func (w *warehouse) label(ctx context.Context, rc *RunContext, ev parcelPacked) (parcelLabelled, error) {
	rc.Set("labelled", ev.Parcel)
	return parcelLabelled{Parcel: ev.Parcel, Label: w.prefix + ev.Parcel}, nil
}

func dispatch(ev parcelLabelled) (StopEvent, error) {
	return StopEvent{Result: ev.Label}, nil
}

func notAStep(s string) error {
	return nil
}
