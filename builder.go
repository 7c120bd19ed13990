package stepflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/petrijr/stepflow/pkg/api"
)

// FlowBuilder provides a fluent API for defining workflows:
//
//	wf, err := stepflow.New("checkout").
//	    Step(c.reserve).
//	    Step(c.charge, stepflow.PassContext(true), stepflow.NumWorkers(4)).
//	    Step(ship).
//	    Build()
//
// Every step is registered with the workflow under construction, so free
// functions need no InWorkflow option. Registration errors are collected
// and reported together by Build.
type FlowBuilder struct {
	name string
	wf   *api.Workflow
	errs []error
}

// New creates a new workflow builder with the given name.
func New(name string, opts ...WorkflowOption) *FlowBuilder {
	b := &FlowBuilder{name: name}
	wf, err := api.NewWorkflow(name, opts...)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.wf = wf
	return b
}

// Name returns the workflow name.
func (b *FlowBuilder) Name() string {
	return b.name
}

// Step validates fn and registers it with the workflow.
func (b *FlowBuilder) Step(fn any, opts ...StepOption) *FlowBuilder {
	if b.wf == nil {
		return b
	}

	all := make([]StepOption, 0, len(opts)+1)
	all = append(all, opts...)
	all = append(all, api.InWorkflow(b.wf))

	if _, err := api.NewStep(fn, all...); err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Build returns the workflow once every step registered and the event graph
// is consistent.
func (b *FlowBuilder) Build() (*Workflow, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if err := b.wf.Validate(); err != nil {
		return nil, err
	}
	return b.wf, nil
}

// MustBuild is like Build but panics on error.
func (b *FlowBuilder) MustBuild() *Workflow {
	wf, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("stepflow: build workflow %q: %v", b.name, err))
	}
	return wf
}

// Publish builds the workflow and saves its step catalog to store.
func (b *FlowBuilder) Publish(ctx context.Context, store CatalogStore) (CatalogSnapshot, error) {
	wf, err := b.Build()
	if err != nil {
		return CatalogSnapshot{}, err
	}
	return PublishCatalog(ctx, store, wf)
}
