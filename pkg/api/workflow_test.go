package api

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// newCheckoutWorkflow wires checkout's methods plus the free shipping steps.
func newCheckoutWorkflow(t *testing.T, opts ...WorkflowOption) *Workflow {
	t.Helper()

	c := &checkout{}
	steps := []*Step{
		MustStep(c.start),
		MustStep(c.charge, PassContext(true), NumWorkers(4), Emits(paymentTypes()...)),
		MustStep(c.finish, Accepts(paymentTypes()...)),
	}
	wf, err := NewWorkflow("checkout", append(opts, WithSteps(steps...))...)
	require.NoError(t, err)
	return wf
}

func TestNewWorkflow_RequiresName(t *testing.T) {
	_, err := NewWorkflow("  ")
	require.ErrorIs(t, err, ErrWorkflowValidation)
	require.Panics(t, func() { MustWorkflow("") })
}

func TestWorkflow_StepsKeepRegistrationOrder(t *testing.T) {
	wf := newCheckoutWorkflow(t)

	var names []string
	for _, s := range wf.Steps() {
		names = append(names, s.Name())
	}
	require.Equal(t, []string{"start", "charge", "finish"}, names)
	require.Equal(t, 3, wf.Len())
	require.Equal(t, "checkout", wf.Name())
}

func TestWorkflow_AddStepRejectsNil(t *testing.T) {
	wf := MustWorkflow("nil-step")
	require.ErrorIs(t, wf.AddStep(nil), ErrWorkflowValidation)
}

func TestWorkflow_AddStepReplacesSameName(t *testing.T) {
	obs := &recordingObserver{}
	wf := MustWorkflow("replace", WithObserver(obs))

	first := MustStep(shipOrder, InWorkflow(wf))
	second := MustStep(shipOrder, InWorkflow(wf), NumWorkers(3))

	got, ok := wf.Step("shipOrder")
	require.True(t, ok)
	require.Same(t, second, got)
	require.Equal(t, 1, first.Config().NumWorkers())
	require.Equal(t, []string{"shipOrder"}, obs.registered)
	require.Equal(t, []string{"shipOrder"}, obs.replaced)
}

func TestWorkflow_Routes(t *testing.T) {
	wf := newCheckoutWorkflow(t)

	routes := wf.Routes()
	require.Len(t, routes, 4)

	start := routes[StartEventType()]
	require.Len(t, start, 1)
	require.Equal(t, "start", start[0].Name())

	for _, et := range paymentTypes() {
		consumers := wf.Consumers(et)
		require.Len(t, consumers, 1)
		require.Equal(t, "finish", consumers[0].Name())
	}
	require.Empty(t, wf.Consumers(TypeOf[orderShipped]()))
}

func TestWorkflow_Validate_ClosedGraph(t *testing.T) {
	obs := &recordingObserver{}
	wf := newCheckoutWorkflow(t, WithObserver(obs))

	require.NoError(t, wf.Validate())
	require.Equal(t, 1, obs.validated)
	require.NoError(t, obs.lastValidation)
}

func TestWorkflow_Validate_ReportsAllProblems(t *testing.T) {
	wf := MustWorkflow("broken")
	MustStep(shipOrder, InWorkflow(wf))

	err := wf.Validate()
	require.ErrorIs(t, err, ErrWorkflowValidation)
	require.ErrorContains(t, err, "must accept StartEvent")
	require.ErrorContains(t, err, "must emit StopEvent")
	require.ErrorContains(t, err, "events consumed but never produced: api.orderPlaced")
	require.ErrorContains(t, err, "events produced but never consumed: api.orderShipped")
}

func TestWorkflow_Validate_Empty(t *testing.T) {
	err := MustWorkflow("empty").Validate()
	require.ErrorIs(t, err, ErrWorkflowValidation)
	require.ErrorContains(t, err, "has no steps")
}

func TestWorkflow_Validate_NoEventIsIgnored(t *testing.T) {
	c := &checkout{}
	wf := MustWorkflow("audit", WithSteps(
		MustStep(c.start),
		MustStep(c.audit),
	))
	MustStep(deliver, InWorkflow(wf))
	MustStep(shipOrder, InWorkflow(wf))

	require.NoError(t, wf.Validate())
}

func TestWorkflow_ConcurrentReadsDuringRegistration(t *testing.T) {
	wf := MustWorkflow("concurrent")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := NewStep(shipOrder, InWorkflow(wf))
			if err != nil && !errors.Is(err, ErrWorkflowValidation) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			_ = wf.Routes()
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wf.Len())
}
