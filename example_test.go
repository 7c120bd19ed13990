package stepflow_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite"

	"github.com/petrijr/stepflow"
)

type TicketOpened struct {
	stepflow.BaseEvent
	Subject string
}

type Desk struct{}

func (d *Desk) open(ev stepflow.StartEvent) (TicketOpened, error) {
	return TicketOpened{Subject: fmt.Sprint(ev.Input)}, nil
}

func (d *Desk) resolve(ctx context.Context, rc *stepflow.RunContext, ev TicketOpened) (stepflow.StopEvent, error) {
	return stepflow.StopEvent{Result: "resolved: " + ev.Subject}, nil
}

// Example_flowBuilder demonstrates defining a workflow with the FlowBuilder
// and inspecting the routing table a dispatcher would build from it.
func Example_flowBuilder() {
	d := &Desk{}

	wf, err := stepflow.New("helpdesk").
		Step(d.open).
		Step(d.resolve, stepflow.PassContext(true), stepflow.NumWorkers(3)).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	for _, s := range wf.Steps() {
		cfg := s.Config()
		fmt.Printf("%s: %v -> %v workers=%d pass_context=%t\n",
			s.Name(), cfg.AcceptedEvents(), cfg.ReturnTypes(), cfg.NumWorkers(), cfg.PassContext())
	}

	// Output:
	// open: [api.StartEvent] -> [stepflow_test.TicketOpened] workers=1 pass_context=false
	// resolve: [stepflow_test.TicketOpened] -> [api.StopEvent] workers=3 pass_context=true
}

// Example_rejectedStep shows a free function registered without a workflow.
func Example_rejectedStep() {
	_, err := stepflow.NewStep(escalate)
	fmt.Println(err)

	// Output:
	// step escalate: to register escalate please pass a workflow with InWorkflow()
}

func escalate(ev TicketOpened) error {
	return nil
}

// Example_publishCatalog demonstrates publishing step contracts to a
// SQLite-backed catalog.
func Example_publishCatalog() {
	ctx := context.Background()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	store, err := stepflow.NewSQLiteCatalog(db)
	if err != nil {
		log.Fatal(err)
	}

	d := &Desk{}
	wf := stepflow.MustWorkflow("helpdesk", stepflow.WithSteps(
		stepflow.MustStep(d.open),
		stepflow.MustStep(d.resolve, stepflow.PassContext(true), stepflow.NumWorkers(3)),
	))

	if _, err := stepflow.PublishCatalog(ctx, store, wf); err != nil {
		log.Fatal(err)
	}

	snap, err := store.LatestSnapshot(ctx, "helpdesk")
	if err != nil {
		log.Fatal(err)
	}
	for _, e := range snap.Entries {
		fmt.Printf("%s(%s %v) workers=%d\n", e.Step, e.EventName, e.AcceptedEvents, e.NumWorkers)
	}

	// Output:
	// open(ev [api.StartEvent]) workers=1
	// resolve(ev [stepflow_test.TicketOpened]) workers=3
}
