package stepflow

import (
	"context"
	"database/sql"

	"github.com/petrijr/stepflow/internal/catalog"
	"github.com/petrijr/stepflow/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Event                   = api.Event
	BaseEvent               = api.BaseEvent
	StartEvent              = api.StartEvent
	StopEvent               = api.StopEvent
	EventType               = api.EventType
	RunContext              = api.RunContext
	Step                    = api.Step
	StepConfig              = api.StepConfig
	StepOption              = api.StepOption
	Workflow                = api.Workflow
	WorkflowOption          = api.WorkflowOption
	WorkflowValidationError = api.WorkflowValidationError
	Observer                = api.Observer
	LoggingObserver         = api.LoggingObserver
	BasicMetrics            = api.BasicMetrics
	BasicMetricsSnapshot    = api.BasicMetricsSnapshot
	CompositeObserver       = api.CompositeObserver
	NoopObserver            = api.NoopObserver
)

// Catalog types.

type (
	CatalogStore    = catalog.Store
	CatalogSnapshot = catalog.Snapshot
	CatalogEntry    = catalog.Entry
)

var (
	ErrWorkflowValidation = api.ErrWorkflowValidation
	ErrEventNotAccepted   = api.ErrEventNotAccepted
	ErrSnapshotNotFound   = catalog.ErrSnapshotNotFound
)

// NoEvent is the "no event" sentinel a step may list among its return types.
var NoEvent = api.NoEvent

// Re-export constructors and helpers.

var (
	NewStep              = api.NewStep
	MustStep             = api.MustStep
	StepConfigOf         = api.StepConfigOf
	NewWorkflow          = api.NewWorkflow
	MustWorkflow         = api.MustWorkflow
	NewRunContext        = api.NewRunContext
	EventTypeOf          = api.EventTypeOf
	StartEventType       = api.StartEventType
	StopEventType        = api.StopEventType
	IsValidationError    = api.IsValidationError
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
)

// TypeOf returns the EventType of E.
func TypeOf[E Event]() EventType {
	return api.TypeOf[E]()
}

// Catalog constructors
// These wrap the internal/catalog package so external callers
// never need to import internal packages.

// NewInMemoryCatalog returns a non-durable catalog store, useful in tests.
func NewInMemoryCatalog() CatalogStore {
	return catalog.NewInMemoryStore()
}

// NewSQLiteCatalog returns a catalog store that keeps snapshots in a SQLite
// database. The caller imports the driver, e.g. _ "modernc.org/sqlite".
func NewSQLiteCatalog(db *sql.DB) (CatalogStore, error) {
	return catalog.NewSQLiteStore(db)
}

// PublishCatalog validates wf and saves a snapshot of its steps to store.
// An invalid workflow is never published.
func PublishCatalog(ctx context.Context, store CatalogStore, wf *Workflow) (CatalogSnapshot, error) {
	if err := wf.Validate(); err != nil {
		return CatalogSnapshot{}, err
	}

	snap := catalog.SnapshotOf(wf)
	if err := store.SaveSnapshot(ctx, snap); err != nil {
		return CatalogSnapshot{}, err
	}
	return snap, nil
}
