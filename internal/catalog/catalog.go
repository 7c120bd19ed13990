package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/petrijr/stepflow/pkg/api"
)

var (
	// ErrSnapshotNotFound is returned when no snapshot exists for a workflow.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrInvalidSnapshot is returned when a snapshot lacks an ID or workflow name.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// Entry is the catalogued form of one step descriptor.
type Entry struct {
	Step           string   `json:"step" yaml:"step"`
	EventName      string   `json:"event_name" yaml:"event_name"`
	AcceptedEvents []string `json:"accepted_events" yaml:"accepted_events"`
	ReturnTypes    []string `json:"return_types" yaml:"return_types"`
	PassContext    bool     `json:"pass_context" yaml:"pass_context"`
	NumWorkers     int      `json:"num_workers" yaml:"num_workers"`
	Method         bool     `json:"method" yaml:"method"`
}

// Snapshot is the step catalog of one workflow at a point in time.
type Snapshot struct {
	ID       string    `json:"id" yaml:"id"`
	Workflow string    `json:"workflow" yaml:"workflow"`
	TakenAt  time.Time `json:"taken_at" yaml:"taken_at"`
	Entries  []Entry   `json:"steps" yaml:"steps"`
}

// TotalWorkers sums NumWorkers over all entries: the widest concurrency a
// dispatcher may reach for this workflow.
func (s Snapshot) TotalWorkers() int {
	total := 0
	for _, e := range s.Entries {
		total += e.NumWorkers
	}
	return total
}

func (s Snapshot) validate() error {
	if s.ID == "" {
		return errors.Join(ErrInvalidSnapshot, errors.New("snapshot id is required"))
	}
	if s.Workflow == "" {
		return errors.Join(ErrInvalidSnapshot, errors.New("snapshot workflow is required"))
	}
	return nil
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Entries = make([]Entry, len(s.Entries))
	for i, e := range s.Entries {
		e.AcceptedEvents = append([]string(nil), e.AcceptedEvents...)
		e.ReturnTypes = append([]string(nil), e.ReturnTypes...)
		out.Entries[i] = e
	}
	return out
}

// EntryOf converts a registered step into a catalog entry.
func EntryOf(step *api.Step) Entry {
	cfg := step.Config()
	return Entry{
		Step:           step.Name(),
		EventName:      cfg.EventName(),
		AcceptedEvents: api.EventTypeNames(cfg.AcceptedEvents()),
		ReturnTypes:    api.EventTypeNames(cfg.ReturnTypes()),
		PassContext:    cfg.PassContext(),
		NumWorkers:     cfg.NumWorkers(),
		Method:         step.IsMethod(),
	}
}

// SnapshotOf captures the steps currently registered in wf.
func SnapshotOf(wf *api.Workflow) Snapshot {
	steps := wf.Steps()
	entries := make([]Entry, 0, len(steps))
	for _, s := range steps {
		entries = append(entries, EntryOf(s))
	}
	return Snapshot{
		ID:       uuid.NewString(),
		Workflow: wf.Name(),
		TakenAt:  time.Now().UTC(),
		Entries:  entries,
	}
}

// Store persists catalog snapshots.
type Store interface {
	// SaveSnapshot stores snap. Snapshots are append-only.
	SaveSnapshot(ctx context.Context, snap Snapshot) error
	// LatestSnapshot returns the snapshot of workflow with the newest TakenAt;
	// ties go to the one saved last.
	LatestSnapshot(ctx context.Context, workflow string) (Snapshot, error)
	// ListWorkflows returns the names of all catalogued workflows, sorted.
	ListWorkflows(ctx context.Context) ([]string, error)
}
