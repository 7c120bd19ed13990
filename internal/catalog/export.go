package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned for an export format other than yaml or json.
var ErrUnknownFormat = errors.New("unknown export format")

// Encode writes snap to w in the given format.
func Encode(w io.Writer, snap Snapshot, format string) error {
	switch format {
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Decode parses a snapshot from YAML (or JSON, which YAML accepts).
// A missing id or taken_at is filled in, so hand-written files can be
// imported.
func Decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now().UTC()
	}
	for i, e := range snap.Entries {
		if e.Step == "" {
			return Snapshot{}, fmt.Errorf("%w: entry %d has no step name", ErrInvalidSnapshot, i)
		}
		if len(e.AcceptedEvents) == 0 {
			return Snapshot{}, fmt.Errorf("%w: step %s accepts no events", ErrInvalidSnapshot, e.Step)
		}
		if e.NumWorkers <= 0 {
			return Snapshot{}, fmt.Errorf("%w: step %s has num_workers %d", ErrInvalidSnapshot, e.Step, e.NumWorkers)
		}
	}
	return snap, snap.validate()
}
