package export

import (
	"context"
	"encoding/json"
	"io"

	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
)

// Snapshot bundles a habit with the log entries selected for export.
type Snapshot struct {
	Habit *habit.Habit      `json:"habit"`
	Logs  []*habit.LogEntry `json:"logs"`
}

// JSONExporter exports habit snapshots to JSON format.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{
		Pretty: pretty,
	}
}

// Export writes the snapshots to the provided writer as a JSON array.
// If Pretty is true, the JSON will be indented for readability.
func (e *JSONExporter) Export(ctx context.Context, snapshots []*Snapshot, w io.Writer) error {
	if len(snapshots) == 0 {
		// Write empty array
		_, err := w.Write([]byte("[]"))
		return err
	}

	var data []byte
	var err error

	if e.Pretty {
		data, err = json.MarshalIndent(snapshots, "", "  ")
	} else {
		data, err = json.Marshal(snapshots)
	}
	if err != nil {
		return habit.NewExportError("json", len(snapshots), err)
	}

	_, err = w.Write(data)
	if err != nil {
		return habit.NewExportError("json", len(snapshots), err)
	}

	return nil
}
