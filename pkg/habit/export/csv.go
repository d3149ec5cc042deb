package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
)

// CSVExporter exports habit snapshots to CSV format.
// Each log entry becomes one row carrying its habit's columns; a habit
// without logs still gets a single row with the log columns empty.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

// Export writes the snapshots to the provided writer in CSV format.
func (e *CSVExporter) Export(ctx context.Context, snapshots []*Snapshot, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(e.getHeaderRow()); err != nil {
			return habit.NewExportError("csv", len(snapshots), err)
		}
	}

	for _, snapshot := range snapshots {
		for _, row := range e.snapshotToRows(snapshot) {
			if err := writer.Write(row); err != nil {
				return habit.NewExportError("csv", len(snapshots), err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return habit.NewExportError("csv", len(snapshots), err)
	}

	return nil
}

// getHeaderRow returns the CSV column names.
func (e *CSVExporter) getHeaderRow() []string {
	return []string{
		"habit_id",
		"habit_name",
		"habit_type",
		"category",
		"goal",
		"parent_id",
		"habit_created_at",
		"log_id",
		"log_date",
		"log_value",
		"log_created_at",
	}
}

// snapshotToRows flattens a snapshot into CSV rows.
func (e *CSVExporter) snapshotToRows(snapshot *Snapshot) [][]string {
	h := snapshot.Habit
	habitCols := []string{
		strconv.FormatInt(h.ID, 10),
		h.Name,
		string(h.Type),
		h.Category,
		formatFloat(h.Goal),
		formatInt(h.ParentID),
		h.CreatedAt.Format(habit.DateFormat),
	}

	if len(snapshot.Logs) == 0 {
		return [][]string{append(habitCols, "", "", "", "")}
	}

	rows := make([][]string, 0, len(snapshot.Logs))
	for _, entry := range snapshot.Logs {
		row := make([]string, 0, len(habitCols)+4)
		row = append(row, habitCols...)
		row = append(row,
			strconv.FormatInt(entry.ID, 10),
			entry.Date,
			formatFloat(entry.Value),
			entry.CreatedAt.Format(habit.DateFormat),
		)
		rows = append(rows, row)
	}
	return rows
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
