package recorder

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

// row is the flat CSV-friendly projection of a Snapshot. Position is
// semicolon-joined since its width varies with the system's
// dimensionality, unlike the teacher's fixed-schema telemetry rows.
type row struct {
	Step     int64  `csv:"step"`
	ID       int    `csv:"id"`
	Type     int32  `csv:"type"`
	Position string `csv:"position"`
}

func toRow(step int64, s Snapshot) row {
	parts := make([]string, len(s.Position))
	for i, x := range s.Position {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return row{
		Step:     step,
		ID:       int(s.ID),
		Type:     int32(s.Type),
		Position: strings.Join(parts, ";"),
	}
}

// CSV is a Recorder that appends one row per particle per recorded step
// to a CSV file, writing the header once on the first write (mirrors
// telemetry/output.go's OutputManager header-tracking writers).
type CSV struct {
	file          *os.File
	headerWritten bool
}

// NewCSV creates (or truncates) path and returns a CSV recorder writing
// to it.
func NewCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("recorder: creating %s: %w", path, err)
	}
	return &CSV{file: f}, nil
}

// Record appends snapshots as CSV rows, writing the header on first use.
func (c *CSV) Record(step int64, snapshots []Snapshot) error {
	rows := make([]row, len(snapshots))
	for i, s := range snapshots {
		rows[i] = toRow(step, s)
	}

	if !c.headerWritten {
		if err := gocsv.Marshal(rows, c.file); err != nil {
			return fmt.Errorf("recorder: writing header+rows: %w", err)
		}
		c.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, c.file); err != nil {
		return fmt.Errorf("recorder: writing rows: %w", err)
	}
	return nil
}

// Warn logs a numerical warning via slog, tagged with the step it
// occurred on. CSV has no dedicated warnings column, so this is the
// sink's only way of surfacing it (spec §7).
func (c *CSV) Warn(step int64, msg string) {
	slog.Warn(msg, "step", step)
}

// Close flushes and closes the underlying file.
func (c *CSV) Close() error {
	return c.file.Close()
}
