// Package recorder defines the Recorder collaborator: a sink the engine
// hands per-step snapshots to, and never reads back (spec §6, "results
// are recorded, never printed directly"). Grounded on
// original_source/include/ctiprd/binding/trajectory.h's per-step
// record(step, particles) snapshot.
package recorder

import "github.com/pthm-cable/iprd/store"

// Snapshot is one particle's state at a recorded step.
type Snapshot struct {
	Step     int64
	ID       store.ParticleID
	Type     store.ParticleType
	Position []float64
}

// Recorder receives a snapshot of every live particle at a step. Engine
// calls Record once per recorded step, in ascending ParticleID order
// within the step (spec §6). Warn surfaces a numerical warning (e.g. a
// particle tombstoned for a non-finite position) instead of printing it
// directly (spec §7: "a warning surfaced through the Recorder, no
// retry").
type Recorder interface {
	Record(step int64, snapshots []Snapshot) error
	Warn(step int64, msg string)
	Close() error
}

// Null discards every snapshot and warning. Used when no output sink is
// configured, mirroring the teacher's nil-OutputManager "output
// disabled" convention (telemetry/output.go's NewOutputManager
// returning nil for an empty dir).
type Null struct{}

func (Null) Record(step int64, snapshots []Snapshot) error { return nil }
func (Null) Warn(step int64, msg string)                    {}
func (Null) Close() error                                   { return nil }
