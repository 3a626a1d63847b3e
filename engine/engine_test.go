package engine

import (
	"testing"

	"github.com/pthm-cable/iprd/reaction"
	"github.com/pthm-cable/iprd/recorder"
	"github.com/pthm-cable/iprd/system"
	"github.com/pthm-cable/iprd/vecutil"
)

func newTestSystem(t *testing.T) *system.System {
	t.Helper()
	sys := &system.System{
		Dim:      2,
		Box:      []float64{20, 20},
		Periodic: true,
		KBT:      1.0,
		Seed:     1,
		Types: []system.TypeDef{
			{Name: "A", DiffusionConstant: 1.0},
		},
	}
	if err := sys.Validate(); err != nil {
		t.Fatalf("test system invalid: %v", err)
	}
	return sys
}

func TestNewRejectsUnvalidatedSystem(t *testing.T) {
	if _, err := New(&system.System{}, Options{}); err == nil {
		t.Error("expected error for an empty system")
	}
}

func TestAddParticleRejectsUnknownType(t *testing.T) {
	sys := newTestSystem(t)
	e, err := New(sys, Options{NumWorkers: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	if _, err := e.AddParticle(vecutil.FromSlice(0.0, 0.0), "unknown"); err == nil {
		t.Error("expected error for unknown type name")
	}
}

func TestStepWithNoForcesOrReactionsJustDiffuses(t *testing.T) {
	sys := newTestSystem(t)
	e, err := New(sys, Options{NumWorkers: 4})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	for i := 0; i < 100; i++ {
		if _, err := e.AddParticle(vecutil.FromSlice(float64(i%10), float64(i/10)), "A"); err != nil {
			t.Fatal(err)
		}
	}
	if e.NumLive() != 100 {
		t.Fatalf("NumLive() = %d, want 100", e.NumLive())
	}

	e.Step(1e-3)
	if e.Tick() != 1 {
		t.Errorf("Tick() = %d, want 1", e.Tick())
	}
	if e.NumLive() != 100 {
		t.Errorf("NumLive() after step = %d, want 100 (diffusion-only step never changes count)", e.NumLive())
	}
}

func TestRecordToDeliversOneSnapshotPerLiveParticle(t *testing.T) {
	sys := newTestSystem(t)
	e, err := New(sys, Options{NumWorkers: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	for i := 0; i < 5; i++ {
		if _, err := e.AddParticle(vecutil.FromSlice(float64(i), 0.0), "A"); err != nil {
			t.Fatal(err)
		}
	}

	var captured []recorder.Snapshot
	rec := captureRecorder{capture: &captured}
	if err := e.RecordTo(rec); err != nil {
		t.Fatal(err)
	}
	if len(captured) != 5 {
		t.Errorf("captured %d snapshots, want 5", len(captured))
	}
}

type captureRecorder struct {
	capture *[]recorder.Snapshot
}

func (c captureRecorder) Record(step int64, snapshots []recorder.Snapshot) error {
	*c.capture = append(*c.capture, snapshots...)
	return nil
}
func (c captureRecorder) Warn(step int64, msg string) {}
func (c captureRecorder) Close() error                { return nil }

func TestParticlesExposesStoreForRemoval(t *testing.T) {
	sys := newTestSystem(t)
	e, err := New(sys, Options{NumWorkers: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	id, err := e.AddParticle(vecutil.FromSlice(0.0, 0.0), "A")
	if err != nil {
		t.Fatal(err)
	}
	if !e.Particles().Exists(id) {
		t.Fatal("expected particle to exist through Particles()")
	}

	e.RemoveParticle(id)
	if e.Particles().Exists(id) {
		t.Error("expected particle to be gone after RemoveParticle")
	}
	if e.NumLive() != 0 {
		t.Errorf("NumLive() = %d after RemoveParticle, want 0", e.NumLive())
	}
}

func TestStepWithDecayReactionReducesLiveCount(t *testing.T) {
	sys := newTestSystem(t)
	decay, err := reaction.NewDecay(0, 1e9)
	if err != nil {
		t.Fatal(err)
	}
	sys.O1 = []reaction.O1{decay}

	e, err := New(sys, Options{NumWorkers: 4})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	for i := 0; i < 50; i++ {
		if _, err := e.AddParticle(vecutil.FromSlice(float64(i), 0.0), "A"); err != nil {
			t.Fatal(err)
		}
	}

	e.Step(1.0)
	if e.NumLive() != 0 {
		t.Errorf("NumLive() after near-certain decay = %d, want 0", e.NumLive())
	}
}
