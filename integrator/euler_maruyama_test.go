package integrator

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/iprd/pool"
	"github.com/pthm-cable/iprd/recorder"
	"github.com/pthm-cable/iprd/store"
	"github.com/pthm-cable/iprd/vecutil"
)

type constTypeTable struct {
	d []float64
}

func (c constTypeTable) DiffusionConstant(t store.ParticleType) float64 { return c.d[t] }
func (c constTypeTable) NumTypes() int                                  { return len(c.d) }

func TestZeroDiffusionZeroForceIsNoOp(t *testing.T) {
	p := pool.New(4, 1)
	defer p.Stop()

	s := store.New(2, store.WithForces())
	positions := make([]vecutil.Vec[float64], 0, 50)
	for i := 0; i < 50; i++ {
		pos := vecutil.FromSlice(float64(i), float64(i)*2)
		positions = append(positions, pos.Clone())
		s.Add(pos, 0)
	}

	types := constTypeTable{d: []float64{0}}
	em := New(2, []float64{1000, 1000}, false, 1.0, types, nil, nil)
	em.Step(s, p, 0.1, 1, recorder.Null{})

	i := 0
	s.ForEachSerial(func(slot store.Slot) {
		want := positions[i]
		for d := 0; d < 2; d++ {
			if slot.Position[d] != want[d] {
				t.Errorf("particle %d dim %d: moved from %v to %v with zero diffusion/force", i, d, want[d], slot.Position[d])
			}
		}
		i++
	})
}

func TestPureDiffusionVarianceMatchesTwoDHt(t *testing.T) {
	p := pool.New(8, 1)
	defer p.Stop()

	const n = 4000
	const h = 1e-3
	const steps = 50
	const diff = 0.5

	s := store.New(2)
	for i := 0; i < n; i++ {
		s.Add(vecutil.FromSlice(0.0, 0.0), 0)
	}

	types := constTypeTable{d: []float64{diff}}
	em := New(2, []float64{1e6, 1e6}, false, 1.0, types, nil, nil)
	for step := 0; step < steps; step++ {
		em.Step(s, p, h, int64(step+1), recorder.Null{})
	}

	sqNorms := make([]float64, 0, n)
	s.ForEachSerial(func(slot store.Slot) {
		sqNorms = append(sqNorms, slot.Position.NormSquared())
	})
	meanSq := stat.Mean(sqNorms, nil)

	// E[|x|^2] = 2*DIM*D*t for free Brownian motion.
	want := 2 * 2 * diff * float64(steps) * h
	if math.Abs(meanSq-want) > 0.25*want {
		t.Errorf("mean squared displacement = %v, want ~%v (within 25%%)", meanSq, want)
	}
}

// constForce sets every particle's force to a fixed value, used to drive
// the deterministic-displacement term nonzero for the NaN-tombstone test.
type constForce struct{ f float64 }

func (c constForce) Evaluate(s *store.ParticleStore, p *pool.TaskPool) {
	s.ForEach(p, func(_ int, slot store.Slot) {
		for d := range slot.Force {
			slot.Force[d] = c.f
		}
	})
}

type warnRecorder struct {
	fn func(step int64, msg string)
}

func (w warnRecorder) Record(step int64, snapshots []recorder.Snapshot) error { return nil }
func (w warnRecorder) Warn(step int64, msg string)                           { w.fn(step, msg) }
func (w warnRecorder) Close() error                                          { return nil }

func TestNonFinitePositionIsTombstonedWithWarning(t *testing.T) {
	p := pool.New(2, 1)
	defer p.Stop()

	s := store.New(2, store.WithForces())
	s.Add(vecutil.FromSlice(0.0, 0.0), 0)

	types := constTypeTable{d: []float64{1.0}}
	// kBT = 0 drives the deterministic prefactor D*h/kBT to +Inf, the
	// zero-temperature blowup a real misconfigured descriptor can produce.
	em := New(2, []float64{1000, 1000}, false, 0.0, types, constForce{f: 1.0}, nil)

	var warned bool
	var warnStep int64
	rec := warnRecorder{fn: func(step int64, msg string) {
		warned = true
		warnStep = step
	}}

	em.Step(s, p, 0.1, 7, rec)

	if !warned {
		t.Fatal("expected a warning for the non-finite position")
	}
	if warnStep != 7 {
		t.Errorf("warning step = %d, want 7", warnStep)
	}
	if s.NumLive() != 0 {
		t.Errorf("NumLive() = %d after tombstoning, want 0", s.NumLive())
	}
}

func TestPrefactorsRecomputedOnlyWhenHChanges(t *testing.T) {
	types := constTypeTable{d: []float64{1.0, 2.0}}
	em := New(2, []float64{10, 10}, true, 1.0, types, nil, nil)

	em.refreshPrefactors(0.01)
	first := em.randomDisplacementPrefactor
	em.refreshPrefactors(0.01)
	if &em.randomDisplacementPrefactor[0] != &first[0] {
		t.Error("refreshPrefactors reallocated prefactors for an unchanged h")
	}

	em.refreshPrefactors(0.02)
	if &em.randomDisplacementPrefactor[0] == &first[0] {
		t.Error("refreshPrefactors did not reallocate prefactors after h changed")
	}
}
