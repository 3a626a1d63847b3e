package potential

import (
	"math"
	"testing"

	"github.com/pthm-cable/iprd/pool"
	"github.com/pthm-cable/iprd/store"
	"github.com/pthm-cable/iprd/vecutil"
)

func TestHarmonicRepulsionZeroBeyondCutoff(t *testing.T) {
	h := &HarmonicRepulsion{K: 1, Radius: 1}
	f := h.Force(vecutil.FromSlice(2.0, 0.0))
	if f[0] != 0 || f[1] != 0 {
		t.Errorf("force beyond cutoff = %v, want zero", f)
	}
}

func TestHarmonicRepulsionMagnitude(t *testing.T) {
	h := &HarmonicRepulsion{K: 2, Radius: 1}
	// delta = x2 - x1 = (0.5, 0): |delta|=0.5 < cutoff=1.
	f := h.Force(vecutil.FromSlice(0.5, 0.0))
	want := 2 * (0.5 - 1) / 0.5 * 0.5
	if math.Abs(f[0]-want) > 1e-9 {
		t.Errorf("f[0] = %v, want %v", f[0], want)
	}
}

func TestDoubleWellForceFormula(t *testing.T) {
	dw := &DoubleWell{Type: 0, K: 1}
	pos := vecutil.FromSlice(0.5, 2.0)
	f := dw.Force(pos)
	wantX := -4*1*0.5*0.5*0.5 + 4*1*0.5
	wantY := -2 * 1 * 2.0
	if math.Abs(f[0]-wantX) > 1e-9 || math.Abs(f[1]-wantY) > 1e-9 {
		t.Errorf("force = %v, want (%v,%v)", f, wantX, wantY)
	}
}

func TestBoxInclusionPushesBackInside(t *testing.T) {
	b := &Box{Type: 0, V0: vecutil.FromSlice(-1.0, -1.0), V1: vecutil.FromSlice(1.0, 1.0), K: 1, Inclusion: true}
	// Particle outside on the +x side.
	f := b.Force(vecutil.FromSlice(2.0, 0.0))
	if f[0] >= 0 {
		t.Errorf("f[0] = %v, want negative (pulling back inside)", f[0])
	}
	// Particle inside: no force.
	f = b.Force(vecutil.FromSlice(0.0, 0.0))
	if f[0] != 0 || f[1] != 0 {
		t.Errorf("force inside inclusion box = %v, want zero", f)
	}
}

func TestBoxExclusionPushesOutside(t *testing.T) {
	b := &Box{Type: 0, V0: vecutil.FromSlice(-1.0, -1.0), V1: vecutil.FromSlice(1.0, 1.0), K: 1, Inclusion: false}
	f := b.Force(vecutil.FromSlice(0.0, 0.0))
	// Force should be non-zero (particle inside exclusion zone should be pushed to nearest face).
	if f[0] == 0 && f[1] == 0 {
		t.Errorf("force inside exclusion box = %v, want nonzero", f)
	}
	// Particle outside: no force.
	f = b.Force(vecutil.FromSlice(5.0, 5.0))
	if f[0] != 0 || f[1] != 0 {
		t.Errorf("force outside exclusion box = %v, want zero", f)
	}
}

func TestEvaluateZeroForcesNoOp(t *testing.T) {
	p := pool.New(2, 1)
	defer p.Stop()

	s := store.New(2, store.WithForces())
	for i := 0; i < 10; i++ {
		id := s.Add(vecutil.FromSlice(float64(i), 0.0), 0)
		s.ForceOf(id)[0] = 99 // garbage, should be zeroed by Evaluate
	}

	ff, err := New(2, []float64{100, 100}, true, []store.ParticleType{0}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	ff.Evaluate(s, p)

	s.ForEachSerial(func(slot store.Slot) {
		if slot.Force[0] != 0 || slot.Force[1] != 0 {
			t.Errorf("force = %v, want zero with no potentials registered", slot.Force)
		}
	})
}
