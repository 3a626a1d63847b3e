package potential

import (
	"math"

	"github.com/pthm-cable/iprd/store"
	"github.com/pthm-cable/iprd/vecutil"
)

// HarmonicRepulsion is a pair potential that pushes two particles apart
// whenever they are closer than cutoff (spec §4.3, grounded on
// original_source/include/ctiprd/potentials/interaction.h's
// HarmonicRepulsion).
type HarmonicRepulsion struct {
	Types  map[[2]store.ParticleType]bool
	K      float64
	Radius float64 // interaction cutoff
}

func (h *HarmonicRepulsion) SupportsPair(a, b store.ParticleType) bool {
	return h.Types == nil || h.Types[[2]store.ParticleType{a, b}] || h.Types[[2]store.ParticleType{b, a}]
}

func (h *HarmonicRepulsion) Cutoff() float64 { return h.Radius }

// Force implements force on particle 1 = k*(|delta|-cutoff)/|delta| *
// delta, where delta is the shortest-image displacement x1->x2.
func (h *HarmonicRepulsion) Force(delta vecutil.Vec[float64]) vecutil.Vec[float64] {
	dSq := delta.NormSquared()
	if dSq >= h.Radius*h.Radius || dSq == 0 {
		return vecutil.New[float64](len(delta))
	}
	d := math.Sqrt(dSq)
	return delta.Scale(h.K * (d - h.Radius) / d)
}

// DoubleWell is the bistable 2D external potential from spec §4.3:
// energy k(x0^2-1)^2 + k*x1^2, force (-4k x0^3+4k x0, -2k x1). Grounded on
// original_source/include/ctiprd/potentials/external.h's DoubleWell.
type DoubleWell struct {
	Type store.ParticleType
	K    float64
}

func (dw *DoubleWell) SupportsType(t store.ParticleType) bool { return t == dw.Type }

func (dw *DoubleWell) Force(pos vecutil.Vec[float64]) vecutil.Vec[float64] {
	x0, x1 := pos[0], pos[1]
	f := vecutil.New[float64](len(pos))
	f[0] = -4*dw.K*x0*x0*x0 + 4*dw.K*x0
	f[1] = -2 * dw.K * x1
	return f
}

// Box is an axis-aligned box used as an inclusion or exclusion well
// (spec §4.3). When Inclusion is true, particles are pushed back inside
// [V0,V1]; when false, particles are pushed back outside it. Grounded on
// original_source/include/ctiprd/geometry/box.h.
type Box struct {
	Type      store.ParticleType
	V0, V1    vecutil.Vec[float64]
	K         float64
	Inclusion bool
}

func (b *Box) SupportsType(t store.ParticleType) bool { return t == b.Type }

// contains reports whether pos lies strictly inside [V0,V1] on every
// axis.
func (b *Box) contains(pos vecutil.Vec[float64]) bool {
	for d := range pos {
		if !(pos[d] > b.V0[d] && pos[d] < b.V1[d]) {
			return false
		}
	}
	return true
}

// smallestDifference returns pos minus its nearest point on the box
// boundary (the displacement from the boundary to pos), under the
// inclusion/exclusion sense configured on b; zero when pos is on the
// permitted side.
func (b *Box) smallestDifference(pos vecutil.Vec[float64]) vecutil.Vec[float64] {
	diff := vecutil.New[float64](len(pos))
	if b.Inclusion {
		for d := range pos {
			if pos[d] < b.V0[d] {
				diff[d] = pos[d] - b.V0[d]
			} else if pos[d] > b.V1[d] {
				diff[d] = pos[d] - b.V1[d]
			}
		}
		return diff
	}

	if !b.contains(pos) {
		return diff
	}
	// pos is strictly inside; find the nearest face to push outward
	// through.
	bestDist := math.Inf(1)
	bestDim, bestSign := 0, 1.0
	for d := range pos {
		if dist := math.Abs(pos[d] - b.V0[d]); dist < bestDist {
			bestDist, bestDim, bestSign = dist, d, -1.0
		}
		if dist := math.Abs(pos[d] - b.V1[d]); dist < bestDist {
			bestDist, bestDim, bestSign = dist, d, 1.0
		}
	}
	if bestSign < 0 {
		diff[bestDim] = pos[bestDim] - b.V0[bestDim]
	} else {
		diff[bestDim] = pos[bestDim] - b.V1[bestDim]
	}
	return diff
}

// Force returns -K*g(x) where g is the shortest displacement from the
// boundary to x under the configured sense, so the force points back
// toward the permitted side (spec §4.3).
func (b *Box) Force(pos vecutil.Vec[float64]) vecutil.Vec[float64] {
	return b.smallestDifference(pos).Scale(-b.K)
}
