// Package pbc implements periodic-boundary helpers: wrapping a position
// into the primary box and computing the shortest-image displacement
// between two positions. Grounded on
// original_source/include/ctiprd/util/pbc.h.
package pbc

import "github.com/pthm-cable/iprd/vecutil"

// Wrap restores pos into [-box/2, box/2) on every axis, in place, if
// periodic is true. A no-op for open boxes.
func Wrap(pos vecutil.Vec[float64], box []float64, periodic bool) {
	if !periodic {
		return
	}
	for d := range pos {
		half := box[d] / 2
		for pos[d] >= half {
			pos[d] -= box[d]
		}
		for pos[d] < -half {
			pos[d] += box[d]
		}
	}
}

// ShortestDifference returns the shortest-image displacement from p1 to
// p2: the displacement whose magnitude is smallest over all translations
// by integer multiples of the box (spec glossary: "Shortest image").
func ShortestDifference(p1, p2 vecutil.Vec[float64], box []float64, periodic bool) vecutil.Vec[float64] {
	diff := p2.Sub(p1)
	Wrap(diff, box, periodic)
	return diff
}

// DSquared returns the squared magnitude of the shortest-image
// displacement between p1 and p2.
func DSquared(p1, p2 vecutil.Vec[float64], box []float64, periodic bool) float64 {
	return ShortestDifference(p1, p2, box, periodic).NormSquared()
}
