// Package potential implements the ForceField: a type-indexed dispatch
// table mapping type -> external potentials and (type,type) -> pair
// potentials, plus the parallel per-particle force accumulator (spec
// §4.3).
package potential

import (
	"fmt"

	"github.com/pthm-cable/iprd/cell"
	"github.com/pthm-cable/iprd/pbc"
	"github.com/pthm-cable/iprd/pool"
	"github.com/pthm-cable/iprd/store"
	"github.com/pthm-cable/iprd/vecutil"
)

// External is a potential acting on particles of a single type.
type External interface {
	SupportsType(t store.ParticleType) bool
	Force(pos vecutil.Vec[float64]) vecutil.Vec[float64]
}

// Pair is a potential acting between two particles of given types.
type Pair interface {
	SupportsPair(a, b store.ParticleType) bool
	Cutoff() float64
	// Force returns the force on the particle at x1 due to the particle
	// at x2, where delta is the shortest-image displacement x2-x1 under
	// periodic boundaries.
	Force(delta vecutil.Vec[float64]) vecutil.Vec[float64]
}

type pairKey struct {
	a, b store.ParticleType
}

// ForceField evaluates the total force on every particle from the
// external and pair potentials registered at construction.
type ForceField struct {
	dim int

	o1 map[store.ParticleType][]External
	o2 map[pairKey][]Pair

	box      []float64
	periodic bool

	cells       *cell.List
	activeTypes map[store.ParticleType]bool
}

// New builds the O1/O2 dispatch tables from externals and pairs. A pair
// CellList is created when at least one pair potential exists, its
// radius being the maximum cutoff across pair potentials, restricted to
// the set of types that participate in any pair potential (spec §4.3).
func New(dim int, box []float64, periodic bool, types []store.ParticleType, externals []External, pairs []Pair) (*ForceField, error) {
	ff := &ForceField{
		dim:      dim,
		o1:       make(map[store.ParticleType][]External),
		o2:       make(map[pairKey][]Pair),
		box:      box,
		periodic: periodic,
	}

	for _, t := range types {
		for _, ext := range externals {
			if ext.SupportsType(t) {
				ff.o1[t] = append(ff.o1[t], ext)
			}
		}
	}

	maxCutoff := 0.0
	active := make(map[store.ParticleType]bool)
	// The loops visit both (a,b) and (b,a), so each ordered key receives
	// every supporting pair potential exactly once.
	for _, a := range types {
		for _, b := range types {
			for _, pp := range pairs {
				if pp.SupportsPair(a, b) {
					ff.o2[pairKey{a, b}] = append(ff.o2[pairKey{a, b}], pp)
					active[a] = true
					active[b] = true
					if c := pp.Cutoff(); c > maxCutoff {
						maxCutoff = c
					}
				}
			}
		}
	}

	if len(pairs) > 0 {
		if maxCutoff <= 0 {
			return nil, fmt.Errorf("potential: pair potentials present but max cutoff is non-positive")
		}
		cells, err := cell.New(box, periodic, maxCutoff, 1, active)
		if err != nil {
			return nil, fmt.Errorf("potential: building pair cell list: %w", err)
		}
		ff.cells = cells
		ff.activeTypes = active
	}

	return ff, nil
}

// Evaluate computes the force on every particle: it zeroes the
// particle's force, sums every supporting external potential, and — if
// pair potentials exist and the particle's type is active — sums the
// pair force from every neighbor under the cell list (spec §4.3). The
// pair cell list is rebuilt first.
func (ff *ForceField) Evaluate(s *store.ParticleStore, p *pool.TaskPool) {
	if ff.cells != nil {
		ff.cells.Update(s, p)
	}

	s.ForEach(p, func(workerID int, slot store.Slot) {
		slot.Force.Zero()

		for _, ext := range ff.o1[slot.Type] {
			slot.Force.AddInPlace(ext.Force(slot.Position))
		}

		if ff.cells != nil && ff.activeTypes[slot.Type] {
			ff.cells.ForEachNeighbor(s, slot.ID, func(nb store.ParticleID) {
				nbType := s.TypeOf(nb)
				pairs := ff.o2[pairKey{slot.Type, nbType}]
				if len(pairs) == 0 {
					return
				}
				delta := pbc.ShortestDifference(slot.Position, s.PositionOf(nb), ff.box, ff.periodic)
				for _, pp := range pairs {
					slot.Force.AddInPlace(pp.Force(delta))
				}
			})
		}
	})
}
