// Package integrator implements the Euler–Maruyama time stepper that
// composes the force field and reaction engine with the per-tick
// ordering the concurrency model requires (spec §4.5, §5).
package integrator

import (
	"fmt"
	"math"

	"github.com/pthm-cable/iprd/pbc"
	"github.com/pthm-cable/iprd/pool"
	"github.com/pthm-cable/iprd/recorder"
	"github.com/pthm-cable/iprd/store"
)

// TypeTable supplies the per-type diffusion constants the integrator
// needs for its prefactors (spec §3: "a closed per-system table {name,
// diffusionConstant}"); kBT is passed to New separately.
type TypeTable interface {
	DiffusionConstant(t store.ParticleType) float64
	NumTypes() int
}

// Forces evaluates the per-particle force field.
type Forces interface {
	Evaluate(s *store.ParticleStore, p *pool.TaskPool)
}

// Reactions proposes and commits reaction events for a timestep.
type Reactions interface {
	Step(s *store.ParticleStore, p *pool.TaskPool, tau float64)
}

// EulerMaruyama is the stepper from spec §4.5: per step, it evaluates
// forces (if any), applies drift+Wiener displacement in parallel, wraps
// under PBC, and commits reactions (if any) followed by a second wrap
// pass. Per-type prefactors are cached and recomputed only when h
// changes (spec §4.5).
type EulerMaruyama struct {
	dim      int
	box      []float64
	periodic bool
	kBT      float64
	types    TypeTable

	forces    Forces // nil if the system has no potentials
	reactions Reactions // nil if the system has no reactions

	prevH                              float64
	randomDisplacementPrefactor        []float64
	deterministicDisplacementPrefactor []float64
}

// New builds an EulerMaruyama stepper. forces/reactions may be nil.
func New(dim int, box []float64, periodic bool, kBT float64, types TypeTable, forces Forces, reactions Reactions) *EulerMaruyama {
	return &EulerMaruyama{
		dim:      dim,
		box:      box,
		periodic: periodic,
		kBT:      kBT,
		types:    types,

		forces:    forces,
		reactions: reactions,
	}
}

func (em *EulerMaruyama) refreshPrefactors(h float64) {
	if h == em.prevH && em.randomDisplacementPrefactor != nil {
		return
	}
	em.prevH = h
	n := em.types.NumTypes()
	em.randomDisplacementPrefactor = make([]float64, n)
	em.deterministicDisplacementPrefactor = make([]float64, n)
	for t := 0; t < n; t++ {
		d := em.types.DiffusionConstant(store.ParticleType(t))
		em.randomDisplacementPrefactor[t] = math.Sqrt(2 * d * h)
		em.deterministicDisplacementPrefactor[t] = d * h / em.kBT
	}
}

// Step advances the system by h: force evaluation, stochastic Euler–
// Maruyama displacement with PBC wrap, then reaction commit followed by
// a second wrap pass (spec §4.5). step labels any warning raised during
// this call; rec may be nil, in which case warnings are dropped.
//
// A particle whose displaced position is no longer finite (NaN or ±Inf —
// e.g. from a zero-temperature system's D*h/kBT blowing up) is tombstoned
// rather than left corrupting later force/neighbor computations, and a
// warning is surfaced through rec instead of a retry (spec §7).
func (em *EulerMaruyama) Step(s *store.ParticleStore, p *pool.TaskPool, h float64, step int64, rec recorder.Recorder) {
	em.refreshPrefactors(h)

	if em.forces != nil {
		em.forces.Evaluate(s, p)
	}

	tombstones := make([][]store.ParticleID, p.NumWorkers())

	s.ForEach(p, func(workerID int, slot store.Slot) {
		wr := p.Rand(workerID)
		detPre := em.deterministicDisplacementPrefactor[slot.Type]
		randPre := em.randomDisplacementPrefactor[slot.Type]

		nonFinite := false
		for d := 0; d < em.dim; d++ {
			drift := 0.0
			if slot.Force != nil {
				drift = slot.Force[d] * detPre
			}
			noise := wr.Normal.Rand() * randPre
			slot.Position[d] += drift + noise
			if math.IsNaN(slot.Position[d]) || math.IsInf(slot.Position[d], 0) {
				nonFinite = true
			}
		}
		if nonFinite {
			tombstones[workerID] = append(tombstones[workerID], slot.ID)
			return
		}
		pbc.Wrap(slot.Position, em.box, em.periodic)
	})

	for _, ids := range tombstones {
		for _, id := range ids {
			s.Remove(id)
			if rec != nil {
				rec.Warn(step, fmt.Sprintf("particle %d tombstoned: non-finite position after integration", id))
			}
		}
	}

	if em.reactions != nil {
		em.reactions.Step(s, p, h)

		if em.periodic {
			s.ForEach(p, func(workerID int, slot store.Slot) {
				pbc.Wrap(slot.Position, em.box, em.periodic)
			})
		}
	}
}
