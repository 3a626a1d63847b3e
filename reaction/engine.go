package reaction

import (
	"cmp"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/pthm-cable/iprd/cell"
	"github.com/pthm-cable/iprd/pbc"
	"github.com/pthm-cable/iprd/pool"
	"github.com/pthm-cable/iprd/store"
)

// kind tags an event as first- or second-order.
type kind int

const (
	kindO1 kind = 1
	kindO2 kind = 2
)

// event is a proposed reaction, carrying enough information for the
// commit phase to validate and apply it (spec §4.4).
type event struct {
	kind kind
	id1  store.ParticleID
	id2  store.ParticleID // unused for O1
	idx  int               // index into o1 or o2, depending on kind
}

// Engine proposes and commits stochastic reactions during a timestep
// (spec §4.4). It owns its own pair CellList, rebuilt every step at the
// radius of the largest O2 reaction.
type Engine struct {
	dim      int
	box      []float64
	periodic bool

	o1       []O1
	o2       []O2
	o1ByType map[store.ParticleType][]int

	cells *cell.List

	rng *rand.Rand // single-threaded: shuffles the commit order (spec §5)
}

// New builds a ReactionEngine. types is the closed per-system type table,
// used (like ForceField) to determine which types participate in the O2
// cell list. Illegal reaction parameters are expected to have already
// been rejected by the descriptor constructors (NewDecay, NewFusion,
// ...); New itself rejects a zero O2 radius set (spec §4.4 "Failure
// semantics").
func New(dim int, box []float64, periodic bool, types []store.ParticleType, o1 []O1, o2 []O2, seed int64) (*Engine, error) {
	e := &Engine{
		dim:      dim,
		box:      box,
		periodic: periodic,
		o1:       o1,
		o2:       o2,
		o1ByType: make(map[store.ParticleType][]int),
		rng:      rand.New(rand.NewSource(seed)),
	}

	for i, r := range o1 {
		e.o1ByType[r.EductType()] = append(e.o1ByType[r.EductType()], i)
	}

	if len(o2) > 0 {
		maxRadius := 0.0
		active := make(map[store.ParticleType]bool)
		for _, r := range o2 {
			if r.Radius() <= 0 {
				return nil, fmt.Errorf("reaction: O2 reaction has non-positive radius %v", r.Radius())
			}
			if r.Radius() > maxRadius {
				maxRadius = r.Radius()
			}
		}
		for _, a := range types {
			for _, b := range types {
				for _, r := range o2 {
					if r.Matches(a, b) {
						active[a] = true
						active[b] = true
					}
				}
			}
		}
		cells, err := cell.New(box, periodic, maxRadius, 1, active)
		if err != nil {
			return nil, fmt.Errorf("reaction: building O2 cell list: %w", err)
		}
		e.cells = cells
	}

	return e, nil
}

func bernoulli(u, rate, tau float64) bool {
	return u < 1-math.Exp(-rate*tau)
}

// propose runs the read-only propose phase in parallel and returns the
// concatenated event list. Each worker accumulates into its own buffer
// (spec §5: "thread-local buffers"); because ParallelRange/ForEachCell
// already block until every task in a phase completes, concatenation
// after each phase is inherently single-threaded — it plays the role of
// the spec's "single mutex append at task end" without needing an
// explicit lock.
func (e *Engine) propose(s *store.ParticleStore, p *pool.TaskPool, tau float64) []event {
	numWorkers := p.NumWorkers()
	buffers := make([][]event, numWorkers)

	if len(e.o1) > 0 {
		s.ForEach(p, func(workerID int, slot store.Slot) {
			for _, idx := range e.o1ByType[slot.Type] {
				r := e.o1[idx]
				u := p.Rand(workerID).Uniform.Rand()
				if bernoulli(u, r.Rate(), tau) {
					buffers[workerID] = append(buffers[workerID], event{kind: kindO1, id1: slot.ID, idx: idx})
				}
			}
		})
	}

	if len(e.o2) > 0 && e.cells != nil {
		e.cells.Update(s, p)
		e.cells.ForEachUniquePair(p, func(workerID int, a, b store.ParticleID) {
			ta, tb := s.TypeOf(a), s.TypeOf(b)
			rSq := pbc.DSquared(s.PositionOf(a), s.PositionOf(b), e.box, e.periodic)
			for idx, r := range e.o2 {
				if !r.Matches(ta, tb) {
					continue
				}
				radius := r.Radius()
				if rSq >= radius*radius {
					continue
				}
				u := p.Rand(workerID).Uniform.Rand()
				if bernoulli(u, r.Rate(), tau) {
					buffers[workerID] = append(buffers[workerID], event{kind: kindO2, id1: a, id2: b, idx: idx})
				}
			}
		})
	}

	var all []event
	for _, b := range buffers {
		all = append(all, b...)
	}
	return all
}

// touches reports whether ev references particle id.
func (ev event) touches(id store.ParticleID) bool {
	return ev.id1 == id || (ev.kind == kindO2 && ev.id2 == id)
}

// Step proposes reactions from the current configuration and commits a
// conflict-free subset to the store (spec §4.4): shuffle, then walk in
// order applying each still-valid event and invalidating later events
// that touch the same particle ids. If the box is periodic, a wrap pass
// restores every moved position afterward.
func (e *Engine) Step(s *store.ParticleStore, p *pool.TaskPool, tau float64) {
	events := e.propose(s, p, tau)
	if len(events) == 0 {
		return
	}

	// Worker scheduling decides the order the buffers were filled in, so
	// sort into a canonical order before the seeded shuffle.
	slices.SortFunc(events, func(a, b event) int {
		return cmp.Or(cmp.Compare(a.kind, b.kind), cmp.Compare(a.id1, b.id1), cmp.Compare(a.id2, b.id2), cmp.Compare(a.idx, b.idx))
	})
	e.rng.Shuffle(len(events), func(i, j int) { events[i], events[j] = events[j], events[i] })

	ctx := &ApplyContext{Dim: e.dim, Box: e.box, Periodic: e.periodic, Rng: e.rng}
	invalid := make([]bool, len(events))

	for i, ev := range events {
		if invalid[i] {
			continue
		}
		if !s.Exists(ev.id1) {
			continue
		}
		if ev.kind == kindO2 && !s.Exists(ev.id2) {
			continue
		}

		switch ev.kind {
		case kindO1:
			e.o1[ev.idx].Apply(s, ev.id1, ctx)
		case kindO2:
			e.o2[ev.idx].Apply(s, ev.id1, ev.id2, ctx)
		}

		for j := i + 1; j < len(events); j++ {
			if invalid[j] {
				continue
			}
			other := events[j]
			if other.touches(ev.id1) || (ev.kind == kindO2 && other.touches(ev.id2)) {
				invalid[j] = true
			}
		}
	}

	if e.periodic {
		s.ForEach(p, func(workerID int, slot store.Slot) {
			pbc.Wrap(slot.Position, e.box, e.periodic)
		})
	}
}
