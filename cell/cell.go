// Package cell implements the CellList: a periodic or open cell-linked
// list with precomputed cell adjacency used by both the force field and
// the reaction engine (spec §4.2).
package cell

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/pthm-cable/iprd/pool"
	"github.com/pthm-cable/iprd/store"
	"github.com/pthm-cable/iprd/vecutil"
)

// List is a fixed grid over the simulation box derived from an
// interaction radius and a subdivision factor. Its adjacency table is
// computed once at construction and never changes.
type List struct {
	dim      int
	box      []float64
	periodic bool
	cellSize float64
	nCells   []int32
	index    vecutil.Index

	// adjacency[c] is the sorted, deduplicated list of flat cell indices
	// within s steps of cell c on every axis, including c itself.
	adjacency [][]int32

	// heads[c] holds (particle id + 1) of the head of cell c's chain, 0
	// meaning empty. chainNext[id] holds (next particle id + 1) in the
	// same chain, 0 meaning end-of-chain. Using id+1 avoids a sentinel
	// collision with particle id 0.
	heads     []int32
	chainNext []int32

	activeTypes map[store.ParticleType]bool
}

// New constructs a CellList over box with the given interaction radius
// and subdivision s (s>=1); cell size is radius/s. Non-positive box
// extents are rejected.
func New(box []float64, periodic bool, radius float64, s int, activeTypes map[store.ParticleType]bool) (*List, error) {
	if s < 1 {
		s = 1
	}
	for d, b := range box {
		if b <= 0 {
			return nil, fmt.Errorf("cell: non-positive box extent at axis %d: %v", d, b)
		}
	}
	cellSize := radius / float64(s)

	dim := len(box)
	nCells := make([]int32, dim)
	for d, b := range box {
		n := int32(b / cellSize)
		if n < 1 {
			n = 1
		}
		nCells[d] = n
	}

	l := &List{
		dim:         dim,
		box:         append([]float64(nil), box...),
		periodic:    periodic,
		cellSize:    cellSize,
		nCells:      nCells,
		index:       vecutil.NewIndex(nCells),
		activeTypes: activeTypes,
	}
	l.heads = make([]int32, l.index.Size())
	l.buildAdjacency(s)
	return l, nil
}

func (l *List) buildAdjacency(radius int) {
	l.adjacency = make([][]int32, l.index.Size())
	multi := make([]int32, l.dim)
	cand := make([]int32, l.dim)

	var rec func(d int)
	adjSet := make(map[int32]struct{})
	rec = func(d int) {
		if d < 0 {
			flat := int32(l.index.Ravel(cand))
			adjSet[flat] = struct{}{}
			return
		}
		for off := -int32(radius); off <= int32(radius); off++ {
			v := multi[d] + off
			n := l.index.DimAt(d)
			if l.periodic {
				v = ((v % n) + n) % n
			} else if v < 0 || v >= n {
				continue
			}
			cand[d] = v
			rec(d - 1)
		}
	}

	for c := 0; c < l.index.Size(); c++ {
		l.index.Unravel(c, multi)
		for k := range adjSet {
			delete(adjSet, k)
		}
		rec(l.dim - 1)

		adj := make([]int32, 0, len(adjSet))
		for k := range adjSet {
			adj = append(adj, k)
		}
		sort.Slice(adj, func(i, j int) bool { return adj[i] < adj[j] })
		l.adjacency[c] = adj
	}
}

// CellOf maps a world position to its flat cell index. The box is
// centered at the origin: cell_d = clamp(floor((x_d+box_d/2)/cellSize), 0,
// nCells_d-1) (spec §4.2). A particle exactly on a cell boundary maps to
// the higher-index cell via floor.
func (l *List) CellOf(pos vecutil.Vec[float64]) int {
	multi := make([]int32, l.dim)
	for d := 0; d < l.dim; d++ {
		c := int32((pos[d] + l.box[d]/2) / l.cellSize)
		if c < 0 {
			c = 0
		} else if n := l.index.DimAt(d); c >= n {
			c = n - 1
		}
		multi[d] = c
	}
	return l.index.Ravel(multi)
}

// NumCells returns the total number of cells in the grid.
func (l *List) NumCells() int { return l.index.Size() }

// AdjacentCells returns the precomputed list of cells adjacent to c
// (including c itself).
func (l *List) AdjacentCells(c int) []int32 { return l.adjacency[c] }

// isActive reports whether t participates in this CellList's traversal.
// A nil activeTypes map means every type participates.
func (l *List) isActive(t store.ParticleType) bool {
	if l.activeTypes == nil {
		return true
	}
	return l.activeTypes[t]
}

// Update clears the per-cell chains and, in parallel over particles,
// inserts each live active particle into the chain of the cell
// containing its position. Insertion uses compare-and-swap on the cell
// head; ABA is impossible because particle ids are unique within a build
// (spec §4.2).
func (l *List) Update(s *store.ParticleStore, p *pool.TaskPool) {
	for i := range l.heads {
		l.heads[i] = 0
	}
	if len(l.chainNext) < s.Len() {
		l.chainNext = make([]int32, s.Len())
	}
	for i := range l.chainNext[:s.Len()] {
		l.chainNext[i] = 0
	}

	s.ForEach(p, func(workerID int, slot store.Slot) {
		if !l.isActive(slot.Type) {
			return
		}
		c := l.CellOf(slot.Position)
		idPlusOne := int32(slot.ID) + 1
		for {
			old := atomic.LoadInt32(&l.heads[c])
			l.chainNext[slot.ID] = old
			if atomic.CompareAndSwapInt32(&l.heads[c], old, idPlusOne) {
				break
			}
		}
	})
}

// ForEachInCell walks cell c's chain and invokes op for every particle in
// it.
func (l *List) ForEachInCell(c int, op func(id store.ParticleID)) {
	for cur := l.heads[c]; cur != 0; cur = l.chainNext[cur-1] {
		op(store.ParticleID(cur - 1))
	}
}

// ForEachNeighbor walks every cell adjacent to id's cell and invokes op
// for each neighbor != id.
func (l *List) ForEachNeighbor(s *store.ParticleStore, id store.ParticleID, op func(neighbor store.ParticleID)) {
	c := l.CellOf(s.PositionOf(id))
	for _, adjCell := range l.AdjacentCells(c) {
		l.ForEachInCell(int(adjCell), func(nb store.ParticleID) {
			if nb != id {
				op(nb)
			}
		})
	}
}

// ForEachCell runs op over every cell in parallel, in contiguous index
// ranges (spec §4.2).
func (l *List) ForEachCell(p *pool.TaskPool, op func(workerID int, cell int)) {
	p.ParallelRange(l.index.Size(), func(workerID, start, end int) {
		for c := start; c < end; c++ {
			op(workerID, c)
		}
	})
}

// ForEachPairInCell yields pairs of particles within cell c. If all is
// true every ordered pair (p,q) with p!=q is yielded; otherwise only
// unique unordered pairs with id(p) < id(q) are yielded (spec §4.2).
func (l *List) ForEachPairInCell(c int, all bool, op func(a, b store.ParticleID)) {
	members := l.members(c)
	for i, a := range members {
		for j, b := range members {
			if i == j {
				continue
			}
			if !all && a >= b {
				continue
			}
			op(a, b)
		}
	}
}

func (l *List) members(c int) []store.ParticleID {
	var members []store.ParticleID
	l.ForEachInCell(c, func(id store.ParticleID) {
		members = append(members, id)
	})
	return members
}

// ForEachUniquePair runs op exactly once for every unordered pair of
// particles (a,b), a<b, whose cells are adjacent (spec §4.4: "unique
// unordered neighbor pairs"). Unlike ForEachPairInCell, which only
// considers particles sharing a single cell, this also covers pairs that
// straddle a cell boundary — necessary whenever an interaction radius is
// not strictly smaller than the cell size, which is the usual case since
// cell size is derived from the radius itself (spec §4.2: cellSize =
// radius/s). It parallelizes over cells using pool p; for each cell c it
// only visits adjacent cells c2 with flat index >= c, so every unordered
// cell pair (and therefore every unordered particle pair) is visited
// exactly once across the whole grid.
func (l *List) ForEachUniquePair(p *pool.TaskPool, op func(workerID int, a, b store.ParticleID)) {
	l.ForEachCell(p, func(workerID, c int) {
		membersC := l.members(c)
		if len(membersC) == 0 {
			return
		}
		for _, c2 := range l.AdjacentCells(c) {
			if int(c2) < c {
				continue
			}
			if int(c2) == c {
				for i, a := range membersC {
					for _, b := range membersC[i+1:] {
						if a < b {
							op(workerID, a, b)
						} else {
							op(workerID, b, a)
						}
					}
				}
				continue
			}
			for _, a := range membersC {
				l.ForEachInCell(int(c2), func(b store.ParticleID) {
					if a < b {
						op(workerID, a, b)
					} else {
						op(workerID, b, a)
					}
				})
			}
		}
	})
}
