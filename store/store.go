// Package store implements the ParticleStore: a stable-index container for
// positions, types, and optional force/velocity channels, supporting
// tombstone-based removal and parallel traversal (spec §4.1).
package store

import (
	"github.com/pthm-cable/iprd/pool"
	"github.com/pthm-cable/iprd/vecutil"
)

// ParticleID is an opaque stable index into the store. It remains valid
// from creation until the particle is removed (spec §3).
type ParticleID int

// ParticleType is a small integer identifier enumerated from the closed
// per-system type table (spec §3).
type ParticleType int32

// ParticleStore is the SoA-backed slab container described in spec §4.1.
// Tombstoned slots retain their index but their payload is undefined;
// removed indices live in a free-list for reuse. It is not safe to call
// Add/Remove concurrently with ForEach (spec §4.1 guarantees, §7
// "Consistency violation").
type ParticleStore struct {
	dim int

	positions []vecutil.Vec[float64]
	types     []ParticleType
	forces    []vecutil.Vec[float64]
	velocity  []vecutil.Vec[float64]
	alive     []bool

	hasForces   bool
	hasVelocity bool

	freeList []ParticleID
	nLive    int
}

// Option configures optional auxiliary channels at construction.
type Option func(*ParticleStore)

// WithForces allocates a force channel alongside positions.
func WithForces() Option { return func(s *ParticleStore) { s.hasForces = true } }

// WithVelocity allocates a velocity channel alongside positions.
func WithVelocity() Option { return func(s *ParticleStore) { s.hasVelocity = true } }

// New creates an empty store for a d-dimensional system.
func New(dim int, opts ...Option) *ParticleStore {
	s := &ParticleStore{dim: dim}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Dim returns the spatial dimension of every position/force/velocity
// vector in the store.
func (s *ParticleStore) Dim() int { return s.dim }

// Len returns the capacity of the store (live + tombstoned slots).
func (s *ParticleStore) Len() int { return len(s.alive) }

// NumLive returns the number of live particles: capacity - |free-list|
// (spec §3 invariant).
func (s *ParticleStore) NumLive() int { return s.nLive }

// Add appends or reuses a tombstone and returns an index that will not
// change until the particle is removed.
func (s *ParticleStore) Add(position vecutil.Vec[float64], t ParticleType) ParticleID {
	var id ParticleID
	if n := len(s.freeList); n > 0 {
		id = s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
		s.positions[id] = position.Clone()
		s.types[id] = t
		if s.hasForces {
			s.forces[id].Zero()
		}
		if s.hasVelocity {
			s.velocity[id].Zero()
		}
		s.alive[id] = true
	} else {
		id = ParticleID(len(s.alive))
		s.positions = append(s.positions, position.Clone())
		s.types = append(s.types, t)
		if s.hasForces {
			s.forces = append(s.forces, vecutil.New[float64](s.dim))
		}
		if s.hasVelocity {
			s.velocity = append(s.velocity, vecutil.New[float64](s.dim))
		}
		s.alive = append(s.alive, true)
	}
	s.nLive++
	return id
}

// Remove marks id's slot dead and pushes it onto the free-list. The
// contract requires at-most-one Remove per id per step; a Remove of an
// id that is already dead is a no-op, so the free-list never holds the
// same id twice.
func (s *ParticleStore) Remove(id ParticleID) {
	if !s.alive[id] {
		return
	}
	s.alive[id] = false
	s.freeList = append(s.freeList, id)
	s.nLive--
}

// Exists reports whether id currently refers to a live particle.
func (s *ParticleStore) Exists(id ParticleID) bool {
	return int(id) >= 0 && int(id) < len(s.alive) && s.alive[id]
}

// PositionOf returns a read-only view of id's position.
func (s *ParticleStore) PositionOf(id ParticleID) vecutil.Vec[float64] { return s.positions[id] }

// TypeOf returns id's particle type.
func (s *ParticleStore) TypeOf(id ParticleID) ParticleType { return s.types[id] }

// ForceOf returns id's accumulated force. Panics if the store was created
// without WithForces.
func (s *ParticleStore) ForceOf(id ParticleID) vecutil.Vec[float64] { return s.forces[id] }

// VelocityOf returns id's velocity. Panics if the store was created
// without WithVelocity.
func (s *ParticleStore) VelocityOf(id ParticleID) vecutil.Vec[float64] { return s.velocity[id] }

// SetPosition overwrites id's position. Caller must hold the slot claim
// (spec §5: not safe concurrently with another phase mutating the same
// index, or with ForEach).
func (s *ParticleStore) SetPosition(id ParticleID, p vecutil.Vec[float64]) {
	s.positions[id].CopyFrom(p)
}

// SetType overwrites id's type.
func (s *ParticleStore) SetType(id ParticleID, t ParticleType) {
	s.types[id] = t
}

// Slot is the read/write view for_each hands to its callback: the
// particle id, its position, type, and (if present) force/velocity
// channels.
type Slot struct {
	ID       ParticleID
	Position vecutil.Vec[float64]
	Type     ParticleType
	Force    vecutil.Vec[float64] // nil if the store has no force channel
	Velocity vecutil.Vec[float64] // nil if the store has no velocity channel
}

// ForEach runs op over every live slot, in parallel ranges of roughly
// equal size using pool p. Iteration order within a range is ascending
// index; across ranges it is unspecified. Tombstones are skipped. New
// Add/Remove calls must be deferred until ForEach returns (spec §4.1).
func (s *ParticleStore) ForEach(p *pool.TaskPool, op func(workerID int, slot Slot)) {
	p.ParallelRange(len(s.alive), func(workerID, start, end int) {
		for i := start; i < end; i++ {
			if !s.alive[i] {
				continue
			}
			slot := Slot{
				ID:       ParticleID(i),
				Position: s.positions[i],
				Type:     s.types[i],
			}
			if s.hasForces {
				slot.Force = s.forces[i]
			}
			if s.hasVelocity {
				slot.Velocity = s.velocity[i]
			}
			op(workerID, slot)
		}
	})
}

// ForEachSerial runs op over every live slot on the calling goroutine, in
// ascending index order. Used where a single-threaded, deterministic
// traversal is required (e.g. engine.RecordTo, or tests).
func (s *ParticleStore) ForEachSerial(op func(slot Slot)) {
	for i := range s.alive {
		if !s.alive[i] {
			continue
		}
		slot := Slot{
			ID:       ParticleID(i),
			Position: s.positions[i],
			Type:     s.types[i],
		}
		if s.hasForces {
			slot.Force = s.forces[i]
		}
		if s.hasVelocity {
			slot.Velocity = s.velocity[i]
		}
		op(slot)
	}
}

// Compact reclaims tombstones by moving live tails into free holes. Not
// called during a step; intended for maintenance between runs of the
// engine. Returns the mapping from old to new ParticleID for any caller
// that must update external references.
func (s *ParticleStore) Compact() map[ParticleID]ParticleID {
	remap := make(map[ParticleID]ParticleID)
	write := 0
	for read := 0; read < len(s.alive); read++ {
		if !s.alive[read] {
			continue
		}
		if write != read {
			s.positions[write] = s.positions[read]
			s.types[write] = s.types[read]
			if s.hasForces {
				s.forces[write] = s.forces[read]
			}
			if s.hasVelocity {
				s.velocity[write] = s.velocity[read]
			}
			s.alive[write] = true
			remap[ParticleID(read)] = ParticleID(write)
		}
		write++
	}
	s.positions = s.positions[:write]
	s.types = s.types[:write]
	if s.hasForces {
		s.forces = s.forces[:write]
	}
	if s.hasVelocity {
		s.velocity = s.velocity[:write]
	}
	s.alive = s.alive[:write]
	s.freeList = s.freeList[:0]
	return remap
}
