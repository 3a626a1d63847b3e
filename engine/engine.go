// Package engine composes store+cell+forcefield+reactions+integrator
// into the top-level simulation driver (spec §4.5, §5 phase ordering).
// Grounded on game/game.go's Game struct and simulationStep method, and
// original_source/include/ctiprd/cpu/integrators/EulerMaruyama.h's
// top-level step.
package engine

import (
	"fmt"

	"github.com/pthm-cable/iprd/integrator"
	"github.com/pthm-cable/iprd/pool"
	"github.com/pthm-cable/iprd/potential"
	"github.com/pthm-cable/iprd/reaction"
	"github.com/pthm-cable/iprd/recorder"
	"github.com/pthm-cable/iprd/store"
	"github.com/pthm-cable/iprd/system"
	"github.com/pthm-cable/iprd/vecutil"
)

// Engine owns the particle store and drives it forward in time,
// mirroring the teacher's Game.simulationStep per-tick phase ordering
// but over the iPRD force/reaction/integration pipeline instead of
// boids-style behavior.
type Engine struct {
	sys   *system.System
	pool  *pool.TaskPool
	store *store.ParticleStore

	forceField *potential.ForceField
	reactions  *reaction.Engine
	stepper    *integrator.EulerMaruyama

	rec  recorder.Recorder
	tick int64
}

// Options configures Engine construction beyond what the System
// descriptor itself carries.
type Options struct {
	// NumWorkers sizes the TaskPool; 0 defaults to GOMAXPROCS.
	NumWorkers int

	// Recorder receives numerical warnings raised during Step (spec §7),
	// e.g. a particle tombstoned for a non-finite position. Defaults to
	// recorder.Null (warnings discarded) if left nil; callers that also
	// want snapshots recorded still pass the same value to RecordTo.
	Recorder recorder.Recorder
}

// New builds an Engine from a validated system.System.
func New(sys *system.System, opts Options) (*Engine, error) {
	if err := sys.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	p := pool.New(opts.NumWorkers, sys.Seed)
	s := store.New(sys.Dim, store.WithForces())

	var ff *potential.ForceField
	if len(sys.Externals) > 0 || len(sys.Pairs) > 0 {
		var err error
		ff, err = potential.New(sys.Dim, sys.Box, sys.Periodic, sys.AllTypes(), sys.Externals, sys.Pairs)
		if err != nil {
			p.Stop()
			return nil, fmt.Errorf("engine: building force field: %w", err)
		}
	}

	var re *reaction.Engine
	if len(sys.O1) > 0 || len(sys.O2) > 0 {
		var err error
		re, err = reaction.New(sys.Dim, sys.Box, sys.Periodic, sys.AllTypes(), sys.O1, sys.O2, sys.Seed+1)
		if err != nil {
			p.Stop()
			return nil, fmt.Errorf("engine: building reaction engine: %w", err)
		}
	}

	// Interfaces are only populated when the concrete value is non-nil,
	// so integrator.Step's nil checks see a true nil rather than a
	// typed-nil interface wrapping a nil *ForceField/*reaction.Engine.
	var forces integrator.Forces
	if ff != nil {
		forces = ff
	}
	var reactions integrator.Reactions
	if re != nil {
		reactions = re
	}

	stepper := integrator.New(sys.Dim, sys.Box, sys.Periodic, sys.KBT, sys, forces, reactions)

	rec := opts.Recorder
	if rec == nil {
		rec = recorder.Null{}
	}

	return &Engine{
		sys:        sys,
		pool:       p,
		store:      s,
		forceField: ff,
		reactions:  re,
		stepper:    stepper,
		rec:        rec,
	}, nil
}

// AddParticle inserts a new particle of the given named type at
// position. Returns an error if the name is not in the System's type
// table.
func (e *Engine) AddParticle(position vecutil.Vec[float64], typeName string) (store.ParticleID, error) {
	t, ok := e.sys.TypeByName(typeName)
	if !ok {
		return 0, fmt.Errorf("engine: unknown particle type %q", typeName)
	}
	return e.store.Add(position, t), nil
}

// NumLive returns the number of currently live particles.
func (e *Engine) NumLive() int { return e.store.NumLive() }

// Tick returns the number of steps advanced so far.
func (e *Engine) Tick() int64 { return e.tick }

// Particles returns the underlying ParticleStore, giving a host direct
// access to the store-level contract spec §6 lists alongside Engine
// (for_each, remove) rather than funneling every such operation through
// Engine itself.
func (e *Engine) Particles() *store.ParticleStore { return e.store }

// RemoveParticle tombstones id, passing straight through to the
// underlying store (spec §6's ParticleStore::remove(id)). Must not be
// called concurrently with Step or RecordTo.
func (e *Engine) RemoveParticle(id store.ParticleID) { e.store.Remove(id) }

// Step advances the simulation by h: force evaluation, stochastic
// displacement, reaction commit (spec §4.5). Advances the tick counter.
// Any particle tombstoned for a non-finite position during this step
// raises a warning on the Engine's configured Recorder (spec §7).
func (e *Engine) Step(h float64) {
	e.tick++
	e.stepper.Step(e.store, e.pool, h, e.tick, e.rec)
}

// RecordTo builds a snapshot of every live particle and hands it to rec
// (spec §6: results flow out through the Recorder collaborator, never
// read back by the engine).
func (e *Engine) RecordTo(rec recorder.Recorder) error {
	snapshots := make([]recorder.Snapshot, 0, e.store.NumLive())
	e.store.ForEachSerial(func(slot store.Slot) {
		snapshots = append(snapshots, recorder.Snapshot{
			Step:     e.tick,
			ID:       slot.ID,
			Type:     slot.Type,
			Position: append([]float64(nil), slot.Position...),
		})
	})
	return rec.Record(e.tick, snapshots)
}

// Close releases the engine's worker pool. The Engine must not be used
// afterward.
func (e *Engine) Close() {
	e.pool.Stop()
}
