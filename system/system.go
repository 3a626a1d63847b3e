// Package system holds the System descriptor: the closed, per-run
// particle-type table plus the potentials and reactions that act on it
// (spec §6). A System is a plain value collaborator — it carries no
// behavior of its own and never touches a file; loading one from disk is
// descriptor's job (spec §6, "external collaborator").
package system

import (
	"fmt"

	"github.com/pthm-cable/iprd/potential"
	"github.com/pthm-cable/iprd/reaction"
	"github.com/pthm-cable/iprd/store"
)

// TypeDef is one entry of the closed per-run type table (spec §3:
// "a closed per-system table {name, diffusionConstant}").
type TypeDef struct {
	Name              string
	DiffusionConstant float64
}

// System is the full description of a simulation: dimensionality, box,
// boundary condition, kBT, the type table, and the potentials/reactions
// that act on it (spec §6).
type System struct {
	Name     string
	Dim      int
	Box      []float64
	Periodic bool
	KBT      float64

	Types []TypeDef

	Externals []potential.External
	Pairs     []potential.Pair

	O1 []reaction.O1
	O2 []reaction.O2

	Seed int64
}

// NumTypes implements integrator.TypeTable.
func (s *System) NumTypes() int { return len(s.Types) }

// DiffusionConstant implements integrator.TypeTable.
func (s *System) DiffusionConstant(t store.ParticleType) float64 {
	return s.Types[t].DiffusionConstant
}

// TypeByName resolves a type name to its ParticleType index, as assigned
// by the order types were declared in the descriptor (spec §3).
func (s *System) TypeByName(name string) (store.ParticleType, bool) {
	for i, td := range s.Types {
		if td.Name == name {
			return store.ParticleType(i), true
		}
	}
	return 0, false
}

// AllTypes returns every ParticleType index in the table, in declaration
// order — the slice ForceField/ReactionEngine construction needs.
func (s *System) AllTypes() []store.ParticleType {
	types := make([]store.ParticleType, len(s.Types))
	for i := range s.Types {
		types[i] = store.ParticleType(i)
	}
	return types
}

// Validate checks the invariants descriptor.Load and models both rely on:
// a positive dimension, a box of matching length, a non-negative kBT, and
// at least one declared type (spec §6, §3).
func (s *System) Validate() error {
	if s.Dim <= 0 {
		return fmt.Errorf("system: dim must be positive, got %d", s.Dim)
	}
	if len(s.Box) != s.Dim {
		return fmt.Errorf("system: box has %d entries, want %d", len(s.Box), s.Dim)
	}
	for i, b := range s.Box {
		if b <= 0 {
			return fmt.Errorf("system: box[%d] must be positive, got %v", i, b)
		}
	}
	if s.KBT < 0 {
		return fmt.Errorf("system: kBT must be non-negative, got %v", s.KBT)
	}
	if len(s.Types) == 0 {
		return fmt.Errorf("system: at least one particle type must be declared")
	}
	for _, td := range s.Types {
		if td.DiffusionConstant < 0 {
			return fmt.Errorf("system: type %q has negative diffusion constant %v", td.Name, td.DiffusionConstant)
		}
	}
	return nil
}
