// Package models ships concrete example System descriptors: the double
// well, Lotka–Volterra, Michaelis–Menten, conversion, and fusion systems
// used by the end-to-end scenario tests and cmd/simulate (spec §8).
// Treated as the external "model definitions" collaborator spec §1 keeps
// out of the engine core, analogous to the teacher's config/defaults.yaml
// catalogue.
package models

import (
	"fmt"
	"math"

	"github.com/pthm-cable/iprd/potential"
	"github.com/pthm-cable/iprd/rates"
	"github.com/pthm-cable/iprd/reaction"
	"github.com/pthm-cable/iprd/system"
)

// PureDiffusion is spec §8 scenario 1: a single freely diffusing type,
// no potentials, no reactions.
func PureDiffusion() *system.System {
	return &system.System{
		Name:     "pure-diffusion",
		Dim:      2,
		Box:      []float64{10, 10},
		Periodic: true,
		KBT:      1.0,
		Seed:     1,
		Types:    []system.TypeDef{{Name: "A", DiffusionConstant: 1.0}},
	}
}

// DoubleWell is spec §8 scenario 2: one particle in a bistable 2D
// external potential, no reactions.
func DoubleWell() *system.System {
	sys := &system.System{
		Name:     "double-well",
		Dim:      2,
		Box:      []float64{5, 5},
		Periodic: true,
		KBT:      1.0,
		Seed:     2,
		Types:    []system.TypeDef{{Name: "A", DiffusionConstant: 1.0}},
	}
	sys.Externals = []potential.External{&potential.DoubleWell{Type: 0, K: 1.0}}
	return sys
}

// Conversion is spec §8 scenario 3: A -> B at rate 1.
func Conversion() *system.System {
	sys := &system.System{
		Name:     "conversion",
		Dim:      2,
		Box:      []float64{1000, 1000},
		Periodic: false,
		KBT:      1.0,
		Seed:     3,
		Types: []system.TypeDef{
			{Name: "A", DiffusionConstant: 1.0},
			{Name: "B", DiffusionConstant: 1.0},
		},
	}
	conv, err := reaction.NewConversion(0, 1, 1.0)
	if err != nil {
		panic(fmt.Sprintf("models: building Conversion model: %v", err))
	}
	sys.O1 = []reaction.O1{conv}
	return sys
}

// Fusion is spec §8 scenario 4: 2A -> B within radius 0.2, rate 10, in a
// periodic [5,5] box.
func Fusion() *system.System {
	sys := &system.System{
		Name:     "fusion",
		Dim:      2,
		Box:      []float64{5, 5},
		Periodic: true,
		KBT:      1.0,
		Seed:     4,
		Types: []system.TypeDef{
			{Name: "A", DiffusionConstant: 1.0},
			{Name: "B", DiffusionConstant: 1.0},
		},
	}
	fusion, err := reaction.NewFusion(0, 0, 1, 0.2, 10, 0.5, 0.5)
	if err != nil {
		panic(fmt.Sprintf("models: building Fusion model: %v", err))
	}
	sys.O2 = []reaction.O2{fusion}
	return sys
}

// validateMicroscopicRate panics if a hard-coded microscopic rate
// reproduces a nonsensical macroscopic rate: it must be positive and
// cannot exceed the diffusion-limited Smoluchowski rate
// 4*pi*(diff1+diff2)*radius, mirroring the original's constructor-time
// sanity check (util/rates.h) without pinning to a specific target value.
func validateMicroscopicRate(label string, microRate, diff1, diff2, radius float64) {
	got := rates.Macroscopic(microRate, diff1, diff2, radius)
	limit := 4 * math.Pi * (diff1 + diff2) * radius
	if got <= 0 || got > limit {
		panic(fmt.Sprintf("models: %s: microscopic rate %v reproduces macroscopic rate %v, outside (0, %v]",
			label, microRate, got, limit))
	}
}

// LotkaVolterra is spec §8 scenario 5: prey birth (fission), predator
// death (decay), and predator-eats-prey (catalysis) in a [10,50] box.
// Prey and predators also experience social-friction fusion, both to
// exercise the Fusion descriptor and to bound runaway population growth.
func LotkaVolterra() *system.System {
	const (
		diffPrey     = 1.0
		diffPred     = 1.0
		radius       = 0.3
		birth        = 2.0 // prey birth rate alpha
		death        = 1.5 // predator death rate gamma
		predation    = 4.0
		preyFriction = 0.05 // social-friction fusion rate, bounds runaway prey growth
		predFriction = 0.05 // social-friction fusion rate, bounds runaway predator growth
	)

	sys := &system.System{
		Name:     "lotka-volterra",
		Dim:      2,
		Box:      []float64{10, 50},
		Periodic: true,
		KBT:      1.0,
		Seed:     5,
		Types: []system.TypeDef{
			{Name: "Prey", DiffusionConstant: diffPrey},
			{Name: "Predator", DiffusionConstant: diffPred},
		},
	}
	const preyType, predType = 0, 1

	validateMicroscopicRate("prey fission", birth, diffPrey, diffPrey, radius)

	fission, err := reaction.NewFission(preyType, preyType, preyType, radius, birth)
	if err != nil {
		panic(fmt.Sprintf("models: building LotkaVolterra prey fission: %v", err))
	}
	predatorDeath, err := reaction.NewDecay(predType, death)
	if err != nil {
		panic(fmt.Sprintf("models: building LotkaVolterra predator decay: %v", err))
	}
	validateMicroscopicRate("predation catalysis", predation, diffPred, diffPrey, radius)

	predationReaction, err := reaction.NewCatalysis(predType, preyType, predType, radius, predation)
	if err != nil {
		panic(fmt.Sprintf("models: building LotkaVolterra predation catalysis: %v", err))
	}

	validateMicroscopicRate("prey social friction", preyFriction, diffPrey, diffPrey, radius)

	preyFusion, err := reaction.NewFusion(preyType, preyType, preyType, radius, preyFriction, 0.5, 0.5)
	if err != nil {
		panic(fmt.Sprintf("models: building LotkaVolterra prey social friction: %v", err))
	}
	validateMicroscopicRate("predator social friction", predFriction, diffPred, diffPred, radius)

	predFusion, err := reaction.NewFusion(predType, predType, predType, radius, predFriction, 0.5, 0.5)
	if err != nil {
		panic(fmt.Sprintf("models: building LotkaVolterra predator social friction: %v", err))
	}

	sys.O1 = []reaction.O1{fission, predatorDeath}
	sys.O2 = []reaction.O2{predationReaction, preyFusion, predFusion}
	return sys
}

// MichaelisMenten is the classic E + S <-> ES -> E + P enzyme kinetics
// scheme, exercising Fusion (binding), Fission (unbinding and catalysis)
// together. Not in spec.md; supplemented per SPEC_FULL.md §5 as a
// standard reaction-network scenario the original's reaction catalogue
// supports.
func MichaelisMenten() *system.System {
	const (
		diff   = 1.0
		radius = 0.25
		kOn    = 5.0
		kOff   = 1.0
		kCat   = 2.0
	)

	sys := &system.System{
		Name:     "michaelis-menten",
		Dim:      2,
		Box:      []float64{10, 10},
		Periodic: true,
		KBT:      1.0,
		Seed:     6,
		Types: []system.TypeDef{
			{Name: "E", DiffusionConstant: diff},
			{Name: "S", DiffusionConstant: diff},
			{Name: "ES", DiffusionConstant: diff / 2},
			{Name: "P", DiffusionConstant: diff},
		},
	}
	const eType, sType, esType, pType = 0, 1, 2, 3

	binding, err := reaction.NewFusion(eType, sType, esType, radius, kOn, 0.5, 0.5)
	if err != nil {
		panic(fmt.Sprintf("models: building MichaelisMenten binding: %v", err))
	}
	unbinding, err := reaction.NewFission(esType, eType, sType, radius, kOff)
	if err != nil {
		panic(fmt.Sprintf("models: building MichaelisMenten unbinding: %v", err))
	}
	turnover, err := reaction.NewFission(esType, eType, pType, radius, kCat)
	if err != nil {
		panic(fmt.Sprintf("models: building MichaelisMenten turnover: %v", err))
	}

	sys.O2 = []reaction.O2{binding}
	sys.O1 = []reaction.O1{unbinding, turnover}
	return sys
}
