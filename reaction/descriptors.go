// Package reaction implements the reaction descriptors and the
// ReactionEngine: proposal and commit of first- and second-order
// stochastic reactions during a timestep (spec §4.4).
package reaction

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/iprd/pbc"
	"github.com/pthm-cable/iprd/store"
	"github.com/pthm-cable/iprd/vecutil"
)

// ApplyContext carries the state a descriptor's Apply needs beyond the
// store: dimensionality, the box, and the engine's single-threaded
// commit-phase RNG (spec §5: commit is single-threaded and deterministic
// given a seed).
type ApplyContext struct {
	Dim      int
	Box      []float64
	Periodic bool
	Rng      *rand.Rand
}

func (c *ApplyContext) wrap(pos vecutil.Vec[float64]) {
	pbc.Wrap(pos, c.Box, c.Periodic)
}

// O1 is a first-order reaction descriptor (spec §3: Decay, Conversion,
// Fission).
type O1 interface {
	EductType() store.ParticleType
	Rate() float64
	Apply(s *store.ParticleStore, id store.ParticleID, ctx *ApplyContext)
}

// O2 is a second-order reaction descriptor (spec §3: Fusion, Catalysis).
type O2 interface {
	Matches(ta, tb store.ParticleType) bool
	Radius() float64
	Rate() float64
	Apply(s *store.ParticleStore, id1, id2 store.ParticleID, ctx *ApplyContext)
}

// Decay: educt -> ∅, rate λ (spec §3).
type Decay struct {
	Educt store.ParticleType
	Rate_ float64
}

func NewDecay(educt store.ParticleType, rate float64) (*Decay, error) {
	if rate < 0 {
		return nil, fmt.Errorf("reaction: Decay rate must be non-negative, got %v", rate)
	}
	return &Decay{Educt: educt, Rate_: rate}, nil
}

func (d *Decay) EductType() store.ParticleType { return d.Educt }
func (d *Decay) Rate() float64                 { return d.Rate_ }
func (d *Decay) Apply(s *store.ParticleStore, id store.ParticleID, ctx *ApplyContext) {
	s.Remove(id)
}

// Conversion: educt -> product, rate λ.
type Conversion struct {
	Educt, Product store.ParticleType
	Rate_          float64
}

func NewConversion(educt, product store.ParticleType, rate float64) (*Conversion, error) {
	if rate < 0 {
		return nil, fmt.Errorf("reaction: Conversion rate must be non-negative, got %v", rate)
	}
	return &Conversion{Educt: educt, Product: product, Rate_: rate}, nil
}

func (c *Conversion) EductType() store.ParticleType { return c.Educt }
func (c *Conversion) Rate() float64                 { return c.Rate_ }
func (c *Conversion) Apply(s *store.ParticleStore, id store.ParticleID, ctx *ApplyContext) {
	s.SetType(id, c.Product)
}

// Fission: educt -> p1 + p2 at separation d, rate λ.
type Fission struct {
	Educt, Product1, Product2 store.ParticleType
	Distance                  float64
	Rate_                     float64
}

func NewFission(educt, p1, p2 store.ParticleType, distance, rate float64) (*Fission, error) {
	if rate < 0 {
		return nil, fmt.Errorf("reaction: Fission rate must be non-negative, got %v", rate)
	}
	return &Fission{Educt: educt, Product1: p1, Product2: p2, Distance: distance, Rate_: rate}, nil
}

func (f *Fission) EductType() store.ParticleType { return f.Educt }
func (f *Fission) Rate() float64                 { return f.Rate_ }

// Apply draws a unit direction uniformly on the sphere, a radial
// distance d*s^(1/DIM) for s~U(0,1), retypes id to Product1 and shifts it
// by +1/2*distance*n, and adds a new particle of type Product2 at the
// mirrored offset, wrapped into the box (spec §4.4).
func (f *Fission) Apply(s *store.ParticleStore, id store.ParticleID, ctx *ApplyContext) {
	dim := ctx.Dim
	n := make(vecutil.Vec[float64], dim)
	var normSq float64
	for d := 0; d < dim; d++ {
		n[d] = ctx.Rng.NormFloat64()
		normSq += n[d] * n[d]
	}
	norm := math.Sqrt(normSq)
	if norm == 0 {
		n[0] = 1
		norm = 1
	}
	for d := range n {
		n[d] /= norm
	}

	u := ctx.Rng.Float64()
	radial := f.Distance * math.Pow(u, 1.0/float64(dim))

	offset := n.Scale(0.5 * radial)

	origin := s.PositionOf(id).Clone()

	p1Pos := origin.Add(offset)
	ctx.wrap(p1Pos)
	s.SetPosition(id, p1Pos)
	s.SetType(id, f.Product1)

	p2Pos := origin.Sub(offset)
	ctx.wrap(p2Pos)
	s.Add(p2Pos, f.Product2)
}

// Fusion: e1 + e2 -> product within radius r, rate λ, weights w1,w2
// (placement interpolant).
type Fusion struct {
	Educt1, Educt2, Product store.ParticleType
	Radius_                 float64
	Rate_                   float64
	W1, W2                  float64
}

func NewFusion(e1, e2, product store.ParticleType, radius, rate, w1, w2 float64) (*Fusion, error) {
	if rate < 0 {
		return nil, fmt.Errorf("reaction: Fusion rate must be non-negative, got %v", rate)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("reaction: Fusion radius must be positive, got %v", radius)
	}
	return &Fusion{Educt1: e1, Educt2: e2, Product: product, Radius_: radius, Rate_: rate, W1: w1, W2: w2}, nil
}

func (f *Fusion) Matches(ta, tb store.ParticleType) bool {
	return (ta == f.Educt1 && tb == f.Educt2) || (ta == f.Educt2 && tb == f.Educt1)
}
func (f *Fusion) Radius() float64 { return f.Radius_ }
func (f *Fusion) Rate() float64   { return f.Rate_ }

// Apply places the product at x1 + w*(x2-x1), where w=W1 if
// type(id1)==Educt1 else W2, retypes id1, and removes id2 (spec §4.4).
func (f *Fusion) Apply(s *store.ParticleStore, id1, id2 store.ParticleID, ctx *ApplyContext) {
	w := f.W2
	if s.TypeOf(id1) == f.Educt1 {
		w = f.W1
	}
	x1, x2 := s.PositionOf(id1), s.PositionOf(id2)
	pos := x1.Add(x2.Sub(x1).Scale(w))
	ctx.wrap(pos)
	s.SetPosition(id1, pos)
	s.SetType(id1, f.Product)
	s.Remove(id2)
}

// Catalysis: catalyst + educt -> catalyst + product within radius r,
// rate λ.
type Catalysis struct {
	Catalyst, Educt, Product store.ParticleType
	Radius_                  float64
	Rate_                    float64
}

func NewCatalysis(catalyst, educt, product store.ParticleType, radius, rate float64) (*Catalysis, error) {
	if rate < 0 {
		return nil, fmt.Errorf("reaction: Catalysis rate must be non-negative, got %v", rate)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("reaction: Catalysis radius must be positive, got %v", radius)
	}
	return &Catalysis{Catalyst: catalyst, Educt: educt, Product: product, Radius_: radius, Rate_: rate}, nil
}

func (c *Catalysis) Matches(ta, tb store.ParticleType) bool {
	return (ta == c.Catalyst && tb == c.Educt) || (ta == c.Educt && tb == c.Catalyst)
}
func (c *Catalysis) Radius() float64 { return c.Radius_ }
func (c *Catalysis) Rate() float64   { return c.Rate_ }

// Apply retypes the non-catalyst party to Product.
func (c *Catalysis) Apply(s *store.ParticleStore, id1, id2 store.ParticleID, ctx *ApplyContext) {
	if s.TypeOf(id1) == c.Catalyst {
		s.SetType(id2, c.Product)
	} else {
		s.SetType(id1, c.Product)
	}
}
