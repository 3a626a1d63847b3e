package potential

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/iprd/store"
	"github.com/pthm-cable/iprd/vecutil"
)

// NoiseField is an external potential that samples a static 2D
// OpenSimplex landscape as a gradient field, supplementing the spec's
// named catalogue (harmonic repulsion, box wells, double well) with a
// softer, naturalistic force — analogous to the teacher's animated
// resource-capacity field (systems/resource_field.go), but used here as
// a deterministic force rather than a consumable resource.
type NoiseField struct {
	Type  store.ParticleType
	K     float64
	Scale float64
	noise opensimplex.Noise
	h     float64 // finite-difference step for the gradient estimate
}

// NewNoiseField builds a NoiseField seeded deterministically from seed.
func NewNoiseField(t store.ParticleType, k, scale float64, seed int64) *NoiseField {
	return &NoiseField{
		Type:  t,
		K:     k,
		Scale: scale,
		noise: opensimplex.New(seed),
		h:     1e-3,
	}
}

func (n *NoiseField) SupportsType(t store.ParticleType) bool { return t == n.Type }

// Force estimates -K*grad(noise(x*Scale)) by central finite differences
// over the first two axes; axes beyond the second are left unperturbed.
func (n *NoiseField) Force(pos vecutil.Vec[float64]) vecutil.Vec[float64] {
	f := vecutil.New[float64](len(pos))
	if len(pos) < 2 {
		return f
	}
	x, y := pos[0]*n.Scale, pos[1]*n.Scale
	dx := (n.noise.Eval2(x+n.h, y) - n.noise.Eval2(x-n.h, y)) / (2 * n.h)
	dy := (n.noise.Eval2(x, y+n.h) - n.noise.Eval2(x, y-n.h)) / (2 * n.h)
	f[0] = -n.K * dx
	f[1] = -n.K * dy
	return f
}
