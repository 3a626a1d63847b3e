// Package descriptor loads a system.System from YAML (spec §6's external
// "collaborator" that produces the value engine.New consumes; the engine
// itself never reads a file). Mirrors config.Load's embedded-defaults-
// plus-overlay pattern.
package descriptor

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/iprd/potential"
	"github.com/pthm-cable/iprd/reaction"
	"github.com/pthm-cable/iprd/store"
	"github.com/pthm-cable/iprd/system"
	"github.com/pthm-cable/iprd/vecutil"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ConfigError wraps a descriptor-building failure with the field or
// reaction/potential entry that caused it, so callers can report exactly
// which part of a descriptor file is malformed.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("descriptor: %s: %v", e.Field, e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

// Load reads a YAML descriptor from path, overlaying it on the embedded
// defaults, and builds a system.System. An empty path uses only the
// embedded defaults (which alone do not satisfy system.Validate: a
// descriptor must still declare types and a box).
func Load(path string) (*system.System, error) {
	data := defaultsYAML
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("descriptor: reading %s: %w", path, err)
		}
		data = fileData
	}
	return parseOverlay(defaultsYAML, data)
}

// Parse builds a system.System from in-memory YAML bytes, overlaid on
// the embedded defaults.
func Parse(data []byte) (*system.System, error) {
	return parseOverlay(defaultsYAML, data)
}

func parseOverlay(defaults, overlay []byte) (*system.System, error) {
	var r raw
	if err := yaml.Unmarshal(defaults, &r); err != nil {
		return nil, fmt.Errorf("descriptor: parsing embedded defaults: %w", err)
	}
	if len(overlay) > 0 {
		if err := yaml.Unmarshal(overlay, &r); err != nil {
			return nil, fmt.Errorf("descriptor: parsing descriptor: %w", err)
		}
	}
	return build(&r)
}

// build resolves a raw descriptor into a system.System, translating type
// names into store.ParticleType indices and every potential/reaction
// entry into its concrete descriptor/potential value.
func build(r *raw) (*system.System, error) {
	sys := &system.System{
		Name:     r.Name,
		Dim:      r.Dim,
		Box:      append([]float64(nil), r.Box...),
		Periodic: r.Periodic,
		KBT:      r.KBT,
		Seed:     r.Seed,
	}
	for _, t := range r.Types {
		sys.Types = append(sys.Types, system.TypeDef{Name: t.Name, DiffusionConstant: t.Diffusion})
	}
	if err := sys.Validate(); err != nil {
		return nil, &ConfigError{Field: "system", Err: err}
	}

	resolve := func(field, name string) (store.ParticleType, error) {
		t, ok := sys.TypeByName(name)
		if !ok {
			return 0, &ConfigError{Field: field, Err: fmt.Errorf("unknown particle type %q", name)}
		}
		return t, nil
	}

	for i, ext := range r.Potentials.External {
		field := fmt.Sprintf("potentials.external[%d]", i)
		t, err := resolve(field, ext.Type)
		if err != nil {
			return nil, err
		}
		switch ext.Kind {
		case "double_well":
			sys.Externals = append(sys.Externals, &potential.DoubleWell{Type: t, K: ext.K})
		case "box":
			sys.Externals = append(sys.Externals, &potential.Box{
				Type:      t,
				V0:        vecutil.FromSlice(ext.V0...),
				V1:        vecutil.FromSlice(ext.V1...),
				K:         ext.K,
				Inclusion: ext.Inclusion,
			})
		case "noise_field":
			sys.Externals = append(sys.Externals, potential.NewNoiseField(t, ext.K, ext.Scale, ext.Seed))
		default:
			return nil, &ConfigError{Field: field, Err: fmt.Errorf("unknown external potential kind %q", ext.Kind)}
		}
	}

	for i, pair := range r.Potentials.Pair {
		field := fmt.Sprintf("potentials.pair[%d]", i)
		switch pair.Kind {
		case "harmonic_repulsion":
			var types map[[2]store.ParticleType]bool
			if len(pair.Types) > 0 {
				types = make(map[[2]store.ParticleType]bool)
				for _, tp := range pair.Types {
					if len(tp) != 2 {
						return nil, &ConfigError{Field: field, Err: fmt.Errorf("types entry must have exactly 2 names, got %v", tp)}
					}
					a, err := resolve(field, tp[0])
					if err != nil {
						return nil, err
					}
					b, err := resolve(field, tp[1])
					if err != nil {
						return nil, err
					}
					types[[2]store.ParticleType{a, b}] = true
				}
			}
			sys.Pairs = append(sys.Pairs, &potential.HarmonicRepulsion{Types: types, K: pair.K, Radius: pair.Radius})
		default:
			return nil, &ConfigError{Field: field, Err: fmt.Errorf("unknown pair potential kind %q", pair.Kind)}
		}
	}

	for i, o1 := range r.Reactions.O1 {
		field := fmt.Sprintf("reactions.o1[%d]", i)
		educt, err := resolve(field, o1.Educt)
		if err != nil {
			return nil, err
		}
		switch o1.Kind {
		case "decay":
			d, err := reaction.NewDecay(educt, o1.Rate)
			if err != nil {
				return nil, &ConfigError{Field: field, Err: err}
			}
			sys.O1 = append(sys.O1, d)
		case "conversion":
			product, err := resolve(field, o1.Product)
			if err != nil {
				return nil, err
			}
			c, err := reaction.NewConversion(educt, product, o1.Rate)
			if err != nil {
				return nil, &ConfigError{Field: field, Err: err}
			}
			sys.O1 = append(sys.O1, c)
		case "fission":
			p1, err := resolve(field, o1.Product1)
			if err != nil {
				return nil, err
			}
			p2, err := resolve(field, o1.Product2)
			if err != nil {
				return nil, err
			}
			f, err := reaction.NewFission(educt, p1, p2, o1.Distance, o1.Rate)
			if err != nil {
				return nil, &ConfigError{Field: field, Err: err}
			}
			sys.O1 = append(sys.O1, f)
		default:
			return nil, &ConfigError{Field: field, Err: fmt.Errorf("unknown first-order reaction kind %q", o1.Kind)}
		}
	}

	for i, o2 := range r.Reactions.O2 {
		field := fmt.Sprintf("reactions.o2[%d]", i)
		switch o2.Kind {
		case "fusion":
			e1, err := resolve(field, o2.Educt1)
			if err != nil {
				return nil, err
			}
			e2, err := resolve(field, o2.Educt2)
			if err != nil {
				return nil, err
			}
			product, err := resolve(field, o2.Product)
			if err != nil {
				return nil, err
			}
			f, err := reaction.NewFusion(e1, e2, product, o2.Radius, o2.Rate, o2.W1, o2.W2)
			if err != nil {
				return nil, &ConfigError{Field: field, Err: err}
			}
			sys.O2 = append(sys.O2, f)
		case "catalysis":
			catalyst, err := resolve(field, o2.Catalyst)
			if err != nil {
				return nil, err
			}
			educt, err := resolve(field, o2.Educt)
			if err != nil {
				return nil, err
			}
			product, err := resolve(field, o2.Product)
			if err != nil {
				return nil, err
			}
			c, err := reaction.NewCatalysis(catalyst, educt, product, o2.Radius, o2.Rate)
			if err != nil {
				return nil, &ConfigError{Field: field, Err: err}
			}
			sys.O2 = append(sys.O2, c)
		default:
			return nil, &ConfigError{Field: field, Err: fmt.Errorf("unknown second-order reaction kind %q", o2.Kind)}
		}
	}

	return sys, nil
}
