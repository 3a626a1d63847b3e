package descriptor

// raw is the YAML shape of a System descriptor. Every reference to a
// particle type is by name; build resolves names against the declared
// Types table in declaration order (system.System.TypeByName).
type raw struct {
	Name     string    `yaml:"name"`
	Dim      int       `yaml:"dim"`
	Box      []float64 `yaml:"box"`
	Periodic bool      `yaml:"periodic"`
	KBT      float64   `yaml:"kbt"`
	Seed     int64     `yaml:"seed"`

	Types []typeYAML `yaml:"types"`

	Potentials struct {
		External []externalYAML `yaml:"external"`
		Pair     []pairYAML     `yaml:"pair"`
	} `yaml:"potentials"`

	Reactions struct {
		O1 []o1YAML `yaml:"o1"`
		O2 []o2YAML `yaml:"o2"`
	} `yaml:"reactions"`
}

type typeYAML struct {
	Name      string  `yaml:"name"`
	Diffusion float64 `yaml:"diffusion"`
}

// externalYAML covers every external-potential kind: "double_well",
// "box", "noise_field" (spec §4.3 catalogue plus the noise-field
// supplement).
type externalYAML struct {
	Kind  string  `yaml:"kind"`
	Type  string  `yaml:"type"`
	K     float64 `yaml:"k"`
	Scale float64 `yaml:"scale,omitempty"`
	Seed  int64   `yaml:"seed,omitempty"`

	V0        []float64 `yaml:"v0,omitempty"`
	V1        []float64 `yaml:"v1,omitempty"`
	Inclusion bool      `yaml:"inclusion,omitempty"`
}

// pairYAML covers the "harmonic_repulsion" pair-potential kind. Types is
// a list of [a, b] name pairs the potential applies to; an empty list
// means "every pair" (mirrors potential.HarmonicRepulsion's nil Types).
type pairYAML struct {
	Kind   string     `yaml:"kind"`
	Types  [][]string `yaml:"types"`
	K      float64    `yaml:"k"`
	Radius float64    `yaml:"radius"`
}

// o1YAML covers "decay", "conversion", "fission".
type o1YAML struct {
	Kind     string  `yaml:"kind"`
	Educt    string  `yaml:"educt"`
	Product  string  `yaml:"product,omitempty"`
	Product1 string  `yaml:"product1,omitempty"`
	Product2 string  `yaml:"product2,omitempty"`
	Distance float64 `yaml:"distance,omitempty"`
	Rate     float64 `yaml:"rate"`
}

// o2YAML covers "fusion", "catalysis".
type o2YAML struct {
	Kind     string  `yaml:"kind"`
	Educt1   string  `yaml:"educt1,omitempty"`
	Educt2   string  `yaml:"educt2,omitempty"`
	Catalyst string  `yaml:"catalyst,omitempty"`
	Educt    string  `yaml:"educt,omitempty"`
	Product  string  `yaml:"product,omitempty"`
	Radius   float64 `yaml:"radius"`
	Rate     float64 `yaml:"rate"`
	W1       float64 `yaml:"w1,omitempty"`
	W2       float64 `yaml:"w2,omitempty"`
}
