package descriptor

import "testing"

const sampleYAML = `
name: test-system
dim: 2
box: [10, 10]
periodic: true
kbt: 1.0
seed: 42

types:
  - name: A
    diffusion: 1.0
  - name: B
    diffusion: 0.5
  - name: C
    diffusion: 0.75

potentials:
  external:
    - kind: double_well
      type: A
      k: 1.0
  pair:
    - kind: harmonic_repulsion
      k: 10.0
      radius: 0.5

reactions:
  o1:
    - kind: decay
      educt: A
      rate: 0.1
    - kind: conversion
      educt: A
      product: B
      rate: 0.2
  o2:
    - kind: fusion
      educt1: A
      educt2: B
      product: C
      radius: 0.3
      rate: 1.0
      w1: 0.5
      w2: 0.5
`

func TestParseBuildsSystemWithResolvedTypes(t *testing.T) {
	sys, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sys.Name != "test-system" {
		t.Errorf("Name = %q, want test-system", sys.Name)
	}
	if len(sys.Types) != 3 {
		t.Fatalf("len(Types) = %d, want 3", len(sys.Types))
	}
	if len(sys.Externals) != 1 || len(sys.Pairs) != 1 {
		t.Errorf("Externals/Pairs = %d/%d, want 1/1", len(sys.Externals), len(sys.Pairs))
	}
	if len(sys.O1) != 2 || len(sys.O2) != 1 {
		t.Errorf("O1/O2 = %d/%d, want 2/1", len(sys.O1), len(sys.O2))
	}
}

func TestParseRejectsUnknownTypeName(t *testing.T) {
	const bad = `
dim: 1
box: [1]
kbt: 1.0
types:
  - name: A
    diffusion: 1.0
reactions:
  o1:
    - kind: decay
      educt: Z
      rate: 0.1
`
	if _, err := Parse([]byte(bad)); err == nil {
		t.Error("expected error for unknown type name")
	}
}

func TestParseRejectsUnknownReactionKind(t *testing.T) {
	const bad = `
dim: 1
box: [1]
kbt: 1.0
types:
  - name: A
    diffusion: 1.0
reactions:
  o1:
    - kind: mystery
      educt: A
      rate: 0.1
`
	if _, err := Parse([]byte(bad)); err == nil {
		t.Error("expected error for unknown reaction kind")
	}
}

func TestLoadWithEmptyPathUsesEmbeddedDefaultsOnly(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Error("expected error: embedded defaults alone declare no types")
	}
}
