package system

import "testing"

func TestValidateRejectsMismatchedBoxLength(t *testing.T) {
	s := &System{
		Dim:   2,
		Box:   []float64{10},
		KBT:   1,
		Types: []TypeDef{{Name: "A", DiffusionConstant: 1}},
	}
	if err := s.Validate(); err == nil {
		t.Error("expected error for box length mismatch")
	}
}

func TestValidateRejectsEmptyTypeTable(t *testing.T) {
	s := &System{Dim: 2, Box: []float64{10, 10}, KBT: 1}
	if err := s.Validate(); err == nil {
		t.Error("expected error for empty type table")
	}
}

func TestValidateRejectsNegativeDiffusionConstant(t *testing.T) {
	s := &System{
		Dim:   1,
		Box:   []float64{10},
		KBT:   1,
		Types: []TypeDef{{Name: "A", DiffusionConstant: -1}},
	}
	if err := s.Validate(); err == nil {
		t.Error("expected error for negative diffusion constant")
	}
}

func TestTypeByNameResolvesDeclarationOrder(t *testing.T) {
	s := &System{
		Dim:   1,
		Box:   []float64{10},
		KBT:   1,
		Types: []TypeDef{{Name: "A", DiffusionConstant: 1}, {Name: "B", DiffusionConstant: 2}},
	}
	id, ok := s.TypeByName("B")
	if !ok || id != 1 {
		t.Errorf("TypeByName(B) = (%v, %v), want (1, true)", id, ok)
	}
	if _, ok := s.TypeByName("C"); ok {
		t.Error("TypeByName(C) should not resolve")
	}
}

func TestAllTypesMatchesDeclarationCount(t *testing.T) {
	s := &System{
		Dim:   1,
		Box:   []float64{10},
		KBT:   1,
		Types: []TypeDef{{Name: "A", DiffusionConstant: 1}, {Name: "B", DiffusionConstant: 2}},
	}
	all := s.AllTypes()
	if len(all) != 2 || all[0] != 0 || all[1] != 1 {
		t.Errorf("AllTypes() = %v, want [0 1]", all)
	}
}
