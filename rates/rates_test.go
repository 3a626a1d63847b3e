package rates

import (
	"math"
	"testing"
)

func TestMacroscopicIsZeroForZeroMicroRate(t *testing.T) {
	if got := Macroscopic(0, 1, 1, 0.1); got != 0 {
		t.Errorf("Macroscopic(0, ...) = %v, want 0", got)
	}
}

func TestMacroscopicIsMonotonicInMicroRate(t *testing.T) {
	low := Macroscopic(1, 1, 1, 0.1)
	high := Macroscopic(10, 1, 1, 0.1)
	if !(high > low) {
		t.Errorf("Macroscopic should increase with microRate: low=%v high=%v", low, high)
	}
}

func TestMacroscopicBoundedBySmoluchowskiLimit(t *testing.T) {
	// As microRate -> infinity, macroscopic rate approaches the
	// diffusion-limited Smoluchowski rate 4*pi*(D1+D2)*radius.
	diff1, diff2, radius := 1.0, 2.0, 0.5
	limit := 4 * math.Pi * (diff1 + diff2) * radius
	got := Macroscopic(1e16, diff1, diff2, radius)
	if got > limit {
		t.Errorf("Macroscopic(huge rate) = %v exceeds Smoluchowski limit %v", got, limit)
	}
	if math.Abs(got-limit) > 1e-6*limit {
		t.Errorf("Macroscopic(huge rate) = %v, want ~%v", got, limit)
	}
}
