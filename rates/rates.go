// Package rates converts between the microscopic (Doi) reaction rate a
// ReactionEngine actually samples and the macroscopic rate constant a
// system designer reasons about, following the closed-form relation for
// two freely diffusing species (spec §4.4, "Non-goals" excludes deriving
// this automatically from a target macroscopic rate — but validating a
// hard-coded microscopic rate against its macroscopic equivalent is not
// excluded).
package rates

import "math"

// Macroscopic converts a microscopic (per-pair, per-unit-time) reaction
// rate into the macroscopic rate constant it reproduces at long times,
// given the two educts' diffusion constants and the reaction radius.
// Grounded on original_source/include/ctiprd/util/rates.h's
// macroscopicRate.
func Macroscopic(microRate, diff1, diff2, radius float64) float64 {
	if microRate == 0 {
		return 0
	}
	sumD := diff1 + diff2
	kappa := math.Sqrt(microRate / sumD)
	return 4 * math.Pi * sumD * radius * (1 - math.Tanh(kappa*radius)/(kappa*radius))
}
