// Package poisson implements gradient-domain (seamless) image
// blending by iterative relaxation of the discrete Poisson equation.
//
// A Solver owns the relaxation state (mask, target estimate, gradient
// field) and advances it one Jacobi sweep at a time; an Editor wraps a
// Solver with everything a blend needs: building the mixed gradient
// field from a source/target pair, restricting the solve to the
// mask's bounding box, and writing the clamped result back into the
// full target image.
//
// Iteration counts are caller-specified and always run to completion.
// The residual reported after each Step is informational; callers that
// want convergence-based early exit can loop over small Steps and
// watch it themselves.
package poisson

import "errors"

// ErrDimensionMismatch is returned when the mask, target and gradient
// matrices (or the source, mask and target images) do not share
// identical dimensions.
var ErrDimensionMismatch = errors.New("poisson: dimension mismatch")

// GradientMode selects how source and target gradients are mixed when
// building the guidance field.
type GradientMode int

const (
	// GradientAverage mixes source and target gradients by
	// arithmetic mean.
	GradientAverage GradientMode = iota

	// GradientSource always keeps the source gradient, giving
	// classic seamless cloning.
	GradientSource

	// GradientMaximum keeps whichever gradient has the larger
	// magnitude, elementwise. Ties keep the source gradient.
	GradientMaximum
)

// String returns a human-readable name for the gradient mode.
func (m GradientMode) String() string {
	switch m {
	case GradientAverage:
		return "Average"
	case GradientSource:
		return "Source"
	case GradientMaximum:
		return "Maximum"
	default:
		return "Unknown"
	}
}

// clampU8 truncates v to the [0,255] pixel range. The negative branch
// also catches NaN.
func clampU8(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
