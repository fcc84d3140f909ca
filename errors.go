package synthtext

import (
	"errors"

	"github.com/synthtext/synthtext/poisson"
	"github.com/synthtext/synthtext/projective"
)

// Package errors. All errors returned by synthtext wrap one of these
// sentinels, so callers can classify failures with errors.Is.
var (
	// ErrInvalidConfig is returned when a configuration violates a
	// documented constraint (probabilities outside [0,1], filter weights
	// that do not sum to one, non-positive dimensions).
	ErrInvalidConfig = errors.New("synthtext: invalid configuration")

	// ErrDimensionMismatch is returned when image or buffer dimensions
	// disagree with what an operation requires.
	ErrDimensionMismatch = errors.New("synthtext: dimension mismatch")

	// ErrEmptyPool is returned when a background directory yields no
	// usable images.
	ErrEmptyPool = errors.New("synthtext: empty background pool")

	// ErrSingularTransform is returned when a perspective projection
	// cannot be represented by an invertible homography. It aliases
	// [projective.ErrSingularTransform].
	ErrSingularTransform = projective.ErrSingularTransform
)

// IsDimensionMismatch reports whether err is a dimension mismatch from
// any synthtext package. The blending sub-package uses its own sentinel;
// this helper matches both.
func IsDimensionMismatch(err error) bool {
	return errors.Is(err, ErrDimensionMismatch) || errors.Is(err, poisson.ErrDimensionMismatch)
}
