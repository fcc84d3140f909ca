// Package projective implements the homography algebra behind simulated
// camera-angle distortion: building a 3x3 projective transform from
// Euler rotation angles and a field of view, and solving the classic
// 4-point-correspondence system for a homography matrix.
//
// All angles are given in degrees. Matrices are small and fixed-size;
// the heavy lifting (4x4 composition, LU factorization) is delegated
// to gonum.
package projective

import (
	"errors"
	"math"
)

// ErrSingularTransform is returned when the homography linear system
// has no solution, typically because the point correspondences are
// degenerate (three or more collinear points).
var ErrSingularTransform = errors.New("projective: singular transform")

// Point is a 2D point in pixel coordinates.
type Point struct {
	X, Y float64
}

// Rotation holds Euler rotation angles in degrees, applied in X, Y, Z
// order around the image center.
type Rotation struct {
	X, Y, Z float64
}

// Matrix3 is a 3x3 homography in row-major order. The zero value is
// not a valid transform; obtain one from SolveHomography or
// BuildProjection.
type Matrix3 [3][3]float64

// Identity3 returns the identity homography.
func Identity3() Matrix3 {
	return Matrix3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// Apply maps p through the homography, performing the projective
// divide. Points at infinity (zero denominator) map to +Inf
// coordinates rather than panicking.
func (m Matrix3) Apply(p Point) Point {
	w := m[2][0]*p.X + m[2][1]*p.Y + m[2][2]
	return Point{
		X: (m[0][0]*p.X + m[0][1]*p.Y + m[0][2]) / w,
		Y: (m[1][0]*p.X + m[1][1]*p.Y + m[1][2]) / w,
	}
}

// Invert returns the inverse homography. Returns false if the matrix
// is singular (non-invertible).
func (m Matrix3) Invert() (Matrix3, bool) {
	// Cofactor expansion along the first row.
	c00 := m[1][1]*m[2][2] - m[1][2]*m[2][1]
	c01 := m[1][2]*m[2][0] - m[1][0]*m[2][2]
	c02 := m[1][0]*m[2][1] - m[1][1]*m[2][0]

	det := m[0][0]*c00 + m[0][1]*c01 + m[0][2]*c02
	if math.Abs(det) < 1e-12 {
		return Matrix3{}, false
	}
	invDet := 1.0 / det

	return Matrix3{
		{c00 * invDet, (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * invDet, (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * invDet},
		{c01 * invDet, (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * invDet, (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * invDet},
		{c02 * invDet, (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * invDet, (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * invDet},
	}, true
}
