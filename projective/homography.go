package projective

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SolveHomography computes the 3x3 homography mapping the four in
// points onto the four out points.
//
// Each correspondence (x,y) -> (x',y') contributes the two standard
// rows encoding x' = (ax+by+c)/(gx+hy+1) and y' = (dx+ey+f)/(gx+hy+1),
// giving an 8x8 linear system in the matrix entries. The system is
// solved by LU decomposition with the bottom-right homogeneous entry
// fixed to 1.
//
// Fails with ErrSingularTransform when the correspondences are
// degenerate (for example three collinear points).
func SolveHomography(in, out [4]Point) (Matrix3, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)

	for i := range in {
		x, y := in[i].X, in[i].Y
		u, v := out[i].X, out[i].Y

		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y})
		b.SetVec(2*i, u)
		b.SetVec(2*i+1, v)
	}

	var lu mat.LU
	lu.Factorize(a)

	var h mat.VecDense
	if err := lu.SolveVecTo(&h, false, b); err != nil {
		return Matrix3{}, fmt.Errorf("%w: %v", ErrSingularTransform, err)
	}

	return Matrix3{
		{h.AtVec(0), h.AtVec(1), h.AtVec(2)},
		{h.AtVec(3), h.AtVec(4), h.AtVec(5)},
		{h.AtVec(6), h.AtVec(7), 1},
	}, nil
}
