package projective

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Projection describes a perspective projection of an image plane as
// seen by a virtual camera.
type Projection struct {
	// H maps In onto Out.
	H Matrix3

	// Side is the edge length of the square canvas the projected
	// corners are remapped into.
	Side float64

	// In holds the four source corners in image coordinates,
	// Out the corresponding projected corners in canvas coordinates.
	In, Out [4]Point
}

// BuildProjection models an image of the given size lying flat in
// front of a virtual camera, rotated by rot, and returns the
// homography that realizes the resulting perspective distortion.
//
// The camera sits at a distance chosen so the image diagonal exactly
// spans the vertical field of view fovy (degrees). scale multiplies
// the output canvas size. The four image corners are projected
// through the combined projection, translation and rotation transform
// with a perspective divide, then remapped from normalized device
// coordinates onto a square canvas of edge Side.
//
// Fails with ErrSingularTransform when the rotated corners collapse
// into a degenerate quadrilateral.
func BuildProjection(width, height float64, rot Rotation, scale, fovy float64) (Projection, error) {
	half := fovy * math.Pi / 360 // half field of view, radians
	d := math.Hypot(width, height)
	side := scale * d / math.Cos(half)
	hyp := d / (2 * math.Sin(half))
	near := hyp - d/2
	far := hyp + d/2

	// transform = project * translate * rotate, applied to points
	// on the z=0 plane centered at the origin.
	var transform mat.Dense
	transform.Mul(perspective(half, near, far), translateZ(-hyp))
	transform.Mul(&transform, rotate(rot))

	corners := [4][2]float64{
		{-width / 2, height / 2},
		{width / 2, height / 2},
		{width / 2, -height / 2},
		{-width / 2, -height / 2},
	}

	// Corner columns in homogeneous coordinates, projected in one
	// multiply, then divided by their w row.
	pts := mat.NewDense(4, 4, nil)
	for i, c := range corners {
		pts.Set(0, i, c[0])
		pts.Set(1, i, c[1])
		pts.Set(2, i, 0)
		pts.Set(3, i, 1)
	}
	var mapped mat.Dense
	mapped.Mul(&transform, pts)

	p := Projection{Side: side}
	for i, c := range corners {
		p.In[i] = Point{X: c[0] + width/2, Y: c[1] + height/2}
		w := mapped.At(3, i)
		p.Out[i] = Point{
			X: (mapped.At(0, i)/w + 1) * side / 2,
			Y: (mapped.At(1, i)/w + 1) * side / 2,
		}
	}

	h, err := SolveHomography(p.In, p.Out)
	if err != nil {
		return Projection{}, err
	}
	p.H = h
	return p, nil
}

// rotate builds the combined rotation matrix for angles in degrees,
// composed in X, Y, Z order.
func rotate(rot Rotation) *mat.Dense {
	x := rot.X * math.Pi / 180
	y := rot.Y * math.Pi / 180
	z := rot.Z * math.Pi / 180

	rx := mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, math.Cos(x), -math.Sin(x), 0,
		0, math.Sin(x), math.Cos(x), 0,
		0, 0, 0, 1,
	})
	ry := mat.NewDense(4, 4, []float64{
		math.Cos(y), 0, math.Sin(y), 0,
		0, 1, 0, 0,
		-math.Sin(y), 0, math.Cos(y), 0,
		0, 0, 0, 1,
	})
	rz := mat.NewDense(4, 4, []float64{
		math.Cos(z), -math.Sin(z), 0, 0,
		math.Sin(z), math.Cos(z), 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})

	var r mat.Dense
	r.Mul(rx, ry)
	r.Mul(&r, rz)
	return &r
}

// translateZ builds a translation along the camera axis.
func translateZ(tz float64) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, tz,
		0, 0, 0, 1,
	})
}

// perspective builds the projection matrix for a camera with the
// given half field of view (radians) and near/far clip planes.
func perspective(half, near, far float64) *mat.Dense {
	s := 1 / math.Tan(half)
	return mat.NewDense(4, 4, []float64{
		s, 0, 0, 0,
		0, s, 0, 0,
		0, 0, -(far + near) / (far - near), -2 * far * near / (far - near),
		0, 0, -1, 0,
	})
}
