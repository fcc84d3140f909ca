package poisson

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
)

// maskThreshold is the pixel value at which a mask image pixel counts
// as inside the blend region.
const maskThreshold = 128

// Editor blends a source image into a target image through Poisson
// relaxation, seeded from a mask image marking the region to replace.
//
// Construction derives the binary mask (pixels >= 128 of the mask
// image, borders forced to zero), builds the mixed gradient field,
// and restricts the solve to the mask's bounding box expanded by one
// pixel. Step advances the solve and returns the full-size result.
type Editor struct {
	solver *Solver
	target *image.Gray
	roi    image.Rectangle // solved sub-region, in target coordinates
	empty  bool            // mask has no interior pixels
}

// NewEditor prepares a blend of source into target over the region
// marked by mask. All three images must share dimensions; fails with
// ErrDimensionMismatch otherwise.
//
// An all-zero mask yields a valid Editor whose Step returns the
// target unchanged with residual 0.
func NewEditor(source, mask, target *image.Gray, mode GradientMode) (*Editor, error) {
	sw, sh := source.Bounds().Dx(), source.Bounds().Dy()
	mw, mh := mask.Bounds().Dx(), mask.Bounds().Dy()
	tw, th := target.Bounds().Dx(), target.Bounds().Dy()
	if sw != tw || sh != th || mw != tw || mh != th {
		return nil, fmt.Errorf("%w: source %dx%d, mask %dx%d, target %dx%d",
			ErrDimensionMismatch, sw, sh, mw, mh, tw, th)
	}

	e := &Editor{target: cloneGray(target)}

	maskM := maskToDense(mask)
	zeroBorders(maskM)
	r0, r1, c0, c1, ok := maskBounds(maskM)
	if !ok {
		e.empty = true
		return e, nil
	}

	// Expand the tight bounding box by one pixel on each side; the
	// zeroed borders guarantee the expansion stays in range.
	e.roi = image.Rect(c0-1, r0-1, c1+2, r1+2)

	srcM := grayRegionToDense(source, e.roi)
	tgtM := grayRegionToDense(target, e.roi)
	mskM := mat.DenseCopyOf(maskM.Slice(e.roi.Min.Y, e.roi.Max.Y, e.roi.Min.X, e.roi.Max.X))

	grad := buildGradient(srcM, tgtM, mode)
	grad.MulElem(grad, mskM)

	solver, err := NewSolver(mskM, tgtM, grad)
	if err != nil {
		return nil, err
	}
	e.solver = solver
	return e, nil
}

// Step runs the given number of relaxation sweeps and returns the
// blended full-size image along with the solve residual. Pixels
// outside the masked region always equal the original target.
func (e *Editor) Step(iterations int) (*image.Gray, float64) {
	out := cloneGray(e.target)
	if e.empty {
		return out, 0
	}

	res := e.solver.Step(iterations)
	writeRegion(out, e.roi, e.solver.target)
	return out, res
}

// buildGradient computes the per-direction source/target differences,
// mixes each pair per mode, and sums them over the 4-neighborhood.
// The caller applies the mask.
func buildGradient(src, tgt *mat.Dense, mode GradientMode) *mat.Dense {
	r, c := src.Dims()
	grad := mat.NewDense(r, c, nil)

	add := func(di, dk, dj, dl, si, sk, sj, sl int) {
		var a, b mat.Dense
		a.Sub(src.Slice(di, dk, dj, dl), src.Slice(si, sk, sj, sl))
		b.Sub(tgt.Slice(di, dk, dj, dl), tgt.Slice(si, sk, sj, sl))
		mixInto(&a, &b, mode)
		gv := grad.Slice(di, dk, dj, dl).(*mat.Dense)
		gv.Add(gv, &a)
	}

	if r > 1 {
		add(1, r, 0, c, 0, r-1, 0, c) // minus up neighbor
		add(0, r-1, 0, c, 1, r, 0, c) // minus down neighbor
	}
	if c > 1 {
		add(0, r, 1, c, 0, r, 0, c-1) // minus left neighbor
		add(0, r, 0, c-1, 0, r, 1, c) // minus right neighbor
	}
	return grad
}

// mixInto combines the source gradient a and target gradient b into a
// according to the gradient mode.
func mixInto(a, b *mat.Dense, mode GradientMode) {
	switch mode {
	case GradientSource:
		// a already holds the source gradient.
	case GradientAverage:
		a.Add(a, b)
		a.Scale(0.5, a)
	case GradientMaximum:
		// Equal magnitudes keep the source gradient.
		r, c := a.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if av, bv := a.At(i, j), b.At(i, j); math.Abs(av) < math.Abs(bv) {
					a.Set(i, j, bv)
				}
			}
		}
	}
}

// maskBounds returns the inclusive row/column range containing every
// nonzero mask cell, or ok=false when the mask is entirely zero.
func maskBounds(m *mat.Dense) (r0, r1, c0, c1 int, ok bool) {
	rows, cols := m.Dims()
	r0, c0 = rows, cols
	r1, c1 = -1, -1
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if m.At(i, j) == 0 {
				continue
			}
			if i < r0 {
				r0 = i
			}
			if i > r1 {
				r1 = i
			}
			if j < c0 {
				c0 = j
			}
			if j > c1 {
				c1 = j
			}
		}
	}
	return r0, r1, c0, c1, r1 >= 0
}

// maskToDense converts a mask image to a 0/1 matrix.
func maskToDense(img *image.Gray) *mat.Dense {
	b := img.Bounds()
	m := mat.NewDense(b.Dy(), b.Dx(), nil)
	for y := 0; y < b.Dy(); y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x, px := range img.Pix[off : off+b.Dx()] {
			if px >= maskThreshold {
				m.Set(y, x, 1)
			}
		}
	}
	return m
}

// grayRegionToDense copies a region of img, given in content
// coordinates (relative to the bounds origin), into a float64 matrix.
func grayRegionToDense(img *image.Gray, r image.Rectangle) *mat.Dense {
	b := img.Bounds()
	m := mat.NewDense(r.Dy(), r.Dx(), nil)
	for y := 0; y < r.Dy(); y++ {
		off := img.PixOffset(b.Min.X+r.Min.X, b.Min.Y+r.Min.Y+y)
		for x, px := range img.Pix[off : off+r.Dx()] {
			m.Set(y, x, float64(px))
		}
	}
	return m
}

// writeRegion writes the clamped matrix into the given region of img.
func writeRegion(img *image.Gray, r image.Rectangle, m *mat.Dense) {
	for y := 0; y < r.Dy(); y++ {
		row := img.Pix[(r.Min.Y+y)*img.Stride+r.Min.X : (r.Min.Y+y)*img.Stride+r.Min.X+r.Dx()]
		for x := range row {
			row[x] = clampU8(m.At(y, x))
		}
	}
}

// cloneGray returns a tightly packed zero-origin copy of img.
func cloneGray(img *image.Gray) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], img.Pix[off:off+b.Dx()])
	}
	return out
}
