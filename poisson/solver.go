package poisson

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Solver performs Jacobi-style relaxation of the discrete Poisson
// equation over a masked region.
//
// The update per sweep is
//
//	target[masked] = (grad + up + down + left + right) / 4
//
// where up/down/left/right are the 4-neighborhood of the current
// target estimate with zero padding at the matrix edges, and unmasked
// cells keep their value on every sweep (Dirichlet boundary).
type Solver struct {
	rows, cols int
	mask       *mat.Dense // 1 inside the blend region, 0 outside
	maskNot    *mat.Dense // complement of mask
	target     *mat.Dense // current estimate, updated in place
	grad       *mat.Dense // guidance field, constant across sweeps
	scratch    *mat.Dense // per-sweep working buffer
}

// NewSolver initializes relaxation state from a mask, an initial
// target and a gradient field, all of identical dimensions. The
// inputs are copied; the caller keeps ownership of its matrices.
//
// The mask's border rows and columns are forced to zero so the solved
// region never touches the matrix edge, and one warm-start sweep is
// run so the masked interior starts from its neighborhood average
// rather than the raw target values.
func NewSolver(mask, target, grad *mat.Dense) (*Solver, error) {
	r, c := target.Dims()
	if mr, mc := mask.Dims(); mr != r || mc != c {
		return nil, fmt.Errorf("%w: mask %dx%d, target %dx%d", ErrDimensionMismatch, mr, mc, r, c)
	}
	if gr, gc := grad.Dims(); gr != r || gc != c {
		return nil, fmt.Errorf("%w: gradient %dx%d, target %dx%d", ErrDimensionMismatch, gr, gc, r, c)
	}

	s := &Solver{
		rows:    r,
		cols:    c,
		mask:    mat.DenseCopyOf(mask),
		maskNot: mat.NewDense(r, c, nil),
		target:  mat.DenseCopyOf(target),
		grad:    mat.DenseCopyOf(grad),
		scratch: mat.NewDense(r, c, nil),
	}

	zeroBorders(s.mask)
	s.maskNot.Apply(func(_, _ int, v float64) float64 { return 1 - v }, s.mask)

	s.sweep()
	return s, nil
}

// Step runs the given number of relaxation sweeps and returns the
// residual of the discrete Poisson equation restricted to the masked
// interior (sum of absolute imbalance). The residual is reported, not
// acted on; iteration count alone decides how long Step runs.
func (s *Solver) Step(iterations int) float64 {
	for i := 0; i < iterations; i++ {
		s.sweep()
	}
	return s.residual()
}

// Target returns a copy of the current (unclamped) estimate.
func (s *Solver) Target() *mat.Dense {
	return mat.DenseCopyOf(s.target)
}

// Clamped returns a copy of the current estimate truncated to the
// [0,255] pixel range.
func (s *Solver) Clamped() *mat.Dense {
	out := mat.DenseCopyOf(s.target)
	out.Apply(func(_, _ int, v float64) float64 { return float64(clampU8(v)) }, out)
	return out
}

// sweep performs one relaxation pass: masked cells take the
// neighborhood average, unmasked cells keep their value.
func (s *Solver) sweep() {
	g := s.gridIter()
	g.MulElem(g, s.mask)
	g.Scale(0.25, g)
	s.target.MulElem(s.target, s.maskNot)
	s.target.Add(s.target, g)
}

// gridIter computes grad + the four shifted neighbor views of the
// current target. Cells adjacent to an edge simply receive fewer
// terms (zero padding, no wraparound). The returned matrix aliases
// the solver's scratch buffer.
func (s *Solver) gridIter() *mat.Dense {
	r, c := s.rows, s.cols
	g := s.scratch
	g.Copy(s.grad)

	if r > 1 {
		gv := g.Slice(1, r, 0, c).(*mat.Dense)
		gv.Add(gv, s.target.Slice(0, r-1, 0, c))
		gv = g.Slice(0, r-1, 0, c).(*mat.Dense)
		gv.Add(gv, s.target.Slice(1, r, 0, c))
	}
	if c > 1 {
		gv := g.Slice(0, r, 1, c).(*mat.Dense)
		gv.Add(gv, s.target.Slice(0, r, 0, c-1))
		gv = g.Slice(0, r, 0, c-1).(*mat.Dense)
		gv.Add(gv, s.target.Slice(0, r, 1, c))
	}
	return g
}

// residual computes sum(|4*target - grad - neighborSum(target)|) over
// the masked interior.
func (s *Solver) residual() float64 {
	r, c := s.rows, s.cols
	e := s.scratch
	e.Scale(4, s.target)
	e.Sub(e, s.grad)

	if r > 1 {
		ev := e.Slice(1, r, 0, c).(*mat.Dense)
		ev.Sub(ev, s.target.Slice(0, r-1, 0, c))
		ev = e.Slice(0, r-1, 0, c).(*mat.Dense)
		ev.Sub(ev, s.target.Slice(1, r, 0, c))
	}
	if c > 1 {
		ev := e.Slice(0, r, 1, c).(*mat.Dense)
		ev.Sub(ev, s.target.Slice(0, r, 0, c-1))
		ev = e.Slice(0, r, 0, c-1).(*mat.Dense)
		ev.Sub(ev, s.target.Slice(0, r, 1, c))
	}

	e.MulElem(e, s.mask)

	var sum float64
	raw := e.RawMatrix()
	for i := 0; i < raw.Rows; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
		for _, v := range row {
			sum += math.Abs(v)
		}
	}
	return sum
}

// zeroBorders forces the outermost rows and columns of m to zero.
func zeroBorders(m *mat.Dense) {
	r, c := m.Dims()
	for j := 0; j < c; j++ {
		m.Set(0, j, 0)
		m.Set(r-1, j, 0)
	}
	for i := 0; i < r; i++ {
		m.Set(i, 0, 0)
		m.Set(i, c-1, 0)
	}
}
