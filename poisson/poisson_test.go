package poisson

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func newGray(w, h int, fill uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = fill
	}
	return img
}

func fillRect(img *image.Gray, x, y, w, h int, v uint8) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			img.SetGray(xx, yy, color.Gray{Y: v})
		}
	}
}

func TestSolverDimensionMismatch(t *testing.T) {
	mask := mat.NewDense(3, 3, nil)
	target := mat.NewDense(4, 4, nil)
	grad := mat.NewDense(4, 4, nil)

	if _, err := NewSolver(mask, target, grad); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}

	mask = mat.NewDense(4, 4, nil)
	grad = mat.NewDense(4, 5, nil)
	if _, err := NewSolver(mask, target, grad); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch for gradient, got %v", err)
	}
}

func TestSolverZeroMaskLeavesTargetUnchanged(t *testing.T) {
	const n = 12
	target := mat.NewDense(n, n, nil)
	grad := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			target.Set(i, j, float64(i*20+j))
			grad.Set(i, j, float64(17*i-j))
		}
	}

	s, err := NewSolver(mat.NewDense(n, n, nil), target, grad)
	if err != nil {
		t.Fatalf("NewSolver failed: %v", err)
	}

	res := s.Step(25)
	if res != 0 {
		t.Errorf("residual = %v, want 0 for an empty mask", res)
	}
	if !mat.Equal(s.Target(), target) {
		t.Error("target changed despite an empty mask")
	}
}

func TestSolverResidualNonIncreasing(t *testing.T) {
	const n = 24
	mask := mat.NewDense(n, n, nil)
	target := mat.NewDense(n, n, nil)
	grad := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			target.Set(i, j, 128)
		}
	}
	for i := 7; i < 17; i++ {
		for j := 7; j < 17; j++ {
			mask.Set(i, j, 1)
		}
	}
	grad.Set(10, 10, 100)
	grad.Set(13, 12, 100)

	s, err := NewSolver(mask, target, grad)
	if err != nil {
		t.Fatalf("NewSolver failed: %v", err)
	}

	prev := math.Inf(1)
	for round := 0; round < 6; round++ {
		res := s.Step(10)
		if res > prev {
			t.Fatalf("round %d: residual grew from %v to %v", round, prev, res)
		}
		prev = res
	}
}

func TestSolverClamped(t *testing.T) {
	target := mat.NewDense(3, 3, []float64{
		-10, 0, 12.7,
		300, 255, 254.9,
		128, 1e9, -1e9,
	})
	s, err := NewSolver(mat.NewDense(3, 3, nil), target, mat.NewDense(3, 3, nil))
	if err != nil {
		t.Fatalf("NewSolver failed: %v", err)
	}

	want := []float64{0, 0, 12, 255, 255, 254, 128, 255, 0}
	got := s.Clamped()
	for i, w := range want {
		if v := got.At(i/3, i%3); v != w {
			t.Errorf("cell %d: clamped to %v, want %v", i, v, w)
		}
	}
}

func TestBuildGradientModes(t *testing.T) {
	src := mat.NewDense(3, 3, []float64{
		0, 0, 0,
		0, 9, 0,
		0, 0, 0,
	})
	flat := mat.NewDense(3, 3, nil)
	tgt := mat.NewDense(3, 3, []float64{
		0, 0, 0,
		0, 0, 4,
		0, 0, 0,
	})

	tests := []struct {
		name string
		tgt  *mat.Dense
		mode GradientMode
		want []float64
	}{
		{
			name: "source mode is the discrete laplacian of the source",
			tgt:  tgt,
			mode: GradientSource,
			want: []float64{
				0, -9, 0,
				-9, 36, -9,
				0, -9, 0,
			},
		},
		{
			name: "average mode halves where target gradients differ",
			tgt:  tgt,
			mode: GradientAverage,
			want: []float64{
				0, -4.5, -2,
				-4.5, 16, 1.5,
				0, -4.5, -2,
			},
		},
		{
			name: "maximum mode keeps the larger magnitude",
			tgt:  tgt,
			mode: GradientMaximum,
			want: []float64{
				0, -9, -4,
				-9, 36, -1,
				0, -9, -4,
			},
		},
		{
			name: "flat target reduces average to half the source gradient",
			tgt:  flat,
			mode: GradientAverage,
			want: []float64{
				0, -4.5, 0,
				-4.5, 18, -4.5,
				0, -4.5, 0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildGradient(src, tt.tgt, tt.mode)
			want := mat.NewDense(3, 3, tt.want)
			if !mat.EqualApprox(got, want, 1e-12) {
				t.Errorf("gradient mismatch:\ngot:\n%v\nwant:\n%v",
					mat.Formatted(got), mat.Formatted(want))
			}
		})
	}
}

func TestMixIntoMaximum(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want float64
	}{
		{"source magnitude larger", -7, 4, -7},
		{"target magnitude larger", 2, -6, -6},
		{"opposite-sign tie keeps source", 3, -3, 3},
		{"same-sign tie keeps source", -5, -5, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mat.NewDense(1, 1, []float64{tt.a})
			b := mat.NewDense(1, 1, []float64{tt.b})
			mixInto(a, b, GradientMaximum)
			if got := a.At(0, 0); got != tt.want {
				t.Errorf("mixed %v and %v into %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEditorDimensionMismatch(t *testing.T) {
	src := newGray(10, 10, 0)
	mask := newGray(10, 10, 0)
	bg := newGray(12, 10, 255)

	if _, err := NewEditor(src, mask, bg, GradientMaximum); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestEditorEmptyMask(t *testing.T) {
	src := newGray(20, 16, 200)
	mask := newGray(20, 16, 0)
	bg := newGray(20, 16, 99)

	e, err := NewEditor(src, mask, bg, GradientMaximum)
	if err != nil {
		t.Fatalf("NewEditor failed: %v", err)
	}

	out, res := e.Step(50)
	if res != 0 {
		t.Errorf("residual = %v, want 0", res)
	}
	for i, px := range out.Pix {
		if px != 99 {
			t.Fatalf("pixel %d = %d, want untouched target value 99", i, px)
		}
	}
}

// TestEditorBlendScenario blends a mid-gray block into a white
// background the way the compositor does: the source is the inverted,
// alpha-scaled foreground, the mask is the foreground footprint.
func TestEditorBlendScenario(t *testing.T) {
	const (
		bgW, bgH = 200, 60
		fgW, fgH = 100, 20
		fgX, fgY = 50, 20
	)

	bg := newGray(bgW, bgH, 255)
	padded := newGray(bgW, bgH, 0)
	fillRect(padded, fgX, fgY, fgW, fgH, 128)

	src := image.NewGray(image.Rect(0, 0, bgW, bgH))
	for i, px := range padded.Pix {
		src.Pix[i] = uint8(float64(255-px) * 0.5)
	}

	e, err := NewEditor(src, padded, bg, GradientMaximum)
	if err != nil {
		t.Fatalf("NewEditor failed: %v", err)
	}

	out, res := e.Step(500)
	if res < 0 || math.IsNaN(res) {
		t.Fatalf("residual = %v, want a finite non-negative value", res)
	}

	if w, h := out.Bounds().Dx(), out.Bounds().Dy(); w != bgW || h != bgH {
		t.Fatalf("output is %dx%d, want %dx%d", w, h, bgW, bgH)
	}

	for y := 0; y < bgH; y++ {
		for x := 0; x < bgW; x++ {
			px := out.GrayAt(x, y).Y
			inside := x >= fgX && x < fgX+fgW && y >= fgY && y < fgY+fgH
			if inside {
				if px == 0 || px == 255 {
					t.Fatalf("masked pixel (%d,%d) = %d, want a strictly interior value", x, y, px)
				}
			} else if px != 255 {
				t.Fatalf("unmasked pixel (%d,%d) = %d, want the untouched background 255", x, y, px)
			}
		}
	}
}

func TestEditorResidualNonIncreasing(t *testing.T) {
	bg := newGray(80, 40, 255)
	padded := newGray(80, 40, 0)
	fillRect(padded, 10, 10, 50, 16, 200)

	src := image.NewGray(image.Rect(0, 0, 80, 40))
	for i, px := range padded.Pix {
		src.Pix[i] = 255 - px
	}

	e, err := NewEditor(src, padded, bg, GradientMaximum)
	if err != nil {
		t.Fatalf("NewEditor failed: %v", err)
	}

	prev := math.Inf(1)
	for round := 0; round < 8; round++ {
		_, res := e.Step(25)
		if res > prev {
			t.Fatalf("round %d: residual grew from %v to %v", round, prev, res)
		}
		prev = res
	}
}
