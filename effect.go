package synthtext

import (
	"fmt"
	"image"
	"math"
	"math/rand/v2"

	"github.com/disintegration/imaging"

	"github.com/synthtext/synthtext/internal/raster"
	"github.com/synthtext/synthtext/projective"
)

// Rotation is re-exported from the projective package for callers that
// drive WarpPerspective directly. Components are in degrees.
type Rotation = projective.Rotation

// Fixed parameters of the degradation pipeline. The camera constants
// feed BuildProjection; the padding factor leaves room around the
// content for the occlusion box to surround it.
const (
	warpScale       = 1.0
	warpFovy        = 50.0
	boxPaddingAlpha = 1.3
)

// Convolution kernels applied by the filter gate, row-major.
var (
	embossKernel  = [9]float64{-2, -1, 0, -1, 1, 1, 0, 1, 2}
	sharpenKernel = [9]float64{-1, -1, -1, -1, 9, -1, -1, -1, -1}
)

// EffectConfig parameterizes an Effector. Each *Prob field gates one
// stage of Apply; the RandomVar fields are sampled only when their gate
// fires.
type EffectConfig struct {
	// BoxProb is the probability of drawing an occlusion rectangle
	// around the content.
	BoxProb float64

	// PerspectiveProb is the probability of applying a perspective warp.
	// The three rotation variables are in degrees.
	PerspectiveProb float64
	RotateX         RandomVar
	RotateY         RandomVar
	RotateZ         RandomVar

	// BlurProb is the probability of a gaussian blur with a sigma drawn
	// from BlurSigma.
	BlurProb  float64
	BlurSigma RandomVar

	// FilterProb is the probability, once blur has fired, of following
	// it with a single 3x3 filter. EmbossProb and SharpProb pick which
	// one and must sum to 1.
	FilterProb float64
	EmbossProb float64
	SharpProb  float64
}

func (c EffectConfig) validate() error {
	probs := []struct {
		name string
		v    float64
	}{
		{"box_prob", c.BoxProb},
		{"perspective_prob", c.PerspectiveProb},
		{"blur_prob", c.BlurProb},
		{"filter_prob", c.FilterProb},
		{"emboss_prob", c.EmbossProb},
		{"sharp_prob", c.SharpProb},
	}
	for _, p := range probs {
		if p.v < 0 || p.v > 1 || math.IsNaN(p.v) {
			return fmt.Errorf("%w: %s = %v, want a probability in [0, 1]", ErrInvalidConfig, p.name, p.v)
		}
	}
	if math.Abs(c.EmbossProb+c.SharpProb-1) > 1e-9 {
		return fmt.Errorf("%w: emboss_prob (%v) + sharp_prob (%v) must equal 1", ErrInvalidConfig, c.EmbossProb, c.SharpProb)
	}
	return nil
}

// Effector applies the probability-gated degradation sequence to
// rendered text images: occlusion box, perspective warp, gaussian blur,
// and at most one of emboss or sharpen after a blur.
//
// An Effector is immutable after construction and safe for concurrent
// use as long as each goroutine brings its own *rand.Rand.
type Effector struct {
	cfg EffectConfig
}

// NewEffector validates cfg and returns an Effector.
func NewEffector(cfg EffectConfig) (*Effector, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Effector{cfg: cfg}, nil
}

// Apply runs the gates in a fixed order: occlusion box, perspective
// warp, gaussian blur, then optionally one 3x3 filter. The first three
// gates each draw one value from rng whether or not they fire; the
// filter gate draws only after a blur, so a seeded generator produces a
// reproducible sequence across calls. The input is never modified; the
// result may have different dimensions when the perspective gate fires.
func (e *Effector) Apply(rng *rand.Rand, img *image.Gray) (*image.Gray, error) {
	out := img

	if rng.Float64() < e.cfg.BoxProb {
		boxed, err := DrawOcclusionBox(rng, out, boxPaddingAlpha)
		if err != nil {
			return nil, err
		}
		out = boxed
	}

	if rng.Float64() < e.cfg.PerspectiveProb {
		rot := Rotation{
			X: e.cfg.RotateX.Sample(rng),
			Y: e.cfg.RotateY.Sample(rng),
			Z: e.cfg.RotateZ.Sample(rng),
		}
		warped, err := WarpPerspective(out, rot)
		if err != nil {
			return nil, err
		}
		out = warped
	}

	if rng.Float64() < e.cfg.BlurProb {
		out = GaussianBlur(out, e.cfg.BlurSigma.Sample(rng))
		if rng.Float64() < e.cfg.FilterProb {
			if rng.Float64() < e.cfg.EmbossProb {
				out = ApplyEmboss(out)
			} else {
				out = ApplySharpen(out)
			}
		}
	}

	if out == img {
		out = raster.Clone(img)
	}
	return out, nil
}

// DrawOcclusionBox pads img onto a larger black canvas at a random
// offset, strokes a random gray rectangle that fully surrounds the
// content, and rescales back to the original dimensions. paddingAlpha
// controls the canvas growth and must exceed 1.
func DrawOcclusionBox(rng *rand.Rand, img *image.Gray, paddingAlpha float64) (*image.Gray, error) {
	if paddingAlpha <= 1 {
		return nil, fmt.Errorf("%w: padding alpha %v, want > 1", ErrInvalidConfig, paddingAlpha)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDimensionMismatch)
	}

	padW := int(math.Ceil(float64(w) * paddingAlpha))
	padH := int(math.Ceil(float64(h) * paddingAlpha))

	top := randRange(rng, 1, padH-h)
	left := randRange(rng, 1, padW-w)

	canvas := raster.New(padW, padH)
	raster.Paste(canvas, img, left, top)

	// The box must surround the pasted content: its top-left lands in
	// the margin above and left of the content, and its extent reaches
	// at least past the content's far edges.
	boxLeft := randRange(rng, 1, left)
	boxTop := randRange(rng, 1, top)
	boxWidth := randRange(rng, w+left-boxLeft, padW-boxLeft)
	boxHeight := randRange(rng, h+top-boxTop, padH-boxTop)
	gray := uint8(randRange(rng, 50, 255))
	thickness := randRange(rng, 1, 2)

	strokeRect(canvas, boxLeft, boxTop, boxWidth, boxHeight, gray, thickness)

	return raster.Scale(canvas, w, h, raster.Triangle), nil
}

// strokeRect draws the outline of the w x h rectangle at (x, y) as four
// filled bars of the given thickness, clipped to the canvas. The bottom
// and right bars grow outward, matching a stroke drawn edge by edge.
func strokeRect(canvas *image.Gray, x, y, w, h int, v uint8, thickness int) {
	right := x + w - 1
	bottom := y + h - 1
	fillBar(canvas, x, y, w, thickness, v)
	fillBar(canvas, x, bottom, w, thickness, v)
	fillBar(canvas, x, y, thickness, h, v)
	fillBar(canvas, right, y, thickness, h, v)
}

// fillBar fills the w x h rectangle at (x, y) with v, clipping to the
// canvas bounds.
func fillBar(canvas *image.Gray, x, y, w, h int, v uint8) {
	r := image.Rect(x, y, x+w, y+h).Intersect(canvas.Bounds())
	for yy := r.Min.Y; yy < r.Max.Y; yy++ {
		row := canvas.Pix[canvas.PixOffset(r.Min.X, yy):canvas.PixOffset(r.Max.X, yy)]
		for i := range row {
			row[i] = v
		}
	}
}

// WarpPerspective rotates the image plane by rot, projects it with a
// fixed-fovy pinhole camera, crops the projected content and rescales
// it to fit the original dimensions with the aspect ratio preserved.
// Exposed pixels outside the source are black.
func WarpPerspective(img *image.Gray, rot Rotation) (*image.Gray, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDimensionMismatch)
	}

	proj, err := projective.BuildProjection(float64(w), float64(h), rot, warpScale, warpFovy)
	if err != nil {
		return nil, err
	}
	inv, ok := proj.H.Invert()
	if !ok {
		return nil, fmt.Errorf("%w: homography is not invertible", ErrSingularTransform)
	}

	side := int(math.Ceil(proj.Side))
	warped := raster.WarpProjective(img, inv, side, side, 0)

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range proj.Out {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	crop := raster.Crop(warped, image.Rect(
		int(math.Floor(minX)),
		int(math.Floor(minY)),
		int(math.Ceil(maxX))+1,
		int(math.Ceil(maxY))+1,
	))
	cb := crop.Bounds()
	cw, ch := cb.Dx(), cb.Dy()
	if cw == 0 || ch == 0 {
		return nil, fmt.Errorf("%w: projected corners fall outside the canvas", ErrSingularTransform)
	}

	// Fit the crop back into the original box, pinning whichever axis
	// overflows first.
	rw := int(math.Ceil(float64(cw) * float64(h) / float64(ch)))
	rh := h
	if rw > w {
		rw = w
		rh = int(math.Ceil(float64(ch) * float64(w) / float64(cw)))
	}
	return raster.Scale(crop, rw, rh, raster.Triangle), nil
}

// GaussianBlur blurs img with a gaussian of the given sigma. A
// non-positive sigma returns an unchanged copy.
func GaussianBlur(img *image.Gray, sigma float64) *image.Gray {
	if sigma <= 0 {
		return raster.Clone(img)
	}
	return raster.FromNRGBA(imaging.Blur(img, sigma))
}

// ApplyEmboss applies a 3x3 directional emboss, turning intensity
// ramps into highlights and shadows.
func ApplyEmboss(img *image.Gray) *image.Gray {
	return raster.FromNRGBA(imaging.Convolve3x3(img, embossKernel, nil))
}

// ApplySharpen applies a 3x3 sharpening filter that exaggerates edges.
func ApplySharpen(img *image.Gray) *image.Gray {
	return raster.FromNRGBA(imaging.Convolve3x3(img, sharpenKernel, nil))
}

// ApplyDownUp simulates enlarging a low-resolution capture: the image
// is downscaled by a uniform random factor in [1, 2] and scaled back to
// its original size, triangle filter both ways.
func ApplyDownUp(rng *rand.Rand, img *image.Gray) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	scale := 1 + rng.Float64()
	dw := max(int(float64(w)/scale), 1)
	dh := max(int(float64(h)/scale), 1)
	reduced := raster.Scale(img, dw, dh, raster.Triangle)
	return raster.Scale(reduced, w, h, raster.Triangle)
}
