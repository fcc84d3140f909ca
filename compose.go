package synthtext

import (
	"fmt"
	"image"
	"math/rand/v2"

	"github.com/disintegration/imaging"

	"github.com/synthtext/synthtext/internal/raster"
	"github.com/synthtext/synthtext/poisson"
)

// DefaultIterations is the number of relaxation sweeps the blender runs
// when BlendConfig.Iterations is zero.
const DefaultIterations = 500

// bgClampLow is the darkest tone the background jitter may produce.
// Keeping the background off pure black preserves contrast against the
// text strokes.
const bgClampLow = 50

// BlendConfig parameterizes a Blender.
type BlendConfig struct {
	// HeightDiff is the number of rows subtracted from the background
	// height when rescaling the foreground.
	HeightDiff RandomVar

	// BgAlpha and BgBeta jitter the background tone: each pixel becomes
	// clamp(pixel*alpha + beta, 50, 255).
	BgAlpha RandomVar
	BgBeta  RandomVar

	// FontAlpha scales the foreground intensity before blending.
	FontAlpha RandomVar

	// ReverseProb is the probability of inverting the final image.
	ReverseProb float64

	// Iterations is the number of relaxation sweeps per blend. Zero
	// selects DefaultIterations.
	Iterations int
}

func (c BlendConfig) validate() error {
	if c.ReverseProb < 0 || c.ReverseProb > 1 {
		return fmt.Errorf("%w: reverse_prob = %v, want a probability in [0, 1]", ErrInvalidConfig, c.ReverseProb)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("%w: iterations = %d, want >= 0", ErrInvalidConfig, c.Iterations)
	}
	return nil
}

// Blender merges degraded foreground text into background crops with
// seamless gradient-domain cloning.
//
// A Blender is immutable after construction and safe for concurrent use
// as long as each goroutine brings its own *rand.Rand.
type Blender struct {
	cfg BlendConfig
}

// NewBlender validates cfg and returns a Blender. A zero Iterations
// field is replaced with DefaultIterations.
func NewBlender(cfg BlendConfig) (*Blender, error) {
	if cfg.Iterations == 0 {
		cfg.Iterations = DefaultIterations
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Blender{cfg: cfg}, nil
}

// Blend composites fg onto bg. The background tone is jittered, the
// foreground is rescaled and padded to the background's size at a random
// offset, and the two are merged by gradient-domain cloning with maximum
// gradient mixing. The result has the background's dimensions and is
// inverted with probability ReverseProb. Neither input is modified.
func (b *Blender) Blend(rng *rand.Rand, fg, bg *image.Gray) (*image.Gray, error) {
	bb := bg.Bounds()
	bgW, bgH := bb.Dx(), bb.Dy()
	if bgW == 0 || bgH == 0 {
		return nil, fmt.Errorf("%w: empty background", ErrDimensionMismatch)
	}

	jittered := JitterBackground(bg, b.cfg.BgAlpha.Sample(rng), b.cfg.BgBeta.Sample(rng))

	padded, err := b.RandomPad(rng, fg, bgH, bgW)
	if err != nil {
		return nil, err
	}

	// The solver's source is the inverted foreground scaled by a random
	// intensity, so bright text arrives as dark strokes whose gradients
	// the maximum mixing keeps where they beat the background's.
	alpha := b.cfg.FontAlpha.Sample(rng)
	source := image.NewGray(image.Rect(0, 0, bgW, bgH))
	for i, px := range padded.Pix {
		v := float64(255-px) * alpha
		if v > 255 {
			v = 255
		} else if v < 0 {
			v = 0
		}
		source.Pix[i] = uint8(v)
	}

	editor, err := poisson.NewEditor(source, padded, jittered, poisson.GradientMaximum)
	if err != nil {
		return nil, err
	}
	out, residual := editor.Step(b.cfg.Iterations)
	Logger().Debug("poisson blend finished",
		"iterations", b.cfg.Iterations,
		"residual", residual,
		"font_alpha", alpha,
	)

	if rng.Float64() < b.cfg.ReverseProb {
		out = Invert(out)
	}
	return out, nil
}

// RandomPad rescales fg to a sampled height, preserving aspect ratio,
// and pastes it at a random offset on a black canvas of the given
// background dimensions.
func (b *Blender) RandomPad(rng *rand.Rand, fg *image.Gray, bgHeight, bgWidth int) (*image.Gray, error) {
	if bgHeight <= 0 || bgWidth <= 0 {
		return nil, fmt.Errorf("%w: non-positive canvas %dx%d", ErrInvalidConfig, bgWidth, bgHeight)
	}
	fb := fg.Bounds()
	fgW, fgH := fb.Dx(), fb.Dy()
	if fgW == 0 || fgH == 0 {
		return nil, fmt.Errorf("%w: empty foreground", ErrDimensionMismatch)
	}

	rh := int(float64(bgHeight) - b.cfg.HeightDiff.Sample(rng))
	rh = min(max(rh, 1), bgHeight)
	rw := int(float64(fgW) * float64(rh) / float64(fgH))
	rw = min(max(rw, 1), bgWidth)

	resized := raster.Scale(fg, rw, rh, raster.CatmullRom)

	top := randRange(rng, 1, bgHeight-rh)
	left := randRange(rng, 0, bgWidth-rw)

	canvas := raster.New(bgWidth, bgHeight)
	raster.Paste(canvas, resized, left, top)
	return canvas, nil
}

// JitterBackground maps every pixel to clamp(pixel*alpha + beta, 50, 255).
// The input is not modified.
func JitterBackground(img *image.Gray, alpha, beta float64) *image.Gray {
	out := raster.Clone(img)
	for i, px := range out.Pix {
		v := float64(px)*alpha + beta
		switch {
		case v < bgClampLow:
			out.Pix[i] = bgClampLow
		case v > 255:
			out.Pix[i] = 255
		default:
			out.Pix[i] = uint8(v)
		}
	}
	return out
}

// Invert returns the negative of img: every pixel becomes 255-pixel.
func Invert(img *image.Gray) *image.Gray {
	return raster.FromNRGBA(imaging.Invert(img))
}
