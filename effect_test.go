package synthtext

import (
	"errors"
	"image"
	"testing"
)

func solidGray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// rampGray produces a horizontal intensity ramp from 0 to 255.
func rampGray(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[y*img.Stride+x] = uint8(x * 255 / (w - 1))
		}
	}
	return img
}

// stepGray is black on the left half and white on the right.
func stepGray(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			img.Pix[y*img.Stride+x] = 255
		}
	}
	return img
}

func pixelsEqual(a, b *image.Gray) bool {
	if a.Bounds().Dx() != b.Bounds().Dx() || a.Bounds().Dy() != b.Bounds().Dy() {
		return false
	}
	for y := 0; y < a.Bounds().Dy(); y++ {
		for x := 0; x < a.Bounds().Dx(); x++ {
			if a.GrayAt(a.Bounds().Min.X+x, a.Bounds().Min.Y+y) != b.GrayAt(b.Bounds().Min.X+x, b.Bounds().Min.Y+y) {
				return false
			}
		}
	}
	return true
}

func TestNewEffectorValidation(t *testing.T) {
	valid := DefaultConfig().EffectConfig()

	tests := []struct {
		name    string
		mutate  func(*EffectConfig)
		wantErr bool
	}{
		{"defaults", func(*EffectConfig) {}, false},
		{"box prob above one", func(c *EffectConfig) { c.BoxProb = 1.5 }, true},
		{"negative blur prob", func(c *EffectConfig) { c.BlurProb = -0.1 }, true},
		{"filter weights below one", func(c *EffectConfig) { c.EmbossProb = 0.4; c.SharpProb = 0.5 }, true},
		{"filter weights above one", func(c *EffectConfig) { c.EmbossProb = 0.6; c.SharpProb = 0.6 }, true},
		{"all or nothing weights", func(c *EffectConfig) { c.EmbossProb = 0; c.SharpProb = 1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			_, err := NewEffector(cfg)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("NewEffector() error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewEffector() error = %v", err)
			}
		})
	}
}

func TestApplyNoGates(t *testing.T) {
	cfg := EffectConfig{EmbossProb: 0.4, SharpProb: 0.6}
	eff, err := NewEffector(cfg)
	if err != nil {
		t.Fatalf("NewEffector() error = %v", err)
	}

	in := rampGray(64, 16)
	out, err := eff.Apply(newTestRand(1), in)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !pixelsEqual(in, out) {
		t.Error("with every gate at probability 0, Apply should return the image unchanged")
	}
	if &out.Pix[0] == &in.Pix[0] {
		t.Error("Apply must not alias the input's pixel buffer")
	}
}

func TestApplyBoxGate(t *testing.T) {
	cfg := EffectConfig{BoxProb: 1, EmbossProb: 0.4, SharpProb: 0.6}
	eff, err := NewEffector(cfg)
	if err != nil {
		t.Fatalf("NewEffector() error = %v", err)
	}

	in := solidGray(120, 40, 200)
	out, err := eff.Apply(newTestRand(7), in)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got, want := out.Bounds().Size(), in.Bounds().Size(); got != want {
		t.Fatalf("Apply() size = %v, want %v", got, want)
	}
	if pixelsEqual(in, out) {
		t.Error("box gate at probability 1 left the image untouched")
	}
}

func TestApplyDeterminism(t *testing.T) {
	cfg := DefaultConfig().EffectConfig()
	cfg.BoxProb = 0.5
	cfg.PerspectiveProb = 0.5
	cfg.BlurProb = 0.5
	eff, err := NewEffector(cfg)
	if err != nil {
		t.Fatalf("NewEffector() error = %v", err)
	}

	in := rampGray(80, 24)
	for seed := uint64(1); seed <= 5; seed++ {
		a, err := eff.Apply(newTestRand(seed), in)
		if err != nil {
			t.Fatalf("seed %d: Apply() error = %v", seed, err)
		}
		b, err := eff.Apply(newTestRand(seed), in)
		if err != nil {
			t.Fatalf("seed %d: Apply() error = %v", seed, err)
		}
		if !pixelsEqual(a, b) {
			t.Fatalf("seed %d: two runs with equal seeds produced different images", seed)
		}
	}
}

func TestDrawOcclusionBox(t *testing.T) {
	in := solidGray(60, 20, 200)
	for seed := uint64(1); seed <= 5; seed++ {
		out, err := DrawOcclusionBox(newTestRand(seed), in, 1.3)
		if err != nil {
			t.Fatalf("seed %d: DrawOcclusionBox() error = %v", seed, err)
		}
		if got, want := out.Bounds().Size(), in.Bounds().Size(); got != want {
			t.Fatalf("seed %d: size = %v, want %v", seed, got, want)
		}
	}
}

func TestDrawOcclusionBoxVisible(t *testing.T) {
	// On an all-black image the only ink is the box stroke itself. It
	// must survive the rescale back to the original size.
	in := solidGray(60, 20, 0)
	out, err := DrawOcclusionBox(newTestRand(3), in, 1.3)
	if err != nil {
		t.Fatalf("DrawOcclusionBox() error = %v", err)
	}
	lit := 0
	for _, px := range out.Pix {
		if px > 0 {
			lit++
		}
	}
	if lit == 0 {
		t.Error("box stroke vanished after rescaling")
	}
}

func TestDrawOcclusionBoxErrors(t *testing.T) {
	if _, err := DrawOcclusionBox(newTestRand(1), solidGray(10, 10, 0), 1.0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("padding alpha 1.0: error = %v, want ErrInvalidConfig", err)
	}
	if _, err := DrawOcclusionBox(newTestRand(1), image.NewGray(image.Rectangle{}), 1.3); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("empty image: error = %v, want ErrDimensionMismatch", err)
	}
}

func TestWarpPerspectiveFrontal(t *testing.T) {
	in := solidGray(100, 40, 200)
	out, err := WarpPerspective(in, Rotation{})
	if err != nil {
		t.Fatalf("WarpPerspective() error = %v", err)
	}
	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	if h != 40 {
		t.Errorf("height = %d, want 40", h)
	}
	if w < 90 || w > 100 {
		t.Errorf("width = %d, want within [90, 100]", w)
	}

	// A frontal view is nearly the identity: the content should stay
	// bright apart from the thin black rim the crop admits.
	var sum int
	for _, px := range out.Pix {
		sum += int(px)
	}
	if mean := sum / len(out.Pix); mean < 150 {
		t.Errorf("mean intensity = %d, want >= 150", mean)
	}
}

func TestWarpPerspectiveRotated(t *testing.T) {
	in := solidGray(100, 40, 200)
	tests := []struct {
		name string
		rot  Rotation
	}{
		{"x tilt", Rotation{X: 10}},
		{"y tilt", Rotation{Y: -12}},
		{"z roll", Rotation{Z: 3}},
		{"combined", Rotation{X: 8, Y: -5, Z: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := WarpPerspective(in, tt.rot)
			if err != nil {
				t.Fatalf("WarpPerspective() error = %v", err)
			}
			w, h := out.Bounds().Dx(), out.Bounds().Dy()
			if w < 1 || w > 100 || h < 1 || h > 40 {
				t.Fatalf("size = %dx%d, want within 100x40", w, h)
			}
			var maxPx uint8
			for _, px := range out.Pix {
				if px > maxPx {
					maxPx = px
				}
			}
			if maxPx < 100 {
				t.Errorf("max intensity = %d, the warped content should remain visible", maxPx)
			}
		})
	}
}

func TestWarpPerspectiveEmptyImage(t *testing.T) {
	_, err := WarpPerspective(image.NewGray(image.Rectangle{}), Rotation{X: 5})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("error = %v, want ErrDimensionMismatch", err)
	}
}

func TestGaussianBlur(t *testing.T) {
	in := stepGray(40, 10)

	t.Run("zero sigma copies", func(t *testing.T) {
		out := GaussianBlur(in, 0)
		if !pixelsEqual(in, out) {
			t.Error("sigma 0 should leave pixels unchanged")
		}
		if &out.Pix[0] == &in.Pix[0] {
			t.Error("GaussianBlur must not alias the input's pixel buffer")
		}
	})

	t.Run("smooths a step edge", func(t *testing.T) {
		out := GaussianBlur(in, 1.2)
		if got, want := out.Bounds().Size(), in.Bounds().Size(); got != want {
			t.Fatalf("size = %v, want %v", got, want)
		}
		blended := false
		for _, px := range out.Pix {
			if px > 20 && px < 235 {
				blended = true
				break
			}
		}
		if !blended {
			t.Error("no intermediate values across the edge, blur had no effect")
		}
	})
}

func TestFilterKernelsPreserveFlatImages(t *testing.T) {
	// Both kernels sum to 1, so a constant image maps to itself up to
	// rounding.
	in := solidGray(24, 24, 137)
	for name, out := range map[string]*image.Gray{
		"emboss":  ApplyEmboss(in),
		"sharpen": ApplySharpen(in),
	} {
		if got, want := out.Bounds().Size(), in.Bounds().Size(); got != want {
			t.Fatalf("%s: size = %v, want %v", name, got, want)
		}
		for i, px := range out.Pix {
			if px < 136 || px > 138 {
				t.Fatalf("%s: pixel %d = %d, want 137 +/- 1", name, i, px)
			}
		}
	}
}

func TestApplySharpenOvershootsEdges(t *testing.T) {
	// Sharpening a softened edge pushes the toe below and the shoulder
	// above the input values.
	in := GaussianBlur(stepGray(40, 12), 1.0)
	out := ApplySharpen(in)

	var darker, brighter bool
	for i := range out.Pix {
		if out.Pix[i] < in.Pix[i] {
			darker = true
		}
		if out.Pix[i] > in.Pix[i] {
			brighter = true
		}
	}
	if !darker || !brighter {
		t.Errorf("sharpen produced no overshoot (darker=%v brighter=%v)", darker, brighter)
	}
}

func TestApplyEmbossShadesRamp(t *testing.T) {
	in := rampGray(32, 16)
	out := ApplyEmboss(in)
	if pixelsEqual(in, out) {
		t.Error("emboss left a ramp unchanged")
	}
}

func TestApplyDownUp(t *testing.T) {
	t.Run("dimensions preserved", func(t *testing.T) {
		in := rampGray(50, 21)
		out := ApplyDownUp(newTestRand(9), in)
		if got, want := out.Bounds().Size(), in.Bounds().Size(); got != want {
			t.Errorf("size = %v, want %v", got, want)
		}
	})

	t.Run("flat image survives", func(t *testing.T) {
		in := solidGray(30, 10, 90)
		out := ApplyDownUp(newTestRand(2), in)
		for i, px := range out.Pix {
			if px < 89 || px > 91 {
				t.Fatalf("pixel %d = %d, want 90 +/- 1", i, px)
			}
		}
	})

	t.Run("single pixel image", func(t *testing.T) {
		in := solidGray(1, 1, 40)
		out := ApplyDownUp(newTestRand(3), in)
		if out.Bounds().Dx() != 1 || out.Bounds().Dy() != 1 {
			t.Errorf("size = %v, want 1x1", out.Bounds().Size())
		}
	})
}
