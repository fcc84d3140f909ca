package synthtext

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	// The png import registers its decoder as a side effect; jpeg is
	// imported for decoding only.
	_ "image/jpeg"

	"github.com/disintegration/imaging"

	"github.com/synthtext/synthtext/internal/raster"
)

// GrayFromBytes wraps a tightly packed, row-major byte buffer as a
// grayscale image. The buffer is copied, so the caller keeps ownership
// of data. The length of data must be exactly width*height.
func GrayFromBytes(width, height int, data []byte) (*image.Gray, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: non-positive dimensions %dx%d", ErrDimensionMismatch, width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("%w: %d bytes for a %dx%d image", ErrDimensionMismatch, len(data), width, height)
	}
	img := image.NewGray(image.Rect(0, 0, width, height))
	copy(img.Pix, data)
	return img, nil
}

// GrayBytes returns a tightly packed, row-major copy of img's pixels
// along with its width and height. Sub-images with a non-zero origin or
// a stride wider than the row are repacked.
func GrayBytes(img *image.Gray) ([]byte, int, int) {
	c := raster.Clone(img)
	b := c.Bounds()
	return c.Pix, b.Dx(), b.Dy()
}

// LoadGray reads an image file (PNG or JPEG) and converts it to
// grayscale using the Rec. 601 luma weights.
func LoadGray(path string) (*image.Gray, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("synthtext: open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("synthtext: decode image: %w", err)
	}
	return raster.FromNRGBA(imaging.Grayscale(src)), nil
}

// SavePNG writes img to the given file path in PNG format.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("synthtext: create file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("synthtext: encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("synthtext: close file: %w", err)
	}
	return nil
}
