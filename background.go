package synthtext

import (
	"fmt"
	"image"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/synthtext/synthtext/internal/raster"
)

// Pool holds fixed-size grayscale background crops, one per usable
// image file found at load time. Accessors hand out copies, so callers
// may mutate the returned images freely.
type Pool struct {
	images []*image.Gray
	height int
	width  int
	dir    string
}

// LoadBackgrounds scans dir (non-recursively) for PNG and JPEG files
// and builds a pool of width x height crops. Images smaller than the
// crop in either dimension are upscaled just enough to cover it before
// a random region is cut out; larger images are cropped at a random
// offset without rescaling. Files that fail to decode are skipped with
// a warning. An empty result is an error.
func LoadBackgrounds(rng *rand.Rand, dir string, height, width int) (*Pool, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: non-positive crop %dx%d", ErrInvalidConfig, width, height)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("synthtext: read background dir: %w", err)
	}

	var images []*image.Gray
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
		default:
			continue
		}
		path := filepath.Join(dir, entry.Name())
		img, err := LoadGray(path)
		if err != nil {
			Logger().Warn("skipping unreadable background", "path", path, "err", err)
			continue
		}
		images = append(images, cropBackground(rng, img, width, height))
	}

	if len(images) == 0 {
		return nil, fmt.Errorf("%w: no usable images in %s", ErrEmptyPool, dir)
	}
	Logger().Info("background pool loaded", "dir", dir, "count", len(images), "crop_width", width, "crop_height", height)
	return &Pool{images: images, height: height, width: width, dir: dir}, nil
}

// cropBackground cuts a random width x height region out of img,
// upscaling first when img does not cover the crop.
func cropBackground(rng *rand.Rand, img *image.Gray, width, height int) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < width || h < height {
		ratio := math.Max(float64(width)/float64(w), float64(height)/float64(h))
		w = int(math.Ceil(float64(w) * ratio))
		h = int(math.Ceil(float64(h) * ratio))
		img = raster.Scale(img, w, h, raster.CatmullRom)
	}
	x := randRange(rng, 0, w-width)
	y := randRange(rng, 0, h-height)
	return raster.Crop(img, image.Rect(x, y, x+width, y+height))
}

// Len returns the number of backgrounds in the pool.
func (p *Pool) Len() int { return len(p.images) }

// Height returns the crop height shared by every background.
func (p *Pool) Height() int { return p.height }

// Width returns the crop width shared by every background.
func (p *Pool) Width() int { return p.width }

// Dir returns the directory the pool was loaded from.
func (p *Pool) Dir() string { return p.dir }

// Random returns a copy of a uniformly chosen background.
func (p *Pool) Random(rng *rand.Rand) *image.Gray {
	return raster.Clone(p.images[rng.IntN(len(p.images))])
}

// At returns a copy of the background at index i. The index is taken
// modulo Len, so any integer is valid for a non-empty pool.
func (p *Pool) At(i int) *image.Gray {
	n := len(p.images)
	i %= n
	if i < 0 {
		i += n
	}
	return raster.Clone(p.images[i])
}
