// Package raster provides the grayscale pixel operations shared by
// the synthesis pipeline: allocation, cloning, cropping, pasting,
// kernel-based rescaling and projective warping.
package raster

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Filter selects the resampling kernel used by Scale.
type Filter int

const (
	// Triangle is the linear tent kernel (bilinear when magnifying,
	// area-weighted when minifying).
	Triangle Filter = iota

	// CatmullRom is the Catmull-Rom cubic kernel.
	CatmullRom
)

func (f Filter) kernel() *xdraw.Kernel {
	if f == CatmullRom {
		return xdraw.CatmullRom
	}
	return xdraw.BiLinear
}

// New returns a zeroed (black) w x h image.
func New(w, h int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, w, h))
}

// Clone returns a tightly packed zero-origin copy of img.
func Clone(img *image.Gray) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], img.Pix[off:off+b.Dx()])
	}
	return out
}

// Scale resamples src to w x h with the given kernel. Both dimensions
// must be positive.
func Scale(src *image.Gray, w, h int, f Filter) *image.Gray {
	if b := src.Bounds(); b.Dx() == w && b.Dy() == h {
		return Clone(src)
	}
	out := image.NewGray(image.Rect(0, 0, w, h))
	f.kernel().Scale(out, out.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return out
}

// Crop copies the given region, in content coordinates, out of src.
// The region is clipped to the image; a fully outside region yields
// an empty image.
func Crop(src *image.Gray, r image.Rectangle) *image.Gray {
	b := src.Bounds()
	r = r.Add(b.Min).Intersect(b)
	out := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		off := src.PixOffset(r.Min.X, r.Min.Y+y)
		copy(out.Pix[y*out.Stride:y*out.Stride+r.Dx()], src.Pix[off:off+r.Dx()])
	}
	return out
}

// Paste copies src into dst with its top-left corner at (x, y) in
// dst's content coordinates, clipping as needed. dst is modified in
// place.
func Paste(dst, src *image.Gray, x, y int) {
	db, sb := dst.Bounds(), src.Bounds()
	r := image.Rect(x, y, x+sb.Dx(), y+sb.Dy()).
		Add(db.Min).
		Intersect(db)
	if r.Empty() {
		return
	}
	sx := sb.Min.X + (r.Min.X - db.Min.X - x)
	sy := sb.Min.Y + (r.Min.Y - db.Min.Y - y)
	for row := 0; row < r.Dy(); row++ {
		doff := dst.PixOffset(r.Min.X, r.Min.Y+row)
		soff := src.PixOffset(sx, sy+row)
		copy(dst.Pix[doff:doff+r.Dx()], src.Pix[soff:soff+r.Dx()])
	}
}

// FromNRGBA extracts the red channel of an NRGBA image into a
// grayscale image. Intended for the results of channel-symmetric
// operations on grayscale input, where R = G = B.
func FromNRGBA(src *image.NRGBA) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		soff := src.PixOffset(b.Min.X, b.Min.Y+y)
		row := src.Pix[soff : soff+b.Dx()*4]
		for x := 0; x < b.Dx(); x++ {
			out.Pix[y*out.Stride+x] = row[x*4]
		}
	}
	return out
}
