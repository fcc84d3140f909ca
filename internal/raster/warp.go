package raster

import (
	"image"
	"math"

	"github.com/synthtext/synthtext/projective"
)

// WarpProjective renders src under a projective transform into a
// w x h canvas by inverse mapping: every output pixel is sampled from
// src at inv(x, y) with bilinear interpolation. Samples falling
// outside src use the constant fill value.
func WarpProjective(src *image.Gray, inv projective.Matrix3, w, h int, fill uint8) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := range row {
			p := inv.Apply(projective.Point{X: float64(x), Y: float64(y)})
			row[x] = sampleBilinear(src, p.X, p.Y, fill)
		}
	}
	return out
}

// sampleBilinear samples src at the continuous position (x, y),
// blending the four surrounding pixels. Neighbors outside the image
// contribute the fill value.
func sampleBilinear(src *image.Gray, x, y float64, fill uint8) uint8 {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	at := func(ix, iy int) float64 {
		if ix < 0 || iy < 0 || ix >= w || iy >= h {
			return float64(fill)
		}
		return float64(src.Pix[src.PixOffset(b.Min.X+ix, b.Min.Y+iy)])
	}

	top := at(x0, y0)*(1-fx) + at(x0+1, y0)*fx
	bot := at(x0, y0+1)*(1-fx) + at(x0+1, y0+1)*fx
	return uint8(top*(1-fy) + bot*fy + 0.5)
}
