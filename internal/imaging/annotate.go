package imaging

import (
	"image"
	"image/color"
)

// Marker colors for annotated frames.
var (
	RecognizedColor   = color.RGBA{R: 0, G: 200, B: 0, A: 255}
	UnrecognizedColor = color.RGBA{R: 220, G: 0, B: 0, A: 255}
)

// DrawRect draws a rectangle outline of the given thickness onto dst.
// The rectangle is clamped to the image bounds.
func DrawRect(dst *image.RGBA, r image.Rectangle, c color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}

	for t := 0; t < thickness; t++ {
		top := r.Min.Y + t
		bottom := r.Max.Y - 1 - t
		for x := r.Min.X; x < r.Max.X; x++ {
			if top < r.Max.Y {
				dst.Set(x, top, c)
			}
			if bottom >= r.Min.Y && bottom != top {
				dst.Set(x, bottom, c)
			}
		}
		left := r.Min.X + t
		right := r.Max.X - 1 - t
		for y := r.Min.Y; y < r.Max.Y; y++ {
			if left < r.Max.X {
				dst.Set(left, y, c)
			}
			if right >= r.Min.X && right != left {
				dst.Set(right, y, c)
			}
		}
	}
}
