package eval

import "image"

// Bounds is the tight rectangle enclosing all pixels with any non-zero
// channel. Coordinates are inclusive.
type Bounds struct {
	MinX, MinY, MaxX, MaxY int
}

// FindNonZeroBounds scans every pixel of img and returns the rectangle
// enclosing all pixels where any of R, G, B or A is non-zero. The
// second return is false when the image has no such pixel. The image
// must be anchored at the origin.
func FindNonZeroBounds(img *image.NRGBA) (Bounds, bool) {
	w := img.Rect.Dx()
	h := img.Rect.Dy()

	b := Bounds{MinX: w, MinY: h, MaxX: -1, MaxY: -1}
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			i := x * 4
			if row[i] == 0 && row[i+1] == 0 && row[i+2] == 0 && row[i+3] == 0 {
				continue
			}
			if x < b.MinX {
				b.MinX = x
			}
			if x > b.MaxX {
				b.MaxX = x
			}
			if y < b.MinY {
				b.MinY = y
			}
			if y > b.MaxY {
				b.MaxY = y
			}
		}
	}

	if b.MaxX < b.MinX || b.MaxY < b.MinY {
		return Bounds{}, false
	}
	return b, true
}
