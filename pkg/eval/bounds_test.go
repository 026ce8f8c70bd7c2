package eval

import (
	"image"
	"image/color"
	"testing"
)

func TestFindNonZeroBoundsFullImage(t *testing.T) {
	img := uniformImage(4, 3, color.NRGBA{R: 1, A: 255})
	b, ok := FindNonZeroBounds(img)
	if !ok {
		t.Fatal("got no bounds, want full image")
	}
	want := Bounds{MinX: 0, MinY: 0, MaxX: 3, MaxY: 2}
	if b != want {
		t.Errorf("got %+v, want %+v", b, want)
	}
}

func TestFindNonZeroBoundsTightRectangle(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	set := func(x, y int) {
		i := img.PixOffset(x, y)
		img.Pix[i] = 200
		img.Pix[i+3] = 255
	}
	set(2, 3)
	set(7, 5)

	b, ok := FindNonZeroBounds(img)
	if !ok {
		t.Fatal("got no bounds, want rectangle")
	}
	want := Bounds{MinX: 2, MinY: 3, MaxX: 7, MaxY: 5}
	if b != want {
		t.Errorf("got %+v, want %+v", b, want)
	}
}

func TestFindNonZeroBoundsAlphaOnlyCounts(t *testing.T) {
	// A pixel that is black but opaque is still inside the bounds.
	img := image.NewNRGBA(image.Rect(0, 0, 5, 5))
	img.Pix[img.PixOffset(4, 4)+3] = 1

	b, ok := FindNonZeroBounds(img)
	if !ok {
		t.Fatal("got no bounds, want single pixel")
	}
	want := Bounds{MinX: 4, MinY: 4, MaxX: 4, MaxY: 4}
	if b != want {
		t.Errorf("got %+v, want %+v", b, want)
	}
}

func TestFindNonZeroBoundsEmpty(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	if _, ok := FindNonZeroBounds(img); ok {
		t.Error("got bounds on an all-zero image, want none")
	}
}
