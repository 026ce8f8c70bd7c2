package eval

import (
	"image/color"
	"math/rand"
)

// Context carries everything one pixel evaluation needs besides the
// instruction sequence and the input image. A fresh Context is built
// per pixel; the memo cache hangs off the evaluation call, not off the
// Context, so contexts stay plain data.
type Context struct {
	Width, Height int
	X, Y          int

	// Pixel is the pixel's own color from the input image. Its alpha
	// short-circuits evaluation when zero and is carried through to
	// the output otherwise.
	Pixel color.NRGBA

	// Saved is the previously produced output color in scan order,
	// exposed to expressions as the s variable. It is supplied, not
	// computed, and therefore never memoized.
	Saved RGB

	// NoMemo disables the per-evaluation memo cache: every occurrence
	// of a stateful variable recomputes.
	NoMemo bool

	// Rng is the evaluation's random source. It must be seeded
	// explicitly by the caller so runs are reproducible.
	Rng *rand.Rand
}

// memo caches stateful variable values for the duration of one pixel
// evaluation. One slot per deterministic-or-sampled variable plus a
// radius-keyed table for random grid samples. A nil slot means "not
// yet computed".
type memo struct {
	luma    *RGB
	blur    *RGB
	edge    *RGB
	high    *RGB
	low     *RGB
	mirrorH *RGB
	mirrorV *RGB
	mirrorD *RGB
	grid    *RGB // t: random sample in the fixed [-2,2] grid
	global  *RGB // g: random sample bounded by image width
	random  map[uint8]RGB
}
