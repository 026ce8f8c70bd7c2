package eval

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"

	"github.com/chazu/glitch/pkg/expr"
)

// Options configure one pipeline application.
type Options struct {
	// NoMemo disables per-evaluation memoization of stateful
	// variables.
	NoMemo bool

	// Progress, when non-nil, is called after every evaluated pixel
	// with the count of pixels done in the current pass and the pass
	// total. Counts reset at each pass.
	Progress func(done, total int)
}

// Apply runs the compiled programs against one image as sequential
// passes: each pass's full output becomes the next pass's input. Within
// a pass, pixels inside the non-zero bounds rectangle are evaluated in
// column-major order (x outer, y inner) with the previous output color
// carried into each evaluation as the s variable. The carry resets to
// black at the start of every pass.
//
// The input image is not modified. The rng must be seeded by the caller;
// Apply is deterministic for a given image, program list and seed.
func Apply(img *image.NRGBA, programs [][]expr.Instruction, rng *rand.Rand, opts Options) (*image.NRGBA, error) {
	cur := normalize(img)
	width := cur.Rect.Dx()
	height := cur.Rect.Dy()

	for pi, prog := range programs {
		bounds, ok := FindNonZeroBounds(cur)
		if !ok {
			// Nothing left to evaluate; the pass is a no-op.
			continue
		}

		out := cloneNRGBA(cur)
		total := (bounds.MaxX - bounds.MinX + 1) * (bounds.MaxY - bounds.MinY + 1)
		done := 0
		saved := RGB{}

		for x := bounds.MinX; x <= bounds.MaxX; x++ {
			for y := bounds.MinY; y <= bounds.MaxY; y++ {
				i := cur.PixOffset(x, y)
				ctx := Context{
					Width:  width,
					Height: height,
					X:      x,
					Y:      y,
					Pixel: color.NRGBA{
						R: cur.Pix[i],
						G: cur.Pix[i+1],
						B: cur.Pix[i+2],
						A: cur.Pix[i+3],
					},
					Saved:  saved,
					NoMemo: opts.NoMemo,
					Rng:    rng,
				}

				result, err := Eval(prog, cur, &ctx)
				if err != nil {
					return nil, fmt.Errorf("pass %d at (%d,%d): %w", pi+1, x, y, err)
				}

				out.Pix[i] = result.R
				out.Pix[i+1] = result.G
				out.Pix[i+2] = result.B
				out.Pix[i+3] = result.A
				saved = RGB{result.R, result.G, result.B}

				done++
				if opts.Progress != nil {
					opts.Progress(done, total)
				}
			}
		}

		cur = out
	}

	return cur, nil
}

// normalize rebases an image at the origin and, when the caller might
// still hold a reference, copies it so Apply never writes into its
// input.
func normalize(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()))
	for y := 0; y < img.Rect.Dy(); y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+img.Rect.Dx()*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+img.Rect.Dx()*4]
		copy(dst, src)
	}
	return out
}

func cloneNRGBA(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Rect)
	copy(out.Pix, img.Pix)
	return out
}
