package eval

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/chazu/glitch/pkg/expr"
)

// ErrStackUnderflow indicates a malformed instruction sequence: an
// operator found fewer operands than it needs, or the sequence left
// nothing on the stack. Parser output never triggers it; it guards
// sequences built by hand or loaded from a cache.
var ErrStackUnderflow = errors.New("stack underflow")

// UnknownInstructionError indicates an instruction the evaluator does
// not understand, such as a grouping marker that leaked out of parsing
// or a variable tag outside the closed set.
type UnknownInstructionError struct {
	Ins expr.Instruction
}

func (e *UnknownInstructionError) Error() string {
	return fmt.Sprintf("unknown instruction %s", e.Ins.Op)
}

// evaluator is the per-pixel execution state. It lives for exactly one
// Eval call; in particular the memo cache never outlives the pixel.
type evaluator struct {
	img   *image.NRGBA
	ctx   *Context
	memo  memo
	stack []RGB
}

// Eval executes one compiled sequence against one pixel context and
// returns the output color. The input image must be anchored at the
// origin (the pipeline guarantees this).
//
// A fully transparent pixel short-circuits to transparent black without
// running any instructions. Otherwise the result is the top of the
// operand stack after the last instruction, combined with the input
// pixel's alpha.
func Eval(prog []expr.Instruction, img *image.NRGBA, ctx *Context) (color.NRGBA, error) {
	if ctx.Pixel.A == 0 {
		return color.NRGBA{}, nil
	}

	e := evaluator{img: img, ctx: ctx, stack: make([]RGB, 0, len(prog))}
	for _, ins := range prog {
		if err := e.step(ins); err != nil {
			return color.NRGBA{}, err
		}
	}

	if len(e.stack) == 0 {
		return color.NRGBA{}, ErrStackUnderflow
	}
	top := e.stack[len(e.stack)-1]
	return color.NRGBA{R: top.R, G: top.G, B: top.B, A: ctx.Pixel.A}, nil
}

func (e *evaluator) push(v RGB) {
	e.stack = append(e.stack, v)
}

// pop2 removes the top two operands: b was pushed last, a before it.
func (e *evaluator) pop2() (a, b RGB, err error) {
	n := len(e.stack)
	if n < 2 {
		return RGB{}, RGB{}, ErrStackUnderflow
	}
	a, b = e.stack[n-2], e.stack[n-1]
	e.stack = e.stack[:n-2]
	return a, b, nil
}

// binary pops two operands and pushes op applied channel-wise.
func (e *evaluator) binary(op func(a, b uint8) uint8) error {
	a, b, err := e.pop2()
	if err != nil {
		return err
	}
	e.push(RGB{op(a.R, b.R), op(a.G, b.G), op(a.B, b.B)})
	return nil
}

func (e *evaluator) step(ins expr.Instruction) error {
	switch ins.Op {
	case expr.OpNumber:
		e.push(Gray(ins.Val))

	case expr.OpChannel:
		switch ins.Ch {
		case 'R':
			e.push(RGB{R: ins.Val})
		case 'G':
			e.push(RGB{G: ins.Val})
		case 'B':
			e.push(RGB{B: ins.Val})
		default:
			return &UnknownInstructionError{Ins: ins}
		}

	case expr.OpRandom:
		e.push(e.randomSample(ins.Val))

	case expr.OpBrightness:
		// Reads the original input pixel, not anything computed so far.
		px := e.pixelAt(e.ctx.X, e.ctx.Y)
		r, g, b := adjustBrightnessHSV(px.R, px.G, px.B, float64(ins.Val)/255.0)
		e.push(RGB{r, g, b})

	case expr.OpInvert:
		px := e.pixelAt(e.ctx.X, e.ctx.Y)
		e.push(RGB{255 - px.R, 255 - px.G, 255 - px.B})

	case expr.OpVariable:
		v, err := e.variable(ins)
		if err != nil {
			return err
		}
		e.push(v)

	case expr.OpAdd:
		return e.binary(func(a, b uint8) uint8 { return a + b })
	case expr.OpSub:
		return e.binary(func(a, b uint8) uint8 { return a - b })
	case expr.OpMul:
		return e.binary(func(a, b uint8) uint8 { return a * b })
	case expr.OpDiv:
		return e.binary(divOrDividend)
	case expr.OpMod:
		return e.binary(modOrDividend)
	case expr.OpPow:
		return e.binary(wrappingPow)
	case expr.OpBitAnd:
		return e.binary(func(a, b uint8) uint8 { return a & b })
	case expr.OpBitOr:
		return e.binary(func(a, b uint8) uint8 { return a | b })
	case expr.OpBitXor:
		return e.binary(func(a, b uint8) uint8 { return a ^ b })
	case expr.OpBitAndNot:
		return e.binary(func(a, b uint8) uint8 { return a &^ b })
	case expr.OpShiftLeft:
		return e.binary(func(a, b uint8) uint8 { return a << (b & 7) })
	case expr.OpShiftRight:
		return e.binary(func(a, b uint8) uint8 { return a >> (b & 7) })
	case expr.OpGreater:
		return e.binary(func(a, b uint8) uint8 {
			if a > b {
				return 255
			}
			return 0
		})
	case expr.OpWeight:
		return e.binary(weight)

	default:
		return &UnknownInstructionError{Ins: ins}
	}
	return nil
}

// variable resolves one per-pixel variable, consulting the memo cache
// for the stateful ones.
func (e *evaluator) variable(ins expr.Instruction) (RGB, error) {
	ctx := e.ctx
	switch ins.Ch {
	case 'c':
		return RGB{ctx.Pixel.R, ctx.Pixel.G, ctx.Pixel.B}, nil

	case 's':
		return ctx.Saved, nil

	case 'x':
		return Gray(threeRule(ctx.X, ctx.Width)), nil

	case 'y':
		return Gray(threeRule(ctx.Y, ctx.Height)), nil

	case 'N':
		// Always fresh, one draw per channel.
		return RGB{
			uint8(ctx.Rng.Intn(256)),
			uint8(ctx.Rng.Intn(256)),
			uint8(ctx.Rng.Intn(256)),
		}, nil

	case 'Y':
		return e.memoized(&e.memo.luma, func() (RGB, error) {
			y := 0.299*float64(ctx.Pixel.R) + 0.587*float64(ctx.Pixel.G) + 0.0722*float64(ctx.Pixel.B)
			return Gray(uint8(y)), nil
		})

	case 't':
		return e.memoized(&e.memo.grid, func() (RGB, error) {
			return e.sampleOffsets(-2, 2), nil
		})

	case 'g':
		// The vertical bound reuses the image width. Out-of-image
		// offsets clamp to zero, so tall samples read as black.
		return e.memoized(&e.memo.global, func() (RGB, error) {
			return e.sampleOffsets(0, ctx.Width), nil
		})

	case 'e':
		return e.memoized(&e.memo.edge, func() (RGB, error) {
			boxed := e.fetchBoxed()
			var out [3]uint8
			for i := 0; i < 3; i++ {
				n := channels(boxed, i)
				out[i] = n[8] - n[0] + n[5] - n[3] + n[7] - n[1] + n[6] - n[2]
			}
			return RGB{out[0], out[1], out[2]}, nil
		})

	case 'b':
		return e.memoized(&e.memo.blur, func() (RGB, error) {
			boxed := e.fetchBoxed()
			var out [3]uint8
			for i := 0; i < 3; i++ {
				n := channels(boxed, i)
				var sum uint32
				for k, v := range n {
					if k == 4 {
						continue
					}
					sum += uint32(v)
				}
				// The divisor is 9 although only 8 values are summed.
				out[i] = uint8(sum / 9)
			}
			return RGB{out[0], out[1], out[2]}, nil
		})

	case 'H':
		return e.memoized(&e.memo.high, func() (RGB, error) {
			return e.neighborhoodExtreme(func(best, v uint8) bool { return v > best }), nil
		})

	case 'L':
		return e.memoized(&e.memo.low, func() (RGB, error) {
			return e.neighborhoodExtreme(func(best, v uint8) bool { return v < best }), nil
		})

	case 'h':
		return e.memoized(&e.memo.mirrorH, func() (RGB, error) {
			hx := ctx.Width - ctx.X - 1
			if hx < 0 || hx >= ctx.Width {
				return RGB{}, fmt.Errorf("horizontal mirror out of bounds at x=%d", ctx.X)
			}
			return e.pixelAt(hx, ctx.Y), nil
		})

	case 'v':
		return e.memoized(&e.memo.mirrorV, func() (RGB, error) {
			return e.pixelAt(ctx.X, ctx.Height-ctx.Y-1), nil
		})

	case 'd':
		return e.memoized(&e.memo.mirrorD, func() (RGB, error) {
			return e.pixelAt(ctx.Width-ctx.X-1, ctx.Height-ctx.Y-1), nil
		})

	default:
		return RGB{}, &UnknownInstructionError{Ins: ins}
	}
}

// memoized returns the cached value for a slot, computing and caching
// it on first use. With NoMemo set the cache never fills, so every
// occurrence recomputes.
func (e *evaluator) memoized(slot **RGB, compute func() (RGB, error)) (RGB, error) {
	if v := *slot; v != nil {
		return *v, nil
	}
	v, err := compute()
	if err != nil {
		return RGB{}, err
	}
	if !e.ctx.NoMemo {
		*slot = &v
	}
	return v, nil
}

// randomSample draws (or reuses) the random grid sample for one radius.
// Distinct radii sample independently; repeats of one radius within a
// pixel reuse the first draw.
func (e *evaluator) randomSample(radius uint8) RGB {
	if v, ok := e.memo.random[radius]; ok {
		return v
	}
	v := e.sampleOffsets(-int(radius), int(radius))
	if !e.ctx.NoMemo {
		if e.memo.random == nil {
			e.memo.random = make(map[uint8]RGB)
		}
		e.memo.random[radius] = v
	}
	return v
}

// sampleOffsets draws one random (dx,dy) offset per output channel,
// each coordinate uniform on [min,max] inclusive, and reads that
// channel from whichever pixel the offset lands on. Offsets landing
// outside the image read as zero.
func (e *evaluator) sampleOffsets(min, max int) RGB {
	span := max - min + 1
	var out [3]uint8
	for i := 0; i < 3; i++ {
		dx := e.ctx.Rng.Intn(span) + min
		dy := e.ctx.Rng.Intn(span) + min
		px := e.pixelAt(e.ctx.X+dx, e.ctx.Y+dy)
		out[i] = channel(px, i)
	}
	return RGB{out[0], out[1], out[2]}
}

// fetchBoxed returns the 3x3 neighborhood with dx as the outer axis, so
// index 4 is the center. The center reads the context's own pixel;
// anything outside the image reads as zero.
func (e *evaluator) fetchBoxed() [9]RGB {
	var boxed [9]RGB
	k := 0
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				boxed[k] = RGB{e.ctx.Pixel.R, e.ctx.Pixel.G, e.ctx.Pixel.B}
			} else {
				boxed[k] = e.pixelAt(e.ctx.X+dx, e.ctx.Y+dy)
			}
			k++
		}
	}
	return boxed
}

// neighborhoodExtreme folds the 8 non-center neighborhood values per
// channel with the given comparison.
func (e *evaluator) neighborhoodExtreme(better func(best, v uint8) bool) RGB {
	boxed := e.fetchBoxed()
	var out [3]uint8
	for i := 0; i < 3; i++ {
		n := channels(boxed, i)
		best := n[0]
		for k, v := range n {
			if k == 0 || k == 4 {
				continue
			}
			if better(best, v) {
				best = v
			}
		}
		out[i] = best
	}
	return RGB{out[0], out[1], out[2]}
}

// pixelAt reads the input image, returning zero for any coordinate
// outside it.
func (e *evaluator) pixelAt(x, y int) RGB {
	if x < 0 || y < 0 || x >= e.ctx.Width || y >= e.ctx.Height {
		return RGB{}
	}
	i := e.img.PixOffset(x, y)
	return RGB{e.img.Pix[i], e.img.Pix[i+1], e.img.Pix[i+2]}
}

func channel(c RGB, i int) uint8 {
	switch i {
	case 0:
		return c.R
	case 1:
		return c.G
	default:
		return c.B
	}
}

func channels(boxed [9]RGB, i int) [9]uint8 {
	var n [9]uint8
	for k, c := range boxed {
		n[k] = channel(c, i)
	}
	return n
}

// threeRule maps a coordinate onto 0-255 by proportion of the dimension.
func threeRule(coord, max int) uint8 {
	return uint8((255 * coord / max) & 255)
}

func divOrDividend(a, b uint8) uint8 {
	if b == 0 {
		return a
	}
	return a / b
}

func modOrDividend(a, b uint8) uint8 {
	if b == 0 {
		return a
	}
	return a % b
}

// wrappingPow raises a to the b-th power with wrapping multiplication.
func wrappingPow(a, b uint8) uint8 {
	result := uint8(1)
	base := a
	for exp := b; exp > 0; exp >>= 1 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
	}
	return result
}

// weight scales a by the 0..1 fuzz factor derived from b, truncating.
func weight(a, b uint8) uint8 {
	return uint8(float64(a) * (float64(b) / 255.0))
}
