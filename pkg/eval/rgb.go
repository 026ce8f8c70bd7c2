package eval

// RGB is the evaluator's working color: three independent 8-bit
// channels and no alpha. Every operator applies channel-wise; nothing
// ever crosses channels.
type RGB struct {
	R, G, B uint8
}

// Gray returns a color with all three channels set to v.
func Gray(v uint8) RGB { return RGB{v, v, v} }
