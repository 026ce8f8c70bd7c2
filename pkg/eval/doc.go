// Package eval executes compiled glitch expressions against image
// pixels.
//
// The heart of the package is a small stack machine: Eval runs one
// instruction sequence against one pixel's Context and produces one
// output color. All arithmetic is per-channel 8-bit with wrapping
// semantics; division and modulus by a zero channel leave the dividend
// unchanged rather than failing.
//
// Stateful variables (luminosity, blur, neighborhood extrema, mirrors,
// random grid samples) are memoized for the duration of a single pixel
// evaluation so that an expression referencing the same variable twice
// pays for it once. The Context's NoMemo flag disables that, which only
// changes observable results for the randomness-based variables.
//
// Apply runs a list of sequences as sequential passes over one image,
// scanning the non-zero bounds rectangle in column-major order and
// carrying each pixel's output into the next evaluation as the "saved"
// color (the s variable). Evaluation within a pass is strictly
// sequential because of that carry; frame-level parallelism lives in
// the render package.
package eval
