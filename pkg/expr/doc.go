// Package expr compiles glitch expressions into executable instruction
// sequences.
//
// An expression is a single line of ASCII text combining numeric
// literals, per-pixel variables, and channel-wise operators:
//
//	c^y          current pixel XOR'd with the vertical gradient
//	(H-L)@128    neighborhood contrast at half weight
//	r3+b64       random sample in a 3-radius grid plus a dimmed pixel
//
// Compile turns one expression into its postfix form using a two-stack
// shunting-yard pass. The output is a flat []Instruction with no tree
// structure; the eval package executes it directly against a pixel
// context.
//
// Instruction sequences are immutable pure data. They are safe to share
// across every pixel and frame of a run, and serialize to CBOR for the
// on-disk compile cache (see the cache package).
//
// The grammar:
//
//	0-9 (1-3 digits)   numeric literal 0-255
//	r[N]               random-neighborhood sample, radius N (default 1)
//	R[N] G[N] B[N]     single-channel literal, value N (default 255)
//	b[N]               brightness transform, factor N (default 255)
//	i                  invert the input pixel
//	c s Y x y N e H L h v d g t
//	                   per-pixel variables
//	+ - * / % # & | : ^ < > ? @
//	                   Add Sub Mul Div Mod Pow And Or AndNot Xor
//	                   ShiftLeft ShiftRight Greater Weight
//	( )                grouping
//
// Whitespace terminates a pending literal and is otherwise ignored.
package expr
