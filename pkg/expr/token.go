package expr

import "fmt"

// Op identifies an instruction kind. The set is closed: the evaluator
// dispatches over it exhaustively and treats anything else as an error.
type Op byte

const (
	// ========================================================================
	// Literals and values
	// ========================================================================

	OpNumber     Op = iota // Push gray literal; operand Val (0-255)
	OpRandom               // Random neighborhood sample; operand Val = radius (1-255)
	OpChannel              // Single-channel literal; operands Ch ('R','G','B') and Val
	OpBrightness           // HSV brightness transform of the input pixel; operand Val
	OpVariable             // Per-pixel variable; operand Ch = tag
	OpInvert               // Complement of the input pixel

	// ========================================================================
	// Arithmetic
	// ========================================================================

	OpAdd // Pop two, push wrapping sum
	OpSub // Pop two, push wrapping difference (a - b where b is TOS)
	OpMul // Pop two, push wrapping product
	OpDiv // Pop two, push quotient; divisor 0 leaves the dividend
	OpMod // Pop two, push remainder; divisor 0 leaves the dividend
	OpPow // Pop two, push a^b with wrapping multiplication

	// ========================================================================
	// Bitwise
	// ========================================================================

	OpBitAnd     // a & b
	OpBitOr      // a | b
	OpBitXor     // a ^ b
	OpBitAndNot  // a &^ b
	OpShiftLeft  // a << b, shift amount taken mod 8
	OpShiftRight // a >> b, shift amount taken mod 8

	// ========================================================================
	// Comparison and weighting
	// ========================================================================

	OpGreater // Per channel: 255 if a > b, else 0
	OpWeight  // trunc(a * b/255)

	// ========================================================================
	// Grouping markers. These live on the operator stack during parsing
	// and never appear in a compiled sequence.
	// ========================================================================

	OpLeftParen
	OpRightParen
)

// Instruction is one element of a compiled expression. It is a tagged
// variant: Op selects the kind, Val and Ch carry operands where the kind
// needs them. Instructions are immutable value types; a compiled
// sequence is shared freely across pixels and frames.
//
// The cbor tags define the wire form used by the compile cache.
type Instruction struct {
	Op  Op    `cbor:"1,keyasint"`
	Val uint8 `cbor:"2,keyasint,omitempty"`
	Ch  byte  `cbor:"3,keyasint,omitempty"`
}

// Constructors for the operand-carrying kinds. Operator instructions are
// written inline as Instruction{Op: OpAdd} etc.

// Number builds a numeric literal instruction.
func Number(v uint8) Instruction { return Instruction{Op: OpNumber, Val: v} }

// Random builds a random-sample instruction with the given radius.
func Random(radius uint8) Instruction { return Instruction{Op: OpRandom, Val: radius} }

// Channel builds a single-channel literal for channel 'R', 'G' or 'B'.
func Channel(ch byte, v uint8) Instruction { return Instruction{Op: OpChannel, Val: v, Ch: ch} }

// Brightness builds a brightness-transform instruction.
func Brightness(v uint8) Instruction { return Instruction{Op: OpBrightness, Val: v} }

// Variable builds a per-pixel variable reference.
func Variable(tag byte) Instruction { return Instruction{Op: OpVariable, Ch: tag} }

// OpInfo provides metadata about an instruction kind.
type OpInfo struct {
	Name string // Human-readable name
	Prec int    // Operator precedence; -1 for non-operators
}

var opInfoTable = map[Op]OpInfo{
	OpNumber:     {"NUMBER", -1},
	OpRandom:     {"RANDOM", -1},
	OpChannel:    {"CHANNEL", -1},
	OpBrightness: {"BRIGHTNESS", -1},
	OpVariable:   {"VARIABLE", -1},
	OpInvert:     {"INVERT", -1},

	OpAdd: {"ADD", 4},
	OpSub: {"SUB", 4},
	OpMul: {"MUL", 5},
	OpDiv: {"DIV", 5},
	OpMod: {"MOD", 5},
	OpPow: {"POW", 5},

	OpBitAnd:     {"BIT_AND", 5},
	OpBitOr:      {"BIT_OR", 4},
	OpBitXor:     {"BIT_XOR", 4},
	OpBitAndNot:  {"BIT_AND_NOT", 5},
	OpShiftLeft:  {"SHIFT_LEFT", 5},
	OpShiftRight: {"SHIFT_RIGHT", 5},

	OpGreater: {"GREATER", 6},
	OpWeight:  {"WEIGHT", 6},

	OpLeftParen:  {"LPAREN", -1},
	OpRightParen: {"RPAREN", -1},
}

// Info returns metadata for an instruction kind. Unknown values get a
// zero OpInfo with a diagnostic name.
func (op Op) Info() OpInfo {
	if info, ok := opInfoTable[op]; ok {
		return info
	}
	return OpInfo{Name: fmt.Sprintf("UNKNOWN(%d)", byte(op)), Prec: -1}
}

// String returns the mnemonic name of an instruction kind.
func (op Op) String() string { return op.Info().Name }

// Prec returns the operator precedence tier, or -1 for non-operators.
// Higher binds tighter; all operators are left-associative.
func (op Op) Prec() int { return op.Info().Prec }

// IsOperator reports whether op is a binary operator.
func (op Op) IsOperator() bool { return op.Info().Prec >= 0 }

// operatorFor maps an operator character to its instruction kind.
var operatorFor = map[byte]Op{
	'+': OpAdd,
	'-': OpSub,
	'*': OpMul,
	'/': OpDiv,
	'%': OpMod,
	'#': OpPow,
	'&': OpBitAnd,
	'|': OpBitOr,
	':': OpBitAndNot,
	'^': OpBitXor,
	'<': OpShiftLeft,
	'>': OpShiftRight,
	'?': OpGreater,
	'@': OpWeight,
}

// variableTags is the closed single-character variable set. Note that
// 'b' is absent: bare 'b' parses as a brightness literal, and the
// box-blur variable is reachable only through Variable('b') built in
// code (the evaluator still understands it).
const variableTags = "csYxyNeHLhvdgt"

// IsVariableTag reports whether c is a recognized variable character.
func IsVariableTag(c byte) bool {
	for i := 0; i < len(variableTags); i++ {
		if variableTags[i] == c {
			return true
		}
	}
	return false
}
