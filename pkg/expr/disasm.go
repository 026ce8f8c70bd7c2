package expr

import (
	"fmt"
	"strings"
)

// variableNames gives the long-form description of each variable tag,
// used by verbose output and diagnostics.
var variableNames = map[byte]string{
	'c': "Current Pixel Value",
	's': "Previous Saved Pixel Value",
	'Y': "Luminosity",
	'x': "X Coordinate",
	'y': "Y Coordinate",
	'N': "Noise",
	'e': "Edge Emphasis",
	'b': "Blurred",
	'H': "Highest Value",
	'L': "Lowest Value",
	'h': "Horizontal",
	'v': "Vertical",
	'd': "Diagonal",
	'g': "Random Color in the Entire Image",
	't': "Random Color in 6x6 Grid",
}

var operatorNames = map[Op]string{
	OpAdd:        "Addition",
	OpSub:        "Subtraction",
	OpMul:        "Multiplication",
	OpDiv:        "Division",
	OpMod:        "Modulus",
	OpPow:        "Power",
	OpBitAnd:     "Bitwise AND",
	OpBitOr:      "Bitwise OR",
	OpBitXor:     "Bitwise XOR",
	OpBitAndNot:  "Bitwise AND NOT",
	OpShiftLeft:  "Bitwise Left Shift",
	OpShiftRight: "Bitwise Right Shift",
	OpGreater:    "Greater",
	OpWeight:     "Weight",
}

// String renders one instruction in a human-readable form.
func (ins Instruction) String() string {
	switch ins.Op {
	case OpNumber:
		return fmt.Sprintf("Number %d", ins.Val)
	case OpRandom:
		return fmt.Sprintf("Random color grid - %dx%d", ins.Val, ins.Val)
	case OpChannel:
		return fmt.Sprintf("RGB Color - %c: %d", ins.Ch, ins.Val)
	case OpBrightness:
		return fmt.Sprintf("Brightness - %d", ins.Val)
	case OpInvert:
		return "Invert"
	case OpVariable:
		if name, ok := variableNames[ins.Ch]; ok {
			return name
		}
		return fmt.Sprintf("Variable(%q)", ins.Ch)
	default:
		if name, ok := operatorNames[ins.Op]; ok {
			return name
		}
		return ins.Op.String()
	}
}

// Disassemble renders a compiled sequence one instruction per line,
// in execution order.
func Disassemble(prog []Instruction) string {
	var b strings.Builder
	for i, ins := range prog {
		fmt.Fprintf(&b, "%04d  %s\n", i, ins)
	}
	return b.String()
}
