package expr

import "fmt"

// ParseError describes a failure to compile an expression.
type ParseError struct {
	Pos int    // 1-based character position; 0 when not tied to one spot
	Msg string
}

func (e *ParseError) Error() string {
	if e.Pos > 0 {
		return fmt.Sprintf("%s at position %d", e.Msg, e.Pos)
	}
	return e.Msg
}

// pending accumulates a literal under construction: either a bare number
// or the digits following an r/R/G/B/b prefix.
type pending struct {
	kind   byte // 0 none, 'n' plain number, or the prefix character
	value  int
	digits bool // at least one digit seen (distinguishes "r" from "r0")
	pos    int  // position of the first character, for error reporting
}

// Compile converts one expression string into its postfix instruction
// sequence using a two-stack shunting-yard pass. All operators are
// left-associative; precedence tiers are defined on Op.
func Compile(input string) ([]Instruction, error) {
	var (
		out  []Instruction
		ops  []Op
		pend pending
	)

	flush := func() error {
		switch pend.kind {
		case 0:
			return nil
		case 'n':
			out = append(out, Number(uint8(pend.value)))
		case 'r':
			radius := pend.value
			if !pend.digits {
				radius = 1
			}
			if radius == 0 {
				return &ParseError{Pos: pend.pos, Msg: "random radius cannot be 0 (use c for the current pixel)"}
			}
			out = append(out, Random(uint8(radius)))
		case 'R', 'G', 'B':
			v := pend.value
			if !pend.digits {
				v = 255
			}
			out = append(out, Channel(pend.kind, uint8(v)))
		case 'b':
			v := pend.value
			if !pend.digits {
				v = 255
			}
			out = append(out, Brightness(uint8(v)))
		}
		pend = pending{}
		return nil
	}

	for i := 0; i < len(input); i++ {
		c := input[i]
		pos := i + 1

		if c >= '0' && c <= '9' {
			d := int(c - '0')
			if pend.kind == 0 {
				pend = pending{kind: 'n', value: d, digits: true, pos: pos}
				continue
			}
			v := pend.value*10 + d
			if v > 255 {
				return nil, &ParseError{Pos: pos, Msg: "number exceeds 255"}
			}
			pend.value = v
			pend.digits = true
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}

		if op, ok := operatorFor[c]; ok {
			// Left-associative: pop every operator of equal or higher
			// precedence before pushing. A left paren is not an
			// operator and acts as a floor.
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if !top.IsOperator() || top.Prec() < op.Prec() {
					break
				}
				out = append(out, Instruction{Op: top})
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, op)
			continue
		}

		switch {
		case c == '(':
			ops = append(ops, OpLeftParen)
		case c == ')':
			matched := false
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if top == OpLeftParen {
					matched = true
					break
				}
				out = append(out, Instruction{Op: top})
			}
			if !matched {
				return nil, &ParseError{Pos: pos, Msg: "mismatched parenthesis"}
			}
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			// Flush boundary only.
		case c == 'r' || c == 'R' || c == 'G' || c == 'B' || c == 'b':
			pend = pending{kind: c, pos: pos}
		case c == 'i':
			out = append(out, Instruction{Op: OpInvert})
		case IsVariableTag(c):
			out = append(out, Variable(c))
		default:
			return nil, &ParseError{Pos: pos, Msg: fmt.Sprintf("invalid character %q", c)}
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	for len(ops) > 0 {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if top == OpLeftParen {
			return nil, &ParseError{Msg: "mismatched parenthesis"}
		}
		out = append(out, Instruction{Op: top})
	}

	return out, nil
}

// CompileAll compiles an ordered list of expressions. The first failure
// aborts the whole batch, identifying the offending expression.
func CompileAll(sources []string) ([][]Instruction, error) {
	progs := make([][]Instruction, 0, len(sources))
	for i, src := range sources {
		prog, err := Compile(src)
		if err != nil {
			return nil, fmt.Errorf("expression %d (%q): %w", i+1, src, err)
		}
		progs = append(progs, prog)
	}
	return progs, nil
}
