package expr

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func compileOK(t *testing.T, input string) []Instruction {
	t.Helper()
	prog, err := Compile(input)
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", input, err)
	}
	return prog
}

func TestCompileSimpleExpression(t *testing.T) {
	got := compileOK(t, "3+5")
	want := []Instruction{Number(3), Number(5), {Op: OpAdd}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompileMixedPrecedence(t *testing.T) {
	got := compileOK(t, "3+5*2")
	want := []Instruction{Number(3), Number(5), Number(2), {Op: OpMul}, {Op: OpAdd}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompileParentheses(t *testing.T) {
	got := compileOK(t, "(3+5)*2")
	want := []Instruction{Number(3), Number(5), {Op: OpAdd}, Number(2), {Op: OpMul}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompileCompleteExpression(t *testing.T) {
	got := compileOK(t, "3 + 5 / (2 - 1) * 4")
	want := []Instruction{
		Number(3),
		Number(5),
		Number(2), Number(1), {Op: OpSub},
		{Op: OpDiv},
		Number(4), {Op: OpMul},
		{Op: OpAdd},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompileVariables(t *testing.T) {
	got := compileOK(t, "c+Y")
	want := []Instruction{Variable('c'), Variable('Y'), {Op: OpAdd}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompileLeftAssociativity(t *testing.T) {
	// Same tier pops left to right: 8-4-2 is (8-4)-2.
	got := compileOK(t, "8-4-2")
	want := []Instruction{Number(8), Number(4), {Op: OpSub}, Number(2), {Op: OpSub}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompileHighTierOperators(t *testing.T) {
	// ? and @ bind tighter than the multiplicative tier.
	got := compileOK(t, "c*s?Y")
	want := []Instruction{
		Variable('c'), Variable('s'), Variable('Y'), {Op: OpGreater}, {Op: OpMul},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompileMultiCharTokens(t *testing.T) {
	cases := []struct {
		input string
		want  []Instruction
	}{
		{"r", []Instruction{Random(1)}},
		{"r5", []Instruction{Random(5)}},
		{"r13", []Instruction{Random(13)}},
		{"R", []Instruction{Channel('R', 255)}},
		{"G128", []Instruction{Channel('G', 128)}},
		{"B0", []Instruction{Channel('B', 0)}},
		{"b", []Instruction{Brightness(255)}},
		{"b127", []Instruction{Brightness(127)}},
		{"i", []Instruction{{Op: OpInvert}}},
	}
	for _, tc := range cases {
		got := compileOK(t, tc.input)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Compile(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestCompilePrefixLiteralInExpression(t *testing.T) {
	got := compileOK(t, "c&R+G10")
	want := []Instruction{
		Variable('c'), Channel('R', 255), {Op: OpBitAnd}, Channel('G', 10), {Op: OpAdd},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompileAllOperators(t *testing.T) {
	ops := map[string]Op{
		"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpMod,
		"#": OpPow, "&": OpBitAnd, "|": OpBitOr, "^": OpBitXor,
		":": OpBitAndNot, "<": OpShiftLeft, ">": OpShiftRight,
		"?": OpGreater, "@": OpWeight,
	}
	for sym, op := range ops {
		got := compileOK(t, "1"+sym+"2")
		want := []Instruction{Number(1), Number(2), {Op: op}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Compile(%q) = %v, want %v", "1"+sym+"2", got, want)
		}
	}
}

func TestIsOperator(t *testing.T) {
	for _, op := range []Op{OpAdd, OpPow, OpShiftRight, OpGreater, OpWeight} {
		if !op.IsOperator() {
			t.Errorf("%v.IsOperator() = false, want true", op)
		}
	}
	for _, op := range []Op{OpNumber, OpVariable, OpInvert, OpLeftParen, OpRightParen} {
		if op.IsOperator() {
			t.Errorf("%v.IsOperator() = true, want false", op)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		input string
		msg   string
	}{
		{"3$5", "invalid character"},
		{"256", "number exceeds 255"},
		{"25699", "number exceeds 255"},
		{"(3+5*2", "mismatched parenthesis"},
		{"3+5)*2", "mismatched parenthesis"},
		{"r0", "random radius cannot be 0"},
	}
	for _, tc := range cases {
		_, err := Compile(tc.input)
		if err == nil {
			t.Errorf("Compile(%q) succeeded, want error containing %q", tc.input, tc.msg)
			continue
		}
		if !strings.Contains(err.Error(), tc.msg) {
			t.Errorf("Compile(%q) error = %q, want it to contain %q", tc.input, err, tc.msg)
		}
	}
}

func TestCompileErrorPosition(t *testing.T) {
	_, err := Compile("c+$")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if perr.Pos != 3 {
		t.Errorf("Pos = %d, want 3", perr.Pos)
	}
}

func TestCompileRadiusLimit(t *testing.T) {
	if _, err := Compile("r255"); err != nil {
		t.Errorf("Compile(\"r255\") failed: %v", err)
	}
	if _, err := Compile("r256"); err == nil {
		t.Error("Compile(\"r256\") succeeded, want range error")
	}
}

func TestCompileWhitespaceFlushes(t *testing.T) {
	// Whitespace ends a literal; adjacent digits do not merge across it.
	got := compileOK(t, "12 3+")
	want := []Instruction{Number(12), Number(3), {Op: OpAdd}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompileEmptyInput(t *testing.T) {
	got := compileOK(t, "")
	if len(got) != 0 {
		t.Errorf("got %v, want empty sequence", got)
	}
}

func TestCompileAllReportsExpressionIndex(t *testing.T) {
	_, err := CompileAll([]string{"c", "25&6$"})
	if err == nil {
		t.Fatal("CompileAll succeeded, want error")
	}
	if !strings.Contains(err.Error(), "expression 2") {
		t.Errorf("error = %q, want it to identify expression 2", err)
	}

	progs, err := CompileAll([]string{"c", "s+1"})
	if err != nil {
		t.Fatalf("CompileAll failed: %v", err)
	}
	if len(progs) != 2 {
		t.Fatalf("got %d programs, want 2", len(progs))
	}
}

func TestDisassemble(t *testing.T) {
	prog := compileOK(t, "c+r3")
	text := Disassemble(prog)
	for _, want := range []string{"Current Pixel Value", "ADD"} {
		if !strings.Contains(text, want) {
			t.Errorf("Disassemble output %q missing %q", text, want)
		}
	}
}
