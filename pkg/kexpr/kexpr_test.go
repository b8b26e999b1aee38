package kexpr

import (
	"errors"
	"testing"
)

func TestParseRPN(t *testing.T) {
	cases := map[string]string{
		"1+2*3":            "1 2 3 * +",
		"(1+2)*3":          "1 2 + 3 *",
		"1-2-3":            "1 2 - 3 -",
		"1 - -2":           "1 2 -(1) -",
		"-a*b":             "a -(1) b *",
		"!x && y || z":     "x ! y && z ||",
		"a==b":             "a b ==",
		"a != b":           "a b !=",
		"a<=b":             "a b <=",
		"a>=b":             "a b >=",
		"x<<2 | y>>1":      "x 2 << y 1 >> |",
		"a & b ^ c":        "a b & c ^",
		"ibeta(sin(-5),6)": "5 -(1) sin(1) 6 ibeta(2)",
		"f() + g(1)":       "f(0) 1 g(1) +",
		"max(a, b, c)":     "a b c max(3)",
		"(a)-b":            "a b -",
		"0x1F + 010":       "31 8 +",
		"1.5e3 * 2":        "1500 2 *",
		"2.5 % 7":          "2.5 7 %",
		`s == "a b"`:       `s "a b" ==`,
		"~mask":            "mask ~",
	}
	for in, want := range cases {
		e, err := Parse(in)
		if err != nil {
			t.Errorf("Parse(%q): %v", in, err)
			continue
		}
		if got := e.String(); got != want {
			t.Errorf("Parse(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]error{
		"a = b":     ErrUnknownToken,
		"1 + $":     ErrUnknownToken,
		`"abc`:      ErrUnterminatedString,
		"(1+2":      ErrUnmatchedLeft,
		"f(1":       ErrUnmatchedLeft,
		"1+2)":      ErrUnmatchedRight,
		"ibeta(1))": ErrUnmatchedRight,
		"1,2":       ErrBadComma,
		"(1,2)":     ErrBadComma,
	}
	for in, want := range cases {
		e, err := Parse(in)
		if !errors.Is(err, want) {
			t.Errorf("Parse(%q): got %v, want %v", in, err, want)
		}
		if e != nil {
			t.Errorf("Parse(%q): expression returned with error", in)
		}
	}
}

func TestTokenValues(t *testing.T) {
	e, err := Parse(`x1 + 42 + 2.75 + "str"`)
	if err != nil {
		t.Fatal(err)
	}
	if e.Len() != 7 {
		t.Fatalf("got %d tokens: %s", e.Len(), e)
	}
	x, n, r, s := e.Tokens[0], e.Tokens[1], e.Tokens[3], e.Tokens[5]
	if x.Kind != Value || x.VKind != Var || x.S != "x1" {
		t.Errorf("variable token = %+v", x)
	}
	if n.VKind != Int || n.I != 42 || n.R != 42 {
		t.Errorf("int token = %+v", n)
	}
	if r.VKind != Real || r.R != 2.75 || r.I != 3 {
		t.Errorf("real token = %+v", r)
	}
	if s.VKind != Str || s.S != "str" {
		t.Errorf("string token = %+v", s)
	}
	if op := e.Tokens[2]; op.Kind != Operator || op.Op != OpAdd {
		t.Errorf("operator token = %+v", op)
	}
}

func TestOperatorTable(t *testing.T) {
	if !OpMinus.RightAssoc() || OpSub.RightAssoc() {
		t.Error("unary operators group right, binary left")
	}
	if OpMul.Precedence() >= OpAdd.Precedence() || OpAnd.Precedence() >= OpOr.Precedence() {
		t.Error("precedence order broken")
	}
	if OpShl.String() != "<<" || OpPlus.String() != "+(1)" {
		t.Errorf("op names: %s %s", OpShl, OpPlus)
	}
}

func TestNilExpr(t *testing.T) {
	var e *Expr
	if e.String() != "" || e.Len() != 0 {
		t.Error("nil expression should print empty")
	}
}

func TestKindNames(t *testing.T) {
	if Value.String() != "value" || Function.String() != "function" || TokenKind(9).String() != "TokenKind(9)" {
		t.Error("token kind names")
	}
	if Real.String() != "real" || Var.String() != "var" || ValueKind(0).String() != "ValueKind(0)" {
		t.Error("value kind names")
	}
}
