// Package kexpr converts infix arithmetic and logical expressions into reverse
// Polish notation with the shunting-yard algorithm. It tokenizes numbers,
// double-quoted strings, variables, function calls and C operators; it does
// not evaluate.
package kexpr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownToken       = errors.New("kexpr: unknown token")
	ErrUnterminatedString = errors.New("kexpr: unterminated string")
	ErrUnmatchedLeft      = errors.New("kexpr: unmatched '('")
	ErrUnmatchedRight     = errors.New("kexpr: unmatched ')'")
	ErrBadComma           = errors.New("kexpr: ',' outside a function call")
)

// TokenKind classifies a token in the output sequence.
type TokenKind uint8

const (
	Value TokenKind = iota + 1
	Operator
	Function
	paren // only ever on the operator stack
)

func (k TokenKind) String() string {
	switch k {
	case Value:
		return "value"
	case Operator:
		return "operator"
	case Function:
		return "function"
	}
	return fmt.Sprintf("TokenKind(%d)", uint8(k))
}

// ValueKind classifies a Value token.
type ValueKind uint8

const (
	Real ValueKind = iota + 1
	Int
	Str
	Var
)

func (k ValueKind) String() string {
	switch k {
	case Real:
		return "real"
	case Int:
		return "int"
	case Str:
		return "string"
	case Var:
		return "var"
	}
	return fmt.Sprintf("ValueKind(%d)", uint8(k))
}

// Op is an operator code.
type Op uint8

const (
	OpNone  Op = iota
	OpPlus     // unary +
	OpMinus    // unary -
	OpBitNot
	OpNot
	OpMul
	OpDiv
	OpMod
	OpAdd
	OpSub
	OpShl
	OpShr
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpBitAnd
	OpBitXor
	OpBitOr
	OpAnd
	OpOr
)

// opInfo is precedence<<1 | right-associative. A lower precedence number binds
// tighter.
var opInfo = [...]int{
	OpNone: 0,
	OpPlus: 2<<1 | 1, OpMinus: 2<<1 | 1, OpBitNot: 2<<1 | 1, OpNot: 2<<1 | 1,
	OpMul: 3 << 1, OpDiv: 3 << 1, OpMod: 3 << 1,
	OpAdd: 4 << 1, OpSub: 4 << 1,
	OpShl: 5 << 1, OpShr: 5 << 1,
	OpLt: 6 << 1, OpLe: 6 << 1, OpGt: 6 << 1, OpGe: 6 << 1,
	OpEq: 7 << 1, OpNe: 7 << 1,
	OpBitAnd: 8 << 1,
	OpBitXor: 9 << 1,
	OpBitOr:  10 << 1,
	OpAnd:    11 << 1,
	OpOr:     12 << 1,
}

var opNames = [...]string{
	"",
	"+(1)", "-(1)", "~", "!",
	"*", "/", "%",
	"+", "-",
	"<<", ">>",
	"<", "<=", ">", ">=",
	"==", "!=",
	"&",
	"^",
	"|",
	"&&",
	"||",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Precedence returns the binding level of o; lower binds tighter.
func (o Op) Precedence() int { return opInfo[o] >> 1 }

// RightAssoc reports whether o groups right to left.
func (o Op) RightAssoc() bool { return opInfo[o]&1 == 1 }

// Token is one element of an expression in RPN order.
type Token struct {
	Kind  TokenKind
	VKind ValueKind // for Value
	Op    Op        // for Operator
	NArgs int       // for Function
	S     string    // variable, function or string text
	R     float64
	I     int64
}

func (t Token) String() string {
	switch t.Kind {
	case Value:
		switch t.VKind {
		case Real:
			return strconv.FormatFloat(t.R, 'g', -1, 64)
		case Int:
			return strconv.FormatInt(t.I, 10)
		case Str:
			return `"` + t.S + `"`
		}
		return t.S
	case Operator:
		return t.Op.String()
	case Function:
		return fmt.Sprintf("%s(%d)", t.S, t.NArgs)
	}
	return ""
}

// Expr is a parsed expression in RPN order.
type Expr struct {
	Tokens []Token
}

// String prints the tokens separated by single spaces.
func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	parts := make([]string, len(e.Tokens))
	for i, t := range e.Tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// Len returns the number of RPN tokens.
func (e *Expr) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Tokens)
}
