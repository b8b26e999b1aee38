package kexpr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// squeeze drops whitespace outside double-quoted strings.
func squeeze(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inStr := false
	for _, r := range s {
		if r == '"' {
			inStr = !inStr
		}
		if inStr || !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isAlpha(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isHex(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

type parser struct {
	s         string
	pos       int
	out       []Token
	ops       []Token
	lastIsVal bool
}

// Parse converts expr to RPN.
func Parse(expr string) (*Expr, error) {
	p := &parser{s: squeeze(expr)}
	if err := p.run(); err != nil {
		return nil, err
	}
	return &Expr{Tokens: p.out}, nil
}

func (p *parser) fail(err error) error {
	return fmt.Errorf("%w at %q", err, p.s[p.pos:])
}

func (p *parser) popOps() {
	for len(p.ops) > 0 && p.ops[len(p.ops)-1].Kind == Operator {
		p.out = append(p.out, p.ops[len(p.ops)-1])
		p.ops = p.ops[:len(p.ops)-1]
	}
}

func (p *parser) run() error {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case '(':
			p.ops = append(p.ops, Token{Kind: paren})
			p.pos++
			p.lastIsVal = false
		case ')':
			p.popOps()
			if len(p.ops) == 0 {
				return p.fail(ErrUnmatchedRight)
			}
			p.ops = p.ops[:len(p.ops)-1]
			if n := len(p.ops); n > 0 && p.ops[n-1].Kind == Function {
				f := p.ops[n-1]
				if p.s[p.pos-1] == '(' {
					f.NArgs = 0
				}
				p.out = append(p.out, f)
				p.ops = p.ops[:n-1]
			}
			p.pos++
			p.lastIsVal = true
		case ',':
			p.popOps()
			n := len(p.ops)
			if n < 2 || p.ops[n-2].Kind != Function {
				return p.fail(ErrBadComma)
			}
			p.ops[n-2].NArgs++
			p.pos++
			p.lastIsVal = false
		default:
			t, err := p.token()
			if err != nil {
				return err
			}
			switch t.Kind {
			case Value:
				p.out = append(p.out, t)
				p.lastIsVal = true
			case Function:
				p.ops = append(p.ops, t)
				p.lastIsVal = false
			case Operator:
				p.pushOp(t)
				p.lastIsVal = false
			}
		}
	}
	p.popOps()
	if len(p.ops) > 0 {
		return ErrUnmatchedLeft
	}
	return nil
}

func (p *parser) pushOp(t Token) {
	prec, right := t.Op.Precedence(), t.Op.RightAssoc()
	for n := len(p.ops); n > 0 && p.ops[n-1].Kind == Operator; n = len(p.ops) {
		top := p.ops[n-1].Op.Precedence()
		if right && prec <= top || !right && prec < top {
			break
		}
		p.out = append(p.out, p.ops[n-1])
		p.ops = p.ops[:n-1]
	}
	p.ops = append(p.ops, t)
}

func (p *parser) token() (Token, error) {
	s, start := p.s, p.pos
	c := s[start]
	switch {
	case isAlpha(c):
		q := start
		for q < len(s) && (s[q] == '_' || isAlpha(s[q]) || isDigit(s[q])) {
			q++
		}
		p.pos = q
		if q < len(s) && s[q] == '(' {
			return Token{Kind: Function, S: s[start:q], NArgs: 1}, nil
		}
		return Token{Kind: Value, VKind: Var, S: s[start:q]}, nil
	case isDigit(c):
		return p.number(), nil
	case c == '"':
		end := strings.IndexByte(s[start+1:], '"')
		if end < 0 {
			return Token{}, p.fail(ErrUnterminatedString)
		}
		p.pos = start + end + 2
		return Token{Kind: Value, VKind: Str, S: s[start+1 : start+1+end]}, nil
	}

	op, width := p.operator()
	if op == OpNone {
		return Token{}, p.fail(ErrUnknownToken)
	}
	p.pos += width
	return Token{Kind: Operator, Op: op}, nil
}

func (p *parser) operator() (Op, int) {
	s, i := p.s, p.pos
	var next byte
	if i+1 < len(s) {
		next = s[i+1]
	}
	switch s[i] {
	case '*':
		return OpMul, 1
	case '/':
		return OpDiv, 1
	case '%':
		return OpMod, 1
	case '+':
		if p.lastIsVal {
			return OpAdd, 1
		}
		return OpPlus, 1
	case '-':
		if p.lastIsVal {
			return OpSub, 1
		}
		return OpMinus, 1
	case '~':
		return OpBitNot, 1
	case '^':
		return OpBitXor, 1
	case '=':
		if next == '=' {
			return OpEq, 2
		}
	case '!':
		if next == '=' {
			return OpNe, 2
		}
		return OpNot, 1
	case '<':
		switch next {
		case '=':
			return OpLe, 2
		case '<':
			return OpShl, 2
		}
		return OpLt, 1
	case '>':
		switch next {
		case '=':
			return OpGe, 2
		case '>':
			return OpShr, 2
		}
		return OpGt, 1
	case '|':
		if next == '|' {
			return OpOr, 2
		}
		return OpBitOr, 1
	case '&':
		if next == '&' {
			return OpAnd, 2
		}
		return OpBitAnd, 1
	}
	return OpNone, 0
}

// number reads an integer (decimal, 0x hex or 0 octal) or a real. Whichever
// reading consumes more input wins.
func (p *parser) number() Token {
	s, start := p.s, p.pos

	intEnd := start
	if strings.HasPrefix(s[start:], "0x") || strings.HasPrefix(s[start:], "0X") {
		intEnd = start + 2
		for intEnd < len(s) && isHex(s[intEnd]) {
			intEnd++
		}
	} else {
		for intEnd < len(s) && isDigit(s[intEnd]) {
			intEnd++
		}
	}

	realEnd := start
	for realEnd < len(s) && isDigit(s[realEnd]) {
		realEnd++
	}
	if realEnd < len(s) && s[realEnd] == '.' {
		realEnd++
		for realEnd < len(s) && isDigit(s[realEnd]) {
			realEnd++
		}
	}
	if realEnd < len(s) && (s[realEnd] == 'e' || s[realEnd] == 'E') {
		q := realEnd + 1
		if q < len(s) && (s[q] == '+' || s[q] == '-') {
			q++
		}
		if q < len(s) && isDigit(s[q]) {
			for q < len(s) && isDigit(s[q]) {
				q++
			}
			realEnd = q
		}
	}

	if intEnd >= realEnd {
		if v, err := strconv.ParseInt(s[start:intEnd], 0, 64); err == nil {
			p.pos = intEnd
			return Token{Kind: Value, VKind: Int, I: v, R: float64(v)}
		}
	}
	r, _ := strconv.ParseFloat(s[start:realEnd], 64)
	p.pos = realEnd
	return Token{Kind: Value, VKind: Real, R: r, I: int64(r + .5)}
}
