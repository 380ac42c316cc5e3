package smats

import (
	"fmt"
	"strconv"
)

// ParseInfix reads the plain text syntax accepted by the REPL:
//
//	x + 2*y    (x + y)^3    pow(x, 2)    3.5/x    -x
//
// '^' is right associative and binds tighter than unary minus. Identifiers
// resolve through pool; pi, e, and nan are keywords. A nil pool builds fresh
// variables scoped to this parse.
func ParseInfix[T Scalar](input string, pool *VariablePool) (Expression[T], error) {
	if pool == nil {
		pool = NewVariablePool()
	}
	p := &infixParser[T]{input: input, pool: pool}
	e, err := p.parseSum()
	if err != nil {
		return Expression[T]{}, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return Expression[T]{}, fmt.Errorf("smats: unexpected %q at offset %d", p.input[p.pos], p.pos)
	}
	return e, nil
}

type infixParser[T Scalar] struct {
	input string
	pos   int
	pool  *VariablePool
}

func (p *infixParser[T]) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *infixParser[T]) peek() byte {
	if p.pos < len(p.input) {
		return p.input[p.pos]
	}
	return 0
}

func (p *infixParser[T]) parseSum() (Expression[T], error) {
	e, err := p.parseProduct()
	if err != nil {
		return e, err
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '+':
			p.pos++
			r, err := p.parseProduct()
			if err != nil {
				return r, err
			}
			e = e.Add(r)
		case '-':
			p.pos++
			r, err := p.parseProduct()
			if err != nil {
				return r, err
			}
			e = e.Sub(r)
		default:
			return e, nil
		}
	}
}

func (p *infixParser[T]) parseProduct() (Expression[T], error) {
	e, err := p.parseUnary()
	if err != nil {
		return e, err
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '*':
			p.pos++
			r, err := p.parseUnary()
			if err != nil {
				return r, err
			}
			e = e.Mul(r)
		case '/':
			p.pos++
			r, err := p.parseUnary()
			if err != nil {
				return r, err
			}
			e = e.Div(r)
		default:
			return e, nil
		}
	}
}

func (p *infixParser[T]) parseUnary() (Expression[T], error) {
	p.skipSpace()
	if p.peek() == '-' {
		p.pos++
		e, err := p.parseUnary()
		if err != nil {
			return e, err
		}
		return e.Neg(), nil
	}
	return p.parsePower()
}

func (p *infixParser[T]) parsePower() (Expression[T], error) {
	e, err := p.parseAtom()
	if err != nil {
		return e, err
	}
	p.skipSpace()
	if p.peek() == '^' {
		p.pos++
		r, err := p.parseUnary()
		if err != nil {
			return r, err
		}
		return e.Pow(r), nil
	}
	return e, nil
}

func (p *infixParser[T]) parseAtom() (Expression[T], error) {
	var none Expression[T]
	p.skipSpace()
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		e, err := p.parseSum()
		if err != nil {
			return e, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return none, fmt.Errorf("smats: missing ')' at offset %d", p.pos)
		}
		p.pos++
		return e, nil

	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()

	case isIdentByte(c):
		return p.parseIdent()
	}
	if c == 0 {
		return none, fmt.Errorf("smats: unexpected end of input")
	}
	return none, fmt.Errorf("smats: unexpected %q at offset %d", c, p.pos)
}

func (p *infixParser[T]) parseNumber() (Expression[T], error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c >= '0' && c <= '9' || c == '.' {
			p.pos++
			continue
		}
		// exponent part such as 1e-3
		if (c == 'e' || c == 'E') && p.pos > start {
			next := p.pos + 1
			if next < len(p.input) && (p.input[next] == '+' || p.input[next] == '-') {
				next++
			}
			if next < len(p.input) && p.input[next] >= '0' && p.input[next] <= '9' {
				p.pos = next
				continue
			}
		}
		break
	}
	text := p.input[start:p.pos]
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Expression[T]{}, fmt.Errorf("smats: invalid number %q at offset %d", text, start)
	}
	return NewConstant(T(f)), nil
}

func (p *infixParser[T]) parseIdent() (Expression[T], error) {
	var none Expression[T]
	start := p.pos
	for p.pos < len(p.input) && (isIdentByte(p.input[p.pos]) || p.input[p.pos] >= '0' && p.input[p.pos] <= '9') {
		p.pos++
	}
	name := p.input[start:p.pos]
	switch name {
	case "pi":
		return Pi[T](), nil
	case "e":
		return E[T](), nil
	case "nan":
		return NaN[T](), nil
	case "pow":
		p.skipSpace()
		if p.peek() != '(' {
			return none, fmt.Errorf("smats: pow requires '(' at offset %d", p.pos)
		}
		p.pos++
		base, err := p.parseSum()
		if err != nil {
			return none, err
		}
		p.skipSpace()
		if p.peek() != ',' {
			return none, fmt.Errorf("smats: pow requires ',' at offset %d", p.pos)
		}
		p.pos++
		exp, err := p.parseSum()
		if err != nil {
			return none, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return none, fmt.Errorf("smats: missing ')' at offset %d", p.pos)
		}
		p.pos++
		return base.Pow(exp), nil
	}
	return NewVar[T](p.pool.Get(name)), nil
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}
