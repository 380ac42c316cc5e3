// Package smats implements immutable symbolic expressions over a generic
// numeric scalar. Expressions are built from variables and constants with
// the usual arithmetic operators, simplify eagerly at construction time, and
// support evaluation, substitution, expansion, and partial differentiation.
package smats

import (
	"hash/maphash"
	"strings"
)

// Expression is an immutable symbolic expression tree. The zero value is the
// constant zero. Expressions share structure freely; none of the operations
// mutate their receiver.
type Expression[T Scalar] struct {
	c cell[T]
}

func (e Expression[T]) resolve() cell[T] {
	if e.c == nil {
		return Zero[T]().c
	}
	return e.c
}

// NewConstant returns the expression for the value v. A floating NaN value
// becomes the NaN sentinel expression.
func NewConstant[T Scalar](v T) Expression[T] {
	if isNaNValue(v) {
		return NaN[T]()
	}
	if v == 0 {
		return Zero[T]()
	}
	if v == 1 {
		return One[T]()
	}
	return Expression[T]{c: newConstantCell(v)}
}

// NewVar returns the expression for the variable v. Panics if v is a dummy
// or a boolean variable.
func NewVar[T Scalar](v Variable) Expression[T] {
	return Expression[T]{c: newVarCell[T](v)}
}

// Kind reports the variant of the outermost cell.
func (e Expression[T]) Kind() Kind { return e.resolve().kind() }

func constantValueOf[T Scalar](c cell[T]) (T, bool) {
	cc, ok := c.(*constantCell[T])
	if !ok {
		var zero T
		return zero, false
	}
	return cc.value, true
}

// ---------------------------------------------------------------------------
// Arithmetic
// ---------------------------------------------------------------------------

// Add returns e + o in simplified form. Zero operands vanish, constants
// fold, and like terms collect.
func (e Expression[T]) Add(o Expression[T]) Expression[T] {
	lhs, rhs := e.resolve(), o.resolve()
	if v, ok := constantValueOf(lhs); ok && v == 0 {
		return Expression[T]{c: rhs}
	}
	if v, ok := constantValueOf(rhs); ok && v == 0 {
		return Expression[T]{c: lhs}
	}
	if lv, lok := constantValueOf(lhs); lok {
		if rv, rok := constantValueOf(rhs); rok {
			return NewConstant(lv + rv)
		}
	}
	fac := newAddFactory[T]()
	fac.addExpr(Expression[T]{c: lhs})
	fac.addExpr(Expression[T]{c: rhs})
	return fac.build()
}

// Sub returns e - o in simplified form.
func (e Expression[T]) Sub(o Expression[T]) Expression[T] {
	return e.Add(o.Neg())
}

// Neg returns -e.
func (e Expression[T]) Neg() Expression[T] {
	return NewConstant[T](-1).Mul(e)
}

// Mul returns e * o in simplified form. Unit operands vanish, a zero operand
// collapses the product, constants fold, and factors with equal bases merge
// by exponent addition.
func (e Expression[T]) Mul(o Expression[T]) Expression[T] {
	lhs, rhs := e.resolve(), o.resolve()
	if v, ok := constantValueOf(lhs); ok && v == 1 {
		return Expression[T]{c: rhs}
	}
	if v, ok := constantValueOf(rhs); ok && v == 1 {
		return Expression[T]{c: lhs}
	}
	if v, ok := constantValueOf(lhs); ok && v == 0 {
		return Zero[T]()
	}
	if v, ok := constantValueOf(rhs); ok && v == 0 {
		return Zero[T]()
	}
	lv, lok := constantValueOf(lhs)
	rv, rok := constantValueOf(rhs)
	if lok && rok {
		return NewConstant(lv * rv)
	}
	// -1 * (a + b) = -a - b and -1 * (c * x) = -c * x.
	if lok && lv == -1 {
		if negated, ok := negateCell[T](rhs); ok {
			return negated
		}
	}
	if rok && rv == -1 {
		if negated, ok := negateCell[T](lhs); ok {
			return negated
		}
	}
	if lc, isDiv := lhs.(*divCell[T]); isDiv {
		if rc, ok := rhs.(*divCell[T]); ok {
			// (a/b) * (c/d) = (a*c) / (b*d)
			return lc.num.Mul(rc.num).Div(lc.den.Mul(rc.den))
		}
		if _, ok := constantValueOf(lc.num.resolve()); ok {
			// (c/b) * x = (c*x) / b when the numerator is a constant
			return lc.num.Mul(Expression[T]{c: rhs}).Div(lc.den)
		}
	}
	if rc, isDiv := rhs.(*divCell[T]); isDiv {
		if _, ok := constantValueOf(rc.num.resolve()); ok {
			return Expression[T]{c: lhs}.Mul(rc.num).Div(rc.den)
		}
	}
	fac := newMulFactory[T]()
	fac.mulExpr(Expression[T]{c: lhs})
	fac.mulExpr(Expression[T]{c: rhs})
	return fac.build()
}

func negateCell[T Scalar](c cell[T]) (Expression[T], bool) {
	switch c := c.(type) {
	case *addCell[T]:
		fac := newAddFactory[T]()
		fac.constant = c.constant
		fac.terms = append([]Term[T](nil), c.terms...)
		fac.negate()
		return fac.build(), true
	case *mulCell[T]:
		fac := newMulFactory[T]()
		fac.constant = c.constant
		fac.factors = append([]Factor[T](nil), c.factors...)
		fac.negate()
		return fac.build(), true
	}
	return Expression[T]{}, false
}

// Div returns e / o. Division by the constant one is the identity; division
// by the constant zero yields the NaN sentinel, whose evaluation reports a
// DivisionByZeroError.
func (e Expression[T]) Div(o Expression[T]) Expression[T] {
	lhs, rhs := e.resolve(), o.resolve()
	if rv, ok := constantValueOf(rhs); ok {
		if rv == 1 {
			return Expression[T]{c: lhs}
		}
		if rv == 0 {
			return NaN[T]()
		}
		if lv, lok := constantValueOf(lhs); lok {
			return NewConstant(lv / rv)
		}
	}
	if lv, ok := constantValueOf(lhs); ok && lv == 0 {
		return Zero[T]()
	}
	return Expression[T]{c: newDivCell(Expression[T]{c: lhs}, Expression[T]{c: rhs})}
}

// Pow returns e ^ o. Constant folding is attempted when both sides are
// constants; a fold that would violate the real domain is left symbolic so
// the error surfaces at evaluation. Nested powers with integer constant
// exponents combine: pow(pow(b, n), m) = pow(b, n*m).
func (e Expression[T]) Pow(o Expression[T]) Expression[T] {
	base, exp := e.resolve(), o.resolve()
	if v, ok := constantValueOf(exp); ok {
		if v == 0 {
			return One[T]()
		}
		if v == 1 {
			return Expression[T]{c: base}
		}
		if bv, bok := constantValueOf(base); bok {
			if pv, err := powValue(bv, v); err == nil {
				return NewConstant(pv)
			}
		}
		if isIntegerValue(v) {
			if pc, ok := base.(*powCell[T]); ok {
				if iv, iok := constantValueOf(pc.exponent.resolve()); iok && isIntegerValue(iv) {
					return pc.base.Pow(NewConstant(iv * v))
				}
			}
		}
	}
	return Expression[T]{c: newPowCell(Expression[T]{c: base}, Expression[T]{c: exp})}
}

// ---------------------------------------------------------------------------
// Ordering and equality
// ---------------------------------------------------------------------------

// EqualTo reports structural equality. Extensionally equal expressions with
// different structure, such as (x+y)*z and x*z + y*z, compare unequal. NaN
// expressions follow IEEE semantics and never compare equal, not even to
// themselves.
func (e Expression[T]) EqualTo(o Expression[T]) bool {
	lhs, rhs := e.resolve(), o.resolve()
	if lhs == rhs {
		return lhs.kind() != KindNaN
	}
	if lhs.kind() != rhs.kind() {
		return false
	}
	return lhs.equalTo(rhs)
}

// Less reports the total order used for canonical term and factor ordering.
// Expressions of different kinds order by kind.
func (e Expression[T]) Less(o Expression[T]) bool {
	lhs, rhs := e.resolve(), o.resolve()
	if lhs == rhs {
		return false
	}
	if lhs.kind() != rhs.kind() {
		return lhs.kind() < rhs.kind()
	}
	return lhs.less(rhs)
}

// ---------------------------------------------------------------------------
// Predicates and accessors
// ---------------------------------------------------------------------------

// IsConstant reports whether e is a constant cell.
func (e Expression[T]) IsConstant() bool { return e.Kind() == KindConstant }

// IsConstantValue reports whether e is the constant v.
func (e Expression[T]) IsConstantValue(v T) bool {
	cv, ok := constantValueOf(e.resolve())
	return ok && cv == v
}

// IsVariable reports whether e is a single variable.
func (e Expression[T]) IsVariable() bool { return e.Kind() == KindVar }

// IsAddition reports whether e is an addition cell.
func (e Expression[T]) IsAddition() bool { return e.Kind() == KindAdd }

// IsMultiplication reports whether e is a multiplication cell.
func (e Expression[T]) IsMultiplication() bool { return e.Kind() == KindMul }

// IsDivision reports whether e is a division cell.
func (e Expression[T]) IsDivision() bool { return e.Kind() == KindDiv }

// IsPow reports whether e is a power cell.
func (e Expression[T]) IsPow() bool { return e.Kind() == KindPow }

// IsNaN reports whether e is the NaN sentinel.
func (e Expression[T]) IsNaN() bool { return e.Kind() == KindNaN }

// IsLeaf reports whether e has no subexpressions.
func (e Expression[T]) IsLeaf() bool {
	switch e.Kind() {
	case KindConstant, KindVar, KindNaN:
		return true
	}
	return false
}

// IsPolynomial reports whether e is a polynomial over its variables.
func (e Expression[T]) IsPolynomial() bool { return e.resolve().isPolynomial() }

// IsExpanded reports whether e is known to be in expanded form. A false
// result only means the expansion has not been computed.
func (e Expression[T]) IsExpanded() bool { return e.resolve().isExpanded() }

// Constant returns the value of a constant expression. Panics otherwise.
func (e Expression[T]) Constant() T {
	v, ok := constantValueOf(e.resolve())
	if !ok {
		panic("smats: Constant called on a non-constant expression " + e.String())
	}
	return v
}

// VariableOf returns the variable of a variable expression. Panics
// otherwise.
func (e Expression[T]) VariableOf() Variable {
	c, ok := e.resolve().(*varCell[T])
	if !ok {
		panic("smats: VariableOf called on a non-variable expression " + e.String())
	}
	return c.v
}

// Terms returns the constant and the coefficient-weighted terms of an
// addition. The slice is a copy. Panics if e is not an addition.
func (e Expression[T]) Terms() (T, []Term[T]) {
	c, ok := e.resolve().(*addCell[T])
	if !ok {
		panic("smats: Terms called on a non-addition expression " + e.String())
	}
	return c.constant, append([]Term[T](nil), c.terms...)
}

// Factors returns the constant and the base^exponent factors of a
// multiplication. The slice is a copy. Panics if e is not a multiplication.
func (e Expression[T]) Factors() (T, []Factor[T]) {
	c, ok := e.resolve().(*mulCell[T])
	if !ok {
		panic("smats: Factors called on a non-multiplication expression " + e.String())
	}
	return c.constant, append([]Factor[T](nil), c.factors...)
}

// Lhs returns the first argument of a power or division cell. Panics
// otherwise.
func (e Expression[T]) Lhs() Expression[T] {
	switch c := e.resolve().(type) {
	case *powCell[T]:
		return c.base
	case *divCell[T]:
		return c.num
	}
	panic("smats: Lhs called on expression " + e.String())
}

// Rhs returns the second argument of a power or division cell. Panics
// otherwise.
func (e Expression[T]) Rhs() Expression[T] {
	switch c := e.resolve().(type) {
	case *powCell[T]:
		return c.exponent
	case *divCell[T]:
		return c.den
	}
	panic("smats: Rhs called on expression " + e.String())
}

// Variables returns the set of variables occurring in e.
func (e Expression[T]) Variables() Variables { return e.resolve().variables() }

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Evaluate computes the value of e under the bindings in env. A nil env is
// treated as empty. Evaluation fails with UnboundVariableError for a missing
// binding, DomainError or DivisionByZeroError for undefined arithmetic, and
// NaNError if e contains the NaN sentinel.
func (e Expression[T]) Evaluate(env *Environment[T]) (T, error) {
	return e.resolve().evaluate(env)
}

// EvaluatePartial substitutes the variables bound in env with their values
// and simplifies. Unbound variables remain symbolic.
func (e Expression[T]) EvaluatePartial(env *Environment[T]) (Expression[T], error) {
	return e.resolve().evaluatePartial(env)
}

// Expand rewrites e into expanded form, distributing multiplication over
// addition and expanding integer powers of sums. The result is marked so
// repeated expansion returns immediately.
func (e Expression[T]) Expand() (Expression[T], error) {
	c := e.resolve()
	if c.isExpanded() {
		return Expression[T]{c: c}, nil
	}
	result, err := c.expand()
	if err != nil {
		return Expression[T]{}, err
	}
	result.resolve().setExpanded()
	return result, nil
}

// Substitute replaces every occurrence of v in e with repl.
func (e Expression[T]) Substitute(v Variable, repl Expression[T]) (Expression[T], error) {
	return e.SubstituteAll(Substitution[T]{v: repl})
}

// SubstituteAll performs a simultaneous substitution: every variable is
// replaced against the original expression, so substituting {x: y, y: x}
// into x+y yields y+x rather than 2x. Panics if s contains a dummy
// variable.
func (e Expression[T]) SubstituteAll(s Substitution[T]) (Expression[T], error) {
	if len(s) == 0 {
		return Expression[T]{c: e.resolve()}, nil
	}
	for v := range s {
		if v.IsDummy() {
			panic("smats: cannot substitute a dummy variable")
		}
	}
	return e.resolve().substitute(s)
}

// Differentiate returns the partial derivative of e with respect to x.
// Derivatives of multiplication and power cells are not implemented and
// report NotImplementedError. Panics if x is a dummy variable.
func (e Expression[T]) Differentiate(x Variable) (Expression[T], error) {
	if x.IsDummy() {
		panic("smats: cannot differentiate with respect to a dummy variable")
	}
	return e.resolve().differentiate(x)
}

// Hash writes a structural hash of e using the given seed. Hashing the NaN
// sentinel fails with NaNError.
func (e Expression[T]) Hash(seed maphash.Seed) (uint64, error) {
	var h maphash.Hash
	h.SetSeed(seed)
	if err := e.resolve().hashInto(&h); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// String renders e in a fully parenthesized infix form, with powers shown as
// pow(base, exponent).
func (e Expression[T]) String() string {
	var sb strings.Builder
	e.resolve().write(&sb)
	return sb.String()
}
