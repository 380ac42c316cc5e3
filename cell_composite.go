package smats

import (
	"fmt"
	"hash/maphash"
	"math"
	"strings"
)

// Term is one coefficient-weighted summand of an Add cell.
type Term[T Scalar] struct {
	Coeff T
	Expr  Expression[T]
}

// Factor is one base^exponent entry of a Mul cell.
type Factor[T Scalar] struct {
	Base     Expression[T]
	Exponent Expression[T]
}

// ---------------------------------------------------------------------------
// Add: constant + Σ coeff_i * term_i
// ---------------------------------------------------------------------------

// addCell keeps its terms sorted by the total order on expressions and never
// holds a zero coefficient; both invariants are established by the factory.
type addCell[T Scalar] struct {
	cellMeta
	constant T
	terms    []Term[T]
	vars     *Variables
}

func (c *addCell[T]) variables() Variables {
	if c.vars == nil {
		vars := NewVariables()
		for _, t := range c.terms {
			vars = vars.Plus(t.Expr.Variables())
		}
		c.vars = &vars
	}
	// Copied so callers cannot mutate the memo through the shared tree set.
	return NewVariables(c.vars.Slice()...)
}

func (c *addCell[T]) equalTo(o cell[T]) bool {
	sameKind[T](c, o)
	oc := o.(*addCell[T])
	if c.constant != oc.constant || len(c.terms) != len(oc.terms) {
		return false
	}
	for i := range c.terms {
		if c.terms[i].Coeff != oc.terms[i].Coeff || !c.terms[i].Expr.EqualTo(oc.terms[i].Expr) {
			return false
		}
	}
	return true
}

func (c *addCell[T]) less(o cell[T]) bool {
	sameKind[T](c, o)
	oc := o.(*addCell[T])
	if c.constant != oc.constant {
		return c.constant < oc.constant
	}
	n := len(c.terms)
	if len(oc.terms) < n {
		n = len(oc.terms)
	}
	for i := 0; i < n; i++ {
		if c.terms[i].Expr.Less(oc.terms[i].Expr) {
			return true
		}
		if oc.terms[i].Expr.Less(c.terms[i].Expr) {
			return false
		}
		if c.terms[i].Coeff != oc.terms[i].Coeff {
			return c.terms[i].Coeff < oc.terms[i].Coeff
		}
	}
	return len(c.terms) < len(oc.terms)
}

func (c *addCell[T]) evaluate(env *Environment[T]) (T, error) {
	acc := c.constant
	for _, t := range c.terms {
		v, err := t.Expr.Evaluate(env)
		if err != nil {
			var zero T
			return zero, err
		}
		acc += t.Coeff * v
	}
	return acc, nil
}

func (c *addCell[T]) expand() (Expression[T], error) {
	fac := newAddFactory[T]()
	fac.addConstant(c.constant)
	for _, t := range c.terms {
		te, err := t.Expr.Expand()
		if err != nil {
			return Expression[T]{}, err
		}
		scaled, err := expandMultiplication(NewConstant(t.Coeff), te)
		if err != nil {
			return Expression[T]{}, err
		}
		fac.addExpr(scaled)
	}
	return fac.build(), nil
}

func (c *addCell[T]) evaluatePartial(env *Environment[T]) (Expression[T], error) {
	fac := newAddFactory[T]()
	fac.addConstant(c.constant)
	for _, t := range c.terms {
		te, err := t.Expr.EvaluatePartial(env)
		if err != nil {
			return Expression[T]{}, err
		}
		fac.addExpr(NewConstant(t.Coeff).Mul(te))
	}
	return fac.build(), nil
}

func (c *addCell[T]) substitute(s Substitution[T]) (Expression[T], error) {
	fac := newAddFactory[T]()
	fac.addConstant(c.constant)
	for _, t := range c.terms {
		te, err := t.Expr.SubstituteAll(s)
		if err != nil {
			return Expression[T]{}, err
		}
		fac.addExpr(NewConstant(t.Coeff).Mul(te))
	}
	return fac.build(), nil
}

func (c *addCell[T]) differentiate(x Variable) (Expression[T], error) {
	fac := newAddFactory[T]()
	for _, t := range c.terms {
		d, err := t.Expr.Differentiate(x)
		if err != nil {
			return Expression[T]{}, err
		}
		fac.addExpr(NewConstant(t.Coeff).Mul(d))
	}
	return fac.build(), nil
}

func (c *addCell[T]) write(sb *strings.Builder) {
	sb.WriteByte('(')
	wrote := false
	if c.constant != 0 || len(c.terms) == 0 {
		fmt.Fprintf(sb, "%v", c.constant)
		wrote = true
	}
	for _, t := range c.terms {
		coeff := t.Coeff
		if wrote {
			if coeff < 0 {
				sb.WriteString(" - ")
				coeff = -coeff
			} else {
				sb.WriteString(" + ")
			}
		} else {
			if coeff < 0 {
				sb.WriteByte('-')
				coeff = -coeff
			}
			wrote = true
		}
		if coeff != 1 {
			fmt.Fprintf(sb, "%v * ", coeff)
		}
		t.Expr.c.write(sb)
	}
	sb.WriteByte(')')
}

func (c *addCell[T]) hashInto(h *maphash.Hash) error {
	writeHashByte(h, byte(KindAdd))
	writeHashUint64(h, math.Float64bits(float64(c.constant)))
	for _, t := range c.terms {
		writeHashUint64(h, math.Float64bits(float64(t.Coeff)))
		if err := t.Expr.c.hashInto(h); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mul: constant * Π base_i ^ exponent_i
// ---------------------------------------------------------------------------

// mulCell keeps its factors sorted by base and holds at most one entry per
// distinct base; no exponent is the constant zero. Established by the
// factory.
type mulCell[T Scalar] struct {
	cellMeta
	constant T
	factors  []Factor[T]
	vars     *Variables
}

func (c *mulCell[T]) variables() Variables {
	if c.vars == nil {
		vars := NewVariables()
		for _, f := range c.factors {
			vars = vars.Plus(f.Base.Variables()).Plus(f.Exponent.Variables())
		}
		c.vars = &vars
	}
	return NewVariables(c.vars.Slice()...)
}

func (c *mulCell[T]) equalTo(o cell[T]) bool {
	sameKind[T](c, o)
	oc := o.(*mulCell[T])
	if c.constant != oc.constant || len(c.factors) != len(oc.factors) {
		return false
	}
	for i := range c.factors {
		if !c.factors[i].Base.EqualTo(oc.factors[i].Base) || !c.factors[i].Exponent.EqualTo(oc.factors[i].Exponent) {
			return false
		}
	}
	return true
}

func (c *mulCell[T]) less(o cell[T]) bool {
	sameKind[T](c, o)
	oc := o.(*mulCell[T])
	if c.constant != oc.constant {
		return c.constant < oc.constant
	}
	n := len(c.factors)
	if len(oc.factors) < n {
		n = len(oc.factors)
	}
	for i := 0; i < n; i++ {
		if c.factors[i].Base.Less(oc.factors[i].Base) {
			return true
		}
		if oc.factors[i].Base.Less(c.factors[i].Base) {
			return false
		}
		if c.factors[i].Exponent.Less(oc.factors[i].Exponent) {
			return true
		}
		if oc.factors[i].Exponent.Less(c.factors[i].Exponent) {
			return false
		}
	}
	return len(c.factors) < len(oc.factors)
}

func (c *mulCell[T]) evaluate(env *Environment[T]) (T, error) {
	var zero T
	acc := c.constant
	for _, f := range c.factors {
		bv, err := f.Base.Evaluate(env)
		if err != nil {
			return zero, err
		}
		ev, err := f.Exponent.Evaluate(env)
		if err != nil {
			return zero, err
		}
		pv, err := powValue(bv, ev)
		if err != nil {
			return zero, err
		}
		acc *= pv
	}
	return acc, nil
}

func (c *mulCell[T]) expand() (Expression[T], error) {
	result := NewConstant(c.constant)
	for _, f := range c.factors {
		be, err := f.Base.Expand()
		if err != nil {
			return Expression[T]{}, err
		}
		ee, err := f.Exponent.Expand()
		if err != nil {
			return Expression[T]{}, err
		}
		pe, err := expandPow(be, ee)
		if err != nil {
			return Expression[T]{}, err
		}
		result, err = expandMultiplication(result, pe)
		if err != nil {
			return Expression[T]{}, err
		}
	}
	return result, nil
}

func (c *mulCell[T]) evaluatePartial(env *Environment[T]) (Expression[T], error) {
	result := NewConstant(c.constant)
	for _, f := range c.factors {
		be, err := f.Base.EvaluatePartial(env)
		if err != nil {
			return Expression[T]{}, err
		}
		ee, err := f.Exponent.EvaluatePartial(env)
		if err != nil {
			return Expression[T]{}, err
		}
		result = result.Mul(be.Pow(ee))
	}
	return result, nil
}

func (c *mulCell[T]) substitute(s Substitution[T]) (Expression[T], error) {
	result := NewConstant(c.constant)
	for _, f := range c.factors {
		be, err := f.Base.SubstituteAll(s)
		if err != nil {
			return Expression[T]{}, err
		}
		ee, err := f.Exponent.SubstituteAll(s)
		if err != nil {
			return Expression[T]{}, err
		}
		result = result.Mul(be.Pow(ee))
	}
	return result, nil
}

func (c *mulCell[T]) differentiate(Variable) (Expression[T], error) {
	return Expression[T]{}, &NotImplementedError{Op: "differentiation of multiplication expressions"}
}

func (c *mulCell[T]) write(sb *strings.Builder) {
	sb.WriteByte('(')
	wrote := false
	if c.constant != 1 || len(c.factors) == 0 {
		fmt.Fprintf(sb, "%v", c.constant)
		wrote = true
	}
	for _, f := range c.factors {
		if wrote {
			sb.WriteString(" * ")
		}
		wrote = true
		if f.Exponent.IsConstantValue(1) {
			f.Base.c.write(sb)
		} else {
			sb.WriteString("pow(")
			f.Base.c.write(sb)
			sb.WriteString(", ")
			f.Exponent.c.write(sb)
			sb.WriteByte(')')
		}
	}
	sb.WriteByte(')')
}

func (c *mulCell[T]) hashInto(h *maphash.Hash) error {
	writeHashByte(h, byte(KindMul))
	writeHashUint64(h, math.Float64bits(float64(c.constant)))
	for _, f := range c.factors {
		if err := f.Base.c.hashInto(h); err != nil {
			return err
		}
		if err := f.Exponent.c.hashInto(h); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Pow: base ^ exponent
// ---------------------------------------------------------------------------

type powCell[T Scalar] struct {
	cellMeta
	base     Expression[T]
	exponent Expression[T]
	vars     *Variables
}

func newPowCell[T Scalar](base, exponent Expression[T]) *powCell[T] {
	poly := base.IsPolynomial() && isNonNegativeIntegerConstant(exponent)
	return &powCell[T]{cellMeta: cellMeta{k: KindPow, polynomial: poly}, base: base, exponent: exponent}
}

func (c *powCell[T]) variables() Variables {
	if c.vars == nil {
		vars := c.base.Variables().Plus(c.exponent.Variables())
		c.vars = &vars
	}
	return NewVariables(c.vars.Slice()...)
}

func (c *powCell[T]) equalTo(o cell[T]) bool {
	sameKind[T](c, o)
	oc := o.(*powCell[T])
	return c.base.EqualTo(oc.base) && c.exponent.EqualTo(oc.exponent)
}

func (c *powCell[T]) less(o cell[T]) bool {
	sameKind[T](c, o)
	oc := o.(*powCell[T])
	if c.base.Less(oc.base) {
		return true
	}
	if oc.base.Less(c.base) {
		return false
	}
	return c.exponent.Less(oc.exponent)
}

func (c *powCell[T]) evaluate(env *Environment[T]) (T, error) {
	var zero T
	bv, err := c.base.Evaluate(env)
	if err != nil {
		return zero, err
	}
	ev, err := c.exponent.Evaluate(env)
	if err != nil {
		return zero, err
	}
	return powValue(bv, ev)
}

func (c *powCell[T]) expand() (Expression[T], error) {
	be, err := c.base.Expand()
	if err != nil {
		return Expression[T]{}, err
	}
	ee, err := c.exponent.Expand()
	if err != nil {
		return Expression[T]{}, err
	}
	return expandPow(be, ee)
}

func (c *powCell[T]) evaluatePartial(env *Environment[T]) (Expression[T], error) {
	be, err := c.base.EvaluatePartial(env)
	if err != nil {
		return Expression[T]{}, err
	}
	ee, err := c.exponent.EvaluatePartial(env)
	if err != nil {
		return Expression[T]{}, err
	}
	return be.Pow(ee), nil
}

func (c *powCell[T]) substitute(s Substitution[T]) (Expression[T], error) {
	be, err := c.base.SubstituteAll(s)
	if err != nil {
		return Expression[T]{}, err
	}
	ee, err := c.exponent.SubstituteAll(s)
	if err != nil {
		return Expression[T]{}, err
	}
	return be.Pow(ee), nil
}

func (c *powCell[T]) differentiate(Variable) (Expression[T], error) {
	return Expression[T]{}, &NotImplementedError{Op: "differentiation of power expressions"}
}

func (c *powCell[T]) write(sb *strings.Builder) {
	sb.WriteString("pow(")
	c.base.c.write(sb)
	sb.WriteString(", ")
	c.exponent.c.write(sb)
	sb.WriteByte(')')
}

func (c *powCell[T]) hashInto(h *maphash.Hash) error {
	writeHashByte(h, byte(KindPow))
	if err := c.base.c.hashInto(h); err != nil {
		return err
	}
	return c.exponent.c.hashInto(h)
}

// ---------------------------------------------------------------------------
// Div: numerator / denominator
// ---------------------------------------------------------------------------

type divCell[T Scalar] struct {
	cellMeta
	num  Expression[T]
	den  Expression[T]
	vars *Variables
}

func newDivCell[T Scalar](num, den Expression[T]) *divCell[T] {
	// Division is not tracked as polynomial-preserving.
	return &divCell[T]{cellMeta: cellMeta{k: KindDiv}, num: num, den: den}
}

func (c *divCell[T]) variables() Variables {
	if c.vars == nil {
		vars := c.num.Variables().Plus(c.den.Variables())
		c.vars = &vars
	}
	return NewVariables(c.vars.Slice()...)
}

func (c *divCell[T]) equalTo(o cell[T]) bool {
	sameKind[T](c, o)
	oc := o.(*divCell[T])
	return c.num.EqualTo(oc.num) && c.den.EqualTo(oc.den)
}

func (c *divCell[T]) less(o cell[T]) bool {
	sameKind[T](c, o)
	oc := o.(*divCell[T])
	if c.num.Less(oc.num) {
		return true
	}
	if oc.num.Less(c.num) {
		return false
	}
	return c.den.Less(oc.den)
}

func (c *divCell[T]) evaluate(env *Environment[T]) (T, error) {
	var zero T
	nv, err := c.num.Evaluate(env)
	if err != nil {
		return zero, err
	}
	dv, err := c.den.Evaluate(env)
	if err != nil {
		return zero, err
	}
	if dv == 0 {
		return zero, &DivisionByZeroError{
			Numerator:     float64(nv),
			Denominator:   float64(dv),
			Indeterminate: nv == 0,
		}
	}
	return nv / dv, nil
}

func (c *divCell[T]) expand() (Expression[T], error) {
	return Expression[T]{}, &NotImplementedError{Op: "expansion of division expressions"}
}

func (c *divCell[T]) evaluatePartial(env *Environment[T]) (Expression[T], error) {
	ne, err := c.num.EvaluatePartial(env)
	if err != nil {
		return Expression[T]{}, err
	}
	de, err := c.den.EvaluatePartial(env)
	if err != nil {
		return Expression[T]{}, err
	}
	return ne.Div(de), nil
}

func (c *divCell[T]) substitute(s Substitution[T]) (Expression[T], error) {
	ne, err := c.num.SubstituteAll(s)
	if err != nil {
		return Expression[T]{}, err
	}
	de, err := c.den.SubstituteAll(s)
	if err != nil {
		return Expression[T]{}, err
	}
	return ne.Div(de), nil
}

func (c *divCell[T]) differentiate(x Variable) (Expression[T], error) {
	// Quotient rule: (f/g)' = (f'g - fg') / g^2.
	dn, err := c.num.Differentiate(x)
	if err != nil {
		return Expression[T]{}, err
	}
	dd, err := c.den.Differentiate(x)
	if err != nil {
		return Expression[T]{}, err
	}
	num := dn.Mul(c.den).Sub(c.num.Mul(dd))
	return num.Div(c.den.Pow(NewConstant[T](2))), nil
}

func (c *divCell[T]) write(sb *strings.Builder) {
	sb.WriteByte('(')
	c.num.c.write(sb)
	sb.WriteString(" / ")
	c.den.c.write(sb)
	sb.WriteByte(')')
}

func (c *divCell[T]) hashInto(h *maphash.Hash) error {
	writeHashByte(h, byte(KindDiv))
	if err := c.num.c.hashInto(h); err != nil {
		return err
	}
	return c.den.c.hashInto(h)
}

// ---------------------------------------------------------------------------
// numeric pow
// ---------------------------------------------------------------------------

// powValue computes base^exp, enforcing the real-domain check for float
// scalars. Integer scalars are exempt: every integer exponentiation is
// defined for the purposes of this engine.
func powValue[T Scalar](base, exp T) (T, error) {
	var zero T
	if !isExactType[T]() {
		fb, fe := float64(base), float64(exp)
		if fb < 0 && !math.IsInf(fb, 0) && !math.IsInf(fe, 0) && !math.IsNaN(fe) && fe != math.Trunc(fe) {
			return zero, &DomainError{Base: fb, Exponent: fe}
		}
		return T(math.Pow(fb, fe)), nil
	}
	n := int64(exp)
	neg := n < 0
	if neg {
		n = -n
	}
	acc := T(1)
	for i := int64(0); i < n; i++ {
		acc *= base
	}
	if !neg {
		return acc, nil
	}
	if acc == 0 {
		return zero, &DivisionByZeroError{Numerator: 1, Denominator: 0}
	}
	return T(1) / acc, nil
}

func isNonNegativeIntegerConstant[T Scalar](e Expression[T]) bool {
	if !e.IsConstant() {
		return false
	}
	v := e.Constant()
	return v >= 0 && isIntegerValue(v)
}
