package smats

import "sort"

// addFactory accumulates a sum as constant + Σ coeff_i * term_i while
// collecting like terms. Terms stay sorted by the total order on expressions
// and no coefficient is ever zero.
type addFactory[T Scalar] struct {
	constant T
	terms    []Term[T]
}

func newAddFactory[T Scalar]() *addFactory[T] {
	return &addFactory[T]{}
}

func (f *addFactory[T]) addConstant(c T) {
	f.constant += c
}

// addTerm merges coeff*e into the running sum. e must not be a constant or
// an addition; addExpr handles the decomposition.
func (f *addFactory[T]) addTerm(coeff T, e Expression[T]) {
	if coeff == 0 {
		return
	}
	i := sort.Search(len(f.terms), func(i int) bool { return !f.terms[i].Expr.Less(e) })
	if i < len(f.terms) && f.terms[i].Expr.EqualTo(e) {
		f.terms[i].Coeff += coeff
		if f.terms[i].Coeff == 0 {
			f.terms = append(f.terms[:i], f.terms[i+1:]...)
		}
		return
	}
	f.terms = append(f.terms, Term[T]{})
	copy(f.terms[i+1:], f.terms[i:])
	f.terms[i] = Term[T]{Coeff: coeff, Expr: e}
}

// addExpr decomposes e and folds it into the running sum. Nested additions
// flatten; multiplications with a non-unit constant split into a coefficient
// and a unit-constant product so that 2*x and 3*x collect into 5*x.
func (f *addFactory[T]) addExpr(e Expression[T]) {
	switch c := e.resolve().(type) {
	case *constantCell[T]:
		f.addConstant(c.value)
	case *addCell[T]:
		f.addConstant(c.constant)
		for _, t := range c.terms {
			f.addTerm(t.Coeff, t.Expr)
		}
	case *mulCell[T]:
		if c.constant != 1 {
			mf := newMulFactory[T]()
			for _, fct := range c.factors {
				mf.mulFactor(fct.Base, fct.Exponent)
			}
			f.addTerm(c.constant, mf.build())
			return
		}
		f.addTerm(1, e)
	default:
		f.addTerm(1, e)
	}
}

func (f *addFactory[T]) negate() {
	f.constant = -f.constant
	for i := range f.terms {
		f.terms[i].Coeff = -f.terms[i].Coeff
	}
}

func (f *addFactory[T]) build() Expression[T] {
	if len(f.terms) == 0 {
		return NewConstant(f.constant)
	}
	if f.constant == 0 && len(f.terms) == 1 {
		t := f.terms[0]
		if t.Coeff == 1 {
			return t.Expr
		}
		mf := newMulFactory[T]()
		mf.mulConstant(t.Coeff)
		mf.mulExpr(t.Expr)
		return mf.build()
	}
	terms := make([]Term[T], len(f.terms))
	copy(terms, f.terms)
	poly := true
	for _, t := range terms {
		if !t.Expr.IsPolynomial() {
			poly = false
			break
		}
	}
	return Expression[T]{c: &addCell[T]{
		cellMeta: cellMeta{k: KindAdd, polynomial: poly},
		constant: f.constant,
		terms:    terms,
	}}
}

// mulFactory accumulates a product as constant * Π base_i ^ exponent_i,
// combining factors that share a base. Factors stay sorted by base and no
// exponent is the constant zero.
type mulFactory[T Scalar] struct {
	constant T
	factors  []Factor[T]
}

func newMulFactory[T Scalar]() *mulFactory[T] {
	return &mulFactory[T]{constant: 1}
}

func (f *mulFactory[T]) mulConstant(c T) {
	f.constant *= c
}

// mulFactor merges base^exponent into the running product. Factors with the
// same base combine by exponent addition; an entry whose exponent collapses
// to zero is dropped.
func (f *mulFactory[T]) mulFactor(base, exponent Expression[T]) {
	if exponent.IsConstantValue(0) {
		return
	}
	i := sort.Search(len(f.factors), func(i int) bool { return !f.factors[i].Base.Less(base) })
	if i < len(f.factors) && f.factors[i].Base.EqualTo(base) {
		sum := f.factors[i].Exponent.Add(exponent)
		if sum.IsConstantValue(0) {
			f.factors = append(f.factors[:i], f.factors[i+1:]...)
			return
		}
		f.factors[i].Exponent = sum
		return
	}
	f.factors = append(f.factors, Factor[T]{})
	copy(f.factors[i+1:], f.factors[i:])
	f.factors[i] = Factor[T]{Base: base, Exponent: exponent}
}

// mulExpr decomposes e and folds it into the running product. Nested
// multiplications flatten; powers contribute their base and exponent
// directly.
func (f *mulFactory[T]) mulExpr(e Expression[T]) {
	switch c := e.resolve().(type) {
	case *constantCell[T]:
		f.mulConstant(c.value)
	case *mulCell[T]:
		f.mulConstant(c.constant)
		for _, fct := range c.factors {
			f.mulFactor(fct.Base, fct.Exponent)
		}
	case *powCell[T]:
		f.mulFactor(c.base, c.exponent)
	default:
		f.mulFactor(e, One[T]())
	}
}

func (f *mulFactory[T]) negate() {
	f.constant = -f.constant
}

func (f *mulFactory[T]) build() Expression[T] {
	if f.constant == 0 {
		return Zero[T]()
	}
	if len(f.factors) == 0 {
		return NewConstant(f.constant)
	}
	if f.constant == 1 && len(f.factors) == 1 {
		fct := f.factors[0]
		if fct.Exponent.IsConstantValue(1) {
			return fct.Base
		}
		return fct.Base.Pow(fct.Exponent)
	}
	factors := make([]Factor[T], len(f.factors))
	copy(factors, f.factors)
	poly := true
	for _, fct := range factors {
		if !fct.Base.IsPolynomial() || !isNonNegativeIntegerConstant(fct.Exponent) {
			poly = false
			break
		}
	}
	return Expression[T]{c: &mulCell[T]{
		cellMeta: cellMeta{k: KindMul, polynomial: poly},
		constant: f.constant,
		factors:  factors,
	}}
}
