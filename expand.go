package smats

// expandMultiplication returns the expanded product of two already-expanded
// expressions, distributing over addition on either side.
func expandMultiplication[T Scalar](a, b Expression[T]) (Expression[T], error) {
	if ac, ok := a.resolve().(*addCell[T]); ok {
		fac := newAddFactory[T]()
		p, err := expandMultiplication(NewConstant(ac.constant), b)
		if err != nil {
			return Expression[T]{}, err
		}
		fac.addExpr(p)
		for _, t := range ac.terms {
			p, err := expandMultiplication(NewConstant(t.Coeff).Mul(t.Expr), b)
			if err != nil {
				return Expression[T]{}, err
			}
			fac.addExpr(p)
		}
		return fac.build(), nil
	}
	if bc, ok := b.resolve().(*addCell[T]); ok {
		fac := newAddFactory[T]()
		p, err := expandMultiplication(a, NewConstant(bc.constant))
		if err != nil {
			return Expression[T]{}, err
		}
		fac.addExpr(p)
		for _, t := range bc.terms {
			p, err := expandMultiplication(a, NewConstant(t.Coeff).Mul(t.Expr))
			if err != nil {
				return Expression[T]{}, err
			}
			fac.addExpr(p)
		}
		return fac.build(), nil
	}
	return a.Mul(b), nil
}

// expandPow expands base^exponent where both sides are already expanded. A
// sum raised to a positive integer constant distributes by squaring;
// everything else stays a power.
func expandPow[T Scalar](base, exponent Expression[T]) (Expression[T], error) {
	_, baseIsAdd := base.resolve().(*addCell[T])
	ec, expIsConst := exponent.resolve().(*constantCell[T])
	if !baseIsAdd || !expIsConst {
		return base.Pow(exponent), nil
	}
	if !isIntegerValue(ec.value) || ec.value < 1 {
		return base.Pow(exponent), nil
	}
	return expandPowSquaring(base, int64(ec.value))
}

func expandPowSquaring[T Scalar](base Expression[T], n int64) (Expression[T], error) {
	if n == 1 {
		return base, nil
	}
	half, err := expandPowSquaring(base, n/2)
	if err != nil {
		return Expression[T]{}, err
	}
	sq, err := expandMultiplication(half, half)
	if err != nil {
		return Expression[T]{}, err
	}
	if n%2 == 0 {
		return sq, nil
	}
	return expandMultiplication(sq, base)
}
