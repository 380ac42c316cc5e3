package smats

// Kind identifies the concrete representation behind an Expression.
//
// The numeric order of the constants is load-bearing: it is the primary key
// of the total order on expressions (see Expression.Less), which in turn
// fixes the canonical ordering of terms inside Add and Mul cells.
type Kind uint8

const (
	// KindConstant is a scalar constant leaf.
	KindConstant Kind = iota
	// KindVar is a variable leaf.
	KindVar
	// KindAdd is a sum: constant + Σ coeff_i * term_i.
	KindAdd
	// KindMul is a product: constant * Π base_i ^ exponent_i.
	KindMul
	// KindDiv is a quotient of two expressions.
	KindDiv
	// KindPow is base ^ exponent.
	KindPow
	// KindNaN is the inert not-a-number sentinel.
	KindNaN
)

func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindVar:
		return "var"
	case KindAdd:
		return "add"
	case KindMul:
		return "mul"
	case KindDiv:
		return "div"
	case KindPow:
		return "pow"
	case KindNaN:
		return "nan"
	}
	return "unknown"
}
