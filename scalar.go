package smats

import "math"

// Scalar is the set of numeric types an Expression can be instantiated over.
// Integer scalars are exempt from the pow domain check (see evaluate on Pow
// cells); float scalars get an epsilon-tolerant evaluation contract.
type Scalar interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// isIntegerValue reports whether v is representable as an exact integer.
// Exponent handling (pow folding, polynomial checks, expansion by squaring)
// only applies to integral exponents.
func isIntegerValue[T Scalar](v T) bool {
	f := float64(v)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return false
	}
	return f == math.Trunc(f)
}

// isExactType reports whether T is an integer scalar type. The probe relies
// on 0.5 truncating to zero under an integer conversion.
func isExactType[T Scalar]() bool {
	h := 0.5
	return T(h) == T(0)
}

// isNaNValue reports whether v is a floating NaN. Always false for integer
// scalars.
func isNaNValue[T Scalar](v T) bool {
	return math.IsNaN(float64(v))
}

// piValue is π narrowed to T (3 for integer scalars).
func piValue[T Scalar]() T {
	v := math.Pi
	return T(v)
}

// eValue is Euler's number narrowed to T.
func eValue[T Scalar]() T {
	v := math.E
	return T(v)
}
