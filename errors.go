package smats

import "fmt"

// The recoverable failure modes of evaluate, expand, substitute and
// differentiate are reported as typed errors so callers can branch on them
// with errors.As. Programmer errors (wrong-kind accessors, dummy variables
// in environments) panic instead; see the accessor documentation.

// UnboundVariableError reports an evaluation that reached a variable not
// bound by the environment.
type UnboundVariableError struct {
	Variable Variable
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("smats: variable %s is not bound in the environment", e.Variable)
}

// DomainError reports pow applied to a negative base with a non-integer
// finite exponent, which is undefined over the reals. Integer scalar types
// never produce this error.
type DomainError struct {
	Base     float64
	Exponent float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("smats: pow(%v, %v) is undefined: negative base with non-integer exponent", e.Base, e.Exponent)
}

// DivisionByZeroError reports a division whose denominator evaluated to an
// exact zero. Indeterminate reports the 0/0 case.
type DivisionByZeroError struct {
	Numerator     float64
	Denominator   float64
	Indeterminate bool
}

func (e *DivisionByZeroError) Error() string {
	if e.Indeterminate {
		return fmt.Sprintf("smats: indeterminate division %v / %v", e.Numerator, e.Denominator)
	}
	return fmt.Sprintf("smats: division by zero: %v / %v", e.Numerator, e.Denominator)
}

// NaNError reports an operation applied to the NaN sentinel cell. NaN cells
// are inert placeholders; any reachable use of one is an error.
type NaNError struct {
	Op string
}

func (e *NaNError) Error() string {
	return fmt.Sprintf("smats: cannot %s a NaN expression", e.Op)
}

// NotImplementedError reports one of the documented gaps: differentiation of
// Mul and Pow cells, and expansion of Div cells. These fail loudly rather
// than return a wrong result.
type NotImplementedError struct {
	Op string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("smats: %s is not implemented", e.Op)
}
