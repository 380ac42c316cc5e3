package smats

import (
	"strings"

	set "github.com/hashicorp/go-set/v3"
)

// Variables is an ordered set of variables, ordered by variable ID. It is
// the currency of free-variable queries: Expression.Variables produces one
// and the set algebra below (union, difference, subset checks) operates on
// them.
//
// The zero value is not usable; construct with NewVariables.
type Variables struct {
	s *set.TreeSet[Variable]
}

// NewVariables builds a set from the given variables.
func NewVariables(vars ...Variable) Variables {
	v := Variables{s: set.NewTreeSet[Variable](compareVariables)}
	for _, va := range vars {
		v.s.Insert(va)
	}
	return v
}

// Size returns the number of variables in the set.
func (v Variables) Size() int { return v.s.Size() }

// Empty reports whether the set has no variables.
func (v Variables) Empty() bool { return v.s.Empty() }

// Insert adds a variable to the set.
func (v Variables) Insert(va Variable) { v.s.Insert(va) }

// Erase removes a variable, reporting whether it was present.
func (v Variables) Erase(va Variable) bool { return v.s.Remove(va) }

// Contains reports membership.
func (v Variables) Contains(va Variable) bool { return v.s.Contains(va) }

// Slice returns the variables in ascending ID order.
func (v Variables) Slice() []Variable { return v.s.Slice() }

// Plus returns the set union v ∪ o.
func (v Variables) Plus(o Variables) Variables {
	out := NewVariables(v.Slice()...)
	for _, va := range o.Slice() {
		out.s.Insert(va)
	}
	return out
}

// Minus returns the set difference v \ o.
func (v Variables) Minus(o Variables) Variables {
	out := NewVariables()
	for _, va := range v.Slice() {
		if !o.Contains(va) {
			out.s.Insert(va)
		}
	}
	return out
}

// Intersect returns the set intersection v ∩ o.
func (v Variables) Intersect(o Variables) Variables {
	out := NewVariables()
	for _, va := range v.Slice() {
		if o.Contains(va) {
			out.s.Insert(va)
		}
	}
	return out
}

// IsSubsetOf reports whether every variable of v is in o.
func (v Variables) IsSubsetOf(o Variables) bool {
	for _, va := range v.Slice() {
		if !o.Contains(va) {
			return false
		}
	}
	return true
}

// IsSupersetOf reports whether every variable of o is in v.
func (v Variables) IsSupersetOf(o Variables) bool { return o.IsSubsetOf(v) }

// IsStrictSubsetOf reports a subset relation with at least one variable of o
// missing from v.
func (v Variables) IsStrictSubsetOf(o Variables) bool {
	return v.Size() < o.Size() && v.IsSubsetOf(o)
}

// IsStrictSupersetOf is the converse of IsStrictSubsetOf.
func (v Variables) IsStrictSupersetOf(o Variables) bool { return o.IsStrictSubsetOf(v) }

// Equal reports whether both sets hold exactly the same variables.
func (v Variables) Equal(o Variables) bool {
	return v.Size() == o.Size() && v.IsSubsetOf(o)
}

func (v Variables) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, va := range v.Slice() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(va.String())
	}
	sb.WriteByte('}')
	return sb.String()
}
