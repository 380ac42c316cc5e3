package smats

import (
	"fmt"
	"sync/atomic"
)

// VariableType is the domain a Variable ranges over. It is packed into the
// high-order byte of the variable ID.
type VariableType uint8

const (
	// Continuous variables take a floating value.
	Continuous VariableType = iota
	// Integer variables take an integer value.
	Integer
	// Binary variables take a value from {0, 1}.
	Binary
	// Boolean variables take a truth value. They cannot appear inside an
	// Expression.
	Boolean
)

func (t VariableType) String() string {
	switch t {
	case Continuous:
		return "Continuous"
	case Integer:
		return "Integer"
	case Binary:
		return "Binary"
	case Boolean:
		return "Boolean"
	}
	return "Unknown"
}

// nextVariableID hands out process-unique variable IDs. ID 0 is reserved
// for the dummy (anonymous) variable, so the counter starts at 1.
var nextVariableID atomic.Uint64

// Variable is a named symbolic variable. The zero value is the dummy
// (anonymous) variable: it compares equal to every other dummy variable and
// is rejected wherever a live variable is required (environments, Var
// expressions).
//
// Variables are cheap to copy and compare by ID only; two variables with the
// same name created by separate NewVariable calls are distinct.
type Variable struct {
	id   uint64
	name string
}

// NewVariable creates a fresh continuous variable with the given name.
func NewVariable(name string) Variable {
	return NewTypedVariable(name, Continuous)
}

// NewTypedVariable creates a fresh variable of the given type. The type is
// stored in the top byte of the ID, so it participates in the total order.
func NewTypedVariable(name string, t VariableType) Variable {
	n := nextVariableID.Add(1)
	return Variable{id: uint64(t)<<56 | n, name: name}
}

// ID returns the unique identifier. 0 means the dummy variable.
func (v Variable) ID() uint64 { return v.id }

// Type returns the variable type stored in the top byte of the ID.
func (v Variable) Type() VariableType { return VariableType(v.id >> 56) }

// IsDummy reports whether v is the anonymous placeholder variable.
func (v Variable) IsDummy() bool { return v.id == 0 }

// Name returns the display name.
func (v Variable) Name() string {
	if v.IsDummy() {
		return ""
	}
	return v.name
}

// Equal reports ID equality. Two dummy variables are equal.
func (v Variable) Equal(o Variable) bool { return v.id == o.id }

// Less orders variables by ID.
func (v Variable) Less(o Variable) bool { return v.id < o.id }

func (v Variable) String() string {
	if v.IsDummy() {
		return "{dummy}"
	}
	return v.name
}

// GoString makes %#v output useful in test failures.
func (v Variable) GoString() string {
	return fmt.Sprintf("Variable{id: %d, name: %q}", v.id, v.name)
}

// compareVariables is the ordering used by the Variables tree set.
func compareVariables(a, b Variable) int {
	switch {
	case a.id < b.id:
		return -1
	case a.id > b.id:
		return 1
	default:
		return 0
	}
}
