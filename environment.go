package smats

import (
	"fmt"
	"sort"
	"strings"
)

// Environment maps variables to scalar values for evaluation.
//
// At is the fail-fast lookup (unbound variables are an error); Find is the
// optional probe. Inserting a dummy variable or a NaN value is a programmer
// error and panics, so a constructed Environment is always well-formed.
type Environment[T Scalar] struct {
	m map[Variable]T
}

// Binding is a (variable, value) pair used by NewEnvironment.
type Binding[T Scalar] struct {
	Variable Variable
	Value    T
}

// NewEnvironment builds an environment from the given bindings.
// Panics if any binding names a dummy variable or carries a NaN value.
func NewEnvironment[T Scalar](bindings ...Binding[T]) *Environment[T] {
	env := &Environment[T]{m: make(map[Variable]T, len(bindings))}
	for _, b := range bindings {
		env.Insert(b.Variable, b.Value)
	}
	return env
}

// NewEnvironmentFromVariables builds an environment binding every given
// variable to the zero value of T.
// Panics if any variable is dummy.
func NewEnvironmentFromVariables[T Scalar](vars ...Variable) *Environment[T] {
	env := &Environment[T]{m: make(map[Variable]T, len(vars))}
	var zero T
	for _, v := range vars {
		env.Insert(v, zero)
	}
	return env
}

// Insert binds v to value unless v is already bound. Panics on dummy
// variables and NaN values.
func (env *Environment[T]) Insert(v Variable, value T) {
	env.check(v, value)
	if _, ok := env.m[v]; ok {
		return
	}
	env.m[v] = value
}

// InsertOrAssign binds v to value, overwriting any existing binding.
// Panics on dummy variables and NaN values.
func (env *Environment[T]) InsertOrAssign(v Variable, value T) {
	env.check(v, value)
	env.m[v] = value
}

func (env *Environment[T]) check(v Variable, value T) {
	if v.IsDummy() {
		panic("smats: cannot insert a dummy variable into an Environment")
	}
	if isNaNValue(value) {
		panic(fmt.Sprintf("smats: cannot bind %s to NaN", v))
	}
}

// At returns the value bound to v, or an *UnboundVariableError.
func (env *Environment[T]) At(v Variable) (T, error) {
	if env != nil {
		if val, ok := env.m[v]; ok {
			return val, nil
		}
	}
	var zero T
	return zero, &UnboundVariableError{Variable: v}
}

// Find returns the value bound to v and whether the binding exists.
func (env *Environment[T]) Find(v Variable) (T, bool) {
	if env == nil {
		var zero T
		return zero, false
	}
	val, ok := env.m[v]
	return val, ok
}

// Contains reports whether v is bound.
func (env *Environment[T]) Contains(v Variable) bool {
	_, ok := env.Find(v)
	return ok
}

// Size returns the number of bindings.
func (env *Environment[T]) Size() int {
	if env == nil {
		return 0
	}
	return len(env.m)
}

// Variables returns the set of bound variables.
func (env *Environment[T]) Variables() Variables {
	vars := NewVariables()
	if env != nil {
		for v := range env.m {
			vars.Insert(v)
		}
	}
	return vars
}

// String renders the bindings ordered by variable for deterministic output.
func (env *Environment[T]) String() string {
	keys := make([]Variable, 0, env.Size())
	if env != nil {
		for v := range env.m {
			keys = append(keys, v)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	var sb strings.Builder
	sb.WriteByte('{')
	for i, v := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %v", v, env.m[v])
	}
	sb.WriteByte('}')
	return sb.String()
}
