package smats

import (
	"encoding/binary"
	"fmt"
	"hash/maphash"
	"math"
	"strings"
)

// Substitution maps variables to replacement expressions. Substitute applies
// all replacements simultaneously against the original expression.
type Substitution[T Scalar] map[Variable]Expression[T]

// cell is one node of the syntax tree. A cell is immutable after
// construction; the only mutable state is the conservative expanded flag and
// the memoized free-variable set, both written at most once and only under
// the single-threaded sharing discipline documented on Expression.
//
// equalTo and less require both cells to have the same kind; Expression
// checks kinds first. Calling them across kinds is a programmer error.
type cell[T Scalar] interface {
	kind() Kind
	isPolynomial() bool
	isExpanded() bool
	setExpanded()
	variables() Variables
	equalTo(o cell[T]) bool
	less(o cell[T]) bool
	evaluate(env *Environment[T]) (T, error)
	expand() (Expression[T], error)
	evaluatePartial(env *Environment[T]) (Expression[T], error)
	substitute(s Substitution[T]) (Expression[T], error)
	differentiate(x Variable) (Expression[T], error)
	write(sb *strings.Builder)
	hashInto(h *maphash.Hash) error
}

// cellMeta carries the per-node bookkeeping shared by every cell kind.
type cellMeta struct {
	k          Kind
	polynomial bool
	expanded   bool
}

func (m *cellMeta) kind() Kind         { return m.k }
func (m *cellMeta) isPolynomial() bool { return m.polynomial }
func (m *cellMeta) isExpanded() bool   { return m.expanded }
func (m *cellMeta) setExpanded()       { m.expanded = true }

func sameKind[T Scalar](a, b cell[T]) {
	if a.kind() != b.kind() {
		panic(fmt.Sprintf("smats: cells must have the same kind, got %s and %s", a.kind(), b.kind()))
	}
}

// ---------------------------------------------------------------------------
// Constant
// ---------------------------------------------------------------------------

type constantCell[T Scalar] struct {
	cellMeta
	value T
}

func newConstantCell[T Scalar](v T) *constantCell[T] {
	return &constantCell[T]{cellMeta: cellMeta{k: KindConstant, polynomial: true, expanded: true}, value: v}
}

func (c *constantCell[T]) variables() Variables { return NewVariables() }

func (c *constantCell[T]) equalTo(o cell[T]) bool {
	sameKind[T](c, o)
	return c.value == o.(*constantCell[T]).value
}

func (c *constantCell[T]) less(o cell[T]) bool {
	sameKind[T](c, o)
	return c.value < o.(*constantCell[T]).value
}

func (c *constantCell[T]) evaluate(*Environment[T]) (T, error) { return c.value, nil }

func (c *constantCell[T]) expand() (Expression[T], error) {
	return Expression[T]{c: c}, nil
}

func (c *constantCell[T]) evaluatePartial(*Environment[T]) (Expression[T], error) {
	return Expression[T]{c: c}, nil
}

func (c *constantCell[T]) substitute(Substitution[T]) (Expression[T], error) {
	return Expression[T]{c: c}, nil
}

func (c *constantCell[T]) differentiate(Variable) (Expression[T], error) {
	return Zero[T](), nil
}

func (c *constantCell[T]) write(sb *strings.Builder) {
	fmt.Fprintf(sb, "%v", c.value)
}

func (c *constantCell[T]) hashInto(h *maphash.Hash) error {
	writeHashByte(h, byte(KindConstant))
	writeHashUint64(h, math.Float64bits(float64(c.value)))
	return nil
}

// ---------------------------------------------------------------------------
// Var
// ---------------------------------------------------------------------------

type varCell[T Scalar] struct {
	cellMeta
	v Variable
}

func newVarCell[T Scalar](v Variable) *varCell[T] {
	if v.IsDummy() {
		panic("smats: cannot build an expression from a dummy variable")
	}
	if v.Type() == Boolean {
		panic(fmt.Sprintf("smats: cannot build an expression from boolean variable %s", v))
	}
	return &varCell[T]{cellMeta: cellMeta{k: KindVar, polynomial: true, expanded: true}, v: v}
}

func (c *varCell[T]) variables() Variables { return NewVariables(c.v) }

func (c *varCell[T]) equalTo(o cell[T]) bool {
	sameKind[T](c, o)
	return c.v.Equal(o.(*varCell[T]).v)
}

func (c *varCell[T]) less(o cell[T]) bool {
	sameKind[T](c, o)
	return c.v.Less(o.(*varCell[T]).v)
}

func (c *varCell[T]) evaluate(env *Environment[T]) (T, error) {
	return env.At(c.v)
}

func (c *varCell[T]) expand() (Expression[T], error) {
	return Expression[T]{c: c}, nil
}

func (c *varCell[T]) evaluatePartial(env *Environment[T]) (Expression[T], error) {
	if value, ok := env.Find(c.v); ok {
		return NewConstant(value), nil
	}
	return Expression[T]{c: c}, nil
}

func (c *varCell[T]) substitute(s Substitution[T]) (Expression[T], error) {
	if repl, ok := s[c.v]; ok {
		return repl, nil
	}
	return Expression[T]{c: c}, nil
}

func (c *varCell[T]) differentiate(x Variable) (Expression[T], error) {
	if c.v.Equal(x) {
		return One[T](), nil
	}
	return Zero[T](), nil
}

func (c *varCell[T]) write(sb *strings.Builder) {
	sb.WriteString(c.v.String())
}

func (c *varCell[T]) hashInto(h *maphash.Hash) error {
	writeHashByte(h, byte(KindVar))
	writeHashUint64(h, c.v.ID())
	return nil
}

// ---------------------------------------------------------------------------
// NaN
// ---------------------------------------------------------------------------

// nanCell is inert: it may sit in a tree as a placeholder, but every
// operation that reaches it fails. There is one interned NaN cell per scalar
// type. Like IEEE NaN values, NaN expressions never compare equal, not even
// to themselves.
type nanCell[T Scalar] struct {
	cellMeta
}

func newNaNCell[T Scalar]() *nanCell[T] {
	return &nanCell[T]{cellMeta: cellMeta{k: KindNaN}}
}

func (c *nanCell[T]) variables() Variables { return NewVariables() }

func (c *nanCell[T]) equalTo(o cell[T]) bool {
	sameKind[T](c, o)
	return false
}

func (c *nanCell[T]) less(o cell[T]) bool {
	sameKind[T](c, o)
	return false
}

func (c *nanCell[T]) evaluate(*Environment[T]) (T, error) {
	var zero T
	return zero, &NaNError{Op: "evaluate"}
}

func (c *nanCell[T]) expand() (Expression[T], error) {
	return Expression[T]{}, &NaNError{Op: "expand"}
}

func (c *nanCell[T]) evaluatePartial(*Environment[T]) (Expression[T], error) {
	return Expression[T]{}, &NaNError{Op: "evaluate"}
}

func (c *nanCell[T]) substitute(Substitution[T]) (Expression[T], error) {
	return Expression[T]{}, &NaNError{Op: "substitute"}
}

func (c *nanCell[T]) differentiate(Variable) (Expression[T], error) {
	return Expression[T]{}, &NaNError{Op: "differentiate"}
}

func (c *nanCell[T]) write(sb *strings.Builder) {
	sb.WriteString("NaN")
}

func (c *nanCell[T]) hashInto(*maphash.Hash) error {
	return &NaNError{Op: "hash"}
}

// ---------------------------------------------------------------------------
// hash helpers
// ---------------------------------------------------------------------------

func writeHashByte(h *maphash.Hash, b byte) {
	_ = h.WriteByte(b)
}

func writeHashUint64(h *maphash.Hash, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}
