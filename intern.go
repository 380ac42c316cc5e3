package smats

import (
	"reflect"
	"sync"
)

// Go has no generic package-level variables, so the shared cells behind
// Zero, One, NaN, Pi, and E live in a table keyed by the scalar type. Two
// calls of Zero[float64]() return expressions backed by the same cell.

type internKey struct {
	scalar reflect.Type
	which  uint8
}

const (
	internZero uint8 = iota
	internOne
	internNaN
	internPi
	internE
)

var (
	internMu    sync.Mutex
	internTable = map[internKey]any{}
)

func interned[T Scalar](which uint8, build func() cell[T]) Expression[T] {
	key := internKey{scalar: reflect.TypeOf((*T)(nil)).Elem(), which: which}
	internMu.Lock()
	defer internMu.Unlock()
	c, ok := internTable[key]
	if !ok {
		c = build()
		internTable[key] = c
	}
	return Expression[T]{c: c.(cell[T])}
}

// Zero returns the shared constant zero expression.
func Zero[T Scalar]() Expression[T] {
	return interned(internZero, func() cell[T] { return newConstantCell[T](0) })
}

// One returns the shared constant one expression.
func One[T Scalar]() Expression[T] {
	return interned(internOne, func() cell[T] { return newConstantCell[T](1) })
}

// NaN returns the shared not-a-number sentinel expression. It participates
// in construction like any other expression but every evaluation, expansion,
// or hashing of it fails with NaNError.
func NaN[T Scalar]() Expression[T] {
	return interned(internNaN, func() cell[T] { return newNaNCell[T]() })
}

// Pi returns the shared constant π expression, narrowed to T.
func Pi[T Scalar]() Expression[T] {
	return interned(internPi, func() cell[T] { return newConstantCell(piValue[T]()) })
}

// E returns the shared constant e expression, narrowed to T.
func E[T Scalar]() Expression[T] {
	return interned(internE, func() cell[T] { return newConstantCell(eValue[T]()) })
}
