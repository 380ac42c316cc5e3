package smats_test

import (
	"errors"
	"math"
	"testing"

	"github.com/smatslib/smats"
)

func TestEnvironment_InsertAndAt(t *testing.T) {
	x := smats.NewVariable("x")
	env := smats.NewEnvironment[float64]()
	env.Insert(x, 1.5)
	v, err := env.At(x)
	if err != nil || v != 1.5 {
		t.Errorf("want 1.5, got %v, %v", v, err)
	}
}

func TestEnvironment_InsertDoesNotOverwrite(t *testing.T) {
	x := smats.NewVariable("x")
	env := smats.NewEnvironment[float64]()
	env.Insert(x, 1)
	env.Insert(x, 2)
	if v, _ := env.At(x); v != 1 {
		t.Errorf("Insert should keep the first binding, got %v", v)
	}
	env.InsertOrAssign(x, 2)
	if v, _ := env.At(x); v != 2 {
		t.Errorf("InsertOrAssign should overwrite, got %v", v)
	}
}

func TestEnvironment_AtUnbound(t *testing.T) {
	env := smats.NewEnvironment[float64]()
	_, err := env.At(smats.NewVariable("x"))
	var unbound *smats.UnboundVariableError
	if !errors.As(err, &unbound) {
		t.Errorf("want UnboundVariableError, got %v", err)
	}
}

func TestEnvironment_Find(t *testing.T) {
	x := smats.NewVariable("x")
	y := smats.NewVariable("y")
	env := smats.NewEnvironment(smats.Binding[float64]{Variable: x, Value: 3})
	if v, ok := env.Find(x); !ok || v != 3 {
		t.Errorf("Find(x) should be 3, got %v, %v", v, ok)
	}
	if _, ok := env.Find(y); ok {
		t.Errorf("Find(y) should report absence")
	}
}

func TestEnvironment_NilReceiverIsEmpty(t *testing.T) {
	var env *smats.Environment[float64]
	if env.Size() != 0 {
		t.Errorf("nil environment should have size 0")
	}
	if _, ok := env.Find(smats.NewVariable("x")); ok {
		t.Errorf("nil environment should not contain anything")
	}
}

func TestEnvironment_FromVariablesZeroInitializes(t *testing.T) {
	x := smats.NewVariable("x")
	env := smats.NewEnvironmentFromVariables[float64](x)
	if v, err := env.At(x); err != nil || v != 0 {
		t.Errorf("want zero binding, got %v, %v", v, err)
	}
}

func TestEnvironment_InsertDummyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("inserting a dummy variable should panic")
		}
	}()
	smats.NewEnvironment[float64]().Insert(smats.Variable{}, 1)
}

func TestEnvironment_InsertNaNPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("binding a variable to NaN should panic")
		}
	}()
	smats.NewEnvironment[float64]().Insert(smats.NewVariable("x"), math.NaN())
}

func TestEnvironment_String(t *testing.T) {
	x := smats.NewVariable("x")
	y := smats.NewVariable("y")
	env := smats.NewEnvironment(
		smats.Binding[float64]{Variable: y, Value: 2},
		smats.Binding[float64]{Variable: x, Value: 1},
	)
	// Ordered by variable ID: x was created before y.
	if env.String() != "{x: 1, y: 2}" {
		t.Errorf("got %s", env.String())
	}
}

func TestEnvironment_Variables(t *testing.T) {
	x := smats.NewVariable("x")
	y := smats.NewVariable("y")
	env := smats.NewEnvironment(
		smats.Binding[float64]{Variable: x, Value: 1},
		smats.Binding[float64]{Variable: y, Value: 2},
	)
	vars := env.Variables()
	if vars.Size() != 2 || !vars.Contains(x) || !vars.Contains(y) {
		t.Errorf("want {x, y}, got %s", vars)
	}
}
