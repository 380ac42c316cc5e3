package smats_test

import (
	"testing"

	"github.com/smatslib/smats"
)

func TestParseInfix_Linear(t *testing.T) {
	pool := smats.NewVariablePool()
	e, err := smats.ParseInfix[float64]("2*x + 3", pool)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if e.String() != "(3 + 2 * x)" {
		t.Errorf("want (3 + 2 * x), got %s", e)
	}
}

func TestParseInfix_Precedence(t *testing.T) {
	pool := smats.NewVariablePool()
	x := smats.NewVar[float64](pool.Get("x"))
	y := smats.NewVar[float64](pool.Get("y"))
	e, err := smats.ParseInfix[float64]("x + y*x^2", pool)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := x.Add(y.Mul(x.Pow(smats.NewConstant(2.0))))
	if !e.EqualTo(want) {
		t.Errorf("want %s, got %s", want, e)
	}
}

func TestParseInfix_PowerIsRightAssociative(t *testing.T) {
	e, err := smats.ParseInfix[float64]("2^3^2", nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !e.IsConstantValue(512) {
		t.Errorf("2^3^2 should be 2^(3^2) = 512, got %s", e)
	}
}

func TestParseInfix_UnaryMinus(t *testing.T) {
	pool := smats.NewVariablePool()
	x := smats.NewVar[float64](pool.Get("x"))
	e, err := smats.ParseInfix[float64]("-x + 1", pool)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := smats.One[float64]().Sub(x)
	if !e.EqualTo(want) {
		t.Errorf("want %s, got %s", want, e)
	}
}

func TestParseInfix_Parens(t *testing.T) {
	pool := smats.NewVariablePool()
	e, err := smats.ParseInfix[float64]("(x + 1) * (x - 1)", pool)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !e.IsMultiplication() && !e.IsPow() {
		t.Errorf("(x+1)*(x-1) should be a product, got %s", e)
	}
}

func TestParseInfix_PowFunction(t *testing.T) {
	pool := smats.NewVariablePool()
	x := smats.NewVar[float64](pool.Get("x"))
	e, err := smats.ParseInfix[float64]("pow(x, 2) + pow(x, 2)", pool)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := smats.NewConstant(2.0).Mul(x.Pow(smats.NewConstant(2.0)))
	if !e.EqualTo(want) {
		t.Errorf("want %s, got %s", want, e)
	}
}

func TestParseInfix_Keywords(t *testing.T) {
	e, err := smats.ParseInfix[float64]("pi", nil)
	if err != nil || !e.IsConstant() {
		t.Errorf("pi should parse to a constant, got %s, %v", e, err)
	}
	e, err = smats.ParseInfix[float64]("nan", nil)
	if err != nil || !e.IsNaN() {
		t.Errorf("nan should parse to the NaN sentinel, got %s, %v", e, err)
	}
}

func TestParseInfix_ScientificNumber(t *testing.T) {
	e, err := smats.ParseInfix[float64]("1e-3", nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !e.IsConstantValue(0.001) {
		t.Errorf("want 0.001, got %s", e)
	}
}

func TestParseInfix_Errors(t *testing.T) {
	cases := []string{"", "x +", "(x + 1", "2 **) x", "pow(x)", "1..5 @"}
	for _, input := range cases {
		if _, err := smats.ParseInfix[float64](input, nil); err == nil {
			t.Errorf("%q should fail to parse", input)
		}
	}
}
