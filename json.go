package smats

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/valyala/fastjson"
)

// Expressions serialize as type-tagged JSON objects:
//
//	{"type": "constant", "value": 2.5}
//	{"type": "var", "name": "x", "vartype": "continuous"}
//	{"type": "add", "constant": 1, "terms": [{"coeff": 2, "expr": {...}}]}
//	{"type": "mul", "constant": 2, "factors": [{"base": {...}, "exp": {...}}]}
//	{"type": "pow", "base": {...}, "exp": {...}}
//	{"type": "div", "num": {...}, "den": {...}}
//	{"type": "nan"}

// VariablePool resolves variable names to Variable identities across parses.
// Names map to the same Variable on every lookup; the type recorded at first
// use wins.
type VariablePool struct {
	mu     sync.Mutex
	byName map[string]Variable
}

func NewVariablePool() *VariablePool {
	return &VariablePool{byName: map[string]Variable{}}
}

// Get returns the variable for name, creating a continuous variable on first
// use.
func (p *VariablePool) Get(name string) Variable {
	return p.GetTyped(name, Continuous)
}

// GetTyped returns the variable for name, creating one with type t on first
// use.
func (p *VariablePool) GetTyped(name string, t VariableType) Variable {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.byName[name]; ok {
		return v
	}
	v := NewTypedVariable(name, t)
	p.byName[name] = v
	return v
}

func (e Expression[T]) toJSON() map[string]interface{} {
	switch c := e.resolve().(type) {
	case *constantCell[T]:
		return map[string]interface{}{"type": "constant", "value": float64(c.value)}
	case *varCell[T]:
		return map[string]interface{}{"type": "var", "name": c.v.Name(), "vartype": variableTypeTag(c.v.Type())}
	case *addCell[T]:
		terms := make([]interface{}, len(c.terms))
		for i, t := range c.terms {
			terms[i] = map[string]interface{}{"coeff": float64(t.Coeff), "expr": t.Expr.toJSON()}
		}
		return map[string]interface{}{"type": "add", "constant": float64(c.constant), "terms": terms}
	case *mulCell[T]:
		factors := make([]interface{}, len(c.factors))
		for i, f := range c.factors {
			factors[i] = map[string]interface{}{"base": f.Base.toJSON(), "exp": f.Exponent.toJSON()}
		}
		return map[string]interface{}{"type": "mul", "constant": float64(c.constant), "factors": factors}
	case *powCell[T]:
		return map[string]interface{}{"type": "pow", "base": c.base.toJSON(), "exp": c.exponent.toJSON()}
	case *divCell[T]:
		return map[string]interface{}{"type": "div", "num": c.num.toJSON(), "den": c.den.toJSON()}
	default:
		return map[string]interface{}{"type": "nan"}
	}
}

// MarshalJSON encodes e as a type-tagged object tree. Constants serialize as
// float64 regardless of the scalar type, so integer scalars beyond 2^53 lose
// precision through a marshal/parse round trip.
func (e Expression[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.toJSON())
}

// ToJSON returns the JSON encoding of e as a string.
func ToJSON[T Scalar](e Expression[T]) (string, error) {
	b, err := e.MarshalJSON()
	return string(b), err
}

// ParseExpression decodes a type-tagged JSON object tree. Variable names
// resolve through pool; a nil pool builds fresh variables scoped to this
// parse. The decoded tree rebuilds through the usual constructors, so the
// result is in simplified form.
func ParseExpression[T Scalar](data []byte, pool *VariablePool) (Expression[T], error) {
	if pool == nil {
		pool = NewVariablePool()
	}
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return Expression[T]{}, fmt.Errorf("smats: invalid JSON: %w", err)
	}
	return exprFromValue[T](v, pool)
}

func exprFromValue[T Scalar](v *fastjson.Value, pool *VariablePool) (Expression[T], error) {
	var none Expression[T]
	if v == nil || v.Type() != fastjson.TypeObject {
		return none, fmt.Errorf("smats: expression must be a JSON object")
	}
	typ := string(v.GetStringBytes("type"))
	switch typ {
	case "constant":
		val := v.Get("value")
		if val == nil {
			return none, fmt.Errorf("smats: constant: missing \"value\"")
		}
		f, err := val.Float64()
		if err != nil {
			return none, fmt.Errorf("smats: constant: %w", err)
		}
		return NewConstant(T(f)), nil

	case "var":
		name := string(v.GetStringBytes("name"))
		if name == "" {
			return none, fmt.Errorf("smats: var: missing \"name\"")
		}
		t := Continuous
		if s := string(v.GetStringBytes("vartype")); s != "" {
			var err error
			t, err = parseVariableType(s)
			if err != nil {
				return none, err
			}
		}
		if t == Boolean {
			return none, fmt.Errorf("smats: var: boolean variable %s cannot appear in an expression", name)
		}
		return NewVar[T](pool.GetTyped(name, t)), nil

	case "add":
		fac := newAddFactory[T]()
		fac.addConstant(T(v.GetFloat64("constant")))
		for i, tv := range v.GetArray("terms") {
			coeff := tv.Get("coeff")
			if coeff == nil {
				return none, fmt.Errorf("smats: add: terms[%d]: missing \"coeff\"", i)
			}
			cf, err := coeff.Float64()
			if err != nil {
				return none, fmt.Errorf("smats: add: terms[%d]: %w", i, err)
			}
			expr, err := exprFromValue[T](tv.Get("expr"), pool)
			if err != nil {
				return none, fmt.Errorf("smats: add: terms[%d]: %w", i, err)
			}
			fac.addExpr(NewConstant(T(cf)).Mul(expr))
		}
		return fac.build(), nil

	case "mul":
		c := T(1)
		if cv := v.Get("constant"); cv != nil {
			f, err := cv.Float64()
			if err != nil {
				return none, fmt.Errorf("smats: mul: %w", err)
			}
			c = T(f)
		}
		result := NewConstant(c)
		for i, fv := range v.GetArray("factors") {
			base, err := exprFromValue[T](fv.Get("base"), pool)
			if err != nil {
				return none, fmt.Errorf("smats: mul: factors[%d]: %w", i, err)
			}
			exp, err := exprFromValue[T](fv.Get("exp"), pool)
			if err != nil {
				return none, fmt.Errorf("smats: mul: factors[%d]: %w", i, err)
			}
			result = result.Mul(base.Pow(exp))
		}
		return result, nil

	case "pow":
		base, err := exprFromValue[T](v.Get("base"), pool)
		if err != nil {
			return none, fmt.Errorf("smats: pow: %w", err)
		}
		exp, err := exprFromValue[T](v.Get("exp"), pool)
		if err != nil {
			return none, fmt.Errorf("smats: pow: %w", err)
		}
		return base.Pow(exp), nil

	case "div":
		num, err := exprFromValue[T](v.Get("num"), pool)
		if err != nil {
			return none, fmt.Errorf("smats: div: %w", err)
		}
		den, err := exprFromValue[T](v.Get("den"), pool)
		if err != nil {
			return none, fmt.Errorf("smats: div: %w", err)
		}
		return num.Div(den), nil

	case "nan":
		return NaN[T](), nil

	case "":
		return none, fmt.Errorf("smats: missing \"type\" field")
	}
	return none, fmt.Errorf("smats: unknown expression type: %s", typ)
}

func variableTypeTag(t VariableType) string {
	switch t {
	case Integer:
		return "integer"
	case Binary:
		return "binary"
	case Boolean:
		return "boolean"
	}
	return "continuous"
}

func parseVariableType(s string) (VariableType, error) {
	switch s {
	case "continuous":
		return Continuous, nil
	case "integer":
		return Integer, nil
	case "binary":
		return Binary, nil
	case "boolean":
		return Boolean, nil
	}
	return Continuous, fmt.Errorf("smats: unknown variable type: %s", s)
}

// ParseEnvironment decodes a flat JSON object of name-to-value bindings,
// such as {"x": 1.5, "y": -2}, resolving names through pool.
func ParseEnvironment[T Scalar](data []byte, pool *VariablePool) (*Environment[T], error) {
	if pool == nil {
		pool = NewVariablePool()
	}
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("smats: invalid JSON: %w", err)
	}
	obj, err := v.Object()
	if err != nil {
		return nil, fmt.Errorf("smats: environment must be a JSON object")
	}
	env := NewEnvironment[T]()
	var visitErr error
	obj.Visit(func(key []byte, val *fastjson.Value) {
		if visitErr != nil {
			return
		}
		f, err := val.Float64()
		if err != nil {
			visitErr = fmt.Errorf("smats: environment binding %q: %w", key, err)
			return
		}
		env.InsertOrAssign(pool.Get(string(key)), T(f))
	})
	if visitErr != nil {
		return nil, visitErr
	}
	return env, nil
}
