package smats

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Tool interface over float64 expressions, suitable for exposing the engine
// to agent frameworks over HTTP. Expression parameters are type-tagged JSON
// trees (see json.go); environments are flat name-to-value objects.

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall dispatches a single tool request. Variable names are
// resolved consistently across the parameters of one call, so the "x" in an
// expr parameter and the "x" in an env parameter are the same variable.
func HandleToolCall(req ToolRequest) ToolResponse {
	pool := NewVariablePool()

	paramBytes := func(key string) ([]byte, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		return json.Marshal(v)
	}
	getExpr := func(key string) (Expression[float64], error) {
		b, err := paramBytes(key)
		if err != nil {
			return Expression[float64]{}, err
		}
		return ParseExpression[float64](b, pool)
	}
	getEnv := func(key string) (*Environment[float64], error) {
		b, err := paramBytes(key)
		if err != nil {
			return nil, err
		}
		return ParseEnvironment[float64](b, pool)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getSubs := func(key string) (Substitution[float64], error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		raw, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be an object of name to expression", key)
		}
		s := Substitution[float64]{}
		for name, ev := range raw {
			b, err := json.Marshal(ev)
			if err != nil {
				return nil, err
			}
			e, err := ParseExpression[float64](b, pool)
			if err != nil {
				return nil, fmt.Errorf("param %s[%s]: %w", key, name, err)
			}
			s[pool.Get(name)] = e
		}
		return s, nil
	}
	respond := func(e Expression[float64]) ToolResponse {
		return ToolResponse{Result: e.toJSON(), String: e.String()}
	}

	switch req.Tool {
	case "build":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(e)

	case "evaluate":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		env, err := getEnv("env")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := e.Evaluate(env)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: v, String: fmt.Sprintf("%v", v)}

	case "evaluate_partial":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		env, err := getEnv("env")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		result, err := e.EvaluatePartial(env)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(result)

	case "expand":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		result, err := e.Expand()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(result)

	case "substitute":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		subs, err := getSubs("subs")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		result, err := e.SubstituteAll(subs)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(result)

	case "diff":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		name, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		result, err := e.Differentiate(pool.Get(name))
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(result)

	case "variables":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		vars := e.Variables().Slice()
		names := make([]string, len(vars))
		for i, v := range vars {
			names[i] = v.Name()
		}
		sort.Strings(names)
		return ToolResponse{Result: names, String: strings.Join(names, ", ")}

	case "equal":
		a, err := getExpr("a")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		b, err := getExpr("b")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		eq := a.EqualTo(b)
		return ToolResponse{Result: eq, String: fmt.Sprintf("%v", eq)}

	case "is_polynomial":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		p := e.IsPolynomial()
		return ToolResponse{Result: p, String: fmt.Sprintf("%v", p)}

	case "tool_spec":
		return ToolResponse{Result: ToolSpec(), String: "tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ToolSpec returns the tool schema for agent registration.
func ToolSpec() string {
	tools := []map[string]interface{}{
		ts("build", "Build and simplify a symbolic expression", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("evaluate", "Evaluate expr under env bindings {name: number}", []string{"expr", "env"}, map[string]string{"expr": "object", "env": "object"}),
		ts("evaluate_partial", "Substitute bound variables, keep the rest symbolic", []string{"expr", "env"}, map[string]string{"expr": "object", "env": "object"}),
		ts("expand", "Distribute products over sums and expand integer powers of sums", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("substitute", "Simultaneously substitute variables. subs={name: expr}", []string{"expr", "subs"}, map[string]string{"expr": "object", "subs": "object"}),
		ts("diff", "Partial derivative with respect to var", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string"}),
		ts("variables", "Return the variable names occurring in expr", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("equal", "Structural equality of two expressions", []string{"a", "b"}, map[string]string{"a": "object", "b": "object"}),
		ts("is_polynomial", "Whether expr is a polynomial over its variables", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
