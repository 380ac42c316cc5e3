package smats_test

import (
	"strings"
	"testing"

	"github.com/smatslib/smats"
)

func toolParams() map[string]interface{} {
	return map[string]interface{}{
		"expr": map[string]interface{}{
			"type": "pow",
			"base": map[string]interface{}{"type": "var", "name": "x"},
			"exp":  map[string]interface{}{"type": "constant", "value": 2.0},
		},
		"env": map[string]interface{}{"x": 3.0},
	}
}

func TestHandleToolCall_Evaluate(t *testing.T) {
	resp := smats.HandleToolCall(smats.ToolRequest{Tool: "evaluate", Params: toolParams()})
	if resp.Error != "" {
		t.Fatalf("tool call failed: %s", resp.Error)
	}
	v, ok := resp.Result.(float64)
	if !ok || v != 9 {
		t.Errorf("x^2 at x=3 should be 9, got %v", resp.Result)
	}
}

func TestHandleToolCall_Expand(t *testing.T) {
	req := smats.ToolRequest{
		Tool: "expand",
		Params: map[string]interface{}{
			"expr": map[string]interface{}{
				"type": "pow",
				"base": map[string]interface{}{
					"type":     "add",
					"constant": 1.0,
					"terms": []interface{}{
						map[string]interface{}{
							"coeff": 1.0,
							"expr":  map[string]interface{}{"type": "var", "name": "x"},
						},
					},
				},
				"exp": map[string]interface{}{"type": "constant", "value": 2.0},
			},
		},
	}
	resp := smats.HandleToolCall(req)
	if resp.Error != "" {
		t.Fatalf("tool call failed: %s", resp.Error)
	}
	if resp.String != "(1 + 2 * x + pow(x, 2))" {
		t.Errorf("(1+x)^2 should expand to (1 + 2 * x + pow(x, 2)), got %s", resp.String)
	}
}

func TestHandleToolCall_SharedVariableIdentity(t *testing.T) {
	// The x in expr and the x in env must resolve to the same variable.
	req := smats.ToolRequest{
		Tool: "evaluate",
		Params: map[string]interface{}{
			"expr": map[string]interface{}{"type": "var", "name": "x"},
			"env":  map[string]interface{}{"x": 7.0},
		},
	}
	resp := smats.HandleToolCall(req)
	if resp.Error != "" {
		t.Fatalf("tool call failed: %s", resp.Error)
	}
	if v, ok := resp.Result.(float64); !ok || v != 7 {
		t.Errorf("want 7, got %v", resp.Result)
	}
}

func TestHandleToolCall_Diff(t *testing.T) {
	req := smats.ToolRequest{
		Tool: "diff",
		Params: map[string]interface{}{
			"expr": map[string]interface{}{
				"type":     "add",
				"constant": 7.0,
				"terms": []interface{}{
					map[string]interface{}{
						"coeff": 3.0,
						"expr":  map[string]interface{}{"type": "var", "name": "x"},
					},
				},
			},
			"var": "x",
		},
	}
	resp := smats.HandleToolCall(req)
	if resp.Error != "" {
		t.Fatalf("tool call failed: %s", resp.Error)
	}
	if resp.String != "3" {
		t.Errorf("d/dx(3x + 7) should be 3, got %s", resp.String)
	}
}

func TestHandleToolCall_Variables(t *testing.T) {
	req := smats.ToolRequest{
		Tool: "variables",
		Params: map[string]interface{}{
			"expr": map[string]interface{}{
				"type": "div",
				"num":  map[string]interface{}{"type": "var", "name": "y"},
				"den":  map[string]interface{}{"type": "var", "name": "x"},
			},
		},
	}
	resp := smats.HandleToolCall(req)
	if resp.Error != "" {
		t.Fatalf("tool call failed: %s", resp.Error)
	}
	if resp.String != "x, y" {
		t.Errorf("want \"x, y\", got %q", resp.String)
	}
}

func TestHandleToolCall_MissingParam(t *testing.T) {
	resp := smats.HandleToolCall(smats.ToolRequest{Tool: "expand", Params: map[string]interface{}{}})
	if !strings.Contains(resp.Error, "missing param") {
		t.Errorf("want missing param error, got %q", resp.Error)
	}
}

func TestHandleToolCall_UnknownTool(t *testing.T) {
	resp := smats.HandleToolCall(smats.ToolRequest{Tool: "solve_everything"})
	if !strings.Contains(resp.Error, "unknown tool") {
		t.Errorf("want unknown tool error, got %q", resp.Error)
	}
}

func TestToolSpec_ListsTools(t *testing.T) {
	spec := smats.ToolSpec()
	for _, name := range []string{"evaluate", "expand", "substitute", "diff", "tool_spec"} {
		if !strings.Contains(spec, name) {
			t.Errorf("spec should list %q", name)
		}
	}
}
