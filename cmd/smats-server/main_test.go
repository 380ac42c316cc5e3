package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeToolRequest(t *testing.T) {
	req, err := decodeToolRequest(strings.NewReader(`{"tool": "evaluate", "params": {"expr": {"type": "constant", "value": 3}}}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if req.Tool != "evaluate" {
		t.Errorf("want tool evaluate, got %q", req.Tool)
	}
}

func TestDecodeToolRequest_RejectsUnknownField(t *testing.T) {
	_, err := decodeToolRequest(strings.NewReader(`{"tool": "evaluate", "bogus": 1}`))
	if err == nil {
		t.Errorf("unknown fields should be rejected")
	}
}

func TestDecodeToolRequest_RejectsTrailingData(t *testing.T) {
	_, err := decodeToolRequest(strings.NewReader(`{"tool": "evaluate"} {"tool": "expand"}`))
	if err == nil {
		t.Errorf("trailing JSON should be rejected")
	}
}

func TestHandleTool_BadJSONIs400(t *testing.T) {
	rec := httptest.NewRecorder()
	handleTool(rec, httptest.NewRequest(http.MethodPost, "/tool", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("want 400, got %d", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("want 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("want application/json, got %q", ct)
	}
}
