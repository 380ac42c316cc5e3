// Command smats-server exposes the symbolic engine over HTTP so agent
// frameworks can call it as a tool.
//
//	POST /tool    execute a tool call (smats.ToolRequest in, smats.ToolResponse out)
//	GET  /schema  tool schema for agent registration
//	GET  /health  liveness check
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/smatslib/smats"
)

// Request bodies larger than this are rejected before decoding.
const maxBodyBytes = 1 << 20

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /tool", handleTool)
	mux.HandleFunc("GET /schema", handleSchema)
	mux.HandleFunc("GET /health", handleHealth)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           recoverPanics(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("smats tool server listening on %s (POST /tool, GET /schema, GET /health)", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// recoverPanics turns a handler panic into a 500 instead of killing the
// connection without a response.
func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func handleTool(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	req, err := decodeToolRequest(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, smats.HandleToolCall(req))
}

func decodeToolRequest(body io.Reader) (smats.ToolRequest, error) {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	var req smats.ToolRequest
	if err := dec.Decode(&req); err != nil {
		return smats.ToolRequest{}, err
	}
	// A second document after the request is a malformed call, not extra input.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return smats.ToolRequest{}, errors.New("invalid JSON: trailing data")
	}
	return req, nil
}

func handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, smats.ToolSpec())
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}
