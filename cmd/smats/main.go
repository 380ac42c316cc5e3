// cmd/smats/main.go — Interactive REPL for the smats symbolic engine.
//
// Expressions use the infix syntax of smats.ParseInfix. Bindings made with
// "name = expr" are kept in a session environment and applied to every
// result through partial evaluation.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/smatslib/smats"
)

const historyFile = ".smats_history"

const banner = `smats — symbolic expressions
Type an expression (x + 2*y, (x+y)^3, pow(x, 2)), or :help for commands.`

const help = `commands:
  name = expr      bind name to the value of expr
  :expand expr     expand products over sums
  :diff var expr   partial derivative with respect to var
  :vars expr       variables occurring in expr
  :env             show current bindings
  :help            this text
  :quit            exit`

func main() {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	pool := smats.NewVariablePool()
	env := smats.NewEnvironment[float64]()

	for {
		line, err := ln.Prompt("smats> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		if strings.HasPrefix(line, ":") {
			if !runCommand(line, pool, env) {
				return
			}
			continue
		}

		if name, rhs, ok := splitBinding(line); ok {
			e, err := smats.ParseInfix[float64](rhs, pool)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			v, err := e.Evaluate(env)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			env.InsertOrAssign(pool.Get(name), v)
			fmt.Printf("%s = %v\n", name, v)
			continue
		}

		e, err := smats.ParseInfix[float64](line, pool)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		show(e, env)
	}
}

func runCommand(line string, pool *smats.VariablePool, env *smats.Environment[float64]) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case ":quit", ":q":
		return false

	case ":help":
		fmt.Println(help)

	case ":env":
		fmt.Println(env)

	case ":vars":
		e, err := smats.ParseInfix[float64](rest, pool)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return true
		}
		fmt.Println(e.Variables())

	case ":expand":
		e, err := smats.ParseInfix[float64](rest, pool)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return true
		}
		expanded, err := e.Expand()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return true
		}
		show(expanded, env)

	case ":diff":
		name, expr, ok := strings.Cut(rest, " ")
		if !ok {
			fmt.Fprintln(os.Stderr, "usage: :diff var expr")
			return true
		}
		e, err := smats.ParseInfix[float64](expr, pool)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return true
		}
		d, err := e.Differentiate(pool.Get(name))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return true
		}
		show(d, env)

	default:
		fmt.Printf("unknown command %s. Type :help for commands.\n", cmd)
	}
	return true
}

// show prints e, then its partial evaluation under the session bindings when
// that differs, then its value when every variable is bound.
func show(e smats.Expression[float64], env *smats.Environment[float64]) {
	fmt.Println(e)
	partial, err := e.EvaluatePartial(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if !partial.EqualTo(e) {
		fmt.Printf("  = %s\n", partial)
	}
	if partial.Variables().Empty() && !partial.IsNaN() {
		if v, err := partial.Evaluate(nil); err == nil {
			fmt.Printf("  = %v\n", v)
		}
	}
}

// splitBinding recognizes "name = expr" with a bare identifier on the left.
func splitBinding(line string) (name, rhs string, ok bool) {
	i := strings.IndexByte(line, '=')
	if i < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(line[:i])
	if name == "" || !isIdent(name) {
		return "", "", false
	}
	return name, strings.TrimSpace(line[i+1:]), true
}

func isIdent(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
