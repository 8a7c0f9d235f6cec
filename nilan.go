// Package nilan wires the compiler and vm packages into the single
// entry point a host (the CLI in cmd/nilan, or a REPL) drives: compile
// source to a chunk, then run that chunk, reporting which of the two
// stages failed.
//
// Generalized from informatter-nilan/cmd_run_compiled.go's inline
// compile-then-run sequence, pulled out into a reusable API so the CLI,
// the REPL, and tests all share one code path.
package nilan

import (
	"nilan/compiler"
	"nilan/vm"
)

// Result classifies how a run ended, so callers can pick an exit code
// (spec.md §6 leaves the exit-code mapping to the collaborator: 65 for
// a compile error, 70 for a runtime error).
type Result int

const (
	ResultOK Result = iota
	ResultCompileError
	ResultRuntimeError
)

// Interpret compiles source and, if compilation succeeds, runs the
// resulting chunk on m. PRINT output goes wherever m was constructed to
// write it (see vm.New). The returned error is either a
// compiler.CompileError or a vm.RuntimeError; Result tells the caller
// which.
func Interpret(m *vm.VM, source string) (Result, error) {
	c, err := compiler.Compile(source, m)
	if err != nil {
		return ResultCompileError, err
	}

	if err := m.Run(c); err != nil {
		return ResultRuntimeError, err
	}

	return ResultOK, nil
}
