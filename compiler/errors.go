package compiler

import "strings"

// CompileError aggregates every diagnostic emitted during one compile pass
// (spec.md §7: synchronization lets a single run report several errors).
// Grounded on informatter-nilan/parser/error.go's SyntaxError, generalized
// from a single diagnostic to the multi-error aggregate spec.md requires.
type CompileError struct {
	Diagnostics []string
}

func (e CompileError) Error() string {
	return strings.Join(e.Diagnostics, "\n")
}
