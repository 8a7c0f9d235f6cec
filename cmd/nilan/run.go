package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"nilan"
	"nilan/compiler"
	"nilan/vm"

	"github.com/google/subcommands"
)

// Exit codes mirror sysexits.h's EX_DATAERR and EX_SOFTWARE, the pair
// spec.md §6 pins for "compile error" and "runtime error" respectively.
const (
	exitCompileError = 65
	exitRuntimeError = 70
)

type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run a source file" }
func (*runCmd) Usage() string {
	return "run <file>:\n  Compile and execute a source file.\n"
}
func (*runCmd) SetFlags(*flag.FlagSet) {}

func (*runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "run: missing file argument")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		return subcommands.ExitFailure
	}

	m := vm.New(os.Stdout)
	result, err := nilan.Interpret(m, string(data))
	switch result {
	case nilan.ResultCompileError:
		ce := err.(compiler.CompileError)
		for _, d := range ce.Diagnostics {
			fmt.Fprintln(os.Stderr, d)
		}
		return subcommands.ExitStatus(exitCompileError)
	case nilan.ResultRuntimeError:
		fmt.Fprint(os.Stderr, err.Error())
		return subcommands.ExitStatus(exitRuntimeError)
	}
	return subcommands.ExitSuccess
}
