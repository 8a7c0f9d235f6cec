package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"nilan/compiler"
	"nilan/vm"

	"github.com/google/subcommands"
)

type disasmCmd struct{}

func (*disasmCmd) Name() string     { return "disasm" }
func (*disasmCmd) Synopsis() string { return "compile a file and print its bytecode" }
func (*disasmCmd) Usage() string {
	return "disasm <file>:\n  Compile a source file and dump its chunk in human-readable form.\n"
}
func (*disasmCmd) SetFlags(*flag.FlagSet) {}

func (*disasmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "disasm: missing file argument")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "disasm: %v\n", err)
		return subcommands.ExitFailure
	}

	m := vm.New(os.Stdout)
	c, err := compiler.Compile(string(data), m)
	if err != nil {
		ce := err.(compiler.CompileError)
		for _, d := range ce.Diagnostics {
			fmt.Fprintln(os.Stderr, d)
		}
		return subcommands.ExitStatus(exitCompileError)
	}

	fmt.Print(c.Disassemble(args[0]))
	return subcommands.ExitSuccess
}
