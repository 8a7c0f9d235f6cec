// Command nilan is the CLI front end for the language runtime: it loads
// a source file and runs it, drops into a line-buffered REPL, or
// disassembles a compiled chunk for inspection.
//
// Grounded on informatter-nilan's main.go/cmd_run_compiled.go/
// cmd_repl_compiled.go/cmd_emit_bytecode.go, which wired one subcommand
// per file directly in package main; generalized here into three
// subcommands (run, repl, disasm) registered the same way with
// google/subcommands.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&replCmd{}, "")
	subcommands.Register(&disasmCmd{}, "")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
