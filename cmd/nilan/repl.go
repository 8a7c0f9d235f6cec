package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"nilan"
	"nilan/compiler"
	"nilan/lexer"
	"nilan/token"
	"nilan/vm"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
)

type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "start an interactive session" }
func (*replCmd) Usage() string {
	return "repl:\n  Read, compile, and run one line (or block) at a time.\n"
}
func (*replCmd) SetFlags(*flag.FlagSet) {}

func (*replCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "repl: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	m := vm.New(os.Stdout)
	var buffer strings.Builder

	for {
		if buffer.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return subcommands.ExitSuccess
			}
			fmt.Fprintf(os.Stderr, "repl: %v\n", err)
			return subcommands.ExitFailure
		}

		if buffer.Len() == 0 && strings.TrimSpace(line) == "exit" {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)

		if !braceBalanced(buffer.String()) {
			continue
		}

		source := buffer.String()
		buffer.Reset()

		result, err := nilan.Interpret(m, source)
		switch result {
		case nilan.ResultCompileError:
			ce := err.(compiler.CompileError)
			for _, d := range ce.Diagnostics {
				fmt.Fprintln(os.Stderr, d)
			}
		case nilan.ResultRuntimeError:
			fmt.Fprint(os.Stderr, err.Error())
		}
	}
}

// braceBalanced scans source with a throwaway lexer.Scanner and reports
// whether every '{' has a matching '}' yet, so the REPL knows to keep
// reading lines before handing a block to the compiler.
func braceBalanced(source string) bool {
	s := lexer.New(source)
	depth := 0
	for {
		tok := s.ScanToken()
		switch tok.Kind {
		case token.LeftBrace:
			depth++
		case token.RightBrace:
			depth--
		case token.EOF:
			return depth <= 0
		}
	}
}
