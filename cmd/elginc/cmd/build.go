package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elgin-lang/elginc/internal/errlog"
	"github.com/elgin-lang/elginc/internal/ir"
	"github.com/elgin-lang/elginc/internal/lexer"
	"github.com/elgin-lang/elginc/internal/parser"
)

var buildCmd = &cobra.Command{
	Use:   "build [file]",
	Short: "Lower a Chi source file to stack IR and print each procedure's instructions",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

// buildUnit runs the lexer, parser, and IR builder over source, logging
// to sink. Shared by the build, analyze, procs, emit, and inspect
// subcommands.
func buildUnit(source string, sink *errlog.Sink) (*ir.CompilationUnit, bool) {
	toks := lexer.New(source, sink).Tokenize()
	prog, ok := parser.Parse(toks, sink)
	if !ok {
		return ir.NewUnit(), false
	}
	unit, ok := ir.NewBuilder(sink).Build(prog)
	return unit, ok
}

func printUnit(unit *ir.CompilationUnit) {
	for _, proc := range unit.Procs {
		fmt.Printf("proc %s:\n", proc.Name)
		for _, ins := range proc.Body {
			fmt.Printf("  %s\n", ins)
		}
	}
}

func runBuild(_ *cobra.Command, args []string) error {
	source, filename, err := readSource(args)
	if err != nil {
		return err
	}

	sink := errlog.NewSink()
	unit, ok := buildUnit(source, sink)
	printUnit(unit)

	if !ok {
		printRecords(sink, source, filename)
		return fmt.Errorf("IR lowering failed with %d error(s)", len(sink.Records()))
	}
	return nil
}
