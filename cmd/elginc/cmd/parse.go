package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elgin-lang/elginc/internal/errlog"
	"github.com/elgin-lang/elginc/internal/lexer"
	"github.com/elgin-lang/elginc/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a Chi source file and print the resulting AST",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, args []string) error {
	source, filename, err := readSource(args)
	if err != nil {
		return err
	}

	sink := errlog.NewSink()
	toks := lexer.New(source, sink).Tokenize()
	prog, ok := parser.Parse(toks, sink)

	for _, decl := range prog.Declarations {
		fmt.Println(decl.String())
	}

	if !ok {
		printRecords(sink, source, filename)
		return fmt.Errorf("parsing failed with %d error(s)", len(sink.Records()))
	}
	return nil
}
