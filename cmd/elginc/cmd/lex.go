package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elgin-lang/elginc/internal/errlog"
	"github.com/elgin-lang/elginc/internal/lexer"
	"github.com/elgin-lang/elginc/internal/token"
)

var lexShowPos bool

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Chi source file and print the resulting tokens",
	Args:  cobra.ExactArgs(1),
	RunE:  runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
}

func runLex(_ *cobra.Command, args []string) error {
	source, filename, err := readSource(args)
	if err != nil {
		return err
	}

	sink := errlog.NewSink()
	toks := lexer.New(source, sink).Tokenize()

	for _, tok := range toks {
		printToken(tok)
	}

	if sink.HasErrors() {
		printRecords(sink, source, filename)
		return fmt.Errorf("lexing failed with %d error(s)", len(sink.Records()))
	}
	return nil
}

func printToken(tok token.Token) {
	if lexShowPos {
		fmt.Printf("%-14s %-12q @%s\n", tok.Type, tok.Literal, tok.Pos)
		return
	}
	fmt.Printf("%-14s %q\n", tok.Type, tok.Literal)
}

func printRecords(sink *errlog.Sink, source, filename string) {
	fmt.Printf("%s: %s", filename, errlog.FormatAll(sink.Records(), source))
}
