package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elgin-lang/elginc/internal/errlog"
	"github.com/elgin-lang/elginc/internal/infer"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Run type inference over a Chi source file's IR and print the typed instructions",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, args []string) error {
	source, filename, err := readSource(args)
	if err != nil {
		return err
	}

	sink := errlog.NewSink()
	unit, ok := buildUnit(source, sink)
	if ok {
		ok = infer.Analyze(unit, sink)
	}
	printUnit(unit)

	if !ok {
		printRecords(sink, source, filename)
		return fmt.Errorf("analysis failed with %d error(s)", len(sink.Records()))
	}
	return nil
}
