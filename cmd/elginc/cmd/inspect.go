package cmd

import (
	"fmt"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/elgin-lang/elginc/internal/errlog"
	"github.com/elgin-lang/elginc/internal/infer"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Dump a Chi source file's analyzed compilation unit as a Go value",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// runInspect runs the full pipeline and pretty-prints the resulting
// CompilationUnit with kr/pretty, useful for debugging the builder and
// inferencer without reaching for a debugger.
func runInspect(_ *cobra.Command, args []string) error {
	source, filename, err := readSource(args)
	if err != nil {
		return err
	}

	sink := errlog.NewSink()
	unit, ok := buildUnit(source, sink)
	if ok {
		ok = infer.Analyze(unit, sink)
	}

	pretty.Println(unit)

	if !ok {
		printRecords(sink, source, filename)
		return fmt.Errorf("analysis failed with %d error(s)", len(sink.Records()))
	}
	return nil
}
