package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	backendllvm "github.com/elgin-lang/elginc/backend/llvm"
	"github.com/elgin-lang/elginc/internal/errlog"
	"github.com/elgin-lang/elginc/internal/infer"
)

var emitCmd = &cobra.Command{
	Use:   "emit [file]",
	Short: "Analyze a Chi source file and print its LLVM IR",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmit,
}

func init() {
	rootCmd.AddCommand(emitCmd)
}

func runEmit(_ *cobra.Command, args []string) error {
	source, filename, err := readSource(args)
	if err != nil {
		return err
	}

	sink := errlog.NewSink()
	unit, ok := buildUnit(source, sink)
	if ok {
		ok = infer.Analyze(unit, sink)
	}
	if !ok {
		printRecords(sink, source, filename)
		return fmt.Errorf("analysis failed with %d error(s), refusing to emit", len(sink.Records()))
	}

	module, err := backendllvm.Emit(unit)
	if err != nil {
		return fmt.Errorf("LLVM emission failed: %w", err)
	}
	fmt.Print(module)
	return nil
}
