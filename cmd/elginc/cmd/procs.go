package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"github.com/spf13/cobra"

	"github.com/elgin-lang/elginc/internal/errlog"
	"github.com/elgin-lang/elginc/internal/infer"
)

var procsCmd = &cobra.Command{
	Use:   "procs [file]",
	Short: "List a Chi source file's declared procedures and constants, signature only",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcs,
}

func init() {
	rootCmd.AddCommand(procsCmd)
}

func runProcs(_ *cobra.Command, args []string) error {
	source, filename, err := readSource(args)
	if err != nil {
		return err
	}

	sink := errlog.NewSink()
	unit, ok := buildUnit(source, sink)
	if ok {
		ok = infer.Analyze(unit, sink)
	}

	names := make([]string, 0, len(unit.Procs))
	byName := make(map[string]string, len(unit.Procs))
	for _, p := range unit.Procs {
		args := make([]string, len(p.ArgNames))
		for i, n := range p.ArgNames {
			args[i] = fmt.Sprintf("%s: %s", n, p.ArgTypes[i])
		}
		names = append(names, p.Name)
		byName[p.Name] = fmt.Sprintf("proc %s(%s): %s", p.Name, strings.Join(args, ", "), p.RetType)
	}
	// maruel/natural gives a human-friendly ordering for mixed
	// alphabetic/numeric procedure names (e.g. proc2 before proc10).
	sort.Sort(natural.StringSlice(names))
	for _, n := range names {
		fmt.Println(byName[n])
	}

	constNames := make([]string, 0, len(unit.Consts))
	for name := range unit.Consts {
		constNames = append(constNames, name)
	}
	sort.Sort(natural.StringSlice(constNames))
	for _, n := range constNames {
		fmt.Printf("const %s\n", n)
	}

	if !ok {
		printRecords(sink, source, filename)
		return fmt.Errorf("analysis failed with %d error(s)", len(sink.Records()))
	}
	return nil
}
