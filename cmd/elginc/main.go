// Command elginc is the CLI driver around the Chi compiler core. It is
// the "file I/O, CLI driver glue" spec.md §1 explicitly places outside
// THE CORE, built the way cmd/dwscript is built in the teacher repo: a
// thin main.go delegating to a cobra command tree in ./cmd.
package main

import (
	"os"

	"github.com/elgin-lang/elginc/cmd/elginc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
