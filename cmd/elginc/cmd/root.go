package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information, set by build flags.
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "elginc",
	Short: "Chi compiler core driver",
	Long: `elginc drives the Chi compiler core through its pipeline stages:
lexing, parsing, IR lowering, and type inference.

Each subcommand runs the pipeline up to a given stage and prints the
result, which makes it useful both as a small end-to-end compiler
front end and as a debugging tool for the core itself.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}

func readSource(args []string) (string, string, error) {
	if len(args) == 0 {
		return "", "", fmt.Errorf("a source file argument is required")
	}
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", "", fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return string(content), filename, nil
}
