// Package cmd is the tmlc command tree, grounded on
// _examples/CWBudde-go-dws/cmd/dwscript/cmd's subcommand layout: one
// file per subcommand, a package-level rootCmd other files register
// themselves onto from init(), and a thin Execute entry point main.go
// calls.
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
	Use:   "tmlc",
	Short: "tmlc — ahead-of-time compiler for the Language",
	Long: `tmlc compiles Language source to LLVM IR text through a strictly
staged pipeline: lexer, parser, type checker, borrow checker, and an
LLVM IR generator.

Each stage reports its diagnostics in "file:line:col: kind: message"
form and a failed stage halts the pipeline before the next one runs.`,
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

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
