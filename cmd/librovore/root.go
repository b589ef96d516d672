// Package librovore implements the CLI surface (spec §1, §6): a thin
// cobra-based caller of internal/query's entry points. Argument parsing
// itself is explicitly out of core scope; this package is the external
// collaborator that plumbs flags into query.Runtime calls.
package librovore

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes per spec §6.
const (
	exitSuccess             = 0
	exitProcessorUnavailable = 1
	exitUsageError           = 2
	exitNetworkIO            = 3
)

type globalFlags struct {
	format          string
	color           bool
	revealInternals bool
	configPath      string
	cacheDir        string
}

var flags globalFlags

// Execute builds and runs the root command, returning the process exit
// code (spec §6).
func Execute() int {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		if code, ok := err.(exitCodeError); ok {
			fmt.Fprintln(os.Stderr, code.Error())
			return code.code
		}
		fmt.Fprintln(os.Stderr, err)
		return exitUsageError
	}
	return exitSuccess
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "librovore",
		Short:         "Query structured documentation sites by name",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.format, "format", "markdown", "output format: json or markdown")
	root.PersistentFlags().BoolVar(&flags.color, "color", true, "colorize terminal output")
	root.PersistentFlags().BoolVar(&flags.revealInternals, "reveal-internals", false, "include internal fields in output")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a librovore TOML configuration file")
	root.PersistentFlags().StringVar(&flags.cacheDir, "cache-dir", defaultCacheDir, "directory for cache and log files")

	if os.Getenv("NO_COLOR") != "" {
		flags.color = false
	}

	root.AddCommand(
		newQueryInventoryCommand(),
		newQueryContentCommand(),
		newDetectCommand(),
		newSurveyProcessorsCommand(),
		newServeCommand(),
	)
	return root
}

// exitCodeError lets a subcommand RunE signal a specific exit code while
// still printing a clean message (no cobra usage dump).
type exitCodeError struct {
	code int
	msg  string
}

func (e exitCodeError) Error() string { return e.msg }

func newExitError(code int, format string, args ...any) error {
	return exitCodeError{code: code, msg: fmt.Sprintf(format, args...)}
}
