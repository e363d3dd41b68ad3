package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// errDifferences is returned by the root command when the inputs differ. It
// maps to exit status 1, like diff(1)
var errDifferences = errors.New("differences found")

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "diffx INPUT1 INPUT2",
		Short: "Semantic diff for structured data",
		Long: `diffx compares two JSON, YAML, TOML, INI, XML or CSV documents by structure
rather than by text, reporting which paths were added, removed, modified or
changed type. Use '-' to read one input from stdin.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, o, args)
		},
	}
	o.addFlags(cmd)
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, errDifferences) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
