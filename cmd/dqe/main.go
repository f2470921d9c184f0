// Command dqe extracts priced items from construction bills of quantities
// (DQE/BPU workbooks and PDFs).
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	logFormat string
	verbose   bool
	patterns  string
	dbURL     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		printError("Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "dqe",
		Short:         "Extract priced items from bills of quantities",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), opts.logFormat, opts.verbose))
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&opts.patterns, "patterns", "", "YAML pattern dialect (default $DQE_PATTERNS_FILE)")
	pf.StringVar(&opts.dbURL, "db", "", "extraction store DSN (default $DQE_DB_URL)")

	root.AddCommand(
		newAnalyzeCommand(opts),
		newExtractCommand(opts),
		newBatchCommand(opts),
		newMaterialsCommand(opts),
		newCategoriesCommand(opts),
		newHistoryCommand(opts),
	)
	return root
}

// newLogger writes to w. The text format drops time and level so CLI output
// stays readable.
func newLogger(w io.Writer, format string, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey) {
				return slog.Attr{}
			}
			return a
		},
	}))
}
