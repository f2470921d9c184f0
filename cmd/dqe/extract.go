package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/dqe-extractor/internal/common"
	"github.com/joseph-ayodele/dqe-extractor/internal/export"
)

func newExtractCommand(root *rootOptions) *cobra.Command {
	var f extractFlags
	var output, format string
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract the priced items of one workbook or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options("")
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), root, appNeeds{mode: opts.Mode})
			if err != nil {
				return err
			}
			defer a.Close()

			if opts.Currency == "" {
				opts.Currency = a.cfg.Export.Currency
			}
			res, err := a.proc.ProcessFile(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			report := export.NewReport(res.Documents(), res.AllWarnings())
			for _, w := range report.Warnings {
				a.logger.Warn("extract.warning", "msg", w)
			}
			a.logger.Info("extract.done",
				"file", filepath.Base(args[0]),
				"documents", len(report.Documents),
				"items", report.ItemCount,
				"total", report.Total,
				"elapsed", res.Elapsed,
			)
			return writeReport(cmd, a, report, output, format)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.json, .csv or .xlsx); default stdout")
	cmd.Flags().StringVar(&format, "format", "json", "stdout format: json or csv")
	return cmd
}

// writeReport writes to output when set, else to stdout in format.
func writeReport(cmd *cobra.Command, a *app, r export.Report, output, format string) error {
	if output != "" {
		if !filepath.IsAbs(output) && filepath.Dir(output) == "." {
			output = filepath.Join(a.cfg.Export.OutDir, output)
		}
		if err := a.exporter.WriteFile(output, r); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
		return nil
	}
	f := export.Format(strings.ToLower(format))
	if f == export.FormatXLSX {
		return common.NewAppError(common.CodeConfig, "xlsx needs --output", common.ErrInvalidInput)
	}
	return a.exporter.Write(cmd.OutOrStdout(), f, r)
}
