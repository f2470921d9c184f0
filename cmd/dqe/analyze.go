package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newAnalyzeCommand(root *rootOptions) *cobra.Command {
	var sel selectionFlags
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Preview the sheets of a workbook or PDF without extracting them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selection, err := sel.selection()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), root, appNeeds{})
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.proc.Analyze(cmd.Context(), args[0], selection)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			t := newTable(out, "#", "Sheet", "Type", "Rows", "Items~", "Selected")
			for _, s := range res.Sheets {
				t.Append([]string{
					strconv.Itoa(s.Index), s.Name, string(s.Type),
					strconv.Itoa(s.Rows), strconv.Itoa(s.EstimatedItems), strconv.FormatBool(s.Selected),
				})
			}
			t.Render()
			sum := res.Summary
			fmt.Fprintf(out, "\n%d sheets: %d detailed, %d summary, %d recap, %d unknown; about %d items\n",
				sum.Sheets, sum.Detailed, sum.Summary, sum.Recap, sum.Unknown, sum.EstimatedItems)
			return nil
		},
	}
	sel.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full analysis as JSON")
	return cmd
}
