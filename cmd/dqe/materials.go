package main

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/dqe-extractor/internal/aggregate"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
)

func newMaterialsCommand(root *rootOptions) *cobra.Command {
	var f extractFlags
	var asJSON bool
	var limit int
	cmd := &cobra.Command{
		Use:   "materials <file>...",
		Short: "Total the quantities of each material across files and sheets",
		Args:  cobra.MinimumNArgs(1),
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

			// One slot per file keeps the aggregation in argument order.
			perFile := make([][]boq.Document, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(a.cfg.Workers.Count)
			for i, path := range args {
				g.Go(func() error {
					res, err := a.proc.ProcessFile(ctx, path, opts)
					if err != nil {
						return err
					}
					perFile[i] = res.Documents()
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			var docs []boq.Document
			for _, d := range perFile {
				docs = append(docs, d...)
			}

			materials := aggregate.New(a.lib).ByMaterial(docs...)
			if limit > 0 && len(materials) > limit {
				materials = materials[:limit]
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(materials)
			}
			t := newTable(out, "Designation", "Unit", "Quantity", "Occurrences", "Sheets")
			for _, m := range materials {
				t.Append([]string{
					m.Designation, m.Unit, strconv.FormatFloat(m.TotalQuantity, 'f', 2, 64),
					strconv.Itoa(m.Occurrences), strconv.Itoa(len(m.Sheets)),
				})
			}
			t.Render()
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().IntVar(&limit, "limit", 0, "keep only the largest N materials")
	return cmd
}
