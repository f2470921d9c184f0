package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/dqe-extractor/internal/repository"
)

func newHistoryCommand(root *rootOptions) *cobra.Command {
	var hash, id string
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored extractions, or print one with --id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), root, appNeeds{store: true})
			if err != nil {
				return err
			}
			defer a.Close()
			out := cmd.OutOrStdout()

			if id != "" {
				e, err := a.store.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					ID       string   `json:"id"`
					Status   string   `json:"status"`
					Warnings []string `json:"warnings,omitempty"`
					Document any      `json:"document"`
				}{e.ID.String(), e.Status, e.Warnings, e.Document})
			}

			rows, err := a.store.List(cmd.Context(), repository.ListFilter{FileHash: hash, Limit: limit})
			if err != nil {
				return err
			}
			t := newTable(out, "ID", "When", "File", "Sheet", "Mode", "Status", "Items", "Total")
			for _, e := range rows {
				t.Append([]string{
					e.ID.String(), e.CreatedAt.Local().Format(time.DateTime), e.FileHash, e.SheetName,
					string(e.Mode), e.Status, strconv.Itoa(e.ItemCount), fmt.Sprintf("%.2f %s", e.Total, e.Currency),
				})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&hash, "hash", "", "only extractions of the file with this hash")
	cmd.Flags().StringVar(&id, "id", "", "print one extraction")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows")
	return cmd
}
