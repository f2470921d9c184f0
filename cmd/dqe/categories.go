package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newCategoriesCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the material categories and their sub-categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), root, appNeeds{})
			if err != nil {
				return err
			}
			defer a.Close()

			t := newTable(cmd.OutOrStdout(), "Category", "Keywords", "Sub-categories")
			for _, c := range a.lib.Categories {
				subs := make([]string, 0, len(c.SubCategories))
				for _, s := range c.SubCategories {
					subs = append(subs, s.Name)
				}
				t.Append([]string{c.Name, strconv.Itoa(len(c.Keywords)), strings.Join(subs, ", ")})
			}
			t.Append([]string{a.lib.FallbackCategory, "-", ""})
			t.Render()
			return nil
		},
	}
}
