package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tyler180/bbref-season-stats/internal/bbref"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List supported categories and their first season",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Category", "Since", "Header", "Table", "Path"})
			for _, c := range bbref.Categories() {
				d := c.Descriptor()
				t.AppendRow(table.Row{d.Name, d.Floor, d.Shape.String(), d.TableID, d.Path})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		},
	}
}
