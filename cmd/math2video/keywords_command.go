package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ivlev/math2video/internal/source"
)

func newKeywordsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keywords",
		Short: "Show the keyword fallback table in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := source.Keywords()
			rows := make([][]string, 0, len(groups))
			for i, g := range groups {
				list := g.Instructions()
				types := make([]string, 0, len(list))
				for _, in := range list {
					types = append(types, string(in.Type))
				}
				keywords := strings.Join(g.Keywords, ", ")
				if keywords == "" {
					keywords = "(anything else)"
				}
				rows = append(rows, []string{fmt.Sprintf("%d", i+1), g.Name, keywords, strings.Join(types, " + ")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Priority", "Group", "Keywords", "Instructions"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}
}
