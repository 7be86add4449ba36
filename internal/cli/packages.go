package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/asad/wellhaven/internal/catalog"
)

var (
	packagesCategory string
	packagesSearch   string
	packagesSort     string
)

// packagesCmd prints the catalog without starting the server.
var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List health packages",
	Long:  `List the health packages in the catalog, optionally filtered and sorted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pkgs := catalog.Default().Filter(catalog.Query{
			Search:   packagesSearch,
			Category: packagesCategory,
			Sort:     packagesSort,
		})

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tINCLUSIONS\tDURATION")
		for _, p := range pkgs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f\t%d\t%s\n", p.ID, p.Name, p.Category, p.Price, len(p.Inclusions), p.Duration)
		}
		return tw.Flush()
	},
}

func init() {
	packagesCmd.Flags().StringVar(&packagesCategory, "category", catalog.CategoryAll, "only list packages in this category")
	packagesCmd.Flags().StringVar(&packagesSearch, "search", "", "case-insensitive match on name or description")
	packagesCmd.Flags().StringVar(&packagesSort, "sort", catalog.SortFeatured, "featured, price-low, price-high or name")
}
