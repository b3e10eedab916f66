package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/goshape/internal/cli/config"
	"github.com/reoring/goshape/reqtree"
)

// NewMergeCommand creates the merge command.
func NewMergeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "merge DSL...",
		Short: "Merge requirement declarations",
		Long: `Parse each declaration and merge them left to right into one requirement
tree, the same way chained Requires calls combine.`,
		Example: `  goshape merge "foo{bar}" "foo{baz}, qux"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			trees := make([]reqtree.Tree, 0, len(args))
			for i, a := range args {
				t, err := reqtree.Parse(a)
				if err != nil {
					return fmt.Errorf("declaration %d: %w", i+1, err)
				}
				trees = append(trees, t)
			}
			return renderTree(cmd.OutOrStdout(), cfg.Output, reqtree.MergeAll(trees...))
		},
	}
}
