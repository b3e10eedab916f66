package commands

import (
	"github.com/spf13/cobra"

	"github.com/reoring/goshape/internal/cli/config"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	var d declaration
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of a derived schema",
		Long: `Derive a schema from --shape with the given declarations and print it as
JSON Schema. Required fields appear in each object's "required" list.`,
		Example: `  goshape schema --shapes shapes.yaml --shape user --requires "id, address{zip}"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			reg, err := loadRegistry(ctx)
			if err != nil {
				return err
			}
			s, err := d.resolve(ctx, reg)
			if err != nil {
				return err
			}
			out, err := s.JSONSchema()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	d.register(cmd, true)
	return cmd
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the shapes and components of a shape file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			reg, err := loadRegistry(ctx)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if cfg.Output == config.OutputJSON {
				return writeJSON(w, map[string][]string{
					"shapes":     reg.ShapeNames(),
					"components": reg.ComponentNames(),
				})
			}
			renderNames(w, "Shape", reg.ShapeNames())
			renderNames(w, "Component", reg.ComponentNames())
			return nil
		},
	}
	cmd.Flags().String("shapes", "", "shape file (yaml, json or jsonc)")
	return cmd
}
