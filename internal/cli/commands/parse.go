package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/goshape/internal/cli/config"
	"github.com/reoring/goshape/reqtree"
)

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	var (
		file  string
		paths bool
	)
	cmd := &cobra.Command{
		Use:   "parse [DSL]",
		Short: "Parse a requirement declaration",
		Long: `Parse a requirement declaration such as "id, address{zip}" and print the
resulting tree as canonical text or JSON.

The declaration is read from the argument, from --file, or from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			text, err := declarationText(cmd, args, file)
			if err != nil {
				return err
			}
			t, err := reqtree.Parse(text)
			if err != nil {
				return err
			}
			config.GetLogger(cmd.Context()).Debug("parsed declaration", "keys", len(t))
			if paths {
				return renderPaths(cmd.OutOrStdout(), cfg.Output, t.Paths())
			}
			return renderTree(cmd.OutOrStdout(), cfg.Output, t)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the declaration from a file")
	cmd.Flags().BoolVar(&paths, "paths", false, "print the JSON Pointer of every requirement")
	return cmd
}

func declarationText(cmd *cobra.Command, args []string, file string) (string, error) {
	switch {
	case len(args) == 1 && file != "":
		return "", fmt.Errorf("give the declaration as an argument or with --file, not both")
	case len(args) == 1:
		return args[0], nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func renderPaths(w io.Writer, mode string, ps []string) error {
	if mode == config.OutputJSON {
		if ps == nil {
			ps = []string{}
		}
		return writeJSON(w, ps)
	}
	for _, p := range ps {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	return nil
}
