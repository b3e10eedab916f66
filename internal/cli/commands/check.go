package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"

	goshape "github.com/reoring/goshape"
	"github.com/reoring/goshape/internal/cli/config"
	"github.com/reoring/goshape/reqtree"
	"github.com/reoring/goshape/shapefile"
	"github.com/reoring/goshape/source"
)

// declaration is the set of flags selecting and deriving a schema.
type declaration struct {
	shape      string
	requires   []string
	passedInto []string
}

func (d *declaration) register(cmd *cobra.Command, withPassedInto bool) {
	cmd.Flags().String("shapes", "", "shape file (yaml, json or jsonc)")
	cmd.Flags().StringVarP(&d.shape, "shape", "s", "", "shape or derived schema name")
	cmd.Flags().StringArrayVarP(&d.requires, "requires", "r", nil, "requirement declaration to apply (repeatable)")
	if withPassedInto {
		cmd.Flags().StringArrayVar(&d.passedInto, "passed-into", nil, "merge the declaration of Component.field (repeatable)")
	}
	_ = cmd.MarkFlagRequired("shape")
}

func loadRegistry(ctx context.Context) (*shapefile.Registry, error) {
	cfg := config.FromContext(ctx)
	if cfg.Shapes == "" {
		return nil, errors.New("no shape file: pass --shapes or set shapes in goshape.yaml")
	}
	config.GetLogger(ctx).Debug("loading shape file", "path", cfg.Shapes)
	return shapefile.LoadFile(cfg.Shapes)
}

// resolve looks up the named schema and applies requires then passed-into
// declarations in flag order.
func (d *declaration) resolve(ctx context.Context, reg *shapefile.Registry) (*goshape.Schema, error) {
	s, ok := reg.Schema(d.shape)
	if !ok {
		return nil, fmt.Errorf("%w: shape %q", shapefile.ErrUnknownName, d.shape)
	}
	var err error
	for _, text := range d.requires {
		if s, err = s.Requires(text); err != nil {
			return nil, err
		}
	}
	for _, ref := range d.passedInto {
		if s, err = reg.PassedInto(s, ref); err != nil {
			return nil, err
		}
	}
	config.GetLogger(ctx).Debug("resolved schema", "shape", d.shape, "requirements", s.Requirements().String())
	return s, nil
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	var (
		d      declaration
		format string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "check DOC",
		Short: "Validate a document against a derived schema",
		Long: `Load the shape file, derive a schema from --shape with the given --requires
and --passed-into declarations, and validate DOC against it.

DOC may be json, jsonc or yaml; the format is inferred from the extension
unless --format is given. Use "-" to read from stdin. The command exits
with an error when the document has issues.`,
		Example: `  goshape check --shapes shapes.yaml --shape user --requires "id, address{zip}" user.json
  goshape check --shapes shapes.yaml --shape user --passed-into UserCard.user user.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			reg, err := loadRegistry(ctx)
			if err != nil {
				return err
			}
			s, err := d.resolve(ctx, reg)
			if err != nil {
				var re *goshape.ReferenceError
				var pe *reqtree.ParseError
				if !errors.As(err, &re) && !errors.As(err, &pe) {
					return err
				}
				iss := goshape.IssuesFromError(err)
				if rerr := renderIssues(cmd.OutOrStdout(), cfg.Output, iss); rerr != nil {
					return rerr
				}
				return fmt.Errorf("%w: %d found", ErrIssuesFound, len(iss))
			}
			doc, iss, err := readDocument(cmd.InOrStdin(), args[0], format, strict)
			if err != nil {
				return err
			}
			if cfg.FailFast && len(iss) > 1 {
				iss = iss[:1]
			}
			if len(iss) == 0 || !cfg.FailFast {
				if err := s.Validate(goshape.WithFailFast(ctx, cfg.FailFast), doc); err != nil {
					more, ok := goshape.AsIssues(err)
					if !ok {
						return err
					}
					iss = goshape.AppendIssues(iss, more...)
				}
			}
			if len(iss) == 0 {
				return renderIssues(cmd.OutOrStdout(), cfg.Output, nil)
			}
			if rerr := renderIssues(cmd.OutOrStdout(), cfg.Output, iss); rerr != nil {
				return rerr
			}
			return fmt.Errorf("%w: %d found", ErrIssuesFound, len(iss))
		},
	}
	d.register(cmd, true)
	cmd.Flags().StringVar(&format, "format", "", "document format (json|jsonc|yaml)")
	cmd.Flags().BoolVar(&strict, "strict", false, "report duplicate object keys")
	return cmd
}

// readDocument loads DOC ("-" for stdin) and decodes it. With strict set,
// duplicate keys in JSON and JSONC documents are returned as issues; YAML
// rejects them while decoding.
func readDocument(stdin io.Reader, path, format string, strict bool) (any, goshape.Issues, error) {
	var (
		f   source.Format
		b   []byte
		err error
	)
	if format != "" {
		if f, err = source.ParseFormat(format); err != nil {
			return nil, nil, err
		}
	}
	if path == "-" {
		if f == "" {
			f = source.FormatJSON
		}
		b, err = io.ReadAll(stdin)
	} else {
		if f == "" {
			f = source.FormatFromPath(path)
		}
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, nil, err
	}
	var dups goshape.Issues
	if strict && f != source.FormatYAML {
		raw := b
		if f == source.FormatJSONC {
			raw = jsonc.ToJSON(b)
		}
		ptrs, err := source.DuplicateKeys(raw)
		if err != nil {
			return nil, nil, err
		}
		for _, p := range ptrs {
			dups = append(dups, goshape.DuplicateKeyIssue(p))
		}
	}
	v, err := source.Decode(b, f)
	if err != nil {
		return nil, nil, err
	}
	return v, dups, nil
}
