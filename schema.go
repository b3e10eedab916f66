package goshape

import (
	"context"

	js "github.com/reoring/goshape/jsonschema"
	"github.com/reoring/goshape/reqtree"
)

// Shape is a base shape: the field tree a family of derived schemas is built
// from. Two schemas can exchange requirements only when they share the same
// *Shape (pointer identity); structurally equal shapes created separately are
// distinct.
type Shape struct {
	fields Fields
}

// Fields returns a copy of the base fields.
func (s *Shape) Fields() Fields { return s.fields.clone() }

// Schema is a derived schema: a base shape with an accumulated requirement
// tree applied. Schemas are immutable; every declaration returns a new one.
// A Schema is itself a Checker and can be embedded in other shapes.
type Schema struct {
	base     *Shape
	reqs     reqtree.Tree
	fields   Fields // base fields with requirements coalesced
	required bool

	// both variants share fields; each points at the other
	requiredVariant *Schema
	optionalVariant *Schema
}

var (
	_ Checker      = (*Schema)(nil)
	_ JSONSchemaer = (*Schema)(nil)
)

// New creates a base shape from fields and returns its schema with no
// requirements: every field is optional unless its checker is already
// required.
func New(fields Fields) *Schema {
	s, err := enhance(&Shape{fields: fields.clone()}, reqtree.Tree{}, false, Root())
	if err != nil {
		// unreachable: an empty requirement tree references no keys
		panic(err)
	}
	return s
}

// enhance coalesces reqs onto base and returns the schema variant selected by
// required. at prefixes reference error paths when base is embedded.
func enhance(base *Shape, reqs reqtree.Tree, required bool, at PathRef) (*Schema, error) {
	fields, err := coalesce(base.fields, reqs, at)
	if err != nil {
		return nil, err
	}
	opt := &Schema{base: base, reqs: reqs, fields: fields}
	req := &Schema{base: base, reqs: reqs, fields: fields, required: true}
	opt.requiredVariant, opt.optionalVariant = req, opt
	req.requiredVariant, req.optionalVariant = req, opt
	if required {
		return req, nil
	}
	return opt, nil
}

// coalesce returns a copy of fields with the nodes named by reqs replaced by
// their required variants, descending into nested shapes and embedded schemas.
func coalesce(fields Fields, reqs reqtree.Tree, at PathRef) (Fields, error) {
	out := fields.clone()
	for _, k := range reqs.Keys() {
		p := at.Field(k)
		n, ok := fields[k]
		if !ok {
			return nil, &ReferenceError{Path: p.Pointer(), Key: k, Err: ErrInvalidKey}
		}
		sub := reqs[k]
		if sub == nil {
			out[k] = n.asRequired()
			continue
		}
		switch n.kind {
		case KindNested:
			cf, err := coalesce(n.fields, sub, p)
			if err != nil {
				return nil, err
			}
			out[k] = Node{kind: KindNested, fields: cf, required: true}
		case KindSchema:
			ds, err := n.schema.declare(sub, p)
			if err != nil {
				return nil, err
			}
			out[k] = Node{kind: KindSchema, schema: ds.AsRequired()}
		default:
			// a leaf has no children to require
			if len(sub) > 0 {
				ck := sub.Keys()[0]
				return nil, &ReferenceError{Path: p.Field(ck).Pointer(), Key: ck, Err: ErrInvalidKey}
			}
			out[k] = n.asRequired()
		}
	}
	return out, nil
}

func (s *Schema) declare(t reqtree.Tree, at PathRef) (*Schema, error) {
	return enhance(s.base, reqtree.Merge(s.reqs, t), s.required, at)
}

// Requires parses declaration text, merges it with the schema's accumulated
// requirements and returns the derived schema. It fails with a
// *reqtree.ParseError for malformed text and a *ReferenceError when a key does
// not exist in the base shape.
func (s *Schema) Requires(text string) (*Schema, error) {
	t, err := reqtree.Parse(text)
	if err != nil {
		return nil, err
	}
	return s.RequiresTree(t)
}

// MustRequires is like Requires but panics on error.
func (s *Schema) MustRequires(text string) *Schema {
	out, err := s.Requires(text)
	if err != nil {
		panic(err)
	}
	return out
}

// RequiresTree is Requires for an already parsed tree.
func (s *Schema) RequiresTree(t reqtree.Tree) (*Schema, error) {
	return s.declare(t, Root())
}

// PassedInto merges the requirements that d declared for field into this
// schema. The declared checker must be a *Schema derived from the same base
// shape.
func (s *Schema) PassedInto(d Declarer, field string) (*Schema, error) {
	c, ok := d.FieldChecker(field)
	if !ok {
		return nil, &ReferenceError{Path: "/", Key: field, Err: ErrNotDeclared}
	}
	other, ok := c.(*Schema)
	if !ok || other == nil {
		return nil, &ReferenceError{Path: "/", Key: field, Err: ErrNotDeclared}
	}
	if other.base != s.base {
		return nil, &ReferenceError{Path: "/", Key: field, Err: ErrShapeMismatch}
	}
	return s.RequiresTree(other.reqs)
}

// MustPassedInto is like PassedInto but panics on error.
func (s *Schema) MustPassedInto(d Declarer, field string) *Schema {
	out, err := s.PassedInto(d, field)
	if err != nil {
		panic(err)
	}
	return out
}

// Base returns the originating base shape.
func (s *Schema) Base() *Shape { return s.base }

// Requirements returns a copy of the accumulated requirement tree.
func (s *Schema) Requirements() reqtree.Tree { return s.reqs.Clone() }

// Fields returns a copy of the coalesced fields.
func (s *Schema) Fields() Fields { return s.fields.clone() }

// Lookup descends through nested shapes and embedded schemas.
func (s *Schema) Lookup(path ...string) (Node, bool) {
	fields := s.fields
	var n Node
	for i, k := range path {
		var ok bool
		n, ok = fields[k]
		if !ok {
			return Node{}, false
		}
		if i < len(path)-1 {
			switch n.kind {
			case KindNested:
				fields = n.fields
			case KindSchema:
				fields = n.schema.fields
			default:
				return Node{}, false
			}
		}
	}
	if len(path) == 0 {
		return Embed(s), true
	}
	return n, true
}

// IsRequired reports whether the schema rejects an absent value.
func (s *Schema) IsRequired() bool { return s.required }

// AsRequired returns the required variant. It keeps the base shape and
// requirements, so further declarations stay required.
func (s *Schema) AsRequired() *Schema { return s.requiredVariant }

// AsOptional returns the optional variant.
func (s *Schema) AsOptional() *Schema { return s.optionalVariant }

// Required implements Checker.
func (s *Schema) Required() Checker { return s.requiredVariant }

// Check implements Checker: values[key] must be an object satisfying the
// coalesced fields.
func (s *Schema) Check(ctx context.Context, values map[string]any, key, component string) error {
	return objectChecker{fields: s.fields, required: s.required}.Check(ctx, values, key, component)
}

// Validate checks a whole document. A nil document is absent.
func (s *Schema) Validate(ctx context.Context, v any) error {
	if v == nil {
		if s.required {
			return Issues{RequiredIssue(Root(), "")}
		}
		return nil
	}
	if iss := checkFields(ctx, s.fields, v, Root(), ""); len(iss) > 0 {
		return iss
	}
	return nil
}

// JSONSchema projects the coalesced fields into JSON Schema.
func (s *Schema) JSONSchema() (*js.Schema, error) { return fieldsJSONSchema(s.fields) }
