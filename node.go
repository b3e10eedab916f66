package goshape

import (
	"context"
	"sort"

	js "github.com/reoring/goshape/jsonschema"
)

// Checker validates the value stored under key in values. It returns nil or an
// error (Issues with paths relative to values). Absent or nil values pass
// unless the checker is required.
type Checker interface {
	Check(ctx context.Context, values map[string]any, key, component string) error
	// Required returns the variant that additionally rejects an absent value.
	Required() Checker
	IsRequired() bool
}

// JSONSchemaer is implemented by checkers that can describe themselves as
// JSON Schema fragments.
type JSONSchemaer interface {
	JSONSchema() (*js.Schema, error)
}

// NodeKind tags the variant held by a Node.
type NodeKind int

const (
	KindLeaf   NodeKind = iota // a leaf Checker
	KindNested                 // a nested Fields mapping
	KindSchema                 // an embedded derived Schema
)

func (k NodeKind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindNested:
		return "nested"
	case KindSchema:
		return "schema"
	default:
		return "unknown"
	}
}

// Node is one field of a shape: a leaf checker, a nested shape or an embedded
// derived schema.
type Node struct {
	kind     NodeKind
	leaf     Checker
	fields   Fields
	schema   *Schema
	required bool // KindNested only
}

// Fields maps field names to nodes. Keys are unique; order is irrelevant.
type Fields map[string]Node

// Leaf wraps a checker. A *Schema is embedded as KindSchema so requirements
// can descend into it; a nil checker, including a nil *Schema, accepts any
// value.
func Leaf(c Checker) Node {
	if s, ok := c.(*Schema); ok {
		if s != nil {
			return Node{kind: KindSchema, schema: s}
		}
		c = nil
	}
	if c == nil {
		c = presenceChecker{}
	}
	return Node{kind: KindLeaf, leaf: c}
}

// Nested wraps a nested shape.
func Nested(f Fields) Node {
	return Node{kind: KindNested, fields: f.clone()}
}

// Embed wraps a derived schema as a field.
func Embed(s *Schema) Node { return Node{kind: KindSchema, schema: s} }

func (n Node) Kind() NodeKind { return n.kind }

// Fields returns the children of a nested node, or of the embedded schema.
// Leaves return nil.
func (n Node) Fields() Fields {
	switch n.kind {
	case KindNested:
		return n.fields.clone()
	case KindSchema:
		return n.schema.Fields()
	default:
		return nil
	}
}

// Schema returns the embedded schema of a KindSchema node.
func (n Node) Schema() *Schema { return n.schema }

// IsRequired reports whether the node rejects an absent value.
func (n Node) IsRequired() bool {
	switch n.kind {
	case KindNested:
		return n.required
	case KindSchema:
		return n.schema.IsRequired()
	default:
		return n.leaf != nil && n.leaf.IsRequired()
	}
}

// Checker returns the checker validating this node.
func (n Node) Checker() Checker {
	switch n.kind {
	case KindNested:
		return objectChecker{fields: n.fields, required: n.required}
	case KindSchema:
		return n.schema
	default:
		if n.leaf == nil {
			return presenceChecker{}
		}
		return n.leaf
	}
}

// Required returns the node's required variant, keeping its kind.
func (n Node) Required() Node { return n.asRequired() }

func (n Node) asRequired() Node {
	switch n.kind {
	case KindNested:
		n.required = true
	case KindSchema:
		n.schema = n.schema.AsRequired()
	default:
		n.leaf = n.Checker().Required()
	}
	return n
}

func (n Node) jsonSchema() (*js.Schema, error) {
	switch n.kind {
	case KindNested:
		return fieldsJSONSchema(n.fields)
	case KindSchema:
		return n.schema.JSONSchema()
	default:
		if jser, ok := n.leaf.(JSONSchemaer); ok {
			return jser.JSONSchema()
		}
		return &js.Schema{}, nil
	}
}

// Keys returns the field names in ascending order.
func (f Fields) Keys() []string {
	ks := make([]string, 0, len(f))
	for k := range f {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

func (f Fields) clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Object returns the nested-shape checker for fields: the value must be an
// object, extra keys are ignored and missing fields are valid unless required.
func Object(fields Fields) Checker { return objectChecker{fields: fields.clone()} }

type objectChecker struct {
	fields   Fields
	required bool
}

func (o objectChecker) Check(ctx context.Context, values map[string]any, key, component string) error {
	p := Root().Field(key)
	v, ok := Present(values, key)
	if !ok {
		if o.required {
			return Issues{RequiredIssue(p, component)}
		}
		return nil
	}
	if iss := checkFields(ctx, o.fields, v, p, component); len(iss) > 0 {
		return iss
	}
	return nil
}

func (o objectChecker) Required() Checker { return objectChecker{fields: o.fields, required: true} }
func (o objectChecker) IsRequired() bool  { return o.required }
func (o objectChecker) JSONSchema() (*js.Schema, error) {
	return fieldsJSONSchema(o.fields)
}

// presenceChecker accepts any value; its required variant rejects absence.
type presenceChecker struct{ required bool }

func (c presenceChecker) Check(_ context.Context, values map[string]any, key, component string) error {
	if _, ok := Present(values, key); !ok && c.required {
		return Issues{RequiredIssue(Root().Field(key), component)}
	}
	return nil
}

func (c presenceChecker) Required() Checker { return presenceChecker{required: true} }
func (c presenceChecker) IsRequired() bool  { return c.required }

// Present returns values[key] and whether it counts as present: the key exists
// and its value is not nil.
func Present(values map[string]any, key string) (any, bool) {
	v, ok := values[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// checkFields validates v as an object against fields. Child issues are
// rebased under p.
func checkFields(ctx context.Context, fields Fields, v any, p PathRef, component string) Issues {
	obj, ok := v.(map[string]any)
	if !ok {
		return Issues{InvalidTypeIssue(p, "object", component)}
	}
	var iss Issues
	for _, k := range fields.Keys() {
		err := fields[k].Checker().Check(ctx, obj, k, component)
		if err == nil {
			continue
		}
		iss = AppendIssues(iss, RebaseIssues(p.Pointer(), err)...)
		if IsFailFast(ctx) {
			return iss
		}
	}
	return iss
}

func fieldsJSONSchema(fields Fields) (*js.Schema, error) {
	out := &js.Schema{Type: "object", Properties: make(map[string]*js.Schema, len(fields)), AdditionalProperties: true}
	for _, k := range fields.Keys() {
		n := fields[k]
		sub, err := n.jsonSchema()
		if err != nil {
			return nil, err
		}
		if sub == nil {
			sub = &js.Schema{}
		}
		out.Properties[k] = sub
		if n.IsRequired() {
			out.Required = append(out.Required, k)
		}
	}
	return out, nil
}
