package shapefile

import (
	"fmt"
	"sort"
	"strings"

	goshape "github.com/reoring/goshape"
	"github.com/reoring/goshape/check"
)

type defKind int

const (
	defShape defKind = iota
	defDerived
	defComponent
)

type def struct {
	kind defKind
	name string
	raw  map[string]any
}

const (
	_unvisited = iota
	_visiting
	_done
)

// builder resolves definitions depth-first so references are built before
// their users and every shape is built once.
type builder struct {
	defs  map[string]def // keyed by "shape:<name>" or "component:<name>"
	state map[string]int
	reg   *Registry
}

func shapeID(name string) string     { return "shape:" + name }
func componentID(name string) string { return "component:" + name }

func (b *builder) collect(root map[string]any) error {
	sections := []struct {
		key  string
		kind defKind
	}{{"shapes", defShape}, {"derived", defDerived}, {"components", defComponent}}
	for _, sec := range sections {
		raw, ok := root[sec.key]
		if !ok || raw == nil {
			continue
		}
		m, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s must be a mapping", ErrInvalidDefinition, sec.key)
		}
		for name, v := range m {
			body, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: %s.%s must be a mapping", ErrInvalidDefinition, sec.key, name)
			}
			id := shapeID(name)
			if sec.kind == defComponent {
				id = componentID(name)
			}
			if _, dup := b.defs[id]; dup {
				return fmt.Errorf("%w: %q is defined twice", ErrInvalidDefinition, name)
			}
			b.defs[id] = def{kind: sec.kind, name: name, raw: body}
		}
	}
	return nil
}

func (b *builder) sortedIDs() []string {
	ids := make([]string, 0, len(b.defs))
	for id := range b.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (b *builder) resolve(id string) error {
	switch b.state[id] {
	case _done:
		return nil
	case _visiting:
		return fmt.Errorf("%w: %s", ErrCycle, id)
	}
	d, ok := b.defs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownName, id)
	}
	b.state[id] = _visiting
	var err error
	switch d.kind {
	case defShape:
		err = b.buildShape(d)
	case defDerived:
		err = b.buildDerived(d)
	case defComponent:
		err = b.buildComponent(d)
	}
	if err != nil {
		return err
	}
	b.state[id] = _done
	return nil
}

func (b *builder) schema(name string) (*goshape.Schema, error) {
	if err := b.resolve(shapeID(name)); err != nil {
		return nil, err
	}
	s, _ := b.reg.Schema(name)
	return s, nil
}

func (b *builder) buildShape(d def) error {
	for k := range d.raw {
		if k != "fields" {
			return fmt.Errorf("%w: shape %q: unknown key %q", ErrInvalidDefinition, d.name, k)
		}
	}
	fields, err := b.fields(d.raw["fields"], d.name)
	if err != nil {
		return err
	}
	b.reg.shapes[d.name] = goshape.New(fields)
	return nil
}

func (b *builder) buildDerived(d def) error {
	for k := range d.raw {
		switch k {
		case "from", "requires", "passedInto":
		default:
			return fmt.Errorf("%w: derived %q: unknown key %q", ErrInvalidDefinition, d.name, k)
		}
	}
	from, ok := d.raw["from"].(string)
	if !ok || from == "" {
		return fmt.Errorf("%w: derived %q: from must name a shape", ErrInvalidDefinition, d.name)
	}
	s, err := b.schema(from)
	if err != nil {
		return fmt.Errorf("derived %q: %w", d.name, err)
	}
	texts, err := stringList(d.raw["requires"])
	if err != nil {
		return fmt.Errorf("derived %q: requires: %w", d.name, err)
	}
	for _, text := range texts {
		if s, err = s.Requires(text); err != nil {
			return fmt.Errorf("derived %q: %w", d.name, err)
		}
	}
	refs, err := stringList(d.raw["passedInto"])
	if err != nil {
		return fmt.Errorf("derived %q: passedInto: %w", d.name, err)
	}
	for _, ref := range refs {
		comp, _, _ := strings.Cut(ref, ".")
		if err := b.resolve(componentID(comp)); err != nil {
			return fmt.Errorf("derived %q: %w", d.name, err)
		}
		if s, err = b.reg.PassedInto(s, ref); err != nil {
			return fmt.Errorf("derived %q: %w", d.name, err)
		}
	}
	b.reg.derived[d.name] = s
	return nil
}

func (b *builder) buildComponent(d def) error {
	for k := range d.raw {
		if k != "fields" {
			return fmt.Errorf("%w: component %q: unknown key %q", ErrInvalidDefinition, d.name, k)
		}
	}
	fields, err := b.fields(d.raw["fields"], d.name)
	if err != nil {
		return err
	}
	c := goshape.Component{Name: d.name, Fields: make(map[string]goshape.Checker, len(fields))}
	for k, n := range fields {
		c.Fields[k] = n.Checker()
	}
	b.reg.components[d.name] = c
	return nil
}

func (b *builder) fields(raw any, where string) (goshape.Fields, error) {
	if raw == nil {
		return goshape.Fields{}, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: fields must be a mapping", ErrInvalidDefinition, where)
	}
	out := make(goshape.Fields, len(m))
	for k, spec := range m {
		if strings.HasPrefix(k, "$") {
			return nil, fmt.Errorf("%w: %s: unknown directive %q", ErrInvalidDefinition, where, k)
		}
		n, err := b.node(spec, where+"."+k)
		if err != nil {
			return nil, err
		}
		out[k] = n
	}
	return out, nil
}

// node interprets one field spec: a type or shape name, a one-element list
// (array), a directive mapping ($enum, $shape) or a nested mapping.
func (b *builder) node(spec any, where string) (goshape.Node, error) {
	switch t := spec.(type) {
	case string:
		name, required := strings.CutSuffix(t, "!")
		n, err := b.named(name, where)
		if err != nil {
			return goshape.Node{}, err
		}
		if required {
			n = n.Required()
		}
		return n, nil
	case []any:
		if len(t) != 1 {
			return goshape.Node{}, fmt.Errorf("%w: %s: array spec takes exactly one element type", ErrInvalidDefinition, where)
		}
		elem, err := b.node(t[0], where+"[]")
		if err != nil {
			return goshape.Node{}, err
		}
		return goshape.Leaf(check.Array(elem.Checker())), nil
	case map[string]any:
		if vals, ok := t["$enum"]; ok {
			list, ok := vals.([]any)
			if !ok || len(t) != 1 {
				return goshape.Node{}, fmt.Errorf("%w: %s: $enum takes a list and no other keys", ErrInvalidDefinition, where)
			}
			return goshape.Leaf(check.Enum(list...)), nil
		}
		if _, ok := t["$shape"]; ok {
			return b.shapeRef(t, where)
		}
		fields, err := b.fields(t, where)
		if err != nil {
			return goshape.Node{}, err
		}
		return goshape.Nested(fields), nil
	default:
		return goshape.Node{}, fmt.Errorf("%w: %s: unsupported field spec %T", ErrInvalidDefinition, where, spec)
	}
}

func (b *builder) named(name, where string) (goshape.Node, error) {
	switch name {
	case "any":
		return goshape.Leaf(check.Any()), nil
	case "string":
		return goshape.Leaf(check.String()), nil
	case "number":
		return goshape.Leaf(check.Number()), nil
	case "integer":
		return goshape.Leaf(check.Integer()), nil
	case "bool", "boolean":
		return goshape.Leaf(check.Bool()), nil
	}
	if _, ok := b.defs[shapeID(name)]; !ok {
		return goshape.Node{}, fmt.Errorf("%w: %s: type or shape %q", ErrUnknownName, where, name)
	}
	s, err := b.schema(name)
	if err != nil {
		return goshape.Node{}, fmt.Errorf("%s: %w", where, err)
	}
	return goshape.Embed(s), nil
}

func (b *builder) shapeRef(t map[string]any, where string) (goshape.Node, error) {
	for k := range t {
		switch k {
		case "$shape", "$requires", "$required":
		default:
			return goshape.Node{}, fmt.Errorf("%w: %s: unknown key %q next to $shape", ErrInvalidDefinition, where, k)
		}
	}
	name, ok := t["$shape"].(string)
	if !ok {
		return goshape.Node{}, fmt.Errorf("%w: %s: $shape must be a name", ErrInvalidDefinition, where)
	}
	n, err := b.named(name, where)
	if err != nil {
		return goshape.Node{}, err
	}
	s := n.Schema()
	if s == nil {
		return goshape.Node{}, fmt.Errorf("%w: %s: $shape %q is not a shape", ErrInvalidDefinition, where, name)
	}
	texts, err := stringList(t["$requires"])
	if err != nil {
		return goshape.Node{}, fmt.Errorf("%s: $requires: %w", where, err)
	}
	for _, text := range texts {
		if s, err = s.Requires(text); err != nil {
			return goshape.Node{}, fmt.Errorf("%s: %w", where, err)
		}
	}
	if req, _ := t["$required"].(bool); req {
		s = s.AsRequired()
	}
	return goshape.Embed(s), nil
}

// stringList accepts nil, a string or a list of strings.
func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%w: expected string, got %T", ErrInvalidDefinition, e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected string or list, got %T", ErrInvalidDefinition, v)
	}
}
