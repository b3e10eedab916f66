package goshape

import "context"

// Declarer is an external declaration site: something that declares a checker
// per field name (for example a component's accepted inputs).
type Declarer interface {
	FieldChecker(name string) (Checker, bool)
}

// Component is a named set of field checkers. It implements Declarer so a
// schema can be PassedInto it.
type Component struct {
	Name   string
	Fields map[string]Checker
}

var _ Declarer = Component{}

// FieldChecker returns the checker declared for name.
func (c Component) FieldChecker(name string) (Checker, bool) {
	ch, ok := c.Fields[name]
	return ch, ok && ch != nil
}

// Check validates values against every declared field, reporting the
// component name in issues.
func (c Component) Check(ctx context.Context, values map[string]any) error {
	fields := make(Fields, len(c.Fields))
	for k, ch := range c.Fields {
		fields[k] = Leaf(ch)
	}
	if iss := checkFields(ctx, fields, values, Root(), c.Name); len(iss) > 0 {
		return iss
	}
	return nil
}
