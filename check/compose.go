package check

import (
	"context"
	"strconv"

	goshape "github.com/reoring/goshape"
	js "github.com/reoring/goshape/jsonschema"
)

// Array accepts a []any whose elements all satisfy elem. Element issues carry
// the index in their path (e.g. /tags/2).
func Array(elem goshape.Checker) goshape.Checker {
	if elem == nil {
		elem = Any()
	}
	return arrayChecker{elem: elem}
}

type arrayChecker struct {
	elem     goshape.Checker
	required bool
}

func (c arrayChecker) Check(ctx context.Context, values map[string]any, key, component string) error {
	p := goshape.Root().Field(key)
	v, ok := goshape.Present(values, key)
	if !ok {
		if c.required {
			return goshape.Issues{goshape.RequiredIssue(p, component)}
		}
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return goshape.Issues{goshape.InvalidTypeIssue(p, "array", component)}
	}
	var iss goshape.Issues
	for i, el := range arr {
		idx := strconv.Itoa(i)
		err := c.elem.Check(ctx, map[string]any{idx: el}, idx, component)
		if err == nil {
			continue
		}
		iss = goshape.AppendIssues(iss, goshape.RebaseIssues(p.Pointer(), err)...)
		if goshape.IsFailFast(ctx) {
			break
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func (c arrayChecker) Required() goshape.Checker {
	c.required = true
	return c
}

func (c arrayChecker) IsRequired() bool { return c.required }

func (c arrayChecker) JSONSchema() (*js.Schema, error) {
	out := &js.Schema{Type: "array"}
	if jser, ok := c.elem.(goshape.JSONSchemaer); ok {
		items, err := jser.JSONSchema()
		if err != nil {
			return nil, err
		}
		out.Items = items
	}
	return out, nil
}

// Object is the nested-shape checker (see goshape.Object).
func Object(fields goshape.Fields) goshape.Checker { return goshape.Object(fields) }

// Func adapts a predicate on a present value. fn returns nil or the reason the
// value is rejected; the reason becomes the issue message.
func Func(name string, fn func(v any) error) goshape.Checker {
	return funcChecker{name: name, fn: fn}
}

type funcChecker struct {
	name     string
	fn       func(any) error
	required bool
}

func (c funcChecker) Check(_ context.Context, values map[string]any, key, component string) error {
	p := goshape.Root().Field(key)
	v, ok := goshape.Present(values, key)
	if !ok {
		if c.required {
			return goshape.Issues{goshape.RequiredIssue(p, component)}
		}
		return nil
	}
	if err := c.fn(v); err != nil {
		it := goshape.InvalidTypeIssue(p, c.name, component)
		it.Message = err.Error()
		it.Cause = err
		return goshape.Issues{it}
	}
	return nil
}

func (c funcChecker) Required() goshape.Checker {
	c.required = true
	return c
}

func (c funcChecker) IsRequired() bool { return c.required }
