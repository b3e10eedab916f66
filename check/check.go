// Package check provides leaf checkers for goshape field trees.
//
// Every checker has an optional and a required variant. The optional variant
// accepts an absent (missing or nil) value; the required variant rejects it.
//
//	base := goshape.New(goshape.Fields{
//	    "id":   goshape.Leaf(check.String()),
//	    "age":  goshape.Leaf(check.Integer()),
//	    "tags": goshape.Leaf(check.Array(check.String())),
//	})
package check

import (
	"context"
	"encoding/json"
	"math"
	"reflect"
	"strconv"

	goshape "github.com/reoring/goshape"
	"github.com/reoring/goshape/i18n"
	js "github.com/reoring/goshape/jsonschema"
)

// typeChecker is the common leaf: a type predicate with a JSON Schema fragment.
type typeChecker struct {
	name     string
	accept   func(any) bool
	schema   js.Schema
	required bool
}

var _ goshape.Checker = typeChecker{}

func (c typeChecker) Check(_ context.Context, values map[string]any, key, component string) error {
	p := goshape.Root().Field(key)
	v, ok := goshape.Present(values, key)
	if !ok {
		if c.required {
			return goshape.Issues{goshape.RequiredIssue(p, component)}
		}
		return nil
	}
	if !c.accept(v) {
		return goshape.Issues{goshape.InvalidTypeIssue(p, c.name, component)}
	}
	return nil
}

func (c typeChecker) Required() goshape.Checker {
	c.required = true
	return c
}

func (c typeChecker) IsRequired() bool { return c.required }

func (c typeChecker) JSONSchema() (*js.Schema, error) {
	s := c.schema
	return &s, nil
}

// Any accepts every value.
func Any() goshape.Checker {
	return typeChecker{name: "any", accept: func(any) bool { return true }}
}

// String accepts strings.
func String() goshape.Checker {
	return typeChecker{name: "string", accept: func(v any) bool {
		_, ok := v.(string)
		return ok
	}, schema: js.Schema{Type: "string"}}
}

// Bool accepts booleans.
func Bool() goshape.Checker {
	return typeChecker{name: "bool", accept: func(v any) bool {
		_, ok := v.(bool)
		return ok
	}, schema: js.Schema{Type: "boolean"}}
}

// Number accepts Go numeric types and json.Number. NaN and ±Inf are rejected.
func Number() goshape.Checker {
	return typeChecker{name: "number", accept: isNumber, schema: js.Schema{Type: "number"}}
}

// Integer accepts numbers without a fractional part.
func Integer() goshape.Checker {
	return typeChecker{name: "integer", accept: isInteger, schema: js.Schema{Type: "integer"}}
}

func isNumber(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return !math.IsNaN(float64(n)) && !math.IsInf(float64(n), 0)
	case float64:
		return !math.IsNaN(n) && !math.IsInf(n, 0)
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		return err == nil && !math.IsInf(f, 0)
	default:
		return false
	}
}

func isInteger(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return isNumber(n) && float32(math.Trunc(float64(n))) == n
	case float64:
		return isNumber(n) && math.Trunc(n) == n
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return true
		}
		f, err := n.Float64()
		return err == nil && !math.IsInf(f, 0) && math.Trunc(f) == f
	default:
		return false
	}
}

// Enum accepts one of the allowed values (compared with reflect.DeepEqual).
func Enum(allowed ...any) goshape.Checker {
	return enumChecker{allowed: append([]any(nil), allowed...)}
}

type enumChecker struct {
	allowed  []any
	required bool
}

func (c enumChecker) Check(_ context.Context, values map[string]any, key, component string) error {
	p := goshape.Root().Field(key)
	v, ok := goshape.Present(values, key)
	if !ok {
		if c.required {
			return goshape.Issues{goshape.RequiredIssue(p, component)}
		}
		return nil
	}
	for _, a := range c.allowed {
		if reflect.DeepEqual(a, v) {
			return nil
		}
	}
	params := map[string]any{"allowed": c.allowed}
	if component != "" {
		params["component"] = component
	}
	return goshape.Issues{goshape.IssueAt(p, goshape.CodeInvalidEnum, i18n.T(goshape.CodeInvalidEnum, map[string]string{"component": component}), params)}
}

func (c enumChecker) Required() goshape.Checker {
	c.required = true
	return c
}

func (c enumChecker) IsRequired() bool { return c.required }

func (c enumChecker) JSONSchema() (*js.Schema, error) {
	return &js.Schema{Enum: append([]any(nil), c.allowed...)}, nil
}
