package shapefile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goshape "github.com/reoring/goshape"
	"github.com/reoring/goshape/shapefile"
	"github.com/reoring/goshape/source"
)

const sample = `
shapes:
  point:
    fields:
      x: number
      y: number
  user:
    fields:
      id: string
      age: integer
      tags: [string]
      role: {$enum: [admin, member]}
      home: point
      address:
        street: string
        zip: string
derived:
  userWithId:
    from: user
    requires: "id, address{zip}"
  userForCard:
    from: user
    passedInto: [UserCard.user]
components:
  UserCard:
    fields:
      user: {$shape: user, $requires: "id, home{x}", $required: true}
      size: number
`

func load(t *testing.T) *shapefile.Registry {
	t.Helper()
	r, err := shapefile.Load([]byte(sample), source.FormatYAML)
	require.NoError(t, err)
	return r
}

func TestLoad_Names(t *testing.T) {
	r := load(t)
	assert.Equal(t, []string{"point", "user", "userForCard", "userWithId"}, r.ShapeNames())
	assert.Equal(t, []string{"UserCard"}, r.ComponentNames())
}

func TestLoad_BaseShapeIsOptional(t *testing.T) {
	r := load(t)
	user, ok := r.Shape("user")
	require.True(t, ok)
	assert.NoError(t, user.Validate(context.Background(), map[string]any{}))
	assert.Error(t, user.Validate(context.Background(), map[string]any{"age": 1.5}))
	assert.Error(t, user.Validate(context.Background(), map[string]any{"role": "root"}))
	assert.Error(t, user.Validate(context.Background(), map[string]any{"tags": []any{"a", 1}}))
	assert.NoError(t, user.Validate(context.Background(), map[string]any{"home": map[string]any{"x": 1}}))
}

func TestLoad_Derived(t *testing.T) {
	r := load(t)
	s, ok := r.Derived("userWithId")
	require.True(t, ok)
	ctx := context.Background()
	assert.NoError(t, s.Validate(ctx, map[string]any{"id": "u1", "address": map[string]any{"zip": "1"}}))
	assert.Error(t, s.Validate(ctx, map[string]any{"id": "u1", "address": map[string]any{}}))
	assert.Error(t, s.Validate(ctx, map[string]any{"address": map[string]any{"zip": "1"}}))

	base, _ := r.Shape("user")
	assert.Same(t, base.Base(), s.Base())
}

func TestLoad_DerivedPassedInto(t *testing.T) {
	r := load(t)
	s, ok := r.Derived("userForCard")
	require.True(t, ok)
	assert.Equal(t, "home{x},id", s.Requirements().String())

	ctx := context.Background()
	assert.NoError(t, s.Validate(ctx, map[string]any{"id": "u", "home": map[string]any{"x": 1}}))
	assert.Error(t, s.Validate(ctx, map[string]any{"id": "u", "home": map[string]any{}}))
}

func TestRegistry_RequireAndPassedInto(t *testing.T) {
	r := load(t)
	s, err := r.Require("user", "age")
	require.NoError(t, err)
	s, err = r.PassedInto(s, "UserCard.user")
	require.NoError(t, err)
	assert.Equal(t, "age,home{x},id", s.Requirements().String())

	_, err = r.Require("nobody", "x")
	assert.ErrorIs(t, err, shapefile.ErrUnknownName)
	_, err = r.PassedInto(s, "Nope.user")
	assert.ErrorIs(t, err, shapefile.ErrUnknownName)
	_, err = r.PassedInto(s, "UserCard")
	assert.ErrorIs(t, err, shapefile.ErrInvalidDefinition)

	point, _ := r.Shape("point")
	_, err = r.PassedInto(point, "UserCard.user")
	assert.ErrorIs(t, err, goshape.ErrShapeMismatch)
}

func TestComponent_Check(t *testing.T) {
	r := load(t)
	c, ok := r.Component("UserCard")
	require.True(t, ok)
	ctx := context.Background()
	assert.NoError(t, c.Check(ctx, map[string]any{"user": map[string]any{"id": "u", "home": map[string]any{"x": 1}}}))

	iss, ok := goshape.AsIssues(c.Check(ctx, map[string]any{"size": 2}))
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, "/user", iss[0].Path)
	assert.Equal(t, goshape.CodeRequired, iss[0].Code)
}

func TestLoad_RequiredMarker(t *testing.T) {
	r, err := shapefile.Load([]byte(`{"shapes": {"p": {"fields": {"x": "number!", "y": "number"}}}}`), source.FormatJSON)
	require.NoError(t, err)
	p, _ := r.Shape("p")
	assert.Error(t, p.Validate(context.Background(), map[string]any{"y": 1}))
	assert.NoError(t, p.Validate(context.Background(), map[string]any{"x": 1}))
}

func TestLoad_JSONC(t *testing.T) {
	doc := `{
  // comment
  "shapes": {"p": {"fields": {"x": "number",}}},
}`
	r, err := shapefile.Load([]byte(doc), source.FormatJSONC)
	require.NoError(t, err)
	_, ok := r.Shape("p")
	assert.True(t, ok)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want error
	}{
		"unknown type":      {"shapes: {a: {fields: {x: float}}}", shapefile.ErrUnknownName},
		"cycle":             {"shapes: {a: {fields: {b: b}}, b: {fields: {a: a}}}", shapefile.ErrCycle},
		"bad top level":     {"things: {}", shapefile.ErrInvalidDefinition},
		"duplicate name":    {"shapes: {a: {fields: {}}}\nderived: {a: {from: a}}", shapefile.ErrInvalidDefinition},
		"bad array":         {"shapes: {a: {fields: {x: [string, number]}}}", shapefile.ErrInvalidDefinition},
		"derived no from":   {"derived: {d: {requires: x}}", shapefile.ErrInvalidDefinition},
		"derived bad key":   {"shapes: {a: {fields: {x: string}}}\nderived: {d: {from: a, requires: y}}", goshape.ErrInvalidKey},
		"unknown directive": {"shapes: {a: {fields: {$x: string}}}", shapefile.ErrInvalidDefinition},
		"not a mapping":     {"- a\n- b", shapefile.ErrInvalidDefinition},
		"derived typo":      {"shapes: {a: {fields: {x: string}}}\nderived: {d: {from: a, require: x}}", shapefile.ErrInvalidDefinition},
		"passedinto typo":   {"shapes: {a: {fields: {x: string}}}\nderived: {d: {from: a, passedinto: [C.a]}}", shapefile.ErrInvalidDefinition},
		"component typo":    {"shapes: {a: {fields: {x: string}}}\ncomponents: {C: {feilds: {u: a}}}", shapefile.ErrInvalidDefinition},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := shapefile.Load([]byte(tc.doc), source.FormatYAML)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "shapes.yaml")
	require.NoError(t, os.WriteFile(p, []byte(sample), 0o644))
	r, err := shapefile.LoadFile(p)
	require.NoError(t, err)
	_, ok := r.Component("UserCard")
	assert.True(t, ok)
}
