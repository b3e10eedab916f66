package goshape_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goshape "github.com/reoring/goshape"
	"github.com/reoring/goshape/check"
)

func TestSchema_JSONSchema(t *testing.T) {
	point := goshape.New(goshape.Fields{
		"x": goshape.Leaf(check.Number()),
		"y": goshape.Leaf(check.Number()),
	})
	user := goshape.New(goshape.Fields{
		"id":   goshape.Leaf(check.String()),
		"tags": goshape.Leaf(check.Array(check.String())),
		"home": goshape.Embed(point),
		"address": goshape.Nested(goshape.Fields{
			"zip":    goshape.Leaf(check.String()),
			"street": goshape.Leaf(check.String()),
		}),
	}).MustRequires("id, address{zip}, home{x}")

	s, err := user.JSONSchema()
	require.NoError(t, err)
	assert.Equal(t, "object", s.Type)
	assert.Equal(t, []string{"address", "home", "id"}, s.Required)
	assert.Equal(t, true, s.AdditionalProperties)

	assert.Equal(t, "string", s.Properties["id"].Type)
	assert.Equal(t, "array", s.Properties["tags"].Type)
	assert.Equal(t, "string", s.Properties["tags"].Items.Type)
	assert.Equal(t, []string{"zip"}, s.Properties["address"].Required)
	assert.Equal(t, []string{"x"}, s.Properties["home"].Required)
	assert.Empty(t, s.Properties["home"].Properties["y"].Required)
}
