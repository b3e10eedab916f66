package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/goshape/source"
)

func TestDuplicateKeys(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want []string
	}{
		"none":           {`{"a": 1, "b": {"a": 2}}`, nil},
		"top level":      {`{"a": 1, "a": 2}`, []string{"/a"}},
		"nested":         {`{"x": {"k": [1, {"z": 1, "z": 2}], "k": null}}`, []string{"/x/k/1/z", "/x/k"}},
		"escaped":        {`{"a/b": 1, "a/b": 2, "t~": 1, "t~": 3}`, []string{"/a~1b", "/t~0"}},
		"array of empty": {`[{}, {}, {"q": 1, "q": 1}]`, []string{"/2/q"}},
		"scalar":         {`"just a string"`, nil},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := source.DuplicateKeys([]byte(tc.doc))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDuplicateKeys_Malformed(t *testing.T) {
	_, err := source.DuplicateKeys([]byte(`{"a": `))
	assert.Error(t, err)
}
