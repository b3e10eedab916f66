package reqtree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reoring/goshape/reqtree"
)

func TestMerge_DisjointKeysPassThrough(t *testing.T) {
	a := reqtree.MustParse("foo, bar{baz}")
	b := reqtree.MustParse("qux")
	got := reqtree.Merge(a, b)
	assert.True(t, reqtree.MustParse("foo, bar{baz}, qux").Equal(got), "got %v", got)
}

func TestMerge_NestedMergesRecursively(t *testing.T) {
	a := reqtree.MustParse("foo{boo}")
	b := reqtree.MustParse("foo{bam}")
	got := reqtree.Merge(a, b)
	assert.Equal(t, "foo{bam,boo}", got.String())
}

func TestMerge_NestedOverridesLeaf(t *testing.T) {
	a := reqtree.MustParse("foo")
	b := reqtree.MustParse("foo{boo}")
	assert.Equal(t, "foo{boo}", reqtree.Merge(a, b).String())
}

func TestMerge_LeafKeepsExistingNested(t *testing.T) {
	a := reqtree.MustParse("foo{boo}")
	b := reqtree.MustParse("foo")
	assert.Equal(t, "foo{boo}", reqtree.Merge(a, b).String())
}

func TestMerge_LeafOverLeaf(t *testing.T) {
	got := reqtree.Merge(reqtree.MustParse("foo"), reqtree.MustParse("foo"))
	assert.True(t, got["foo"].IsLeaf())
}

func TestMerge_Idempotent(t *testing.T) {
	for _, in := range []string{"", "foo", "foo,bar{baz,qux{}}", "a{b{c{d}}},e"} {
		r := reqtree.MustParse(in)
		assert.True(t, r.Equal(reqtree.Merge(r, r)), "merge(%q, itself)", in)
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	a := reqtree.MustParse("foo{boo}")
	b := reqtree.MustParse("foo{bam}, bar")
	aBefore, bBefore := a.Clone(), b.Clone()

	got := reqtree.Merge(a, b)
	got["foo"]["extra"] = nil

	assert.True(t, aBefore.Equal(a))
	assert.True(t, bBefore.Equal(b))
}

func TestMerge_Grouping(t *testing.T) {
	x := reqtree.MustParse("foo{boo}")
	y := reqtree.MustParse("bar{qoo}")
	z := reqtree.MustParse("foo{bam}, baz")

	left := reqtree.Merge(reqtree.Merge(x, y), z)
	right := reqtree.Merge(x, reqtree.Merge(y, z))
	assert.True(t, left.Equal(right), "left %v right %v", left, right)
	assert.True(t, left.Equal(reqtree.MergeAll(x, y, z)))
}

func TestMergeAll_Empty(t *testing.T) {
	got := reqtree.MergeAll()
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
