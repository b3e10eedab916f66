// Package reqtree parses the requirement DSL and merges requirement trees.
//
// A requirement tree names the fields of a shape that must be present. A nil
// child marks a required field; a non-nil child (possibly empty) descends into
// a nested shape and requires the listed sub-fields:
//
//	foo,            // foo: nil
//	bar: {          // bar: {baz: nil}
//	    baz,
//	},
//	qux {}          // qux: {} (qux itself is required, none of its children)
//
// Trees are values: Parse and Merge always return fresh maps and never modify
// their inputs.
package reqtree

import (
	"sort"
	"strings"
)

// Tree maps a field name to its child requirements. A nil child is a leaf
// requirement.
type Tree map[string]Tree

// IsLeaf reports whether t is a leaf requirement (nil).
func (t Tree) IsLeaf() bool { return t == nil }

// Keys returns the keys of t in ascending order.
func (t Tree) Keys() []string {
	ks := make([]string, 0, len(t))
	for k := range t {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

// Clone returns a deep copy of t. Leaf children stay nil.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for k, v := range t {
		out[k] = v.Clone()
	}
	return out
}

// Equal reports whether t and o describe the same requirements, distinguishing
// leaf (nil) children from empty nested ones.
func (t Tree) Equal(o Tree) bool {
	if (t == nil) != (o == nil) {
		return false
	}
	if len(t) != len(o) {
		return false
	}
	for k, v := range t {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// String renders t in canonical DSL form with sorted keys, e.g.
// "bar{baz},foo". Parse(t.String()) yields a tree equal to t.
func (t Tree) String() string {
	b := &strings.Builder{}
	t.write(b)
	return b.String()
}

func (t Tree) write(b *strings.Builder) {
	for i, k := range t.Keys() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		if sub := t[k]; sub != nil {
			b.WriteByte('{')
			sub.write(b)
			b.WriteByte('}')
		}
	}
}

// Paths lists every required path of t as a JSON Pointer, in ascending order.
// Intermediate nodes are included because requiring a sub-field also requires
// its parent.
func (t Tree) Paths() []string {
	var out []string
	t.collectPaths("", &out)
	sort.Strings(out)
	return out
}

func (t Tree) collectPaths(prefix string, out *[]string) {
	for k, sub := range t {
		// escape per RFC6901
		p := prefix + "/" + strings.ReplaceAll(strings.ReplaceAll(k, "~", "~0"), "/", "~1")
		*out = append(*out, p)
		sub.collectPaths(p, out)
	}
}
