package reqtree

// Merge combines two requirement trees into a new tree. Neither input is
// modified.
//
// The result starts as a copy of a. For each key of b: when the accumulated
// value is a nested tree, it is merged recursively with b's value; otherwise
// b's value replaces it. So a nested requirement in b overrides a leaf
// requirement in a, while a leaf requirement in b leaves a's nested
// requirement in place (merging with a nil tree adds nothing).
func Merge(a, b Tree) Tree {
	out := make(Tree, len(a)+len(b))
	for k, v := range a {
		out[k] = v.Clone()
	}
	for k, v := range b {
		if prev, ok := out[k]; ok && prev != nil {
			out[k] = Merge(prev, v)
			continue
		}
		out[k] = v.Clone()
	}
	return out
}

// MergeAll folds Merge over trees from left to right. With no arguments it
// returns an empty tree.
func MergeAll(trees ...Tree) Tree {
	out := Tree{}
	for _, t := range trees {
		out = Merge(out, t)
	}
	return out
}
