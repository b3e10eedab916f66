// Package goshape derives schemas from base shapes by declaring which fields
// are required.
//
// A base shape lists every field that may appear: leaf checkers, nested
// shapes and embedded schemas. Fields are optional until a declaration names
// them:
//
//	user := goshape.New(goshape.Fields{
//	    "id":      goshape.Leaf(check.String()),
//	    "name":    goshape.Leaf(check.String()),
//	    "address": goshape.Nested(goshape.Fields{"zip": goshape.Leaf(check.String())}),
//	})
//	withZip, err := user.Requires("id, address{zip}")
//
// Declarations use a small text form (see package reqtree) and accumulate:
// each Requires returns a new Schema whose requirement tree is the merge of
// the previous tree and the new one. A Component declares the schema it
// expects per field; PassedInto merges that declaration into a schema built
// from the same base shape.
//
// Validation reports Issues (JSON Pointer, code, message). Declaration errors
// are returned as *reqtree.ParseError or *ReferenceError and can be converted
// with IssuesFromError.
//
// Layout:
//   - reqtree: the declaration parser and requirement-tree merge.
//   - check: leaf checkers (string, number, enum, array, ...).
//   - source: JSON, JSONC and YAML decoding into checker values.
//   - shapefile: shapes, derived schemas and components declared in a file.
//   - cmd/goshape: the CLI.
package goshape
