// Package shapefile loads declarative shape definitions (YAML, JSON or JSONC)
// into goshape schemas and components.
//
// Layout:
//
//	shapes:
//	  point:
//	    fields:
//	      x: number!            # "!" marks a field required in the base shape
//	      y: number
//	  user:
//	    fields:
//	      id: string
//	      tags: [string]        # array of string
//	      role: {$enum: [admin, member]}
//	      home: point           # embeds the point shape
//	      address:              # nested shape
//	        zip: string
//	derived:
//	  userWithId:
//	    from: user
//	    requires: "id, address{zip}"
//	    passedInto: [UserCard.user]
//	components:
//	  UserCard:
//	    fields:
//	      user: {$shape: user, $requires: "id", $required: true}
//
// Leaf types are any, string, number, integer and bool. Every named shape is
// built exactly once, so derived schemas and components referring to it share
// its base shape and can be combined with PassedInto.
package shapefile

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	goshape "github.com/reoring/goshape"
	"github.com/reoring/goshape/source"
)

var (
	// ErrInvalidDefinition reports a malformed shape file entry.
	ErrInvalidDefinition = errors.New("shapefile: invalid definition")
	// ErrUnknownName reports a reference to an undefined shape or component.
	ErrUnknownName = errors.New("shapefile: unknown name")
	// ErrCycle reports shapes that reference each other.
	ErrCycle = errors.New("shapefile: reference cycle")
)

// Registry holds the schemas and components defined by a shape file.
type Registry struct {
	shapes     map[string]*goshape.Schema
	derived    map[string]*goshape.Schema
	components map[string]goshape.Component
}

// LoadFile reads path and loads it, inferring the format from the extension.
func LoadFile(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := Load(b, source.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Load decodes data and builds every shape, derived schema and component.
func Load(data []byte, f source.Format) (*Registry, error) {
	v, err := source.Decode(data, f)
	if err != nil {
		return nil, err
	}
	return FromValue(v)
}

// FromValue builds a Registry from an already decoded document.
func FromValue(v any) (*Registry, error) {
	root, ok := v.(map[string]any)
	if !ok {
		if v == nil {
			root = map[string]any{}
		} else {
			return nil, fmt.Errorf("%w: document must be a mapping", ErrInvalidDefinition)
		}
	}
	b := &builder{
		defs:  map[string]def{},
		state: map[string]int{},
		reg: &Registry{
			shapes:     map[string]*goshape.Schema{},
			derived:    map[string]*goshape.Schema{},
			components: map[string]goshape.Component{},
		},
	}
	for k := range root {
		switch k {
		case "shapes", "derived", "components":
		default:
			return nil, fmt.Errorf("%w: unknown top-level key %q", ErrInvalidDefinition, k)
		}
	}
	if err := b.collect(root); err != nil {
		return nil, err
	}
	for _, id := range b.sortedIDs() {
		if err := b.resolve(id); err != nil {
			return nil, err
		}
	}
	return b.reg, nil
}

// Shape returns the base schema of a shape (no requirements applied).
func (r *Registry) Shape(name string) (*goshape.Schema, bool) {
	s, ok := r.shapes[name]
	return s, ok
}

// Derived returns a derived schema.
func (r *Registry) Derived(name string) (*goshape.Schema, bool) {
	s, ok := r.derived[name]
	return s, ok
}

// Schema returns a shape or derived schema by name.
func (r *Registry) Schema(name string) (*goshape.Schema, bool) {
	if s, ok := r.shapes[name]; ok {
		return s, true
	}
	return r.Derived(name)
}

// Component returns a component.
func (r *Registry) Component(name string) (goshape.Component, bool) {
	c, ok := r.components[name]
	return c, ok
}

// ShapeNames returns the names of shapes and derived schemas, sorted.
func (r *Registry) ShapeNames() []string {
	out := make([]string, 0, len(r.shapes)+len(r.derived))
	for k := range r.shapes {
		out = append(out, k)
	}
	for k := range r.derived {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ComponentNames returns the component names, sorted.
func (r *Registry) ComponentNames() []string {
	out := make([]string, 0, len(r.components))
	for k := range r.components {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Require applies declaration text to the named schema.
func (r *Registry) Require(name, text string) (*goshape.Schema, error) {
	s, ok := r.Schema(name)
	if !ok {
		return nil, fmt.Errorf("%w: shape %q", ErrUnknownName, name)
	}
	return s.Requires(text)
}

// PassedInto merges the requirements component declares for field into s.
// ref has the form "Component.field".
func (r *Registry) PassedInto(s *goshape.Schema, ref string) (*goshape.Schema, error) {
	comp, field, ok := strings.Cut(ref, ".")
	if !ok || comp == "" || field == "" {
		return nil, fmt.Errorf("%w: passedInto %q must be Component.field", ErrInvalidDefinition, ref)
	}
	c, ok := r.Component(comp)
	if !ok {
		return nil, fmt.Errorf("%w: component %q", ErrUnknownName, comp)
	}
	return s.PassedInto(c, field)
}
