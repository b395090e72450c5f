// Package schema groups the accessors of one controller structure revision
// and indexes them by logical byte position.
//
// A Schema is built once and never modified. Its position index and maximum
// position are derived during New, so a Schema may be shared read-only by any
// number of concurrent decodes.
package schema

import (
	"fmt"

	"github.com/dccourt/esphome-gecko/internal/accessor"
)

// Schema is an immutable, indexed set of accessors.
type Schema struct {
	name        string
	accessors   []accessor.Accessor
	byPosition  map[int][]accessor.Accessor
	maxPosition int
	hasMax      bool
}

// New validates accessors and builds their position index. Accessors that
// share a position keep the order in which they were supplied. A path used
// twice or an accessor with invalid parameters yields an *Error.
func New(name string, accessors []accessor.Accessor) (*Schema, error) {
	s := &Schema{
		name:       name,
		accessors:  make([]accessor.Accessor, 0, len(accessors)),
		byPosition: make(map[int][]accessor.Accessor),
	}

	seen := make(map[string]struct{}, len(accessors))
	for _, a := range accessors {
		if err := a.Validate(); err != nil {
			return nil, NewError(ErrTypeInvalidParameter, name, a.Path(), err)
		}
		if _, dup := seen[a.Path()]; dup {
			return nil, NewError(ErrTypeDuplicatePath, name, a.Path(),
				fmt.Errorf("path already defined"))
		}
		seen[a.Path()] = struct{}{}

		s.accessors = append(s.accessors, a)
		pos := a.Position()
		s.byPosition[pos] = append(s.byPosition[pos], a)
		if !s.hasMax || pos > s.maxPosition {
			s.maxPosition = pos
			s.hasMax = true
		}
	}

	return s, nil
}

// Name returns the schema name
func (s *Schema) Name() string { return s.name }

// Len returns the number of accessors
func (s *Schema) Len() int { return len(s.accessors) }

// MaxPosition returns the highest accessor position. ok is false for an
// empty schema, which decodes nothing.
func (s *Schema) MaxPosition() (pos int, ok bool) {
	return s.maxPosition, s.hasMax
}

// At returns the accessors at a logical position, in catalog order. The
// returned slice must not be modified.
func (s *Schema) At(position int) []accessor.Accessor {
	return s.byPosition[position]
}

// Accessors returns a copy of all accessors in catalog order
func (s *Schema) Accessors() []accessor.Accessor {
	out := make([]accessor.Accessor, len(s.accessors))
	copy(out, s.accessors)
	return out
}

// Lookup finds an accessor by path
func (s *Schema) Lookup(path string) (accessor.Accessor, bool) {
	for _, a := range s.accessors {
		if a.Path() == path {
			return a, true
		}
	}
	return accessor.Accessor{}, false
}

// String returns a short description of the schema
func (s *Schema) String() string {
	if !s.hasMax {
		return fmt.Sprintf("Schema{name=%s, accessors=0}", s.name)
	}
	return fmt.Sprintf("Schema{name=%s, accessors=%d, positions=%d, max=%d}",
		s.name, len(s.accessors), len(s.byPosition), s.maxPosition)
}
