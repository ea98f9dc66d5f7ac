package model

import (
	"iter"
	"slices"
)

// Schema is an ordered mapping of effective field names to bound fields.
// Schemas attached to a model are never modified after Build.
type Schema struct {
	names  []string
	fields map[string]*Field
}

func newSchema() *Schema {
	return &Schema{fields: make(map[string]*Field)}
}

// put inserts f under its effective name. A field replacing an existing one keeps
// the existing position.
func (s *Schema) put(f *Field) {
	if _, ok := s.fields[f.name]; !ok {
		s.names = append(s.names, f.name)
	}
	s.fields[f.name] = f
}

// clone returns a structural copy sharing the (read-only) fields.
func (s *Schema) clone() *Schema {
	c := &Schema{
		names:  slices.Clone(s.names),
		fields: make(map[string]*Field, len(s.fields)),
	}
	for k, f := range s.fields {
		c.fields[k] = f
	}
	return c
}

// Field returns the field stored under key. Declared attribute names are
// resolved too, so a field named "Interest Rate" is also found as "rate".
func (s *Schema) Field(key string) (*Field, bool) {
	if f, ok := s.fields[key]; ok {
		return f, true
	}
	for _, name := range s.names {
		if f := s.fields[name]; f.attr == key {
			return f, true
		}
	}
	return nil, false
}

// Names returns the effective field names in schema order.
func (s *Schema) Names() []string {
	return slices.Clone(s.names)
}

// Fields returns the fields in schema order.
func (s *Schema) Fields() []*Field {
	out := make([]*Field, len(s.names))
	for i, name := range s.names {
		out[i] = s.fields[name]
	}
	return out
}

// All iterates over (name, field) pairs in schema order.
func (s *Schema) All() iter.Seq2[string, *Field] {
	return func(yield func(string, *Field) bool) {
		for _, name := range s.names {
			if !yield(name, s.fields[name]) {
				return
			}
		}
	}
}

func (s *Schema) Len() int { return len(s.names) }
