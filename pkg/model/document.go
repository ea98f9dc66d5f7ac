package model

import (
	"fmt"
	"iter"

	"github.com/aretw0/docmodel/pkg/schema"
)

// Document is a validated, mapping-like instance of a Model.
//
// Keys are effective field names; Get, Set and Delete also accept declared
// attribute names. Documents are not safe for concurrent mutation.
type Document struct {
	model  *Model
	schema *Schema // the model schema, or a private copy once extra fields appear
	values map[string]any
	sealed bool
}

func newDocument(m *Model) *Document {
	return &Document{
		model:  m,
		schema: m.schema,
		values: make(map[string]any, m.schema.Len()),
	}
}

func (d *Document) Model() *Model { return d.model }

// Schema returns the schema governing d, including extra fields.
func (d *Document) Schema() *Schema { return d.schema }

// locked reports whether writes are rejected.
func (d *Document) locked() bool {
	return d.sealed && d.model.immutable
}

func (d *Document) immutableErr(key string) error {
	return schema.NewFieldError(schema.ErrImmutableDocument, d.model.name, key, nil, "document is immutable", nil)
}

// extra returns the pass-through field for an undeclared key, copying the
// shared schema on first use.
func (d *Document) extra(key string) *Field {
	if f, ok := d.schema.fields[key]; ok {
		return f
	}
	if d.schema == d.model.schema {
		d.schema = d.model.schema.clone()
	}
	// Binding a plain Simple prototype cannot fail.
	f, _ := Simple().bind(key, d.model.name, d.model.Registry())
	d.schema.put(f)
	return f
}

// Get returns the value stored under key, or nil.
func (d *Document) Get(key string) any {
	v, _ := d.Lookup(key)
	return v
}

// Lookup returns the value stored under key and whether it is present.
func (d *Document) Lookup(key string) (any, bool) {
	if f, ok := d.schema.Field(key); ok {
		key = f.name
	}
	v, ok := d.values[key]
	return v, ok
}

// Has reports whether key is present in the mapping view.
func (d *Document) Has(key string) bool {
	_, ok := d.Lookup(key)
	return ok
}

// Set coerces and stores value under key. Undeclared keys are accepted only
// when the model allows extra fields.
func (d *Document) Set(key string, value any) error {
	if d.locked() {
		return d.immutableErr(key)
	}
	f, ok := d.schema.Field(key)
	if !ok {
		if !d.model.opts.AllowExtraFields {
			return schema.NewFieldError(schema.ErrValidation, d.model.name, key, value, "unknown field", nil)
		}
		f = d.extra(key)
	}
	return f.set(d, value)
}

// Delete removes key from the mapping view.
func (d *Document) Delete(key string) error {
	if d.locked() {
		return d.immutableErr(key)
	}
	f, ok := d.schema.Field(key)
	if !ok {
		return schema.NewFieldError(schema.ErrValidation, d.model.name, key, nil, "unknown field", nil)
	}
	v, stored := d.values[f.name]
	if !stored {
		return nil
	}
	if f.immutable {
		return f.fail(schema.ErrImmutableField, v, "field is immutable", nil)
	}
	if f.required {
		return f.fail(schema.ErrFieldRequired, nil, "field is required", nil)
	}
	delete(d.values, f.name)
	return nil
}

// Len returns the number of keys in the mapping view.
func (d *Document) Len() int { return len(d.values) }

// Keys returns the present keys in schema order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.values))
	for _, name := range d.schema.names {
		if _, ok := d.values[name]; ok {
			keys = append(keys, name)
		}
	}
	return keys
}

// All iterates over (key, value) pairs in schema order.
func (d *Document) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, name := range d.schema.names {
			v, ok := d.values[name]
			if !ok {
				continue
			}
			if !yield(name, v) {
				return
			}
		}
	}
}

func (d *Document) String() string {
	return fmt.Sprintf("%s%v", d.model.name, d.AsMap())
}
