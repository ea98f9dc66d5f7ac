package model

import (
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"reflect"
	"slices"

	"github.com/aretw0/docmodel/pkg/schema"
)

// Map is the value stored by MapOf fields: an insertion-ordered, string-keyed
// mapping whose values are coerced to the field's element type.
// It follows the same raw/materialized life cycle as List.
type Map struct {
	field *Field
	owner *Document

	keys   []string
	values map[string]any
	ready  bool
	err    error
}

func newMap(f *Field, owner *Document, keys []string, values map[string]any) *Map {
	return &Map{
		field:  f,
		owner:  owner,
		keys:   slices.Clone(keys),
		values: maps.Clone(values),
	}
}

func (m *Map) materialize() error {
	if m.ready {
		return nil
	}
	if m.err != nil {
		return m.err
	}
	coerced := make(map[string]any, len(m.values))
	for _, k := range m.keys {
		v, err := m.field.coerceElem(m.values[k])
		if err != nil {
			m.err = m.field.wrap(m.values[k], fmt.Sprintf("key %q", k), err)
			return m.err
		}
		coerced[k] = v
	}
	m.values, m.ready = coerced, true
	return nil
}

func (m *Map) writable() error {
	if m.owner != nil && m.owner.locked() {
		return m.owner.immutableErr(m.field.name)
	}
	if m.field.immutable && m.owner != nil {
		return m.field.fail(schema.ErrImmutableField, nil, "field is immutable", nil)
	}
	return m.materialize()
}

func (m *Map) snapshot() ([]string, map[string]any) {
	return slices.Clone(m.keys), maps.Clone(m.values)
}

// Err returns the materialization error of a map that failed to coerce.
func (m *Map) Err() error { return m.err }

// Len returns the number of keys.
func (m *Map) Len() int {
	if m.materialize() != nil {
		return 0
	}
	return len(m.keys)
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	if m.materialize() != nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m.materialize() != nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// All iterates over (key, value) pairs in insertion order.
func (m *Map) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if m.materialize() != nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Set coerces value and stores it under key.
func (m *Map) Set(key string, value any) error {
	if err := m.writable(); err != nil {
		return err
	}
	v, err := m.field.coerceElem(value)
	if err != nil {
		return m.field.wrap(value, fmt.Sprintf("key %q", key), err)
	}
	if _, ok := m.values[key]; !ok {
		if n := m.field.maxLength; n > 0 && len(m.keys) >= n {
			return m.field.fail(schema.ErrValidation, value, fmt.Sprintf("length %d exceeds max length %d", len(m.keys)+1, n), nil)
		}
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
	return nil
}

// Delete removes key. Deleting a missing key is a no-op.
func (m *Map) Delete(key string) error {
	if err := m.writable(); err != nil {
		return err
	}
	if _, ok := m.values[key]; !ok {
		return nil
	}
	if m.field.required && len(m.keys) == 1 {
		return m.field.fail(schema.ErrFieldRequired, nil, "field is required", nil)
	}
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
	return nil
}

// AsMap converts the map and everything nested in it to plain values.
func (m *Map) AsMap() map[string]any {
	out := make(map[string]any, m.Len())
	for k, v := range m.All() {
		out[k] = plain(v)
	}
	return out
}

func (m *Map) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.AsMap())
}

func (m *Map) String() string {
	return fmt.Sprint(m.AsMap())
}

// toMapping normalizes the accepted mapping inputs to map[string]any.
func toMapping(data any) (map[string]any, error) {
	switch v := data.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case *Document:
		if v == nil {
			return map[string]any{}, nil
		}
		return v.AsMap(), nil
	case *Map:
		if v == nil {
			return map[string]any{}, nil
		}
		return v.AsMap(), nil
	}

	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("expected string-keyed mapping, got %T", data)
	}
	out := make(map[string]any, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		out[it.Key().String()] = it.Value().Interface()
	}
	return out, nil
}

func isMapping(data any) bool {
	switch data.(type) {
	case nil:
		return false
	case map[string]any, *Document, *Map:
		return true
	}
	rv := reflect.ValueOf(data)
	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
