package model

import (
	"encoding/json"
	"fmt"
	"iter"
	"reflect"
	"slices"

	"github.com/aretw0/docmodel/pkg/schema"
)

// List is the value stored by ListOf fields: a mutable sequence whose elements
// are coerced to the field's element type.
//
// A List starts raw, holding its input unchanged. The first read, mutation or
// length query materializes it by coercing every element; afterwards each new
// element is coerced as it is introduced. Lists stored in a document have always
// been materialized. A failed mutation leaves the list unchanged.
type List struct {
	field *Field
	owner *Document

	raw   []any
	items []any
	ready bool
	err   error
}

func newList(f *Field, owner *Document, raw []any) *List {
	return &List{field: f, owner: owner, raw: raw}
}

func (l *List) materialize() error {
	if l.ready {
		return nil
	}
	if l.err != nil {
		return l.err
	}
	items, err := l.coerceAll(0, l.raw)
	if err != nil {
		l.err = err
		return err
	}
	l.items, l.raw, l.ready = items, nil, true
	return nil
}

func (l *List) coerceAll(offset int, raw []any) ([]any, error) {
	out := make([]any, len(raw))
	for i, v := range raw {
		c, err := l.field.coerceElem(v)
		if err != nil {
			return nil, l.field.wrap(v, fmt.Sprintf("element %d", offset+i), err)
		}
		out[i] = c
	}
	return out, nil
}

// writable materializes the list and checks its owner accepts writes.
func (l *List) writable() error {
	if l.owner != nil && l.owner.locked() {
		return l.owner.immutableErr(l.field.name)
	}
	if l.field.immutable && l.owner != nil {
		return l.field.fail(schema.ErrImmutableField, nil, "field is immutable", nil)
	}
	return l.materialize()
}

func (l *List) snapshot() []any {
	if l.ready {
		return slices.Clone(l.items)
	}
	return slices.Clone(l.raw)
}

// Err returns the materialization error of a list that failed to coerce.
func (l *List) Err() error { return l.err }

// Len returns the number of elements.
func (l *List) Len() int {
	if l.materialize() != nil {
		return 0
	}
	return len(l.items)
}

// At returns element i. It panics if i is out of range.
func (l *List) At(i int) any {
	_ = l.materialize()
	return l.items[i]
}

// Items returns a copy of the elements.
func (l *List) Items() []any {
	if l.materialize() != nil {
		return nil
	}
	return slices.Clone(l.items)
}

// All iterates over (index, element) pairs.
func (l *List) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		if l.materialize() != nil {
			return
		}
		for i, v := range l.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Append coerces and appends values.
func (l *List) Append(values ...any) error {
	return l.Insert(l.Len(), values...)
}

// Extend appends every element of a slice or array.
func (l *List) Extend(seq any) error {
	rv := reflect.ValueOf(seq)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return l.field.fail(schema.ErrValidation, seq, "expected sequence", nil)
	}
	values := make([]any, rv.Len())
	for i := range values {
		values[i] = rv.Index(i).Interface()
	}
	return l.Append(values...)
}

// Insert coerces values and inserts them before index i.
func (l *List) Insert(i int, values ...any) error {
	if err := l.writable(); err != nil {
		return err
	}
	if i < 0 || i > len(l.items) {
		return fmt.Errorf("%w: index %d out of range [0:%d]", schema.ErrValidation, i, len(l.items))
	}
	coerced, err := l.coerceAll(i, values)
	if err != nil {
		return err
	}
	next := slices.Insert(slices.Clone(l.items), i, coerced...)
	if err := l.checkLen(next); err != nil {
		return err
	}
	l.items = next
	return nil
}

// Set replaces element i.
func (l *List) Set(i int, value any) error {
	if err := l.writable(); err != nil {
		return err
	}
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("%w: index %d out of range [0:%d]", schema.ErrValidation, i, len(l.items))
	}
	coerced, err := l.coerceAll(i, []any{value})
	if err != nil {
		return err
	}
	l.items[i] = coerced[0]
	return nil
}

// Delete removes element i.
func (l *List) Delete(i int) error {
	if err := l.writable(); err != nil {
		return err
	}
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("%w: index %d out of range [0:%d]", schema.ErrValidation, i, len(l.items))
	}
	if l.field.required && len(l.items) == 1 {
		return l.field.fail(schema.ErrFieldRequired, nil, "field is required", nil)
	}
	l.items = slices.Delete(l.items, i, i+1)
	return nil
}

func (l *List) checkLen(items []any) error {
	if n := l.field.maxLength; n > 0 && len(items) > n {
		return l.field.fail(schema.ErrValidation, nil, fmt.Sprintf("length %d exceeds max length %d", len(items), n), nil)
	}
	return nil
}

// AsSlice converts the list and everything nested in it to plain values.
func (l *List) AsSlice() []any {
	items := l.Items()
	out := make([]any, len(items))
	for i, v := range items {
		out[i] = plain(v)
	}
	return out
}

func (l *List) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.AsSlice())
}

func (l *List) String() string {
	return fmt.Sprint(l.AsSlice())
}
