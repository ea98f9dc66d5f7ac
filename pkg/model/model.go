package model

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/aretw0/docmodel/pkg/schema"
)

// Recognized Meta keys.
const (
	// AllowExtraFields keeps input keys that are not declared in the schema.
	AllowExtraFields = "allow_extra_fields"
	// OmitMissingFields leaves absent fields without a value out of the document.
	OmitMissingFields = "omit_missing_fields"
)

// Meta holds per-model options, merged along the inheritance chain.
type Meta map[string]any

// Options is the resolved form of Meta.
type Options struct {
	AllowExtraFields  bool
	OmitMissingFields bool
}

func (m Meta) options() (Options, error) {
	var opts Options
	for key, v := range m {
		b, ok := v.(bool)
		if !ok {
			return opts, fmt.Errorf("%w: meta %q must be a bool, got %T", schema.ErrConfiguration, key, v)
		}
		switch key {
		case AllowExtraFields:
			opts.AllowExtraFields = b
		case OmitMissingFields:
			opts.OmitMissingFields = b
		default:
			return opts, fmt.Errorf("%w: unknown meta option %q", schema.ErrConfiguration, key)
		}
	}
	return opts, nil
}

// Hook is a post-construction check for one field. It receives the assembled
// document and the field's final value.
type Hook func(doc *Document, value any) error

// Model is a named schema with options. Models are created with Define and are
// read-only afterwards.
type Model struct {
	name      string
	schema    *Schema
	meta      Meta
	opts      Options
	hooks     map[string]Hook
	immutable bool
	parents   []*Model
	registry  *Registry
}

func (m *Model) Name() string { return m.name }

// Schema returns the model schema. It must not be modified.
func (m *Model) Schema() *Schema { return m.schema }

func (m *Model) Options() Options { return m.opts }

// Meta returns a copy of the merged meta options.
func (m *Model) Meta() Meta { return maps.Clone(m.meta) }

// IsImmutable reports whether documents reject writes after construction.
func (m *Model) IsImmutable() bool { return m.immutable }

// Parents returns the direct ancestors in declaration order.
func (m *Model) Parents() []*Model { return slices.Clone(m.parents) }

// HasHook reports whether a post-construction hook is declared for field name.
func (m *Model) HasHook(name string) bool {
	_, ok := m.hooks[name]
	return ok
}

// Registry returns the registry the model is attached to.
func (m *Model) Registry() *Registry {
	if m.registry == nil {
		return DefaultRegistry
	}
	return m.registry
}

// Is reports whether m is other or extends it.
func (m *Model) Is(other *Model) bool {
	if m == other {
		return true
	}
	for _, p := range m.parents {
		if p.Is(other) {
			return true
		}
	}
	return false
}

func (m *Model) String() string { return m.name }

// New builds a document from data, which must be a string-keyed mapping, a
// *Document or nil. The first failure aborts construction.
func (m *Model) New(data any) (*Document, error) {
	return m.build(data, nil)
}

// build is New for a document nested under the models on path.
func (m *Model) build(data any, path []*Model) (*Document, error) {
	start := time.Now()
	doc, errs := m.construct(data, false, path)
	if len(errs) > 0 {
		m.Registry().failed(m, time.Since(start), errs[0])
		return nil, errs[0]
	}
	m.Registry().built(m, time.Since(start))
	return doc, nil
}

// MustNew is like New but panics on error.
func (m *Model) MustNew(data any) *Document {
	doc, err := m.New(data)
	if err != nil {
		panic(err)
	}
	return doc
}

// Validate runs construction without stopping at the first failure and reports
// every failing field as a *schema.AggregateError. Hooks only run when all
// fields are valid.
func (m *Model) Validate(data any) error {
	_, errs := m.construct(data, true, nil)
	if len(errs) == 0 {
		return nil
	}
	return &schema.AggregateError{Errors: errs}
}

// construct builds a document of m. path lists the models whose construction
// is in progress above this one; absent nested fields never rebuild them.
func (m *Model) construct(data any, collect bool, path []*Model) (*Document, []error) {
	input, err := toMapping(data)
	if err != nil {
		return nil, []error{fmt.Errorf("%w: %s: %w", schema.ErrModelConstruction, m.name, err)}
	}

	path = append(slices.Clip(path), m)
	doc := newDocument(m)
	var errs []error
	fail := func(err error) bool {
		errs = append(errs, err)
		return !collect
	}

	for _, f := range m.schema.Fields() {
		v, present := input[f.name]
		if !present && f.attr != f.name {
			v, present = input[f.attr]
		}
		if err := m.assign(doc, f, v, present, path); err != nil && fail(err) {
			return nil, errs
		}
	}

	if m.opts.AllowExtraFields {
		for _, key := range sortedKeys(input) {
			if _, known := m.schema.Field(key); known {
				continue
			}
			if err := doc.extra(key).set(doc, input[key]); err != nil && fail(err) {
				return nil, errs
			}
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	for _, name := range m.schema.names {
		hook, ok := m.hooks[name]
		if !ok {
			continue
		}
		v := doc.values[name]
		if err := hook(doc, v); err != nil {
			herr := schema.NewFieldError(schema.ErrModelValidation, m.name, name, v, "rejected by hook", err)
			if fail(herr) {
				return nil, errs
			}
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	doc.sealed = true
	return doc, nil
}

func (m *Model) assign(doc *Document, f *Field, v any, present bool, path []*Model) error {
	switch {
	case present:
		return f.set(doc, v)
	case f.HasDefault():
		return f.set(doc, f.defaultValue())
	case f.required:
		return f.fail(schema.ErrFieldRequired, nil, "field is required", nil)
	case f.kind == KindList:
		return f.set(doc, []any{})
	case f.kind == KindDocument:
		return f.setEmptyDocument(doc, path)
	case f.kind == KindMap:
		return f.set(doc, map[string]any{})
	case m.opts.OmitMissingFields:
		return nil
	default:
		return f.set(doc, nil)
	}
}
