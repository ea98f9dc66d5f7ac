package model

import (
	"errors"
	"fmt"
	"maps"

	"github.com/aretw0/docmodel/pkg/schema"
)

type fieldDecl struct {
	attr  string
	proto *Field
}

type hookDecl struct {
	field string
	fn    Hook
}

// Builder collects a model declaration. Build merges ancestors, binds fields and
// registers the model.
type Builder struct {
	name      string
	parents   []*Model
	fields    []fieldDecl
	meta      Meta
	hooks     []hookDecl
	immutable bool
	registry  *Registry
}

// Define starts the declaration of a model.
func Define(name string) *Builder {
	return &Builder{name: name, meta: Meta{}}
}

// Extends adds ancestors. Their schemas are merged in order, later ones winning.
func (b *Builder) Extends(parents ...*Model) *Builder {
	b.parents = append(b.parents, parents...)
	return b
}

// Field declares a field under its attribute name.
func (b *Builder) Field(attr string, f *Field) *Builder {
	b.fields = append(b.fields, fieldDecl{attr: attr, proto: f})
	return b
}

// Meta merges model options (AllowExtraFields, OmitMissingFields).
func (b *Builder) Meta(m Meta) *Builder {
	maps.Copy(b.meta, m)
	return b
}

// Hook declares a post-construction hook for a field, by attribute or effective name.
func (b *Builder) Hook(field string, fn Hook) *Builder {
	b.hooks = append(b.hooks, hookDecl{field: field, fn: fn})
	return b
}

// Immutable makes documents reject every write after construction.
func (b *Builder) Immutable() *Builder {
	b.immutable = true
	return b
}

// Registry selects the registry the model is attached to. Field references by
// name are resolved there too.
func (b *Builder) Registry(r *Registry) *Builder {
	b.registry = r
	return b
}

// Build validates the declaration and registers the model.
// Declaration mistakes are reported as schema.ErrConfiguration.
func (b *Builder) Build() (*Model, error) {
	reg := b.registry
	if reg == nil {
		reg = DefaultRegistry
	}

	m := &Model{
		name:      b.name,
		schema:    newSchema(),
		meta:      Meta{},
		hooks:     make(map[string]Hook),
		immutable: b.immutable,
		parents:   append([]*Model(nil), b.parents...),
		registry:  reg,
	}

	var errs []error
	if b.name == "" {
		errs = append(errs, fmt.Errorf("%w: empty model name", schema.ErrConfiguration))
	}

	for _, p := range b.parents {
		if p == nil {
			errs = append(errs, fmt.Errorf("%w: %s: nil parent model", schema.ErrConfiguration, b.name))
			continue
		}
		for _, f := range p.schema.Fields() {
			m.schema.put(f)
		}
		maps.Copy(m.meta, p.meta)
		maps.Copy(m.hooks, p.hooks)
		m.immutable = m.immutable || p.immutable
	}

	seen := make(map[string]bool, len(b.fields))
	for _, decl := range b.fields {
		if seen[decl.attr] {
			errs = append(errs, fmt.Errorf("%w: %s: field %q declared twice", schema.ErrConfiguration, b.name, decl.attr))
			continue
		}
		seen[decl.attr] = true
		if decl.proto == nil {
			errs = append(errs, fmt.Errorf("%w: %s: field %q is nil", schema.ErrConfiguration, b.name, decl.attr))
			continue
		}
		f, err := decl.proto.bind(decl.attr, b.name, reg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		m.schema.put(f)
	}

	maps.Copy(m.meta, b.meta)
	opts, err := m.meta.options()
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
	}
	m.opts = opts

	for _, h := range b.hooks {
		f, ok := m.schema.Field(h.field)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%w: %s: hook for unknown field %q", schema.ErrConfiguration, b.name, h.field))
		case h.fn == nil:
			errs = append(errs, fmt.Errorf("%w: %s: nil hook for field %q", schema.ErrConfiguration, b.name, h.field))
		default:
			m.hooks[f.name] = h.fn
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	reg.Register(m)
	return m, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Model {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}
