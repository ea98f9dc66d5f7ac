// Package openapi exports models as OpenAPI 3 component schemas.
//
// Every model becomes an object schema under #/components/schemas/<Name>.
// Nested documents and lists or maps of documents are emitted as $ref to the
// referenced model, which is exported too.
package openapi

import (
	"fmt"
	"slices"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aretw0/docmodel/pkg/model"
	"github.com/aretw0/docmodel/pkg/schema"
)

const (
	// RefPrefix is prepended to model names in $ref values.
	RefPrefix = "#/components/schemas/"

	// ExtImmutable marks immutable models and fields.
	ExtImmutable = "x-immutable"
	// ExtExtends lists the parents of a model.
	ExtExtends = "x-extends"
)

// Components returns the component schemas of models and of every model they
// reference, keyed by model name.
func Components(models ...*model.Model) (openapi3.Schemas, error) {
	out := make(openapi3.Schemas)
	queue := slices.Clone(models)
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		if _, done := out[m.Name()]; done {
			continue
		}
		s, refs, err := modelSchema(m)
		if err != nil {
			return nil, err
		}
		out[m.Name()] = openapi3.NewSchemaRef("", s)
		queue = append(queue, refs...)
	}
	return out, nil
}

// Document wraps the component schemas of models in an OpenAPI document with
// no paths.
func Document(title, version string, models ...*model.Model) (*openapi3.T, error) {
	schemas, err := Components(models...)
	if err != nil {
		return nil, err
	}
	return &openapi3.T{
		OpenAPI:    "3.0.3",
		Info:       &openapi3.Info{Title: title, Version: version},
		Paths:      openapi3.NewPaths(),
		Components: &openapi3.Components{Schemas: schemas},
	}, nil
}

// Schema returns the object schema of m alone.
func Schema(m *model.Model) (*openapi3.Schema, error) {
	s, _, err := modelSchema(m)
	return s, err
}

func modelSchema(m *model.Model) (*openapi3.Schema, []*model.Model, error) {
	s := openapi3.NewObjectSchema()
	s.Title = m.Name()

	var (
		refs     []*model.Model
		required []string
	)
	for name, f := range m.Schema().All() {
		prop, target, err := fieldSchema(f)
		if err != nil {
			return nil, nil, err
		}
		s.WithPropertyRef(name, prop)
		if target != nil {
			refs = append(refs, target)
		}
		if f.IsRequired() {
			required = append(required, name)
		}
	}
	if len(required) > 0 {
		s.WithRequired(required)
	}

	if m.Options().AllowExtraFields {
		s.WithAnyAdditionalProperties()
	}
	ext := make(map[string]any)
	if m.IsImmutable() {
		ext[ExtImmutable] = true
	}
	if parents := m.Parents(); len(parents) > 0 {
		names := make([]string, len(parents))
		for i, p := range parents {
			names[i] = p.Name()
		}
		ext[ExtExtends] = names
	}
	if len(ext) > 0 {
		s.Extensions = ext
	}
	return s, refs, nil
}

// fieldSchema returns the property schema of f and the model it references, if any.
func fieldSchema(f *model.Field) (*openapi3.SchemaRef, *model.Model, error) {
	target, err := f.ResolveTarget()
	if err != nil {
		return nil, nil, fmt.Errorf("field %s: %w", f, err)
	}

	var ref *openapi3.SchemaRef
	switch f.Kind() {
	case model.KindDocument:
		// $ref siblings are ignored by OpenAPI 3.0, so the reference stands alone.
		return openapi3.NewSchemaRef(RefPrefix+target.Name(), nil), target, nil
	case model.KindList:
		s := openapi3.NewArraySchema()
		s.Items = elemSchema(f.Type(), target)
		withEnum(s.Items, f.AllowedValues())
		if n := f.MaxLen(); n > 0 {
			s.WithMaxItems(int64(n))
		}
		ref = openapi3.NewSchemaRef("", s)
	case model.KindMap:
		s := openapi3.NewObjectSchema()
		s.AdditionalProperties = openapi3.AdditionalProperties{Schema: elemSchema(f.Type(), target)}
		withEnum(s.AdditionalProperties.Schema, f.AllowedValues())
		if n := f.MaxLen(); n > 0 {
			s.WithMaxProperties(int64(n))
		}
		ref = openapi3.NewSchemaRef("", s)
	default:
		s := typeSchema(f.Type())
		if n := f.MaxLen(); n > 0 {
			s.WithMaxLength(int64(n))
		}
		if values := f.AllowedValues(); len(values) > 0 {
			s.WithEnum(values...)
		}
		if !f.IsRequired() {
			s.WithNullable()
		}
		ref = openapi3.NewSchemaRef("", s)
	}

	s := ref.Value
	if def, ok := f.DefaultValue(); ok {
		s.WithDefault(def)
	}
	if f.Verbose() != "" {
		s.Title = f.Attr()
	}
	if f.IsImmutable() {
		if s.Extensions == nil {
			s.Extensions = make(map[string]any)
		}
		s.Extensions[ExtImmutable] = true
	}
	return ref, target, nil
}

// withEnum constrains inline element schemas to the field choices.
func withEnum(ref *openapi3.SchemaRef, values []any) {
	if len(values) > 0 && ref.Value != nil {
		ref.Value.WithEnum(values...)
	}
}

func elemSchema(t schema.Type, target *model.Model) *openapi3.SchemaRef {
	if target != nil {
		return openapi3.NewSchemaRef(RefPrefix+target.Name(), nil)
	}
	if t == nil {
		return openapi3.NewSchemaRef("", openapi3.NewSchema())
	}
	return openapi3.NewSchemaRef("", typeSchema(t))
}

func typeSchema(t schema.Type) *openapi3.Schema {
	switch v := t.(type) {
	case *schema.IntType:
		return openapi3.NewInt64Schema()
	case *schema.FloatType:
		return openapi3.NewFloat64Schema()
	case *schema.DecimalType:
		return openapi3.NewStringSchema().WithFormat("decimal")
	case *schema.StringType:
		return openapi3.NewStringSchema()
	case *schema.BoolType:
		return openapi3.NewBoolSchema()
	case *schema.DateTimeType:
		return openapi3.NewDateTimeSchema()
	case *schema.SliceType:
		return openapi3.NewArraySchema().WithItems(typeSchema(v.Elem()))
	case *schema.MapType:
		return openapi3.NewObjectSchema().WithAdditionalProperties(typeSchema(v.Elem()))
	case nil, *schema.AnyType:
		return openapi3.NewSchema()
	default:
		s := openapi3.NewSchema()
		s.Description = t.Name()
		return s
	}
}
