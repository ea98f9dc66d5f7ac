package loader

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/aretw0/docmodel/pkg/model"
	"github.com/aretw0/docmodel/pkg/schema"
)

// File is the top-level structure of a model file.
type File struct {
	Models []ModelSpec `json:"models" yaml:"models" mapstructure:"models"`
}

// ModelSpec declares one model.
type ModelSpec struct {
	Name      string         `json:"name" yaml:"name" mapstructure:"name"`
	Extends   []string       `json:"extends,omitempty" yaml:"extends,omitempty" mapstructure:"extends"`
	Immutable bool           `json:"immutable,omitempty" yaml:"immutable,omitempty" mapstructure:"immutable"`
	Meta      map[string]any `json:"meta,omitempty" yaml:"meta,omitempty" mapstructure:"meta"`
	Fields    []FieldSpec    `json:"fields" yaml:"fields" mapstructure:"fields"`
}

// FieldSpec declares one field. Type is a primitive name ("int", "string", ...),
// "[T]" for a list, "{T}" for a map, or the name of another model.
type FieldSpec struct {
	Name        string   `json:"name" yaml:"name" mapstructure:"name"`
	Type        string   `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`
	VerboseName string   `json:"verbose_name,omitempty" yaml:"verbose_name,omitempty" mapstructure:"verbose_name"`
	Required    bool     `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
	Immutable   bool     `json:"immutable,omitempty" yaml:"immutable,omitempty" mapstructure:"immutable"`
	Default     any      `json:"default,omitempty" yaml:"default,omitempty" mapstructure:"default"`
	Choices     []any    `json:"choices,omitempty" yaml:"choices,omitempty" mapstructure:"choices"`
	MaxLength   int      `json:"max_length,omitempty" yaml:"max_length,omitempty" mapstructure:"max_length"`
	NilAsEmpty  bool     `json:"nil_as_empty,omitempty" yaml:"nil_as_empty,omitempty" mapstructure:"nil_as_empty"`
	Layouts     []string `json:"layouts,omitempty" yaml:"layouts,omitempty" mapstructure:"layouts"`
}

// Field converts the declaration into a field prototype.
func (s FieldSpec) Field() (*model.Field, error) {
	opts := s.options()
	typ := strings.TrimSpace(s.Type)

	if inner, ok := enclosed(typ, '[', ']'); ok {
		elem, err := elemRef(inner)
		if err != nil {
			return nil, err
		}
		return model.ListOf(elem, opts...), nil
	}
	if inner, ok := enclosed(typ, '{', '}'); ok {
		elem, err := elemRef(inner)
		if err != nil {
			return nil, err
		}
		return model.MapOf(elem, opts...), nil
	}

	if t, ok := schema.Lookup(typ); ok {
		if _, isTime := t.(*schema.DateTimeType); isTime {
			return model.DateTime(opts...), nil
		}
		if _, isAny := t.(*schema.AnyType); isAny {
			return model.Simple(opts...), nil
		}
		return model.Typed(t, opts...), nil
	}
	if !isModelName(typ) {
		return nil, fmt.Errorf("%w: %q", schema.ErrUnknownType, typ)
	}
	return model.Nested(typ, opts...), nil
}

func (s FieldSpec) options() []model.FieldOption {
	var opts []model.FieldOption
	if s.Default != nil {
		opts = append(opts, model.Default(s.Default))
	}
	if s.Required {
		opts = append(opts, model.Required())
	}
	if s.Immutable {
		opts = append(opts, model.Immutable())
	}
	if s.VerboseName != "" {
		opts = append(opts, model.Name(s.VerboseName))
	}
	if len(s.Choices) > 0 {
		opts = append(opts, model.Choices(s.Choices))
	}
	if s.MaxLength != 0 {
		opts = append(opts, model.MaxLength(s.MaxLength))
	}
	if s.NilAsEmpty {
		opts = append(opts, model.NilAsEmpty())
	}
	if len(s.Layouts) > 0 {
		opts = append(opts, model.Layouts(s.Layouts...))
	}
	return opts
}

// elemRef resolves the element of a container type: nil for untyped
// elements, a schema.Type for primitives or a model name.
func elemRef(s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "any") {
		return nil, nil
	}
	if t, err := schema.ParseType(s); err == nil {
		return t, nil
	}
	if !isModelName(s) {
		return nil, fmt.Errorf("%w: element %q", schema.ErrUnknownType, s)
	}
	return s, nil
}

func enclosed(s string, open, close byte) (string, bool) {
	if len(s) < 2 || s[0] != open || s[len(s)-1] != close {
		return "", false
	}
	return s[1 : len(s)-1], true
}

// isModelName reports whether s looks like an identifier.
func isModelName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || r == '.'):
		default:
			return false
		}
	}
	return true
}

// Validate checks the structure of the file without building anything.
func (f *File) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(f.Models))
	for i, m := range f.Models {
		if m.Name == "" {
			errs = append(errs, fmt.Errorf("models[%d]: missing name", i))
			continue
		}
		if seen[m.Name] {
			errs = append(errs, fmt.Errorf("models[%d]: duplicate model %q", i, m.Name))
		}
		seen[m.Name] = true
		for j, fs := range m.Fields {
			if fs.Name == "" {
				errs = append(errs, fmt.Errorf("%s.fields[%d]: missing name", m.Name, j))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", schema.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}
