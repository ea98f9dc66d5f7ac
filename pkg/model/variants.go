package model

import (
	"errors"
	"fmt"

	"github.com/aretw0/docmodel/pkg/schema"
)

func newField(kind Kind, typ schema.Type, opts []FieldOption) *Field {
	f := &Field{kind: kind, typ: typ}
	for _, opt := range opts {
		opt(f)
	}
	if len(f.layouts) > 0 {
		if _, ok := typ.(*schema.DateTimeType); !ok {
			f.errs = append(f.errs, errors.New("layouts only apply to datetime fields"))
		}
	}
	if f.nilAsEmpty {
		if _, ok := typ.(*schema.StringType); !ok {
			f.errs = append(f.errs, errors.New("nil-as-empty only applies to string fields"))
		}
	}
	return f
}

// Simple declares an untyped field. Values pass through unchanged unless
// coercers are configured.
func Simple(opts ...FieldOption) *Field {
	return newField(KindScalar, schema.Any(), opts)
}

// Typed declares a scalar field coerced with t.
func Typed(t schema.Type, opts ...FieldOption) *Field {
	if t == nil {
		f := newField(KindScalar, schema.Any(), opts)
		f.errs = append(f.errs, errors.New("nil type"))
		return f
	}
	return newField(KindScalar, t, opts)
}

func Int(opts ...FieldOption) *Field     { return newField(KindScalar, schema.Int(), opts) }
func Float(opts ...FieldOption) *Field   { return newField(KindScalar, schema.Float(), opts) }
func Decimal(opts ...FieldOption) *Field { return newField(KindScalar, schema.Decimal(), opts) }
func String(opts ...FieldOption) *Field  { return newField(KindScalar, schema.String(), opts) }
func Bool(opts ...FieldOption) *Field    { return newField(KindScalar, schema.Bool(), opts) }

// DateTime declares a time field. See Layouts for the accepted string formats.
func DateTime(opts ...FieldOption) *Field {
	f := newField(KindScalar, schema.DateTime(), opts)
	if len(f.layouts) > 0 {
		f.typ = schema.DateTime(f.layouts...)
	}
	return f
}

// Nested declares a field holding a document of another model. ref is a *Model
// or the name of a model, resolved in the registry when a value is first set.
func Nested(ref any, opts ...FieldOption) *Field {
	f := newField(KindDocument, nil, opts)
	f.ref = ref
	if err := checkRef(ref, false); err != nil {
		f.errs = append(f.errs, err)
	}
	return f
}

// ListOf declares a list field. of is nil (untyped elements), a schema.Type, a
// *Model or a model name.
func ListOf(of any, opts ...FieldOption) *Field {
	f := newField(KindList, nil, opts)
	f.elem = of
	if err := checkRef(of, true); err != nil {
		f.errs = append(f.errs, err)
	}
	return f
}

// MapOf declares a string-keyed mapping field. of accepts the same values as ListOf.
func MapOf(of any, opts ...FieldOption) *Field {
	f := newField(KindMap, nil, opts)
	f.elem = of
	if err := checkRef(of, true); err != nil {
		f.errs = append(f.errs, err)
	}
	return f
}

func checkRef(ref any, elem bool) error {
	switch r := ref.(type) {
	case *Model:
		if r != nil {
			return nil
		}
	case string:
		if r != "" {
			return nil
		}
	case schema.Type:
		if elem {
			return nil
		}
	case nil:
		if elem {
			return nil
		}
	}
	return fmt.Errorf("invalid model reference %v (%T)", ref, ref)
}
