package model

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/mohae/deepcopy"
	"github.com/shopspring/decimal"

	"github.com/aretw0/docmodel/pkg/choices"
	"github.com/aretw0/docmodel/pkg/schema"
)

// Kind distinguishes scalar fields from the container variants.
type Kind int

const (
	KindScalar Kind = iota
	KindDocument
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "scalar"
	}
}

// Validator checks a coerced, non-nil value.
type Validator func(value any) error

// Coercer transforms a value after the field's own coercion step.
type Coercer func(value any) (any, error)

// FieldOption configures a field prototype.
type FieldOption func(*Field)

// Field describes one named slot of a model.
//
// Values returned by the constructors (Int, String, ListOf, ...) are prototypes.
// Builder.Field binds a copy of the prototype to the model; bound fields are
// shared by every document of the model and never change afterwards. Document
// values live in the document, keyed by the field's effective name.
type Field struct {
	attr     string // declaration name
	name     string // effective name
	verbose  string
	holder   string
	registry *Registry

	kind Kind
	typ  schema.Type // scalar coercion
	ref  any         // document target: *Model or model name
	elem any         // list/map elements: nil, schema.Type, *Model or model name

	def        any
	defFunc    func() any
	required   bool
	choices    []any
	immutable  bool
	maxLength  int
	nilAsEmpty bool
	layouts    []string
	validators []Validator
	coercers   []Coercer

	errs []error // configuration problems, reported at Build
}

// --- Options ---

// Default sets a static default. Mutable defaults (maps, slices) are copied for
// every document. A nil default means "no default".
func Default(v any) FieldOption {
	return func(f *Field) {
		f.def = v
	}
}

// DefaultFunc sets a producer invoked once per document that needs a default.
func DefaultFunc(fn func() any) FieldOption {
	return func(f *Field) {
		if fn == nil {
			f.errs = append(f.errs, errors.New("nil default producer"))
			return
		}
		f.defFunc = fn
	}
}

// Required rejects nil, empty strings and empty lists or maps.
func Required() FieldOption {
	return func(f *Field) { f.required = true }
}

// Choices restricts values to a closed set: a slice, an array, the keys of a map
// or a *choices.Choices.
func Choices(src any) FieldOption {
	return func(f *Field) {
		vals, err := closedSet(src)
		if err != nil {
			f.errs = append(f.errs, err)
			return
		}
		f.choices = vals
	}
}

// Immutable forbids writes to the field once the document is constructed.
func Immutable() FieldOption {
	return func(f *Field) { f.immutable = true }
}

// Name sets a verbose name used as the document key instead of the attribute name.
// It may contain characters that are not valid identifiers.
func Name(verbose string) FieldOption {
	return func(f *Field) { f.verbose = verbose }
}

// MaxLength bounds the length of strings (in runes), lists and maps.
func MaxLength(n int) FieldOption {
	return func(f *Field) {
		if n <= 0 {
			f.errs = append(f.errs, fmt.Errorf("max length must be positive, got %d", n))
			return
		}
		f.maxLength = n
	}
}

// NilAsEmpty makes a string field store "" instead of nil.
func NilAsEmpty() FieldOption {
	return func(f *Field) { f.nilAsEmpty = true }
}

// Validators appends validators run after coercion.
func Validators(fns ...Validator) FieldOption {
	return func(f *Field) {
		for _, fn := range fns {
			if fn == nil {
				f.errs = append(f.errs, errors.New("nil validator"))
				continue
			}
			f.validators = append(f.validators, fn)
		}
	}
}

// Coercers appends coercion steps run after the field's own coercion.
func Coercers(fns ...Coercer) FieldOption {
	return func(f *Field) {
		for _, fn := range fns {
			if fn == nil {
				f.errs = append(f.errs, errors.New("nil coercer"))
				continue
			}
			f.coercers = append(f.coercers, fn)
		}
	}
}

// Layouts sets the accepted layouts of a DateTime field (see schema.Layout).
func Layouts(layouts ...string) FieldOption {
	return func(f *Field) { f.layouts = append(f.layouts, layouts...) }
}

func closedSet(src any) ([]any, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case *choices.Choices:
		return v.Values(), nil
	case []any:
		return slices.Clone(v), nil
	}

	rv := reflect.ValueOf(src)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	case reflect.Map:
		out := make([]any, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			out = append(out, k.Interface())
		}
		sort.Slice(out, func(i, j int) bool {
			return fmt.Sprint(out[i]) < fmt.Sprint(out[j])
		})
		return out, nil
	default:
		return nil, fmt.Errorf("choices must be a closed collection, got %T", src)
	}
}

// --- Accessors ---

// Attr returns the declaration name.
func (f *Field) Attr() string { return f.attr }

// Name returns the effective name: the verbose name if set, else the attribute name.
func (f *Field) Name() string { return f.name }

// Verbose returns the verbose name, if any.
func (f *Field) Verbose() string { return f.verbose }

// Holder returns the name of the model that declared the field.
func (f *Field) Holder() string { return f.holder }

func (f *Field) Kind() Kind { return f.kind }

// Type returns the scalar type of the field, or the element type of a list or
// map field with primitive elements. It returns nil otherwise.
func (f *Field) Type() schema.Type {
	if f.kind == KindScalar {
		return f.typ
	}
	if t, ok := f.elem.(schema.Type); ok {
		return t
	}
	return nil
}

// Target returns the name of the referenced model for document fields and for
// list or map fields of documents, or "".
func (f *Field) Target() string {
	ref := f.ref
	if f.kind == KindList || f.kind == KindMap {
		ref = f.elem
	}
	switch r := ref.(type) {
	case *Model:
		return r.name
	case string:
		return r
	}
	return ""
}

// ResolveTarget returns the model named by Target, looked up in the field's
// registry. It returns nil and no error when the field references no model.
func (f *Field) ResolveTarget() (*Model, error) {
	ref := f.ref
	if f.kind == KindList || f.kind == KindMap {
		ref = f.elem
	}
	switch ref.(type) {
	case *Model, string:
		return f.resolve(ref)
	}
	return nil, nil
}

// TypeName describes the field type in the notation understood by loader files.
func (f *Field) TypeName() string {
	switch f.kind {
	case KindDocument:
		return f.Target()
	case KindList:
		return "[" + elemName(f.elem) + "]"
	case KindMap:
		return "{" + elemName(f.elem) + "}"
	default:
		return f.typ.Name()
	}
}

func elemName(elem any) string {
	switch e := elem.(type) {
	case schema.Type:
		return e.Name()
	case *Model:
		return e.name
	case string:
		return e
	}
	return "any"
}

func (f *Field) IsRequired() bool  { return f.required }
func (f *Field) IsImmutable() bool { return f.immutable }
func (f *Field) MaxLen() int       { return f.maxLength }

// AllowedValues returns the choices constraint, or nil.
func (f *Field) AllowedValues() []any { return slices.Clone(f.choices) }

// DefaultValue returns the static default, if any. Producers are not invoked.
func (f *Field) DefaultValue() (any, bool) {
	return f.def, f.def != nil
}

// HasDefault reports whether the field has a static default or a producer.
func (f *Field) HasDefault() bool { return f.def != nil || f.defFunc != nil }

func (f *Field) defaultValue() any {
	if f.defFunc != nil {
		return f.defFunc()
	}
	switch reflect.ValueOf(f.def).Kind() {
	case reflect.Map, reflect.Slice:
		return deepcopy.Copy(f.def)
	}
	return f.def
}

func (f *Field) String() string {
	return f.holder + "." + f.name
}

// --- Binding ---

// bind returns a copy of the prototype attached to a model.
func (f *Field) bind(attr, holder string, reg *Registry) (*Field, error) {
	b := *f
	b.attr = attr
	b.name = attr
	if f.verbose != "" {
		b.name = f.verbose
	}
	b.holder = holder
	b.registry = reg
	b.choices = slices.Clone(f.choices)
	b.layouts = slices.Clone(f.layouts)
	b.validators = slices.Clone(f.validators)
	b.coercers = slices.Clone(f.coercers)
	b.errs = nil

	var errs []error
	if attr == "" {
		errs = append(errs, fmt.Errorf("%w: %s: empty field name", schema.ErrConfiguration, holder))
	}
	for _, err := range f.errs {
		errs = append(errs, fmt.Errorf("%w: field %q: %w", schema.ErrConfiguration, b.String(), err))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if len(b.choices) > 0 {
		typ, err := b.choiceType()
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %w", schema.ErrConfiguration, b.String(), err)
		}
		for i, c := range b.choices {
			if typ == nil {
				continue
			}
			v, err := typ.Coerce(c)
			if err != nil {
				return nil, fmt.Errorf("%w: field %q: choice %v: %w", schema.ErrConfiguration, b.String(), c, err)
			}
			b.choices[i] = v
		}
	}

	if b.def != nil {
		if _, err := b.clean(nil, b.defaultValue()); err != nil && !errors.Is(err, schema.ErrModelNotFound) {
			return nil, fmt.Errorf("%w: field %q: invalid default: %w", schema.ErrConfiguration, b.String(), err)
		}
	}
	return &b, nil
}

func (f *Field) reg() *Registry {
	if f.registry != nil {
		return f.registry
	}
	return DefaultRegistry
}

func (f *Field) resolve(ref any) (*Model, error) {
	switch r := ref.(type) {
	case *Model:
		return r, nil
	case string:
		return f.reg().Lookup(r)
	}
	return nil, fmt.Errorf("%w: invalid model reference %T", schema.ErrConfiguration, ref)
}

// --- Value access ---

// Get returns the value stored in doc, or nil if the field was never stored.
func (f *Field) Get(doc *Document) any {
	return doc.values[f.name]
}

// Set coerces and validates value, then stores it in doc.
func (f *Field) Set(doc *Document, value any) error {
	return f.set(doc, value)
}

// GetItem reads key from the map stored by a map field.
func (f *Field) GetItem(doc *Document, key string) (any, bool) {
	m, ok := doc.values[f.name].(*Map)
	if !ok {
		return nil, false
	}
	return m.Get(key)
}

// SetItem writes key into the map stored by a map field, creating the map if
// the field holds nothing yet.
func (f *Field) SetItem(doc *Document, key string, value any) error {
	if f.kind != KindMap {
		return fmt.Errorf("%w: field %q is not a map field", schema.ErrConfiguration, f.String())
	}
	if m, ok := doc.values[f.name].(*Map); ok {
		return m.Set(key, value)
	}
	return f.set(doc, map[string]any{key: value})
}

func (f *Field) set(doc *Document, raw any) error {
	if doc.locked() {
		return doc.immutableErr(f.name)
	}
	if f.immutable {
		if _, ok := doc.values[f.name]; ok || doc.sealed {
			return f.fail(schema.ErrImmutableField, raw, "field is immutable", nil)
		}
	}

	v, err := f.clean(doc, raw)
	if err != nil {
		return err
	}
	if v == nil && doc.model.opts.OmitMissingFields {
		delete(doc.values, f.name)
		return nil
	}
	doc.values[f.name] = v
	return nil
}

// clean runs the coercion chain and the constraints.
func (f *Field) clean(owner *Document, raw any) (any, error) {
	v, err := f.coerce(owner, raw)
	if err != nil {
		return nil, err
	}
	if err := f.check(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (f *Field) coerce(owner *Document, raw any) (any, error) {
	if raw == nil {
		if f.nilAsEmpty {
			return "", nil
		}
		return nil, nil
	}

	var (
		v   any
		err error
	)
	switch f.kind {
	case KindDocument:
		v, err = f.coerceDocument(raw)
	case KindList:
		v, err = f.coerceList(owner, raw)
	case KindMap:
		v, err = f.coerceMap(owner, raw)
	default:
		v, err = f.typ.Coerce(raw)
		if err != nil {
			err = f.fail(schema.ErrValidation, raw, "invalid "+f.typ.Name(), err)
		}
	}
	if err != nil {
		return nil, err
	}

	for _, c := range f.coercers {
		if v, err = c(v); err != nil {
			return nil, f.fail(schema.ErrValidation, raw, "coercion failed", err)
		}
	}
	return v, nil
}

func (f *Field) coerceDocument(raw any) (any, error) {
	target, err := f.resolve(f.ref)
	if err != nil {
		return nil, f.wrap(raw, "unresolved model", err)
	}
	if d, ok := raw.(*Document); ok && d.model.Is(target) {
		return d, nil
	}
	if !isMapping(raw) {
		return nil, f.fail(schema.ErrValidation, raw, "expected "+target.name+" document or mapping", nil)
	}
	child, err := target.New(raw)
	if err != nil {
		return nil, f.wrap(raw, "invalid "+target.name, err)
	}
	return child, nil
}

// setEmptyDocument fills an absent nested field with an empty child document.
// A target already under construction on path gets nil instead.
func (f *Field) setEmptyDocument(doc *Document, path []*Model) error {
	empty := map[string]any{}
	target, err := f.resolve(f.ref)
	if err != nil {
		return f.set(doc, empty)
	}
	if slices.Contains(path, target) {
		return f.set(doc, nil)
	}
	child, err := target.build(empty, path)
	if err != nil {
		return f.wrap(empty, "invalid "+target.name, err)
	}
	return f.set(doc, child)
}

func (f *Field) coerceList(owner *Document, raw any) (any, error) {
	var items []any
	if l, ok := raw.(*List); ok {
		items = l.snapshot()
	} else {
		rv := reflect.ValueOf(raw)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, f.fail(schema.ErrValidation, raw, "expected sequence", nil)
		}
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
	}

	l := newList(f, owner, items)
	if err := l.materialize(); err != nil {
		return nil, err
	}
	return l, nil
}

func (f *Field) coerceMap(owner *Document, raw any) (any, error) {
	var (
		keys   []string
		values map[string]any
	)
	if m, ok := raw.(*Map); ok {
		keys, values = m.snapshot()
	} else {
		data, err := toMapping(raw)
		if err != nil {
			return nil, f.fail(schema.ErrValidation, raw, "expected mapping", nil)
		}
		keys = sortedKeys(data)
		values = data
	}

	m := newMap(f, owner, keys, values)
	if err := m.materialize(); err != nil {
		return nil, err
	}
	return m, nil
}

// choiceType returns the type choices are coerced to: the scalar type, or the
// element type of a list or map. Document values cannot carry choices.
func (f *Field) choiceType() (schema.Type, error) {
	switch f.kind {
	case KindScalar:
		return f.typ, nil
	case KindList, KindMap:
		switch of := f.elem.(type) {
		case nil:
			return nil, nil
		case schema.Type:
			return of, nil
		}
	}
	return nil, errors.New("choices apply to scalar values and primitive elements only")
}

// coerceElem coerces one element of a list or map field. Choices constrain
// each element.
func (f *Field) coerceElem(raw any) (any, error) {
	switch of := f.elem.(type) {
	case nil:
		return raw, f.checkChoice(raw)
	case schema.Type:
		v, err := of.Coerce(raw)
		if err != nil {
			return nil, err
		}
		return v, f.checkChoice(v)
	}

	target, err := f.resolve(f.elem)
	if err != nil {
		return nil, err
	}
	if d, ok := raw.(*Document); ok && d.model.Is(target) {
		return d, nil
	}
	if !isMapping(raw) {
		return nil, fmt.Errorf("expected %s document or mapping, got %T", target.name, raw)
	}
	return target.New(raw)
}

func (f *Field) check(v any) error {
	if f.required && isEmpty(v) {
		return f.fail(schema.ErrFieldRequired, v, "field is required", nil)
	}
	if v == nil {
		return nil
	}
	if f.kind == KindScalar && f.checkChoice(v) != nil {
		return f.fail(schema.ErrValidation, v, fmt.Sprintf("value not in choices %v", f.choices), nil)
	}
	if f.maxLength > 0 {
		if n, ok := length(v); ok && n > f.maxLength {
			return f.fail(schema.ErrValidation, v, fmt.Sprintf("length %d exceeds max length %d", n, f.maxLength), nil)
		}
	}
	for _, fn := range f.validators {
		if err := fn(v); err != nil {
			return f.fail(schema.ErrValidation, v, "rejected by validator", err)
		}
	}
	return nil
}

func (f *Field) checkChoice(v any) error {
	if len(f.choices) == 0 || v == nil || slices.ContainsFunc(f.choices, func(c any) bool { return equal(c, v) }) {
		return nil
	}
	return fmt.Errorf("value %v not in choices %v", v, f.choices)
}

func (f *Field) fail(kind error, value any, reason string, cause error) error {
	return schema.NewFieldError(kind, f.holder, f.name, value, reason, cause)
}

// wrap reports a failure whose cause may already carry an error kind.
func (f *Field) wrap(value any, reason string, cause error) error {
	var kind error
	if schema.KindOf(cause) == nil {
		kind = schema.ErrValidation
	}
	return f.fail(kind, value, reason, cause)
}

// --- Helpers ---

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case *List:
		return x.Len() == 0
	case *Map:
		return x.Len() == 0
	}
	return false
}

func length(v any) (int, bool) {
	switch x := v.(type) {
	case string:
		return utf8.RuneCountInString(x), true
	case *List:
		return x.Len(), true
	case *Map:
		return x.Len(), true
	}
	return 0, false
}

func equal(a, b any) bool {
	switch x := a.(type) {
	case decimal.Decimal:
		y, ok := b.(decimal.Decimal)
		return ok && x.Equal(y)
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	}
	return reflect.DeepEqual(a, b)
}
