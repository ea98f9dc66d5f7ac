package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Type defines the contract for value coercion.
// Implementations turn a raw value into the typed representation or fail.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Coerce converts value to this type. A nil value is returned unchanged.
	Coerce(value any) (any, error)
}

// ErrUnknownType is returned by ParseType for names that are not built-in types.
var ErrUnknownType = errors.New("unsupported type")

// --- Built-in Type Implementations ---

// AnyType passes values through unchanged.
type AnyType struct{}

func (t *AnyType) Name() string { return "any" }

func (t *AnyType) Coerce(value any) (any, error) { return value, nil }

// IntType coerces values to int.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Coerce(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		// Decimal first: cast parses with base 0 and would read "010" as octal.
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
		value = s
	}
	if num, ok := value.(json.Number); ok {
		if n, err := num.Int64(); err == nil {
			return int(n), nil
		}
		value = num.String()
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		return nil, fmt.Errorf("expected int: %w", err)
	}
	return n, nil
}

// FloatType coerces values to float64.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Coerce(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return nil, fmt.Errorf("expected float: %w", err)
	}
	return f, nil
}

// DecimalType coerces values to decimal.Decimal.
type DecimalType struct{}

func (t *DecimalType) Name() string { return "decimal" }

func (t *DecimalType) Coerce(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("expected decimal: %w", err)
		}
		return d, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return nil, fmt.Errorf("expected decimal: %w", err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n, err := cast.ToInt64E(v)
		if err != nil {
			return nil, fmt.Errorf("expected decimal: %w", err)
		}
		return decimal.NewFromInt(n), nil
	default:
		return nil, fmt.Errorf("expected decimal, got %T", value)
	}
}

// StringType coerces values to their string representation.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Coerce(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return nil, fmt.Errorf("expected string: %w", err)
	}
	return s, nil
}

// BoolType coerces any value to its truthiness. It never fails.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Coerce(value any) (any, error) {
	return Truthy(value), nil
}

// Truthy reports whether value is "true-ish": nil, false, zero numbers, empty
// strings and empty collections are false, everything else is true.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	case decimal.Decimal:
		return !v.IsZero()
	case interface{ Len() int }:
		return v.Len() > 0
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// SliceType coerces sequences into []any, coercing every element.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

// Elem returns the element type.
func (t *SliceType) Elem() Type { return t.elemType }

func (t *SliceType) Coerce(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected slice, got %T", value)
	}

	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem, err := t.elemType.Coerce(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = elem
	}
	return out, nil
}

// MapType coerces string-keyed mappings into map[string]any, coercing every value.
type MapType struct {
	elemType Type
}

func (t *MapType) Name() string {
	return fmt.Sprintf("{%s}", t.elemType.Name())
}

// Elem returns the value type.
func (t *MapType) Elem() Type { return t.elemType }

func (t *MapType) Coerce(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("expected string-keyed map, got %T", value)
	}

	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key := iter.Key().String()
		elem, err := t.elemType.Coerce(iter.Value().Interface())
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		out[key] = elem
	}
	return out, nil
}

// CustomType applies a user-defined coercion function.
type CustomType struct {
	name   string
	coerce func(any) (any, error)
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Coerce(value any) (any, error) {
	return t.coerce(value)
}

// --- Factory Functions ---

// Any creates a pass-through type.
func Any() Type { return &AnyType{} }

// Int creates an integer type.
func Int() Type { return &IntType{} }

// Float creates a float type.
func Float() Type { return &FloatType{} }

// Decimal creates an arbitrary-precision decimal type.
func Decimal() Type { return &DecimalType{} }

// String creates a string type.
func String() Type { return &StringType{} }

// Bool creates a boolean (truthiness) type.
func Bool() Type { return &BoolType{} }

// Slice creates a slice type for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Map creates a map type for values of the given type.
func Map(elemType Type) Type {
	return &MapType{elemType: elemType}
}

// Custom creates a custom type with a user-defined coercion function.
func Custom(name string, coerce func(any) (any, error)) Type {
	return &CustomType{name: name, coerce: coerce}
}

// Lookup returns the built-in type registered under name.
func Lookup(name string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "any", "":
		return Any(), true
	case "int", "integer":
		return Int(), true
	case "float", "number":
		return Float(), true
	case "decimal":
		return Decimal(), true
	case "string", "str":
		return String(), true
	case "bool", "boolean":
		return Bool(), true
	case "datetime", "time":
		return DateTime(), true
	default:
		return nil, false
	}
}

// ParseType converts a string type name to a Type.
// Supports built-in names plus "[T]" for slices and "{T}" for maps, nested freely.
func ParseType(typeStr string) (Type, error) {
	typeStr = strings.TrimSpace(typeStr)

	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}
	if len(typeStr) > 2 && typeStr[0] == '{' && typeStr[len(typeStr)-1] == '}' {
		elemType, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Map(elemType), nil
	}

	if t, ok := Lookup(typeStr); ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownType, typeStr)
}
