package model

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

// AsMap converts d to plain data: nested documents and maps become
// map[string]any, lists become []any and scalars are kept as they are.
// The result can be fed to any generic encoder or back to Model.New.
func (d *Document) AsMap() map[string]any {
	out := make(map[string]any, len(d.values))
	for k, v := range d.values {
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch x := v.(type) {
	case *Document:
		return x.AsMap()
	case *List:
		return x.AsSlice()
	case *Map:
		return x.AsMap()
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = plain(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	}
	return v
}

// MarshalJSON encodes AsMap. Decimals are encoded as strings.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.AsMap())
}

// MarshalYAML implements yaml.Marshaler.
func (d *Document) MarshalYAML() (any, error) {
	return d.AsMap(), nil
}

// Decode copies the document into out, a pointer to a struct or map, using
// mapstructure field matching (`mapstructure:"name"` tags).
func (d *Document) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			decimalHook,
			mapstructure.StringToTimeHookFunc("2006-01-02T15:04:05Z07:00"),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(d.AsMap()); err != nil {
		return fmt.Errorf("failed to decode %s document: %w", d.model.name, err)
	}
	return nil
}

// decimalHook lets decimal values land in float and string targets.
func decimalHook(from, to reflect.Type, data any) (any, error) {
	dec, ok := data.(decimal.Decimal)
	if !ok || to == from {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Float32, reflect.Float64:
		return dec.InexactFloat64(), nil
	case reflect.String:
		return dec.String(), nil
	}
	return data, nil
}
