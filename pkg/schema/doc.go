// Package schema provides the value-level building blocks of docmodel: the error
// taxonomy shared by every package and the coercion primitives used by fields.
//
// A Type turns a raw value into its typed representation or fails:
//
//	n, err := schema.Int().Coerce("42")          // 42
//	d, err := schema.Decimal().Coerce(1.5)       // decimal.Decimal
//	ts, err := schema.DateTime("iso_date").Coerce("2017-05-31")
//
// Types can also be parsed from names, which is how declarative model files
// describe fields:
//
//	t, err := schema.ParseType("[int]")    // Slice(Int())
//	t, err := schema.ParseType("{string}") // Map(String())
//
// Custom coercions are plain functions:
//
//	upper := schema.Custom("upper", func(v any) (any, error) {
//	    s, ok := v.(string)
//	    if !ok {
//	        return nil, fmt.Errorf("expected string")
//	    }
//	    return strings.ToUpper(s), nil
//	})
//
// Errors are classified by sentinel kinds (ErrValidation, ErrFieldRequired, ...)
// and matched with errors.Is. Field failures are reported as *FieldError.
package schema
