package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Named datetime layouts accepted wherever a layout is expected.
var layouts = map[string]string{
	"json":     "2006-01-02T15:04:05Z07:00",
	"rfc3339":  time.RFC3339,
	"iso8601":  "2006-01-02T15:04:05",
	"iso_date": time.DateOnly,
	"iso_time": time.TimeOnly,
	"datetime": time.DateTime,
}

// DefaultLayouts are tried in order when a DateTimeType has no explicit layout.
var DefaultLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", time.DateOnly}

// Layout resolves a named layout ("json", "iso_date", ...). Unknown names are
// returned unchanged and treated as Go reference layouts.
func Layout(name string) string {
	if l, ok := layouts[strings.ToLower(name)]; ok {
		return l
	}
	return name
}

// DateTimeType coerces strings (parsed with its layouts), numeric epoch seconds
// and time.Time values to time.Time.
type DateTimeType struct {
	layouts []string
}

// DateTime creates a datetime type. Layouts may be names understood by Layout or
// Go reference layouts; DefaultLayouts are used when none is given.
func DateTime(layouts ...string) Type {
	resolved := make([]string, 0, len(layouts))
	for _, l := range layouts {
		resolved = append(resolved, Layout(l))
	}
	if len(resolved) == 0 {
		resolved = append(resolved, DefaultLayouts...)
	}
	return &DateTimeType{layouts: resolved}
}

func (t *DateTimeType) Name() string { return "datetime" }

// Layouts returns the resolved layouts in the order they are tried.
func (t *DateTimeType) Layouts() []string {
	return append([]string(nil), t.layouts...)
}

func (t *DateTimeType) Coerce(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	case string:
		return t.parse(strings.TrimSpace(v))
	case json.Number, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		secs, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("expected epoch seconds: %w", err)
		}
		whole, frac := math.Modf(secs)
		return time.Unix(int64(whole), int64(frac*1e9)).UTC(), nil
	default:
		return nil, fmt.Errorf("expected datetime, got %T", value)
	}
}

func (t *DateTimeType) parse(s string) (any, error) {
	var firstErr error
	for _, layout := range t.layouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("expected datetime: %w", firstErr)
}
