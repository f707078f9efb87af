package jsonapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cast"
)

// Converter coerces a source value, plus an optional format hint, into a wire
// scalar (string, bool, json.Number, or nil). A failed coercion returns an
// error rather than a silent default; callers surface it as a build failure
// naming the offending resource and property.
type Converter interface {
	Convert(src any, format string) (any, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(src any, format string) (any, error)

func (f ConverterFunc) Convert(src any, format string) (any, error) { return f(src, format) }

// DefaultConverter returns the cast-backed converter used when none is
// configured.
func DefaultConverter() Converter { return castConverter{} }

// castConverter implements Converter on top of spf13/cast. Times are
// normalized to UTC and formatted RFC3339Nano (Go trims trailing zeros) unless
// a format hint overrides the layout.
type castConverter struct{}

func (castConverter) Convert(src any, format string) (any, error) {
	switch t := src.(type) {
	case nil:
		return nil, nil
	case string, bool, json.Number:
		return t, nil
	case time.Time:
		switch format {
		case "", "rfc3339":
			return t.UTC().Format(time.RFC3339Nano), nil
		case "unix":
			return json.Number(strconv.FormatInt(t.Unix(), 10)), nil
		default:
			// Any other hint is a Go layout string.
			return t.Format(format), nil
		}
	case time.Duration:
		return t.String(), nil
	case []byte:
		return string(t), nil
	case float32:
		return json.Number(formatFloat(float64(t))), nil
	case float64:
		return json.Number(formatFloat(t)), nil
	case int, int8, int16, int32, int64:
		s, err := cast.ToStringE(t)
		if err != nil {
			return nil, err
		}
		return json.Number(s), nil
	case uint, uint8, uint16, uint32, uint64:
		s, err := cast.ToStringE(t)
		if err != nil {
			return nil, err
		}
		return json.Number(s), nil
	default:
		s, err := cast.ToStringE(src)
		if err != nil {
			return nil, fmt.Errorf("jsonapi: no conversion for %T: %w", src, err)
		}
		return s, nil
	}
}

// StringOf coerces a value to its wire string form, used for resource ids and
// URL path segments.
func StringOf(conv Converter, src any, format string) (string, error) {
	if conv == nil {
		conv = DefaultConverter()
	}
	out, err := conv.Convert(src, format)
	if err != nil {
		return "", err
	}
	switch t := out.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	case nil:
		return "", fmt.Errorf("jsonapi: cannot stringify nil value")
	default:
		return "", fmt.Errorf("jsonapi: cannot stringify %T", out)
	}
}

// formatFloat mirrors the canonical JSON-like float formatting.
func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
