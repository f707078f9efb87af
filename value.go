package jsonapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Value is the closed variant set used for resource attributes: object, array,
// scalar, or null. Attribute trees are built from arbitrary domain values by
// ValueOf, which routes every scalar through the Converter contract.
type Value interface {
	isValue()
}

// Obj is an insertion-ordered object node.
type Obj struct {
	m *orderedmap.OrderedMap[string, Value]
}

// NewObj returns an empty object node.
func NewObj() *Obj {
	return &Obj{m: orderedmap.New[string, Value]()}
}

func (*Obj) isValue() {}

// Set stores a member, keeping first-insertion order.
func (o *Obj) Set(name string, v Value) *Obj {
	if o.m == nil {
		o.m = orderedmap.New[string, Value]()
	}
	if v == nil {
		v = Null
	}
	o.m.Set(name, v)
	return o
}

// Get returns the member stored under the name.
func (o *Obj) Get(name string) (Value, bool) {
	if o == nil || o.m == nil {
		return nil, false
	}
	return o.m.Get(name)
}

// Len reports the number of members.
func (o *Obj) Len() int {
	if o == nil || o.m == nil {
		return 0
	}
	return o.m.Len()
}

// Keys returns the member names in insertion order.
func (o *Obj) Keys() []string {
	if o == nil || o.m == nil {
		return nil
	}
	keys := make([]string, 0, o.m.Len())
	for p := o.m.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// MarshalJSON renders members in insertion order.
func (o *Obj) MarshalJSON() ([]byte, error) {
	if o == nil || o.m == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for p := o.m.Oldest(); p != nil; p = p.Next() {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		v, err := Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "%q:", p.Key)
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores the object, preserving wire order.
func (o *Obj) UnmarshalJSON(data []byte) error {
	o.m = orderedmap.New[string, Value]()
	return decodeOrderedObject(data, func(key string, raw []byte) error {
		v, err := DecodeValue(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		o.m.Set(key, v)
		return nil
	})
}

// Arr is an ordered array node.
type Arr []Value

func (Arr) isValue() {}

// UnmarshalJSON restores the array elements.
func (a *Arr) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(Arr, 0, len(raws))
	for i, raw := range raws {
		v, err := DecodeValue(raw)
		if err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, v)
	}
	*a = out
	return nil
}

// Scalar is a leaf node holding a string, bool, or json.Number.
type Scalar struct {
	v any
}

func (Scalar) isValue() {}

// Interface exposes the underlying scalar value.
func (s Scalar) Interface() any { return s.v }

// MarshalJSON renders the underlying scalar.
func (s Scalar) MarshalJSON() ([]byte, error) { return Marshal(s.v) }

// Str wraps a string scalar.
func Str(s string) Value { return Scalar{v: s} }

// Boolean wraps a bool scalar.
func Boolean(b bool) Value { return Scalar{v: b} }

// Num wraps a json.Number scalar.
func Num(n json.Number) Value { return Scalar{v: n} }

// Int wraps an integer scalar as json.Number.
func Int(i int64) Value { return Scalar{v: json.Number(fmt.Sprintf("%d", i))} }

// Float wraps a float scalar as json.Number.
func Float(f float64) Value { return Scalar{v: json.Number(formatFloat(f))} }

type nullValue struct{}

func (nullValue) isValue() {}

func (nullValue) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Null is the null leaf node.
var Null Value = nullValue{}

// DecodeValue parses raw JSON into the closed Value variant set.
func DecodeValue(raw []byte) (Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: "empty value"}}
	}
	switch trimmed[0] {
	case '{':
		o := NewObj()
		if err := o.UnmarshalJSON(trimmed); err != nil {
			return nil, err
		}
		return o, nil
	case '[':
		var a Arr
		if err := a.UnmarshalJSON(trimmed); err != nil {
			return nil, err
		}
		return a, nil
	case '"':
		var s string
		if err := Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return Str(s), nil
	case 'n':
		return Null, nil
	case 't', 'f':
		var b bool
		if err := Unmarshal(trimmed, &b); err != nil {
			return nil, err
		}
		return Boolean(b), nil
	default:
		return Num(json.Number(trimmed)), nil
	}
}

var (
	timeType  = reflect.TypeOf(time.Time{})
	valueType = reflect.TypeOf((*Value)(nil)).Elem()
)

// ValueOf flattens an arbitrary domain value into a Value tree. Struct fields
// keep declaration order, map members are sorted by key for determinism, and
// every scalar leaf goes through the Converter. A conversion failure aborts
// the walk with an issue naming the offending path.
func ValueOf(src any, conv Converter) (Value, error) {
	if conv == nil {
		conv = DefaultConverter()
	}
	return valueOf(reflect.ValueOf(src), conv, "")
}

func valueOf(rv reflect.Value, conv Converter, path string) (Value, error) {
	if !rv.IsValid() {
		return Null, nil
	}
	if rv.Type().Implements(valueType) {
		return rv.Interface().(Value), nil
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null, nil
		}
		return valueOf(rv.Elem(), conv, path)
	case reflect.Struct:
		if rv.Type() == timeType {
			return scalarLeaf(rv.Interface(), "", conv, path)
		}
		obj := NewObj()
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			key := structKey(sf)
			if key == "-" {
				continue
			}
			child, err := valueOf(rv.Field(i), conv, path+"/"+key)
			if err != nil {
				return nil, err
			}
			obj.Set(key, child)
		}
		return obj, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, Issues{{
				Path:    orRoot(path),
				Code:    CodeConversionFailure,
				Message: fmt.Sprintf("unsupported map key type %s", rv.Type().Key()),
			}}
		}
		keys := make([]string, 0, rv.Len())
		for _, kv := range rv.MapKeys() {
			keys = append(keys, kv.String())
		}
		sort.Strings(keys)
		obj := NewObj()
		for _, k := range keys {
			child, err := valueOf(rv.MapIndex(reflect.ValueOf(k)), conv, path+"/"+k)
			if err != nil {
				return nil, err
			}
			obj.Set(k, child)
		}
		return obj, nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return scalarLeaf(rv.Interface(), "", conv, path)
		}
		arr := make(Arr, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			child, err := valueOf(rv.Index(i), conv, fmt.Sprintf("%s/%d", path, i))
			if err != nil {
				return nil, err
			}
			arr = append(arr, child)
		}
		return arr, nil
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return scalarLeaf(rv.Interface(), "", conv, path)
	default:
		return nil, Issues{{
			Path:    orRoot(path),
			Code:    CodeConversionFailure,
			Message: fmt.Sprintf("unsupported attribute kind %s", rv.Kind()),
		}}
	}
}

// scalarLeaf coerces a scalar through the Converter and wraps the result.
func scalarLeaf(src any, format string, conv Converter, path string) (Value, error) {
	out, err := conv.Convert(src, format)
	if err != nil {
		return nil, Issues{{
			Path:    orRoot(path),
			Code:    CodeConversionFailure,
			Message: fmt.Sprintf("cannot convert %T", src),
			Cause:   err,
		}}
	}
	switch t := out.(type) {
	case nil:
		return Null, nil
	case string:
		return Str(t), nil
	case bool:
		return Boolean(t), nil
	case json.Number:
		return Num(t), nil
	case Value:
		return t, nil
	default:
		return nil, Issues{{
			Path:    orRoot(path),
			Code:    CodeConversionFailure,
			Message: fmt.Sprintf("converter produced unsupported scalar %T", out),
		}}
	}
}

// structKey resolves a struct field's external member name.
// Priority: json tag name > field name; "-" disables the field.
func structKey(sf reflect.StructField) string {
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			if jt[:i] != "" {
				return jt[:i]
			}
			return sf.Name
		}
		return jt
	}
	return sf.Name
}

func orRoot(path string) string {
	if path == "" {
		return "/"
	}
	return path
}
