package diffx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"
)

// Kind defines all of the atoms in our universe, the six shapes a value in a
// decoded document can take
type Kind uint8

const (
	// KindNull is the absence of a value. The zero Value is Null
	KindNull Kind = iota
	// KindBool is true or false
	KindBool
	// KindNumber covers both integers and floating point numbers
	KindNumber
	// KindString is a run of text
	KindString
	// KindArray is an ordered sequence of values
	KindArray
	// KindObject is a mapping of string keys to values
	KindObject
)

// String returns the human name of a kind, as used in type change reports
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Boolean"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// Value is a single node of a decoded document tree. Values are immutable once
// constructed: constructors copy their inputs and accessors never hand out
// internal storage
type Value struct {
	kind Kind
	b    bool
	num  number
	s    string
	arr  []Value
	obj  map[string]Value
}

// number keeps integers exact while still offering a float projection for
// tolerance comparisons
type number struct {
	i     int64
	f     float64
	isInt bool
}

// Null returns the null value
func Null() Value { return Value{} }

// Bool wraps a boolean
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an integer number
func Int(i int64) Value {
	return Value{kind: KindNumber, num: number{i: i, f: float64(i), isInt: true}}
}

// Float wraps a floating point number
func Float(f float64) Value {
	return Value{kind: KindNumber, num: number{f: f}}
}

// String wraps a string
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array builds an array value from elems
func Array(elems ...Value) Value {
	arr := make([]Value, len(elems))
	copy(arr, elems)
	return Value{kind: KindArray, arr: arr}
}

// Object builds an object value from m. Keys are case sensitive
func Object(m map[string]Value) Value {
	obj := make(map[string]Value, len(m))
	for k, v := range m {
		obj[k] = v
	}
	return Value{kind: KindObject, obj: obj}
}

// FromInterface converts the generic go types produced by decoders
// (map[string]interface{}, []interface{}, string, bool, nil and the numeric
// types) into a Value
func FromInterface(v interface{}) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", x.String(), err)
		}
		return Float(f), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUint(uint64(x)), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return fromUint(x), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case time.Time:
		return String(x.Format(time.RFC3339Nano)), nil
	case []interface{}:
		arr := make([]Value, len(x))
		for i, el := range x {
			val, err := FromInterface(el)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			arr[i] = val
		}
		return Value{kind: KindArray, arr: arr}, nil
	case map[string]interface{}:
		obj := make(map[string]Value, len(x))
		for k, el := range x {
			val, err := FromInterface(el)
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			obj[k] = val
		}
		return Value{kind: KindObject, obj: obj}, nil
	case map[interface{}]interface{}:
		obj := make(map[string]Value, len(x))
		for k, el := range x {
			key := fmt.Sprint(k)
			val, err := FromInterface(el)
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", key, err)
			}
			obj[key] = val
		}
		return Value{kind: KindObject, obj: obj}, nil
	}

	// typed containers, eg. the []map[string]interface{} TOML uses for arrays
	// of tables
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		arr := make([]Value, rv.Len())
		for i := range arr {
			val, err := FromInterface(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			arr[i] = val
		}
		return Value{kind: KindArray, arr: arr}, nil
	case reflect.Map:
		obj := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := fmt.Sprint(iter.Key().Interface())
			val, err := FromInterface(iter.Value().Interface())
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", key, err)
			}
			obj[key] = val
		}
		return Value{kind: KindObject, obj: obj}, nil
	}

	if s, ok := v.(fmt.Stringer); ok {
		return String(s.String()), nil
	}
	return Value{}, fmt.Errorf("unexpected type: %T", v)
}

func fromUint(u uint64) Value {
	if u <= math.MaxInt64 {
		return Int(int64(u))
	}
	return Float(float64(u))
}

// Kind reports which of the six variants v holds
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean held by v
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsFloat returns the floating point projection of a number
func (v Value) AsFloat() (float64, bool) { return v.num.f, v.kind == KindNumber }

// AsInt returns the integer held by v, ok is false for non-numbers and for
// numbers that were decoded as floats
func (v Value) AsInt() (int64, bool) { return v.num.i, v.kind == KindNumber && v.num.isInt }

// AsString returns the text held by v
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// Len returns the number of elements of an array or keys of an object
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Index returns the i'th element of an array, Null when out of range
func (v Value) Index(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Null()
	}
	return v.arr[i]
}

// Get looks up key in an object
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Null(), false
	}
	val, ok := v.obj[key]
	return val, ok
}

// Keys lists the keys of an object in sorted order
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	return sortedKeys(v.obj)
}

// Equal reports exact structural equality, without any numeric tolerance
func (v Value) Equal(o Value) bool {
	return equal(v, o, nil)
}

// Interface converts v back into generic go types
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if v.num.isInt {
			return v.num.i
		}
		return v.num.f
	case KindString:
		return v.s
	case KindArray:
		arr := make([]interface{}, len(v.arr))
		for i, el := range v.arr {
			arr[i] = el.Interface()
		}
		return arr
	case KindObject:
		obj := make(map[string]interface{}, len(v.obj))
		for k, el := range v.obj {
			obj[k] = el.Interface()
		}
		return obj
	default:
		return nil
	}
}

// String renders v as compact JSON with sorted object keys. JSON has no
// literal for non-finite numbers, NaN and ±Inf render as the strings "NaN",
// "+Inf" and "-Inf" and read back as strings
func (v Value) String() string {
	buf := &bytes.Buffer{}
	v.writeJSON(buf)
	return buf.String()
}

// MarshalJSON implements json.Marshaler, producing the same text as String.
// Non-finite numbers are encoded as strings, so in JSON output a NaN or
// infinite Number can't be told apart from a String holding the same text.
// Use Kind to distinguish them
func (v Value) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	v.writeJSON(buf)
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping integers exact
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	val, err := FromInterface(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (v Value) MarshalYAML() (interface{}, error) {
	return v.Interface(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		buf.WriteString(formatNumber(v.num))
	case KindString:
		writeJSONString(buf, v.s)
	case KindArray:
		buf.WriteByte('[')
		for i, el := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			el.writeJSON(buf)
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, k := range sortedKeys(v.obj) {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, k)
			buf.WriteByte(':')
			v.obj[k].writeJSON(buf)
		}
		buf.WriteByte('}')
	}
}

func formatNumber(n number) string {
	switch {
	case n.isInt:
		return strconv.FormatInt(n.i, 10)
	case math.IsNaN(n.f):
		return `"NaN"`
	case math.IsInf(n.f, 1):
		return `"+Inf"`
	case math.IsInf(n.f, -1):
		return `"-Inf"`
	default:
		return strconv.FormatFloat(n.f, 'g', -1, 64)
	}
}

func writeJSONString(buf *bytes.Buffer, s string) {
	// marshalling a string can't fail
	data, _ := json.Marshal(s)
	buf.Write(data)
}

func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
