// Package value defines the closed set of column values RelCore stores:
// strings, numbers, booleans and null.
//
// Value is a small comparable struct, so it can be used directly as a map
// key by the hash index. Two values are equal only when their kinds match;
// there is no cross-type coercion anywhere in the engine.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which member of the sum type a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	default:
		return "null"
	}
}

// Value is one cell. The zero Value is Null.
//
// Only the payload field that matches kind is ever set, which keeps ==
// equivalent to Equal for every finite value.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

// Null returns the null value.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a number value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Kind returns the member held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the payload of a string value.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the payload of a number value.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the payload of a boolean value.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBoolean }

// IsFinite is false only for NaN and infinite numbers.
func (v Value) IsFinite() bool {
	if v.kind != KindNumber {
		return true
	}
	return !math.IsNaN(v.num) && !math.IsInf(v.num, 0)
}

// Equal is strict, type-sensitive equality. Null equals null.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBoolean:
		return v.b == o.b
	default:
		return true
	}
}

// Compare orders two values of the same non-null kind. ok is false when
// either side is null or the kinds differ; such pairs have no ordering.
// Booleans order false before true.
func (v Value) Compare(o Value) (cmp int, ok bool) {
	if v.kind != o.kind || v.kind == KindNull {
		return 0, false
	}
	switch v.kind {
	case KindString:
		return strings.Compare(v.str, o.str), true
	case KindNumber:
		switch {
		case v.num < o.num:
			return -1, true
		case v.num > o.num:
			return 1, true
		default:
			return 0, true
		}
	default:
		switch {
		case v.b == o.b:
			return 0, true
		case !v.b:
			return -1, true
		default:
			return 1, true
		}
	}
}

// Less is a total order over all values (kind first, then payload), used
// wherever output must be deterministic.
func (v Value) Less(o Value) bool {
	if v.kind != o.kind {
		return v.kind < o.kind
	}
	c, _ := v.Compare(o)
	return c < 0
}

// Any returns the Go-native payload: nil, string, float64 or bool.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBoolean:
		return v.b
	default:
		return nil
	}
}

// FromAny converts a decoded JSON/YAML scalar into a Value.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case interface{ Float64() (float64, error) }:
		f, err := t.Float64()
		if err != nil {
			return Null(), fmt.Errorf("value: invalid number %v: %w", t, err)
		}
		return Number(f), nil
	default:
		return Null(), fmt.Errorf("value: unsupported type %T", x)
	}
}

// Text renders v for display: strings unquoted, null as NULL.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	default:
		return "NULL"
	}
}

// String renders v as a command literal: 'text', 42, true, null.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return "'" + strings.ReplaceAll(v.str, "'", "''") + "'"
	case KindNull:
		return "null"
	default:
		return v.Text()
	}
}

func formatNumber(n float64) string {
	if math.Abs(n) >= 1e21 {
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
