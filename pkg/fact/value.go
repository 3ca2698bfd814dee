// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package fact

import (
	"fmt"
	"strconv"
)

// ValueKind discriminates the scalar kinds a field access can produce.
type ValueKind uint8

const (
	// KindInvalid is the zero value.
	KindInvalid ValueKind = iota

	// KindString holds a string scalar.
	KindString

	// KindInt holds a signed integer scalar.
	KindInt

	// KindFloat holds a floating-point scalar.
	KindFloat

	// KindBool holds a boolean scalar.
	KindBool

	// KindFact holds a fact identifier, produced by resolving a bare
	// pattern variable or a flow-edge endpoint.
	KindFact
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindFact:
		return "fact"
	default:
		return "invalid"
	}
}

// Value is the tagged scalar produced by resolving a field path against a
// fact. It is the common currency between the fact schema, the pattern
// matcher's field conditions, and the expression evaluator.
type Value struct {
	kind ValueKind
	s    string
	i    int64
	f    float64
	b    bool
	id   ID
}

// StringValue wraps a string scalar.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// IntValue wraps an integer scalar.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue wraps a floating-point scalar.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// BoolValue wraps a boolean scalar.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// FactValue wraps a fact identifier.
func FactValue(id ID) Value { return Value{kind: KindFact, id: id} }

// Kind reports the scalar kind.
func (v Value) Kind() ValueKind { return v.kind }

// Str returns the string scalar; valid only for KindString.
func (v Value) Str() string { return v.s }

// Int returns the integer scalar; valid only for KindInt.
func (v Value) Int() int64 { return v.i }

// Float returns the floating-point scalar; valid only for KindFloat.
func (v Value) Float() float64 { return v.f }

// Bool returns the boolean scalar; valid only for KindBool.
func (v Value) Bool() bool { return v.b }

// Fact returns the fact identifier; valid only for KindFact.
func (v Value) Fact() ID { return v.id }

// IsNumeric reports whether the value is an int or float scalar.
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// AsFloat widens a numeric value to float64. Valid only when IsNumeric.
func (v Value) AsFloat() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// Equal compares two values. Numeric kinds compare across int/float;
// all other kind mismatches compare unequal.
func (v Value) Equal(o Value) bool {
	if v.IsNumeric() && o.IsNumeric() {
		return v.AsFloat() == o.AsFloat()
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	case KindFact:
		return v.id == o.id
	default:
		return false
	}
}

// String renders the value for messages and logs.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindFact:
		return fmt.Sprintf("fact#%d", v.id)
	default:
		return "<invalid>"
	}
}
