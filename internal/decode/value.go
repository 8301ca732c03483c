// Package decode turns ordered luminance samples into structured marker values.
package decode

import "strconv"

// Kind discriminates the decoded value variants.
type Kind int

const (
	// KindAbsent marks a failed decode. It is the zero value so an empty
	// Value is Absent.
	KindAbsent Kind = iota
	KindBoolean
	KindInteger
)

// Value is the result of decoding one marker: a boolean, an integer, or
// Absent when the decode failed.
type Value struct {
	Kind Kind
	Bool bool
	Int  int64
}

// Absent is the failed-decode value.
var Absent = Value{}

// Boolean wraps a bool result.
func Boolean(b bool) Value {
	return Value{Kind: KindBoolean, Bool: b}
}

// Integer wraps an integer result.
func Integer(i int64) Value {
	return Value{Kind: KindInteger, Int: i}
}

// String renders the value as a JSON scalar: true/false, a decimal number, or
// null for Absent. This is the exact publish payload format.
func (v Value) String() string {
	switch v.Kind {
	case KindBoolean:
		return strconv.FormatBool(v.Bool)
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	default:
		return "null"
	}
}

// MarshalJSON renders the same JSON scalar as String.
func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(v.String()), nil
}
