package schema

import (
	"strconv"
	"time"
)

// Value is a typed property value.
//
// Type selects which field carries the value:
//   - boolean: Bool
//   - integer: Int
//   - float: Float
//   - enum, string, json: Text
//   - color: Color
//   - datetime: Time
//   - duration: Duration
type Value struct {
	Type     Datatype
	Bool     bool
	Int      int64
	Float    float64
	Text     string
	Color    Color
	Time     time.Time
	Duration time.Duration
}

// BoolValue returns a boolean value.
func BoolValue(v bool) Value { return Value{Type: DatatypeBoolean, Bool: v} }

// IntValue returns an integer value.
func IntValue(v int64) Value { return Value{Type: DatatypeInteger, Int: v} }

// FloatValue returns a float value.
func FloatValue(v float64) Value { return Value{Type: DatatypeFloat, Float: v} }

// EnumValue returns an enum token value.
func EnumValue(token string) Value { return Value{Type: DatatypeEnum, Text: token} }

// StringValue returns a string value.
func StringValue(s string) Value { return Value{Type: DatatypeString, Text: s} }

// JSONValue returns a json value holding the raw document.
func JSONValue(doc string) Value { return Value{Type: DatatypeJSON, Text: doc} }

// ColorValue returns a colour value.
func ColorValue(c Color) Value { return Value{Type: DatatypeColor, Color: c} }

// TimeValue returns a datetime value. Wire precision is milliseconds in UTC.
func TimeValue(t time.Time) Value { return Value{Type: DatatypeDatetime, Time: t} }

// DurationValue returns a duration value.
func DurationValue(d time.Duration) Value { return Value{Type: DatatypeDuration, Duration: d} }

// Equal reports whether two values have the same type and content.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case DatatypeBoolean:
		return v.Bool == o.Bool
	case DatatypeInteger:
		return v.Int == o.Int
	case DatatypeFloat:
		return v.Float == o.Float
	case DatatypeColor:
		return v.Color == o.Color
	case DatatypeDatetime:
		return v.Time.Equal(o.Time)
	case DatatypeDuration:
		return v.Duration == o.Duration
	default:
		return v.Text == o.Text
	}
}

// Number returns the value as a float64 for numeric and boolean types.
// The second result is false for every other type.
func (v Value) Number() (float64, bool) {
	switch v.Type {
	case DatatypeInteger:
		return float64(v.Int), true
	case DatatypeFloat:
		return v.Float, true
	case DatatypeBoolean:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// String renders the value for logs. Booleans use "true"/"false"; use
// Encode for the property's own words.
func (v Value) String() string {
	if v.Type == DatatypeBoolean {
		return strconv.FormatBool(v.Bool)
	}
	return Encode(v, nil)
}
