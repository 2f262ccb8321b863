package schema

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Format constrains the legal values of a property.
//
// The concrete types are BooleanWords, IntegerRange, FloatRange, EnumSet,
// ColorEncodings and Unconstrained. String returns the format as it appears
// in a device description; an empty string means "no format attribute".
type Format interface {
	String() string

	// check verifies the format is usable with dt.
	check(dt Datatype) error
}

// ─── Boolean ───────────────────────────────────────────────────────────

// Default boolean words used when BooleanWords is left empty.
const (
	defaultFalseWord = "false"
	defaultTrueWord  = "true"
)

// BooleanWords maps the two boolean states to payload words.
// The zero value uses "false" and "true".
type BooleanWords struct {
	False string
	True  string
}

// Words returns the effective false and true words.
func (b BooleanWords) Words() (falseWord, trueWord string) {
	if b.False == "" && b.True == "" {
		return defaultFalseWord, defaultTrueWord
	}
	return b.False, b.True
}

// Word returns the payload word for v.
func (b BooleanWords) Word(v bool) string {
	f, t := b.Words()
	if v {
		return t
	}
	return f
}

func (b BooleanWords) String() string {
	if b.False == "" && b.True == "" {
		return ""
	}
	return b.False + "," + b.True
}

func (b BooleanWords) check(dt Datatype) error {
	if dt != DatatypeBoolean {
		return fmt.Errorf("%w: boolean words on %s", ErrFormatMismatch, dt)
	}
	f, t := b.Words()
	if f == "" || t == "" || f == t {
		return fmt.Errorf("%w: boolean words %q/%q must be distinct and non-empty", ErrFormatMismatch, f, t)
	}
	return nil
}

// ─── Ranges ────────────────────────────────────────────────────────────

// IntegerRange bounds an integer property. Nil bounds are open.
//
// Step is advisory: it is advertised but not enforced by Decode.
type IntegerRange struct {
	Min  *int64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max  *int64 `yaml:"max,omitempty" json:"max,omitempty"`
	Step *int64 `yaml:"step,omitempty" json:"step,omitempty"`
}

// IntRange returns a closed integer range without step.
func IntRange(lo, hi int64) IntegerRange {
	return IntegerRange{Min: &lo, Max: &hi}
}

// IntMin returns an integer range bounded below only.
func IntMin(lo int64) IntegerRange {
	return IntegerRange{Min: &lo}
}

// Contains reports whether v lies inside the bounds.
func (r IntegerRange) Contains(v int64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

func (r IntegerRange) String() string {
	return rangeString(intPtrString(r.Min), intPtrString(r.Max), intPtrString(r.Step))
}

func (r IntegerRange) check(dt Datatype) error {
	if dt != DatatypeInteger {
		return fmt.Errorf("%w: integer range on %s", ErrFormatMismatch, dt)
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return fmt.Errorf("%w: range %s has min above max", ErrFormatMismatch, r)
	}
	if r.Step != nil && *r.Step <= 0 {
		return fmt.Errorf("%w: range %s has non-positive step", ErrFormatMismatch, r)
	}
	return nil
}

// FloatRange bounds a float property. Nil bounds are open.
//
// Step is advisory: it is advertised but not enforced by Decode.
type FloatRange struct {
	Min  *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max  *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Step *float64 `yaml:"step,omitempty" json:"step,omitempty"`
}

// FloatBetween returns a closed float range without step.
func FloatBetween(lo, hi float64) FloatRange {
	return FloatRange{Min: &lo, Max: &hi}
}

// FloatMin returns a float range bounded below only.
func FloatMin(lo float64) FloatRange {
	return FloatRange{Min: &lo}
}

// WithStep returns a copy of r carrying the given step.
func (r FloatRange) WithStep(step float64) FloatRange {
	r.Step = &step
	return r
}

// Contains reports whether v lies inside the bounds.
func (r FloatRange) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

func (r FloatRange) String() string {
	return rangeString(floatPtrString(r.Min), floatPtrString(r.Max), floatPtrString(r.Step))
}

func (r FloatRange) check(dt Datatype) error {
	if dt != DatatypeFloat {
		return fmt.Errorf("%w: float range on %s", ErrFormatMismatch, dt)
	}
	for _, p := range []*float64{r.Min, r.Max, r.Step} {
		if p != nil && (math.IsNaN(*p) || math.IsInf(*p, 0)) {
			return fmt.Errorf("%w: range bounds must be finite", ErrFormatMismatch)
		}
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return fmt.Errorf("%w: range %s has min above max", ErrFormatMismatch, r)
	}
	if r.Step != nil && *r.Step <= 0 {
		return fmt.Errorf("%w: range %s has non-positive step", ErrFormatMismatch, r)
	}
	return nil
}

// rangeString renders "min:max[:step]" with empty open sides.
func rangeString(lo, hi, step string) string {
	if lo == "" && hi == "" && step == "" {
		return ""
	}
	s := lo + ":" + hi
	if step != "" {
		s += ":" + step
	}
	return s
}

func intPtrString(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func floatPtrString(p *float64) string {
	if p == nil {
		return ""
	}
	return formatFloat(*p)
}

// formatFloat renders the shortest representation that parses back exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ─── Enum ──────────────────────────────────────────────────────────────

// EnumSet is the ordered list of tokens an enum property accepts.
type EnumSet []string

// Contains reports whether token is one of the allowed tokens.
// Matching is exact and case-sensitive.
func (e EnumSet) Contains(token string) bool {
	return slices.Contains(e, token)
}

func (e EnumSet) String() string {
	return strings.Join(e, ",")
}

func (e EnumSet) check(dt Datatype) error {
	if dt != DatatypeEnum {
		return fmt.Errorf("%w: enum set on %s", ErrFormatMismatch, dt)
	}
	if len(e) == 0 {
		return ErrEmptyEnum
	}
	seen := make(map[string]bool, len(e))
	for _, tok := range e {
		if tok == "" || strings.Contains(tok, ",") {
			return fmt.Errorf("%w: enum token %q", ErrFormatMismatch, tok)
		}
		if seen[tok] {
			return fmt.Errorf("%w: enum token %q repeated", ErrFormatMismatch, tok)
		}
		seen[tok] = true
	}
	return nil
}

// ─── Colour ────────────────────────────────────────────────────────────

// ColorEncodings lists the colour spaces a colour property accepts,
// in order of preference.
type ColorEncodings []ColorSpace

// Contains reports whether space is enabled.
func (c ColorEncodings) Contains(space ColorSpace) bool {
	return slices.Contains(c, space)
}

func (c ColorEncodings) String() string {
	parts := make([]string, len(c))
	for i, s := range c {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

func (c ColorEncodings) check(dt Datatype) error {
	if dt != DatatypeColor {
		return fmt.Errorf("%w: colour encodings on %s", ErrFormatMismatch, dt)
	}
	if len(c) == 0 {
		return ErrEmptyEnum
	}
	for _, s := range c {
		switch s {
		case ColorRGB, ColorHSV, ColorXYZ:
		default:
			return fmt.Errorf("%w: unknown colour space %q", ErrFormatMismatch, s)
		}
	}
	return nil
}

// ─── Unconstrained ─────────────────────────────────────────────────────

// Unconstrained accepts any non-empty payload. It is the format for string,
// datetime, duration and json properties.
type Unconstrained struct{}

func (Unconstrained) String() string { return "" }

func (Unconstrained) check(dt Datatype) error {
	switch dt {
	case DatatypeString, DatatypeDatetime, DatatypeDuration, DatatypeJSON:
		return nil
	default:
		return fmt.Errorf("%w: unconstrained format on %s", ErrFormatMismatch, dt)
	}
}

// DefaultFormat returns the format used when a property declares none.
func DefaultFormat(dt Datatype) Format {
	switch dt {
	case DatatypeBoolean:
		return BooleanWords{}
	case DatatypeInteger:
		return IntegerRange{}
	case DatatypeFloat:
		return FloatRange{}
	default:
		return Unconstrained{}
	}
}
