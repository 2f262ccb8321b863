package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// datetimeLayout is RFC 3339 with millisecond precision.
const datetimeLayout = "2006-01-02T15:04:05.000Z07:00"

// isoDurationPattern matches the ISO 8601 time-only durations used on the
// wire, e.g. "PT1H30M", "PT90S", "PT0.5S", "-PT5S".
// A leading minus negates the whole duration.
var isoDurationPattern = regexp.MustCompile(`^(-)?PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?$`)

// Encode converts a value to its wire representation.
//
// The format is only consulted for booleans, whose words it supplies; a nil
// format uses the default words. Encode never fails.
//
// Parameters:
//   - v: Value to encode
//   - f: Format of the target property (may be nil)
//
// Returns:
//   - string: Wire payload
func Encode(v Value, f Format) string {
	switch v.Type {
	case DatatypeBoolean:
		words, _ := f.(BooleanWords)
		return words.Word(v.Bool)
	case DatatypeInteger:
		return strconv.FormatInt(v.Int, 10)
	case DatatypeFloat:
		return formatFloat(v.Float)
	case DatatypeColor:
		return v.Color.String()
	case DatatypeDatetime:
		return v.Time.UTC().Format(datetimeLayout)
	case DatatypeDuration:
		return encodeDuration(v.Duration)
	default:
		return v.Text
	}
}

// Decode parses and validates a wire payload against a datatype and format.
//
// Parameters:
//   - raw: Payload as received
//   - dt: Declared datatype of the property
//   - f: Declared format (nil uses DefaultFormat(dt))
//
// Returns:
//   - Value: Decoded value
//   - error: Wraps ErrInvalidPayload or ErrOutOfRange on bad input,
//     ErrFormatMismatch if f does not suit dt
//
// Range steps are not enforced; see the package documentation.
func Decode(raw string, dt Datatype, f Format) (Value, error) {
	if f == nil {
		f = DefaultFormat(dt)
	}
	if err := f.check(dt); err != nil {
		return Value{}, err
	}
	if raw == "" {
		return Value{}, fmt.Errorf("%w: empty payload", ErrInvalidPayload)
	}

	switch format := f.(type) {
	case BooleanWords:
		return decodeBoolean(raw, format)
	case IntegerRange:
		return decodeInteger(raw, format)
	case FloatRange:
		return decodeFloat(raw, format)
	case EnumSet:
		if !format.Contains(raw) {
			return Value{}, fmt.Errorf("%w: %q is not one of [%s]", ErrInvalidPayload, raw, format)
		}
		return EnumValue(raw), nil
	case ColorEncodings:
		c, err := parseColor(raw, format)
		if err != nil {
			return Value{}, err
		}
		return ColorValue(c), nil
	case Unconstrained:
		return decodeUnconstrained(raw, dt)
	default:
		return Value{}, fmt.Errorf("%w: unsupported format %T", ErrFormatMismatch, f)
	}
}

func decodeBoolean(raw string, words BooleanWords) (Value, error) {
	f, t := words.Words()
	switch raw {
	case t:
		return BoolValue(true), nil
	case f:
		return BoolValue(false), nil
	default:
		return Value{}, fmt.Errorf("%w: %q is neither %q nor %q", ErrInvalidPayload, raw, f, t)
	}
}

func decodeInteger(raw string, r IntegerRange) (Value, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return Value{}, fmt.Errorf("%w: %q overflows integer", ErrOutOfRange, raw)
		}
		return Value{}, fmt.Errorf("%w: %q is not an integer", ErrInvalidPayload, raw)
	}
	if !r.Contains(v) {
		return Value{}, fmt.Errorf("%w: %d outside %s", ErrOutOfRange, v, r)
	}
	return IntValue(v), nil
}

func decodeFloat(raw string, r FloatRange) (Value, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if errors.Is(err, strconv.ErrRange) {
		return Value{}, fmt.Errorf("%w: %q overflows float", ErrOutOfRange, raw)
	}
	// ParseFloat accepts the NaN and Inf literals; neither is a number here.
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}, fmt.Errorf("%w: %q is not a number", ErrInvalidPayload, raw)
	}
	if !r.Contains(v) {
		return Value{}, fmt.Errorf("%w: %s outside %s", ErrOutOfRange, raw, r)
	}
	return FloatValue(v), nil
}

func decodeUnconstrained(raw string, dt Datatype) (Value, error) {
	switch dt {
	case DatatypeDatetime:
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an RFC 3339 timestamp", ErrInvalidPayload, raw)
		}
		return TimeValue(t), nil
	case DatatypeDuration:
		d, err := parseDuration(raw)
		if err != nil {
			return Value{}, err
		}
		return DurationValue(d), nil
	case DatatypeJSON:
		if !json.Valid([]byte(raw)) {
			return Value{}, fmt.Errorf("%w: payload is not valid JSON", ErrInvalidPayload)
		}
		return JSONValue(raw), nil
	default:
		return StringValue(raw), nil
	}
}

// parseDuration accepts ISO 8601 time durations and Go duration syntax.
func parseDuration(raw string) (time.Duration, error) {
	if m := isoDurationPattern.FindStringSubmatch(raw); m != nil && m[2]+m[3]+m[4] != "" {
		var d time.Duration
		if m[2] != "" {
			h, _ := strconv.ParseInt(m[2], 10, 64) //nolint:errcheck // digits only
			d += time.Duration(h) * time.Hour
		}
		if m[3] != "" {
			mins, _ := strconv.ParseInt(m[3], 10, 64) //nolint:errcheck // digits only
			d += time.Duration(mins) * time.Minute
		}
		if m[4] != "" {
			secs, _ := strconv.ParseFloat(m[4], 64) //nolint:errcheck // digits only
			d += time.Duration(math.Round(secs * float64(time.Second)))
		}
		if m[1] != "" {
			d = -d
		}
		return d, nil
	}
	if !strings.HasPrefix(strings.TrimPrefix(raw, "-"), "P") {
		if d, err := time.ParseDuration(raw); err == nil {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q is not a duration", ErrInvalidPayload, raw)
}

// encodeDuration renders d as an ISO 8601 seconds duration. Negative
// durations carry a leading minus.
func encodeDuration(d time.Duration) string {
	if d < 0 {
		return "-PT" + formatFloat(-d.Seconds()) + "S"
	}
	return "PT" + formatFloat(d.Seconds()) + "S"
}
