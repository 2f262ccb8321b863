package schema

import (
	"errors"
	"testing"
	"time"
)

// ─── Round-trip ────────────────────────────────────────────────────────

func TestRoundTrip(t *testing.T) {
	percent := IntRange(0, 100)
	stepped := FloatBetween(5, 32).WithStep(0.5)

	tests := []struct {
		name   string
		dt     Datatype
		format Format
		values []Value
	}{
		{
			name:   "default boolean words",
			dt:     DatatypeBoolean,
			format: BooleanWords{},
			values: []Value{BoolValue(true), BoolValue(false)},
		},
		{
			name:   "custom boolean words",
			dt:     DatatypeBoolean,
			format: BooleanWords{False: "off", True: "on"},
			values: []Value{BoolValue(true), BoolValue(false)},
		},
		{
			name:   "integer range",
			dt:     DatatypeInteger,
			format: percent,
			values: []Value{IntValue(0), IntValue(1), IntValue(50), IntValue(100)},
		},
		{
			name:   "open integer range",
			dt:     DatatypeInteger,
			format: IntegerRange{},
			values: []Value{IntValue(-9223372036854775808), IntValue(0), IntValue(9223372036854775807)},
		},
		{
			name:   "float range with step",
			dt:     DatatypeFloat,
			format: stepped,
			values: []Value{FloatValue(5), FloatValue(21.5), FloatValue(32), FloatValue(20.123456789)},
		},
		{
			name:   "open float range",
			dt:     DatatypeFloat,
			format: FloatRange{},
			values: []Value{FloatValue(-1e300), FloatValue(0.1), FloatValue(3.14159)},
		},
		{
			name:   "enum",
			dt:     DatatypeEnum,
			format: EnumSet{"up", "down", "stop"},
			values: []Value{EnumValue("up"), EnumValue("down"), EnumValue("stop")},
		},
		{
			name:   "colour",
			dt:     DatatypeColor,
			format: ColorEncodings{ColorRGB, ColorHSV, ColorXYZ},
			values: []Value{
				ColorValue(RGB(255, 0, 128)),
				ColorValue(HSV(360, 100, 0)),
				ColorValue(XYZ(0.3127, 0.329)),
			},
		},
		{
			name:   "string",
			dt:     DatatypeString,
			format: Unconstrained{},
			values: []Value{StringValue("hello"), StringValue("with, comma")},
		},
		{
			name:   "json",
			dt:     DatatypeJSON,
			format: Unconstrained{},
			values: []Value{JSONValue(`{"a":1}`), JSONValue(`[1,2,3]`)},
		},
		{
			name:   "datetime",
			dt:     DatatypeDatetime,
			format: Unconstrained{},
			values: []Value{TimeValue(time.Date(2025, 3, 14, 15, 9, 26, 535000000, time.UTC))},
		},
		{
			name:   "duration",
			dt:     DatatypeDuration,
			format: Unconstrained{},
			values: []Value{
				DurationValue(90 * time.Second),
				DurationValue(1500 * time.Millisecond),
				DurationValue(0),
				DurationValue(-5 * time.Second),
				DurationValue(-1500 * time.Millisecond),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range tt.values {
				wire := Encode(v, tt.format)
				got, err := Decode(wire, tt.dt, tt.format)
				if err != nil {
					t.Fatalf("Decode(%q) error = %v", wire, err)
				}
				if !got.Equal(v) {
					t.Errorf("Decode(Encode(%v)) = %v, want %v", v, got, v)
				}
			}
		})
	}
}

// ─── Boundaries ────────────────────────────────────────────────────────

func TestDecodeIntegerBoundaries(t *testing.T) {
	format := IntRange(0, 100)

	tests := []struct {
		name    string
		raw     string
		want    int64
		wantErr error
	}{
		{name: "upper bound", raw: "100", want: 100},
		{name: "lower bound", raw: "0", want: 0},
		{name: "above range", raw: "101", wantErr: ErrOutOfRange},
		{name: "below range", raw: "-1", wantErr: ErrOutOfRange},
		{name: "not a number", raw: "abc", wantErr: ErrInvalidPayload},
		{name: "float literal", raw: "1.5", wantErr: ErrInvalidPayload},
		{name: "empty", raw: "", wantErr: ErrInvalidPayload},
		{name: "overflow", raw: "99999999999999999999", wantErr: ErrOutOfRange},
		{name: "leading space", raw: " 5", wantErr: ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw, DatatypeInteger, format)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%q) error = %v", tt.raw, err)
			}
			if got.Int != tt.want {
				t.Errorf("Decode(%q) = %d, want %d", tt.raw, got.Int, tt.want)
			}
		})
	}
}

func TestDecodeFloat(t *testing.T) {
	format := FloatBetween(5, 32).WithStep(0.5)

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "inside", raw: "21.5"},
		{name: "off step accepted", raw: "21.3"},
		{name: "integer literal", raw: "20"},
		{name: "above", raw: "32.01", wantErr: ErrOutOfRange},
		{name: "below", raw: "4.9", wantErr: ErrOutOfRange},
		{name: "nan", raw: "NaN", wantErr: ErrInvalidPayload},
		{name: "inf literal", raw: "Inf", wantErr: ErrInvalidPayload},
		{name: "signed inf literal", raw: "+Inf", wantErr: ErrInvalidPayload},
		{name: "infinity literal", raw: "-Infinity", wantErr: ErrInvalidPayload},
		{name: "overflow", raw: "1e400", wantErr: ErrOutOfRange},
		{name: "garbage", raw: "warm", wantErr: ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw, DatatypeFloat, format)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Decode(%q) = %v, want nil", tt.raw, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode(%q) = %v, want %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestDecodeIntegerStepNotEnforced(t *testing.T) {
	step := int64(10)
	format := IntRange(0, 100)
	format.Step = &step

	got, err := Decode("15", DatatypeInteger, format)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Int != 15 {
		t.Errorf("Decode() = %d, want 15", got.Int)
	}
}

// ─── Enum / Boolean ────────────────────────────────────────────────────

func TestDecodeEnumMembership(t *testing.T) {
	format := EnumSet{"up", "down", "stop"}

	tests := []struct {
		raw string
		ok  bool
	}{
		{raw: "stop", ok: true},
		{raw: "up", ok: true},
		{raw: "open", ok: false},
		{raw: "STOP", ok: false},
		{raw: "up,down", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Decode(tt.raw, DatatypeEnum, format)
			if tt.ok {
				if err != nil {
					t.Fatalf("Decode(%q) error = %v", tt.raw, err)
				}
				if got.Text != tt.raw {
					t.Errorf("Decode(%q) = %q", tt.raw, got.Text)
				}
				return
			}
			if !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("Decode(%q) error = %v, want ErrInvalidPayload", tt.raw, err)
			}
		})
	}
}

func TestDecodeBooleanWords(t *testing.T) {
	format := BooleanWords{False: "closed", True: "open"}

	tests := []struct {
		raw     string
		want    bool
		wantErr bool
	}{
		{raw: "open", want: true},
		{raw: "closed", want: false},
		{raw: "true", wantErr: true},
		{raw: "Open", wantErr: true},
		{raw: "open ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Decode(tt.raw, DatatypeBoolean, format)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPayload) {
					t.Errorf("Decode(%q) error = %v, want ErrInvalidPayload", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%q) error = %v", tt.raw, err)
			}
			if got.Bool != tt.want {
				t.Errorf("Decode(%q) = %v, want %v", tt.raw, got.Bool, tt.want)
			}
		})
	}
}

func TestEncodeBooleanNilFormat(t *testing.T) {
	if got := Encode(BoolValue(true), nil); got != "true" {
		t.Errorf("Encode(true, nil) = %q, want true", got)
	}
	if got := Encode(BoolValue(false), nil); got != "false" {
		t.Errorf("Encode(false, nil) = %q, want false", got)
	}
}

// ─── Colour ────────────────────────────────────────────────────────────

func TestDecodeColor(t *testing.T) {
	rgbOnly := ColorEncodings{ColorRGB}
	all := ColorEncodings{ColorRGB, ColorHSV, ColorXYZ}

	tests := []struct {
		name    string
		raw     string
		format  ColorEncodings
		want    Color
		wantErr bool
	}{
		{name: "rgb", raw: "rgb,10,20,30", format: rgbOnly, want: RGB(10, 20, 30)},
		{name: "hsv disabled", raw: "hsv,10,20,30", format: rgbOnly, wantErr: true},
		{name: "hsv", raw: "hsv,359,50,50", format: all, want: HSV(359, 50, 50)},
		{name: "xyz", raw: "xyz,0.25,0.5", format: all, want: XYZ(0.25, 0.5)},
		{name: "rgb component too large", raw: "rgb,256,0,0", format: rgbOnly, wantErr: true},
		{name: "rgb missing component", raw: "rgb,1,2", format: rgbOnly, wantErr: true},
		{name: "hue too large", raw: "hsv,361,0,0", format: all, wantErr: true},
		{name: "xy sum above one", raw: "xyz,0.6,0.6", format: all, wantErr: true},
		{name: "unknown marker", raw: "cmyk,1,2,3,4", format: all, wantErr: true},
		{name: "no components", raw: "rgb", format: rgbOnly, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw, DatatypeColor, tt.format)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPayload) {
					t.Errorf("Decode(%q) error = %v, want ErrInvalidPayload", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%q) error = %v", tt.raw, err)
			}
			if got.Color != tt.want {
				t.Errorf("Decode(%q) = %+v, want %+v", tt.raw, got.Color, tt.want)
			}
		})
	}
}

// ─── Unconstrained ─────────────────────────────────────────────────────

func TestDecodeUnconstrained(t *testing.T) {
	tests := []struct {
		name    string
		dt      Datatype
		raw     string
		wantErr bool
	}{
		{name: "string", dt: DatatypeString, raw: "anything goes"},
		{name: "empty string", dt: DatatypeString, raw: "", wantErr: true},
		{name: "datetime", dt: DatatypeDatetime, raw: "2025-01-02T03:04:05Z"},
		{name: "datetime with offset", dt: DatatypeDatetime, raw: "2025-01-02T03:04:05.123+01:00"},
		{name: "bad datetime", dt: DatatypeDatetime, raw: "yesterday", wantErr: true},
		{name: "iso duration", dt: DatatypeDuration, raw: "PT1H30M"},
		{name: "go duration", dt: DatatypeDuration, raw: "1h30m"},
		{name: "negative iso duration", dt: DatatypeDuration, raw: "-PT5S"},
		{name: "negative go duration", dt: DatatypeDuration, raw: "-5s"},
		{name: "bare PT", dt: DatatypeDuration, raw: "PT", wantErr: true},
		{name: "bare negative PT", dt: DatatypeDuration, raw: "-PT", wantErr: true},
		{name: "inner minus", dt: DatatypeDuration, raw: "PT-5S", wantErr: true},
		{name: "date duration", dt: DatatypeDuration, raw: "P1D", wantErr: true},
		{name: "json", dt: DatatypeJSON, raw: `{"k":"v"}`},
		{name: "bad json", dt: DatatypeJSON, raw: `{"k":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw, tt.dt, nil)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPayload) {
					t.Errorf("Decode(%q) error = %v, want ErrInvalidPayload", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Errorf("Decode(%q) error = %v", tt.raw, err)
			}
		})
	}
}

func TestParseDurationEquivalence(t *testing.T) {
	iso, err := Decode("PT1H30M", DatatypeDuration, nil)
	if err != nil {
		t.Fatalf("Decode(iso) error = %v", err)
	}
	goSyntax, err := Decode("1h30m", DatatypeDuration, nil)
	if err != nil {
		t.Fatalf("Decode(go) error = %v", err)
	}
	if iso.Duration != 90*time.Minute || !iso.Equal(goSyntax) {
		t.Errorf("durations = %v / %v, want 1h30m", iso.Duration, goSyntax.Duration)
	}
}

// ─── Format checks ─────────────────────────────────────────────────────

func TestDecodeFormatMismatch(t *testing.T) {
	tests := []struct {
		name   string
		dt     Datatype
		format Format
	}{
		{name: "enum set on integer", dt: DatatypeInteger, format: EnumSet{"a"}},
		{name: "integer range on float", dt: DatatypeFloat, format: IntRange(0, 1)},
		{name: "boolean words on string", dt: DatatypeString, format: BooleanWords{}},
		{name: "enum without format", dt: DatatypeEnum, format: nil},
		{name: "inverted range", dt: DatatypeInteger, format: IntRange(10, 0)},
		{name: "identical boolean words", dt: DatatypeBoolean, format: BooleanWords{False: "x", True: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode("1", tt.dt, tt.format)
			if !errors.Is(err, ErrFormatMismatch) {
				t.Errorf("Decode() error = %v, want ErrFormatMismatch", err)
			}
		})
	}
}

func TestFormatString(t *testing.T) {
	lo, hi, step := int64(0), int64(50), int64(5)
	tests := []struct {
		name   string
		format Format
		want   string
	}{
		{name: "default boolean", format: BooleanWords{}, want: ""},
		{name: "boolean words", format: BooleanWords{False: "off", True: "on"}, want: "off,on"},
		{name: "closed integer", format: IntRange(0, 100), want: "0:100"},
		{name: "stepped integer", format: IntegerRange{Min: &lo, Max: &hi, Step: &step}, want: "0:50:5"},
		{name: "lower bound only", format: IntMin(0), want: "0:"},
		{name: "open integer", format: IntegerRange{}, want: ""},
		{name: "float step", format: FloatBetween(5, 32).WithStep(0.5), want: "5:32:0.5"},
		{name: "enum order kept", format: EnumSet{"up", "down", "stop"}, want: "up,down,stop"},
		{name: "colour", format: ColorEncodings{ColorHSV, ColorRGB}, want: "hsv,rgb"},
		{name: "unconstrained", format: Unconstrained{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeDatetimeIsUTCMillis(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	v := TimeValue(time.Date(2025, 6, 1, 12, 0, 0, 123456789, loc))

	if got, want := Encode(v, nil), "2025-06-01T11:00:00.123Z"; got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncodeNegativeDuration(t *testing.T) {
	if got, want := Encode(DurationValue(-5*time.Second), nil), "-PT5S"; got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestDatetimeMillisecondDomain(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		in        time.Time
		roundTrip bool
	}{
		{name: "whole millisecond", in: base.Add(42 * time.Millisecond), roundTrip: true},
		{name: "sub-millisecond", in: base.Add(1500 * time.Nanosecond), roundTrip: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := TimeValue(tt.in)
			got, err := Decode(Encode(v, nil), DatatypeDatetime, nil)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got.Equal(v) != tt.roundTrip {
				t.Errorf("round trip of %v equal = %v, want %v", tt.in, got.Equal(v), tt.roundTrip)
			}
			// The wire keeps the value truncated to the millisecond.
			if want := tt.in.Truncate(time.Millisecond); !got.Time.Equal(want) {
				t.Errorf("decoded %v, want %v", got.Time, want)
			}
		})
	}
}
