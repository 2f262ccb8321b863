package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ColorSpace identifies a colour encoding on the wire.
type ColorSpace string

// Supported colour spaces.
const (
	ColorRGB ColorSpace = "rgb"
	ColorHSV ColorSpace = "hsv"
	ColorXYZ ColorSpace = "xyz"
)

// Colour component limits.
const (
	rgbMax     = 255
	hueMax     = 360
	percentMax = 100
)

// Color is a colour value in one of the supported spaces.
//
// Only the components belonging to Space are meaningful:
//   - rgb: R, G, B in 0..255
//   - hsv: H in 0..360, S and V in 0..100
//   - xyz: X and Y chromaticity in 0..1 with X+Y <= 1
type Color struct {
	Space   ColorSpace
	R, G, B int
	H, S, V int
	X, Y    float64
}

// RGB returns an rgb colour.
func RGB(r, g, b int) Color {
	return Color{Space: ColorRGB, R: r, G: g, B: b}
}

// HSV returns an hsv colour.
func HSV(h, s, v int) Color {
	return Color{Space: ColorHSV, H: h, S: s, V: v}
}

// XYZ returns a CIE xy chromaticity colour.
func XYZ(x, y float64) Color {
	return Color{Space: ColorXYZ, X: x, Y: y}
}

// String encodes the colour as "<space>,<components>".
func (c Color) String() string {
	switch c.Space {
	case ColorRGB:
		return fmt.Sprintf("rgb,%d,%d,%d", c.R, c.G, c.B)
	case ColorHSV:
		return fmt.Sprintf("hsv,%d,%d,%d", c.H, c.S, c.V)
	case ColorXYZ:
		return "xyz," + formatFloat(c.X) + "," + formatFloat(c.Y)
	default:
		return string(c.Space)
	}
}

// parseColor decodes a colour payload and checks its space is enabled.
func parseColor(raw string, enabled ColorEncodings) (Color, error) {
	parts := strings.Split(raw, ",")
	space := ColorSpace(parts[0])
	if !enabled.Contains(space) {
		return Color{}, fmt.Errorf("%w: colour space %q not enabled", ErrInvalidPayload, parts[0])
	}

	switch space {
	case ColorRGB:
		v, err := parseComponents(parts[1:], []int{rgbMax, rgbMax, rgbMax})
		if err != nil {
			return Color{}, err
		}
		return RGB(v[0], v[1], v[2]), nil
	case ColorHSV:
		v, err := parseComponents(parts[1:], []int{hueMax, percentMax, percentMax})
		if err != nil {
			return Color{}, err
		}
		return HSV(v[0], v[1], v[2]), nil
	case ColorXYZ:
		return parseXY(parts[1:])
	default:
		return Color{}, fmt.Errorf("%w: unknown colour space %q", ErrInvalidPayload, parts[0])
	}
}

// parseComponents parses integer components, each bounded by its limit.
func parseComponents(parts []string, limits []int) ([]int, error) {
	if len(parts) != len(limits) {
		return nil, fmt.Errorf("%w: expected %d colour components, got %d", ErrInvalidPayload, len(limits), len(parts))
	}
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: colour component %q", ErrInvalidPayload, p)
		}
		if v < 0 || v > limits[i] {
			return nil, fmt.Errorf("%w: colour component %d outside 0..%d", ErrInvalidPayload, v, limits[i])
		}
		out[i] = v
	}
	return out, nil
}

// parseXY parses the two chromaticity coordinates of an xyz colour.
func parseXY(parts []string) (Color, error) {
	if len(parts) != 2 {
		return Color{}, fmt.Errorf("%w: expected 2 colour components, got %d", ErrInvalidPayload, len(parts))
	}
	var xy [2]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(v) || v < 0 || v > 1 {
			return Color{}, fmt.Errorf("%w: chromaticity %q", ErrInvalidPayload, p)
		}
		xy[i] = v
	}
	if xy[0]+xy[1] > 1 {
		return Color{}, fmt.Errorf("%w: x+y exceeds 1", ErrInvalidPayload)
	}
	return XYZ(xy[0], xy[1]), nil
}
