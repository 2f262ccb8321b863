// Package schema describes node properties and converts their values to and
// from the wire.
//
// A node type is declared once as an ordered list of property declarations.
// Building the declarations against a configuration yields an immutable
// NodeSchema that can be advertised in a device description and consulted
// when decoding inbound commands.
//
// # Architecture
//
//	NodeTypeConfig ──► Build(decls) ──► NodeSchema ──► description sink
//	                                        │
//	raw payload ──► Decode(datatype, format) ──► Value ──► Encode ──► payload
//
// # Value formats
//
// Every property carries a Format that matches its Datatype:
//
//   - BooleanWords   boolean          "off,on"
//   - IntegerRange   integer          "0:100" or "0:100:5"
//   - FloatRange     float            "5:32:0.5"
//   - EnumSet        enum             "up,down,stop"
//   - ColorEncodings color            "rgb,hsv"
//   - Unconstrained  string, datetime, duration, json
//
// # Step handling
//
// Range formats may carry a step. The step is advertised to controllers but
// is not enforced when decoding: a payload is accepted when it lies inside
// [min, max] regardless of its distance from the step grid. Devices are
// trusted to apply their own increments.
//
// # Thread Safety
//
// Schemas, properties and values are immutable once built and may be shared
// between goroutines without synchronisation.
package schema
