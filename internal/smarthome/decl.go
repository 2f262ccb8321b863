package smarthome

import (
	"slices"

	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// NoEvent is the event type of sensor nodes, which never accept commands.
type NoEvent struct{}

// fixed returns a descriptor that ignores the configuration.
func fixed[C any](p schema.Property) func(C) schema.Property {
	return func(C) schema.Property { return p }
}

// reading is a retained, read-only sensor property.
func reading(name string, dt schema.Datatype, format schema.Format, unit string) schema.Property {
	return schema.Property{Name: name, Datatype: dt, Format: format, Unit: unit, Retained: true}
}

// tokens converts a typed token list into an enum format.
func tokens[T ~string](list []T) schema.EnumSet {
	out := make(schema.EnumSet, len(list))
	for i, t := range list {
		out[i] = string(t)
	}
	return out
}

// enumEvent maps a decoded enum token to an event when it is one of known.
func enumEvent[E any, T ~string](known []T, wrap func(T) E) node.EventMapper[E] {
	return func(v schema.Value) (E, bool) {
		tok := T(v.Text)
		if !slices.Contains(known, tok) {
			var zero E
			return zero, false
		}
		return wrap(tok), true
	}
}

func boolEvent[E any](wrap func(bool) E) node.EventMapper[E] {
	return func(v schema.Value) (E, bool) { return wrap(v.Bool), true }
}

func intEvent[E any](wrap func(int64) E) node.EventMapper[E] {
	return func(v schema.Value) (E, bool) { return wrap(v.Int), true }
}

func floatEvent[E any](wrap func(float64) E) node.EventMapper[E] {
	return func(v schema.Value) (E, bool) { return wrap(v.Float), true }
}
