package schema

import "fmt"

// Property describes one value slot of a node.
//
// A Property is created by a node type's declaration table when a schema is
// built and is not modified afterwards.
type Property struct {
	// ID is unique within the owning node ([a-z0-9-]).
	ID string

	// Name is the human-readable display name.
	Name string

	Datatype Datatype

	// Format constrains legal values. Nil means DefaultFormat(Datatype).
	Format Format

	// Unit is an optional unit string advertised verbatim (e.g. "%", "°C").
	Unit string

	// Settable properties accept set commands from controllers.
	Settable bool

	// Retained properties are published as retained messages.
	Retained bool
}

// EffectiveFormat returns the declared format or the datatype default.
func (p Property) EffectiveFormat() Format {
	if p.Format == nil {
		return DefaultFormat(p.Datatype)
	}
	return p.Format
}

// Decode parses a payload destined for this property.
func (p Property) Decode(raw string) (Value, error) {
	return Decode(raw, p.Datatype, p.EffectiveFormat())
}

// Encode renders a value for this property.
func (p Property) Encode(v Value) string {
	return Encode(v, p.EffectiveFormat())
}

// Validate checks the property can be advertised.
//
// Returns:
//   - error: Wraps ErrInvalidProperty, ErrEmptyEnum or ErrFormatMismatch
func (p Property) Validate() error {
	if !ValidID(p.ID) {
		return fmt.Errorf("%w: id %q must match [a-z0-9-]", ErrInvalidProperty, p.ID)
	}
	if !p.Datatype.Valid() {
		return fmt.Errorf("%w: property %q has unknown datatype %q", ErrInvalidProperty, p.ID, p.Datatype)
	}
	if err := p.EffectiveFormat().check(p.Datatype); err != nil {
		return fmt.Errorf("property %q: %w", p.ID, err)
	}
	return nil
}
