package schema

import (
	"fmt"
	"slices"
)

// Decl declares one property position of a node type.
//
// C is the node type's configuration struct. Gate decides whether the
// property is part of a schema built from a given configuration; a nil Gate
// always includes it. Describe is only called for included properties.
type Decl[C any] struct {
	ID       string
	Gate     func(cfg C) bool
	Describe func(cfg C) Property
}

// Always returns an unconditional declaration.
func Always[C any](id string, describe func(cfg C) Property) Decl[C] {
	return Decl[C]{ID: id, Describe: describe}
}

// When returns a declaration included only when gate returns true.
func When[C any](id string, gate func(cfg C) bool, describe func(cfg C) Property) Decl[C] {
	return Decl[C]{ID: id, Gate: gate, Describe: describe}
}

// NodeSchema is the advertised shape of one node.
type NodeSchema struct {
	// TypeTag identifies the capability kind.
	TypeTag string

	// Name is the human-readable node name.
	Name string

	// Properties in declaration order.
	Properties []Property

	index map[string]int
}

// Property looks up a property by id.
func (s NodeSchema) Property(id string) (Property, bool) {
	i, ok := s.index[id]
	if !ok {
		return Property{}, false
	}
	return s.Properties[i], true
}

// Has reports whether the schema contains a property id.
func (s NodeSchema) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// IDs returns the property ids in declaration order.
func (s NodeSchema) IDs() []string {
	ids := make([]string, len(s.Properties))
	for i, p := range s.Properties {
		ids[i] = p.ID
	}
	return ids
}

// WithName returns a copy of the schema carrying a different display name.
func (s NodeSchema) WithName(name string) NodeSchema {
	c := s.Clone()
	c.Name = name
	return c
}

// Clone returns a copy that shares no mutable state with s. Changing the
// copy's properties leaves s untouched.
func (s NodeSchema) Clone() NodeSchema {
	c := s
	c.Properties = make([]Property, len(s.Properties))
	for i, p := range s.Properties {
		c.Properties[i] = p.clone()
	}
	// index is never written after Build.
	return c
}

// clone copies the slice-backed formats.
func (p Property) clone() Property {
	switch f := p.Format.(type) {
	case EnumSet:
		p.Format = slices.Clone(f)
	case ColorEncodings:
		p.Format = slices.Clone(f)
	}
	return p
}

// Build evaluates a declaration table against a configuration.
//
// Declarations are visited in order; gated-out declarations are skipped
// without calling Describe. The resulting properties keep declaration
// order and the declared id always wins over the id Describe returns.
//
// Parameters:
//   - tag: Node type tag
//   - name: Node display name
//   - decls: Declaration table of the node type
//   - cfg: Node type configuration
//
// Returns:
//   - NodeSchema: Immutable schema
//   - error: Build-time misconfiguration (invalid id, duplicate id, empty
//     enum, format not matching datatype)
func Build[C any](tag, name string, decls []Decl[C], cfg C) (NodeSchema, error) {
	s := NodeSchema{
		TypeTag:    tag,
		Name:       name,
		Properties: make([]Property, 0, len(decls)),
		index:      make(map[string]int, len(decls)),
	}

	for _, d := range decls {
		if d.Gate != nil && !d.Gate(cfg) {
			continue
		}
		if d.Describe == nil {
			return NodeSchema{}, fmt.Errorf("%w: property %q has no descriptor", ErrInvalidProperty, d.ID)
		}

		p := d.Describe(cfg).clone()
		p.ID = d.ID
		if err := p.Validate(); err != nil {
			return NodeSchema{}, fmt.Errorf("building %s: %w", tag, err)
		}
		if _, dup := s.index[p.ID]; dup {
			return NodeSchema{}, fmt.Errorf("building %s: %w: %q", tag, ErrDuplicateProperty, p.ID)
		}

		s.index[p.ID] = len(s.Properties)
		s.Properties = append(s.Properties, p)
	}

	return s, nil
}
