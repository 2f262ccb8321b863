package schema

import "regexp"

// Datatype is the primitive type of a property value as advertised in the
// device description.
type Datatype string

// Supported datatypes.
const (
	DatatypeInteger  Datatype = "integer"
	DatatypeFloat    Datatype = "float"
	DatatypeBoolean  Datatype = "boolean"
	DatatypeString   Datatype = "string"
	DatatypeEnum     Datatype = "enum"
	DatatypeColor    Datatype = "color"
	DatatypeDatetime Datatype = "datetime"
	DatatypeDuration Datatype = "duration"
	DatatypeJSON     Datatype = "json"
)

// AllDatatypes returns all supported datatypes in description order.
func AllDatatypes() []Datatype {
	return []Datatype{
		DatatypeInteger,
		DatatypeFloat,
		DatatypeBoolean,
		DatatypeString,
		DatatypeEnum,
		DatatypeColor,
		DatatypeDatetime,
		DatatypeDuration,
		DatatypeJSON,
	}
}

// validDatatypes is built from AllDatatypes for O(1) lookup.
var validDatatypes map[Datatype]bool

func init() {
	validDatatypes = make(map[Datatype]bool, len(AllDatatypes()))
	for _, dt := range AllDatatypes() {
		validDatatypes[dt] = true
	}
}

// Valid reports whether dt is a supported datatype.
func (dt Datatype) Valid() bool {
	return validDatatypes[dt]
}

// idPattern matches property, node and device ids: lowercase letters,
// digits and single hyphens between them.
var idPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidID reports whether id is a legal property, node or device id.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}
