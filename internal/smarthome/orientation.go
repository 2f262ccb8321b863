package smarthome

import (
	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// Orientation node ids.
const (
	OrientationDefaultID    = "orientation"
	OrientationXProperty    = "orientation-x"
	OrientationYProperty    = "orientation-y"
	OrientationZProperty    = "orientation-z"
	OrientationTiltProperty = "tilt"
)

func degrees(name string) func(NoConfig) schema.Property {
	return fixed[NoConfig](reading(name, schema.DatatypeInteger, nil, UnitDegree))
}

// OrientationType declares the orientation sensor.
var OrientationType = node.Type[NoConfig, NoEvent]{
	Kind:      string(KindOrientation),
	Tag:       KindOrientation.TypeTag(),
	Name:      "Orientation sensor",
	DefaultID: OrientationDefaultID,
	Decls: []schema.Decl[NoConfig]{
		schema.Always(OrientationXProperty, degrees("Rotation X-Axis")),
		schema.Always(OrientationYProperty, degrees("Rotation Y-Axis")),
		schema.Always(OrientationZProperty, degrees("Rotation Z-Axis")),
		schema.Always(OrientationTiltProperty, degrees("Tilt angle")),
	},
}

// OrientationNode is an instantiated orientation sensor.
type OrientationNode struct {
	*node.Instance[NoEvent]
}

// NewOrientationNode creates an orientation sensor. An empty name keeps the
// default.
func NewOrientationNode(id node.Identity, name string) (*OrientationNode, error) {
	inst, err := OrientationType.Instantiate(id, name, NoConfig{})
	if err != nil {
		return nil, err
	}
	return &OrientationNode{Instance: inst}, nil
}

// Rotation publishes the rotation around the three axes in degrees.
func (n *OrientationNode) Rotation(x, y, z int64) ([]node.OutboundMessage, error) {
	out := make([]node.OutboundMessage, 0, 3)
	for _, r := range []struct {
		prop string
		v    int64
	}{{OrientationXProperty, x}, {OrientationYProperty, y}, {OrientationZProperty, z}} {
		msg, err := n.PublishValue(r.prop, schema.IntValue(r.v))
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

// Tilt publishes the tilt angle in degrees.
func (n *OrientationNode) Tilt(deg int64) (node.OutboundMessage, error) {
	return n.PublishValue(OrientationTiltProperty, schema.IntValue(deg))
}
