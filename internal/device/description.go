package device

import (
	"encoding/json"
	"hash/fnv"

	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// HomieVersion is the convention version advertised in descriptions.
const HomieVersion = "5.0"

// versionMask keeps description versions inside the integer range JSON
// number parsers represent exactly.
const versionMask = 1<<53 - 1

// Description is the Homie 5 $description document of a device.
type Description struct {
	Homie   string                     `json:"homie"`
	Version int64                      `json:"version"`
	Name    string                     `json:"name,omitempty"`
	Type    string                     `json:"type,omitempty"`
	Nodes   map[string]NodeDescription `json:"nodes,omitempty"`
}

// NodeDescription describes one node.
type NodeDescription struct {
	Name       string                         `json:"name,omitempty"`
	Type       string                         `json:"type,omitempty"`
	Properties map[string]PropertyDescription `json:"properties,omitempty"`
}

// PropertyDescription describes one property. Settable and Retained are
// always present so the description does not depend on Homie defaults.
type PropertyDescription struct {
	Name     string `json:"name,omitempty"`
	Datatype string `json:"datatype"`
	Format   string `json:"format,omitempty"`
	Settable bool   `json:"settable"`
	Retained bool   `json:"retained"`
	Unit     string `json:"unit,omitempty"`
}

// DeviceType is the device type advertised for homecontrol devices.
const DeviceType = "homecontrol"

// Description builds the device's current description.
//
// The version is the FNV-64a hash of the node section, so it only changes
// when the advertised schemas change.
func (d *Device) Description() Description {
	nodes := make(map[string]NodeDescription, d.Len())
	for _, n := range d.Nodes() {
		nodes[n.Identity().Node] = describeNode(n.Schema())
	}

	return Description{
		Homie:   HomieVersion,
		Version: descriptionVersion(nodes),
		Name:    d.name,
		Type:    DeviceType,
		Nodes:   nodes,
	}
}

// JSON encodes the description.
func (desc Description) JSON() ([]byte, error) {
	return json.Marshal(desc)
}

func describeNode(s schema.NodeSchema) NodeDescription {
	props := make(map[string]PropertyDescription, len(s.Properties))
	for _, p := range s.Properties {
		props[p.ID] = PropertyDescription{
			Name:     p.Name,
			Datatype: string(p.Datatype),
			Format:   p.EffectiveFormat().String(),
			Settable: p.Settable,
			Retained: p.Retained,
			Unit:     p.Unit,
		}
	}
	return NodeDescription{Name: s.Name, Type: s.TypeTag, Properties: props}
}

func descriptionVersion(nodes map[string]NodeDescription) int64 {
	// encoding/json sorts map keys, so equal node sets hash equally.
	data, err := json.Marshal(nodes)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	h.Write(data) //nolint:errcheck // hash writes never fail
	return int64(h.Sum64() & versionMask)
}
