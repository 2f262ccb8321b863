package smarthome

import (
	"fmt"
	"slices"

	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// Light scene node ids.
const (
	LightSceneDefaultID      = "scenes"
	LightSceneRecallProperty = "recall"
)

// LightSceneConfig configures a light scene node.
type LightSceneConfig struct {
	// Scenes offered for recall. At least one is required.
	Scenes   []string `yaml:"scenes" json:"scenes"`
	Settable bool     `yaml:"settable" json:"settable"`
}

// DefaultLightSceneConfig returns a read-only node without scenes. Building
// it fails until scenes are configured.
func DefaultLightSceneConfig() LightSceneConfig {
	return LightSceneConfig{}
}

// LightSceneEvent is a command received by a light scene node.
type LightSceneEvent interface{ isLightSceneEvent() }

// SceneRecalled requests a scene.
type SceneRecalled struct{ Scene string }

func (SceneRecalled) isLightSceneEvent() {}

// LightSceneType declares the light scene node.
var LightSceneType = node.Type[LightSceneConfig, LightSceneEvent]{
	Kind:      string(KindLightScene),
	Tag:       KindLightScene.TypeTag(),
	Name:      "Light scenes",
	DefaultID: LightSceneDefaultID,
	Decls: []schema.Decl[LightSceneConfig]{
		schema.Always(LightSceneRecallProperty, func(c LightSceneConfig) schema.Property {
			return schema.Property{
				Name:     "Recall a scene",
				Datatype: schema.DatatypeEnum,
				Format:   schema.EnumSet(slices.Clone(c.Scenes)),
				Settable: c.Settable,
			}
		}),
	},
	Events: map[string]node.EventMapper[LightSceneEvent]{
		LightSceneRecallProperty: func(v schema.Value) (LightSceneEvent, bool) {
			return SceneRecalled{Scene: v.Text}, true
		},
	},
}

// LightSceneNode is an instantiated light scene node.
type LightSceneNode struct {
	*node.Instance[LightSceneEvent]
	scenes []string
}

// NewLightSceneNode creates a light scene node. An empty name keeps the
// default.
func NewLightSceneNode(id node.Identity, name string, cfg LightSceneConfig) (*LightSceneNode, error) {
	inst, err := LightSceneType.Instantiate(id, name, cfg)
	if err != nil {
		return nil, err
	}
	return &LightSceneNode{Instance: inst, scenes: slices.Clone(cfg.Scenes)}, nil
}

// Scenes returns the configured scenes.
func (n *LightSceneNode) Scenes() []string {
	return slices.Clone(n.scenes)
}

// Recall publishes a recalled scene. Unknown scenes are refused.
func (n *LightSceneNode) Recall(scene string) (node.OutboundMessage, error) {
	if !slices.Contains(n.scenes, scene) {
		return node.OutboundMessage{}, fmt.Errorf("%w: scene %q", ErrUnsupportedValue, scene)
	}
	return n.PublishValue(LightSceneRecallProperty, schema.EnumValue(scene))
}
