package smarthome

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
)

func yamlNode(t *testing.T, doc string) *yaml.Node {
	t.Helper()
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(doc), &root); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	return root.Content[0]
}

// ─── Catalogue ─────────────────────────────────────────────────────────

func TestNewNodeEveryKind(t *testing.T) {
	for _, kind := range AllKinds() {
		t.Run(string(kind), func(t *testing.T) {
			var raw *yaml.Node
			if kind == KindLightScene {
				raw = yamlNode(t, "scenes: [evening]")
			}
			defaultID, ok := DefaultNodeID(kind)
			if !ok {
				t.Fatalf("DefaultNodeID(%s) missing", kind)
			}

			n, err := NewNode(kind, nodeID(defaultID), "", raw)
			if err != nil {
				t.Fatalf("NewNode() error = %v", err)
			}
			got, ok := KindOf(n)
			if !ok || got != kind {
				t.Errorf("KindOf() = %q, %v, want %q", got, ok, kind)
			}
			if len(n.Schema().Properties) == 0 {
				t.Error("schema has no properties")
			}
		})
	}
}

func TestNewNodeDecodesConfig(t *testing.T) {
	raw := yamlNode(t, "can_stop: false")
	n, err := NewNode(KindShutter, nodeID("shutter"), "Kitchen blind", raw)
	if err != nil {
		t.Fatalf("NewNode() error = %v", err)
	}
	sh, ok := n.(*ShutterNode)
	if !ok {
		t.Fatalf("NewNode() returned %T, want *ShutterNode", n)
	}
	if got := mustProperty(t, sh, ShutterActionProperty).Format.String(); got != "up,down" {
		t.Errorf("action tokens = %q, want up,down", got)
	}
	if sh.Schema().Name != "Kitchen blind" {
		t.Errorf("Name = %q", sh.Schema().Name)
	}
	if _, ok := n.Probe(set(n, ShutterActionProperty, "stop")); ok {
		t.Error("Probe(stop) produced an event")
	}
}

func TestNewNodeKeepsDefaults(t *testing.T) {
	raw := yamlNode(t, `
modes: [off, heat]
temp_range:
  max: 28
`)
	n, err := NewNode(KindThermostat, nodeID("thermostat"), "", raw)
	if err != nil {
		t.Fatalf("NewNode() error = %v", err)
	}
	if got := mustProperty(t, n, ThermostatSetTemperatureProperty).Format.String(); got != "5:28:0.5" {
		t.Errorf("set-temperature format = %q, want 5:28:0.5", got)
	}
	if got := mustProperty(t, n, ThermostatModeProperty).Format.String(); got != "off,heat" {
		t.Errorf("mode tokens = %q", got)
	}
	want := []string{"set-temperature", "valve", "windowopen", "boost-state", "mode"}
	if got := n.Schema().IDs(); !slices.Equal(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
}

func TestNewNodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		id      node.Identity
		doc     string
		wantErr error
	}{
		{name: "unknown kind", kind: "lava-lamp", id: nodeID("lamp"), wantErr: ErrUnknownKind},
		{name: "bad config type", kind: KindSwitch, id: nodeID("switch"), doc: "settable: [1, 2]", wantErr: ErrInvalidConfig},
		{name: "invalid node id", kind: KindSwitch, id: nodeID("Switch_1"), wantErr: node.ErrInvalidIdentity},
		{name: "no scenes", kind: KindLightScene, id: nodeID("scenes"), wantErr: schema.ErrEmptyEnum},
		{name: "unknown colour space", kind: KindColorLight, id: nodeID("light"), doc: "color_formats: [cmyk]", wantErr: schema.ErrFormatMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw *yaml.Node
			if tt.doc != "" {
				raw = yamlNode(t, tt.doc)
			}
			_, err := NewNode(tt.kind, tt.id, "", raw)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewNode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewNodeFromDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{name: "empty", doc: "", want: []string{"power", "current", "voltage", "consumption"}},
		{name: "json", doc: `{"current": false, "frequency": true}`, want: []string{"power", "voltage", "frequency", "consumption"}},
		{name: "yaml", doc: "voltage: false\nconsumption: false\n", want: []string{"power", "current"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewNodeFromDocument(KindPowermeter, nodeID("powermeter"), "", []byte(tt.doc))
			if err != nil {
				t.Fatalf("NewNodeFromDocument() error = %v", err)
			}
			if got := n.Schema().IDs(); !slices.Equal(got, tt.want) {
				t.Errorf("IDs() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := NewNodeFromDocument(KindSwitch, nodeID("switch"), "", []byte("{unclosed")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("malformed document error = %v, want ErrInvalidConfig", err)
	}
}

// ─── Kinds and tags ────────────────────────────────────────────────────

func TestParseTypeTag(t *testing.T) {
	tests := []struct {
		tag    string
		want   Kind
		wantOK bool
	}{
		{tag: "homie-homecontrol/v1/type=switch", want: KindSwitch, wantOK: true},
		{tag: "homie-homecontrol/v1/type=water", want: KindWaterSensor, wantOK: true},
		{tag: "homie-homecontrol/v1/type=numeric-temperature", want: KindNumeric, wantOK: true},
		{tag: "homie-homecontrol/v1/type=numeric", want: KindNumeric, wantOK: true},
		{tag: "homie-homecontrol/v1/extension/type=sprinkler"},
		{tag: "homie-homecontrol/v1/type=sprinkler"},
		{tag: "other/v1/type=switch"},
		{tag: ""},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, ok := ParseTypeTag(tt.tag)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseTypeTag(%q) = %q, %v, want %q, %v", tt.tag, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestTypeTagsNamespaced(t *testing.T) {
	for _, k := range AllKinds() {
		if !strings.HasPrefix(k.TypeTag(), NamespaceV1+"/type=") {
			t.Errorf("%s tag %q not namespaced", k, k.TypeTag())
		}
	}
	if got := ExtensionTypeTag("sprinkler"); got != "homie-homecontrol/v1/extension/type=sprinkler" {
		t.Errorf("ExtensionTypeTag() = %q", got)
	}
}

// ─── Alerts ────────────────────────────────────────────────────────────

func TestParseAlert(t *testing.T) {
	for _, a := range AllAlerts() {
		got, ok := ParseAlert(string(a))
		if !ok || got != a {
			t.Errorf("ParseAlert(%q) = %q, %v", a, got, ok)
		}
		if !schema.ValidID(string(a)) {
			t.Errorf("alert id %q is not a valid id", a)
		}
		if a.DefaultMessage() == string(a) {
			t.Errorf("alert %q has no message", a)
		}
	}

	for _, custom := range []string{"door-jammed", "hc-unknown", ""} {
		if _, ok := ParseAlert(custom); ok {
			t.Errorf("ParseAlert(%q) matched", custom)
		}
	}
	if !IsReservedAlertID("hc-unknown") || IsReservedAlertID("door-jammed") {
		t.Error("IsReservedAlertID() misclassified ids")
	}
}
