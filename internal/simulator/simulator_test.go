package simulator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/homecontrol-core/internal/device"
	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/smarthome"
)

const deviceID = "sim"

type fakeRuntime struct {
	dev  *device.Device
	sent []node.OutboundMessage
	err  error
}

func (f *fakeRuntime) Device() *device.Device { return f.dev }

func (f *fakeRuntime) PublishAll(_ context.Context, msgs ...node.OutboundMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msgs...)
	return nil
}

// take returns and clears the recorded messages as "prop=payload" strings,
// with "$target" appended to targets.
func (f *fakeRuntime) take() []string {
	var out []string
	for _, m := range f.sent {
		s := m.Address.Node + "/" + m.Address.Property
		if m.Target {
			s += "/$target"
		}
		out = append(out, s+"="+m.Payload)
	}
	f.sent = nil
	return out
}

func newAppliance(t *testing.T, nodes map[smarthome.Kind]string) (*Appliance, *fakeRuntime) {
	t.Helper()
	dev, err := device.New(deviceID, "Simulator")
	if err != nil {
		t.Fatalf("device.New() error = %v", err)
	}
	for kind, doc := range nodes {
		id, _ := smarthome.DefaultNodeID(kind)
		n, err := smarthome.NewNodeFromDocument(kind, node.Identity{Device: deviceID, Node: id}, "", []byte(doc))
		if err != nil {
			t.Fatalf("NewNodeFromDocument(%s) error = %v", kind, err)
		}
		if err := dev.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s) error = %v", kind, err)
		}
	}
	rt := &fakeRuntime{dev: dev}
	app := New(rt)
	app.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }
	return app, rt
}

// send routes a set command through the device and hands the events to the
// appliance, the way device.Runtime does.
func send(t *testing.T, app *Appliance, rt *fakeRuntime, nodeID, property, payload string) {
	t.Helper()
	in := node.IncomingPropertySet{
		Address: node.Identity{Device: deviceID, Node: nodeID}.Address(property),
		Payload: payload,
	}
	for _, ev := range rt.dev.Route(in) {
		app.HandleEvent(context.Background(), ev)
	}
}

func assertSent(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("sent %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sent[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// ─── Switch ────────────────────────────────────────────────────────

func TestAppliance_Switch(t *testing.T) {
	app, rt := newAppliance(t, map[smarthome.Kind]string{smarthome.KindSwitch: ""})

	send(t, app, rt, "switch", "state", "on")
	assertSent(t, rt.take(), "switch/state/$target=on", "switch/state=on")

	send(t, app, rt, "switch", "action", "toggle")
	assertSent(t, rt.take(), "switch/state/$target=off", "switch/state=off")

	send(t, app, rt, "switch", "action", "toggle")
	assertSent(t, rt.take(), "switch/state/$target=on", "switch/state=on")

	if got := app.Snapshot("switch")["state"]; got != true {
		t.Errorf("Snapshot state = %v, want true", got)
	}
}

// ─── Dimmer ────────────────────────────────────────────────────────

func TestAppliance_Dimmer(t *testing.T) {
	app, rt := newAppliance(t, map[smarthome.Kind]string{smarthome.KindDimmer: ""})

	tests := []struct {
		name     string
		property string
		payload  string
		want     string
	}{
		{"set", "brightness", "95", "95"},
		{"brighter caps at 100", "action", "brighter", "100"},
		{"brighter stays at 100", "action", "brighter", "100"},
		{"set low", "brightness", "5", "5"},
		{"darker floors at 1", "action", "darker", "1"},
		{"darker stays at 1", "action", "darker", "1"},
		{"brighter from 1", "action", "brighter", "11"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, app, rt, "dimmer", tt.property, tt.payload)
			assertSent(t, rt.take(), "dimmer/brightness/$target="+tt.want, "dimmer/brightness="+tt.want)
		})
	}
}

// ─── Shutter ───────────────────────────────────────────────────────

func TestAppliance_Shutter(t *testing.T) {
	app, rt := newAppliance(t, map[smarthome.Kind]string{smarthome.KindShutter: ""})

	tests := []struct {
		name     string
		property string
		payload  string
		want     string
	}{
		{"position", "position", "40", "40"},
		{"stop keeps position", "action", "stop", "40"},
		{"down closes", "action", "down", "100"},
		{"up opens", "action", "up", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, app, rt, "shutter", tt.property, tt.payload)
			assertSent(t, rt.take(), "shutter/position/$target="+tt.want, "shutter/position="+tt.want)
		})
	}
}

// ─── Colour, thermostat, scenes ────────────────────────────────────

func TestAppliance_EchoedValues(t *testing.T) {
	app, rt := newAppliance(t, map[smarthome.Kind]string{
		smarthome.KindColorLight: "",
		smarthome.KindThermostat: "",
		smarthome.KindLightScene: "{scenes: [evening, movie], settable: true}",
	})

	send(t, app, rt, "colorlight", "color", "rgb,10,20,30")
	assertSent(t, rt.take(), "colorlight/color/$target=rgb,10,20,30", "colorlight/color=rgb,10,20,30")

	send(t, app, rt, "colorlight", "color-temperature", "250")
	assertSent(t, rt.take(), "colorlight/color-temperature/$target=250", "colorlight/color-temperature=250")

	send(t, app, rt, "thermostat", "set-temperature", "22.5")
	assertSent(t, rt.take(), "thermostat/set-temperature/$target=22.5", "thermostat/set-temperature=22.5")

	send(t, app, rt, "thermostat", "mode", "manual")
	assertSent(t, rt.take(), "thermostat/mode/$target=manual", "thermostat/mode=manual")

	send(t, app, rt, "scenes", "recall", "movie")
	assertSent(t, rt.take(), "scenes/recall=movie")

	send(t, app, rt, "scenes", "recall", "party")
	assertSent(t, rt.take())
}

// ─── Start ─────────────────────────────────────────────────────────

func TestAppliance_StartSeeds(t *testing.T) {
	app, rt := newAppliance(t, map[smarthome.Kind]string{
		smarthome.KindMaintenance: "",
	})

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	assertSent(t, rt.take(),
		"maintenance/reachable=true",
		"maintenance/last-update=2024-03-01T12:30:00.000Z",
	)
}

func TestAppliance_StartSeedsActuators(t *testing.T) {
	app, rt := newAppliance(t, map[smarthome.Kind]string{
		smarthome.KindShutter: "",
	})

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	assertSent(t, rt.take(), "shutter/position=0")

	// The seeded position is the base for stop.
	send(t, app, rt, "shutter", "action", "stop")
	assertSent(t, rt.take(), "shutter/position/$target=0", "shutter/position=0")
}

func TestAppliance_StartPublishError(t *testing.T) {
	app, rt := newAppliance(t, map[smarthome.Kind]string{smarthome.KindSwitch: ""})
	rt.err = errors.New("broker down")

	if err := app.Start(context.Background()); err == nil {
		t.Fatal("Start() succeeded with a failing runtime")
	}
}

func TestStepBrightness(t *testing.T) {
	tests := []struct {
		level  int64
		action smarthome.DimmerAction
		want   int64
	}{
		{0, smarthome.DimmerBrighter, 10},
		{95, smarthome.DimmerBrighter, 100},
		{100, smarthome.DimmerDarker, 90},
		{8, smarthome.DimmerDarker, 1},
		{0, smarthome.DimmerDarker, 1},
	}
	for _, tt := range tests {
		if got := stepBrightness(tt.level, tt.action); got != tt.want {
			t.Errorf("stepBrightness(%d, %s) = %d, want %d", tt.level, tt.action, got, tt.want)
		}
	}
}
