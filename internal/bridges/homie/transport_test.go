package homie

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/nerrad567/homecontrol-core/internal/device"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/smarthome"
)

// published is one message seen by fakeBus.
type published struct {
	topic    string
	payload  string
	retained bool
}

// fakeBus is an in-memory Bus.
type fakeBus struct {
	mu       sync.Mutex
	messages []published
	handlers map[string]mqtt.MessageHandler
	failPub  error
	failSub  error
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[string]mqtt.MessageHandler)}
}

func (b *fakeBus) Publish(topic string, payload []byte, _ byte, retained bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failPub != nil {
		return b.failPub
	}
	b.messages = append(b.messages, published{topic, string(payload), retained})
	return nil
}

func (b *fakeBus) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failSub != nil {
		return b.failSub
	}
	b.handlers[topic] = handler
	return nil
}

func (b *fakeBus) Unsubscribe(topic string) error {
	b.mu.Lock()
	delete(b.handlers, topic)
	b.mu.Unlock()
	return nil
}

// deliver hands a message to the handler subscribed on wildcard.
func (b *fakeBus) deliver(t *testing.T, wildcard, topic, payload string) {
	t.Helper()
	b.mu.Lock()
	h, ok := b.handlers[wildcard]
	b.mu.Unlock()
	if !ok {
		t.Fatalf("no subscription on %s", wildcard)
	}
	if err := h(topic, []byte(payload)); err != nil {
		t.Fatalf("handler(%s) error = %v", topic, err)
	}
}

func (b *fakeBus) last(t *testing.T) published {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.messages) == 0 {
		t.Fatal("nothing published")
	}
	return b.messages[len(b.messages)-1]
}

func (b *fakeBus) topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.messages))
	for i, m := range b.messages {
		out[i] = m.topic + "=" + m.payload
	}
	return out
}

// ─── Publishing ────────────────────────────────────────────────────

func TestTransport_SetState(t *testing.T) {
	bus := newFakeBus()
	tr := New(bus, "homie", 1)

	if err := tr.SetState(context.Background(), "hall", device.StateReady); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}

	got := bus.last(t)
	if got != (published{"homie/5/hall/$state", "ready", true}) {
		t.Errorf("published %+v", got)
	}
}

func TestTransport_Advertise(t *testing.T) {
	bus := newFakeBus()
	tr := New(bus, "test", 1)

	desc := device.Description{Homie: device.HomieVersion, Version: 42, Name: "Hall"}
	if err := tr.Advertise(context.Background(), "hall", desc); err != nil {
		t.Fatalf("Advertise() error = %v", err)
	}

	got := bus.last(t)
	if got.topic != "test/5/hall/$description" || !got.retained {
		t.Fatalf("published %+v", got)
	}
	var decoded device.Description
	if err := json.Unmarshal([]byte(got.payload), &decoded); err != nil {
		t.Fatalf("description is not JSON: %v", err)
	}
	if decoded.Homie != "5.0" || decoded.Version != 42 || decoded.Name != "Hall" {
		t.Errorf("decoded description = %+v", decoded)
	}
}

func TestTransport_Send(t *testing.T) {
	addr := node.Identity{Device: "hall", Node: "lamp"}.Address("state")

	tests := []struct {
		name string
		msg  node.OutboundMessage
		want published
	}{
		{
			name: "retained value",
			msg:  node.OutboundMessage{Address: addr, Payload: "true", Retained: true},
			want: published{"homie/5/hall/lamp/state", "on", true},
		},
		{
			name: "target",
			msg:  node.OutboundMessage{Address: addr, Payload: "false", Retained: true, Target: true},
			want: published{"homie/5/hall/lamp/state/$target", "false", true},
		},
		{
			name: "non-retained action",
			msg:  node.OutboundMessage{Address: addr.Identity.Address("action"), Payload: "toggle"},
			want: published{"homie/5/hall/lamp/action", "toggle", false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := newFakeBus()
			if err := New(bus, "homie", 1).Send(context.Background(), tt.msg); err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			if got := bus.last(t); got != tt.want {
				t.Errorf("published %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTransport_SendInvalidAddress(t *testing.T) {
	tr := New(newFakeBus(), "homie", 1)

	err := tr.Send(context.Background(), node.OutboundMessage{Payload: "1"})
	if !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Send() error = %v, want ErrInvalidAddress", err)
	}
}

func TestTransport_Alerts(t *testing.T) {
	bus := newFakeBus()
	tr := New(bus, "homie", 1)
	ctx := context.Background()

	if err := tr.RaiseAlert(ctx, "hall", "hc-battery-low", "Battery low"); err != nil {
		t.Fatalf("RaiseAlert() error = %v", err)
	}
	if got := bus.last(t); got != (published{"homie/5/hall/$alert/hc-battery-low", "Battery low", true}) {
		t.Errorf("raise published %+v", got)
	}

	if err := tr.ClearAlert(ctx, "hall", "hc-battery-low"); err != nil {
		t.Fatalf("ClearAlert() error = %v", err)
	}
	if got := bus.last(t); got != (published{"homie/5/hall/$alert/hc-battery-low", "", true}) {
		t.Errorf("clear published %+v", got)
	}
}

func TestTransport_PublishErrors(t *testing.T) {
	bus := newFakeBus()
	bus.failPub = errors.New("broker down")
	tr := New(bus, "homie", 1)

	if err := tr.SetState(context.Background(), "hall", device.StateInit); !errors.Is(err, ErrPublishFailed) {
		t.Errorf("SetState() error = %v, want ErrPublishFailed", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.failPub = nil
	if err := tr.SetState(ctx, "hall", device.StateInit); !errors.Is(err, context.Canceled) {
		t.Errorf("SetState(cancelled) error = %v, want context.Canceled", err)
	}
	if len(bus.topics()) != 0 {
		t.Errorf("published %v with a cancelled context", bus.topics())
	}
}

// ─── Set subscription ──────────────────────────────────────────────

func TestTransport_SubscribeSets(t *testing.T) {
	bus := newFakeBus()
	tr := New(bus, "homie", 1)

	var got []node.IncomingPropertySet
	err := tr.SubscribeSets(context.Background(), "hall", func(_ context.Context, in node.IncomingPropertySet) {
		got = append(got, in)
	})
	if err != nil {
		t.Fatalf("SubscribeSets() error = %v", err)
	}

	wildcard := "homie/5/hall/+/+/set"
	bus.deliver(t, wildcard, "homie/5/hall/lamp/state/set", "true")
	bus.deliver(t, wildcard, "homie/5/kitchen/lamp/state/set", "true")
	bus.deliver(t, wildcard, "homie/5/hall/lamp/state", "false")

	if len(got) != 1 {
		t.Fatalf("handled %d commands, want 1: %+v", len(got), got)
	}
	want := node.IncomingPropertySet{
		Address: node.Identity{Device: "hall", Node: "lamp"}.Address("state"),
		Payload: "true",
	}
	if got[0] != want {
		t.Errorf("command = %+v, want %+v", got[0], want)
	}

	if err := tr.Detach("hall"); err != nil {
		t.Fatalf("Detach() error = %v", err)
	}
	if _, ok := bus.handlers[wildcard]; ok {
		t.Error("set wildcard still subscribed after Detach()")
	}
	if err := tr.Detach("hall"); err != nil {
		t.Errorf("second Detach() error = %v", err)
	}
}

func TestTransport_SubscribeSetsFailure(t *testing.T) {
	bus := newFakeBus()
	bus.failSub = errors.New("not authorised")

	err := New(bus, "homie", 1).SubscribeSets(context.Background(), "hall", func(context.Context, node.IncomingPropertySet) {})
	if !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("SubscribeSets() error = %v, want ErrSubscribeFailed", err)
	}
}

// ─── Runtime over the transport ────────────────────────────────────

func TestTransport_RuntimeRoundtrip(t *testing.T) {
	bus := newFakeBus()
	tr := New(bus, "homie", 1)

	dev, err := device.New("hall", "Hall")
	if err != nil {
		t.Fatalf("device.New() error = %v", err)
	}
	lamp, err := smarthome.NewSwitchNode(node.Identity{Device: "hall", Node: "lamp"}, "Lamp", smarthome.DefaultSwitchConfig())
	if err != nil {
		t.Fatalf("NewSwitchNode() error = %v", err)
	}
	if err := dev.AddNode(lamp); err != nil {
		t.Fatalf("AddNode() error = %v", err)
	}

	rt := device.NewRuntime(dev, tr)
	events := make(chan device.RoutedEvent, 1)
	rt.OnEvent(func(_ context.Context, ev device.RoutedEvent) { events <- ev })

	if err := rt.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	seen := bus.topics()
	if len(seen) != 3 || seen[0] != "homie/5/hall/$state=init" || seen[2] != "homie/5/hall/$state=ready" {
		t.Fatalf("start published %v", seen)
	}

	bus.deliver(t, "homie/5/hall/+/+/set", "homie/5/hall/lamp/state/set", "on")

	select {
	case ev := <-events:
		if ev.Event != (smarthome.SwitchStateChanged{On: true}) {
			t.Errorf("event = %#v, want SwitchStateChanged{On: true}", ev.Event)
		}
	default:
		t.Fatal("no event routed")
	}

	msg, err := lamp.State(true)
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if err := rt.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if got := bus.last(t); got != (published{"homie/5/hall/lamp/state", "on", true}) {
		t.Errorf("published %+v", got)
	}
}
