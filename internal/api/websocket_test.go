package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
	"github.com/nerrad567/homecontrol-core/internal/smarthome"
)

func dialWS(t *testing.T, ts *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	if token != "" {
		url += "?token=" + token
	}
	return websocket.DefaultDialer.Dial(url, nil)
}

func readWS(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	//nolint:errcheck // Test deadline
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	return msg
}

// waitForClients polls until the hub has n clients.
func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want %d", h.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocket_Auth(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.router)
	defer ts.Close()

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"invalid token", "not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, resp, err := dialWS(t, ts, tt.token)
			if err == nil {
				conn.Close()
				t.Fatal("Dial() succeeded without a valid token")
			}
			if resp == nil || resp.StatusCode != tt.want {
				t.Errorf("handshake response = %v, want status %d", resp, tt.want)
			}
		})
	}
}

func TestWebSocket_StreamsRuntimeTraffic(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go env.srv.Hub().Run(ctx)

	ts := httptest.NewServer(env.router)
	defer ts.Close()

	conn, _, err := dialWS(t, ts, env.viewer)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	waitForClients(t, env.srv.Hub(), 1)

	// A set command produces node.event.
	w := env.do(http.MethodPost, "/api/v1/nodes/lamp/properties/state/set", env.operator, `{"payload":"on"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("set status = %d", w.Code)
	}

	msg := readWS(t, conn)
	if msg.Type != WSTypeEvent || msg.EventType != ChannelNodeEvent {
		t.Fatalf("message = %+v, want node.event", msg)
	}
	payload, _ := msg.Payload.(map[string]any) //nolint:errcheck // checked via fields
	if payload["type"] != "SwitchStateChanged" || payload["property"] != smarthome.SwitchStateProperty {
		t.Errorf("payload = %v", payload)
	}

	// Confirming the value produces property.published.
	lamp, ok := env.rt.Device().Node("lamp")
	if !ok {
		t.Fatal("lamp missing")
	}
	out, err := lamp.PublishValue(smarthome.SwitchStateProperty, schema.BoolValue(true))
	if err != nil {
		t.Fatalf("PublishValue() error = %v", err)
	}
	if err := env.rt.Publish(context.Background(), out); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	msg = readWS(t, conn)
	if msg.EventType != ChannelPropertyPublished {
		t.Fatalf("message = %+v, want property.published", msg)
	}
	payload, _ = msg.Payload.(map[string]any) //nolint:errcheck // checked via fields
	if payload["payload"] != "on" || payload["target"] != false {
		t.Errorf("payload = %v", payload)
	}
}

func TestWebSocket_Subscription(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.router)
	defer ts.Close()

	conn, _, err := dialWS(t, ts, env.viewer)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	waitForClients(t, env.srv.Hub(), 1)

	send := func(msg WSMessage) {
		t.Helper()
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatalf("WriteJSON() error = %v", err)
		}
	}

	send(WSMessage{Type: WSTypePing, ID: "p1"})
	if msg := readWS(t, conn); msg.Type != WSTypePong || msg.ID != "p1" {
		t.Errorf("ping reply = %+v", msg)
	}

	send(WSMessage{Type: WSTypeUnsubscribe, ID: "u1", Payload: WSSubscribePayload{Channels: []string{ChannelNodeEvent}}})
	if msg := readWS(t, conn); msg.Type != WSTypeResponse || msg.ID != "u1" {
		t.Errorf("unsubscribe reply = %+v", msg)
	}

	send(WSMessage{Type: WSTypeSubscribe, ID: "s1", Payload: WSSubscribePayload{Channels: []string{ChannelSetIgnored}}})
	if msg := readWS(t, conn); msg.Type != WSTypeResponse || msg.ID != "s1" {
		t.Errorf("subscribe reply = %+v", msg)
	}

	send(WSMessage{Type: WSTypeSubscribe, ID: "s2", Payload: WSSubscribePayload{Channels: []string{"device.state"}}})
	if msg := readWS(t, conn); msg.Type != WSTypeError || msg.ID != "s2" {
		t.Errorf("unknown channel reply = %+v", msg)
	}

	// An accepted set is no longer relayed; an ignored one is.
	env.rt.Inject(context.Background(), node.IncomingPropertySet{
		Address: node.Identity{Device: testDeviceID, Node: "lamp"}.Address(smarthome.SwitchStateProperty),
		Payload: "on",
	})
	env.rt.Inject(context.Background(), node.IncomingPropertySet{
		Address: node.Identity{Device: testDeviceID, Node: "lamp"}.Address(smarthome.SwitchStateProperty),
		Payload: "maybe",
	})

	if msg := readWS(t, conn); msg.EventType != ChannelSetIgnored {
		t.Errorf("message = %+v, want set.ignored", msg)
	}

	send(WSMessage{Type: "shout", ID: "x1"})
	if msg := readWS(t, conn); msg.Type != WSTypeError || msg.ID != "x1" {
		t.Errorf("unknown type reply = %+v", msg)
	}
}

func TestHub_BroadcastSkipsUnsubscribed(t *testing.T) {
	env := newTestEnv(t)
	hub := env.srv.Hub()

	subscribed := &WSClient{hub: hub, send: make(chan []byte, 1), subscriptions: map[string]struct{}{ChannelNodeEvent: {}}}
	other := &WSClient{hub: hub, send: make(chan []byte, 1), subscriptions: map[string]struct{}{}}
	hub.Register(subscribed)
	hub.Register(other)

	hub.Broadcast(ChannelNodeEvent, map[string]string{"k": "v"})

	if len(subscribed.send) != 1 {
		t.Error("subscribed client got no message")
	}
	if len(other.send) != 0 {
		t.Error("unsubscribed client got a message")
	}

	// A full buffer drops instead of blocking.
	hub.Broadcast(ChannelNodeEvent, map[string]string{"k": "v2"})

	hub.Unregister(subscribed)
	hub.Unregister(subscribed)
	hub.Broadcast(ChannelNodeEvent, nil)
	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}
}
