//go:build integration

package mqtt

import (
	"sync"
	"testing"
	"time"
)

// Integration tests against a live broker.
// These tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -count=1 -v ./internal/infrastructure/mqtt/...

func connectIntegration(t *testing.T, clientID string, will *Will) *Client {
	t.Helper()

	cfg := testConfig()
	cfg.Broker.ClientID = clientID

	client, err := Connect(cfg, will)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestIntegration_SubscriptionTracking(t *testing.T) {
	client := connectIntegration(t, "homecontrol-int-sub-track", nil)
	topics := Topics{Domain: "homecontrol-int"}

	handler := func(string, []byte) error { return nil }
	subs := []string{topics.DeviceSets("a"), topics.DeviceSets("b"), topics.AllStates()}

	for _, topic := range subs {
		if err := client.Subscribe(topic, 1, handler); err != nil {
			t.Fatalf("Subscribe(%s) error = %v", topic, err)
		}
	}
	if client.SubscriptionCount() != len(subs) {
		t.Errorf("SubscriptionCount() = %d, want %d", client.SubscriptionCount(), len(subs))
	}

	if err := client.Unsubscribe(subs[0]); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	if client.HasSubscription(subs[0]) {
		t.Error("HasSubscription() = true after Unsubscribe()")
	}
}

func TestIntegration_SetRoundtrip(t *testing.T) {
	topics := Topics{Domain: "homecontrol-int"}
	device := connectIntegration(t, "homecontrol-int-device", nil)
	controller := connectIntegration(t, "homecontrol-int-controller", nil)

	type set struct{ node, prop, payload string }
	received := make(chan set, 1)
	var once sync.Once

	err := device.Subscribe(topics.DeviceSets("hall"), 1, func(topic string, payload []byte) error {
		_, node, prop, ok := topics.ParseSet(topic)
		if ok {
			once.Do(func() { received <- set{node, prop, string(payload)} })
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if err := controller.Publish(topics.Set("hall", "lamp", "state"), []byte("true"), 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-received:
		if got != (set{"lamp", "state", "true"}) {
			t.Errorf("received %+v", got)
		}
	case <-time.After(5 * time.Second):
		t.Error("Timeout waiting for set message")
	}
}

func TestIntegration_RetainedClear(t *testing.T) {
	topics := Topics{Domain: "homecontrol-int"}
	client := connectIntegration(t, "homecontrol-int-retained", nil)
	alert := topics.Alert("hall", "hc-test")

	if err := client.PublishRetained(alert, []byte("test alert")); err != nil {
		t.Fatalf("PublishRetained() error = %v", err)
	}
	if err := client.PublishRetained(alert, nil); err != nil {
		t.Fatalf("PublishRetained(clear) error = %v", err)
	}

	// A cleared retained topic delivers nothing to a new subscriber.
	got := make(chan []byte, 1)
	err := client.Subscribe(alert, 1, func(_ string, p []byte) error {
		got <- p
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	select {
	case p := <-got:
		t.Errorf("received retained payload %q after clear", p)
	case <-time.After(500 * time.Millisecond):
	}
}
