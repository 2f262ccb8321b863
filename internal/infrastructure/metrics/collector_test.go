package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector("test")

	c.EventRouted("switch", "state", "SwitchStateChanged")
	c.EventRouted("switch", "state", "SwitchStateChanged")
	c.SetIgnored("brightness")
	c.MessagePublished("dimmer", "brightness", true)
	c.MessagePublished("dimmer", "brightness", false)
	c.MessagePublished("dimmer", "brightness", false)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"events routed", testutil.ToFloat64(c.eventsRouted.WithLabelValues("switch", "state", "SwitchStateChanged")), 2},
		{"sets ignored", testutil.ToFloat64(c.setsIgnored.WithLabelValues("brightness")), 1},
		{"targets published", testutil.ToFloat64(c.messagesPublished.WithLabelValues("dimmer", "brightness", "true")), 1},
		{"values published", testutil.ToFloat64(c.messagesPublished.WithLabelValues("dimmer", "brightness", "false")), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestCollector_ObserveRequest(t *testing.T) {
	c := NewCollector("test")

	c.ObserveRequest(http.MethodGet, "/api/v1/nodes", http.StatusOK, 20*time.Millisecond)
	c.ObserveRequest(http.MethodPost, "/api/v1/nodes/{node}/properties/{property}/set", http.StatusAccepted, time.Millisecond)

	if n := testutil.CollectAndCount(c.requestDuration); n != 2 {
		t.Errorf("request series = %d, want 2", n)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("1.2.3")

	nodes := 3
	ready := true
	c.TrackDevice(func() int { return nodes }, func() bool { return ready })
	c.EventRouted("shutter", "action", "ShutterActionRequested")

	body := scrape(t, c)
	for _, want := range []string{
		`homecontrol_info{version="1.2.3"} 1`,
		"homecontrol_device_nodes 3",
		"homecontrol_device_ready 1",
		`homecontrol_device_events_routed_total{event="ShutterActionRequested",kind="shutter",property="action"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %q", want)
		}
	}

	nodes = 4
	ready = false
	body = scrape(t, c)
	if !strings.Contains(body, "homecontrol_device_nodes 4") || !strings.Contains(body, "homecontrol_device_ready 0") {
		t.Error("device gauges not read at scrape time")
	}
}

func scrape(t *testing.T, c *Collector) string {
	t.Helper()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape status = %d", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("reading scrape: %v", err)
	}
	return string(body)
}
