package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/nerrad567/homecontrol-core/internal/audit"
)

// drain runs the audit writer until the returned stop func is called;
// stop returns once every queued entry is written.
func (e *testEnv) drain() (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.srv.drainAuditLog(ctx)
		close(done)
	}()
	return func() {
		cancel()
		<-done
	}
}

func TestAuditTrail(t *testing.T) {
	env := newTestEnv(t)
	stop := env.drain()

	steps := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/api/v1/nodes/lamp/properties/state/set", `{"payload":"on"}`, http.StatusAccepted},
		{http.MethodPost, "/api/v1/nodes/lamp/properties/state/set", `{"payload":"maybe"}`, http.StatusUnprocessableEntity},
		{http.MethodPost, "/api/v1/nodes", `{"id":"fan","kind":"switch","name":"Fan"}`, http.StatusCreated},
		{http.MethodPut, "/api/v1/alerts/overheat", `{"message":"too hot"}`, http.StatusOK},
		{http.MethodDelete, "/api/v1/alerts/overheat", "", http.StatusNoContent},
		{http.MethodDelete, "/api/v1/nodes/fan", "", http.StatusNoContent},
	}
	for _, st := range steps {
		if w := env.do(st.method, st.path, env.operator, st.body); w.Code != st.want {
			t.Fatalf("%s %s status = %d, want %d: %s", st.method, st.path, w.Code, st.want, w.Body.String())
		}
	}
	stop()

	res, err := env.audit.List(context.Background(), testDeviceID, audit.Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	// Rejected requests leave no trace; newest first.
	want := []string{
		audit.ActionDeprovision,
		audit.ActionAlertClear,
		audit.ActionAlertRaise,
		audit.ActionProvision,
		audit.ActionSet,
	}
	if len(res.Entries) != len(want) {
		t.Fatalf("entries = %+v, want %d", res.Entries, len(want))
	}
	for i, action := range want {
		e := res.Entries[i]
		if e.Action != action {
			t.Errorf("entries[%d].Action = %q, want %q", i, e.Action, action)
		}
		if e.Subject != "tester-operator" {
			t.Errorf("entries[%d].Subject = %q", i, e.Subject)
		}
	}
	if set := res.Entries[4]; set.NodeID != "lamp" || set.Details["payload"] != "on" {
		t.Errorf("set entry = %+v", set)
	}
}

func TestListAuditLog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, e := range []audit.Entry{
		{Action: audit.ActionSet, DeviceID: testDeviceID, NodeID: "lamp"},
		{Action: audit.ActionSet, DeviceID: testDeviceID, NodeID: "lamp"},
		{Action: audit.ActionProvision, DeviceID: testDeviceID, NodeID: "fan"},
	} {
		if err := env.audit.Record(ctx, &e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	tests := []struct {
		name      string
		query     string
		token     string
		wantCode  int
		wantTotal float64
		wantLen   int
	}{
		{"all", "", env.operator, http.StatusOK, 3, 3},
		{"by action", "?action=set", env.operator, http.StatusOK, 2, 2},
		{"by node", "?node=fan", env.operator, http.StatusOK, 1, 1},
		{"paged", "?limit=1&offset=1", env.operator, http.StatusOK, 3, 1},
		{"bad limit", "?limit=lots", env.operator, http.StatusBadRequest, 0, 0},
		{"negative offset", "?offset=-1", env.operator, http.StatusBadRequest, 0, 0},
		{"viewer forbidden", "", env.viewer, http.StatusForbidden, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodGet, "/api/v1/audit"+tt.query, tt.token, "")
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			resp := decode(t, w)
			entries, _ := resp["entries"].([]any) //nolint:errcheck // length checked
			if resp["total"] != tt.wantTotal || len(entries) != tt.wantLen {
				t.Errorf("total = %v, entries = %d, want %v/%d", resp["total"], len(entries), tt.wantTotal, tt.wantLen)
			}
		})
	}
}

func TestAuditLog_FullChannelDrops(t *testing.T) {
	env := newTestEnv(t)

	for range auditChanSize + 5 {
		if w := env.do(http.MethodPut, "/api/v1/alerts/a", env.operator, `{"message":"x"}`); w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
	}
	if got := len(env.srv.auditCh); got != auditChanSize {
		t.Errorf("queued entries = %d, want %d", got, auditChanSize)
	}
}
