package audit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/homecontrol-core/internal/infrastructure/database"
	"github.com/nerrad567/homecontrol-core/migrations"
)

// setupTestRepo opens a migrated SQLite database in a temp dir.
func setupTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "audit.db"), WALMode: true, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		db.Close() //nolint:errcheck // Test cleanup
	})
	if _, err := db.Migrate(context.Background(), migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	repo := NewSQLiteRepository(db.DB)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	var tick int
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return repo
}

// ─── Record ────────────────────────────────────────────────────────

func TestRecord(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	e := &Entry{
		Action:   ActionSet,
		DeviceID: "hall",
		NodeID:   "lamp",
		Subject:  "panel",
		Details:  map[string]any{"property": "state", "payload": "on"},
	}
	if err := repo.Record(ctx, e); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Errorf("Record() did not fill id/created_at: %+v", e)
	}

	res, err := repo.List(ctx, "hall", Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Total != 1 || len(res.Entries) != 1 {
		t.Fatalf("List() = %+v, want one entry", res)
	}
	got := res.Entries[0]
	if got.ID != e.ID || got.Subject != "panel" || got.NodeID != "lamp" {
		t.Errorf("entry = %+v", got)
	}
	if got.Details["payload"] != "on" {
		t.Errorf("Details = %v", got.Details)
	}
	if !got.CreatedAt.Equal(e.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, e.CreatedAt)
	}
}

func TestRecord_Invalid(t *testing.T) {
	repo := setupTestRepo(t)

	tests := []struct {
		name  string
		entry Entry
	}{
		{"missing action", Entry{DeviceID: "hall"}},
		{"missing device", Entry{Action: ActionSet}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Record(context.Background(), &tt.entry)
			if !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("Record() error = %v, want ErrInvalidEntry", err)
			}
		})
	}
}

// ─── List ──────────────────────────────────────────────────────────

func TestList_Filters(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	seed := []Entry{
		{Action: ActionProvision, DeviceID: "hall", NodeID: "lamp"},
		{Action: ActionSet, DeviceID: "hall", NodeID: "lamp"},
		{Action: ActionSet, DeviceID: "hall", NodeID: "blind"},
		{Action: ActionAlertRaise, DeviceID: "hall"},
		{Action: ActionSet, DeviceID: "porch", NodeID: "lamp"},
	}
	for i := range seed {
		if err := repo.Record(ctx, &seed[i]); err != nil {
			t.Fatalf("Record(%d) error = %v", i, err)
		}
	}

	tests := []struct {
		name      string
		filter    Filter
		wantTotal int
		wantFirst string // action of the newest entry
	}{
		{"all of device", Filter{}, 4, ActionAlertRaise},
		{"by action", Filter{Action: ActionSet}, 2, ActionSet},
		{"by node", Filter{NodeID: "lamp"}, 2, ActionSet},
		{"action and node", Filter{Action: ActionProvision, NodeID: "lamp"}, 1, ActionProvision},
		{"no match", Filter{Action: ActionDeprovision}, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := repo.List(ctx, "hall", tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if res.Total != tt.wantTotal || len(res.Entries) != tt.wantTotal {
				t.Fatalf("List() total = %d, entries = %d, want %d", res.Total, len(res.Entries), tt.wantTotal)
			}
			if tt.wantFirst != "" && res.Entries[0].Action != tt.wantFirst {
				t.Errorf("newest action = %q, want %q", res.Entries[0].Action, tt.wantFirst)
			}
			for _, e := range res.Entries {
				if e.DeviceID != "hall" {
					t.Errorf("entry of device %q listed", e.DeviceID)
				}
			}
		})
	}
}

func TestList_Pagination(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	for range 5 {
		if err := repo.Record(ctx, &Entry{Action: ActionSet, DeviceID: "hall"}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	tests := []struct {
		name       string
		filter     Filter
		wantLen    int
		wantLimit  int
		wantOffset int
	}{
		{"default limit", Filter{}, 5, DefaultLimit, 0},
		{"page", Filter{Limit: 2, Offset: 1}, 2, 2, 1},
		{"past the end", Filter{Limit: 2, Offset: 10}, 0, 2, 10},
		{"limit capped", Filter{Limit: 1000}, 5, MaxLimit, 0},
		{"negative offset", Filter{Offset: -3}, 5, DefaultLimit, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := repo.List(ctx, "hall", tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(res.Entries) != tt.wantLen || res.Total != 5 {
				t.Errorf("len = %d, total = %d, want %d/5", len(res.Entries), res.Total, tt.wantLen)
			}
			if res.Limit != tt.wantLimit || res.Offset != tt.wantOffset {
				t.Errorf("limit/offset = %d/%d, want %d/%d", res.Limit, res.Offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}

	// Newest first.
	res, _ := repo.List(ctx, "hall", Filter{}) //nolint:errcheck // checked above
	for i := 1; i < len(res.Entries); i++ {
		if res.Entries[i].CreatedAt.After(res.Entries[i-1].CreatedAt) {
			t.Fatalf("entries not ordered newest first: %v after %v", res.Entries[i].CreatedAt, res.Entries[i-1].CreatedAt)
		}
	}
}
