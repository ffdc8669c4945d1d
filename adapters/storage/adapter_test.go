package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"effort-estimate/core/types"
	"effort-estimate/internal/config"
	"effort-estimate/internal/errors"
)

func configFor(backend string) config.StorageConfig {
	return config.StorageConfig{Backend: backend}
}

func sampleSnapshot(requirementID string, totalDays string) *Snapshot {
	return &Snapshot{
		RequirementID: requirementID,
		Title:         "Orders API",
		Input: types.EstimationInput{
			Activities: []types.SelectedActivity{
				{Code: "API-CRUD", BaseDays: decimal.RequireFromString("4")},
			},
		},
		Result: types.EstimationResult{
			BaseDays:  decimal.RequireFromString(totalDays),
			TotalDays: decimal.RequireFromString(totalDays),
		},
		DriverSource: types.SourceManual,
	}
}

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	file, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   file,
	}
}

func TestSaveAssignsIdentity(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			snap := sampleSnapshot("r1", "4")
			if err := store.SaveSnapshot(context.Background(), snap); err != nil {
				t.Fatalf("save failed: %v", err)
			}
			if snap.ID == "" {
				t.Error("expected generated id")
			}
			if snap.CreatedAt.IsZero() {
				t.Error("expected created timestamp")
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			snap := sampleSnapshot("r1", "4.4")
			if err := store.SaveSnapshot(ctx, snap); err != nil {
				t.Fatal(err)
			}

			got, err := store.GetSnapshot(ctx, snap.ID)
			if err != nil {
				t.Fatalf("get failed: %v", err)
			}
			if got.Title != "Orders API" {
				t.Errorf("title lost: %q", got.Title)
			}
			if !got.Result.TotalDays.Equal(decimal.RequireFromString("4.4")) {
				t.Errorf("total days lost: %s", got.Result.TotalDays)
			}
			if got.DriverSource != types.SourceManual {
				t.Errorf("source tag lost: %s", got.DriverSource)
			}
		})
	}
}

func TestGetMissingSnapshot(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.GetSnapshot(context.Background(), "nope")
			if !errors.IsType(err, errors.TypeNotFound) {
				t.Errorf("expected not found, got %v", err)
			}
		})
	}
}

func TestListHistoryFiltersAndOrders(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			older := sampleSnapshot("r1", "4")
			older.CreatedAt = time.Now().Add(-time.Hour)
			newer := sampleSnapshot("r1", "6")
			other := sampleSnapshot("r2", "2")

			for _, snap := range []*Snapshot{older, newer, other} {
				if err := store.SaveSnapshot(ctx, snap); err != nil {
					t.Fatal(err)
				}
			}

			history, err := store.ListHistory(ctx, "r1")
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(history) != 2 {
				t.Fatalf("expected 2 snapshots for r1, got %d", len(history))
			}
			if history[0].ID != newer.ID {
				t.Error("expected newest first")
			}

			all, err := store.ListHistory(ctx, "")
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 3 {
				t.Errorf("expected all 3 snapshots, got %d", len(all))
			}
		})
	}
}

func TestDeleteSnapshot(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	snap := sampleSnapshot("r1", "4")
	if err := store.SaveSnapshot(ctx, snap); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteSnapshot(ctx, snap.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.GetSnapshot(ctx, snap.ID); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if err := store.DeleteSnapshot(ctx, snap.ID); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected not found for double delete, got %v", err)
	}
}

func TestCompareSnapshots(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	older := sampleSnapshot("r1", "10")
	newer := sampleSnapshot("r1", "12.5")
	for _, snap := range []*Snapshot{older, newer} {
		if err := store.SaveSnapshot(ctx, snap); err != nil {
			t.Fatal(err)
		}
	}

	cmp, err := Compare(ctx, store, older.ID, newer.ID)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if cmp.DeltaDays.String() != "2.5" {
		t.Errorf("expected delta 2.5, got %s", cmp.DeltaDays)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(configFor("sqlite"))
	if !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestOpenMemoryBackend(t *testing.T) {
	store, err := Open(configFor("memory"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("expected memory store, got %T", store)
	}
}
