package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"effort-estimate/internal/errors"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresStoreWithDB(db), mock
}

func TestPostgresSaveSnapshot(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO snapshots").
		WithArgs(sqlmock.AnyArg(), "r1", "Orders API", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	snap := sampleSnapshot("r1", "4")
	if err := store.SaveSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if snap.ID == "" {
		t.Error("expected generated id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresGetSnapshot(t *testing.T) {
	store, mock := newMockStore(t)

	stored := sampleSnapshot("r1", "4.4")
	stored.ID = "snap-1"
	stored.CreatedAt = time.Now()
	payload, _ := json.Marshal(stored)

	mock.ExpectQuery("SELECT payload FROM snapshots WHERE id").
		WithArgs("snap-1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

	got, err := store.GetSnapshot(context.Background(), "snap-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.RequirementID != "r1" || got.Result.TotalDays.String() != "4.4" {
		t.Errorf("snapshot lost in round trip: %+v", got)
	}
}

func TestPostgresGetMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT payload FROM snapshots WHERE id").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err := store.GetSnapshot(context.Background(), "nope")
	if !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestPostgresListHistory(t *testing.T) {
	store, mock := newMockStore(t)

	newer := sampleSnapshot("r1", "6")
	newer.ID = "snap-2"
	older := sampleSnapshot("r1", "4")
	older.ID = "snap-1"
	newerPayload, _ := json.Marshal(newer)
	olderPayload, _ := json.Marshal(older)

	mock.ExpectQuery("SELECT payload FROM snapshots WHERE requirement_id").
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).
			AddRow(newerPayload).
			AddRow(olderPayload))

	snaps, err := store.ListHistory(context.Background(), "r1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(snaps) != 2 || snaps[0].ID != "snap-2" {
		t.Errorf("unexpected history: %+v", snaps)
	}
}

func TestPostgresDeleteMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM snapshots").
		WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteSnapshot(context.Background(), "nope")
	if !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
