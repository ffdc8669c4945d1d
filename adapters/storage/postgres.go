package storage

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/lib/pq"

	"effort-estimate/internal/errors"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id             TEXT PRIMARY KEY,
	requirement_id TEXT NOT NULL DEFAULT '',
	title          TEXT NOT NULL DEFAULT '',
	payload        JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS snapshots_requirement_idx ON snapshots (requirement_id, created_at DESC);
`

// PostgresStore persists snapshots in PostgreSQL. The full snapshot is kept
// as a JSONB payload; requirement_id and created_at are lifted into columns
// for history queries.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and ensures the schema exists
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(errors.TypeStorage, "failed to open postgres connection", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.TypeStorage, "failed to reach postgres", err)
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.TypeStorage, "failed to ensure snapshot schema", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreWithDB wraps an existing connection, used in tests
func NewPostgresStoreWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	stamp(snap)

	payload, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(errors.TypeStorage, "failed to marshal snapshot", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, requirement_id, title, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, title = EXCLUDED.title`,
		snap.ID, snap.RequirementID, snap.Title, payload, snap.CreatedAt)
	if err != nil {
		return errors.Wrap(errors.TypeStorage, "failed to insert snapshot", err)
	}
	return nil
}

func (s *PostgresStore) GetSnapshot(ctx context.Context, id string) (*Snapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE id = $1`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("snapshot", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.TypeStorage, "failed to query snapshot", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, errors.Wrap(errors.TypeStorage, "failed to unmarshal snapshot", err)
	}
	return &snap, nil
}

func (s *PostgresStore) ListHistory(ctx context.Context, requirementID string) ([]*Snapshot, error) {
	query := `SELECT payload FROM snapshots ORDER BY created_at DESC`
	args := []interface{}{}
	if requirementID != "" {
		query = `SELECT payload FROM snapshots WHERE requirement_id = $1 ORDER BY created_at DESC`
		args = append(args, requirementID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.TypeStorage, "failed to query history", err)
	}
	defer rows.Close()

	var snaps []*Snapshot
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.Wrap(errors.TypeStorage, "failed to scan snapshot", err)
		}
		var snap Snapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			return nil, errors.Wrap(errors.TypeStorage, "failed to unmarshal snapshot", err)
		}
		snaps = append(snaps, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.TypeStorage, "failed to iterate history", err)
	}
	return snaps, nil
}

func (s *PostgresStore) DeleteSnapshot(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(errors.TypeStorage, "failed to delete snapshot", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("snapshot", id)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

var _ Store = (*PostgresStore)(nil)
