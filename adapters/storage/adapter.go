// Package storage persists finalized estimation snapshots so estimates can
// be revisited and compared over time. Backends: memory, file, postgres.
package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"effort-estimate/core/types"
	"effort-estimate/internal/config"
	"effort-estimate/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendFile     Backend = "file"
	BackendPostgres Backend = "postgres"
)

// Snapshot is a persisted estimation outcome
type Snapshot struct {
	// ID is the unique snapshot identifier
	ID string `json:"id"`

	// RequirementID groups snapshots of the same requirement
	RequirementID string `json:"requirement_id"`

	// Title is a short human label for the requirement
	Title string `json:"title"`

	// Input is the selection the estimate was computed from
	Input types.EstimationInput `json:"input"`

	// Result is the computed estimate
	Result types.EstimationResult `json:"result"`

	// DriverSource and RiskSource record which precedence rung supplied
	// each section
	DriverSource types.ValueSource `json:"driver_source,omitempty"`
	RiskSource   types.ValueSource `json:"risk_source,omitempty"`

	// DroppedActivityCodes and DroppedRiskCodes record codes discarded
	// during reconciliation
	DroppedActivityCodes []string `json:"dropped_activity_codes,omitempty"`
	DroppedRiskCodes     []string `json:"dropped_risk_codes,omitempty"`

	// CreatedAt timestamp
	CreatedAt time.Time `json:"created_at"`

	// Metadata is free-form caller context
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Comparison is the delta between two snapshots of a requirement
type Comparison struct {
	OldID        string          `json:"old_id"`
	NewID        string          `json:"new_id"`
	OldTotalDays decimal.Decimal `json:"old_total_days"`
	NewTotalDays decimal.Decimal `json:"new_total_days"`
	DeltaDays    decimal.Decimal `json:"delta_days"`
	ComparedAt   time.Time       `json:"compared_at"`
}

// Store is the snapshot storage interface
type Store interface {
	// SaveSnapshot stores a snapshot, assigning ID and CreatedAt when unset
	SaveSnapshot(ctx context.Context, snap *Snapshot) error

	// GetSnapshot retrieves a snapshot by ID
	GetSnapshot(ctx context.Context, id string) (*Snapshot, error)

	// ListHistory lists snapshots for a requirement, newest first. An empty
	// requirementID lists everything.
	ListHistory(ctx context.Context, requirementID string) ([]*Snapshot, error)

	// DeleteSnapshot removes a snapshot
	DeleteSnapshot(ctx context.Context, id string) error

	// Close closes the store
	Close() error
}

// Compare computes the total-days delta between two stored snapshots
func Compare(ctx context.Context, store Store, oldID, newID string) (*Comparison, error) {
	oldSnap, err := store.GetSnapshot(ctx, oldID)
	if err != nil {
		return nil, err
	}
	newSnap, err := store.GetSnapshot(ctx, newID)
	if err != nil {
		return nil, err
	}

	return &Comparison{
		OldID:        oldID,
		NewID:        newID,
		OldTotalDays: oldSnap.Result.TotalDays,
		NewTotalDays: newSnap.Result.TotalDays,
		DeltaDays:    newSnap.Result.TotalDays.Sub(oldSnap.Result.TotalDays),
		ComparedAt:   time.Now(),
	}, nil
}

func stamp(snap *Snapshot) {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}
}

func sortNewestFirst(snaps []*Snapshot) {
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})
}

// MemoryStore is an in-memory backend, used in tests and single-shot CLI runs
type MemoryStore struct {
	snapshots map[string]*Snapshot
	mu        sync.RWMutex
}

// NewMemoryStore creates a memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]*Snapshot)}
}

func (s *MemoryStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(snap)
	s.snapshots[snap.ID] = snap
	return nil
}

func (s *MemoryStore) GetSnapshot(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[id]
	if !ok {
		return nil, errors.NotFound("snapshot", id)
	}
	return snap, nil
}

func (s *MemoryStore) ListHistory(ctx context.Context, requirementID string) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snaps []*Snapshot
	for _, snap := range s.snapshots {
		if requirementID == "" || snap.RequirementID == requirementID {
			snaps = append(snaps, snap)
		}
	}
	sortNewestFirst(snaps)
	return snaps, nil
}

func (s *MemoryStore) DeleteSnapshot(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// FileStore persists snapshots as JSON files, one directory per requirement
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStore creates a file store rooted at basePath
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.Wrap(errors.TypeStorage, "failed to create storage directory", err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (s *FileStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(snap)

	dir := filepath.Join(s.basePath, s.requirementDir(snap.RequirementID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.TypeStorage, "failed to create requirement directory", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(errors.TypeStorage, "failed to marshal snapshot", err)
	}
	if err := os.WriteFile(filepath.Join(dir, snap.ID+".json"), data, 0644); err != nil {
		return errors.Wrap(errors.TypeStorage, "failed to write snapshot", err)
	}
	return nil
}

func (s *FileStore) requirementDir(requirementID string) string {
	if requirementID == "" {
		return "_unassigned"
	}
	return requirementID
}

func (s *FileStore) GetSnapshot(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, errors.Wrap(errors.TypeStorage, "failed to read storage", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.basePath, entry.Name(), id+".json"))
		if err != nil {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, errors.Wrap(errors.TypeStorage, "failed to unmarshal snapshot", err)
		}
		return &snap, nil
	}

	return nil, errors.NotFound("snapshot", id)
}

func (s *FileStore) ListHistory(ctx context.Context, requirementID string) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snaps []*Snapshot
	err := filepath.Walk(s.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil
		}
		if requirementID != "" && snap.RequirementID != requirementID {
			return nil
		}
		snaps = append(snaps, &snap)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.TypeStorage, "failed to walk storage", err)
	}

	sortNewestFirst(snaps)
	return snaps, nil
}

func (s *FileStore) DeleteSnapshot(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return errors.Wrap(errors.TypeStorage, "failed to read storage", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(s.basePath, entry.Name(), id+".json")
		if _, err := os.Stat(path); err == nil {
			return os.Remove(path)
		}
	}

	return errors.NotFound("snapshot", id)
}

func (s *FileStore) Close() error {
	return nil
}

// Open creates a store from configuration
func Open(cfg config.StorageConfig) (Store, error) {
	switch Backend(cfg.Backend) {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		path := cfg.Path
		if path == "" {
			path = ".effort-estimate"
		}
		return NewFileStore(path)
	case BackendPostgres:
		return NewPostgresStore(cfg.DSN)
	default:
		return nil, errors.New(errors.TypeConfig, "unsupported storage backend: "+cfg.Backend)
	}
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
)
