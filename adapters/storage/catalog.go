package storage

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/shopspring/decimal"

	"effort-estimate/core/catalog"
	"effort-estimate/core/types"
	"effort-estimate/internal/errors"
)

// PostgresCatalogSource serves catalogs from PostgreSQL. Activities, drivers
// and risks use typed columns; presets keep their defaults as a JSONB
// payload since their shape is nested.
type PostgresCatalogSource struct {
	db *sql.DB
}

// NewPostgresCatalogSource wraps an open connection
func NewPostgresCatalogSource(db *sql.DB) *PostgresCatalogSource {
	return &PostgresCatalogSource{db: db}
}

// CatalogSource exposes the store's connection as a catalog source
func (s *PostgresStore) CatalogSource() *PostgresCatalogSource {
	return NewPostgresCatalogSource(s.db)
}

func (s *PostgresCatalogSource) FetchActivities(ctx context.Context) ([]types.Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, name, base_days, activity_group, tech_category
		 FROM catalog_activities ORDER BY position`)
	if err != nil {
		return nil, errors.Wrap(errors.TypeStorage, "failed to query activities", err)
	}
	defer rows.Close()

	var activities []types.Activity
	for rows.Next() {
		var a types.Activity
		var baseDays decimal.Decimal
		var category string
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &baseDays, &a.Group, &category); err != nil {
			return nil, errors.Wrap(errors.TypeStorage, "failed to scan activity", err)
		}
		a.BaseDays = baseDays
		a.TechCategory = types.TechCategory(category)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (s *PostgresCatalogSource) FetchDrivers(ctx context.Context) ([]types.Driver, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.id, d.code, d.name, o.value, o.label, o.multiplier
		 FROM catalog_drivers d
		 JOIN catalog_driver_options o ON o.driver_id = d.id
		 ORDER BY d.position, o.position`)
	if err != nil {
		return nil, errors.Wrap(errors.TypeStorage, "failed to query drivers", err)
	}
	defer rows.Close()

	var drivers []types.Driver
	index := make(map[string]int)
	for rows.Next() {
		var id, code, name string
		var opt types.DriverOption
		if err := rows.Scan(&id, &code, &name, &opt.Value, &opt.Label, &opt.Multiplier); err != nil {
			return nil, errors.Wrap(errors.TypeStorage, "failed to scan driver option", err)
		}
		i, ok := index[id]
		if !ok {
			drivers = append(drivers, types.Driver{ID: id, Code: code, Name: name})
			i = len(drivers) - 1
			index[id] = i
		}
		drivers[i].Options = append(drivers[i].Options, opt)
	}
	return drivers, rows.Err()
}

func (s *PostgresCatalogSource) FetchRisks(ctx context.Context) ([]types.Risk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, name, weight FROM catalog_risks ORDER BY position`)
	if err != nil {
		return nil, errors.Wrap(errors.TypeStorage, "failed to query risks", err)
	}
	defer rows.Close()

	var risks []types.Risk
	for rows.Next() {
		var r types.Risk
		if err := rows.Scan(&r.ID, &r.Code, &r.Name, &r.Weight); err != nil {
			return nil, errors.Wrap(errors.TypeStorage, "failed to scan risk", err)
		}
		risks = append(risks, r)
	}
	return risks, rows.Err()
}

func (s *PostgresCatalogSource) FetchPresets(ctx context.Context) ([]types.TechnologyPreset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM catalog_presets ORDER BY position`)
	if err != nil {
		return nil, errors.Wrap(errors.TypeStorage, "failed to query presets", err)
	}
	defer rows.Close()

	var presets []types.TechnologyPreset
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.Wrap(errors.TypeStorage, "failed to scan preset", err)
		}
		var p types.TechnologyPreset
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, errors.Wrap(errors.TypeStorage, "failed to unmarshal preset", err)
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

var _ catalog.Source = (*PostgresCatalogSource)(nil)
