package catalog

import (
	"context"

	"go.uber.org/zap"

	"effort-estimate/core/types"
	"effort-estimate/internal/logging"
)

// Source fetches catalog data from a backing store. Implementations may
// return empty slices; callers fall back to the built-in demo dataset.
type Source interface {
	// FetchActivities returns the activity catalog
	FetchActivities(ctx context.Context) ([]types.Activity, error)

	// FetchDrivers returns the driver catalog
	FetchDrivers(ctx context.Context) ([]types.Driver, error)

	// FetchRisks returns the risk catalog
	FetchRisks(ctx context.Context) ([]types.Risk, error)

	// FetchPresets returns the technology presets
	FetchPresets(ctx context.Context) ([]types.TechnologyPreset, error)
}

// LoadSet builds a Set from a source, substituting the demo catalogs for
// any catalog that errors or comes back empty. The core tolerates either
// origin transparently.
func LoadSet(ctx context.Context, src Source) *Set {
	demo := DemoSet()
	log := logging.Named("catalog")

	activities, err := src.FetchActivities(ctx)
	if err != nil || len(activities) == 0 {
		logFallback(log, "activities", err)
		activities = demo.Activities
	}

	drivers, err := src.FetchDrivers(ctx)
	if err != nil || len(drivers) == 0 {
		logFallback(log, "drivers", err)
		drivers = demo.Drivers
	}

	risks, err := src.FetchRisks(ctx)
	if err != nil || len(risks) == 0 {
		logFallback(log, "risks", err)
		risks = demo.Risks
	}

	presets, err := src.FetchPresets(ctx)
	if err != nil || len(presets) == 0 {
		logFallback(log, "presets", err)
		presets = demo.Presets
	}

	return NewSet(activities, drivers, risks, presets)
}

func logFallback(log *zap.Logger, catalog string, err error) {
	if err != nil {
		log.Warn("catalog fetch failed, using demo data", zap.String("catalog", catalog), zap.Error(err))
		return
	}
	log.Debug("catalog empty, using demo data", zap.String("catalog", catalog))
}
