// Package finalize resolves competing estimation inputs into one
// authoritative EstimationInput and computes its result.
//
// Driver and risk values may arrive from up to three sources: explicit
// caller values, AI suggestions from an interview, and technology-preset
// defaults. Resolution follows a whole-group precedence cascade, decided
// independently for drivers and for risks:
//
//	manual > suggested > preset > neutral default
//
// A nil map/slice means the source is absent; a non-nil empty one is a
// present, deliberately empty choice. The service is stateless and
// idempotent: identical arguments always produce identical output.
package finalize

import (
	"effort-estimate/core/calc"
	"effort-estimate/core/catalog"
	"effort-estimate/core/types"
)

// Request carries the raw inputs to reconcile
type Request struct {
	// ActivityCodes are the selected activity codes. Codes with no
	// catalog match are dropped, not errors: catalogs may lag AI output.
	ActivityCodes []string

	// SuggestedActivityCodes marks which selected activities came from
	// an AI suggestion, for provenance on the materialized selection
	SuggestedActivityCodes []string

	// ManualDriverValues are explicit caller-supplied driver values,
	// keyed by driver id or code. Nil means no manual override.
	ManualDriverValues map[string]string

	// SuggestedDriverValues are AI-suggested driver values. Nil means absent.
	SuggestedDriverValues map[string]string

	// ManualRiskCodes are explicit caller-supplied risks. Nil means absent.
	ManualRiskCodes []string

	// SuggestedRiskCodes are AI-suggested risks. Nil means absent.
	SuggestedRiskCodes []string

	// PresetID selects the technology preset supplying default values.
	// Empty or unknown ids simply remove the preset rung of the cascade.
	PresetID string
}

// Finalized is the reconciled estimation with provenance
type Finalized struct {
	// Input is the normalized input the engine consumed
	Input types.EstimationInput `json:"input"`

	// Result is the computed estimation
	Result types.EstimationResult `json:"result"`

	// DriverSource tags which source won the driver group
	DriverSource types.ValueSource `json:"driver_source"`

	// RiskSource tags which source won the risk group
	RiskSource types.ValueSource `json:"risk_source"`

	// DroppedActivityCodes lists activity codes with no catalog match
	DroppedActivityCodes []string `json:"dropped_activity_codes,omitempty"`

	// DroppedRiskCodes lists risk codes with no catalog match
	DroppedRiskCodes []string `json:"dropped_risk_codes,omitempty"`
}

// Finalize reconciles req against the catalogs and computes the result
func Finalize(req Request, catalogs *catalog.Set) Finalized {
	preset, hasPreset := catalogs.PresetByID(req.PresetID)

	activities, droppedActivities := resolveActivities(req, catalogs)
	drivers, driverSource := resolveDrivers(req, preset, hasPreset, catalogs)
	risks, riskSource, droppedRisks := resolveRisks(req, preset, hasPreset, catalogs)

	input := types.EstimationInput{
		Activities: activities,
		Drivers:    drivers,
		Risks:      risks,
	}

	return Finalized{
		Input:                input,
		Result:               calc.Compute(input),
		DriverSource:         driverSource,
		RiskSource:           riskSource,
		DroppedActivityCodes: droppedActivities,
		DroppedRiskCodes:     droppedRisks,
	}
}

func resolveActivities(req Request, catalogs *catalog.Set) ([]types.SelectedActivity, []string) {
	suggested := make(map[string]bool, len(req.SuggestedActivityCodes))
	for _, code := range req.SuggestedActivityCodes {
		suggested[code] = true
	}

	seen := make(map[string]bool, len(req.ActivityCodes))
	var selected []types.SelectedActivity
	var dropped []string

	for _, code := range req.ActivityCodes {
		if seen[code] {
			continue
		}
		seen[code] = true

		activity, ok := catalogs.ActivityByCode(code)
		if !ok {
			dropped = append(dropped, code)
			continue
		}
		selected = append(selected, types.SelectedActivity{
			Code:        activity.Code,
			Name:        activity.Name,
			BaseDays:    activity.BaseDays,
			AISuggested: suggested[code],
		})
	}

	return selected, dropped
}

// resolveDrivers picks the winning driver-value source as a whole group,
// then resolves every catalog driver under it. Drivers the winning source
// does not cover fall back to their neutral first option individually.
func resolveDrivers(req Request, preset types.TechnologyPreset, hasPreset bool, catalogs *catalog.Set) ([]types.SelectedDriver, types.ValueSource) {
	var winning map[string]string
	source := types.SourceDefault

	switch {
	case req.ManualDriverValues != nil:
		winning = catalogs.NormalizeDriverValues(req.ManualDriverValues)
		source = types.SourceManual
	case req.SuggestedDriverValues != nil:
		winning = catalogs.NormalizeDriverValues(req.SuggestedDriverValues)
		source = types.SourceSuggested
	case hasPreset && len(preset.DefaultDriverValues) > 0:
		winning = catalogs.NormalizeDriverValues(preset.DefaultDriverValues)
		source = types.SourcePreset
	}

	var drivers []types.SelectedDriver
	for _, driver := range catalogs.Drivers {
		option, ok := driver.Option(winning[driver.ID])
		if !ok {
			if option, ok = driver.NeutralOption(); !ok {
				// Driver with no options is malformed catalog data; skip it
				// rather than let it reach the engine.
				continue
			}
		}
		drivers = append(drivers, types.SelectedDriver{
			Code:       driver.Code,
			Value:      option.Value,
			Multiplier: option.Multiplier,
		})
	}

	return drivers, source
}

func resolveRisks(req Request, preset types.TechnologyPreset, hasPreset bool, catalogs *catalog.Set) ([]types.SelectedRisk, types.ValueSource, []string) {
	var winning []string
	source := types.SourceDefault

	switch {
	case req.ManualRiskCodes != nil:
		winning = req.ManualRiskCodes
		source = types.SourceManual
	case req.SuggestedRiskCodes != nil:
		winning = req.SuggestedRiskCodes
		source = types.SourceSuggested
	case hasPreset && len(preset.DefaultRiskCodes) > 0:
		winning = preset.DefaultRiskCodes
		source = types.SourcePreset
	}

	seen := make(map[string]bool, len(winning))
	var risks []types.SelectedRisk
	var dropped []string

	for _, key := range winning {
		risk, ok := catalogs.RiskByCode(key)
		if !ok {
			if risk, ok = catalogs.RiskByID(key); !ok {
				dropped = append(dropped, key)
				continue
			}
		}
		if seen[risk.Code] {
			continue
		}
		seen[risk.Code] = true
		risks = append(risks, types.SelectedRisk{Code: risk.Code, Weight: risk.Weight})
	}

	return risks, source, dropped
}
