// Package selection holds the live, mutable selection for one estimation
// session: chosen activities, driver values, risk flags, and the active
// technology preset. Every mutation enforces technology compatibility, and
// the estimate is re-derived from current state rather than cached.
//
// A Manager is scoped to a single session and is not safe for concurrent
// mutation from multiple callers.
package selection

import (
	"go.uber.org/zap"

	"effort-estimate/core/calc"
	"effort-estimate/core/catalog"
	"effort-estimate/core/types"
	"effort-estimate/internal/errors"
	"effort-estimate/internal/logging"
)

// Manager owns the selection state for one estimation session
type Manager struct {
	catalogs *catalog.Set
	log      *zap.Logger

	presetID     string
	activityIDs  map[string]bool
	aiSuggested  map[string]bool
	driverValues map[string]string // canonical: driver-id keyed
	riskIDs      map[string]bool
}

// NewManager creates a manager over read-only catalogs
func NewManager(catalogs *catalog.Set) *Manager {
	return &Manager{
		catalogs:     catalogs,
		log:          logging.Named("selection"),
		activityIDs:  make(map[string]bool),
		aiSuggested:  make(map[string]bool),
		driverValues: make(map[string]string),
		riskIDs:      make(map[string]bool),
	}
}

// PresetID returns the currently selected preset id, if any
func (m *Manager) PresetID() string {
	return m.presetID
}

// SelectedActivityIDs returns the selected activity ids in catalog order
func (m *Manager) SelectedActivityIDs() []string {
	var ids []string
	for _, a := range m.catalogs.Activities {
		if m.activityIDs[a.ID] {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// DriverValues returns a copy of the id-keyed driver value map
func (m *Manager) DriverValues() map[string]string {
	out := make(map[string]string, len(m.driverValues))
	for k, v := range m.driverValues {
		out[k] = v
	}
	return out
}

// SelectedRiskIDs returns the selected risk ids in catalog order
func (m *Manager) SelectedRiskIDs() []string {
	var ids []string
	for _, r := range m.catalogs.Risks {
		if m.riskIDs[r.ID] {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// activityAllowed applies the shared compatibility rule: an activity is
// allowed iff its category is the wildcard or matches the selected preset's
// category. With no preset selected, everything is allowed.
func (m *Manager) activityAllowed(activity types.Activity) bool {
	if m.presetID == "" {
		return true
	}
	preset, ok := m.catalogs.PresetByID(m.presetID)
	if !ok {
		return true
	}
	return activity.TechCategory.AppliesTo(preset.TechCategory)
}

// ToggleActivity adds or removes an activity from the selection.
// Incompatible activities leave the selection unchanged and return a
// compatibility error as the rejection signal.
func (m *Manager) ToggleActivity(id string) error {
	activity, ok := m.catalogs.ActivityByID(id)
	if !ok {
		return errors.NotFound("activity", id)
	}

	if !m.activityAllowed(activity) {
		return errors.Compatibility("activity "+activity.Code+" is not available for the selected technology").
			WithContext("activity_id", id)
	}

	if m.activityIDs[id] {
		delete(m.activityIDs, id)
		delete(m.aiSuggested, id)
	} else {
		m.activityIDs[id] = true
	}
	return nil
}

// SetDriverValue sets a driver value; last write wins
func (m *Manager) SetDriverValue(driverID, value string) error {
	if _, ok := m.catalogs.DriverByID(driverID); !ok {
		return errors.NotFound("driver", driverID)
	}
	m.driverValues[driverID] = value
	return nil
}

// ToggleRisk toggles a risk flag unconditionally
func (m *Manager) ToggleRisk(id string) error {
	if _, ok := m.catalogs.RiskByID(id); !ok {
		return errors.NotFound("risk", id)
	}
	if m.riskIDs[id] {
		delete(m.riskIDs, id)
	} else {
		m.riskIDs[id] = true
	}
	return nil
}

// ApplyPresetDefaults replaces the entire selection with the preset's
// defaults. Activities the preset references but the catalog no longer
// carries are dropped and reported; if every default activity is missing
// the preset is unusable and the selection is left empty with a catalog
// gap error. Prior AI-suggested marks are always cleared.
func (m *Manager) ApplyPresetDefaults(presetID string) (dropped []string, err error) {
	preset, ok := m.catalogs.PresetByID(presetID)
	if !ok {
		return nil, errors.NotFound("preset", presetID)
	}

	m.presetID = presetID
	m.activityIDs = make(map[string]bool)
	m.aiSuggested = make(map[string]bool)
	m.driverValues = m.catalogs.NormalizeDriverValues(preset.DefaultDriverValues)
	if m.driverValues == nil {
		m.driverValues = make(map[string]string)
	}
	m.riskIDs = make(map[string]bool)

	for _, code := range preset.DefaultActivityCodes {
		activity, ok := m.catalogs.ActivityByCode(code)
		if !ok {
			dropped = append(dropped, code)
			continue
		}
		m.activityIDs[activity.ID] = true
	}

	for _, id := range m.catalogs.NormalizeRiskIDs(preset.DefaultRiskCodes) {
		m.riskIDs[id] = true
	}

	if len(dropped) > 0 {
		m.log.Warn("preset references missing activities",
			zap.String("preset", presetID), zap.Strings("codes", dropped))
	}

	if len(preset.DefaultActivityCodes) > 0 && len(m.activityIDs) == 0 {
		return dropped, errors.CatalogGap("preset " + presetID + " is unusable: none of its default activities exist in the catalog")
	}

	return dropped, nil
}

// ApplyAISuggestions replaces the selection's AI-derived parts. Activity ids
// pass through the same compatibility check as ToggleActivity; incompatible
// ones are dropped and reported. Omitting driverValues or riskIDs (nil)
// resets that section to empty: suggestions replace, they never merge.
func (m *Manager) ApplyAISuggestions(activityIDs []string, driverValues map[string]string, riskIDs []string) (dropped []string, err error) {
	accepted := make(map[string]bool, len(activityIDs))
	for _, id := range activityIDs {
		activity, ok := m.catalogs.ActivityByID(id)
		if !ok {
			dropped = append(dropped, id)
			continue
		}
		if !m.activityAllowed(activity) {
			dropped = append(dropped, id)
			continue
		}
		accepted[id] = true
	}

	if len(activityIDs) > 0 && len(accepted) == 0 {
		return dropped, errors.Compatibility("none of the suggested activities are compatible with the selected technology")
	}

	m.activityIDs = accepted
	m.aiSuggested = make(map[string]bool, len(accepted))
	for id := range accepted {
		m.aiSuggested[id] = true
	}

	// Reset-on-absence: nil sections clear prior state
	normalized := m.catalogs.NormalizeDriverValues(driverValues)
	if normalized == nil {
		normalized = make(map[string]string)
	}
	m.driverValues = normalized

	m.riskIDs = make(map[string]bool)
	for _, id := range m.catalogs.NormalizeRiskIDs(riskIDs) {
		m.riskIDs[id] = true
	}

	if len(dropped) > 0 {
		m.log.Warn("incompatible suggested activities dropped", zap.Strings("ids", dropped))
	}

	return dropped, nil
}

// ResetSelections clears everything, including the preset
func (m *Manager) ResetSelections() {
	m.presetID = ""
	m.activityIDs = make(map[string]bool)
	m.aiSuggested = make(map[string]bool)
	m.driverValues = make(map[string]string)
	m.riskIDs = make(map[string]bool)
}

// Input materializes the current selection as a normalized engine input.
// Activities and risks follow catalog order so results are deterministic.
func (m *Manager) Input() types.EstimationInput {
	var activities []types.SelectedActivity
	for _, a := range m.catalogs.Activities {
		if !m.activityIDs[a.ID] {
			continue
		}
		activities = append(activities, types.SelectedActivity{
			Code:        a.Code,
			Name:        a.Name,
			BaseDays:    a.BaseDays,
			AISuggested: m.aiSuggested[a.ID],
		})
	}

	var drivers []types.SelectedDriver
	for _, d := range m.catalogs.Drivers {
		option, ok := d.Option(m.driverValues[d.ID])
		if !ok {
			if option, ok = d.NeutralOption(); !ok {
				continue
			}
		}
		drivers = append(drivers, types.SelectedDriver{
			Code:       d.Code,
			Value:      option.Value,
			Multiplier: option.Multiplier,
		})
	}

	var risks []types.SelectedRisk
	for _, r := range m.catalogs.Risks {
		if m.riskIDs[r.ID] {
			risks = append(risks, types.SelectedRisk{Code: r.Code, Weight: r.Weight})
		}
	}

	return types.EstimationInput{Activities: activities, Drivers: drivers, Risks: risks}
}

// Result re-derives the estimate from current state. It returns nil when no
// activities are selected.
func (m *Manager) Result() *types.EstimationResult {
	if len(m.activityIDs) == 0 {
		return nil
	}
	result := calc.Compute(m.Input())
	return &result
}
