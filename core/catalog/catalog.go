// Package catalog provides read-only, indexed access to the estimation
// catalogs: activities, drivers, risks, and technology presets.
// A Set is immutable once built and safe for concurrent readers.
package catalog

import (
	"effort-estimate/core/types"
)

// Set is an indexed bundle of the four catalogs
type Set struct {
	Activities []types.Activity
	Drivers    []types.Driver
	Risks      []types.Risk
	Presets    []types.TechnologyPreset

	activityByID   map[string]types.Activity
	activityByCode map[string]types.Activity
	driverByID     map[string]types.Driver
	driverByCode   map[string]types.Driver
	riskByID       map[string]types.Risk
	riskByCode     map[string]types.Risk
	presetByID     map[string]types.TechnologyPreset
}

// NewSet builds an indexed Set from raw catalog slices
func NewSet(activities []types.Activity, drivers []types.Driver, risks []types.Risk, presets []types.TechnologyPreset) *Set {
	s := &Set{
		Activities:     activities,
		Drivers:        drivers,
		Risks:          risks,
		Presets:        presets,
		activityByID:   make(map[string]types.Activity, len(activities)),
		activityByCode: make(map[string]types.Activity, len(activities)),
		driverByID:     make(map[string]types.Driver, len(drivers)),
		driverByCode:   make(map[string]types.Driver, len(drivers)),
		riskByID:       make(map[string]types.Risk, len(risks)),
		riskByCode:     make(map[string]types.Risk, len(risks)),
		presetByID:     make(map[string]types.TechnologyPreset, len(presets)),
	}

	for _, a := range activities {
		s.activityByID[a.ID] = a
		s.activityByCode[a.Code] = a
	}
	for _, d := range drivers {
		s.driverByID[d.ID] = d
		s.driverByCode[d.Code] = d
	}
	for _, r := range risks {
		s.riskByID[r.ID] = r
		s.riskByCode[r.Code] = r
	}
	for _, p := range presets {
		s.presetByID[p.ID] = p
	}

	return s
}

// ActivityByID looks up an activity by id
func (s *Set) ActivityByID(id string) (types.Activity, bool) {
	a, ok := s.activityByID[id]
	return a, ok
}

// ActivityByCode looks up an activity by business code
func (s *Set) ActivityByCode(code string) (types.Activity, bool) {
	a, ok := s.activityByCode[code]
	return a, ok
}

// DriverByID looks up a driver by id
func (s *Set) DriverByID(id string) (types.Driver, bool) {
	d, ok := s.driverByID[id]
	return d, ok
}

// DriverByCode looks up a driver by business code
func (s *Set) DriverByCode(code string) (types.Driver, bool) {
	d, ok := s.driverByCode[code]
	return d, ok
}

// RiskByID looks up a risk by id
func (s *Set) RiskByID(id string) (types.Risk, bool) {
	r, ok := s.riskByID[id]
	return r, ok
}

// RiskByCode looks up a risk by business code
func (s *Set) RiskByCode(code string) (types.Risk, bool) {
	r, ok := s.riskByCode[code]
	return r, ok
}

// PresetByID looks up a technology preset by id
func (s *Set) PresetByID(id string) (types.TechnologyPreset, bool) {
	p, ok := s.presetByID[id]
	return p, ok
}

// ActivitiesFor returns the activities usable under a technology category:
// the category's own entries plus wildcard entries, in catalog order.
func (s *Set) ActivitiesFor(category types.TechCategory) []types.Activity {
	var out []types.Activity
	for _, a := range s.Activities {
		if a.TechCategory.AppliesTo(category) {
			out = append(out, a)
		}
	}
	return out
}

// NormalizeDriverValues converts a driver-value map that may be keyed by
// driver id or by driver code into the canonical id-keyed form. Id matches
// are checked first; keys matching neither are dropped.
func (s *Set) NormalizeDriverValues(values map[string]string) map[string]string {
	if values == nil {
		return nil
	}
	out := make(map[string]string, len(values))
	for key, value := range values {
		if d, ok := s.driverByID[key]; ok {
			out[d.ID] = value
			continue
		}
		if d, ok := s.driverByCode[key]; ok {
			out[d.ID] = value
		}
	}
	return out
}

// NormalizeRiskIDs converts a risk list that may hold ids or codes into
// canonical ids, dropping entries matching neither.
func (s *Set) NormalizeRiskIDs(idsOrCodes []string) []string {
	if idsOrCodes == nil {
		return nil
	}
	out := make([]string, 0, len(idsOrCodes))
	for _, key := range idsOrCodes {
		if r, ok := s.riskByID[key]; ok {
			out = append(out, r.ID)
			continue
		}
		if r, ok := s.riskByCode[key]; ok {
			out = append(out, r.ID)
		}
	}
	return out
}
