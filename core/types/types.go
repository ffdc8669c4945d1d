// Package types defines the domain model for effort estimation:
// catalog entries, resolved selections, and estimation results.
package types

import "github.com/shopspring/decimal"

// TechCategory is a technology affinity tag
type TechCategory string

// TechCategoryAll is the wildcard category that applies to every technology
const TechCategoryAll TechCategory = "all"

// AppliesTo reports whether an item tagged with c is usable under the
// given preset category
func (c TechCategory) AppliesTo(preset TechCategory) bool {
	return c == TechCategoryAll || c == preset
}

// Activity is a catalog unit of work with a fixed base effort
type Activity struct {
	// ID uniquely identifies the catalog entry
	ID string `json:"id"`

	// Code is the stable business code (e.g. "API-CRUD")
	Code string `json:"code"`

	// Name is a human-readable label
	Name string `json:"name"`

	// BaseDays is the base effort in days
	BaseDays decimal.Decimal `json:"base_days"`

	// Group clusters related activities (e.g. "backend", "qa")
	Group string `json:"group,omitempty"`

	// TechCategory is the technology affinity, or the wildcard
	TechCategory TechCategory `json:"tech_category"`
}

// DriverOption is one selectable level of a complexity driver
type DriverOption struct {
	// Value is the stable option value (e.g. "low")
	Value string `json:"value"`

	// Label is a human-readable label
	Label string `json:"label"`

	// Multiplier is the effort multiplier for this level, >= 0
	Multiplier decimal.Decimal `json:"multiplier"`
}

// Driver is a multiplicative complexity factor with discrete levels
type Driver struct {
	// ID uniquely identifies the catalog entry
	ID string `json:"id"`

	// Code is the stable business code (e.g. "INTEGRATION")
	Code string `json:"code"`

	// Name is a human-readable label
	Name string `json:"name"`

	// Options are the selectable levels. The first option is the
	// neutral default used when no source supplies a value.
	Options []DriverOption `json:"options"`
}

// Option returns the option with the given value
func (d Driver) Option(value string) (DriverOption, bool) {
	for _, opt := range d.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return DriverOption{}, false
}

// NeutralOption returns the driver's first option
func (d Driver) NeutralOption() (DriverOption, bool) {
	if len(d.Options) == 0 {
		return DriverOption{}, false
	}
	return d.Options[0], true
}

// Risk is an additive contingency weight
type Risk struct {
	// ID uniquely identifies the catalog entry
	ID string `json:"id"`

	// Code is the stable business code (e.g. "LEGACY")
	Code string `json:"code"`

	// Name is a human-readable label
	Name string `json:"name"`

	// Weight is a non-negative contribution to the risk score
	Weight int `json:"weight"`
}

// TechnologyPreset bundles default selections for a technology
type TechnologyPreset struct {
	// ID uniquely identifies the preset
	ID string `json:"id"`

	// Name is a human-readable label
	Name string `json:"name"`

	// TechCategory is the technology this preset targets
	TechCategory TechCategory `json:"tech_category"`

	// DefaultActivityCodes are activity codes selected by default
	DefaultActivityCodes []string `json:"default_activity_codes"`

	// DefaultDriverValues maps driver code to default option value
	DefaultDriverValues map[string]string `json:"default_driver_values"`

	// DefaultRiskCodes are risk codes selected by default
	DefaultRiskCodes []string `json:"default_risk_codes"`
}

// ValueSource identifies where a resolved driver/risk group came from
type ValueSource string

const (
	// SourceManual is an explicit caller-supplied value
	SourceManual ValueSource = "manual"

	// SourceSuggested is an AI-suggested value from an interview
	SourceSuggested ValueSource = "suggested"

	// SourcePreset is a technology-preset default
	SourcePreset ValueSource = "preset"

	// SourceDefault is the neutral fallback (first driver option, no risks)
	SourceDefault ValueSource = "default"
)

// SelectedActivity is a materialized activity chosen for one estimation.
// Replace, never mutate in place.
type SelectedActivity struct {
	Code        string          `json:"code"`
	Name        string          `json:"name,omitempty"`
	BaseDays    decimal.Decimal `json:"base_days"`
	AISuggested bool            `json:"ai_suggested,omitempty"`
}

// SelectedDriver is a resolved driver value for one estimation
type SelectedDriver struct {
	Code       string          `json:"code"`
	Value      string          `json:"value"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// SelectedRisk is a resolved risk for one estimation
type SelectedRisk struct {
	Code   string `json:"code"`
	Weight int    `json:"weight"`
}

// EstimationInput is the normalized structure the calculation engine
// consumes. Activity codes are unique, there is one resolved value per
// driver code, and risk codes are unique.
type EstimationInput struct {
	Activities []SelectedActivity `json:"activities"`
	Drivers    []SelectedDriver   `json:"drivers"`
	Risks      []SelectedRisk     `json:"risks"`
}

// Breakdown itemizes how an estimation result was composed
type Breakdown struct {
	Activities []SelectedActivity `json:"activities"`
	Drivers    []SelectedDriver   `json:"drivers"`
	Risks      []SelectedRisk     `json:"risks"`
}

// EstimationResult is the derived output of the calculation engine.
// It is disposable and recomputable at any time; only final snapshots
// are ever persisted.
type EstimationResult struct {
	// BaseDays is the sum of selected activity base days
	BaseDays decimal.Decimal `json:"base_days"`

	// DriverMultiplier is the product of resolved driver multipliers
	DriverMultiplier decimal.Decimal `json:"driver_multiplier"`

	// Subtotal is BaseDays * DriverMultiplier
	Subtotal decimal.Decimal `json:"subtotal"`

	// RiskScore is the sum of selected risk weights
	RiskScore int `json:"risk_score"`

	// ContingencyPercent is the stepped buffer percentage (10/15/20/25)
	ContingencyPercent int `json:"contingency_percent"`

	// ContingencyDays is Subtotal * ContingencyPercent
	ContingencyDays decimal.Decimal `json:"contingency_days"`

	// TotalDays is Subtotal + ContingencyDays
	TotalDays decimal.Decimal `json:"total_days"`

	// Breakdown itemizes the contributing selections
	Breakdown Breakdown `json:"breakdown"`
}
