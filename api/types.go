package api

import (
	"github.com/shopspring/decimal"

	"effort-estimate/core/types"
)

// EstimateRequest is the body of POST /v1/estimate. Nil driver/risk sections
// mean "not provided"; empty non-nil sections are a deliberate empty choice
// and win precedence like any other value.
type EstimateRequest struct {
	ActivityCodes          []string          `json:"activity_codes"`
	SuggestedActivityCodes []string          `json:"suggested_activity_codes,omitempty"`
	ManualDriverValues     map[string]string `json:"manual_driver_values,omitempty"`
	SuggestedDriverValues  map[string]string `json:"suggested_driver_values,omitempty"`
	ManualRiskCodes        []string          `json:"manual_risk_codes,omitempty"`
	SuggestedRiskCodes     []string          `json:"suggested_risk_codes,omitempty"`
	TechPresetID           string            `json:"tech_preset_id,omitempty"`
}

// EstimateResponse is the finalized estimation with provenance
type EstimateResponse struct {
	Result               types.EstimationResult `json:"result"`
	Input                types.EstimationInput  `json:"input"`
	DriverSource         types.ValueSource      `json:"driver_source"`
	RiskSource           types.ValueSource      `json:"risk_source"`
	DroppedActivityCodes []string               `json:"dropped_activity_codes,omitempty"`
	DroppedRiskCodes     []string               `json:"dropped_risk_codes,omitempty"`
}

// CatalogResponse is the body of GET /v1/catalog
type CatalogResponse struct {
	Activities []ActivityInfo `json:"activities"`
	Drivers    []DriverInfo   `json:"drivers"`
	Risks      []RiskInfo     `json:"risks"`
	Presets    []PresetInfo   `json:"presets"`
}

type ActivityInfo struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	BaseDays     decimal.Decimal `json:"base_days"`
	Group        string          `json:"group,omitempty"`
	TechCategory string          `json:"tech_category"`
}

type DriverInfo struct {
	ID      string       `json:"id"`
	Code    string       `json:"code"`
	Name    string       `json:"name"`
	Options []OptionInfo `json:"options"`
}

type OptionInfo struct {
	Value      string          `json:"value"`
	Label      string          `json:"label"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

type RiskInfo struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

type PresetInfo struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	TechCategory         string            `json:"tech_category"`
	DefaultActivityCodes []string          `json:"default_activity_codes,omitempty"`
	DefaultDriverValues  map[string]string `json:"default_driver_values,omitempty"`
	DefaultRiskCodes     []string          `json:"default_risk_codes,omitempty"`
}

// SaveSnapshotRequest is the body of POST /v1/snapshots
type SaveSnapshotRequest struct {
	RequirementID string            `json:"requirement_id"`
	Title         string            `json:"title"`
	Estimate      EstimateRequest   `json:"estimate"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// SaveSnapshotResponse returns the persisted snapshot identity and result
type SaveSnapshotResponse struct {
	ID       string           `json:"id"`
	Estimate EstimateResponse `json:"estimate"`
}
