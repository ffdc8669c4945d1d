package interview

import (
	"context"

	"github.com/shopspring/decimal"

	"effort-estimate/core/types"
)

// QuestionRequest asks the collaborator for single-requirement questions
type QuestionRequest struct {
	Description    string             `json:"description"`
	TechPresetID   string             `json:"tech_preset_id"`
	TechCategory   types.TechCategory `json:"tech_category"`
	ProjectContext string             `json:"project_context,omitempty"`
}

// QuestionResponse is the collaborator's question set. Failures are
// surfaced as Success=false with a message, never as a thrown error.
type QuestionResponse struct {
	Success             bool       `json:"success"`
	Questions           []Question `json:"questions"`
	Reasoning           string     `json:"reasoning,omitempty"`
	EstimatedComplexity string     `json:"estimated_complexity,omitempty"`
	SuggestedActivities []string   `json:"suggested_activities,omitempty"`
	Error               string     `json:"error,omitempty"`
}

// BulkQuestionRequest asks for questions covering a requirement batch
type BulkQuestionRequest struct {
	Requirements   []Requirement      `json:"requirements"`
	TechCategory   types.TechCategory `json:"tech_category"`
	TechPresetID   string             `json:"tech_preset_id,omitempty"`
	ProjectContext string             `json:"project_context,omitempty"`
}

// RequirementAnalysis is the collaborator's per-requirement read
type RequirementAnalysis struct {
	RequirementID  string  `json:"requirement_id"`
	AmbiguityScore float64 `json:"ambiguity_score"`
	Notes          string  `json:"notes,omitempty"`
}

// BulkQuestionSummary aggregates the generated question set
type BulkQuestionSummary struct {
	TotalRequirements int     `json:"total_requirements"`
	GlobalQuestions   int     `json:"global_questions"`
	MultiReqQuestions int     `json:"multi_req_questions"`
	SpecificQuestions int     `json:"specific_questions"`
	AvgAmbiguityScore float64 `json:"avg_ambiguity_score"`
}

// BulkQuestionResponse is the bulk question set
type BulkQuestionResponse struct {
	Success             bool                  `json:"success"`
	Questions           []Question            `json:"questions"`
	RequirementAnalysis []RequirementAnalysis `json:"requirement_analysis,omitempty"`
	Reasoning           string                `json:"reasoning,omitempty"`
	Summary             BulkQuestionSummary   `json:"summary"`
	Error               string                `json:"error,omitempty"`
}

// EstimateRequest asks for a single-requirement estimate. Activities is the
// catalog slice already filtered to the requirement's technology category
// plus the wildcard.
type EstimateRequest struct {
	Description  string             `json:"description"`
	TechPresetID string             `json:"tech_preset_id"`
	TechCategory types.TechCategory `json:"tech_category"`
	Answers      map[string]Answer  `json:"answers"`
	Activities   []types.Activity   `json:"activities"`
}

// SuggestedActivity is one activity the collaborator proposes, by code
type SuggestedActivity struct {
	Code      string          `json:"code"`
	BaseDays  decimal.Decimal `json:"base_days"`
	Rationale string          `json:"rationale,omitempty"`
}

// EstimateResponse is the collaborator's estimate suggestion
type EstimateResponse struct {
	Success               bool                `json:"success"`
	Activities            []SuggestedActivity `json:"activities"`
	TotalBaseDays         decimal.Decimal     `json:"total_base_days"`
	Reasoning             string              `json:"reasoning,omitempty"`
	ConfidenceScore       float64             `json:"confidence_score"`
	GeneratedTitle        string              `json:"generated_title,omitempty"`
	SuggestedDriverValues map[string]string   `json:"suggested_driver_values,omitempty"`
	SuggestedRiskCodes    []string            `json:"suggested_risk_codes,omitempty"`
	Error                 string              `json:"error,omitempty"`
}

// BulkEstimateRequest asks for estimates across the batch
type BulkEstimateRequest struct {
	Requirements []Requirement      `json:"requirements"`
	TechCategory types.TechCategory `json:"tech_category"`
	Answers      map[string]Answer  `json:"answers"`
	Activities   []types.Activity   `json:"activities"`
}

// RequirementEstimate is one requirement's suggested estimate
type RequirementEstimate struct {
	RequirementID         string              `json:"requirement_id"`
	Title                 string              `json:"title,omitempty"`
	Success               bool                `json:"success"`
	Activities            []SuggestedActivity `json:"activities"`
	TotalBaseDays         decimal.Decimal     `json:"total_base_days"`
	ConfidenceScore       float64             `json:"confidence_score"`
	Reasoning             string              `json:"reasoning,omitempty"`
	SuggestedDriverValues map[string]string   `json:"suggested_driver_values,omitempty"`
	SuggestedRiskCodes    []string            `json:"suggested_risk_codes,omitempty"`
	Error                 string              `json:"error,omitempty"`
}

// BulkEstimateSummary aggregates batch estimation outcomes
type BulkEstimateSummary struct {
	TotalRequirements     int             `json:"total_requirements"`
	SuccessfulEstimations int             `json:"successful_estimations"`
	FailedEstimations     int             `json:"failed_estimations"`
	TotalBaseDays         decimal.Decimal `json:"total_base_days"`
	AvgConfidenceScore    float64         `json:"avg_confidence_score"`
}

// BulkEstimateResponse is the collaborator's batch estimate
type BulkEstimateResponse struct {
	Success     bool                  `json:"success"`
	Estimations []RequirementEstimate `json:"estimations"`
	Summary     BulkEstimateSummary   `json:"summary"`
	Error       string                `json:"error,omitempty"`
}

// QuestionGenerator is the question-generation collaborator. Collaborator
// failures arrive inside the response envelope; a Go error means the call
// itself could not complete (cancellation, programming error).
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, req QuestionRequest) (*QuestionResponse, error)
	GenerateBulkQuestions(ctx context.Context, req BulkQuestionRequest) (*BulkQuestionResponse, error)
}

// EstimateGenerator is the estimate-generation collaborator
type EstimateGenerator interface {
	GenerateEstimate(ctx context.Context, req EstimateRequest) (*EstimateResponse, error)
	GenerateBulkEstimates(ctx context.Context, req BulkEstimateRequest) (*BulkEstimateResponse, error)
}
