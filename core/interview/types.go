// Package interview contains the finite-state controllers that drive the
// AI-assisted estimation flows: generate questions, collect answers, and
// generate estimates, delegating final arithmetic to the finalization
// service.
package interview

import (
	"time"
)

// Phase is an orchestrator lifecycle phase
type Phase string

const (
	// PhaseIdle is the initial phase before any work starts
	PhaseIdle Phase = "idle"

	// PhaseLoadingQuestions covers the question-generation call
	PhaseLoadingQuestions Phase = "loading_questions"

	// PhaseInterviewing is the answer-collection phase
	PhaseInterviewing Phase = "interviewing"

	// PhaseGenerating covers the estimate-generation call
	PhaseGenerating Phase = "generating"

	// PhaseComplete is the single-flow success terminal
	PhaseComplete Phase = "complete"

	// PhaseReviewing is the bulk-flow success terminal
	PhaseReviewing Phase = "reviewing"

	// PhaseError is reachable from any non-idle phase; the triggering
	// action may be retried
	PhaseError Phase = "error"
)

// busy reports whether a collaborator call is in flight; re-entrant calls
// are rejected while busy to avoid a lost-update race.
func (p Phase) busy() bool {
	return p == PhaseLoadingQuestions || p == PhaseGenerating
}

// QuestionScope says which requirements a bulk question applies to
type QuestionScope string

const (
	// ScopeGlobal applies to the whole batch
	ScopeGlobal QuestionScope = "global"

	// ScopeMultiRequirement applies to a named subset
	ScopeMultiRequirement QuestionScope = "multi-requirement"

	// ScopeSpecific applies to a single requirement
	ScopeSpecific QuestionScope = "specific"
)

// Question is one interview question
type Question struct {
	// ID keys answers to this question
	ID string `json:"id"`

	// Text is the question shown to the user
	Text string `json:"text"`

	// Category attributes the question (e.g. "integration", "data")
	Category string `json:"category,omitempty"`

	// Required marks questions that feed required completeness
	Required bool `json:"required,omitempty"`

	// Options, when present, constrain the answer to a choice
	Options []string `json:"options,omitempty"`

	// Scope is set for bulk questions
	Scope QuestionScope `json:"scope,omitempty"`

	// AffectedRequirementIDs names the subset for non-global scopes
	AffectedRequirementIDs []string `json:"affected_requirement_ids,omitempty"`
}

// Answer is a recorded answer, stamped with the question's attribution
type Answer struct {
	QuestionID string        `json:"question_id"`
	Value      string        `json:"value"`
	Category   string        `json:"category,omitempty"`
	Scope      QuestionScope `json:"scope,omitempty"`
	AnsweredAt time.Time     `json:"answered_at"`
}

// Requirement is one unit of work in a bulk interview
type Requirement struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
}

// ScopeSummary tracks bulk question counts per scope for progress reporting
type ScopeSummary struct {
	Global           int `json:"global"`
	MultiRequirement int `json:"multi_requirement"`
	Specific         int `json:"specific"`
}

// Input length bounds enforced before any collaborator call
const (
	minSingleDescriptionLen = 15
	maxSingleDescriptionLen = 2000
	minBulkDescriptionLen   = 10
)
