package interview

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"effort-estimate/core/catalog"
	"effort-estimate/core/finalize"
	"effort-estimate/core/types"
	"effort-estimate/internal/errors"
	"effort-estimate/internal/logging"
)

// BulkOutcome is the finished bulk interview result: the raw batch
// response plus a reconciled estimation per successful requirement.
type BulkOutcome struct {
	Response  *BulkEstimateResponse         `json:"response"`
	Finalized map[string]finalize.Finalized `json:"finalized"`
}

// BulkInterviewer drives the multi-requirement interview flow. Questions
// carry a scope so a single answer can apply to a subset of the batch; the
// orchestrator tracks per-scope counts for progress reporting but scope
// never changes resolution logic.
type BulkInterviewer struct {
	generator QuestionGenerator
	estimator EstimateGenerator
	catalogs  *catalog.Set
	log       *zap.Logger

	phase        Phase
	requirements []Requirement
	techPresetID string
	techCategory types.TechCategory
	questions    []Question
	answers      map[string]Answer
	current      int
	scopeCounts  ScopeSummary
	analysis     []RequirementAnalysis
	lastError    string
	outcome      *BulkOutcome
}

// NewBulkInterviewer creates an idle bulk interviewer
func NewBulkInterviewer(generator QuestionGenerator, estimator EstimateGenerator, catalogs *catalog.Set) *BulkInterviewer {
	return &BulkInterviewer{
		generator: generator,
		estimator: estimator,
		catalogs:  catalogs,
		log:       logging.Named("interview.bulk"),
		phase:     PhaseIdle,
		answers:   make(map[string]Answer),
	}
}

// Phase returns the current lifecycle phase
func (iv *BulkInterviewer) Phase() Phase {
	return iv.phase
}

// LastError returns the message that moved the interviewer to PhaseError
func (iv *BulkInterviewer) LastError() string {
	return iv.lastError
}

// Questions returns the loaded question list
func (iv *BulkInterviewer) Questions() []Question {
	return iv.questions
}

// CurrentIndex returns the navigation position
func (iv *BulkInterviewer) CurrentIndex() int {
	return iv.current
}

// Requirements returns the sanitized requirement batch
func (iv *BulkInterviewer) Requirements() []Requirement {
	return iv.requirements
}

// ScopeCounts returns question counts per scope
func (iv *BulkInterviewer) ScopeCounts() ScopeSummary {
	return iv.scopeCounts
}

// Analysis returns the collaborator's per-requirement analysis
func (iv *BulkInterviewer) Analysis() []RequirementAnalysis {
	return iv.analysis
}

// Answers returns a copy of the collected answers keyed by question id
func (iv *BulkInterviewer) Answers() map[string]Answer {
	out := make(map[string]Answer, len(iv.answers))
	for k, v := range iv.answers {
		out[k] = v
	}
	return out
}

// Outcome returns the finished result, nil before review
func (iv *BulkInterviewer) Outcome() *BulkOutcome {
	return iv.outcome
}

func (iv *BulkInterviewer) fail(msg string) {
	iv.phase = PhaseError
	iv.lastError = msg
}

// AnalyzeRequirements sanitizes the batch, generates questions for the
// valid requirements, and moves to interviewing. Requirements shorter than
// the minimum are dropped with a warning; an entirely invalid batch is a
// validation error with no state change.
func (iv *BulkInterviewer) AnalyzeRequirements(ctx context.Context, requirements []Requirement, techCategory types.TechCategory, techPresetID string) error {
	if iv.phase.busy() {
		return errors.Busy("analyze requirements")
	}
	if techCategory == "" {
		return errors.Validation("a technology category is required")
	}

	var valid []Requirement
	var skipped []string
	for _, req := range requirements {
		req.Description = strings.TrimSpace(req.Description)
		if utf8.RuneCountInString(req.Description) < minBulkDescriptionLen {
			skipped = append(skipped, req.ID)
			continue
		}
		valid = append(valid, req)
	}
	if len(skipped) > 0 {
		iv.log.Warn("requirements below minimum length skipped", zap.Strings("ids", skipped))
	}
	if len(valid) == 0 {
		return errors.Validation("the batch contains no valid requirements")
	}

	iv.phase = PhaseLoadingQuestions
	resp, err := iv.generator.GenerateBulkQuestions(ctx, BulkQuestionRequest{
		Requirements: valid,
		TechCategory: techCategory,
		TechPresetID: techPresetID,
	})
	if err != nil {
		iv.fail("bulk question generation failed")
		return errors.Collaborator(iv.lastError, err)
	}
	if !resp.Success || len(resp.Questions) == 0 {
		msg := resp.Error
		if msg == "" {
			msg = "the question service returned no questions"
		}
		iv.fail(msg)
		return errors.Collaborator(msg, nil)
	}

	iv.requirements = valid
	iv.techCategory = techCategory
	iv.techPresetID = techPresetID
	iv.questions = resp.Questions
	iv.answers = make(map[string]Answer)
	iv.current = 0
	iv.analysis = resp.RequirementAnalysis
	iv.scopeCounts = countScopes(resp.Questions)
	iv.outcome = nil
	iv.lastError = ""
	iv.phase = PhaseInterviewing

	iv.log.Info("bulk questions loaded",
		zap.Int("requirements", len(valid)),
		zap.Int("questions", len(resp.Questions)),
		zap.Int("global", iv.scopeCounts.Global),
		zap.Int("multi", iv.scopeCounts.MultiRequirement),
		zap.Int("specific", iv.scopeCounts.Specific))
	return nil
}

func countScopes(questions []Question) ScopeSummary {
	var summary ScopeSummary
	for _, q := range questions {
		switch q.Scope {
		case ScopeMultiRequirement:
			summary.MultiRequirement++
		case ScopeSpecific:
			summary.Specific++
		default:
			summary.Global++
		}
	}
	return summary
}

// AnswerQuestion upserts an answer keyed by question id, echoing the
// question's category and scope. Unknown ids are a no-op.
func (iv *BulkInterviewer) AnswerQuestion(questionID, value string) {
	for i := range iv.questions {
		if iv.questions[i].ID != questionID {
			continue
		}
		iv.answers[questionID] = Answer{
			QuestionID: questionID,
			Value:      value,
			Category:   iv.questions[i].Category,
			Scope:      iv.questions[i].Scope,
			AnsweredAt: time.Now(),
		}
		return
	}
}

// RequiredAnswered reports whether every required question has an answer
func (iv *BulkInterviewer) RequiredAnswered() bool {
	for _, q := range iv.questions {
		if !q.Required {
			continue
		}
		if a, ok := iv.answers[q.ID]; !ok || strings.TrimSpace(a.Value) == "" {
			return false
		}
	}
	return true
}

// NextQuestion advances the navigation position
func (iv *BulkInterviewer) NextQuestion() {
	if iv.current < len(iv.questions)-1 {
		iv.current++
	}
}

// PreviousQuestion moves the navigation position back
func (iv *BulkInterviewer) PreviousQuestion() {
	if iv.current > 0 {
		iv.current--
	}
}

// GoToQuestion jumps to an index; out-of-bounds jumps are ignored
func (iv *BulkInterviewer) GoToQuestion(index int) {
	if index >= 0 && index < len(iv.questions) {
		iv.current = index
	}
}

// GenerateEstimates runs batch estimation over the accumulated answers and
// reconciles each successful requirement estimate through the finalization
// service. Lands in PhaseReviewing on success.
func (iv *BulkInterviewer) GenerateEstimates(ctx context.Context) error {
	if iv.phase.busy() {
		return errors.Busy("generate estimates")
	}
	if len(iv.questions) == 0 {
		return errors.Validation("no bulk interview in progress")
	}

	activities := iv.catalogs.ActivitiesFor(iv.techCategory)
	if len(activities) == 0 {
		msg := "no activities available for technology " + string(iv.techCategory)
		iv.fail(msg)
		return errors.CatalogGap(msg)
	}

	iv.phase = PhaseGenerating
	resp, err := iv.estimator.GenerateBulkEstimates(ctx, BulkEstimateRequest{
		Requirements: iv.requirements,
		TechCategory: iv.techCategory,
		Answers:      iv.Answers(),
		Activities:   activities,
	})
	if err != nil {
		iv.fail("bulk estimate generation failed")
		return errors.Collaborator(iv.lastError, err)
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "the estimation service returned an error"
		}
		iv.fail(msg)
		return errors.Collaborator(msg, nil)
	}

	finalized := make(map[string]finalize.Finalized, len(resp.Estimations))
	for _, est := range resp.Estimations {
		if !est.Success {
			continue
		}
		codes := make([]string, 0, len(est.Activities))
		for _, a := range est.Activities {
			codes = append(codes, a.Code)
		}
		finalized[est.RequirementID] = finalize.Finalize(finalize.Request{
			ActivityCodes:          codes,
			SuggestedActivityCodes: codes,
			SuggestedDriverValues:  est.SuggestedDriverValues,
			SuggestedRiskCodes:     est.SuggestedRiskCodes,
			PresetID:               iv.techPresetID,
		}, iv.catalogs)
	}

	iv.outcome = &BulkOutcome{Response: resp, Finalized: finalized}
	iv.lastError = ""
	iv.phase = PhaseReviewing

	iv.log.Info("bulk estimates generated",
		zap.Int("successful", resp.Summary.SuccessfulEstimations),
		zap.Int("failed", resp.Summary.FailedEstimations))
	return nil
}

// Reset returns the interviewer to idle, clearing accumulated state
func (iv *BulkInterviewer) Reset() {
	iv.phase = PhaseIdle
	iv.requirements = nil
	iv.techPresetID = ""
	iv.techCategory = ""
	iv.questions = nil
	iv.answers = make(map[string]Answer)
	iv.current = 0
	iv.scopeCounts = ScopeSummary{}
	iv.analysis = nil
	iv.lastError = ""
	iv.outcome = nil
}
