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

// Outcome is the finished single-requirement interview result: the raw
// collaborator suggestion plus the reconciled, computed estimation.
type Outcome struct {
	Response  *EstimateResponse  `json:"response"`
	Finalized finalize.Finalized `json:"finalized"`
	Title     string             `json:"title,omitempty"`
}

// Interviewer drives the single-requirement interview flow. It owns its
// state exclusively and expects a single caller; one collaborator call may
// be outstanding at a time.
type Interviewer struct {
	generator QuestionGenerator
	estimator EstimateGenerator
	catalogs  *catalog.Set
	log       *zap.Logger

	phase        Phase
	description  string
	techPresetID string
	techCategory types.TechCategory
	questions    []Question
	answers      map[string]Answer
	current      int
	lastError    string
	outcome      *Outcome
}

// NewInterviewer creates an idle single-requirement interviewer
func NewInterviewer(generator QuestionGenerator, estimator EstimateGenerator, catalogs *catalog.Set) *Interviewer {
	return &Interviewer{
		generator: generator,
		estimator: estimator,
		catalogs:  catalogs,
		log:       logging.Named("interview"),
		phase:     PhaseIdle,
		answers:   make(map[string]Answer),
	}
}

// Phase returns the current lifecycle phase
func (iv *Interviewer) Phase() Phase {
	return iv.phase
}

// LastError returns the message that moved the interviewer to PhaseError
func (iv *Interviewer) LastError() string {
	return iv.lastError
}

// Questions returns the loaded question list
func (iv *Interviewer) Questions() []Question {
	return iv.questions
}

// CurrentIndex returns the navigation position
func (iv *Interviewer) CurrentIndex() int {
	return iv.current
}

// CurrentQuestion returns the question at the navigation position
func (iv *Interviewer) CurrentQuestion() *Question {
	if iv.current < 0 || iv.current >= len(iv.questions) {
		return nil
	}
	return &iv.questions[iv.current]
}

// Answers returns a copy of the collected answers keyed by question id
func (iv *Interviewer) Answers() map[string]Answer {
	out := make(map[string]Answer, len(iv.answers))
	for k, v := range iv.answers {
		out[k] = v
	}
	return out
}

// Outcome returns the finished result, nil before completion
func (iv *Interviewer) Outcome() *Outcome {
	return iv.outcome
}

func (iv *Interviewer) fail(msg string) {
	iv.phase = PhaseError
	iv.lastError = msg
}

// GenerateQuestions validates the description, calls the question
// collaborator, and moves to interviewing. Validation failures leave the
// current phase untouched; collaborator failures land in PhaseError and the
// call may be retried.
func (iv *Interviewer) GenerateQuestions(ctx context.Context, description, techPresetID string) error {
	if iv.phase.busy() {
		return errors.Busy("generate questions")
	}

	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) < minSingleDescriptionLen {
		return errors.Validationf("description must be at least %d characters", minSingleDescriptionLen)
	}
	if utf8.RuneCountInString(description) > maxSingleDescriptionLen {
		return errors.Validationf("description must be at most %d characters", maxSingleDescriptionLen)
	}

	preset, ok := iv.catalogs.PresetByID(techPresetID)
	if !ok {
		return errors.Validation("a technology preset is required")
	}

	iv.phase = PhaseLoadingQuestions
	resp, err := iv.generator.GenerateQuestions(ctx, QuestionRequest{
		Description:  description,
		TechPresetID: techPresetID,
		TechCategory: preset.TechCategory,
	})
	if err != nil {
		iv.fail("question generation failed")
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

	iv.description = description
	iv.techPresetID = techPresetID
	iv.techCategory = preset.TechCategory
	iv.questions = resp.Questions
	iv.answers = make(map[string]Answer)
	iv.current = 0
	iv.outcome = nil
	iv.lastError = ""
	iv.phase = PhaseInterviewing

	iv.log.Info("questions loaded",
		zap.Int("count", len(resp.Questions)),
		zap.String("preset", techPresetID))
	return nil
}

// AnswerQuestion upserts an answer keyed by question id, stamping it with
// the question's category/scope and the answer time. Unknown question ids
// are a no-op. Answering in any order is allowed.
func (iv *Interviewer) AnswerQuestion(questionID, value string) {
	question := iv.findQuestion(questionID)
	if question == nil {
		return
	}
	iv.answers[questionID] = Answer{
		QuestionID: questionID,
		Value:      value,
		Category:   question.Category,
		Scope:      question.Scope,
		AnsweredAt: time.Now(),
	}
}

func (iv *Interviewer) findQuestion(id string) *Question {
	for i := range iv.questions {
		if iv.questions[i].ID == id {
			return &iv.questions[i]
		}
	}
	return nil
}

// RequiredAnswered reports whether every required question has an answer.
// It is derived information, never an enforced navigation precondition.
func (iv *Interviewer) RequiredAnswered() bool {
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
func (iv *Interviewer) NextQuestion() {
	if iv.current < len(iv.questions)-1 {
		iv.current++
	}
}

// PreviousQuestion moves the navigation position back
func (iv *Interviewer) PreviousQuestion() {
	if iv.current > 0 {
		iv.current--
	}
}

// GoToQuestion jumps to an index; out-of-bounds jumps are ignored
func (iv *Interviewer) GoToQuestion(index int) {
	if index >= 0 && index < len(iv.questions) {
		iv.current = index
	}
}

// GenerateEstimate converts the collected answers into an estimate via the
// collaborator, then reconciles the suggestion through the finalization
// service. Lands in PhaseComplete on success, PhaseError otherwise.
func (iv *Interviewer) GenerateEstimate(ctx context.Context) error {
	if iv.phase.busy() {
		return errors.Busy("generate estimate")
	}
	if len(iv.questions) == 0 {
		return errors.Validation("no interview in progress")
	}

	activities := iv.catalogs.ActivitiesFor(iv.techCategory)
	if len(activities) == 0 {
		msg := "no activities available for technology " + string(iv.techCategory)
		iv.fail(msg)
		return errors.CatalogGap(msg)
	}

	iv.phase = PhaseGenerating
	resp, err := iv.estimator.GenerateEstimate(ctx, EstimateRequest{
		Description:  iv.description,
		TechPresetID: iv.techPresetID,
		TechCategory: iv.techCategory,
		Answers:      iv.Answers(),
		Activities:   activities,
	})
	if err != nil {
		iv.fail("estimate generation failed")
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

	codes := make([]string, 0, len(resp.Activities))
	for _, a := range resp.Activities {
		codes = append(codes, a.Code)
	}

	finalized := finalize.Finalize(finalize.Request{
		ActivityCodes:          codes,
		SuggestedActivityCodes: codes,
		SuggestedDriverValues:  resp.SuggestedDriverValues,
		SuggestedRiskCodes:     resp.SuggestedRiskCodes,
		PresetID:               iv.techPresetID,
	}, iv.catalogs)

	iv.outcome = &Outcome{
		Response:  resp,
		Finalized: finalized,
		Title:     resp.GeneratedTitle,
	}
	iv.lastError = ""
	iv.phase = PhaseComplete

	iv.log.Info("estimate generated",
		zap.String("total_days", finalized.Result.TotalDays.String()),
		zap.Float64("confidence", resp.ConfidenceScore))
	return nil
}

// Reset returns the interviewer to idle, clearing accumulated state
func (iv *Interviewer) Reset() {
	iv.phase = PhaseIdle
	iv.description = ""
	iv.techPresetID = ""
	iv.techCategory = ""
	iv.questions = nil
	iv.answers = make(map[string]Answer)
	iv.current = 0
	iv.lastError = ""
	iv.outcome = nil
}
