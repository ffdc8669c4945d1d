package selection

import (
	"testing"

	"github.com/shopspring/decimal"

	"effort-estimate/core/catalog"
	"effort-estimate/core/types"
	"effort-estimate/internal/errors"
)

func TestToggleActivityIdempotent(t *testing.T) {
	m := NewManager(catalog.DemoSet())

	if err := m.ToggleActivity("act-api-crud"); err != nil {
		t.Fatalf("toggle on failed: %v", err)
	}
	if ids := m.SelectedActivityIDs(); len(ids) != 1 || ids[0] != "act-api-crud" {
		t.Fatalf("unexpected selection: %v", ids)
	}

	if err := m.ToggleActivity("act-api-crud"); err != nil {
		t.Fatalf("toggle off failed: %v", err)
	}
	if ids := m.SelectedActivityIDs(); len(ids) != 0 {
		t.Fatalf("expected empty selection, got %v", ids)
	}
}

func TestToggleActivityCompatibility(t *testing.T) {
	m := NewManager(catalog.DemoSet())

	if _, err := m.ApplyPresetDefaults("preset-backend"); err != nil {
		t.Fatalf("preset apply failed: %v", err)
	}
	before := m.SelectedActivityIDs()

	// Frontend-only activity against a backend preset: rejected, no change
	err := m.ToggleActivity("act-ui-forms")
	if !errors.IsType(err, errors.TypeCompatibility) {
		t.Fatalf("expected compatibility error, got %v", err)
	}
	after := m.SelectedActivityIDs()
	if len(before) != len(after) {
		t.Error("rejected toggle must leave the selection unchanged")
	}

	// Wildcard activity is always allowed
	if err := m.ToggleActivity("act-testing"); err != nil {
		t.Errorf("wildcard activity should be allowed: %v", err)
	}
}

func TestNoPresetAllowsEverything(t *testing.T) {
	m := NewManager(catalog.DemoSet())

	for _, id := range []string{"act-api-crud", "act-ui-forms", "act-mob-screens"} {
		if err := m.ToggleActivity(id); err != nil {
			t.Errorf("activity %s should be allowed without a preset: %v", id, err)
		}
	}
}

func TestApplyPresetDefaults(t *testing.T) {
	m := NewManager(catalog.DemoSet())

	dropped, err := m.ApplyPresetDefaults("preset-backend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dropped) != 0 {
		t.Errorf("demo preset should not drop activities: %v", dropped)
	}

	if got := len(m.SelectedActivityIDs()); got != 6 {
		t.Errorf("expected 6 default activities, got %d", got)
	}
	values := m.DriverValues()
	if values["drv-complexity"] != "medium" || values["drv-integration"] != "some" {
		t.Errorf("preset driver defaults not converted to id-keyed form: %v", values)
	}
	if risks := m.SelectedRiskIDs(); len(risks) != 1 || risks[0] != "rsk-deps" {
		t.Errorf("unexpected default risks: %v", risks)
	}
}

func TestApplyPresetReplacesPriorSelection(t *testing.T) {
	m := NewManager(catalog.DemoSet())

	if _, err := m.ApplyAISuggestions([]string{"act-analysis"}, nil, nil); err != nil {
		t.Fatalf("suggestion apply failed: %v", err)
	}
	if _, err := m.ApplyPresetDefaults("preset-frontend"); err != nil {
		t.Fatalf("preset apply failed: %v", err)
	}

	// AI marks cleared by preset application
	input := m.Input()
	for _, a := range input.Activities {
		if a.AISuggested {
			t.Errorf("activity %s kept its AI-suggested mark across preset apply", a.Code)
		}
	}
}

func TestApplyAISuggestionsFiltersIncompatible(t *testing.T) {
	m := NewManager(catalog.DemoSet())
	if _, err := m.ApplyPresetDefaults("preset-backend"); err != nil {
		t.Fatalf("preset apply failed: %v", err)
	}

	dropped, err := m.ApplyAISuggestions([]string{"act-api-int", "act-ui-forms", "act-testing"}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dropped) != 1 || dropped[0] != "act-ui-forms" {
		t.Errorf("expected only the frontend activity dropped, got %v", dropped)
	}
	if got := len(m.SelectedActivityIDs()); got != 2 {
		t.Errorf("expected 2 surviving activities, got %d", got)
	}
}

func TestApplyAISuggestionsAllIncompatible(t *testing.T) {
	m := NewManager(catalog.DemoSet())
	if _, err := m.ApplyPresetDefaults("preset-backend"); err != nil {
		t.Fatalf("preset apply failed: %v", err)
	}

	_, err := m.ApplyAISuggestions([]string{"act-ui-forms", "act-ui-dash"}, nil, nil)
	if !errors.IsType(err, errors.TypeCompatibility) {
		t.Fatalf("expected compatibility error when nothing survives, got %v", err)
	}
}

func TestApplyAISuggestionsResetOnAbsence(t *testing.T) {
	m := NewManager(catalog.DemoSet())

	if err := m.SetDriverValue("drv-complexity", "high"); err != nil {
		t.Fatalf("set driver failed: %v", err)
	}
	if err := m.ToggleRisk("rsk-legacy"); err != nil {
		t.Fatalf("toggle risk failed: %v", err)
	}

	// Omitted driver values and risks clear prior state
	if _, err := m.ApplyAISuggestions([]string{"act-analysis"}, nil, nil); err != nil {
		t.Fatalf("suggestion apply failed: %v", err)
	}
	if values := m.DriverValues(); len(values) != 0 {
		t.Errorf("expected driver values cleared, got %v", values)
	}
	if risks := m.SelectedRiskIDs(); len(risks) != 0 {
		t.Errorf("expected risks cleared, got %v", risks)
	}
}

func TestApplyAISuggestionsAcceptsCodeKeyedValues(t *testing.T) {
	m := NewManager(catalog.DemoSet())

	_, err := m.ApplyAISuggestions(
		[]string{"act-analysis"},
		map[string]string{"COMPLEXITY": "high"},
		[]string{"LEGACY"},
	)
	if err != nil {
		t.Fatalf("suggestion apply failed: %v", err)
	}

	if values := m.DriverValues(); values["drv-complexity"] != "high" {
		t.Errorf("code-keyed driver values not normalized: %v", values)
	}
	if risks := m.SelectedRiskIDs(); len(risks) != 1 || risks[0] != "rsk-legacy" {
		t.Errorf("code-keyed risks not normalized: %v", risks)
	}
}

func TestResultReactsToMutations(t *testing.T) {
	m := NewManager(catalog.DemoSet())

	if m.Result() != nil {
		t.Fatal("empty selection should have a nil result")
	}

	if err := m.ToggleActivity("act-api-crud"); err != nil { // 4 days
		t.Fatalf("toggle failed: %v", err)
	}
	result := m.Result()
	if result == nil {
		t.Fatal("expected a result after selecting an activity")
	}
	if result.BaseDays.String() != "4" {
		t.Errorf("expected 4 base days, got %s", result.BaseDays)
	}

	// All drivers neutral at 1.0, no risks: lowest contingency band
	if result.ContingencyPercent != 10 {
		t.Errorf("expected 10%% contingency, got %d%%", result.ContingencyPercent)
	}
	if result.TotalDays.String() != "4.4" {
		t.Errorf("expected 4.4 total days, got %s", result.TotalDays)
	}

	if err := m.SetDriverValue("drv-complexity", "high"); err != nil { // x1.5
		t.Fatalf("set driver failed: %v", err)
	}
	result = m.Result()
	if result.Subtotal.String() != "6" {
		t.Errorf("expected subtotal 6, got %s", result.Subtotal)
	}

	m.ResetSelections()
	if m.Result() != nil {
		t.Error("reset selection should have a nil result")
	}
}

func TestUnknownIDsRejected(t *testing.T) {
	m := NewManager(catalog.DemoSet())

	if err := m.ToggleActivity("nope"); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected not-found for unknown activity, got %v", err)
	}
	if err := m.SetDriverValue("nope", "high"); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected not-found for unknown driver, got %v", err)
	}
	if err := m.ToggleRisk("nope"); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected not-found for unknown risk, got %v", err)
	}
	if _, err := m.ApplyPresetDefaults("nope"); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected not-found for unknown preset, got %v", err)
	}
}

func TestApplyPresetDefaultsDropsMissingActivities(t *testing.T) {
	activities := []types.Activity{
		{ID: "act-design", Code: "DESIGN", Name: "Solution design", BaseDays: decimal.RequireFromString("3"), TechCategory: types.TechCategoryAll},
	}
	presets := []types.TechnologyPreset{
		{ID: "preset-partial", Name: "Partially stale", TechCategory: "backend", DefaultActivityCodes: []string{"DESIGN", "RETIRED"}},
	}
	m := NewManager(catalog.NewSet(activities, nil, nil, presets))

	dropped, err := m.ApplyPresetDefaults("preset-partial")
	if err != nil {
		t.Fatalf("preset apply failed: %v", err)
	}
	if len(dropped) != 1 || dropped[0] != "RETIRED" {
		t.Errorf("expected RETIRED dropped, got %v", dropped)
	}
	if ids := m.SelectedActivityIDs(); len(ids) != 1 || ids[0] != "act-design" {
		t.Errorf("expected surviving default selected, got %v", ids)
	}
}

func TestApplyPresetDefaultsUnusablePreset(t *testing.T) {
	activities := []types.Activity{
		{ID: "act-design", Code: "DESIGN", Name: "Solution design", BaseDays: decimal.RequireFromString("3"), TechCategory: types.TechCategoryAll},
	}
	presets := []types.TechnologyPreset{
		{ID: "preset-stale", Name: "Fully stale", TechCategory: "backend", DefaultActivityCodes: []string{"RETIRED", "GONE"}},
	}
	m := NewManager(catalog.NewSet(activities, nil, nil, presets))

	dropped, err := m.ApplyPresetDefaults("preset-stale")
	if !errors.IsType(err, errors.TypeCatalogGap) {
		t.Fatalf("expected catalog gap error, got %v", err)
	}
	if len(dropped) != 2 {
		t.Errorf("expected both defaults dropped, got %v", dropped)
	}
	if ids := m.SelectedActivityIDs(); len(ids) != 0 {
		t.Errorf("unusable preset must leave the selection empty, got %v", ids)
	}
	if m.Result() != nil {
		t.Error("expected no result for an empty selection")
	}
}
