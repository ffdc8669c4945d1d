package catalog

import (
	"github.com/shopspring/decimal"

	"effort-estimate/core/types"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DemoSet returns the built-in demo catalogs used when a configured source
// is empty or unavailable.
func DemoSet() *Set {
	activities := []types.Activity{
		{ID: "act-analysis", Code: "ANALYSIS", Name: "Requirements analysis", BaseDays: d("2"), Group: "discovery", TechCategory: types.TechCategoryAll},
		{ID: "act-design", Code: "DESIGN", Name: "Solution design", BaseDays: d("3"), Group: "discovery", TechCategory: types.TechCategoryAll},
		{ID: "act-api-crud", Code: "API-CRUD", Name: "CRUD API endpoints", BaseDays: d("4"), Group: "build", TechCategory: "backend"},
		{ID: "act-api-int", Code: "API-INT", Name: "Third-party API integration", BaseDays: d("5"), Group: "build", TechCategory: "backend"},
		{ID: "act-db-schema", Code: "DB-SCHEMA", Name: "Database schema and migrations", BaseDays: d("2.5"), Group: "build", TechCategory: "backend"},
		{ID: "act-ui-forms", Code: "UI-FORMS", Name: "Form screens", BaseDays: d("3.5"), Group: "build", TechCategory: "frontend"},
		{ID: "act-ui-dash", Code: "UI-DASH", Name: "Dashboard views", BaseDays: d("4.5"), Group: "build", TechCategory: "frontend"},
		{ID: "act-mob-screens", Code: "MOB-SCREENS", Name: "Mobile screens", BaseDays: d("5"), Group: "build", TechCategory: "mobile"},
		{ID: "act-testing", Code: "TESTING", Name: "Test design and execution", BaseDays: d("3"), Group: "qa", TechCategory: types.TechCategoryAll},
		{ID: "act-deploy", Code: "DEPLOY", Name: "Deployment and handover", BaseDays: d("1.5"), Group: "delivery", TechCategory: types.TechCategoryAll},
	}

	drivers := []types.Driver{
		{
			ID: "drv-complexity", Code: "COMPLEXITY", Name: "Business complexity",
			Options: []types.DriverOption{
				{Value: "low", Label: "Low", Multiplier: d("1.0")},
				{Value: "medium", Label: "Medium", Multiplier: d("1.2")},
				{Value: "high", Label: "High", Multiplier: d("1.5")},
			},
		},
		{
			ID: "drv-integration", Code: "INTEGRATION", Name: "Integration complexity",
			Options: []types.DriverOption{
				{Value: "none", Label: "None", Multiplier: d("1.0")},
				{Value: "some", Label: "Some systems", Multiplier: d("1.1")},
				{Value: "many", Label: "Many systems", Multiplier: d("1.3")},
			},
		},
		{
			ID: "drv-team", Code: "TEAM", Name: "Team familiarity",
			Options: []types.DriverOption{
				{Value: "expert", Label: "Expert", Multiplier: d("1.0")},
				{Value: "mixed", Label: "Mixed", Multiplier: d("1.15")},
				{Value: "new", Label: "New to stack", Multiplier: d("1.4")},
			},
		},
	}

	risks := []types.Risk{
		{ID: "rsk-legacy", Code: "LEGACY", Name: "Legacy system involvement", Weight: 8},
		{ID: "rsk-vague", Code: "VAGUE-REQS", Name: "Vague requirements", Weight: 10},
		{ID: "rsk-deps", Code: "EXT-DEPS", Name: "External team dependencies", Weight: 6},
		{ID: "rsk-data", Code: "DATA-MIG", Name: "Data migration", Weight: 7},
		{ID: "rsk-compliance", Code: "COMPLIANCE", Name: "Compliance constraints", Weight: 5},
	}

	presets := []types.TechnologyPreset{
		{
			ID: "preset-backend", Name: "Backend service", TechCategory: "backend",
			DefaultActivityCodes: []string{"ANALYSIS", "DESIGN", "API-CRUD", "DB-SCHEMA", "TESTING", "DEPLOY"},
			DefaultDriverValues:  map[string]string{"COMPLEXITY": "medium", "INTEGRATION": "some", "TEAM": "expert"},
			DefaultRiskCodes:     []string{"EXT-DEPS"},
		},
		{
			ID: "preset-frontend", Name: "Web frontend", TechCategory: "frontend",
			DefaultActivityCodes: []string{"ANALYSIS", "UI-FORMS", "UI-DASH", "TESTING", "DEPLOY"},
			DefaultDriverValues:  map[string]string{"COMPLEXITY": "medium", "INTEGRATION": "none", "TEAM": "expert"},
			DefaultRiskCodes:     nil,
		},
		{
			ID: "preset-mobile", Name: "Mobile app", TechCategory: "mobile",
			DefaultActivityCodes: []string{"ANALYSIS", "DESIGN", "MOB-SCREENS", "TESTING", "DEPLOY"},
			DefaultDriverValues:  map[string]string{"COMPLEXITY": "medium", "INTEGRATION": "some", "TEAM": "mixed"},
			DefaultRiskCodes:     []string{"VAGUE-REQS"},
		},
	}

	return NewSet(activities, drivers, risks, presets)
}
