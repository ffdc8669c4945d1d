package catalog

import (
	"context"
	"errors"
	"testing"

	"effort-estimate/core/types"
)

func TestActivitiesForIncludesWildcard(t *testing.T) {
	set := DemoSet()

	backend := set.ActivitiesFor("backend")
	for _, a := range backend {
		if a.TechCategory != "backend" && a.TechCategory != types.TechCategoryAll {
			t.Errorf("activity %s leaked into backend slice (category %s)", a.Code, a.TechCategory)
		}
	}

	// Wildcard activities must appear for every category
	found := false
	for _, a := range backend {
		if a.Code == "TESTING" {
			found = true
		}
	}
	if !found {
		t.Error("wildcard activity TESTING missing from backend slice")
	}

	// Unknown category still yields the wildcard entries
	unknown := set.ActivitiesFor("cobol")
	for _, a := range unknown {
		if a.TechCategory != types.TechCategoryAll {
			t.Errorf("non-wildcard activity %s returned for unknown category", a.Code)
		}
	}
	if len(unknown) == 0 {
		t.Error("expected wildcard activities for unknown category")
	}
}

func TestNormalizeDriverValues(t *testing.T) {
	set := DemoSet()

	tests := []struct {
		name   string
		input  map[string]string
		expect map[string]string
	}{
		{
			name:   "code keyed",
			input:  map[string]string{"COMPLEXITY": "high", "TEAM": "mixed"},
			expect: map[string]string{"drv-complexity": "high", "drv-team": "mixed"},
		},
		{
			name:   "id keyed",
			input:  map[string]string{"drv-complexity": "low"},
			expect: map[string]string{"drv-complexity": "low"},
		},
		{
			name:   "unknown keys dropped",
			input:  map[string]string{"NOPE": "high", "INTEGRATION": "many"},
			expect: map[string]string{"drv-integration": "many"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := set.NormalizeDriverValues(tt.input)
			if len(got) != len(tt.expect) {
				t.Fatalf("expected %d entries, got %d", len(tt.expect), len(got))
			}
			for k, v := range tt.expect {
				if got[k] != v {
					t.Errorf("key %s: expected %s, got %s", k, v, got[k])
				}
			}
		})
	}

	if set.NormalizeDriverValues(nil) != nil {
		t.Error("nil input must stay nil, not become empty")
	}
}

func TestNormalizeRiskIDs(t *testing.T) {
	set := DemoSet()

	got := set.NormalizeRiskIDs([]string{"LEGACY", "rsk-vague", "bogus"})
	if len(got) != 2 {
		t.Fatalf("expected 2 normalized risks, got %d: %v", len(got), got)
	}
	if got[0] != "rsk-legacy" || got[1] != "rsk-vague" {
		t.Errorf("unexpected normalization result: %v", got)
	}
}

// emptySource returns empty catalogs, and errors for risks
type emptySource struct{}

func (emptySource) FetchActivities(ctx context.Context) ([]types.Activity, error) { return nil, nil }
func (emptySource) FetchDrivers(ctx context.Context) ([]types.Driver, error)      { return nil, nil }
func (emptySource) FetchRisks(ctx context.Context) ([]types.Risk, error) {
	return nil, errors.New("unavailable")
}
func (emptySource) FetchPresets(ctx context.Context) ([]types.TechnologyPreset, error) {
	return nil, nil
}

func TestLoadSetFallsBackToDemo(t *testing.T) {
	set := LoadSet(context.Background(), emptySource{})

	if len(set.Activities) == 0 || len(set.Drivers) == 0 || len(set.Risks) == 0 || len(set.Presets) == 0 {
		t.Fatal("expected demo fallback for every empty or failing catalog")
	}
	if _, ok := set.ActivityByCode("API-CRUD"); !ok {
		t.Error("demo activity missing after fallback")
	}
}

// countingSource counts fetches to prove caching
type countingSource struct {
	activities int
}

func (c *countingSource) FetchActivities(ctx context.Context) ([]types.Activity, error) {
	c.activities++
	return DemoSet().Activities, nil
}
func (c *countingSource) FetchDrivers(ctx context.Context) ([]types.Driver, error) {
	return DemoSet().Drivers, nil
}
func (c *countingSource) FetchRisks(ctx context.Context) ([]types.Risk, error) {
	return DemoSet().Risks, nil
}
func (c *countingSource) FetchPresets(ctx context.Context) ([]types.TechnologyPreset, error) {
	return DemoSet().Presets, nil
}

func TestCachedSource(t *testing.T) {
	counter := &countingSource{}
	cached, err := NewCachedSource(counter, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := cached.FetchActivities(ctx); err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
	}
	if counter.activities != 1 {
		t.Errorf("expected 1 backing fetch, got %d", counter.activities)
	}

	cached.Invalidate()
	if _, err := cached.FetchActivities(ctx); err != nil {
		t.Fatalf("fetch after invalidate failed: %v", err)
	}
	if counter.activities != 2 {
		t.Errorf("expected refetch after invalidate, got %d fetches", counter.activities)
	}
}
