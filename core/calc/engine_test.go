package calc

import (
	"testing"

	"github.com/shopspring/decimal"

	"effort-estimate/core/types"
)

func days(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBaseDaysAdditivity(t *testing.T) {
	activities := []types.SelectedActivity{
		{Code: "A", BaseDays: days("3")},
		{Code: "B", BaseDays: days("8")},
		{Code: "C", BaseDays: days("4")},
	}

	sum := BaseDays(activities)
	if !sum.Equal(days("15")) {
		t.Fatalf("expected 15, got %s", sum)
	}

	// Removing one activity decreases the sum by exactly its days
	without := BaseDays(activities[:2])
	if !sum.Sub(without).Equal(days("4")) {
		t.Errorf("expected removal delta 4, got %s", sum.Sub(without))
	}

	if !BaseDays(nil).Equal(decimal.Zero) {
		t.Error("empty set should yield 0")
	}
}

func TestDriverMultiplier(t *testing.T) {
	if !DriverMultiplier(nil).Equal(days("1")) {
		t.Error("empty driver set should yield neutral 1.0")
	}

	drivers := []types.SelectedDriver{
		{Code: "D1", Value: "high", Multiplier: days("1.2")},
		{Code: "D2", Value: "medium", Multiplier: days("1.1")},
	}
	product := DriverMultiplier(drivers)
	if !product.Equal(days("1.32")) {
		t.Errorf("expected 1.32, got %s", product)
	}
}

func TestContingencyPercentBands(t *testing.T) {
	tests := []struct {
		score   int
		percent int
	}{
		{0, 10},
		{10, 10},
		{11, 15},
		{20, 15},
		{21, 20},
		{30, 20},
		{31, 25},
		{100, 25},
	}

	for _, tt := range tests {
		if got := ContingencyPercent(tt.score); got != tt.percent {
			t.Errorf("score %d: expected %d%%, got %d%%", tt.score, tt.percent, got)
		}
	}
}

func TestComputeEndToEnd(t *testing.T) {
	input := types.EstimationInput{
		Activities: []types.SelectedActivity{
			{Code: "A", BaseDays: days("3")},
			{Code: "B", BaseDays: days("8")},
			{Code: "C", BaseDays: days("4")},
		},
		Drivers: []types.SelectedDriver{
			{Code: "D1", Value: "high", Multiplier: days("1.2")},
			{Code: "D2", Value: "medium", Multiplier: days("1.1")},
		},
		Risks: []types.SelectedRisk{
			{Code: "R1", Weight: 5},
			{Code: "R2", Weight: 8},
		},
	}

	result := Compute(input)

	if !result.BaseDays.Equal(days("15")) {
		t.Errorf("base days: expected 15, got %s", result.BaseDays)
	}
	if !result.DriverMultiplier.Equal(days("1.32")) {
		t.Errorf("multiplier: expected 1.32, got %s", result.DriverMultiplier)
	}
	if !result.Subtotal.Equal(days("19.8")) {
		t.Errorf("subtotal: expected 19.8, got %s", result.Subtotal)
	}
	if result.RiskScore != 13 {
		t.Errorf("risk score: expected 13, got %d", result.RiskScore)
	}
	if result.ContingencyPercent != 15 {
		t.Errorf("contingency: expected 15%%, got %d%%", result.ContingencyPercent)
	}
	if !result.ContingencyDays.Equal(days("2.97")) {
		t.Errorf("contingency days: expected 2.97, got %s", result.ContingencyDays)
	}
	if !result.TotalDays.Equal(days("22.77")) {
		t.Errorf("total days: expected 22.77, got %s", result.TotalDays)
	}
}

func TestComputeDeterminism(t *testing.T) {
	input := types.EstimationInput{
		Activities: []types.SelectedActivity{
			{Code: "A", BaseDays: days("2.5")},
			{Code: "B", BaseDays: days("1.25")},
		},
		Drivers: []types.SelectedDriver{
			{Code: "D1", Value: "high", Multiplier: days("1.15")},
		},
		Risks: []types.SelectedRisk{{Code: "R1", Weight: 12}},
	}

	first := Compute(input)
	second := Compute(input)

	if first.TotalDays.String() != second.TotalDays.String() {
		t.Errorf("non-deterministic total: %s vs %s", first.TotalDays, second.TotalDays)
	}
	if first.Subtotal.String() != second.Subtotal.String() {
		t.Errorf("non-deterministic subtotal: %s vs %s", first.Subtotal, second.Subtotal)
	}
}

func TestComputeEmptyInput(t *testing.T) {
	result := Compute(types.EstimationInput{})

	if !result.BaseDays.Equal(decimal.Zero) {
		t.Errorf("expected 0 base days, got %s", result.BaseDays)
	}
	if !result.DriverMultiplier.Equal(days("1")) {
		t.Errorf("expected neutral multiplier, got %s", result.DriverMultiplier)
	}
	if result.ContingencyPercent != 10 {
		t.Errorf("zero risk should sit in the lowest band, got %d%%", result.ContingencyPercent)
	}
	if !result.TotalDays.Equal(decimal.Zero) {
		t.Errorf("expected 0 total, got %s", result.TotalDays)
	}
}
