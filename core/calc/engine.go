// Package calc is the estimation calculation engine.
// It is a total, side-effect-free function over EstimationInput: malformed
// catalog references are filtered out by the finalization layer before this
// stage, so nothing here can fail.
package calc

import (
	"github.com/shopspring/decimal"

	"effort-estimate/core/types"
)

// dayPlaces is the output rounding for day figures. Internal arithmetic
// keeps full precision so repeated calls are bit-identical.
const dayPlaces = 2

// multiplierPlaces is the output rounding for the driver multiplier
const multiplierPlaces = 3

// BaseDays sums activity base days. Empty set yields 0.
func BaseDays(activities []types.SelectedActivity) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range activities {
		sum = sum.Add(a.BaseDays)
	}
	return sum
}

// DriverMultiplier multiplies resolved driver multipliers.
// Empty set yields the neutral 1.0.
func DriverMultiplier(drivers []types.SelectedDriver) decimal.Decimal {
	product := decimal.NewFromInt(1)
	for _, d := range drivers {
		product = product.Mul(d.Multiplier)
	}
	return product
}

// RiskScore sums risk weights. Empty set yields 0.
func RiskScore(risks []types.SelectedRisk) int {
	score := 0
	for _, r := range risks {
		score += r.Weight
	}
	return score
}

// ContingencyPercent steps the contingency buffer by cumulative risk score.
// Band boundaries are inclusive on the lower band: exactly 10 stays at 10%,
// exactly 11 moves to 15%.
func ContingencyPercent(riskScore int) int {
	switch {
	case riskScore <= 10:
		return 10
	case riskScore <= 20:
		return 15
	case riskScore <= 30:
		return 20
	default:
		return 25
	}
}

// Compute derives an EstimationResult from a normalized input.
// Day figures are rounded to 2 decimal places at this output boundary only.
func Compute(input types.EstimationInput) types.EstimationResult {
	baseDays := BaseDays(input.Activities)
	multiplier := DriverMultiplier(input.Drivers)
	subtotal := baseDays.Mul(multiplier)

	riskScore := RiskScore(input.Risks)
	percent := ContingencyPercent(riskScore)
	contingency := subtotal.Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100))
	total := subtotal.Add(contingency)

	return types.EstimationResult{
		BaseDays:           baseDays.Round(dayPlaces),
		DriverMultiplier:   multiplier.Round(multiplierPlaces),
		Subtotal:           subtotal.Round(dayPlaces),
		RiskScore:          riskScore,
		ContingencyPercent: percent,
		ContingencyDays:    contingency.Round(dayPlaces),
		TotalDays:          total.Round(dayPlaces),
		Breakdown: types.Breakdown{
			Activities: input.Activities,
			Drivers:    input.Drivers,
			Risks:      input.Risks,
		},
	}
}
