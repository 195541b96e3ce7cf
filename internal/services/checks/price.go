package checks

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/swaptriage/internal/entity"
)

var (
	// DefaultDropThreshold is the fixed 5% price-drop tolerance.
	DefaultDropThreshold = decimal.NewFromFloat(0.05)

	// likeAssetTolerance skips pairs whose current price ratio is within
	// ±0.5% of 1: same-value assets move together and are not a
	// fluctuation risk.
	likeAssetTolerance = decimal.NewFromFloat(0.005)
)

// PriceFluctuation matches orders whose asset prices moved beyond the allowed
// threshold since creation. It runs last in the pipeline because it needs the
// extra fiat price fetch.
type PriceFluctuation struct {
	DropThreshold decimal.Decimal
}

// NewPriceFluctuation returns the check with the fixed default threshold.
func NewPriceFluctuation() PriceFluctuation {
	return PriceFluctuation{DropThreshold: DefaultDropThreshold}
}

func (PriceFluctuation) Name() string { return "price_fluctuation" }

func (c PriceFluctuation) Evaluate(_ context.Context, in *Input) (entity.CheckResult, error) {
	src, dst := in.Order.Source, in.Order.Destination
	if src == nil || dst == nil {
		return entity.Unmatched(), nil
	}

	originalInput, originalOutput := src.AssetPrice, dst.AssetPrice
	if originalInput == nil || originalOutput == nil {
		return entity.Unmatched(), nil
	}

	currentInput, ok := in.Fiat.Price(src.Asset)
	if !ok {
		return entity.Unmatched(), nil
	}
	currentOutput, ok := in.Fiat.Price(dst.Asset)
	if !ok {
		return entity.Unmatched(), nil
	}

	ratio := currentInput.Div(currentOutput)
	if ratio.Sub(decimal.NewFromInt(1)).Abs().LessThan(likeAssetTolerance) {
		return entity.Unmatched(), nil
	}

	if withinPriceThreshold(*originalInput, *originalOutput, currentInput, currentOutput, c.DropThreshold) {
		return entity.Unmatched(), nil
	}

	return entity.Match(
		entity.ReasonPriceFluctuation,
		"Market prices moved beyond the allowed threshold since order creation",
		entity.PriceFluctuationEvidence{
			OriginalInputPrice:  *originalInput,
			OriginalOutputPrice: *originalOutput,
			CurrentInputPrice:   currentInput,
			CurrentOutputPrice:  currentOutput,
			Threshold:           c.DropThreshold,
		},
	), nil
}

// withinPriceThreshold holds only when both protections hold: the user still
// receives at least (1 - threshold) of the original output value, and the
// combined system loss (input decrease + output increase) stays inside the
// threshold. Non-positive original prices always fail.
func withinPriceThreshold(originalInput, originalOutput, currentInput, currentOutput, dropThreshold decimal.Decimal) bool {
	if !originalInput.IsPositive() || !originalOutput.IsPositive() {
		return false
	}

	inputDecrease := originalInput.Sub(currentInput).Div(originalInput)
	outputIncrease := currentOutput.Sub(originalOutput).Div(originalOutput)

	userValueProtection := currentOutput.GreaterThanOrEqual(
		originalOutput.Mul(decimal.NewFromInt(1).Sub(dropThreshold)))
	systemValueProtection := inputDecrease.Add(outputIncrease).LessThanOrEqual(dropThreshold)

	return userValueProtection && systemValueProtection
}
