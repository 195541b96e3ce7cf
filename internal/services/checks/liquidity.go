package checks

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/swaptriage/internal/entity"
)

// Liquidity verifies the solver had enough destination-asset balance to
// fulfill the order.
type Liquidity struct{}

func (Liquidity) Name() string { return "liquidity" }

func (Liquidity) Evaluate(_ context.Context, in *Input) (entity.CheckResult, error) {
	dst := in.Order.Destination
	if dst == nil {
		return entity.Unmatched(), nil
	}

	solverID := in.Order.SolverID

	solver, ok := findSolver(in.Liquidity, solverID)
	if !ok {
		return entity.Match(
			entity.ReasonLiquidityUnavailable,
			"No liquidity information found for the solver handling this order",
			entity.LiquidityEvidence{SolverID: solverID, Asset: dst.Asset},
		), nil
	}

	asset, ok := findAsset(solver.Liquidity, dst.Asset)
	if !ok {
		return entity.Match(
			entity.ReasonLiquidityUnavailable,
			"Solver does not have liquidity for the destination asset",
			entity.LiquidityEvidence{SolverID: solverID, Asset: dst.Asset},
		), nil
	}

	required, err := dst.AmountInt()
	if err != nil {
		return entity.CheckResult{}, errors.Wrap(err, "destination amount")
	}
	available, err := entity.ParseMinorUnits(asset.Balance)
	if err != nil {
		return entity.CheckResult{}, errors.Wrap(err, "solver balance")
	}

	if available.Cmp(required) < 0 {
		return entity.Match(
			entity.ReasonInsufficientLiquidity,
			"Solver liquidity was insufficient to fulfill the destination swap",
			entity.LiquidityEvidence{
				SolverID:         solverID,
				Asset:            dst.Asset,
				RequiredAmount:   required.String(),
				AvailableBalance: available.String(),
				ReadableBalance:  asset.ReadableBalance,
				FiatValue:        asset.FiatValue,
			},
		), nil
	}

	return entity.Unmatched(), nil
}

// solver identifiers are matched case-insensitively; asset identifiers exactly.
func findSolver(solvers []entity.SolverLiquidity, solverID string) (entity.SolverLiquidity, bool) {
	for _, s := range solvers {
		if strings.EqualFold(s.SolverID, solverID) {
			return s, true
		}
	}
	return entity.SolverLiquidity{}, false
}

func findAsset(assets []entity.AssetLiquidity, asset string) (entity.AssetLiquidity, bool) {
	for _, a := range assets {
		if a.Asset == asset {
			return a, true
		}
	}
	return entity.AssetLiquidity{}, false
}
