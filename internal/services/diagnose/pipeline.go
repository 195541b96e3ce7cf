// Package diagnose assembles the order diagnosis: classify the lifecycle
// state, then attribute a root cause for failure-like states.
package diagnose

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/swaptriage/internal/entity"
	"github.com/vadiminshakov/swaptriage/internal/services/checks"
	"go.uber.org/zap"
)

// Pipeline runs checks in declaration order and short-circuits on the first
// match. The order is a deliberate root-cause ranking: never evaluate checks
// out of order even when their data is already available.
type Pipeline struct {
	checks []checks.Check
	logger *zap.Logger
}

// NewPipeline creates a pipeline over the given checks, evaluated in order.
func NewPipeline(logger *zap.Logger, cs ...checks.Check) *Pipeline {
	return &Pipeline{checks: cs, logger: logger}
}

// Run evaluates the checks against the input. It returns the first match, an
// unmatched result when no check fires, or an error when a check could not
// run on the given data.
func (p *Pipeline) Run(ctx context.Context, in *checks.Input) (entity.CheckResult, error) {
	for _, c := range p.checks {
		result, err := c.Evaluate(ctx, in)
		if err != nil {
			return entity.CheckResult{}, errors.Wrapf(err, "%s check", c.Name())
		}
		if result.Matched {
			p.logger.Debug("check matched",
				zap.String("check", c.Name()),
				zap.String("reason_code", string(result.ReasonCode)))
			return result, nil
		}
	}

	return entity.Unmatched(), nil
}

// DefaultChecks returns the required priority order: deadline first (cheapest
// and most common root cause), price fluctuation last (needs the extra price
// fetch).
func DefaultChecks(amountPolicy checks.AmountMismatch) []checks.Check {
	return []checks.Check{
		checks.Deadline{},
		amountPolicy,
		checks.Liquidity{},
		checks.NewPriceFluctuation(),
	}
}
