// Package checks contains the individual diagnostic checks the pipeline runs
// against a failed or stalled order.
package checks

import (
	"context"
	"time"

	"github.com/vadiminshakov/swaptriage/internal/entity"
)

// Input carries the snapshots a check may consult. A check treats a missing
// optional field as "does not apply" and reports no match; a check never
// fetches data itself.
type Input struct {
	Order     *entity.Order
	Legacy    *entity.LegacyOrder
	Liquidity []entity.SolverLiquidity
	Fiat      entity.FiatPrices
	Now       time.Time
}

// Check is one diagnostic predicate. An error means the check could not run
// on the given data (for example a malformed amount) and must abort the
// diagnosis, never degrade to "unmatched".
type Check interface {
	Name() string
	Evaluate(ctx context.Context, in *Input) (entity.CheckResult, error)
}
