package checks

import (
	"context"
	"fmt"
	"math"

	"github.com/vadiminshakov/swaptriage/internal/entity"
)

// Deadline matches orders whose source leg was initiated too late, or never.
// It runs first in the pipeline: it is the cheapest check and the most common
// root cause.
type Deadline struct{}

func (Deadline) Name() string { return "deadline" }

func (Deadline) Evaluate(_ context.Context, in *Input) (entity.CheckResult, error) {
	legacy := in.Legacy
	if legacy == nil {
		return entity.Unmatched(), nil
	}

	deadline, ok := legacy.DeadlineTime()
	if !ok {
		return entity.Unmatched(), nil
	}

	initiatedAt := legacy.SourceInitiatedAt
	if initiatedAt == nil {
		return entity.Match(
			entity.ReasonDeadlineMissed,
			"User never initiated before deadline",
			entity.DeadlineEvidence{
				CreatedAt: legacy.CreatedAt,
				Deadline:  deadline,
			},
		), nil
	}

	if initiatedAt.After(deadline) {
		delayMinutes := int64(math.Round(initiatedAt.Sub(deadline).Minutes()))
		return entity.Match(
			entity.ReasonDeadlineMissed,
			fmt.Sprintf("User initiated %d minutes after deadline", delayMinutes),
			entity.DeadlineEvidence{
				CreatedAt:         legacy.CreatedAt,
				Deadline:          deadline,
				InitiateTimestamp: initiatedAt,
				DelayMinutes:      &delayMinutes,
			},
		), nil
	}

	return entity.Unmatched(), nil
}
