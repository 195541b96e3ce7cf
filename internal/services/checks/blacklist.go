package checks

import (
	"context"

	"github.com/vadiminshakov/swaptriage/internal/entity"
)

// Blacklist matches when the legacy schema flags the user as blacklisted.
// The orchestrator evaluates it before any lifecycle branching.
type Blacklist struct{}

func (Blacklist) Name() string { return "blacklist" }

func (Blacklist) Evaluate(_ context.Context, in *Input) (entity.CheckResult, error) {
	if in.Legacy == nil || !in.Legacy.IsBlacklisted {
		return entity.Unmatched(), nil
	}

	return entity.Match(
		entity.ReasonUserBlacklisted,
		"User address is blacklisted and cannot participate in orders",
		entity.BlacklistEvidence{
			IsBlacklisted: true,
			CreatedAt:     in.Legacy.CreatedAt,
		},
	), nil
}
