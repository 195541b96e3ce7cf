package checks

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/swaptriage/internal/entity"
)

// AmountPolicy selects which partial-fill shapes count as a mismatch. The
// first-generation check flagged any unredeemed partial fill; requiring an
// initiation is the stricter policy and the default, since an uninitiated leg
// being unfilled is not an anomaly.
type AmountPolicy string

const (
	PolicyStrictInitiation AmountPolicy = "strict_initiation"
	PolicyAnyUnredeemed    AmountPolicy = "any_unredeemed"
)

// AmountMismatchFromPolicy returns the check for a configured policy name.
func AmountMismatchFromPolicy(name string) (AmountMismatch, error) {
	switch AmountPolicy(name) {
	case PolicyStrictInitiation, "":
		return AmountMismatch{Policy: PolicyStrictInitiation}, nil
	case PolicyAnyUnredeemed:
		return AmountMismatch{Policy: PolicyAnyUnredeemed}, nil
	default:
		return AmountMismatch{}, errors.Errorf("unknown amount mismatch policy %q", name)
	}
}

// AmountMismatch compares requested and filled amounts on both legs using
// exact integer arithmetic on minor units.
type AmountMismatch struct {
	Policy AmountPolicy
}

func (AmountMismatch) Name() string { return "amount_mismatch" }

func (c AmountMismatch) Evaluate(_ context.Context, in *Input) (entity.CheckResult, error) {
	src, dst := in.Order.Source, in.Order.Destination
	if src == nil || dst == nil {
		return entity.Unmatched(), nil
	}

	srcAmount, srcFilled, err := legAmounts(src)
	if err != nil {
		return entity.CheckResult{}, errors.Wrap(err, "source leg")
	}
	dstAmount, dstFilled, err := legAmounts(dst)
	if err != nil {
		return entity.CheckResult{}, errors.Wrap(err, "destination leg")
	}

	evidence := entity.AmountMismatchEvidence{
		Source: entity.AmountLegEvidence{
			Requested: srcAmount.String(),
			Filled:    srcFilled.String(),
			Initiated: src.Initiated(),
			Redeemed:  src.Redeemed(),
		},
		Destination: entity.AmountLegEvidence{
			Requested: dstAmount.String(),
			Filled:    dstFilled.String(),
			Initiated: dst.Initiated(),
			Redeemed:  dst.Redeemed(),
		},
	}

	// Overfill is a data-integrity anomaly regardless of redemption state.
	if srcFilled.Cmp(srcAmount) > 0 || dstFilled.Cmp(dstAmount) > 0 {
		return entity.Match(
			entity.ReasonOverfilledAmount,
			"Filled amount exceeds the requested amount, indicating an overfill anomaly",
			evidence,
		), nil
	}

	if c.partialFill(src, srcAmount, srcFilled) || c.partialFill(dst, dstAmount, dstFilled) {
		return entity.Match(
			c.partialFillReason(),
			"Swap was only partially filled and never redeemed, likely due to liquidity or execution issues",
			evidence,
		), nil
	}

	return entity.Unmatched(), nil
}

func (c AmountMismatch) partialFill(leg *entity.Swap, amount, filled *big.Int) bool {
	if filled.Cmp(amount) >= 0 || leg.Redeemed() {
		return false
	}
	if c.Policy == PolicyAnyUnredeemed {
		return true
	}
	return leg.Initiated()
}

func (c AmountMismatch) partialFillReason() entity.ReasonCode {
	if c.Policy == PolicyAnyUnredeemed {
		return entity.ReasonPartialFillUnredeemed
	}
	return entity.ReasonPartialFill
}

func legAmounts(leg *entity.Swap) (amount, filled *big.Int, err error) {
	if amount, err = leg.AmountInt(); err != nil {
		return nil, nil, err
	}
	if filled, err = leg.FilledAmountInt(); err != nil {
		return nil, nil, err
	}
	return amount, filled, nil
}
