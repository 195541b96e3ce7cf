// Package status collapses raw order fields into a small lifecycle state.
package status

import (
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/swaptriage/internal/entity"
)

// Classifier maps an order snapshot (plus legacy deadline data) to one
// lifecycle state. Implementations are pure functions of their inputs and now.
type Classifier interface {
	Classify(order *entity.Order, legacy *entity.LegacyOrder, now time.Time) entity.Status
}

const (
	VariantInitiationFirst = "initiation_first"
	VariantDeadlineFirst   = "deadline_first"
)

// FromVariant returns the classifier for a configured variant name.
func FromVariant(name string) (Classifier, error) {
	switch name {
	case VariantInitiationFirst, "":
		return InitiationFirst{}, nil
	case VariantDeadlineFirst:
		return DeadlineFirst{}, nil
	default:
		return nil, errors.Errorf("unknown classifier variant %q", name)
	}
}

// InitiationFirst is the default classifier. Redemption beats refund, refund
// beats everything below, and an order nobody initiated is reported as
// not_initiated even when its deadline has already passed.
type InitiationFirst struct{}

func (InitiationFirst) Classify(order *entity.Order, legacy *entity.LegacyOrder, now time.Time) entity.Status {
	src, dst := order.Source, order.Destination

	switch {
	case src.Redeemed() && dst.Redeemed():
		return entity.StatusCompleted
	case src.Refunded() || dst.Refunded():
		return entity.StatusRefunded
	case !src.Initiated() && !dst.Initiated():
		return entity.StatusNotInitiated
	}

	if deadline, ok := legacy.DeadlineTime(); ok && now.After(deadline) {
		return entity.StatusExpired
	}

	return entity.StatusInProgress
}

// DeadlineFirst keeps the ordering of the first-generation classifier: a
// passed deadline wins over "never initiated", so a stale un-initiated order
// comes back as expired. Kept as a selectable variant, not the default.
type DeadlineFirst struct{}

func (DeadlineFirst) Classify(order *entity.Order, legacy *entity.LegacyOrder, now time.Time) entity.Status {
	src, dst := order.Source, order.Destination

	switch {
	case src.Redeemed() && dst.Redeemed():
		return entity.StatusCompleted
	case src.Refunded() || dst.Refunded():
		return entity.StatusRefunded
	}

	if deadline, ok := legacy.DeadlineTime(); ok && now.After(deadline) {
		return entity.StatusExpired
	}

	if !src.Initiated() && !dst.Initiated() {
		return entity.StatusNotInitiated
	}

	return entity.StatusInProgress
}
