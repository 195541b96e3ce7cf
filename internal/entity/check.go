package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReasonCode is a stable machine-readable identifier for a diagnosed root cause.
type ReasonCode string

const (
	ReasonUserBlacklisted       ReasonCode = "user_blacklisted"
	ReasonDeadlineMissed        ReasonCode = "deadline_missed"
	ReasonOverfilledAmount      ReasonCode = "overfilled_amount"
	ReasonPartialFill           ReasonCode = "partial_fill_after_initiation"
	ReasonPartialFillUnredeemed ReasonCode = "partial_fill_unredeemed"
	ReasonLiquidityUnavailable  ReasonCode = "liquidity_unavailable"
	ReasonInsufficientLiquidity ReasonCode = "insufficient_liquidity"
	ReasonPriceFluctuation      ReasonCode = "price_fluctuation_exceeded"
)

// Evidence is the structured factual payload backing a matched check.
// Each check has its own evidence shape; the marker method keeps the set closed.
type Evidence interface {
	evidence()
}

type BlacklistEvidence struct {
	IsBlacklisted bool      `json:"is_blacklisted"`
	CreatedAt     time.Time `json:"created_at"`
}

type DeadlineEvidence struct {
	CreatedAt         time.Time  `json:"created_at"`
	Deadline          time.Time  `json:"deadline"`
	InitiateTimestamp *time.Time `json:"initiate_timestamp"`
	DelayMinutes      *int64     `json:"delay_minutes,omitempty"`
}

// AmountLegEvidence reports one leg's requested/filled amounts for an
// amount-mismatch match.
type AmountLegEvidence struct {
	Requested string `json:"requested"`
	Filled    string `json:"filled"`
	Initiated bool   `json:"initiated"`
	Redeemed  bool   `json:"redeemed"`
}

type AmountMismatchEvidence struct {
	Source      AmountLegEvidence `json:"source"`
	Destination AmountLegEvidence `json:"destination"`
}

type LiquidityEvidence struct {
	SolverID         string `json:"solver_id"`
	Asset            string `json:"asset"`
	RequiredAmount   string `json:"required_amount,omitempty"`
	AvailableBalance string `json:"available_balance,omitempty"`
	ReadableBalance  string `json:"readable_balance,omitempty"`
	FiatValue        string `json:"fiat_value,omitempty"`
}

type PriceFluctuationEvidence struct {
	OriginalInputPrice  decimal.Decimal `json:"original_input_price"`
	OriginalOutputPrice decimal.Decimal `json:"original_output_price"`
	CurrentInputPrice   decimal.Decimal `json:"current_input_price"`
	CurrentOutputPrice  decimal.Decimal `json:"current_output_price"`
	Threshold           decimal.Decimal `json:"threshold"`
}

func (BlacklistEvidence) evidence()        {}
func (DeadlineEvidence) evidence()         {}
func (AmountMismatchEvidence) evidence()   {}
func (LiquidityEvidence) evidence()        {}
func (PriceFluctuationEvidence) evidence() {}

// CheckResult is the outcome of a single diagnostic check. A match always
// carries a reason code, a human summary and evidence.
type CheckResult struct {
	Matched    bool
	ReasonCode ReasonCode
	Summary    string
	Evidence   Evidence
}

// Unmatched reports that a check found no signal.
func Unmatched() CheckResult {
	return CheckResult{}
}

// Match reports a diagnosed root cause with its supporting evidence.
func Match(code ReasonCode, summary string, ev Evidence) CheckResult {
	return CheckResult{Matched: true, ReasonCode: code, Summary: summary, Evidence: ev}
}
