package entity

import (
	"math/big"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Order is the current-schema view of a cross-chain swap order.
// It is authoritative for amounts and transaction markers.
type Order struct {
	OrderID     string
	SolverID    string
	Source      *Swap
	Destination *Swap
	CreatedAt   time.Time
}

// Swap is one leg of a cross-chain order.
type Swap struct {
	Asset             string
	Amount            string // requested amount in minor units
	FilledAmount      string // filled amount in minor units
	InitiateTxHash    string
	RedeemTxHash      string
	RefundTxHash      string
	AssetPrice        *decimal.Decimal // fiat unit price recorded at order creation
	InitiateTimestamp *time.Time
}

func (s *Swap) Initiated() bool {
	return s != nil && s.InitiateTxHash != ""
}

func (s *Swap) Redeemed() bool {
	return s != nil && s.RedeemTxHash != ""
}

func (s *Swap) Refunded() bool {
	return s != nil && s.RefundTxHash != ""
}

// AmountInt returns the requested amount as an exact integer.
func (s *Swap) AmountInt() (*big.Int, error) {
	return ParseMinorUnits(s.Amount)
}

// FilledAmountInt returns the filled amount as an exact integer.
func (s *Swap) FilledAmountInt() (*big.Int, error) {
	return ParseMinorUnits(s.FilledAmount)
}

// ParseMinorUnits parses an amount string in minor units. Amount comparisons
// must use exact integer arithmetic, so an unparseable amount is an error,
// never zero.
func ParseMinorUnits(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("malformed amount %q", s)
	}
	return v, nil
}
