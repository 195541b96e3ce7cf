package entity

import "github.com/shopspring/decimal"

// FiatPrices maps asset identifiers to their current fiat unit price.
type FiatPrices map[string]decimal.Decimal

// Price returns the price for an asset. A missing or non-positive price is
// unusable and reported as absent.
func (p FiatPrices) Price(asset string) (decimal.Decimal, bool) {
	v, ok := p[asset]
	if !ok || !v.IsPositive() {
		return decimal.Decimal{}, false
	}
	return v, true
}
