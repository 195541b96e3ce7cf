package entity

// SolverLiquidity holds the per-asset balances a solver currently offers.
type SolverLiquidity struct {
	SolverID  string
	Liquidity []AssetLiquidity
}

// AssetLiquidity is one asset balance within a solver's liquidity list.
type AssetLiquidity struct {
	Asset           string
	Balance         string // minor units
	ReadableBalance string
	FiatValue       string
}
