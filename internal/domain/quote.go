package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// SwapQuote is a single-point swap price. Derived, never stored.
type SwapQuote struct {
	InIndex   int
	OutIndex  int
	AmountIn  *uint256.Int
	AmountOut *uint256.Int
}

// RouteSplit divides one deposit between the AMM swap leg and the 1:1 mint leg.
// SwapAmount + MintAmount always equals the requested total; both are non-negative.
type RouteSplit struct {
	SwapAmount *uint256.Int
	MintAmount *uint256.Int
}

func (r RouteSplit) Total() *uint256.Int {
	return new(uint256.Int).Add(r.SwapAmount, r.MintAmount)
}

// ZapRoute is the full answer for one deposit: where the peg point sits, how the
// amount is split, and what the swap leg is expected to return. Degraded marks
// the mint-everything fallback taken when pool state could not be obtained.
type ZapRoute struct {
	Pool      common.Address
	PegPoint  *uint256.Int
	Split     RouteSplit
	SwapQuote *SwapQuote // nil when the swap leg is empty
	TotalOut  *uint256.Int
	Degraded  bool
}
