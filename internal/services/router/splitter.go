package router

import (
	"github.com/holiman/uint256"

	"github.com/pegzap/zap-engine/internal/domain"
)

// SplitAmount divides a deposit between the swap leg and the mint leg at the
// peg point: everything up to the peg point swaps at a bonus, the remainder
// mints 1:1. The two legs always sum back to total.
func SplitAmount(total, pegPoint *uint256.Int) domain.RouteSplit {
	switch {
	case total.IsZero():
		return domain.RouteSplit{SwapAmount: new(uint256.Int), MintAmount: new(uint256.Int)}
	case pegPoint.IsZero():
		return domain.RouteSplit{SwapAmount: new(uint256.Int), MintAmount: total.Clone()}
	case total.Cmp(pegPoint) <= 0:
		return domain.RouteSplit{SwapAmount: total.Clone(), MintAmount: new(uint256.Int)}
	default:
		return domain.RouteSplit{
			SwapAmount: pegPoint.Clone(),
			MintAmount: new(uint256.Int).Sub(total, pegPoint),
		}
	}
}
