package router

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/pegzap/zap-engine/internal/domain"
	"github.com/pegzap/zap-engine/internal/services/curve"
)

var ErrBadTokenIndex = errors.New("invalid token index")

// DefaultPegTolerance is the search resolution: ten whole tokens. Pool reserves
// run five to six figures, so a finer answer changes route output by dust while
// doubling the quote count.
var DefaultPegTolerance = uint256.MustFromDecimal("10000000000000000000")

// toNativeInput converts an amount of token i from the normalized 1e18 basis
// back to the token's native input units. Only the CryptoSwap side 1 differs.
func toNativeInput(snap domain.PoolSnapshot, i int, amount *uint256.Int) *uint256.Int {
	if i != 1 {
		return amount.Clone()
	}
	cs, ok := snap.(*domain.CryptoPoolSnapshot)
	if !ok {
		return amount.Clone()
	}
	return curve.MulDiv(amount, curve.Precision, cs.PriceScale)
}

// FindPegPoint locates the largest input of token i for which swapping still
// returns at least as much of token j, to within tolerance. Inputs up to the
// peg point are better swapped; anything beyond is better minted 1:1.
//
// The search assumes the favorability crossing is monotone, which holds while
// the snapshot is internally consistent. A pool already at or past parity in
// the swap direction has no favorable region and pegs at zero.
func FindPegPoint(q curve.Quoter, snap domain.PoolSnapshot, i, j int, tolerance *uint256.Int) (*uint256.Int, error) {
	if i == j || i < 0 || i > 1 || j < 0 || j > 1 {
		return nil, ErrBadTokenIndex
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	if tolerance == nil || tolerance.IsZero() {
		tolerance = DefaultPegTolerance
	}

	norm := snap.NormalizedBalances()
	if norm[i].Cmp(norm[j]) >= 0 {
		return new(uint256.Int), nil
	}

	// The swap stops paying a bonus well before the balance gap closes, so the
	// gap bounds the search from above.
	hi := new(uint256.Int).Sub(norm[j], norm[i])
	hi = toNativeInput(snap, i, hi)
	lo := new(uint256.Int)

	gap := new(uint256.Int)
	for gap.Sub(hi, lo); gap.Gt(tolerance); gap.Sub(hi, lo) {
		mid := new(uint256.Int).Add(lo, hi)
		mid.Div(mid, uint256.NewInt(2))

		dy, err := q.Quote(i, j, mid, snap)
		switch {
		case errors.Is(err, curve.ErrOutputDrained):
			// Past the drainable region; the peg sits below mid.
			hi = mid
			continue
		case err != nil:
			return nil, err
		}
		if dy.Cmp(mid) >= 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo, nil
}
