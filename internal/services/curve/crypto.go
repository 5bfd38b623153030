package curve

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/pegzap/zap-engine/internal/domain"
)

// newtonCounterpart solves the CryptoSwap invariant for the unknown balance
// given the other (post-trade, price-scaled) balance x and the invariant D.
// ann carries the AMultiplier scale, gamma the 1e18 curvature parameter.
//
// Unlike the StableSwap solve, convergence here is relative: iteration stops
// once the step falls below max(x/1e14, D/1e14, 100, y/1e14), the rule the
// reference contract uses.
func newtonCounterpart(ann, gamma, x, d *uint256.Int) (*uint256.Int, error) {
	if x.IsZero() {
		return nil, ErrZeroBalance
	}
	if d.IsZero() {
		return nil, ErrZeroInvariant
	}

	// Initial guess: y = D^2 / (x * n^n).
	y := MulDiv(d, d, new(uint256.Int).Mul(x, u256Four))
	k0i := MulDiv(new(uint256.Int).Mul(Precision, u256N), x, d)

	limit := new(uint256.Int).Div(x, relTolDivisor)
	if t := new(uint256.Int).Div(d, relTolDivisor); t.Gt(limit) {
		limit = t
	}
	if limit.Lt(convergenceFloor) {
		limit = convergenceFloor.Clone()
	}

	yPrev := new(uint256.Int)
	for iter := 0; iter < MaxIterations; iter++ {
		yPrev.Set(y)

		k0 := MulDiv(new(uint256.Int).Mul(k0i, y), u256N, d)
		s := new(uint256.Int).Add(x, y)

		g1k0 := new(uint256.Int).Add(gamma, Precision)
		if g1k0.Gt(k0) {
			g1k0.Sub(g1k0, k0)
			g1k0.Add(g1k0, u256One)
		} else {
			g1k0.Sub(k0, g1k0)
			g1k0.Add(g1k0, u256One)
		}

		// mul1 = 1e18 * D / gamma * g1k0 / gamma * g1k0 * A_MULTIPLIER / ANN
		mul1 := MulDiv(Precision, d, gamma)
		mul1 = MulDiv(mul1, g1k0, gamma)
		mul1.Mul(mul1, g1k0)
		mul1 = MulDiv(mul1, AMultiplier, ann)

		// mul2 = 1e18 + 2e18 * K0 / g1k0
		mul2 := new(uint256.Int).Mul(u256Two, Precision)
		mul2 = MulDiv(mul2, k0, g1k0)
		mul2.Add(mul2, Precision)

		yfprime := new(uint256.Int).Mul(Precision, y)
		yfprime.Add(yfprime, new(uint256.Int).Mul(s, mul2))
		yfprime.Add(yfprime, mul1)
		dyfprime := new(uint256.Int).Mul(d, mul2)
		if yfprime.Lt(dyfprime) {
			// Overshot below the root; halve and retry, as the contract does.
			y = new(uint256.Int).Div(yPrev, u256Two)
			continue
		}
		yfprime.Sub(yfprime, dyfprime)

		fprime := new(uint256.Int).Div(yfprime, y)
		if fprime.IsZero() {
			return nil, fmt.Errorf("cryptoswap counterpart: %w", ErrNoConvergence)
		}

		yMinus := new(uint256.Int).Div(mul1, fprime)
		yPlus := new(uint256.Int).Add(yfprime, new(uint256.Int).Mul(Precision, d))
		yPlus.Div(yPlus, fprime)
		yPlus.Add(yPlus, MulDiv(yMinus, Precision, k0))
		yMinus.Add(yMinus, MulDiv(Precision, s, fprime))

		if yPlus.Lt(yMinus) {
			y = new(uint256.Int).Div(yPrev, u256Two)
		} else {
			y = new(uint256.Int).Sub(yPlus, yMinus)
		}

		diff := absDiff(y, yPrev)
		threshold := new(uint256.Int).Div(y, relTolDivisor)
		if threshold.Lt(limit) {
			threshold = limit
		}
		if diff.Lt(threshold) {
			return y, nil
		}
	}
	return nil, fmt.Errorf("cryptoswap counterpart: %w", ErrNoConvergence)
}

// interpolateFee blends midFee and outFee by how far the (price-scaled)
// balances sit from the balanced point; feeGamma controls how quickly the
// blend widens toward outFee.
func interpolateFee(xp [2]*uint256.Int, midFee, outFee, feeGamma *uint256.Int) *uint256.Int {
	f := new(uint256.Int).Add(xp[0], xp[1])
	if f.IsZero() {
		return midFee.Clone()
	}
	// K = 1e18 * n^n * xp0/f * xp1/f; K == 1e18 exactly at balance.
	k := new(uint256.Int).Mul(Precision, u256Four)
	k = MulDiv(k, xp[0], f)
	k = MulDiv(k, xp[1], f)
	// blend = feeGamma * 1e18 / (feeGamma + 1e18 - K); K <= 1e18 by AM-GM.
	den := new(uint256.Int).Add(feeGamma, Precision)
	den.Sub(den, k)
	blend := MulDiv(feeGamma, Precision, den)

	fee := new(uint256.Int).Mul(midFee, blend)
	rest := new(uint256.Int).Sub(Precision, blend)
	rest.Mul(rest, outFee)
	fee.Add(fee, rest)
	return fee.Div(fee, Precision)
}

// QuoteCryptoSwap prices a swap of dx units of token i for token j against a
// CryptoSwap snapshot. Token 1 amounts are normalized through the price scale
// before solving and converted back afterwards; the fee is interpolated on the
// post-trade normalized balances.
func QuoteCryptoSwap(i, j int, dx *uint256.Int, snap *domain.CryptoPoolSnapshot) (*uint256.Int, error) {
	if err := checkIndexes(i, j); err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	if dx.IsZero() {
		return new(uint256.Int), nil
	}

	xp := [2]*uint256.Int{snap.Balances[0].Clone(), snap.Balances[1].Clone()}
	xp[i].Add(xp[i], dx)
	xp[1] = MulDiv(xp[1], snap.PriceScale, Precision)

	y, err := newtonCounterpart(snap.A, snap.Gamma, xp[1-j], snap.D)
	if err != nil {
		return nil, err
	}
	if xp[j].Cmp(y) <= 0 {
		return nil, ErrOutputDrained
	}
	dy := new(uint256.Int).Sub(xp[j], y)
	dy.Sub(dy, u256One) // rounding guard, matches the contract
	xp[j] = y

	if j == 1 {
		dy = MulDiv(dy, Precision, snap.PriceScale)
	}
	fee := interpolateFee(xp, snap.MidFee, snap.OutFee, snap.FeeGamma)
	feeAmount := MulDiv(dy, fee, FeeDenominator)
	return dy.Sub(dy, feeAmount), nil
}

// CryptoQuoter prices swaps against the CryptoSwap invariant.
type CryptoQuoter struct{}

func (CryptoQuoter) Quote(i, j int, dx *uint256.Int, snap domain.PoolSnapshot) (*uint256.Int, error) {
	s, ok := snap.(*domain.CryptoPoolSnapshot)
	if !ok {
		return nil, fmt.Errorf("%w: want %s, got %s", domain.ErrInvalidSnapshot, domain.PoolKindCrypto, snap.Kind())
	}
	return QuoteCryptoSwap(i, j, dx, s)
}
