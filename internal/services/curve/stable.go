package curve

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/pegzap/zap-engine/internal/domain"
)

var (
	ErrZeroBalance   = errors.New("pool balance is zero")
	ErrZeroInvariant = errors.New("pool invariant is zero")
	ErrInvalidAmp    = errors.New("amplification below precision factor")
	ErrBadTokenIndex = errors.New("invalid token index")
	ErrNoConvergence = errors.New("newton iteration did not converge")
	ErrOutputDrained = errors.New("swap would drain output balance")
)

func checkIndexes(i, j int) error {
	if i == j || i < 0 || i >= NCoins || j < 0 || j >= NCoins {
		return ErrBadTokenIndex
	}
	return nil
}

// ComputeInvariant solves the StableSwap invariant D for the given balances by
// Newton iteration, starting from the sum of balances.
//
// D satisfies: Ann * sum(x) + D = Ann * D + D^(n+1) / (n^n * prod(x))
//
// amp is A * APrecision, the on-chain storage encoding. A zero balance sum
// short-circuits to D = 0 before any division.
func ComputeInvariant(balances [2]*uint256.Int, amp *uint256.Int) (*uint256.Int, error) {
	s := new(uint256.Int).Add(balances[0], balances[1])
	if s.IsZero() {
		return new(uint256.Int), nil
	}
	ann := new(uint256.Int).Mul(amp, u256N)
	if ann.Lt(APrecision) {
		return nil, ErrInvalidAmp
	}

	d := s.Clone()
	dPrev := new(uint256.Int)
	for iter := 0; iter < MaxIterations; iter++ {
		dP := d.Clone()
		for _, x := range balances {
			if x.IsZero() {
				return nil, ErrZeroBalance
			}
			dP = MulDiv(dP, d, new(uint256.Int).Mul(x, u256N))
		}
		dPrev.Set(d)
		// D = (Ann*S/A_PRECISION + D_P*n) * D / ((Ann-A_PRECISION)*D/A_PRECISION + (n+1)*D_P)
		num := new(uint256.Int).Add(
			MulDiv(ann, s, APrecision),
			new(uint256.Int).Mul(dP, u256N),
		)
		den := new(uint256.Int).Add(
			MulDiv(new(uint256.Int).Sub(ann, APrecision), d, APrecision),
			new(uint256.Int).Mul(dP, u256NPlus1),
		)
		d = MulDiv(num, d, den)
		if withinOne(d, dPrev) {
			return d, nil
		}
	}
	// Convergence normally takes four rounds or less. Reaching the bound means
	// the snapshot is corrupted, not that a retry would help.
	return nil, fmt.Errorf("stableswap invariant: %w", ErrNoConvergence)
}

// CounterpartBalance solves for the output-side balance y that keeps the
// invariant at D after the input-side balance moves to x. Newton iteration on
//
//	y^2 + y*(S + D*A_PRECISION/Ann - D) = D^3 * A_PRECISION / (n^(2n) * x * Ann)
//
// with the same 1-unit convergence rule as ComputeInvariant.
func CounterpartBalance(i, j int, x *uint256.Int, balances [2]*uint256.Int, amp, d *uint256.Int) (*uint256.Int, error) {
	if err := checkIndexes(i, j); err != nil {
		return nil, err
	}
	if d.IsZero() {
		return nil, ErrZeroInvariant
	}
	ann := new(uint256.Int).Mul(amp, u256N)
	if ann.Lt(APrecision) {
		return nil, ErrInvalidAmp
	}

	c := d.Clone()
	s := new(uint256.Int)
	for k := 0; k < NCoins; k++ {
		var xk *uint256.Int
		switch {
		case k == i:
			xk = x
		case k != j:
			xk = balances[k]
		default:
			continue
		}
		if xk.IsZero() {
			return nil, ErrZeroBalance
		}
		s.Add(s, xk)
		c = MulDiv(c, d, new(uint256.Int).Mul(xk, u256N))
	}
	c = MulDiv(new(uint256.Int).Mul(c, d), APrecision, new(uint256.Int).Mul(ann, u256N))
	b := new(uint256.Int).Add(s, MulDiv(d, APrecision, ann))

	y := d.Clone()
	yPrev := new(uint256.Int)
	for iter := 0; iter < MaxIterations; iter++ {
		yPrev.Set(y)
		// y = (y*y + c) / (2*y + b - D)
		num := new(uint256.Int).Mul(y, y)
		num.Add(num, c)
		den := new(uint256.Int).Mul(y, u256Two)
		den.Add(den, b)
		if den.Cmp(d) <= 0 {
			// Denominator would go non-positive: the snapshot is corrupted.
			return nil, fmt.Errorf("counterpart balance: %w", ErrNoConvergence)
		}
		den.Sub(den, d)
		y = num.Div(num, den)
		if withinOne(y, yPrev) {
			return y, nil
		}
	}
	return nil, fmt.Errorf("counterpart balance: %w", ErrNoConvergence)
}

// DynamicFee scales baseFee upward as the two balances diverge from parity.
// A multiplier at or below FeeDenominator disables off-peg amplification and
// returns baseFee unchanged.
func DynamicFee(balI, balJ, baseFee, offPegMultiplier *uint256.Int) *uint256.Int {
	if offPegMultiplier.Cmp(FeeDenominator) <= 0 {
		return baseFee.Clone()
	}
	xps2 := new(uint256.Int).Add(balI, balJ)
	xps2.Mul(xps2, xps2)
	if xps2.IsZero() {
		return baseFee.Clone()
	}
	// fee = multiplier * baseFee / ((multiplier - FEE_DEN) * 4*balI*balJ / (balI+balJ)^2 + FEE_DEN)
	num := new(uint256.Int).Mul(offPegMultiplier, baseFee)
	prod := new(uint256.Int).Mul(balI, balJ)
	prod.Mul(prod, u256Four)
	den := new(uint256.Int).Sub(offPegMultiplier, FeeDenominator)
	den.Mul(den, prod)
	den.Div(den, xps2)
	den.Add(den, FeeDenominator)
	return num.Div(num, den)
}

// QuoteStableSwap prices a swap of dx units of token i for token j against the
// pre-trade balances. The output-side solve subtracts one unit for rounding
// safety, and the dynamic fee is computed from the average of pre- and
// post-trade balances on both sides — that averaging is required for parity
// with the deployed contract, not an approximation.
func QuoteStableSwap(i, j int, dx *uint256.Int, balances [2]*uint256.Int, amp, baseFee, offPegMultiplier *uint256.Int) (*uint256.Int, error) {
	if err := checkIndexes(i, j); err != nil {
		return nil, err
	}
	if dx.IsZero() {
		return new(uint256.Int), nil
	}

	x := new(uint256.Int).Add(balances[i], dx)
	d, err := ComputeInvariant(balances, amp)
	if err != nil {
		return nil, err
	}
	if d.IsZero() {
		return nil, ErrZeroInvariant
	}
	y, err := CounterpartBalance(i, j, x, balances, amp, d)
	if err != nil {
		return nil, err
	}
	if balances[j].Cmp(y) <= 0 {
		return nil, ErrOutputDrained
	}
	dy := new(uint256.Int).Sub(balances[j], y)
	dy.Sub(dy, u256One) // rounding guard, matches the contract

	avgI := new(uint256.Int).Add(balances[i], x)
	avgI.Div(avgI, u256Two)
	avgJ := new(uint256.Int).Add(balances[j], y)
	avgJ.Div(avgJ, u256Two)
	fee := DynamicFee(avgI, avgJ, baseFee, offPegMultiplier)
	feeAmount := MulDiv(dy, fee, FeeDenominator)
	return dy.Sub(dy, feeAmount), nil
}

// StableQuoter prices swaps against the StableSwap invariant.
type StableQuoter struct{}

func (StableQuoter) Quote(i, j int, dx *uint256.Int, snap domain.PoolSnapshot) (*uint256.Int, error) {
	s, ok := snap.(*domain.StablePoolSnapshot)
	if !ok {
		return nil, fmt.Errorf("%w: want %s, got %s", domain.ErrInvalidSnapshot, domain.PoolKindStable, snap.Kind())
	}
	return QuoteStableSwap(i, j, dx, s.Balances, s.Amp, s.BaseFee, s.OffPegFeeMultiplier)
}
