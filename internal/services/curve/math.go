package curve

import (
	"github.com/holiman/uint256"

	"github.com/pegzap/zap-engine/internal/domain"
)

// Fixed-point constants shared by both invariant engines. These must match the
// replicated contracts exactly; quoting drifts off-chain output otherwise.
const (
	// NCoins is the number of assets in every supported pool.
	NCoins = 2
	// MaxIterations bounds every Newton loop. Convergence normally takes a
	// handful of rounds; hitting the bound means the snapshot is corrupted.
	MaxIterations = 255
)

// Pre-computed constants (avoid allocation on every call)
var (
	u256One    = uint256.NewInt(1)
	u256Two    = uint256.NewInt(2)
	u256Four   = uint256.NewInt(4)
	u256N      = uint256.NewInt(NCoins)
	u256NPlus1 = uint256.NewInt(NCoins + 1)

	// Precision is the 1e18 balance scale, shared with domain.
	Precision = domain.Precision
	// APrecision scales StableSwap amplification: amp = A * APrecision.
	APrecision = uint256.NewInt(100)
	// AMultiplier scales CryptoSwap amplification.
	AMultiplier = uint256.NewInt(10000)
	// FeeDenominator gives fees 10 decimal places of basis-point precision.
	FeeDenominator = uint256.MustFromDecimal("10000000000")

	// convergenceFloor is the CryptoSwap solver's minimum convergence limit.
	convergenceFloor = uint256.NewInt(100)
	// relTolDivisor derives the CryptoSwap relative tolerance (value / 1e14).
	relTolDivisor = uint256.MustFromDecimal("100000000000000")
)

// MulDiv returns a*b/c in a fresh uint256 with truncating division, matching
// EVM semantics. Inputs are bounded by realistic pool reserves, so the 512-bit
// intermediate never exceeds 256 bits on the paths the engines use.
func MulDiv(a, b, c *uint256.Int) *uint256.Int {
	out := new(uint256.Int).Mul(a, b)
	return out.Div(out, c)
}

// absDiff returns |a-b| in a fresh uint256.
func absDiff(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) >= 0 {
		return new(uint256.Int).Sub(a, b)
	}
	return new(uint256.Int).Sub(b, a)
}

// withinOne reports whether two successive Newton iterates differ by at most
// one unit, the convergence rule both engines inherit from the contracts.
func withinOne(a, b *uint256.Int) bool {
	return absDiff(a, b).Cmp(u256One) <= 0
}
