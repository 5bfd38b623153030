package curve

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/pegzap/zap-engine/internal/domain"
)

func tokens(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), Precision)
}

// Reference pool state with a known on-chain peg point (~10,846 tokens):
// balances [52624.94, 65689.21] scaled to 18 decimals, A = 37,
// base fee 10bps, off-peg multiplier 2x.
var (
	refBalances = [2]*uint256.Int{
		uint256.MustFromDecimal("52624940000000000000000"),
		uint256.MustFromDecimal("65689210000000000000000"),
	}
	refAmp        = uint256.NewInt(37 * 100)
	refBaseFee    = uint256.NewInt(10_000_000)
	refOffPegMult = uint256.MustFromDecimal("20000000000")
)

func TestComputeInvariantZeroBalances(t *testing.T) {
	d, err := ComputeInvariant([2]*uint256.Int{new(uint256.Int), new(uint256.Int)}, refAmp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.IsZero() {
		t.Errorf("expected D=0 for empty pool, got %s", d.Dec())
	}
}

func TestComputeInvariantOneZeroBalance(t *testing.T) {
	_, err := ComputeInvariant([2]*uint256.Int{tokens(50000), new(uint256.Int)}, refAmp)
	if !errors.Is(err, ErrZeroBalance) {
		t.Errorf("expected ErrZeroBalance, got %v", err)
	}
}

func TestComputeInvariantBalanced(t *testing.T) {
	x := tokens(50000)
	d, err := ComputeInvariant([2]*uint256.Int{x.Clone(), x.Clone()}, refAmp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A balanced pool's invariant is exactly the sum of balances.
	want := tokens(100000)
	if absDiff(d, want).Cmp(uint256.NewInt(1)) > 0 {
		t.Errorf("balanced invariant: got %s, want %s", d.Dec(), want.Dec())
	}
}

func TestComputeInvariantImbalanced(t *testing.T) {
	d, err := ComputeInvariant(refBalances, refAmp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// D sits below the balance sum for an imbalanced pool, above the
	// constant-product bound.
	sum := new(uint256.Int).Add(refBalances[0], refBalances[1])
	if d.Cmp(sum) >= 0 {
		t.Errorf("imbalanced invariant %s not below balance sum %s", d.Dec(), sum.Dec())
	}
	if d.Cmp(refBalances[0]) <= 0 {
		t.Errorf("invariant %s implausibly small", d.Dec())
	}
}

func TestCounterpartRoundTrip(t *testing.T) {
	d, err := ComputeInvariant(refBalances, refAmp)
	if err != nil {
		t.Fatalf("invariant: %v", err)
	}
	// Solving for the output balance with an unchanged input balance must
	// recover the original output balance.
	y, err := CounterpartBalance(0, 1, refBalances[0], refBalances, refAmp, d)
	if err != nil {
		t.Fatalf("counterpart: %v", err)
	}
	tol := uint256.NewInt(1_000_000_000) // dust: 1e-9 tokens
	if diff := absDiff(y, refBalances[1]); diff.Cmp(tol) > 0 {
		t.Errorf("round trip drift %s units (y=%s want=%s)", diff.Dec(), y.Dec(), refBalances[1].Dec())
	}
}

func TestCounterpartBalanceBadIndexes(t *testing.T) {
	d, _ := ComputeInvariant(refBalances, refAmp)
	for _, idx := range [][2]int{{0, 0}, {-1, 1}, {0, 2}} {
		if _, err := CounterpartBalance(idx[0], idx[1], refBalances[0], refBalances, refAmp, d); !errors.Is(err, ErrBadTokenIndex) {
			t.Errorf("indexes %v: expected ErrBadTokenIndex, got %v", idx, err)
		}
	}
}

func TestDynamicFee(t *testing.T) {
	base := refBaseFee

	// Multiplier at or below the denominator disables amplification.
	flat := DynamicFee(tokens(100), tokens(900), base, FeeDenominator)
	if flat.Cmp(base) != 0 {
		t.Errorf("multiplier == denominator: got %s, want base %s", flat.Dec(), base.Dec())
	}

	balanced := DynamicFee(tokens(500), tokens(500), base, refOffPegMult)
	if balanced.Cmp(base) != 0 {
		t.Errorf("balanced fee: got %s, want base %s", balanced.Dec(), base.Dec())
	}

	offPeg := DynamicFee(tokens(100), tokens(900), base, refOffPegMult)
	if offPeg.Cmp(base) <= 0 {
		t.Errorf("off-peg fee %s not above base %s", offPeg.Dec(), base.Dec())
	}
}

func TestQuoteStableSwapZeroInput(t *testing.T) {
	dy, err := QuoteStableSwap(0, 1, new(uint256.Int), refBalances, refAmp, refBaseFee, refOffPegMult)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dy.IsZero() {
		t.Errorf("zero input should quote zero output, got %s", dy.Dec())
	}
}

func TestQuoteStableSwapBonusDirection(t *testing.T) {
	// Swapping into the smaller side of an imbalanced pool pays a bonus.
	dx := tokens(1000)
	dy, err := QuoteStableSwap(0, 1, dx, refBalances, refAmp, refBaseFee, refOffPegMult)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if dy.Cmp(dx) <= 0 {
		t.Errorf("expected bonus (dy > dx), got dy=%s for dx=%s", dy.Dec(), dx.Dec())
	}
}

func TestQuoteStableSwapMarginalRateDecreasing(t *testing.T) {
	dx := tokens(1000)
	dy1, err := QuoteStableSwap(0, 1, dx, refBalances, refAmp, refBaseFee, refOffPegMult)
	if err != nil {
		t.Fatalf("quote dx: %v", err)
	}
	dx2 := new(uint256.Int).Mul(dx, uint256.NewInt(2))
	dy2, err := QuoteStableSwap(0, 1, dx2, refBalances, refAmp, refBaseFee, refOffPegMult)
	if err != nil {
		t.Fatalf("quote 2dx: %v", err)
	}
	// Doubling the input must yield strictly less than double the output.
	twice := new(uint256.Int).Mul(dy1, uint256.NewInt(2))
	if dy2.Cmp(twice) >= 0 {
		t.Errorf("marginal rate not decreasing: 2*dy(%s)=%s, dy(2dx)=%s", dx.Dec(), twice.Dec(), dy2.Dec())
	}
}

func TestStableQuoterRejectsWrongSnapshotKind(t *testing.T) {
	snap := &domain.CryptoPoolSnapshot{
		Balances:   [2]*uint256.Int{tokens(1), tokens(1)},
		A:          uint256.NewInt(1),
		Gamma:      uint256.NewInt(1),
		D:          tokens(2),
		MidFee:     uint256.NewInt(1),
		OutFee:     uint256.NewInt(1),
		FeeGamma:   uint256.NewInt(1),
		PriceScale: Precision.Clone(),
	}
	if _, err := (StableQuoter{}).Quote(0, 1, tokens(1), snap); !errors.Is(err, domain.ErrInvalidSnapshot) {
		t.Errorf("expected ErrInvalidSnapshot, got %v", err)
	}
}
