package router

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/pegzap/zap-engine/internal/domain"
	"github.com/pegzap/zap-engine/internal/services/curve"
)

func tokens(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), curve.Precision)
}

// Snapshot mirroring an observed on-chain state whose peg point sits near
// 10,846 tokens.
func imbalancedStableSnapshot() *domain.StablePoolSnapshot {
	return &domain.StablePoolSnapshot{
		Balances: [2]*uint256.Int{
			uint256.MustFromDecimal("52624940000000000000000"),
			uint256.MustFromDecimal("65689210000000000000000"),
		},
		Amp:                 uint256.NewInt(37 * 100),
		BaseFee:             uint256.NewInt(10_000_000),
		OffPegFeeMultiplier: uint256.MustFromDecimal("20000000000"),
	}
}

func TestFindPegPointImbalancedStable(t *testing.T) {
	snap := imbalancedStableSnapshot()
	peg, err := FindPegPoint(curve.StableQuoter{}, snap, 0, 1, DefaultPegTolerance)
	if err != nil {
		t.Fatalf("find peg point: %v", err)
	}
	if peg.Cmp(tokens(10000)) < 0 || peg.Cmp(tokens(12000)) > 0 {
		t.Errorf("peg point %s outside expected [10000, 12000] token range", peg.Dec())
	}

	// The full swap leg must still break even at the peg point.
	dy, err := curve.StableQuoter{}.Quote(0, 1, peg, snap)
	if err != nil {
		t.Fatalf("quote at peg: %v", err)
	}
	if dy.Cmp(peg) < 0 {
		t.Errorf("swap at peg point not break-even: in %s, out %s", peg.Dec(), dy.Dec())
	}
}

func TestFindPegPointBalancedPool(t *testing.T) {
	snap := imbalancedStableSnapshot()
	snap.Balances = [2]*uint256.Int{tokens(50000), tokens(50000)}
	peg, err := FindPegPoint(curve.StableQuoter{}, snap, 0, 1, DefaultPegTolerance)
	if err != nil {
		t.Fatalf("find peg point: %v", err)
	}
	if !peg.IsZero() {
		t.Errorf("balanced pool should peg at zero, got %s", peg.Dec())
	}
}

func TestFindPegPointUnfavorableDirection(t *testing.T) {
	// Swapping into the already larger side never pays a bonus.
	snap := imbalancedStableSnapshot()
	peg, err := FindPegPoint(curve.StableQuoter{}, snap, 1, 0, DefaultPegTolerance)
	if err != nil {
		t.Fatalf("find peg point: %v", err)
	}
	if !peg.IsZero() {
		t.Errorf("unfavorable direction should peg at zero, got %s", peg.Dec())
	}
}

// imbalancedCryptoSnapshot derives an invariant-consistent imbalanced state by
// pushing a fee-free swap through a balanced pool: post-trade balances then sit
// exactly on the same D.
func imbalancedCryptoSnapshot(t *testing.T) *domain.CryptoPoolSnapshot {
	t.Helper()
	snap := &domain.CryptoPoolSnapshot{
		Balances:   [2]*uint256.Int{tokens(55000), tokens(55000)},
		A:          uint256.NewInt(400000),
		Gamma:      uint256.MustFromDecimal("145000000000000"),
		D:          tokens(110000),
		MidFee:     new(uint256.Int),
		OutFee:     new(uint256.Int),
		FeeGamma:   uint256.MustFromDecimal("230000000000000"),
		PriceScale: curve.Precision.Clone(),
	}
	dy, err := curve.QuoteCryptoSwap(0, 1, tokens(5000), snap)
	if err != nil {
		t.Fatalf("seed swap: %v", err)
	}
	snap.Balances = [2]*uint256.Int{
		tokens(60000),
		new(uint256.Int).Sub(tokens(55000), dy),
	}
	// A low fee band keeps the bonus region wide; fee calibration has its own
	// coverage in the curve package.
	snap.MidFee = uint256.NewInt(1_000_000)
	snap.OutFee = uint256.NewInt(2_000_000)
	return snap
}

func TestFindPegPointImbalancedCrypto(t *testing.T) {
	snap := imbalancedCryptoSnapshot(t)
	q := curve.CryptoQuoter{}

	// Token 1 is the scarce side, so depositing it earns the bonus.
	peg, err := FindPegPoint(q, snap, 1, 0, DefaultPegTolerance)
	if err != nil {
		t.Fatalf("find peg point: %v", err)
	}
	if peg.IsZero() {
		t.Fatal("scarce-side deposit should have a non-zero peg point")
	}
	gap := new(uint256.Int).Sub(snap.Balances[0], snap.Balances[1])
	if peg.Cmp(gap) > 0 {
		t.Errorf("peg point %s above the balance gap %s", peg.Dec(), gap.Dec())
	}
	dy, err := q.Quote(1, 0, peg, snap)
	if err != nil {
		t.Fatalf("quote at peg: %v", err)
	}
	if dy.Cmp(peg) < 0 {
		t.Errorf("swap at peg point not break-even: in %s, out %s", peg.Dec(), dy.Dec())
	}

	// Depositing into the surplus side never pays.
	peg, err = FindPegPoint(q, snap, 0, 1, DefaultPegTolerance)
	if err != nil {
		t.Fatalf("find peg point 0->1: %v", err)
	}
	if !peg.IsZero() {
		t.Errorf("surplus-side deposit should peg at zero, got %s", peg.Dec())
	}
}

func TestFindPegPointPriceScaleNormalization(t *testing.T) {
	// Raw balances differ but normalize to parity under the price scale; both
	// directions must peg at zero.
	snap := imbalancedCryptoSnapshot(t)
	snap.Balances = [2]*uint256.Int{tokens(49000), tokens(50000)}
	snap.PriceScale = uint256.MustFromDecimal("980000000000000000")
	snap.D = tokens(98000)
	for _, dir := range [][2]int{{0, 1}, {1, 0}} {
		peg, err := FindPegPoint(curve.CryptoQuoter{}, snap, dir[0], dir[1], DefaultPegTolerance)
		if err != nil {
			t.Fatalf("direction %v: %v", dir, err)
		}
		if !peg.IsZero() {
			t.Errorf("direction %v: normalized-parity pool should peg at zero, got %s", dir, peg.Dec())
		}
	}
}

func TestFindPegPointBadIndexes(t *testing.T) {
	snap := imbalancedStableSnapshot()
	for _, idx := range [][2]int{{0, 0}, {-1, 1}, {0, 2}} {
		if _, err := FindPegPoint(curve.StableQuoter{}, snap, idx[0], idx[1], nil); !errors.Is(err, ErrBadTokenIndex) {
			t.Errorf("indexes %v: expected ErrBadTokenIndex, got %v", idx, err)
		}
	}
}

func TestFindPegPointInvalidSnapshot(t *testing.T) {
	snap := imbalancedStableSnapshot()
	snap.Amp = new(uint256.Int)
	if _, err := FindPegPoint(curve.StableQuoter{}, snap, 0, 1, nil); !errors.Is(err, domain.ErrInvalidSnapshot) {
		t.Errorf("expected ErrInvalidSnapshot, got %v", err)
	}
}
