package router

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestSplitAmount(t *testing.T) {
	for _, tc := range []struct {
		name     string
		total    *uint256.Int
		pegPoint *uint256.Int
		wantSwap *uint256.Int
		wantMint *uint256.Int
	}{
		{"zero total", new(uint256.Int), tokens(500), new(uint256.Int), new(uint256.Int)},
		{"zero peg mints all", tokens(1000), new(uint256.Int), new(uint256.Int), tokens(1000)},
		{"total below peg swaps all", tokens(300), tokens(500), tokens(300), new(uint256.Int)},
		{"total at peg swaps all", tokens(500), tokens(500), tokens(500), new(uint256.Int)},
		{"total above peg splits", tokens(1200), tokens(500), tokens(500), tokens(700)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			split := SplitAmount(tc.total, tc.pegPoint)
			if split.SwapAmount.Cmp(tc.wantSwap) != 0 {
				t.Errorf("swap leg: got %s, want %s", split.SwapAmount.Dec(), tc.wantSwap.Dec())
			}
			if split.MintAmount.Cmp(tc.wantMint) != 0 {
				t.Errorf("mint leg: got %s, want %s", split.MintAmount.Dec(), tc.wantMint.Dec())
			}
			if split.Total().Cmp(tc.total) != 0 {
				t.Errorf("legs do not sum to total: %s + %s != %s",
					split.SwapAmount.Dec(), split.MintAmount.Dec(), tc.total.Dec())
			}
		})
	}
}

func TestSplitAmountDoesNotAliasInputs(t *testing.T) {
	total := tokens(1000)
	peg := tokens(400)
	split := SplitAmount(total, peg)
	split.SwapAmount.Add(split.SwapAmount, tokens(1))
	split.MintAmount.Add(split.MintAmount, tokens(1))
	if total.Cmp(tokens(1000)) != 0 || peg.Cmp(tokens(400)) != 0 {
		t.Error("split mutated its inputs")
	}
}
