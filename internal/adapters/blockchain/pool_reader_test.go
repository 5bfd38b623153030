package blockchain

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

func TestMethodSelectors(t *testing.T) {
	// Known 4-byte selectors of the pool ABIs.
	for _, tc := range []struct {
		signature string
		selector  []byte
		want      string
	}{
		{"fee()", selFee, "ddca3f43"},
		{"balances(uint256)", selBalances, "4903b0d1"},
		{"A()", selA, "f446c1d0"},
		{"gamma()", selGamma, "b1373929"},
		{"D()", selD, "0f529ba2"},
		{"price_scale()", selPriceScale, "b9e8c9fd"},
	} {
		if got := hexNoPrefix(tc.selector); got != tc.want {
			t.Errorf("%s: selector %s, want %s", tc.signature, got, tc.want)
		}
	}
}

func hexNoPrefix(b []byte) string {
	return hexutil.Encode(b)[2:]
}

func TestBalancesCalldata(t *testing.T) {
	data := balancesCalldata(1)
	if len(data) != 36 {
		t.Fatalf("calldata length %d, want 36", len(data))
	}
	if !bytes.Equal(data[:4], selBalances) {
		t.Errorf("calldata selector %x, want %x", data[:4], selBalances)
	}
	want := make([]byte, 32)
	want[31] = 1
	if !bytes.Equal(data[4:], want) {
		t.Errorf("calldata argument %x, want %x", data[4:], want)
	}
}

func TestDecodeWord(t *testing.T) {
	raw := make(hexutil.Bytes, 32)
	raw[30] = 0x01
	raw[31] = 0x02
	word, err := decodeWord(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if word.Cmp(uint256.NewInt(258)) != 0 {
		t.Errorf("decoded %s, want 258", word.Dec())
	}

	if _, err := decodeWord(hexutil.Bytes{0x01}); err == nil {
		t.Error("short return should not decode")
	}
}
