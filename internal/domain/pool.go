package domain

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ErrInvalidSnapshot = errors.New("invalid pool snapshot")
	ErrNilBalance      = errors.New("pool snapshot has nil balance")
)

// Precision is the common 1e18 fixed-point scale all pool balances are
// normalized to. It matches the scale the on-chain pools store balances in.
var Precision = uint256.MustFromDecimal("1000000000000000000")

type PoolKind uint8

const (
	PoolKindStable PoolKind = iota
	PoolKindCrypto
)

func (k PoolKind) String() string {
	switch k {
	case PoolKindStable:
		return "StableSwap"
	case PoolKindCrypto:
		return "CryptoSwap"
	default:
		return "UNKNOWN"
	}
}

// PoolSnapshot is one pool's on-chain state at a single moment. Snapshots are
// immutable once fetched; a refresh produces a new snapshot, never mutates one.
type PoolSnapshot interface {
	Kind() PoolKind
	PoolAddress() common.Address
	// NormalizedBalances returns both balances on a common 1e18 basis so the two
	// sides are directly comparable (the CryptoSwap side applies its price scale).
	NormalizedBalances() [2]*uint256.Int
	// Validate rejects snapshots whose critical parameters are missing or zero.
	// A zeroed snapshot is a fetch failure, not a valid empty-pool state.
	Validate() error
}

// StablePoolSnapshot carries the parameters of a StableSwap pool.
// Amp is the on-chain encoding A * 100 (the amplification precision factor).
type StablePoolSnapshot struct {
	Address             common.Address
	Balances            [2]*uint256.Int
	Amp                 *uint256.Int
	BaseFee             *uint256.Int
	OffPegFeeMultiplier *uint256.Int
}

func (s *StablePoolSnapshot) Kind() PoolKind              { return PoolKindStable }
func (s *StablePoolSnapshot) PoolAddress() common.Address { return s.Address }

func (s *StablePoolSnapshot) NormalizedBalances() [2]*uint256.Int {
	return s.Balances
}

func (s *StablePoolSnapshot) Validate() error {
	for _, b := range s.Balances {
		if b == nil {
			return ErrNilBalance
		}
	}
	if s.Amp == nil || s.Amp.IsZero() {
		return ErrInvalidSnapshot
	}
	if s.BaseFee == nil || s.OffPegFeeMultiplier == nil {
		return ErrInvalidSnapshot
	}
	return nil
}

// CryptoPoolSnapshot carries the parameters of a CryptoSwap pool. A carries the
// on-chain A_MULTIPLIER (10000) scale; PriceScale converts token 1 units onto
// token 0's basis.
type CryptoPoolSnapshot struct {
	Address    common.Address
	Balances   [2]*uint256.Int
	A          *uint256.Int
	Gamma      *uint256.Int
	D          *uint256.Int
	MidFee     *uint256.Int
	OutFee     *uint256.Int
	FeeGamma   *uint256.Int
	PriceScale *uint256.Int
}

func (s *CryptoPoolSnapshot) Kind() PoolKind              { return PoolKindCrypto }
func (s *CryptoPoolSnapshot) PoolAddress() common.Address { return s.Address }

func (s *CryptoPoolSnapshot) NormalizedBalances() [2]*uint256.Int {
	scaled := new(uint256.Int).Mul(s.Balances[1], s.PriceScale)
	scaled.Div(scaled, Precision)
	return [2]*uint256.Int{s.Balances[0], scaled}
}

func (s *CryptoPoolSnapshot) Validate() error {
	for _, b := range s.Balances {
		if b == nil {
			return ErrNilBalance
		}
	}
	// A, gamma and D zeroed together means the fetch returned garbage; never
	// quote from such a snapshot.
	for _, p := range []*uint256.Int{s.A, s.Gamma, s.D, s.PriceScale} {
		if p == nil || p.IsZero() {
			return ErrInvalidSnapshot
		}
	}
	if s.MidFee == nil || s.OutFee == nil || s.FeeGamma == nil || s.FeeGamma.IsZero() {
		return ErrInvalidSnapshot
	}
	return nil
}
