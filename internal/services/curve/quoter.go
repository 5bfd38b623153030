package curve

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/pegzap/zap-engine/internal/domain"
)

// Quoter prices one swap against one pool snapshot. The two invariant engines
// share this contract but nothing of their internals; callers pick an
// implementation by snapshot kind rather than unifying the math.
type Quoter interface {
	Quote(i, j int, dx *uint256.Int, snap domain.PoolSnapshot) (*uint256.Int, error)
}

// ForSnapshot returns the engine matching the snapshot's pool kind.
func ForSnapshot(snap domain.PoolSnapshot) (Quoter, error) {
	switch snap.Kind() {
	case domain.PoolKindStable:
		return StableQuoter{}, nil
	case domain.PoolKindCrypto:
		return CryptoQuoter{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown pool kind %d", domain.ErrInvalidSnapshot, snap.Kind())
	}
}
