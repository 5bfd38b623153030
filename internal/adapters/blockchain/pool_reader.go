package blockchain

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/pegzap/zap-engine/internal/config"
	"github.com/pegzap/zap-engine/internal/domain"
	"github.com/pegzap/zap-engine/internal/metrics"
)

const (
	ReaderServiceName = "PoolReaderService"
)

// Method selectors for the two pool ABIs. A_precise returns the amplification
// already multiplied by the precision factor, which is the encoding the
// StableSwap engine expects.
var (
	selAPrecise   = methodSelector("A_precise()")
	selFee        = methodSelector("fee()")
	selOffPegMult = methodSelector("offpeg_fee_multiplier()")
	selBalances   = methodSelector("balances(uint256)")
	selA          = methodSelector("A()")
	selGamma      = methodSelector("gamma()")
	selD          = methodSelector("D()")
	selMidFee     = methodSelector("mid_fee()")
	selOutFee     = methodSelector("out_fee()")
	selFeeGamma   = methodSelector("fee_gamma()")
	selPriceScale = methodSelector("price_scale()")
)

func methodSelector(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:4]
}

// balancesCalldata appends the ABI-encoded coin index to the balances selector.
func balancesCalldata(i uint64) []byte {
	data := make([]byte, 4+32)
	copy(data, selBalances)
	uint256.NewInt(i).WriteToSlice(data[4:])
	return data
}

// decodeWord interprets an eth_call return as a single 256-bit word.
func decodeWord(raw hexutil.Bytes) (*uint256.Int, error) {
	if len(raw) < 32 {
		return nil, fmt.Errorf("short eth_call return: %d bytes", len(raw))
	}
	return new(uint256.Int).SetBytes(raw[:32]), nil
}

// ReaderService fetches pool state over JSON-RPC. All parameters of one pool
// are read in a single eth_call batch so the snapshot is consistent within a
// block.
type ReaderService struct {
	container.DIContainer

	client  *rpc.Client
	timeout time.Duration

	maxRetries int
	baseDelay  time.Duration
}

func (svc *ReaderService) ID() string {
	return ReaderServiceName
}

func (svc *ReaderService) Configure(c container.IContainer) error {
	rpcConfig := c.GetConfig(config.RPC_CONFIG_KEY).(*config.RPCConfig)

	client, err := rpc.Dial(rpcConfig.RPCUrl)
	if err != nil {
		return fmt.Errorf("dial rpc: %w", err)
	}
	svc.client = client
	svc.timeout = time.Duration(rpcConfig.RequestTimeoutSeconds) * time.Second
	svc.maxRetries = rpcConfig.MaxRetries
	svc.baseDelay = time.Duration(rpcConfig.RetryBaseDelayMs) * time.Millisecond
	return nil
}

func (svc *ReaderService) Start() error {
	log.Info().Msg("[PoolReaderService] started")
	return nil
}

func (svc *ReaderService) Stop() error {
	if svc.client != nil {
		svc.client.Close()
	}
	return nil
}

// ReadPool fetches a fresh snapshot of the pool's quoting parameters.
func (svc *ReaderService) ReadPool(ctx context.Context, addr common.Address, kind domain.PoolKind) (domain.PoolSnapshot, error) {
	start := time.Now()
	var snap domain.PoolSnapshot
	var err error
	switch kind {
	case domain.PoolKindStable:
		snap, err = svc.readStablePool(ctx, addr)
	case domain.PoolKindCrypto:
		snap, err = svc.readCryptoPool(ctx, addr)
	default:
		return nil, fmt.Errorf("%w: unknown pool kind %d", domain.ErrInvalidSnapshot, kind)
	}
	if err != nil {
		metrics.SnapshotFetchFailures.WithLabelValues(kind.String()).Inc()
		return nil, err
	}
	metrics.SnapshotFetchDuration.Observe(time.Since(start).Seconds())
	return snap, nil
}

func (svc *ReaderService) readStablePool(ctx context.Context, addr common.Address) (*domain.StablePoolSnapshot, error) {
	words, err := svc.callBatch(ctx, addr, [][]byte{
		balancesCalldata(0),
		balancesCalldata(1),
		selAPrecise,
		selFee,
		selOffPegMult,
	})
	if err != nil {
		return nil, err
	}
	snap := &domain.StablePoolSnapshot{
		Address:             addr,
		Balances:            [2]*uint256.Int{words[0], words[1]},
		Amp:                 words[2],
		BaseFee:             words[3],
		OffPegFeeMultiplier: words[4],
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("stable pool %s: %w", addr.Hex(), err)
	}
	return snap, nil
}

func (svc *ReaderService) readCryptoPool(ctx context.Context, addr common.Address) (*domain.CryptoPoolSnapshot, error) {
	words, err := svc.callBatch(ctx, addr, [][]byte{
		balancesCalldata(0),
		balancesCalldata(1),
		selA,
		selGamma,
		selD,
		selMidFee,
		selOutFee,
		selFeeGamma,
		selPriceScale,
	})
	if err != nil {
		return nil, err
	}
	snap := &domain.CryptoPoolSnapshot{
		Address:    addr,
		Balances:   [2]*uint256.Int{words[0], words[1]},
		A:          words[2],
		Gamma:      words[3],
		D:          words[4],
		MidFee:     words[5],
		OutFee:     words[6],
		FeeGamma:   words[7],
		PriceScale: words[8],
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("crypto pool %s: %w", addr.Hex(), err)
	}
	return snap, nil
}

// callBatch sends one eth_call per calldata entry in a single batch request
// and decodes every return as a 256-bit word. Transient failures retry with
// exponential backoff.
func (svc *ReaderService) callBatch(ctx context.Context, addr common.Address, calls [][]byte) ([]*uint256.Int, error) {
	batch := make([]rpc.BatchElem, len(calls))
	results := make([]hexutil.Bytes, len(calls))
	for i, data := range calls {
		batch[i] = rpc.BatchElem{
			Method: "eth_call",
			Args: []interface{}{
				map[string]interface{}{
					"to":   addr,
					"data": hexutil.Bytes(data),
				},
				"latest",
			},
			Result: &results[i],
		}
	}

	err := withRetry(ctx, svc.maxRetries, svc.baseDelay, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, svc.timeout)
		defer cancel()
		if err := svc.client.BatchCallContext(callCtx, batch); err != nil {
			return err
		}
		for i := range batch {
			if batch[i].Error != nil {
				return fmt.Errorf("eth_call %d on %s: %w", i, addr.Hex(), batch[i].Error)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	words := make([]*uint256.Int, len(results))
	for i, raw := range results {
		word, err := decodeWord(raw)
		if err != nil {
			return nil, fmt.Errorf("call %d on %s: %w", i, addr.Hex(), err)
		}
		words[i] = word
	}
	return words, nil
}
