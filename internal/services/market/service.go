package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/pegzap/zap-engine/internal/adapters/blockchain"
	"github.com/pegzap/zap-engine/internal/config"
	"github.com/pegzap/zap-engine/internal/domain"
	"github.com/pegzap/zap-engine/internal/metrics"
)

const (
	ServiceName = "MarketService"
)

var ErrUnknownPool = errors.New("pool is not tracked")

// PoolReader is the slice of the chain adapter this service needs.
type PoolReader interface {
	ReadPool(ctx context.Context, addr common.Address, kind domain.PoolKind) (domain.PoolSnapshot, error)
}

// PoolInfo describes one tracked pool.
type PoolInfo struct {
	Address common.Address
	Kind    domain.PoolKind
}

// Service owns the tracked pool set and serves their snapshots read-through:
// cache first, chain on a miss. Consumers never talk to the chain adapter
// directly.
type Service struct {
	container.DIContainer

	reader PoolReader
	cache  *SnapshotCache

	pools map[common.Address]domain.PoolKind
	order []common.Address
}

func (svc *Service) ID() string {
	return ServiceName
}

func (svc *Service) Configure(c container.IContainer) error {
	zapConfig := c.GetConfig(config.ZAP_CONFIG_KEY).(*config.ZapConfig)
	svc.reader = c.Instance(blockchain.ReaderServiceName).(PoolReader)
	svc.cache = NewSnapshotCache(time.Duration(zapConfig.SnapshotTTLSeconds) * time.Second)

	svc.pools = make(map[common.Address]domain.PoolKind, len(zapConfig.Pools))
	svc.order = make([]common.Address, 0, len(zapConfig.Pools))
	for _, entry := range zapConfig.Pools {
		if _, dup := svc.pools[entry.Address]; dup {
			return fmt.Errorf("duplicate pool %s in config", entry.Address.Hex())
		}
		svc.pools[entry.Address] = entry.Kind
		svc.order = append(svc.order, entry.Address)
	}
	return nil
}

func (svc *Service) Start() error {
	log.Info().Int("pools", len(svc.pools)).Msg("[MarketService] started")
	go svc.warmCache()
	return nil
}

func (svc *Service) Stop() error {
	return nil
}

// Snapshot returns the pool's current state, fetching from chain when the
// cached copy is missing or expired. The returned snapshot is immutable.
func (svc *Service) Snapshot(ctx context.Context, addr common.Address) (domain.PoolSnapshot, error) {
	kind, ok := svc.pools[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPool, addr.Hex())
	}

	if snap, hit := svc.cache.Get(addr); hit {
		metrics.SnapshotCacheHits.Inc()
		return snap, nil
	}
	metrics.SnapshotCacheMisses.Inc()

	snap, err := svc.reader.ReadPool(ctx, addr, kind)
	if err != nil {
		return nil, err
	}
	svc.cache.Put(addr, snap)
	metrics.SnapshotCacheSize.Set(float64(svc.cache.Size()))
	return snap, nil
}

// Pools lists the tracked pools in configuration order.
func (svc *Service) Pools() []PoolInfo {
	infos := make([]PoolInfo, 0, len(svc.order))
	for _, addr := range svc.order {
		infos = append(infos, PoolInfo{Address: addr, Kind: svc.pools[addr]})
	}
	return infos
}

// warmCache primes the cache at startup so first quotes skip the fetch. A pool
// that fails to warm is not fatal; it retries naturally on first use.
func (svc *Service) warmCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	warmed := 0
	for addr := range svc.pools {
		if _, err := svc.Snapshot(ctx, addr); err != nil {
			log.Warn().Err(err).Str("pool", addr.Hex()).Msg("[MarketService] cache warm failed")
			continue
		}
		warmed++
	}
	log.Info().Int("warmed", warmed).Int("pools", len(svc.pools)).Msg("[MarketService] cache warm complete")
}
