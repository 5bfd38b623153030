package config

import (
	"fmt"
	"strings"

	"github.com/andrew-solarstorm/go-packages/common"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/pegzap/zap-engine/internal/domain"
)

// PoolEntry names one pool the engine quotes against.
type PoolEntry struct {
	Address ethcommon.Address
	Kind    domain.PoolKind
}

type ZapConfig struct {
	// PoolsSpec lists the tracked pools as "address:kind" pairs separated by
	// commas, where kind is "stable" or "crypto".
	// Example: "0xabc...:stable,0xdef...:crypto"
	PoolsSpec string
	Pools     []PoolEntry

	// SnapshotTTLSeconds is how long a fetched pool snapshot stays quotable.
	// Default: 12, one block.
	SnapshotTTLSeconds int

	// PegToleranceTokens is the peg-point search resolution in whole tokens.
	// Default: 10
	PegToleranceTokens int
}

func (c *ZapConfig) Key() string {
	return ZAP_CONFIG_KEY
}

func (c *ZapConfig) Load() error {
	c.PoolsSpec = common.GetEnvOrDefault("ZAP_POOLS", "")
	c.SnapshotTTLSeconds = common.GetEnvOrDefaultInt("ZAP_SNAPSHOT_TTL_SECONDS", 12)
	c.PegToleranceTokens = common.GetEnvOrDefaultInt("ZAP_PEG_TOLERANCE_TOKENS", 10)
	return c.Validate()
}

func (c *ZapConfig) Validate() error {
	pools, err := ParsePoolsSpec(c.PoolsSpec)
	if err != nil {
		return err
	}
	c.Pools = pools
	if c.SnapshotTTLSeconds <= 0 {
		return fmt.Errorf("invalid zap config: snapshot ttl %d", c.SnapshotTTLSeconds)
	}
	if c.PegToleranceTokens <= 0 {
		return fmt.Errorf("invalid zap config: peg tolerance %d", c.PegToleranceTokens)
	}
	return nil
}

// ParsePoolsSpec parses the ZAP_POOLS format. An empty spec is valid and
// yields no pools; the engine then serves only degraded quotes.
func ParsePoolsSpec(spec string) ([]PoolEntry, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	parts := strings.Split(spec, ",")
	pools := make([]PoolEntry, 0, len(parts))
	for _, part := range parts {
		addr, kind, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("invalid pool entry %q: want address:kind", part)
		}
		if !ethcommon.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid pool address %q", addr)
		}
		entry := PoolEntry{Address: ethcommon.HexToAddress(addr)}
		switch strings.ToLower(strings.TrimSpace(kind)) {
		case "stable":
			entry.Kind = domain.PoolKindStable
		case "crypto":
			entry.Kind = domain.PoolKindCrypto
		default:
			return nil, fmt.Errorf("unknown pool kind %q", kind)
		}
		pools = append(pools, entry)
	}
	return pools, nil
}
