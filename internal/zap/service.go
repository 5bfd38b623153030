package zap

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/pegzap/zap-engine/internal/config"
	"github.com/pegzap/zap-engine/internal/domain"
	"github.com/pegzap/zap-engine/internal/metrics"
	"github.com/pegzap/zap-engine/internal/services"
	"github.com/pegzap/zap-engine/internal/services/curve"
	"github.com/pegzap/zap-engine/internal/services/market"
	"github.com/pegzap/zap-engine/internal/services/router"
)

const (
	ServiceName = "ZapService"
)

// snapshotSource is the slice of the market service this service needs.
type snapshotSource interface {
	Snapshot(ctx context.Context, addr common.Address) (domain.PoolSnapshot, error)
}

// Service computes zap routes: given a single-sided deposit, how much to swap
// through the pool and how much to mint 1:1 so total output is maximized.
type Service struct {
	container.DIContainer

	source       snapshotSource
	pegTolerance *uint256.Int
	log          *services.ServiceLogger
}

func (svc *Service) ID() string {
	return ServiceName
}

func (svc *Service) Configure(c container.IContainer) error {
	zapConfig := c.GetConfig(config.ZAP_CONFIG_KEY).(*config.ZapConfig)
	svc.source = c.Instance(market.ServiceName).(snapshotSource)
	svc.pegTolerance = new(uint256.Int).Mul(
		uint256.NewInt(uint64(zapConfig.PegToleranceTokens)),
		curve.Precision,
	)
	svc.log = services.NewServiceLogger(svc)
	return nil
}

func (svc *Service) Start() error {
	svc.log.Info().Str("peg_tolerance", svc.pegTolerance.Dec()).Msg("started")
	return nil
}

func (svc *Service) Stop() error {
	return nil
}

// QuoteZap routes a deposit of total units of token i into the pool's token j
// position. When pool state cannot be obtained the route degrades to minting
// everything 1:1; the degraded route is returned together with the cause so
// callers can still serve it as an advisory answer.
func (svc *Service) QuoteZap(ctx context.Context, pool common.Address, i, j int, total *uint256.Int) (*domain.ZapRoute, error) {
	snap, err := svc.source.Snapshot(ctx, pool)
	if err != nil {
		metrics.DegradedRoutes.Inc()
		metrics.RouteRequests.WithLabelValues("unknown", "degraded").Inc()
		svc.log.Warn().Err(err).Str("pool", pool.Hex()).Msg("degrading to mint-only route")
		return &domain.ZapRoute{
			Pool:     pool,
			PegPoint: new(uint256.Int),
			Split:    router.SplitAmount(total, new(uint256.Int)),
			TotalOut: total.Clone(),
			Degraded: true,
		}, err
	}
	kind := snap.Kind().String()

	quoter, err := curve.ForSnapshot(snap)
	if err != nil {
		metrics.RouteRequests.WithLabelValues(kind, "error").Inc()
		return nil, err
	}

	pegStart := time.Now()
	peg, err := router.FindPegPoint(quoter, snap, i, j, svc.pegTolerance)
	if err != nil {
		metrics.RouteRequests.WithLabelValues(kind, "error").Inc()
		return nil, fmt.Errorf("peg point for %s: %w", pool.Hex(), err)
	}
	metrics.PegSearchDuration.Observe(time.Since(pegStart).Seconds())

	split := router.SplitAmount(total, peg)
	route := &domain.ZapRoute{
		Pool:     pool,
		PegPoint: peg,
		Split:    split,
		TotalOut: split.MintAmount.Clone(),
	}
	if !split.SwapAmount.IsZero() {
		dy, err := quoter.Quote(i, j, split.SwapAmount, snap)
		if err != nil {
			metrics.RouteRequests.WithLabelValues(kind, "error").Inc()
			return nil, fmt.Errorf("swap leg for %s: %w", pool.Hex(), err)
		}
		route.SwapQuote = &domain.SwapQuote{
			InIndex:   i,
			OutIndex:  j,
			AmountIn:  split.SwapAmount.Clone(),
			AmountOut: dy,
		}
		route.TotalOut.Add(route.TotalOut, dy)
	}

	metrics.RouteRequests.WithLabelValues(kind, "ok").Inc()
	return route, nil
}

// PointQuote prices a plain swap against the pool, no mint leg involved.
func (svc *Service) PointQuote(ctx context.Context, pool common.Address, i, j int, dx *uint256.Int) (*domain.SwapQuote, error) {
	snap, err := svc.source.Snapshot(ctx, pool)
	if err != nil {
		metrics.QuoteRequests.WithLabelValues("unknown", "error").Inc()
		return nil, err
	}
	kind := snap.Kind().String()

	quoter, err := curve.ForSnapshot(snap)
	if err != nil {
		metrics.QuoteRequests.WithLabelValues(kind, "error").Inc()
		return nil, err
	}

	start := time.Now()
	dy, err := quoter.Quote(i, j, dx, snap)
	if err != nil {
		metrics.QuoteRequests.WithLabelValues(kind, "error").Inc()
		return nil, fmt.Errorf("quote for %s: %w", pool.Hex(), err)
	}
	metrics.QuoteDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	metrics.QuoteRequests.WithLabelValues(kind, "ok").Inc()

	return &domain.SwapQuote{
		InIndex:   i,
		OutIndex:  j,
		AmountIn:  dx.Clone(),
		AmountOut: dy,
	}, nil
}
