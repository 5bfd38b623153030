package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/pegzap/zap-engine/internal/adapters/blockchain"
	"github.com/pegzap/zap-engine/internal/common"
	"github.com/pegzap/zap-engine/internal/config"
	"github.com/pegzap/zap-engine/internal/http"
	"github.com/pegzap/zap-engine/internal/services/market"
	"github.com/pegzap/zap-engine/internal/zap"
)

// @title Peg Zap Engine API
// @version 1.0
// @description Off-chain quote engine for single-sided deposits into pegged-asset pools.
// @description
// @description ## Features
// @description - **Exact pool math**: Bit-for-bit replication of the StableSwap and CryptoSwap invariants in integer arithmetic
// @description - **Peg-point routing**: Finds the largest deposit slice that still swaps at a bonus; the rest mints 1:1
// @description - **Fresh state**: Pool snapshots fetched in one batched eth_call, cached for a single block
// @description - **Degraded mode**: Falls back to mint-only advisory routes when the chain is unreachable
// @description
// @description ## Usage Tips
// @description - Amounts use the token's smallest units (18 decimals): 1 token = 1000000000000000000
// @description - Quotes are advisory; on-chain state may move before execution
// @description - Rate limit: 10 requests/second (burst: 20)
// @host localhost:8080
// @BasePath /
// @schemes http
// @tag.name quote
// @tag.description Price a single swap against one pool
// @tag.name route
// @tag.description Split a deposit between swapping and minting at the peg point
// @tag.name pools
// @tag.description Inspect tracked pools and their current state

func main() {
	common.TuneRuntime()

	// load env
	err := godotenv.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load env")
		return
	}

	// di container config
	conf := container.NewConf(
		&config.GeneralConfig{},
		&config.RPCConfig{},
		&config.ZapConfig{},
	)

	// di container
	dic, err := container.New(
		conf,

		&blockchain.ReaderService{},
		&market.Service{},
		&zap.Service{},

		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}

	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run di container")
		return
	}

	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
}
