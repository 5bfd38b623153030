package http

import (
	"errors"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/pegzap/zap-engine/internal/domain"
	"github.com/pegzap/zap-engine/internal/http/httputil"
	"github.com/pegzap/zap-engine/internal/services/market"
)

type PoolHandler struct {
	marketSvc *market.Service
}

func NewPoolHandler(marketSvc *market.Service) *PoolHandler {
	return &PoolHandler{marketSvc: marketSvc}
}

func (h *PoolHandler) Root() string {
	return "/pools"
}

func (h *PoolHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.listPools)
	pub.GET("/:address", h.getPool)
}

type PoolListItem struct {
	Address string `json:"address" example:"0xD51a44d3FaE010294C616388b506AcdA1bfAAE46"`
	Kind    string `json:"kind" enums:"StableSwap,CryptoSwap" example:"StableSwap"`
}

// PoolStateResponse exposes the pool's current quoting parameters. Fields not
// applicable to the pool kind are omitted.
type PoolStateResponse struct {
	Address  string    `json:"address"`
	Kind     string    `json:"kind"`
	Balances [2]string `json:"balances"`

	// StableSwap parameters
	Amp                 string `json:"amp,omitempty"`
	BaseFee             string `json:"baseFee,omitempty"`
	OffPegFeeMultiplier string `json:"offPegFeeMultiplier,omitempty"`

	// CryptoSwap parameters
	A          string `json:"a,omitempty"`
	Gamma      string `json:"gamma,omitempty"`
	D          string `json:"d,omitempty"`
	MidFee     string `json:"midFee,omitempty"`
	OutFee     string `json:"outFee,omitempty"`
	FeeGamma   string `json:"feeGamma,omitempty"`
	PriceScale string `json:"priceScale,omitempty"`
}

func buildPoolStateResponse(snap domain.PoolSnapshot) PoolStateResponse {
	resp := PoolStateResponse{
		Address: snap.PoolAddress().Hex(),
		Kind:    snap.Kind().String(),
	}
	switch s := snap.(type) {
	case *domain.StablePoolSnapshot:
		resp.Balances = [2]string{s.Balances[0].Dec(), s.Balances[1].Dec()}
		resp.Amp = s.Amp.Dec()
		resp.BaseFee = s.BaseFee.Dec()
		resp.OffPegFeeMultiplier = s.OffPegFeeMultiplier.Dec()
	case *domain.CryptoPoolSnapshot:
		resp.Balances = [2]string{s.Balances[0].Dec(), s.Balances[1].Dec()}
		resp.A = s.A.Dec()
		resp.Gamma = s.Gamma.Dec()
		resp.D = s.D.Dec()
		resp.MidFee = s.MidFee.Dec()
		resp.OutFee = s.OutFee.Dec()
		resp.FeeGamma = s.FeeGamma.Dec()
		resp.PriceScale = s.PriceScale.Dec()
	}
	return resp
}

// @Summary List tracked pools
// @Tags pools
// @Produce json
// @Success 200 {array} PoolListItem
// @Router /api/v1/pools [get]
func (h *PoolHandler) listPools(c *gin.Context) {
	infos := h.marketSvc.Pools()
	items := make([]PoolListItem, 0, len(infos))
	for _, info := range infos {
		items = append(items, PoolListItem{
			Address: info.Address.Hex(),
			Kind:    info.Kind.String(),
		})
	}
	httputil.Success(c, items)
}

// @Summary Get pool state
// @Description Return the pool's current quoting parameters, served from the
// @Description snapshot cache when fresh.
// @Tags pools
// @Produce json
// @Param address path string true "Pool contract address"
// @Success 200 {object} PoolStateResponse
// @Failure 400 {object} httputil.Response "Invalid address"
// @Failure 404 {object} httputil.Response "Pool is not tracked"
// @Failure 502 {object} httputil.Response "Pool state unavailable"
// @Router /api/v1/pools/{address} [get]
func (h *PoolHandler) getPool(c *gin.Context) {
	raw := c.Param("address")
	if !ethcommon.IsHexAddress(raw) {
		httputil.BadRequest(c, "invalid pool address")
		return
	}

	snap, err := h.marketSvc.Snapshot(c.Request.Context(), ethcommon.HexToAddress(raw))
	if err != nil {
		if errors.Is(err, market.ErrUnknownPool) {
			httputil.NotFound(c, err.Error())
			return
		}
		httputil.BadGateway(c, "pool state unavailable: "+err.Error())
		return
	}

	httputil.Success(c, buildPoolStateResponse(snap))
}
