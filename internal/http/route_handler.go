package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/pegzap/zap-engine/internal/domain"
	"github.com/pegzap/zap-engine/internal/http/httputil"
	"github.com/pegzap/zap-engine/internal/services/market"
	"github.com/pegzap/zap-engine/internal/zap"
)

type RouteHandler struct {
	zapSvc *zap.Service
}

func NewRouteHandler(zapSvc *zap.Service) *RouteHandler {
	return &RouteHandler{zapSvc: zapSvc}
}

func (h *RouteHandler) Root() string {
	return "/route"
}

func (h *RouteHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getRoute)
}

// RouteResponse describes the optimal swap/mint split for a deposit.
type RouteResponse struct {
	Pool string `json:"pool" example:"0xD51a44d3FaE010294C616388b506AcdA1bfAAE46"`

	// PegPoint is the largest input for which swapping still breaks even.
	PegPoint string `json:"pegPoint" example:"10846000000000000000000"`

	// SwapAmount and MintAmount always sum to the requested amount.
	SwapAmount string `json:"swapAmount" example:"10846000000000000000000"`
	MintAmount string `json:"mintAmount" example:"19154000000000000000000"`

	// SwapAmountOut is the expected output of the swap leg; empty when the
	// route has no swap leg.
	SwapAmountOut string `json:"swapAmountOut,omitempty" example:"10901000000000000000000"`

	TotalOut string `json:"totalOut" example:"30055000000000000000000"`

	// Degraded marks the mint-everything fallback taken when pool state could
	// not be fetched; the route is advisory in that case.
	Degraded bool `json:"degraded" example:"false"`
}

func buildRouteResponse(route *domain.ZapRoute) RouteResponse {
	resp := RouteResponse{
		Pool:       route.Pool.Hex(),
		PegPoint:   route.PegPoint.Dec(),
		SwapAmount: route.Split.SwapAmount.Dec(),
		MintAmount: route.Split.MintAmount.Dec(),
		TotalOut:   route.TotalOut.Dec(),
		Degraded:   route.Degraded,
	}
	if route.SwapQuote != nil {
		resp.SwapAmountOut = route.SwapQuote.AmountOut.Dec()
	}
	return resp
}

// @Summary Get zap route
// @Description Split a single-sided deposit between the pool swap and the 1:1
// @Description mint so total output is maximized. Inputs up to the peg point
// @Description swap at a bonus; the remainder mints.
// @Description
// @Description When pool state cannot be fetched the route degrades to minting
// @Description everything and is flagged degraded.
// @Tags route
// @Produce json
// @Param pool query string true "Pool contract address" example("0xD51a44d3FaE010294C616388b506AcdA1bfAAE46")
// @Param tokenIn query int true "Deposited token index" Enums(0, 1) example(0)
// @Param tokenOut query int true "Received token index" Enums(0, 1) example(1)
// @Param amount query string true "Deposit amount in smallest units" example("30000000000000000000000")
// @Success 200 {object} RouteResponse
// @Failure 400 {object} httputil.Response "Invalid request parameters"
// @Failure 404 {object} httputil.Response "Pool is not tracked"
// @Failure 502 {object} httputil.Response "Routing failed"
// @Router /api/v1/route [get]
func (h *RouteHandler) getRoute(c *gin.Context) {
	parsed, ok := parseSwapRequest(c)
	if !ok {
		return
	}

	route, err := h.zapSvc.QuoteZap(c.Request.Context(), parsed.pool, parsed.tokenIn, parsed.tokenOut, parsed.amount)
	if err != nil {
		if errors.Is(err, market.ErrUnknownPool) {
			httputil.NotFound(c, err.Error())
			return
		}
		// A degraded route is still served; the flag tells the caller it was
		// built without pool state.
		if route == nil || !route.Degraded {
			httputil.BadGateway(c, "routing failed: "+err.Error())
			return
		}
	}

	httputil.Success(c, buildRouteResponse(route))
}
