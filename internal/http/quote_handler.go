package http

import (
	"errors"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	"github.com/pegzap/zap-engine/internal/http/httputil"
	"github.com/pegzap/zap-engine/internal/services/market"
	"github.com/pegzap/zap-engine/internal/zap"
)

type QuoteHandler struct {
	zapSvc *zap.Service
}

func NewQuoteHandler(zapSvc *zap.Service) *QuoteHandler {
	return &QuoteHandler{zapSvc: zapSvc}
}

func (h *QuoteHandler) Root() string {
	return "/quote"
}

func (h *QuoteHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getQuote)
}

// SwapRequest carries the parameters shared by the quote and route endpoints.
type SwapRequest struct {
	// Pool contract address (hex)
	Pool string `form:"pool" binding:"required" example:"0xD51a44d3FaE010294C616388b506AcdA1bfAAE46"`

	// Index of the deposited token (0 or 1)
	TokenIn int `form:"tokenIn" example:"0"`

	// Index of the received token (0 or 1)
	TokenOut int `form:"tokenOut" example:"1"`

	// Amount in the token's smallest units (18 decimals)
	Amount string `form:"amount" binding:"required" example:"1000000000000000000000"`
}

// QuoteResponse is a single-point swap price.
type QuoteResponse struct {
	Pool      string `json:"pool" example:"0xD51a44d3FaE010294C616388b506AcdA1bfAAE46"`
	TokenIn   int    `json:"tokenIn" example:"0"`
	TokenOut  int    `json:"tokenOut" example:"1"`
	AmountIn  string `json:"amountIn" example:"1000000000000000000000"`
	AmountOut string `json:"amountOut" example:"1003540000000000000000"`
}

type parsedSwapRequest struct {
	pool     ethcommon.Address
	tokenIn  int
	tokenOut int
	amount   *uint256.Int
}

func parseSwapRequest(c *gin.Context) (*parsedSwapRequest, bool) {
	var req SwapRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, "invalid query parameters: "+err.Error())
		return nil, false
	}

	if !ethcommon.IsHexAddress(req.Pool) {
		httputil.BadRequest(c, "invalid pool address")
		return nil, false
	}

	if req.TokenIn < 0 || req.TokenIn > 1 || req.TokenOut < 0 || req.TokenOut > 1 || req.TokenIn == req.TokenOut {
		httputil.BadRequest(c, "tokenIn and tokenOut must be distinct indexes 0 or 1")
		return nil, false
	}

	amount, err := uint256.FromDecimal(req.Amount)
	if err != nil || amount.IsZero() {
		httputil.BadRequest(c, "invalid amount: must be a positive integer")
		return nil, false
	}

	return &parsedSwapRequest{
		pool:     ethcommon.HexToAddress(req.Pool),
		tokenIn:  req.TokenIn,
		tokenOut: req.TokenOut,
		amount:   amount,
	}, true
}

// @Summary Get swap quote
// @Description Price a single swap against one pool using its current on-chain
// @Description state. Amounts use the token's smallest units (18 decimals).
// @Tags quote
// @Produce json
// @Param pool query string true "Pool contract address" example("0xD51a44d3FaE010294C616388b506AcdA1bfAAE46")
// @Param tokenIn query int true "Deposited token index" Enums(0, 1) example(0)
// @Param tokenOut query int true "Received token index" Enums(0, 1) example(1)
// @Param amount query string true "Input amount in smallest units" example("1000000000000000000000")
// @Success 200 {object} QuoteResponse
// @Failure 400 {object} httputil.Response "Invalid request parameters"
// @Failure 404 {object} httputil.Response "Pool is not tracked"
// @Failure 502 {object} httputil.Response "Pool state unavailable"
// @Router /api/v1/quote [get]
func (h *QuoteHandler) getQuote(c *gin.Context) {
	parsed, ok := parseSwapRequest(c)
	if !ok {
		return
	}

	quote, err := h.zapSvc.PointQuote(c.Request.Context(), parsed.pool, parsed.tokenIn, parsed.tokenOut, parsed.amount)
	if err != nil {
		if errors.Is(err, market.ErrUnknownPool) {
			httputil.NotFound(c, err.Error())
			return
		}
		httputil.BadGateway(c, "quote failed: "+err.Error())
		return
	}

	httputil.Success(c, QuoteResponse{
		Pool:      parsed.pool.Hex(),
		TokenIn:   quote.InIndex,
		TokenOut:  quote.OutIndex,
		AmountIn:  quote.AmountIn.Dec(),
		AmountOut: quote.AmountOut.Dec(),
	})
}
