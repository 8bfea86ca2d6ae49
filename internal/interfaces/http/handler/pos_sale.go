package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/erp/posgateway/internal/domain/pos"
	"github.com/erp/posgateway/internal/infrastructure/logger"
	"github.com/erp/posgateway/internal/interfaces/http/dto"
	"github.com/erp/posgateway/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotentReplayHeader marks a response served from an earlier completed attempt
const IdempotentReplayHeader = "X-Idempotent-Replay"

// SaleService processes terminal sales
type SaleService interface {
	ProcessSale(ctx context.Context, p *pos.SalePayload) (*pos.SaleResult, error)
}

// POSSaleHandler serves the terminal sale endpoint
type POSSaleHandler struct {
	sales SaleService
}

// NewPOSSaleHandler creates a new POSSaleHandler
func NewPOSSaleHandler(sales SaleService) *POSSaleHandler {
	return &POSSaleHandler{sales: sales}
}

// RegisterRoutes mounts the handler under /pos
func (h *POSSaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/pos/sales", h.ProcessSale)
}

// ProcessSale godoc
// @ID           processPOSSale
// @Summary      Ingest a POS sale
// @Description  Record a completed terminal sale as an invoice, stock movements, ledger postings and an optional receipt. Resending a completed transaction_id replays the original result.
// @Tags         pos
// @Accept       json
// @Produce      json
// @Param        x-pos-api-key header string true "Terminal API key"
// @Param        request body pos.SalePayload true "Sale payload"
// @Success      200 {object} dto.SaleResponse
// @Header       200 {string} X-Idempotent-Replay "true when the result was replayed"
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      413 {object} dto.ErrorResponse
// @Failure      429 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     POSAPIKey
// @Router       /pos/sales [post]
func (h *POSSaleHandler) ProcessSale(c *gin.Context) {
	var payload pos.SalePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.AbortBodyTooLarge(c)
			return
		}
		saleErr := pos.NewInvalidPayloadError("Malformed JSON body",
			[]pos.FieldViolation{{Field: "body", Error: err.Error()}})
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(saleErr))
		return
	}

	result, err := h.sales.ProcessSale(c.Request.Context(), &payload)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if result.Replayed {
		c.Header(IdempotentReplayHeader, "true")
	}
	c.JSON(http.StatusOK, dto.NewSaleResponse(result))
}

func (h *POSSaleHandler) respondError(c *gin.Context, err error) {
	var saleErr *pos.SaleError
	if !errors.As(err, &saleErr) {
		saleErr = pos.NewInternalError(err)
	}
	if saleErr.Code == pos.ErrCodeInternal {
		logger.L(c.Request.Context()).Error("Sale request failed", zap.Error(err))
		_ = c.Error(err)
	}
	c.JSON(dto.HTTPStatus(saleErr.Code), dto.NewErrorResponse(saleErr))
}
