package handler

import (
	billingapp "github.com/drayage/backend/internal/application/billing"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
)

// ChargeHandler handles charge quoting API endpoints. Quotes are pure
// calculations over the configured rate rules; nothing is persisted.
type ChargeHandler struct {
	BaseHandler
	chargeService *billingapp.ChargeService
}

// NewChargeHandler creates a new ChargeHandler
func NewChargeHandler(chargeService *billingapp.ChargeService) *ChargeHandler {
	return &ChargeHandler{
		chargeService: chargeService,
	}
}

// RegisterRoutes registers charge quoting routes on the given group
func (h *ChargeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	charges := rg.Group("/billing/charges")
	{
		charges.POST("/per-diem/quote", h.QuotePerDiem)
		charges.POST("/demurrage/quote", h.QuoteDemurrage)
		charges.POST("/detention/quote", h.QuoteDetention)
	}
}

// TieredQuoteRequest represents a per-diem or demurrage quote request
type TieredQuoteRequest struct {
	Size string `json:"size" binding:"required"`
	Days int    `json:"days" binding:"min=0"`
}

// DetentionQuoteRequest represents a detention quote request
type DetentionQuoteRequest struct {
	ActualMinutes int `json:"actual_minutes" binding:"min=0"`
	// FreeMinutesOverride replaces the configured free time when positive
	// (per-customer contract terms).
	FreeMinutesOverride int `json:"free_minutes_override" binding:"min=0"`
}

// QuotePerDiem prices chargeable dwell days against the per-diem schedule
func (h *ChargeHandler) QuotePerDiem(c *gin.Context) {
	req, ok := h.bindTieredQuote(c)
	if !ok {
		return
	}

	quote, err := h.chargeService.QuotePerDiem(c.Request.Context(), valueobject.ContainerSize(req.Size), req.Days)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, quote)
}

// QuoteDemurrage prices dwell days past free time against the demurrage
// schedule
func (h *ChargeHandler) QuoteDemurrage(c *gin.Context) {
	req, ok := h.bindTieredQuote(c)
	if !ok {
		return
	}

	quote, err := h.chargeService.QuoteDemurrage(c.Request.Context(), valueobject.ContainerSize(req.Size), req.Days)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, quote)
}

// QuoteDetention prices elapsed dwell minutes for one day segment
func (h *ChargeHandler) QuoteDetention(c *gin.Context) {
	var req DetentionQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	quote, err := h.chargeService.QuoteDetention(c.Request.Context(), req.ActualMinutes, req.FreeMinutesOverride)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, quote)
}

func (h *ChargeHandler) bindTieredQuote(c *gin.Context) (TieredQuoteRequest, bool) {
	var req TieredQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return req, false
	}
	if !valueobject.ContainerSize(req.Size).IsValid() {
		h.BadRequest(c, "Invalid container size")
		return req, false
	}
	return req, true
}
