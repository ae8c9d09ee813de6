package handler

import (
	"time"

	billingapp "github.com/drayage/backend/internal/application/billing"
	"github.com/drayage/backend/internal/domain/billing"
	"github.com/drayage/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles invoice ledger API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// RegisterRoutes registers invoice routes on the given group
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/billing/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/stats/summary", h.GetStatusSummary)
		invoices.GET("/number/:number", h.GetByNumber)
		invoices.GET("/:id", h.GetByID)
		invoices.POST("/:id/items", h.AddLineItem)
		invoices.DELETE("/:id/items/:itemID", h.RemoveLineItem)
		invoices.POST("/:id/submit", h.Submit)
		invoices.POST("/:id/send", h.Send)
		invoices.POST("/:id/payments", h.RecordPayment)
		invoices.POST("/:id/void", h.Void)
	}
}

// CreateInvoiceRequest represents a request to create a new invoice
type CreateInvoiceRequest struct {
	CustomerID   string     `json:"customer_id" binding:"required,uuid"`
	CustomerName string     `json:"customer_name" binding:"required,min=1,max=200"`
	TaxRate      *float64   `json:"tax_rate"`
	DueDate      *time.Time `json:"due_date"`
	Remark       string     `json:"remark"`
}

// AddLineItemRequest represents a request to add a charge line
type AddLineItemRequest struct {
	ChargeType  string  `json:"charge_type" binding:"required"`
	Description string  `json:"description" binding:"required,min=1,max=500"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" binding:"gte=0"`
}

// RecordPaymentRequest represents a request to record a payment
type RecordPaymentRequest struct {
	Amount          float64 `json:"amount" binding:"required,gt=0"`
	Method          string  `json:"method" binding:"required"`
	ReferenceNumber string  `json:"reference_number"`
	IdempotencyKey  string  `json:"idempotency_key"`
}

// VoidInvoiceRequest represents a request to void an invoice
type VoidInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ListInvoicesRequest represents invoice list query parameters
type ListInvoicesRequest struct {
	dto.ListRequest
	Status     string `form:"status"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	ChargeType string `form:"charge_type"`
}

// Create creates a new draft invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	appReq := billingapp.CreateInvoiceRequest{
		CustomerID:   customerID,
		CustomerName: req.CustomerName,
		DueDate:      req.DueDate,
		Remark:       req.Remark,
	}
	if req.TaxRate != nil {
		appReq.TaxRate = toDecimalPtr(*req.TaxRate)
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, invoice)
}

// GetByID retrieves an invoice by its ID
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// GetByNumber retrieves an invoice by its invoice number
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoiceByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// List lists invoices with filtering and pagination
func (h *InvoiceHandler) List(c *gin.Context) {
	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := billing.InvoiceFilter{Filter: req.ToFilter()}

	if req.Status != "" {
		status := billing.InvoiceStatus(req.Status)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid invoice status")
			return
		}
		filter.Status = &status
	}
	if req.CustomerID != "" {
		customerID, err := uuid.Parse(req.CustomerID)
		if err != nil {
			h.BadRequest(c, "Invalid customer ID format")
			return
		}
		filter.CustomerID = &customerID
	}
	if req.ChargeType != "" {
		chargeType := billing.ChargeType(req.ChargeType)
		if !chargeType.IsValid() {
			h.BadRequest(c, "Invalid charge type")
			return
		}
		filter.ChargeType = &chargeType
	}

	var err error
	if filter.DueFrom, err = parseTimeQuery(c, "due_from"); err != nil {
		h.BadRequest(c, "due_from must be RFC 3339")
		return
	}
	if filter.DueTo, err = parseTimeQuery(c, "due_to"); err != nil {
		h.BadRequest(c, "due_to must be RFC 3339")
		return
	}

	page, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetStatusSummary reports invoice counts by status
func (h *InvoiceHandler) GetStatusSummary(c *gin.Context) {
	summary, err := h.invoiceService.StatusSummary(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// AddLineItem adds a charge line to a draft or pending invoice
func (h *InvoiceHandler) AddLineItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req AddLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	invoice, err := h.invoiceService.AddLineItem(c.Request.Context(), id, billingapp.AddLineItemRequest{
		ChargeType:  billing.ChargeType(req.ChargeType),
		Description: req.Description,
		Quantity:    toDecimal(req.Quantity),
		UnitPrice:   toDecimal(req.UnitPrice),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// RemoveLineItem removes a charge line from a draft or pending invoice
func (h *InvoiceHandler) RemoveLineItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}
	itemID, err := uuid.Parse(c.Param("itemID"))
	if err != nil {
		h.BadRequest(c, "Invalid line item ID format")
		return
	}

	invoice, err := h.invoiceService.RemoveLineItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Submit moves a draft invoice to pending
func (h *InvoiceHandler) Submit(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.SubmitInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Send marks a pending invoice as sent to the customer
func (h *InvoiceHandler) Send(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.SendInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// RecordPayment records a payment against an invoice. The idempotency key
// may come from the Idempotency-Key header or the request body; the header
// wins when both are present.
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	method := billing.PaymentMethod(req.Method)
	if !method.IsValid() {
		h.BadRequest(c, "Invalid payment method")
		return
	}

	idempotencyKey := c.GetHeader("Idempotency-Key")
	if idempotencyKey == "" {
		idempotencyKey = req.IdempotencyKey
	}

	invoice, err := h.invoiceService.RecordPayment(c.Request.Context(), id, billingapp.RecordPaymentRequest{
		Amount:          toDecimal(req.Amount),
		Method:          method,
		ReferenceNumber: req.ReferenceNumber,
		IdempotencyKey:  idempotencyKey,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Void voids an invoice with a reason
func (h *InvoiceHandler) Void(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req VoidInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	invoice, err := h.invoiceService.VoidInvoice(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}
