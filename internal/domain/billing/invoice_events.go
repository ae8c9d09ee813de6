package billing

import (
	"time"

	"github.com/drayage/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const invoiceAggregateType = "Invoice"

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return "InvoiceCreated"
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCreated", invoiceAggregateType, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		CustomerName:    inv.CustomerName,
		TaxRate:         inv.TaxRate,
		DueDate:         inv.DueDate,
	}
}

// InvoiceLineItemAddedEvent is raised when a line item is added to an invoice
type InvoiceLineItemAddedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	LineItemID    uuid.UUID       `json:"line_item_id"`
	ChargeType    ChargeType      `json:"charge_type"`
	Amount        decimal.Decimal `json:"amount"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *InvoiceLineItemAddedEvent) EventType() string {
	return "InvoiceLineItemAdded"
}

// NewInvoiceLineItemAddedEvent creates a new InvoiceLineItemAddedEvent
func NewInvoiceLineItemAddedEvent(inv *Invoice, item *InvoiceLineItem) *InvoiceLineItemAddedEvent {
	return &InvoiceLineItemAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceLineItemAdded", invoiceAggregateType, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		LineItemID:      item.ID,
		ChargeType:      item.ChargeType,
		Amount:          item.Amount,
		Subtotal:        inv.Subtotal,
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoiceLineItemRemovedEvent is raised when a line item is removed from an invoice
type InvoiceLineItemRemovedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	LineItemID    uuid.UUID       `json:"line_item_id"`
	ChargeType    ChargeType      `json:"charge_type"`
	Amount        decimal.Decimal `json:"amount"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *InvoiceLineItemRemovedEvent) EventType() string {
	return "InvoiceLineItemRemoved"
}

// NewInvoiceLineItemRemovedEvent creates a new InvoiceLineItemRemovedEvent
func NewInvoiceLineItemRemovedEvent(inv *Invoice, item *InvoiceLineItem) *InvoiceLineItemRemovedEvent {
	return &InvoiceLineItemRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceLineItemRemoved", invoiceAggregateType, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		LineItemID:      item.ID,
		ChargeType:      item.ChargeType,
		Amount:          item.Amount,
		Subtotal:        inv.Subtotal,
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoiceSubmittedEvent is raised when an invoice moves from DRAFT to PENDING
type InvoiceSubmittedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	LineItemCount int             `json:"line_item_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *InvoiceSubmittedEvent) EventType() string {
	return "InvoiceSubmitted"
}

// NewInvoiceSubmittedEvent creates a new InvoiceSubmittedEvent
func NewInvoiceSubmittedEvent(inv *Invoice) *InvoiceSubmittedEvent {
	return &InvoiceSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceSubmitted", invoiceAggregateType, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		LineItemCount:   len(inv.LineItems),
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoiceSentEvent is raised when an invoice is sent to the customer
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	SentDate      time.Time       `json:"sent_date"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
}

// EventType returns the event type name
func (e *InvoiceSentEvent) EventType() string {
	return "InvoiceSent"
}

// NewInvoiceSentEvent creates a new InvoiceSentEvent
func NewInvoiceSentEvent(inv *Invoice) *InvoiceSentEvent {
	sentDate := time.Now()
	if inv.SentDate != nil {
		sentDate = *inv.SentDate
	}
	return &InvoiceSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceSent", invoiceAggregateType, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		TotalAmount:     inv.TotalAmount,
		SentDate:        sentDate,
		DueDate:         inv.DueDate,
	}
}

// InvoicePaymentRecordedEvent is raised when a payment leaves a balance outstanding
type InvoicePaymentRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	Method        PaymentMethod   `json:"method"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
}

// EventType returns the event type name
func (e *InvoicePaymentRecordedEvent) EventType() string {
	return "InvoicePaymentRecorded"
}

// NewInvoicePaymentRecordedEvent creates a new InvoicePaymentRecordedEvent
func NewInvoicePaymentRecordedEvent(inv *Invoice, payment *Payment) *InvoicePaymentRecordedEvent {
	return &InvoicePaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaymentRecorded", invoiceAggregateType, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		PaymentID:       payment.ID,
		PaymentAmount:   payment.Amount,
		Method:          payment.Method,
		PaidAmount:      inv.PaidAmount,
		BalanceDue:      inv.BalanceDue,
	}
}

// InvoicePaidEvent is raised when an invoice is fully paid
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaidDate      time.Time       `json:"paid_date"`
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return "InvoicePaid"
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	paidDate := time.Now()
	if inv.PaidDate != nil {
		paidDate = *inv.PaidDate
	}
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaid", invoiceAggregateType, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		TotalAmount:     inv.TotalAmount,
		PaidAmount:      inv.PaidAmount,
		PaidDate:        paidDate,
	}
}

// InvoiceVoidedEvent is raised when an invoice is voided
type InvoiceVoidedEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	PreviousStatus InvoiceStatus   `json:"previous_status"`
	VoidReason     string          `json:"void_reason"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	VoidedAt       time.Time       `json:"voided_at"`
}

// EventType returns the event type name
func (e *InvoiceVoidedEvent) EventType() string {
	return "InvoiceVoided"
}

// NewInvoiceVoidedEvent creates a new InvoiceVoidedEvent
func NewInvoiceVoidedEvent(inv *Invoice, previousStatus InvoiceStatus) *InvoiceVoidedEvent {
	voidedAt := time.Now()
	if inv.VoidedAt != nil {
		voidedAt = *inv.VoidedAt
	}
	return &InvoiceVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceVoided", invoiceAggregateType, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		PreviousStatus:  previousStatus,
		VoidReason:      inv.VoidReason,
		TotalAmount:     inv.TotalAmount,
		PaidAmount:      inv.PaidAmount,
		VoidedAt:        voidedAt,
	}
}

// InvoiceMarkedOverdueEvent is raised when the overdue sweep persists OVERDUE
type InvoiceMarkedOverdueEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	DueDate       time.Time       `json:"due_date"`
	MarkedAt      time.Time       `json:"marked_at"`
}

// EventType returns the event type name
func (e *InvoiceMarkedOverdueEvent) EventType() string {
	return "InvoiceMarkedOverdue"
}

// NewInvoiceMarkedOverdueEvent creates a new InvoiceMarkedOverdueEvent
func NewInvoiceMarkedOverdueEvent(inv *Invoice, markedAt time.Time) *InvoiceMarkedOverdueEvent {
	var dueDate time.Time
	if inv.DueDate != nil {
		dueDate = *inv.DueDate
	}
	return &InvoiceMarkedOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceMarkedOverdue", invoiceAggregateType, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		BalanceDue:      inv.BalanceDue,
		DueDate:         dueDate,
		MarkedAt:        markedAt,
	}
}
