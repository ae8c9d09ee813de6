package billing

import (
	"fmt"
	"time"

	"github.com/drayage/backend/internal/domain/shared"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "DRAFT"   // Being assembled, line items editable
	InvoiceStatusPending InvoiceStatus = "PENDING" // Submitted internally, awaiting send
	InvoiceStatusSent    InvoiceStatus = "SENT"    // Delivered to customer, payable
	InvoiceStatusPartial InvoiceStatus = "PARTIAL" // Partially paid, balance remaining
	InvoiceStatusPaid    InvoiceStatus = "PAID"    // Fully paid, balance zero
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE" // Past due date, persisted by the sweep
	InvoiceStatusVoid    InvoiceStatus = "VOID"    // Cancelled, amounts frozen
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusPending, InvoiceStatusSent,
		InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusOverdue,
		InvoiceStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are allowed
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusVoid
}

// CanModifyLineItems returns true if line items may be added or removed
func (s InvoiceStatus) CanModifyLineItems() bool {
	return s == InvoiceStatusDraft || s == InvoiceStatusPending
}

// CanRecordPayment returns true if payments can be recorded in this status
func (s InvoiceStatus) CanRecordPayment() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusPartial || s == InvoiceStatusOverdue
}

// Invoice is the billing ledger aggregate root. All monetary fields are
// derived: every mutation recomputes subtotal, tax, total, paid amount and
// balance from the line items and payments, so the stored amounts can never
// drift from their sources.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string               `json:"invoice_number"`
	CustomerID    uuid.UUID            `json:"customer_id"`
	CustomerName  string               `json:"customer_name"`
	Status        InvoiceStatus        `json:"status"`
	Currency      valueobject.Currency `json:"currency"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	TaxRate       decimal.Decimal      `json:"tax_rate"`
	TaxAmount     decimal.Decimal      `json:"tax_amount"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	PaidAmount    decimal.Decimal      `json:"paid_amount"`
	BalanceDue    decimal.Decimal      `json:"balance_due"`
	LineItems     LineItems            `json:"line_items"`
	Payments      Payments             `json:"payments"`
	DueDate       *time.Time           `json:"due_date"`
	SentDate      *time.Time           `json:"sent_date"`
	PaidDate      *time.Time           `json:"paid_date"`
	VoidedAt      *time.Time           `json:"voided_at"`
	VoidReason    string               `json:"void_reason,omitempty"`
	Remark        string               `json:"remark,omitempty"`
}

// NewInvoice creates a new invoice in DRAFT status. TaxRate is a fraction
// (0.08875 for 8.875%), not a percentage.
func NewInvoice(
	invoiceNumber string,
	customerID uuid.UUID,
	customerName string,
	taxRate decimal.Decimal,
	dueDate *time.Time,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if taxRate.IsNegative() || taxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be in [0, 1)")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		CustomerID:        customerID,
		CustomerName:      customerName,
		Status:            InvoiceStatusDraft,
		Currency:          valueobject.DefaultCurrency,
		Subtotal:          decimal.Zero,
		TaxRate:           taxRate,
		TaxAmount:         decimal.Zero,
		TotalAmount:       decimal.Zero,
		PaidAmount:        decimal.Zero,
		BalanceDue:        decimal.Zero,
		LineItems:         LineItems{},
		Payments:          Payments{},
		DueDate:           dueDate,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// AddLineItem appends a charge to the invoice and recomputes totals.
// Only allowed while the invoice is in DRAFT or PENDING.
func (inv *Invoice) AddLineItem(item *InvoiceLineItem) error {
	if !inv.Status.CanModifyLineItems() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot add line items to invoice in %s status", inv.Status))
	}
	if item == nil {
		return shared.NewDomainError("INVALID_LINE_ITEM", "Line item cannot be nil")
	}

	inv.LineItems = append(inv.LineItems, *item)
	inv.recalculateTotals()

	inv.AddDomainEvent(NewInvoiceLineItemAddedEvent(inv, item))
	inv.touch()

	return nil
}

// RemoveLineItem removes a charge by ID and recomputes totals
func (inv *Invoice) RemoveLineItem(itemID uuid.UUID) error {
	if !inv.Status.CanModifyLineItems() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot remove line items from invoice in %s status", inv.Status))
	}

	for i, item := range inv.LineItems {
		if item.ID == itemID {
			removed := item
			inv.LineItems = append(inv.LineItems[:i], inv.LineItems[i+1:]...)
			inv.recalculateTotals()

			inv.AddDomainEvent(NewInvoiceLineItemRemovedEvent(inv, &removed))
			inv.touch()
			return nil
		}
	}
	return shared.NewDomainError(shared.CodeNotFound, "Line item not found on invoice")
}

// Submit moves the invoice from DRAFT to PENDING. Requires at least one
// line item.
func (inv *Invoice) Submit() error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot submit invoice in %s status", inv.Status))
	}
	if len(inv.LineItems) == 0 {
		return shared.NewDomainError("EMPTY_INVOICE", "Cannot submit an invoice with no line items")
	}

	inv.Status = InvoiceStatusPending
	inv.AddDomainEvent(NewInvoiceSubmittedEvent(inv))
	inv.touch()

	return nil
}

// Send moves the invoice from PENDING to SENT and stamps the sent date.
// Requires a positive total.
func (inv *Invoice) Send() error {
	if inv.Status != InvoiceStatusPending {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot send invoice in %s status", inv.Status))
	}
	if !inv.TotalAmount.IsPositive() {
		return shared.NewDomainError("ZERO_TOTAL", "Cannot send an invoice with a non-positive total")
	}

	now := time.Now()
	inv.Status = InvoiceStatusSent
	inv.SentDate = &now
	inv.AddDomainEvent(NewInvoiceSentEvent(inv))
	inv.touch()

	return nil
}

// RecordPayment applies a payment and recomputes totals. Unless
// allowOverpayment is set, the amount must not exceed the current balance.
// A payment that clears the balance moves the invoice to PAID; any other
// payment moves it to PARTIAL.
func (inv *Invoice) RecordPayment(amount valueobject.Money, method PaymentMethod, referenceNumber string, allowOverpayment bool) error {
	if !inv.Status.CanRecordPayment() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot record payment against invoice in %s status", inv.Status))
	}
	if amount.Currency() != inv.Currency {
		return shared.NewDomainError("CURRENCY_MISMATCH",
			fmt.Sprintf("Payment currency %s does not match invoice currency %s", amount.Currency(), inv.Currency))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !allowOverpayment && amount.Amount().GreaterThan(inv.BalanceDue) {
		return shared.NewDomainError("EXCEEDS_BALANCE",
			fmt.Sprintf("Payment amount %s exceeds balance due %s", amount.StringFixed(2), inv.BalanceDue.StringFixed(2)))
	}

	payment, err := NewPayment(inv.ID, amount.Amount(), method, referenceNumber)
	if err != nil {
		return err
	}
	inv.Payments = append(inv.Payments, *payment)
	inv.recalculateTotals()

	if inv.BalanceDue.LessThanOrEqual(decimal.Zero) {
		now := time.Now()
		inv.Status = InvoiceStatusPaid
		inv.PaidDate = &now
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	} else {
		inv.Status = InvoiceStatusPartial
		inv.AddDomainEvent(NewInvoicePaymentRecordedEvent(inv, payment))
	}
	inv.touch()

	return nil
}

// Void cancels the invoice from any non-terminal state and freezes all
// amounts as they stand.
func (inv *Invoice) Void(reason string) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot void invoice in %s status", inv.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason is required")
	}

	now := time.Now()
	previousStatus := inv.Status
	inv.Status = InvoiceStatusVoid
	inv.VoidedAt = &now
	inv.VoidReason = reason
	inv.AddDomainEvent(NewInvoiceVoidedEvent(inv, previousStatus))
	inv.touch()

	return nil
}

// IsOverdue reports whether the invoice is past its due date. This is a
// read-only projection: it never mutates status. A scheduled sweep calls
// MarkOverdue to persist the transition.
func (inv *Invoice) IsOverdue(now time.Time) bool {
	if inv.Status.IsTerminal() {
		return false
	}
	if inv.DueDate == nil {
		return false
	}
	return now.After(*inv.DueDate)
}

// MarkOverdue persists the OVERDUE status for an invoice whose due date has
// passed. Only meaningful for sent or partially paid invoices; the caller is
// the scheduled overdue sweep, never a read path.
func (inv *Invoice) MarkOverdue(now time.Time) error {
	if inv.Status != InvoiceStatusSent && inv.Status != InvoiceStatusPartial {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot mark invoice overdue in %s status", inv.Status))
	}
	if !inv.IsOverdue(now) {
		return shared.NewDomainError(shared.CodeInvalidState, "Invoice is not past its due date")
	}

	inv.Status = InvoiceStatusOverdue
	inv.AddDomainEvent(NewInvoiceMarkedOverdueEvent(inv, now))
	inv.touch()

	return nil
}

// SetDueDate sets the due date
func (inv *Invoice) SetDueDate(due time.Time) {
	inv.DueDate = &due
	inv.touch()
}

// SetRemark sets the remark
func (inv *Invoice) SetRemark(remark string) {
	inv.Remark = remark
	inv.touch()
}

// recalculateTotals rederives every monetary field from the line items and
// payments. Line item amounts are already rounded at creation; tax is
// rounded here so the stored tax amount matches what appears on the
// customer-facing document.
func (inv *Invoice) recalculateTotals() {
	inv.Subtotal = inv.LineItems.TotalAmount()
	inv.TaxAmount = inv.Subtotal.Mul(inv.TaxRate).Round(2)
	inv.TotalAmount = inv.Subtotal.Add(inv.TaxAmount)
	inv.PaidAmount = inv.Payments.TotalAmount()
	inv.BalanceDue = inv.TotalAmount.Sub(inv.PaidAmount)
}

func (inv *Invoice) touch() {
	inv.Touch()
	inv.IncrementVersion()
}

// Helper methods

// GetSubtotalMoney returns the subtotal as Money
func (inv *Invoice) GetSubtotalMoney() valueobject.Money {
	return mustMoney(inv.Subtotal, inv.Currency)
}

// GetTotalAmountMoney returns the total amount as Money
func (inv *Invoice) GetTotalAmountMoney() valueobject.Money {
	return mustMoney(inv.TotalAmount, inv.Currency)
}

// GetPaidAmountMoney returns the paid amount as Money
func (inv *Invoice) GetPaidAmountMoney() valueobject.Money {
	return mustMoney(inv.PaidAmount, inv.Currency)
}

// GetBalanceDueMoney returns the balance due as Money
func (inv *Invoice) GetBalanceDueMoney() valueobject.Money {
	return mustMoney(inv.BalanceDue, inv.Currency)
}

func mustMoney(amount decimal.Decimal, currency valueobject.Currency) valueobject.Money {
	m, err := valueobject.NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// IsDraft returns true if the invoice is in DRAFT status
func (inv *Invoice) IsDraft() bool {
	return inv.Status == InvoiceStatusDraft
}

// IsPaid returns true if the invoice is fully paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// IsVoid returns true if the invoice has been voided
func (inv *Invoice) IsVoid() bool {
	return inv.Status == InvoiceStatusVoid
}

// PaymentCount returns the number of payments recorded
func (inv *Invoice) PaymentCount() int {
	return len(inv.Payments)
}

// DaysOverdue returns the number of days past due (0 if not overdue)
func (inv *Invoice) DaysOverdue(now time.Time) int {
	if !inv.IsOverdue(now) {
		return 0
	}
	return int(now.Sub(*inv.DueDate).Hours() / 24)
}
