package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/drayage/backend/internal/domain/billing"
	"github.com/drayage/backend/internal/domain/shared"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/drayage/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
)

// BillingPolicy holds the billing behavior knobs that come from
// configuration rather than the ledger itself.
type BillingPolicy struct {
	// AllowOverpayment permits payments exceeding the balance due.
	AllowOverpayment bool
	// DefaultTaxRate applies when an invoice is created without an
	// explicit rate. A fraction, not a percentage.
	DefaultTaxRate decimal.Decimal
	// PaymentTermsDays sets the due date offset from the send date when
	// no due date was given.
	PaymentTermsDays int
	// IdempotencyTTL bounds how long a payment idempotency key is held.
	IdempotencyTTL time.Duration
}

// InvoiceService provides application-level invoice ledger operations.
// Concurrent mutations against the same invoice are serialized by the
// repository's optimistic version check, so two payments racing on one
// invoice cannot both apply against a stale balance.
type InvoiceService struct {
	invoiceRepo    billing.InvoiceRepository
	eventPublisher shared.EventPublisher
	idempotency    shared.IdempotencyStore
	policy         BillingPolicy
}

// NewInvoiceService creates a new InvoiceService. The event publisher and
// idempotency store are optional; without a store, payment retries rely on
// client-side discipline alone.
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	eventPublisher shared.EventPublisher,
	idempotency shared.IdempotencyStore,
	policy BillingPolicy,
) *InvoiceService {
	if policy.IdempotencyTTL <= 0 {
		policy.IdempotencyTTL = shared.DefaultIdempotencyConfig().TTL
	}
	return &InvoiceService{
		invoiceRepo:    invoiceRepo,
		eventPublisher: eventPublisher,
		idempotency:    idempotency,
		policy:         policy,
	}
}

// CreateInvoiceRequest represents a request to create an invoice
type CreateInvoiceRequest struct {
	CustomerID   uuid.UUID        `json:"customer_id"`
	CustomerName string           `json:"customer_name"`
	TaxRate      *decimal.Decimal `json:"tax_rate,omitempty"`
	DueDate      *time.Time       `json:"due_date,omitempty"`
	Remark       string           `json:"remark,omitempty"`
}

// AddLineItemRequest represents a request to add a charge to an invoice
type AddLineItemRequest struct {
	ChargeType  billing.ChargeType `json:"charge_type"`
	Description string             `json:"description"`
	Quantity    decimal.Decimal    `json:"quantity"`
	UnitPrice   decimal.Decimal    `json:"unit_price"`
	// Flat carries a calculator-produced amount; when false the amount is
	// quantity times unit price.
	Flat   bool            `json:"flat,omitempty"`
	Amount decimal.Decimal `json:"amount,omitempty"`
}

// RecordPaymentRequest represents a request to record a payment
type RecordPaymentRequest struct {
	Amount          decimal.Decimal       `json:"amount"`
	Method          billing.PaymentMethod `json:"method"`
	ReferenceNumber string                `json:"reference_number,omitempty"`
	// IdempotencyKey deduplicates retried submissions. Optional.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID                 `json:"id"`
	InvoiceNumber string                    `json:"invoice_number"`
	CustomerID    uuid.UUID                 `json:"customer_id"`
	CustomerName  string                    `json:"customer_name"`
	Status        string                    `json:"status"`
	Currency      string                    `json:"currency"`
	Subtotal      decimal.Decimal           `json:"subtotal"`
	TaxRate       decimal.Decimal           `json:"tax_rate"`
	TaxAmount     decimal.Decimal           `json:"tax_amount"`
	TotalAmount   decimal.Decimal           `json:"total_amount"`
	PaidAmount    decimal.Decimal           `json:"paid_amount"`
	BalanceDue    decimal.Decimal           `json:"balance_due"`
	LineItems     []billing.InvoiceLineItem `json:"line_items"`
	Payments      []billing.Payment         `json:"payments"`
	DueDate       *time.Time                `json:"due_date,omitempty"`
	SentDate      *time.Time                `json:"sent_date,omitempty"`
	PaidDate      *time.Time                `json:"paid_date,omitempty"`
	IsOverdue     bool                      `json:"is_overdue"`
	Remark        string                    `json:"remark,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
	Version       int                       `json:"version"`
}

// ToInvoiceResponse converts an invoice aggregate to a response
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		CustomerName:  inv.CustomerName,
		Status:        inv.Status.String(),
		Currency:      string(inv.Currency),
		Subtotal:      inv.Subtotal,
		TaxRate:       inv.TaxRate,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		PaidAmount:    inv.PaidAmount,
		BalanceDue:    inv.BalanceDue,
		LineItems:     inv.LineItems,
		Payments:      inv.Payments,
		DueDate:       inv.DueDate,
		SentDate:      inv.SentDate,
		PaidDate:      inv.PaidDate,
		IsOverdue:     inv.IsOverdue(time.Now()),
		Remark:        inv.Remark,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
		Version:       inv.Version,
	}
}

// CreateInvoice creates a new draft invoice
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create",
		telemetry.WithAttribute(telemetry.SpanAttrCustomerID, req.CustomerID.String()),
	)
	defer span.End()

	number, err := s.invoiceRepo.NextInvoiceNumber(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to generate invoice number: %w", err)
	}

	taxRate := s.policy.DefaultTaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	inv, err := billing.NewInvoice(number, req.CustomerID, req.CustomerName, taxRate, req.DueDate)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Remark != "" {
		inv.SetRemark(req.Remark)
	}

	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, inv)

	telemetry.SetAttribute(span, telemetry.SpanAttrInvoiceNumber, number)
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// GetInvoice gets an invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// GetInvoiceByNumber gets an invoice by its number
func (s *InvoiceService) GetInvoiceByNumber(ctx context.Context, number string) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByInvoiceNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// ListInvoices lists invoices with filtering and pagination
func (s *InvoiceService) ListInvoices(ctx context.Context, filter billing.InvoiceFilter) (shared.Paginated[InvoiceResponse], error) {
	page, err := s.invoiceRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[InvoiceResponse]{}, err
	}

	items := make([]InvoiceResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ToInvoiceResponse(&page.Items[i]))
	}
	return shared.NewPaginated(items, page.Total, page.Page, page.PageSize), nil
}

// AddLineItem adds a charge to a draft or pending invoice
func (s *InvoiceService) AddLineItem(ctx context.Context, invoiceID uuid.UUID, req AddLineItemRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "add_line_item",
		telemetry.WithAttribute(telemetry.SpanAttrInvoiceID, invoiceID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrChargeType, string(req.ChargeType)),
	)
	defer span.End()

	var item *billing.InvoiceLineItem
	var err error
	if req.Flat {
		item, err = billing.NewFlatLineItem(req.ChargeType, req.Description, req.Quantity, req.UnitPrice, req.Amount)
	} else {
		item, err = billing.NewLineItem(req.ChargeType, req.Description, req.Quantity, req.UnitPrice)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return s.mutate(ctx, span, invoiceID, func(inv *billing.Invoice) error {
		return inv.AddLineItem(item)
	})
}

// RemoveLineItem removes a charge from a draft or pending invoice
func (s *InvoiceService) RemoveLineItem(ctx context.Context, invoiceID, itemID uuid.UUID) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "remove_line_item",
		telemetry.WithAttribute(telemetry.SpanAttrInvoiceID, invoiceID.String()),
	)
	defer span.End()

	return s.mutate(ctx, span, invoiceID, func(inv *billing.Invoice) error {
		return inv.RemoveLineItem(itemID)
	})
}

// SubmitInvoice moves a draft invoice to pending
func (s *InvoiceService) SubmitInvoice(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "submit",
		telemetry.WithAttribute(telemetry.SpanAttrInvoiceID, invoiceID.String()),
	)
	defer span.End()

	return s.mutate(ctx, span, invoiceID, func(inv *billing.Invoice) error {
		return inv.Submit()
	})
}

// SendInvoice moves a pending invoice to sent, defaulting the due date
// from payment terms when none was set.
func (s *InvoiceService) SendInvoice(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "send",
		telemetry.WithAttribute(telemetry.SpanAttrInvoiceID, invoiceID.String()),
	)
	defer span.End()

	return s.mutate(ctx, span, invoiceID, func(inv *billing.Invoice) error {
		if err := inv.Send(); err != nil {
			return err
		}
		if inv.DueDate == nil && s.policy.PaymentTermsDays > 0 {
			inv.SetDueDate(inv.SentDate.AddDate(0, 0, s.policy.PaymentTermsDays))
		}
		return nil
	})
}

// RecordPayment records a payment against an invoice. When an idempotency
// key is supplied and a store is configured, a duplicate submission returns
// the current invoice state without applying the payment twice.
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, req RecordPaymentRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "record_payment",
		telemetry.WithAttribute(telemetry.SpanAttrInvoiceID, invoiceID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, req.Amount.String()),
	)
	defer span.End()

	key := ""
	if req.IdempotencyKey != "" && s.idempotency != nil {
		key = fmt.Sprintf("payment:%s:%s", invoiceID, req.IdempotencyKey)
		processed, err := s.idempotency.IsProcessed(ctx, key)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if processed {
			telemetry.AddEvent(span, "duplicate_payment_suppressed")
			return s.GetInvoice(ctx, invoiceID)
		}
	}

	amount, err := valueobject.NewMoney(req.Amount, valueobject.DefaultCurrency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp, err := s.mutate(ctx, span, invoiceID, func(inv *billing.Invoice) error {
		return inv.RecordPayment(amount, req.Method, req.ReferenceNumber, s.policy.AllowOverpayment)
	})
	if err != nil {
		// The key stays unclaimed so the client can retry a rejected
		// attempt with the same idempotency key.
		return nil, err
	}

	if key != "" {
		if _, err := s.idempotency.MarkProcessed(ctx, key, s.policy.IdempotencyTTL); err != nil {
			// The payment is already applied; a mark failure only weakens
			// duplicate suppression for this key.
			telemetry.AddEvent(span, "idempotency_mark_failed")
		}
	}
	return resp, nil
}

// VoidInvoice voids an invoice
func (s *InvoiceService) VoidInvoice(ctx context.Context, invoiceID uuid.UUID, reason string) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "void",
		telemetry.WithAttribute(telemetry.SpanAttrInvoiceID, invoiceID.String()),
	)
	defer span.End()

	return s.mutate(ctx, span, invoiceID, func(inv *billing.Invoice) error {
		return inv.Void(reason)
	})
}

// SweepOverdue persists the OVERDUE status for every sent or partially
// paid invoice whose due date has passed. Returns the number of invoices
// marked. Intended to run on a schedule; the ledger itself never mutates
// status on read.
func (s *InvoiceService) SweepOverdue(ctx context.Context, asOf time.Time) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "sweep_overdue")
	defer span.End()

	candidates, err := s.invoiceRepo.FindOverdueCandidates(ctx, asOf)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, err
	}

	marked := 0
	for _, inv := range candidates {
		if err := inv.MarkOverdue(asOf); err != nil {
			// The candidate query and the aggregate check can disagree
			// when a payment lands mid-sweep; skip, never fail the sweep.
			continue
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			telemetry.RecordError(span, err)
			continue
		}
		s.publishEvents(ctx, inv)
		marked++
	}

	telemetry.SetAttribute(span, "marked_count", marked)
	return marked, nil
}

// InvoiceStatusSummary reports invoice counts by status
type InvoiceStatusSummary struct {
	Draft   int64 `json:"draft"`
	Pending int64 `json:"pending"`
	Sent    int64 `json:"sent"`
	Partial int64 `json:"partial"`
	Paid    int64 `json:"paid"`
	Overdue int64 `json:"overdue"`
	Void    int64 `json:"void"`
	Total   int64 `json:"total"`
}

// StatusSummary counts invoices in each lifecycle status
func (s *InvoiceService) StatusSummary(ctx context.Context) (*InvoiceStatusSummary, error) {
	summary := &InvoiceStatusSummary{}
	counts := []struct {
		status billing.InvoiceStatus
		target *int64
	}{
		{billing.InvoiceStatusDraft, &summary.Draft},
		{billing.InvoiceStatusPending, &summary.Pending},
		{billing.InvoiceStatusSent, &summary.Sent},
		{billing.InvoiceStatusPartial, &summary.Partial},
		{billing.InvoiceStatusPaid, &summary.Paid},
		{billing.InvoiceStatusOverdue, &summary.Overdue},
		{billing.InvoiceStatusVoid, &summary.Void},
	}
	for _, c := range counts {
		count, err := s.invoiceRepo.CountByStatus(ctx, c.status)
		if err != nil {
			return nil, err
		}
		*c.target = count
		summary.Total += count
	}
	return summary, nil
}

// mutate loads an invoice, applies the mutation, saves with optimistic
// locking and publishes the resulting domain events.
func (s *InvoiceService) mutate(ctx context.Context, span trace.Span, invoiceID uuid.UUID, fn func(*billing.Invoice) error) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := fn(inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, inv)

	telemetry.SetAttribute(span, telemetry.SpanAttrInvoiceStatus, inv.Status.String())
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// publishEvents publishes and clears the aggregate's pending events.
// Event delivery is best-effort; the saved aggregate is the system of
// record.
func (s *InvoiceService) publishEvents(ctx context.Context, inv *billing.Invoice) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range inv.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	inv.ClearDomainEvents()
}
