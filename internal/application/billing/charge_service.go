package billing

import (
	"context"
	"fmt"

	"github.com/drayage/backend/internal/domain/billing"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/drayage/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// ChargeService turns operational facts (dwell days, detention minutes)
// into priced charges using the configured rate rules. It performs no I/O:
// the rules are validated at construction and every quote is a pure
// computation over them.
type ChargeService struct {
	rules billing.RateRules
}

// NewChargeService validates the rate rules and creates a ChargeService
func NewChargeService(rules billing.RateRules) (*ChargeService, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &ChargeService{rules: rules}, nil
}

// ChargeQuote is a priced charge ready to become an invoice line item
type ChargeQuote struct {
	ChargeType      billing.ChargeType `json:"charge_type"`
	Description     string             `json:"description"`
	Quantity        decimal.Decimal    `json:"quantity"`
	UnitPrice       decimal.Decimal    `json:"unit_price"`
	Amount          decimal.Decimal    `json:"amount"`
	BillableMinutes int                `json:"billable_minutes,omitempty"`
}

// ToLineItem converts the quote into an invoice line item. Tiered and
// capped amounts come from the calculators, so the item carries the flat
// amount with quantity and unit price as informational fields.
func (q ChargeQuote) ToLineItem() (*billing.InvoiceLineItem, error) {
	return billing.NewFlatLineItem(q.ChargeType, q.Description, q.Quantity, q.UnitPrice, q.Amount)
}

// QuotePerDiem prices chargeable dwell days against the per-diem schedule
// for the container size. Zero or negative days quote a zero amount.
func (s *ChargeService) QuotePerDiem(ctx context.Context, size valueobject.ContainerSize, days int) (*ChargeQuote, error) {
	_, span := telemetry.StartServiceSpan(ctx, "charge", "quote_per_diem",
		telemetry.WithAttribute(telemetry.SpanAttrContainerSize, size.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDays, days),
	)
	defer span.End()

	schedule, err := s.rules.PerDiemSchedule(size)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	quote := tieredQuote(billing.ChargeTypePerDiem,
		fmt.Sprintf("Per-diem %s, %d days", size, days), schedule, days)
	telemetry.SetAttribute(span, telemetry.SpanAttrAmount, quote.Amount.String())
	return quote, nil
}

// QuoteDemurrage prices dwell days past free time against the demurrage
// schedule for the container size.
func (s *ChargeService) QuoteDemurrage(ctx context.Context, size valueobject.ContainerSize, days int) (*ChargeQuote, error) {
	_, span := telemetry.StartServiceSpan(ctx, "charge", "quote_demurrage",
		telemetry.WithAttribute(telemetry.SpanAttrContainerSize, size.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDays, days),
	)
	defer span.End()

	schedule, err := s.rules.DemurrageSchedule(size)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	quote := tieredQuote(billing.ChargeTypeDemurrage,
		fmt.Sprintf("Demurrage %s, %d days", size, days), schedule, days)
	telemetry.SetAttribute(span, telemetry.SpanAttrAmount, quote.Amount.String())
	return quote, nil
}

// QuoteDetention prices elapsed dwell minutes for one day segment.
// freeMinutesOverride replaces the configured free time when nonzero
// (per-customer contract terms).
func (s *ChargeService) QuoteDetention(ctx context.Context, actualMinutes, freeMinutesOverride int) (*ChargeQuote, error) {
	_, span := telemetry.StartServiceSpan(ctx, "charge", "quote_detention",
		telemetry.WithAttribute(telemetry.SpanAttrMinutes, actualMinutes),
	)
	defer span.End()

	result := billing.CalculateDetention(actualMinutes, freeMinutesOverride, s.rules.Detention)

	// Quantity is billable hours; the capped charge is authoritative.
	hours := decimal.NewFromInt(int64(result.BillableMinutes)).
		Div(decimal.NewFromInt(60)).Round(2)

	quote := &ChargeQuote{
		ChargeType:      billing.ChargeTypeDetention,
		Description:     fmt.Sprintf("Detention, %d billable minutes", result.BillableMinutes),
		Quantity:        hours,
		UnitPrice:       s.rules.Detention.RatePerHour.Amount(),
		Amount:          result.Charge.Round(2).Amount(),
		BillableMinutes: result.BillableMinutes,
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrAmount, quote.Amount.String())
	return quote, nil
}

// tieredQuote prices days against a schedule. The schedule accumulates
// unrounded; rounding to cents happens once here, when the total becomes a
// quotable amount.
func tieredQuote(chargeType billing.ChargeType, description string, schedule billing.TierSchedule, days int) *ChargeQuote {
	amount := schedule.Charge(days).Round(2)

	unitPrice := decimal.Zero
	if days > 0 {
		unitPrice = amount.Div(decimal.NewFromInt(int64(days))).Round(2)
	}

	return &ChargeQuote{
		ChargeType:  chargeType,
		Description: description,
		Quantity:    decimal.NewFromInt(int64(days)),
		UnitPrice:   unitPrice,
		Amount:      amount,
	}
}
