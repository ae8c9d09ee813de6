package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/drayage/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceLineItem is a single charge on an invoice. It is a value object
// within the Invoice aggregate, stored as JSONB. Amount is fixed at creation;
// edits go through remove-and-re-add so the invoice totals stay consistent.
type InvoiceLineItem struct {
	ID          uuid.UUID       `json:"id"`
	ChargeType  ChargeType      `json:"charge_type"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	// Flat marks amounts produced by a capping or tiered calculator, where
	// quantity and unit price are informational rather than the source of
	// the amount.
	Flat bool `json:"flat,omitempty"`
}

// NewLineItem creates a line item whose amount is quantity times unit price,
// rounded to 2 decimal places.
func NewLineItem(chargeType ChargeType, description string, quantity, unitPrice decimal.Decimal) (*InvoiceLineItem, error) {
	if err := validateLineItemFields(chargeType, description); err != nil {
		return nil, err
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Unit price cannot be negative")
	}
	return &InvoiceLineItem{
		ID:          uuid.New(),
		ChargeType:  chargeType,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      quantity.Mul(unitPrice).Round(2),
	}, nil
}

// NewFlatLineItem creates a line item carrying a calculator-produced amount
// (detention cap, tiered per-diem). Quantity and unit price describe how the
// charge arose but do not determine the amount.
func NewFlatLineItem(chargeType ChargeType, description string, quantity, unitPrice, amount decimal.Decimal) (*InvoiceLineItem, error) {
	if err := validateLineItemFields(chargeType, description); err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	return &InvoiceLineItem{
		ID:          uuid.New(),
		ChargeType:  chargeType,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      amount.Round(2),
		Flat:        true,
	}, nil
}

func validateLineItemFields(chargeType ChargeType, description string) error {
	if !chargeType.IsValid() {
		return shared.NewDomainError("INVALID_CHARGE_TYPE", "Charge type is not valid")
	}
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(description) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	return nil
}

// LineItems is a slice of InvoiceLineItem that implements GORM Scanner/Valuer for JSONB storage
type LineItems []InvoiceLineItem

// Value implements driver.Valuer interface for GORM to store as JSONB
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (l *LineItems) Scan(value interface{}) error {
	if value == nil {
		*l = LineItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan LineItems: unsupported type")
	}

	if len(bytes) == 0 {
		*l = LineItems{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// TotalAmount sums the line item amounts
func (l LineItems) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range l {
		total = total.Add(item.Amount)
	}
	return total
}
