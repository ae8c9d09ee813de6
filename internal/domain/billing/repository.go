package billing

import (
	"context"
	"time"

	"github.com/drayage/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	CustomerID *uuid.UUID       // Filter by customer
	Status     *InvoiceStatus   // Filter by status
	ChargeType *ChargeType      // Filter invoices carrying a charge type
	FromDate   *time.Time       // Filter by creation date range start
	ToDate     *time.Time       // Filter by creation date range end
	DueFrom    *time.Time       // Filter by due date range start
	DueTo      *time.Time       // Filter by due date range end
	MinBalance *decimal.Decimal // Filter by minimum balance due
	MaxBalance *decimal.Decimal // Filter by maximum balance due
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByInvoiceNumber finds an invoice by its number
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)

	// FindAll finds invoices with filtering and pagination
	FindAll(ctx context.Context, filter InvoiceFilter) (shared.Paginated[Invoice], error)

	// FindByCustomer finds invoices for a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)

	// FindOverdueCandidates finds sent or partially paid invoices whose due
	// date has passed as of the given time. Used by the overdue sweep.
	FindOverdueCandidates(ctx context.Context, asOf time.Time) ([]*Invoice, error)

	// NextInvoiceNumber generates the next invoice number (INV-YYYYMMDD-XXXXX)
	NextInvoiceNumber(ctx context.Context) (string, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// Delete soft deletes an invoice
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByStatus counts invoices in the given status
	CountByStatus(ctx context.Context, status InvoiceStatus) (int64, error)
}
