package models

import (
	"time"

	"github.com/drayage/backend/internal/domain/billing"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// Line items and payments are stored as JSONB documents on the invoice row:
// they only ever change through the aggregate, so one-row reads and writes
// keep the optimistic lock covering the whole document.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerName  string                `gorm:"type:varchar(200);not null"`
	Status        billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Currency      valueobject.Currency  `gorm:"type:varchar(3);not null;default:'USD'"`
	Subtotal      decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TaxRate       decimal.Decimal       `gorm:"type:decimal(8,6);not null"`
	TaxAmount     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TotalAmount   decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaidAmount    decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	BalanceDue    decimal.Decimal       `gorm:"type:decimal(18,4);not null;index"`
	LineItems     billing.LineItems     `gorm:"type:jsonb;default:'[]'"`
	Payments      billing.Payments      `gorm:"type:jsonb;default:'[]'"`
	DueDate       *time.Time            `gorm:"index"`
	SentDate      *time.Time
	PaidDate      *time.Time
	VoidedAt      *time.Time
	VoidReason    string `gorm:"type:varchar(500)"`
	Remark        string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		InvoiceNumber: m.InvoiceNumber,
		CustomerID:    m.CustomerID,
		CustomerName:  m.CustomerName,
		Status:        m.Status,
		Currency:      m.Currency,
		Subtotal:      m.Subtotal,
		TaxRate:       m.TaxRate,
		TaxAmount:     m.TaxAmount,
		TotalAmount:   m.TotalAmount,
		PaidAmount:    m.PaidAmount,
		BalanceDue:    m.BalanceDue,
		LineItems:     m.LineItems,
		Payments:      m.Payments,
		DueDate:       m.DueDate,
		SentDate:      m.SentDate,
		PaidDate:      m.PaidDate,
		VoidedAt:      m.VoidedAt,
		VoidReason:    m.VoidReason,
		Remark:        m.Remark,
	}
	m.PopulateAggregateRoot(&inv.BaseAggregateRoot)
	if inv.LineItems == nil {
		inv.LineItems = billing.LineItems{}
	}
	if inv.Payments == nil {
		inv.Payments = billing.Payments{}
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerID = inv.CustomerID
	m.CustomerName = inv.CustomerName
	m.Status = inv.Status
	m.Currency = inv.Currency
	m.Subtotal = inv.Subtotal
	m.TaxRate = inv.TaxRate
	m.TaxAmount = inv.TaxAmount
	m.TotalAmount = inv.TotalAmount
	m.PaidAmount = inv.PaidAmount
	m.BalanceDue = inv.BalanceDue
	m.LineItems = inv.LineItems
	m.Payments = inv.Payments
	m.DueDate = inv.DueDate
	m.SentDate = inv.SentDate
	m.PaidDate = inv.PaidDate
	m.VoidedAt = inv.VoidedAt
	m.VoidReason = inv.VoidReason
	m.Remark = inv.Remark
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}
