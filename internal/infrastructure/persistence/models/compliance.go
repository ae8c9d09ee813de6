package models

import (
	"time"

	"github.com/drayage/backend/internal/domain/compliance"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ContainerRecordModel is the persistence model for the ContainerRecord
// aggregate root. Validation outcomes are stored as JSONB so dispatchers can
// see why a container was flagged without re-running the rules.
type ContainerRecordModel struct {
	AggregateModel
	ContainerNumber  valueobject.ContainerNumber   `gorm:"type:varchar(11);not null;uniqueIndex"`
	Size             valueobject.ContainerSize     `gorm:"type:varchar(5);not null;index"`
	Type             valueobject.ContainerType     `gorm:"type:varchar(10);not null"`
	CustomsStatus    compliance.CustomsStatus      `gorm:"type:varchar(20);not null;index"`
	Terminal         string                        `gorm:"type:varchar(100);index"`
	TerminalLocation *valueobject.Coordinates      `gorm:"type:jsonb"`
	GrossWeightLbs   decimal.Decimal               `gorm:"type:decimal(12,2);not null"`
	IsOverweight     bool                          `gorm:"not null;default:false"`
	IsHazmat         bool                          `gorm:"not null;default:false"`
	HazmatClass      string                        `gorm:"type:varchar(10)"`
	UNNumber         string                        `gorm:"type:varchar(10)"`
	IsReefer         bool                          `gorm:"not null;default:false"`
	ReeferSetpointC  *decimal.Decimal              `gorm:"type:decimal(6,2)"`
	VesselETA        *time.Time                    `gorm:"index"`
	LastFreeDay      *time.Time                    `gorm:"index"`
	Validations      compliance.ValidationOutcomes `gorm:"type:jsonb;default:'[]'"`
	IsCompliant      bool                          `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (ContainerRecordModel) TableName() string {
	return "container_records"
}

// ToDomain converts the persistence model to a domain ContainerRecord entity.
func (m *ContainerRecordModel) ToDomain() *compliance.ContainerRecord {
	record := &compliance.ContainerRecord{
		ContainerNumber:  m.ContainerNumber,
		Size:             m.Size,
		Type:             m.Type,
		CustomsStatus:    m.CustomsStatus,
		Terminal:         m.Terminal,
		TerminalLocation: m.TerminalLocation,
		GrossWeightLbs:   m.GrossWeightLbs,
		IsOverweight:     m.IsOverweight,
		IsHazmat:         m.IsHazmat,
		HazmatClass:      m.HazmatClass,
		UNNumber:         m.UNNumber,
		IsReefer:         m.IsReefer,
		ReeferSetpointC:  m.ReeferSetpointC,
		VesselETA:        m.VesselETA,
		LastFreeDay:      m.LastFreeDay,
		Validations:      m.Validations,
	}
	m.PopulateAggregateRoot(&record.BaseAggregateRoot)
	if record.Validations == nil {
		record.Validations = compliance.ValidationOutcomes{}
	}
	return record
}

// FromDomain populates the persistence model from a domain ContainerRecord.
func (m *ContainerRecordModel) FromDomain(r *compliance.ContainerRecord) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.ContainerNumber = r.ContainerNumber
	m.Size = r.Size
	m.Type = r.Type
	m.CustomsStatus = r.CustomsStatus
	m.Terminal = r.Terminal
	m.TerminalLocation = r.TerminalLocation
	m.GrossWeightLbs = r.GrossWeightLbs
	m.IsOverweight = r.IsOverweight
	m.IsHazmat = r.IsHazmat
	m.HazmatClass = r.HazmatClass
	m.UNNumber = r.UNNumber
	m.IsReefer = r.IsReefer
	m.ReeferSetpointC = r.ReeferSetpointC
	m.VesselETA = r.VesselETA
	m.LastFreeDay = r.LastFreeDay
	m.Validations = r.Validations
	// Denormalized so eligibility queries never parse the outcomes JSON
	m.IsCompliant = r.IsCompliant()
}

// ContainerRecordModelFromDomain creates a new persistence model from a domain ContainerRecord.
func ContainerRecordModelFromDomain(r *compliance.ContainerRecord) *ContainerRecordModel {
	m := &ContainerRecordModel{}
	m.FromDomain(r)
	return m
}
