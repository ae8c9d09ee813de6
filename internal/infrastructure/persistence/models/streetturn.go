package models

import (
	"time"

	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/drayage/backend/internal/domain/streetturn"
	"github.com/google/uuid"
)

// ExportBookingModel is the persistence model for export bookings awaiting an
// empty container. Bookings are operational input to the street-turn matcher,
// not a domain aggregate: they carry no behavior beyond their snapshot.
type ExportBookingModel struct {
	BaseModel
	BookingNumber string                    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Size          valueobject.ContainerSize `gorm:"type:varchar(5);not null;index"`
	Type          valueobject.ContainerType `gorm:"type:varchar(10);not null"`
	Terminal      string                    `gorm:"type:varchar(100);index"`
	DocCutoff     *time.Time
	PortCutoff    *time.Time                `gorm:"index"`
	Assigned      bool                      `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (ExportBookingModel) TableName() string {
	return "export_bookings"
}

// ToCandidate converts the booking row to a matcher snapshot.
func (m *ExportBookingModel) ToCandidate() streetturn.ExportCandidate {
	return streetturn.ExportCandidate{
		ShipmentID:    m.ID,
		BookingNumber: m.BookingNumber,
		Size:          m.Size,
		Type:          m.Type,
		Terminal:      m.Terminal,
		DocCutoff:     m.DocCutoff,
		PortCutoff:    m.PortCutoff,
	}
}

// NewExportBookingModel creates a booking row for an export still needing an
// empty container.
func NewExportBookingModel(bookingNumber string, size valueobject.ContainerSize, containerType valueobject.ContainerType, terminal string, docCutoff, portCutoff *time.Time) *ExportBookingModel {
	now := time.Now()
	return &ExportBookingModel{
		BaseModel: BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingNumber: bookingNumber,
		Size:          size,
		Type:          containerType,
		Terminal:      terminal,
		DocCutoff:     docCutoff,
		PortCutoff:    portCutoff,
	}
}
