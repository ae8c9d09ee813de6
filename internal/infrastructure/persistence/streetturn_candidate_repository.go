package persistence

import (
	"context"
	"time"

	"github.com/drayage/backend/internal/domain/shared"
	"github.com/drayage/backend/internal/domain/streetturn"
	"github.com/drayage/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCandidateRepository feeds the street-turn matcher with snapshots of
// container records and export bookings
type GormCandidateRepository struct {
	db *gorm.DB
}

// NewGormCandidateRepository creates a new GormCandidateRepository
func NewGormCandidateRepository(db *gorm.DB) *GormCandidateRepository {
	return &GormCandidateRepository{db: db}
}

// FindImportCandidates returns import containers at the given terminals (all
// terminals when empty), regardless of customs status. The matcher filters on
// RELEASED itself so callers can report near-miss volume.
func (r *GormCandidateRepository) FindImportCandidates(ctx context.Context, terminals []string) ([]streetturn.ImportCandidate, error) {
	var recordModels []models.ContainerRecordModel
	query := r.db.WithContext(ctx).Model(&models.ContainerRecordModel{}).
		Where("is_compliant = ?", true)
	if len(terminals) > 0 {
		query = query.Where("terminal IN ?", terminals)
	}

	if err := query.Find(&recordModels).Error; err != nil {
		return nil, err
	}

	candidates := make([]streetturn.ImportCandidate, len(recordModels))
	for i, model := range recordModels {
		candidates[i] = streetturn.ImportCandidate{
			ShipmentID:      model.ID,
			ContainerNumber: model.ContainerNumber,
			Size:            model.Size,
			Type:            model.Type,
			CustomsStatus:   model.CustomsStatus,
			Terminal:        model.Terminal,
			LastFreeDay:     model.LastFreeDay,
		}
	}
	return candidates, nil
}

// FindExportCandidates returns unassigned export bookings whose port cutoff
// has not yet passed as of the given time.
func (r *GormCandidateRepository) FindExportCandidates(ctx context.Context, cutoffAfter time.Time) ([]streetturn.ExportCandidate, error) {
	var bookingModels []models.ExportBookingModel
	if err := r.db.WithContext(ctx).
		Where("assigned = ? AND (port_cutoff IS NULL OR port_cutoff >= ?)", false, cutoffAfter).
		Find(&bookingModels).Error; err != nil {
		return nil, err
	}

	candidates := make([]streetturn.ExportCandidate, len(bookingModels))
	for i, model := range bookingModels {
		candidates[i] = model.ToCandidate()
	}
	return candidates, nil
}

// RegisterExportBooking adds an export booking to the candidate pool
func (r *GormCandidateRepository) RegisterExportBooking(ctx context.Context, booking streetturn.ExportCandidate) (streetturn.ExportCandidate, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ExportBookingModel{}).
		Where("booking_number = ?", booking.BookingNumber).
		Count(&count).Error; err != nil {
		return streetturn.ExportCandidate{}, err
	}
	if count > 0 {
		return streetturn.ExportCandidate{}, shared.NewDomainError("DUPLICATE_BOOKING",
			"An export booking with this number already exists")
	}

	model := models.NewExportBookingModel(booking.BookingNumber, booking.Size, booking.Type, booking.Terminal, booking.DocCutoff, booking.PortCutoff)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return streetturn.ExportCandidate{}, err
	}
	return model.ToCandidate(), nil
}

// Ensure GormCandidateRepository implements CandidateRepository
var _ streetturn.CandidateRepository = (*GormCandidateRepository)(nil)
