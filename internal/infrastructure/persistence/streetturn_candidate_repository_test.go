package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/drayage/backend/internal/domain/compliance"
	"github.com/drayage/backend/internal/domain/shared"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/drayage/backend/internal/domain/streetturn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ExportBookingModelSQLite is a SQLite-compatible version of
// ExportBookingModel for testing
type ExportBookingModelSQLite struct {
	ID            string `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	BookingNumber string `gorm:"uniqueIndex;not null"`
	Size          string `gorm:"not null"`
	Type          string `gorm:"not null"`
	Terminal      string
	DocCutoff     *time.Time
	PortCutoff    *time.Time
	Assigned      bool `gorm:"not null;default:false"`
}

func (ExportBookingModelSQLite) TableName() string {
	return "export_bookings"
}

func setupCandidateTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&ContainerRecordModelSQLite{}, &ExportBookingModelSQLite{})
	require.NoError(t, err)

	return db
}

func registerTestBooking(t *testing.T, repo *GormCandidateRepository, number, terminal string, cutoff *time.Time) streetturn.ExportCandidate {
	t.Helper()
	booking, err := repo.RegisterExportBooking(context.Background(), streetturn.ExportCandidate{
		BookingNumber: number,
		Size:          valueobject.Size40HC,
		Type:          valueobject.TypeDry,
		Terminal:      terminal,
		PortCutoff:    cutoff,
	})
	require.NoError(t, err)
	return booking
}

func TestGormCandidateRepository_FindImportCandidates(t *testing.T) {
	db := setupCandidateTestDB(t)
	containerRepo := NewGormContainerRepository(db)
	repo := NewGormCandidateRepository(db)
	ctx := context.Background()

	released := newTestContainerRecord(t, "CSQU3054383", "APM", compliance.CustomsStatusReleased)
	require.NoError(t, containerRepo.Save(ctx, released))

	held := newTestContainerRecord(t, "MSKU6011672", "APM", compliance.CustomsStatusHold)
	require.NoError(t, containerRepo.Save(ctx, held))

	t.Run("returns all compliant containers regardless of customs status", func(t *testing.T) {
		imports, err := repo.FindImportCandidates(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, imports, 2, "held containers stay visible for near-miss reporting")
	})

	t.Run("scopes to terminals", func(t *testing.T) {
		imports, err := repo.FindImportCandidates(ctx, []string{"LBCT"})
		require.NoError(t, err)
		assert.Empty(t, imports)
	})

	t.Run("carries the snapshot fields", func(t *testing.T) {
		imports, err := repo.FindImportCandidates(ctx, []string{"APM"})
		require.NoError(t, err)
		require.NotEmpty(t, imports)
		assert.Equal(t, valueobject.Size40HC, imports[0].Size)
		assert.Equal(t, "APM", imports[0].Terminal)
	})
}

func TestGormCandidateRepository_FindExportCandidates(t *testing.T) {
	db := setupCandidateTestDB(t)
	repo := NewGormCandidateRepository(db)
	ctx := context.Background()

	asOf := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	past := asOf.AddDate(0, 0, -1)
	future := asOf.AddDate(0, 0, 5)

	registerTestBooking(t, repo, "BKG-44121", "APM", &future)
	registerTestBooking(t, repo, "BKG-44122", "APM", &past)
	registerTestBooking(t, repo, "BKG-44123", "LBCT", nil)

	exports, err := repo.FindExportCandidates(ctx, asOf)
	require.NoError(t, err)
	require.Len(t, exports, 2, "bookings past their cutoff are excluded")

	numbers := []string{exports[0].BookingNumber, exports[1].BookingNumber}
	assert.Contains(t, numbers, "BKG-44121")
	assert.Contains(t, numbers, "BKG-44123", "bookings without a cutoff stay open")
}

func TestGormCandidateRepository_RegisterExportBooking(t *testing.T) {
	db := setupCandidateTestDB(t)
	repo := NewGormCandidateRepository(db)
	ctx := context.Background()

	booking := registerTestBooking(t, repo, "BKG-55001", "APM", nil)
	assert.NotZero(t, booking.ShipmentID)

	t.Run("rejects duplicate booking number", func(t *testing.T) {
		_, err := repo.RegisterExportBooking(ctx, streetturn.ExportCandidate{
			BookingNumber: "BKG-55001",
			Size:          valueobject.Size40HC,
			Type:          valueobject.TypeDry,
			Terminal:      "APM",
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DUPLICATE_BOOKING", domainErr.Code)
	})
}
