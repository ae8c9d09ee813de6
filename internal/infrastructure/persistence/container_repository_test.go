package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/drayage/backend/internal/domain/compliance"
	"github.com/drayage/backend/internal/domain/shared"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ContainerRecordModelSQLite is a SQLite-compatible version of
// ContainerRecordModel for testing
type ContainerRecordModelSQLite struct {
	ID               string `gorm:"primaryKey"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int    `gorm:"not null;default:1"`
	ContainerNumber  string `gorm:"uniqueIndex;not null"`
	Size             string `gorm:"not null"`
	Type             string `gorm:"not null"`
	CustomsStatus    string `gorm:"not null"`
	Terminal         string
	TerminalLocation *valueobject.Coordinates
	GrossWeightLbs   decimal.Decimal
	IsOverweight     bool `gorm:"not null;default:false"`
	IsHazmat         bool `gorm:"not null;default:false"`
	HazmatClass      string
	UNNumber         string
	IsReefer         bool `gorm:"not null;default:false"`
	ReeferSetpointC  *decimal.Decimal
	VesselETA        *time.Time
	LastFreeDay      *time.Time
	Validations      string `gorm:"default:'[]'"`
	IsCompliant      bool   `gorm:"not null;default:false"`
}

func (ContainerRecordModelSQLite) TableName() string {
	return "container_records"
}

func setupContainerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&ContainerRecordModelSQLite{})
	require.NoError(t, err)

	return db
}

func testContainerWeightRules() compliance.WeightRules {
	return compliance.WeightRules{
		MaxGrossWeightLbs:      decimal.NewFromInt(80000),
		OverweightThresholdLbs: decimal.NewFromInt(44000),
	}
}

func newTestContainerRecord(t *testing.T, number, terminal string, status compliance.CustomsStatus) *compliance.ContainerRecord {
	t.Helper()
	record, err := compliance.NewContainerRecord(compliance.ContainerAttributes{
		ContainerNumber: number,
		Size:            valueobject.Size40HC,
		Type:            valueobject.TypeDry,
		CustomsStatus:   status,
		Terminal:        terminal,
		GrossWeightLbs:  decimal.NewFromInt(38500),
	}, testContainerWeightRules())
	require.NoError(t, err)
	record.ClearDomainEvents()
	return record
}

func TestGormContainerRepository_SaveAndFind(t *testing.T) {
	db := setupContainerTestDB(t)
	repo := NewGormContainerRepository(db)
	ctx := context.Background()

	t.Run("saves and finds by ID", func(t *testing.T) {
		record := newTestContainerRecord(t, "CSQU3054383", "APM", compliance.CustomsStatusReleased)
		require.NoError(t, repo.Save(ctx, record))

		found, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, "CSQU3054383", found.ContainerNumber.String())
		assert.Equal(t, valueobject.Size40HC, found.Size)
		assert.True(t, found.IsCompliant())
		require.Len(t, found.Validations, 4)
	})

	t.Run("finds by container number", func(t *testing.T) {
		record := newTestContainerRecord(t, "MSKU6011672", "LBCT", compliance.CustomsStatusHold)
		require.NoError(t, repo.Save(ctx, record))

		number, err := valueobject.NewContainerNumber("MSKU6011672")
		require.NoError(t, err)

		found, err := repo.FindByContainerNumber(ctx, number)
		require.NoError(t, err)
		assert.Equal(t, record.ID, found.ID)
		assert.Equal(t, compliance.CustomsStatusHold, found.CustomsStatus)
	})

	t.Run("returns ErrNotFound for missing record", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormContainerRepository_SaveWithLock(t *testing.T) {
	db := setupContainerTestDB(t)
	repo := NewGormContainerRepository(db)
	ctx := context.Background()

	record := newTestContainerRecord(t, "TCLU2933549", "APM", compliance.CustomsStatusHold)
	require.NoError(t, repo.Save(ctx, record))

	require.NoError(t, record.UpdateCustomsStatus(compliance.CustomsStatusReleased))
	record.ClearDomainEvents()
	require.NoError(t, repo.SaveWithLock(ctx, record))

	found, err := repo.FindByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, compliance.CustomsStatusReleased, found.CustomsStatus)

	t.Run("rejects stale version", func(t *testing.T) {
		stale := *record
		stale.Version = record.Version - 1

		err := repo.SaveWithLock(ctx, &stale)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OPTIMISTIC_LOCK_ERROR", domainErr.Code)
	})
}

func TestGormContainerRepository_FindStreetTurnEligible(t *testing.T) {
	db := setupContainerTestDB(t)
	repo := NewGormContainerRepository(db)
	ctx := context.Background()

	released := newTestContainerRecord(t, "CSQU3054383", "APM", compliance.CustomsStatusReleased)
	require.NoError(t, repo.Save(ctx, released))

	held := newTestContainerRecord(t, "MSKU6011672", "APM", compliance.CustomsStatusHold)
	require.NoError(t, repo.Save(ctx, held))

	otherTerminal := newTestContainerRecord(t, "TCLU2933549", "LBCT", compliance.CustomsStatusReleased)
	require.NoError(t, repo.Save(ctx, otherTerminal))

	t.Run("scopes to terminals", func(t *testing.T) {
		eligible, err := repo.FindStreetTurnEligible(ctx, []string{"APM"})
		require.NoError(t, err)
		require.Len(t, eligible, 1)
		assert.Equal(t, released.ID, eligible[0].ID)
	})

	t.Run("all terminals when empty", func(t *testing.T) {
		eligible, err := repo.FindStreetTurnEligible(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, eligible, 2)
	})
}

func TestGormContainerRepository_FindAll(t *testing.T) {
	db := setupContainerTestDB(t)
	repo := NewGormContainerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestContainerRecord(t, "CSQU3054383", "APM", compliance.CustomsStatusReleased)))
	require.NoError(t, repo.Save(ctx, newTestContainerRecord(t, "MSKU6011672", "LBCT", compliance.CustomsStatusHold)))

	t.Run("filters by customs status", func(t *testing.T) {
		hold := compliance.CustomsStatusHold
		page, err := repo.FindAll(ctx, compliance.ContainerFilter{
			Filter:        shared.Filter{Page: 1, PageSize: 10},
			CustomsStatus: &hold,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("filters by terminal", func(t *testing.T) {
		terminal := "APM"
		page, err := repo.FindAll(ctx, compliance.ContainerFilter{
			Filter:   shared.Filter{Page: 1, PageSize: 10},
			Terminal: &terminal,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "CSQU3054383", page.Items[0].ContainerNumber.String())
	})
}

func TestGormContainerRepository_CountByCustomsStatus(t *testing.T) {
	db := setupContainerTestDB(t)
	repo := NewGormContainerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestContainerRecord(t, "CSQU3054383", "APM", compliance.CustomsStatusReleased)))

	count, err := repo.CountByCustomsStatus(ctx, compliance.CustomsStatusReleased)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.CountByCustomsStatus(ctx, compliance.CustomsStatusExam)
	require.NoError(t, err)
	assert.Zero(t, count)
}
