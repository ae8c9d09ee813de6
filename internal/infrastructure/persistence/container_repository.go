package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/drayage/backend/internal/domain/compliance"
	"github.com/drayage/backend/internal/domain/shared"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/drayage/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormContainerRepository implements ContainerRepository using GORM
type GormContainerRepository struct {
	db *gorm.DB
}

// NewGormContainerRepository creates a new GormContainerRepository
func NewGormContainerRepository(db *gorm.DB) *GormContainerRepository {
	return &GormContainerRepository{db: db}
}

// FindByID finds a container record by its ID
func (r *GormContainerRepository) FindByID(ctx context.Context, id uuid.UUID) (*compliance.ContainerRecord, error) {
	var model models.ContainerRecordModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByContainerNumber finds a record by its ISO 6346 identifier
func (r *GormContainerRepository) FindByContainerNumber(ctx context.Context, number valueobject.ContainerNumber) (*compliance.ContainerRecord, error) {
	var model models.ContainerRecordModel
	if err := r.db.WithContext(ctx).
		Where("container_number = ?", number.String()).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds container records with filtering and pagination
func (r *GormContainerRepository) FindAll(ctx context.Context, filter compliance.ContainerFilter) (shared.Paginated[compliance.ContainerRecord], error) {
	var recordModels []models.ContainerRecordModel

	countQuery := r.db.WithContext(ctx).Model(&models.ContainerRecordModel{})
	countQuery = r.applyContainerFilterWithoutPagination(countQuery, filter)

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return shared.Paginated[compliance.ContainerRecord]{}, err
	}

	query := r.db.WithContext(ctx).Model(&models.ContainerRecordModel{})
	query = r.applyContainerFilter(query, filter)

	if err := query.Find(&recordModels).Error; err != nil {
		return shared.Paginated[compliance.ContainerRecord]{}, err
	}

	records := make([]compliance.ContainerRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return shared.NewPaginated(records, total, filter.Page, filter.PageSize), nil
}

// FindStreetTurnEligible finds released, compliant containers at the given
// terminals (all terminals when empty).
func (r *GormContainerRepository) FindStreetTurnEligible(ctx context.Context, terminals []string) ([]*compliance.ContainerRecord, error) {
	var recordModels []models.ContainerRecordModel
	query := r.db.WithContext(ctx).
		Where("customs_status = ? AND is_compliant = ?", compliance.CustomsStatusReleased, true)
	if len(terminals) > 0 {
		query = query.Where("terminal IN ?", terminals)
	}

	if err := query.Order("last_free_day ASC NULLS LAST").Find(&recordModels).Error; err != nil {
		return nil, err
	}
	records := make([]*compliance.ContainerRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = model.ToDomain()
	}
	return records, nil
}

// Save creates or updates a container record
func (r *GormContainerRepository) Save(ctx context.Context, record *compliance.ContainerRecord) error {
	model := models.ContainerRecordModelFromDomain(record)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormContainerRepository) SaveWithLock(ctx context.Context, record *compliance.ContainerRecord) error {
	model := models.ContainerRecordModelFromDomain(record)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", record.ID, record.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// Delete soft deletes a container record
func (r *GormContainerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ContainerRecordModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByCustomsStatus counts records in the given customs status
func (r *GormContainerRepository) CountByCustomsStatus(ctx context.Context, status compliance.CustomsStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ContainerRecordModel{}).
		Where("customs_status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyContainerFilter applies filter options to the query
func (r *GormContainerRepository) applyContainerFilter(query *gorm.DB, filter compliance.ContainerFilter) *gorm.DB {
	query = r.applyContainerFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := filter.Offset()
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyContainerFilterWithoutPagination applies filter options without pagination
func (r *GormContainerRepository) applyContainerFilterWithoutPagination(query *gorm.DB, filter compliance.ContainerFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("container_number ILIKE ? OR terminal ILIKE ?",
			searchPattern, searchPattern)
	}

	if filter.CustomsStatus != nil {
		query = query.Where("customs_status = ?", *filter.CustomsStatus)
	}
	if filter.Size != nil {
		query = query.Where("size = ?", *filter.Size)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Terminal != nil {
		query = query.Where("terminal = ?", *filter.Terminal)
	}
	if filter.Compliant != nil {
		query = query.Where("is_compliant = ?", *filter.Compliant)
	}
	if filter.LFDBefore != nil {
		query = query.Where("last_free_day IS NOT NULL AND last_free_day < ?", *filter.LFDBefore)
	}

	return query
}

// Ensure GormContainerRepository implements ContainerRepository
var _ compliance.ContainerRepository = (*GormContainerRepository)(nil)
