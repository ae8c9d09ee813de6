package compliance

import (
	"context"
	"time"

	"github.com/drayage/backend/internal/domain/shared"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ContainerFilter defines filtering options for container queries
type ContainerFilter struct {
	shared.Filter
	CustomsStatus *CustomsStatus             // Filter by customs status
	Size          *valueobject.ContainerSize // Filter by size
	Type          *valueobject.ContainerType // Filter by type
	Terminal      *string                    // Filter by terminal
	Compliant     *bool                      // Filter by intake check result
	LFDBefore     *time.Time                 // Filter by last free day upper bound
}

// ContainerRepository defines the interface for container record persistence
type ContainerRepository interface {
	// FindByID finds a container record by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ContainerRecord, error)

	// FindByContainerNumber finds a record by its ISO 6346 identifier
	FindByContainerNumber(ctx context.Context, number valueobject.ContainerNumber) (*ContainerRecord, error)

	// FindAll finds container records with filtering and pagination
	FindAll(ctx context.Context, filter ContainerFilter) (shared.Paginated[ContainerRecord], error)

	// FindStreetTurnEligible finds released, compliant containers at the
	// given terminals (all terminals when empty).
	FindStreetTurnEligible(ctx context.Context, terminals []string) ([]*ContainerRecord, error)

	// Save creates or updates a container record
	Save(ctx context.Context, record *ContainerRecord) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, record *ContainerRecord) error

	// Delete soft deletes a container record
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByCustomsStatus counts records in the given customs status
	CountByCustomsStatus(ctx context.Context, status CustomsStatus) (int64, error)
}
