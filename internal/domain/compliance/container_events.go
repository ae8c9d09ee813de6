package compliance

import (
	"github.com/drayage/backend/internal/domain/shared"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

const containerAggregateType = "ContainerRecord"

// ContainerRecordCreatedEvent is raised when a container passes intake
type ContainerRecordCreatedEvent struct {
	shared.BaseDomainEvent
	RecordID        uuid.UUID                 `json:"record_id"`
	ContainerNumber string                    `json:"container_number"`
	Size            valueobject.ContainerSize `json:"size"`
	Type            valueobject.ContainerType `json:"type"`
	CustomsStatus   CustomsStatus             `json:"customs_status"`
	Terminal        string                    `json:"terminal"`
	IsCompliant     bool                      `json:"is_compliant"`
}

// EventType returns the event type name
func (e *ContainerRecordCreatedEvent) EventType() string {
	return "ContainerRecordCreated"
}

// NewContainerRecordCreatedEvent creates a new ContainerRecordCreatedEvent
func NewContainerRecordCreatedEvent(r *ContainerRecord) *ContainerRecordCreatedEvent {
	return &ContainerRecordCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContainerRecordCreated", containerAggregateType, r.ID),
		RecordID:        r.ID,
		ContainerNumber: r.ContainerNumber.String(),
		Size:            r.Size,
		Type:            r.Type,
		CustomsStatus:   r.CustomsStatus,
		Terminal:        r.Terminal,
		IsCompliant:     r.IsCompliant(),
	}
}

// ContainerValidationFailedEvent is raised when intake checks record failures
type ContainerValidationFailedEvent struct {
	shared.BaseDomainEvent
	RecordID        uuid.UUID          `json:"record_id"`
	ContainerNumber string             `json:"container_number"`
	Failures        ValidationOutcomes `json:"failures"`
}

// EventType returns the event type name
func (e *ContainerValidationFailedEvent) EventType() string {
	return "ContainerValidationFailed"
}

// NewContainerValidationFailedEvent creates a new ContainerValidationFailedEvent
func NewContainerValidationFailedEvent(r *ContainerRecord) *ContainerValidationFailedEvent {
	return &ContainerValidationFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContainerValidationFailed", containerAggregateType, r.ID),
		RecordID:        r.ID,
		ContainerNumber: r.ContainerNumber.String(),
		Failures:        r.Validations.Failures(),
	}
}

// ContainerCustomsStatusChangedEvent is raised on a customs status change
type ContainerCustomsStatusChangedEvent struct {
	shared.BaseDomainEvent
	RecordID        uuid.UUID     `json:"record_id"`
	ContainerNumber string        `json:"container_number"`
	PreviousStatus  CustomsStatus `json:"previous_status"`
	NewStatus       CustomsStatus `json:"new_status"`
}

// EventType returns the event type name
func (e *ContainerCustomsStatusChangedEvent) EventType() string {
	return "ContainerCustomsStatusChanged"
}

// NewContainerCustomsStatusChangedEvent creates a new ContainerCustomsStatusChangedEvent
func NewContainerCustomsStatusChangedEvent(r *ContainerRecord, previous CustomsStatus) *ContainerCustomsStatusChangedEvent {
	return &ContainerCustomsStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContainerCustomsStatusChanged", containerAggregateType, r.ID),
		RecordID:        r.ID,
		ContainerNumber: r.ContainerNumber.String(),
		PreviousStatus:  previous,
		NewStatus:       r.CustomsStatus,
	}
}
