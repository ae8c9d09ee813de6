package compliance

import (
	"context"
	"errors"
	"time"

	"github.com/drayage/backend/internal/domain/compliance"
	"github.com/drayage/backend/internal/domain/shared"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/drayage/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
)

// IntakeService handles container intake and compliance tracking. A
// structurally invalid container number rejects the intake outright; the
// remaining rule failures are recorded on the record so dispatchers can
// decide whether to hold or proceed.
type IntakeService struct {
	containerRepo  compliance.ContainerRepository
	eventPublisher shared.EventPublisher
	weightRules    compliance.WeightRules
}

// NewIntakeService validates the weight rules and creates an IntakeService
func NewIntakeService(
	containerRepo compliance.ContainerRepository,
	eventPublisher shared.EventPublisher,
	weightRules compliance.WeightRules,
) (*IntakeService, error) {
	if err := weightRules.Validate(); err != nil {
		return nil, err
	}
	return &IntakeService{
		containerRepo:  containerRepo,
		eventPublisher: eventPublisher,
		weightRules:    weightRules,
	}, nil
}

// IntakeContainerRequest represents a container arriving for intake
type IntakeContainerRequest struct {
	ContainerNumber string           `json:"container_number"`
	Size            string           `json:"size"`
	Type            string           `json:"type"`
	CustomsStatus   string           `json:"customs_status"`
	Terminal        string           `json:"terminal"`
	TerminalLat     *float64         `json:"terminal_lat,omitempty"`
	TerminalLon     *float64         `json:"terminal_lon,omitempty"`
	GrossWeightLbs  decimal.Decimal  `json:"gross_weight_lbs"`
	IsHazmat        bool             `json:"is_hazmat"`
	HazmatClass     string           `json:"hazmat_class,omitempty"`
	UNNumber        string           `json:"un_number,omitempty"`
	IsReefer        bool             `json:"is_reefer"`
	ReeferSetpointC *decimal.Decimal `json:"reefer_setpoint_c,omitempty"`
	VesselETA       *time.Time       `json:"vessel_eta,omitempty"`
	LastFreeDay     *time.Time       `json:"last_free_day,omitempty"`
}

// ContainerResponse represents a container record in API responses
type ContainerResponse struct {
	ID                 uuid.UUID                     `json:"id"`
	ContainerNumber    string                        `json:"container_number"`
	OwnerCode          string                        `json:"owner_code"`
	Size               string                        `json:"size"`
	Type               string                        `json:"type"`
	CustomsStatus      string                        `json:"customs_status"`
	Terminal           string                        `json:"terminal"`
	TerminalLocation   *valueobject.Coordinates      `json:"terminal_location,omitempty"`
	GrossWeightLbs     decimal.Decimal               `json:"gross_weight_lbs"`
	IsOverweight       bool                          `json:"is_overweight"`
	IsHazmat           bool                          `json:"is_hazmat"`
	HazmatClass        string                        `json:"hazmat_class,omitempty"`
	UNNumber           string                        `json:"un_number,omitempty"`
	IsReefer           bool                          `json:"is_reefer"`
	ReeferSetpointC    *decimal.Decimal              `json:"reefer_setpoint_c,omitempty"`
	VesselETA          *time.Time                    `json:"vessel_eta,omitempty"`
	LastFreeDay        *time.Time                    `json:"last_free_day,omitempty"`
	IsCompliant        bool                          `json:"is_compliant"`
	StreetTurnEligible bool                          `json:"street_turn_eligible"`
	Validations        compliance.ValidationOutcomes `json:"validations"`
	CreatedAt          time.Time                     `json:"created_at"`
	UpdatedAt          time.Time                     `json:"updated_at"`
	Version            int                           `json:"version"`
}

// ToContainerResponse converts a container record to a response
func ToContainerResponse(record *compliance.ContainerRecord) ContainerResponse {
	return ContainerResponse{
		ID:                 record.ID,
		ContainerNumber:    record.ContainerNumber.String(),
		OwnerCode:          record.ContainerNumber.OwnerCode(),
		Size:               record.Size.String(),
		Type:               record.Type.String(),
		CustomsStatus:      record.CustomsStatus.String(),
		Terminal:           record.Terminal,
		TerminalLocation:   record.TerminalLocation,
		GrossWeightLbs:     record.GrossWeightLbs,
		IsOverweight:       record.IsOverweight,
		IsHazmat:           record.IsHazmat,
		HazmatClass:        record.HazmatClass,
		UNNumber:           record.UNNumber,
		IsReefer:           record.IsReefer,
		ReeferSetpointC:    record.ReeferSetpointC,
		VesselETA:          record.VesselETA,
		LastFreeDay:        record.LastFreeDay,
		IsCompliant:        record.IsCompliant(),
		StreetTurnEligible: record.IsStreetTurnEligible(),
		Validations:        record.Validations,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
		Version:            record.Version,
	}
}

// IntakeContainer validates and registers an arriving container. The
// container number, size, type and customs status must be structurally
// valid; failures of the remaining rules are recorded on the returned
// record rather than rejecting the intake.
func (s *IntakeService) IntakeContainer(ctx context.Context, req IntakeContainerRequest) (*ContainerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "compliance", "intake_container",
		telemetry.WithAttribute(telemetry.SpanAttrContainerNumber, req.ContainerNumber),
		telemetry.WithAttribute(telemetry.SpanAttrTerminal, req.Terminal),
	)
	defer span.End()

	attrs := compliance.ContainerAttributes{
		ContainerNumber: req.ContainerNumber,
		Size:            valueobject.ContainerSize(req.Size),
		Type:            valueobject.ContainerType(req.Type),
		CustomsStatus:   compliance.CustomsStatus(req.CustomsStatus),
		Terminal:        req.Terminal,
		TerminalLat:     req.TerminalLat,
		TerminalLon:     req.TerminalLon,
		GrossWeightLbs:  req.GrossWeightLbs,
		IsHazmat:        req.IsHazmat,
		HazmatClass:     req.HazmatClass,
		UNNumber:        req.UNNumber,
		IsReefer:        req.IsReefer,
		ReeferSetpointC: req.ReeferSetpointC,
		VesselETA:       req.VesselETA,
		LastFreeDay:     req.LastFreeDay,
	}

	record, err := compliance.NewContainerRecord(attrs, s.weightRules)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	existing, err := s.containerRepo.FindByContainerNumber(ctx, record.ContainerNumber)
	switch {
	case err == nil && existing != nil:
		err = shared.NewDomainError("DUPLICATE_CONTAINER",
			"A record already exists for container "+record.ContainerNumber.String())
		telemetry.RecordError(span, err)
		return nil, err
	case err != nil && !errors.Is(err, shared.ErrNotFound):
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.containerRepo.Save(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, record)

	telemetry.SetAttribute(span, "is_compliant", record.IsCompliant())
	response := ToContainerResponse(record)
	return &response, nil
}

// GetContainer gets a container record by ID
func (s *IntakeService) GetContainer(ctx context.Context, id uuid.UUID) (*ContainerResponse, error) {
	record, err := s.containerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToContainerResponse(record)
	return &response, nil
}

// GetContainerByNumber gets a container record by its ISO 6346 identifier.
// The number is validated before the lookup, so a malformed identifier is
// a client error rather than a not-found.
func (s *IntakeService) GetContainerByNumber(ctx context.Context, containerNumber string) (*ContainerResponse, error) {
	number, err := valueobject.NewContainerNumber(containerNumber)
	if err != nil {
		return nil, err
	}

	record, err := s.containerRepo.FindByContainerNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	response := ToContainerResponse(record)
	return &response, nil
}

// ListContainers lists container records with filtering and pagination
func (s *IntakeService) ListContainers(ctx context.Context, filter compliance.ContainerFilter) (shared.Paginated[ContainerResponse], error) {
	page, err := s.containerRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ContainerResponse]{}, err
	}

	items := make([]ContainerResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ToContainerResponse(&page.Items[i]))
	}
	return shared.NewPaginated(items, page.Total, page.Page, page.PageSize), nil
}

// UpdateCustomsStatus records a customs status change for a container
func (s *IntakeService) UpdateCustomsStatus(ctx context.Context, id uuid.UUID, status string) (*ContainerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "compliance", "update_customs_status",
		telemetry.WithAttribute(telemetry.SpanAttrCustomsStatus, status),
	)
	defer span.End()

	return s.mutate(ctx, span, id, func(record *compliance.ContainerRecord) error {
		return record.UpdateCustomsStatus(compliance.CustomsStatus(status))
	})
}

// SetLastFreeDay updates a container's last free day
func (s *IntakeService) SetLastFreeDay(ctx context.Context, id uuid.UUID, lastFreeDay *time.Time) (*ContainerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "compliance", "set_last_free_day")
	defer span.End()

	return s.mutate(ctx, span, id, func(record *compliance.ContainerRecord) error {
		return record.SetLastFreeDay(lastFreeDay)
	})
}

// CustomsStatusSummary reports container counts by customs status
type CustomsStatusSummary struct {
	Pending   int64 `json:"pending"`
	Hold      int64 `json:"hold"`
	Exam      int64 `json:"exam"`
	Released  int64 `json:"released"`
	Delivered int64 `json:"delivered"`
	Total     int64 `json:"total"`
}

// StatusSummary counts container records in each customs status
func (s *IntakeService) StatusSummary(ctx context.Context) (*CustomsStatusSummary, error) {
	summary := &CustomsStatusSummary{}
	counts := []struct {
		status compliance.CustomsStatus
		target *int64
	}{
		{compliance.CustomsStatusPending, &summary.Pending},
		{compliance.CustomsStatusHold, &summary.Hold},
		{compliance.CustomsStatusExam, &summary.Exam},
		{compliance.CustomsStatusReleased, &summary.Released},
		{compliance.CustomsStatusDelivered, &summary.Delivered},
	}
	for _, c := range counts {
		count, err := s.containerRepo.CountByCustomsStatus(ctx, c.status)
		if err != nil {
			return nil, err
		}
		*c.target = count
		summary.Total += count
	}
	return summary, nil
}

// mutate loads a container record, applies the mutation, saves with
// optimistic locking and publishes the resulting domain events.
func (s *IntakeService) mutate(ctx context.Context, span trace.Span, id uuid.UUID, fn func(*compliance.ContainerRecord) error) (*ContainerResponse, error) {
	record, err := s.containerRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := fn(record); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.containerRepo.SaveWithLock(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, record)

	response := ToContainerResponse(record)
	return &response, nil
}

func (s *IntakeService) publishEvents(ctx context.Context, record *compliance.ContainerRecord) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range record.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	record.ClearDomainEvents()
}
