package compliance

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/drayage/backend/internal/domain/shared"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ValidationOutcome records one rule check against a container at intake.
// Stored as JSONB on the container record so dispatchers can see why a
// container was flagged without re-running the rules.
type ValidationOutcome struct {
	Rule      string    `json:"rule"`
	Code      string    `json:"code,omitempty"`
	Message   string    `json:"message,omitempty"`
	Passed    bool      `json:"passed"`
	CheckedAt time.Time `json:"checked_at"`
}

// ValidationOutcomes is a slice of ValidationOutcome that implements GORM Scanner/Valuer for JSONB storage
type ValidationOutcomes []ValidationOutcome

// Value implements driver.Valuer interface for GORM to store as JSONB
func (v ValidationOutcomes) Value() (driver.Value, error) {
	if v == nil {
		return "[]", nil
	}
	return json.Marshal(v)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (v *ValidationOutcomes) Scan(value interface{}) error {
	if value == nil {
		*v = ValidationOutcomes{}
		return nil
	}

	var bytes []byte
	switch val := value.(type) {
	case []byte:
		bytes = val
	case string:
		bytes = []byte(val)
	default:
		return errors.New("failed to scan ValidationOutcomes: unsupported type")
	}

	if len(bytes) == 0 {
		*v = ValidationOutcomes{}
		return nil
	}

	return json.Unmarshal(bytes, v)
}

// AllPassed returns true if every recorded check passed
func (v ValidationOutcomes) AllPassed() bool {
	for _, outcome := range v {
		if !outcome.Passed {
			return false
		}
	}
	return true
}

// Failures returns only the failed outcomes
func (v ValidationOutcomes) Failures() ValidationOutcomes {
	var failed ValidationOutcomes
	for _, outcome := range v {
		if !outcome.Passed {
			failed = append(failed, outcome)
		}
	}
	return failed
}

// ContainerAttributes carries the raw intake facts for a container before
// validation. Parsing and deserialization happen upstream; the rules engine
// only sees typed values.
type ContainerAttributes struct {
	ContainerNumber string
	Size            valueobject.ContainerSize
	Type            valueobject.ContainerType
	CustomsStatus   CustomsStatus
	Terminal        string
	// TerminalLat and TerminalLon locate the terminal when the caller
	// supplies geocoordinates; both or neither must be set.
	TerminalLat     *float64
	TerminalLon     *float64
	GrossWeightLbs  decimal.Decimal
	IsHazmat        bool
	HazmatClass     string
	UNNumber        string
	IsReefer        bool
	ReeferSetpointC *decimal.Decimal
	VesselETA       *time.Time
	LastFreeDay     *time.Time
}

// ContainerRecord is the compliance aggregate for a tracked container. A
// record only exists for containers that passed structural validation of
// their identifier; rule outcomes for the remaining checks are kept on the
// record so a flagged container is visible rather than silently dropped.
type ContainerRecord struct {
	shared.BaseAggregateRoot
	ContainerNumber  valueobject.ContainerNumber
	Size             valueobject.ContainerSize
	Type             valueobject.ContainerType
	CustomsStatus    CustomsStatus
	Terminal         string
	TerminalLocation *valueobject.Coordinates
	GrossWeightLbs   decimal.Decimal
	IsOverweight     bool
	IsHazmat         bool
	HazmatClass      string
	UNNumber         string
	IsReefer         bool
	ReeferSetpointC  *decimal.Decimal
	VesselETA        *time.Time
	LastFreeDay      *time.Time
	Validations      ValidationOutcomes
}

// NewContainerRecord validates the intake attributes and creates a record.
// The container number and customs status must be valid for a record to be
// created at all; the remaining rules are recorded as outcomes, with
// failures returned to the caller to decide between rejection and manual
// review.
func NewContainerRecord(attrs ContainerAttributes, weightRules WeightRules) (*ContainerRecord, error) {
	number, err := valueobject.NewContainerNumber(attrs.ContainerNumber)
	if err != nil {
		return nil, err
	}
	if !attrs.CustomsStatus.IsValid() {
		return nil, shared.NewDomainError("INVALID_CUSTOMS_STATUS",
			fmt.Sprintf("Customs status %q is not recognized", attrs.CustomsStatus))
	}
	if !attrs.Size.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONTAINER_SIZE",
			fmt.Sprintf("Container size %q is not recognized", attrs.Size))
	}
	if !attrs.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONTAINER_TYPE",
			fmt.Sprintf("Container type %q is not recognized", attrs.Type))
	}
	location, err := terminalLocation(attrs)
	if err != nil {
		return nil, err
	}

	record := &ContainerRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ContainerNumber:   number,
		Size:              attrs.Size,
		Type:              attrs.Type,
		CustomsStatus:     attrs.CustomsStatus,
		Terminal:          attrs.Terminal,
		TerminalLocation:  location,
		GrossWeightLbs:    attrs.GrossWeightLbs,
		IsOverweight:      weightRules.IsOverweight(attrs.GrossWeightLbs),
		IsHazmat:          attrs.IsHazmat,
		HazmatClass:       attrs.HazmatClass,
		UNNumber:          attrs.UNNumber,
		IsReefer:          attrs.IsReefer,
		ReeferSetpointC:   attrs.ReeferSetpointC,
		VesselETA:         attrs.VesselETA,
		LastFreeDay:       attrs.LastFreeDay,
	}
	record.Validations = runIntakeChecks(attrs, weightRules)

	record.AddDomainEvent(NewContainerRecordCreatedEvent(record))
	if !record.Validations.AllPassed() {
		record.AddDomainEvent(NewContainerValidationFailedEvent(record))
	}

	return record, nil
}

// terminalLocation builds the terminal geocoordinates from the intake
// attributes. An out-of-range or half-specified point is bad reference
// data and rejects the intake, like a malformed identifier.
func terminalLocation(attrs ContainerAttributes) (*valueobject.Coordinates, error) {
	if attrs.TerminalLat == nil && attrs.TerminalLon == nil {
		return nil, nil
	}
	if attrs.TerminalLat == nil || attrs.TerminalLon == nil {
		return nil, shared.NewRangeError("terminal location requires both latitude and longitude")
	}
	location, err := valueobject.NewCoordinates(*attrs.TerminalLat, *attrs.TerminalLon)
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// runIntakeChecks applies every compliance rule to the intake attributes
// and records one outcome per rule.
func runIntakeChecks(attrs ContainerAttributes, weightRules WeightRules) ValidationOutcomes {
	now := time.Now()
	checks := []struct {
		rule string
		err  error
	}{
		{"weight", weightRules.ValidateWeight(attrs.GrossWeightLbs)},
		{"hazmat", ValidateHazmat(attrs.IsHazmat, attrs.HazmatClass, attrs.UNNumber)},
		{"reefer", ValidateReefer(attrs.IsReefer, attrs.ReeferSetpointC)},
		{"import_dates", ValidateImportDates(attrs.VesselETA, attrs.LastFreeDay)},
	}

	outcomes := make(ValidationOutcomes, 0, len(checks))
	for _, check := range checks {
		outcome := ValidationOutcome{Rule: check.rule, Passed: check.err == nil, CheckedAt: now}
		if check.err != nil {
			var domainErr *shared.DomainError
			if errors.As(check.err, &domainErr) {
				outcome.Code = domainErr.Code
			}
			outcome.Message = check.err.Error()
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// UpdateCustomsStatus records a customs status change
func (r *ContainerRecord) UpdateCustomsStatus(status CustomsStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_CUSTOMS_STATUS",
			fmt.Sprintf("Customs status %q is not recognized", status))
	}
	if status == r.CustomsStatus {
		return nil
	}

	previous := r.CustomsStatus
	r.CustomsStatus = status
	r.AddDomainEvent(NewContainerCustomsStatusChangedEvent(r, previous))
	r.Touch()
	r.IncrementVersion()

	return nil
}

// SetLastFreeDay updates the last free day, re-checking date ordering
func (r *ContainerRecord) SetLastFreeDay(lastFreeDay *time.Time) error {
	if err := ValidateImportDates(r.VesselETA, lastFreeDay); err != nil {
		return err
	}

	r.LastFreeDay = lastFreeDay
	r.Touch()
	r.IncrementVersion()

	return nil
}

// IsCompliant returns true if every intake check passed
func (r *ContainerRecord) IsCompliant() bool {
	return r.Validations.AllPassed()
}

// IsStreetTurnEligible returns true if the container can be offered for a
// street turn: customs released and no outstanding rule failures.
func (r *ContainerRecord) IsStreetTurnEligible() bool {
	return r.CustomsStatus.IsReleased() && r.IsCompliant()
}
