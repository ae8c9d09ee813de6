package billing

import (
	"fmt"

	"github.com/drayage/backend/internal/domain/shared"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
)

// RateRules bundles every pricing rule the charge calculators need. It is
// built once at startup from configuration and passed into the engine's
// entry points; nothing here is process-global or mutable.
type RateRules struct {
	Detention DetentionConfig
	PerDiem   map[valueobject.ContainerSize]TierSchedule
	Demurrage map[valueobject.ContainerSize]TierSchedule
}

// Validate checks every embedded rule set. Called once at load time so a
// malformed tier table fails fast instead of mispricing invoices.
func (r RateRules) Validate() error {
	if err := r.Detention.Validate(); err != nil {
		return err
	}
	for size, schedule := range r.PerDiem {
		if !size.IsValid() {
			return shared.NewConfigurationError(
				fmt.Sprintf("per-diem schedule keyed by unknown container size %q", size))
		}
		if err := schedule.Validate(); err != nil {
			return err
		}
	}
	for size, schedule := range r.Demurrage {
		if !size.IsValid() {
			return shared.NewConfigurationError(
				fmt.Sprintf("demurrage schedule keyed by unknown container size %q", size))
		}
		if err := schedule.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// PerDiemSchedule returns the per-diem tier schedule for a container size
func (r RateRules) PerDiemSchedule(size valueobject.ContainerSize) (TierSchedule, error) {
	schedule, ok := r.PerDiem[size]
	if !ok {
		return nil, shared.NewConfigurationError(
			fmt.Sprintf("no per-diem schedule configured for container size %s", size))
	}
	return schedule, nil
}

// DemurrageSchedule returns the demurrage tier schedule for a container size
func (r RateRules) DemurrageSchedule(size valueobject.ContainerSize) (TierSchedule, error) {
	schedule, ok := r.Demurrage[size]
	if !ok {
		return nil, shared.NewConfigurationError(
			fmt.Sprintf("no demurrage schedule configured for container size %s", size))
	}
	return schedule, nil
}
