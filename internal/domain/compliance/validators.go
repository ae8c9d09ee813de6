package compliance

import (
	"fmt"
	"regexp"
	"time"

	"github.com/drayage/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Hazmat declarations follow the DOT format: class 1 through 9 with an
// optional division digit, and a four digit UN number.
var (
	hazmatClassPattern = regexp.MustCompile(`^[1-9](\.[1-9])?$`)
	unNumberPattern    = regexp.MustCompile(`^UN[0-9]{4}$`)
)

// Reefer setpoints outside this band indicate a data entry error rather
// than a real commodity requirement.
var (
	minReeferSetpointC = decimal.NewFromInt(-30)
	maxReeferSetpointC = decimal.NewFromInt(30)
)

// WeightRules holds the configured weight limits in pounds
type WeightRules struct {
	MaxGrossWeightLbs      decimal.Decimal
	OverweightThresholdLbs decimal.Decimal
}

// Validate checks the configuration at load time
func (r WeightRules) Validate() error {
	if !r.MaxGrossWeightLbs.IsPositive() {
		return shared.NewConfigurationError("max gross weight must be positive")
	}
	if !r.OverweightThresholdLbs.IsPositive() {
		return shared.NewConfigurationError("overweight threshold must be positive")
	}
	if r.OverweightThresholdLbs.GreaterThan(r.MaxGrossWeightLbs) {
		return shared.NewConfigurationError("overweight threshold cannot exceed max gross weight")
	}
	return nil
}

// ValidateWeight checks that a gross weight is positive and within the
// configured maximum.
func (r WeightRules) ValidateWeight(weightLbs decimal.Decimal) error {
	if weightLbs.LessThanOrEqual(decimal.Zero) {
		return shared.NewRangeError("Gross weight must be positive")
	}
	if weightLbs.GreaterThan(r.MaxGrossWeightLbs) {
		return shared.NewRangeError(
			fmt.Sprintf("Gross weight %s lbs exceeds maximum %s lbs",
				weightLbs, r.MaxGrossWeightLbs))
	}
	return nil
}

// IsOverweight reports whether a load needs overweight handling (tri-axle
// chassis, permits). Not a validation failure: overweight loads are legal,
// they just cost more.
func (r WeightRules) IsOverweight(weightLbs decimal.Decimal) bool {
	return weightLbs.GreaterThan(r.OverweightThresholdLbs)
}

// ValidateHazmat checks a hazmat declaration. Non-hazardous cargo passes
// regardless of the class and UN number fields; hazardous cargo requires
// both in DOT format.
func ValidateHazmat(isHazmat bool, hazmatClass, unNumber string) error {
	if !isHazmat {
		return nil
	}
	if hazmatClass == "" {
		return shared.NewStructuralError("Hazmat class is required for hazardous cargo")
	}
	if !hazmatClassPattern.MatchString(hazmatClass) {
		return shared.NewStructuralError(
			fmt.Sprintf("Hazmat class %q is not a valid DOT class", hazmatClass))
	}
	if unNumber == "" {
		return shared.NewStructuralError("UN number is required for hazardous cargo")
	}
	if !unNumberPattern.MatchString(unNumber) {
		return shared.NewStructuralError(
			fmt.Sprintf("UN number %q must match UNnnnn", unNumber))
	}
	return nil
}

// ValidateReefer checks a reefer temperature setpoint in Celsius. Dry
// containers pass without a setpoint; reefers require one within the
// operational band.
func ValidateReefer(isReefer bool, setpointC *decimal.Decimal) error {
	if !isReefer {
		return nil
	}
	if setpointC == nil {
		return shared.NewRangeError("Temperature setpoint is required for reefer containers")
	}
	if setpointC.LessThan(minReeferSetpointC) || setpointC.GreaterThan(maxReeferSetpointC) {
		return shared.NewRangeError(
			fmt.Sprintf("Temperature setpoint %s C is outside [-30, 30]", setpointC))
	}
	return nil
}

// ValidateImportDates checks that the last free day does not precede the
// vessel ETA. Either side may be unknown, in which case the rule does not
// apply.
func ValidateImportDates(vesselETA, lastFreeDay *time.Time) error {
	if vesselETA == nil || lastFreeDay == nil {
		return nil
	}
	if lastFreeDay.Before(*vesselETA) {
		return shared.NewRangeError(
			fmt.Sprintf("Last free day %s precedes vessel ETA %s",
				lastFreeDay.Format("2006-01-02"), vesselETA.Format("2006-01-02")))
	}
	return nil
}

// ValidateExportCutoffs checks that the port cutoff does not precede the
// documentation cutoff. Either side may be unknown.
func ValidateExportCutoffs(docCutoff, portCutoff *time.Time) error {
	if docCutoff == nil || portCutoff == nil {
		return nil
	}
	if portCutoff.Before(*docCutoff) {
		return shared.NewRangeError(
			fmt.Sprintf("Port cutoff %s precedes documentation cutoff %s",
				portCutoff.Format("2006-01-02 15:04"), docCutoff.Format("2006-01-02 15:04")))
	}
	return nil
}
