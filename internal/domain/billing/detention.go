package billing

import (
	"github.com/drayage/backend/internal/domain/shared"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DetentionConfig holds the free-time window and hourly pricing for
// detention charges on a single day segment.
type DetentionConfig struct {
	FreeTimeMinutes    int
	GracePeriodMinutes int
	RatePerHour        valueobject.Money
	MaxDailyCharge     valueobject.Money
}

// Validate checks the configuration at load time
func (c DetentionConfig) Validate() error {
	if c.FreeTimeMinutes < 0 {
		return shared.NewConfigurationError("detention free time cannot be negative")
	}
	if c.GracePeriodMinutes < 0 {
		return shared.NewConfigurationError("detention grace period cannot be negative")
	}
	if !c.RatePerHour.IsPositive() {
		return shared.NewConfigurationError("detention rate per hour must be positive")
	}
	if !c.MaxDailyCharge.IsPositive() {
		return shared.NewConfigurationError("detention daily cap must be positive")
	}
	return nil
}

// DetentionResult is the computed charge for one day segment of dwell
type DetentionResult struct {
	Charge          valueobject.Money
	BillableMinutes int
}

// CalculateDetention converts elapsed dwell minutes into a capped hourly
// charge. freeMinutesOverride replaces the configured free time when nonzero
// (per-customer contract terms); the grace period is always added on top.
// Fractional hours bill proportionally. The daily cap applies to the entire
// computed charge, so multi-day detention must be calculated once per day
// segment by the caller.
func CalculateDetention(actualMinutes, freeMinutesOverride int, cfg DetentionConfig) DetentionResult {
	freeTime := cfg.FreeTimeMinutes
	if freeMinutesOverride != 0 {
		freeTime = freeMinutesOverride
	}
	totalFreeWindow := freeTime + cfg.GracePeriodMinutes

	if actualMinutes <= totalFreeWindow {
		return DetentionResult{Charge: valueobject.Zero(cfg.RatePerHour.Currency())}
	}

	billableMinutes := actualMinutes - totalFreeWindow
	// Multiply before dividing so exact cent amounts stay exact.
	amount := cfg.RatePerHour.Amount().
		Mul(decimal.NewFromInt(int64(billableMinutes))).
		Div(decimal.NewFromInt(60))
	result, _ := valueobject.NewMoney(amount, cfg.RatePerHour.Currency())

	if over, _ := result.GreaterThan(cfg.MaxDailyCharge); over {
		result = cfg.MaxDailyCharge
	}

	return DetentionResult{Charge: result, BillableMinutes: billableMinutes}
}
