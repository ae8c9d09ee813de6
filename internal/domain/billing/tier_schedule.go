package billing

import (
	"fmt"

	"github.com/drayage/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TierRate is one band of a day-indexed rate table. ToDay == 0 marks an
// unbounded tail band.
type TierRate struct {
	FromDay    int             `json:"from_day"`
	ToDay      int             `json:"to_day"`
	RatePerDay decimal.Decimal `json:"rate_per_day"`
}

// Unbounded reports whether the tier has no upper day limit
func (t TierRate) Unbounded() bool {
	return t.ToDay == 0
}

// TierSchedule is an ordered sequence of TierRate bands: ascending by
// FromDay, contiguous, with at most one unbounded trailing band. Used for
// per-diem, demurrage and similar day-based charge schedules.
type TierSchedule []TierRate

// Validate checks the structural invariants of the schedule. It is called
// once at configuration-load time so a malformed tier table fails fast
// instead of silently mispricing every invoice.
func (s TierSchedule) Validate() error {
	if len(s) == 0 {
		return shared.NewConfigurationError("tier schedule must contain at least one tier")
	}
	for i, tier := range s {
		if tier.FromDay < 1 {
			return shared.NewConfigurationError(
				fmt.Sprintf("tier %d: from_day must be at least 1, got %d", i, tier.FromDay))
		}
		if tier.RatePerDay.IsNegative() {
			return shared.NewConfigurationError(
				fmt.Sprintf("tier %d: rate_per_day cannot be negative", i))
		}
		if tier.Unbounded() {
			if i != len(s)-1 {
				return shared.NewConfigurationError(
					fmt.Sprintf("tier %d: only the last tier may be unbounded", i))
			}
			continue
		}
		if tier.ToDay < tier.FromDay {
			return shared.NewConfigurationError(
				fmt.Sprintf("tier %d: to_day %d precedes from_day %d", i, tier.ToDay, tier.FromDay))
		}
		if i+1 < len(s) && s[i+1].FromDay != tier.ToDay+1 {
			return shared.NewConfigurationError(
				fmt.Sprintf("tier %d: expected next from_day %d, got %d", i, tier.ToDay+1, s[i+1].FromDay))
		}
	}
	return nil
}

// Charge computes the marginal tiered charge for the given number of
// chargeable days: each day is billed at its own tier's rate, never the
// final tier's rate applied retroactively. The result is unrounded; the
// caller rounds to 2 decimal places when building a line item.
func (s TierSchedule) Charge(days int) decimal.Decimal {
	total := decimal.Zero
	if days <= 0 {
		return total
	}

	for _, tier := range s {
		if tier.FromDay > days {
			break
		}
		endDay := days
		if !tier.Unbounded() && tier.ToDay < days {
			endDay = tier.ToDay
		}
		if daysInTier := endDay - tier.FromDay + 1; daysInTier > 0 {
			total = total.Add(tier.RatePerDay.Mul(decimal.NewFromInt(int64(daysInTier))))
		}
		if !tier.Unbounded() && days <= tier.ToDay {
			break
		}
	}
	return total
}
