package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers

// perDiem20ft is the standard 20ft per-diem schedule: 5 free days, then
// $25/day through day 10, $35/day through day 20, $50/day after.
func perDiem20ft() TierSchedule {
	return TierSchedule{
		{FromDay: 6, ToDay: 10, RatePerDay: decimal.NewFromInt(25)},
		{FromDay: 11, ToDay: 20, RatePerDay: decimal.NewFromInt(35)},
		{FromDay: 21, ToDay: 0, RatePerDay: decimal.NewFromInt(50)},
	}
}

// ============================================
// TierSchedule Validation Tests
// ============================================

func TestTierSchedule_Validate(t *testing.T) {
	t.Run("valid schedule", func(t *testing.T) {
		require.NoError(t, perDiem20ft().Validate())
	})

	t.Run("single bounded tier", func(t *testing.T) {
		s := TierSchedule{{FromDay: 1, ToDay: 30, RatePerDay: decimal.NewFromInt(10)}}
		require.NoError(t, s.Validate())
	})

	t.Run("single unbounded tier", func(t *testing.T) {
		s := TierSchedule{{FromDay: 1, ToDay: 0, RatePerDay: decimal.NewFromInt(10)}}
		require.NoError(t, s.Validate())
	})

	t.Run("empty schedule rejected", func(t *testing.T) {
		assert.Error(t, TierSchedule{}.Validate())
	})

	t.Run("from day below one rejected", func(t *testing.T) {
		s := TierSchedule{{FromDay: 0, ToDay: 10, RatePerDay: decimal.NewFromInt(10)}}
		assert.Error(t, s.Validate())
	})

	t.Run("negative rate rejected", func(t *testing.T) {
		s := TierSchedule{{FromDay: 1, ToDay: 10, RatePerDay: decimal.NewFromInt(-5)}}
		assert.Error(t, s.Validate())
	})

	t.Run("unbounded tier not last rejected", func(t *testing.T) {
		s := TierSchedule{
			{FromDay: 1, ToDay: 0, RatePerDay: decimal.NewFromInt(10)},
			{FromDay: 11, ToDay: 20, RatePerDay: decimal.NewFromInt(20)},
		}
		assert.Error(t, s.Validate())
	})

	t.Run("to day before from day rejected", func(t *testing.T) {
		s := TierSchedule{{FromDay: 10, ToDay: 5, RatePerDay: decimal.NewFromInt(10)}}
		assert.Error(t, s.Validate())
	})

	t.Run("gap between tiers rejected", func(t *testing.T) {
		s := TierSchedule{
			{FromDay: 1, ToDay: 10, RatePerDay: decimal.NewFromInt(10)},
			{FromDay: 12, ToDay: 20, RatePerDay: decimal.NewFromInt(20)},
		}
		assert.Error(t, s.Validate())
	})

	t.Run("overlapping tiers rejected", func(t *testing.T) {
		s := TierSchedule{
			{FromDay: 1, ToDay: 10, RatePerDay: decimal.NewFromInt(10)},
			{FromDay: 10, ToDay: 20, RatePerDay: decimal.NewFromInt(20)},
		}
		assert.Error(t, s.Validate())
	})
}

// ============================================
// Marginal Tiered Pricing Tests
// ============================================

func TestTierSchedule_Charge(t *testing.T) {
	schedule := perDiem20ft()

	tests := []struct {
		name string
		days int
		want string
	}{
		{"zero days", 0, "0"},
		{"negative days", -3, "0"},
		{"within free window", 5, "0"},
		{"first chargeable day", 6, "25"},
		{"inside first tier", 8, "75"},
		{"first tier boundary", 10, "125"},
		{"crosses into second tier", 15, "300"},
		{"second tier boundary", 20, "475"},
		{"crosses into unbounded tier", 25, "725"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := decimal.NewFromString(tt.want)
			require.NoError(t, err)
			got := schedule.Charge(tt.days)
			assert.True(t, want.Equal(got), "expected %s, got %s", want, got)
		})
	}
}

// Each day must be billed at its own tier's rate. Billing 25 days at the
// final tier's $50 rate would yield 1250, not the marginal 725.
func TestTierSchedule_Charge_MarginalNotRetroactive(t *testing.T) {
	got := perDiem20ft().Charge(25)

	retroactive := decimal.NewFromInt(50).Mul(decimal.NewFromInt(25))
	assert.False(t, got.Equal(retroactive))
	assert.True(t, got.Equal(decimal.NewFromInt(725)))
}

func TestTierSchedule_Charge_UnboundedOnly(t *testing.T) {
	s := TierSchedule{{FromDay: 1, ToDay: 0, RatePerDay: decimal.NewFromFloat(12.50)}}

	got := s.Charge(4)
	assert.True(t, got.Equal(decimal.NewFromInt(50)), "expected 50, got %s", got)
}

func TestTierSchedule_Charge_DaysBeforeFirstTier(t *testing.T) {
	// Demurrage style schedule starting at day 8; dwell shorter than the
	// first band charges nothing.
	s := TierSchedule{{FromDay: 8, ToDay: 0, RatePerDay: decimal.NewFromInt(100)}}

	assert.True(t, s.Charge(7).IsZero())
	assert.True(t, s.Charge(9).Equal(decimal.NewFromInt(200)))
}
