package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChargeType_IsValid(t *testing.T) {
	valid := []ChargeType{
		ChargeTypeLineHaul, ChargeTypeFuelSurcharge, ChargeTypeDetention,
		ChargeTypeDemurrage, ChargeTypePerDiem, ChargeTypeChassis,
		ChargeTypeStorage, ChargeTypeRedelivery, ChargeTypeDryRun,
		ChargeTypeWaiting, ChargeTypeOverweight, ChargeTypeHazmat,
		ChargeTypeReefer, ChargeTypePrepull, ChargeTypeOther,
	}
	for _, ct := range valid {
		t.Run(string(ct), func(t *testing.T) {
			assert.True(t, ct.IsValid())
		})
	}

	assert.False(t, ChargeType("TOLLS").IsValid())
	assert.False(t, ChargeType("").IsValid())
	assert.False(t, ChargeType("line_haul").IsValid())
}

func TestChargeType_IsAccessorial(t *testing.T) {
	assert.False(t, ChargeTypeLineHaul.IsAccessorial())
	assert.False(t, ChargeTypeFuelSurcharge.IsAccessorial())

	assert.True(t, ChargeTypeDetention.IsAccessorial())
	assert.True(t, ChargeTypePerDiem.IsAccessorial())
	assert.True(t, ChargeTypeOther.IsAccessorial())
}
