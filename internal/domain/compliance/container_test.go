package compliance

import (
	"testing"
	"time"

	"github.com/drayage/backend/internal/domain/shared"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers

func validAttributes() ContainerAttributes {
	return ContainerAttributes{
		ContainerNumber: "CSQU3054383",
		Size:            valueobject.Size40HC,
		Type:            valueobject.TypeDry,
		CustomsStatus:   CustomsStatusReleased,
		Terminal:        "APM",
		GrossWeightLbs:  decimal.NewFromInt(38500),
	}
}

func TestNewContainerRecord(t *testing.T) {
	t.Run("clean intake", func(t *testing.T) {
		record, err := NewContainerRecord(validAttributes(), standardWeightRules())
		require.NoError(t, err)

		assert.Equal(t, "CSQU3054383", record.ContainerNumber.String())
		assert.True(t, record.IsCompliant())
		assert.False(t, record.IsOverweight)
		assert.Len(t, record.Validations, 4)
		assert.Len(t, record.GetDomainEvents(), 1)
	})

	t.Run("bad check digit blocks record creation", func(t *testing.T) {
		attrs := validAttributes()
		attrs.ContainerNumber = "CSQU3054380"

		_, err := NewContainerRecord(attrs, standardWeightRules())
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeCheckDigitMismatch, domainErr.Code)
	})

	t.Run("unknown customs status blocks record creation", func(t *testing.T) {
		attrs := validAttributes()
		attrs.CustomsStatus = CustomsStatus("IN_LIMBO")

		_, err := NewContainerRecord(attrs, standardWeightRules())
		assert.Error(t, err)
	})

	t.Run("rule failures are recorded not fatal", func(t *testing.T) {
		attrs := validAttributes()
		attrs.IsHazmat = true
		attrs.HazmatClass = "3"
		// UN number missing

		record, err := NewContainerRecord(attrs, standardWeightRules())
		require.NoError(t, err)

		assert.False(t, record.IsCompliant())
		failures := record.Validations.Failures()
		require.Len(t, failures, 1)
		assert.Equal(t, "hazmat", failures[0].Rule)
		assert.Equal(t, shared.CodeStructuralValidation, failures[0].Code)
		assert.Len(t, record.GetDomainEvents(), 2)
	})

	t.Run("overweight is flagged without failing intake", func(t *testing.T) {
		attrs := validAttributes()
		attrs.GrossWeightLbs = decimal.NewFromInt(46000)

		record, err := NewContainerRecord(attrs, standardWeightRules())
		require.NoError(t, err)

		assert.True(t, record.IsOverweight)
		assert.True(t, record.IsCompliant())
	})

	t.Run("late last free day fails the date rule", func(t *testing.T) {
		eta := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
		lfd := eta.AddDate(0, 0, -2)
		attrs := validAttributes()
		attrs.VesselETA = &eta
		attrs.LastFreeDay = &lfd

		record, err := NewContainerRecord(attrs, standardWeightRules())
		require.NoError(t, err)

		failures := record.Validations.Failures()
		require.Len(t, failures, 1)
		assert.Equal(t, "import_dates", failures[0].Rule)
	})
}

func TestContainerRecord_UpdateCustomsStatus(t *testing.T) {
	record, err := NewContainerRecord(validAttributes(), standardWeightRules())
	require.NoError(t, err)
	record.ClearDomainEvents()

	t.Run("valid transition", func(t *testing.T) {
		require.NoError(t, record.UpdateCustomsStatus(CustomsStatusDelivered))
		assert.Equal(t, CustomsStatusDelivered, record.CustomsStatus)
		assert.Len(t, record.GetDomainEvents(), 1)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		version := record.GetVersion()
		require.NoError(t, record.UpdateCustomsStatus(CustomsStatusDelivered))
		assert.Equal(t, version, record.GetVersion())
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		assert.Error(t, record.UpdateCustomsStatus(CustomsStatus("GONE")))
	})
}

func TestContainerRecord_IsStreetTurnEligible(t *testing.T) {
	t.Run("released and compliant", func(t *testing.T) {
		record, err := NewContainerRecord(validAttributes(), standardWeightRules())
		require.NoError(t, err)
		assert.True(t, record.IsStreetTurnEligible())
	})

	t.Run("hold blocks eligibility", func(t *testing.T) {
		attrs := validAttributes()
		attrs.CustomsStatus = CustomsStatusHold

		record, err := NewContainerRecord(attrs, standardWeightRules())
		require.NoError(t, err)
		assert.False(t, record.IsStreetTurnEligible())
	})

	t.Run("rule failure blocks eligibility", func(t *testing.T) {
		attrs := validAttributes()
		attrs.IsReefer = true
		// setpoint missing

		record, err := NewContainerRecord(attrs, standardWeightRules())
		require.NoError(t, err)
		assert.False(t, record.IsStreetTurnEligible())
	})
}

func TestContainerRecord_SetLastFreeDay(t *testing.T) {
	eta := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	attrs := validAttributes()
	attrs.VesselETA = &eta

	record, err := NewContainerRecord(attrs, standardWeightRules())
	require.NoError(t, err)

	good := eta.AddDate(0, 0, 4)
	require.NoError(t, record.SetLastFreeDay(&good))
	assert.Equal(t, &good, record.LastFreeDay)

	bad := eta.AddDate(0, 0, -1)
	assert.Error(t, record.SetLastFreeDay(&bad))
	assert.Equal(t, &good, record.LastFreeDay)
}
