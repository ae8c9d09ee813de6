package valueobject

import (
	"errors"
	"testing"

	"github.com/drayage/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContainerNumber_Valid(t *testing.T) {
	tests := []struct {
		number   string
		category EquipmentCategory
	}{
		{"CSQU3054383", CategoryFreight},
		{"MSKU6011672", CategoryFreight},
		{"TGHU7629332", CategoryFreight},
		{"APZU4303299", CategoryFreight},
		{"GAOJ1234563", CategoryDetachable},
		{"NYKZ0000019", CategoryTrailer},
	}

	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			n, err := NewContainerNumber(tt.number)
			require.NoError(t, err)
			assert.Equal(t, tt.number, n.String())
			assert.Equal(t, tt.category, n.Category())
			assert.Equal(t, tt.number[:4], n.OwnerCode())
			assert.Equal(t, tt.number[4:10], n.SerialNumber())
		})
	}
}

func TestNewContainerNumber_Structural(t *testing.T) {
	tests := []struct {
		name   string
		number string
	}{
		{"too short", "CSQU305438"},
		{"too long", "CSQU30543830"},
		{"empty", ""},
		{"lowercase owner code", "csqu3054383"},
		{"digit in owner code", "CS1U3054383"},
		{"bad category letter", "CSQA3054383"},
		{"letter in first serial position", "CSQUA054383"},
		{"letter in serial", "CSQU30543A3"},
		{"letter as check digit", "CSQU305438X"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewContainerNumber(tt.number)
			require.Error(t, err)

			var domainErr *shared.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, shared.CodeStructuralValidation, domainErr.Code)
		})
	}
}

func TestNewContainerNumber_CheckDigit(t *testing.T) {
	// Every final digit other than the correct one must be rejected,
	// and only after the structural checks have passed.
	for d := byte('0'); d <= '9'; d++ {
		number := "CSQU305438" + string(d)
		_, err := NewContainerNumber(number)
		if d == '3' {
			assert.NoError(t, err, number)
			continue
		}

		require.Error(t, err, number)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, shared.CodeCheckDigitMismatch, domainErr.Code, number)
	}
}

func TestCheckDigit_LetterValues(t *testing.T) {
	// The ISO 6346 letter table skips multiples of 11; spot-check the
	// letters adjacent to each skipped value.
	assert.Equal(t, 10, charValue('A'))
	assert.Equal(t, 12, charValue('B'))
	assert.Equal(t, 21, charValue('K'))
	assert.Equal(t, 23, charValue('L'))
	assert.Equal(t, 32, charValue('U'))
	assert.Equal(t, 34, charValue('V'))
	assert.Equal(t, 38, charValue('Z'))
	assert.Equal(t, 7, charValue('7'))
}

func TestContainerNumber_IsZero(t *testing.T) {
	var empty ContainerNumber
	assert.True(t, empty.IsZero())

	n, err := NewContainerNumber("CSQU3054383")
	require.NoError(t, err)
	assert.False(t, n.IsZero())
}
