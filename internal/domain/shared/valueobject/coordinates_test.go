package valueobject

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/drayage/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoordinates_Valid(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
	}{
		{"port of los angeles", 33.7406, -118.2726},
		{"equator and prime meridian", 0, 0},
		{"north pole", 90, 0},
		{"south pole", -90, 0},
		{"date line east", 0, 180},
		{"date line west", 0, -180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCoordinates(tt.lat, tt.lon)
			require.NoError(t, err)
			assert.Equal(t, tt.lat, c.Latitude())
			assert.Equal(t, tt.lon, c.Longitude())
		})
	}
}

func TestNewCoordinates_OutOfRange(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
	}{
		{"latitude above 90", 90.0001, 0},
		{"latitude below -90", -91, 0},
		{"longitude above 180", 0, 180.5},
		{"longitude below -180", 0, -181},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCoordinates(tt.lat, tt.lon)
			require.Error(t, err)

			var domainErr *shared.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, shared.CodeRangeValidation, domainErr.Code)
		})
	}
}

func TestCoordinates_UnmarshalRevalidates(t *testing.T) {
	var c Coordinates
	err := json.Unmarshal([]byte(`{"latitude":91,"longitude":0}`), &c)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, shared.CodeRangeValidation, domainErr.Code)
}

func TestCoordinates_ScanRoundTrip(t *testing.T) {
	c, err := NewCoordinates(33.7406, -118.2726)
	require.NoError(t, err)

	stored, err := c.Value()
	require.NoError(t, err)

	var scanned Coordinates
	require.NoError(t, scanned.Scan(stored))
	assert.Equal(t, c, scanned)
}
