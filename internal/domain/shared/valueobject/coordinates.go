package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/drayage/backend/internal/domain/shared"
)

// Coordinates is a validated WGS 84 point. Terminal locations arrive from
// reference data and requests; validation happens once at construction so
// an out-of-range point can never reach matching or persistence.
type Coordinates struct {
	latitude  float64
	longitude float64
}

// NewCoordinates validates the latitude and longitude ranges and returns
// the point.
func NewCoordinates(latitude, longitude float64) (Coordinates, error) {
	if latitude < -90 || latitude > 90 {
		return Coordinates{}, shared.NewRangeError(
			fmt.Sprintf("latitude %v is outside [-90, 90]", latitude))
	}
	if longitude < -180 || longitude > 180 {
		return Coordinates{}, shared.NewRangeError(
			fmt.Sprintf("longitude %v is outside [-180, 180]", longitude))
	}
	return Coordinates{latitude: latitude, longitude: longitude}, nil
}

func (c Coordinates) Latitude() float64  { return c.latitude }
func (c Coordinates) Longitude() float64 { return c.longitude }

// String returns "lat,lon"
func (c Coordinates) String() string {
	return fmt.Sprintf("%v,%v", c.latitude, c.longitude)
}

// coordinatesJSON is the wire shape of Coordinates
type coordinatesJSON struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MarshalJSON implements json.Marshaler
func (c Coordinates) MarshalJSON() ([]byte, error) {
	return json.Marshal(coordinatesJSON{
		Latitude:  c.latitude,
		Longitude: c.longitude,
	})
}

// UnmarshalJSON implements json.Unmarshaler, revalidating the ranges so a
// point deserialized from a request or a stored row is as trustworthy as
// a constructed one.
func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var raw coordinatesJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := NewCoordinates(raw.Latitude, raw.Longitude)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value implements driver.Valuer so the point can be stored as JSON
func (c Coordinates) Value() (driver.Value, error) {
	data, err := c.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner, revalidating the stored point.
func (c *Coordinates) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		return c.UnmarshalJSON([]byte(v))
	case []byte:
		return c.UnmarshalJSON(v)
	default:
		return fmt.Errorf("failed to scan Coordinates: unsupported type %T", value)
	}
}
