package valueobject

import (
	"database/sql/driver"
	"fmt"

	"github.com/drayage/backend/internal/domain/shared"
)

// EquipmentCategory is the fourth character of an ISO 6346 container number
type EquipmentCategory byte

const (
	CategoryFreight    EquipmentCategory = 'U' // freight containers
	CategoryDetachable EquipmentCategory = 'J' // detachable freight container-related equipment
	CategoryTrailer    EquipmentCategory = 'Z' // trailers and chassis
)

// containerNumberLength is the fixed length of an ISO 6346 identifier:
// 3 owner-code letters, 1 category letter, 6 serial digits, 1 check digit.
const containerNumberLength = 11

// ContainerNumber is a validated ISO 6346 container identifier.
// It is validated once at construction and never mutated.
type ContainerNumber struct {
	value string
}

// NewContainerNumber validates the given string against ISO 6346 and returns
// the identifier. Structural checks run first and fail with a structural
// validation error; only a structurally sound identifier reaches the
// check-digit comparison.
func NewContainerNumber(value string) (ContainerNumber, error) {
	if len(value) != containerNumberLength {
		return ContainerNumber{}, shared.NewStructuralError(
			fmt.Sprintf("container number must be %d characters, got %d", containerNumberLength, len(value)))
	}
	for i := 0; i < 3; i++ {
		if value[i] < 'A' || value[i] > 'Z' {
			return ContainerNumber{}, shared.NewStructuralError(
				"container number owner code must be 3 uppercase letters")
		}
	}
	switch EquipmentCategory(value[3]) {
	case CategoryFreight, CategoryDetachable, CategoryTrailer:
	default:
		return ContainerNumber{}, shared.NewStructuralError(
			"container number category identifier must be U, J or Z")
	}
	for i := 4; i < containerNumberLength; i++ {
		if value[i] < '0' || value[i] > '9' {
			return ContainerNumber{}, shared.NewStructuralError(
				"container number serial and check digit must be numeric")
		}
	}

	expected := CheckDigit(value[:10])
	actual := int(value[10] - '0')
	if expected != actual {
		return ContainerNumber{}, shared.NewDomainError(shared.CodeCheckDigitMismatch,
			fmt.Sprintf("container number check digit mismatch: expected %d, got %d", expected, actual))
	}

	return ContainerNumber{value: value}, nil
}

// CheckDigit computes the ISO 6346 check digit for the first 10 characters of
// a container number. Each character's numeric value is weighted by 2^position
// and the weighted sum reduced by (sum mod 11) mod 10. The input is assumed
// structurally valid.
func CheckDigit(prefix string) int {
	sum := 0
	weight := 1
	for i := 0; i < len(prefix); i++ {
		sum += charValue(prefix[i]) * weight
		weight *= 2
	}
	return (sum % 11) % 10
}

// letterValues holds the ISO 6346 numeric value for each letter A-Z.
// Values run from 10 upward skipping multiples of 11 (11, 22, 33).
var letterValues = [26]int{
	10, 12, 13, 14, 15, 16, 17, 18, 19, 20, // A-J
	21, 23, 24, 25, 26, 27, 28, 29, 30, 31, // K-T
	32, 34, 35, 36, 37, 38, // U-Z
}

// charValue maps an ISO 6346 character to its numeric value. Digits map to
// themselves.
func charValue(c byte) int {
	if c >= '0' && c <= '9' {
		return int(c - '0')
	}
	return letterValues[c-'A']
}

// String returns the full 11-character identifier
func (n ContainerNumber) String() string {
	return n.value
}

// OwnerCode returns the 4-character owner prefix, the 3 owner letters plus
// the category identifier, the way BIC registers quote it.
func (n ContainerNumber) OwnerCode() string {
	return n.value[:4]
}

// Category returns the equipment category identifier
func (n ContainerNumber) Category() EquipmentCategory {
	return EquipmentCategory(n.value[3])
}

// SerialNumber returns the 6-digit serial
func (n ContainerNumber) SerialNumber() string {
	return n.value[4:10]
}

// IsZero reports whether the container number is the zero value
func (n ContainerNumber) IsZero() bool {
	return n.value == ""
}

// Value implements driver.Valuer so the identifier can be stored as text
func (n ContainerNumber) Value() (driver.Value, error) {
	return n.value, nil
}

// Scan implements sql.Scanner. Stored identifiers were validated at intake,
// but revalidation on read catches rows written outside the application.
func (n *ContainerNumber) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("failed to scan ContainerNumber: unsupported type %T", value)
	}

	parsed, err := NewContainerNumber(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
