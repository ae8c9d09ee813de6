package compliance

// CustomsStatus represents the customs clearance state of an import container
type CustomsStatus string

const (
	CustomsStatusPending   CustomsStatus = "PENDING"   // Entry filed, awaiting disposition
	CustomsStatusHold      CustomsStatus = "HOLD"      // Customs or carrier hold in place
	CustomsStatusExam      CustomsStatus = "EXAM"      // Pulled for examination
	CustomsStatusReleased  CustomsStatus = "RELEASED"  // Cleared for pickup
	CustomsStatusDelivered CustomsStatus = "DELIVERED" // Out-gated and delivered
)

// IsValid checks if the status is a valid CustomsStatus
func (s CustomsStatus) IsValid() bool {
	switch s {
	case CustomsStatusPending, CustomsStatusHold, CustomsStatusExam,
		CustomsStatusReleased, CustomsStatusDelivered:
		return true
	}
	return false
}

// String returns the string representation of CustomsStatus
func (s CustomsStatus) String() string {
	return string(s)
}

// IsReleased returns true if the container is cleared for pickup
func (s CustomsStatus) IsReleased() bool {
	return s == CustomsStatusReleased
}
