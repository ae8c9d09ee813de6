package streetturn

import (
	"time"

	"github.com/drayage/backend/internal/domain/compliance"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ImportCandidate is a snapshot of an inbound container that could be
// reused for an export booking instead of being returned empty.
type ImportCandidate struct {
	ShipmentID      uuid.UUID                   `json:"shipment_id"`
	ContainerNumber valueobject.ContainerNumber `json:"container_number"`
	Size            valueobject.ContainerSize   `json:"size"`
	Type            valueobject.ContainerType   `json:"type"`
	CustomsStatus   compliance.CustomsStatus    `json:"customs_status"`
	Terminal        string                      `json:"terminal"`
	LastFreeDay     *time.Time                  `json:"last_free_day,omitempty"`
}

// ExportCandidate is a snapshot of an export booking that still needs an
// empty container.
type ExportCandidate struct {
	ShipmentID    uuid.UUID                 `json:"shipment_id"`
	BookingNumber string                    `json:"booking_number"`
	Size          valueobject.ContainerSize `json:"size"`
	Type          valueobject.ContainerType `json:"type"`
	Terminal      string                    `json:"terminal"`
	DocCutoff     *time.Time                `json:"doc_cutoff,omitempty"`
	PortCutoff    *time.Time                `json:"port_cutoff,omitempty"`
}

// MatchType classifies a street-turn pairing by terminal geography
type MatchType string

const (
	// MatchTypeSameTerminal pairs both sides at one terminal, avoiding the
	// empty return and the empty pickup.
	MatchTypeSameTerminal MatchType = "SAME_TERMINAL"
	// MatchTypeDifferentTerminal still avoids the empty return but a
	// repositioning move remains.
	MatchTypeDifferentTerminal MatchType = "DIFFERENT_TERMINAL"
)

// IsValid checks if the match type is valid
func (m MatchType) IsValid() bool {
	return m == MatchTypeSameTerminal || m == MatchTypeDifferentTerminal
}

// String returns the string representation of MatchType
func (m MatchType) String() string {
	return string(m)
}

// StreetTurnCandidate is a derived, non-persistent pairing of an import
// container with an export booking. It carries no identity of its own;
// accepting a candidate is a dispatch decision made elsewhere.
type StreetTurnCandidate struct {
	Import           ImportCandidate   `json:"import"`
	Export           ExportCandidate   `json:"export"`
	MatchType        MatchType         `json:"match_type"`
	EstimatedSavings valueobject.Money `json:"estimated_savings"`
}
